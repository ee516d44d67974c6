package server

import (
	"log/slog"
	"net/http"

	"bizpulse/internal/auth"
	"bizpulse/internal/handlers"
	"bizpulse/internal/services"
)

type Server struct {
	mux         *http.ServeMux
	logger      *slog.Logger
	apiHandlers *handlers.APIHandlers
	sseHandlers *handlers.SSEHandlers
}

type TemplateHandlers struct {
	Dashboard http.HandlerFunc
}

func NewServer(analytics *services.Analytics, authService *auth.Service, logger *slog.Logger, maxUpload int64, templateHandlers *TemplateHandlers) *Server {
	s := &Server{
		mux:         http.NewServeMux(),
		logger:      logger,
		apiHandlers: handlers.NewAPIHandlers(analytics, authService, logger, maxUpload),
		sseHandlers: handlers.NewSSEHandlers(analytics, authService, logger),
	}
	s.setupRoutes(templateHandlers)
	return s
}

func (s *Server) setupRoutes(templateHandlers *TemplateHandlers) {
	// Dashboard routes
	s.mux.HandleFunc("GET /", templateHandlers.Dashboard)
	s.mux.HandleFunc("GET /health", s.apiHandlers.HandleHealth)
	s.mux.HandleFunc("GET /admin/stats", s.apiHandlers.HandleStats)

	// Accounts
	s.mux.HandleFunc("POST /api/signup", s.apiHandlers.HandleSignup)
	s.mux.HandleFunc("POST /api/login", s.apiHandlers.HandleLogin)

	// Upload and analysis
	s.mux.HandleFunc("POST /api/upload", s.apiHandlers.HandleUpload)
	s.mux.HandleFunc("GET /api/uploads", s.apiHandlers.HandleUploads)

	// Report tables
	s.mux.HandleFunc("GET /api/report", s.apiHandlers.HandleReport)
	s.mux.HandleFunc("GET /api/monthly-revenue", s.apiHandlers.HandleMonthlyRevenue)
	s.mux.HandleFunc("GET /api/top-products", s.apiHandlers.HandleTopProducts)
	s.mux.HandleFunc("GET /api/region-revenue", s.apiHandlers.HandleRegionRevenue)
	s.mux.HandleFunc("GET /api/customer-segments", s.apiHandlers.HandleCustomerSegments)
	s.mux.HandleFunc("GET /api/kpis", s.apiHandlers.HandleKPIs)

	// Datastar SSE endpoints
	s.mux.HandleFunc("GET /sse/report", s.sseHandlers.HandleRefresh)
	s.mux.HandleFunc("GET /sse/monthly-revenue", s.sseHandlers.HandleMonthlyRevenue)
	s.mux.HandleFunc("GET /sse/top-products", s.sseHandlers.HandleTopProducts)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}
