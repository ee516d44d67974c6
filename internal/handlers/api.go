package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"bizpulse/internal/auth"
	apperrors "bizpulse/internal/errors"
	"bizpulse/internal/models"
	"bizpulse/internal/observability"
	"bizpulse/internal/pipeline"
	"bizpulse/internal/services"
)

const cacheControlPrivate = "private, no-store"

type APIHandlers struct {
	analytics *services.Analytics
	auth      *auth.Service
	logger    *slog.Logger
	maxUpload int64
}

func NewAPIHandlers(analytics *services.Analytics, authService *auth.Service, logger *slog.Logger, maxUpload int64) *APIHandlers {
	return &APIHandlers{
		analytics: analytics,
		auth:      authService,
		logger:    logger,
		maxUpload: maxUpload,
	}
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *APIHandlers) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var creds credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		h.writeError(w, r, apperrors.BadRequestWrap(err, "invalid JSON body"))
		return
	}

	session, err := h.auth.Signup(r.Context(), creds.Username, creds.Password)
	if err != nil {
		h.writeError(w, r, mapAuthError(err))
		return
	}

	apperrors.WriteSuccess(w, session)
}

func (h *APIHandlers) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var creds credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		h.writeError(w, r, apperrors.BadRequestWrap(err, "invalid JSON body"))
		return
	}

	session, err := h.auth.Login(r.Context(), creds.Username, creds.Password)
	if err != nil {
		h.writeError(w, r, mapAuthError(err))
		return
	}

	apperrors.WriteSuccess(w, session)
}

// HandleUpload accepts a multipart CSV, runs the analysis pipeline for the
// authenticated user, and returns the fresh report.
func (h *APIHandlers) HandleUpload(w http.ResponseWriter, r *http.Request) {
	session, ok := h.sessionFrom(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		h.writeError(w, r, apperrors.BadRequestWrap(err, "invalid multipart upload"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.writeError(w, r, apperrors.BadRequest("a CSV file is required"))
		return
	}
	defer file.Close()

	report, err := h.analytics.Analyze(r.Context(), session, file, header.Filename)
	if err != nil {
		h.writeError(w, r, mapAnalysisError(err))
		return
	}

	apperrors.WriteSuccess(w, report)
}

func (h *APIHandlers) HandleReport(w http.ResponseWriter, r *http.Request) {
	session, ok := h.sessionFrom(w, r)
	if !ok {
		return
	}
	report := h.analytics.Report(session)
	if report == nil {
		h.writeError(w, r, apperrors.NotFound("no report yet, upload a CSV first"))
		return
	}
	apperrors.WriteSuccessWithHeaders(w, report, map[string]string{"Cache-Control": cacheControlPrivate})
}

func (h *APIHandlers) HandleMonthlyRevenue(w http.ResponseWriter, r *http.Request) {
	h.reportTable(w, r, func(rep *models.Report) (any, *apperrors.AppError) {
		return rep.Monthly, nil
	})
}

func (h *APIHandlers) HandleTopProducts(w http.ResponseWriter, r *http.Request) {
	h.reportTable(w, r, func(rep *models.Report) (any, *apperrors.AppError) {
		return rep.TopProducts, nil
	})
}

func (h *APIHandlers) HandleRegionRevenue(w http.ResponseWriter, r *http.Request) {
	h.reportTable(w, r, func(rep *models.Report) (any, *apperrors.AppError) {
		if rep.Regions == nil {
			return nil, apperrors.NotFound("region summary unavailable: last upload had no Region column")
		}
		return rep.Regions, nil
	})
}

func (h *APIHandlers) HandleCustomerSegments(w http.ResponseWriter, r *http.Request) {
	h.reportTable(w, r, func(rep *models.Report) (any, *apperrors.AppError) {
		if rep.Customers == nil {
			return nil, apperrors.NotFound("customer summary unavailable: last upload had no Customer Id column")
		}
		return rep.Customers, nil
	})
}

func (h *APIHandlers) HandleKPIs(w http.ResponseWriter, r *http.Request) {
	h.reportTable(w, r, func(rep *models.Report) (any, *apperrors.AppError) {
		if rep.KPIs == nil {
			return nil, apperrors.NotFound("KPIs unavailable: last upload retained no records")
		}
		return rep.KPIs, nil
	})
}

func (h *APIHandlers) HandleUploads(w http.ResponseWriter, r *http.Request) {
	session, ok := h.sessionFrom(w, r)
	if !ok {
		return
	}
	uploads, err := h.analytics.Uploads(r.Context(), session)
	if err != nil {
		h.writeError(w, r, apperrors.StoreWrap(err, "could not list uploads"))
		return
	}
	apperrors.WriteSuccess(w, uploads)
}

func (h *APIHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	healthData := map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   "1.0.0",
	}
	apperrors.WriteSuccess(w, healthData)
}

func (h *APIHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	apperrors.WriteSuccess(w, h.analytics.Stats())
}

func (h *APIHandlers) reportTable(w http.ResponseWriter, r *http.Request, pick func(*models.Report) (any, *apperrors.AppError)) {
	session, ok := h.sessionFrom(w, r)
	if !ok {
		return
	}
	report := h.analytics.Report(session)
	if report == nil {
		h.writeError(w, r, apperrors.NotFound("no report yet, upload a CSV first"))
		return
	}
	data, appErr := pick(report)
	if appErr != nil {
		h.writeError(w, r, appErr)
		return
	}
	apperrors.WriteSuccessWithHeaders(w, data, map[string]string{"Cache-Control": cacheControlPrivate})
}

// sessionFrom authenticates the request with HTTP Basic credentials checked
// against the store. There is no server-side session state; the session
// value exists only for the duration of the request.
func (h *APIHandlers) sessionFrom(w http.ResponseWriter, r *http.Request) (models.Session, bool) {
	username, password, ok := r.BasicAuth()
	if !ok {
		w.Header().Set("WWW-Authenticate", `Basic realm="bizpulse"`)
		h.writeError(w, r, apperrors.Unauthorized("credentials required"))
		return models.Session{}, false
	}

	session, err := h.auth.Login(r.Context(), username, password)
	if err != nil {
		h.writeError(w, r, mapAuthError(err))
		return models.Session{}, false
	}
	return session, true
}

func (h *APIHandlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	apperrors.WriteError(w, h.logger, err, observability.GetRequestID(r.Context()))
}

func mapAuthError(err error) *apperrors.AppError {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		return apperrors.Unauthorized("invalid username or password")
	case errors.Is(err, auth.ErrUsernameTaken):
		return apperrors.Conflict("username already taken")
	case isStoreError(err):
		return apperrors.StoreWrap(err, "account store unavailable")
	default:
		return apperrors.BadRequestWrap(err, "invalid credentials payload")
	}
}

func mapAnalysisError(err error) *apperrors.AppError {
	var missing *pipeline.MissingColumnsError
	switch {
	case errors.As(err, &missing):
		return apperrors.MissingColumns(missing.Error())
	case isStoreError(err):
		return apperrors.StoreWrap(err, "could not record upload")
	default:
		return apperrors.BadRequestWrap(err, "could not process CSV file")
	}
}

func isStoreError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "store:")
}
