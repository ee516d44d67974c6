package handlers

import (
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"bizpulse/internal/auth"
	"bizpulse/internal/models"
	"bizpulse/internal/services"
	"github.com/starfederation/datastar-go/datastar"
)

var monthlyTableTemplate = template.Must(template.New("monthlyTable").Parse(`
<div id="monthly-content">
<table class="modern-table">
<thead><tr><th>Month</th><th>Revenue</th></tr></thead>
<tbody>
{{range .}}<tr>
<td>{{.Month}}</td>
<td><strong>${{printf "%.2f" .Revenue}}</strong></td>
</tr>{{end}}
</tbody>
</table>
</div>`))

type SSEHandlers struct {
	analytics *services.Analytics
	auth      *auth.Service
	logger    *slog.Logger
}

func NewSSEHandlers(analytics *services.Analytics, authService *auth.Service, logger *slog.Logger) *SSEHandlers {
	return &SSEHandlers{
		analytics: analytics,
		auth:      authService,
		logger:    logger,
	}
}

func (h *SSEHandlers) renderMonthlyTable(monthly []models.MonthlyRevenue) (string, error) {
	var buf strings.Builder
	err := monthlyTableTemplate.Execute(&buf, monthly)
	return buf.String(), err
}

// HandleRefresh pushes the authenticated user's latest report to the
// dashboard: the monthly table as a patched element and the chart series as
// datastar signals.
func (h *SSEHandlers) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	report, ok := h.reportFor(w, r)
	if !ok {
		return
	}

	sse := datastar.NewSSE(w, r)

	html, err := h.renderMonthlyTable(report.Monthly)
	if err != nil {
		h.logger.Error("render monthly table", "error", err)
		return
	}
	sse.PatchElements(html)

	signals, err := json.Marshal(map[string]any{
		"productsData":  report.TopProducts,
		"regionsData":   report.Regions,
		"customersData": report.Customers,
		"kpisData":      report.KPIs,
	})
	if err != nil {
		h.logger.Error("marshal report signals", "error", err)
		return
	}
	sse.PatchSignals(signals)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func (h *SSEHandlers) HandleTopProducts(w http.ResponseWriter, r *http.Request) {
	report, ok := h.reportFor(w, r)
	if !ok {
		return
	}

	sse := datastar.NewSSE(w, r)

	signals, err := json.Marshal(map[string]any{"productsData": report.TopProducts})
	if err != nil {
		h.logger.Error("marshal products data", "error", err)
		return
	}
	sse.PatchSignals(signals)
	sse.PatchElements(`<div id="products-content">Top products loaded</div>`)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func (h *SSEHandlers) HandleMonthlyRevenue(w http.ResponseWriter, r *http.Request) {
	report, ok := h.reportFor(w, r)
	if !ok {
		return
	}

	sse := datastar.NewSSE(w, r)

	html, err := h.renderMonthlyTable(report.Monthly)
	if err != nil {
		h.logger.Error("render monthly table", "error", err)
		return
	}
	sse.PatchElements(html)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func (h *SSEHandlers) reportFor(w http.ResponseWriter, r *http.Request) (*models.Report, bool) {
	username, password, ok := r.BasicAuth()
	if !ok {
		w.Header().Set("WWW-Authenticate", `Basic realm="bizpulse"`)
		http.Error(w, "credentials required", http.StatusUnauthorized)
		return nil, false
	}

	session, err := h.auth.Login(r.Context(), username, password)
	if err != nil {
		http.Error(w, "invalid username or password", http.StatusUnauthorized)
		return nil, false
	}

	report := h.analytics.Report(session)
	if report == nil {
		http.Error(w, "no report yet", http.StatusNotFound)
		return nil, false
	}
	return report, true
}
