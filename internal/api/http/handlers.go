package apihttp

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"billing-cloud/internal/observability/metrics"
	"billing-cloud/internal/reporting"
)

// DashboardHandler serves revenue dashboard queries and exports.
type DashboardHandler struct {
	service *reporting.DashboardService
}

// NewDashboardHandler constructs a DashboardHandler.
func NewDashboardHandler(service *reporting.DashboardService) (*DashboardHandler, error) {
	if service == nil {
		return nil, errors.New("dashboard handler: nil service")
	}
	return &DashboardHandler{service: service}, nil
}

// ServeHTTP handles GET /api/v1/dashboard and its xlsx export.
func (h *DashboardHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	switch r.URL.Path {
	case "/api/v1/dashboard":
		h.handleDashboard(w, r)
	case "/api/v1/dashboard/export.xlsx":
		h.handleExportXLSX(w, r)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *DashboardHandler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	bucket, err := h.service.Build(r.Context(), r.URL.Query().Get("period"))
	if err != nil {
		respondDashboardError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(bucket)
}

func (h *DashboardHandler) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveDocumentExport("dashboard", result, time.Since(start))
	}()

	bucket, err := h.service.Build(r.Context(), r.URL.Query().Get("period"))
	if err != nil {
		result = metrics.ResultError
		respondDashboardError(w, err)
		return
	}
	data, err := reporting.BuildRevenueXLSX(bucket)
	if err != nil {
		result = metrics.ResultError
		http.Error(w, "export xlsx error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="dashboard.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func respondDashboardError(w http.ResponseWriter, err error) {
	if errors.Is(err, reporting.ErrUnknownPeriod) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	http.Error(w, "internal error", http.StatusInternalServerError)
}
