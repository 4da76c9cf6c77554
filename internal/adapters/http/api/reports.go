package api

import (
	"context"
	"encoding/json"
	"net/http"

	service "github.com/fairdesk/fairdesk/internal/app"
	"github.com/fairdesk/fairdesk/pkg/logger"
)

// ReportDependencies defines the aggregate statistics operations.
type ReportDependencies interface {
	Dashboard(ctx context.Context, token string) (json.RawMessage, error)
	LocationReport(ctx context.Context, token string) (json.RawMessage, error)
	Overview(ctx context.Context, token string) (service.Overview, error)
}

// ReportsHandler handles statistics requests.
type ReportsHandler struct {
	deps ReportDependencies
	log  logger.Logger
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(deps ReportDependencies, log logger.Logger) *ReportsHandler {
	return &ReportsHandler{deps: deps, log: log}
}

// HandleDashboard handles GET /api/dashboard.
func (h *ReportsHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "api.dashboard", func(ctx context.Context, token string) (any, error) {
		return h.deps.Dashboard(ctx, token)
	})
}

// HandleLocationReport handles GET /api/location-report.
func (h *ReportsHandler) HandleLocationReport(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "api.location_report", func(ctx context.Context, token string) (any, error) {
		return h.deps.LocationReport(ctx, token)
	})
}

// HandleOverview handles GET /api/overview.
func (h *ReportsHandler) HandleOverview(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "api.overview", func(ctx context.Context, token string) (any, error) {
		return h.deps.Overview(ctx, token)
	})
}

func (h *ReportsHandler) serve(
	w http.ResponseWriter,
	r *http.Request,
	op string,
	fetch func(ctx context.Context, token string) (any, error),
) {
	token, ok := requireBearer(w, r, op)
	if !ok {
		return
	}
	data, err := fetch(r.Context(), token)
	if err != nil {
		writeServiceError(w, r, h.log, op, err)
		return
	}
	writeJSON(w, http.StatusOK, dataResponse{Success: true, Data: data})
}
