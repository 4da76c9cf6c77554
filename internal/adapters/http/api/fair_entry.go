package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/fairdesk/fairdesk/pkg/logger"
)

// FairEntryDependencies defines the fair entry operation.
type FairEntryDependencies interface {
	RecordFairEntry(ctx context.Context, userID string) (json.RawMessage, error)
}

// FairEntryHandler handles fair entry requests.
type FairEntryHandler struct {
	deps FairEntryDependencies
	log  logger.Logger
}

// NewFairEntryHandler creates a new fair entry handler.
func NewFairEntryHandler(deps FairEntryDependencies, log logger.Logger) *FairEntryHandler {
	return &FairEntryHandler{deps: deps, log: log}
}

type fairEntryRequest struct {
	UserID string `json:"p_user_id" validate:"required,notblank"`
}

// HandleRecord handles POST /api/fair-entry.
func (h *FairEntryHandler) HandleRecord(w http.ResponseWriter, r *http.Request) {
	const op = "api.fair_entry"
	var req fairEntryRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeValidation, WrapKind(op, ErrBadRequest, err))
		return
	}
	data, err := h.deps.RecordFairEntry(r.Context(), req.UserID)
	if err != nil {
		writeServiceError(w, r, h.log, op, err)
		return
	}
	writeJSON(w, http.StatusOK, dataResponse{Success: true, Data: data})
}
