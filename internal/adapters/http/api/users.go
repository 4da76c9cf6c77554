package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/fairdesk/fairdesk/internal/domain/attendee"
	"github.com/fairdesk/fairdesk/internal/domain/contact"
	"github.com/fairdesk/fairdesk/pkg/logger"
)

// SearchDependencies defines the attendee search operations.
type SearchDependencies interface {
	Search(ctx context.Context, c attendee.Criterion) (attendee.Result, error)
	ExtractContact(raw string) contact.Contact
}

// UsersHandler handles attendee search requests.
type UsersHandler struct {
	deps SearchDependencies
	log  logger.Logger
}

// NewUsersHandler creates a new users handler.
func NewUsersHandler(deps SearchDependencies, log logger.Logger) *UsersHandler {
	return &UsersHandler{deps: deps, log: log}
}

type searchResponse struct {
	Success      bool            `json:"success"`
	Message      string          `json:"message"`
	User         attendee.Record `json:"user"`
	SearchType   string          `json:"searchType"`
	UsedFallback bool            `json:"usedFallback"`
}

// HandleSearch handles GET /api/users?qrCode|phone|email|fullName.
//
// 200 found, 400 validation, 404 not found, 502 backend failure. The code
// field tells validation and not-found apart.
func (h *UsersHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	c := attendee.Criterion{
		QRPayload: q.Get("qrCode"),
		Phone:     q.Get("phone"),
		Email:     q.Get("email"),
		FullName:  q.Get("fullName"),
	}

	res, err := h.deps.Search(r.Context(), c)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, searchResponse{
			Success:      true,
			Message:      "user found",
			User:         res.Record,
			SearchType:   string(res.SearchType),
			UsedFallback: res.UsedFallback,
		})
	case errors.Is(err, attendee.ErrNotFound):
		writeError(w, http.StatusNotFound, codeNotFound, errors.New("user not found"))
	case attendee.IsValidation(err):
		writeError(w, http.StatusBadRequest, codeValidation, err)
	default:
		h.log.Error(r.Context(), "attendee search failed", logger.Error(err))
		writeError(w, http.StatusBadGateway, codeBackend, errors.New("lookup service unavailable"))
	}
}

type testVCardRequest struct {
	QRContent string `json:"qrContent"`
}

type testVCardResponse struct {
	Success         bool              `json:"success"`
	Result          contact.Contact   `json:"result"`
	Fields          map[string]string `json:"fields"`
	OriginalContent string            `json:"originalContent"`
}

// HandleTestVCard handles POST /api/test-vcard, a debugging aid that shows
// what the extractor sees in a QR payload.
func (h *UsersHandler) HandleTestVCard(w http.ResponseWriter, r *http.Request) {
	const op = "api.test_vcard"
	var req testVCardRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeValidation, WrapKind(op, ErrBadRequest, err))
		return
	}
	writeJSON(w, http.StatusOK, testVCardResponse{
		Success:         true,
		Result:          h.deps.ExtractContact(req.QRContent),
		Fields:          contact.Fields(req.QRContent),
		OriginalContent: req.QRContent,
	})
}
