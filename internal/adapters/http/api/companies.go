package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/fairdesk/fairdesk/internal/adapters/backend"
	"github.com/fairdesk/fairdesk/pkg/logger"
)

// CompanyDependencies defines the company directory operations.
type CompanyDependencies interface {
	Companies(ctx context.Context, lang string) (json.RawMessage, error)
	Company(ctx context.Context, id int64, lang string) (json.RawMessage, error)
	UpdateCompany(ctx context.Context, token string, id int64, u backend.CompanyUpdate) (json.RawMessage, error)
}

// CompaniesHandler handles company requests.
type CompaniesHandler struct {
	deps CompanyDependencies
	log  logger.Logger
}

// NewCompaniesHandler creates a new companies handler.
func NewCompaniesHandler(deps CompanyDependencies, log logger.Logger) *CompaniesHandler {
	return &CompaniesHandler{deps: deps, log: log}
}

type listCompaniesRequest struct {
	Lang string `json:"p_lang" validate:"required,notblank"`
}

type listCompaniesResponse struct {
	Success   bool            `json:"success"`
	Code      string          `json:"code"`
	Message   string          `json:"message"`
	Companies json.RawMessage `json:"companies"`
}

// HandleList handles POST /api/companies.
func (h *CompaniesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.companies"
	var req listCompaniesRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeValidation, WrapKind(op, ErrBadRequest, err))
		return
	}
	companies, err := h.deps.Companies(r.Context(), req.Lang)
	if err != nil {
		writeServiceError(w, r, h.log, op, err)
		return
	}
	writeJSON(w, http.StatusOK, listCompaniesResponse{
		Success:   true,
		Code:      "SUCCESS",
		Message:   "Companies fetched successfully.",
		Companies: companies,
	})
}

type companyResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Company json.RawMessage `json:"company"`
}

// HandleGet handles GET /api/companies/{id}?lang=.
func (h *CompaniesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	const op = "api.company"
	id, ok := companyID(w, r, op)
	if !ok {
		return
	}
	company, err := h.deps.Company(r.Context(), id, r.URL.Query().Get("lang"))
	if err != nil {
		writeServiceError(w, r, h.log, op, err)
		return
	}
	writeJSON(w, http.StatusOK, companyResponse{Success: true, Company: company})
}

type updateCompanyRequest struct {
	Name               string `json:"name" validate:"required,notblank"`
	Description        string `json:"description"`
	LogoURL            string `json:"logo_url"`
	WebsiteURL         string `json:"website_url"`
	RepresentativeInfo string `json:"representative_info"`
	AreaOfActivity     string `json:"area_of_activity"`
	StandNumber        string `json:"stand_number"`
	SponsorshipLevel   string `json:"sponsorship_level"`
	PhoneNumber        string `json:"phone_number"`
	Email              string `json:"email" validate:"omitempty,email"`
	Address            string `json:"address"`
	IsActive           *bool  `json:"is_active"`
}

// HandleUpdate handles PUT /api/companies/{id}.
func (h *CompaniesHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	const op = "api.company_update"
	token, ok := requireBearer(w, r, op)
	if !ok {
		return
	}
	id, ok := companyID(w, r, op)
	if !ok {
		return
	}
	var req updateCompanyRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeValidation, WrapKind(op, ErrBadRequest, err))
		return
	}
	company, err := h.deps.UpdateCompany(r.Context(), token, id, backend.CompanyUpdate(req))
	if err != nil {
		writeServiceError(w, r, h.log, op, err)
		return
	}
	writeJSON(w, http.StatusOK, companyResponse{Success: true, Message: "company updated", Company: company})
}

func companyID(w http.ResponseWriter, r *http.Request, op string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, codeValidation, WrapKind(op, ErrBadRequest, errors.New("company id must be a positive integer")))
		return 0, false
	}
	return id, true
}
