// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fairdesk/fairdesk/internal/adapters/backend"
	service "github.com/fairdesk/fairdesk/internal/app"
	"github.com/fairdesk/fairdesk/pkg/logger"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	SearchDependencies
	AuthDependencies
	ReportDependencies
	CompanyDependencies
	FairEntryDependencies
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler    *HealthHandler
	usersHandler     *UsersHandler
	authHandler      *AuthHandler
	reportsHandler   *ReportsHandler
	companiesHandler *CompaniesHandler
	entryHandler     *FairEntryHandler
}

// ServerOption configures a Server.
type ServerOption func(*serverOptions)

type serverOptions struct {
	log logger.Logger
}

// WithLogger sets the logger handlers report failures to.
func WithLogger(l logger.Logger) ServerOption {
	return func(o *serverOptions) {
		if l != nil {
			o.log = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...ServerOption) *Server {
	o := serverOptions{log: logger.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Server{
		healthHandler:    NewHealthHandler(),
		usersHandler:     NewUsersHandler(deps, o.log),
		authHandler:      NewAuthHandler(deps, o.log),
		reportsHandler:   NewReportsHandler(deps, o.log),
		companiesHandler: NewCompaniesHandler(deps, o.log),
		entryHandler:     NewFairEntryHandler(deps, o.log),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.Handle("GET /metrics", MetricsHandler())

	mux.HandleFunc("GET /api/users", MetricsMiddleware(s.usersHandler.HandleSearch, "users"))
	mux.HandleFunc("POST /api/test-vcard", MetricsMiddleware(s.usersHandler.HandleTestVCard, "test_vcard"))

	mux.HandleFunc("POST /api/auth/login", MetricsMiddleware(s.authHandler.HandleLogin, "auth_login"))
	mux.HandleFunc("GET /api/auth/session", MetricsMiddleware(s.authHandler.HandleSession, "auth_session"))
	mux.HandleFunc("POST /api/auth/logout", MetricsMiddleware(s.authHandler.HandleLogout, "auth_logout"))
	mux.HandleFunc("POST /api/auth/create-user", MetricsMiddleware(s.authHandler.HandleCreateUser, "auth_create_user"))

	mux.HandleFunc("GET /api/dashboard", MetricsMiddleware(s.reportsHandler.HandleDashboard, "dashboard"))
	mux.HandleFunc("GET /api/location-report", MetricsMiddleware(s.reportsHandler.HandleLocationReport, "location_report"))
	mux.HandleFunc("GET /api/overview", MetricsMiddleware(s.reportsHandler.HandleOverview, "overview"))

	mux.HandleFunc("POST /api/companies", MetricsMiddleware(s.companiesHandler.HandleList, "companies"))
	mux.HandleFunc("GET /api/companies/{id}", MetricsMiddleware(s.companiesHandler.HandleGet, "company"))
	mux.HandleFunc("PUT /api/companies/{id}", MetricsMiddleware(s.companiesHandler.HandleUpdate, "company_update"))

	mux.HandleFunc("POST /api/fair-entry", MetricsMiddleware(s.entryHandler.HandleRecord, "fair_entry"))
}

// Error codes returned in errorResponse.Code.
const (
	codeValidation   = "validation_error"
	codeNotFound     = "not_found"
	codeBackend      = "backend_error"
	codeRejected     = "upstream_rejected"
	codeUnauthorized = "unauthorized"
	codeForbidden    = "forbidden"
	codeInternal     = "internal_error"
)

type errorResponse struct {
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type dataResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Success: false, Code: code, Message: msg})
}

// writeServiceError translates service and backend errors to HTTP statuses.
// Unexpected failures are logged and answered with a generic message.
func writeServiceError(w http.ResponseWriter, r *http.Request, log logger.Logger, op string, err error) {
	var be *backend.Error
	switch {
	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, ErrBadRequest):
		writeError(w, http.StatusBadRequest, codeValidation, err)
	case errors.Is(err, service.ErrUnauthorized), backend.IsAuth(err):
		writeError(w, http.StatusUnauthorized, codeUnauthorized, err)
	case errors.Is(err, service.ErrForbidden):
		writeError(w, http.StatusForbidden, codeForbidden, err)
	case errors.Is(err, service.ErrCompanyNotFound):
		writeError(w, http.StatusNotFound, codeNotFound, err)
	case errors.As(err, &be):
		if be.Status >= http.StatusBadRequest && be.Status < http.StatusInternalServerError {
			writeError(w, be.Status, codeRejected, errors.New(be.Message))
			return
		}
		log.Error(r.Context(), "backend call failed", logger.String("op", op), logger.Error(err))
		writeError(w, http.StatusBadGateway, codeBackend, errors.New("backend unavailable"))
	default:
		log.Error(r.Context(), "request failed", logger.String("op", op), logger.Error(err))
		writeError(w, http.StatusInternalServerError, codeInternal, ErrInternal)
	}
}

// requireBearer writes a 401 and reports false when the request carries no
// bearer token.
func requireBearer(w http.ResponseWriter, r *http.Request, op string) (string, bool) {
	token, ok := bearerToken(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, codeUnauthorized, NewKind(op, ErrUnauthorized))
		return "", false
	}
	return token, true
}
