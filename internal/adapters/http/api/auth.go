package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/fairdesk/fairdesk/internal/adapters/backend"
	service "github.com/fairdesk/fairdesk/internal/app"
	"github.com/fairdesk/fairdesk/pkg/logger"
)

// AuthDependencies defines admin authentication and account operations.
type AuthDependencies interface {
	Login(ctx context.Context, email, password string) (service.Login, error)
	Session(ctx context.Context, token string) (service.AdminUser, error)
	Logout(ctx context.Context, token string) error
	CreateUser(ctx context.Context, token string, u backend.NewUser) (json.RawMessage, error)
}

// AuthHandler handles admin authentication requests.
type AuthHandler struct {
	deps AuthDependencies
	log  logger.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(deps AuthDependencies, log logger.Logger) *AuthHandler {
	return &AuthHandler{deps: deps, log: log}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,notblank"`
	Password string `json:"password" validate:"required"`
}

type sessionTokens struct {
	AccessToken  string             `json:"access_token"`
	RefreshToken string             `json:"refresh_token,omitempty"`
	User         *service.AdminUser `json:"user,omitempty"`
}

type loginResponse struct {
	Success bool              `json:"success"`
	User    service.AdminUser `json:"user"`
	Session sessionTokens     `json:"session"`
}

// HandleLogin handles POST /api/auth/login.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	const op = "api.login"
	var req loginRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeValidation, WrapKind(op, ErrBadRequest, err))
		return
	}
	login, err := h.deps.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, h.log, op, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{
		Success: true,
		User:    login.User,
		Session: sessionTokens{AccessToken: login.AccessToken, RefreshToken: login.RefreshToken},
	})
}

type sessionResponse struct {
	Success bool              `json:"success"`
	Session sessionTokens     `json:"session"`
	User    service.AdminUser `json:"user"`
}

// HandleSession handles GET /api/auth/session.
func (h *AuthHandler) HandleSession(w http.ResponseWriter, r *http.Request) {
	const op = "api.session"
	token, ok := requireBearer(w, r, op)
	if !ok {
		return
	}
	user, err := h.deps.Session(r.Context(), token)
	if err != nil {
		writeServiceError(w, r, h.log, op, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{
		Success: true,
		Session: sessionTokens{AccessToken: token, User: &user},
		User:    user,
	})
}

type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// HandleLogout handles POST /api/auth/logout.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	const op = "api.logout"
	token, ok := requireBearer(w, r, op)
	if !ok {
		return
	}
	if err := h.deps.Logout(r.Context(), token); err != nil {
		writeServiceError(w, r, h.log, op, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Success: true, Message: "logged out"})
}

type createUserRequest struct {
	Email               string  `json:"email" validate:"required,email"`
	Password            string  `json:"password" validate:"required,min=6"`
	FullName            string  `json:"full_name" validate:"required,notblank"`
	Title               string  `json:"title"`
	Institution         string  `json:"institution"`
	PhoneNumber         string  `json:"phone_number"`
	IsInEducationSector bool    `json:"is_in_education_sector"`
	EducationSectorType *string `json:"education_sector_type"`
	UserState           string  `json:"user_state"`
	UserProvince        string  `json:"user_province"`
}

// HandleCreateUser handles POST /api/auth/create-user.
func (h *AuthHandler) HandleCreateUser(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_user"
	token, ok := requireBearer(w, r, op)
	if !ok {
		return
	}
	var req createUserRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeValidation, WrapKind(op, ErrBadRequest, err))
		return
	}
	data, err := h.deps.CreateUser(r.Context(), token, backend.NewUser(req))
	if err != nil {
		writeServiceError(w, r, h.log, op, err)
		return
	}
	writeJSON(w, http.StatusOK, dataResponse{Success: true, Data: data})
}
