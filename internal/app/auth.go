package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fairdesk/fairdesk/internal/adapters/backend"
	"github.com/fairdesk/fairdesk/pkg/logger"
)

// AdminUser is the signed-in admin as exposed to clients.
type AdminUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// Login is the result of a successful admin sign-in.
type Login struct {
	User         AdminUser
	AccessToken  string
	RefreshToken string
}

// Login signs in with email and password and requires the admin role.
func (s *Service) Login(ctx context.Context, email, password string) (Login, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return Login{}, fmt.Errorf("%w: email and password required", ErrInvalidInput)
	}

	sess, err := s.backend.SignIn(ctx, email, password)
	if err != nil {
		if backend.IsAuth(err) {
			s.logger.Info(ctx, "login rejected", logger.String("email", email))
			return Login{}, fmt.Errorf("%w: %v", ErrUnauthorized, err)
		}
		return Login{}, err
	}

	admin, err := s.requireAdmin(ctx, sess.User.ID, email)
	if err != nil {
		return Login{}, err
	}
	admin.Email = sess.User.Email
	if admin.Email == "" {
		admin.Email = email
	}

	s.logger.Info(ctx, "admin logged in", logger.String("user_id", admin.ID))
	return Login{User: admin, AccessToken: sess.AccessToken, RefreshToken: sess.RefreshToken}, nil
}

// Session verifies token and requires the admin role.
func (s *Service) Session(ctx context.Context, token string) (AdminUser, error) {
	u, err := s.authenticate(ctx, token)
	if err != nil {
		return AdminUser{}, err
	}
	admin, err := s.requireAdmin(ctx, u.ID, u.Email)
	if err != nil {
		return AdminUser{}, err
	}
	admin.Email = u.Email
	return admin, nil
}

// Logout revokes token.
func (s *Service) Logout(ctx context.Context, token string) error {
	if err := s.backend.SignOut(ctx, token); err != nil {
		if errors.Is(err, backend.ErrMissingToken) || backend.IsAuth(err) {
			return fmt.Errorf("%w: %v", ErrUnauthorized, err)
		}
		return err
	}
	return nil
}

// authenticate resolves token to its user, mapping rejections to ErrUnauthorized.
func (s *Service) authenticate(ctx context.Context, token string) (backend.AuthUser, error) {
	u, err := s.backend.GetUser(ctx, token)
	if err != nil {
		if errors.Is(err, backend.ErrMissingToken) || backend.IsAuth(err) {
			return backend.AuthUser{}, fmt.Errorf("%w: %v", ErrUnauthorized, err)
		}
		return backend.AuthUser{}, err
	}
	return u, nil
}

func (s *Service) requireAdmin(ctx context.Context, userID, email string) (AdminUser, error) {
	p, err := s.backend.Profile(ctx, email)
	if err != nil {
		if errors.Is(err, backend.ErrProfileNotFound) {
			return AdminUser{}, fmt.Errorf("%w: no profile for user", ErrUnauthorized)
		}
		return AdminUser{}, err
	}
	if p.Role != adminRole {
		s.logger.Warn(ctx, "non-admin access attempt", logger.String("user_id", userID), logger.String("role", p.Role))
		return AdminUser{}, ErrForbidden
	}
	return AdminUser{ID: userID, Email: p.Email, Name: p.DisplayName(), Role: p.Role}, nil
}
