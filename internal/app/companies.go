package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/fairdesk/fairdesk/internal/adapters/backend"
	"github.com/fairdesk/fairdesk/pkg/logger"
)

// Companies lists companies in lang.
func (s *Service) Companies(ctx context.Context, lang string) (json.RawMessage, error) {
	if strings.TrimSpace(lang) == "" {
		return nil, fmt.Errorf("%w: p_lang required", ErrInvalidInput)
	}
	return s.backend.Companies(ctx, lang)
}

// Company returns one company in lang, defaulting to Turkish.
func (s *Service) Company(ctx context.Context, id int64, lang string) (json.RawMessage, error) {
	if strings.TrimSpace(lang) == "" {
		lang = defaultLang
	}
	raw, err := s.backend.CompanyDetails(ctx, id, lang)
	if errors.Is(err, backend.ErrCompanyNotFound) {
		return nil, ErrCompanyNotFound
	}
	return raw, err
}

// UpdateCompany saves u for company id on behalf of the token's admin.
func (s *Service) UpdateCompany(ctx context.Context, token string, id int64, u backend.CompanyUpdate) (json.RawMessage, error) {
	raw, err := s.backend.UpdateCompany(ctx, token, id, u)
	if err != nil {
		return nil, authErr(err)
	}
	s.logger.Info(ctx, "company updated", logger.Any("company_id", id))
	return raw, nil
}

// CreateUser registers an attendee account on behalf of the token's admin.
func (s *Service) CreateUser(ctx context.Context, token string, u backend.NewUser) (json.RawMessage, error) {
	raw, err := s.backend.CreateUser(ctx, token, u)
	if err != nil {
		return nil, authErr(err)
	}
	s.logger.Info(ctx, "attendee account created", logger.Bool("education_sector", u.IsInEducationSector))
	return raw, nil
}

// RecordFairEntry logs a fair entry for userID.
func (s *Service) RecordFairEntry(ctx context.Context, userID string) (json.RawMessage, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: p_user_id required", ErrInvalidInput)
	}
	raw, err := s.backend.RecordFairEntry(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "fair entry recorded", logger.String("user_id", userID))
	return raw, nil
}

func authErr(err error) error {
	if errors.Is(err, backend.ErrMissingToken) {
		return fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	return err
}
