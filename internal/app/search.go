package service

import (
	"context"
	"errors"
	"time"

	"github.com/fairdesk/fairdesk/internal/domain/attendee"
	"github.com/fairdesk/fairdesk/internal/domain/contact"
	"github.com/fairdesk/fairdesk/pkg/logger"
	"github.com/fairdesk/fairdesk/pkg/metrics"
)

// Lookup outcomes as recorded in metrics.
const (
	outcomeFound        = "found"
	outcomeNotFound     = "not_found"
	outcomeInvalid      = "invalid"
	outcomeBackendError = "backend_error"
)

// Search resolves c to an attendee. Errors are the attendee package's:
// *attendee.ValidationError, attendee.ErrNotFound or *attendee.BackendError.
func (s *Service) Search(ctx context.Context, c attendee.Criterion) (attendee.Result, error) {
	start := time.Now()
	res, err := s.resolver.Resolve(ctx, c)
	metrics.RecordLookupLatency(float64(time.Since(start).Microseconds()) / 1000.0)

	searchType := string(res.SearchType)
	if searchType == "" {
		searchType = "none"
	}
	if res.UsedFallback {
		metrics.RecordLookupFallback()
	}

	fields := []logger.Field{
		logger.String("search_type", searchType),
		logger.Int("attempts", res.Attempts),
		logger.Bool("fallback", res.UsedFallback),
	}
	switch {
	case err == nil:
		metrics.RecordLookup(searchType, outcomeFound)
		s.logger.Info(ctx, "attendee found", fields...)
	case errors.Is(err, attendee.ErrNotFound):
		metrics.RecordLookup(searchType, outcomeNotFound)
		s.logger.Info(ctx, "attendee not found", fields...)
	case attendee.IsValidation(err):
		metrics.RecordLookup(searchType, outcomeInvalid)
		s.logger.Debug(ctx, "attendee search rejected", append(fields, logger.Error(err))...)
	default:
		metrics.RecordLookup(searchType, outcomeBackendError)
		s.logger.Error(ctx, "attendee lookup failed", append(fields, logger.Error(err))...)
	}
	return res, err
}

// ExtractContact parses a QR payload without touching the backend.
func (s *Service) ExtractContact(raw string) contact.Contact {
	return contact.Extract(raw)
}
