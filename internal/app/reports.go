package service

import (
	"context"
	"encoding/json"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/fairdesk/fairdesk/internal/adapters/cache"
	"github.com/fairdesk/fairdesk/pkg/logger"
	"github.com/fairdesk/fairdesk/pkg/metrics"
)

// Report names, used for cache keys and metrics labels.
const (
	ReportDashboard = "dashboard"
	ReportLocations = "location_report"
)

// Overview bundles the dashboard statistics and the location report.
type Overview struct {
	Stats     json.RawMessage `json:"stats"`
	Locations json.RawMessage `json:"locations"`
}

// Dashboard returns the user statistics report for the token's user.
func (s *Service) Dashboard(ctx context.Context, token string) (json.RawMessage, error) {
	u, err := s.authenticate(ctx, token)
	if err != nil {
		return nil, err
	}
	return s.cachedReport(ctx, ReportDashboard, u.ID, func(ctx context.Context) (json.RawMessage, error) {
		return s.backend.UserStats(ctx, token)
	})
}

// LocationReport returns the attendee location report for the token's user.
func (s *Service) LocationReport(ctx context.Context, token string) (json.RawMessage, error) {
	u, err := s.authenticate(ctx, token)
	if err != nil {
		return nil, err
	}
	return s.cachedReport(ctx, ReportLocations, u.ID, func(ctx context.Context) (json.RawMessage, error) {
		return s.backend.LocationReport(ctx, token)
	})
}

// Overview fetches both reports concurrently. The token is verified once.
func (s *Service) Overview(ctx context.Context, token string) (Overview, error) {
	u, err := s.authenticate(ctx, token)
	if err != nil {
		return Overview{}, err
	}

	var out Overview
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		out.Stats, err = s.cachedReport(gCtx, ReportDashboard, u.ID, func(ctx context.Context) (json.RawMessage, error) {
			return s.backend.UserStats(ctx, token)
		})
		return err
	})

	g.Go(func() error {
		var err error
		out.Locations, err = s.cachedReport(gCtx, ReportLocations, u.ID, func(ctx context.Context) (json.RawMessage, error) {
			return s.backend.LocationReport(ctx, token)
		})
		return err
	})

	if err := g.Wait(); err != nil {
		return Overview{}, err
	}
	return out, nil
}

// cachedReport serves report from the cache when possible and collapses
// concurrent fills for the same key into one backend call. Each caller waits
// on its own ctx; the fill itself runs detached under fillTimeout.
func (s *Service) cachedReport(
	ctx context.Context,
	report, userID string,
	fetch func(context.Context) (json.RawMessage, error),
) (json.RawMessage, error) {
	key := cache.Key(s.cachePrefix, report, userID)

	ch := s.sf.DoChan(key, func() (interface{}, error) {
		fillCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.fillTimeout)
		defer cancel()

		if s.cache != nil {
			cached, err := s.cache.Get(fillCtx, key)
			if err == nil {
				metrics.RecordCacheHit(report)
				return json.RawMessage(cached), nil
			}
			if !errors.Is(err, cache.ErrCacheMiss) {
				s.logger.Warn(fillCtx, "cache get error", logger.String("report", report), logger.Error(err))
			}
			metrics.RecordCacheMiss(report)
		}

		raw, err := fetch(fillCtx)
		if err != nil {
			return nil, err
		}

		if s.cache != nil {
			if err := s.cache.Set(fillCtx, key, raw, s.cacheTTL); err != nil {
				s.logger.Warn(fillCtx, "cache set error", logger.String("report", report), logger.Error(err))
			}
		}
		return raw, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(json.RawMessage), nil
	}
}
