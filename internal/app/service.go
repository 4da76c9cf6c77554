// Package service composes the attendee resolver, the backend client and the
// stats cache into the operations served by the HTTP API.
package service

import (
	"context"
	"encoding/json"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/fairdesk/fairdesk/internal/adapters/backend"
	"github.com/fairdesk/fairdesk/internal/adapters/cache"
	"github.com/fairdesk/fairdesk/internal/domain/attendee"
	"github.com/fairdesk/fairdesk/pkg/logger"
)

const (
	defaultCacheTTL    = 30 * time.Second
	defaultCachePrefix = "fairdesk"
	defaultFillTimeout = 15 * time.Second
	defaultLang        = "tr"
	adminRole          = "admin"
)

// Backend is the subset of the backend client the service relies on.
type Backend interface {
	attendee.Lookup

	SignIn(ctx context.Context, email, password string) (backend.Session, error)
	GetUser(ctx context.Context, token string) (backend.AuthUser, error)
	Profile(ctx context.Context, email string) (backend.Profile, error)
	SignOut(ctx context.Context, token string) error

	UserStats(ctx context.Context, token string) (json.RawMessage, error)
	LocationReport(ctx context.Context, token string) (json.RawMessage, error)

	Companies(ctx context.Context, lang string) (json.RawMessage, error)
	CompanyDetails(ctx context.Context, id int64, lang string) (json.RawMessage, error)
	UpdateCompany(ctx context.Context, token string, id int64, u backend.CompanyUpdate) (json.RawMessage, error)

	CreateUser(ctx context.Context, token string, u backend.NewUser) (json.RawMessage, error)
	RecordFairEntry(ctx context.Context, userID string) (json.RawMessage, error)
}

// Service implements the API dependencies.
type Service struct {
	backend  Backend
	resolver *attendee.Resolver

	cache       cache.StatsCache
	cacheTTL    time.Duration
	cachePrefix string
	fillTimeout time.Duration
	sf          singleflight.Group

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithCache enables report caching.
func WithCache(c cache.StatsCache) Option {
	return func(s *Service) {
		s.cache = c
	}
}

// WithCacheTTL sets how long cached reports live.
func WithCacheTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.cacheTTL = ttl
		}
	}
}

// WithCachePrefix sets the key prefix for cached reports.
func WithCachePrefix(prefix string) Option {
	return func(s *Service) {
		if prefix != "" {
			s.cachePrefix = prefix
		}
	}
}

// WithFillTimeout bounds a shared report fill. The fill outlives the caller
// that started it so other waiters on the same key are not cancelled with it.
func WithFillTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.fillTimeout = d
		}
	}
}

// New constructs a Service on top of b.
func New(b Backend, opts ...Option) *Service {
	s := &Service{
		backend:     b,
		resolver:    attendee.NewResolver(b),
		cacheTTL:    defaultCacheTTL,
		cachePrefix: defaultCachePrefix,
		fillTimeout: defaultFillTimeout,
		logger:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}
