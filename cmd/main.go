package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fairdesk/fairdesk/internal/adapters/backend"
	"github.com/fairdesk/fairdesk/internal/adapters/cache"
	"github.com/fairdesk/fairdesk/internal/adapters/http/api"
	"github.com/fairdesk/fairdesk/internal/adapters/http/swagger"
	app "github.com/fairdesk/fairdesk/internal/app"
	"github.com/fairdesk/fairdesk/internal/config"
	"github.com/fairdesk/fairdesk/pkg/logger"
	"github.com/fairdesk/fairdesk/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 30 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
)

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		// Logger isn't configured until the format is known.
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	log := logger.Get()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	if err := run(ctx, cfg, log); err != nil {
		log.Error(ctx, "fairdesk stopped with error", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	configureMetrics(cfg)
	metrics.RegisterRuntimeCollectors()

	svc, closeCache, err := newService(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeCache()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newHandler(svc, log),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return err
	}
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
		return err
	}
	log.Info(ctx, "server stopped")
	return nil
}

// configureMetrics applies the namespace and optional site label from cfg.
func configureMetrics(cfg *config.Config) {
	opts := []metrics.Option{metrics.WithNamespace(cfg.MetricsNamespace)}
	if cfg.MetricsSite != "" {
		opts = append(opts, metrics.WithConstLabels(map[string]string{"site": cfg.MetricsSite}))
	}
	metrics.Configure(opts...)
}

// newService builds the backend client, the optional Redis stats cache and the
// application service. The returned func releases the cache.
func newService(ctx context.Context, cfg *config.Config, log logger.Logger) (*app.Service, func(), error) {
	client := backend.New(backend.Config{
		BaseURL:    cfg.BackendURL,
		AnonKey:    cfg.BackendAnonKey,
		ServiceKey: cfg.BackendServiceKey,
		Lang:       cfg.LookupLang,
		Timeout:    cfg.BackendTimeout(),
	}, backend.WithLogger(log.Named("backend")))

	opts := []app.Option{
		app.WithLogger(log.Named("service")),
		app.WithCacheTTL(cfg.StatsCacheTTL()),
	}
	closeCache := func() {}

	if cfg.RedisAddr != "" && cfg.StatsCacheTTLSec > 0 {
		rc, err := cache.NewRedisStatsCache(ctx, cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, nil, err
		}
		log.Info(ctx, "stats cache enabled", logger.String("redis_addr", cfg.RedisAddr))
		opts = append(opts, app.WithCache(rc))
		closeCache = func() {
			if err := rc.Close(); err != nil {
				log.Warn(ctx, "closing stats cache", logger.Error(err))
			}
		}
	}

	return app.New(client, opts...), closeCache, nil
}

// newHandler registers docs and API routes and wraps them with request ids.
func newHandler(svc api.Dependencies, log logger.Logger) http.Handler {
	mux := http.NewServeMux()
	swagger.Register(mux)
	api.NewServer(svc, api.WithLogger(log.Named("api"))).Register(mux)
	return api.RequestIDMiddleware(mux)
}
