// Package main is the entrypoint for the loyalty points API server.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"net/netip"
	"net/url"
	"os"
	"os/signal"
	"regexp"
	"strings"
	"syscall"

	"github.com/go-chi/chi/v5"

	"github.com/pointkeep/pointkeep/docs"
	"github.com/pointkeep/pointkeep/internal/cache"
	"github.com/pointkeep/pointkeep/internal/config"
	"github.com/pointkeep/pointkeep/internal/handler"
	"github.com/pointkeep/pointkeep/internal/metrics"
	"github.com/pointkeep/pointkeep/internal/middleware"
	"github.com/pointkeep/pointkeep/internal/model"
	"github.com/pointkeep/pointkeep/internal/ratelimit"
	"github.com/pointkeep/pointkeep/internal/server"
	"github.com/pointkeep/pointkeep/internal/service"
	"github.com/pointkeep/pointkeep/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	// Redis backs the shared rate limiter only.
	var rdb *cache.Redis
	if cfg.UsesRedis() {
		rdb, err = cache.NewRedis(ctx, cfg.RedisURL)
		if err != nil {
			logger.Error(
				"failed to connect to Redis",
				slog.String("error", sanitizeError(err, cfg.RedisURL)),
				slog.String("redis_url", redactURL(cfg.RedisURL)),
			)
			os.Exit(1)
		}
		logger.Info("connected to Redis", slog.String("redis_url", redactURL(cfg.RedisURL)))
	}

	router, err := buildApp(ctx, cfg, logger, rdb)
	if err != nil {
		logger.Error("failed to build app", "error", err)
		os.Exit(1)
	}

	srv := server.New(router, server.Config{
		Port:            cfg.AppPort,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger)
	if rdb != nil {
		srv.OnShutdown("redis", func(context.Context) error { return rdb.Close() })
	}

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"rate_limit_backend", cfg.RateLimitBackend,
		"metrics_backend", cfg.MetricsBackend,
	)

	if err := srv.Run(ctx); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h).With(slog.String("service", "pointkeep"))
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// buildApp wires the store, cache, limiter, metrics and service into a
// router. rdb may be nil when no component needs Redis.
func buildApp(ctx context.Context, cfg *config.Config, logger *slog.Logger, rdb *cache.Redis) (http.Handler, error) {
	trusted, err := cfg.TrustedProxyPrefixes()
	if err != nil {
		return nil, err
	}
	apiDocs, err := handler.NewDocsHandler(ctx, docs.OpenAPI)
	if err != nil {
		return nil, err
	}

	recorder, metricsHandler := newMetrics(cfg)

	userStore := store.New()
	userCache := cache.NewTTL[*model.User](cfg.UserCacheTTL)
	ledger := service.NewLedgerService(userStore, userCache, recorder, logger)

	var redisCheck handler.HealthChecker
	if rdb != nil {
		redisCheck = rdb
	}

	return setupRouter(routerDeps{
		cfg:            cfg,
		logger:         logger,
		trustedProxies: trusted,
		root:           handler.New(),
		health:         handler.NewHealthHandler(userStore, redisCheck),
		loyalty:        handler.NewLoyaltyHandler(ledger, recorder, logger),
		docs:           apiDocs,
		metrics:        metricsHandler,
		limiter:        newLimiter(cfg, rdb, logger),
		recorder:       recorder,
	}), nil
}

// newMetrics returns the configured recorder and the handler serving it.
func newMetrics(cfg *config.Config) (metrics.Recorder, http.Handler) {
	if cfg.MetricsBackend == config.MetricsBackendMemory {
		recorder := metrics.NewInMemory()
		return recorder, http.HandlerFunc(handler.NewMetricsHandler(recorder).Metrics)
	}
	recorder := metrics.NewPrometheus()
	return recorder, recorder.Handler()
}

// newLimiter returns the configured limiter, or nil when rate limiting is off.
func newLimiter(cfg *config.Config, rdb *cache.Redis, logger *slog.Logger) ratelimit.Limiter {
	if !cfg.RateLimitEnabled {
		return nil
	}
	limits := ratelimit.Config{
		MaxRequests: cfg.RateLimitMaxRequests,
		Window:      cfg.RateLimitWindow,
	}
	if cfg.RateLimitBackend == config.RateLimitBackendRedis && rdb != nil {
		return ratelimit.NewRedis(rdb.Client(), limits, logger)
	}
	return ratelimit.NewMemory(limits)
}

type routerDeps struct {
	cfg            *config.Config
	logger         *slog.Logger
	trustedProxies []netip.Prefix
	root           *handler.Handler
	health         *handler.HealthHandler
	loyalty        *handler.LoyaltyHandler
	docs           *handler.DocsHandler
	metrics        http.Handler
	limiter        ratelimit.Limiter
	recorder       metrics.Recorder
}

// setupRouter configures the chi router with all routes and middleware.
// Health checks and /metrics sit outside the rate limiter; everything else,
// unmatched paths included, is limited.
func setupRouter(d routerDeps) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RealIP(d.trustedProxies))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(d.logger))
	r.Use(middleware.Recoverer(d.logger, d.cfg.IsDevelopment()))
	r.Use(middleware.Security(middleware.SecurityConfig{IsDevelopment: d.cfg.IsDevelopment()}))

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = d.cfg.GetCORSAllowedOrigins()
	r.Use(middleware.CORS(corsCfg))

	r.Get("/healthz", d.health.Healthz)
	r.Get("/readyz", d.health.Readyz)
	r.Method(http.MethodGet, "/metrics", d.metrics)

	rateLimitCfg := middleware.RateLimitConfig{
		Logger:  d.logger,
		Limiter: d.limiter,
		Metrics: d.recorder,
		Enabled: d.cfg.RateLimitEnabled,
	}

	limit := middleware.RateLimit(rateLimitCfg)

	r.Group(func(r chi.Router) {
		r.Use(limit)

		r.Get("/", d.root.Hello)
		d.docs.Routes(r)

		r.Route("/api/v1", func(r chi.Router) {
			r.Use(middleware.MaxBodySize(d.cfg.MaxRequestBodySize))
			d.loyalty.Routes(r)

			// Requests reaching here already passed the limiter.
			r.NotFound(d.root.NotFound)
			r.MethodNotAllowed(d.root.MethodNotAllowed)
		})
	})

	r.NotFound(limit(http.HandlerFunc(d.root.NotFound)).ServeHTTP)
	r.MethodNotAllowed(limit(http.HandlerFunc(d.root.MethodNotAllowed)).ServeHTTP)

	return r
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
