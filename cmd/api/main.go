// Package main is the entrypoint for the cpfgate API server.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/cpfgate/cpfgate/internal/cache"
	"github.com/cpfgate/cpfgate/internal/config"
	"github.com/cpfgate/cpfgate/internal/cpf"
	"github.com/cpfgate/cpfgate/internal/eligibility"
	"github.com/cpfgate/cpfgate/internal/handler"
	"github.com/cpfgate/cpfgate/internal/metrics"
	"github.com/cpfgate/cpfgate/internal/middleware"
	"github.com/cpfgate/cpfgate/internal/server"
	"github.com/cpfgate/cpfgate/internal/upstream"
)

const redisConnectTimeout = 5 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	style, err := handler.ParseStyle(cfg.ResponseStatusPolicy, cfg.ResponseEnvelope)
	if err != nil {
		logger.Error("invalid response style", "error", err)
		os.Exit(1)
	}

	fingerprinter, err := cpf.NewFingerprinter(cfg.CPFFingerprintKey)
	if err != nil {
		logger.Error("failed to create CPF fingerprinter", "error", err)
		os.Exit(1)
	}
	if cfg.CPFFingerprintKey == "" {
		level := slog.LevelWarn
		if cfg.IsProduction() {
			level = slog.LevelError
		}
		logger.Log(context.Background(), level, "CPF_FINGERPRINT_KEY not set, log fingerprints change on every restart")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	recorder := metrics.NewCollector(registry)

	upstreamClient := upstream.New(cfg.UpstreamBaseURL, cfg.UpstreamTimeout,
		upstream.WithMetrics(recorder),
	)

	svc, err := eligibility.New(upstreamClient, fingerprinter,
		eligibility.WithLogger(logger),
		eligibility.WithMetrics(recorder),
	)
	if err != nil {
		logger.Error("failed to create eligibility service", "error", err)
		os.Exit(1)
	}

	var (
		cacheClient *cache.Cache
		limiter     cache.IPLimiter
		cleanups    = map[string]server.ShutdownFunc{}
	)
	if cfg.RedisURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), redisConnectTimeout)
		cacheClient, err = cache.New(ctx, cfg.RedisURL)
		cancel()
		if err != nil {
			logger.Error(
				"failed to connect to Redis",
				slog.String("error", sanitizeError(err, cfg.RedisURL)),
				slog.String("redis_url", redactURL(cfg.RedisURL)),
			)
			os.Exit(1)
		}
		logger.Info("connected to Redis", slog.String("redis_url", redactURL(cfg.RedisURL)))
		limiter = cache.NewRedisIPLimiter(cacheClient, cfg.RateLimitRPS, cfg.RateLimitBurst)
		cleanups["redis"] = func(context.Context) error { return cacheClient.Close() }
	} else {
		local := cache.NewLocalIPLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
		limiter = local
		cleanups["local rate limiter"] = func(context.Context) error { local.Stop(); return nil }
		logger.Info("REDIS_URL not set, rate limits are per process")
	}

	var healthCache handler.HealthChecker
	if cacheClient != nil {
		healthCache = cacheClient
	}

	h := handler.New(cfg.AppEnv)
	healthHandler := handler.NewHealthHandler(healthCache, upstreamClient)
	eligibilityHandler := handler.NewEligibilityHandler(svc, style, logger)

	r := setupRouter(cfg, logger, routerDeps{
		handler:     h,
		health:      healthHandler,
		eligibility: eligibilityHandler,
		style:       style,
		limiter:     limiter,
		recorder:    recorder,
		gatherer:    registry,
	})

	srv := server.New(
		otelhttp.NewHandler(r, "cpfgate"),
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)
	for name, fn := range cleanups {
		srv.OnShutdown(name, fn)
	}

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"upstream", redactURL(cfg.UpstreamBaseURL),
		"status_policy", style.Status,
		"envelope", style.Envelope,
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}

	var h slog.Handler
	if strings.EqualFold(cfg.LogFormat, "text") {
		h = slog.NewTextHandler(os.Stdout, opts)
	} else {
		h = slog.NewJSONHandler(os.Stdout, opts)
	}

	logger := slog.New(h).With("service", "cpfgate")
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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

type routerDeps struct {
	handler     *handler.Handler
	health      *handler.HealthHandler
	eligibility *handler.EligibilityHandler
	style       handler.ResponseStyle
	limiter     cache.IPLimiter
	recorder    metrics.Recorder
	gatherer    prometheus.Gatherer
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(cfg *config.Config, logger *slog.Logger, deps routerDeps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger, deps.style.InternalError))
	r.Use(middleware.Security(middleware.SecurityConfig{IsDevelopment: cfg.IsDevelopment()}))

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.GetCORSAllowedOrigins()
	r.Use(middleware.CORS(corsCfg))

	r.Get("/", deps.handler.Index)
	r.Get("/healthz", deps.health.Healthz)
	r.Get("/readyz", deps.health.Readyz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.gatherer))

	r.Group(func(r chi.Router) {
		r.Use(middleware.MaxBodySize(cfg.MaxRequestBodySize))
		r.Use(middleware.RateLimitIP(middleware.RateLimitConfig{
			Enabled: cfg.RateLimitEnabled,
			Limiter: deps.limiter,
			Logger:  logger,
			Metrics: deps.recorder,
		}))
		deps.eligibility.Register(r)
	})

	r.NotFound(deps.handler.NotFound)
	r.MethodNotAllowed(deps.handler.MethodNotAllowed)

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
