// Package main is the entrypoint for the Linklens API server.
package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/linklens/linklens/internal/cache"
	"github.com/linklens/linklens/internal/config"
	"github.com/linklens/linklens/internal/geo"
	"github.com/linklens/linklens/internal/handler"
	"github.com/linklens/linklens/internal/metrics"
	"github.com/linklens/linklens/internal/middleware"
	"github.com/linklens/linklens/internal/repository"
	"github.com/linklens/linklens/internal/server"
	"github.com/linklens/linklens/internal/service"
)

func main() {
	// Initialize context
	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := initLogger(cfg)

	// Initialize database
	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	defer repo.Close()
	logger.Info("connected to database")

	// Initialize cache
	cacheClient, err := cache.New(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error(
			"failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		os.Exit(1)
	}
	defer cacheClient.Close()
	logger.Info("connected to Redis")

	// Initialize geolocation resolver
	geoResolver := geo.NewResolver(cfg.GeoAPIURL, cfg.GeoTimeout, cacheClient, logger)

	// Initialize services
	metricsRecorder := metrics.NewInMemory()
	linkService := service.NewLinkService(repo, cacheClient, cfg.BaseURL, logger, metricsRecorder)
	clickService := service.NewClickService(repo, geoResolver, logger, metricsRecorder)
	analyticsService := service.NewAnalyticsService(repo)

	// Initialize handlers
	h := handler.New()
	healthHandler := handler.NewHealthHandler(repo, cacheClient)
	linkHandler := handler.NewLinkHandler(linkService, logger)
	redirectHandler := handler.NewRedirectHandler(linkService, clickService, logger)
	analyticsHandler := handler.NewAnalyticsHandler(analyticsService, logger)
	metricsHandler := handler.NewMetricsHandler(metricsRecorder)

	// Setup router
	r := setupRouter(h, healthHandler, linkHandler, redirectHandler, analyticsHandler, metricsHandler, cfg, logger)

	// Create and run server
	srv := server.New(
		r,
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)

	logger.Info("starting server",
		"port", cfg.AppPort,
		"base_url", cfg.BaseURL,
		"env", cfg.AppEnv,
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	level := parseLogLevel(cfg.LogLevel)

	opts := &slog.HandlerOptions{
		Level: level,
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(
	h *handler.Handler,
	healthHandler *handler.HealthHandler,
	linkHandler *handler.LinkHandler,
	redirectHandler *handler.RedirectHandler,
	analyticsHandler *handler.AnalyticsHandler,
	metricsHandler *handler.MetricsHandler,
	cfg *config.Config,
	logger *slog.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))

	// Health endpoints
	r.Get("/healthz", healthHandler.Healthz)
	r.Get("/readyz", healthHandler.Readyz)

	// Root info endpoint
	r.Get("/", h.Hello)

	// Operational metrics
	r.Get("/metrics", metricsHandler.Metrics)

	// Dashboard API routes
	r.Route("/api", func(r chi.Router) {
		securityCfg := middleware.SecurityConfig{
			IsDevelopment:      cfg.IsDevelopment(),
			AllowedOrigins:     cfg.GetCORSAllowedOrigins(),
			MaxRequestBodySize: cfg.MaxRequestBodySize,
		}
		r.Use(middleware.Security(securityCfg))
		r.Use(middleware.MaxBodySize(cfg.MaxRequestBodySize))

		corsCfg := middleware.DefaultCORSConfig()
		corsCfg.AllowedOrigins = cfg.GetCORSAllowedOrigins()
		r.Use(middleware.CORS(corsCfg))

		r.Route("/links", func(r chi.Router) {
			r.Get("/", linkHandler.List)
			r.Post("/", linkHandler.Create)
			r.Get("/{id}", linkHandler.Get)
			r.Delete("/{id}", linkHandler.Delete)
			r.Get("/{id}/analytics", analyticsHandler.ForLink)
		})

		r.Get("/analytics", analyticsHandler.Global)
	})

	// Public redirect route
	r.Get("/{shortCode}", redirectHandler.Redirect)

	// 404 and 405 handlers
	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

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
