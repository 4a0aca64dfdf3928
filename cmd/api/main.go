// Package main is the entrypoint for the Songbook API server.
package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/songbook/songbook/internal/auth"
	"github.com/songbook/songbook/internal/cache"
	"github.com/songbook/songbook/internal/config"
	"github.com/songbook/songbook/internal/handler"
	"github.com/songbook/songbook/internal/metrics"
	"github.com/songbook/songbook/internal/middleware"
	"github.com/songbook/songbook/internal/repository"
	"github.com/songbook/songbook/internal/server"
	"github.com/songbook/songbook/internal/service"
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
	repo, err := repository.New(ctx, cfg.DatabaseURL, cfg.StoreTimeout)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	logger.Info("connected to database")

	if cfg.AutoMigrate {
		applied, err := repo.Migrate(ctx)
		if err != nil {
			logger.Error("failed to apply migrations", slog.String("error", sanitizeError(err, cfg.DatabaseURL)))
			repo.Close()
			os.Exit(1)
		}
		logger.Info("migrations applied", "count", applied)
	}

	// Initialize cache
	cacheClient, err := cache.New(ctx, cfg.RedisURL, cache.Options{
		PoolSize: cfg.RedisPoolSize,
		Timeout:  cfg.RedisTimeout,
	})
	if err != nil {
		logger.Error(
			"failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		repo.Close()
		os.Exit(1)
	}
	logger.Info("connected to Redis")

	if cfg.JWTSecret == "" {
		msg := "JWT_SECRET is not set; login and authenticated routes will answer 500"
		if cfg.IsProduction() {
			logger.Error(msg)
		} else {
			logger.Warn(msg)
		}
	}

	// Initialize services
	metricsRecorder := metrics.NewPrometheus()
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	songService := service.NewSongService(repo, cacheClient, cfg.CatalogCacheTTL, metricsRecorder, logger)
	authService := service.NewAuthService(repo, tokens, metricsRecorder)

	// Setup router
	r := handler.NewRouter(handler.RouterConfig{
		Logger: logger,
		Root:   handler.New(),
		Health: handler.NewHealthHandler(repo, cacheClient),
		Songs:  handler.NewSongHandler(songService, logger),
		Auth:   handler.NewAuthHandler(authService, logger),
		AuthMiddleware: middleware.AuthConfig{
			Logger:  logger,
			Tokens:  tokens,
			Metrics: metricsRecorder,
		},
		RateLimit: middleware.RateLimitConfig{
			Logger:            logger,
			Metrics:           metricsRecorder,
			Enabled:           cfg.RateLimitEnabled,
			RequestsPerMinute: cfg.RateLimitRPM,
			LoginEnabled:      cfg.LoginRateLimitEnabled,
			LoginPerMinute:    cfg.LoginRateLimitPerMinute,
			LoginBurst:        cfg.LoginRateLimitBurst,
			LoginLimiter:      cacheClient,
		},
		Security: middleware.SecurityConfig{
			IsDevelopment:      cfg.IsDevelopment(),
			MaxRequestBodySize: cfg.MaxRequestBodySize,
		},
		CORSOrigins:    cfg.GetCORSAllowedOrigins(),
		Metrics:        metricsRecorder,
		MetricsHandler: metricsRecorder.Handler(),
		ExposeStack:    cfg.IsDevelopment(),
	})

	// Create and run server
	srv := server.New(r, server.Config{
		Port:            cfg.AppPort,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger)

	srv.OnShutdown("postgres", func(context.Context) error {
		repo.Close()
		return nil
	})
	srv.OnShutdown("redis", func(context.Context) error {
		return cacheClient.Close()
	})

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
	)

	if err := srv.Run(ctx); err != nil {
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

	logger := slog.New(h).With("service", "songbook")
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s&]+`)

// redactURL drops the password from a connection URL, keeping the user name.
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

	q := parsed.Query()
	if q.Has("password") {
		q.Set("password", "redacted")
		parsed.RawQuery = q.Encode()
	}

	return parsed.String()
}

// sanitizeError replaces every secret in err's text with its redacted form.
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
