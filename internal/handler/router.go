package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/songbook/songbook/internal/metrics"
	"github.com/songbook/songbook/internal/middleware"
)

// RouterConfig carries the handlers and middleware settings for NewRouter.
type RouterConfig struct {
	Logger *slog.Logger

	Root   *Handler
	Health *HealthHandler
	Songs  *SongHandler
	Auth   *AuthHandler

	AuthMiddleware middleware.AuthConfig
	RateLimit      middleware.RateLimitConfig
	Security       middleware.SecurityConfig
	CORSOrigins    []string

	Metrics metrics.Recorder
	// MetricsHandler serves /metrics when set.
	MetricsHandler http.Handler

	// ExposeStack includes panic stacks in 500 responses.
	ExposeStack bool
}

// NewRouter builds the HTTP route table.
func NewRouter(cfg RouterConfig) http.Handler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.NewNoop()
	}
	if cfg.RateLimit.Logger == nil {
		cfg.RateLimit.Logger = cfg.Logger
	}
	if cfg.Security.MaxRequestBodySize <= 0 {
		cfg.Security.MaxRequestBodySize = middleware.DefaultSecurityConfig().MaxRequestBodySize
	}

	r := chi.NewRouter()

	// Global middleware (order matters)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Metrics(cfg.Metrics))
	r.Use(middleware.Recoverer(cfg.Logger, cfg.ExposeStack))
	r.Use(middleware.Security(cfg.Security))
	r.Use(middleware.MaxBodySize(cfg.Security.MaxRequestBodySize))
	r.Use(middleware.CORS(middleware.DefaultCORSConfig(cfg.CORSOrigins)))
	r.Use(middleware.RateLimitIP(cfg.RateLimit))

	requireAuth := middleware.Auth(cfg.AuthMiddleware)

	// Service endpoints
	r.Get("/", cfg.Root.Info)
	r.Get("/health", cfg.Root.Health)
	if cfg.Health != nil {
		r.Get("/healthz", cfg.Health.Healthz)
		r.Get("/readyz", cfg.Health.Readyz)
	}
	if cfg.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.MetricsHandler)
	}

	// Auth
	r.Route("/auth", func(r chi.Router) {
		r.With(middleware.RateLimitLogin(cfg.RateLimit)).Post("/login", cfg.Auth.Login)
		r.With(requireAuth).Get("/me", cfg.Auth.Me)
	})

	// Songs. Fixed segments are matched before /{id}.
	r.Route("/songs", func(r chi.Router) {
		r.Get("/", cfg.Songs.List)
		r.Get("/genres", cfg.Songs.Genres)
		r.Get("/artists", cfg.Songs.Artists)
		r.Get("/search/years", cfg.Songs.SearchYears)
		r.Get("/search/duration", cfg.Songs.SearchDuration)
		r.Get("/user/{userId}", cfg.Songs.ListByUser)
		r.Get("/{id}", cfg.Songs.Get)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/stats", cfg.Songs.Stats)
			r.Post("/", cfg.Songs.Create)
			r.Put("/{id}", cfg.Songs.Update)
			r.Delete("/{id}", cfg.Songs.Delete)
		})
	})

	r.NotFound(cfg.Root.NotFound)
	r.MethodNotAllowed(cfg.Root.MethodNotAllowed)

	return r
}
