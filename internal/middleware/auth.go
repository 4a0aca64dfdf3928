package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/songbook/songbook/internal/auth"
	"github.com/songbook/songbook/internal/handler/dto"
	"github.com/songbook/songbook/internal/metrics"
	"github.com/songbook/songbook/internal/model"
)

// Rejection reasons returned to the client.
const (
	ReasonAuthorizationRequired = "authorization required"
	ReasonInvalidFormat         = "invalid authorization format"
	ReasonMissingToken          = "missing token"
	ReasonTokenExpired          = "token expired"
	ReasonTokenMalformed        = "malformed token"
	ReasonTokenInvalid          = "invalid token"
	ReasonMisconfigured         = "server misconfiguration"
)

// AuthFailure is a rejected bearer credential.
type AuthFailure struct {
	Status int
	Reason string
	Err    error
}

// AuthConfig holds configuration for the auth middleware.
type AuthConfig struct {
	Logger  *slog.Logger
	Tokens  *auth.TokenManager
	Metrics metrics.Recorder
	// Now defaults to time.Now.
	Now func() time.Time
}

// Authenticate resolves an Authorization header value to an identity.
// It depends only on its arguments and is safe for concurrent use.
func Authenticate(header string, now time.Time, tokens *auth.TokenManager) (*model.Identity, *AuthFailure) {
	if header == "" {
		return nil, &AuthFailure{Status: http.StatusUnauthorized, Reason: ReasonAuthorizationRequired}
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, &AuthFailure{Status: http.StatusUnauthorized, Reason: ReasonInvalidFormat}
	}

	token := strings.TrimSpace(parts[1])
	if token == "" {
		return nil, &AuthFailure{Status: http.StatusUnauthorized, Reason: ReasonMissingToken}
	}

	if tokens == nil || !tokens.Configured() {
		return nil, &AuthFailure{Status: http.StatusInternalServerError, Reason: ReasonMisconfigured, Err: auth.ErrSecretNotConfigured}
	}

	id, err := tokens.Verify(token, now)
	switch {
	case err == nil:
		return id, nil
	case errors.Is(err, auth.ErrTokenExpired):
		return nil, &AuthFailure{Status: http.StatusUnauthorized, Reason: ReasonTokenExpired, Err: err}
	case errors.Is(err, auth.ErrTokenMalformed):
		return nil, &AuthFailure{Status: http.StatusUnauthorized, Reason: ReasonTokenMalformed, Err: err}
	case errors.Is(err, auth.ErrSecretNotConfigured):
		return nil, &AuthFailure{Status: http.StatusInternalServerError, Reason: ReasonMisconfigured, Err: err}
	default:
		return nil, &AuthFailure{Status: http.StatusUnauthorized, Reason: ReasonTokenInvalid, Err: err}
	}
}

// Auth returns a middleware that requires a valid bearer token and
// injects the caller's identity into the request context.
func Auth(cfg AuthConfig) func(http.Handler) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	recorder := cfg.Metrics
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, failure := Authenticate(r.Header.Get("Authorization"), now(), cfg.Tokens)
			if failure != nil {
				attrs := []any{
					slog.String("reason", failure.Reason),
					slog.String("ip", r.RemoteAddr),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				}
				if failure.Status >= http.StatusInternalServerError {
					logger.Error("authentication unavailable", attrs...)
				} else {
					logger.Warn("authentication failed", attrs...)
				}
				recorder.IncAuthRejected(failure.Reason)

				dto.WriteError(w, failure.Status, failure.Reason, "", nil)
				return
			}

			recordCaller(r.Context(), id.UserID)
			ctx := auth.ContextWithIdentity(r.Context(), id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
