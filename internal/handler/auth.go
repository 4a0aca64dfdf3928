package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/songbook/songbook/internal/auth"
	"github.com/songbook/songbook/internal/handler/dto"
	"github.com/songbook/songbook/internal/service"
	"github.com/songbook/songbook/internal/validation"
)

// AuthHandler handles login and identity requests.
type AuthHandler struct {
	svc    *service.AuthService
	logger *slog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(svc *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		svc:    svc,
		logger: logger,
	}
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req validation.LoginRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		writeDecodeError(w, err)
		return
	}

	req, err := validation.ValidateLogin(req)
	if err != nil {
		var verr *validation.Error
		if errors.As(err, &verr) {
			dto.WriteError(w, http.StatusBadRequest, "validation failed", "", verr.Fields)
			return
		}
		h.logger.Error("internal_error", "path", r.URL.Path, "error", err)
		dto.WriteError(w, http.StatusInternalServerError, "internal server error", "", nil)
		return
	}

	result, err := h.svc.Login(r.Context(), req.Email, req.Password)
	switch {
	case err == nil:
	case errors.Is(err, service.ErrInvalidCredentials):
		h.logger.Warn("login_failed", "path", r.URL.Path)
		dto.WriteError(w, http.StatusUnauthorized, "invalid credentials", "", nil)
		return
	case errors.Is(err, auth.ErrSecretNotConfigured):
		h.logger.Error("login_unavailable", "reason", "signing secret not configured")
		dto.WriteError(w, http.StatusInternalServerError, "server misconfiguration", "", nil)
		return
	default:
		h.logger.Error("internal_error", "path", r.URL.Path, "error", err)
		dto.WriteError(w, http.StatusInternalServerError, "internal server error", "", nil)
		return
	}

	h.logger.Info("login_succeeded", "user_id", result.User.ID)

	dto.WriteLogin(w, result.Token, result.User, result)
}

// Me handles GET /auth/me and returns the verified caller.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	id := auth.IdentityFromContext(r.Context())
	if id == nil {
		dto.WriteError(w, http.StatusUnauthorized, "authorization required", "", nil)
		return
	}
	dto.WriteData(w, http.StatusOK, id)
}
