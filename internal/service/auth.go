package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/songbook/songbook/internal/auth"
	"github.com/songbook/songbook/internal/metrics"
	"github.com/songbook/songbook/internal/model"
	"github.com/songbook/songbook/internal/repository"
)

// Authentication errors.
var (
	// ErrInvalidCredentials covers both an unknown email and a wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// UserStore looks up provisioned users. Implemented by *repository.Repository.
type UserStore interface {
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
}

// LoginResult is a freshly issued session.
type LoginResult struct {
	Token     string            `json:"token"`
	ExpiresAt time.Time         `json:"expires_at"`
	User      model.UserSummary `json:"user"`
}

// AuthService verifies credentials and issues session tokens.
type AuthService struct {
	users   UserStore
	tokens  *auth.TokenManager
	metrics metrics.Recorder
	now     func() time.Time
}

// NewAuthService creates a new AuthService.
func NewAuthService(users UserStore, tokens *auth.TokenManager, recorder metrics.Recorder) *AuthService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &AuthService{
		users:   users,
		tokens:  tokens,
		metrics: recorder,
		now:     time.Now,
	}
}

// Login checks the email/password pair and issues a token for the user.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if !s.tokens.Configured() {
		return nil, auth.ErrSecretNotConfigured
	}

	user, err := s.users.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.metrics.IncLogin(metrics.LoginFailure)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	ok, err := auth.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verify password for user %d: %w", user.ID, err)
	}
	if !ok {
		s.metrics.IncLogin(metrics.LoginFailure)
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.Issue(user, s.now())
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	s.metrics.IncLogin(metrics.LoginSuccess)

	return &LoginResult{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      user.Summary(),
	}, nil
}
