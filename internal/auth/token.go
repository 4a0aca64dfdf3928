package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"

	"github.com/songbook/songbook/internal/model"
)

// DefaultTokenTTL is the validity window of a session token.
const DefaultTokenTTL = 24 * time.Hour

// Token verification errors. Each maps to a distinct 401 reason,
// except ErrSecretNotConfigured which is a server fault.
var (
	ErrSecretNotConfigured = errors.New("token signing secret not configured")
	ErrTokenExpired        = errors.New("token expired")
	ErrTokenMalformed      = errors.New("malformed token")
	ErrTokenInvalid        = errors.New("invalid token")
)

// Claims are the signed contents of a session token.
type Claims struct {
	UserID int64  `json:"id"`
	Email  string `json:"email"`
	Name   string `json:"nombre"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies HS256 session tokens.
// It holds no mutable state and is safe for concurrent use.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenManager creates a TokenManager. An empty secret is allowed;
// every Issue and Verify call then fails with ErrSecretNotConfigured.
func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenManager{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// Configured reports whether a signing secret is set.
func (m *TokenManager) Configured() bool {
	return len(m.secret) > 0
}

// Issue signs a token for user valid from now until now+TTL.
func (m *TokenManager) Issue(user *model.User, now time.Time) (string, time.Time, error) {
	if !m.Configured() {
		return "", time.Time{}, ErrSecretNotConfigured
	}

	expiresAt := now.Add(m.ttl)
	claims := &Claims{
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        ulid.Make().String(),
			Subject:   strconv.FormatInt(user.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}

	return signed, expiresAt, nil
}

// Verify checks the signature and expiry of tokenString at time now
// and returns the identity it asserts.
func (m *TokenManager) Verify(tokenString string, now time.Time) (*model.Identity, error) {
	if !m.Configured() {
		return nil, ErrSecretNotConfigured
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)

	claims := &Claims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	})
	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenMalformed):
		return nil, ErrTokenMalformed
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrTokenExpired
	default:
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	if !token.Valid || claims.UserID == 0 {
		return nil, ErrTokenInvalid
	}

	id := &model.Identity{
		UserID:  claims.UserID,
		Email:   claims.Email,
		Name:    claims.Name,
		TokenID: claims.ID,
	}
	if claims.IssuedAt != nil {
		id.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		id.ExpiresAt = claims.ExpiresAt.Time
	}

	return id, nil
}
