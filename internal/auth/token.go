package auth

import (
	"fmt"
	"time"

	"filmdash/internal/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims is the session token payload; the subject is the user ID
type Claims struct {
	Remember bool `json:"remember,omitempty"`
	jwt.RegisteredClaims
}

// TokenManager signs and verifies HS256 session tokens
type TokenManager struct {
	secret      []byte
	timeout     time.Duration
	rememberFor time.Duration
	now         func() time.Time
}

// NewTokenManager creates a token manager. Secrets shorter than 32 bytes are rejected.
func NewTokenManager(secret string, timeout, rememberFor time.Duration) (*TokenManager, error) {
	if len(secret) < 32 {
		return nil, errors.ConfigInvalid("JWT secret must be at least 32 characters")
	}
	return &TokenManager{
		secret:      []byte(secret),
		timeout:     timeout,
		rememberFor: rememberFor,
		now:         time.Now,
	}, nil
}

// Lifetime is how long a token issued with the given remember flag lives
func (m *TokenManager) Lifetime(remember bool) time.Duration {
	if remember {
		return m.rememberFor
	}
	return m.timeout
}

// Issue signs a token for userID
func (m *TokenManager) Issue(userID uuid.UUID, remember bool) (string, time.Time, error) {
	now := m.now()
	expires := now.Add(m.Lifetime(remember))
	claims := &Claims{
		Remember: remember,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, errors.Wrap(err, "failed to sign session token")
	}
	return signed, expires, nil
}

// Verify checks signature, algorithm and expiry and returns the user ID
func (m *TokenManager) Verify(token string) (uuid.UUID, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now), jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return uuid.Nil, &errors.AppError{Code: errors.CodeUnauthorized, Message: "invalid session token", Cause: err}
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return uuid.Nil, errors.Unauthorized("invalid session token")
	}
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, &errors.AppError{Code: errors.CodeUnauthorized, Message: "invalid session subject", Cause: err}
	}
	return id, nil
}
