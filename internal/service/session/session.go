package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenIssuer is the iss claim stamped on every session token.
const tokenIssuer = "cleem-api"

// ErrInvalidSession covers every validation failure: bad signature,
// malformed token, expired or not yet valid. Callers must not distinguish
// between them.
var ErrInvalidSession = errors.New("invalid session token")

// Issuer mints and validates the stateless session tokens. The secret is
// fixed at startup; rotating it invalidates all outstanding sessions.
type Issuer struct {
	secret     []byte
	defaultTTL time.Duration
}

// NewIssuer creates a session issuer.
func NewIssuer(secret string, defaultTTL time.Duration) *Issuer {
	return &Issuer{
		secret:     []byte(secret),
		defaultTTL: defaultTTL,
	}
}

// Issue signs a token with subject userID and returns it together with its
// lifetime in seconds. A non-positive ttl falls back to the configured
// default.
func (i *Issuer) Issue(userID string, ttl time.Duration) (string, int64, error) {
	if ttl <= 0 {
		ttl = i.defaultTTL
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		Issuer:    tokenIssuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", 0, fmt.Errorf("failed to sign session token: %w", err)
	}

	return signed, int64(ttl.Seconds()), nil
}

// Validate verifies signature and expiry and returns the subject claim. The
// wrapped detail exists for logging only; the failure class is always
// ErrInvalidSession.
func (i *Issuer) Validate(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return i.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return "", ErrInvalidSession
	}

	return claims.Subject, nil
}

// DefaultTTL returns the configured default session lifetime.
func (i *Issuer) DefaultTTL() time.Duration {
	return i.defaultTTL
}
