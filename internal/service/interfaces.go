package service

import (
	"context"
	"time"

	"cleem-api/internal/domain"
)

// TokenVerifier validates an externally issued identity assertion and
// returns verified claims.
type TokenVerifier interface {
	Verify(ctx context.Context, rawToken string) (*domain.GoogleClaims, error)
}

// SessionIssuer mints and validates locally signed session tokens.
type SessionIssuer interface {
	// Issue signs a token for userID; non-positive ttl uses the default.
	Issue(userID string, ttl time.Duration) (token string, expiresIn int64, err error)

	// Validate verifies a token and returns its subject.
	Validate(token string) (subject string, err error)
}

// AuthService composes verification, reconciliation and session issuance.
type AuthService interface {
	// SignInWithGoogle runs the /auth/google flow for a raw ID token.
	SignInWithGoogle(ctx context.Context, rawToken string) (*domain.TokenResponse, error)
}

// UserCache caches resolved user projections for the session middleware.
// Implementations must treat the cache as strictly optional: a cache error
// is never a request error.
type UserCache interface {
	Get(ctx context.Context, userID string) (*domain.User, bool)
	Set(ctx context.Context, user *domain.User)
	Invalidate(ctx context.Context, userID string)
}
