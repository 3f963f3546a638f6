package googleauth

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/api/idtoken"

	"cleem-api/internal/domain"
	apperrors "cleem-api/pkg/errors"
	"cleem-api/pkg/logger"
)

// verifyTimeout bounds the JWK fetch to Google; a hung provider must not
// hold a sign-in request open.
const verifyTimeout = 10 * time.Second

// Issuer values Google stamps on ID tokens; both forms are canonical.
var allowedIssuers = map[string]bool{
	"accounts.google.com":         true,
	"https://accounts.google.com": true,
}

// tokenValidator abstracts idtoken validation so tests can stub the
// network round trip.
type tokenValidator interface {
	Validate(ctx context.Context, token, audience string) (*idtoken.Payload, error)
}

// googleValidator delegates to the idtoken package, which verifies the
// signature against Google's cached public keys plus audience and expiry.
type googleValidator struct{}

func (googleValidator) Validate(ctx context.Context, token, audience string) (*idtoken.Payload, error) {
	return idtoken.Validate(ctx, token, audience)
}

// Verifier validates Google-issued ID tokens against the configured client
// id and extracts the verified claims.
type Verifier struct {
	clientID  string
	validator tokenValidator
	log       *logger.Logger
}

// NewVerifier creates a verifier for the given OAuth client id.
func NewVerifier(clientID string, log *logger.Logger) *Verifier {
	return &Verifier{
		clientID:  clientID,
		validator: googleValidator{},
		log:       log,
	}
}

// Verify checks the raw ID token and returns its verified claims. Every
// failure mode collapses to a single invalid-credentials error; the
// underlying reason travels only as the wrapped internal error.
func (v *Verifier) Verify(ctx context.Context, rawToken string) (*domain.GoogleClaims, error) {
	ctx, cancel := context.WithTimeout(ctx, verifyTimeout)
	defer cancel()

	payload, err := v.validator.Validate(ctx, rawToken, v.clientID)
	if err != nil {
		v.log.WithError(err).Debug("Google ID token validation failed")
		return nil, apperrors.NewInvalidCredentialsError(err)
	}

	if !allowedIssuers[payload.Issuer] {
		v.log.WithField("issuer", payload.Issuer).Debug("ID token issuer not recognized")
		return nil, apperrors.NewInvalidCredentialsError(fmt.Errorf("invalid issuer %q", payload.Issuer))
	}

	if payload.Subject == "" {
		return nil, apperrors.NewInvalidCredentialsError(fmt.Errorf("token carries no subject"))
	}

	claims := &domain.GoogleClaims{
		Subject:       payload.Subject,
		Email:         claimString(payload.Claims, "email"),
		Name:          claimStringPtr(payload.Claims, "name"),
		Picture:       claimStringPtr(payload.Claims, "picture"),
		EmailVerified: claimBool(payload.Claims, "email_verified"),
	}

	v.log.WithFields(map[string]interface{}{
		"subject":        claims.Subject,
		"email_verified": claims.EmailVerified,
		"has_name":       claims.Name != nil,
		"has_picture":    claims.Picture != nil,
	}).Debug("Google ID token verified")

	return claims, nil
}

// claimString safely extracts a string claim.
func claimString(claims map[string]interface{}, key string) string {
	if val, ok := claims[key].(string); ok {
		return val
	}
	return ""
}

// claimStringPtr extracts an optional string claim, nil when absent.
func claimStringPtr(claims map[string]interface{}, key string) *string {
	if val, ok := claims[key].(string); ok && val != "" {
		return &val
	}
	return nil
}

// claimBool safely extracts a boolean claim.
func claimBool(claims map[string]interface{}, key string) bool {
	if val, ok := claims[key].(bool); ok {
		return val
	}
	return false
}
