package auth

import (
	"context"
	"fmt"
	"strings"

	"cleem-api/internal/domain"
	"cleem-api/internal/observability"
	"cleem-api/internal/repository"
	"cleem-api/internal/service"
	apperrors "cleem-api/pkg/errors"
	"cleem-api/pkg/logger"
)

// minTokenLength rejects bodies that cannot plausibly hold an ID token
// before any verifier work happens.
const minTokenLength = 10

// Service implements the AuthService sign-in flow: verify the identity
// assertion, reconcile the user record, issue a session token.
type Service struct {
	verifier service.TokenVerifier
	users    repository.UserRepository
	sessions service.SessionIssuer
	cache    service.UserCache
	metrics  *observability.Metrics
	log      *logger.Logger
}

// NewService creates the sign-in orchestrator. cache may be nil.
func NewService(
	verifier service.TokenVerifier,
	users repository.UserRepository,
	sessions service.SessionIssuer,
	cache service.UserCache,
	metrics *observability.Metrics,
	log *logger.Logger,
) *Service {
	return &Service{
		verifier: verifier,
		users:    users,
		sessions: sessions,
		cache:    cache,
		metrics:  metrics,
		log:      log,
	}
}

// SignInWithGoogle verifies the raw ID token, creates or updates the local
// user inside one transaction, and returns the session token payload.
// Exactly one store write happens on success; none on any failure branch.
func (s *Service) SignInWithGoogle(ctx context.Context, rawToken string) (*domain.TokenResponse, error) {
	if len(strings.TrimSpace(rawToken)) < minTokenLength {
		s.metrics.ObserveSignIn(observability.SignInRejected)
		return nil, apperrors.NewValidationError("id_token is required", nil)
	}

	claims, err := s.verifier.Verify(ctx, rawToken)
	if err != nil {
		s.metrics.ObserveSignIn(observability.SignInRejected)
		return nil, err
	}

	user, created, err := s.reconcile(ctx, claims)
	if err != nil {
		s.metrics.ObserveSignIn(observability.SignInRejected)
		return nil, err
	}

	token, expiresIn, err := s.sessions.Issue(user.ID, 0)
	if err != nil {
		s.metrics.ObserveSignIn(observability.SignInRejected)
		return nil, apperrors.NewInternalError("Failed to issue session token", err)
	}

	if s.cache != nil {
		s.cache.Invalidate(ctx, user.ID)
	}

	result := observability.SignInUpdated
	if created {
		result = observability.SignInCreated
	}
	s.metrics.ObserveSignIn(result)

	s.log.WithFields(map[string]interface{}{
		"user_id":   user.ID,
		"google_id": user.GoogleID,
		"created":   created,
	}).Info("User signed in")

	return &domain.TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   expiresIn,
		User:        user.Response(),
	}, nil
}

// reconcile maps the verified external identity onto exactly one local user
// record. Two concurrent first sign-ins race on the insert; the loser sees a
// uniqueness conflict, and the rolled-back attempt is retried as a returning
// user in a fresh transaction.
func (s *Service) reconcile(ctx context.Context, claims *domain.GoogleClaims) (*domain.User, bool, error) {
	var (
		user    *domain.User
		created bool
	)

	err := s.users.InTx(ctx, func(store repository.UserRepository) error {
		existing, err := store.GetByGoogleID(ctx, claims.Subject)
		if err != nil {
			return err
		}
		if existing == nil {
			user, err = store.Create(ctx, claims.Subject, claims.Email, claims.Name, claims.Picture)
			created = err == nil
			return err
		}
		user, err = store.UpdateProfile(ctx, existing.ID, claims.Name, claims.Picture)
		return err
	})

	if apperrors.IsConflict(err) {
		s.log.WithField("google_id", claims.Subject).Debug("Concurrent first sign-in detected, retrying as returning user")
		created = false
		err = s.users.InTx(ctx, func(store repository.UserRepository) error {
			existing, lookupErr := store.GetByGoogleID(ctx, claims.Subject)
			if lookupErr != nil {
				return lookupErr
			}
			if existing == nil {
				// Uniqueness fired but the row is gone; constraints are broken.
				return fmt.Errorf("user vanished after insert conflict for google_id %s", claims.Subject)
			}
			var updateErr error
			user, updateErr = store.UpdateProfile(ctx, existing.ID, claims.Name, claims.Picture)
			return updateErr
		})
	}

	if err != nil {
		if appErr, ok := err.(*apperrors.AppError); ok && appErr.Type != apperrors.ErrorTypeConflict {
			return nil, false, appErr
		}
		return nil, false, apperrors.NewInternalError("Failed to reconcile user", err)
	}

	return user, created, nil
}
