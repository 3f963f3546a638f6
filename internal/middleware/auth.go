package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"cleem-api/internal/domain"
	"cleem-api/internal/repository"
	"cleem-api/internal/service"
	apperrors "cleem-api/pkg/errors"
	"cleem-api/pkg/logger"
)

// ContextKey represents keys used in request context
type ContextKey string

const (
	// UserContextKey is the key for the resolved user in context
	UserContextKey ContextKey = "user"
	// RequestIDContextKey is the key for request ID in context
	RequestIDContextKey ContextKey = "request_id"
)

// authFailedMessage is the single message every authentication failure
// produces. Which step failed must not be observable from outside.
const authFailedMessage = "Invalid authentication credentials"

// Auth validates the bearer session token, loads the user and rejects
// missing or deactivated accounts. The resolved user is attached to the
// request context; the record is never mutated here.
func Auth(sessions service.SessionIssuer, users repository.UserRepository, cache service.UserCache, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				writeUnauthenticated(w, log, "missing bearer token")
				return
			}

			subject, err := sessions.Validate(token)
			if err != nil {
				writeUnauthenticated(w, log, "session validation failed")
				return
			}

			ctx := r.Context()
			user := lookupUser(ctx, users, cache, subject, log)
			if user == nil || !user.IsActive {
				writeUnauthenticated(w, log, "user missing or inactive")
				return
			}

			ctx = context.WithValue(ctx, UserContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext returns the user attached by Auth, if any.
func UserFromContext(ctx context.Context) (*domain.User, bool) {
	user, ok := ctx.Value(UserContextKey).(*domain.User)
	return user, ok
}

// bearerToken extracts the token from the Authorization header.
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" || !strings.HasPrefix(header, "Bearer ") {
		return "", false
	}
	token := strings.TrimPrefix(header, "Bearer ")
	return token, token != ""
}

// lookupUser resolves the session subject to a user, via cache when one is
// configured. Cache errors fall through to the store.
func lookupUser(ctx context.Context, users repository.UserRepository, cache service.UserCache, userID string, log *logger.Logger) *domain.User {
	if cache != nil {
		if user, hit := cache.Get(ctx, userID); hit {
			return user
		}
	}

	user, err := users.GetByID(ctx, userID)
	if err != nil {
		log.WithError(err).Error("User lookup failed during authentication")
		return nil
	}
	if user != nil && cache != nil {
		cache.Set(ctx, user)
	}
	return user
}

// writeUnauthenticated writes the uniform 401 response. The reason is
// logged, never sent.
func writeUnauthenticated(w http.ResponseWriter, log *logger.Logger, reason string) {
	log.WithField("reason", reason).Debug("Request rejected as unauthenticated")

	appErr := apperrors.NewAuthenticationError(authFailedMessage)
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", "Bearer")
	w.WriteHeader(appErr.StatusCode)

	resp := map[string]interface{}{
		"success": false,
		"error": map[string]interface{}{
			"type":      string(appErr.Type),
			"message":   appErr.Message,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		},
	}
	_ = json.NewEncoder(w).Encode(resp)
}
