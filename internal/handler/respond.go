package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"

	"cleem-api/internal/middleware"
	apperrors "cleem-api/pkg/errors"
	"cleem-api/pkg/logger"
)

// writeJSON writes v with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps any error to the HTTP taxonomy and writes the JSON error
// body. Internal-class errors are reported to Sentry when configured, and
// their detail is redacted outside development.
func writeError(w http.ResponseWriter, r *http.Request, err error, environment string, log *logger.Logger) {
	appErr := apperrors.AsAppError(err)

	entry := log.WithError(appErr)
	if requestID := middleware.RequestIDFromContext(r.Context()); requestID != "" {
		entry = entry.WithField("request_id", requestID)
	}

	if appErr.StatusCode >= http.StatusInternalServerError {
		entry.Error("Request failed")
		if hub := sentry.CurrentHub(); hub.Client() != nil {
			hub.CaptureException(appErr)
		}
	} else {
		entry.Debug("Request rejected")
	}

	body := map[string]interface{}{
		"success": false,
		"error": map[string]interface{}{
			"type":      string(appErr.Type),
			"message":   appErr.PublicMessage(environment),
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		},
	}
	if appErr.Details != nil {
		body["error"].(map[string]interface{})["details"] = appErr.Details
	}

	writeJSON(w, appErr.StatusCode, body)
}
