package handler

import (
	"context"
	"net/http"
	"time"

	"cleem-api/internal/container"
	"cleem-api/pkg/logger"
)

// healthChecker is the round-trip predicate the handler reports on.
type healthChecker interface {
	Health(ctx context.Context) error
}

// HealthHandler handles health check requests
type HealthHandler struct {
	db  healthChecker
	log *logger.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(container *container.Container) *HealthHandler {
	return &HealthHandler{
		db:  container.GetDB(),
		log: container.GetLogger(),
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Error     string    `json:"error,omitempty"`
}

// Check handles GET /health. Health is reported in the body; the status code
// is 200 either way so load balancers can read the verdict themselves.
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
	}

	if err := h.db.Health(r.Context()); err != nil {
		h.log.WithError(err).Warn("Database health check failed")
		response.Status = "unhealthy"
		response.Error = err.Error()
	}

	writeJSON(w, http.StatusOK, response)
}
