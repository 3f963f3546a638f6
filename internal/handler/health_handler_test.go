package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cleem-api/pkg/logger"
)

type stubHealthChecker struct {
	err error
}

func (s *stubHealthChecker) Health(ctx context.Context) error {
	return s.err
}

func checkHealth(t *testing.T, db healthChecker) (*httptest.ResponseRecorder, HealthResponse) {
	t.Helper()
	h := &HealthHandler{db: db, log: logger.NewNop()}

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	h.Check(rec, req)

	var body HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec, body
}

func TestHealthCheck_Healthy(t *testing.T) {
	rec, body := checkHealth(t, &stubHealthChecker{})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", body.Status)
	assert.Empty(t, body.Error)
	assert.False(t, body.Timestamp.IsZero())
}

func TestHealthCheck_UnhealthyStillReturns200(t *testing.T) {
	rec, body := checkHealth(t, &stubHealthChecker{err: errors.New("connection refused")})

	assert.Equal(t, http.StatusOK, rec.Code, "load balancers read the body, not the code")
	assert.Equal(t, "unhealthy", body.Status)
	assert.Equal(t, "connection refused", body.Error)
}
