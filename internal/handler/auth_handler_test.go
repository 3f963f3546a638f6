package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cleem-api/internal/config"
	"cleem-api/internal/container"
	"cleem-api/internal/domain"
	"cleem-api/internal/middleware"
	"cleem-api/internal/service/googleauth"
	apperrors "cleem-api/pkg/errors"
	"cleem-api/pkg/logger"
)

type fakeAuthService struct {
	resp  *domain.TokenResponse
	err   error
	calls int
	token string
}

func (f *fakeAuthService) SignInWithGoogle(ctx context.Context, rawToken string) (*domain.TokenResponse, error) {
	f.calls++
	f.token = rawToken
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func testContainer(svc *fakeAuthService, oauth *googleauth.OAuthFlow) *container.Container {
	return &container.Container{
		Config: &config.Config{
			Environment: config.EnvDevelopment,
			FrontendURL: "http://localhost:3000",
		},
		Logger:      logger.NewNop(),
		OAuthFlow:   oauth,
		AuthService: svc,
	}
}

func signedInUser() domain.UserResponse {
	name := "Alice"
	now := time.Now().UTC()
	return domain.UserResponse{
		ID:        "id-1",
		Email:     "a@example.com",
		Name:      &name,
		GoogleID:  "google-sub-1",
		CreatedAt: now,
	}
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	errObj, ok := body["error"].(map[string]interface{})
	require.True(t, ok)
	return errObj
}

func TestGoogleSignIn_InvalidBody(t *testing.T) {
	svc := &fakeAuthService{}
	h := NewAuthHandler(testContainer(svc, nil))

	req := httptest.NewRequest(http.MethodPost, "/auth/google", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	h.GoogleSignIn(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	errObj := decodeError(t, rec)
	assert.Equal(t, "validation", errObj["type"])
	assert.Zero(t, svc.calls, "malformed body must not reach the service")
}

func TestGoogleSignIn_Success(t *testing.T) {
	svc := &fakeAuthService{resp: &domain.TokenResponse{
		AccessToken: "session-token",
		TokenType:   "bearer",
		ExpiresIn:   604800,
		User:        signedInUser(),
	}}
	h := NewAuthHandler(testContainer(svc, nil))

	req := httptest.NewRequest(http.MethodPost, "/auth/google",
		strings.NewReader(`{"id_token":"google-issued-token"}`))
	rec := httptest.NewRecorder()
	h.GoogleSignIn(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "google-issued-token", svc.token)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "session-token", body["access_token"])
	assert.Equal(t, "bearer", body["token_type"])
	assert.Equal(t, float64(604800), body["expires_in"])

	user, ok := body["user"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "id-1", user["id"])
	assert.NotContains(t, user, "is_active")
	assert.NotContains(t, user, "last_login")
}

func TestGoogleSignIn_RejectedToken(t *testing.T) {
	svc := &fakeAuthService{err: apperrors.NewInvalidCredentialsError(errors.New("audience mismatch"))}
	h := NewAuthHandler(testContainer(svc, nil))

	req := httptest.NewRequest(http.MethodPost, "/auth/google",
		strings.NewReader(`{"id_token":"a-long-enough-but-bogus-token"}`))
	rec := httptest.NewRecorder()
	h.GoogleSignIn(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	errObj := decodeError(t, rec)
	assert.Equal(t, "invalid_credentials", errObj["type"])
}

func TestGoogleSignIn_InternalFailureIsOpaque(t *testing.T) {
	svc := &fakeAuthService{err: apperrors.NewInternalError("Authentication failed", assert.AnError)}
	c := testContainer(svc, nil)
	c.Config.Environment = config.EnvProduction
	h := NewAuthHandler(c)

	req := httptest.NewRequest(http.MethodPost, "/auth/google",
		strings.NewReader(`{"id_token":"a-long-enough-token"}`))
	rec := httptest.NewRecorder()
	h.GoogleSignIn(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	errObj := decodeError(t, rec)
	assert.Equal(t, "Authentication failed", errObj["message"])
	assert.NotContains(t, rec.Body.String(), assert.AnError.Error())
}

func TestGetProfile_ReturnsContextUser(t *testing.T) {
	h := NewAuthHandler(testContainer(&fakeAuthService{}, nil))

	user := &domain.User{
		ID:        "id-1",
		Email:     "a@example.com",
		GoogleID:  "google-sub-1",
		CreatedAt: time.Now().UTC(),
		LastLogin: time.Now().UTC(),
		IsActive:  true,
	}
	req := httptest.NewRequest(http.MethodGet, "/user/profile", nil)
	req = req.WithContext(context.WithValue(req.Context(), middleware.UserContextKey, user))
	rec := httptest.NewRecorder()
	h.GetProfile(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "id-1", body["id"])
	assert.Equal(t, "a@example.com", body["email"])
	assert.NotContains(t, body, "is_active")
}

func TestGetProfile_WithoutUser(t *testing.T) {
	h := NewAuthHandler(testContainer(&fakeAuthService{}, nil))

	req := httptest.NewRequest(http.MethodGet, "/user/profile", nil)
	rec := httptest.NewRecorder()
	h.GetProfile(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetStatus(t *testing.T) {
	h := NewAuthHandler(testContainer(&fakeAuthService{}, nil))

	user := &domain.User{ID: "id-1", IsActive: true}
	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	req = req.WithContext(context.WithValue(req.Context(), middleware.UserContextKey, user))
	rec := httptest.NewRecorder()
	h.GetStatus(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "authenticated", body["status"])
	assert.Equal(t, "id-1", body["user_id"])
	assert.Equal(t, config.EnvDevelopment, body["environment"])
}

func TestOAuthLogin_NotConfigured(t *testing.T) {
	flow := googleauth.NewOAuthFlow("client-id", "", "")
	h := NewAuthHandler(testContainer(&fakeAuthService{}, flow))

	req := httptest.NewRequest(http.MethodGet, "/auth/google/login", nil)
	rec := httptest.NewRecorder()
	h.OAuthLogin(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOAuthLogin_RedirectsWithStateCookie(t *testing.T) {
	flow := googleauth.NewOAuthFlow("client-id", "client-secret", "http://localhost:8080/auth/google/callback")
	h := NewAuthHandler(testContainer(&fakeAuthService{}, flow))

	req := httptest.NewRequest(http.MethodGet, "/auth/google/login", nil)
	rec := httptest.NewRecorder()
	h.OAuthLogin(rec, req)

	assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)

	location, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	state := location.Query().Get("state")
	assert.NotEmpty(t, state)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "oauth_state", cookies[0].Name)
	assert.Equal(t, state, cookies[0].Value, "cookie and redirect must carry the same state")
	assert.True(t, cookies[0].HttpOnly)
}

func TestOAuthCallback_StateMismatch(t *testing.T) {
	flow := googleauth.NewOAuthFlow("client-id", "client-secret", "http://localhost:8080/auth/google/callback")
	svc := &fakeAuthService{}
	h := NewAuthHandler(testContainer(svc, flow))

	req := httptest.NewRequest(http.MethodGet, "/auth/google/callback?state=other&code=abc", nil)
	req.AddCookie(&http.Cookie{Name: "oauth_state", Value: "expected"})
	rec := httptest.NewRecorder()
	h.OAuthCallback(rec, req)

	assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	assert.Contains(t, rec.Header().Get("Location"), "error=invalid_state")
	assert.Zero(t, svc.calls)
}

func TestOAuthCallback_MissingCode(t *testing.T) {
	flow := googleauth.NewOAuthFlow("client-id", "client-secret", "http://localhost:8080/auth/google/callback")
	h := NewAuthHandler(testContainer(&fakeAuthService{}, flow))

	req := httptest.NewRequest(http.MethodGet, "/auth/google/callback?state=expected", nil)
	req.AddCookie(&http.Cookie{Name: "oauth_state", Value: "expected"})
	rec := httptest.NewRecorder()
	h.OAuthCallback(rec, req)

	assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	assert.Contains(t, rec.Header().Get("Location"), "error=no_code")
}
