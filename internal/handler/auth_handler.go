package handler

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"

	"cleem-api/internal/container"
	"cleem-api/internal/domain"
	"cleem-api/internal/middleware"
	apperrors "cleem-api/pkg/errors"
)

// oauthStateCookie carries the anti-CSRF state between the login redirect
// and the callback.
const oauthStateCookie = "oauth_state"

// AuthHandler handles sign-in and the authenticated user endpoints.
type AuthHandler struct {
	container *container.Container
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(container *container.Container) *AuthHandler {
	return &AuthHandler{
		container: container,
	}
}

// GoogleSignIn handles POST /auth/google
func (h *AuthHandler) GoogleSignIn(w http.ResponseWriter, r *http.Request) {
	log := h.container.GetLogger()

	var req domain.GoogleSignInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, apperrors.NewValidationError("Invalid request body", nil))
		return
	}

	resp, err := h.container.GetAuthService().SignInWithGoogle(r.Context(), req.IDToken)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	log.WithField("user_id", resp.User.ID).Debug("Sign-in response issued")
	writeJSON(w, http.StatusOK, resp)
}

// GetProfile handles GET /user/profile
func (h *AuthHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		h.writeError(w, r, apperrors.NewAuthenticationError("Invalid authentication credentials"))
		return
	}

	writeJSON(w, http.StatusOK, user.Response())
}

// GetStatus handles GET /status
func (h *AuthHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		h.writeError(w, r, apperrors.NewAuthenticationError("Invalid authentication credentials"))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":      "authenticated",
		"user_id":     user.ID,
		"environment": h.container.GetConfig().Environment,
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
	})
}

// OAuthLogin handles GET /auth/google/login: redirects the browser to the
// Google consent screen.
func (h *AuthHandler) OAuthLogin(w http.ResponseWriter, r *http.Request) {
	flow := h.container.GetOAuthFlow()
	if !flow.Enabled() {
		h.writeError(w, r, apperrors.NewValidationError("Web sign-in is not configured", nil))
		return
	}

	state := uuid.New().String()
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   300,
		HttpOnly: true,
		Secure:   !h.container.GetConfig().IsDevelopment(),
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, flow.LoginURL(state), http.StatusTemporaryRedirect)
}

// OAuthCallback handles GET /auth/google/callback: exchanges the code for an
// ID token and runs the same sign-in flow as POST /auth/google, then sends
// the browser back to the frontend with the session token.
func (h *AuthHandler) OAuthCallback(w http.ResponseWriter, r *http.Request) {
	log := h.container.GetLogger()
	flow := h.container.GetOAuthFlow()
	frontendURL := h.container.GetConfig().FrontendURL

	if !flow.Enabled() {
		h.writeError(w, r, apperrors.NewValidationError("Web sign-in is not configured", nil))
		return
	}

	stateCookie, err := r.Cookie(oauthStateCookie)
	if err != nil || stateCookie.Value == "" || stateCookie.Value != r.URL.Query().Get("state") {
		h.redirectWithError(w, r, frontendURL, "invalid_state")
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		h.redirectWithError(w, r, frontendURL, "no_code")
		return
	}

	idToken, err := flow.ExchangeIDToken(r.Context(), code)
	if err != nil {
		log.WithError(err).Warn("OAuth code exchange failed")
		h.redirectWithError(w, r, frontendURL, "token_exchange_failed")
		return
	}

	resp, err := h.container.GetAuthService().SignInWithGoogle(r.Context(), idToken)
	if err != nil {
		log.WithError(err).Warn("Sign-in after OAuth callback failed")
		h.redirectWithError(w, r, frontendURL, "sign_in_failed")
		return
	}

	target, err := url.Parse(frontendURL + "/")
	if err != nil {
		h.writeError(w, r, apperrors.NewInternalError("Invalid frontend URL", err))
		return
	}
	params := url.Values{}
	params.Add("token", resp.AccessToken)
	params.Add("expires_in", strconv.FormatInt(resp.ExpiresIn, 10))
	target.RawQuery = params.Encode()

	http.Redirect(w, r, target.String(), http.StatusTemporaryRedirect)
}

// redirectWithError bounces the browser back to the frontend with an error
// code instead of a raw failure page.
func (h *AuthHandler) redirectWithError(w http.ResponseWriter, r *http.Request, frontendURL, code string) {
	http.Redirect(w, r, frontendURL+"/?error="+url.QueryEscape(code), http.StatusTemporaryRedirect)
}

// writeError writes an error response to the client
func (h *AuthHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	writeError(w, r, err, h.container.GetConfig().Environment, h.container.GetLogger())
}
