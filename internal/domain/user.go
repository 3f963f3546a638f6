package domain

import "time"

// User is the persisted account record. ID is generated locally and never
// reused; GoogleID is the provider's stable subject identifier and is the
// reconciliation key.
type User struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	Name      *string    `json:"name,omitempty"`
	Picture   *string    `json:"picture,omitempty"`
	GoogleID  string     `json:"google_id"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
	LastLogin time.Time  `json:"last_login"`
	IsActive  bool       `json:"is_active"`
}

// UserResponse is the public projection returned over HTTP. It never leaks
// is_active or last_login.
type UserResponse struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	Name      *string    `json:"name,omitempty"`
	Picture   *string    `json:"picture,omitempty"`
	GoogleID  string     `json:"google_id"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// Response returns the public projection of the user.
func (u *User) Response() UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Picture:   u.Picture,
		GoogleID:  u.GoogleID,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// GoogleClaims are the verified claims extracted from a Google ID token.
type GoogleClaims struct {
	Subject       string
	Email         string
	Name          *string
	Picture       *string
	EmailVerified bool
}

// GoogleSignInRequest is the body of POST /auth/google.
type GoogleSignInRequest struct {
	IDToken string `json:"id_token"`
}

// TokenResponse is the payload of a successful sign-in.
type TokenResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresIn   int64        `json:"expires_in"`
	User        UserResponse `json:"user"`
}
