package api

import (
	"context"
	"net/http"

	"github.com/samudhan2008/sa-notes-beta/internal/server/models"
)

// AuthSession is returned by Register and Login.
type AuthSession struct {
	User *models.Profile `json:"user"`
	TokenPair
}

type credentials struct {
	Email    string `json:"email"`
	Username string `json:"username,omitempty"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Register creates an account and installs the returned tokens.
func (c *Client) Register(ctx context.Context, email, username, password string) (*AuthSession, error) {
	var s AuthSession
	if err := c.doPublic(ctx, http.MethodPost, "/api/auth/register", credentials{Email: email, Username: username, Password: password}, &s); err != nil {
		return nil, err
	}
	c.SetTokens(s.TokenPair)
	return &s, nil
}

// Login authenticates and installs the returned tokens.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthSession, error) {
	var s AuthSession
	if err := c.doPublic(ctx, http.MethodPost, "/api/auth/login", credentials{Email: email, Password: password}, &s); err != nil {
		return nil, err
	}
	c.SetTokens(s.TokenPair)
	return &s, nil
}

// Logout revokes the refresh token server-side and forgets the local pair,
// even when the server call fails.
func (c *Client) Logout(ctx context.Context) error {
	rt := c.Tokens().RefreshToken
	c.SetTokens(TokenPair{})
	if rt == "" {
		return nil
	}
	return c.doPublic(ctx, http.MethodPost, "/api/auth/logout", refreshRequest{RefreshToken: rt}, nil)
}

func (c *Client) VerifyEmail(ctx context.Context, token string) (*models.Profile, error) {
	var p models.Profile
	if err := c.doPublic(ctx, http.MethodPost, "/api/auth/verify", map[string]string{"token": token}, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) RequestPasswordReset(ctx context.Context, email string) error {
	return c.doPublic(ctx, http.MethodPost, "/api/auth/password-reset", map[string]string{"email": email}, nil)
}

func (c *Client) Profile(ctx context.Context) (*models.Profile, error) {
	var p models.Profile
	if err := c.do(ctx, http.MethodGet, "/api/me", nil, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) UpdateProfile(ctx context.Context, upd models.ProfileUpdate) (*models.Profile, error) {
	var p models.Profile
	if err := c.do(ctx, http.MethodPatch, "/api/me", nil, upd, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) ChangePassword(ctx context.Context, current, next string) error {
	req := map[string]string{"current_password": current, "new_password": next}
	return c.do(ctx, http.MethodPost, "/api/me/password", nil, req, nil)
}
