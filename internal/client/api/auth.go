package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/atinyakov/medstock/internal/models"
)

// LoginResponse is the body of a successful login.
type LoginResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken,omitempty"`
	Message      string `json:"message,omitempty"`
}

// Login exchanges email and password for a token pair. It does not store
// the tokens.
func (c *Client) Login(ctx context.Context, email, password string) (models.Credentials, error) {
	in := map[string]string{"email": email, "password": password}
	var out LoginResponse
	if err := c.do(ctx, c.raw, http.MethodPost, "/auth/login", nil, in, &out); err != nil {
		return models.Credentials{}, err
	}
	if out.Token == "" {
		msg := out.Message
		if msg == "" {
			msg = "login response carries no token"
		}
		return models.Credentials{}, &APIError{StatusCode: http.StatusOK, Message: msg}
	}
	return models.Credentials{Token: out.Token, RefreshToken: out.RefreshToken}, nil
}

// Register creates an account on behalf of the signed-in administrator and
// returns the server message.
func (c *Client) Register(ctx context.Context, u models.User) (string, error) {
	var out models.Message
	if err := c.post(ctx, "/auth/register", u, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

// refresh is the transport.RefreshFunc of the client. It bypasses the
// authenticating transport.
func (c *Client) refresh(ctx context.Context, refreshToken string) (string, error) {
	in := map[string]string{"refreshToken": refreshToken}
	var out struct {
		Token string `json:"token"`
	}
	if err := c.do(ctx, c.raw, http.MethodPost, "/auth/refresh-token", nil, in, &out); err != nil {
		return "", err
	}
	if out.Token == "" {
		return "", errors.New("refresh response carries no token")
	}
	return out.Token, nil
}
