// Package service implements the operations behind the dashboard screens
// and the CLI shell, delegating remote calls to the inventory API client.
// Each operation validates locally, calls the API and returns the patched
// snapshot the caller should render.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/atinyakov/medstock/internal/client/session"
	"github.com/atinyakov/medstock/internal/inventory"
	"github.com/atinyakov/medstock/internal/models"
)

var (
	// ErrForbidden is returned when a non-admin calls an admin operation.
	ErrForbidden = errors.New("administrator role required")
	// ErrNotFound is returned when an id is not part of the given snapshot.
	ErrNotFound = errors.New("not found")
)

// AuthAPI defines the remote operations required by the authentication service.
type AuthAPI interface {
	// Login exchanges credentials for a token pair.
	Login(ctx context.Context, email, password string) (models.Credentials, error)
	// Register creates an account and returns the server message.
	Register(ctx context.Context, u models.User) (string, error)
}

// Identity exposes the claims of the signed-in user.
type Identity interface {
	Claims() (*session.Claims, error)
}

// Sessions is the credential store the authentication service writes to.
type Sessions interface {
	Identity
	Save(c models.Credentials) error
	Clear() error
}

// AuthService implements sign-in, sign-out and member registration.
type AuthService struct {
	api      AuthAPI
	sessions Sessions
}

// NewAuthService constructs an AuthService.
func NewAuthService(client AuthAPI, sessions Sessions) *AuthService {
	return &AuthService{api: client, sessions: sessions}
}

// Login validates the form, signs in and stores the token pair. It returns
// the claims of the new session.
func (s *AuthService) Login(ctx context.Context, email, password string) (*session.Claims, error) {
	if err := inventory.ValidateLogin(email, password); err != nil {
		return nil, err
	}
	creds, err := s.api.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if err := s.sessions.Save(creds); err != nil {
		return nil, fmt.Errorf("store credentials: %w", err)
	}
	return s.sessions.Claims()
}

// Logout clears the stored tokens.
func (s *AuthService) Logout() error {
	return s.sessions.Clear()
}

// Current returns the claims of the signed-in user.
func (s *AuthService) Current() (*session.Claims, error) {
	return s.sessions.Claims()
}

// RegisterMember creates a member account. Only administrators may do so.
func (s *AuthService) RegisterMember(ctx context.Context, u models.User) (string, error) {
	if err := requireAdmin(s.sessions); err != nil {
		return "", err
	}
	if err := inventory.ValidateRegistration(u); err != nil {
		return "", err
	}
	u.ID = ""
	u.Role = models.RoleMember
	return s.api.Register(ctx, u)
}

func requireAdmin(id Identity) error {
	claims, err := id.Claims()
	if err != nil {
		return err
	}
	if !claims.IsAdmin() {
		return ErrForbidden
	}
	return nil
}
