package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/atinyakov/medstock/internal/models"
)

// Claims are the user attributes carried by the access token.
type Claims struct {
	UserID   models.ID   `json:"id"`
	Username string      `json:"username"`
	Name     string      `json:"name"`
	Email    string      `json:"email,omitempty"`
	Role     models.Role `json:"role"`
	jwt.RegisteredClaims
}

// IsAdmin reports whether the token was issued to an administrator.
func (c *Claims) IsAdmin() bool {
	return c != nil && c.Role == models.RoleAdmin
}

// DisplayName returns the name shown as the actor of withdrawal logs.
func (c *Claims) DisplayName() string {
	if c == nil {
		return ""
	}
	if c.Name != "" {
		return c.Name
	}
	return c.Username
}

// ParseClaims decodes the token payload without verifying the signature;
// the API verifies every token it receives.
func ParseClaims(token string, now time.Time) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("decode token: %w", err)
	}
	if exp := claims.ExpiresAt; exp != nil && !now.Before(exp.Time) {
		return nil, fmt.Errorf("decode token: %w", jwt.ErrTokenExpired)
	}
	return claims, nil
}

// Claims decodes the stored access token. An expired token is dropped while
// the refresh token is kept; the installed renewer then obtains a new one.
// Without a renewer ErrExpired is returned so the caller can refresh. A
// malformed token, an expired one without a refresh token, or a failed
// renewal leaves the store empty and yields ErrNoSession.
func (s *Store) Claims() (*Claims, error) {
	claims, err := s.decode()
	if !errors.Is(err, ErrExpired) {
		return claims, err
	}
	renew := s.renewer()
	if renew == nil {
		return nil, err
	}
	if rerr := renew(); rerr != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoSession, rerr)
	}
	claims, err = s.decode()
	if errors.Is(err, ErrExpired) {
		if cerr := s.Clear(); cerr != nil {
			return nil, cerr
		}
		return nil, fmt.Errorf("%w: renewed token is expired", ErrNoSession)
	}
	return claims, err
}

func (s *Store) decode() (*Claims, error) {
	token := s.Token()
	if token == "" {
		if s.RefreshToken() != "" {
			return nil, ErrExpired
		}
		return nil, ErrNoSession
	}
	claims, err := ParseClaims(token, time.Now())
	if err == nil {
		return claims, nil
	}
	if errors.Is(err, jwt.ErrTokenExpired) && s.RefreshToken() != "" {
		if serr := s.SetToken(""); serr != nil {
			return nil, serr
		}
		return nil, ErrExpired
	}
	if cerr := s.Clear(); cerr != nil {
		return nil, cerr
	}
	return nil, fmt.Errorf("%w: %v", ErrNoSession, err)
}

// Guard reports whether a session exists that is usable as is or can be
// renewed with the stored refresh token.
func (s *Store) Guard() bool {
	_, err := s.Claims()
	return err == nil || errors.Is(err, ErrExpired)
}
