// Package session persists the access/refresh token pair of the signed-in
// user and exposes the claims carried by the access token.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/atinyakov/medstock/internal/models"
)

// ErrNoSession is returned when no usable access token is stored.
var ErrNoSession = errors.New("not signed in")

// ErrExpired is returned when the access token has expired but a refresh
// token is still stored. It wraps ErrNoSession.
var ErrExpired = fmt.Errorf("%w: access token expired", ErrNoSession)

// Store is a file-backed credential store. An empty path keeps the
// credentials in memory only. Store is safe for concurrent use.
type Store struct {
	path  string
	mu    sync.Mutex
	creds models.Credentials
	renew func() error
}

// Open loads the credentials stored at path. A missing file yields an
// empty store.
func Open(path string) (*Store, error) {
	s := &Store{path: path}
	if path == "" {
		return s, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("read credentials: %w", err)
	}
	if len(data) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(data, &s.creds); err != nil {
		return nil, fmt.Errorf("decode credentials: %w", err)
	}
	return s, nil
}

// SetRenewer installs the function Claims uses to obtain a new access token
// when the stored one has expired.
func (s *Store) SetRenewer(renew func() error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.renew = renew
}

func (s *Store) renewer() func() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.renew
}

// Token returns the stored access token.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.creds.Token
}

// RefreshToken returns the stored refresh token.
func (s *Store) RefreshToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.creds.RefreshToken
}

// Save replaces both tokens. An empty refresh token keeps the previous one,
// since the login endpoint does not always issue a new one.
func (s *Store) Save(c models.Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.RefreshToken == "" {
		c.RefreshToken = s.creds.RefreshToken
	}
	s.creds = c
	return s.persist()
}

// SetToken replaces the access token only.
func (s *Store) SetToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds.Token = token
	return s.persist()
}

// Clear removes both tokens.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds = models.Credentials{}
	if s.path == "" {
		return nil
	}
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove credentials: %w", err)
	}
	return nil
}

// persist writes the credentials; callers hold mu.
func (s *Store) persist() error {
	if s.path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create credentials dir: %w", err)
	}
	data, err := json.Marshal(s.creds)
	if err != nil {
		return fmt.Errorf("encode credentials: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write credentials: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace credentials: %w", err)
	}
	return nil
}
