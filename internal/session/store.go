// Package session holds the authenticated session (bearer token + user
// profile) and persists the token across restarts through a durable slot.
package session

import (
	"log/slog"
	"sync"

	"finpulse/internal/api"
)

// Slot is the durable key-value slot the bearer token survives restarts in.
type Slot interface {
	// Load returns the stored token, or "" when none is stored.
	Load() (string, error)

	// Save writes the token, replacing any previous value.
	Save(token string) error

	// Clear removes the stored token. Clearing an empty slot is a no-op.
	Clear() error
}

// Store owns the current session. The invariant is that a user profile is
// never observable without a token; a token without a profile is the
// transient "restoring" shape.
type Store struct {
	mu    sync.RWMutex
	token string
	user  *api.UserProfile
	slot  Slot
	log   *slog.Logger
}

// NewStore creates a session store backed by the given durable slot.
func NewStore(slot Slot, log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}
	return &Store{slot: slot, log: log.With("component", "session")}
}

// Token returns the current bearer token, or "" when logged out.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns the current profile, or nil when no profile is installed.
func (s *Store) User() *api.UserProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// LoggedIn reports whether a full session (token and profile) is installed.
func (s *Store) LoggedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != "" && s.user != nil
}

// Adopt installs a token without a profile, in memory only. Used while a
// login or restore flow is fetching the profile; Set or Clear must follow.
func (s *Store) Adopt(token string) {
	s.mu.Lock()
	s.token = token
	s.user = nil
	s.mu.Unlock()
}

// Set atomically installs both token and profile and persists the token to
// the durable slot. Persisting is the named post-profile-fetch step of the
// login flow.
func (s *Store) Set(token string, user *api.UserProfile) error {
	s.mu.Lock()
	s.token = token
	s.user = user
	s.mu.Unlock()

	if err := s.slot.Save(token); err != nil {
		s.log.Warn("persisting session token", "error", err)
		return err
	}
	return nil
}

// Clear removes the token, the profile, and the durable slot entry. It is
// idempotent: clearing a cleared store is a no-op.
func (s *Store) Clear() error {
	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.mu.Unlock()

	return s.slot.Clear()
}

// Restore loads the token from the durable slot and, if present, adopts it.
// It returns the token so the caller can chain the profile fetch; "" means
// there is no stored session and nothing was changed.
func (s *Store) Restore() (string, error) {
	token, err := s.slot.Load()
	if err != nil {
		return "", err
	}
	if token == "" {
		return "", nil
	}
	s.Adopt(token)
	return token, nil
}
