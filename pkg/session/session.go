// Package session provides explicit login state for lineage.
//
// A [Session] is created on login and handed to the graph store and the UI
// layers at construction. Logging out deletes the session and must also
// clear any graph state loaded under it; see store.Store.Reset.
//
// # Backends
//
// Sessions are kept in a [Store]:
//   - file: JSON files in a config directory, for the CLI
//   - redis: shared storage for multi-instance API servers
//
// # Usage
//
//	store, err := session.NewCLIStore("")
//	if err != nil {
//	    return err
//	}
//
//	// Login
//	sess, err := session.New(session.LocalUser(), session.DefaultTTL)
//	if err != nil {
//	    return err
//	}
//	store.SaveSession(ctx, sess)
//
//	// Later
//	sess, err := store.GetSession(ctx)
//	if err != nil {
//	    return err
//	}
//	if sess == nil {
//	    return session.ErrNotLoggedIn
//	}
package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"
)

// Sentinel errors for session operations.
var (
	// ErrNotLoggedIn is returned when an operation needs a session and none
	// is active.
	ErrNotLoggedIn = errors.New("not logged in")

	// ErrExpired is returned when a session has exceeded its TTL.
	ErrExpired = errors.New("expired")
)

// User is the identity a session belongs to.
type User struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	PhotoURL string `json:"photo_url,omitempty"`
}

// Session stores user session data.
type Session struct {
	ID        string    `json:"id"`
	User      *User     `json:"user"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// UserID returns the owning user's ID, or "" for a nil session. Storage
// backends use it to namespace each user's family tree.
func (s *Session) UserID() string {
	if s == nil || s.User == nil {
		return ""
	}
	return s.User.ID
}

// Valid returns nil when s can be used, [ErrNotLoggedIn] for a nil session
// and [ErrExpired] for an expired one.
func (s *Session) Valid() error {
	switch {
	case s == nil || s.User == nil:
		return ErrNotLoggedIn
	case s.IsExpired():
		return ErrExpired
	}
	return nil
}

// Store is the interface for session storage backends.
type Store interface {
	// Get retrieves a session by ID.
	// Returns nil, nil if the session doesn't exist or has expired.
	Get(ctx context.Context, sessionID string) (*Session, error)

	// Set stores a session.
	Set(ctx context.Context, session *Session) error

	// Delete removes a session.
	Delete(ctx context.Context, sessionID string) error

	// Cleanup removes expired sessions (may be a no-op when the backend
	// expires keys itself).
	Cleanup(ctx context.Context) error
}

// DefaultTTL is the default session duration.
const DefaultTTL = 30 * 24 * time.Hour

// GenerateID creates a cryptographically secure random session ID.
func GenerateID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// New creates a new session for user.
func New(user *User, ttl time.Duration) (*Session, error) {
	id, err := GenerateID()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	return &Session{
		ID:        id,
		User:      user,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}, nil
}

// LocalUser returns the built-in local account used by the mock login flow.
func LocalUser() *User {
	return &User{
		ID:    "usr_123456",
		Name:  "Alex Pendragon",
		Email: "alex.pendragon@example.com",
	}
}

// MockLocal creates a long-lived session for [LocalUser]. It is used when
// authentication is disabled, such as in tests or with serve --no-auth.
func MockLocal() *Session {
	now := time.Now()
	return &Session{
		ID:        "local-session",
		User:      LocalUser(),
		ExpiresAt: now.Add(365 * 24 * time.Hour),
		CreatedAt: now,
	}
}
