package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Session is the client-side authentication state: the bearer token, when
// it expires and who it belongs to.  It is a plain value owned by whoever
// created it; nothing in this package keeps a global copy.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      *User     `json:"user,omitempty"`
}

// Valid reports whether the session holds a token that has not expired at
// now.
func (s Session) Valid(now time.Time) bool {
	return s.Token != "" && now.Before(s.ExpiresAt)
}

// ExpiresWithin reports whether the token expires within d of now.  An
// empty session never "expires within" anything.
func (s Session) ExpiresWithin(d time.Duration, now time.Time) bool {
	return s.Token != "" && !s.ExpiresAt.After(now.Add(d))
}

// Load replaces s with the session stored at path.  A missing file leaves
// s empty and is not an error.
func (s *Session) Load(path string) error {
	*s = Session{}
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read session: %w", err)
	}
	if err := json.Unmarshal(b, s); err != nil {
		return fmt.Errorf("decode session: %w", err)
	}
	return nil
}

// Save writes s to path, readable by the current user only.
func (s Session) Save(path string) error {
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return os.Rename(tmp, path)
}

// Clear empties s and removes the file at path.
func (s *Session) Clear(path string) error {
	*s = Session{}
	if path == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}
