// Package creds persists the bearer token between runs. The token lives in a
// single file named "token" under the data directory; an absent or empty
// file means requests go out anonymous rather than failing.
package creds

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const tokenFile = "token"

// Store reads and writes the persisted bearer token.
type Store struct {
	path string
}

// NewStore creates a credential store rooted at dataDir.
func NewStore(dataDir string) *Store {
	return &Store{path: filepath.Join(dataDir, tokenFile)}
}

// Token returns the current bearer token, or "" when none is stored. It
// re-reads the file on every call so that connects and reconnects observe
// token rotation without a restart.
func (s *Store) Token() string {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// Save persists the token, creating the data directory if needed.
func (s *Store) Save(token string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	if err := os.WriteFile(s.path, []byte(token+"\n"), 0o600); err != nil {
		return fmt.Errorf("write token: %w", err)
	}
	return nil
}

// Clear removes the stored token. Clearing an absent token is a no-op.
func (s *Store) Clear() error {
	err := os.Remove(s.path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove token: %w", err)
	}
	return nil
}
