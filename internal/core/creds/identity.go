package creds

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const identityFile = "identity.json"

// ErrNoIdentity is returned when no signed-in identity is stored.
var ErrNoIdentity = errors.New("not signed in")

// Identity is the profile of the signed-in user, persisted next to the
// token so commands know who "self" is without a round trip.
type Identity struct {
	ID       string `json:"id"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

func (s *Store) identityPath() string {
	return filepath.Join(filepath.Dir(s.path), identityFile)
}

// SaveIdentity persists the signed-in user's profile.
func (s *Store) SaveIdentity(id Identity) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	data, err := json.MarshalIndent(id, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal identity: %w", err)
	}
	if err := os.WriteFile(s.identityPath(), data, 0o600); err != nil {
		return fmt.Errorf("write identity: %w", err)
	}
	return nil
}

// Identity returns the stored profile, or ErrNoIdentity when absent.
func (s *Store) Identity() (Identity, error) {
	data, err := os.ReadFile(s.identityPath())
	if err != nil {
		if os.IsNotExist(err) {
			return Identity{}, ErrNoIdentity
		}
		return Identity{}, fmt.Errorf("read identity: %w", err)
	}

	var id Identity
	if err := json.Unmarshal(data, &id); err != nil {
		return Identity{}, fmt.Errorf("parse identity: %w", err)
	}
	return id, nil
}

// ClearIdentity removes the stored profile. Absent is a no-op.
func (s *Store) ClearIdentity() error {
	err := os.Remove(s.identityPath())
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove identity: %w", err)
	}
	return nil
}
