package client

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Credentials is the client-side session context: the bearer token and the
// profile of the signed-in user. It replaces any global auth state; callers
// load it at startup and clear it on logout or expiry.
type Credentials struct {
	Token string `json:"token"`
	User  *User  `json:"user,omitempty"`
}

// CredentialStore persists credentials across program runs.
type CredentialStore struct {
	path string
}

// NewCredentialStore creates a store at path. An empty path places the file
// under the user config directory.
func NewCredentialStore(path string) (*CredentialStore, error) {
	if path == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve config dir: %w", err)
		}
		path = filepath.Join(dir, "interview-coach", "credentials.json")
	}
	return &CredentialStore{path: path}, nil
}

// Load reads stored credentials. A missing file yields empty credentials, not
// an error.
func (s *CredentialStore) Load() (*Credentials, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Credentials{}, nil
		}
		return nil, fmt.Errorf("failed to read credentials: %w", err)
	}

	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("failed to parse credentials: %w", err)
	}
	return &creds, nil
}

// Save writes credentials with owner-only permissions.
func (s *CredentialStore) Save(creds *Credentials) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}

	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal credentials: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write credentials: %w", err)
	}
	return nil
}

// Clear removes the stored credentials.
func (s *CredentialStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove credentials: %w", err)
	}
	return nil
}
