// Package gate guards entry into layout-edit mode with a single shared
// secret. Any signed-in employee may record transactions; only holders
// of this secret may reshape a rack's layout.
package gate

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// DefaultSecret applies until a secret is explicitly set.
const DefaultSecret = "1234"

// ErrEmptySecret is returned when an empty string is set as the secret.
var ErrEmptySecret = errors.New("edit secret must not be empty")

// Gate stores the shared edit secret in a flat file outside the
// relational store.
type Gate struct {
	path string
	mu   sync.Mutex
}

// New creates a gate backed by the file at path. The file is created
// lazily on the first SetSecret call.
func New(path string) *Gate {
	return &Gate{path: path}
}

// CheckSecret reports whether candidate matches the current secret.
func (g *Gate) CheckSecret(candidate string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	secret, err := g.load()
	if err != nil {
		return false, err
	}
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(secret)) == 1, nil
}

// SetSecret replaces the shared secret.
func (g *Gate) SetSecret(newSecret string) error {
	if strings.TrimSpace(newSecret) == "" {
		return ErrEmptySecret
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(g.path), 0o755); err != nil {
		return fmt.Errorf("create secret dir: %w", err)
	}
	if err := os.WriteFile(g.path, []byte(newSecret+"\n"), 0o600); err != nil {
		return fmt.Errorf("write secret: %w", err)
	}
	return nil
}

func (g *Gate) load() (string, error) {
	data, err := os.ReadFile(g.path)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultSecret, nil
	}
	if err != nil {
		return "", fmt.Errorf("read secret: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}
