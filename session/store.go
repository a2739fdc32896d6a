// Package session holds the credential the request executor reads. The
// executor never writes to it; login and logout flows do.
package session

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Store is a credential holder, optionally persisted to a file so the
// session survives restarts.
type Store struct {
	mu    sync.RWMutex
	token string
	path  string
}

// NewStore returns an in-memory store.
func NewStore() *Store {
	return &Store{}
}

// NewFileStore returns a store backed by path, loading a credential saved by
// an earlier run if there is one.
func NewFileStore(path string) (*Store, error) {
	s := NewStore()
	s.path = path

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("session: load %s: %w", path, err)
	}

	s.token = strings.TrimSpace(string(data))

	return s, nil
}

// Token returns the current credential, or an empty string when there is none.
func (s *Store) Token() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, nil
}

func (s *Store) Set(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = token

	if s.path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("session: save %s: %w", s.path, err)
	}
	if err := os.WriteFile(s.path, []byte(token), 0o600); err != nil {
		return fmt.Errorf("session: save %s: %w", s.path, err)
	}
	return nil
}

func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = ""

	if s.path == "" {
		return nil
	}
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("session: clear %s: %w", s.path, err)
	}
	return nil
}
