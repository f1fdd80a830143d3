package credential

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/joho/godotenv"

	"docextract/internal/apperr"
)

// Store holds the Gemini API key for the process and persists it to an env file.
type Store struct {
	mu    sync.RWMutex
	value string
	path  string
	key   string
}

// NewStore opens the env file at path, creating it empty if it does not exist,
// and loads the value stored under key. A non-empty override (normally the
// process environment) takes precedence over the file.
func NewStore(path, key, override string) (*Store, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := os.WriteFile(path, nil, 0o600); err != nil {
			return nil, fmt.Errorf("create env file: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("stat env file: %w", err)
	}

	vals, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("read env file: %w", err)
	}

	s := &Store{path: path, key: key, value: strings.TrimSpace(vals[key])}
	if o := strings.TrimSpace(override); o != "" {
		s.value = o
	}
	return s, nil
}

// Get returns the current key and whether one is configured.
func (s *Store) Get() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value, s.value != ""
}

// Configured reports whether a key is present.
func (s *Store) Configured() bool {
	_, ok := s.Get()
	return ok
}

// Set persists value and makes it the current key. An empty value is rejected
// and leaves the store unchanged.
func (s *Store) Set(value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return apperr.Configuration("API key cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.persist(value); err != nil {
		return apperr.Internal("Failed to update API key", err)
	}
	s.value = value
	return nil
}

// Path is the env file backing the store.
func (s *Store) Path() string {
	return s.path
}

// persist rewrites the env file with key updated, keeping other entries.
// Callers hold s.mu.
func (s *Store) persist(value string) error {
	vals, err := godotenv.Read(s.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("read env file: %w", err)
	}
	if vals == nil {
		vals = map[string]string{}
	}
	vals[s.key] = value

	content, err := godotenv.Marshal(vals)
	if err != nil {
		return fmt.Errorf("marshal env file: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".env-*")
	if err != nil {
		return fmt.Errorf("create temp env file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(content + "\n"); err != nil {
		tmp.Close()
		return fmt.Errorf("write env file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync env file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close env file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o600); err != nil {
		return fmt.Errorf("chmod env file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace env file: %w", err)
	}
	return nil
}
