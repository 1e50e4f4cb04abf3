package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/bytedance/sonic"
)

// Store is a file-backed key/value store with a write-through memory
// cache. Values are JSON documents; keys map to files under the store
// directory.
type Store struct {
	mu    sync.RWMutex
	dir   string
	cache map[string][]byte
}

// New opens a store rooted at dir, creating it if needed.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage dir: %w", err)
	}
	return &Store{dir: dir, cache: make(map[string][]byte)}, nil
}

// Set marshals value and persists it under key.
func (s *Store) Set(key string, value interface{}) error {
	if err := validateKey(key); err != nil {
		return err
	}
	data, err := sonic.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.WriteFile(s.path(key), data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	s.cache[key] = data
	return nil
}

// Get unmarshals the value stored under key into out.
func (s *Store) Get(key string, out interface{}) error {
	if err := validateKey(key); err != nil {
		return err
	}

	s.mu.RLock()
	data, cached := s.cache[key]
	s.mu.RUnlock()

	if !cached {
		var err error
		data, err = os.ReadFile(s.path(key))
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", key, err)
		}
		s.mu.Lock()
		s.cache[key] = data
		s.mu.Unlock()
	}

	if err := sonic.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}
	return nil
}

// Delete removes key. Missing keys are not an error.
func (s *Store) Delete(key string) error {
	if err := validateKey(key); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.cache, key)
	if err := os.Remove(s.path(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// Keys lists every stored key in sorted order.
func (s *Store) Keys() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list storage dir: %w", err)
	}

	keys := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		keys = append(keys, strings.TrimSuffix(name, ".json"))
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

func validateKey(key string) error {
	if key == "" {
		return fmt.Errorf("storage key cannot be empty")
	}
	if strings.ContainsAny(key, "/\\") || strings.Contains(key, "..") {
		return fmt.Errorf("invalid storage key %q", key)
	}
	return nil
}
