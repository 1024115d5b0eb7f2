package chatclient

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Store is the persistence port the reducer writes its facets through. The
// browser front-end backs it with local storage; Go callers use the memory
// or file implementations below.
type Store interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte)
	Delete(key string)
}

// MemoryStore implements Store with a mutex-guarded map.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string][]byte
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string][]byte)}
}

// Get returns the value stored under key.
func (s *MemoryStore) Get(key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.items[key]
	return value, ok
}

// Set stores value under key.
func (s *MemoryStore) Set(key string, value []byte) {
	s.mu.Lock()
	s.items[key] = append([]byte(nil), value...)
	s.mu.Unlock()
}

// Delete removes key.
func (s *MemoryStore) Delete(key string) {
	s.mu.Lock()
	delete(s.items, key)
	s.mu.Unlock()
}

// FileStore implements Store with one JSON file per key, so CLI sessions
// survive process restarts the way a browser tab survives reloads.
type FileStore struct {
	dir string
}

// NewFileStore creates the directory if needed and returns a store over it.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileStore{dir: dir}, nil
}

// Get reads the file backing key.
func (s *FileStore) Get(key string) ([]byte, bool) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		return nil, false
	}
	return data, true
}

// Set writes the file backing key.
func (s *FileStore) Set(key string, value []byte) {
	_ = os.WriteFile(s.path(key), value, 0o644)
}

// Delete removes the file backing key.
func (s *FileStore) Delete(key string) {
	_ = os.Remove(s.path(key))
}

func (s *FileStore) path(key string) string {
	sanitized := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, key)
	return filepath.Join(s.dir, sanitized+".json")
}
