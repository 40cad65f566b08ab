package memory

import (
	"sync"

	"github.com/fitness-app/fitclient/internal/domain/session"
)

// KVStore implements session.Store with a map. Nothing survives the process;
// used by tests and by --store memory.
type KVStore struct {
	mu      sync.RWMutex
	entries map[string]string
}

// NewKVStore creates an empty store.
func NewKVStore() *KVStore {
	return &KVStore{entries: make(map[string]string)}
}

// Get returns the value under key or session.ErrKeyNotFound.
func (s *KVStore) Get(key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.entries[key]
	if !ok {
		return "", session.ErrKeyNotFound
	}
	return v, nil
}

// Set stores value under key.
func (s *KVStore) Set(key, value string) error {
	s.mu.Lock()
	s.entries[key] = value
	s.mu.Unlock()
	return nil
}

// Delete removes keys. Missing keys are ignored.
func (s *KVStore) Delete(keys ...string) error {
	s.mu.Lock()
	for _, k := range keys {
		delete(s.entries, k)
	}
	s.mu.Unlock()
	return nil
}

// Len returns the number of stored keys.
func (s *KVStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Snapshot returns a copy of every entry.
func (s *KVStore) Snapshot() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.entries))
	for k, v := range s.entries {
		out[k] = v
	}
	return out
}

var _ session.Store = (*KVStore)(nil)
