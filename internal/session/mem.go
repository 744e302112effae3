package session

import "sync"

// MemStore is the ephemeral per-process store.
type MemStore struct {
	mu sync.RWMutex
	m  map[string]string
}

// NewMemStore creates an empty ephemeral store.
func NewMemStore() *MemStore {
	return &MemStore{m: make(map[string]string)}
}

func (s *MemStore) Get(key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.m[key], nil
}

func (s *MemStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = value
	return nil
}

func (s *MemStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, key)
	return nil
}
