package prefs

import (
	"context"
	"sync"
)

// MemoryStore is an in-process Store for tests. It counts writes so tests can
// assert that persistence happened without observable state churn.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
	writes map[string]int
	// FailWrites makes every Set return this error, simulating an
	// unavailable backing store.
	FailWrites error
	// FailReads makes every Get return this error.
	FailReads error
}

// NewMemoryStore builds an empty in-memory preference store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string), writes: make(map[string]int)}
}

func (s *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.FailReads != nil {
		return "", false, s.FailReads
	}
	value, ok := s.values[key]
	return value, ok, nil
}

func (s *MemoryStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writes[key]++
	if s.FailWrites != nil {
		return s.FailWrites
	}
	s.values[key] = value
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}

// Writes reports how many Set calls targeted key, including failed ones.
func (s *MemoryStore) Writes(key string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writes[key]
}
