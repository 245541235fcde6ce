package utils

import "sync"

// KeySet is a thread-safe set of string keys, used to track listing ids that
// have already been seen.
type KeySet struct {
	mu   sync.RWMutex
	seen map[string]struct{}
}

// NewKeySet creates an empty KeySet.
func NewKeySet() *KeySet {
	return &KeySet{seen: make(map[string]struct{})}
}

// Add returns true if the key was newly added, false if already present.
func (s *KeySet) Add(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.seen[key]; exists {
		return false
	}
	s.seen[key] = struct{}{}
	return true
}

// Contains reports whether key has been added.
func (s *KeySet) Contains(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, exists := s.seen[key]
	return exists
}

// Size returns the number of unique keys tracked.
func (s *KeySet) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.seen)
}
