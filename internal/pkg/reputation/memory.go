package reputation

import (
	"context"
	"sync"
)

// MemoryStore is an in-process Store for development and tests.
type MemoryStore struct {
	mu     sync.RWMutex
	scores map[string]uint64
	badges map[string]bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		scores: make(map[string]uint64),
		badges: make(map[string]bool),
	}
}

func (s *MemoryStore) ScoreOf(ctx context.Context, addr string) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scores[addr], nil
}

func (s *MemoryStore) SetScore(ctx context.Context, addr string, score uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scores[addr] = score
	return nil
}

func (s *MemoryStore) HasBadge(ctx context.Context, addr string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.badges[addr], nil
}

func (s *MemoryStore) MintBadge(ctx context.Context, addr string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.badges[addr] = true
	return nil
}
