package memory

import (
	"context"
	"fmt"
	"sync"
)

// DedupStore tracks known entity identifiers per scope.
type DedupStore struct {
	mu   sync.RWMutex
	seen map[string]map[string]struct{}
}

// NewDedupStore creates an empty DedupStore.
func NewDedupStore() *DedupStore {
	return &DedupStore{seen: make(map[string]map[string]struct{})}
}

// IsKnown reports whether the identifier was recorded for the scope.
func (s *DedupStore) IsKnown(_ context.Context, scope, id string) (bool, error) {
	if scope == "" || id == "" {
		return false, fmt.Errorf("scope and id are required")
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.seen[scope][id]
	return ok, nil
}

// MarkKnown records the identifier for the scope. Idempotent.
func (s *DedupStore) MarkKnown(_ context.Context, scope, id string) error {
	if scope == "" || id == "" {
		return fmt.Errorf("scope and id are required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ids, ok := s.seen[scope]
	if !ok {
		ids = make(map[string]struct{})
		s.seen[scope] = ids
	}
	ids[id] = struct{}{}
	return nil
}
