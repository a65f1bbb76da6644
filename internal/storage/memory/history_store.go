// Package memory provides in-memory persistence implementations for tests
// and single-process development.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/belivan/prospect-discovery/internal/discovery"
)

// HistoryStore keeps query records per scope in insertion order.
type HistoryStore struct {
	mu      sync.RWMutex
	byScope map[string][]discovery.QueryRecord
}

// NewHistoryStore creates an empty HistoryStore.
func NewHistoryStore() *HistoryStore {
	return &HistoryStore{byScope: make(map[string][]discovery.QueryRecord)}
}

// ListQueries returns a copy of the scope's records in execution order.
func (s *HistoryStore) ListQueries(_ context.Context, scope string) ([]discovery.QueryRecord, error) {
	if scope == "" {
		return nil, fmt.Errorf("scope is required")
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]discovery.QueryRecord(nil), s.byScope[scope]...), nil
}

// Append adds one record to the scope's log.
func (s *HistoryStore) Append(_ context.Context, scope string, rec discovery.QueryRecord) error {
	if scope == "" {
		return fmt.Errorf("scope is required")
	}
	if rec.Query == "" {
		return fmt.Errorf("query is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byScope[scope] = append(s.byScope[scope], rec)
	return nil
}
