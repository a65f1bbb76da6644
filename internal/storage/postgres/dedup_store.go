package postgres

import (
	"context"
	"fmt"
	"time"
)

// DedupStoreConfig controls the Postgres connection pool used for the
// known-entity table.
type DedupStoreConfig struct {
	DSN             string
	Table           string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

// DedupStore records entity identifiers already seen per scope. Rows are
// written once and never updated; concurrent runs for the same scope may
// race on the same identifier, which the primary key absorbs.
type DedupStore struct {
	pool  pool
	table string
}

// NewDedupStore creates a Postgres-backed DedupStore using the provided config.
func NewDedupStore(ctx context.Context, cfg DedupStoreConfig) (*DedupStore, error) {
	table := cfg.Table
	if table == "" {
		table = "known_entities"
	}
	p, err := newPool(ctx, cfg.DSN, cfg.MaxConns, cfg.MinConns, cfg.MaxConnLifetime)
	if err != nil {
		return nil, err
	}
	return NewDedupStoreWithPool(p, table)
}

// NewDedupStoreWithPool constructs a store from an existing pool
// (primarily for testing).
func NewDedupStoreWithPool(p pool, table string) (*DedupStore, error) {
	if p == nil {
		return nil, fmt.Errorf("pool is required")
	}
	if table == "" {
		table = "known_entities"
	}
	if !validTableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	return &DedupStore{pool: p, table: table}, nil
}

// Close releases the underlying pool resources.
func (s *DedupStore) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

// IsKnown reports whether the identifier was already recorded for the scope.
func (s *DedupStore) IsKnown(ctx context.Context, scope, id string) (bool, error) {
	if scope == "" || id == "" {
		return false, fmt.Errorf("scope and id are required")
	}
	query := fmt.Sprintf(`
SELECT EXISTS (
	SELECT 1 FROM %s WHERE project_id = $1 AND entity_id = $2
)`, s.table)

	var known bool
	if err := s.pool.QueryRow(ctx, query, scope, id).Scan(&known); err != nil {
		return false, fmt.Errorf("lookup known entity: %w", err)
	}
	return known, nil
}

// MarkKnown records the identifier as seen for the scope. Idempotent:
// marking an already-known identifier is a no-op, never an error.
func (s *DedupStore) MarkKnown(ctx context.Context, scope, id string) error {
	if scope == "" || id == "" {
		return fmt.Errorf("scope and id are required")
	}
	query := fmt.Sprintf(`
INSERT INTO %s (project_id, entity_id, first_seen_at)
VALUES ($1, $2, now())
ON CONFLICT (project_id, entity_id) DO NOTHING`, s.table)

	if _, err := s.pool.Exec(ctx, query, scope, id); err != nil {
		return fmt.Errorf("insert known entity: %w", err)
	}
	return nil
}
