// Package postgres provides Postgres-backed persistence implementations.
package postgres

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/belivan/prospect-discovery/internal/discovery"
)

var validTableName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// pool is the subset of pgxpool.Pool the stores use; pgxmock satisfies it.
type pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// HistoryStoreConfig controls the Postgres connection pool used for the
// query-history table.
type HistoryStoreConfig struct {
	DSN             string
	Table           string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

// HistoryStore persists the append-only query log, partitioned by scope.
type HistoryStore struct {
	pool  pool
	table string
}

// NewHistoryStore creates a Postgres-backed HistoryStore using the provided config.
func NewHistoryStore(ctx context.Context, cfg HistoryStoreConfig) (*HistoryStore, error) {
	table := cfg.Table
	if table == "" {
		table = "discovery_queries"
	}
	p, err := newPool(ctx, cfg.DSN, cfg.MaxConns, cfg.MinConns, cfg.MaxConnLifetime)
	if err != nil {
		return nil, err
	}
	return NewHistoryStoreWithPool(p, table)
}

// NewHistoryStoreWithPool constructs a store from an existing pool
// (primarily for testing).
func NewHistoryStoreWithPool(p pool, table string) (*HistoryStore, error) {
	if p == nil {
		return nil, fmt.Errorf("pool is required")
	}
	if table == "" {
		table = "discovery_queries"
	}
	if !validTableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	return &HistoryStore{pool: p, table: table}, nil
}

// Close releases the underlying pool resources.
func (s *HistoryStore) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

// ListQueries returns every query record for the scope in execution order.
func (s *HistoryStore) ListQueries(ctx context.Context, scope string) ([]discovery.QueryRecord, error) {
	if scope == "" {
		return nil, fmt.Errorf("scope is required")
	}
	query := fmt.Sprintf(`
SELECT query, iteration, result_count, strategy, geo, executed_at
FROM %s
WHERE project_id = $1
ORDER BY executed_at ASC`, s.table)

	rows, err := s.pool.Query(ctx, query, scope)
	if err != nil {
		return nil, fmt.Errorf("list queries: %w", err)
	}
	defer rows.Close()

	var records []discovery.QueryRecord
	for rows.Next() {
		rec := discovery.QueryRecord{Scope: scope}
		var strategy string
		if err := rows.Scan(&rec.Query, &rec.Iteration, &rec.ResultCount, &strategy, &rec.Geo, &rec.ExecutedAt); err != nil {
			return nil, fmt.Errorf("scan query record: %w", err)
		}
		rec.Strategy = discovery.Strategy(strategy)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate query records: %w", err)
	}
	return records, nil
}

// Append inserts one query record. History is strictly append-only; no
// update or delete operations exist.
func (s *HistoryStore) Append(ctx context.Context, scope string, rec discovery.QueryRecord) error {
	if scope == "" {
		return fmt.Errorf("scope is required")
	}
	if rec.Query == "" {
		return fmt.Errorf("query is required")
	}
	query := fmt.Sprintf(`
INSERT INTO %s (
	project_id,
	query,
	iteration,
	result_count,
	strategy,
	geo,
	executed_at
) VALUES (
	$1,$2,$3,$4,$5,$6,$7
)`, s.table)

	args := []any{
		scope,
		rec.Query,
		rec.Iteration,
		rec.ResultCount,
		string(rec.Strategy),
		rec.Geo,
		rec.ExecutedAt,
	}
	if _, err := s.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("insert query record: %w", err)
	}
	return nil
}

func newPool(ctx context.Context, dsn string, maxConns, minConns int32, maxLifetime time.Duration) (pool, error) {
	if dsn == "" {
		return nil, fmt.Errorf("database.dsn is required")
	}
	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if maxConns > 0 {
		poolCfg.MaxConns = maxConns
	}
	if minConns > 0 {
		poolCfg.MinConns = minConns
	}
	if maxLifetime > 0 {
		poolCfg.MaxConnLifetime = maxLifetime
	}
	p, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return p, nil
}
