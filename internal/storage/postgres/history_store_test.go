package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"

	"github.com/belivan/prospect-discovery/internal/discovery"
)

func TestHistoryStoreAppendInsertsRow(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewHistoryStoreWithPool(mock, "discovery_queries")
	require.NoError(t, err)

	now := time.Unix(1700000000, 0).UTC()
	rec := discovery.QueryRecord{
		Scope:       "proj-1",
		Query:       "vegan bakery austin",
		Iteration:   1,
		ResultCount: 12,
		Strategy:    discovery.StrategySpecialty,
		ExecutedAt:  now,
	}

	mock.ExpectExec("INSERT INTO discovery_queries").
		WithArgs(
			"proj-1",
			rec.Query,
			rec.Iteration,
			rec.ResultCount,
			string(rec.Strategy),
			rec.Geo,
			rec.ExecutedAt,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, store.Append(context.Background(), "proj-1", rec))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHistoryStoreListQueriesScansRows(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewHistoryStoreWithPool(mock, "discovery_queries")
	require.NoError(t, err)

	now := time.Unix(1700000000, 0).UTC()
	rows := pgxmock.NewRows([]string{"query", "iteration", "result_count", "strategy", "geo", "executed_at"}).
		AddRow("vegan bakery austin", 1, 12, "specialty-variation", "", now).
		AddRow("vegan bakery round rock", 3, 4, "geographic-expansion", "Round Rock", now.Add(time.Minute))

	mock.ExpectQuery("SELECT query, iteration, result_count, strategy, geo, executed_at").
		WithArgs("proj-1").
		WillReturnRows(rows)

	recs, err := store.ListQueries(context.Background(), "proj-1")
	require.NoError(t, err)
	require.Len(t, recs, 2)
	require.Equal(t, "proj-1", recs[0].Scope)
	require.Equal(t, discovery.StrategySpecialty, recs[0].Strategy)
	require.Equal(t, discovery.StrategyGeographic, recs[1].Strategy)
	require.Equal(t, "Round Rock", recs[1].Geo)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHistoryStoreListQueriesWrapsErrors(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewHistoryStoreWithPool(mock, "discovery_queries")
	require.NoError(t, err)

	mock.ExpectQuery("SELECT query, iteration, result_count, strategy, geo, executed_at").
		WithArgs("proj-1").
		WillReturnError(errors.New("connection refused"))

	_, err = store.ListQueries(context.Background(), "proj-1")
	require.Error(t, err)
	require.Contains(t, err.Error(), "list queries")
}

func TestHistoryStoreRejectsBadTableNames(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	_, err = NewHistoryStoreWithPool(mock, "queries; DROP TABLE users")
	require.Error(t, err)
}

func TestHistoryStoreValidatesArguments(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewHistoryStoreWithPool(mock, "")
	require.NoError(t, err)

	_, err = store.ListQueries(context.Background(), "")
	require.Error(t, err)
	require.Error(t, store.Append(context.Background(), "proj-1", discovery.QueryRecord{}))
}
