package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"
)

func TestDedupStoreIsKnown(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewDedupStoreWithPool(mock, "known_entities")
	require.NoError(t, err)

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("proj-1", "place-1").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	known, err := store.IsKnown(context.Background(), "proj-1", "place-1")
	require.NoError(t, err)
	require.True(t, known)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDedupStoreMarkKnownUsesConflictClause(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewDedupStoreWithPool(mock, "known_entities")
	require.NoError(t, err)

	// Re-inserting a known identifier affects zero rows; that is still
	// success.
	mock.ExpectExec("INSERT INTO known_entities").
		WithArgs("proj-1", "place-1").
		WillReturnResult(pgxmock.NewResult("INSERT", 0))

	require.NoError(t, store.MarkKnown(context.Background(), "proj-1", "place-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDedupStoreWrapsLookupErrors(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewDedupStoreWithPool(mock, "known_entities")
	require.NoError(t, err)

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("proj-1", "place-1").
		WillReturnError(errors.New("timeout"))

	_, err = store.IsKnown(context.Background(), "proj-1", "place-1")
	require.Error(t, err)
	require.Contains(t, err.Error(), "lookup known entity")
}

func TestDedupStoreValidatesArguments(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewDedupStoreWithPool(mock, "")
	require.NoError(t, err)

	_, err = store.IsKnown(context.Background(), "", "id")
	require.Error(t, err)
	require.Error(t, store.MarkKnown(context.Background(), "proj-1", ""))

	_, err = NewDedupStoreWithPool(mock, "bad table")
	require.Error(t, err)
}
