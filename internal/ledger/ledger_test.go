package ledger

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLedgerAccumulatesByCategory(t *testing.T) {
	t.Parallel()

	l := New()
	l.RecordCall(CategorySearch, 0.032)
	l.RecordCall(CategorySearch, 0.032)
	l.RecordCall(CategoryExpansion, 0.002)

	sum := l.Summary()
	require.InDelta(t, 0.066, sum.TotalCost, 1e-9)
	require.Equal(t, 2, sum.Calls[CategorySearch])
	require.Equal(t, 1, sum.Calls[CategoryExpansion])
	require.InDelta(t, 0.066, l.Total(), 1e-9)
}

func TestLedgerSummaryIsACopy(t *testing.T) {
	t.Parallel()

	l := New()
	l.RecordCall(CategorySearch, 1)

	sum := l.Summary()
	sum.Calls[CategorySearch] = 99

	require.Equal(t, 1, l.Summary().Calls[CategorySearch])
}

func TestLedgerResetClearsCounters(t *testing.T) {
	t.Parallel()

	l := New()
	l.RecordCall(CategorySearch, 0.5)
	l.Reset()

	sum := l.Summary()
	require.Zero(t, sum.TotalCost)
	require.Empty(t, sum.Calls)
}

func TestLedgerIsSafeForConcurrentUse(t *testing.T) {
	t.Parallel()

	l := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.RecordCall(CategorySearch, 0.01)
		}()
	}
	wg.Wait()

	require.Equal(t, 50, l.Summary().Calls[CategorySearch])
	require.InDelta(t, 0.5, l.Total(), 1e-9)
}
