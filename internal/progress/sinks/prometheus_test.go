package sinks

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/belivan/prospect-discovery/internal/progress"
)

// TestPrometheusSinkRecordsMetrics ensures counters and histograms are
// incremented from events.
func TestPrometheusSinkRecordsMetrics(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	sink, err := NewPrometheusSink(reg)
	require.NoError(t, err)

	runID := progress.UUIDToBytes(uuid.New())
	batch := []progress.Event{
		{RunID: runID, TS: time.Now(), Stage: progress.StageRunStart, Scope: "proj-1"},
		{
			RunID:    runID,
			TS:       time.Now(),
			Stage:    progress.StageQueryDone,
			Scope:    "proj-1",
			Query:    "vegan bakery austin",
			Strategy: "specialty-variation",
			Results:  12,
			Dur:      250 * time.Millisecond,
		},
		{
			RunID:    runID,
			TS:       time.Now(),
			Stage:    progress.StageQueryError,
			Scope:    "proj-1",
			Query:    "vegan bakery elgin",
			Strategy: "geographic-expansion",
			Note:     "quota exceeded",
		},
		{
			RunID:     runID,
			TS:        time.Now(),
			Stage:     progress.StageDedupSummary,
			Scope:     "proj-1",
			NewUnique: 9,
			Skipped:   3,
		},
		{RunID: runID, TS: time.Now(), Stage: progress.StageRunDone, Scope: "proj-1", Reason: "target_met"},
	}
	for _, evt := range batch {
		sink.Observe(evt)
	}

	require.Equal(t, 1.0, testutil.ToFloat64(sink.runsStarted))
	require.Equal(t, 1.0, testutil.ToFloat64(sink.runsCompleted.WithLabelValues("target_met")))
	require.Equal(t, 0.0, testutil.ToFloat64(sink.runsRunning))

	require.Equal(t, 1.0, testutil.ToFloat64(sink.queries.WithLabelValues("specialty-variation", "ok")))
	require.Equal(t, 1.0, testutil.ToFloat64(sink.queries.WithLabelValues("geographic-expansion", "error")))
	require.Equal(t, 1, testutil.CollectAndCount(sink.queryDuration, "discovery_query_duration_seconds"))

	require.Equal(t, 9.0, testutil.ToFloat64(sink.candidatesNew))
	require.Equal(t, 3.0, testutil.ToFloat64(sink.candidatesSkipped))
}

func TestPrometheusSinkDoubleRegistrationFails(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	_, err := NewPrometheusSink(reg)
	require.NoError(t, err)
	_, err = NewPrometheusSink(reg)
	require.Error(t, err)
}
