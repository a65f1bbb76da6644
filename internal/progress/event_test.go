package progress

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func validEvent(stage Stage) Event {
	return Event{
		RunID: UUIDToBytes(uuid.New()),
		TS:    time.Now().UTC(),
		Stage: stage,
		Scope: "proj-1",
	}
}

func TestEventValidateAcceptsRunLevelStages(t *testing.T) {
	t.Parallel()

	for _, stage := range []Stage{
		StageRunStart, StageIterationStart, StageDirective,
		StageDedupSummary, StageIterationSummary, StageStop, StageRunDone,
	} {
		require.NoError(t, validEvent(stage).Validate(), string(stage))
	}
}

func TestEventValidateRequiresIdentity(t *testing.T) {
	t.Parallel()

	evt := validEvent(StageRunStart)
	evt.RunID = [16]byte{}
	require.Error(t, evt.Validate())

	evt = validEvent(StageRunStart)
	evt.TS = time.Time{}
	require.Error(t, evt.Validate())

	evt = validEvent("SOMETHING_ELSE")
	require.Error(t, evt.Validate())
}

func TestEventValidateQueryStages(t *testing.T) {
	t.Parallel()

	evt := validEvent(StageQueryDone)
	require.Error(t, evt.Validate())
	evt.Query = "vegan bakery austin"
	require.NoError(t, evt.Validate())

	evt = validEvent(StageQueryError)
	evt.Query = "vegan bakery austin"
	require.Error(t, evt.Validate())
	evt.Note = "quota exceeded"
	require.NoError(t, evt.Validate())

	evt = validEvent(StageQueryDone)
	evt.Query = "q"
	evt.Dur = -time.Second
	require.Error(t, evt.Validate())
}

func TestRunUUIDRoundTrip(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	evt := Event{RunID: UUIDToBytes(id)}
	require.Equal(t, id, evt.RunUUID())
}
