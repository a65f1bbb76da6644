package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/belivan/prospect-discovery/internal/publisher"
)

func TestPublisherRecordsNotices(t *testing.T) {
	t.Parallel()

	p := New()
	id, err := p.Publish(context.Background(), publisher.RunNotice{RunID: "run-1", Scope: "proj-1"})
	require.NoError(t, err)
	require.Equal(t, "mem-1", id)

	id, err = p.Publish(context.Background(), publisher.RunNotice{RunID: "run-2", Scope: "proj-1"})
	require.NoError(t, err)
	require.Equal(t, "mem-2", id)

	notices := p.Notices()
	require.Len(t, notices, 2)
	require.Equal(t, "run-1", notices[0].RunID)

	// Notices returns a copy.
	notices[0].RunID = "mutated"
	require.Equal(t, "run-1", p.Notices()[0].RunID)

	require.NoError(t, p.Close())
}
