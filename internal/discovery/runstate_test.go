package discovery

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRunStatePreservesDiscoveryOrder(t *testing.T) {
	t.Parallel()

	s := newRunState()
	require.True(t, s.add(Candidate{ID: "b", Name: "second"}))
	require.True(t, s.add(Candidate{ID: "a", Name: "first"}))
	require.True(t, s.add(Candidate{ID: "c", Name: "third"}))

	got := s.candidates()
	require.Equal(t, []string{"b", "a", "c"}, []string{got[0].ID, got[1].ID, got[2].ID})
}

func TestRunStateCountsDuplicates(t *testing.T) {
	t.Parallel()

	s := newRunState()
	require.True(t, s.add(Candidate{ID: "a"}))
	require.False(t, s.add(Candidate{ID: "a"}))
	require.False(t, s.add(Candidate{ID: "a"}))
	s.skip()

	require.Equal(t, 1, s.len())
	require.Equal(t, 3, s.skipped)
	require.True(t, s.has("a"))
	require.False(t, s.has("b"))
}

func TestRunStateRejectsEmptyID(t *testing.T) {
	t.Parallel()

	s := newRunState()
	require.False(t, s.add(Candidate{Name: "nameless"}))
	require.Zero(t, s.len())
}
