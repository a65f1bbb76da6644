package discovery

// runState is the ephemeral per-run arena of unique candidates: a map for
// O(1) membership plus an append-only order list so candidates come back
// in discovery order. Owned by exactly one Discover invocation.
type runState struct {
	byID    map[string]Candidate
	order   []string
	skipped int
}

func newRunState() *runState {
	return &runState{byID: make(map[string]Candidate)}
}

// has reports whether the identifier was already accepted this run.
func (s *runState) has(id string) bool {
	_, ok := s.byID[id]
	return ok
}

// add accepts a candidate unless its identifier is already present.
// Duplicates only bump the informational skipped tally.
func (s *runState) add(c Candidate) bool {
	if c.ID == "" {
		return false
	}
	if _, ok := s.byID[c.ID]; ok {
		s.skipped++
		return false
	}
	s.byID[c.ID] = c
	s.order = append(s.order, c.ID)
	return true
}

// skip bumps the duplicate tally without recording the candidate.
func (s *runState) skip() {
	s.skipped++
}

func (s *runState) len() int {
	return len(s.order)
}

// candidates returns accumulated candidates in discovery order.
func (s *runState) candidates() []Candidate {
	out := make([]Candidate, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id])
	}
	return out
}
