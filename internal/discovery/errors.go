package discovery

import (
	"errors"
	"fmt"
)

// Sentinel errors for precondition failures. Both are fatal and have no
// side effects.
var (
	ErrInvalidScope  = errors.New("scope id is required")
	ErrInvalidTarget = errors.New("target count must be > 0")
)

// ProviderError wraps a transient entity-search failure. It is absorbed at
// the single-query granularity: logged, recorded in the audit trail with a
// zero result count, and never interrupts the iteration.
type ProviderError struct {
	Query string
	Err   error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("entity search %q: %v", e.Query, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// AbortError signals a fatal mid-run failure, currently only an expander
// error: without new search strings the loop has no source of work. The
// accompanying Result still carries partial accumulated candidates.
type AbortError struct {
	Iteration int
	Err       error
}

func (e *AbortError) Error() string {
	return fmt.Sprintf("discovery aborted at iteration %d: %v", e.Iteration, e.Err)
}

func (e *AbortError) Unwrap() error {
	return e.Err
}
