package discovery

import (
	"context"
	"time"
)

// Expander produces a batch of novel search strings for the next iteration.
// Implementations must not return a string already present in
// ExpansionRequest.PriorQueries.
type Expander interface {
	Expand(ctx context.Context, req ExpansionRequest) (Directive, error)
}

// SearchClient executes one search string against the external provider
// and returns candidates meeting the minimum quality signal. Failures are
// reported as *ProviderError.
type SearchClient interface {
	Search(ctx context.Context, query string, minRating float64, maxResults int) ([]Candidate, error)
}

// QueryHistory is the append-only log of executed search strings,
// partitioned by scope. ListQueries returns records in execution order
// (ascending). No update or delete operations exist.
type QueryHistory interface {
	ListQueries(ctx context.Context, scope string) ([]QueryRecord, error)
	Append(ctx context.Context, scope string, rec QueryRecord) error
}

// DedupStore tracks entity identifiers already seen for a scope.
// MarkKnown is idempotent; marking an already-known identifier is a no-op.
type DedupStore interface {
	IsKnown(ctx context.Context, scope, id string) (bool, error)
	MarkKnown(ctx context.Context, scope, id string) error
}

// Throttle enforces the minimum spacing between consecutive provider calls.
type Throttle interface {
	Wait(ctx context.Context) error
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}
