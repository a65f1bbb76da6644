// Package ledger accumulates monetary cost and call counts for external
// provider usage. Reset is explicit so callers control the accounting
// boundary (per run vs per process lifetime).
package ledger

import "sync"

// Category labels the kind of external call being charged.
type Category string

// Charge categories tracked by the discovery engine.
const (
	CategorySearch    Category = "entity_search"
	CategoryExpansion Category = "query_expansion"
)

// Summary is a point-in-time snapshot of accumulated spend.
type Summary struct {
	TotalCost float64          `json:"total_cost"`
	Calls     map[Category]int `json:"calls"`
}

// Ledger is a concurrency-safe cost accumulator.
type Ledger struct {
	mu    sync.Mutex
	total float64
	calls map[Category]int
}

// New returns an empty Ledger.
func New() *Ledger {
	return &Ledger{calls: make(map[Category]int)}
}

// RecordCall charges one call of the given category.
func (l *Ledger) RecordCall(category Category, cost float64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.total += cost
	l.calls[category]++
}

// Summary returns a copy of the current totals.
func (l *Ledger) Summary() Summary {
	l.mu.Lock()
	defer l.mu.Unlock()
	calls := make(map[Category]int, len(l.calls))
	for k, v := range l.calls {
		calls[k] = v
	}
	return Summary{TotalCost: l.total, Calls: calls}
}

// Total returns the accumulated cost without copying call counts.
func (l *Ledger) Total() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.total
}

// Reset clears all counters. It is never called implicitly.
func (l *Ledger) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.total = 0
	l.calls = make(map[Category]int)
}
