// Package publisher defines the run-completion notification contract.
// Downstream stages (website analysis, report generation) consume these
// notices; publishing is best effort and never fails a run.
package publisher

import (
	"context"
	"time"
)

// RunNotice summarizes a finished discovery run for downstream consumers.
type RunNotice struct {
	RunID           string    `json:"run_id"`
	Scope           string    `json:"scope"`
	StopReason      string    `json:"stop_reason"`
	TargetReached   bool      `json:"target_reached"`
	UniqueFound     int       `json:"unique_found"`
	QueriesExecuted int       `json:"queries_executed"`
	IterationsRun   int       `json:"iterations_run"`
	TotalCost       float64   `json:"total_cost"`
	FinishedAt      time.Time `json:"finished_at"`
}

// Publisher pushes run notices to a topic (or similar).
type Publisher interface {
	Publish(ctx context.Context, notice RunNotice) (string, error)
	Close() error
}

// Noop discards every notice.
type Noop struct{}

// Publish implements Publisher; it does nothing.
func (Noop) Publish(context.Context, RunNotice) (string, error) { return "", nil }

// Close implements Publisher; it does nothing.
func (Noop) Close() error { return nil }
