// Package progress defines the checkpoint events emitted by discovery runs.
package progress

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Stage denotes the type of checkpoint represented by an Event.
type Stage string

// Supported checkpoint stages, in the order a run emits them.
const (
	StageRunStart         Stage = "RUN_START"
	StageIterationStart   Stage = "ITERATION_START"
	StageDirective        Stage = "DIRECTIVE"
	StageQueryStart       Stage = "QUERY_START"
	StageQueryDone        Stage = "QUERY_DONE"
	StageQueryError       Stage = "QUERY_ERROR"
	StageDedupSummary     Stage = "DEDUP_SUMMARY"
	StageIterationSummary Stage = "ITERATION_SUMMARY"
	StageStop             Stage = "STOP"
	StageRunDone          Stage = "RUN_DONE"
)

// Event captures a single checkpoint of discovery progress.
type Event struct {
	// RunID uniquely identifies a run using the 16-byte UUID form.
	RunID [16]byte
	// TS is the UTC timestamp recorded by the emitter.
	TS time.Time
	// Stage denotes which checkpoint occurred.
	Stage Stage
	// Scope is the dedup/history partition the run operates on.
	Scope string
	// Iteration is the 1-indexed loop counter; zero for run-level events.
	Iteration int
	// Query carries the search string for query-level events.
	Query string
	// Strategy labels how the iteration's queries were generated.
	Strategy string
	// Results counts raw candidates returned by a query.
	Results int
	// NewUnique counts candidates accepted into the run's unique set.
	NewUnique int
	// Skipped counts candidates dropped as duplicates.
	Skipped int
	// Reason carries the stop reason for STOP and RUN_DONE events.
	Reason string
	// Dur captures execution latency for query completions.
	Dur time.Duration
	// Note lets emitters attach low-volume debug context (e.g. error text).
	Note string
}

// Validate performs coarse validation on Event payloads.
func (e Event) Validate() error {
	if e.RunID == [16]byte{} {
		return errors.New("run id is required")
	}
	if e.TS.IsZero() {
		return errors.New("timestamp is required")
	}
	switch e.Stage {
	case StageRunStart, StageRunDone, StageStop, StageIterationStart,
		StageIterationSummary, StageDedupSummary, StageDirective:
	case StageQueryStart, StageQueryDone:
		if e.Query == "" {
			return fmt.Errorf("%s requires query", e.Stage)
		}
	case StageQueryError:
		if e.Query == "" {
			return errors.New("query error requires query")
		}
		if e.Note == "" {
			return errors.New("query error requires note")
		}
	default:
		return fmt.Errorf("unknown stage %q", e.Stage)
	}
	if e.Dur < 0 {
		return errors.New("duration must be >= 0")
	}
	return nil
}

// RunUUID converts the binary run ID to uuid.UUID.
func (e Event) RunUUID() uuid.UUID {
	return uuid.UUID(e.RunID)
}

// UUIDToBytes encodes a uuid.UUID into the Event form.
func UUIDToBytes(id uuid.UUID) [16]byte {
	var dest [16]byte
	copy(dest[:], id[:])
	return dest
}
