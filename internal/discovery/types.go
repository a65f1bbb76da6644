package discovery

import (
	"time"

	"github.com/belivan/prospect-discovery/internal/ledger"
)

// Strategy classifies how an iteration's search strings were generated.
type Strategy string

// Strategy labels recorded with every executed query.
const (
	StrategySpecialty  Strategy = "specialty-variation"
	StrategyGeographic Strategy = "geographic-expansion"
)

// StopReason explains why a run terminated.
type StopReason string

// Stop reasons reported in run telemetry.
const (
	StopTargetMet      StopReason = "target_met"
	StopNoProgress     StopReason = "no_progress"
	StopBudget         StopReason = "budget_exhausted"
	StopIterationLimit StopReason = "iteration_limit"
	StopCancelled      StopReason = "cancelled"
	StopAborted        StopReason = "aborted"
)

// Candidate is a single discovered business record. ID is the external
// identifier unique per source provider; Attributes carries provider
// fields (address, contact data, etc.) through unmodified.
type Candidate struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Rating     float64        `json:"rating"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// QueryRecord is the append-only audit row persisted for each executed
// search string, including failed ones (with a zero result count).
type QueryRecord struct {
	Scope       string    `json:"scope"`
	Query       string    `json:"query"`
	Iteration   int       `json:"iteration"`
	ResultCount int       `json:"result_count"`
	Strategy    Strategy  `json:"strategy"`
	Geo         string    `json:"geo,omitempty"`
	ExecutedAt  time.Time `json:"executed_at"`
}

// Directive is the query expander's output for one iteration: an ordered
// batch of new search strings plus strategy metadata. Consumed once, then
// discarded.
type Directive struct {
	Variations []string `json:"variations"`
	Strategy   Strategy `json:"strategy"`
	Rationale  string   `json:"rationale"`
	Geo        string   `json:"geo,omitempty"`
}

// ExpansionRequest carries everything the expander needs to produce a
// Directive. PriorQueries includes both historical queries for the scope
// and queries already executed earlier in the current run; the expander
// must not repeat any of them.
type ExpansionRequest struct {
	Profile           string
	PriorQueries      []string
	TargetCount       int
	CurrentCount      int
	Iteration         int
	MaxVariations     int
	AllowGeoExpansion bool
}

// Request configures one controller run.
type Request struct {
	// Profile describes the target prospect (e.g. "vegan bakeries in Austin").
	Profile string `json:"profile"`
	// Scope is the dedup/history partition identifier (a project).
	Scope string `json:"scope"`
	// TargetCount is the number of unique candidates to accumulate.
	TargetCount int `json:"target_count"`
	// MaxIterations bounds the expand-search loop.
	MaxIterations int `json:"max_iterations"`
	// MaxVariations caps search strings executed per iteration.
	MaxVariations int `json:"max_variations"`
	// MinRating is the quality threshold applied at search time.
	MinRating float64 `json:"min_rating"`
	// MaxCost optionally stops the run once accumulated provider spend
	// reaches this amount. Zero disables the check.
	MaxCost float64 `json:"max_cost"`
}

// Result is the aggregate outcome of a run. Aborted and cancelled runs
// still carry every unique candidate accumulated before termination.
type Result struct {
	RunID             string         `json:"run_id"`
	Scope             string         `json:"scope"`
	Candidates        []Candidate    `json:"candidates"`
	IterationsRun     int            `json:"iterations_run"`
	QueriesExecuted   int            `json:"queries_executed"`
	SkippedDuplicates int            `json:"skipped_duplicates"`
	TargetReached     bool           `json:"target_reached"`
	StopReason        StopReason     `json:"stop_reason"`
	Cost              ledger.Summary `json:"cost"`
	StartedAt         time.Time      `json:"started_at"`
	FinishedAt        time.Time      `json:"finished_at"`
}
