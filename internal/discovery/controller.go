package discovery

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/belivan/prospect-discovery/internal/ledger"
	"github.com/belivan/prospect-discovery/internal/metrics"
	"github.com/belivan/prospect-discovery/internal/progress"
)

// Config tunes controller behavior shared across runs.
type Config struct {
	// GeoExpansionAfter is the iteration after which the expander may
	// broaden geographically. Specialty variation is cheaper and usually
	// more precise, so it is exhausted first.
	GeoExpansionAfter int
	// SearchConcurrency bounds concurrent query executions within one
	// iteration. Values <= 1 run queries sequentially.
	SearchConcurrency int
	// MaxResultsPerQuery caps candidates requested per search string.
	MaxResultsPerQuery int
	// CostPerSearch is the unit cost charged per entity-search call.
	CostPerSearch float64
	// CostPerExpansion is the unit cost charged per expander call.
	CostPerExpansion float64
}

func (c Config) withDefaults() Config {
	if c.GeoExpansionAfter <= 0 {
		c.GeoExpansionAfter = 2
	}
	if c.SearchConcurrency <= 0 {
		c.SearchConcurrency = 1
	}
	if c.MaxResultsPerQuery <= 0 {
		c.MaxResultsPerQuery = 20
	}
	return c
}

// Controller runs the iterate-expand-search-dedup-evaluate loop. It is
// stateless across runs; all per-run state lives in the Discover frame, so
// a single Controller serves concurrent runs.
type Controller struct {
	history  QueryHistory
	dedup    DedupStore
	expander Expander
	search   SearchClient
	throttle Throttle
	emitter  progress.Emitter
	clock    Clock
	logger   *zap.Logger
	cfg      Config
}

// NewController constructs a Controller.
func NewController(
	history QueryHistory,
	dedup DedupStore,
	expander Expander,
	search SearchClient,
	throttle Throttle,
	emitter progress.Emitter,
	clock Clock,
	logger *zap.Logger,
	cfg Config,
) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	if emitter == nil {
		emitter = progress.Nop()
	}
	return &Controller{
		history:  history,
		dedup:    dedup,
		expander: expander,
		search:   search,
		throttle: throttle,
		emitter:  emitter,
		clock:    clock,
		logger:   logger,
		cfg:      cfg.withDefaults(),
	}
}

// queryOutcome captures one executed search string's results, preserving
// directive order regardless of completion order.
type queryOutcome struct {
	query      string
	candidates []Candidate
	err        error
}

// Discover executes one run. Aborted runs return partial results alongside
// an *AbortError; caller-cancelled runs return partial results with
// StopCancelled and a nil error.
func (c *Controller) Discover(ctx context.Context, req Request) (Result, error) {
	if req.Scope == "" {
		return Result{}, ErrInvalidScope
	}
	if req.TargetCount <= 0 {
		return Result{}, ErrInvalidTarget
	}
	cfg := c.cfg
	if req.MaxIterations <= 0 {
		req.MaxIterations = 1
	}
	if req.MaxVariations <= 0 {
		req.MaxVariations = 1
	}

	runID := uuid.New()
	run := ledger.New()
	state := newRunState()
	startedAt := c.clock.Now()

	prior, err := c.history.ListQueries(ctx, req.Scope)
	if err != nil {
		return Result{}, fmt.Errorf("load query history: %w", err)
	}
	priorStrings := make([]string, 0, len(prior))
	for _, rec := range prior {
		priorStrings = append(priorStrings, rec.Query)
	}

	c.emit(progress.Event{RunID: progress.UUIDToBytes(runID), Stage: progress.StageRunStart, Scope: req.Scope})
	c.logger.Info("discovery run started",
		zap.String("run_id", runID.String()),
		zap.String("scope", req.Scope),
		zap.Int("target", req.TargetCount),
		zap.Int("prior_queries", len(prior)),
	)

	var (
		reason          StopReason
		abortErr        *AbortError
		queriesExecuted int
		iterationsRun   int
	)

loop:
	for iteration := 1; iteration <= req.MaxIterations; iteration++ {
		// Cancellation is honored between iterations, never mid-iteration.
		if ctx.Err() != nil {
			reason = StopCancelled
			break
		}
		iterationsRun = iteration
		c.emit(progress.Event{
			RunID:     progress.UUIDToBytes(runID),
			Stage:     progress.StageIterationStart,
			Scope:     req.Scope,
			Iteration: iteration,
		})

		directive, err := c.expander.Expand(ctx, ExpansionRequest{
			Profile:           req.Profile,
			PriorQueries:      priorStrings,
			TargetCount:       req.TargetCount,
			CurrentCount:      state.len(),
			Iteration:         iteration,
			MaxVariations:     req.MaxVariations,
			AllowGeoExpansion: iteration > cfg.GeoExpansionAfter,
		})
		run.RecordCall(ledger.CategoryExpansion, cfg.CostPerExpansion)
		metrics.ObserveProviderCall(string(ledger.CategoryExpansion), cfg.CostPerExpansion)
		if err != nil {
			// Without new search strings the loop has no source of work.
			c.logger.Error("query expansion failed",
				zap.String("run_id", runID.String()),
				zap.Int("iteration", iteration),
				zap.Error(err),
			)
			reason = StopAborted
			abortErr = &AbortError{Iteration: iteration, Err: err}
			break
		}

		variations := directive.Variations
		if len(variations) > req.MaxVariations {
			variations = variations[:req.MaxVariations]
		}
		c.emit(progress.Event{
			RunID:     progress.UUIDToBytes(runID),
			Stage:     progress.StageDirective,
			Scope:     req.Scope,
			Iteration: iteration,
			Strategy:  string(directive.Strategy),
			Results:   len(variations),
			Note:      directive.Rationale,
		})

		outcomes := c.runSearches(ctx, runID, req, iteration, directive, variations, run)
		queriesExecuted += len(outcomes)
		c.recordQueries(ctx, req.Scope, iteration, directive, outcomes)
		for _, o := range outcomes {
			priorStrings = append(priorStrings, o.query)
		}

		newUnique := c.mergeUnique(ctx, req.Scope, state, outcomes)
		c.emit(progress.Event{
			RunID:     progress.UUIDToBytes(runID),
			Stage:     progress.StageDedupSummary,
			Scope:     req.Scope,
			Iteration: iteration,
			NewUnique: newUnique,
			Skipped:   state.skipped,
		})
		c.emit(progress.Event{
			RunID:     progress.UUIDToBytes(runID),
			Stage:     progress.StageIterationSummary,
			Scope:     req.Scope,
			Iteration: iteration,
			Strategy:  string(directive.Strategy),
			NewUnique: newUnique,
			Results:   state.len(),
		})

		// Stop conditions, checked in order.
		switch {
		case state.len() >= req.TargetCount:
			reason = StopTargetMet
			break loop
		case newUnique == 0 && iteration > 1:
			reason = StopNoProgress
			break loop
		case req.MaxCost > 0 && run.Total() >= req.MaxCost:
			reason = StopBudget
			break loop
		case iteration == req.MaxIterations:
			reason = StopIterationLimit
			break loop
		}
	}
	if reason == "" {
		reason = StopCancelled
	}

	result := Result{
		RunID:             runID.String(),
		Scope:             req.Scope,
		Candidates:        state.candidates(),
		IterationsRun:     iterationsRun,
		QueriesExecuted:   queriesExecuted,
		SkippedDuplicates: state.skipped,
		TargetReached:     state.len() >= req.TargetCount,
		StopReason:        reason,
		Cost:              run.Summary(),
		StartedAt:         startedAt,
		FinishedAt:        c.clock.Now(),
	}

	c.emit(progress.Event{
		RunID:  progress.UUIDToBytes(runID),
		Stage:  progress.StageStop,
		Scope:  req.Scope,
		Reason: string(reason),
	})
	c.emit(progress.Event{
		RunID:     progress.UUIDToBytes(runID),
		Stage:     progress.StageRunDone,
		Scope:     req.Scope,
		Reason:    string(reason),
		NewUnique: state.len(),
		Skipped:   state.skipped,
		Dur:       result.FinishedAt.Sub(startedAt),
	})
	c.logger.Info("discovery run finished",
		zap.String("run_id", runID.String()),
		zap.String("scope", req.Scope),
		zap.String("reason", string(reason)),
		zap.Int("unique", state.len()),
		zap.Int("queries", queriesExecuted),
		zap.Bool("target_reached", result.TargetReached),
		zap.Float64("cost", result.Cost.TotalCost),
	)

	if abortErr != nil {
		return result, abortErr
	}
	return result, nil
}

// runSearches executes the directive's search strings with bounded
// concurrency. Per-query failures are captured, never propagated; a single
// failing query must not abort the iteration.
func (c *Controller) runSearches(
	ctx context.Context,
	runID uuid.UUID,
	req Request,
	iteration int,
	directive Directive,
	variations []string,
	run *ledger.Ledger,
) []queryOutcome {
	outcomes := make([]queryOutcome, len(variations))

	g := new(errgroup.Group)
	g.SetLimit(c.cfg.SearchConcurrency)
	for i, query := range variations {
		g.Go(func() error {
			outcomes[i] = c.runOneSearch(ctx, runID, req, iteration, directive, query, run)
			return nil
		})
	}
	_ = g.Wait() // tasks never return errors

	return outcomes
}

func (c *Controller) runOneSearch(
	ctx context.Context,
	runID uuid.UUID,
	req Request,
	iteration int,
	directive Directive,
	query string,
	run *ledger.Ledger,
) queryOutcome {
	c.emit(progress.Event{
		RunID:     progress.UUIDToBytes(runID),
		Stage:     progress.StageQueryStart,
		Scope:     req.Scope,
		Iteration: iteration,
		Strategy:  string(directive.Strategy),
		Query:     query,
	})

	if c.throttle != nil {
		if err := c.throttle.Wait(ctx); err != nil {
			return queryOutcome{query: query, err: err}
		}
	}

	start := time.Now()
	candidates, err := c.search.Search(ctx, query, req.MinRating, c.cfg.MaxResultsPerQuery)
	run.RecordCall(ledger.CategorySearch, c.cfg.CostPerSearch)
	metrics.ObserveProviderCall(string(ledger.CategorySearch), c.cfg.CostPerSearch)
	if err != nil {
		c.logger.Warn("entity search failed",
			zap.String("run_id", runID.String()),
			zap.Int("iteration", iteration),
			zap.String("query", query),
			zap.Error(err),
		)
		c.emit(progress.Event{
			RunID:     progress.UUIDToBytes(runID),
			Stage:     progress.StageQueryError,
			Scope:     req.Scope,
			Iteration: iteration,
			Strategy:  string(directive.Strategy),
			Query:     query,
			Note:      err.Error(),
		})
		return queryOutcome{query: query, err: err}
	}

	c.emit(progress.Event{
		RunID:     progress.UUIDToBytes(runID),
		Stage:     progress.StageQueryDone,
		Scope:     req.Scope,
		Iteration: iteration,
		Strategy:  string(directive.Strategy),
		Query:     query,
		Results:   len(candidates),
		Dur:       time.Since(start),
	})
	return queryOutcome{query: query, candidates: candidates}
}

// recordQueries appends one audit record per executed string, failed ones
// included with a zero result count, in directive order. History append
// failures are logged, not fatal: losing an audit row must not discard an
// otherwise healthy iteration.
func (c *Controller) recordQueries(
	ctx context.Context,
	scope string,
	iteration int,
	directive Directive,
	outcomes []queryOutcome,
) {
	for _, o := range outcomes {
		rec := QueryRecord{
			Scope:       scope,
			Query:       o.query,
			Iteration:   iteration,
			ResultCount: len(o.candidates),
			Strategy:    directive.Strategy,
			Geo:         directive.Geo,
			ExecutedAt:  c.clock.Now(),
		}
		if err := c.history.Append(ctx, scope, rec); err != nil {
			c.logger.Error("append query record failed",
				zap.String("scope", scope),
				zap.String("query", o.query),
				zap.Error(err),
			)
		}
	}
}

// mergeUnique folds the iteration's raw candidates into the run's unique
// set. Identifiers already present in-run or known historically for the
// scope are dropped silently; the historical store is only consulted when
// the in-run set misses.
func (c *Controller) mergeUnique(ctx context.Context, scope string, state *runState, outcomes []queryOutcome) int {
	newUnique := 0
	for _, o := range outcomes {
		for _, cand := range o.candidates {
			if cand.ID == "" || state.has(cand.ID) {
				state.skip()
				continue
			}
			known, err := c.dedup.IsKnown(ctx, scope, cand.ID)
			if err != nil {
				// Prefer the no-duplicates invariant over completeness.
				c.logger.Warn("dedup lookup failed, dropping candidate",
					zap.String("scope", scope),
					zap.String("id", cand.ID),
					zap.Error(err),
				)
				state.skip()
				continue
			}
			if known {
				state.skip()
				continue
			}
			if !state.add(cand) {
				continue
			}
			newUnique++
			if err := c.dedup.MarkKnown(ctx, scope, cand.ID); err != nil {
				c.logger.Warn("mark known failed",
					zap.String("scope", scope),
					zap.String("id", cand.ID),
					zap.Error(err),
				)
			}
		}
	}
	return newUnique
}

func (c *Controller) emit(evt progress.Event) {
	evt.TS = c.clock.Now().UTC()
	c.emitter.Emit(evt)
}
