package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/belivan/prospect-discovery/internal/discovery"
	"github.com/belivan/prospect-discovery/internal/publisher"
)

type discoveryRequest struct {
	Profile       string   `json:"profile"`
	ProjectID     string   `json:"project_id"`
	TargetCount   *int     `json:"target_count"`
	MaxIterations *int     `json:"max_iterations"`
	MaxVariations *int     `json:"max_variations"`
	MinRating     *float64 `json:"min_rating"`
	MaxCost       *float64 `json:"max_cost"`
}

type discoveryResponse struct {
	discovery.Result
	Error string `json:"error,omitempty"`
}

// runDiscovery executes a discovery run synchronously and returns the
// aggregate result. A run that stops short of its target is still a 200:
// "target not reached" is a valid outcome, not a failure.
func (s *Server) runDiscovery(w http.ResponseWriter, r *http.Request) {
	var req discoveryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Profile == "" {
		writeError(w, http.StatusBadRequest, "profile is required")
		return
	}

	runReq := discovery.Request{
		Profile:       req.Profile,
		Scope:         req.ProjectID,
		TargetCount:   valueOrDefault(req.TargetCount, s.cfg.Discovery.TargetDefault),
		MaxIterations: valueOrDefault(req.MaxIterations, s.cfg.Discovery.MaxIterations),
		MaxVariations: valueOrDefault(req.MaxVariations, s.cfg.Discovery.MaxVariations),
		MinRating:     valueOrDefault(req.MinRating, s.cfg.Discovery.MinRatingDefault),
		MaxCost:       valueOrDefault(req.MaxCost, s.cfg.Discovery.MaxCostDefault),
	}

	result, err := s.ctrl.Discover(r.Context(), runReq)
	switch {
	case errors.Is(err, discovery.ErrInvalidScope), errors.Is(err, discovery.ErrInvalidTarget):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		var abort *discovery.AbortError
		if errors.As(err, &abort) {
			// Partial results ride along so callers can keep what was found.
			s.publishNotice(r, result)
			writeJSON(w, http.StatusBadGateway, discoveryResponse{Result: result, Error: abort.Error()})
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.publishNotice(r, result)
	writeJSON(w, http.StatusOK, discoveryResponse{Result: result})
}

// publishNotice hands the run summary to downstream stages. Best effort:
// a publish failure is logged and never surfaces to the API caller.
func (s *Server) publishNotice(r *http.Request, result discovery.Result) {
	notice := publisher.RunNotice{
		RunID:           result.RunID,
		Scope:           result.Scope,
		StopReason:      string(result.StopReason),
		TargetReached:   result.TargetReached,
		UniqueFound:     len(result.Candidates),
		QueriesExecuted: result.QueriesExecuted,
		IterationsRun:   result.IterationsRun,
		TotalCost:       result.Cost.TotalCost,
		FinishedAt:      result.FinishedAt,
	}
	if _, err := s.notifier.Publish(r.Context(), notice); err != nil {
		s.logger.Warn("run notice publish failed",
			zap.String("run_id", result.RunID),
			zap.Error(err),
		)
	}
}

func valueOrDefault[T any](ptr *T, def T) T {
	if ptr == nil {
		return def
	}
	return *ptr
}
