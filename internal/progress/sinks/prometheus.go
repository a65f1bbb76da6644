package sinks

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/belivan/prospect-discovery/internal/progress"
)

// PrometheusSink exports discovery progress metrics via Prometheus. It owns
// all collectors for runs started/completed/running and per-strategy query
// counters.
type PrometheusSink struct {
	runsStarted   prometheus.Counter
	runsCompleted *prometheus.CounterVec
	runsRunning   prometheus.Gauge

	queries       *prometheus.CounterVec
	queryDuration *prometheus.HistogramVec

	candidatesNew     prometheus.Counter
	candidatesSkipped prometheus.Counter
}

// NewPrometheusSink registers the collectors against the provided registry.
func NewPrometheusSink(reg prometheus.Registerer) (*PrometheusSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PrometheusSink{
		runsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "discovery_runs_started_total",
			Help: "Total discovery runs that have started.",
		}),
		runsCompleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "discovery_runs_completed_total",
			Help: "Total discovery runs completed partitioned by stop reason.",
		}, []string{"reason"}),
		runsRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "discovery_runs_running",
			Help: "Current number of in-flight discovery runs.",
		}),
		queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "discovery_queries_total",
			Help: "Executed search queries partitioned by strategy and outcome.",
		}, []string{"strategy", "outcome"}),
		queryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "discovery_query_duration_seconds",
			Help:    "Entity search duration partitioned by strategy.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}, []string{"strategy"}),
		candidatesNew: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "discovery_candidates_new_total",
			Help: "Candidates accepted into run unique sets.",
		}),
		candidatesSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "discovery_candidates_skipped_total",
			Help: "Candidates dropped as in-run or historical duplicates.",
		}),
	}
	for _, collector := range []prometheus.Collector{
		s.runsStarted,
		s.runsCompleted,
		s.runsRunning,
		s.queries,
		s.queryDuration,
		s.candidatesNew,
		s.candidatesSkipped,
	} {
		if err := reg.Register(collector); err != nil {
			return nil, fmt.Errorf("register progress collector: %w", err)
		}
	}
	return s, nil
}

// Observe updates the Prometheus collectors from the event. It is safe for
// concurrent use by multiple goroutines.
func (s *PrometheusSink) Observe(evt progress.Event) {
	switch evt.Stage {
	case progress.StageRunStart:
		s.runsStarted.Inc()
		s.runsRunning.Inc()
	case progress.StageRunDone:
		s.runsRunning.Dec()
		s.runsCompleted.WithLabelValues(evt.Reason).Inc()
	case progress.StageQueryDone:
		s.queries.WithLabelValues(evt.Strategy, "ok").Inc()
		s.queryDuration.WithLabelValues(evt.Strategy).Observe(evt.Dur.Seconds())
	case progress.StageQueryError:
		s.queries.WithLabelValues(evt.Strategy, "error").Inc()
	case progress.StageDedupSummary:
		s.candidatesNew.Add(float64(evt.NewUnique))
		s.candidatesSkipped.Add(float64(evt.Skipped))
	}
}
