// Package sinks provides ready-made consumers for discovery progress events.
package sinks

import (
	"go.uber.org/zap"

	"github.com/belivan/prospect-discovery/internal/progress"
)

// LogSink emits structured logs for debugging progress streams. It is useful
// during development or audits where metrics alone are too coarse.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink wires a Zap logger to the sink interface.
func NewLogSink(logger *zap.Logger) *LogSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSink{logger: logger}
}

// Observe logs the event using structured fields.
func (s *LogSink) Observe(evt progress.Event) {
	fields := []zap.Field{
		zap.String("run_id", evt.RunUUID().String()),
		zap.String("stage", string(evt.Stage)),
		zap.String("scope", evt.Scope),
		zap.Int("iteration", evt.Iteration),
	}
	if evt.Query != "" {
		fields = append(fields, zap.String("query", evt.Query))
	}
	if evt.Strategy != "" {
		fields = append(fields, zap.String("strategy", evt.Strategy))
	}
	switch evt.Stage {
	case progress.StageQueryDone:
		fields = append(fields, zap.Int("results", evt.Results), zap.Duration("dur", evt.Dur))
	case progress.StageDedupSummary, progress.StageIterationSummary:
		fields = append(fields, zap.Int("new_unique", evt.NewUnique), zap.Int("skipped", evt.Skipped))
	case progress.StageStop, progress.StageRunDone:
		fields = append(fields, zap.String("reason", evt.Reason))
	}
	if evt.Note != "" {
		fields = append(fields, zap.String("note", evt.Note))
	}
	s.logger.Info("discovery progress", fields...)
}
