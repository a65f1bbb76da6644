package progress

import (
	"go.uber.org/zap"
)

// Sink observes validated progress events. Observe runs on the emitting
// goroutine at well-defined checkpoints, so implementations must not block
// materially; within-iteration query events may arrive concurrently, so
// implementations must also be safe for concurrent use. Event ordering
// relative to run completion is guaranteed for run- and iteration-level
// stages.
type Sink interface {
	Observe(evt Event)
}

// Emitter publishes individual events; Fanout satisfies this interface so
// the controller stays agnostic about where events go.
type Emitter interface {
	Emit(evt Event)
}

// Fanout delivers each event synchronously to every registered sink.
type Fanout struct {
	sinks  []Sink
	logger *zap.Logger
}

// NewFanout builds a Fanout over the supplied sinks. A nil logger falls
// back to a no-op logger.
func NewFanout(logger *zap.Logger, sinks ...Sink) *Fanout {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fanout{
		sinks:  append([]Sink(nil), sinks...),
		logger: logger,
	}
}

// Emit validates the event and hands it to each sink in registration
// order. Invalid events are dropped with a debug log.
func (f *Fanout) Emit(evt Event) {
	if f == nil {
		return
	}
	if err := evt.Validate(); err != nil {
		f.logger.Debug("discarding invalid progress event", zap.Error(err))
		return
	}
	for _, sink := range f.sinks {
		if sink == nil {
			continue
		}
		sink.Observe(evt)
	}
}

// Nop returns an Emitter that discards every event.
func Nop() Emitter {
	return nopEmitter{}
}

type nopEmitter struct{}

func (nopEmitter) Emit(Event) {}
