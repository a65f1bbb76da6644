// Package memory provides an in-memory run-notice publisher for tests and
// single-process development.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/belivan/prospect-discovery/internal/publisher"
)

// Publisher records notices instead of sending them anywhere.
type Publisher struct {
	mu      sync.Mutex
	notices []publisher.RunNotice
}

// New creates an empty Publisher.
func New() *Publisher {
	return &Publisher{}
}

// Publish appends the notice and returns a synthetic message id.
func (p *Publisher) Publish(_ context.Context, notice publisher.RunNotice) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.notices = append(p.notices, notice)
	return fmt.Sprintf("mem-%d", len(p.notices)), nil
}

// Close implements Publisher; it does nothing.
func (p *Publisher) Close() error { return nil }

// Notices returns a copy of everything published so far.
func (p *Publisher) Notices() []publisher.RunNotice {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]publisher.RunNotice(nil), p.notices...)
}
