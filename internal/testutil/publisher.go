package testutil

import (
	"context"
	"sync"

	"github.com/loftloot/loftloot/internal/notify"
)

// Compile-time interface check.
var _ notify.Publisher = (*MockPublisher)(nil)

// MockPublisher is a thread-safe in-memory publisher that records all
// published events for later inspection.
type MockPublisher struct {
	mu     sync.Mutex
	events []notify.Event
	closed bool
	err    error
}

// NewMockPublisher returns a new MockPublisher.
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

// FailWith makes subsequent Publish calls return err after recording.
func (p *MockPublisher) FailWith(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.err = err
}

// Publish records an event synchronously.
func (p *MockPublisher) Publish(_ context.Context, ev notify.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

// Close marks the publisher closed.
func (p *MockPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

// Closed reports whether Close was called.
func (p *MockPublisher) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

// Events returns a copy of all recorded events.
func (p *MockPublisher) Events() []notify.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]notify.Event, len(p.events))
	copy(out, p.events)
	return out
}

// Reset clears all recorded events.
func (p *MockPublisher) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = nil
}
