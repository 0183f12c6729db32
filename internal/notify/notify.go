// Package notify announces catalog lifecycle events to other services.
package notify

import (
	"context"
	"time"
)

// Topics.
const (
	TopicCatalogReloaded = "catalog.reloaded"
	TopicReloadFailed    = "catalog.reload_failed"
)

// Event describes one catalog reload outcome.
type Event struct {
	Topic     string    `json:"topic"`
	Version   string    `json:"version,omitempty"`
	Products  int       `json:"products"`
	Rejected  int       `json:"rejected"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Publisher delivers events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
	Close() error
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }
