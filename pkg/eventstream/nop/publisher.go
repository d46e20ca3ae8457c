// Package nop is the session event publisher used when no event stream is
// configured. Events go nowhere, but each one is logged at debug level so
// `--debug` still shows the session lifecycle.
package nop

import (
	"context"
	"log/slog"
	"sync"

	"github.com/papercomputeco/trickle/pkg/eventstream"
	"github.com/papercomputeco/trickle/pkg/logger"
)

// Publisher drops session events after logging them.
type Publisher struct {
	logger *slog.Logger

	mu        sync.Mutex
	closed    bool
	published int
}

// NewPublisher returns a Publisher logging to log. A nil log discards.
func NewPublisher(log *slog.Logger) *Publisher {
	if log == nil {
		log = logger.Nop()
	}
	return &Publisher{logger: log}
}

// PublishSession logs event. It fails on nil events and after Close, the
// same as the network publishers.
func (p *Publisher) PublishSession(ctx context.Context, event *eventstream.SessionEvent) error {
	if event == nil {
		return eventstream.ErrNilSessionEvent
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return eventstream.ErrPublisherClosed
	}
	p.published++
	p.mu.Unlock()

	p.logger.DebugContext(ctx, "session event",
		"event_type", event.EventType,
		"session_id", event.SessionID,
		"state", event.State,
		"chunk_count", event.ChunkCount,
	)
	return nil
}

// Published returns how many events were accepted.
func (p *Publisher) Published() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.published
}

// Close marks the publisher closed. It is safe to call more than once.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}
