// Package async decouples session event publishing from the stream read
// loop. Events are queued and delivered by background workers; when the
// queue is full the event is dropped rather than stalling the session.
package async

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/papercomputeco/trickle/pkg/eventstream"
	"github.com/papercomputeco/trickle/pkg/logger"
)

var (
	defaultNumWorkers     uint = 1
	defaultQueueSize      uint = 256
	defaultPublishTimeout      = 5 * time.Second
)

// Config is the configuration for an async publisher.
type Config struct {
	// Publisher receives the events. It is closed by Close.
	Publisher eventstream.Publisher

	// NumWorkers is the number of delivery goroutines. A single worker keeps
	// events in submission order.
	NumWorkers uint

	// QueueSize is the capacity of the event queue (defaults to 256).
	QueueSize uint

	// PublishTimeout bounds each delivery to the wrapped publisher.
	PublishTimeout time.Duration

	Logger *slog.Logger
}

// Publisher queues events for a wrapped Publisher.
type Publisher struct {
	inner   eventstream.Publisher
	queue   chan *eventstream.SessionEvent
	timeout time.Duration
	logger  *slog.Logger
	wg      sync.WaitGroup

	mu      sync.RWMutex
	closed  bool
	dropped atomic.Uint64
	failed  atomic.Uint64
}

// NewPublisher starts the workers and returns the decorator.
func NewPublisher(c *Config) (*Publisher, error) {
	if c.Publisher == nil {
		return nil, fmt.Errorf("async publisher requires a wrapped publisher")
	}
	if c.NumWorkers == 0 {
		c.NumWorkers = defaultNumWorkers
	}
	if c.QueueSize == 0 {
		c.QueueSize = defaultQueueSize
	}
	if c.PublishTimeout == 0 {
		c.PublishTimeout = defaultPublishTimeout
	}
	if c.NumWorkers > uint(math.MaxInt) {
		return nil, fmt.Errorf("NumWorkers %d exceeds max int", c.NumWorkers)
	}
	if c.Logger == nil {
		c.Logger = logger.Nop()
	}

	p := &Publisher{
		inner:   c.Publisher,
		queue:   make(chan *eventstream.SessionEvent, c.QueueSize),
		timeout: c.PublishTimeout,
		logger:  c.Logger,
	}

	p.wg.Add(int(c.NumWorkers))
	for i := range c.NumWorkers {
		go p.worker(i)
	}

	return p, nil
}

// PublishSession enqueues event and returns immediately. A full queue drops
// the event and is not reported as an error.
func (p *Publisher) PublishSession(_ context.Context, event *eventstream.SessionEvent) error {
	if event == nil {
		return eventstream.ErrNilSessionEvent
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return eventstream.ErrPublisherClosed
	}

	select {
	case p.queue <- event:
		p.logger.Debug("session event queued",
			"event_type", event.EventType,
			"session_id", event.SessionID,
		)
	default:
		p.dropped.Add(1)
		p.logger.Error("session event dropped, queue full",
			"event_type", event.EventType,
			"session_id", event.SessionID,
		)
	}
	return nil
}

// Dropped reports how many events were discarded because the queue was full.
func (p *Publisher) Dropped() uint64 {
	return p.dropped.Load()
}

// Failed reports how many deliveries the wrapped publisher rejected.
func (p *Publisher) Failed() uint64 {
	return p.failed.Load()
}

// Close stops accepting events, waits for queued ones to drain and closes the
// wrapped publisher.
func (p *Publisher) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()

	p.wg.Wait()
	return p.inner.Close()
}

func (p *Publisher) worker(id uint) {
	defer p.wg.Done()
	p.logger.Debug("publish worker started", "worker_id", id)

	for event := range p.queue {
		ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
		err := p.inner.PublishSession(ctx, event)
		cancel()

		if err != nil {
			p.failed.Add(1)
			p.logger.Warn("session event publish failed",
				"event_type", event.EventType,
				"session_id", event.SessionID,
				"error", err,
			)
		}
	}

	p.logger.Debug("publish worker stopped", "worker_id", id)
}
