package async_test

import (
	"context"
	"errors"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/trickle/pkg/eventstream"
	"github.com/papercomputeco/trickle/pkg/eventstream/async"
)

// recordingPublisher remembers every delivered event. When gate is set each
// delivery waits for it to be closed.
type recordingPublisher struct {
	mu     sync.Mutex
	events []*eventstream.SessionEvent
	err    error
	gate   chan struct{}
	closed bool
}

func (r *recordingPublisher) PublishSession(_ context.Context, ev *eventstream.SessionEvent) error {
	if r.gate != nil {
		<-r.gate
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return r.err
}

func (r *recordingPublisher) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

func (r *recordingPublisher) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

var _ = Describe("Publisher", func() {
	var (
		inner *recordingPublisher
		ctx   context.Context
	)

	BeforeEach(func() {
		inner = &recordingPublisher{}
		ctx = context.Background()
	})

	It("requires a wrapped publisher", func() {
		_, err := async.NewPublisher(&async.Config{})
		Expect(err).To(HaveOccurred())
	})

	It("delivers queued events in order and drains on Close", func() {
		p, err := async.NewPublisher(&async.Config{Publisher: inner})
		Expect(err).NotTo(HaveOccurred())

		for _, id := range []string{"a", "b", "c"} {
			Expect(p.PublishSession(ctx, eventstream.NewSessionEvent(eventstream.EventTypeSessionStarted, id))).To(Succeed())
		}
		Expect(p.Close()).To(Succeed())

		Expect(inner.events).To(HaveLen(3))
		Expect(inner.events[0].SessionID).To(Equal("a"))
		Expect(inner.events[2].SessionID).To(Equal("c"))
		Expect(inner.closed).To(BeTrue())
	})

	It("drops events when the queue is full", func() {
		inner.gate = make(chan struct{})
		p, err := async.NewPublisher(&async.Config{Publisher: inner, QueueSize: 1})
		Expect(err).NotTo(HaveOccurred())

		// The blocked worker holds at most one event and the queue one more.
		for range 10 {
			Expect(p.PublishSession(ctx, eventstream.NewSessionEvent(eventstream.EventTypeSessionStarted, "s"))).To(Succeed())
		}
		Expect(p.Dropped()).To(BeNumerically(">=", 8))

		close(inner.gate)
		Expect(p.Close()).To(Succeed())
		Expect(uint64(inner.count()) + p.Dropped()).To(Equal(uint64(10)))
	})

	It("counts failed deliveries without surfacing them", func() {
		inner.err = errors.New("broker down")
		p, err := async.NewPublisher(&async.Config{Publisher: inner})
		Expect(err).NotTo(HaveOccurred())

		Expect(p.PublishSession(ctx, eventstream.NewSessionEvent(eventstream.EventTypeSessionFailed, "x"))).To(Succeed())
		Expect(p.Close()).To(Succeed())
		Expect(p.Failed()).To(Equal(uint64(1)))
	})

	It("rejects nil events and publishes after Close", func() {
		p, err := async.NewPublisher(&async.Config{Publisher: inner})
		Expect(err).NotTo(HaveOccurred())
		Expect(p.PublishSession(ctx, nil)).To(MatchError(eventstream.ErrNilSessionEvent))

		Expect(p.Close()).To(Succeed())
		Expect(p.Close()).To(Succeed())
		err = p.PublishSession(ctx, eventstream.NewSessionEvent(eventstream.EventTypeSessionStarted, "late"))
		Expect(err).To(MatchError(eventstream.ErrPublisherClosed))
	})
})
