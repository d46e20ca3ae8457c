package nop_test

import (
	"bytes"
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/trickle/pkg/eventstream"
	"github.com/papercomputeco/trickle/pkg/eventstream/nop"
	"github.com/papercomputeco/trickle/pkg/logger"
)

var _ = Describe("Publisher", func() {
	var (
		buf bytes.Buffer
		p   *nop.Publisher
	)

	BeforeEach(func() {
		buf.Reset()
		p = nop.NewPublisher(logger.New(logger.WithWriter(&buf), logger.WithDebug(true)))
	})

	It("rejects nil events", func() {
		Expect(p.PublishSession(context.Background(), nil)).To(MatchError(eventstream.ErrNilSessionEvent))
		Expect(p.Published()).To(BeZero())
	})

	It("logs accepted session events at debug level", func() {
		ev := eventstream.NewSessionEvent(eventstream.EventTypeSessionAborted, "s1")
		ev.State = "aborted"
		Expect(p.PublishSession(context.Background(), ev)).To(Succeed())

		Expect(p.Published()).To(Equal(1))
		Expect(buf.String()).To(ContainSubstring("event_type=trickle.session.aborted"))
		Expect(buf.String()).To(ContainSubstring("session_id=s1"))
	})

	It("refuses events after Close", func() {
		Expect(p.Close()).To(Succeed())
		Expect(p.Close()).To(Succeed())

		ev := eventstream.NewSessionEvent(eventstream.EventTypeSessionStarted, "s1")
		Expect(p.PublishSession(context.Background(), ev)).To(MatchError(eventstream.ErrPublisherClosed))
	})

	It("works without a logger", func() {
		quiet := nop.NewPublisher(nil)
		ev := eventstream.NewSessionEvent(eventstream.EventTypeSessionCompleted, "s2")
		Expect(quiet.PublishSession(context.Background(), ev)).To(Succeed())
	})
})
