package sse_test

import (
	"bytes"
	"errors"
	"strings"
	"testing/iotest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/trickle/pkg/sse"
)

// drain reads every event until the reader reports exhaustion.
func drain(r *sse.TeeReader) []sse.Event {
	var events []sse.Event
	for {
		ev, err := r.Next()
		Expect(err).NotTo(HaveOccurred())
		if ev == nil {
			return events
		}
		events = append(events, *ev)
	}
}

var _ = Describe("TeeReader", func() {
	var dst *bytes.Buffer

	BeforeEach(func() {
		dst = &bytes.Buffer{}
	})

	Describe("Next", func() {
		It("assembles events separated by blank lines", func() {
			r := sse.NewTeeReader(strings.NewReader("data: Item \n\ndata:One\n\n"), dst)

			Expect(drain(r)).To(Equal([]sse.Event{
				{Data: "Item "},
				{Data: "One"},
			}))
		})

		It("keeps the id and event fields written by the relay", func() {
			input := "id:3b8e\nevent:message\ndata:Christmas \n\n"
			r := sse.NewTeeReader(strings.NewReader(input), dst)

			ev, err := r.Next()
			Expect(err).NotTo(HaveOccurred())
			Expect(ev.ID).To(Equal("3b8e"))
			Expect(ev.Type).To(Equal("message"))
			Expect(ev.Data).To(Equal("Christmas "))
		})

		It("joins consecutive data lines with a newline", func() {
			r := sse.NewTeeReader(strings.NewReader("data: 1. New Year\ndata: 2. Easter\n\n"), dst)

			ev, err := r.Next()
			Expect(err).NotTo(HaveOccurred())
			Expect(ev.Data).To(Equal("1. New Year\n2. Easter"))
		})

		It("decodes OpenAI-style chunks and the trailing sentinel", func() {
			input := "data: {\"choices\":[{\"delta\":{\"content\":\"Hel\"}}]}\n\n" +
				"data: {\"choices\":[{\"delta\":{\"content\":\"lo\"}}]}\n\n" +
				"data: [DONE]\n\n"
			r := sse.NewTeeReader(strings.NewReader(input), dst)

			events := drain(r)
			Expect(events).To(HaveLen(3))
			Expect(events[1].Data).To(ContainSubstring(`"lo"`))
			Expect(events[2].Data).To(Equal(sse.Sentinel))
		})

		It("skips comments, retry and unknown fields", func() {
			r := sse.NewTeeReader(strings.NewReader(": ping\nretry: 3000\nfoo: bar\ndata: hello\n\n"), dst)

			Expect(drain(r)).To(Equal([]sse.Event{{Data: "hello"}}))
		})

		It("treats a bare field name as an empty value", func() {
			r := sse.NewTeeReader(strings.NewReader("data\n\n"), dst)

			Expect(drain(r)).To(Equal([]sse.Event{{Data: ""}}))
		})

		It("accepts CRLF framing", func() {
			r := sse.NewTeeReader(strings.NewReader("data: a\r\n\r\ndata: b\r\n\r\n"), dst)

			Expect(drain(r)).To(Equal([]sse.Event{{Data: "a"}, {Data: "b"}}))
		})

		It("yields an event left unterminated at end of stream", func() {
			r := sse.NewTeeReader(strings.NewReader("\n\ndata: tail"), dst)

			Expect(drain(r)).To(Equal([]sse.Event{{Data: "tail"}}))
		})

		It("returns nil for empty and blank-only input", func() {
			Expect(drain(sse.NewTeeReader(strings.NewReader(""), dst))).To(BeEmpty())
			Expect(drain(sse.NewTeeReader(strings.NewReader("\n\n\n"), dst))).To(BeEmpty())
		})

		It("gives the same events when the source trickles one byte at a time", func() {
			input := "event:message\ndata:Мусала\r\n\r\ndata: [DONE]\n\n"

			whole := drain(sse.NewTeeReader(strings.NewReader(input), nil))
			trickled := drain(sse.NewTeeReader(iotest.OneByteReader(strings.NewReader(input)), nil))
			Expect(trickled).To(Equal(whole))
			Expect(whole).To(HaveLen(2))
		})

		It("surfaces decode errors", func() {
			r := sse.NewTeeReader(bytes.NewReader([]byte("data: \xff\n\n")), dst)

			_, err := r.Next()
			var decodeErr sse.DecodeError
			Expect(errors.As(err, &decodeErr)).To(BeTrue())
			Expect(decodeErr.Offset).To(Equal(int64(6)))
		})

		It("surfaces source read errors", func() {
			boom := errors.New("connection reset")
			r := sse.NewTeeReader(iotest.ErrReader(boom), dst)

			_, err := r.Next()
			Expect(err).To(MatchError(boom))
		})
	})

	Describe("tee", func() {
		It("copies the raw stream verbatim to the destination", func() {
			input := ": keep-alive\nid:1\nevent:message\ndata: first\r\n\r\ndata: [DONE]\n\n"
			r := sse.NewTeeReader(strings.NewReader(input), dst)

			drain(r)
			Expect(dst.String()).To(Equal(input))
		})

		It("discards the copy when no destination is given", func() {
			r := sse.NewTeeReader(strings.NewReader("data: x\n\n"), nil)

			Expect(drain(r)).To(HaveLen(1))
		})
	})
})
