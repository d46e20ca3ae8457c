package flush_test

import (
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/trickle/pkg/flush"
	"github.com/papercomputeco/trickle/pkg/format"
)

func identity(s string) string { return s }

// offerAll feeds payloads in order and collects every emitted fragment.
func offerAll(p *flush.Policy, payloads ...string) []string {
	var out []string
	for _, payload := range payloads {
		if frag, ok := p.Offer(payload); ok {
			out = append(out, frag)
		}
	}
	return out
}

var _ = Describe("Policy", func() {
	var p *flush.Policy

	Describe("Eager", func() {
		BeforeEach(func() {
			p = flush.New(flush.WithFormatter(identity))
		})

		It("accumulates fragments without a trigger", func() {
			Expect(offerAll(p, "1", "2", "3", "4", "5", "6", "7", "8", "9", "9")).To(BeEmpty())
			Expect(p.Pending()).To(Equal("1234567899"))
			Expect(p.Len()).To(Equal(10))
			Expect(p.Flushes()).To(BeZero())
		})

		It("flushes exactly when the buffer passes the threshold", func() {
			for i := range 15 {
				_, ok := p.Offer("x")
				Expect(ok).To(BeFalse(), "flushed early at length %d", i+1)
			}
			Expect(p.Len()).To(Equal(15))

			frag, ok := p.Offer("y")
			Expect(ok).To(BeTrue())
			Expect(frag).To(Equal(strings.Repeat("x", 15) + "y"))
			Expect(p.Pending()).To(BeEmpty())
		})

		It("counts characters, not bytes", func() {
			Expect(offerAll(p, "Мусала", "Мусала")).To(BeEmpty())
			Expect(p.Len()).To(Equal(12))
		})

		It("respects a custom threshold", func() {
			p = flush.New(flush.WithFormatter(identity), flush.WithThreshold(3))
			Expect(offerAll(p, "ab", "c")).To(BeEmpty())
			Expect(offerAll(p, "d")).To(Equal([]string{"abcd"}))
		})

		DescribeTable("flushes on a trigger in the payload",
			func(payload string) {
				Expect(offerAll(p, "ab", payload)).To(Equal([]string{"ab" + payload}))
			},
			Entry("inner space", "c d"),
			Entry("comma", ","),
			Entry("exclamation", "!"),
			Entry("question", "?"),
			Entry("semicolon", ";"),
			Entry("colon", ":"),
			Entry("period", "."),
			Entry("digit-period", "x3.y"),
		)

		It("ignores empty payloads", func() {
			_, ok := p.Offer("")
			Expect(ok).To(BeFalse())
			Expect(p.Pending()).To(BeEmpty())
		})

		It("holds back a trailing list marker", func() {
			Expect(offerAll(p, "Peaks:", "1", ".")).To(Equal([]string{"Peaks:"}))
			Expect(p.Pending()).To(Equal("1."))

			Expect(offerAll(p, "Musala", " ")).To(Equal([]string{"1.Musala "}))
		})

		It("holds back a marker split off the previous word by whitespace", func() {
			Expect(offerAll(p, "see", " 12.")).To(Equal([]string{"see "}))
			Expect(p.Pending()).To(Equal("12."))
		})

		It("does not hold back digits glued to a word", func() {
			Expect(offerAll(p, "v2", ".")).To(Equal([]string{"v2."}))
			Expect(p.Pending()).To(BeEmpty())
		})

		It("emits nothing when the whole buffer is a marker", func() {
			Expect(offerAll(p, "1", ".")).To(BeEmpty())
			Expect(p.Pending()).To(Equal("1."))
		})

		It("formats each flushed fragment", func() {
			p = flush.New()
			Expect(offerAll(p, "1", ".", "Item", "One", " ")).To(Equal([]string{"\n1. Item One "}))
		})
	})

	Describe("line breaks across fragments", func() {
		// pipeBreaks turns "|" into a line break before the usual passes.
		pipeBreaks := func(s string) string {
			return format.Fragment(strings.ReplaceAll(s, "|", "\n"))
		}

		It("does not double a list break after a fragment ending in a newline", func() {
			p = flush.New(flush.WithFormatter(pipeBreaks))
			Expect(offerAll(p, "Peaks:|", "2. Vihren")).To(Equal([]string{"Peaks:\n", "2. Vihren"}))
		})

		It("keeps the list break after an ordinary fragment", func() {
			p = flush.New(flush.WithFormatter(pipeBreaks))
			Expect(offerAll(p, "Peaks:", "2. Vihren")).To(Equal([]string{"Peaks:", "\n2. Vihren"}))
		})

		It("forgets the previous fragment on Reset", func() {
			p = flush.New(flush.WithFormatter(pipeBreaks))
			offerAll(p, "Peaks:|")
			p.Reset()
			Expect(offerAll(p, "2. Vihren")).To(Equal([]string{"\n2. Vihren"}))
		})
	})

	Describe("Finish", func() {
		It("flushes the remainder unconditionally", func() {
			p = flush.New(flush.WithFormatter(identity))
			offerAll(p, "ab")

			frag, ok := p.Finish()
			Expect(ok).To(BeTrue())
			Expect(frag).To(Equal("ab"))

			_, ok = p.Finish()
			Expect(ok).To(BeFalse())
		})

		It("formats the final fragment", func() {
			p = flush.New()
			offerAll(p, "1", ".", "Item", "One")

			frag, ok := p.Finish()
			Expect(ok).To(BeTrue())
			Expect(frag).To(Equal("\n1. Item One"))
		})
	})

	Describe("Once", func() {
		It("emits a single fragment at the end", func() {
			p = flush.New(flush.WithStrategy(flush.Once))
			Expect(offerAll(p, "Hello", ",", "world", "!", " ", "1", ".", "Item")).To(BeEmpty())

			frag, ok := p.Finish()
			Expect(ok).To(BeTrue())
			Expect(frag).To(Equal("Hello, world! \n1. Item"))
			Expect(p.Flushes()).To(Equal(1))
		})
	})

	Describe("Reset", func() {
		It("drops buffered text and counters", func() {
			p = flush.New(flush.WithFormatter(identity))
			offerAll(p, "a b", "c")
			Expect(p.Flushes()).To(Equal(1))

			p.Reset()
			Expect(p.Pending()).To(BeEmpty())
			Expect(p.Flushes()).To(BeZero())
		})
	})

	DescribeTable("ParseStrategy",
		func(in string, want flush.Strategy, ok bool) {
			got, err := flush.ParseStrategy(in)
			if !ok {
				Expect(err).To(HaveOccurred())
				return
			}
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal(want))
		},
		Entry("eager", "eager", flush.Eager, true),
		Entry("once upper case", "ONCE", flush.Once, true),
		Entry("empty defaults to eager", "", flush.Eager, true),
		Entry("unknown", "sometimes", flush.Strategy(""), false),
	)
})
