package sse_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/trickle/pkg/sse"
)

var _ = Describe("ParseLine", func() {
	DescribeTable("data lines",
		func(line string, payload string, sentinel bool) {
			rec, ok := sse.ParseLine(line)
			Expect(ok).To(BeTrue())
			Expect(rec.Payload).To(Equal(payload))
			Expect(rec.Sentinel).To(Equal(sentinel))
		},
		Entry("compact form", "data:Item", "Item", false),
		Entry("space after marker", "data: Item", "Item", false),
		Entry("trailing whitespace", "data:One \t", "One", false),
		Entry("empty payload", "data:", "", false),
		Entry("sentinel", "data:[DONE]", "[DONE]", true),
		Entry("padded sentinel", "data: [DONE] ", "[DONE]", true),
		Entry("sentinel-like payload", "data:[DONE]!", "[DONE]!", false),
	)

	DescribeTable("dropped lines",
		func(line string) {
			_, ok := sse.ParseLine(line)
			Expect(ok).To(BeFalse())
		},
		Entry("blank separator", ""),
		Entry("comment", ": keep-alive"),
		Entry("event field", "event:message"),
		Entry("id field", "id:5f0c"),
		Entry("leading space before marker", " data:x"),
		Entry("different case", "DATA:x"),
	)
})
