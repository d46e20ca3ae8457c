package format_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/trickle/pkg/format"
)

var _ = Describe("passes", func() {
	DescribeTable("PunctuationSpacing",
		func(in, want string) {
			Expect(format.PunctuationSpacing(in)).To(Equal(want))
		},
		Entry("comma", "Hi,there", "Hi, there"),
		Entry("sentence end", "Done.Next", "Done. Next"),
		Entry("cyrillic letter", "Да,Мусала", "Да, Мусала"),
		Entry("already spaced", "Hi, there", "Hi, there"),
		Entry("punctuation before digit", "3.14", "3.14"),
	)

	DescribeTable("CaseBoundary",
		func(in, want string) {
			Expect(format.CaseBoundary(in)).To(Equal(want))
		},
		Entry("two words", "ItemOne", "Item One"),
		Entry("several words", "newYearEve", "new Year Eve"),
		Entry("acronym", "HTTP", "HTTP"),
	)

	DescribeTable("DigitLetterSpacing",
		func(in, want string) {
			Expect(format.DigitLetterSpacing(in)).To(Equal(want))
		},
		Entry("digit then letter", "3items", "3 items"),
		Entry("letter then digit", "top3", "top 3"),
		Entry("both", "top3items", "top 3 items"),
		Entry("alternating", "a1b2", "a 1 b 2"),
		Entry("plain number", "2025", "2025"),
	)

	DescribeTable("ListMarkerSpacing",
		func(in, want string) {
			Expect(format.ListMarkerSpacing(in)).To(Equal(want))
		},
		Entry("single digit", "1.Item", "1. Item"),
		Entry("multi digit", "12.Item", "12. Item"),
		Entry("decimal", "1.5", "1.5"),
	)

	DescribeTable("ListBreaks",
		func(in, want string) {
			Expect(format.ListBreaks(in)).To(Equal(want))
		},
		Entry("leading marker", "1. Item", "\n1. Item"),
		Entry("inline markers", "list: 1. One 2. Two", "list: \n1. One \n2. Two"),
		Entry("already broken", "\n1. One\n2. Two", "\n1. One\n2. Two"),
		Entry("multi digit marker", "10. Ten", "\n10. Ten"),
		Entry("marker at end without space", "see 1.", "see 1."),
		Entry("decimal", "pi is 3.14", "pi is 3.14"),
	)

	It("makes every pass individually idempotent", func() {
		inputs := []string{"1.ItemOne", "Hi,there top3items", "list: 1. One 2. Two", "Мусала,Рила"}
		for _, pass := range format.Passes {
			for _, in := range inputs {
				once := pass(in)
				Expect(pass(once)).To(Equal(once))
			}
		}
	})
})

var _ = Describe("Fragment", func() {
	It("rebuilds a run-together list item", func() {
		Expect(format.Fragment("1.ItemOne")).To(Equal("\n1. Item One"))
	})

	It("handles a sentence with missing separators", func() {
		Expect(format.Fragment("Holidays:NewYear,Easter")).To(Equal("Holidays: New Year, Easter"))
	})

	It("leaves plain words alone", func() {
		Expect(format.Fragment("hello ")).To(Equal("hello "))
	})

	DescribeTable("is stable on already-spaced text",
		func(in string) {
			once := format.Fragment(in)
			Expect(format.Fragment(once)).To(Equal(once))
		},
		Entry("prose", "Bulgarian holidays in spring, summer and winter."),
		Entry("formatted list", "Top peaks:\n1. Musala 2925 m\n2. Vihren 2914 m"),
		Entry("mixed case words", "The Rila Monastery. Visit it!"),
		Entry("cyrillic", "Мусала е най-високият връх."),
	)
})
