// Package holidaystest holds the behaviour every holidays.Store must share,
// written as ginkgo specs so each implementation's suite can run them.
package holidaystest

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/trickle/pkg/holidays"
)

// Date returns midnight UTC of the given day.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// StoreSpecs registers the shared Store specs. Call it inside a Describe;
// newStore runs before each spec and the store is closed after it.
func StoreSpecs(newStore func() holidays.Store) {
	var (
		ctx   context.Context
		store holidays.Store
	)

	BeforeEach(func() {
		ctx = context.Background()
		store = newStore()
		DeferCleanup(func() {
			Expect(store.Close()).To(Succeed())
		})
	})

	create := func(title string, date time.Time) *holidays.Holiday {
		h, err := store.Create(ctx, holidays.Holiday{Title: title, Date: date})
		Expect(err).NotTo(HaveOccurred())
		return h
	}

	It("assigns distinct ids on create", func() {
		a := create("New Year", Date(2026, time.January, 1))
		b := create("Labour Day", Date(2026, time.May, 1))
		Expect(a.ID).NotTo(BeZero())
		Expect(b.ID).NotTo(Equal(a.ID))
	})

	It("gets a created holiday back", func() {
		created := create("Christmas", Date(2026, time.December, 25))

		got, err := store.Get(ctx, created.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(got.Title).To(Equal("Christmas"))
		Expect(got.Date.Equal(Date(2026, time.December, 25))).To(BeTrue())
	})

	It("lists holidays of one year ordered by date", func() {
		create("Christmas", Date(2026, time.December, 25))
		create("New Year", Date(2026, time.January, 1))
		create("Old", Date(2025, time.December, 31))
		create("Next", Date(2027, time.January, 1))

		list, err := store.List(ctx, 2026)
		Expect(err).NotTo(HaveOccurred())
		Expect(list).To(HaveLen(2))
		Expect(list[0].Title).To(Equal("New Year"))
		Expect(list[1].Title).To(Equal("Christmas"))
	})

	It("lists everything for year zero", func() {
		create("Old", Date(2025, time.December, 31))
		create("Next", Date(2027, time.January, 1))

		list, err := store.List(ctx, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(list).To(HaveLen(2))
	})

	It("returns an empty, non-nil list for a year without holidays", func() {
		list, err := store.List(ctx, 1999)
		Expect(err).NotTo(HaveOccurred())
		Expect(list).NotTo(BeNil())
		Expect(list).To(BeEmpty())
	})

	It("updates title and date", func() {
		h := create("Typo", Date(2026, time.March, 1))
		h.Title = "Spring"
		h.Date = Date(2026, time.March, 20)

		_, err := store.Update(ctx, *h)
		Expect(err).NotTo(HaveOccurred())

		got, err := store.Get(ctx, h.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(got.Title).To(Equal("Spring"))
		Expect(got.Date.Equal(Date(2026, time.March, 20))).To(BeTrue())
	})

	It("deletes", func() {
		h := create("Gone", Date(2026, time.June, 1))
		Expect(store.Delete(ctx, h.ID)).To(Succeed())

		_, err := store.Get(ctx, h.ID)
		Expect(holidays.IsNotFound(err)).To(BeTrue())
	})

	It("reports missing ids as NotFoundError", func() {
		_, err := store.Get(ctx, 4242)
		Expect(err).To(MatchError(holidays.NotFoundError{ID: 4242}))

		_, err = store.Update(ctx, holidays.Holiday{ID: 4242, Title: "x", Date: Date(2026, time.July, 1)})
		Expect(holidays.IsNotFound(err)).To(BeTrue())

		Expect(holidays.IsNotFound(store.Delete(ctx, 4242))).To(BeTrue())
	})

	It("rejects invalid holidays", func() {
		_, err := store.Create(ctx, holidays.Holiday{Date: Date(2026, time.July, 1)})
		Expect(err).To(MatchError(holidays.ErrInvalidHoliday))

		_, err = store.Create(ctx, holidays.Holiday{Title: "No date"})
		Expect(err).To(MatchError(holidays.ErrInvalidHoliday))
	})

	It("stores dates in UTC", func() {
		zone := time.FixedZone("UTC+3", 3*60*60)
		h := create("Late", time.Date(2027, time.January, 1, 1, 0, 0, 0, zone))

		got, err := store.Get(ctx, h.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(got.Date.Location()).To(Equal(time.UTC))

		// 01:00 at UTC+3 is still 2026 in UTC.
		list, err := store.List(ctx, 2026)
		Expect(err).NotTo(HaveOccurred())
		Expect(list).To(HaveLen(1))
	})
}
