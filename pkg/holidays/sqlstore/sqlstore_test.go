package sqlstore_test

import (
	"context"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/trickle/pkg/holidays"
	"github.com/papercomputeco/trickle/pkg/holidays/holidaystest"
	"github.com/papercomputeco/trickle/pkg/holidays/sqlstore"
)

var _ holidays.Store = (*sqlstore.Store)(nil)

var _ = Describe("SQLite Store", func() {
	Context("in memory", func() {
		holidaystest.StoreSpecs(func() holidays.Store {
			s, err := sqlstore.NewSQLite(context.Background(), ":memory:", nil)
			Expect(err).NotTo(HaveOccurred())
			return s
		})
	})

	It("persists across reopen", func() {
		ctx := context.Background()
		path := filepath.Join(GinkgoT().TempDir(), "holidays.db")

		s, err := sqlstore.NewSQLite(ctx, path, nil)
		Expect(err).NotTo(HaveOccurred())
		created, err := s.Create(ctx, holidays.Holiday{
			Title: "Midsummer",
			Date:  time.Date(2026, time.June, 24, 12, 30, 15, 999, time.UTC),
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(s.Close()).To(Succeed())

		s, err = sqlstore.NewSQLite(ctx, path, nil)
		Expect(err).NotTo(HaveOccurred())
		defer s.Close()

		got, err := s.Get(ctx, created.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(got.Title).To(Equal("Midsummer"))
		Expect(got.Date).To(Equal(time.Date(2026, time.June, 24, 12, 30, 15, 0, time.UTC)))
	})
})

var _ = Describe("PostgreSQL Store", func() {
	// Set TRICKLE_TEST_POSTGRES_DSN to run against a live database.
	dsn := os.Getenv("TRICKLE_TEST_POSTGRES_DSN")

	BeforeEach(func() {
		if dsn == "" {
			Skip("TRICKLE_TEST_POSTGRES_DSN not set")
		}
	})

	holidaystest.StoreSpecs(func() holidays.Store {
		ctx := context.Background()
		s, err := sqlstore.NewPostgres(ctx, dsn, nil)
		Expect(err).NotTo(HaveOccurred())

		// Start every spec from an empty table.
		for _, h := range must(s.List(ctx, 0)) {
			Expect(s.Delete(ctx, h.ID)).To(Succeed())
		}
		return s
	})
})

var _ = Describe("NewPostgres", func() {
	It("fails fast on an unreachable server", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_, err := sqlstore.NewPostgres(ctx, "postgres://nobody@127.0.0.1:1/none?sslmode=disable", nil)
		Expect(err).To(MatchError(ContainSubstring("failed to ping database")))
	})
})

func must[T any](v T, err error) T {
	Expect(err).NotTo(HaveOccurred())
	return v
}
