package holidays_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/trickle/pkg/holidays"
	"github.com/papercomputeco/trickle/pkg/holidays/holidaystest"
	"github.com/papercomputeco/trickle/pkg/holidays/inmemory"
)

// fakeServer answers the /holidays routes from an in-memory store.
func fakeServer(store holidays.Store) *httptest.Server {
	writeJSON := func(w http.ResponseWriter, status int, v any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(v)
	}
	fail := func(w http.ResponseWriter, err error) {
		status := http.StatusInternalServerError
		if holidays.IsNotFound(err) {
			status = http.StatusNotFound
		}
		writeJSON(w, status, holidays.ErrorResponse{Error: err.Error()})
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/holidays", func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		switch r.Method {
		case http.MethodGet:
			year, _ := strconv.Atoi(r.URL.Query().Get("year"))
			list, err := store.List(ctx, year)
			if err != nil {
				fail(w, err)
				return
			}
			writeJSON(w, http.StatusOK, list)
		case http.MethodPost, http.MethodPut:
			var h holidays.Holiday
			_ = json.NewDecoder(r.Body).Decode(&h)
			var (
				out *holidays.Holiday
				err error
				msg = holidays.MessageAdded
			)
			status := http.StatusCreated
			if r.Method == http.MethodPost {
				out, err = store.Create(ctx, h)
			} else {
				out, err = store.Update(ctx, h)
				status, msg = http.StatusOK, holidays.MessageUpdated
			}
			if err != nil {
				fail(w, err)
				return
			}
			writeJSON(w, status, holidays.Response{Holidays: []holidays.Holiday{*out}, Message: msg})
		case http.MethodDelete:
			var req holidays.DeleteRequest
			_ = json.NewDecoder(r.Body).Decode(&req)
			if err := store.Delete(ctx, req.ID); err != nil {
				fail(w, err)
				return
			}
			writeJSON(w, http.StatusOK, holidays.Response{Holidays: []holidays.Holiday{}, Message: holidays.MessageDeleted})
		}
	})
	mux.HandleFunc("/holidays/", func(w http.ResponseWriter, r *http.Request) {
		id, _ := strconv.ParseInt(strings.TrimPrefix(r.URL.Path, "/holidays/"), 10, 64)
		h, err := store.Get(r.Context(), id)
		if err != nil {
			fail(w, err)
			return
		}
		writeJSON(w, http.StatusOK, holidays.Response{Holidays: []holidays.Holiday{*h}})
	})

	return httptest.NewServer(mux)
}

var _ = Describe("Client", func() {
	var (
		ctx    context.Context
		server *httptest.Server
		client *holidays.Client
	)

	BeforeEach(func() {
		ctx = context.Background()
		server = fakeServer(inmemory.NewStore())
		DeferCleanup(server.Close)

		var err error
		client, err = holidays.NewClient(server.URL+"/holidays/", nil)
		Expect(err).NotTo(HaveOccurred())
	})

	It("requires an endpoint", func() {
		_, err := holidays.NewClient("", nil)
		Expect(err).To(HaveOccurred())
	})

	It("creates, fetches, updates and deletes", func() {
		created, err := client.Create(ctx, holidays.Holiday{
			Title: "New Year",
			Date:  holidaystest.Date(2026, time.January, 1),
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(created.ID).NotTo(BeZero())

		list, err := client.Fetch(ctx, 2026)
		Expect(err).NotTo(HaveOccurred())
		Expect(list).To(HaveLen(1))
		Expect(list[0].Title).To(Equal("New Year"))

		created.Title = "Hogmanay"
		updated, err := client.Update(ctx, *created)
		Expect(err).NotTo(HaveOccurred())
		Expect(updated.Title).To(Equal("Hogmanay"))

		got, err := client.Get(ctx, created.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(got.Title).To(Equal("Hogmanay"))

		Expect(client.Delete(ctx, created.ID)).To(Succeed())

		list, err = client.Fetch(ctx, 2026)
		Expect(err).NotTo(HaveOccurred())
		Expect(list).To(BeEmpty())
	})

	It("maps 404 to NotFoundError", func() {
		_, err := client.Get(ctx, 77)
		Expect(err).To(MatchError(holidays.NotFoundError{ID: 77}))

		Expect(holidays.IsNotFound(client.Delete(ctx, 77))).To(BeTrue())
	})

	It("surfaces the server's error message", func() {
		_, err := client.Create(ctx, holidays.Holiday{Title: "No date"})
		Expect(err).To(MatchError(ContainSubstring("status 500")))
		Expect(err).To(MatchError(ContainSubstring("date is required")))
	})
})

var _ = Describe("Holiday", func() {
	It("validates title and date", func() {
		Expect(holidays.Holiday{Title: "x", Date: time.Now()}.Validate()).To(Succeed())
		Expect(holidays.Holiday{Title: "  ", Date: time.Now()}.Validate()).To(MatchError(holidays.ErrInvalidHoliday))
		Expect(holidays.Holiday{Title: "x"}.Validate()).To(MatchError(holidays.ErrInvalidHoliday))
	})

	It("computes the year range in UTC", func() {
		from, to := holidays.YearRange(2026)
		Expect(from).To(Equal(holidaystest.Date(2026, time.January, 1)))
		Expect(to).To(Equal(holidaystest.Date(2027, time.January, 1)))
	})
})
