// Package holidays is the calendar CRUD collaborator served next to the chat
// streams: holiday records, the Store they live in, and an HTTP Client for the
// relay's /holidays endpoints.
package holidays

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidHoliday is wrapped by validation failures.
var ErrInvalidHoliday = errors.New("invalid holiday")

// Holiday is one calendar entry.
type Holiday struct {
	ID    int64     `json:"id"`
	Title string    `json:"title"`
	Date  time.Time `json:"date"`
}

// Validate checks the fields a caller must supply.
func (h Holiday) Validate() error {
	if strings.TrimSpace(h.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidHoliday)
	}
	if h.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidHoliday)
	}
	return nil
}

// InYear reports whether the holiday falls in year, in UTC.
func (h Holiday) InYear(year int) bool {
	return h.Date.UTC().Year() == year
}

// YearRange returns the half-open UTC interval covering year.
func YearRange(year int) (time.Time, time.Time) {
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(1, 0, 0)
}

// Store persists holidays.
type Store interface {
	// List returns holidays ordered by date. A zero year lists all of them.
	List(ctx context.Context, year int) ([]Holiday, error)

	// Get returns one holiday or a NotFoundError.
	Get(ctx context.Context, id int64) (*Holiday, error)

	// Create assigns an id and stores h.
	Create(ctx context.Context, h Holiday) (*Holiday, error)

	// Update replaces the title and date of an existing holiday.
	Update(ctx context.Context, h Holiday) (*Holiday, error)

	// Delete removes a holiday. Deleting a missing id is a NotFoundError.
	Delete(ctx context.Context, id int64) error

	Close() error
}

// NotFoundError is returned when a holiday id does not exist.
type NotFoundError struct {
	ID int64
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("holiday not found: %d", e.ID)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf NotFoundError
	return errors.As(err, &nf)
}
