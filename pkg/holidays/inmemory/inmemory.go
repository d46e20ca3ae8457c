// Package inmemory provides a map-backed holidays.Store.
package inmemory

import (
	"context"
	"sort"
	"sync"

	"github.com/papercomputeco/trickle/pkg/holidays"
)

// Store implements holidays.Store using an in-memory map.
type Store struct {
	mu     sync.RWMutex
	nextID int64
	items  map[int64]holidays.Holiday
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		nextID: 1,
		items:  make(map[int64]holidays.Holiday),
	}
}

func (s *Store) List(_ context.Context, year int) ([]holidays.Holiday, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]holidays.Holiday, 0, len(s.items))
	for _, h := range s.items {
		if year == 0 || h.InYear(year) {
			out = append(out, h)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Date.Equal(out[j].Date) {
			return out[i].ID < out[j].ID
		}
		return out[i].Date.Before(out[j].Date)
	})
	return out, nil
}

func (s *Store) Get(_ context.Context, id int64) (*holidays.Holiday, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	h, ok := s.items[id]
	if !ok {
		return nil, holidays.NotFoundError{ID: id}
	}
	return &h, nil
}

func (s *Store) Create(_ context.Context, h holidays.Holiday) (*holidays.Holiday, error) {
	if err := h.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	h.ID = s.nextID
	h.Date = h.Date.UTC()
	s.nextID++
	s.items[h.ID] = h
	return &h, nil
}

func (s *Store) Update(_ context.Context, h holidays.Holiday) (*holidays.Holiday, error) {
	if err := h.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[h.ID]; !ok {
		return nil, holidays.NotFoundError{ID: h.ID}
	}
	h.Date = h.Date.UTC()
	s.items[h.ID] = h
	return &h, nil
}

func (s *Store) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		return holidays.NotFoundError{ID: id}
	}
	delete(s.items, id)
	return nil
}

func (s *Store) Close() error {
	return nil
}
