package booking

import (
	"context"
	"sort"
	"sync"

	"github.com/sudo-init-do/talentbook/internal/apperr"
	"github.com/sudo-init-do/talentbook/internal/paging"
)

type Filter struct {
	VendorID string
	Status   Status
	Page     paging.Page
}

func (f Filter) matches(b *Booking) bool {
	if f.VendorID != "" && b.VendorID != f.VendorID {
		return false
	}
	return f.Status == "" || b.Status == f.Status
}

type Store interface {
	Create(ctx context.Context, b *Booking) error
	Get(ctx context.Context, id string) (*Booking, error)
	Update(ctx context.Context, b *Booking) error
	List(ctx context.Context, f Filter) ([]Booking, int, error)
	CountByStatus(ctx context.Context) (map[Status]int, error)
}

type MemoryStore struct {
	mu       sync.RWMutex
	bookings map[string]Booking
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{bookings: make(map[string]Booking)}
}

func cloneBooking(b Booking) Booking {
	if b.GuestsCount != nil {
		n := *b.GuestsCount
		b.GuestsCount = &n
	}
	return b
}

func (s *MemoryStore) Create(_ context.Context, b *Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bookings[b.ID]; ok {
		return apperr.ErrConflict
	}
	s.bookings[b.ID] = cloneBooking(*b)
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bookings[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	out := cloneBooking(b)
	return &out, nil
}

func (s *MemoryStore) Update(_ context.Context, b *Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bookings[b.ID]; !ok {
		return apperr.ErrNotFound
	}
	s.bookings[b.ID] = cloneBooking(*b)
	return nil
}

func (s *MemoryStore) List(_ context.Context, f Filter) ([]Booking, int, error) {
	s.mu.RLock()
	var matched []Booking
	for _, b := range s.bookings {
		if f.matches(&b) {
			matched = append(matched, cloneBooking(b))
		}
	}
	s.mu.RUnlock()
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	start, end := f.Page.Window(len(matched))
	return matched[start:end], len(matched), nil
}

func (s *MemoryStore) CountByStatus(_ context.Context) (map[Status]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[Status]int)
	for _, b := range s.bookings {
		out[b.Status]++
	}
	return out, nil
}
