package gig

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/sudo-init-do/talentbook/internal/apperr"
	"github.com/sudo-init-do/talentbook/internal/paging"
)

// Filter selects gigs for a listing. Empty fields do not filter.
type Filter struct {
	VendorID   string
	Statuses   []Status
	Moderation ModerationStatus
	CategoryID string
	City       string
	Query      string
	Page       paging.Page
}

func (f Filter) matches(g *Gig) bool {
	if f.VendorID != "" && g.VendorID != f.VendorID {
		return false
	}
	if len(f.Statuses) > 0 {
		found := false
		for _, s := range f.Statuses {
			if g.Status == s {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.Moderation != "" && g.ModerationStatus != f.Moderation {
		return false
	}
	if f.CategoryID != "" && g.CategoryID != f.CategoryID {
		return false
	}
	if f.City != "" && !strings.EqualFold(g.BaseCity, f.City) {
		return false
	}
	if f.Query != "" {
		q := strings.ToLower(f.Query)
		if !strings.Contains(strings.ToLower(g.Title), q) &&
			!strings.Contains(strings.ToLower(g.ShortDescription), q) {
			return false
		}
	}
	return true
}

// Store persists gigs. Create returns apperr.ErrConflict when the id or
// share slug is already taken.
type Store interface {
	Create(ctx context.Context, g *Gig) error
	Get(ctx context.Context, id string) (*Gig, error)
	GetBySlug(ctx context.Context, slug string) (*Gig, error)
	Update(ctx context.Context, g *Gig) error
	IncrementViews(ctx context.Context, id string) (int, error)
	List(ctx context.Context, f Filter) ([]Gig, int, error)
	CountByStatus(ctx context.Context) (map[Status]int, error)
}

type MemoryStore struct {
	mu     sync.RWMutex
	gigs   map[string]*Gig
	bySlug map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{gigs: make(map[string]*Gig), bySlug: make(map[string]string)}
}

func (s *MemoryStore) Create(_ context.Context, g *Gig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.gigs[g.ID]; ok {
		return apperr.ErrConflict
	}
	if _, ok := s.bySlug[g.ShareSlug]; ok {
		return apperr.ErrConflict
	}
	s.gigs[g.ID] = g.Clone()
	s.bySlug[g.ShareSlug] = g.ID
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*Gig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.gigs[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return g.Clone(), nil
}

func (s *MemoryStore) GetBySlug(ctx context.Context, slug string) (*Gig, error) {
	s.mu.RLock()
	id, ok := s.bySlug[slug]
	s.mu.RUnlock()
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return s.Get(ctx, id)
}

// Update replaces the stored gig. The slug and view counter are owned by
// the store and cannot be changed here.
func (s *MemoryStore) Update(_ context.Context, g *Gig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.gigs[g.ID]
	if !ok {
		return apperr.ErrNotFound
	}
	next := g.Clone()
	next.ShareSlug = cur.ShareSlug
	next.ViewsCount = cur.ViewsCount
	s.gigs[g.ID] = next
	return nil
}

func (s *MemoryStore) IncrementViews(_ context.Context, id string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.gigs[id]
	if !ok {
		return 0, apperr.ErrNotFound
	}
	g.ViewsCount++
	return g.ViewsCount, nil
}

func (s *MemoryStore) List(_ context.Context, f Filter) ([]Gig, int, error) {
	s.mu.RLock()
	var matched []Gig
	for _, g := range s.gigs {
		if f.matches(g) {
			matched = append(matched, *g.Clone())
		}
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].UpdatedAt.After(matched[j].UpdatedAt)
	})
	start, end := f.Page.Window(len(matched))
	return matched[start:end], len(matched), nil
}

func (s *MemoryStore) CountByStatus(_ context.Context) (map[Status]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[Status]int)
	for _, g := range s.gigs {
		out[g.Status]++
	}
	return out, nil
}
