// Package wizard holds the client-side state of one gig builder session.
package wizard

import (
	"context"
	"errors"
	"sync"

	"github.com/sudo-init-do/talentbook/internal/apperr"
	"github.com/sudo-init-do/talentbook/internal/gig"
)

// ErrNoDraft is returned by operations that need the draft to exist.
var ErrNoDraft = errors.New("draft has not been created yet")

// Backend is the persistence the session drives.
type Backend interface {
	CreateDraft(ctx context.Context, templateID, categoryID string) (*gig.Gig, error)
	SaveStep(ctx context.Context, id string, d gig.Draft, step int) (*gig.Gig, error)
	Load(ctx context.Context, id string) (*gig.Gig, error)
	Publish(ctx context.Context, id string, mode gig.PublishMode) (*gig.Gig, string, error)
}

// Session owns the in-progress draft. The step pointer only moves after the
// save for that move has settled, and one backend call runs at a time.
type Session struct {
	backend Backend

	mu         sync.Mutex
	templateID string
	draft      gig.Draft
	current    *gig.Gig
	step       int
	inFlight   bool
	fieldErrs  map[string]string
	shareLink  string
}

func New(backend Backend, templateID string) *Session {
	return &Session{backend: backend, templateID: templateID}
}

// Step returns the visible step index.
func (s *Session) Step() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.step
}

// Draft returns a copy of the in-memory draft.
func (s *Session) Draft() gig.Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft.Clone()
}

// Gig returns the last persisted state, or nil before the draft exists.
func (s *Session) Gig() *gig.Gig {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil
	}
	return s.current.Clone()
}

// FieldErrors returns the fields flagged by the last failed advance.
func (s *Session) FieldErrors() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string, len(s.fieldErrs))
	for k, v := range s.fieldErrs {
		out[k] = v
	}
	return out
}

func (s *Session) ShareLink() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shareLink
}

// Edit changes the in-memory draft. Nothing is persisted until Advance.
func (s *Session) Edit(fn func(d *gig.Draft)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.draft)
}

func (s *Session) begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight {
		return apperr.ErrBusy
	}
	s.inFlight = true
	return nil
}

func (s *Session) end() {
	s.mu.Lock()
	s.inFlight = false
	s.mu.Unlock()
}

// Advance validates the current step, creates the draft on the first
// advance, saves the snapshot with the next step and then moves forward.
// On any failure the pointer stays put and the draft is kept in memory.
func (s *Session) Advance(ctx context.Context) error {
	if err := s.begin(); err != nil {
		return err
	}
	defer s.end()

	s.mu.Lock()
	step := s.step
	draft := s.draft.Clone()
	current := s.current
	templateID := s.templateID
	s.mu.Unlock()

	if step >= gig.LastStep {
		return apperr.Invalid("step", "already on the last step, publish instead")
	}
	if err := gig.ValidateStep(&draft, step); err != nil {
		s.setFieldErrors(err)
		return err
	}

	if current == nil {
		created, err := s.backend.CreateDraft(ctx, templateID, draft.CategoryID)
		if err != nil {
			return err
		}
		// The type step only picks the template and category, so the
		// server's pre-filled draft becomes the working copy.
		draft = created.Draft.Clone()
		s.mu.Lock()
		s.current = created
		s.draft = draft.Clone()
		s.mu.Unlock()
		current = created
	}

	saved, err := s.backend.SaveStep(ctx, current.ID, draft, step+1)
	if err != nil {
		s.setFieldErrors(err)
		return err
	}

	s.mu.Lock()
	s.current = saved
	s.step = gig.ClampStep(step + 1)
	s.fieldErrs = nil
	s.mu.Unlock()
	return nil
}

// Back moves to the previous step without saving. Field values are kept.
func (s *Session) Back() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight {
		return apperr.ErrBusy
	}
	if s.step > 0 {
		s.step--
	}
	s.fieldErrs = nil
	return nil
}

// Publish lists the gig in the catalog or makes it link-only. For unlisted
// publication the share link is returned and remembered.
func (s *Session) Publish(ctx context.Context, mode gig.PublishMode) (string, error) {
	if err := s.begin(); err != nil {
		return "", err
	}
	defer s.end()

	s.mu.Lock()
	current := s.current
	step := s.step
	s.mu.Unlock()
	if current == nil {
		return "", ErrNoDraft
	}
	if step != gig.LastStep {
		return "", apperr.Invalid("step", "advance to the publish step first")
	}

	published, link, err := s.backend.Publish(ctx, current.ID, mode)
	if err != nil {
		s.setFieldErrors(err)
		return "", err
	}
	s.mu.Lock()
	s.current = published
	if link != "" {
		s.shareLink = link
	}
	s.mu.Unlock()
	return link, nil
}

// Load replaces the session state with a persisted gig and resumes at its
// saved step.
func (s *Session) Load(ctx context.Context, id string) error {
	if err := s.begin(); err != nil {
		return err
	}
	defer s.end()

	g, err := s.backend.Load(ctx, id)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.current = g
	s.draft = g.Draft.Clone()
	s.templateID = g.TemplateID
	s.step = gig.ClampStep(g.CurrentStep)
	s.fieldErrs = nil
	s.shareLink = ""
	s.mu.Unlock()
	return nil
}

// Reset discards everything and starts a fresh session.
func (s *Session) Reset(templateID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight {
		return apperr.ErrBusy
	}
	s.templateID = templateID
	s.draft = gig.Draft{}
	s.current = nil
	s.step = 0
	s.fieldErrs = nil
	s.shareLink = ""
	return nil
}

func (s *Session) setFieldErrors(err error) {
	ve, ok := apperr.AsValidation(err)
	if !ok {
		return
	}
	s.mu.Lock()
	s.fieldErrs = ve.Fields
	s.mu.Unlock()
}
