package gig

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sudo-init-do/talentbook/internal/apperr"
	"github.com/sudo-init-do/talentbook/internal/auth"
	"github.com/sudo-init-do/talentbook/internal/logging"
	"github.com/sudo-init-do/talentbook/internal/paging"
	"github.com/sudo-init-do/talentbook/internal/templates"
	"github.com/sudo-init-do/talentbook/internal/vendor"
)

const slugAttempts = 5

// VendorLookup resolves the vendor that owns a gig.
type VendorLookup interface {
	Get(ctx context.Context, id string) (*vendor.Vendor, error)
}

// TemplateLookup resolves starter templates by id.
type TemplateLookup interface {
	Lookup(id string) (templates.Template, bool)
}

// Service drives gigs from draft creation through publication.
type Service struct {
	store     Store
	vendors   VendorLookup
	templates TemplateLookup
	baseURL   string
	now       func() time.Time
	newSlug   func() string
}

func NewService(store Store, vendors VendorLookup, tmpl TemplateLookup, baseURL string) *Service {
	return &Service{
		store:     store,
		vendors:   vendors,
		templates: tmpl,
		baseURL:   baseURL,
		now:       time.Now,
		newSlug:   randomSlug,
	}
}

func randomSlug() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:10]
}

// ShareLink is the link-only URL for a gig slug.
func (s *Service) ShareLink(slug string) string {
	return s.baseURL + "/g/" + slug
}

// CreateRequest is the body of a draft creation call. When both owner ids
// are empty the caller's own vendor, or else user, identity is used.
type CreateRequest struct {
	VendorID    string `json:"vendor_id"`
	OwnerUserID string `json:"owner_user_id"`
	TemplateID  string `json:"template_id"`
	CategoryID  string `json:"category_id"`
}

func canEdit(a auth.Actor, g *Gig) bool {
	if a.IsAdmin() {
		return true
	}
	if g.VendorID != "" {
		return a.CanActForVendor(g.VendorID)
	}
	return a.CanActForOwner(g.OwnerUserID)
}

// CreateDraft creates the empty draft a builder session edits. The gig has
// no identity before this succeeds.
func (s *Service) CreateDraft(ctx context.Context, actor auth.Actor, req CreateRequest) (*Gig, error) {
	if req.VendorID == "" && req.OwnerUserID == "" {
		if actor.VendorID != "" {
			req.VendorID = actor.VendorID
		} else {
			req.OwnerUserID = actor.UserID
		}
	}
	switch {
	case req.VendorID != "":
		if !actor.CanActForVendor(req.VendorID) {
			return nil, apperr.ErrForbidden
		}
		v, err := s.vendors.Get(ctx, req.VendorID)
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.Invalid("vendor_id", "unknown vendor")
		}
		if err != nil {
			return nil, err
		}
		if v.IsArchived {
			return nil, apperr.Invalid("vendor_id", "vendor is archived")
		}
	case req.OwnerUserID != "":
		if !actor.CanActForOwner(req.OwnerUserID) {
			return nil, apperr.ErrForbidden
		}
	default:
		return nil, apperr.Invalid("vendor_id", "a vendor or owner is required")
	}

	now := s.now().UTC()
	g := &Gig{
		ID:               uuid.NewString(),
		VendorID:         req.VendorID,
		OwnerUserID:      req.OwnerUserID,
		TemplateID:       req.TemplateID,
		Status:           StatusDraft,
		ModerationStatus: ModerationPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if req.TemplateID != "" {
		t, ok := s.templates.Lookup(req.TemplateID)
		if !ok {
			return nil, apperr.Invalid("template_id", "unknown template")
		}
		applyTemplate(&g.Draft, t)
	}
	if req.CategoryID != "" {
		g.CategoryID = req.CategoryID
	}

	var err error
	for attempt := 0; attempt < slugAttempts; attempt++ {
		g.ShareSlug = s.newSlug()
		err = s.store.Create(ctx, g)
		if !errors.Is(err, apperr.ErrConflict) {
			break
		}
		slog.WarnContext(ctx, "share slug collision, retrying", slog.Int("attempt", attempt+1))
	}
	if err != nil {
		return nil, fmt.Errorf("create gig draft: %w", err)
	}
	ctx = logging.ContextWithGigID(ctx, g.ID)
	slog.InfoContext(ctx, "gig draft created",
		slog.String("share_slug", g.ShareSlug), slog.String("by", actor.ID()))
	return g, nil
}

func applyTemplate(d *Draft, t templates.Template) {
	d.CategoryID = t.CategoryID
	d.Title = t.Title
	d.ShortDescription = t.ShortDescription
	d.Description = t.Description
	d.PriceType = PriceType(t.PriceType)
	d.Currency = t.Currency
	d.Inclusions = t.Inclusions
	d.LocationType = LocationType(t.LocationType)
	d.RadiusKm = t.RadiusKm
	d.SuitableForKids = t.SuitableForKids
	d.AgeLimit = AgeLimit(t.AgeLimit)
	d.EventTypes = t.EventTypes
	d.DurationMinutes = t.DurationMinutes
	d.BookingMethod = BookingMethod(t.BookingMethod)
	d.MinLeadTimeHours = t.MinLeadTimeHours
}

// Find returns a gig without an access check.
func (s *Service) Find(ctx context.Context, id string) (*Gig, error) {
	return s.store.Get(ctx, id)
}

// Get returns a gig to its owner or an admin. Other callers only see live gigs.
func (s *Service) Get(ctx context.Context, actor auth.Actor, id string) (*Gig, error) {
	g, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canEdit(actor, g) && !g.Status.Live() {
		return nil, apperr.ErrNotFound
	}
	return g, nil
}

// SaveStep applies a step save. decode fills the update, which starts out
// as the stored state so partial bodies keep the fields they omit.
func (s *Service) SaveStep(ctx context.Context, actor auth.Actor, id string, decode func(*Update) error) (*Gig, error) {
	g, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canEdit(actor, g) {
		return nil, apperr.ErrForbidden
	}
	if g.Status == StatusArchived {
		return nil, fmt.Errorf("archived gig is read-only: %w", apperr.ErrInvalidTransition)
	}

	u := Update{Draft: g.Draft.Clone(), CurrentStep: g.CurrentStep}
	if err := decode(&u); err != nil {
		return nil, err
	}
	if u.CurrentStep < 0 {
		return nil, apperr.Invalid("current_step", "must not be negative")
	}
	u.CurrentStep = ClampStep(u.CurrentStep)

	gate := u.CurrentStep
	if g.Status != StatusDraft {
		gate = len(Steps)
	}
	if err := ValidateThrough(&u.Draft, gate); err != nil {
		return nil, err
	}

	g.Draft = u.Draft
	g.CurrentStep = u.CurrentStep
	g.UpdatedAt = s.now().UTC()
	if err := s.store.Update(ctx, g); err != nil {
		return nil, err
	}
	slog.DebugContext(logging.ContextWithGigID(ctx, id), "gig step saved",
		slog.String("step", string(StepAt(g.CurrentStep))))
	return g, nil
}

// Publish moves a gig to published (catalog) or unlisted (link only). The
// returned link is empty for catalog publication. Every step gate is checked
// again first; on any error the stored status is unchanged.
func (s *Service) Publish(ctx context.Context, actor auth.Actor, id string, mode PublishMode) (*Gig, string, error) {
	var target Status
	switch mode {
	case ModeCatalog:
		target = StatusPublished
	case ModeUnlisted:
		target = StatusUnlisted
	default:
		return nil, "", apperr.Invalid("mode", "must be catalog or unlisted")
	}

	g, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if !canEdit(actor, g) {
		return nil, "", apperr.ErrForbidden
	}
	if g.Status == StatusArchived {
		return nil, "", fmt.Errorf("cannot publish an archived gig: %w", apperr.ErrInvalidTransition)
	}
	if err := ValidateThrough(&g.Draft, len(Steps)); err != nil {
		return nil, "", err
	}
	// drafts publish only from the last step; live gigs may switch mode freely
	if g.Status == StatusDraft && g.CurrentStep < LastStep {
		return nil, "", fmt.Errorf("draft is on step %s, not %s: %w",
			StepAt(g.CurrentStep), StepAt(LastStep), apperr.ErrInvalidTransition)
	}

	link := ""
	if target == StatusUnlisted {
		link = s.ShareLink(g.ShareSlug)
	}
	if g.Status == target {
		return g, link, nil
	}

	now := s.now().UTC()
	if g.Status == StatusDraft {
		g.ModerationStatus = ModerationPending
		g.PublishedAt = &now
	}
	from := g.Status
	g.Status = target
	g.CurrentStep = LastStep
	g.UpdatedAt = now
	if err := s.store.Update(ctx, g); err != nil {
		return nil, "", err
	}
	slog.InfoContext(logging.ContextWithGigID(ctx, id), "gig status changed",
		slog.String("from", string(from)), slog.String("to", string(target)), slog.String("by", actor.ID()))
	return g, link, nil
}

// Archive retires a live gig. Archived is terminal.
func (s *Service) Archive(ctx context.Context, actor auth.Actor, id string) (*Gig, error) {
	if !actor.IsAdmin() {
		return nil, apperr.ErrForbidden
	}
	g, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !g.Status.Live() {
		return nil, fmt.Errorf("cannot archive a %s gig: %w", g.Status, apperr.ErrInvalidTransition)
	}
	g.Status = StatusArchived
	g.UpdatedAt = s.now().UTC()
	if err := s.store.Update(ctx, g); err != nil {
		return nil, err
	}
	slog.InfoContext(logging.ContextWithGigID(ctx, id), "gig archived", slog.String("by", actor.ID()))
	return g, nil
}

// SetModeration changes the moderation status only; status is never touched.
func (s *Service) SetModeration(ctx context.Context, actor auth.Actor, id string, m ModerationStatus) (*Gig, error) {
	if !actor.IsAdmin() {
		return nil, apperr.ErrForbidden
	}
	if !m.Valid() {
		return nil, apperr.Invalid("moderation_status", "must be pending, approved or rejected")
	}
	g, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if g.Status == StatusDraft {
		return nil, fmt.Errorf("drafts are not moderated: %w", apperr.ErrInvalidTransition)
	}
	from := g.ModerationStatus
	g.ModerationStatus = m
	g.UpdatedAt = s.now().UTC()
	if err := s.store.Update(ctx, g); err != nil {
		return nil, err
	}
	slog.InfoContext(logging.ContextWithGigID(ctx, id), "gig moderation changed",
		slog.String("from", string(from)), slog.String("to", string(m)), slog.String("by", actor.ID()))
	return g, nil
}

// Public is a live gig with its vendor summary, as served by slug.
type Public struct {
	*Gig
	Vendor *vendor.Summary `json:"vendor,omitempty"`
}

// GetBySlug serves a published or unlisted gig and counts the view.
func (s *Service) GetBySlug(ctx context.Context, slug string) (*Public, error) {
	g, err := s.store.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !g.Status.Live() {
		return nil, apperr.ErrNotFound
	}
	if n, err := s.store.IncrementViews(ctx, g.ID); err != nil {
		slog.WarnContext(logging.ContextWithGigID(ctx, g.ID), "failed to count gig view", slog.Any("error", err))
	} else {
		g.ViewsCount = n
	}
	out := &Public{Gig: g}
	if g.VendorID != "" {
		v, err := s.vendors.Get(ctx, g.VendorID)
		switch {
		case err == nil:
			sum := v.Summary()
			out.Vendor = &sum
		case !errors.Is(err, apperr.ErrNotFound):
			return nil, err
		}
	}
	return out, nil
}

// CatalogFilter narrows the public catalog.
type CatalogFilter struct {
	CategoryID string
	City       string
	Query      string
	Page       paging.Page
}

// Catalog lists published, approved gigs.
func (s *Service) Catalog(ctx context.Context, f CatalogFilter) ([]Gig, int, error) {
	return s.store.List(ctx, Filter{
		Statuses:   []Status{StatusPublished},
		Moderation: ModerationApproved,
		CategoryID: f.CategoryID,
		City:       f.City,
		Query:      f.Query,
		Page:       f.Page.Normalize(),
	})
}

// ListByVendor lists every gig of a vendor, drafts included, for its owner.
func (s *Service) ListByVendor(ctx context.Context, actor auth.Actor, vendorID string, page paging.Page) ([]Gig, int, error) {
	if !actor.CanActForVendor(vendorID) {
		return nil, 0, apperr.ErrForbidden
	}
	return s.store.List(ctx, Filter{VendorID: vendorID, Page: page.Normalize()})
}

// AdminList lists gigs by status and moderation status.
func (s *Service) AdminList(ctx context.Context, actor auth.Actor, f Filter) ([]Gig, int, error) {
	if !actor.IsAdmin() {
		return nil, 0, apperr.ErrForbidden
	}
	for _, st := range f.Statuses {
		if !st.Valid() {
			return nil, 0, apperr.Invalid("status", "unknown status")
		}
	}
	if f.Moderation != "" && !f.Moderation.Valid() {
		return nil, 0, apperr.Invalid("moderation_status", "unknown moderation status")
	}
	f.Page = f.Page.Normalize()
	return s.store.List(ctx, f)
}

// CountByStatus feeds the admin dashboard.
func (s *Service) CountByStatus(ctx context.Context) (map[Status]int, error) {
	return s.store.CountByStatus(ctx)
}
