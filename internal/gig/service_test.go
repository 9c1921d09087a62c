package gig

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/sudo-init-do/talentbook/internal/apperr"
	"github.com/sudo-init-do/talentbook/internal/auth"
	"github.com/sudo-init-do/talentbook/internal/templates"
	"github.com/sudo-init-do/talentbook/internal/vendor"
)

var admin = auth.Actor{UserID: "admin-1", Role: auth.RoleAdmin}

// countingStore records how many updates reach the store.
type countingStore struct {
	*MemoryStore
	updates int
	creates int
}

func (s *countingStore) Update(ctx context.Context, g *Gig) error {
	s.updates++
	return s.MemoryStore.Update(ctx, g)
}

func (s *countingStore) Create(ctx context.Context, g *Gig) error {
	s.creates++
	return s.MemoryStore.Create(ctx, g)
}

type fixture struct {
	svc    *Service
	store  *countingStore
	owner  auth.Actor
	vendor *vendor.Vendor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	vendors := vendor.NewService(vendor.NewMemoryStore())
	created, err := vendors.Create(ctx, admin, vendor.Profile{Name: "DJ Noam", City: "Tel Aviv"})
	if err != nil {
		t.Fatalf("create vendor: %v", err)
	}
	tmpl, err := templates.Load("")
	if err != nil {
		t.Fatalf("load templates: %v", err)
	}
	store := &countingStore{MemoryStore: NewMemoryStore()}
	return &fixture{
		svc:    NewService(store, vendors, tmpl, "https://talentbook.example"),
		store:  store,
		owner:  auth.Actor{Role: auth.RoleVendor, VendorID: created.Vendor.ID},
		vendor: created.Vendor,
	}
}

func completeDraft() Draft {
	return Draft{
		Title:            "Wedding DJ",
		CategoryID:       "music",
		ShortDescription: "Four hour set",
		Languages:        []string{"he", "en"},
		Photos:           []string{"https://cdn.example/1.jpg"},
		PriceType:        PriceFixed,
		Currency:         "ILS",
		PriceAmount:      decimal.NewNullDecimal(decimal.NewFromInt(2500)),
		LocationType:     LocationRadius,
		BaseCity:         "Tel Aviv",
		RadiusKm:         40,
		AgeLimit:         AgeAll,
		EventTypes:       []string{"wedding"},
		DurationMinutes:  240,
		MinGuests:        50,
		MaxGuests:        400,
		BookingMethod:    BookingRequestSlot,
		MinLeadTimeHours: 72,
	}
}

func save(d Draft, step int) func(*Update) error {
	return func(u *Update) error {
		u.Draft = d.Clone()
		u.CurrentStep = step
		return nil
	}
}

func (f *fixture) draft(t *testing.T) *Gig {
	t.Helper()
	g, err := f.svc.CreateDraft(context.Background(), f.owner, CreateRequest{})
	if err != nil {
		t.Fatalf("create draft: %v", err)
	}
	return g
}

func (f *fixture) published(t *testing.T, mode PublishMode) *Gig {
	t.Helper()
	ctx := context.Background()
	g := f.draft(t)
	if _, err := f.svc.SaveStep(ctx, f.owner, g.ID, save(completeDraft(), LastStep)); err != nil {
		t.Fatalf("save: %v", err)
	}
	out, _, err := f.svc.Publish(ctx, f.owner, g.ID, mode)
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	return out
}

func TestCreateDraftDefaults(t *testing.T) {
	f := newFixture(t)
	g := f.draft(t)
	if g.ID == "" || g.ShareSlug == "" {
		t.Fatalf("draft missing identity: %+v", g)
	}
	if g.Status != StatusDraft || g.ModerationStatus != ModerationPending || g.CurrentStep != 0 {
		t.Fatalf("unexpected draft state: %+v", g)
	}
	if g.VendorID != f.vendor.ID {
		t.Fatalf("vendor id = %q, want %q", g.VendorID, f.vendor.ID)
	}
}

func TestCreateDraftFromTemplate(t *testing.T) {
	f := newFixture(t)
	g, err := f.svc.CreateDraft(context.Background(), f.owner, CreateRequest{TemplateID: "dj-party", CategoryID: "djs"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if g.Title != "DJ set for your party" || g.DurationMinutes != 240 || g.BookingMethod != BookingRequestSlot {
		t.Fatalf("template not applied: %+v", g.Draft)
	}
	if g.CategoryID != "djs" {
		t.Fatalf("explicit category should win over template, got %q", g.CategoryID)
	}

	_, err = f.svc.CreateDraft(context.Background(), f.owner, CreateRequest{TemplateID: "missing"})
	if ve, ok := apperr.AsValidation(err); !ok || ve.Fields["template_id"] == "" {
		t.Fatalf("expected template_id validation error, got %v", err)
	}
}

func TestCreateDraftRejectsOtherVendor(t *testing.T) {
	f := newFixture(t)
	stranger := auth.Actor{Role: auth.RoleVendor, VendorID: "someone-else"}
	_, err := f.svc.CreateDraft(context.Background(), stranger, CreateRequest{VendorID: f.vendor.ID})
	if !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if f.store.creates != 0 {
		t.Fatalf("store was called %d times", f.store.creates)
	}
}

func TestCreateDraftForGuestOwner(t *testing.T) {
	f := newFixture(t)
	guest := auth.Actor{UserID: "user-9", Role: auth.RoleUser}
	g, err := f.svc.CreateDraft(context.Background(), guest, CreateRequest{})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if g.OwnerUserID != "user-9" || g.VendorID != "" {
		t.Fatalf("unexpected owner fields: %+v", g)
	}
	if _, err := f.svc.Get(context.Background(), guest, g.ID); err != nil {
		t.Fatalf("guest owner cannot load own draft: %v", err)
	}
}

func TestCreateDraftRetriesSlugCollision(t *testing.T) {
	f := newFixture(t)
	slugs := []string{"taken", "taken", "fresh"}
	f.svc.newSlug = func() string {
		s := slugs[0]
		slugs = slugs[1:]
		return s
	}
	first := f.draft(t)
	if first.ShareSlug != "taken" {
		t.Fatalf("first slug = %q", first.ShareSlug)
	}
	second := f.draft(t)
	if second.ShareSlug != "fresh" {
		t.Fatalf("second slug = %q, want fresh", second.ShareSlug)
	}
}

func TestAdvanceEveryStepPersistsSnapshot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	g := f.draft(t)
	d := completeDraft()

	for i := 0; i < LastStep; i++ {
		saved, err := f.svc.SaveStep(ctx, f.owner, g.ID, save(d, i+1))
		if err != nil {
			t.Fatalf("step %d (%s): %v", i, Steps[i], err)
		}
		if saved.CurrentStep != i+1 {
			t.Fatalf("current_step = %d, want %d", saved.CurrentStep, i+1)
		}
		got, err := f.svc.Get(ctx, f.owner, g.ID)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if !reflect.DeepEqual(got.Draft, d) {
			t.Fatalf("persisted draft differs after step %d:\n got %+v\nwant %+v", i, got.Draft, d)
		}
	}
}

func TestAdvanceRejectsMissingRequiredFields(t *testing.T) {
	cases := []struct {
		name  string
		step  int
		edit  func(*Draft)
		field string
	}{
		{"title", 1, func(d *Draft) { d.Title = "" }, "title"},
		{"category", 1, func(d *Draft) { d.CategoryID = "" }, "category_id"},
		{"price missing", 4, func(d *Draft) { d.PriceAmount = decimal.NullDecimal{} }, "price_amount"},
		{"price zero", 4, func(d *Draft) { d.PriceAmount = decimal.NewNullDecimal(decimal.Zero) }, "price_amount"},
		{"price sub-cent", 4, func(d *Draft) { d.PriceAmount = decimal.NewNullDecimal(decimal.RequireFromString("0.001")) }, "price_amount"},
		{"price too large", 4, func(d *Draft) { d.PriceAmount = decimal.NewNullDecimal(decimal.New(1, 10)) }, "price_amount"},
		{"guest bounds", 7, func(d *Draft) { d.MinGuests, d.MaxGuests = 100, 10 }, "max_guests"},
		{"age limit", 6, func(d *Draft) { d.AgeLimit = "adults" }, "age_limit"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			g := f.draft(t)
			d := completeDraft()
			if _, err := f.svc.SaveStep(ctx, f.owner, g.ID, save(d, tc.step)); err != nil {
				t.Fatalf("seed save: %v", err)
			}
			before := f.store.updates

			tc.edit(&d)
			_, err := f.svc.SaveStep(ctx, f.owner, g.ID, save(d, tc.step+1))
			ve, ok := apperr.AsValidation(err)
			if !ok || ve.Fields[tc.field] == "" {
				t.Fatalf("expected %s field error, got %v", tc.field, err)
			}
			if f.store.updates != before {
				t.Fatalf("invalid step was persisted")
			}
			got, _ := f.svc.Get(ctx, f.owner, g.ID)
			if got.CurrentStep != tc.step {
				t.Fatalf("current_step = %d, want %d", got.CurrentStep, tc.step)
			}
		})
	}
}

func TestFreeGigSkipsPriceGate(t *testing.T) {
	f := newFixture(t)
	g := f.draft(t)
	d := completeDraft()
	d.IsFree = true
	d.PriceAmount = decimal.NullDecimal{}
	if _, err := f.svc.SaveStep(context.Background(), f.owner, g.ID, save(d, 5)); err != nil {
		t.Fatalf("free gig should pass pricing: %v", err)
	}
}

func TestPricingGateAcceptsStoredPrecision(t *testing.T) {
	for _, v := range []string{"0.01", "450.50", "1800.000", "9999999999.99"} {
		d := completeDraft()
		d.PriceAmount = decimal.NewNullDecimal(decimal.RequireFromString(v))
		if err := ValidateStep(&d, 4); err != nil {
			t.Fatalf("price %s rejected: %v", v, err)
		}
	}
}

func TestSaveStepClampsPointer(t *testing.T) {
	f := newFixture(t)
	g := f.draft(t)
	saved, err := f.svc.SaveStep(context.Background(), f.owner, g.ID, save(completeDraft(), 99))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if saved.CurrentStep != LastStep {
		t.Fatalf("current_step = %d, want %d", saved.CurrentStep, LastStep)
	}
	_, err = f.svc.SaveStep(context.Background(), f.owner, g.ID, save(completeDraft(), -1))
	if _, ok := apperr.AsValidation(err); !ok {
		t.Fatalf("expected validation error for negative step, got %v", err)
	}
}

func TestPublishCatalogStartsPendingModeration(t *testing.T) {
	f := newFixture(t)
	g := f.published(t, ModeCatalog)
	if g.Status != StatusPublished || g.ModerationStatus != ModerationPending {
		t.Fatalf("status=%s moderation=%s", g.Status, g.ModerationStatus)
	}
	if g.PublishedAt == nil {
		t.Fatalf("published_at not set")
	}
	items, _, _ := f.svc.Catalog(context.Background(), CatalogFilter{})
	if len(items) != 0 {
		t.Fatalf("unapproved gig listed in catalog")
	}
}

func TestPublishRevalidatesAllGates(t *testing.T) {
	f := newFixture(t)
	g := f.draft(t)
	_, _, err := f.svc.Publish(context.Background(), f.owner, g.ID, ModeCatalog)
	if _, ok := apperr.AsValidation(err); !ok {
		t.Fatalf("expected validation error, got %v", err)
	}
	got, _ := f.svc.Find(context.Background(), g.ID)
	if got.Status != StatusDraft {
		t.Fatalf("failed publish changed status to %s", got.Status)
	}
}

func TestPublishRequiresLastStep(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	g := f.draft(t)
	d := Draft{Title: "Quick gig", CategoryID: "music", IsFree: true}
	if _, err := f.svc.SaveStep(ctx, f.owner, g.ID, save(d, 2)); err != nil {
		t.Fatalf("save: %v", err)
	}
	for _, mode := range []PublishMode{ModeCatalog, ModeUnlisted} {
		if _, _, err := f.svc.Publish(ctx, f.owner, g.ID, mode); !errors.Is(err, apperr.ErrInvalidTransition) {
			t.Fatalf("publish %s from step 2: got %v, want ErrInvalidTransition", mode, err)
		}
	}
	got, _ := f.svc.Find(ctx, g.ID)
	if got.Status != StatusDraft || got.CurrentStep != 2 {
		t.Fatalf("rejected publish changed the gig: status=%s step=%d", got.Status, got.CurrentStep)
	}

	if _, err := f.svc.SaveStep(ctx, f.owner, g.ID, save(d, LastStep)); err != nil {
		t.Fatalf("save last step: %v", err)
	}
	if _, _, err := f.svc.Publish(ctx, f.owner, g.ID, ModeCatalog); err != nil {
		t.Fatalf("publish from last step: %v", err)
	}
}

func TestLiveGigSwitchesModeFromAnyStep(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	g := f.published(t, ModeCatalog)
	if _, err := f.svc.SaveStep(ctx, f.owner, g.ID, save(completeDraft(), 2)); err != nil {
		t.Fatalf("edit live gig: %v", err)
	}
	out, _, err := f.svc.Publish(ctx, f.owner, g.ID, ModeUnlisted)
	if err != nil {
		t.Fatalf("switch to unlisted: %v", err)
	}
	if out.Status != StatusUnlisted {
		t.Fatalf("status = %s, want unlisted", out.Status)
	}
}

func TestUnlistIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	g := f.published(t, ModeUnlisted)

	_, first, err := f.svc.Publish(ctx, f.owner, g.ID, ModeUnlisted)
	if err != nil {
		t.Fatalf("unlist: %v", err)
	}
	again, second, err := f.svc.Publish(ctx, f.owner, g.ID, ModeUnlisted)
	if err != nil {
		t.Fatalf("unlist again: %v", err)
	}
	if first != second || first != "https://talentbook.example/g/"+g.ShareSlug {
		t.Fatalf("links differ: %q vs %q", first, second)
	}
	if again.ShareSlug != g.ShareSlug || again.Status != StatusUnlisted {
		t.Fatalf("unexpected gig after repeat: %+v", again)
	}
}

func TestUnlistedNeverInCatalog(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	g := f.published(t, ModeUnlisted)
	if _, err := f.svc.SetModeration(ctx, admin, g.ID, ModerationApproved); err != nil {
		t.Fatalf("approve: %v", err)
	}
	items, _, _ := f.svc.Catalog(ctx, CatalogFilter{})
	if len(items) != 0 {
		t.Fatalf("unlisted gig appeared in catalog")
	}

	if _, _, err := f.svc.Publish(ctx, f.owner, g.ID, ModeCatalog); err != nil {
		t.Fatalf("switch to catalog: %v", err)
	}
	items, _, _ = f.svc.Catalog(ctx, CatalogFilter{})
	if len(items) != 1 || items[0].ID != g.ID {
		t.Fatalf("approved published gig missing from catalog: %+v", items)
	}
}

func TestModerationResetKeepsStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	g := f.published(t, ModeCatalog)

	if _, err := f.svc.SetModeration(ctx, admin, g.ID, ModerationRejected); err != nil {
		t.Fatalf("reject: %v", err)
	}
	reset, err := f.svc.SetModeration(ctx, admin, g.ID, ModerationPending)
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if reset.ModerationStatus != ModerationPending || reset.Status != StatusPublished {
		t.Fatalf("status=%s moderation=%s", reset.Status, reset.ModerationStatus)
	}
	if _, err := f.svc.SetModeration(ctx, f.owner, g.ID, ModerationApproved); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("non-admin moderation: got %v", err)
	}
}

func TestModerationRejectsDrafts(t *testing.T) {
	f := newFixture(t)
	g := f.draft(t)
	_, err := f.svc.SetModeration(context.Background(), admin, g.ID, ModerationApproved)
	if !errors.Is(err, apperr.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestArchiveIsTerminal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	g := f.published(t, ModeCatalog)

	if _, err := f.svc.Archive(ctx, f.owner, g.ID); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("owner archive: got %v", err)
	}
	if _, err := f.svc.Archive(ctx, admin, g.ID); err != nil {
		t.Fatalf("archive: %v", err)
	}
	if _, _, err := f.svc.Publish(ctx, f.owner, g.ID, ModeCatalog); !errors.Is(err, apperr.ErrInvalidTransition) {
		t.Fatalf("publish archived: got %v", err)
	}
	if _, err := f.svc.SaveStep(ctx, f.owner, g.ID, save(completeDraft(), 3)); !errors.Is(err, apperr.ErrInvalidTransition) {
		t.Fatalf("edit archived: got %v", err)
	}
	if _, err := f.svc.Archive(ctx, admin, g.ID); !errors.Is(err, apperr.ErrInvalidTransition) {
		t.Fatalf("archive twice: got %v", err)
	}
	draft := f.draft(t)
	if _, err := f.svc.Archive(ctx, admin, draft.ID); !errors.Is(err, apperr.ErrInvalidTransition) {
		t.Fatalf("archive draft: got %v", err)
	}
}

func TestGetBySlugCountsViewsAndHidesDrafts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	draft := f.draft(t)
	if _, err := f.svc.GetBySlug(ctx, draft.ShareSlug); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("draft served by slug: %v", err)
	}

	g := f.published(t, ModeUnlisted)
	first, err := f.svc.GetBySlug(ctx, g.ShareSlug)
	if err != nil {
		t.Fatalf("slug fetch: %v", err)
	}
	second, _ := f.svc.GetBySlug(ctx, g.ShareSlug)
	if first.ViewsCount != 1 || second.ViewsCount != 2 {
		t.Fatalf("views = %d, %d; want 1, 2", first.ViewsCount, second.ViewsCount)
	}
	if first.Vendor == nil || first.Vendor.Name != "DJ Noam" {
		t.Fatalf("vendor summary missing: %+v", first.Vendor)
	}
}

func TestOtherVendorCannotEditOrSeeDraft(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	g := f.draft(t)
	stranger := auth.Actor{Role: auth.RoleVendor, VendorID: "someone-else"}
	if _, err := f.svc.SaveStep(ctx, stranger, g.ID, save(completeDraft(), 2)); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("stranger save: got %v", err)
	}
	if _, err := f.svc.Get(ctx, stranger, g.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("stranger get draft: got %v", err)
	}
}
