package main

import (
	"context"
	"strings"
	"testing"

	"github.com/sudo-init-do/talentbook/internal/auth"
	"github.com/sudo-init-do/talentbook/internal/gig"
	"github.com/sudo-init-do/talentbook/internal/templates"
	"github.com/sudo-init-do/talentbook/internal/vendor"
)

func newGigService(t *testing.T) (*gig.Service, string) {
	t.Helper()
	ctx := context.Background()
	vendors := vendor.NewService(vendor.NewMemoryStore())
	created, err := vendors.Create(ctx, auth.Actor{UserID: "ops", Role: auth.RoleAdmin}, vendor.Profile{Name: "DJ Noam"})
	if err != nil {
		t.Fatalf("create vendor: %v", err)
	}
	catalog, err := templates.Load("")
	if err != nil {
		t.Fatalf("templates: %v", err)
	}
	return gig.NewService(gig.NewMemoryStore(), vendors, catalog, "https://talentbook.example"), created.Vendor.ID
}

func TestLoadSeeds(t *testing.T) {
	seeds, err := loadSeeds([]byte("gigs:\n  - vendor_id: v1\n    template_id: dj-party\n    price: \"100\"\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(seeds) != 1 || seeds[0].Mode != gig.ModeCatalog {
		t.Fatalf("unexpected seeds: %+v", seeds)
	}

	bad := []string{
		"gigs:\n  - template_id: dj-party\n",
		"gigs:\n  - vendor_id: v1\n    mode: hidden\n",
		"gigs:\n  - vendor_id: v1\n    price: cheap\n",
		"gigs: [",
	}
	for _, in := range bad {
		if _, err := loadSeeds([]byte(in)); err == nil {
			t.Fatalf("expected error for %q", in)
		}
	}
}

func TestSeedPublishesThroughBuilder(t *testing.T) {
	gigs, vendorID := newGigService(t)
	ctx := context.Background()

	g, link, err := seed(ctx, gigs, seedGig{VendorID: vendorID, TemplateID: "dj-party", Title: "Wedding DJ", Price: "3200", City: "Tel Aviv", Mode: gig.ModeCatalog})
	if err != nil {
		t.Fatalf("seed catalog gig: %v", err)
	}
	if g.Status != gig.StatusPublished || g.Title != "Wedding DJ" || link != "" {
		t.Fatalf("unexpected gig %+v link %q", g, link)
	}
	if g.CurrentStep != gig.LastStep || g.ModerationStatus != gig.ModerationPending {
		t.Fatalf("step %d moderation %s", g.CurrentStep, g.ModerationStatus)
	}

	g, link, err = seed(ctx, gigs, seedGig{VendorID: vendorID, TemplateID: "magician-kids", Price: "650", Mode: gig.ModeUnlisted})
	if err != nil {
		t.Fatalf("seed unlisted gig: %v", err)
	}
	if g.Status != gig.StatusUnlisted || !strings.HasSuffix(link, "/g/"+g.ShareSlug) {
		t.Fatalf("unexpected unlisted gig %s link %q", g.Status, link)
	}
}

func TestSeedReportsMissingPrice(t *testing.T) {
	gigs, vendorID := newGigService(t)
	_, _, err := seed(context.Background(), gigs, seedGig{VendorID: vendorID, TemplateID: "dj-party", Mode: gig.ModeCatalog})
	if err == nil || !strings.Contains(err.Error(), "price_amount") {
		t.Fatalf("expected price_amount error, got %v", err)
	}
}
