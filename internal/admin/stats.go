package admin

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sudo-init-do/talentbook/internal/apperr"
	"github.com/sudo-init-do/talentbook/internal/auth"
	"github.com/sudo-init-do/talentbook/internal/booking"
	"github.com/sudo-init-do/talentbook/internal/gig"
	mware "github.com/sudo-init-do/talentbook/internal/middleware"
	"github.com/sudo-init-do/talentbook/internal/paging"
	"github.com/sudo-init-do/talentbook/internal/vendor"
	"github.com/sudo-init-do/talentbook/pkg/errormapper"
)

type GigCounter interface {
	CountByStatus(ctx context.Context) (map[gig.Status]int, error)
	AdminList(ctx context.Context, actor auth.Actor, f gig.Filter) ([]gig.Gig, int, error)
}

type BookingCounter interface {
	CountByStatus(ctx context.Context) (map[booking.Status]int, error)
}

type VendorLister interface {
	List(ctx context.Context, f vendor.ListFilter) ([]vendor.Vendor, int, error)
}

type PendingLister interface {
	List(ctx context.Context, actor auth.Actor, f vendor.PendingFilter) ([]vendor.PendingVendor, error)
}

// Stats is the admin dashboard summary.
type Stats struct {
	Gigs             map[gig.Status]int           `json:"gigs"`
	GigsInModeration int                          `json:"gigs_in_moderation"`
	Bookings         map[booking.Status]int       `json:"bookings"`
	VendorsActive    int                          `json:"vendors_active"`
	VendorsArchived  int                          `json:"vendors_archived"`
	PendingVendors   map[vendor.PendingStatus]int `json:"pending_vendors"`
}

type Handler struct {
	gigs     GigCounter
	bookings BookingCounter
	vendors  VendorLister
	pending  PendingLister
}

func NewHandler(gigs GigCounter, bookings BookingCounter, vendors VendorLister, pending PendingLister) *Handler {
	return &Handler{gigs: gigs, bookings: bookings, vendors: vendors, pending: pending}
}

// Collect gathers the dashboard counters.
func (h *Handler) Collect(ctx context.Context, actor auth.Actor) (*Stats, error) {
	if !actor.IsAdmin() {
		return nil, apperr.ErrForbidden
	}
	var (
		st  Stats
		err error
	)
	if st.Gigs, err = h.gigs.CountByStatus(ctx); err != nil {
		return nil, err
	}
	if _, st.GigsInModeration, err = h.gigs.AdminList(ctx, actor, gig.Filter{
		Statuses:   []gig.Status{gig.StatusPublished, gig.StatusUnlisted},
		Moderation: gig.ModerationPending,
		Page:       paging.Page{Limit: 1},
	}); err != nil {
		return nil, err
	}
	if st.Bookings, err = h.bookings.CountByStatus(ctx); err != nil {
		return nil, err
	}
	if _, st.VendorsActive, err = h.vendors.List(ctx, vendor.ListFilter{Page: paging.Page{Limit: 1}}); err != nil {
		return nil, err
	}
	if _, st.VendorsArchived, err = h.vendors.List(ctx, vendor.ListFilter{Archived: true, Page: paging.Page{Limit: 1}}); err != nil {
		return nil, err
	}
	pending, err := h.pending.List(ctx, actor, vendor.PendingFilter{})
	if err != nil {
		return nil, err
	}
	st.PendingVendors = make(map[vendor.PendingStatus]int)
	for _, p := range pending {
		st.PendingVendors[p.Status]++
	}
	return &st, nil
}

// GET /admin/stats
func (h *Handler) Stats(c echo.Context) error {
	st, err := h.Collect(c.Request().Context(), mware.CurrentActor(c))
	if err != nil {
		return errormapper.Respond(c, err)
	}
	return c.JSON(http.StatusOK, st)
}
