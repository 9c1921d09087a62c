package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sudo-init-do/talentbook/internal/apperr"
	"github.com/sudo-init-do/talentbook/internal/auth"
	"github.com/sudo-init-do/talentbook/internal/gig"
	"github.com/sudo-init-do/talentbook/internal/logging"
	"github.com/sudo-init-do/talentbook/internal/paging"
	"github.com/sudo-init-do/talentbook/internal/vendor"
)

type GigLookup interface {
	Find(ctx context.Context, id string) (*gig.Gig, error)
}

type VendorLookup interface {
	Get(ctx context.Context, id string) (*vendor.Vendor, error)
}

// Notifier tells a vendor about a new booking request.
type Notifier interface {
	BookingCreated(ctx context.Context, b *Booking, v *vendor.Vendor) error
}

// StatusNotifier is implemented by notifiers that also follow status changes.
type StatusNotifier interface {
	BookingStatusChanged(ctx context.Context, b *Booking)
}

type Service struct {
	store     Store
	gigs      GigLookup
	vendors   VendorLookup
	notifiers []Notifier
	now       func() time.Time
}

func NewService(store Store, gigs GigLookup, vendors VendorLookup, notifiers ...Notifier) *Service {
	return &Service{store: store, gigs: gigs, vendors: vendors, notifiers: notifiers, now: time.Now}
}

func (r *SubmitRequest) validate() error {
	r.ClientName = strings.TrimSpace(r.ClientName)
	r.ClientEmail = strings.TrimSpace(r.ClientEmail)
	r.GigID = strings.TrimSpace(r.GigID)
	r.VendorID = strings.TrimSpace(r.VendorID)

	f := apperr.Fields{}
	if r.ClientName == "" {
		f.Add("client_name", "required")
	}
	if r.ClientEmail == "" {
		f.Add("client_email", "required")
	} else if _, err := mail.ParseAddress(r.ClientEmail); err != nil {
		f.Add("client_email", "invalid email address")
	}
	if r.GigID == "" && r.VendorID == "" {
		f.Add("vendor_id", "required")
	}
	if r.GuestsCount.Raw != "" {
		f.Add("guests_count", "must be a whole number")
	} else if r.GuestsCount.Valid && r.GuestsCount.Value < 0 {
		f.Add("guests_count", "must not be negative")
	}
	return f.Err()
}

// Submit records a new booking request. The form is validated before any
// lookup or write happens. Duplicate submissions are accepted.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (*Booking, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	if req.GigID != "" {
		g, err := s.gigs.Find(ctx, req.GigID)
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.Invalid("gig_id", "unknown gig")
		}
		if err != nil {
			return nil, err
		}
		if !g.Status.Live() {
			return nil, apperr.Invalid("gig_id", "gig is not accepting bookings")
		}
		if req.VendorID == "" {
			req.VendorID = g.VendorID
		}
		if g.VendorID == "" || g.VendorID != req.VendorID {
			return nil, apperr.Invalid("vendor_id", "does not match the gig's vendor")
		}
	}

	v, err := s.vendors.Get(ctx, req.VendorID)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.Invalid("vendor_id", "unknown vendor")
	}
	if err != nil {
		return nil, err
	}
	if v.IsArchived {
		return nil, apperr.Invalid("vendor_id", "vendor is not accepting bookings")
	}

	now := s.now().UTC()
	b := &Booking{
		ID:             uuid.NewString(),
		GigID:          req.GigID,
		VendorID:       req.VendorID,
		ClientName:     req.ClientName,
		ClientEmail:    req.ClientEmail,
		ClientPhone:    strings.TrimSpace(req.ClientPhone),
		ClientWhatsApp: strings.TrimSpace(req.ClientWhatsApp),
		EventType:      req.EventType,
		EventDate:      req.EventDate,
		EventTime:      req.EventTime,
		Location:       req.Location,
		City:           req.City,
		Message:        req.Message,
		BudgetRange:    req.BudgetRange,
		Status:         StatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if req.GuestsCount.Valid {
		n := req.GuestsCount.Value
		b.GuestsCount = &n
	}
	if err := s.store.Create(ctx, b); err != nil {
		return nil, fmt.Errorf("create booking request: %w", err)
	}

	ctx = logging.ContextWithVendorID(ctx, b.VendorID)
	slog.InfoContext(ctx, "booking request received", slog.String("booking_id", b.ID), slog.String("gig_id", b.GigID))
	for _, n := range s.notifiers {
		if err := n.BookingCreated(ctx, b, v); err != nil {
			slog.WarnContext(ctx, "booking notification failed",
				slog.String("booking_id", b.ID), slog.Any("error", err))
		}
	}
	return b, nil
}

// SetStatus moves a booking along its vendor-driven lifecycle.
func (s *Service) SetStatus(ctx context.Context, actor auth.Actor, id string, to Status) (*Booking, error) {
	if !to.Valid() {
		return nil, apperr.Invalid("status", "unknown status")
	}
	b, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanActForVendor(b.VendorID) {
		return nil, apperr.ErrForbidden
	}
	if b.Status == to {
		return b, nil
	}
	if !canMove(b.Status, to) {
		return nil, fmt.Errorf("booking %s -> %s: %w", b.Status, to, apperr.ErrInvalidTransition)
	}
	b.Status = to
	b.UpdatedAt = s.now().UTC()
	if err := s.store.Update(ctx, b); err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "booking status changed",
		slog.String("booking_id", id), slog.String("status", string(to)), slog.String("by", actor.ID()))
	for _, n := range s.notifiers {
		if sn, ok := n.(StatusNotifier); ok {
			sn.BookingStatusChanged(ctx, b)
		}
	}
	return b, nil
}

func (s *Service) ListByVendor(ctx context.Context, actor auth.Actor, vendorID string, status Status, page paging.Page) ([]Booking, int, error) {
	if !actor.CanActForVendor(vendorID) {
		return nil, 0, apperr.ErrForbidden
	}
	if status != "" && !status.Valid() {
		return nil, 0, apperr.Invalid("status", "unknown status")
	}
	return s.store.List(ctx, Filter{VendorID: vendorID, Status: status, Page: page.Normalize()})
}

func (s *Service) AdminList(ctx context.Context, actor auth.Actor, status Status, page paging.Page) ([]Booking, int, error) {
	if !actor.IsAdmin() {
		return nil, 0, apperr.ErrForbidden
	}
	if status != "" && !status.Valid() {
		return nil, 0, apperr.Invalid("status", "unknown status")
	}
	return s.store.List(ctx, Filter{Status: status, Page: page.Normalize()})
}

func (s *Service) CountByStatus(ctx context.Context) (map[Status]int, error) {
	return s.store.CountByStatus(ctx)
}
