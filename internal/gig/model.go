package gig

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusUnlisted  Status = "unlisted"
	StatusArchived  Status = "archived"
)

func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusPublished, StatusUnlisted, StatusArchived:
		return true
	}
	return false
}

// Live reports whether a gig with this status can be reached by its slug.
func (s Status) Live() bool {
	return s == StatusPublished || s == StatusUnlisted
}

// ModerationStatus is the admin approval state. It is independent of Status.
type ModerationStatus string

const (
	ModerationPending  ModerationStatus = "pending"
	ModerationApproved ModerationStatus = "approved"
	ModerationRejected ModerationStatus = "rejected"
)

func (m ModerationStatus) Valid() bool {
	switch m {
	case ModerationPending, ModerationApproved, ModerationRejected:
		return true
	}
	return false
}

type PriceType string

const (
	PriceFixed  PriceType = "fixed"
	PriceHourly PriceType = "hourly"
	PriceFrom   PriceType = "from"
)

type LocationType string

const (
	LocationCity        LocationType = "city"
	LocationRadius      LocationType = "radius"
	LocationCountrywide LocationType = "countrywide"
	LocationOnline      LocationType = "online"
)

type AgeLimit string

const (
	AgeAll      AgeLimit = "all"
	Age18Plus   AgeLimit = "18_plus"
	Age21Plus   AgeLimit = "21_plus"
	AgeKidsOnly AgeLimit = "kids_only"
)

type BookingMethod string

const (
	BookingChat        BookingMethod = "chat"
	BookingRequestSlot BookingMethod = "request_slot"
)

// PublishMode selects between catalog listing and link-only access.
type PublishMode string

const (
	ModeCatalog  PublishMode = "catalog"
	ModeUnlisted PublishMode = "unlisted"
)

// Draft holds the fields the owner fills in through the builder steps.
type Draft struct {
	Title             string              `json:"title"`
	CategoryID        string              `json:"category_id"`
	ShortDescription  string              `json:"short_description"`
	Description       string              `json:"description"`
	Languages         []string            `json:"languages"`
	Photos            []string            `json:"photos"`
	Videos            []string            `json:"videos"`
	IsFree            bool                `json:"is_free"`
	PriceType         PriceType           `json:"price_type"`
	Currency          string              `json:"currency"`
	PriceAmount       decimal.NullDecimal `json:"price_amount"`
	Inclusions        string              `json:"inclusions"`
	LocationType      LocationType        `json:"location_type"`
	BaseCity          string              `json:"base_city"`
	RadiusKm          int                 `json:"radius_km"`
	SuitableForKids   bool                `json:"suitable_for_kids"`
	AgeLimit          AgeLimit            `json:"age_limit"`
	EventTypes        []string            `json:"event_types"`
	DurationMinutes   int                 `json:"duration_minutes"`
	MinGuests         int                 `json:"min_guests"`
	MaxGuests         int                 `json:"max_guests"`
	VenueRequirements string              `json:"venue_requirements"`
	ClientNeeds       string              `json:"client_needs"`
	BookingMethod     BookingMethod       `json:"booking_method"`
	MinLeadTimeHours  int                 `json:"min_lead_time_hours"`
}

// Clone returns a deep copy of the draft.
func (d Draft) Clone() Draft {
	d.Languages = cloneStrings(d.Languages)
	d.Photos = cloneStrings(d.Photos)
	d.Videos = cloneStrings(d.Videos)
	d.EventTypes = cloneStrings(d.EventTypes)
	return d
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s...)
}

// Gig is a bookable offer by a vendor, or by a guest owner before a vendor exists.
type Gig struct {
	ID          string `json:"id"`
	VendorID    string `json:"vendor_id,omitempty"`
	OwnerUserID string `json:"owner_user_id,omitempty"`
	TemplateID  string `json:"template_id,omitempty"`
	Draft
	CurrentStep      int              `json:"current_step"`
	Status           Status           `json:"status"`
	ModerationStatus ModerationStatus `json:"moderation_status"`
	ShareSlug        string           `json:"share_slug"`
	ViewsCount       int              `json:"views_count"`
	PublishedAt      *time.Time       `json:"published_at,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

func (g *Gig) Clone() *Gig {
	out := *g
	out.Draft = g.Draft.Clone()
	if g.PublishedAt != nil {
		t := *g.PublishedAt
		out.PublishedAt = &t
	}
	return &out
}

// Listed reports whether the gig shows up in the public catalog.
func (g *Gig) Listed() bool {
	return g.Status == StatusPublished && g.ModerationStatus == ModerationApproved
}

// Update is a step save: the draft fields plus the new step pointer.
type Update struct {
	Draft
	CurrentStep int `json:"current_step"`
}
