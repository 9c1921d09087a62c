package gig

import (
	"github.com/shopspring/decimal"

	"github.com/sudo-init-do/talentbook/internal/apperr"
)

// maxPrice bounds price_amount to what the numeric(12,2) column holds.
var maxPrice = decimal.New(1, 10)

// Step identifies one screen of the gig builder.
type Step string

const (
	StepType         Step = "type"
	StepTitle        Step = "title"
	StepDescription  Step = "description"
	StepMedia        Step = "media"
	StepPricing      Step = "pricing"
	StepLocation     Step = "location"
	StepAudience     Step = "audience"
	StepDetails      Step = "details"
	StepAvailability Step = "availability"
	StepPublish      Step = "publish"
)

// Steps is the builder sequence. current_step indexes into it.
var Steps = []Step{
	StepType,
	StepTitle,
	StepDescription,
	StepMedia,
	StepPricing,
	StepLocation,
	StepAudience,
	StepDetails,
	StepAvailability,
	StepPublish,
}

// LastStep is the highest valid current_step.
var LastStep = len(Steps) - 1

type stepCheck func(d *Draft, f apperr.Fields)

// stepChecks gates leaving a step. Steps without an entry have no gate.
var stepChecks = map[Step]stepCheck{
	StepTitle:        checkTitle,
	StepPricing:      checkPricing,
	StepLocation:     checkLocation,
	StepAudience:     checkAudience,
	StepDetails:      checkDetails,
	StepAvailability: checkAvailability,
}

// ClampStep bounds i to the valid step range.
func ClampStep(i int) int {
	if i < 0 {
		return 0
	}
	if i > LastStep {
		return LastStep
	}
	return i
}

// StepAt returns the step at index i, clamped.
func StepAt(i int) Step {
	return Steps[ClampStep(i)]
}

// ValidateStep checks the gate for leaving step i.
func ValidateStep(d *Draft, i int) error {
	f := apperr.Fields{}
	if check, ok := stepChecks[StepAt(i)]; ok {
		check(d, f)
	}
	return f.Err()
}

// ValidateThrough checks the gates of every step before index n.
func ValidateThrough(d *Draft, n int) error {
	f := apperr.Fields{}
	for i := 0; i < n && i < len(Steps); i++ {
		if check, ok := stepChecks[Steps[i]]; ok {
			check(d, f)
		}
	}
	return f.Err()
}

func checkTitle(d *Draft, f apperr.Fields) {
	if d.Title == "" {
		f.Add("title", "required")
	}
	if d.CategoryID == "" {
		f.Add("category_id", "required")
	}
}

func checkPricing(d *Draft, f apperr.Fields) {
	switch d.PriceType {
	case "", PriceFixed, PriceHourly, PriceFrom:
	default:
		f.Add("price_type", "unknown price type")
	}
	if d.IsFree {
		return
	}
	if !d.PriceAmount.Valid {
		f.Add("price_amount", "required unless the gig is free")
	} else if amt := d.PriceAmount.Decimal; !amt.IsPositive() {
		f.Add("price_amount", "must be greater than zero")
	} else if !amt.Equal(amt.Round(2)) {
		f.Add("price_amount", "must have at most 2 decimal places")
	} else if amt.GreaterThanOrEqual(maxPrice) {
		f.Add("price_amount", "must be less than 10000000000")
	}
}

func checkLocation(d *Draft, f apperr.Fields) {
	switch d.LocationType {
	case "", LocationCity, LocationRadius, LocationCountrywide, LocationOnline:
	default:
		f.Add("location_type", "unknown location type")
	}
	if d.RadiusKm < 0 {
		f.Add("radius_km", "must not be negative")
	}
}

func checkAudience(d *Draft, f apperr.Fields) {
	switch d.AgeLimit {
	case "", AgeAll, Age18Plus, Age21Plus, AgeKidsOnly:
	default:
		f.Add("age_limit", "unknown age limit")
	}
}

func checkDetails(d *Draft, f apperr.Fields) {
	if d.DurationMinutes < 0 {
		f.Add("duration_minutes", "must not be negative")
	}
	if d.MinGuests < 0 {
		f.Add("min_guests", "must not be negative")
	}
	if d.MaxGuests < 0 {
		f.Add("max_guests", "must not be negative")
	}
	if d.MinGuests > 0 && d.MaxGuests > 0 && d.MinGuests > d.MaxGuests {
		f.Add("max_guests", "must be at least min_guests")
	}
}

func checkAvailability(d *Draft, f apperr.Fields) {
	switch d.BookingMethod {
	case "", BookingChat, BookingRequestSlot:
	default:
		f.Add("booking_method", "unknown booking method")
	}
	if d.MinLeadTimeHours < 0 {
		f.Add("min_lead_time_hours", "must not be negative")
	}
}
