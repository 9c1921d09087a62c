package booking

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusRejected  Status = "rejected"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

func (s Status) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// transitions lists the statuses a vendor may move a booking to.
var transitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusRejected, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
	StatusRejected:  nil,
	StatusCompleted: nil,
	StatusCancelled: nil,
}

func canMove(from, to Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Booking is a client inquiry against a vendor, optionally for one gig.
type Booking struct {
	ID             string    `json:"id"`
	GigID          string    `json:"gig_id,omitempty"`
	VendorID       string    `json:"vendor_id"`
	ClientName     string    `json:"client_name"`
	ClientEmail    string    `json:"client_email"`
	ClientPhone    string    `json:"client_phone,omitempty"`
	ClientWhatsApp string    `json:"client_whatsapp,omitempty"`
	EventType      string    `json:"event_type,omitempty"`
	EventDate      string    `json:"event_date,omitempty"`
	EventTime      string    `json:"event_time,omitempty"`
	Location       string    `json:"location,omitempty"`
	City           string    `json:"city,omitempty"`
	GuestsCount    *int      `json:"guests_count,omitempty"`
	Message        string    `json:"message,omitempty"`
	BudgetRange    string    `json:"budget_range,omitempty"`
	Status         Status    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// FlexInt decodes a JSON number or a numeric string. Text that is not an
// integer is kept in Raw so validation can report it.
type FlexInt struct {
	Value int
	Valid bool
	Raw   string
}

func (f *FlexInt) UnmarshalJSON(b []byte) error {
	*f = FlexInt{}
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	text := string(b)
	if len(b) > 0 && b[0] == '"' {
		if err := json.Unmarshal(b, &text); err != nil {
			return err
		}
		text = strings.TrimSpace(text)
		if text == "" {
			return nil
		}
	} else if len(b) == 0 || !(b[0] == '-' || (b[0] >= '0' && b[0] <= '9')) {
		return fmt.Errorf("guests_count: expected a number or string, got %s", b)
	}
	n, err := strconv.Atoi(text)
	if err != nil {
		f.Raw = text
		return nil
	}
	f.Value, f.Valid = n, true
	return nil
}

func (f FlexInt) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(f.Value)), nil
}

// SubmitRequest is the public booking form.
type SubmitRequest struct {
	GigID          string  `json:"gig_id"`
	VendorID       string  `json:"vendor_id"`
	ClientName     string  `json:"client_name"`
	ClientEmail    string  `json:"client_email"`
	ClientPhone    string  `json:"client_phone"`
	ClientWhatsApp string  `json:"client_whatsapp"`
	EventType      string  `json:"event_type"`
	EventDate      string  `json:"event_date"`
	EventTime      string  `json:"event_time"`
	Location       string  `json:"location"`
	City           string  `json:"city"`
	GuestsCount    FlexInt `json:"guests_count"`
	Message        string  `json:"message"`
	BudgetRange    string  `json:"budget_range"`
}
