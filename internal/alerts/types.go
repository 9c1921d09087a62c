package alerts

import "time"

// Task types
const (
	TaskBookingRequest = "email:booking_request"
	TaskVendorInvite   = "invite:vendor"
)

// Queues
const (
	QueueEmails  = "emails"
	QueueInvites = "invites"
)

// Common envelope for email-like notifications
type EmailEnvelope struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// BookingRequestPayload tells a vendor about a new inquiry.
type BookingRequestPayload struct {
	BookingID string        `json:"booking_id"`
	VendorID  string        `json:"vendor_id"`
	Envelope  EmailEnvelope `json:"envelope"`
	SentAt    time.Time     `json:"sent_at"`
}

// VendorInvitePayload carries a confirmation link to a pending vendor over
// every channel it has.
type VendorInvitePayload struct {
	PendingVendorID string        `json:"pending_vendor_id"`
	Phone           string        `json:"phone,omitempty"`
	Text            string        `json:"text"`
	Envelope        EmailEnvelope `json:"envelope"`
	SentAt          time.Time     `json:"sent_at"`
}
