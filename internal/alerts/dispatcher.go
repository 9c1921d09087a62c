package alerts

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hibiken/asynq"

	"github.com/sudo-init-do/talentbook/internal/booking"
	"github.com/sudo-init-do/talentbook/internal/vendor"
)

// Dispatcher enqueues notification tasks. Without Redis it runs them inline
// through the processor's mux.
type Dispatcher struct {
	client  *asynq.Client
	inline  *asynq.ServeMux
	baseURL string
	now     func() time.Time
}

// NewDispatcher connects to redisAddr. An empty address selects inline mode.
func NewDispatcher(redisAddr, baseURL string, p *Processor) *Dispatcher {
	d := &Dispatcher{baseURL: strings.TrimRight(baseURL, "/"), now: time.Now}
	if redisAddr == "" {
		d.inline = p.Mux()
		return d
	}
	d.client = asynq.NewClient(asynq.RedisClientOpt{Addr: redisAddr})
	return d
}

func (d *Dispatcher) Close() error {
	if d.client == nil {
		return nil
	}
	return d.client.Close()
}

func (d *Dispatcher) enqueue(ctx context.Context, taskType, queue string, payload any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	task := asynq.NewTask(taskType, b)
	if d.client == nil {
		return d.inline.ProcessTask(ctx, task)
	}
	info, err := d.client.EnqueueContext(ctx, task, asynq.Queue(queue), asynq.MaxRetry(5), asynq.Timeout(30*time.Second))
	if err != nil {
		return fmt.Errorf("enqueue %s: %w", taskType, err)
	}
	slog.DebugContext(ctx, "task enqueued", slog.String("type", taskType), slog.String("task_id", info.ID))
	return nil
}

// SendInvite implements vendor.Inviter.
func (d *Dispatcher) SendInvite(ctx context.Context, inv vendor.Invitation) error {
	text := fmt.Sprintf("Hi %s, you've been invited to join TalentBook. Confirm your profile here: %s", inv.Name, inv.Link)
	payload := VendorInvitePayload{
		PendingVendorID: inv.PendingVendorID,
		Phone:           inv.Phone,
		Text:            text,
		SentAt:          d.now().UTC(),
	}
	if inv.Email != "" {
		payload.Envelope = EmailEnvelope{
			To:      inv.Email,
			Subject: "Your TalentBook invitation",
			Body:    text + "\n\nThe link expires if it is not used.",
		}
	}
	return d.enqueue(ctx, TaskVendorInvite, QueueInvites, payload)
}

// BookingCreated implements booking.Notifier. Vendors without an e-mail
// address are skipped.
func (d *Dispatcher) BookingCreated(ctx context.Context, b *booking.Booking, v *vendor.Vendor) error {
	if v.Email == "" {
		slog.DebugContext(ctx, "vendor has no email, skipping booking mail", slog.String("vendor_id", v.ID))
		return nil
	}
	return d.enqueue(ctx, TaskBookingRequest, QueueEmails, BookingRequestPayload{
		BookingID: b.ID,
		VendorID:  v.ID,
		Envelope: EmailEnvelope{
			To:      v.Email,
			Subject: "New booking request from " + b.ClientName,
			Body:    d.bookingBody(b, v),
		},
		SentAt: d.now().UTC(),
	})
}

func (d *Dispatcher) bookingBody(b *booking.Booking, v *vendor.Vendor) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Hi %s,\n\nYou have a new booking request.\n\n", v.Name)
	line := func(label, value string) {
		if value != "" {
			fmt.Fprintf(&sb, "%s: %s\n", label, value)
		}
	}
	line("Name", b.ClientName)
	line("Email", b.ClientEmail)
	line("Phone", b.ClientPhone)
	line("WhatsApp", b.ClientWhatsApp)
	line("Event", b.EventType)
	line("Date", strings.TrimSpace(b.EventDate+" "+b.EventTime))
	line("Location", strings.TrimSpace(strings.Trim(b.Location+", "+b.City, ", ")))
	if b.GuestsCount != nil {
		fmt.Fprintf(&sb, "Guests: %d\n", *b.GuestsCount)
	}
	line("Budget", b.BudgetRange)
	if b.Message != "" {
		fmt.Fprintf(&sb, "\n%s\n", b.Message)
	}
	fmt.Fprintf(&sb, "\nManage it at %s/dashboard/bookings/%s\n", d.baseURL, b.ID)
	return sb.String()
}
