package alerts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
)

// Processor turns queued tasks into deliveries.
type Processor struct {
	mailer    Mailer
	messenger Messenger
}

func NewProcessor(mailer Mailer, messenger Messenger) *Processor {
	return &Processor{mailer: mailer, messenger: messenger}
}

// Mux routes task types to their handlers.
func (p *Processor) Mux() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskBookingRequest, p.handleBookingRequest)
	mux.HandleFunc(TaskVendorInvite, p.handleVendorInvite)
	return mux
}

func (p *Processor) handleBookingRequest(ctx context.Context, t *asynq.Task) error {
	var payload BookingRequestPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("decode %s: %v: %w", t.Type(), err, asynq.SkipRetry)
	}
	if err := p.mailer.Send(ctx, payload.Envelope.To, payload.Envelope.Subject, payload.Envelope.Body); err != nil {
		return fmt.Errorf("send booking request %s: %w", payload.BookingID, err)
	}
	slog.InfoContext(ctx, "booking request mailed",
		slog.String("booking_id", payload.BookingID), slog.String("vendor_id", payload.VendorID))
	return nil
}

func (p *Processor) handleVendorInvite(ctx context.Context, t *asynq.Task) error {
	var payload VendorInvitePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("decode %s: %v: %w", t.Type(), err, asynq.SkipRetry)
	}
	var errs []error
	if payload.Phone != "" {
		if err := p.messenger.SendText(ctx, payload.Phone, payload.Text); err != nil {
			errs = append(errs, err)
		}
	}
	if payload.Envelope.To != "" {
		if err := p.mailer.Send(ctx, payload.Envelope.To, payload.Envelope.Subject, payload.Envelope.Body); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invite %s: %w", payload.PendingVendorID, err)
	}
	slog.InfoContext(ctx, "vendor invite delivered", slog.String("pending_vendor_id", payload.PendingVendorID))
	return nil
}
