package alerts

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/sudo-init-do/talentbook/internal/config"
)

// Messenger delivers a short text to a phone number.
type Messenger interface {
	SendText(ctx context.Context, phone, body string) error
}

// NewMessenger returns a Twilio messenger, or a logging one when Twilio is
// not configured.
func NewMessenger(cfg config.TwilioConfig) Messenger {
	if cfg.AccountSID == "" || cfg.AuthToken == "" {
		return logMessenger{}
	}
	return &twilioMessenger{
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: cfg.AccountSID,
			Password: cfg.AuthToken,
		}),
		smsFrom:      cfg.PhoneNumber,
		whatsAppFrom: cfg.WhatsAppNumber,
	}
}

type logMessenger struct{}

func (logMessenger) SendText(ctx context.Context, phone, _ string) error {
	slog.InfoContext(ctx, "text delivery disabled, dropping message", slog.String("to", phone))
	return nil
}

type twilioMessenger struct {
	client       *twilio.RestClient
	smsFrom      string
	whatsAppFrom string
}

// route picks WhatsApp for E.164 numbers when a WhatsApp sender is set,
// SMS otherwise.
func route(phone, smsFrom, whatsAppFrom string) (to, from, channel string) {
	if strings.HasPrefix(phone, "+") && whatsAppFrom != "" {
		return "whatsapp:" + phone, "whatsapp:" + whatsAppFrom, "whatsapp"
	}
	return phone, smsFrom, "sms"
}

func (m *twilioMessenger) SendText(ctx context.Context, phone, body string) error {
	to, from, channel := route(phone, m.smsFrom, m.whatsAppFrom)
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(from)
	params.SetBody(body)

	resp, err := m.client.Api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("twilio %s: %w", channel, err)
	}
	sid := ""
	if resp.Sid != nil {
		sid = *resp.Sid
	}
	slog.InfoContext(ctx, "text message sent", slog.String("channel", channel), slog.String("sid", sid))
	return nil
}
