package alerts

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"

	"github.com/sudo-init-do/talentbook/internal/config"
)

// Mailer delivers a single e-mail.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// NewMailer picks the configured provider. Plunk wins when selected or when
// only an API key is set; with nothing configured mail is logged.
func NewMailer(cfg config.MailConfig) (Mailer, error) {
	switch {
	case cfg.Provider == "plunk" || (cfg.Provider == "" && cfg.PlunkAPIKey != ""):
		if cfg.PlunkAPIKey == "" {
			return nil, fmt.Errorf("plunk not configured: set PLUNK_API_KEY")
		}
		return newPlunkMailer(cfg), nil
	case cfg.SMTPHost != "":
		if cfg.SMTPPort == "" || cfg.SMTPUsername == "" || cfg.SMTPPassword == "" || cfg.From == "" {
			return nil, fmt.Errorf("smtp not configured: set SMTP_HOST, SMTP_PORT, SMTP_USERNAME, SMTP_PASSWORD, SMTP_FROM")
		}
		return &smtpMailer{cfg: cfg}, nil
	default:
		return logMailer{}, nil
	}
}

type logMailer struct{}

func (logMailer) Send(ctx context.Context, to, subject, _ string) error {
	slog.InfoContext(ctx, "mail delivery disabled, dropping message",
		slog.String("to", to), slog.String("subject", subject))
	return nil
}

type smtpMailer struct {
	cfg config.MailConfig
}

func buildMessage(from, to, replyTo, subject, body string) string {
	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", from)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	if replyTo != "" {
		fmt.Fprintf(&msg, "Reply-To: %s\r\n", replyTo)
	}
	msg.WriteString("MIME-Version: 1.0\r\n")
	contentType := "text/plain"
	lb := strings.ToLower(body)
	if strings.Contains(lb, "<html") || strings.Contains(lb, "<body") || strings.Contains(lb, "<!doctype html") {
		contentType = "text/html"
	}
	fmt.Fprintf(&msg, "Content-Type: %s; charset=\"utf-8\"\r\n", contentType)
	msg.WriteString("\r\n" + body + "\r\n")
	return msg.String()
}

// Send delivers over implicit TLS.
func (m *smtpMailer) Send(_ context.Context, to, subject, body string) error {
	cfg := m.cfg
	msg := buildMessage(cfg.From, to, cfg.ReplyTo, subject, body)

	conn, err := tls.Dial("tcp", cfg.SMTPHost+":"+cfg.SMTPPort, &tls.Config{ServerName: cfg.SMTPHost})
	if err != nil {
		return fmt.Errorf("smtp dial: %w", err)
	}
	defer conn.Close()

	c, err := smtp.NewClient(conn, cfg.SMTPHost)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	defer c.Close()

	if err := c.Auth(smtp.PlainAuth("", cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPHost)); err != nil {
		return fmt.Errorf("smtp auth: %w", err)
	}
	if err := c.Mail(cfg.From); err != nil {
		return fmt.Errorf("smtp mail from: %w", err)
	}
	if err := c.Rcpt(to); err != nil {
		return fmt.Errorf("smtp rcpt to: %w", err)
	}
	wc, err := c.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := wc.Write([]byte(msg)); err != nil {
		return fmt.Errorf("smtp write: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("smtp close: %w", err)
	}
	return c.Quit()
}
