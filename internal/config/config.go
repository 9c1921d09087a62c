package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type HTTPConfig struct {
	Addr         string        `envconfig:"HTTP_ADDR"          default:":8080"`
	ReadTimeout  time.Duration `envconfig:"HTTP_READ_TIMEOUT"  default:"10s"`
	WriteTimeout time.Duration `envconfig:"HTTP_WRITE_TIMEOUT" default:"10s"`
	IdleTimeout  time.Duration `envconfig:"HTTP_IDLE_TIMEOUT"  default:"60s"`
	// Requests per second allowed per IP on the public write endpoints.
	PublicRateLimit float64 `envconfig:"HTTP_PUBLIC_RATE_LIMIT" default:"20"`
}

type AuthConfig struct {
	JWTSecret string `envconfig:"JWT_SECRET" required:"true"`
	// Comma separated list of e-mails that are treated as administrators
	// regardless of the role claim.
	AdminEmails string `envconfig:"ADMIN_EMAILS"`
}

type MailConfig struct {
	Provider     string `envconfig:"MAIL_PROVIDER"`
	SMTPHost     string `envconfig:"SMTP_HOST"`
	SMTPPort     string `envconfig:"SMTP_PORT" default:"465"`
	SMTPUsername string `envconfig:"SMTP_USERNAME"`
	SMTPPassword string `envconfig:"SMTP_PASSWORD"`
	From         string `envconfig:"SMTP_FROM"`
	ReplyTo      string `envconfig:"MAIL_REPLY_TO"`
	PlunkAPIKey  string `envconfig:"PLUNK_API_KEY"`
	PlunkFrom    string `envconfig:"PLUNK_FROM"`
	PlunkAPIURL  string `envconfig:"PLUNK_API_URL" default:"https://api.useplunk.com/v1/send"`
}

type TwilioConfig struct {
	AccountSID     string `envconfig:"TWILIO_ACCOUNT_SID"`
	AuthToken      string `envconfig:"TWILIO_AUTH_TOKEN"`
	PhoneNumber    string `envconfig:"TWILIO_PHONE_NUMBER"`
	WhatsAppNumber string `envconfig:"TWILIO_WHATSAPP_NUMBER"`
}

type InviteConfig struct {
	TTL            time.Duration `envconfig:"INVITE_TTL"             default:"168h"`
	ExpirySchedule string        `envconfig:"INVITE_EXPIRY_SCHEDULE" default:"@every 1h"`
}

// Config holds the overall application configuration.
type Config struct {
	AppEnv        string `envconfig:"APP_ENV"   default:"development"`
	LogLevel      string `envconfig:"LOG_LEVEL" default:"info"`
	DatabaseURL   string `envconfig:"DATABASE_URL"`
	RedisAddr     string `envconfig:"REDIS_ADDR"`
	PublicBaseURL string `envconfig:"PUBLIC_BASE_URL" default:"http://localhost:3000"`
	TemplatesPath string `envconfig:"TEMPLATES_PATH"`
	HTTP          HTTPConfig
	Auth          AuthConfig
	Mail          MailConfig
	Twilio        TwilioConfig
	Invite        InviteConfig
}

// Load reads configuration from a .env file (when present) and the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file found, skipping: %v", err)
	}
	return Process()
}

// Process reads configuration from the environment only.
func Process() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	cfg.PublicBaseURL = strings.TrimRight(cfg.PublicBaseURL, "/")
	return &cfg, nil
}

// AdminEmailList returns the normalized admin allow-list.
func (c *Config) AdminEmailList() []string {
	var out []string
	for _, e := range strings.Split(c.Auth.AdminEmails, ",") {
		e = strings.ToLower(strings.TrimSpace(e))
		if e != "" {
			out = append(out, e)
		}
	}
	return out
}

// UseMemoryStores reports whether the service should run without Postgres.
func (c *Config) UseMemoryStores() bool {
	return c.DatabaseURL == ""
}
