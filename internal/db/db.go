package db

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Connect opens a pool and verifies it with a ping.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	cfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	slog.Info("connected to postgres")
	return pool, nil
}

var schema = []struct {
	name string
	ddl  string
}{
	{"vendors", `
		CREATE TABLE IF NOT EXISTS vendors (
			id UUID PRIMARY KEY,
			name TEXT NOT NULL,
			categories TEXT[] NOT NULL DEFAULT '{}',
			city TEXT NOT NULL DEFAULT '',
			phone TEXT NOT NULL DEFAULT '',
			email TEXT NOT NULL DEFAULT '',
			instagram TEXT NOT NULL DEFAULT '',
			image_url TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			is_verified BOOLEAN NOT NULL DEFAULT FALSE,
			is_featured BOOLEAN NOT NULL DEFAULT FALSE,
			is_archived BOOLEAN NOT NULL DEFAULT FALSE,
			rating DOUBLE PRECISION NOT NULL DEFAULT 0,
			reviews_count INTEGER NOT NULL DEFAULT 0,
			owner_user_id TEXT NULL,
			edit_token_hash TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_vendors_archived_active ON vendors(is_archived, is_active);`},
	{"pending_vendors", `
		CREATE TABLE IF NOT EXISTS pending_vendors (
			id UUID PRIMARY KEY,
			name TEXT NOT NULL,
			categories TEXT[] NOT NULL DEFAULT '{}',
			city TEXT NOT NULL DEFAULT '',
			phone TEXT NOT NULL DEFAULT '',
			email TEXT NOT NULL DEFAULT '',
			instagram TEXT NOT NULL DEFAULT '',
			image_url TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			source_type TEXT NOT NULL DEFAULT 'manual',
			source_url TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'pending'
				CHECK (status IN ('pending','invited','viewed','confirmed','expired','declined')),
			confirmation_token TEXT NOT NULL UNIQUE,
			created_by TEXT NOT NULL DEFAULT '',
			invited_at TIMESTAMPTZ NULL,
			viewed_at TIMESTAMPTZ NULL,
			confirmed_vendor_id UUID NULL REFERENCES vendors(id) ON DELETE SET NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_pending_vendors_status ON pending_vendors(status, invited_at);`},
	{"gigs", `
		CREATE TABLE IF NOT EXISTS gigs (
			id UUID PRIMARY KEY,
			vendor_id UUID NULL REFERENCES vendors(id) ON DELETE CASCADE,
			owner_user_id TEXT NULL,
			template_id TEXT NOT NULL DEFAULT '',
			title TEXT NOT NULL DEFAULT '',
			category_id TEXT NOT NULL DEFAULT '',
			short_description TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			languages TEXT[] NOT NULL DEFAULT '{}',
			photos TEXT[] NOT NULL DEFAULT '{}',
			videos TEXT[] NOT NULL DEFAULT '{}',
			is_free BOOLEAN NOT NULL DEFAULT FALSE,
			price_type TEXT NOT NULL DEFAULT '',
			currency TEXT NOT NULL DEFAULT '',
			price_amount NUMERIC(12,2) NULL,
			inclusions TEXT NOT NULL DEFAULT '',
			location_type TEXT NOT NULL DEFAULT '',
			base_city TEXT NOT NULL DEFAULT '',
			radius_km INTEGER NOT NULL DEFAULT 0,
			suitable_for_kids BOOLEAN NOT NULL DEFAULT FALSE,
			age_limit TEXT NOT NULL DEFAULT '',
			event_types TEXT[] NOT NULL DEFAULT '{}',
			duration_minutes INTEGER NOT NULL DEFAULT 0,
			min_guests INTEGER NOT NULL DEFAULT 0,
			max_guests INTEGER NOT NULL DEFAULT 0,
			venue_requirements TEXT NOT NULL DEFAULT '',
			client_needs TEXT NOT NULL DEFAULT '',
			booking_method TEXT NOT NULL DEFAULT '',
			min_lead_time_hours INTEGER NOT NULL DEFAULT 0,
			current_step INTEGER NOT NULL DEFAULT 0,
			status TEXT NOT NULL DEFAULT 'draft'
				CHECK (status IN ('draft','published','unlisted','archived')),
			moderation_status TEXT NOT NULL DEFAULT 'pending'
				CHECK (moderation_status IN ('pending','approved','rejected')),
			share_slug TEXT NOT NULL,
			views_count INTEGER NOT NULL DEFAULT 0,
			published_at TIMESTAMPTZ NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CONSTRAINT gigs_share_slug_key UNIQUE (share_slug)
		);
		CREATE INDEX IF NOT EXISTS idx_gigs_vendor ON gigs(vendor_id, updated_at DESC);
		CREATE INDEX IF NOT EXISTS idx_gigs_catalog ON gigs(status, moderation_status, category_id);`},
	{"booking_requests", `
		CREATE TABLE IF NOT EXISTS booking_requests (
			id UUID PRIMARY KEY,
			gig_id UUID NULL REFERENCES gigs(id) ON DELETE SET NULL,
			vendor_id UUID NOT NULL REFERENCES vendors(id) ON DELETE CASCADE,
			client_name TEXT NOT NULL,
			client_email TEXT NOT NULL,
			client_phone TEXT NOT NULL DEFAULT '',
			client_whatsapp TEXT NOT NULL DEFAULT '',
			event_type TEXT NOT NULL DEFAULT '',
			event_date TEXT NOT NULL DEFAULT '',
			event_time TEXT NOT NULL DEFAULT '',
			location TEXT NOT NULL DEFAULT '',
			city TEXT NOT NULL DEFAULT '',
			guests_count INTEGER NULL,
			message TEXT NOT NULL DEFAULT '',
			budget_range TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'pending'
				CHECK (status IN ('pending','confirmed','rejected','completed','cancelled')),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_booking_requests_vendor ON booking_requests(vendor_id, created_at DESC);`},
}

// EnsureSchema creates missing tables and indexes. It is safe to run on
// every start.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, t := range schema {
		if _, err := pool.Exec(ctx, t.ddl); err != nil {
			return fmt.Errorf("ensure %s: %w", t.name, err)
		}
		slog.Debug("table ensured", slog.String("table", t.name))
	}
	return nil
}
