package gig

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sudo-init-do/talentbook/internal/apperr"
)

const uniqueViolation = "23505"

const gigColumns = `id, COALESCE(vendor_id::text, ''), COALESCE(owner_user_id, ''), template_id,
	title, category_id, short_description, description, languages, photos, videos,
	is_free, price_type, currency, price_amount, inclusions, location_type, base_city, radius_km,
	suitable_for_kids, age_limit, event_types, duration_minutes, min_guests, max_guests,
	venue_requirements, client_needs, booking_method, min_lead_time_hours,
	current_step, status, moderation_status, share_slug, views_count, published_at,
	created_at, updated_at`

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func scanGig(row pgx.Row, extra ...any) (*Gig, error) {
	var g Gig
	dest := []any{
		&g.ID, &g.VendorID, &g.OwnerUserID, &g.TemplateID,
		&g.Title, &g.CategoryID, &g.ShortDescription, &g.Description, &g.Languages, &g.Photos, &g.Videos,
		&g.IsFree, &g.PriceType, &g.Currency, &g.PriceAmount, &g.Inclusions, &g.LocationType, &g.BaseCity, &g.RadiusKm,
		&g.SuitableForKids, &g.AgeLimit, &g.EventTypes, &g.DurationMinutes, &g.MinGuests, &g.MaxGuests,
		&g.VenueRequirements, &g.ClientNeeds, &g.BookingMethod, &g.MinLeadTimeHours,
		&g.CurrentStep, &g.Status, &g.ModerationStatus, &g.ShareSlug, &g.ViewsCount, &g.PublishedAt,
		&g.CreatedAt, &g.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return &g, nil
}

func (s *PostgresStore) Create(ctx context.Context, g *Gig) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO gigs (id, vendor_id, owner_user_id, template_id,
			title, category_id, short_description, description, languages, photos, videos,
			is_free, price_type, currency, price_amount, inclusions, location_type, base_city, radius_km,
			suitable_for_kids, age_limit, event_types, duration_minutes, min_guests, max_guests,
			venue_requirements, client_needs, booking_method, min_lead_time_hours,
			current_step, status, moderation_status, share_slug, views_count, published_at,
			created_at, updated_at)
		VALUES ($1, NULLIF($2, '')::uuid, NULLIF($3, ''), $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29, $30, $31, $32,
			$33, 0, $34, $35, $36)`,
		g.ID, g.VendorID, g.OwnerUserID, g.TemplateID,
		g.Title, g.CategoryID, g.ShortDescription, g.Description, nonNil(g.Languages), nonNil(g.Photos), nonNil(g.Videos),
		g.IsFree, g.PriceType, g.Currency, g.PriceAmount, g.Inclusions, g.LocationType, g.BaseCity, g.RadiusKm,
		g.SuitableForKids, g.AgeLimit, nonNil(g.EventTypes), g.DurationMinutes, g.MinGuests, g.MaxGuests,
		g.VenueRequirements, g.ClientNeeds, g.BookingMethod, g.MinLeadTimeHours,
		g.CurrentStep, g.Status, g.ModerationStatus, g.ShareSlug, g.PublishedAt,
		g.CreatedAt, g.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("insert gig: %s: %w", pgErr.ConstraintName, apperr.ErrConflict)
		}
		return fmt.Errorf("insert gig: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*Gig, error) {
	return scanGig(s.pool.QueryRow(ctx, `SELECT `+gigColumns+` FROM gigs WHERE id = $1`, id))
}

func (s *PostgresStore) GetBySlug(ctx context.Context, slug string) (*Gig, error) {
	return scanGig(s.pool.QueryRow(ctx, `SELECT `+gigColumns+` FROM gigs WHERE share_slug = $1`, slug))
}

// Update writes every mutable column. share_slug and views_count are left alone.
func (s *PostgresStore) Update(ctx context.Context, g *Gig) error {
	ct, err := s.pool.Exec(ctx, `
		UPDATE gigs SET title = $2, category_id = $3, short_description = $4, description = $5,
			languages = $6, photos = $7, videos = $8, is_free = $9, price_type = $10, currency = $11,
			price_amount = $12, inclusions = $13, location_type = $14, base_city = $15, radius_km = $16,
			suitable_for_kids = $17, age_limit = $18, event_types = $19, duration_minutes = $20,
			min_guests = $21, max_guests = $22, venue_requirements = $23, client_needs = $24,
			booking_method = $25, min_lead_time_hours = $26, current_step = $27, status = $28,
			moderation_status = $29, published_at = $30, updated_at = $31
		WHERE id = $1`,
		g.ID, g.Title, g.CategoryID, g.ShortDescription, g.Description,
		nonNil(g.Languages), nonNil(g.Photos), nonNil(g.Videos), g.IsFree, g.PriceType, g.Currency,
		g.PriceAmount, g.Inclusions, g.LocationType, g.BaseCity, g.RadiusKm,
		g.SuitableForKids, g.AgeLimit, nonNil(g.EventTypes), g.DurationMinutes,
		g.MinGuests, g.MaxGuests, g.VenueRequirements, g.ClientNeeds,
		g.BookingMethod, g.MinLeadTimeHours, g.CurrentStep, g.Status,
		g.ModerationStatus, g.PublishedAt, g.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update gig: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) IncrementViews(ctx context.Context, id string) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx,
		`UPDATE gigs SET views_count = views_count + 1 WHERE id = $1 RETURNING views_count`, id,
	).Scan(&n)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, apperr.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("increment gig views: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) List(ctx context.Context, f Filter) ([]Gig, int, error) {
	where := []string{"TRUE"}
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.VendorID != "" {
		where = append(where, "vendor_id = "+arg(f.VendorID)+"::uuid")
	}
	if len(f.Statuses) > 0 {
		statuses := make([]string, len(f.Statuses))
		for i, st := range f.Statuses {
			statuses[i] = string(st)
		}
		where = append(where, "status = ANY("+arg(statuses)+")")
	}
	if f.Moderation != "" {
		where = append(where, "moderation_status = "+arg(string(f.Moderation)))
	}
	if f.CategoryID != "" {
		where = append(where, "category_id = "+arg(f.CategoryID))
	}
	if f.City != "" {
		where = append(where, "LOWER(base_city) = LOWER("+arg(f.City)+")")
	}
	if f.Query != "" {
		q := arg("%" + f.Query + "%")
		where = append(where, "(title ILIKE "+q+" OR short_description ILIKE "+q+")")
	}

	page := f.Page.Normalize()
	query := `SELECT ` + gigColumns + `, COUNT(*) OVER() FROM gigs WHERE ` + strings.Join(where, " AND ") +
		` ORDER BY updated_at DESC LIMIT ` + arg(page.Limit) + ` OFFSET ` + arg(page.Offset)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list gigs: %w", err)
	}
	defer rows.Close()

	var out []Gig
	total := 0
	for rows.Next() {
		g, err := scanGig(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("scan gig: %w", err)
		}
		out = append(out, *g)
	}
	return out, total, rows.Err()
}

func (s *PostgresStore) CountByStatus(ctx context.Context) (map[Status]int, error) {
	rows, err := s.pool.Query(ctx, `SELECT status, COUNT(*) FROM gigs GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count gigs: %w", err)
	}
	defer rows.Close()
	out := make(map[Status]int)
	for rows.Next() {
		var st Status
		var n int
		if err := rows.Scan(&st, &n); err != nil {
			return nil, err
		}
		out[st] = n
	}
	return out, rows.Err()
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
