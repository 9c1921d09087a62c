package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sudo-init-do/talentbook/internal/apperr"
)

const bookingColumns = `id, COALESCE(gig_id::text, ''), vendor_id, client_name, client_email, client_phone,
	client_whatsapp, event_type, event_date, event_time, location, city, guests_count, message,
	budget_range, status, created_at, updated_at`

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func scanBooking(row pgx.Row, extra ...any) (*Booking, error) {
	var b Booking
	dest := []any{&b.ID, &b.GigID, &b.VendorID, &b.ClientName, &b.ClientEmail, &b.ClientPhone,
		&b.ClientWhatsApp, &b.EventType, &b.EventDate, &b.EventTime, &b.Location, &b.City, &b.GuestsCount,
		&b.Message, &b.BudgetRange, &b.Status, &b.CreatedAt, &b.UpdatedAt}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

func (s *PostgresStore) Create(ctx context.Context, b *Booking) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO booking_requests (id, gig_id, vendor_id, client_name, client_email, client_phone,
			client_whatsapp, event_type, event_date, event_time, location, city, guests_count, message,
			budget_range, status, created_at, updated_at)
		VALUES ($1, NULLIF($2, '')::uuid, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`,
		b.ID, b.GigID, b.VendorID, b.ClientName, b.ClientEmail, b.ClientPhone,
		b.ClientWhatsApp, b.EventType, b.EventDate, b.EventTime, b.Location, b.City, b.GuestsCount, b.Message,
		b.BudgetRange, b.Status, b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert booking request: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*Booking, error) {
	return scanBooking(s.pool.QueryRow(ctx, `SELECT `+bookingColumns+` FROM booking_requests WHERE id = $1`, id))
}

// Update only persists the status; the client fields are immutable.
func (s *PostgresStore) Update(ctx context.Context, b *Booking) error {
	ct, err := s.pool.Exec(ctx,
		`UPDATE booking_requests SET status = $2, updated_at = $3 WHERE id = $1`,
		b.ID, b.Status, b.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update booking request: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context, f Filter) ([]Booking, int, error) {
	where := []string{"TRUE"}
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if f.VendorID != "" {
		where = append(where, "vendor_id = "+arg(f.VendorID))
	}
	if f.Status != "" {
		where = append(where, "status = "+arg(string(f.Status)))
	}
	page := f.Page.Normalize()
	query := `SELECT ` + bookingColumns + `, COUNT(*) OVER() FROM booking_requests WHERE ` +
		strings.Join(where, " AND ") + ` ORDER BY created_at DESC LIMIT ` + arg(page.Limit) + ` OFFSET ` + arg(page.Offset)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list booking requests: %w", err)
	}
	defer rows.Close()

	var out []Booking
	total := 0
	for rows.Next() {
		b, err := scanBooking(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("scan booking request: %w", err)
		}
		out = append(out, *b)
	}
	return out, total, rows.Err()
}

func (s *PostgresStore) CountByStatus(ctx context.Context) (map[Status]int, error) {
	rows, err := s.pool.Query(ctx, `SELECT status, COUNT(*) FROM booking_requests GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count booking requests: %w", err)
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
