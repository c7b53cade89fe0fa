package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	booking "spaceledger/internal/booking/domain"
)

const defaultBookingsTable = "bookings"

const bookingColumns = 22

// BookingRepository is a Postgres implementation for canonical bookings.
type BookingRepository struct {
	db    *sql.DB
	table string
}

// NewBookingRepository constructs a repository.
func NewBookingRepository(db *sql.DB, opts ...BookingOption) *BookingRepository {
	repo := &BookingRepository{db: db, table: defaultBookingsTable}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// BookingOption configures the repository.
type BookingOption func(*BookingRepository)

// WithBookingsTable overrides the table name.
func WithBookingsTable(table string) BookingOption {
	return func(repo *BookingRepository) {
		if table != "" {
			repo.table = table
		}
	}
}

// InsertBatch persists one chunk in a single multi-row statement so the
// chunk lands all-or-nothing. The unique index on external_id backstops
// concurrent runs; conflicting rows are skipped, and the returned count
// reflects what was actually inserted.
func (r *BookingRepository) InsertBatch(ctx context.Context, bookings []booking.Booking) (int, error) {
	if r == nil || r.db == nil {
		return 0, errors.New("booking repo: nil db")
	}
	if len(bookings) == 0 {
		return 0, nil
	}

	valueStrings := make([]string, 0, len(bookings))
	valueArgs := make([]interface{}, 0, len(bookings)*bookingColumns)
	for i, b := range bookings {
		if err := b.Validate(); err != nil {
			return 0, fmt.Errorf("booking repo: row %d: %w", b.Row, err)
		}
		placeholders := make([]string, bookingColumns)
		for j := range placeholders {
			placeholders[j] = fmt.Sprintf("$%d", i*bookingColumns+j+1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(placeholders, ", ")+")")
		valueArgs = append(valueArgs,
			uuid.New().String(),
			b.Source,
			nullString(b.ExternalID),
			nullString(b.ImportID),
			nullString(b.SpaceID),
			nullString(b.RoomID),
			b.DisplayName,
			b.SubSpaceLabel,
			b.BookingDate,
			b.UsageDate,
			nullString(b.StartTime),
			nullString(b.EndTime),
			nullInt(b.DurationMin),
			b.GrossAmount,
			nullInt64Ptr(b.NetAmount),
			nullInt64Ptr(b.Commission),
			b.GuestName,
			nullInt(b.GuestCount),
			b.Purpose,
			b.PurposeDetail,
			string(b.Status),
			b.Row,
		)
	}

	query := fmt.Sprintf(`
INSERT INTO %s (
	id,
	source,
	external_id,
	import_id,
	space_id,
	room_id,
	display_name,
	sub_space_label,
	booking_date,
	usage_date,
	start_time,
	end_time,
	duration_min,
	gross_amount,
	net_amount,
	commission,
	guest_name,
	guest_count,
	purpose,
	purpose_detail,
	status,
	row_num
) VALUES %s
ON CONFLICT (external_id) DO NOTHING`, r.table, strings.Join(valueStrings, ",\n\t"))

	res, err := r.db.ExecContext(ctx, query, valueArgs...)
	if err != nil {
		return 0, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(affected), nil
}

// ListExternalIDs returns every stored external reservation id across all
// sources.
func (r *BookingRepository) ListExternalIDs(ctx context.Context) (map[string]struct{}, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("booking repo: nil db")
	}

	query := fmt.Sprintf(`
SELECT external_id
FROM %s
WHERE external_id IS NOT NULL`, r.table)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}

// CountBySource returns booking counts keyed by source id.
func (r *BookingRepository) CountBySource(ctx context.Context) (map[string]int, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("booking repo: nil db")
	}

	query := fmt.Sprintf(`
SELECT source, COUNT(*)
FROM %s
GROUP BY source`, r.table)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var source string
		var n int
		if err := rows.Scan(&source, &n); err != nil {
			return nil, err
		}
		counts[source] = n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return counts, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullInt(v int) sql.NullInt64 {
	if v == 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(v), Valid: true}
}

func nullInt64Ptr(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}
