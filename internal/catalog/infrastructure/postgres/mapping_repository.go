package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	catalog "spaceledger/internal/catalog/domain"
)

const defaultMappingsTable = "source_mappings"

// MappingRepository is a Postgres implementation for source mappings.
type MappingRepository struct {
	db    *sql.DB
	table string
}

// NewMappingRepository constructs a repository.
func NewMappingRepository(db *sql.DB, opts ...MappingOption) *MappingRepository {
	repo := &MappingRepository{db: db, table: defaultMappingsTable}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// MappingOption configures the repository.
type MappingOption func(*MappingRepository)

// WithMappingsTable overrides the table name.
func WithMappingsTable(table string) MappingOption {
	return func(repo *MappingRepository) {
		if table != "" {
			repo.table = table
		}
	}
}

// ListBySource loads a source's mappings in insertion order.
func (r *MappingRepository) ListBySource(ctx context.Context, source string) ([]catalog.SourceMapping, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("mapping repo: nil db")
	}
	if source == "" {
		return nil, errors.New("mapping repo: empty source")
	}

	query := fmt.Sprintf(`
SELECT id, source, display_name, discriminator, space_id, room_id, position, created_at, updated_at
FROM %s
WHERE source = $1
ORDER BY position ASC, created_at ASC, id ASC`, r.table)

	rows, err := r.db.QueryContext(ctx, query, source)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []catalog.SourceMapping
	for rows.Next() {
		var mapping catalog.SourceMapping
		var discriminator, roomID sql.NullString
		if err := rows.Scan(
			&mapping.ID,
			&mapping.Source,
			&mapping.DisplayName,
			&discriminator,
			&mapping.SpaceID,
			&roomID,
			&mapping.Position,
			&mapping.CreatedAt,
			&mapping.UpdatedAt,
		); err != nil {
			return nil, err
		}
		if discriminator.Valid {
			mapping.Discriminator = discriminator.String
		}
		if roomID.Valid {
			mapping.RoomID = roomID.String
		}
		mapping.CreatedAt = mapping.CreatedAt.UTC()
		mapping.UpdatedAt = mapping.UpdatedAt.UTC()
		result = append(result, mapping)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Save upserts a mapping.
func (r *MappingRepository) Save(ctx context.Context, mapping *catalog.SourceMapping) error {
	if r == nil || r.db == nil {
		return errors.New("mapping repo: nil db")
	}
	if mapping == nil {
		return errors.New("mapping repo: nil mapping")
	}
	if err := mapping.Validate(); err != nil {
		return err
	}

	query := fmt.Sprintf(`
INSERT INTO %s (
	id,
	source,
	display_name,
	discriminator,
	space_id,
	room_id,
	position
) VALUES (
	$1, $2, $3, $4, $5, $6, $7
)
ON CONFLICT (id)
DO UPDATE SET
	source = EXCLUDED.source,
	display_name = EXCLUDED.display_name,
	discriminator = EXCLUDED.discriminator,
	space_id = EXCLUDED.space_id,
	room_id = EXCLUDED.room_id,
	position = EXCLUDED.position,
	updated_at = NOW()`, r.table)

	var discriminator, roomID sql.NullString
	if mapping.Discriminator != "" {
		discriminator = sql.NullString{String: mapping.Discriminator, Valid: true}
	}
	if mapping.RoomID != "" {
		roomID = sql.NullString{String: mapping.RoomID, Valid: true}
	}

	_, err := r.db.ExecContext(
		ctx,
		query,
		mapping.ID,
		mapping.Source,
		mapping.DisplayName,
		discriminator,
		mapping.SpaceID,
		roomID,
		mapping.Position,
	)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	if mapping.CreatedAt.IsZero() {
		mapping.CreatedAt = now
	}
	mapping.UpdatedAt = now
	return nil
}
