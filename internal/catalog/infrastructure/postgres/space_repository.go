package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	catalog "spaceledger/internal/catalog/domain"
)

const (
	defaultSpacesTable = "spaces"
	defaultRoomsTable  = "rooms"
)

// SpaceRepository is a Postgres implementation of the property registry.
type SpaceRepository struct {
	db          *sql.DB
	spacesTable string
	roomsTable  string
}

// NewSpaceRepository constructs a repository.
func NewSpaceRepository(db *sql.DB, opts ...SpaceOption) *SpaceRepository {
	repo := &SpaceRepository{db: db, spacesTable: defaultSpacesTable, roomsTable: defaultRoomsTable}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// SpaceOption configures the repository.
type SpaceOption func(*SpaceRepository)

// WithSpacesTable overrides the spaces table name.
func WithSpacesTable(table string) SpaceOption {
	return func(repo *SpaceRepository) {
		if table != "" {
			repo.spacesTable = table
		}
	}
}

// WithRoomsTable overrides the rooms table name.
func WithRoomsTable(table string) SpaceOption {
	return func(repo *SpaceRepository) {
		if table != "" {
			repo.roomsTable = table
		}
	}
}

// SaveSpace upserts a space.
func (r *SpaceRepository) SaveSpace(ctx context.Context, space *catalog.Space) error {
	if r == nil || r.db == nil {
		return errors.New("space repo: nil db")
	}
	if space == nil {
		return errors.New("space repo: nil space")
	}
	if err := space.Validate(); err != nil {
		return err
	}

	query := fmt.Sprintf(`
INSERT INTO %s (
	id,
	name,
	address,
	active
) VALUES (
	$1, $2, $3, $4
)
ON CONFLICT (id)
DO UPDATE SET
	name = EXCLUDED.name,
	address = EXCLUDED.address,
	active = EXCLUDED.active,
	updated_at = NOW()`, r.spacesTable)

	if _, err := r.db.ExecContext(ctx, query, space.ID, space.Name, space.Address, space.Active); err != nil {
		return err
	}
	now := time.Now().UTC()
	if space.CreatedAt.IsZero() {
		space.CreatedAt = now
	}
	space.UpdatedAt = now
	return nil
}

// SaveRoom upserts a room.
func (r *SpaceRepository) SaveRoom(ctx context.Context, room *catalog.Room) error {
	if r == nil || r.db == nil {
		return errors.New("space repo: nil db")
	}
	if room == nil {
		return errors.New("space repo: nil room")
	}
	if err := room.Validate(); err != nil {
		return err
	}

	query := fmt.Sprintf(`
INSERT INTO %s (
	id,
	space_id,
	name,
	active
) VALUES (
	$1, $2, $3, $4
)
ON CONFLICT (id)
DO UPDATE SET
	space_id = EXCLUDED.space_id,
	name = EXCLUDED.name,
	active = EXCLUDED.active,
	updated_at = NOW()`, r.roomsTable)

	if _, err := r.db.ExecContext(ctx, query, room.ID, room.SpaceID, room.Name, room.Active); err != nil {
		return err
	}
	now := time.Now().UTC()
	if room.CreatedAt.IsZero() {
		room.CreatedAt = now
	}
	room.UpdatedAt = now
	return nil
}

// ListSpaces loads every space.
func (r *SpaceRepository) ListSpaces(ctx context.Context) ([]catalog.Space, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("space repo: nil db")
	}

	query := fmt.Sprintf(`
SELECT id, name, address, active, created_at, updated_at
FROM %s
ORDER BY name ASC`, r.spacesTable)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []catalog.Space
	for rows.Next() {
		var space catalog.Space
		if err := rows.Scan(&space.ID, &space.Name, &space.Address, &space.Active, &space.CreatedAt, &space.UpdatedAt); err != nil {
			return nil, err
		}
		space.CreatedAt = space.CreatedAt.UTC()
		space.UpdatedAt = space.UpdatedAt.UTC()
		result = append(result, space)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// ListRooms loads the rooms of one space.
func (r *SpaceRepository) ListRooms(ctx context.Context, spaceID string) ([]catalog.Room, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("space repo: nil db")
	}
	if spaceID == "" {
		return nil, errors.New("space repo: empty space id")
	}

	query := fmt.Sprintf(`
SELECT id, space_id, name, active, created_at, updated_at
FROM %s
WHERE space_id = $1
ORDER BY name ASC`, r.roomsTable)

	rows, err := r.db.QueryContext(ctx, query, spaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []catalog.Room
	for rows.Next() {
		var room catalog.Room
		if err := rows.Scan(&room.ID, &room.SpaceID, &room.Name, &room.Active, &room.CreatedAt, &room.UpdatedAt); err != nil {
			return nil, err
		}
		room.CreatedAt = room.CreatedAt.UTC()
		room.UpdatedAt = room.UpdatedAt.UTC()
		result = append(result, room)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// ListIdentities flattens spaces and rooms into the identity set used by
// mapping resolution.
func (r *SpaceRepository) ListIdentities(ctx context.Context) ([]catalog.Identity, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("space repo: nil db")
	}

	query := fmt.Sprintf(`
SELECT s.id, NULL::text AS room_id, s.active
FROM %s s
UNION ALL
SELECT rm.space_id, rm.id, (rm.active AND s.active)
FROM %s rm
JOIN %s s ON s.id = rm.space_id
ORDER BY 1 ASC, 2 ASC NULLS FIRST`, r.spacesTable, r.roomsTable, r.spacesTable)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []catalog.Identity
	for rows.Next() {
		var id catalog.Identity
		var roomID sql.NullString
		if err := rows.Scan(&id.SpaceID, &roomID, &id.Active); err != nil {
			return nil, err
		}
		if roomID.Valid {
			id.RoomID = roomID.String
		}
		result = append(result, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
