package catalog

import (
	"context"
	"errors"
	"time"
)

// Space is one physical property in the internal registry.
type Space struct {
	ID        string
	Name      string
	Address   string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate checks space invariants.
func (s Space) Validate() error {
	if s.ID == "" {
		return errors.New("catalog: empty space id")
	}
	if s.Name == "" {
		return errors.New("catalog: empty space name")
	}
	return nil
}

// Room is one bookable subdivision of a space.
type Room struct {
	ID        string
	SpaceID   string
	Name      string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate checks room invariants.
func (r Room) Validate() error {
	if r.ID == "" {
		return errors.New("catalog: empty room id")
	}
	if r.SpaceID == "" {
		return errors.New("catalog: empty room space id")
	}
	if r.Name == "" {
		return errors.New("catalog: empty room name")
	}
	return nil
}

// Identity is the flattened (space, room) pair a mapping points at.
// RoomID is empty for spaces booked as a whole.
type Identity struct {
	SpaceID string
	RoomID  string
	Active  bool
}

// Key returns the registry lookup key for the identity.
func (i Identity) Key() string {
	if i.RoomID == "" {
		return i.SpaceID
	}
	return i.SpaceID + "/" + i.RoomID
}

// SpaceRepository manages the property registry.
type SpaceRepository interface {
	SaveSpace(ctx context.Context, space *Space) error
	SaveRoom(ctx context.Context, room *Room) error
	ListSpaces(ctx context.Context) ([]Space, error)
	ListRooms(ctx context.Context, spaceID string) ([]Room, error)
	// ListIdentities flattens spaces and their rooms into the identity
	// set mappings resolve against. A room is active only when both the
	// room and its space are.
	ListIdentities(ctx context.Context) ([]Identity, error)
}
