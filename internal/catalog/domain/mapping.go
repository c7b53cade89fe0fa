package catalog

import (
	"context"
	"errors"
	"time"
)

// SourceMapping links one source-side listing name, optionally narrowed
// by a sub-space discriminator, to an internal identity. Several mappings
// may share a display name when one listing sells multiple rooms; the
// discriminator tells them apart.
type SourceMapping struct {
	ID            string
	Source        string
	DisplayName   string
	Discriminator string // prefix matched against a record's sub-space label
	SpaceID       string
	RoomID        string
	Position      int // insertion order; lookup ties resolve to the lowest
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Validate checks mapping invariants.
func (m SourceMapping) Validate() error {
	if m.Source == "" {
		return errors.New("catalog: empty mapping source")
	}
	if m.DisplayName == "" {
		return errors.New("catalog: empty mapping display name")
	}
	if m.SpaceID == "" {
		return errors.New("catalog: empty mapping space id")
	}
	return nil
}

// Target returns the identity key the mapping points at.
func (m SourceMapping) Target() string {
	return Identity{SpaceID: m.SpaceID, RoomID: m.RoomID}.Key()
}

// MappingRepository manages mapping persistence.
type MappingRepository interface {
	// ListBySource returns a source's mappings in insertion order.
	ListBySource(ctx context.Context, source string) ([]SourceMapping, error)
	Save(ctx context.Context, m *SourceMapping) error
}
