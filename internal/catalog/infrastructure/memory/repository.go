// Package memory holds in-memory registry implementations used by tests
// and dry-run imports.
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	catalog "spaceledger/internal/catalog/domain"
)

// SpaceRepository is an in-memory property registry.
type SpaceRepository struct {
	mu     sync.RWMutex
	spaces map[string]catalog.Space
	rooms  map[string]catalog.Room
}

// NewSpaceRepository constructs a repository.
func NewSpaceRepository() *SpaceRepository {
	return &SpaceRepository{
		spaces: make(map[string]catalog.Space),
		rooms:  make(map[string]catalog.Room),
	}
}

// SaveSpace stores a space (overwrites existing).
func (r *SpaceRepository) SaveSpace(ctx context.Context, space *catalog.Space) error {
	_ = ctx
	if space == nil {
		return errors.New("space repo: nil space")
	}
	if err := space.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	r.spaces[space.ID] = *space
	r.mu.Unlock()
	return nil
}

// SaveRoom stores a room (overwrites existing).
func (r *SpaceRepository) SaveRoom(ctx context.Context, room *catalog.Room) error {
	_ = ctx
	if room == nil {
		return errors.New("space repo: nil room")
	}
	if err := room.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	r.rooms[room.ID] = *room
	r.mu.Unlock()
	return nil
}

// ListSpaces returns every space sorted by name.
func (r *SpaceRepository) ListSpaces(ctx context.Context) ([]catalog.Space, error) {
	_ = ctx
	r.mu.RLock()
	result := make([]catalog.Space, 0, len(r.spaces))
	for _, s := range r.spaces {
		result = append(result, s)
	}
	r.mu.RUnlock()
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

// ListRooms returns one space's rooms sorted by name.
func (r *SpaceRepository) ListRooms(ctx context.Context, spaceID string) ([]catalog.Room, error) {
	_ = ctx
	r.mu.RLock()
	var result []catalog.Room
	for _, rm := range r.rooms {
		if rm.SpaceID == spaceID {
			result = append(result, rm)
		}
	}
	r.mu.RUnlock()
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

// ListIdentities flattens spaces and rooms into the resolver's identity
// set.
func (r *SpaceRepository) ListIdentities(ctx context.Context) ([]catalog.Identity, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]catalog.Identity, 0, len(r.spaces)+len(r.rooms))
	for _, s := range r.spaces {
		result = append(result, catalog.Identity{SpaceID: s.ID, Active: s.Active})
	}
	for _, rm := range r.rooms {
		active := rm.Active
		if s, ok := r.spaces[rm.SpaceID]; ok {
			active = active && s.Active
		}
		result = append(result, catalog.Identity{SpaceID: rm.SpaceID, RoomID: rm.ID, Active: active})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Key() < result[j].Key() })
	return result, nil
}

// MappingRepository is an in-memory mapping table.
type MappingRepository struct {
	mu       sync.RWMutex
	mappings []catalog.SourceMapping
}

// NewMappingRepository constructs a repository.
func NewMappingRepository() *MappingRepository {
	return &MappingRepository{}
}

// ListBySource returns a source's mappings in insertion order.
func (r *MappingRepository) ListBySource(ctx context.Context, source string) ([]catalog.SourceMapping, error) {
	_ = ctx
	if source == "" {
		return nil, errors.New("mapping repo: empty source")
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []catalog.SourceMapping
	for _, m := range r.mappings {
		if m.Source == source {
			result = append(result, m)
		}
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].Position < result[j].Position })
	return result, nil
}

// Save appends or replaces a mapping by id.
func (r *MappingRepository) Save(ctx context.Context, mapping *catalog.SourceMapping) error {
	_ = ctx
	if mapping == nil {
		return errors.New("mapping repo: nil mapping")
	}
	if err := mapping.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, m := range r.mappings {
		if m.ID == mapping.ID && mapping.ID != "" {
			r.mappings[i] = *mapping
			return nil
		}
	}
	r.mappings = append(r.mappings, *mapping)
	return nil
}
