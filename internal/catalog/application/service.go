// Package application provisions the space catalog and source mappings.
package application

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	catalog "spaceledger/internal/catalog/domain"
)

// CatalogFile is the yaml document declaring spaces, rooms and the
// per-source listing mappings.
type CatalogFile struct {
	Spaces   []SpaceInput   `yaml:"spaces"`
	Mappings []MappingInput `yaml:"mappings"`
}

// SpaceInput declares one rentable property.
type SpaceInput struct {
	ID      string      `yaml:"id"`
	Name    string      `yaml:"name"`
	Address string      `yaml:"address"`
	Active  *bool       `yaml:"active"`
	Rooms   []RoomInput `yaml:"rooms"`
}

// RoomInput declares one room inside a space.
type RoomInput struct {
	ID     string `yaml:"id"`
	Name   string `yaml:"name"`
	Active *bool  `yaml:"active"`
}

// MappingInput binds one marketplace display name to a space or room.
// Space and Room reference entries of the same file by name.
type MappingInput struct {
	Source        string `yaml:"source"`
	DisplayName   string `yaml:"display_name"`
	Discriminator string `yaml:"discriminator"`
	Space         string `yaml:"space"`
	Room          string `yaml:"room"`
}

// LoadSummary counts what a catalog load wrote.
type LoadSummary struct {
	Spaces   int
	Rooms    int
	Mappings int
}

// Service maintains the catalog.
type Service struct {
	spaces   catalog.SpaceRepository
	mappings catalog.MappingRepository
}

// NewService constructs a catalog service.
func NewService(spaces catalog.SpaceRepository, mappings catalog.MappingRepository) (*Service, error) {
	if spaces == nil {
		return nil, errors.New("catalog: nil space repository")
	}
	if mappings == nil {
		return nil, errors.New("catalog: nil mapping repository")
	}
	return &Service{spaces: spaces, mappings: mappings}, nil
}

// LoadFile parses and stores one catalog declaration. The whole document
// is validated before anything is written; upserts keep reloads
// idempotent.
func (s *Service) LoadFile(ctx context.Context, data []byte) (*LoadSummary, error) {
	var file CatalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("catalog: parse: %w", err)
	}

	spaceIDs := make(map[string]string)           // space name -> id
	roomIDs := make(map[string]map[string]string) // space name -> room name -> id
	for i := range file.Spaces {
		sp := &file.Spaces[i]
		if sp.Name == "" {
			return nil, fmt.Errorf("catalog: space %d: missing name", i+1)
		}
		if _, dup := spaceIDs[sp.Name]; dup {
			return nil, fmt.Errorf("catalog: duplicate space %q", sp.Name)
		}
		if sp.ID == "" {
			sp.ID = stableID("space", sp.Name)
		}
		spaceIDs[sp.Name] = sp.ID
		rooms := make(map[string]string)
		for j := range sp.Rooms {
			rm := &sp.Rooms[j]
			if rm.Name == "" {
				return nil, fmt.Errorf("catalog: space %q room %d: missing name", sp.Name, j+1)
			}
			if _, dup := rooms[rm.Name]; dup {
				return nil, fmt.Errorf("catalog: space %q: duplicate room %q", sp.Name, rm.Name)
			}
			if rm.ID == "" {
				rm.ID = stableID("room", sp.ID+"|"+rm.Name)
			}
			rooms[rm.Name] = rm.ID
		}
		roomIDs[sp.Name] = rooms
	}

	for i, m := range file.Mappings {
		if m.Source == "" || m.DisplayName == "" {
			return nil, fmt.Errorf("catalog: mapping %d: source and display_name required", i+1)
		}
		if m.Space == "" {
			return nil, fmt.Errorf("catalog: mapping %d (%s): space required", i+1, m.DisplayName)
		}
		if _, ok := spaceIDs[m.Space]; !ok {
			return nil, fmt.Errorf("catalog: mapping %d (%s): unknown space %q", i+1, m.DisplayName, m.Space)
		}
		if m.Room != "" {
			if _, ok := roomIDs[m.Space][m.Room]; !ok {
				return nil, fmt.Errorf("catalog: mapping %d (%s): unknown room %q in space %q", i+1, m.DisplayName, m.Room, m.Space)
			}
		}
	}

	summary := &LoadSummary{}
	for _, sp := range file.Spaces {
		space := &catalog.Space{
			ID:      sp.ID,
			Name:    sp.Name,
			Address: sp.Address,
			Active:  activeDefault(sp.Active),
		}
		if err := s.spaces.SaveSpace(ctx, space); err != nil {
			return summary, fmt.Errorf("catalog: save space %q: %w", sp.Name, err)
		}
		summary.Spaces++
		for _, rm := range sp.Rooms {
			room := &catalog.Room{
				ID:      rm.ID,
				SpaceID: sp.ID,
				Name:    rm.Name,
				Active:  activeDefault(rm.Active),
			}
			if err := s.spaces.SaveRoom(ctx, room); err != nil {
				return summary, fmt.Errorf("catalog: save room %q: %w", rm.Name, err)
			}
			summary.Rooms++
		}
	}

	positions := make(map[string]int)
	for _, m := range file.Mappings {
		positions[m.Source]++
		mapping := &catalog.SourceMapping{
			ID:            stableID("mapping", m.Source+"|"+m.DisplayName+"|"+m.Discriminator),
			Source:        m.Source,
			DisplayName:   m.DisplayName,
			Discriminator: m.Discriminator,
			SpaceID:       spaceIDs[m.Space],
			Position:      positions[m.Source],
		}
		if m.Room != "" {
			mapping.RoomID = roomIDs[m.Space][m.Room]
		}
		if err := s.mappings.Save(ctx, mapping); err != nil {
			return summary, fmt.Errorf("catalog: save mapping %q: %w", m.DisplayName, err)
		}
		summary.Mappings++
	}
	return summary, nil
}

// ListMappings returns the stored mappings for one source.
func (s *Service) ListMappings(ctx context.Context, source string) ([]catalog.SourceMapping, error) {
	return s.mappings.ListBySource(ctx, source)
}

// ListSpaces returns the stored spaces.
func (s *Service) ListSpaces(ctx context.Context) ([]catalog.Space, error) {
	return s.spaces.ListSpaces(ctx)
}

func activeDefault(v *bool) bool {
	if v == nil {
		return true
	}
	return *v
}

func stableID(prefix, key string) string {
	sum := sha1.Sum([]byte(key))
	return prefix + "-" + hex.EncodeToString(sum[:8])
}
