package catalog

import (
	"fmt"
	"strings"

	"spaceledger/internal/ingestion/normalize"
)

// Resolver maps source listing names to registry identities using the
// mapping snapshot taken at run start. A resolver is built per run and
// never shared across runs.
type Resolver struct {
	mappings   []SourceMapping
	byName     map[string][]int
	ambiguous  map[string]struct{}
	identities map[string]Identity
}

// Resolution reports one lookup. OK false with an empty Note is a plain
// unmapped name; a non-empty Note flags a mapping that exists but points
// at a missing or inactive registry entry.
type Resolution struct {
	Identity Identity
	OK       bool
	Note     string
}

// NewResolver builds a resolver from a source's mappings, the configured
// multi-room listing names, and the registry identity set.
func NewResolver(mappings []SourceMapping, ambiguousNames []string, identities []Identity) *Resolver {
	r := &Resolver{
		mappings:   mappings,
		byName:     make(map[string][]int, len(mappings)),
		ambiguous:  make(map[string]struct{}, len(ambiguousNames)),
		identities: make(map[string]Identity, len(identities)),
	}
	for i, m := range mappings {
		key := normalize.Fold(m.DisplayName)
		r.byName[key] = append(r.byName[key], i)
	}
	for _, n := range ambiguousNames {
		r.ambiguous[normalize.Fold(n)] = struct{}{}
	}
	for _, id := range identities {
		r.identities[id.Key()] = id
	}
	return r
}

// Resolve maps a display name and optional sub-space label to an internal
// identity. Names configured as multi-room listings require a label whose
// prefix matches one mapping's discriminator; guessing is never allowed.
func (r *Resolver) Resolve(displayName, subSpaceLabel string) Resolution {
	key := normalize.Fold(displayName)
	idxs := r.byName[key]
	if len(idxs) == 0 {
		return Resolution{}
	}
	if _, ok := r.ambiguous[key]; ok {
		return r.resolveAmbiguous(idxs, subSpaceLabel)
	}
	// Accidental duplicates outside the configured ambiguous set are an
	// operator mistake; the first mapping by insertion order wins.
	return r.confirm(r.mappings[idxs[0]])
}

func (r *Resolver) resolveAmbiguous(idxs []int, label string) Resolution {
	folded := normalize.Fold(label)
	if folded == "" {
		return Resolution{}
	}
	for _, i := range idxs {
		token := normalize.Fold(r.mappings[i].Discriminator)
		if token != "" && strings.HasPrefix(folded, token) {
			return r.confirm(r.mappings[i])
		}
	}
	return Resolution{}
}

// confirm cross-checks the mapping target against the registry so stale
// mappings surface as diagnostics instead of dangling references.
func (r *Resolver) confirm(m SourceMapping) Resolution {
	id, ok := r.identities[m.Target()]
	if !ok {
		return Resolution{Note: fmt.Sprintf("mapping for %q points at unknown identity %s", m.DisplayName, m.Target())}
	}
	if !id.Active {
		return Resolution{Note: fmt.Sprintf("mapping for %q points at inactive identity %s", m.DisplayName, m.Target())}
	}
	return Resolution{Identity: id, OK: true}
}
