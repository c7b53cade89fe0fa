// Package sources holds one parser per supported marketplace export
// format plus a generic fallback for sources without a dedicated layout.
// Parsers turn decoded CSV text into canonical bookings and never abort
// on a malformed row; structural problems with the file itself are the
// only hard failures.
package sources

import (
	"fmt"
	"strconv"
	"strings"

	booking "spaceledger/internal/booking/domain"
	"spaceledger/internal/ingestion/normalize"
)

// Parser handles one export format. Parsers are plain values carrying
// their behavior in function fields, so a registry entry is just data.
type Parser struct {
	// Source is the registry key, e.g. "instabase".
	Source string
	// Label is the operator-facing description of the format.
	Label string
	// ValidateHeaders reports whether a header row looks like this format.
	ValidateHeaders func(headers []string) bool
	// Parse converts decoded file content into canonical bookings.
	// Row-scoped problems land in the result; a non-nil error means the
	// file is structurally unusable and no rows were processed.
	Parse func(content string) (ParseResult, error)
}

// ParseResult carries everything one parse produced.
type ParseResult struct {
	Bookings []booking.Booking
	Errors   []RowError
	Warnings []Warning
}

// RowError describes one dropped row.
type RowError struct {
	Row     int
	Message string
}

// Warning flags an unusual but accepted condition on a row.
type Warning struct {
	Row     int
	Message string
}

// Config tunes source-specific heuristics from operator configuration.
type Config struct {
	// SpacemarketLocations extend the built-in venue rules used to pull a
	// listing name out of free-text SpaceMarket titles.
	SpacemarketLocations []LocationRule
}

// LocationRule maps a substring of a listing title to a canonical venue
// name.
type LocationRule struct {
	Contains string
	Name     string
}

// Registry maps source ids to parsers and keeps registration order for
// enumeration.
type Registry struct {
	order   []string
	parsers map[string]Parser
}

// NewRegistry builds a registry from parsers in the given order.
func NewRegistry(parsers ...Parser) *Registry {
	r := &Registry{parsers: make(map[string]Parser)}
	for _, p := range parsers {
		r.Register(p)
	}
	return r
}

// Register adds or replaces a parser under its source id.
func (r *Registry) Register(p Parser) {
	if _, ok := r.parsers[p.Source]; !ok {
		r.order = append(r.order, p.Source)
	}
	r.parsers[p.Source] = p
}

// Get returns the parser registered under source.
func (r *Registry) Get(source string) (Parser, bool) {
	p, ok := r.parsers[source]
	return p, ok
}

// Resolve returns the parser for source, falling back to the generic
// parser so new marketplaces can be ingested before a dedicated format
// exists.
func (r *Registry) Resolve(source string) (Parser, bool) {
	if p, ok := r.parsers[source]; ok {
		return p, true
	}
	p, ok := r.parsers[SourceGeneric]
	return p, ok
}

// All returns every parser in registration order.
func (r *Registry) All() []Parser {
	out := make([]Parser, 0, len(r.order))
	for _, s := range r.order {
		out = append(out, r.parsers[s])
	}
	return out
}

// DefaultRegistry wires every known marketplace format plus the generic
// fallback.
func DefaultRegistry(cfg Config) *Registry {
	return NewRegistry(
		NewInstabaseParser(),
		NewSpacemarketParser(cfg.SpacemarketLocations),
		NewSpaceeParser(),
		NewGenericParser(),
	)
}

// containsAll reports whether every required token appears as a substring
// of at least one header. Comparison runs on folded text.
func containsAll(headers []string, required []string) bool {
	folded := make([]string, len(headers))
	for i, h := range headers {
		folded[i] = normalize.Fold(h)
	}
	for _, want := range required {
		found := false
		for _, h := range folded {
			if strings.Contains(h, want) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// optionalAmount parses a yen amount, keeping absence distinct from zero.
func optionalAmount(raw string) *int64 {
	if normalize.Fold(raw) == "" {
		return nil
	}
	v := normalize.Amount(raw)
	return &v
}

// intField parses a small integer field, zero on anything unparseable.
func intField(raw string) int {
	v, err := strconv.Atoi(normalize.Fold(raw))
	if err != nil {
		return 0
	}
	return v
}

// clampNegativeGross zeroes a negative gross amount. Refund rows carry
// negative totals on some sources; the canonical record requires a
// non-negative gross.
func clampNegativeGross(row int, gross int64, warnings []Warning) (int64, []Warning) {
	if gross >= 0 {
		return gross, warnings
	}
	warnings = append(warnings, Warning{
		Row:     row,
		Message: fmt.Sprintf("negative gross amount %d clamped to 0", gross),
	})
	return 0, warnings
}

// fillDerivedAmounts completes net or commission when the source itemizes
// only one of the pair.
func fillDerivedAmounts(b *booking.Booking) {
	if b.NetAmount != nil && b.Commission == nil {
		c := b.GrossAmount - *b.NetAmount
		b.Commission = &c
	}
	if b.NetAmount == nil && b.Commission != nil {
		n := b.GrossAmount - *b.Commission
		b.NetAmount = &n
	}
}

// amountDivergence returns a warning when net plus commission moves more
// than one yen away from gross. One yen of slack absorbs the per-item
// rounding some sources apply.
func amountDivergence(row int, gross int64, net, commission *int64) *Warning {
	if net == nil || commission == nil {
		return nil
	}
	diff := gross - (*net + *commission)
	if diff < 0 {
		diff = -diff
	}
	if diff <= 1 {
		return nil
	}
	return &Warning{
		Row:     row,
		Message: fmt.Sprintf("net %d + commission %d does not reconcile with gross %d", *net, *commission, gross),
	}
}
