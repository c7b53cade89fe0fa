// Package memory holds the in-memory booking store used by tests and
// dry-run imports.
package memory

import (
	"context"
	"sync"

	booking "spaceledger/internal/booking/domain"
)

// BookingRepository is an in-memory booking store. It mirrors the
// Postgres behavior of skipping rows whose external id already exists.
type BookingRepository struct {
	mu       sync.RWMutex
	bookings []booking.Booking
	ids      map[string]struct{}
}

// NewBookingRepository constructs a repository.
func NewBookingRepository() *BookingRepository {
	return &BookingRepository{ids: make(map[string]struct{})}
}

// InsertBatch stores bookings in order, returning how many were added.
func (r *BookingRepository) InsertBatch(ctx context.Context, bookings []booking.Booking) (int, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	inserted := 0
	for _, b := range bookings {
		if err := b.Validate(); err != nil {
			return inserted, err
		}
		if b.ExternalID != "" {
			if _, ok := r.ids[b.ExternalID]; ok {
				continue
			}
			r.ids[b.ExternalID] = struct{}{}
		}
		r.bookings = append(r.bookings, b)
		inserted++
	}
	return inserted, nil
}

// ListExternalIDs returns every stored external id.
func (r *BookingRepository) ListExternalIDs(ctx context.Context) (map[string]struct{}, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make(map[string]struct{}, len(r.ids))
	for id := range r.ids {
		ids[id] = struct{}{}
	}
	return ids, nil
}

// All returns a copy of the stored bookings in insertion order.
func (r *BookingRepository) All() []booking.Booking {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]booking.Booking, len(r.bookings))
	copy(out, r.bookings)
	return out
}
