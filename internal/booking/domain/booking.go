package booking

import (
	"context"
	"errors"
	"regexp"
)

// Status is the canonical lifecycle state of a booking.
type Status string

const (
	StatusConfirmed Status = "confirmed"
	StatusPending   Status = "pending"
	StatusCancelled Status = "cancelled"
)

var (
	// ErrEmptySource is returned when a booking has no source id.
	ErrEmptySource = errors.New("booking: empty source")
	// ErrEmptyDisplayName is returned when a booking has no listing name.
	ErrEmptyDisplayName = errors.New("booking: empty display name")
	// ErrInvalidUsageDate is returned when the usage date is not canonical.
	ErrInvalidUsageDate = errors.New("booking: invalid usage date")
	// ErrNegativeAmount is returned when the gross amount is negative.
	ErrNegativeAmount = errors.New("booking: negative amount")
	// ErrInvalidStatus is returned for an unknown lifecycle status.
	ErrInvalidStatus = errors.New("booking: invalid status")
)

var canonicalDateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Booking is one revenue row extracted from a marketplace export,
// normalized into the canonical shape shared by every source.
type Booking struct {
	Source        string
	ExternalID    string // empty when the source has no stable reservation id
	ImportID      string // audit run that inserted the row
	SpaceID       string // set by identity resolution
	RoomID        string
	DisplayName   string // listing name exactly as the source shows it
	SubSpaceLabel string // room or plan discriminator, may be empty
	BookingDate   string // YYYY-MM-DD, falls back to UsageDate
	UsageDate     string // YYYY-MM-DD
	StartTime     string // HH:MM, empty when unknown
	EndTime       string
	DurationMin   int
	GrossAmount   int64 // yen
	NetAmount     *int64
	Commission    *int64
	GuestName     string
	GuestCount    int
	Purpose       string
	PurposeDetail string
	Status        Status
	Row           int // physical record number in the source file
}

// Validate checks the invariants every persisted booking must hold.
func (b Booking) Validate() error {
	if b.Source == "" {
		return ErrEmptySource
	}
	if b.DisplayName == "" {
		return ErrEmptyDisplayName
	}
	if !canonicalDateRe.MatchString(b.UsageDate) {
		return ErrInvalidUsageDate
	}
	if b.GrossAmount < 0 {
		return ErrNegativeAmount
	}
	switch b.Status {
	case StatusConfirmed, StatusPending, StatusCancelled:
	default:
		return ErrInvalidStatus
	}
	return nil
}

// Repository manages booking persistence.
type Repository interface {
	// InsertBatch persists bookings in order and reports how many rows
	// were actually inserted.
	InsertBatch(ctx context.Context, bookings []Booking) (int, error)
	// ListExternalIDs returns every external reservation id already stored.
	ListExternalIDs(ctx context.Context) (map[string]struct{}, error)
}
