// Package audit records one immutable entry per ingestion run. Entries
// carry a content hash of the raw upload so byte-identical re-uploads are
// detectable before a run starts.
package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
)

// Run outcome statuses. A run with zero inserted rows that still parsed
// is partial, not an error.
const (
	StatusSuccess = "success"
	StatusPartial = "partial"
	StatusError   = "error"
)

// Entry is the persisted record of one ingestion run.
type Entry struct {
	ID          string
	Source      string
	FileName    string
	ContentHash string
	RecordCount int
	Status      string
	Message     string
	CreatedAt   time.Time
}

// Store persists and queries audit entries.
type Store interface {
	Insert(ctx context.Context, entry Entry) error
	// ListByContentHash returns prior runs over identical file content,
	// newest first.
	ListByContentHash(ctx context.Context, hash string) ([]Entry, error)
	// ListRecent returns the latest entries, newest first.
	ListRecent(ctx context.Context, limit int) ([]Entry, error)
}

// NewID generates a random entry id.
func NewID() string {
	return uuid.New().String()
}

// ContentHash digests raw file content for duplicate-upload detection.
// Collision strength is not required here, speed is.
func ContentHash(data []byte) string {
	return fmt.Sprintf("%016x", xxhash.Sum64(data))
}
