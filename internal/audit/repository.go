package audit

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const defaultAuditTable = "import_audits"

// Repository is the Postgres audit store.
type Repository struct {
	db    *sql.DB
	table string
}

// NewRepository constructs an audit repository.
func NewRepository(db *sql.DB, opts ...Option) *Repository {
	repo := &Repository{db: db, table: defaultAuditTable}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// Option configures the repository.
type Option func(*Repository)

// WithTable overrides the table name.
func WithTable(table string) Option {
	return func(repo *Repository) {
		if table != "" {
			repo.table = table
		}
	}
}

// Insert writes an audit entry.
func (r *Repository) Insert(ctx context.Context, entry Entry) error {
	if r == nil || r.db == nil {
		return errors.New("audit repo: nil db")
	}
	if entry.ID == "" {
		entry.ID = NewID()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	query := fmt.Sprintf(`
INSERT INTO %s (
	id, source, file_name, content_hash, record_count, status, message, created_at
) VALUES (
	$1, $2, $3, $4, $5, $6, $7, $8
)`, r.table)

	_, err := r.db.ExecContext(ctx, query,
		entry.ID, entry.Source, entry.FileName, entry.ContentHash,
		entry.RecordCount, entry.Status, entry.Message, entry.CreatedAt)
	return err
}

// ListByContentHash returns prior runs over identical content, newest
// first.
func (r *Repository) ListByContentHash(ctx context.Context, hash string) ([]Entry, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("audit repo: nil db")
	}
	if hash == "" {
		return nil, errors.New("audit repo: empty hash")
	}

	query := fmt.Sprintf(`
SELECT id, source, file_name, content_hash, record_count, status, message, created_at
FROM %s
WHERE content_hash = $1
ORDER BY created_at DESC`, r.table)

	return r.queryEntries(ctx, query, hash)
}

// ListRecent returns the latest entries, newest first.
func (r *Repository) ListRecent(ctx context.Context, limit int) ([]Entry, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("audit repo: nil db")
	}
	if limit <= 0 {
		limit = 20
	}

	query := fmt.Sprintf(`
SELECT id, source, file_name, content_hash, record_count, status, message, created_at
FROM %s
ORDER BY created_at DESC
LIMIT $1`, r.table)

	return r.queryEntries(ctx, query, limit)
}

func (r *Repository) queryEntries(ctx context.Context, query string, args ...interface{}) ([]Entry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Entry
	for rows.Next() {
		var entry Entry
		if err := rows.Scan(
			&entry.ID,
			&entry.Source,
			&entry.FileName,
			&entry.ContentHash,
			&entry.RecordCount,
			&entry.Status,
			&entry.Message,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		entry.CreatedAt = entry.CreatedAt.UTC()
		result = append(result, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
