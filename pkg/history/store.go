package history

import (
	"context"
	"time"
)

// Store persists run records.
type Store interface {
	// Save persists a single record.
	Save(ctx context.Context, record *Record) error

	// Recent returns up to limit records, newest first.
	Recent(ctx context.Context, limit int) ([]*Record, error)

	// Prune deletes records created before olderThan and returns the
	// number of records removed.
	Prune(ctx context.Context, olderThan time.Time) (int64, error)

	// Close releases the store's resources.
	Close() error
}
