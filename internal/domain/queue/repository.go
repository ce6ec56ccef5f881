package queue

import (
	"context"
	"time"
)

// Repository describes waitlist persistence needs from use cases.
type Repository interface {
	// Enqueue inserts a new entry for the member. Returns ErrDuplicateEntry
	// when a live entry already exists.
	Enqueue(ctx context.Context, memberID int64, enrolledAt time.Time) error
	// Remove deletes the member's entry; removing an absent member is not an
	// error.
	Remove(ctx context.Context, memberID int64) error
	// RemoveMany deletes all present entries in one statement; absent ids are
	// silently ignored.
	RemoveMany(ctx context.Context, memberIDs []int64) error

	// ListOrdered returns entries by (enrolled_at, seq) ascending. limit <= 0
	// means no cap.
	ListOrdered(ctx context.Context, limit int) ([]Entry, error)
	Count(ctx context.Context) (int, error)
	Earliest(ctx context.Context) (Entry, bool, error)
}
