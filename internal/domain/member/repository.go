package member

import (
	"context"
	"time"
)

// Repository describes member persistence needs from use cases.
//
// Point and strike mutations are store-side atomic increments clamped at
// zero, so concurrent adjustments never lose updates or go negative.
type Repository interface {
	UpsertProfile(ctx context.Context, m Member) error
	GetByID(ctx context.Context, id int64) (Member, bool, error)
	GetByIDs(ctx context.Context, ids []int64) ([]Member, error)

	AdjustPoints(ctx context.Context, id int64, delta int) (newTotal int, found bool, err error)
	AdjustStrikes(ctx context.Context, id int64, delta int) (newTotal int, found bool, err error)
	SetStrikes(ctx context.Context, id int64, strikes int) (found bool, err error)
	SetPenaltyEndsAt(ctx context.Context, id int64, until *time.Time) (found bool, err error)

	// ListByPoints returns members ordered by points descending, ties broken
	// by member id ascending. limit <= 0 means no cap.
	ListByPoints(ctx context.Context, limit int) ([]Member, error)
	// CountRankedAhead counts members strictly ahead of the given member in
	// the ListByPoints ordering.
	CountRankedAhead(ctx context.Context, points int, id int64) (int, error)
}
