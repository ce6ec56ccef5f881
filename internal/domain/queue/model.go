package queue

import (
	"errors"
	"time"
)

// ErrDuplicateEntry is returned by stores when a member already has a live
// entry. The unique constraint at the store is the real duplicate guard;
// eligibility pre-checks are advisory only.
var ErrDuplicateEntry = errors.New("queue entry already exists")

// Entry is one member's live membership in the waitlist.
//
// The queue is a strict total order by (EnrolledAt, Seq); Seq is a
// store-assigned monotonic tiebreaker for colliding timestamps.
type Entry struct {
	MemberID   int64
	EnrolledAt time.Time
	Seq        int64
}
