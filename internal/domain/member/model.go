package member

import (
	"errors"
	"fmt"
	"time"
)

// StrikeLimit is the accumulated strike count at which queue joining is barred.
const StrikeLimit = 3

// ErrMalformedRecord marks a stored row that fails required-field validation
// at the store boundary.
var ErrMalformedRecord = errors.New("malformed member record")

// Member is a registered community member with scrim standing and points.
type Member struct {
	ID               int64
	ValorantNickname string
	ChzzkNickname    string
	HighestTier      string
	CurrentTier      string
	Strikes          int
	PenaltyEndsAt    *time.Time
	Points           int
}

func (m Member) Validate() error {
	if m.ID <= 0 {
		return fmt.Errorf("member id is required")
	}
	if m.ValorantNickname == "" {
		return fmt.Errorf("valorant nickname is required")
	}
	if m.ChzzkNickname == "" {
		return fmt.Errorf("chzzk nickname is required")
	}
	if m.HighestTier == "" {
		return fmt.Errorf("highest tier is required")
	}
	if m.CurrentTier == "" {
		return fmt.Errorf("current tier is required")
	}
	if m.Strikes < 0 {
		return fmt.Errorf("strikes cannot be negative")
	}
	if m.Points < 0 {
		return fmt.Errorf("points cannot be negative")
	}

	return nil
}

func (m Member) StruckOut() bool {
	return m.Strikes >= StrikeLimit
}

// PenaltyActiveAt reports whether a penalty window bars the member at the
// given instant. A past or absent window imposes no restriction.
func (m Member) PenaltyActiveAt(now time.Time) bool {
	return m.PenaltyEndsAt != nil && m.PenaltyEndsAt.After(now)
}
