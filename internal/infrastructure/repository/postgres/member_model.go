package postgres

import (
	"fmt"
	"time"

	"github.com/haneulbot/scrim-queue/internal/domain/member"
)

type playerTableModel struct {
	ID               int64      `db:"id"`
	ValorantNickname string     `db:"valorant_nickname"`
	ChzzkNickname    string     `db:"chzzk_nickname"`
	HighestTier      string     `db:"highest_tier"`
	CurrentTier      string     `db:"current_tier"`
	Strikes          int        `db:"strikes"`
	PenaltyEndsAt    *time.Time `db:"penalty_ends_at"`
	Points           int        `db:"points"`
	CreatedAt        time.Time  `db:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at"`
}

type playerInsertModel struct {
	ID               int64  `db:"id"`
	ValorantNickname string `db:"valorant_nickname"`
	ChzzkNickname    string `db:"chzzk_nickname"`
	HighestTier      string `db:"highest_tier"`
	CurrentTier      string `db:"current_tier"`
}

// memberFromRow maps a stored row to the domain type. Rows that fail
// validation surface ErrMalformedRecord so corrupt records are visible at
// the store boundary instead of flowing onward.
func memberFromRow(row playerTableModel) (member.Member, error) {
	m := member.Member{
		ID:               row.ID,
		ValorantNickname: row.ValorantNickname,
		ChzzkNickname:    row.ChzzkNickname,
		HighestTier:      row.HighestTier,
		CurrentTier:      row.CurrentTier,
		Strikes:          row.Strikes,
		PenaltyEndsAt:    row.PenaltyEndsAt,
		Points:           row.Points,
	}
	if err := m.Validate(); err != nil {
		return member.Member{}, fmt.Errorf("%w: player=%d: %v", member.ErrMalformedRecord, row.ID, err)
	}
	return m, nil
}
