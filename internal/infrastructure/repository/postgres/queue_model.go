package postgres

import (
	"time"

	"github.com/haneulbot/scrim-queue/internal/domain/queue"
)

type queueEntryTableModel struct {
	ID         int64     `db:"id"`
	PlayerID   int64     `db:"player_id"`
	EnrolledAt time.Time `db:"enrolled_at"`
}

func queueEntryFromRow(row queueEntryTableModel) queue.Entry {
	return queue.Entry{
		MemberID:   row.PlayerID,
		EnrolledAt: row.EnrolledAt,
		Seq:        row.ID,
	}
}
