package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/haneulbot/scrim-queue/internal/domain/queue"
	qb "github.com/haneulbot/scrim-queue/internal/platform/querybuilder"
)

// QueueRepository persists the waitlist. The bigserial id doubles as the
// enrollment tiebreaker, and the unique constraint on player_id is the
// duplicate-entry guard of record.
type QueueRepository struct {
	db *sqlx.DB
}

func NewQueueRepository(db *sqlx.DB) *QueueRepository {
	return &QueueRepository{db: db}
}

func (r *QueueRepository) Enqueue(ctx context.Context, memberID int64, enrolledAt time.Time) error {
	query, args, err := qb.InsertInto("queue_entries").
		Columns("player_id", "enrolled_at").
		Values(memberID, enrolledAt).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build enqueue query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: player=%d", queue.ErrDuplicateEntry, memberID)
		}
		return fmt.Errorf("enqueue player: %w", err)
	}

	return nil
}

func (r *QueueRepository) Remove(ctx context.Context, memberID int64) error {
	query, args, err := qb.DeleteFrom("queue_entries").
		Where(qb.Eq("player_id", memberID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build remove entry query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("remove queue entry: %w", err)
	}

	return nil
}

func (r *QueueRepository) RemoveMany(ctx context.Context, memberIDs []int64) error {
	if len(memberIDs) == 0 {
		return nil
	}

	values := make([]any, 0, len(memberIDs))
	for _, id := range memberIDs {
		values = append(values, id)
	}
	query, args, err := qb.DeleteFrom("queue_entries").
		Where(qb.In("player_id", values)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build remove entries query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("remove queue entries: %w", err)
	}

	return nil
}

func (r *QueueRepository) ListOrdered(ctx context.Context, limit int) ([]queue.Entry, error) {
	builder := qb.Select("*").From("queue_entries").
		OrderBy("enrolled_at ASC", "id ASC")
	if limit > 0 {
		builder = builder.Limit(limit)
	}
	query, args, err := builder.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list queue query: %w", err)
	}

	var rows []queueEntryTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list queue entries: %w", err)
	}

	out := make([]queue.Entry, 0, len(rows))
	for _, row := range rows {
		out = append(out, queueEntryFromRow(row))
	}
	return out, nil
}

func (r *QueueRepository) Count(ctx context.Context) (int, error) {
	query, args, err := qb.Select("COUNT(*)").From("queue_entries").ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build count queue query: %w", err)
	}

	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("count queue entries: %w", err)
	}

	return count, nil
}

func (r *QueueRepository) Earliest(ctx context.Context) (queue.Entry, bool, error) {
	query, args, err := qb.Select("*").From("queue_entries").
		OrderBy("enrolled_at ASC", "id ASC").
		Limit(1).
		ToSQL()
	if err != nil {
		return queue.Entry{}, false, fmt.Errorf("build earliest entry query: %w", err)
	}

	var row queueEntryTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return queue.Entry{}, false, nil
		}
		return queue.Entry{}, false, fmt.Errorf("get earliest entry: %w", err)
	}

	return queueEntryFromRow(row), true, nil
}
