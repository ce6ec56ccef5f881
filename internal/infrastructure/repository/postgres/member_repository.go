package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/haneulbot/scrim-queue/internal/domain/member"
	qb "github.com/haneulbot/scrim-queue/internal/platform/querybuilder"
)

type MemberRepository struct {
	db *sqlx.DB
}

func NewMemberRepository(db *sqlx.DB) *MemberRepository {
	return &MemberRepository{db: db}
}

func (r *MemberRepository) UpsertProfile(ctx context.Context, m member.Member) error {
	insertModel := playerInsertModel{
		ID:               m.ID,
		ValorantNickname: m.ValorantNickname,
		ChzzkNickname:    m.ChzzkNickname,
		HighestTier:      m.HighestTier,
		CurrentTier:      m.CurrentTier,
	}

	// Profile columns only; strikes, penalty_ends_at and points are
	// administrative state and must survive re-registration.
	query, args, err := qb.InsertModel("players", insertModel, `ON CONFLICT (id)
DO UPDATE SET
    valorant_nickname = EXCLUDED.valorant_nickname,
    chzzk_nickname = EXCLUDED.chzzk_nickname,
    highest_tier = EXCLUDED.highest_tier,
    current_tier = EXCLUDED.current_tier,
    updated_at = NOW()`)
	if err != nil {
		return fmt.Errorf("build upsert player query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert player: %w", err)
	}

	return nil
}

func (r *MemberRepository) GetByID(ctx context.Context, id int64) (member.Member, bool, error) {
	query, args, err := qb.Select("*").From("players").
		Where(qb.Eq("id", id)).
		Limit(1).
		ToSQL()
	if err != nil {
		return member.Member{}, false, fmt.Errorf("build get player query: %w", err)
	}

	var row playerTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return member.Member{}, false, nil
		}
		return member.Member{}, false, fmt.Errorf("get player: %w", err)
	}

	m, err := memberFromRow(row)
	if err != nil {
		return member.Member{}, false, err
	}
	return m, true, nil
}

func (r *MemberRepository) GetByIDs(ctx context.Context, ids []int64) ([]member.Member, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	values := make([]any, 0, len(ids))
	for _, id := range ids {
		values = append(values, id)
	}
	query, args, err := qb.Select("*").From("players").
		Where(qb.In("id", values)).
		OrderBy("id ASC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build get players query: %w", err)
	}

	var rows []playerTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("get players: %w", err)
	}

	out := make([]member.Member, 0, len(rows))
	for _, row := range rows {
		m, err := memberFromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

// AdjustPoints applies the delta as a single store-side increment clamped
// at zero, so concurrent awards never lose updates.
func (r *MemberRepository) AdjustPoints(ctx context.Context, id int64, delta int) (int, bool, error) {
	return r.adjustCounter(ctx, id, "points", delta)
}

func (r *MemberRepository) AdjustStrikes(ctx context.Context, id int64, delta int) (int, bool, error) {
	return r.adjustCounter(ctx, id, "strikes", delta)
}

func buildAdjustCounterQuery(column string, id int64, delta int) (string, []any, error) {
	return qb.Update("players").
		SetExpr(column, fmt.Sprintf("GREATEST(%s + ?, 0)", column), delta).
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("id", id)).
		Suffix("RETURNING " + column).
		ToSQL()
}

func (r *MemberRepository) adjustCounter(ctx context.Context, id int64, column string, delta int) (int, bool, error) {
	query, args, err := buildAdjustCounterQuery(column, id, delta)
	if err != nil {
		return 0, false, fmt.Errorf("build adjust %s query: %w", column, err)
	}

	var newTotal int
	if err := r.db.GetContext(ctx, &newTotal, query, args...); err != nil {
		if isNotFound(err) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("adjust %s: %w", column, err)
	}

	return newTotal, true, nil
}

func (r *MemberRepository) SetStrikes(ctx context.Context, id int64, strikes int) (bool, error) {
	if strikes < 0 {
		strikes = 0
	}
	return r.setColumn(ctx, id, "strikes", strikes)
}

func (r *MemberRepository) SetPenaltyEndsAt(ctx context.Context, id int64, until *time.Time) (bool, error) {
	return r.setColumn(ctx, id, "penalty_ends_at", until)
}

func (r *MemberRepository) setColumn(ctx context.Context, id int64, column string, value any) (bool, error) {
	query, args, err := qb.Update("players").
		Set(column, value).
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("id", id)).
		Suffix("RETURNING id").
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build set %s query: %w", column, err)
	}

	var updatedID int64
	if err := r.db.GetContext(ctx, &updatedID, query, args...); err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("set %s: %w", column, err)
	}

	return true, nil
}

func (r *MemberRepository) ListByPoints(ctx context.Context, limit int) ([]member.Member, error) {
	builder := qb.Select("*").From("players").
		OrderBy("points DESC", "id ASC")
	if limit > 0 {
		builder = builder.Limit(limit)
	}
	query, args, err := builder.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list players by points query: %w", err)
	}

	var rows []playerTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list players by points: %w", err)
	}

	out := make([]member.Member, 0, len(rows))
	for _, row := range rows {
		m, err := memberFromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func buildCountRankedAheadQuery(points int, id int64) (string, []any, error) {
	return qb.Select("COUNT(*)").From("players").
		Where(qb.Expr("(points > ? OR (points = ? AND id < ?))", points, points, id)).
		ToSQL()
}

func (r *MemberRepository) CountRankedAhead(ctx context.Context, points int, id int64) (int, error) {
	query, args, err := buildCountRankedAheadQuery(points, id)
	if err != nil {
		return 0, fmt.Errorf("build count ranked ahead query: %w", err)
	}

	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("count ranked ahead: %w", err)
	}

	return count, nil
}
