package usecase

import (
	"context"
	"fmt"

	"github.com/haneulbot/scrim-queue/internal/domain/member"
	"github.com/haneulbot/scrim-queue/internal/platform/logging"
)

type PointsService struct {
	members member.Repository
	logger  *logging.Logger
}

func NewPointsService(members member.Repository, logger *logging.Logger) *PointsService {
	if logger == nil {
		logger = logging.Default()
	}
	return &PointsService{
		members: members,
		logger:  logger,
	}
}

// Adjust applies a signed delta to the member's point total, clamped at
// zero by the store. Returns the new total.
func (s *PointsService) Adjust(ctx context.Context, memberID int64, delta int) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PointsService.Adjust")
	defer span.End()

	if memberID <= 0 {
		return 0, fmt.Errorf("%w: member id is required", ErrInvalidInput)
	}
	if delta == 0 {
		return 0, fmt.Errorf("%w: point delta cannot be zero", ErrInvalidInput)
	}

	newTotal, found, err := s.members.AdjustPoints(ctx, memberID, delta)
	if err != nil {
		return 0, fmt.Errorf("adjust points: %w", err)
	}
	if !found {
		return 0, fmt.Errorf("%w: member=%d", ErrNotRegistered, memberID)
	}

	s.logger.InfoContext(ctx, "points adjusted", "member_id", memberID, "delta", delta, "total", newTotal)
	return newTotal, nil
}

// RankingTop returns the top members by points descending, ties broken by
// member id ascending (stable).
func (s *PointsService) RankingTop(ctx context.Context, limit int) ([]member.Member, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PointsService.RankingTop")
	defer span.End()

	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive", ErrInvalidInput)
	}

	members, err := s.members.ListByPoints(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list ranking: %w", err)
	}

	return members, nil
}

type PointsRank struct {
	Rank   int
	Points int
}

// RankAndPointsOf reports the member's 1-based rank in the full descending
// points ordering and the raw total. ErrNotRegistered when the member has
// no record.
func (s *PointsService) RankAndPointsOf(ctx context.Context, memberID int64) (PointsRank, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PointsService.RankAndPointsOf")
	defer span.End()

	if memberID <= 0 {
		return PointsRank{}, fmt.Errorf("%w: member id is required", ErrInvalidInput)
	}

	m, found, err := s.members.GetByID(ctx, memberID)
	if err != nil {
		return PointsRank{}, fmt.Errorf("get member: %w", err)
	}
	if !found {
		return PointsRank{}, fmt.Errorf("%w: member=%d", ErrNotRegistered, memberID)
	}

	ahead, err := s.members.CountRankedAhead(ctx, m.Points, m.ID)
	if err != nil {
		return PointsRank{}, fmt.Errorf("count ranked ahead: %w", err)
	}

	return PointsRank{Rank: ahead + 1, Points: m.Points}, nil
}
