package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/haneulbot/scrim-queue/internal/domain/member"
	"github.com/haneulbot/scrim-queue/internal/domain/queue"
	"github.com/haneulbot/scrim-queue/internal/platform/logging"
)

type QueueService struct {
	members member.Repository
	queue   queue.Repository
	logger  *logging.Logger
	now     func() time.Time
}

func NewQueueService(members member.Repository, entries queue.Repository, logger *logging.Logger) *QueueService {
	if logger == nil {
		logger = logging.Default()
	}
	return &QueueService{
		members: members,
		queue:   entries,
		logger:  logger,
		now:     time.Now,
	}
}

// CheckJoin is the eligibility gate. Checks run in a fixed order and the
// first failure wins: registration, strike limit, penalty window, duplicate
// entry. The ordering is a contract; it yields the most actionable denial
// first. Pure read, no side effects.
func (s *QueueService) CheckJoin(ctx context.Context, memberID int64) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.QueueService.CheckJoin")
	defer span.End()

	if memberID <= 0 {
		return fmt.Errorf("%w: member id is required", ErrInvalidInput)
	}

	m, found, err := s.members.GetByID(ctx, memberID)
	if err != nil {
		return fmt.Errorf("get member: %w", err)
	}
	if !found {
		return fmt.Errorf("%w: member=%d", ErrNotRegistered, memberID)
	}
	if m.StruckOut() {
		return fmt.Errorf("%w: member=%d strikes=%d", ErrStrikeLimitExceeded, memberID, m.Strikes)
	}
	if m.PenaltyActiveAt(s.now().UTC()) {
		return &PenaltyActiveError{Until: *m.PenaltyEndsAt}
	}

	_, queued, err := s.positionOf(ctx, memberID)
	if err != nil {
		return err
	}
	if queued {
		return fmt.Errorf("%w: member=%d", ErrAlreadyQueued, memberID)
	}

	return nil
}

type JoinResult struct {
	Position int
	Total    int
}

// Join runs the eligibility gate and enrolls the member at the tail of the
// queue. The gate's duplicate pre-check is advisory; the store's unique
// constraint is the real guard, so a lost race still comes back as
// ErrAlreadyQueued.
func (s *QueueService) Join(ctx context.Context, memberID int64) (JoinResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.QueueService.Join")
	defer span.End()

	if err := s.CheckJoin(ctx, memberID); err != nil {
		return JoinResult{}, err
	}

	if err := s.queue.Enqueue(ctx, memberID, s.now().UTC()); err != nil {
		if errors.Is(err, queue.ErrDuplicateEntry) {
			return JoinResult{}, fmt.Errorf("%w: member=%d", ErrAlreadyQueued, memberID)
		}
		return JoinResult{}, fmt.Errorf("enqueue member: %w", err)
	}

	position, _, err := s.positionOf(ctx, memberID)
	if err != nil {
		return JoinResult{}, err
	}
	total, err := s.queue.Count(ctx)
	if err != nil {
		return JoinResult{}, fmt.Errorf("count queue: %w", err)
	}

	s.logger.InfoContext(ctx, "member joined queue", "member_id", memberID, "position", position, "total", total)
	return JoinResult{Position: position, Total: total}, nil
}

// Leave removes the member's own entry. Leaving while not queued is not an
// error.
func (s *QueueService) Leave(ctx context.Context, memberID int64) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.QueueService.Leave")
	defer span.End()

	if memberID <= 0 {
		return fmt.Errorf("%w: member id is required", ErrInvalidInput)
	}

	if err := s.queue.Remove(ctx, memberID); err != nil {
		return fmt.Errorf("remove queue entry: %w", err)
	}

	return nil
}

type KickPenalty struct {
	AddStrike bool
	Timeout   time.Duration
}

// Kick removes a member from the queue by administrative action, optionally
// recording a strike and opening a penalty window.
func (s *QueueService) Kick(ctx context.Context, memberID int64, penalty *KickPenalty) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.QueueService.Kick")
	defer span.End()

	if memberID <= 0 {
		return fmt.Errorf("%w: member id is required", ErrInvalidInput)
	}

	_, queued, err := s.positionOf(ctx, memberID)
	if err != nil {
		return err
	}
	if !queued {
		return fmt.Errorf("%w: member=%d is not in the queue", ErrNotFound, memberID)
	}

	if err := s.queue.Remove(ctx, memberID); err != nil {
		return fmt.Errorf("remove queue entry: %w", err)
	}

	if penalty == nil {
		s.logger.InfoContext(ctx, "member kicked from queue", "member_id", memberID)
		return nil
	}

	if penalty.AddStrike {
		if _, _, err := s.members.AdjustStrikes(ctx, memberID, 1); err != nil {
			return fmt.Errorf("record kick strike: %w", err)
		}
	}
	if penalty.Timeout > 0 {
		until := s.now().UTC().Add(penalty.Timeout)
		if _, err := s.members.SetPenaltyEndsAt(ctx, memberID, &until); err != nil {
			return fmt.Errorf("open penalty window: %w", err)
		}
	}

	s.logger.InfoContext(ctx, "member kicked from queue with penalty",
		"member_id", memberID, "strike", penalty.AddStrike, "timeout", penalty.Timeout)
	return nil
}

// PositionOf reports the member's 1-based rank in raw enrollment order.
func (s *QueueService) PositionOf(ctx context.Context, memberID int64) (int, bool, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.QueueService.PositionOf")
	defer span.End()

	if memberID <= 0 {
		return 0, false, fmt.Errorf("%w: member id is required", ErrInvalidInput)
	}

	return s.positionOf(ctx, memberID)
}

func (s *QueueService) positionOf(ctx context.Context, memberID int64) (int, bool, error) {
	entries, err := s.queue.ListOrdered(ctx, 0)
	if err != nil {
		return 0, false, fmt.Errorf("list queue: %w", err)
	}

	for i, entry := range entries {
		if entry.MemberID == memberID {
			return i + 1, true, nil
		}
	}

	return 0, false, nil
}
