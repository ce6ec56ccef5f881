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

const (
	// DefaultFrontGroupSize is the number of members recruited per session.
	DefaultFrontGroupSize = 10
	// defaultOverfetchFactor absorbs stale entries without a second round
	// trip in the common case.
	defaultOverfetchFactor = 3
)

type RankingService struct {
	members    member.Repository
	queue      queue.Repository
	membership Membership
	logger     *logging.Logger

	frontSize int
	overfetch int
	now       func() time.Time
}

func NewRankingService(
	members member.Repository,
	entries queue.Repository,
	membership Membership,
	frontSize int,
	logger *logging.Logger,
) *RankingService {
	if frontSize <= 0 {
		frontSize = DefaultFrontGroupSize
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &RankingService{
		members:    members,
		queue:      entries,
		membership: membership,
		logger:     logger,
		frontSize:  frontSize,
		overfetch:  defaultOverfetchFactor,
		now:        time.Now,
	}
}

type FrontGroup struct {
	Members      []member.Member
	DroppedStale []int64
	Total        int
}

// FrontGroup resolves the next session's participants: the first live
// members of the queue, in enrollment order. Entries whose member left the
// community are deleted on sight (self-healing) and reported in
// DroppedStale. Total is the exact live entry count, independent of the
// over-fetch window.
func (s *RankingService) FrontGroup(ctx context.Context) (FrontGroup, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RankingService.FrontGroup")
	defer span.End()

	live, dropped, err := s.resolveFrontEntries(ctx)
	if err != nil {
		return FrontGroup{}, err
	}

	ids := make([]int64, 0, len(live))
	for _, entry := range live {
		ids = append(ids, entry.MemberID)
	}
	profiles, err := s.members.GetByIDs(ctx, ids)
	if err != nil {
		return FrontGroup{}, fmt.Errorf("get front group members: %w", err)
	}
	byID := make(map[int64]member.Member, len(profiles))
	for _, m := range profiles {
		byID[m.ID] = m
	}

	ordered := make([]member.Member, 0, len(ids))
	for _, id := range ids {
		m, ok := byID[id]
		if !ok {
			// Queued but never registered; surfaced rather than skipped so
			// the records can be repaired.
			return FrontGroup{}, fmt.Errorf("%w: queued member=%d has no profile", member.ErrMalformedRecord, id)
		}
		ordered = append(ordered, m)
	}

	total, err := s.queue.Count(ctx)
	if err != nil {
		return FrontGroup{}, fmt.Errorf("count queue: %w", err)
	}

	return FrontGroup{Members: ordered, DroppedStale: dropped, Total: total}, nil
}

// resolveFrontEntries walks up to overfetch*frontSize entries in enrollment
// order, checking liveness per candidate. Stale entries are removed from the
// store immediately. Exhausting the window before filling the group is not
// an error; the result is just a smaller group.
func (s *RankingService) resolveFrontEntries(ctx context.Context) (live []queue.Entry, dropped []int64, err error) {
	candidates, err := s.queue.ListOrdered(ctx, s.overfetch*s.frontSize)
	if err != nil {
		return nil, nil, fmt.Errorf("list queue candidates: %w", err)
	}

	for _, entry := range candidates {
		if len(live) >= s.frontSize {
			break
		}

		isLive, err := s.membership.IsLiveMember(ctx, entry.MemberID)
		if err != nil {
			return nil, nil, fmt.Errorf("resolve membership for member=%d: %w", entry.MemberID, err)
		}
		if isLive {
			live = append(live, entry)
			continue
		}

		s.logger.InfoContext(ctx, "dropping stale queue entry", "member_id", entry.MemberID)
		if err := s.queue.Remove(ctx, entry.MemberID); err != nil {
			return nil, nil, fmt.Errorf("remove stale entry member=%d: %w", entry.MemberID, err)
		}
		dropped = append(dropped, entry.MemberID)
	}

	return live, dropped, nil
}

type Rank struct {
	// Position is the raw 1-based rank over all entries, stale included.
	Position int
	// FrontOfLine is true when the position falls inside the front group.
	FrontOfLine bool
	// WaitingBehind is the position counted from the end of the front group;
	// zero when FrontOfLine.
	WaitingBehind int
}

// RankOf classifies the member's raw queue position. It deliberately does
// not resolve liveness: stale entries ahead of the caller still count, so
// the reported number can overstate the true position until a front-group
// scan heals them.
func (s *RankingService) RankOf(ctx context.Context, memberID int64) (Rank, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RankingService.RankOf")
	defer span.End()

	if memberID <= 0 {
		return Rank{}, fmt.Errorf("%w: member id is required", ErrInvalidInput)
	}

	entries, err := s.queue.ListOrdered(ctx, 0)
	if err != nil {
		return Rank{}, fmt.Errorf("list queue: %w", err)
	}

	for i, entry := range entries {
		if entry.MemberID != memberID {
			continue
		}
		position := i + 1
		if position <= s.frontSize {
			return Rank{Position: position, FrontOfLine: true}, nil
		}
		return Rank{Position: position, WaitingBehind: position - s.frontSize}, nil
	}

	return Rank{}, fmt.Errorf("%w: member=%d is not in the queue", ErrNotFound, memberID)
}

// PriorityJoin re-enrolls the member ahead of the current head of line. Any
// existing entry is removed first; the new entry is backdated one second
// before the earliest entry (current time when the queue is empty).
//
// Two concurrent priority joins can race on the earliest read and both land
// at the same backdated instant; the seq tiebreaker keeps the order total.
// This is an infrequent manual override and is intentionally not
// serialized.
func (s *RankingService) PriorityJoin(ctx context.Context, memberID int64) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RankingService.PriorityJoin")
	defer span.End()

	if memberID <= 0 {
		return 0, fmt.Errorf("%w: member id is required", ErrInvalidInput)
	}

	_, registered, err := s.members.GetByID(ctx, memberID)
	if err != nil {
		return 0, fmt.Errorf("get member: %w", err)
	}
	if !registered {
		return 0, fmt.Errorf("%w: member=%d", ErrNotRegistered, memberID)
	}

	if err := s.queue.Remove(ctx, memberID); err != nil {
		return 0, fmt.Errorf("remove existing entry: %w", err)
	}

	enrolledAt := s.now().UTC()
	earliest, found, err := s.queue.Earliest(ctx)
	if err != nil {
		return 0, fmt.Errorf("read earliest entry: %w", err)
	}
	if found {
		enrolledAt = earliest.EnrolledAt.Add(-time.Second)
	}

	if err := s.queue.Enqueue(ctx, memberID, enrolledAt); err != nil {
		if errors.Is(err, queue.ErrDuplicateEntry) {
			return 0, fmt.Errorf("%w: member=%d", ErrAlreadyQueued, memberID)
		}
		return 0, fmt.Errorf("enqueue priority entry: %w", err)
	}

	s.logger.InfoContext(ctx, "priority join completed", "member_id", memberID, "enrolled_at", enrolledAt)
	return 1, nil
}
