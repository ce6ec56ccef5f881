package usecase

import (
	"errors"
	"testing"
	"time"

	"github.com/haneulbot/scrim-queue/internal/domain/member"
	"github.com/haneulbot/scrim-queue/internal/infrastructure/repository/memory"
)

func registeredMember(id int64) member.Member {
	return member.Member{
		ID:               id,
		ValorantNickname: "val",
		ChzzkNickname:    "chzzk",
		HighestTier:      "Immortal 1",
		CurrentTier:      "Diamond 2",
	}
}

func TestQueueService_Join_OrdersByEnrollment(t *testing.T) {
	t.Parallel()

	memberRepo := memory.NewMemberRepository([]member.Member{
		registeredMember(1), registeredMember(2), registeredMember(3),
	})
	queueRepo := memory.NewQueueRepository()
	service := NewQueueService(memberRepo, queueRepo, nil)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := base
	service.now = func() time.Time { v := clock; clock = clock.Add(time.Second); return v }

	for i, id := range []int64{2, 3, 1} {
		result, err := service.Join(t.Context(), id)
		if err != nil {
			t.Fatalf("join member=%d: %v", id, err)
		}
		if result.Position != i+1 {
			t.Fatalf("member=%d expected position %d, got %d", id, i+1, result.Position)
		}
		if result.Total != i+1 {
			t.Fatalf("member=%d expected total %d, got %d", id, i+1, result.Total)
		}
	}
}

func TestQueueService_Join_TimestampTieKeepsBothEntries(t *testing.T) {
	t.Parallel()

	memberRepo := memory.NewMemberRepository([]member.Member{
		registeredMember(1), registeredMember(2),
	})
	queueRepo := memory.NewQueueRepository()
	service := NewQueueService(memberRepo, queueRepo, nil)

	// Both joins observe the same clock reading.
	frozen := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	service.now = func() time.Time { return frozen }

	if _, err := service.Join(t.Context(), 1); err != nil {
		t.Fatalf("join member=1: %v", err)
	}
	if _, err := service.Join(t.Context(), 2); err != nil {
		t.Fatalf("join member=2: %v", err)
	}

	first, queued, err := service.PositionOf(t.Context(), 1)
	if err != nil || !queued {
		t.Fatalf("position of member=1: queued=%v err=%v", queued, err)
	}
	second, queued, err := service.PositionOf(t.Context(), 2)
	if err != nil || !queued {
		t.Fatalf("position of member=2: queued=%v err=%v", queued, err)
	}
	if first != 1 || second != 2 {
		t.Fatalf("insertion order must break the tie: got first=%d second=%d", first, second)
	}
}

func TestQueueService_CheckJoin_DenialOrder(t *testing.T) {
	t.Parallel()

	until := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	struckAndPenalized := registeredMember(2)
	struckAndPenalized.Strikes = member.StrikeLimit
	struckAndPenalized.PenaltyEndsAt = &until

	penalized := registeredMember(3)
	penalized.PenaltyEndsAt = &until

	memberRepo := memory.NewMemberRepository([]member.Member{
		registeredMember(1), struckAndPenalized, penalized,
	})
	queueRepo := memory.NewQueueRepository()
	service := NewQueueService(memberRepo, queueRepo, nil)
	service.now = func() time.Time { return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC) }

	if err := service.CheckJoin(t.Context(), 99); !errors.Is(err, ErrNotRegistered) {
		t.Fatalf("unregistered member: expected ErrNotRegistered, got %v", err)
	}

	// Strike limit wins over the simultaneously active penalty.
	if err := service.CheckJoin(t.Context(), 2); !errors.Is(err, ErrStrikeLimitExceeded) {
		t.Fatalf("struck-out member: expected ErrStrikeLimitExceeded, got %v", err)
	}

	err := service.CheckJoin(t.Context(), 3)
	if !errors.Is(err, ErrPenaltyActive) {
		t.Fatalf("penalized member: expected ErrPenaltyActive, got %v", err)
	}
	var penaltyErr *PenaltyActiveError
	if !errors.As(err, &penaltyErr) {
		t.Fatalf("expected PenaltyActiveError, got %T", err)
	}
	if !penaltyErr.Until.Equal(until) {
		t.Fatalf("expected penalty window end %v, got %v", until, penaltyErr.Until)
	}

	if _, err := service.Join(t.Context(), 1); err != nil {
		t.Fatalf("join member=1: %v", err)
	}
	if err := service.CheckJoin(t.Context(), 1); !errors.Is(err, ErrAlreadyQueued) {
		t.Fatalf("queued member: expected ErrAlreadyQueued, got %v", err)
	}
}

func TestQueueService_CheckJoin_ExpiredPenaltyDoesNotBar(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	expired := registeredMember(1)
	expiredAt := now.Add(-time.Minute)
	expired.PenaltyEndsAt = &expiredAt

	boundary := registeredMember(2)
	boundaryAt := now
	boundary.PenaltyEndsAt = &boundaryAt

	memberRepo := memory.NewMemberRepository([]member.Member{expired, boundary})
	service := NewQueueService(memberRepo, memory.NewQueueRepository(), nil)
	service.now = func() time.Time { return now }

	if err := service.CheckJoin(t.Context(), 1); err != nil {
		t.Fatalf("expired penalty must not bar join: %v", err)
	}
	// A window ending exactly now is over.
	if err := service.CheckJoin(t.Context(), 2); err != nil {
		t.Fatalf("penalty ending at the current instant must not bar join: %v", err)
	}
}

func TestQueueService_Leave_AbsentMemberIsNoop(t *testing.T) {
	t.Parallel()

	memberRepo := memory.NewMemberRepository([]member.Member{registeredMember(1)})
	service := NewQueueService(memberRepo, memory.NewQueueRepository(), nil)

	if err := service.Leave(t.Context(), 1); err != nil {
		t.Fatalf("leave while not queued: %v", err)
	}

	if _, err := service.Join(t.Context(), 1); err != nil {
		t.Fatalf("join: %v", err)
	}
	if err := service.Leave(t.Context(), 1); err != nil {
		t.Fatalf("leave: %v", err)
	}
	if _, queued, err := service.PositionOf(t.Context(), 1); err != nil || queued {
		t.Fatalf("expected member gone after leave: queued=%v err=%v", queued, err)
	}
}

func TestQueueService_Kick_RequiresQueuedMember(t *testing.T) {
	t.Parallel()

	memberRepo := memory.NewMemberRepository([]member.Member{registeredMember(1)})
	service := NewQueueService(memberRepo, memory.NewQueueRepository(), nil)

	if err := service.Kick(t.Context(), 1, nil); !errors.Is(err, ErrNotFound) {
		t.Fatalf("kick of unqueued member: expected ErrNotFound, got %v", err)
	}
}

func TestQueueService_Kick_WithPenalty(t *testing.T) {
	t.Parallel()

	memberRepo := memory.NewMemberRepository([]member.Member{registeredMember(1)})
	service := NewQueueService(memberRepo, memory.NewQueueRepository(), nil)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	service.now = func() time.Time { return now }

	if _, err := service.Join(t.Context(), 1); err != nil {
		t.Fatalf("join: %v", err)
	}
	if err := service.Kick(t.Context(), 1, &KickPenalty{AddStrike: true, Timeout: time.Hour}); err != nil {
		t.Fatalf("kick: %v", err)
	}

	if _, queued, err := service.PositionOf(t.Context(), 1); err != nil || queued {
		t.Fatalf("expected member removed by kick: queued=%v err=%v", queued, err)
	}

	m, found, err := memberRepo.GetByID(t.Context(), 1)
	if err != nil || !found {
		t.Fatalf("get member: found=%v err=%v", found, err)
	}
	if m.Strikes != 1 {
		t.Fatalf("expected 1 strike after kick, got %d", m.Strikes)
	}
	if m.PenaltyEndsAt == nil || !m.PenaltyEndsAt.Equal(now.Add(time.Hour)) {
		t.Fatalf("expected penalty window until %v, got %v", now.Add(time.Hour), m.PenaltyEndsAt)
	}

	// While the window is open the member is barred; afterwards they are not.
	if err := service.CheckJoin(t.Context(), 1); !errors.Is(err, ErrPenaltyActive) {
		t.Fatalf("expected ErrPenaltyActive during kick penalty, got %v", err)
	}
	service.now = func() time.Time { return now.Add(2 * time.Hour) }
	if err := service.CheckJoin(t.Context(), 1); err != nil {
		t.Fatalf("expected join allowed after penalty expiry: %v", err)
	}
}
