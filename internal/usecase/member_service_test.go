package usecase

import (
	"errors"
	"testing"
	"time"

	"github.com/haneulbot/scrim-queue/internal/domain/member"
	"github.com/haneulbot/scrim-queue/internal/infrastructure/repository/memory"
)

func TestMemberService_Register(t *testing.T) {
	t.Parallel()

	service := NewMemberService(memory.NewMemberRepository(nil), nil)

	got, err := service.Register(t.Context(), RegisterInput{
		MemberID:         42,
		ValorantNickname: "  haneul#KR1  ",
		ChzzkNickname:    "haneul",
		HighestTier:      "Immortal 2",
		CurrentTier:      "Ascendant 3",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if got.ValorantNickname != "haneul#KR1" {
		t.Fatalf("expected trimmed nickname, got %q", got.ValorantNickname)
	}
	if got.Strikes != 0 || got.Points != 0 {
		t.Fatalf("fresh registration must start clean: %+v", got)
	}
}

func TestMemberService_Register_ValidatesProfile(t *testing.T) {
	t.Parallel()

	service := NewMemberService(memory.NewMemberRepository(nil), nil)

	cases := []struct {
		name  string
		input RegisterInput
	}{
		{"missing id", RegisterInput{ValorantNickname: "a", ChzzkNickname: "b", HighestTier: "c", CurrentTier: "d"}},
		{"missing valorant nickname", RegisterInput{MemberID: 1, ChzzkNickname: "b", HighestTier: "c", CurrentTier: "d"}},
		{"missing chzzk nickname", RegisterInput{MemberID: 1, ValorantNickname: "a", HighestTier: "c", CurrentTier: "d"}},
		{"missing highest tier", RegisterInput{MemberID: 1, ValorantNickname: "a", ChzzkNickname: "b", CurrentTier: "d"}},
		{"missing current tier", RegisterInput{MemberID: 1, ValorantNickname: "a", ChzzkNickname: "b", HighestTier: "c"}},
		{"whitespace only", RegisterInput{MemberID: 1, ValorantNickname: "   ", ChzzkNickname: "b", HighestTier: "c", CurrentTier: "d"}},
	}
	for _, tc := range cases {
		if _, err := service.Register(t.Context(), tc.input); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("%s: expected ErrInvalidInput, got %v", tc.name, err)
		}
	}
}

func TestMemberService_Register_PreservesAdministrativeState(t *testing.T) {
	t.Parallel()

	until := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	existing := registeredMember(42)
	existing.Strikes = 2
	existing.Points = 120
	existing.PenaltyEndsAt = &until

	service := NewMemberService(memory.NewMemberRepository([]member.Member{existing}), nil)

	got, err := service.Register(t.Context(), RegisterInput{
		MemberID:         42,
		ValorantNickname: "renamed#KR1",
		ChzzkNickname:    "renamed",
		HighestTier:      "Radiant",
		CurrentTier:      "Immortal 3",
	})
	if err != nil {
		t.Fatalf("re-register: %v", err)
	}

	if got.ValorantNickname != "renamed#KR1" || got.HighestTier != "Radiant" {
		t.Fatalf("profile fields must update: %+v", got)
	}
	if got.Strikes != 2 || got.Points != 120 {
		t.Fatalf("strikes and points must survive re-registration: %+v", got)
	}
	if got.PenaltyEndsAt == nil || !got.PenaltyEndsAt.Equal(until) {
		t.Fatalf("penalty window must survive re-registration: %v", got.PenaltyEndsAt)
	}
}

func TestMemberService_Profile_NotRegistered(t *testing.T) {
	t.Parallel()

	service := NewMemberService(memory.NewMemberRepository(nil), nil)

	if _, err := service.Profile(t.Context(), 42); !errors.Is(err, ErrNotRegistered) {
		t.Fatalf("expected ErrNotRegistered, got %v", err)
	}
}

func TestMemberService_StrikeLifecycle(t *testing.T) {
	t.Parallel()

	repo := memory.NewMemberRepository([]member.Member{registeredMember(1)})
	service := NewMemberService(repo, nil)

	for want := 1; want <= member.StrikeLimit; want++ {
		total, err := service.AddStrike(t.Context(), 1)
		if err != nil {
			t.Fatalf("add strike %d: %v", want, err)
		}
		if total != want {
			t.Fatalf("expected %d strikes, got %d", want, total)
		}
	}

	status, err := service.CheckStrikes(t.Context(), 1)
	if err != nil {
		t.Fatalf("check strikes: %v", err)
	}
	if !status.StruckOut {
		t.Fatalf("expected struck out at %d strikes", status.Strikes)
	}

	total, err := service.ReduceStrikes(t.Context(), 1, 2)
	if err != nil {
		t.Fatalf("reduce strikes: %v", err)
	}
	if total != 1 {
		t.Fatalf("expected 1 strike after reduction, got %d", total)
	}

	// Reducing past zero clamps instead of going negative.
	total, err = service.ReduceStrikes(t.Context(), 1, 5)
	if err != nil {
		t.Fatalf("reduce strikes past zero: %v", err)
	}
	if total != 0 {
		t.Fatalf("expected strikes clamped at 0, got %d", total)
	}

	if _, err := service.ReduceStrikes(t.Context(), 1, 0); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for non-positive reduction, got %v", err)
	}
}

func TestMemberService_ResetStrikes(t *testing.T) {
	t.Parallel()

	struck := registeredMember(1)
	struck.Strikes = member.StrikeLimit
	repo := memory.NewMemberRepository([]member.Member{struck})
	service := NewMemberService(repo, nil)

	if err := service.ResetStrikes(t.Context(), 1); err != nil {
		t.Fatalf("reset strikes: %v", err)
	}
	status, err := service.CheckStrikes(t.Context(), 1)
	if err != nil {
		t.Fatalf("check strikes: %v", err)
	}
	if status.Strikes != 0 || status.StruckOut {
		t.Fatalf("expected clean status after reset, got %+v", status)
	}

	if err := service.ResetStrikes(t.Context(), 99); !errors.Is(err, ErrNotRegistered) {
		t.Fatalf("expected ErrNotRegistered, got %v", err)
	}
}

func TestMemberService_PenaltyLifecycle(t *testing.T) {
	t.Parallel()

	repo := memory.NewMemberRepository([]member.Member{registeredMember(1)})
	service := NewMemberService(repo, nil)

	until := time.Date(2026, 4, 1, 9, 0, 0, 0, time.FixedZone("KST", 9*3600))
	if err := service.ApplyPenalty(t.Context(), 1, until); err != nil {
		t.Fatalf("apply penalty: %v", err)
	}

	status, err := service.CheckStrikes(t.Context(), 1)
	if err != nil {
		t.Fatalf("check strikes: %v", err)
	}
	if status.PenaltyEndsAt == nil || !status.PenaltyEndsAt.Equal(until) {
		t.Fatalf("expected penalty window stored, got %v", status.PenaltyEndsAt)
	}
	if status.PenaltyEndsAt.Location() != time.UTC {
		t.Fatalf("expected penalty window normalized to UTC, got %v", status.PenaltyEndsAt.Location())
	}

	if err := service.ClearPenalty(t.Context(), 1); err != nil {
		t.Fatalf("clear penalty: %v", err)
	}
	status, err = service.CheckStrikes(t.Context(), 1)
	if err != nil {
		t.Fatalf("check strikes: %v", err)
	}
	if status.PenaltyEndsAt != nil {
		t.Fatalf("expected penalty cleared, got %v", status.PenaltyEndsAt)
	}
}
