package usecase

import (
	"errors"
	"testing"

	"github.com/haneulbot/scrim-queue/internal/domain/member"
	"github.com/haneulbot/scrim-queue/internal/infrastructure/repository/memory"
)

func TestPointsService_Adjust(t *testing.T) {
	t.Parallel()

	seeded := registeredMember(1)
	seeded.Points = 30
	service := NewPointsService(memory.NewMemberRepository([]member.Member{seeded}), nil)

	total, err := service.Adjust(t.Context(), 1, 15)
	if err != nil {
		t.Fatalf("adjust +15: %v", err)
	}
	if total != 45 {
		t.Fatalf("expected 45 points, got %d", total)
	}

	total, err = service.Adjust(t.Context(), 1, -20)
	if err != nil {
		t.Fatalf("adjust -20: %v", err)
	}
	if total != 25 {
		t.Fatalf("expected 25 points, got %d", total)
	}

	// Deductions clamp at zero rather than going negative.
	total, err = service.Adjust(t.Context(), 1, -100)
	if err != nil {
		t.Fatalf("adjust -100: %v", err)
	}
	if total != 0 {
		t.Fatalf("expected points clamped at 0, got %d", total)
	}

	if _, err := service.Adjust(t.Context(), 1, 0); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for zero delta, got %v", err)
	}
	if _, err := service.Adjust(t.Context(), 99, 10); !errors.Is(err, ErrNotRegistered) {
		t.Fatalf("expected ErrNotRegistered, got %v", err)
	}
}

func TestPointsService_RankingTop(t *testing.T) {
	t.Parallel()

	members := []member.Member{}
	for id, points := range map[int64]int{1: 50, 2: 80, 3: 50, 4: 10} {
		m := registeredMember(id)
		m.Points = points
		members = append(members, m)
	}
	service := NewPointsService(memory.NewMemberRepository(members), nil)

	top, err := service.RankingTop(t.Context(), 3)
	if err != nil {
		t.Fatalf("ranking top: %v", err)
	}
	if len(top) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(top))
	}
	// Points descending, ties broken by member id ascending.
	if top[0].ID != 2 || top[1].ID != 1 || top[2].ID != 3 {
		t.Fatalf("unexpected ranking order: %d %d %d", top[0].ID, top[1].ID, top[2].ID)
	}

	if _, err := service.RankingTop(t.Context(), 0); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for non-positive limit, got %v", err)
	}
}

func TestPointsService_RankAndPointsOf(t *testing.T) {
	t.Parallel()

	members := []member.Member{}
	for id, points := range map[int64]int{1: 50, 2: 80, 3: 50, 4: 10} {
		m := registeredMember(id)
		m.Points = points
		members = append(members, m)
	}
	service := NewPointsService(memory.NewMemberRepository(members), nil)

	cases := []struct {
		memberID   int64
		wantRank   int
		wantPoints int
	}{
		{2, 1, 80},
		{1, 2, 50},
		{3, 3, 50},
		{4, 4, 10},
	}
	for _, tc := range cases {
		got, err := service.RankAndPointsOf(t.Context(), tc.memberID)
		if err != nil {
			t.Fatalf("rank of member=%d: %v", tc.memberID, err)
		}
		if got.Rank != tc.wantRank || got.Points != tc.wantPoints {
			t.Fatalf("member=%d: expected rank=%d points=%d, got %+v", tc.memberID, tc.wantRank, tc.wantPoints, got)
		}
	}

	if _, err := service.RankAndPointsOf(t.Context(), 99); !errors.Is(err, ErrNotRegistered) {
		t.Fatalf("expected ErrNotRegistered, got %v", err)
	}
}

func TestParseMessageLink(t *testing.T) {
	t.Parallel()

	ref, err := ParseMessageLink("https://discord.com/channels/100/555/9001")
	if err != nil {
		t.Fatalf("parse full link: %v", err)
	}
	if ref.ChannelID != 555 || ref.MessageID != 9001 {
		t.Fatalf("unexpected ref: %+v", ref)
	}

	ref, err = ParseMessageLink("https://discord.com/channels/100/555/9001/")
	if err != nil {
		t.Fatalf("parse link with trailing slash: %v", err)
	}
	if ref.ChannelID != 555 || ref.MessageID != 9001 {
		t.Fatalf("unexpected ref: %+v", ref)
	}

	for _, link := range []string{"", "9001", "https://discord.com/channels/100/abc/9001", "https://discord.com/channels/100/555/abc"} {
		if _, err := ParseMessageLink(link); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("link %q: expected ErrInvalidInput, got %v", link, err)
		}
	}
}
