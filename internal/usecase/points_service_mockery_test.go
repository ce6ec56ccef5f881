package usecase

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/haneulbot/scrim-queue/internal/domain/member"
	membermock "github.com/haneulbot/scrim-queue/internal/mocks/domain/member"
)

func TestPointsService_RankAndPointsOf_SuccessUsingMockery(t *testing.T) {
	t.Parallel()

	memberRepo := membermock.NewRepository(t)
	service := NewPointsService(memberRepo, nil)

	stored := member.Member{ID: 42, ValorantNickname: "haneul#KR1", ChzzkNickname: "haneul",
		HighestTier: "Immortal 2", CurrentTier: "Ascendant 3", Points: 70}

	memberRepo.
		On("GetByID", mock.Anything, int64(42)).
		Return(stored, true, nil).
		Once()
	memberRepo.
		On("CountRankedAhead", mock.Anything, 70, int64(42)).
		Return(4, nil).
		Once()

	got, err := service.RankAndPointsOf(t.Context(), 42)
	if err != nil {
		t.Fatalf("rank and points: %v", err)
	}
	if got.Rank != 5 || got.Points != 70 {
		t.Fatalf("expected rank=5 points=70, got %+v", got)
	}
}

func TestPointsService_Adjust_StoreFailureUsingMockery(t *testing.T) {
	t.Parallel()

	memberRepo := membermock.NewRepository(t)
	service := NewPointsService(memberRepo, nil)

	storeErr := fmt.Errorf("connection reset")
	memberRepo.
		On("AdjustPoints", mock.Anything, int64(42), 10).
		Return(0, false, storeErr).
		Once()

	_, err := service.Adjust(t.Context(), 42, 10)
	if !errors.Is(err, storeErr) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
}
