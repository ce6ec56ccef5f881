package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/haneulbot/scrim-queue/internal/domain/member"
	"github.com/haneulbot/scrim-queue/internal/platform/logging"
)

type MemberService struct {
	members member.Repository
	logger  *logging.Logger
}

func NewMemberService(members member.Repository, logger *logging.Logger) *MemberService {
	if logger == nil {
		logger = logging.Default()
	}
	return &MemberService{
		members: members,
		logger:  logger,
	}
}

type RegisterInput struct {
	MemberID         int64
	ValorantNickname string
	ChzzkNickname    string
	HighestTier      string
	CurrentTier      string
}

// Register upserts the member's profile. Strikes, penalty window and points
// are administrative state and survive re-registration untouched.
func (s *MemberService) Register(ctx context.Context, input RegisterInput) (member.Member, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MemberService.Register")
	defer span.End()

	profile := member.Member{
		ID:               input.MemberID,
		ValorantNickname: strings.TrimSpace(input.ValorantNickname),
		ChzzkNickname:    strings.TrimSpace(input.ChzzkNickname),
		HighestTier:      strings.TrimSpace(input.HighestTier),
		CurrentTier:      strings.TrimSpace(input.CurrentTier),
	}
	if err := profile.Validate(); err != nil {
		return member.Member{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := s.members.UpsertProfile(ctx, profile); err != nil {
		return member.Member{}, fmt.Errorf("upsert member profile: %w", err)
	}

	stored, found, err := s.members.GetByID(ctx, profile.ID)
	if err != nil {
		return member.Member{}, fmt.Errorf("get member after upsert: %w", err)
	}
	if !found {
		return member.Member{}, fmt.Errorf("%w: member=%d vanished after upsert", ErrNotFound, profile.ID)
	}

	s.logger.InfoContext(ctx, "member profile registered", "member_id", stored.ID)
	return stored, nil
}

func (s *MemberService) Profile(ctx context.Context, memberID int64) (member.Member, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MemberService.Profile")
	defer span.End()

	if memberID <= 0 {
		return member.Member{}, fmt.Errorf("%w: member id is required", ErrInvalidInput)
	}

	m, found, err := s.members.GetByID(ctx, memberID)
	if err != nil {
		return member.Member{}, fmt.Errorf("get member: %w", err)
	}
	if !found {
		return member.Member{}, fmt.Errorf("%w: member=%d", ErrNotRegistered, memberID)
	}

	return m, nil
}

type StrikeStatus struct {
	MemberID      int64
	Strikes       int
	StruckOut     bool
	PenaltyEndsAt *time.Time
}

func (s *MemberService) CheckStrikes(ctx context.Context, memberID int64) (StrikeStatus, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MemberService.CheckStrikes")
	defer span.End()

	m, err := s.Profile(ctx, memberID)
	if err != nil {
		return StrikeStatus{}, err
	}

	return StrikeStatus{
		MemberID:      m.ID,
		Strikes:       m.Strikes,
		StruckOut:     m.StruckOut(),
		PenaltyEndsAt: m.PenaltyEndsAt,
	}, nil
}

func (s *MemberService) AddStrike(ctx context.Context, memberID int64) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MemberService.AddStrike")
	defer span.End()

	if memberID <= 0 {
		return 0, fmt.Errorf("%w: member id is required", ErrInvalidInput)
	}

	total, found, err := s.members.AdjustStrikes(ctx, memberID, 1)
	if err != nil {
		return 0, fmt.Errorf("add strike: %w", err)
	}
	if !found {
		return 0, fmt.Errorf("%w: member=%d", ErrNotRegistered, memberID)
	}

	s.logger.InfoContext(ctx, "strike added", "member_id", memberID, "strikes", total)
	return total, nil
}

func (s *MemberService) ReduceStrikes(ctx context.Context, memberID int64, count int) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MemberService.ReduceStrikes")
	defer span.End()

	if memberID <= 0 {
		return 0, fmt.Errorf("%w: member id is required", ErrInvalidInput)
	}
	if count <= 0 {
		return 0, fmt.Errorf("%w: strike reduction must be positive", ErrInvalidInput)
	}

	total, found, err := s.members.AdjustStrikes(ctx, memberID, -count)
	if err != nil {
		return 0, fmt.Errorf("reduce strikes: %w", err)
	}
	if !found {
		return 0, fmt.Errorf("%w: member=%d", ErrNotRegistered, memberID)
	}

	s.logger.InfoContext(ctx, "strikes reduced", "member_id", memberID, "strikes", total)
	return total, nil
}

func (s *MemberService) ResetStrikes(ctx context.Context, memberID int64) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.MemberService.ResetStrikes")
	defer span.End()

	if memberID <= 0 {
		return fmt.Errorf("%w: member id is required", ErrInvalidInput)
	}

	found, err := s.members.SetStrikes(ctx, memberID, 0)
	if err != nil {
		return fmt.Errorf("reset strikes: %w", err)
	}
	if !found {
		return fmt.Errorf("%w: member=%d", ErrNotRegistered, memberID)
	}

	s.logger.InfoContext(ctx, "strikes reset", "member_id", memberID)
	return nil
}

func (s *MemberService) ApplyPenalty(ctx context.Context, memberID int64, until time.Time) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.MemberService.ApplyPenalty")
	defer span.End()

	if memberID <= 0 {
		return fmt.Errorf("%w: member id is required", ErrInvalidInput)
	}

	utc := until.UTC()
	found, err := s.members.SetPenaltyEndsAt(ctx, memberID, &utc)
	if err != nil {
		return fmt.Errorf("apply penalty: %w", err)
	}
	if !found {
		return fmt.Errorf("%w: member=%d", ErrNotRegistered, memberID)
	}

	s.logger.InfoContext(ctx, "penalty applied", "member_id", memberID, "until", utc)
	return nil
}

func (s *MemberService) ClearPenalty(ctx context.Context, memberID int64) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.MemberService.ClearPenalty")
	defer span.End()

	if memberID <= 0 {
		return fmt.Errorf("%w: member id is required", ErrInvalidInput)
	}

	found, err := s.members.SetPenaltyEndsAt(ctx, memberID, nil)
	if err != nil {
		return fmt.Errorf("clear penalty: %w", err)
	}
	if !found {
		return fmt.Errorf("%w: member=%d", ErrNotRegistered, memberID)
	}

	return nil
}
