package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/haneulbot/scrim-queue/internal/domain/member"
	"github.com/haneulbot/scrim-queue/internal/platform/logging"
	"github.com/haneulbot/scrim-queue/internal/usecase"
)

type Handler struct {
	memberService  *usecase.MemberService
	queueService   *usecase.QueueService
	rankingService *usecase.RankingService
	sessionService *usecase.SessionService
	pointsService  *usecase.PointsService
	priorityJobs   *usecase.PriorityJobs
	logger         *logging.Logger
	validator      *validator.Validate
}

func NewHandler(
	memberService *usecase.MemberService,
	queueService *usecase.QueueService,
	rankingService *usecase.RankingService,
	sessionService *usecase.SessionService,
	pointsService *usecase.PointsService,
	priorityJobs *usecase.PriorityJobs,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		memberService:  memberService,
		queueService:   queueService,
		rankingService: rankingService,
		sessionService: sessionService,
		pointsService:  pointsService,
		priorityJobs:   priorityJobs,
		logger:         logger,
		validator:      validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

// Member ids are chat-platform snowflakes. They exceed the float64-safe
// integer range, so the wire format carries them as decimal strings.
func parseSnowflake(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: malformed id %q", usecase.ErrInvalidInput, raw)
	}
	return id, nil
}

func formatSnowflake(id int64) string {
	return strconv.FormatInt(id, 10)
}

func pathMemberID(r *http.Request) (int64, error) {
	return parseSnowflake(r.PathValue("memberID"))
}

type memberDTO struct {
	ID               string  `json:"id"`
	ValorantNickname string  `json:"valorant_nickname"`
	ChzzkNickname    string  `json:"chzzk_nickname"`
	HighestTier      string  `json:"highest_tier"`
	CurrentTier      string  `json:"current_tier"`
	Strikes          int     `json:"strikes"`
	PenaltyEndsAt    *string `json:"penalty_ends_at,omitempty"`
	Points           int     `json:"points"`
}

func memberToDTO(m member.Member) memberDTO {
	dto := memberDTO{
		ID:               formatSnowflake(m.ID),
		ValorantNickname: m.ValorantNickname,
		ChzzkNickname:    m.ChzzkNickname,
		HighestTier:      m.HighestTier,
		CurrentTier:      m.CurrentTier,
		Strikes:          m.Strikes,
		Points:           m.Points,
	}
	if m.PenaltyEndsAt != nil {
		formatted := m.PenaltyEndsAt.UTC().Format(time.RFC3339)
		dto.PenaltyEndsAt = &formatted
	}
	return dto
}
