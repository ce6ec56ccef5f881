package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/haneulbot/scrim-queue/internal/usecase"
	jsoniter "github.com/json-iterator/go"
)

type queueMemberRequest struct {
	MemberID string `json:"member_id" validate:"required"`
}

type joinResultDTO struct {
	MemberID string `json:"member_id"`
	Position int    `json:"position"`
	Total    int    `json:"total"`
}

func (h *Handler) JoinQueue(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.JoinQueue")
	defer span.End()

	var req queueMemberRequest
	decoder := jsoniter.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	memberID, err := parseSnowflake(req.MemberID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.queueService.Join(ctx, memberID)
	if err != nil {
		h.logger.WarnContext(ctx, "queue join failed", "member_id", memberID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, joinResultDTO{
		MemberID: req.MemberID,
		Position: result.Position,
		Total:    result.Total,
	})
}

type eligibilityDTO struct {
	MemberID      string  `json:"member_id"`
	Eligible      bool    `json:"eligible"`
	Reason        string  `json:"reason,omitempty"`
	PenaltyEndsAt *string `json:"penalty_ends_at,omitempty"`
}

// CheckEligibility reports the join gate's verdict without enrolling. A
// denial is part of the answer here, not an error response.
func (h *Handler) CheckEligibility(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CheckEligibility")
	defer span.End()

	memberID, err := pathMemberID(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	checkErr := h.queueService.CheckJoin(ctx, memberID)
	if checkErr == nil {
		writeSuccess(ctx, w, http.StatusOK, eligibilityDTO{
			MemberID: formatSnowflake(memberID),
			Eligible: true,
		})
		return
	}

	dto := eligibilityDTO{MemberID: formatSnowflake(memberID)}
	var penaltyErr *usecase.PenaltyActiveError
	switch {
	case errors.Is(checkErr, usecase.ErrNotRegistered):
		dto.Reason = "notRegistered"
	case errors.Is(checkErr, usecase.ErrStrikeLimitExceeded):
		dto.Reason = "strikeLimitExceeded"
	case errors.As(checkErr, &penaltyErr):
		dto.Reason = "penaltyActive"
		formatted := penaltyErr.Until.UTC().Format(time.RFC3339)
		dto.PenaltyEndsAt = &formatted
	case errors.Is(checkErr, usecase.ErrAlreadyQueued):
		dto.Reason = "alreadyQueued"
	default:
		writeError(ctx, w, checkErr)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, dto)
}

func (h *Handler) LeaveQueue(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.LeaveQueue")
	defer span.End()

	var req queueMemberRequest
	decoder := jsoniter.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	memberID, err := parseSnowflake(req.MemberID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	if err := h.queueService.Leave(ctx, memberID); err != nil {
		h.logger.WarnContext(ctx, "queue leave failed", "member_id", memberID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"member_id": req.MemberID})
}

type kickRequest struct {
	MemberID       string `json:"member_id" validate:"required"`
	AddStrike      bool   `json:"add_strike"`
	TimeoutMinutes int    `json:"timeout_minutes" validate:"min=0"`
}

func (h *Handler) KickFromQueue(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.KickFromQueue")
	defer span.End()

	var req kickRequest
	decoder := jsoniter.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	memberID, err := parseSnowflake(req.MemberID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var penalty *usecase.KickPenalty
	if req.AddStrike || req.TimeoutMinutes > 0 {
		penalty = &usecase.KickPenalty{
			AddStrike: req.AddStrike,
			Timeout:   time.Duration(req.TimeoutMinutes) * time.Minute,
		}
	}

	if err := h.queueService.Kick(ctx, memberID, penalty); err != nil {
		h.logger.WarnContext(ctx, "queue kick failed", "member_id", memberID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"member_id": req.MemberID})
}

type rankDTO struct {
	MemberID      string `json:"member_id"`
	Position      int    `json:"position"`
	FrontOfLine   bool   `json:"front_of_line"`
	WaitingBehind int    `json:"waiting_behind,omitempty"`
}

func (h *Handler) GetQueueRank(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetQueueRank")
	defer span.End()

	memberID, err := pathMemberID(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	rank, err := h.rankingService.RankOf(ctx, memberID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, rankDTO{
		MemberID:      formatSnowflake(memberID),
		Position:      rank.Position,
		FrontOfLine:   rank.FrontOfLine,
		WaitingBehind: rank.WaitingBehind,
	})
}
