package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/haneulbot/scrim-queue/internal/usecase"
	jsoniter "github.com/json-iterator/go"
)

type registerMemberRequest struct {
	MemberID         string `json:"member_id" validate:"required"`
	ValorantNickname string `json:"valorant_nickname" validate:"required,max=100"`
	ChzzkNickname    string `json:"chzzk_nickname" validate:"required,max=100"`
	HighestTier      string `json:"highest_tier" validate:"required,max=50"`
	CurrentTier      string `json:"current_tier" validate:"required,max=50"`
}

func (h *Handler) RegisterMember(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RegisterMember")
	defer span.End()

	var req registerMemberRequest
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

	registered, err := h.memberService.Register(ctx, usecase.RegisterInput{
		MemberID:         memberID,
		ValorantNickname: req.ValorantNickname,
		ChzzkNickname:    req.ChzzkNickname,
		HighestTier:      req.HighestTier,
		CurrentTier:      req.CurrentTier,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "register member failed", "member_id", memberID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, memberToDTO(registered))
}

func (h *Handler) GetMemberProfile(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMemberProfile")
	defer span.End()

	memberID, err := pathMemberID(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	profile, err := h.memberService.Profile(ctx, memberID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, memberToDTO(profile))
}

type strikeStatusDTO struct {
	MemberID      string  `json:"member_id"`
	Strikes       int     `json:"strikes"`
	StruckOut     bool    `json:"struck_out"`
	PenaltyEndsAt *string `json:"penalty_ends_at,omitempty"`
}

func (h *Handler) GetMemberStrikes(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMemberStrikes")
	defer span.End()

	memberID, err := pathMemberID(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	status, err := h.memberService.CheckStrikes(ctx, memberID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	dto := strikeStatusDTO{
		MemberID:  formatSnowflake(status.MemberID),
		Strikes:   status.Strikes,
		StruckOut: status.StruckOut,
	}
	if status.PenaltyEndsAt != nil {
		formatted := status.PenaltyEndsAt.UTC().Format(time.RFC3339)
		dto.PenaltyEndsAt = &formatted
	}

	writeSuccess(ctx, w, http.StatusOK, dto)
}

type strikeCountDTO struct {
	MemberID string `json:"member_id"`
	Strikes  int    `json:"strikes"`
}

type addStrikeRequest struct {
	MemberID string `json:"member_id" validate:"required"`
}

func (h *Handler) AddStrike(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.AddStrike")
	defer span.End()

	var req addStrikeRequest
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

	total, err := h.memberService.AddStrike(ctx, memberID)
	if err != nil {
		h.logger.WarnContext(ctx, "add strike failed", "member_id", memberID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, strikeCountDTO{MemberID: req.MemberID, Strikes: total})
}

type reduceStrikesRequest struct {
	MemberID string `json:"member_id" validate:"required"`
	Count    int    `json:"count" validate:"required,min=1"`
}

func (h *Handler) ReduceStrikes(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ReduceStrikes")
	defer span.End()

	var req reduceStrikesRequest
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

	total, err := h.memberService.ReduceStrikes(ctx, memberID, req.Count)
	if err != nil {
		h.logger.WarnContext(ctx, "reduce strikes failed", "member_id", memberID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, strikeCountDTO{MemberID: req.MemberID, Strikes: total})
}

func (h *Handler) ResetStrikes(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ResetStrikes")
	defer span.End()

	memberID, err := pathMemberID(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	if err := h.memberService.ResetStrikes(ctx, memberID); err != nil {
		h.logger.WarnContext(ctx, "reset strikes failed", "member_id", memberID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, strikeCountDTO{MemberID: r.PathValue("memberID"), Strikes: 0})
}

type applyPenaltyRequest struct {
	MemberID string `json:"member_id" validate:"required"`
	Until    string `json:"until" validate:"required"`
}

func (h *Handler) ApplyPenalty(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ApplyPenalty")
	defer span.End()

	var req applyPenaltyRequest
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
	until, err := time.Parse(time.RFC3339, req.Until)
	if err != nil {
		writeError(ctx, w, fmt.Errorf("%w: until must be RFC 3339: %v", usecase.ErrInvalidInput, err))
		return
	}

	if err := h.memberService.ApplyPenalty(ctx, memberID, until); err != nil {
		h.logger.WarnContext(ctx, "apply penalty failed", "member_id", memberID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{
		"member_id": req.MemberID,
		"until":     until.UTC().Format(time.RFC3339),
	})
}

func (h *Handler) ClearPenalty(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ClearPenalty")
	defer span.End()

	memberID, err := pathMemberID(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	if err := h.memberService.ClearPenalty(ctx, memberID); err != nil {
		h.logger.WarnContext(ctx, "clear penalty failed", "member_id", memberID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"member_id": r.PathValue("memberID")})
}
