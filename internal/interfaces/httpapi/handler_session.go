package httpapi

import (
	"fmt"
	"net/http"

	"github.com/haneulbot/scrim-queue/internal/usecase"
	jsoniter "github.com/json-iterator/go"
)

type startSessionRequest struct {
	Message string `json:"message" validate:"required,max=2000"`
}

type startSessionDTO struct {
	Notified     []string `json:"notified"`
	Blocked      []string `json:"blocked,omitempty"`
	DroppedStale []string `json:"dropped_stale,omitempty"`
}

func (h *Handler) StartSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.StartSession")
	defer span.End()

	var req startSessionRequest
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

	result, err := h.sessionService.StartSession(ctx, req.Message)
	if err != nil {
		h.logger.WarnContext(ctx, "session start failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	dto := startSessionDTO{Notified: make([]string, 0, len(result.Notified))}
	for _, id := range result.Notified {
		dto.Notified = append(dto.Notified, formatSnowflake(id))
	}
	for _, id := range result.Blocked {
		dto.Blocked = append(dto.Blocked, formatSnowflake(id))
	}
	for _, id := range result.DroppedStale {
		dto.DroppedStale = append(dto.DroppedStale, formatSnowflake(id))
	}

	writeSuccess(ctx, w, http.StatusOK, dto)
}

type settleSessionRequest struct {
	ParticipantCount  int    `json:"participant_count" validate:"required,min=1"`
	PointsAwarded     *int   `json:"points_awarded" validate:"omitempty,min=0"`
	AnnounceChannelID string `json:"announce_channel_id" validate:"omitempty"`
}

type settledAwardDTO struct {
	MemberID string `json:"member_id"`
	NewTotal int    `json:"new_total"`
}

type settleSessionDTO struct {
	Awards    []settledAwardDTO `json:"awards"`
	NextHead  *memberDTO        `json:"next_head,omitempty"`
	Announced bool              `json:"announced"`
}

func (h *Handler) SettleSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SettleSession")
	defer span.End()

	var req settleSessionRequest
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

	points := usecase.DefaultSettlePoints
	if req.PointsAwarded != nil {
		points = *req.PointsAwarded
	}
	var announceChannelID int64
	if req.AnnounceChannelID != "" {
		parsed, err := parseSnowflake(req.AnnounceChannelID)
		if err != nil {
			writeError(ctx, w, err)
			return
		}
		announceChannelID = parsed
	}

	result, err := h.sessionService.Settle(ctx, usecase.SettleInput{
		ParticipantCount:  req.ParticipantCount,
		PointsAwarded:     points,
		AnnounceChannelID: announceChannelID,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "session settle failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	dto := settleSessionDTO{
		Awards:    make([]settledAwardDTO, 0, len(result.Awards)),
		Announced: result.Announced,
	}
	for _, award := range result.Awards {
		dto.Awards = append(dto.Awards, settledAwardDTO{
			MemberID: formatSnowflake(award.MemberID),
			NewTotal: award.NewTotal,
		})
	}
	if result.NextHead != nil {
		head := memberToDTO(*result.NextHead)
		dto.NextHead = &head
	}

	writeSuccess(ctx, w, http.StatusOK, dto)
}

type recruitRequest struct {
	ChannelID string `json:"channel_id" validate:"required"`
	Title     string `json:"title" validate:"required,max=256"`
	Body      string `json:"body" validate:"omitempty,max=2000"`
}

type messageRefDTO struct {
	ChannelID string `json:"channel_id"`
	MessageID string `json:"message_id"`
}

func (h *Handler) Recruit(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Recruit")
	defer span.End()

	var req recruitRequest
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

	channelID, err := parseSnowflake(req.ChannelID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	ref, err := h.sessionService.Recruit(ctx, channelID, req.Title, req.Body)
	if err != nil {
		h.logger.WarnContext(ctx, "recruit failed", "channel_id", channelID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, messageRefDTO{
		ChannelID: formatSnowflake(ref.ChannelID),
		MessageID: formatSnowflake(ref.MessageID),
	})
}

type closeRecruitRequest struct {
	MessageLink string `json:"message_link" validate:"required,max=500"`
}

func (h *Handler) CloseRecruit(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CloseRecruit")
	defer span.End()

	var req closeRecruitRequest
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

	if err := h.sessionService.CloseRecruit(ctx, req.MessageLink); err != nil {
		h.logger.WarnContext(ctx, "close recruit failed", "link", req.MessageLink, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "closed"})
}
