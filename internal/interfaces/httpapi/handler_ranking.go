package httpapi

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/haneulbot/scrim-queue/internal/usecase"
	jsoniter "github.com/json-iterator/go"
)

const defaultRankingLimit = 20

type frontGroupDTO struct {
	Members      []memberDTO `json:"members"`
	DroppedStale []string    `json:"dropped_stale,omitempty"`
	Total        int         `json:"total"`
}

func (h *Handler) GetFrontGroup(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetFrontGroup")
	defer span.End()

	group, err := h.rankingService.FrontGroup(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "front group resolution failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	dto := frontGroupDTO{
		Members: make([]memberDTO, 0, len(group.Members)),
		Total:   group.Total,
	}
	for _, m := range group.Members {
		dto.Members = append(dto.Members, memberToDTO(m))
	}
	for _, id := range group.DroppedStale {
		dto.DroppedStale = append(dto.DroppedStale, formatSnowflake(id))
	}

	writeSuccess(ctx, w, http.StatusOK, dto)
}

type priorityJoinRequest struct {
	MemberID       string `json:"member_id" validate:"required"`
	ReplyChannelID string `json:"reply_channel_id" validate:"omitempty"`
}

// PriorityJoin is asynchronous: the write happens on the job pool and the
// outcome lands in the reply channel, so the response is only an ack.
func (h *Handler) PriorityJoin(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.PriorityJoin")
	defer span.End()

	var req priorityJoinRequest
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
	var replyChannelID int64
	if req.ReplyChannelID != "" {
		replyChannelID, err = parseSnowflake(req.ReplyChannelID)
		if err != nil {
			writeError(ctx, w, err)
			return
		}
	}

	if err := h.priorityJobs.Submit(ctx, memberID, replyChannelID); err != nil {
		h.logger.WarnContext(ctx, "priority join submit failed", "member_id", memberID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusAccepted, map[string]string{
		"member_id": req.MemberID,
		"status":    "queued",
	})
}

type rankingEntryDTO struct {
	Rank             int    `json:"rank"`
	MemberID         string `json:"member_id"`
	ValorantNickname string `json:"valorant_nickname"`
	Points           int    `json:"points"`
}

func (h *Handler) ListPointsRanking(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListPointsRanking")
	defer span.End()

	limit := defaultRankingLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeError(ctx, w, fmt.Errorf("%w: malformed limit %q", usecase.ErrInvalidInput, raw))
			return
		}
		limit = parsed
	}

	top, err := h.pointsService.RankingTop(ctx, limit)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	items := make([]rankingEntryDTO, 0, len(top))
	for i, m := range top {
		items = append(items, rankingEntryDTO{
			Rank:             i + 1,
			MemberID:         formatSnowflake(m.ID),
			ValorantNickname: m.ValorantNickname,
			Points:           m.Points,
		})
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

type pointsRankDTO struct {
	MemberID string `json:"member_id"`
	Rank     int    `json:"rank"`
	Points   int    `json:"points"`
}

func (h *Handler) GetMemberPoints(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMemberPoints")
	defer span.End()

	memberID, err := pathMemberID(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	rank, err := h.pointsService.RankAndPointsOf(ctx, memberID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, pointsRankDTO{
		MemberID: formatSnowflake(memberID),
		Rank:     rank.Rank,
		Points:   rank.Points,
	})
}

type adjustPointsRequest struct {
	MemberID string `json:"member_id" validate:"required"`
	Delta    int    `json:"delta" validate:"required"`
}

func (h *Handler) AdjustPoints(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.AdjustPoints")
	defer span.End()

	var req adjustPointsRequest
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

	total, err := h.pointsService.Adjust(ctx, memberID, req.Delta)
	if err != nil {
		h.logger.WarnContext(ctx, "points adjust failed", "member_id", memberID, "delta", req.Delta, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]any{
		"member_id": req.MemberID,
		"points":    total,
	})
}
