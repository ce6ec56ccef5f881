package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/haneulbot/scrim-queue/internal/domain/member"
	"github.com/haneulbot/scrim-queue/internal/domain/queue"
	"github.com/haneulbot/scrim-queue/internal/platform/logging"
	"github.com/sourcegraph/conc/pool"
)

// DefaultSettlePoints is awarded per participant when the caller does not
// override it.
const DefaultSettlePoints = 10

type SessionService struct {
	members  member.Repository
	queue    queue.Repository
	ranking  *RankingService
	notifier Notifier
	logger   *logging.Logger
}

func NewSessionService(
	members member.Repository,
	entries queue.Repository,
	ranking *RankingService,
	notifier Notifier,
	logger *logging.Logger,
) *SessionService {
	if logger == nil {
		logger = logging.Default()
	}
	return &SessionService{
		members:  members,
		queue:    entries,
		ranking:  ranking,
		notifier: notifier,
		logger:   logger,
	}
}

type StartSessionResult struct {
	Notified     []int64
	Blocked      []int64
	DroppedStale []int64
}

// sessionNotifyConcurrency bounds the direct-message fan-out.
const sessionNotifyConcurrency = 4

// StartSession resolves the front group (healing stale entries along the
// way) and direct-messages every live participant. Deliveries run
// concurrently; the result folds them back in enrollment order. Blocked
// deliveries are collected into the result, never escalated; a session
// start with partial delivery failures is still a success. A transport
// failure is reported only after the whole fan-out settles, with the
// deliveries that did land still listed.
func (s *SessionService) StartSession(ctx context.Context, message string) (StartSessionResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SessionService.StartSession")
	defer span.End()

	message = strings.TrimSpace(message)
	if message == "" {
		return StartSessionResult{}, fmt.Errorf("%w: session message is required", ErrInvalidInput)
	}

	live, dropped, err := s.ranking.resolveFrontEntries(ctx)
	if err != nil {
		return StartSessionResult{}, err
	}
	if len(live) == 0 {
		return StartSessionResult{DroppedStale: dropped}, fmt.Errorf("%w: no live members to notify", ErrEmptyQueue)
	}

	msg := Message{Title: "Scrim session starting", Body: message}
	deliveries := make([]error, len(live))
	senders := pool.New().WithMaxGoroutines(sessionNotifyConcurrency)
	for i, entry := range live {
		senders.Go(func() {
			deliveries[i] = s.notifier.SendDirect(ctx, entry.MemberID, msg)
		})
	}
	senders.Wait()

	result := StartSessionResult{DroppedStale: dropped}
	var fanoutErr error
	for i, entry := range live {
		err := deliveries[i]
		switch {
		case err == nil:
			result.Notified = append(result.Notified, entry.MemberID)
		case errors.Is(err, ErrDeliveryBlocked):
			result.Blocked = append(result.Blocked, entry.MemberID)
		case fanoutErr == nil:
			fanoutErr = fmt.Errorf("send session start to member=%d: %w", entry.MemberID, err)
		}
	}
	if fanoutErr != nil {
		return result, fanoutErr
	}

	s.logger.InfoContext(ctx, "session start notifications sent",
		"notified", len(result.Notified), "blocked", len(result.Blocked), "dropped", len(result.DroppedStale))
	return result, nil
}

type SettleInput struct {
	ParticipantCount  int
	PointsAwarded     int
	AnnounceChannelID int64
}

type SettledAward struct {
	MemberID int64
	NewTotal int
}

type SettleResult struct {
	Awards    []SettledAward
	NextHead  *member.Member
	Announced bool
}

// Settle closes a session: awards points to the first ParticipantCount
// entries in enrollment order, removes them from the queue in one
// statement, and reports the new head of line.
//
// Awards run before removal and each one is a store-side atomic increment.
// A failed award aborts the settlement with the queue untouched, so state
// never ends up part-awarded-part-removed; the result lists which awards
// had already landed.
func (s *SessionService) Settle(ctx context.Context, input SettleInput) (SettleResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SessionService.Settle")
	defer span.End()

	if input.ParticipantCount <= 0 {
		return SettleResult{}, fmt.Errorf("%w: participant count must be positive", ErrInvalidInput)
	}
	if input.PointsAwarded < 0 {
		return SettleResult{}, fmt.Errorf("%w: points awarded cannot be negative", ErrInvalidInput)
	}

	entries, err := s.queue.ListOrdered(ctx, input.ParticipantCount)
	if err != nil {
		return SettleResult{}, fmt.Errorf("list participants: %w", err)
	}
	if len(entries) == 0 {
		return SettleResult{}, fmt.Errorf("%w: nothing to settle", ErrEmptyQueue)
	}

	result := SettleResult{}
	ids := make([]int64, 0, len(entries))
	for _, entry := range entries {
		ids = append(ids, entry.MemberID)

		newTotal, found, err := s.members.AdjustPoints(ctx, entry.MemberID, input.PointsAwarded)
		if err != nil {
			return result, fmt.Errorf("award points to member=%d: %w", entry.MemberID, err)
		}
		if !found {
			return result, fmt.Errorf("%w: participant member=%d has no profile", member.ErrMalformedRecord, entry.MemberID)
		}
		result.Awards = append(result.Awards, SettledAward{MemberID: entry.MemberID, NewTotal: newTotal})
	}

	if err := s.queue.RemoveMany(ctx, ids); err != nil {
		return result, fmt.Errorf("remove settled participants: %w", err)
	}

	next, found, err := s.queue.Earliest(ctx)
	if err != nil {
		return result, fmt.Errorf("read next head of line: %w", err)
	}
	if found {
		head, ok, err := s.members.GetByID(ctx, next.MemberID)
		if err != nil {
			return result, fmt.Errorf("get next head member: %w", err)
		}
		if ok {
			result.NextHead = &head
		}
	}

	if result.NextHead != nil && input.AnnounceChannelID > 0 {
		msg := Message{
			Title: "Session settled",
			Body:  fmt.Sprintf("Next up in the queue: %s", result.NextHead.ValorantNickname),
		}
		if _, err := s.notifier.Announce(ctx, input.AnnounceChannelID, msg); err != nil {
			// Best effort: the settlement already committed.
			s.logger.WarnContext(ctx, "next head announcement failed", "error", err)
		} else {
			result.Announced = true
		}
	}

	s.logger.InfoContext(ctx, "session settled",
		"participants", len(result.Awards), "points", input.PointsAwarded)
	return result, nil
}

// Recruit posts the queue-join prompt to the given channel and returns a
// reference the admin can later close with CloseRecruit.
func (s *SessionService) Recruit(ctx context.Context, channelID int64, title, body string) (MessageRef, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SessionService.Recruit")
	defer span.End()

	if channelID <= 0 {
		return MessageRef{}, fmt.Errorf("%w: channel id is required", ErrInvalidInput)
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return MessageRef{}, fmt.Errorf("%w: recruit title is required", ErrInvalidInput)
	}
	body = strings.TrimSpace(body)
	if body == "" {
		body = "Press the button below to join the scrim queue."
	}

	ref, err := s.notifier.Announce(ctx, channelID, Message{Title: title, Body: body})
	if err != nil {
		return MessageRef{}, fmt.Errorf("announce recruit message: %w", err)
	}

	s.logger.InfoContext(ctx, "recruit announced", "channel_id", ref.ChannelID, "message_id", ref.MessageID)
	return ref, nil
}

// CloseRecruit disables the join prompt on a previously posted recruit
// message, addressed by its link. A malformed link and a missing message
// are distinct denials.
func (s *SessionService) CloseRecruit(ctx context.Context, link string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.SessionService.CloseRecruit")
	defer span.End()

	ref, err := ParseMessageLink(link)
	if err != nil {
		return err
	}

	if err := s.notifier.DisableJoinPrompt(ctx, ref); err != nil {
		if errors.Is(err, ErrNotFound) {
			return fmt.Errorf("%w: recruit message %d/%d", ErrNotFound, ref.ChannelID, ref.MessageID)
		}
		return fmt.Errorf("disable join prompt: %w", err)
	}

	return nil
}
