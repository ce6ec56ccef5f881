package usecase

import (
	"context"
	"fmt"

	"github.com/panjf2000/ants/v2"

	"github.com/haneulbot/scrim-queue/internal/platform/logging"
)

const defaultPriorityJobWorkers = 2

// PriorityJobs runs priority-join requests on a bounded worker pool so
// the command surface can acknowledge immediately and report the outcome
// once the queue write lands.
type PriorityJobs struct {
	ranking  *RankingService
	notifier Notifier
	logger   *logging.Logger
	pool     *ants.Pool
}

func NewPriorityJobs(ranking *RankingService, notifier Notifier, logger *logging.Logger, workers int) (*PriorityJobs, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if workers <= 0 {
		workers = defaultPriorityJobWorkers
	}

	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, fmt.Errorf("create priority job pool: %w", err)
	}

	return &PriorityJobs{
		ranking:  ranking,
		notifier: notifier,
		logger:   logger,
		pool:     pool,
	}, nil
}

// Submit schedules a priority join for the member and returns once the job
// is queued. The outcome is announced to replyChannelID; if the announce
// itself fails the result is only logged.
func (j *PriorityJobs) Submit(ctx context.Context, memberID, replyChannelID int64) error {
	if memberID <= 0 {
		return fmt.Errorf("%w: member id is required", ErrInvalidInput)
	}

	// The request context ends when the caller is acknowledged; the job
	// keeps the trace linkage but not the cancellation.
	jobCtx := context.WithoutCancel(ctx)

	if err := j.pool.Submit(func() {
		j.run(jobCtx, memberID, replyChannelID)
	}); err != nil {
		return fmt.Errorf("submit priority join: %w", err)
	}
	return nil
}

func (j *PriorityJobs) run(ctx context.Context, memberID, replyChannelID int64) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PriorityJobs.run")
	defer span.End()

	position, err := j.ranking.PriorityJoin(ctx, memberID)

	var msg Message
	switch {
	case err == nil:
		msg = Message{
			Title: "Priority join complete",
			Body:  fmt.Sprintf("<@%d> was moved to position %d.", memberID, position),
		}
	default:
		j.logger.WarnContext(ctx, "priority join failed", "member_id", memberID, "error", err)
		msg = Message{
			Title: "Priority join failed",
			Body:  fmt.Sprintf("Could not move <@%d> to the front of the queue.", memberID),
		}
	}

	if replyChannelID <= 0 {
		return
	}
	if _, announceErr := j.notifier.Announce(ctx, replyChannelID, msg); announceErr != nil {
		j.logger.WarnContext(ctx, "priority join outcome announce failed",
			"member_id", memberID, "channel_id", replyChannelID, "error", announceErr)
	}
}

// Close releases the worker pool. Jobs already running are allowed to
// finish.
func (j *PriorityJobs) Close() {
	j.pool.Release()
}
