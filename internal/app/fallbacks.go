package app

import (
	"context"
	"sync/atomic"

	"github.com/haneulbot/scrim-queue/internal/platform/logging"
	"github.com/haneulbot/scrim-queue/internal/usecase"
)

// logOnlyNotifier stands in for the chat platform in environments without
// a bot token. Announce still hands out unique message ids so recruit
// round trips keep working against it.
type logOnlyNotifier struct {
	logger *logging.Logger
}

var logOnlyMessageSeq atomic.Int64

func (n logOnlyNotifier) SendDirect(ctx context.Context, memberID int64, msg usecase.Message) error {
	n.logger.InfoContext(ctx, "direct message suppressed", "member_id", memberID, "title", msg.Title)
	return nil
}

func (n logOnlyNotifier) Announce(ctx context.Context, channelID int64, msg usecase.Message) (usecase.MessageRef, error) {
	ref := usecase.MessageRef{ChannelID: channelID, MessageID: logOnlyMessageSeq.Add(1)}
	n.logger.InfoContext(ctx, "announcement suppressed",
		"channel_id", channelID, "message_id", ref.MessageID, "title", msg.Title)
	return ref, nil
}

func (n logOnlyNotifier) DisableJoinPrompt(ctx context.Context, ref usecase.MessageRef) error {
	n.logger.InfoContext(ctx, "join prompt disable suppressed",
		"channel_id", ref.ChannelID, "message_id", ref.MessageID)
	return nil
}

type everyoneLiveMembership struct{}

func (everyoneLiveMembership) IsLiveMember(context.Context, int64) (bool, error) {
	return true, nil
}
