package usecase

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// Message is a notification payload rendered by the chat platform.
type Message struct {
	Title string
	Body  string
}

// MessageRef identifies a previously posted channel message.
type MessageRef struct {
	ChannelID int64
	MessageID int64
}

// Notifier is the best-effort notification sink. SendDirect returns
// ErrDeliveryBlocked when the member refuses direct messages; that outcome
// is expected and non-fatal.
type Notifier interface {
	SendDirect(ctx context.Context, memberID int64, msg Message) error
	// Announce posts a broadcast carrying the queue-join prompt and returns
	// a reference to the posted message.
	Announce(ctx context.Context, channelID int64, msg Message) (MessageRef, error)
	// DisableJoinPrompt turns off the join prompt on a previously announced
	// message. Returns ErrNotFound when the message no longer exists.
	DisableJoinPrompt(ctx context.Context, ref MessageRef) error
}

// Membership resolves whether an id still belongs to the community.
type Membership interface {
	IsLiveMember(ctx context.Context, memberID int64) (bool, error)
}

// ParseMessageLink extracts a MessageRef from a chat message link whose last
// two path segments are the channel and message ids.
func ParseMessageLink(link string) (MessageRef, error) {
	parts := strings.Split(strings.TrimRight(strings.TrimSpace(link), "/"), "/")
	if len(parts) < 2 {
		return MessageRef{}, fmt.Errorf("%w: malformed message link", ErrInvalidInput)
	}

	channelID, err := strconv.ParseInt(parts[len(parts)-2], 10, 64)
	if err != nil {
		return MessageRef{}, fmt.Errorf("%w: malformed message link", ErrInvalidInput)
	}
	messageID, err := strconv.ParseInt(parts[len(parts)-1], 10, 64)
	if err != nil {
		return MessageRef{}, fmt.Errorf("%w: malformed message link", ErrInvalidInput)
	}
	if channelID <= 0 || messageID <= 0 {
		return MessageRef{}, fmt.Errorf("%w: malformed message link", ErrInvalidInput)
	}

	return MessageRef{ChannelID: channelID, MessageID: messageID}, nil
}
