package usecase

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrNotFound         = errors.New("resource not found")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrStoreUnavailable = errors.New("store unavailable")

	ErrNotRegistered       = errors.New("member is not registered")
	ErrAlreadyQueued       = errors.New("member is already in the queue")
	ErrStrikeLimitExceeded = errors.New("strike limit exceeded")
	ErrPenaltyActive       = errors.New("penalty window is active")
	ErrEmptyQueue          = errors.New("queue is empty")

	// ErrDeliveryBlocked is an expected, non-fatal direct-message outcome;
	// operations accumulate it into their report instead of failing.
	ErrDeliveryBlocked = errors.New("direct message delivery blocked")

	// ErrGatewayUnavailable marks the chat platform as temporarily
	// unreachable, typically a tripped circuit breaker.
	ErrGatewayUnavailable = errors.New("chat gateway unavailable")
)

// PenaltyActiveError carries the end of the penalty window so callers can
// tell the member when to retry.
type PenaltyActiveError struct {
	Until time.Time
}

func (e *PenaltyActiveError) Error() string {
	return fmt.Sprintf("penalty window is active until %s", e.Until.UTC().Format(time.RFC3339))
}

func (e *PenaltyActiveError) Is(target error) bool {
	return target == ErrPenaltyActive
}
