// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package session

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidTransition is returned when an operation's precondition does
	// not hold in the current state. A presentation layer that respects the
	// state machine never sees it.
	ErrInvalidTransition = errors.New("invalid transition")

	// ErrTransportUnavailable indicates the gateway could not be reached.
	ErrTransportUnavailable = errors.New("transport unavailable")
)

// TransitionError describes which operation was refused and why.
type TransitionError struct {
	Op     string
	Phase  Phase
	Reason string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: %s in phase %s: %s", ErrInvalidTransition, e.Op, e.Phase, e.Reason)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }

// SubmissionRejectedError is a business-level refusal reported by the
// gateway. Reason is the gateway's message, unmodified, for display.
// RetryAfter is non-zero when the gateway asked the caller to wait.
type SubmissionRejectedError struct {
	Status     int
	Reason     string
	RetryAfter time.Duration
}

func (e *SubmissionRejectedError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("submission rejected (status %d): %s", e.Status, e.Reason)
	}
	return "submission rejected: " + e.Reason
}

// IsRejected reports whether err carries a SubmissionRejectedError.
func IsRejected(err error) bool {
	var rejected *SubmissionRejectedError
	return errors.As(err, &rejected)
}
