package reconciler

import (
	"context"
	"errors"
)

var (
	// ErrRemoteUnavailable marks a transient transport or backend failure
	ErrRemoteUnavailable = errors.New("remote unavailable")
	// ErrNotFound marks a delete whose target is already gone
	ErrNotFound = errors.New("subscription not found")
	// ErrInvalidInterest marks a malformed interest identifier
	ErrInvalidInterest = errors.New("invalid interest")
	// ErrTimeout marks work left unfinished when the pass deadline expired
	ErrTimeout = errors.New("timeout")
)

// ErrorKind is the failure taxonomy recorded in a Result
type ErrorKind string

const (
	KindRemoteUnavailable ErrorKind = "remote_unavailable"
	KindNotFound          ErrorKind = "not_found"
	KindInvalidInterest   ErrorKind = "invalid_interest"
	KindTimeout           ErrorKind = "timeout"
	KindUnknown           ErrorKind = "unknown"
)

// KindOf classifies an error. Context cancellation and deadline errors
// count as timeouts.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTimeout),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return KindTimeout
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrInvalidInterest):
		return KindInvalidInterest
	case errors.Is(err, ErrRemoteUnavailable):
		return KindRemoteUnavailable
	default:
		return KindUnknown
	}
}
