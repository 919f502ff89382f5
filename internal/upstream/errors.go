package upstream

import (
	"errors"
	"fmt"
)

// Kind classifies an upstream failure.
type Kind int

const (
	// KindTransport covers network errors, timeouts, non-2xx statuses and
	// bodies that cannot be understood.
	KindTransport Kind = iota + 1
	// KindUpstreamReported means the upstream answered with "erro": true.
	KindUpstreamReported
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport_error"
	case KindUpstreamReported:
		return "upstream_error"
	default:
		return "unknown"
	}
}

// Sentinel errors matched with errors.Is against an *Error.
var (
	ErrTransport        = errors.New("upstream transport failure")
	ErrUpstreamReported = errors.New("upstream reported an error")
)

// Error describes a failed upstream call.
type Error struct {
	Kind       Kind
	Operation  string
	StatusCode int
	Message    string
	Err        error
}

func newError(kind Kind, operation, message string, err error) *Error {
	return &Error{Kind: kind, Operation: operation, Message: message, Err: err}
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("upstream %s: %s", e.Operation, e.Message)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel for the error's kind.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrTransport:
		return e.Kind == KindTransport
	case ErrUpstreamReported:
		return e.Kind == KindUpstreamReported
	}
	return false
}
