package pipeline

import (
	"context"
	"errors"
)

var (
	// ErrTransport is a network failure or a timeout of an external call.
	ErrTransport = errors.New("transport failure")

	// ErrSchema is a response of unexpected shape.
	ErrSchema = errors.New("schema mismatch")

	// ErrNotFound is a response telling that the provider has no data.
	ErrNotFound = errors.New("not found")
)

// Failure is a category of the failure taxonomy.
type Failure string

const (
	FailureNone      Failure = ""
	FailureTransport Failure = "transport"
	FailureSchema    Failure = "schema"
	FailureNotFound  Failure = "not_found"
	FailureUniverse  Failure = "universe"
	FailureWrite     Failure = "write"
)

// Classify returns the failure category of an adapter error.
// Timeouts and cancellations count as transport failures; errors
// of unknown origin count as schema mismatches since they happen
// while interpreting data.
func Classify(err error) Failure {
	switch {
	case err == nil:
		return FailureNone
	case errors.Is(err, ErrTransport),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return FailureTransport
	case errors.Is(err, ErrNotFound):
		return FailureNotFound
	default:
		return FailureSchema
	}
}
