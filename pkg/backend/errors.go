package backend

import (
	"errors"
	"fmt"
)

var (
	// ErrServerError indicates the backend answered with a 5xx status.
	ErrServerError = errors.New("backend server error")

	// ErrBackendRejected indicates the backend returned an error envelope.
	ErrBackendRejected = errors.New("backend rejected request")
)

// FetchError is the recoverable failure kind for any backend call:
// transport errors, timeouts, server errors, and error envelopes all
// surface as one. Callers keep their in-memory state and may retry.
type FetchError struct {
	Op       string // HTTP method
	Target   string // Full URL
	Message  string // Backend message, when the envelope carried one
	Envelope bool   // True when the backend answered with isError set
	Err      error
}

func (e *FetchError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s %s: %s (%v)", e.Op, e.Target, e.Message, e.Err)
	}

	return fmt.Sprintf("%s %s: %v", e.Op, e.Target, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// IsFetchError checks if an error is a recoverable backend fetch failure.
func IsFetchError(err error) bool {
	var target *FetchError

	return errors.As(err, &target)
}

// AsFetchError unwraps err into target, reporting success.
func AsFetchError(err error, target **FetchError) bool {
	return errors.As(err, target)
}
