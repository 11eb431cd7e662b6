package remote

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
)

// ErrServerError is the single failure kind callers see: unreachable host,
// non-2xx status and malformed bodies are not told apart.
var ErrServerError = errors.New("server error")

// Endpoint sends one user utterance and returns one assistant utterance.
type Endpoint interface {
	Send(ctx context.Context, message string) (string, error)
}

// ServerError carries the detail of a failed call while still matching ErrServerError.
type ServerError struct {
	StatusCode int
	Reason     string
	Err        error
}

func (e *ServerError) Error() string {
	if e == nil {
		return ErrServerError.Error()
	}
	msg := ErrServerError.Error()
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s: status %d", msg, e.StatusCode)
	}
	if e.Reason != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Reason)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *ServerError) Is(target error) bool { return target == ErrServerError }

func (e *ServerError) Unwrap() error { return e.Err }
