package remote

import (
	"context"
	"time"
)

// EchoEndpoint answers with the message it was given. Useful offline.
type EchoEndpoint struct {
	Delay time.Duration
}

var _ Endpoint = (*EchoEndpoint)(nil)

func NewEchoEndpoint() *EchoEndpoint {
	return &EchoEndpoint{}
}

func (e *EchoEndpoint) Send(ctx context.Context, message string) (string, error) {
	if e.Delay > 0 {
		select {
		case <-ctx.Done():
			return "", &ServerError{Reason: "echo", Err: ctx.Err()}
		case <-time.After(e.Delay):
		}
	}
	return message, nil
}
