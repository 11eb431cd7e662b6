package events

import (
	"context"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog/log"
)

// EventRouter owns the in-process pub/sub and a watermill router that
// dispatches published events to handlers.
type EventRouter struct {
	logger     watermill.LoggerAdapter
	Publisher  message.Publisher
	Subscriber message.Subscriber
	router     *message.Router
}

type EventRouterOption func(*EventRouter)

func WithLogger(logger watermill.LoggerAdapter) EventRouterOption {
	return func(r *EventRouter) {
		r.logger = logger
	}
}

// WithVerbose routes watermill's own logging through zerolog.
func WithVerbose(verbose bool) EventRouterOption {
	return func(r *EventRouter) {
		if verbose {
			r.logger = NewWatermillLogger(log.Logger)
		}
	}
}

func NewEventRouter(options ...EventRouterOption) (*EventRouter, error) {
	ret := &EventRouter{
		logger: watermill.NopLogger{},
	}
	for _, o := range options {
		o(ret)
	}

	goPubSub := newGoChannel(ret.logger)
	ret.Publisher = goPubSub
	ret.Subscriber = goPubSub

	router, err := message.NewRouter(message.RouterConfig{}, ret.logger)
	if err != nil {
		return nil, err
	}
	ret.router = router

	return ret, nil
}

func (e *EventRouter) AddHandler(name string, topic string, f func(msg *message.Message) error) {
	e.router.AddNoPublisherHandler(name, topic, e.Subscriber, f)
}

// Run blocks until ctx is done or the router is closed.
func (e *EventRouter) Run(ctx context.Context) error {
	return e.router.Run(ctx)
}

func (e *EventRouter) Running() chan struct{} {
	return e.router.Running()
}

func (e *EventRouter) Close() error {
	if err := e.Publisher.Close(); err != nil {
		log.Error().Err(err).Msg("failed to close pubsub")
	}
	if err := e.router.Close(); err != nil {
		log.Error().Err(err).Msg("failed to close router")
		return err
	}
	return nil
}

// HistoryHandler decodes history events and hands them to fn. Malformed
// payloads are logged and dropped.
func HistoryHandler(fn func(*HistoryEvent)) func(msg *message.Message) error {
	return func(msg *message.Message) error {
		e, err := NewHistoryEventFromJSON(msg.Payload)
		if err != nil {
			log.Warn().Err(err).Str("message_id", msg.UUID).Msg("dropping malformed history event")
			return nil
		}
		fn(e)
		return nil
	}
}

// LogHistoryEvent writes every history event to the debug log.
func LogHistoryEvent(msg *message.Message) error {
	e, err := NewHistoryEventFromJSON(msg.Payload)
	if err != nil {
		return nil
	}
	log.Debug().
		Str("type", string(e.Type)).
		Str("id", e.ID.String()).
		Str("title", e.Title).
		Int("turns", e.Turns).
		Str("sequence_number", msg.Metadata.Get("sequence_number")).
		Msg("history event")
	return nil
}
