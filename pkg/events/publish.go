package events

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/rs/zerolog/log"
)

// PublisherManager distributes events to a set of publishers, each registered
// for a topic. Every outgoing message carries a sequence number.
type PublisherManager struct {
	Publishers     map[string][]message.Publisher
	sequenceNumber uint64
	mutex          sync.Mutex
}

func NewPublisherManager() *PublisherManager {
	return &PublisherManager{
		Publishers: make(map[string][]message.Publisher),
	}
}

func (s *PublisherManager) SubscribePublisher(topic string, pub message.Publisher) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.Publishers[topic] = append(s.Publishers[topic], pub)
}

// Publish serializes payload to JSON and hands it to every registered publisher.
// Delivery failures are logged, only encoding failures are returned.
func (s *PublisherManager) Publish(payload interface{}) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	for topic, pubs := range s.Publishers {
		for _, pub := range pubs {
			msg := message.NewMessage(watermill.NewUUID(), b)
			msg.Metadata.Set("sequence_number", fmt.Sprintf("%d", s.sequenceNumber))
			if err := pub.Publish(topic, msg); err != nil {
				log.Warn().Err(err).Str("topic", topic).Msg("failed to publish")
			}
		}
	}
	s.sequenceNumber++

	return nil
}

func (s *PublisherManager) PublishBlind(payload interface{}) {
	if err := s.Publish(payload); err != nil {
		log.Warn().Err(err).Msg("failed to publish")
	}
}

// NewGoChannel returns the in-process pub/sub used between the session
// manager and its subscribers. Publishing blocks until every subscriber acked,
// which keeps events in order.
func NewGoChannel() *gochannel.GoChannel {
	return newGoChannel(watermill.NopLogger{})
}

func newGoChannel(logger watermill.LoggerAdapter) *gochannel.GoChannel {
	return gochannel.NewGoChannel(gochannel.Config{
		BlockPublishUntilSubscriberAck: true,
	}, logger)
}
