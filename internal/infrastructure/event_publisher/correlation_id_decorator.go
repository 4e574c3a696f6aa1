package event_publisher

import (
	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/ThreeDotsLabs/watermill/message"
)

const CorrelationIDMetadataKey = "correlation_id"

// CorrelationPublisherDecorator copies the correlation id of the message
// context into its metadata. Messages that already carry one keep it.
type CorrelationPublisherDecorator struct {
	message.Publisher
}

func (c CorrelationPublisherDecorator) Publish(topic string, messages ...*message.Message) error {
	for _, msg := range messages {
		if msg.Metadata.Get(CorrelationIDMetadataKey) != "" {
			continue
		}
		if correlationID := log.CorrelationIDFromContext(msg.Context()); correlationID != "" {
			msg.Metadata.Set(CorrelationIDMetadataKey, correlationID)
		}
	}
	return c.Publisher.Publish(topic, messages...)
}
