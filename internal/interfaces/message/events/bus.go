package events

import (
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/components/cqrs"
	"github.com/ThreeDotsLabs/watermill/message"
)

// Topic receives every booking event. The router stores each one in the
// event log and fans it out to a per-event topic.
const Topic = "events"

var Marshaler = cqrs.JSONMarshaler{
	GenerateName: cqrs.StructName,
}

// PerEventTopic is the topic downstream services subscribe to for a single
// event type.
func PerEventTopic(eventName string) string {
	return Topic + "." + eventName
}

func NewEventBus(
	pub message.Publisher,
	logger watermill.LoggerAdapter,
) (*cqrs.EventBus, error) {
	return cqrs.NewEventBusWithConfig(
		pub,
		cqrs.EventBusConfig{
			GeneratePublishTopic: func(params cqrs.GenerateEventPublishTopicParams) (string, error) {
				return Topic, nil
			},
			Marshaler: Marshaler,
			Logger:    logger,
		},
	)
}
