package event_publisher

import (
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/redis/go-redis/v9"
)

const consumerGroupPrefix = "svc-orders."

func NewRedisPublisher(
	wlogger watermill.LoggerAdapter,
	redisClient redis.UniversalClient,
) (message.Publisher, error) {
	publisher, err := redisstream.NewPublisher(redisstream.PublisherConfig{
		Client: redisClient,
	}, wlogger)
	if err != nil {
		return nil, err
	}

	return CorrelationPublisherDecorator{Publisher: publisher}, nil
}

// NewRedisSubscriber returns a subscriber in the consumer group of handlerName.
func NewRedisSubscriber(
	wlogger watermill.LoggerAdapter,
	redisClient redis.UniversalClient,
	handlerName string,
) (message.Subscriber, error) {
	return redisstream.NewSubscriber(redisstream.SubscriberConfig{
		Client:        redisClient,
		ConsumerGroup: consumerGroupPrefix + handlerName,
	}, wlogger)
}
