package message

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/google/uuid"

	"orders/internal/entities"
	"orders/internal/interfaces/message/events"
)

const (
	EventsSaverHandler    = "events_saver"
	EventsSplitterHandler = "events_splitter"
)

type EventRepository interface {
	SaveEvent(ctx context.Context, event entities.DatalakeEvent) error
}

// SubscriberFactory returns a subscriber owned by a single handler, so that
// every handler receives every message.
type SubscriberFactory func(handlerName string) (message.Subscriber, error)

func NewRouter(
	watermillLogger watermill.LoggerAdapter,
	newSubscriber SubscriberFactory,
	publisher message.Publisher,
	eventsRepo EventRepository,
) (*message.Router, error) {
	router, err := message.NewRouter(message.RouterConfig{}, watermillLogger)
	if err != nil {
		return nil, err
	}

	initMiddlewares(watermillLogger, router)

	saverSubscriber, err := newSubscriber(EventsSaverHandler)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s subscriber: %w", EventsSaverHandler, err)
	}
	router.AddNoPublisherHandler(
		EventsSaverHandler,
		events.Topic,
		saverSubscriber,
		func(msg *message.Message) error {
			event, eventName, err := decodeEvent(msg)
			if err != nil {
				return err
			}

			return eventsRepo.SaveEvent(msg.Context(), entities.DatalakeEvent{
				ID:          event.ID,
				PublishedAt: event.PublishedAt,
				EventName:   eventName,
				Payload:     msg.Payload,
			})
		},
	)

	splitterSubscriber, err := newSubscriber(EventsSplitterHandler)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s subscriber: %w", EventsSplitterHandler, err)
	}
	router.AddNoPublisherHandler(
		EventsSplitterHandler,
		events.Topic,
		splitterSubscriber,
		func(msg *message.Message) error {
			eventName := events.Marshaler.NameFromMessage(msg)
			if eventName == "" {
				return fmt.Errorf("%w: cannot get event name from message", events.ErrJsonUnmarshal)
			}

			return publisher.Publish(events.PerEventTopic(eventName), msg.Copy())
		},
	)

	return router, nil
}

type decodedHeader struct {
	ID          uuid.UUID
	PublishedAt time.Time
}

func decodeEvent(msg *message.Message) (decodedHeader, string, error) {
	var event struct {
		Header entities.EventHeader `json:"header"`
	}
	if err := events.Marshaler.Unmarshal(msg, &event); err != nil {
		return decodedHeader{}, "", fmt.Errorf("%w: %w", events.ErrJsonUnmarshal, err)
	}

	eventName := events.Marshaler.NameFromMessage(msg)
	if eventName == "" {
		return decodedHeader{}, "", fmt.Errorf("%w: cannot get event name from message", events.ErrJsonUnmarshal)
	}

	id, err := uuid.Parse(event.Header.ID)
	if err != nil {
		return decodedHeader{}, "", fmt.Errorf("%w: invalid event id %q", events.ErrJsonUnmarshal, event.Header.ID)
	}

	return decodedHeader{ID: id, PublishedAt: event.Header.PublishedAt}, eventName, nil
}

func initMiddlewares(watermillLogger watermill.LoggerAdapter, router *message.Router) {
	router.AddMiddleware(events.TracingMiddleware)
	router.AddMiddleware(middleware.Recoverer)
	router.AddMiddleware(events.CorrelationIDMiddleware)
	router.AddMiddleware(events.LoggingMiddleware)

	router.AddMiddleware(middleware.Retry{
		MaxRetries:      10,
		InitialInterval: time.Millisecond * 100,
		MaxInterval:     time.Second,
		Multiplier:      2,
		Logger:          watermillLogger,
	}.Middleware)

	// skip marshalling errors before retrying
	router.AddMiddleware(events.SkipMarshallingErrorsMiddleware)
	router.AddMiddleware(events.MetricsMiddleware)
}
