package observability

import (
	"github.com/ThreeDotsLabs/watermill/message"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// PublisherWithTracing records a producer span per message and injects its
// context into the message metadata.
type PublisherWithTracing struct {
	message.Publisher
}

func (p PublisherWithTracing) Publish(topic string, messages ...*message.Message) error {
	for _, msg := range messages {
		ctx, span := otel.Tracer(serviceName).Start(
			msg.Context(),
			"publish "+topic,
			trace.WithSpanKind(trace.SpanKindProducer),
			trace.WithAttributes(
				attribute.String("messaging.destination", topic),
				attribute.String("messaging.message_id", msg.UUID),
			),
		)
		otel.GetTextMapPropagator().Inject(ctx, propagation.MapCarrier(msg.Metadata))
		span.End()
	}
	return p.Publisher.Publish(topic, messages...)
}
