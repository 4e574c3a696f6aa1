package outbox

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/ThreeDotsLabs/watermill"
	watermillSQL "github.com/ThreeDotsLabs/watermill-sql/v2/pkg/sql"
	"github.com/ThreeDotsLabs/watermill/components/forwarder"
	"github.com/ThreeDotsLabs/watermill/message"
	trmsqlx "github.com/avito-tech/go-transaction-manager/drivers/sqlx/v2"
	"github.com/jmoiron/sqlx"

	"orders/internal/entities"
	"orders/internal/infrastructure/event_publisher"
	"orders/internal/interfaces/message/events"
	"orders/internal/observability"
)

// ForwarderTopic is the SQL table topic holding events until they are
// forwarded to Redis.
const ForwarderTopic = "events_to_forward"

// NewPublisher returns a publisher that writes messages into the outbox
// table using tx.
func NewPublisher(
	tx watermillSQL.ContextExecutor,
	logger watermill.LoggerAdapter,
) (message.Publisher, error) {
	publisher, err := watermillSQL.NewPublisher(
		tx,
		watermillSQL.PublisherConfig{
			SchemaAdapter: watermillSQL.DefaultPostgreSQLSchema{},
		},
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create publisher: %w", err)
	}

	return forwarder.NewPublisher(
		observability.PublisherWithTracing{Publisher: publisher},
		forwarder.PublisherConfig{ForwarderTopic: ForwarderTopic},
	), nil
}

// EventPublisher stores events in the outbox within the transaction
// carried by ctx, so they are only forwarded when it commits.
type EventPublisher struct {
	db     *sqlx.DB
	getter *trmsqlx.CtxGetter
	logger watermill.LoggerAdapter
}

func NewEventPublisher(db *sqlx.DB, getter *trmsqlx.CtxGetter, logger watermill.LoggerAdapter) *EventPublisher {
	return &EventPublisher{db: db, getter: getter, logger: logger}
}

func (p *EventPublisher) Publish(ctx context.Context, event entities.Event) error {
	tx := p.getter.DefaultTrOrDB(ctx, p.db)

	publisher, err := NewPublisher(tx, p.logger)
	if err != nil {
		return err
	}

	eventBus, err := events.NewEventBus(event_publisher.CorrelationPublisherDecorator{Publisher: publisher}, p.logger)
	if err != nil {
		return fmt.Errorf("failed to create event bus: %w", err)
	}

	log.FromContext(ctx).
		WithField("event_id", event.EventHeader().ID).
		Debugf("publishing %T", event)

	if err := eventBus.Publish(ctx, event); err != nil {
		return fmt.Errorf("failed to publish %T: %w", event, err)
	}
	return nil
}
