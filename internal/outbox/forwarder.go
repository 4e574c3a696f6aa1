package outbox

import (
	"context"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	watermillSQL "github.com/ThreeDotsLabs/watermill-sql/v2/pkg/sql"
	"github.com/ThreeDotsLabs/watermill/components/forwarder"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/jmoiron/sqlx"
)

const pollInterval = 100 * time.Millisecond

// Forwarder moves events from the outbox table to the message broker.
type Forwarder struct {
	fwd *forwarder.Forwarder
}

func newSubscriber(db *sqlx.DB, logger watermill.LoggerAdapter) (*watermillSQL.Subscriber, error) {
	return watermillSQL.NewSubscriber(
		db,
		watermillSQL.SubscriberConfig{
			SchemaAdapter:  watermillSQL.DefaultPostgreSQLSchema{},
			OffsetsAdapter: watermillSQL.DefaultPostgreSQLOffsetsAdapter{},
			PollInterval:   pollInterval,
			ResendInterval: pollInterval,
			RetryInterval:  pollInterval,
		},
		logger,
	)
}

// InitializeSchema creates the outbox tables. Publishing into the outbox
// fails until they exist.
func InitializeSchema(db *sqlx.DB, logger watermill.LoggerAdapter) error {
	subscriber, err := newSubscriber(db, logger)
	if err != nil {
		return err
	}
	defer subscriber.Close()

	return subscriber.SubscribeInitialize(ForwarderTopic)
}

func NewForwarder(
	db *sqlx.DB,
	publisher message.Publisher,
	logger watermill.LoggerAdapter,
) (*Forwarder, error) {
	subscriber, err := newSubscriber(db, logger)
	if err != nil {
		return nil, err
	}

	if err := subscriber.SubscribeInitialize(ForwarderTopic); err != nil {
		return nil, err
	}

	fwd, err := forwarder.NewForwarder(subscriber, publisher, logger, forwarder.Config{
		ForwarderTopic: ForwarderTopic,
	})
	if err != nil {
		return nil, err
	}

	return &Forwarder{fwd: fwd}, nil
}

// Run blocks until ctx is done or the forwarder fails.
func (f *Forwarder) Run(ctx context.Context) error {
	return f.fwd.Run(ctx)
}

func (f *Forwarder) Running() chan struct{} {
	return f.fwd.Running()
}

func (f *Forwarder) Close() error {
	return f.fwd.Close()
}
