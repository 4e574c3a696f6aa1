package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"

	commonHTTP "github.com/ThreeDotsLabs/go-event-driven/common/http"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	trmsql "github.com/avito-tech/go-transaction-manager/drivers/sql/v2"
	trmsqlx "github.com/avito-tech/go-transaction-manager/drivers/sqlx/v2"
	"github.com/avito-tech/go-transaction-manager/trm/v2/manager"
	"github.com/avito-tech/go-transaction-manager/trm/v2/settings"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"orders/internal/application/services"
	"orders/internal/application/usecases/booking"
	"orders/internal/config"
	"orders/internal/infrastructure/clients"
	"orders/internal/infrastructure/event_publisher"
	"orders/internal/interfaces/http"
	ordersMessage "orders/internal/interfaces/message"
	"orders/internal/observability"
	"orders/internal/outbox"
	"orders/internal/repository"
)

type App struct {
	logger          zerolog.Logger
	router          *message.Router
	forwarder       *outbox.Forwarder
	srv             *http.Server
	shutdownTracing func(context.Context) error
}

func NewApp(
	cfg config.Config,
	watermillLogger watermill.LoggerAdapter,
	db *sqlx.DB,
	redisClient redis.UniversalClient,
) (*App, error) {
	policy, err := cfg.Policy()
	if err != nil {
		return nil, fmt.Errorf("failed to build booking policy: %w", err)
	}

	tp, err := observability.ConfigureTraceProvider(cfg.JaegerEndpoint)
	if err != nil {
		return nil, err
	}

	trManager := manager.Must(
		trmsqlx.NewDefaultFactory(db),
		manager.WithSettings(trmsql.MustSettings(
			settings.Must(settings.WithCancelable(true)),
			trmsql.WithTxOptions(&sql.TxOptions{Isolation: sql.LevelReadCommitted}),
		)),
	)

	bookingsRepo := repository.NewBookingsRepo(db, trmsqlx.DefaultCtxGetter)
	eventsRepo := repository.NewEventsRepo(db)

	// windows are always checked against a live lookup; the cache only serves enrichment
	menuClient := clients.NewMenuClient(cfg.MenuServiceURL, cfg.MenuLookupTimeout, nil)
	cachedMenus := clients.NewCachedMenuLookup(menuClient, redisClient, cfg.MenuCacheTTL)

	engine := booking.NewPolicyEngine(
		policy,
		bookingsRepo,
		menuClient,
		outbox.NewEventPublisher(db, trmsqlx.DefaultCtxGetter, watermillLogger),
		trManager,
		time.Now,
	)
	bookingService := services.NewBookingService(bookingsRepo, engine, cachedMenus, cfg.EnrichConcurrency)

	redisPublisher, err := event_publisher.NewRedisPublisher(watermillLogger, redisClient)
	if err != nil {
		return nil, fmt.Errorf("failed to create redis publisher: %w", err)
	}

	router, err := ordersMessage.NewRouter(
		watermillLogger,
		func(handlerName string) (message.Subscriber, error) {
			return event_publisher.NewRedisSubscriber(watermillLogger, redisClient, handlerName)
		},
		redisPublisher,
		eventsRepo,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create router: %w", err)
	}

	forwarder, err := outbox.NewForwarder(db, redisPublisher, watermillLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to create outbox forwarder: %w", err)
	}

	srv := http.NewServer(
		commonHTTP.NewEcho(),
		cfg.HTTPAddr,
		bookingService,
		[]byte(cfg.JWTSecret),
		router.IsRunning,
	)

	return &App{
		logger:          zerolog.New(os.Stdout).With().Timestamp().Str("service", "orders").Logger(),
		router:          router,
		forwarder:       forwarder,
		srv:             srv,
		shutdownTracing: tp.Shutdown,
	}, nil
}

// Migrate creates the bookings, event log and outbox tables.
func Migrate(ctx context.Context, db *sqlx.DB, watermillLogger watermill.LoggerAdapter) error {
	if err := repository.InitializeDBSchema(ctx, db); err != nil {
		return fmt.Errorf("failed to initialize db schema: %w", err)
	}
	if err := outbox.InitializeSchema(db, watermillLogger); err != nil {
		return fmt.Errorf("failed to initialize outbox schema: %w", err)
	}
	return nil
}

// Run blocks until ctx is cancelled or one of the components fails.
func (a *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info().Msg("starting router")

		return a.router.Run(ctx)
	})

	g.Go(func() error {
		a.logger.Info().Msg("starting outbox forwarder")

		return a.forwarder.Run(ctx)
	})

	g.Go(func() error {
		select {
		case <-a.router.Running():
		case <-ctx.Done():
			return nil
		}
		a.logger.Info().Msg("router is running")

		a.logger.Info().Msg("starting server")
		return a.srv.Start()
	})

	g.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		err := a.srv.Stop(shutdownCtx)
		if err != nil {
			a.logger.Err(err).Msg("error stopping server")
		}

		if err := a.shutdownTracing(shutdownCtx); err != nil {
			a.logger.Err(err).Msg("error flushing traces")
		}

		return err
	})

	err := g.Wait()
	a.logger.Info().Msg("orders stopped")
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (a *App) Close() error {
	return errors.Join(a.forwarder.Close(), a.router.Close())
}
