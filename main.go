package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"orders/internal/app"
	"orders/internal/config"
	"orders/internal/repository"
)

func main() {
	log.Init(logrus.InfoLevel)

	cliApp := &cli.App{
		Name:  "orders",
		Usage: "Canteen orders service",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "env-file",
				Value: ".env",
				Usage: "optional dotenv file loaded before the environment",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP API, the event router and the outbox forwarder",
				Action: serve,
			},
			{
				Name:   "migrate",
				Usage:  "create the database schema",
				Action: migrate,
			},
			{
				Name:      "events",
				Usage:     "print stored events of one type",
				ArgsUsage: "<event_name>",
				Action:    listEvents,
			},
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		logrus.WithError(err).Fatal("orders failed")
	}
}

func openDB(cfg config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

func serve(c *cli.Context) error {
	cfg, err := config.Load(c.String("env-file"))
	if err != nil {
		return err
	}

	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})
	defer redisClient.Close()

	watermillLogger := watermill.NewStdLogger(false, false)

	ctx, cancel := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := app.Migrate(ctx, db, watermillLogger); err != nil {
		return err
	}

	a, err := app.NewApp(cfg, watermillLogger, db, redisClient)
	if err != nil {
		return err
	}
	defer a.Close()

	return a.Run(ctx)
}

func migrate(c *cli.Context) error {
	cfg, err := config.Load(c.String("env-file"))
	if err != nil {
		return err
	}

	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := app.Migrate(c.Context, db, watermill.NewStdLogger(false, false)); err != nil {
		return err
	}

	logrus.Info("schema is up to date")
	return nil
}

func listEvents(c *cli.Context) error {
	name := c.Args().First()
	if name == "" {
		return cli.Exit("event name is required", 2)
	}

	cfg, err := config.Load(c.String("env-file"))
	if err != nil {
		return err
	}

	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	stored, err := repository.NewEventsRepo(db).ListByName(c.Context, name)
	if err != nil {
		return err
	}

	for _, e := range stored {
		fmt.Printf("%s\t%s\t%s\n", e.ID, e.PublishedAt.Format(time.RFC3339), e.Payload)
	}
	return nil
}
