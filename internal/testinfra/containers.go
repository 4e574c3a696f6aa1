// Package testinfra starts the Postgres and Redis instances used by
// integration tests. Tests are skipped when neither a local instance nor
// Docker is available.
package testinfra

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// Postgres returns a connection to TEST_POSTGRES_URL, or to a fresh
// container when the variable is empty.
func Postgres(t *testing.T) *sqlx.DB {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}

	dsn := os.Getenv("TEST_POSTGRES_URL")
	if dsn == "" {
		ctx := context.Background()
		container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: testcontainers.ContainerRequest{
				Image:        "postgres:16-alpine",
				ExposedPorts: []string{"5432/tcp"},
				Env: map[string]string{
					"POSTGRES_USER":     "orders",
					"POSTGRES_PASSWORD": "orders",
					"POSTGRES_DB":       "orders",
				},
				WaitingFor: wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(time.Minute),
			},
			Started: true,
		})
		if err != nil {
			t.Skipf("postgres container unavailable: %v", err)
		}
		t.Cleanup(func() {
			_ = container.Terminate(context.Background())
		})

		host, err := container.Host(ctx)
		if err != nil {
			t.Fatalf("failed to get postgres host: %v", err)
		}
		port, err := container.MappedPort(ctx, "5432/tcp")
		if err != nil {
			t.Fatalf("failed to map postgres port: %v", err)
		}

		dsn = fmt.Sprintf("postgres://orders:orders@%s:%s/orders?sslmode=disable", host, port.Port())
	}

	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		t.Fatalf("failed to open postgres: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})

	if err := db.Ping(); err != nil {
		t.Skipf("postgres unavailable: %v", err)
	}

	return db
}

// Redis returns a client for TEST_REDIS_ADDR, or for a fresh container when
// the variable is empty.
func Redis(t *testing.T) *redis.Client {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping redis integration test in short mode")
	}

	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		ctx := context.Background()
		container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: testcontainers.ContainerRequest{
				Image:        "redis:7-alpine",
				ExposedPorts: []string{"6379/tcp"},
				WaitingFor:   wait.ForLog("Ready to accept connections"),
			},
			Started: true,
		})
		if err != nil {
			t.Skipf("redis container unavailable: %v", err)
		}
		t.Cleanup(func() {
			_ = container.Terminate(context.Background())
		})

		host, err := container.Host(ctx)
		if err != nil {
			t.Fatalf("failed to get redis host: %v", err)
		}
		port, err := container.MappedPort(ctx, "6379/tcp")
		if err != nil {
			t.Fatalf("failed to map redis port: %v", err)
		}

		addr = host + ":" + port.Port()
	}

	rdb := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() {
		_ = rdb.Close()
	})

	if err := rdb.Ping(context.Background()).Err(); err != nil {
		t.Skipf("redis unavailable: %v", err)
	}

	return rdb
}
