//go:build integration

package containers

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	postgresImage = "postgres:16-alpine"
	pgDatabase    = "leet"
	pgUser        = "leet"
	pgPassword    = "leet"
)

func pgURL(host string, port nat.Port) string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", pgUser, pgPassword, host, port.Port(), pgDatabase)
}

// SetupPostgresContainer starts Postgres and returns the container with a
// DSN that has TLS disabled.
func SetupPostgresContainer(ctx context.Context) (*postgres.PostgresContainer, string, error) {
	c, err := postgres.Run(ctx, postgresImage,
		postgres.WithDatabase(pgDatabase),
		postgres.WithUsername(pgUser),
		postgres.WithPassword(pgPassword),
		testcontainers.WithWaitStrategy(
			wait.ForSQL("5432/tcp", "pgx", pgURL).WithStartupTimeout(45*time.Second),
		),
	)
	if err != nil {
		if c != nil {
			_ = c.Terminate(ctx)
		}
		return nil, "", fmt.Errorf("failed to start postgres container: %w", err)
	}

	dsn, err := disableSSL(c.ConnectionString(ctx))
	if err != nil {
		_ = c.Terminate(ctx)
		return nil, "", err
	}

	log.Printf("Postgres container ready (%s)", postgresImage)
	return c, dsn, nil
}

func disableSSL(dsn string, err error) (string, error) {
	if err != nil {
		return "", fmt.Errorf("failed to get postgres connection string: %w", err)
	}
	u, err := url.Parse(dsn)
	if err != nil {
		return "", fmt.Errorf("failed to parse connection string: %w", err)
	}
	q := u.Query()
	q.Set("sslmode", "disable")
	u.RawQuery = q.Encode()
	return u.String(), nil
}
