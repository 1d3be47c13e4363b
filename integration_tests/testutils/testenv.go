//go:build integration

package testutils

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log"
	"log/slog"
	"testing"

	"github.com/testcontainers/testcontainers-go/modules/nats"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/migrate"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/Black-And-White-Club/leet-bot/app/eventbus"
	gamequeue "github.com/Black-And-White-Club/leet-bot/app/modules/game/infrastructure/queue"
	gamemigrations "github.com/Black-And-White-Club/leet-bot/app/modules/game/infrastructure/repositories/migrations"
	"github.com/Black-And-White-Club/leet-bot/integration_tests/containers"
)

// TestEnvironment holds the containers and connections shared by a package's tests.
type TestEnvironment struct {
	Ctx           context.Context
	CancelContext context.CancelFunc
	PgContainer   *postgres.PostgresContainer
	NatsContainer *nats.NATSContainer
	PgDSN         string
	NatsURL       string
	DB            *bun.DB
	EventBus      *eventbus.EventBus
	Logger        *slog.Logger
}

// NewTestEnvironment starts Postgres and NATS, migrates the schema and
// connects the event bus.
func NewTestEnvironment() (*TestEnvironment, error) {
	ctx, cancel := context.WithCancel(context.Background())
	env := &TestEnvironment{
		Ctx:           ctx,
		CancelContext: cancel,
		Logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	pgContainer, pgDSN, err := containers.SetupPostgresContainer(ctx)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to setup postgres container: %w", err)
	}
	env.PgContainer = pgContainer
	env.PgDSN = pgDSN

	natsContainer, natsURL, err := containers.SetupNatsContainer(ctx)
	if err != nil {
		env.Cleanup()
		return nil, fmt.Errorf("failed to setup nats container: %w", err)
	}
	env.NatsContainer = natsContainer
	env.NatsURL = natsURL

	sqlDB, err := sql.Open("pgx", pgDSN)
	if err != nil {
		env.Cleanup()
		return nil, fmt.Errorf("failed to open sql DB connection: %w", err)
	}
	env.DB = bun.NewDB(sqlDB, pgdialect.New())

	if err := env.runMigrations(ctx); err != nil {
		env.Cleanup()
		return nil, err
	}

	bus, err := eventbus.NewEventBus(ctx, natsURL, "integration", env.Logger)
	if err != nil {
		env.Cleanup()
		return nil, fmt.Errorf("failed to create EventBus: %w", err)
	}
	env.EventBus = bus

	return env, nil
}

func (env *TestEnvironment) runMigrations(ctx context.Context) error {
	migrator := migrate.NewMigrator(env.DB, gamemigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		return fmt.Errorf("failed to initialize migration tables: %w", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to run game migrations: %w", err)
	}
	if err := gamequeue.Migrate(ctx, env.PgDSN, env.Logger); err != nil {
		return fmt.Errorf("failed to run queue migrations: %w", err)
	}
	return nil
}

// ResetGameTables empties every game table between tests.
func (env *TestEnvironment) ResetGameTables(t *testing.T) {
	t.Helper()
	_, err := env.DB.ExecContext(env.Ctx, `
		TRUNCATE game_bets, game_resolutions, game_winners, game_player_stats, game_role_assignments
	`)
	if err != nil {
		t.Fatalf("failed to truncate game tables: %v", err)
	}
}

// PurgeStreams drops buffered messages so tests do not see each other's events.
func (env *TestEnvironment) PurgeStreams(ctx context.Context) error {
	js := env.EventBus.JetStream()
	for _, cfg := range eventbus.Streams {
		stream, err := js.Stream(ctx, cfg.Name)
		if err != nil {
			return fmt.Errorf("stream %s: %w", cfg.Name, err)
		}
		if err := stream.Purge(ctx); err != nil {
			return fmt.Errorf("failed to purge stream %s: %w", cfg.Name, err)
		}
	}
	return nil
}

// Cleanup closes connections and terminates the containers.
func (env *TestEnvironment) Cleanup() {
	if env.EventBus != nil {
		if err := env.EventBus.Close(); err != nil {
			log.Printf("Error closing EventBus: %v", err)
		}
	}
	if env.DB != nil {
		_ = env.DB.Close()
	}
	ctx := context.Background()
	if env.NatsContainer != nil {
		if err := env.NatsContainer.Terminate(ctx); err != nil {
			log.Printf("Failed to terminate NATS container: %v", err)
		}
	}
	if env.PgContainer != nil {
		if err := env.PgContainer.Terminate(ctx); err != nil {
			log.Printf("Failed to terminate Postgres container: %v", err)
		}
	}
	env.CancelContext()
}
