// Package gamequeue moves announcement delivery off the resolution path onto
// a River job queue backed by the game database.
package gamequeue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	gamedomain "github.com/Black-And-White-Club/leet-bot/app/modules/game/domain"
	gamemetrics "github.com/Black-And-White-Club/leet-bot/app/modules/game/infrastructure/metrics"
	"github.com/Black-And-White-Club/leet-bot/app/shared/attr"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivermigrate"
	"github.com/riverqueue/river/rivertype"
)

const component = "river"

// inserter is the slice of the River client the enqueuer needs.
type inserter interface {
	Insert(ctx context.Context, args river.JobArgs, opts *river.InsertOpts) (*rivertype.JobInsertResult, error)
}

// Service owns the River client and enqueues notify jobs. It satisfies the
// game service's Notifier contract.
type Service struct {
	client  *river.Client[pgx.Tx]
	pool    *pgxpool.Pool
	insert  inserter
	logger  *slog.Logger
	metrics gamemetrics.GameMetrics
}

// NewService creates a River-backed queue whose worker hands jobs to delivery.
func NewService(ctx context.Context, dsn string, delivery Delivery, logger *slog.Logger, metrics gamemetrics.GameMetrics) (*Service, error) {
	ctxLogger := logger.With(
		attr.String("operation", "new_game_queue_service"),
		attr.String("component", "river_queue"),
	)

	start := time.Now()
	metrics.RecordOperationAttempt(ctx, "initialize_service", component)
	ctxLogger.Info("Initializing game queue service")

	pool, err := newPool(ctx, dsn)
	if err != nil {
		ctxLogger.Error("Failed to open pgx pool for River", attr.Error(err))
		metrics.RecordOperationFailure(ctx, "initialize_service", component)
		return nil, err
	}

	workers := river.NewWorkers()
	river.AddWorker(workers, NewNotifyWorker(delivery, ctxLogger))

	client, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues: map[string]river.QueueConfig{
			queueNotify: {MaxWorkers: 4},
		},
		Workers: workers,
		Logger:  ctxLogger,
	})
	if err != nil {
		pool.Close()
		ctxLogger.Error("Failed to create River client", attr.Error(err))
		metrics.RecordOperationFailure(ctx, "initialize_service", component)
		return nil, fmt.Errorf("failed to create River client: %w", err)
	}

	metrics.RecordOperationSuccess(ctx, "initialize_service", component)
	metrics.RecordOperationDuration(ctx, "initialize_service", component, time.Since(start))
	ctxLogger.Info("Game queue service initialized")

	return &Service{client: client, pool: pool, insert: client, logger: ctxLogger, metrics: metrics}, nil
}

func newPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return pool, nil
}

// Migrate brings River's own tables up to date.
func Migrate(ctx context.Context, dsn string, logger *slog.Logger) error {
	pool, err := newPool(ctx, dsn)
	if err != nil {
		return err
	}
	defer pool.Close()

	migrator, err := rivermigrate.New(riverpgxv5.New(pool), nil)
	if err != nil {
		return fmt.Errorf("failed to create river migrator: %w", err)
	}
	res, err := migrator.Migrate(ctx, rivermigrate.DirectionUp, &rivermigrate.MigrateOpts{})
	if err != nil {
		return fmt.Errorf("failed to run river migrations: %w", err)
	}
	logger.Info("River migrations applied", attr.Int("versions", len(res.Versions)))
	return nil
}

// Start starts the River workers.
func (s *Service) Start(ctx context.Context) error {
	s.logger.Info("Starting game queue service")
	if err := s.client.Start(ctx); err != nil {
		s.logger.Error("Failed to start River client", attr.Error(err))
		return fmt.Errorf("failed to start River client: %w", err)
	}
	return nil
}

// Stop drains the workers and closes the pool.
func (s *Service) Stop(ctx context.Context) error {
	s.logger.Info("Stopping game queue service")
	defer s.pool.Close()
	if err := s.client.Stop(ctx); err != nil {
		s.logger.Error("Failed to stop River client", attr.Error(err))
		return fmt.Errorf("failed to stop River client: %w", err)
	}
	return nil
}

// HealthCheck pings the queue's connection pool.
func (s *Service) HealthCheck(ctx context.Context) error {
	if s.pool == nil {
		return fmt.Errorf("river pool is nil")
	}
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("queue service health check failed: %w", err)
	}
	return nil
}

func (s *Service) NotifyWinner(ctx context.Context, a gamedomain.WinnerAnnouncement) error {
	return s.enqueue(ctx, NotifyJob{
		Event:         gamedomain.EventWinnerDetermined,
		InstanceStart: a.InstanceStart,
		Winner:        &a,
	})
}

func (s *Service) NotifyCatastrophe(ctx context.Context, a gamedomain.CatastropheAnnouncement) error {
	return s.enqueue(ctx, NotifyJob{
		Event:         gamedomain.EventCatastrophic,
		InstanceStart: a.InstanceStart,
		Catastrophe:   &a,
	})
}

func (s *Service) enqueue(ctx context.Context, job NotifyJob) error {
	start := time.Now()
	s.metrics.RecordOperationAttempt(ctx, "enqueue_notify", component)
	defer func() {
		s.metrics.RecordOperationDuration(ctx, "enqueue_notify", component, time.Since(start))
	}()

	job.CorrelationID = attr.CorrelationID(ctx)
	res, err := s.insert.Insert(ctx, job, nil)
	if err != nil {
		s.metrics.RecordOperationFailure(ctx, "enqueue_notify", component)
		return fmt.Errorf("failed to enqueue %s: %w", job.Event, err)
	}

	s.metrics.RecordOperationSuccess(ctx, "enqueue_notify", component)
	if res.UniqueSkippedAsDuplicate {
		s.logger.InfoContext(ctx, "Notify job already queued",
			attr.String("event", string(job.Event)),
			attr.String("instance_start", job.InstanceStart),
		)
		return nil
	}
	s.logger.InfoContext(ctx, "Notify job queued",
		attr.String("event", string(job.Event)),
		attr.String("instance_start", job.InstanceStart),
		attr.Int64("job_id", res.Job.ID),
	)
	return nil
}
