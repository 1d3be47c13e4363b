package gameservice

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	gamedomain "github.com/Black-And-White-Club/leet-bot/app/modules/game/domain"
	gamemetrics "github.com/Black-And-White-Club/leet-bot/app/modules/game/infrastructure/metrics"
	gamedb "github.com/Black-And-White-Club/leet-bot/app/modules/game/infrastructure/repositories"
	"github.com/Black-And-White-Club/leet-bot/app/shared/attr"
	"github.com/Black-And-White-Club/leet-bot/app/shared/results"
	"github.com/jonboulle/clockwork"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "GameService"

// Settings are the tunables of the engine.
type Settings struct {
	WindowMs        int64
	PenaltyMs       int64
	ShortWindowDays int
	LongWindowDays  int
	Thresholds      gamedomain.TierThresholds
}

// DefaultSettings mirrors the documented defaults.
func DefaultSettings() Settings {
	return Settings{
		WindowMs:        gamedomain.DefaultWindowMs,
		PenaltyMs:       gamedomain.DefaultPenaltyMs,
		ShortWindowDays: 14,
		LongWindowDays:  365,
		Thresholds:      gamedomain.DefaultTierThresholds(),
	}
}

// GameService implements the Service interface.
type GameService struct {
	repo     gamedb.Repository
	db       *bun.DB
	schedule *gamedomain.Schedule
	winTimes *gamedomain.WinTimeGenerator
	settings Settings

	clock    clockwork.Clock
	notifier Notifier
	roles    RoleMutator

	logger  *slog.Logger
	metrics gamemetrics.GameMetrics
	tracer  trace.Tracer
}

// Option customises a GameService.
type Option func(*GameService)

// WithClock replaces the wall clock.
func WithClock(c clockwork.Clock) Option {
	return func(s *GameService) { s.clock = c }
}

// WithNotifier sets the announcement sink.
func WithNotifier(n Notifier) Option {
	return func(s *GameService) { s.notifier = n }
}

// WithRoleMutator sets the chat platform role adapter.
func WithRoleMutator(m RoleMutator) Option {
	return func(s *GameService) { s.roles = m }
}

// NewGameService creates a new GameService.
func NewGameService(
	repo gamedb.Repository,
	schedule *gamedomain.Schedule,
	settings Settings,
	logger *slog.Logger,
	metrics gamemetrics.GameMetrics,
	tracer trace.Tracer,
	db *bun.DB,
	opts ...Option,
) *GameService {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = gamemetrics.NewNoop()
	}
	s := &GameService{
		repo:     repo,
		db:       db,
		schedule: schedule,
		winTimes: gamedomain.NewWinTimeGenerator(settings.WindowMs, 0),
		settings: settings,
		clock:    clockwork.NewRealClock(),
		logger:   logger,
		metrics:  metrics,
		tracer:   tracer,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Schedule exposes the parsed schedule.
func (s *GameService) Schedule() *gamedomain.Schedule { return s.schedule }

// WinTimes exposes the win-time generator.
func (s *GameService) WinTimes() *gamedomain.WinTimeGenerator { return s.winTimes }

func (s *GameService) Ping(ctx context.Context) error {
	if s.db == nil {
		return nil
	}
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	return nil
}

// unwrap turns an operation result into the public (value, error) shape.
func unwrap[S any](result results.OperationResult[S, error], err error) (S, error) {
	var zero S
	if err != nil {
		return zero, err
	}
	if result.IsFailure() {
		return zero, *result.Failure
	}
	if result.Success == nil {
		return zero, nil
	}
	return *result.Success, nil
}

// operationFunc is the generic signature for service operation functions.
type operationFunc[S any, F any] func(ctx context.Context) (results.OperationResult[S, F], error)

// withTelemetry wraps a service operation with tracing, metrics, and panic recovery.
func withTelemetry[S any, F any](
	s *GameService,
	ctx context.Context,
	operationName string,
	identifier string,
	op operationFunc[S, F],
) (result results.OperationResult[S, F], err error) {
	var span trace.Span
	if s.tracer != nil {
		ctx, span = s.tracer.Start(ctx, operationName, trace.WithAttributes(
			attribute.String("operation", operationName),
			attribute.String("identifier", identifier),
		))
	} else {
		span = trace.SpanFromContext(ctx)
	}
	defer span.End()

	s.metrics.RecordOperationAttempt(ctx, operationName, serviceName)

	startTime := time.Now()
	defer func() {
		s.metrics.RecordOperationDuration(ctx, operationName, serviceName, time.Since(startTime))
	}()

	s.logger.InfoContext(ctx, "Operation triggered", attr.ExtractCorrelationID(ctx), attr.String("operation", operationName))

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", operationName, r)
			s.logger.ErrorContext(ctx, "Critical panic recovered",
				attr.ExtractCorrelationID(ctx),
				attr.String("identifier", identifier),
				attr.Error(err),
			)
			s.metrics.RecordOperationFailure(ctx, operationName, serviceName)
			span.RecordError(err)
			result = results.OperationResult[S, F]{}
		}
	}()

	result, err = op(ctx)

	if err != nil {
		wrappedErr := fmt.Errorf("%s: %w", operationName, err)
		s.logger.ErrorContext(ctx, "Operation failed with error",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.String("identifier", identifier),
			attr.Error(wrappedErr),
		)
		s.metrics.RecordOperationFailure(ctx, operationName, serviceName)
		span.RecordError(wrappedErr)
		return result, wrappedErr
	}

	if result.IsFailure() {
		s.logger.WarnContext(ctx, "Operation returned failure result",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.String("identifier", identifier),
			attr.Any("failure_payload", *result.Failure),
		)
	}

	if result.IsSuccess() {
		s.logger.InfoContext(ctx, "Operation completed successfully",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.String("identifier", identifier),
		)
	}

	s.metrics.RecordOperationSuccess(ctx, operationName, serviceName)
	return result, nil
}

// runInTx ensures the operation runs within a transaction.
func runInTx[S any, F any](
	s *GameService,
	ctx context.Context,
	fn func(ctx context.Context, db bun.IDB) (results.OperationResult[S, F], error),
) (results.OperationResult[S, F], error) {
	if s.db == nil {
		return fn(ctx, nil)
	}

	var result results.OperationResult[S, F]

	err := s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		var txErr error
		result, txErr = fn(ctx, tx)
		return txErr
	})

	return result, err
}
