// Package gamescheduler resolves game instances as their active windows end.
package gamescheduler

import (
	"context"
	"log/slog"
	"time"

	gameservice "github.com/Black-And-White-Club/leet-bot/app/modules/game/application"
	gamedomain "github.com/Black-And-White-Club/leet-bot/app/modules/game/domain"
	gamemetrics "github.com/Black-And-White-Club/leet-bot/app/modules/game/infrastructure/metrics"
	"github.com/Black-And-White-Club/leet-bot/app/shared/attr"
	"github.com/jonboulle/clockwork"
)

const (
	DefaultMaxSleep       = 5 * time.Minute
	DefaultSettle         = 2 * time.Second
	DefaultRetryDelay     = 30 * time.Second
	DefaultMaxAttempts    = 5
	defaultResolveTimeout = time.Minute
)

// Resolver is the slice of the game service the scheduler drives.
type Resolver interface {
	ResolveInstance(ctx context.Context, instanceStart time.Time) (*gameservice.ResolutionReport, error)
}

// Config tunes the loop. Zero values take the defaults.
type Config struct {
	// MaxSleep bounds a single wait so wall-clock jumps are noticed.
	MaxSleep time.Duration
	// Settle is waited after the active window closes before resolving.
	Settle      time.Duration
	RetryDelay  time.Duration
	MaxAttempts int
}

func (c Config) withDefaults() Config {
	if c.MaxSleep <= 0 {
		c.MaxSleep = DefaultMaxSleep
	}
	if c.Settle < 0 {
		c.Settle = time.Millisecond
	} else if c.Settle == 0 {
		c.Settle = DefaultSettle
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = DefaultRetryDelay
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = DefaultMaxAttempts
	}
	return c
}

// Scheduler is a single long-lived task. Run it once per process.
type Scheduler struct {
	resolver Resolver
	schedule *gamedomain.Schedule
	wins     gamedomain.WinTimer
	clock    clockwork.Clock
	cfg      Config
	logger   *slog.Logger
	metrics  gamemetrics.GameMetrics
}

func New(
	resolver Resolver,
	schedule *gamedomain.Schedule,
	wins gamedomain.WinTimer,
	clock clockwork.Clock,
	cfg Config,
	logger *slog.Logger,
	metrics gamemetrics.GameMetrics,
) *Scheduler {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if metrics == nil {
		metrics = gamemetrics.NewNoop()
	}
	return &Scheduler{
		resolver: resolver,
		schedule: schedule,
		wins:     wins,
		clock:    clock,
		cfg:      cfg.withDefaults(),
		logger:   logger,
		metrics:  metrics,
	}
}

// Run resolves every instance once its window has closed until ctx is
// cancelled. On start it first catches up on the most recent instance, which
// is a no-op when that one already has a result. A resolution in flight is
// allowed to finish after cancellation.
func (s *Scheduler) Run(ctx context.Context) error {
	pending := s.schedule.PreviousInstance(s.clock.Now())
	if pending.IsZero() {
		pending = s.schedule.NextInstance(s.clock.Now())
	}
	s.logger.InfoContext(ctx, "Game scheduler started",
		attr.String("cron", s.schedule.Expression()),
		attr.Instance(pending),
	)

	attempts := 0
	for {
		if pending.IsZero() {
			s.logger.WarnContext(ctx, "Schedule has no further instances, scheduler idle")
			<-ctx.Done()
			return nil
		}

		now := s.clock.Now()
		s.metrics.RecordSchedulerTick(ctx, s.schedule.Phase(now, s.wins).Phase.String())

		due := s.schedule.ActiveEnd(pending, s.wins).Add(s.cfg.Settle)
		if now.Before(due) {
			if !s.sleep(ctx, min(due.Sub(now), s.cfg.MaxSleep)) {
				return nil
			}
			continue
		}

		attempts++
		if err := s.resolve(ctx, pending); err != nil {
			if attempts < s.cfg.MaxAttempts {
				s.logger.WarnContext(ctx, "Resolution failed, retrying",
					attr.Instance(pending),
					attr.Int("attempt", attempts),
					attr.Duration("retry_in", s.cfg.RetryDelay),
					attr.Error(err),
				)
				if !s.sleep(ctx, s.cfg.RetryDelay) {
					return nil
				}
				continue
			}
			s.logger.ErrorContext(ctx, "Giving up on instance",
				attr.Instance(pending),
				attr.Int("attempts", attempts),
				attr.Error(err),
			)
		}

		attempts = 0
		pending = s.schedule.NextInstance(pending)
	}
}

func (s *Scheduler) resolve(ctx context.Context, instance time.Time) error {
	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), defaultResolveTimeout)
	defer cancel()

	report, err := s.resolver.ResolveInstance(rctx, instance)
	if err != nil {
		return err
	}

	if report.AlreadyResolved {
		s.logger.InfoContext(ctx, "Instance already resolved", attr.Instance(instance))
		return nil
	}
	outcome := ""
	if report.Outcome != nil {
		outcome = string(report.Outcome.Kind())
	}
	s.logger.InfoContext(ctx, "Instance resolved",
		attr.Instance(instance),
		attr.String("date", report.InstanceDate),
		attr.String("outcome", outcome),
	)
	return nil
}

// sleep waits d on the scheduler clock. It reports false when ctx ends first.
func (s *Scheduler) sleep(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-s.clock.After(d):
		return true
	}
}
