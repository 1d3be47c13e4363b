package game

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	gameservice "github.com/Black-And-White-Club/leet-bot/app/modules/game/application"
	gamedomain "github.com/Black-And-White-Club/leet-bot/app/modules/game/domain"
	gamehandlers "github.com/Black-And-White-Club/leet-bot/app/modules/game/infrastructure/handlers"
	gamemetrics "github.com/Black-And-White-Club/leet-bot/app/modules/game/infrastructure/metrics"
	gamenotify "github.com/Black-And-White-Club/leet-bot/app/modules/game/infrastructure/notifier"
	gamequeue "github.com/Black-And-White-Club/leet-bot/app/modules/game/infrastructure/queue"
	gamedb "github.com/Black-And-White-Club/leet-bot/app/modules/game/infrastructure/repositories"
	gameroles "github.com/Black-And-White-Club/leet-bot/app/modules/game/infrastructure/roles"
	gamerouter "github.com/Black-And-White-Club/leet-bot/app/modules/game/infrastructure/router"
	gamescheduler "github.com/Black-And-White-Club/leet-bot/app/modules/game/infrastructure/scheduler"
	"github.com/Black-And-White-Club/leet-bot/app/observability"
	"github.com/Black-And-White-Club/leet-bot/config"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/uptrace/bun"
)

// Deps are the process-level resources the module builds on. Bus, Router and
// RoleSession are optional.
type Deps struct {
	Config        *config.Config
	Observability *observability.Observability
	DB            *bun.DB
	Clock         clockwork.Clock

	Publisher  message.Publisher
	Subscriber message.Subscriber
	Router     *message.Router

	RoleSession gameroles.RoleSession
}

// Module represents the game module.
type Module struct {
	GameService gameservice.Service
	Handlers    *gamehandlers.GameHandlers
	Scheduler   *gamescheduler.Scheduler
	GameRouter  *gamerouter.GameRouter

	queue      *gamequeue.Service
	logger     *slog.Logger
	cancelFunc context.CancelFunc
}

// NewGameModule creates and initializes the game module.
func NewGameModule(ctx context.Context, deps Deps) (*Module, error) {
	cfg := deps.Config
	logger := deps.Observability.Logger
	tracer := deps.Observability.Tracer
	clock := deps.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	logger.InfoContext(ctx, "game.NewGameModule initializing")

	schedule, err := gamedomain.NewSchedule(cfg.Game.Cron, cfg.Game.Timezone, cfg.Game.EarlyBirdCutoff)
	if err != nil {
		return nil, err
	}

	metrics, err := newMetrics(deps.Observability.Registry)
	if err != nil {
		return nil, err
	}

	m := &Module{logger: logger}

	notifier, err := m.buildNotifier(ctx, deps, clock, metrics)
	if err != nil {
		return nil, err
	}

	var roles gameservice.RoleMutator = gameroles.NewLogMutator(logger)
	if deps.RoleSession != nil {
		roles = gameroles.NewDiscordMutator(deps.RoleSession, gameroles.RoleIDs{
			gamedomain.TierSergeant:  cfg.Discord.Roles.Sergeant,
			gamedomain.TierCommander: cfg.Discord.Roles.Commander,
			gamedomain.TierGeneral:   cfg.Discord.Roles.General,
		}, logger)
	}

	service := gameservice.NewGameService(
		gamedb.NewRepository(deps.DB),
		schedule,
		Settings(cfg.Game),
		logger,
		metrics,
		tracer,
		deps.DB,
		gameservice.WithClock(clock),
		gameservice.WithNotifier(notifier),
		gameservice.WithRoleMutator(roles),
	)
	m.GameService = service

	m.Handlers = gamehandlers.NewGameHandlers(service, gamehandlers.Config{
		AdminSecret:       cfg.HTTP.AdminSecret,
		RateLimit:         cfg.HTTP.RateLimit,
		RateBurst:         cfg.HTTP.RateBurst,
		DefaultWindowDays: cfg.Game.ShortWindowDays,
		Location:          schedule.Location(),
		Clock:             clock,
	}, logger, tracer)

	if deps.Router != nil && deps.Subscriber != nil && deps.Publisher != nil {
		m.GameRouter = gamerouter.NewGameRouter(logger, deps.Router, deps.Subscriber, deps.Publisher)
		m.GameRouter.Configure(m.Handlers)
	}

	if cfg.Game.EnableScheduler {
		m.Scheduler = gamescheduler.New(
			service,
			schedule,
			service.WinTimes(),
			clock,
			gamescheduler.Config{MaxSleep: cfg.Game.MaxSleep},
			logger,
			metrics,
		)
	}

	return m, nil
}

// Settings maps the game config section onto service settings.
func Settings(g config.GameConfig) gameservice.Settings {
	return gameservice.Settings{
		WindowMs:        g.WindowMs,
		PenaltyMs:       g.PenaltyMs,
		ShortWindowDays: g.ShortWindowDays,
		LongWindowDays:  g.LongWindowDays,
		Thresholds:      g.TierThresholds,
	}
}

func newMetrics(reg prometheus.Registerer) (gamemetrics.GameMetrics, error) {
	if reg == nil {
		return gamemetrics.NewNoop(), nil
	}
	metrics, err := gamemetrics.NewPrometheus(reg)
	if err != nil {
		return nil, fmt.Errorf("failed to register game metrics: %w", err)
	}
	return metrics, nil
}

// buildNotifier fans announcements out to the webhook (inline or through the
// job queue) and, when a bus is present, to the event stream.
func (m *Module) buildNotifier(ctx context.Context, deps Deps, clock clockwork.Clock, metrics gamemetrics.GameMetrics) (gameservice.Notifier, error) {
	cfg := deps.Config
	logger := deps.Observability.Logger

	var sinks gamenotify.Multi
	if cfg.Webhook.URL != "" {
		webhook := gamenotify.NewWebhookNotifier(gamenotify.WebhookConfig{
			URL:     cfg.Webhook.URL,
			Secret:  cfg.Webhook.Secret,
			Timeout: cfg.Webhook.Timeout,
		}, clock, logger)

		if cfg.Webhook.UseQueue {
			queue, err := gamequeue.NewService(ctx, cfg.Postgres.DSN, webhook, logger, metrics)
			if err != nil {
				return nil, fmt.Errorf("failed to create notify queue: %w", err)
			}
			m.queue = queue
			sinks = append(sinks, queue)
		} else {
			sinks = append(sinks, webhook)
		}
	}
	if deps.Publisher != nil {
		sinks = append(sinks, gamenotify.NewEventPublisher(deps.Publisher, clock, logger))
	}
	if len(sinks) == 0 {
		logger.WarnContext(ctx, "No notification sink configured, announcements are dropped")
	}
	return sinks, nil
}

// Run starts the notify queue and drives the scheduler until ctx is done.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	m.logger.InfoContext(ctx, "Starting game module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	if m.queue != nil {
		if err := m.queue.Start(ctx); err != nil {
			m.logger.ErrorContext(ctx, "Failed to start notify queue", slog.Any("error", err))
		}
	}

	if m.Scheduler == nil {
		m.logger.InfoContext(ctx, "Game scheduler disabled")
		<-ctx.Done()
	} else if err := m.Scheduler.Run(ctx); err != nil {
		m.logger.ErrorContext(ctx, "Game scheduler stopped", slog.Any("error", err))
	}

	m.logger.InfoContext(ctx, "Game module goroutine stopped")
}

// HealthCheck pings storage and, when used, the job queue.
func (m *Module) HealthCheck(ctx context.Context) error {
	if err := m.GameService.Ping(ctx); err != nil {
		return err
	}
	if m.queue != nil {
		return m.queue.HealthCheck(ctx)
	}
	return nil
}

// Close shuts down the game module.
func (m *Module) Close(ctx context.Context) error {
	m.logger.Info("Stopping game module")

	if m.cancelFunc != nil {
		m.cancelFunc()
	}

	if m.queue != nil {
		if err := m.queue.Stop(ctx); err != nil {
			return fmt.Errorf("error stopping notify queue: %w", err)
		}
	}

	m.logger.Info("Game module stopped")
	return nil
}
