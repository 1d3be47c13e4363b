package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/Black-And-White-Club/leet-bot/app/eventbus"
	"github.com/Black-And-White-Club/leet-bot/app/modules/game"
	"github.com/Black-And-White-Club/leet-bot/app/observability"
	"github.com/Black-And-White-Club/leet-bot/config"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/bwmarrin/discordgo"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

const (
	serviceName     = "leet-bot"
	shutdownTimeout = 10 * time.Second
)

// Version is set at build time.
var Version = "dev"

// App holds the process-wide resources and the game module.
type App struct {
	Config        *config.Config
	Observability *observability.Observability
	DB            *bun.DB
	EventBus      *eventbus.EventBus
	Router        *message.Router
	GameModule    *game.Module

	discord    *discordgo.Session
	httpServer *http.Server
	wg         sync.WaitGroup
}

// NewApp connects storage, the optional bus and chat session, and builds the
// game module.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	obs, err := observability.Init(ctx, observability.Config{
		ServiceName:    serviceName,
		Version:        Version,
		Environment:    cfg.Observability.Environment,
		LogLevel:       cfg.Observability.LogLevel,
		MetricsAddress: cfg.Observability.MetricsAddress,
		OTLPEndpoint:   cfg.Observability.OTLPEndpoint,
		OTLPInsecure:   cfg.Observability.OTLPInsecure,
		SampleRate:     cfg.Observability.SampleRate,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize observability: %w", err)
	}
	logger := obs.Logger

	app := &App{Config: cfg, Observability: obs}

	app.DB = NewDB(cfg.Postgres.DSN)
	if err := app.DB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	logger.InfoContext(ctx, "Database connected")

	deps := game.Deps{
		Config:        cfg,
		Observability: obs,
		DB:            app.DB,
	}

	if cfg.NATS.URL != "" {
		bus, err := eventbus.NewEventBus(ctx, cfg.NATS.URL, serviceName, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create event bus: %w", err)
		}
		app.EventBus = bus

		router, err := message.NewRouter(message.RouterConfig{}, watermill.NewSlogLogger(logger))
		if err != nil {
			return nil, fmt.Errorf("failed to create Watermill router: %w", err)
		}
		router.AddMiddleware(
			middleware.CorrelationID,
			middleware.Recoverer,
		)
		app.Router = router

		deps.Publisher = bus
		deps.Subscriber = bus
		deps.Router = router
	} else {
		logger.InfoContext(ctx, "NATS not configured, message bus disabled")
	}

	if cfg.Discord.Token != "" {
		session, err := discordgo.New("Bot " + cfg.Discord.Token)
		if err != nil {
			return nil, fmt.Errorf("failed to create Discord session: %w", err)
		}
		app.discord = session
		deps.RoleSession = session
	}

	app.GameModule, err = game.NewGameModule(ctx, deps)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize game module: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/", app.GameModule.Handlers.Routes())
	mux.HandleFunc("/ready", app.handleReady)
	app.httpServer = &http.Server{
		Addr:              cfg.HTTP.ListenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return app, nil
}

// NewDB opens a bun handle over pgdriver.
func NewDB(dsn string) *bun.DB {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	return bun.NewDB(sqldb, pgdialect.New())
}

// Run serves until ctx is cancelled, then shuts everything down.
func (app *App) Run(ctx context.Context) error {
	logger := app.Observability.Logger

	app.Observability.ServeMetrics(app.Config.Observability.MetricsAddress)

	app.wg.Add(1)
	go app.GameModule.Run(ctx, &app.wg)

	routerErr := make(chan error, 1)
	if app.Router != nil {
		go func() {
			if err := app.Router.Run(ctx); err != nil {
				routerErr <- err
			}
		}()
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", slog.String("addr", app.httpServer.Addr))
		if err := app.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err := <-serverErr:
		runErr = fmt.Errorf("http server failed: %w", err)
	case err := <-routerErr:
		runErr = fmt.Errorf("watermill router failed: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := app.Close(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", slog.Any("error", err))
	}
	return runErr
}

// Close stops intake first, then the module, then the shared resources.
func (app *App) Close(ctx context.Context) error {
	var errs []error

	if app.httpServer != nil {
		errs = append(errs, app.httpServer.Shutdown(ctx))
	}
	if app.Router != nil {
		errs = append(errs, app.Router.Close())
	}
	if app.GameModule != nil {
		errs = append(errs, app.GameModule.Close(ctx))
	}
	app.wg.Wait()

	if app.EventBus != nil {
		errs = append(errs, app.EventBus.Close())
	}
	if app.discord != nil {
		errs = append(errs, app.discord.Close())
	}
	if app.DB != nil {
		errs = append(errs, app.DB.Close())
	}
	errs = append(errs, app.Observability.Shutdown(ctx))

	app.Observability.Logger.Info("Application shut down")
	return errors.Join(errs...)
}

func (app *App) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	checks := []func(context.Context) error{app.GameModule.HealthCheck}
	if app.EventBus != nil {
		checks = append(checks, app.EventBus.HealthCheck)
	}
	for _, check := range checks {
		if err := check(ctx); err != nil {
			app.Observability.Logger.WarnContext(ctx, "Readiness check failed", slog.Any("error", err))
			http.Error(w, "not ready", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
