// Command notifysink receives game announcements, by webhook or from the
// event stream, and posts them to Discord.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Black-And-White-Club/leet-bot/app/eventbus"
	gamenotify "github.com/Black-And-White-Club/leet-bot/app/modules/game/infrastructure/notifier"
	"github.com/Black-And-White-Club/leet-bot/app/observability"
	"github.com/Black-And-White-Club/leet-bot/config"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/bwmarrin/discordgo"
)

const serviceName = "leet-notifysink"

func main() {
	configFile := flag.String("config", "config.yaml", "Path to the configuration file")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Discord.Token == "" {
		log.Fatal("DISCORD_TOKEN is required")
	}

	obs, err := observability.Init(ctx, observability.Config{
		ServiceName: serviceName,
		Environment: cfg.Observability.Environment,
		LogLevel:    cfg.Observability.LogLevel,
	})
	if err != nil {
		log.Fatalf("Failed to initialize observability: %v", err)
	}
	logger := obs.Logger

	session, err := discordgo.New("Bot " + cfg.Discord.Token)
	if err != nil {
		log.Fatalf("Failed to create Discord session: %v", err)
	}
	defer session.Close()

	announcer := gamenotify.NewDiscordAnnouncer(session, cfg.Discord.AnnounceChannels, cfg.Discord.FallbackChannel, logger)

	server := &http.Server{
		Addr:              cfg.Webhook.ListenAddr,
		Handler:           gamenotify.NewReceiver(cfg.Webhook.Secret, announcer, logger).Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("Webhook receiver listening", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Webhook receiver failed", slog.Any("error", err))
			cancel()
		}
	}()

	if cfg.NATS.URL != "" {
		bus, err := eventbus.NewEventBus(ctx, cfg.NATS.URL, serviceName, logger)
		if err != nil {
			log.Fatalf("Failed to create event bus: %v", err)
		}
		defer bus.Close()

		router, err := message.NewRouter(message.RouterConfig{}, watermill.NewSlogLogger(logger))
		if err != nil {
			log.Fatalf("Failed to create Watermill router: %v", err)
		}
		router.AddMiddleware(middleware.Recoverer)

		handler := gamenotify.ConsumeHandler(announcer, logger)
		for _, topic := range []string{gamenotify.TopicWinnerDetermined, gamenotify.TopicCatastrophic} {
			router.AddNoPublisherHandler("notifysink."+topic, topic, bus, handler)
		}

		go func() {
			if err := router.Run(ctx); err != nil {
				logger.Error("Watermill router stopped", slog.Any("error", err))
				cancel()
			}
		}()
		defer router.Close()
	}

	<-ctx.Done()
	logger.Info("Shutting down notification sink")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", slog.Any("error", err))
	}
}
