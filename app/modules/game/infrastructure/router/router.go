// Package gamerouter registers the game module's message handlers.
package gamerouter

import (
	"fmt"
	"log/slog"

	gamehandlers "github.com/Black-And-White-Club/leet-bot/app/modules/game/infrastructure/handlers"
	"github.com/ThreeDotsLabs/watermill/message"
)

// BetHandler answers bet requests arriving over the bus.
type BetHandler interface {
	HandleBetRequested(msg *message.Message) ([]gamehandlers.Result, error)
}

// GameRouter handles Watermill handler registration for game events.
type GameRouter struct {
	logger     *slog.Logger
	router     *message.Router
	subscriber message.Subscriber
	publisher  message.Publisher
}

func NewGameRouter(logger *slog.Logger, router *message.Router, subscriber message.Subscriber, publisher message.Publisher) *GameRouter {
	return &GameRouter{
		logger:     logger,
		router:     router,
		subscriber: subscriber,
		publisher:  publisher,
	}
}

// Configure wires the bet request topic to handlers.
func (r *GameRouter) Configure(handlers BetHandler) {
	handlerName := "game." + gamehandlers.TopicBetRequested

	r.logger.Info("Registering game module handlers",
		slog.String("bet_requested_subject", gamehandlers.TopicBetRequested),
	)

	r.router.AddNoPublisherHandler(
		handlerName,
		gamehandlers.TopicBetRequested,
		r.subscriber,
		r.publishResults(handlers.HandleBetRequested),
	)
}

// publishResults adapts a result-returning handler, publishing each result on
// its own topic. A publish failure nacks the request.
func (r *GameRouter) publishResults(handle func(*message.Message) ([]gamehandlers.Result, error)) message.NoPublishHandlerFunc {
	return func(msg *message.Message) error {
		results, err := handle(msg)
		if err != nil {
			return err
		}
		for _, res := range results {
			if err := r.publisher.Publish(res.Topic, res.Message); err != nil {
				return fmt.Errorf("failed to publish to %s: %w", res.Topic, err)
			}
		}
		return nil
	}
}

// Close shuts down the router.
func (r *GameRouter) Close() error {
	return r.router.Close()
}
