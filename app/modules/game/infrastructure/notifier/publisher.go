package gamenotify

import (
	"context"
	"fmt"
	"log/slog"

	gamedomain "github.com/Black-And-White-Club/leet-bot/app/modules/game/domain"
	"github.com/Black-And-White-Club/leet-bot/app/shared/attr"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/jonboulle/clockwork"
)

const (
	TopicWinnerDetermined = "game.winner_determined"
	TopicCatastrophic     = "game.catastrophic_event"
)

// EventPublisher emits announcements as envelopes on the message bus.
type EventPublisher struct {
	publisher message.Publisher
	clock     clockwork.Clock
	logger    *slog.Logger
}

func NewEventPublisher(publisher message.Publisher, clock clockwork.Clock, logger *slog.Logger) *EventPublisher {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &EventPublisher{publisher: publisher, clock: clock, logger: logger}
}

func (p *EventPublisher) NotifyWinner(ctx context.Context, a gamedomain.WinnerAnnouncement) error {
	return p.publish(ctx, TopicWinnerDetermined, gamedomain.EventWinnerDetermined, a)
}

func (p *EventPublisher) NotifyCatastrophe(ctx context.Context, a gamedomain.CatastropheAnnouncement) error {
	return p.publish(ctx, TopicCatastrophic, gamedomain.EventCatastrophic, a)
}

func (p *EventPublisher) publish(ctx context.Context, topic string, kind gamedomain.EventKind, data any) error {
	payload, err := encodeEnvelope(kind, data, p.clock.Now())
	if err != nil {
		return err
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set("event", string(kind))
	if id := attr.CorrelationID(ctx); id != "" {
		middleware.SetCorrelationID(id, msg)
	}

	if err := p.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish %s: %w", kind, err)
	}
	p.logger.InfoContext(ctx, "Notification published",
		attr.String("topic", topic),
		attr.String("message_id", msg.UUID),
	)
	return nil
}

// ConsumeHandler feeds envelopes from the bus into announcer. Undecodable
// messages are logged and acknowledged; announcer failures are returned so
// the router can nack them.
func ConsumeHandler(announcer Announcer, logger *slog.Logger) message.NoPublishHandlerFunc {
	return func(msg *message.Message) error {
		ctx := msg.Context()
		if id := middleware.MessageCorrelationID(msg); id != "" {
			ctx = attr.WithCorrelationID(ctx, id)
		}

		env, err := DecodeEnvelope(msg.Payload)
		if err != nil {
			logger.WarnContext(ctx, "Dropping undecodable notification",
				attr.String("message_id", msg.UUID),
				attr.Error(err),
			)
			return nil
		}
		return Dispatch(ctx, announcer, env)
	}
}
