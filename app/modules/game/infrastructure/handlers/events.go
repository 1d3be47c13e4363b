package gamehandlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	gameservice "github.com/Black-And-White-Club/leet-bot/app/modules/game/application"
	gamedomain "github.com/Black-And-White-Club/leet-bot/app/modules/game/domain"
	"github.com/Black-And-White-Club/leet-bot/app/shared/attr"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
)

const (
	TopicBetRequested = "game.bet.requested.v1"
	TopicBetAccepted  = "game.bet.accepted.v1"
	TopicBetRejected  = "game.bet.rejected.v1"
)

// BetRequestedPayload asks for a bet from a chat front end. Kind selects the
// operation; the early-bird fields are ignored for regular bets.
type BetRequestedPayload struct {
	Kind gamedomain.BetKind `json:"kind"`
	gameservice.EarlyBirdRequest
}

// BetRejectedPayload tells the front end why a bet was refused.
type BetRejectedPayload struct {
	ParticipantID string   `json:"participant_id"`
	ScopeID       string   `json:"scope_id"`
	Reason        string   `json:"reason"`
	Message       string   `json:"message"`
	Existing      *betJSON `json:"existing_bet,omitempty"`
}

// Result is an outgoing message and the topic it belongs on.
type Result struct {
	Topic   string
	Message *message.Message
}

// HandleBetRequested places the requested bet and answers with an accepted or
// rejected event. Only infrastructure failures are returned as errors.
func (h *GameHandlers) HandleBetRequested(msg *message.Message) ([]Result, error) {
	ctx := msg.Context()
	if id := middleware.MessageCorrelationID(msg); id != "" {
		ctx = attr.WithCorrelationID(ctx, id)
	}

	var req BetRequestedPayload
	if err := json.Unmarshal(msg.Payload, &req); err != nil {
		h.logger.WarnContext(ctx, "Dropping malformed bet request",
			attr.String("message_id", msg.UUID),
			attr.Error(err),
		)
		return nil, nil
	}

	bet, err := h.placeRequested(ctx, req)
	var verr *gamedomain.ValidationError
	switch {
	case errors.As(err, &verr):
		rejected := BetRejectedPayload{
			ParticipantID: req.ID,
			ScopeID:       req.ScopeID,
			Reason:        string(verr.Reason),
			Message:       verr.Message,
		}
		if verr.Existing != nil {
			existing := toBetJSON(*verr.Existing)
			rejected.Existing = &existing
		}
		out, err := reply(msg, rejected)
		if err != nil {
			return nil, err
		}
		return []Result{{Topic: TopicBetRejected, Message: out}}, nil
	case err != nil:
		return nil, err
	}

	out, err := reply(msg, toBetJSON(*bet))
	if err != nil {
		return nil, err
	}
	return []Result{{Topic: TopicBetAccepted, Message: out}}, nil
}

func (h *GameHandlers) placeRequested(ctx context.Context, req BetRequestedPayload) (*gamedomain.Bet, error) {
	switch req.Kind {
	case gamedomain.BetRegular, "":
		return h.service.PlaceRegular(ctx, req.Participant)
	case gamedomain.BetEarlyBird:
		return h.service.PlaceEarlyBird(ctx, req.EarlyBirdRequest)
	default:
		return nil, gamedomain.Rejected(gamedomain.ReasonInvalidFormat, "unknown bet kind %q", req.Kind)
	}
}

// reply builds a response message that keeps the request's correlation id.
func reply(in *message.Message, payload any) (*message.Message, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal reply: %w", err)
	}
	out := message.NewMessage(watermill.NewUUID(), body)
	if id := middleware.MessageCorrelationID(in); id != "" {
		middleware.SetCorrelationID(id, out)
	}
	out.SetContext(in.Context())
	return out, nil
}
