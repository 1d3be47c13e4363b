package gamehandlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	gameservice "github.com/Black-And-White-Club/leet-bot/app/modules/game/application"
	gamedomain "github.com/Black-And-White-Club/leet-bot/app/modules/game/domain"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

func requestMessage(t *testing.T, payload any) *message.Message {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	msg := message.NewMessage(watermill.NewUUID(), body)
	middleware.SetCorrelationID("corr-1", msg)
	return msg
}

func TestGameHandlers_HandleBetRequested(t *testing.T) {
	participantID := gofakeit.UUID()

	tests := []struct {
		name         string
		payload      any
		setupService func(*FakeService)
		wantTopic    string
		wantErr      bool
		verify       func(t *testing.T, body map[string]any)
	}{
		{
			name: "regular bet accepted",
			payload: BetRequestedPayload{
				Kind:             gamedomain.BetRegular,
				EarlyBirdRequest: gameservice.EarlyBirdRequest{Participant: gameservice.Participant{ID: participantID, ScopeID: "guild-1"}},
			},
			setupService: func(s *FakeService) {
				s.PlaceRegularFunc = func(_ context.Context, p gameservice.Participant) (*gamedomain.Bet, error) {
					b := sampleBet(p.ID, gamedomain.BetRegular, 12345)
					return &b, nil
				}
			},
			wantTopic: TopicBetAccepted,
			verify: func(t *testing.T, body map[string]any) {
				assert.Equal(t, participantID, body["participant_id"])
				assert.Equal(t, "12.345s", body["offset"])
			},
		},
		{
			name: "early bird routed by kind",
			payload: BetRequestedPayload{
				Kind: gamedomain.BetEarlyBird,
				EarlyBirdRequest: gameservice.EarlyBirdRequest{
					Participant: gameservice.Participant{ID: participantID, ScopeID: "guild-1"},
					Timestamp:   "28.5",
				},
			},
			setupService: func(s *FakeService) {
				s.PlaceRegularFunc = func(context.Context, gameservice.Participant) (*gamedomain.Bet, error) {
					t.Error("regular placement must not be called")
					return nil, nil
				}
				s.PlaceEarlyBirdFunc = func(_ context.Context, req gameservice.EarlyBirdRequest) (*gamedomain.Bet, error) {
					assert.Equal(t, "28.5", req.Timestamp)
					b := sampleBet(req.ID, gamedomain.BetEarlyBird, 28500)
					return &b, nil
				}
			},
			wantTopic: TopicBetAccepted,
			verify: func(t *testing.T, body map[string]any) {
				assert.Equal(t, "early_bird", body["kind"])
			},
		},
		{
			name: "rejection becomes an event",
			payload: BetRequestedPayload{
				EarlyBirdRequest: gameservice.EarlyBirdRequest{Participant: gameservice.Participant{ID: participantID, ScopeID: "guild-1"}},
			},
			setupService: func(s *FakeService) {
				s.PlaceRegularFunc = func(context.Context, gameservice.Participant) (*gamedomain.Bet, error) {
					existing := sampleBet(participantID, gamedomain.BetRegular, 1000)
					return nil, gamedomain.AlreadyBet(&existing)
				}
			},
			wantTopic: TopicBetRejected,
			verify: func(t *testing.T, body map[string]any) {
				assert.Equal(t, "already_bet", body["reason"])
				assert.Equal(t, participantID, body["participant_id"])
				assert.NotNil(t, body["existing_bet"])
			},
		},
		{
			name:      "unknown kind is rejected",
			payload:   map[string]any{"kind": "parlay", "participant_id": participantID, "scope_id": "guild-1"},
			wantTopic: TopicBetRejected,
			verify: func(t *testing.T, body map[string]any) {
				assert.Equal(t, "invalid_format", body["reason"])
			},
		},
		{
			name: "storage failure is retried by the router",
			payload: BetRequestedPayload{
				EarlyBirdRequest: gameservice.EarlyBirdRequest{Participant: gameservice.Participant{ID: participantID, ScopeID: "guild-1"}},
			},
			setupService: func(s *FakeService) {
				s.PlaceRegularFunc = func(context.Context, gameservice.Participant) (*gamedomain.Bet, error) {
					return nil, errors.New("connection reset")
				}
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &FakeService{}
			if tt.setupService != nil {
				tt.setupService(svc)
			}
			h := NewGameHandlers(svc, Config{}, slog.New(slog.NewTextHandler(io.Discard, nil)), noop.NewTracerProvider().Tracer("test"))

			results, err := h.HandleBetRequested(requestMessage(t, tt.payload))
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Len(t, results, 1)
			assert.Equal(t, tt.wantTopic, results[0].Topic)
			assert.Equal(t, "corr-1", middleware.MessageCorrelationID(results[0].Message))

			var body map[string]any
			require.NoError(t, json.Unmarshal(results[0].Message.Payload, &body))
			if tt.verify != nil {
				tt.verify(t, body)
			}
		})
	}
}

func TestGameHandlers_HandleBetRequested_DropsGarbage(t *testing.T) {
	h := NewGameHandlers(&FakeService{}, Config{}, slog.New(slog.NewTextHandler(io.Discard, nil)), nil)

	results, err := h.HandleBetRequested(message.NewMessage(watermill.NewUUID(), []byte("{not json")))
	require.NoError(t, err)
	assert.Empty(t, results)
}
