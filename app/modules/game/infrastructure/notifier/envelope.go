// Package gamenotify delivers resolution announcements: as a signed webhook,
// as events on the message bus, or both.
package gamenotify

import (
	"encoding/json"
	"fmt"
	"time"

	gamedomain "github.com/Black-And-White-Club/leet-bot/app/modules/game/domain"
)

// Envelope is the wire form of every notification.
type Envelope struct {
	Event     gamedomain.EventKind `json:"event"`
	Data      json.RawMessage      `json:"data"`
	Timestamp string               `json:"timestamp"`
}

func encodeEnvelope(kind gamedomain.EventKind, data any, at time.Time) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", kind, err)
	}
	body, err := json.Marshal(Envelope{
		Event:     kind,
		Data:      raw,
		Timestamp: gamedomain.FormatTimestamp(at.UTC()),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal envelope: %w", err)
	}
	return body, nil
}

// DecodeEnvelope parses a notification body.
func DecodeEnvelope(body []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return Envelope{}, fmt.Errorf("failed to decode envelope: %w", err)
	}
	if env.Event == "" {
		return Envelope{}, fmt.Errorf("envelope has no event")
	}
	return env, nil
}

// Winner decodes the payload of a winner_determined envelope.
func (e Envelope) Winner() (gamedomain.WinnerAnnouncement, error) {
	var a gamedomain.WinnerAnnouncement
	if e.Event != gamedomain.EventWinnerDetermined {
		return a, fmt.Errorf("expected %s, got %s", gamedomain.EventWinnerDetermined, e.Event)
	}
	if err := json.Unmarshal(e.Data, &a); err != nil {
		return a, fmt.Errorf("failed to decode winner: %w", err)
	}
	return a, nil
}

// Catastrophe decodes the payload of a catastrophic_event envelope.
func (e Envelope) Catastrophe() (gamedomain.CatastropheAnnouncement, error) {
	var a gamedomain.CatastropheAnnouncement
	if e.Event != gamedomain.EventCatastrophic {
		return a, fmt.Errorf("expected %s, got %s", gamedomain.EventCatastrophic, e.Event)
	}
	if err := json.Unmarshal(e.Data, &a); err != nil {
		return a, fmt.Errorf("failed to decode catastrophe: %w", err)
	}
	return a, nil
}
