package gamenotify

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	gamedomain "github.com/Black-And-White-Club/leet-bot/app/modules/game/domain"
	"github.com/Black-And-White-Club/leet-bot/app/shared/attr"
	"github.com/Black-And-White-Club/leet-bot/app/shared/httpauth"
	"github.com/go-chi/chi/v5"
)

const maxEnvelopeBytes = 1 << 20

// Announcer turns announcements into chat messages.
type Announcer interface {
	AnnounceWinner(ctx context.Context, a gamedomain.WinnerAnnouncement) error
	AnnounceCatastrophe(ctx context.Context, a gamedomain.CatastropheAnnouncement) error
}

// Receiver accepts webhook deliveries and hands them to an Announcer.
type Receiver struct {
	secret    string
	announcer Announcer
	logger    *slog.Logger
}

func NewReceiver(secret string, announcer Announcer, logger *slog.Logger) *Receiver {
	return &Receiver{secret: secret, announcer: announcer, logger: logger}
}

// Routes mounts the receiver under /webhook. An empty secret rejects every
// delivery.
func (rc *Receiver) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/webhook/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Group(func(r chi.Router) {
		r.Use(httpauth.RequireBearer(rc.secret))
		r.Post("/webhook/winner", rc.handle(gamedomain.EventWinnerDetermined))
		r.Post("/webhook/catastrophic", rc.handle(gamedomain.EventCatastrophic))
	})
	return r
}

func (rc *Receiver) handle(expected gamedomain.EventKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if id := r.Header.Get("X-Correlation-ID"); id != "" {
			ctx = attr.WithCorrelationID(ctx, id)
		}

		body, err := io.ReadAll(io.LimitReader(r.Body, maxEnvelopeBytes))
		if err != nil {
			http.Error(w, "failed to read body", http.StatusBadRequest)
			return
		}
		env, err := DecodeEnvelope(body)
		if err != nil || env.Event != expected {
			rc.logger.WarnContext(ctx, "Rejected webhook delivery",
				attr.String("expected", string(expected)),
				attr.String("event", string(env.Event)),
				attr.Error(err),
			)
			http.Error(w, "unexpected payload", http.StatusBadRequest)
			return
		}

		if err := Dispatch(ctx, rc.announcer, env); err != nil {
			rc.logger.ErrorContext(ctx, "Failed to announce notification",
				attr.String("event", string(env.Event)),
				attr.Error(err),
			)
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "received"})
	}
}

// Dispatch decodes env and calls the matching Announcer method.
func Dispatch(ctx context.Context, announcer Announcer, env Envelope) error {
	switch env.Event {
	case gamedomain.EventWinnerDetermined:
		a, err := env.Winner()
		if err != nil {
			return err
		}
		return announcer.AnnounceWinner(ctx, a)
	case gamedomain.EventCatastrophic:
		a, err := env.Catastrophe()
		if err != nil {
			return err
		}
		return announcer.AnnounceCatastrophe(ctx, a)
	default:
		return &UnknownEventError{Event: env.Event}
	}
}

// UnknownEventError reports an envelope this build cannot handle.
type UnknownEventError struct {
	Event gamedomain.EventKind
}

func (e *UnknownEventError) Error() string {
	return "unknown notification event " + string(e.Event)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
