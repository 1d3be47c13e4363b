package gamenotify

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	gamedomain "github.com/Black-And-White-Club/leet-bot/app/modules/game/domain"
	"github.com/Black-And-White-Club/leet-bot/app/shared/attr"
	"github.com/jonboulle/clockwork"
)

const defaultWebhookTimeout = 10 * time.Second

// WebhookConfig points the notifier at a receiver.
type WebhookConfig struct {
	URL     string
	Secret  string
	Timeout time.Duration
}

// WebhookNotifier posts envelopes to the receiver with a bearer secret.
// Delivery is attempted once.
type WebhookNotifier struct {
	client         *http.Client
	winnerURL      string
	catastropheURL string
	secret         string
	clock          clockwork.Clock
	logger         *slog.Logger
}

// NewWebhookNotifier creates a WebhookNotifier. A nil clock uses the wall clock.
func NewWebhookNotifier(cfg WebhookConfig, clock clockwork.Clock, logger *slog.Logger) *WebhookNotifier {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultWebhookTimeout
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &WebhookNotifier{
		client:         &http.Client{Timeout: timeout},
		winnerURL:      cfg.URL,
		catastropheURL: CatastropheURL(cfg.URL),
		secret:         cfg.Secret,
		clock:          clock,
		logger:         logger,
	}
}

// CatastropheURL derives the catastrophic-event endpoint from the winner
// endpoint: the last "/winner" segment becomes "/catastrophic". A URL without
// that segment gets "/catastrophic" appended.
func CatastropheURL(winnerURL string) string {
	if i := strings.LastIndex(winnerURL, "/winner"); i >= 0 {
		return winnerURL[:i] + "/catastrophic" + winnerURL[i+len("/winner"):]
	}
	return strings.TrimRight(winnerURL, "/") + "/catastrophic"
}

func (n *WebhookNotifier) NotifyWinner(ctx context.Context, a gamedomain.WinnerAnnouncement) error {
	return n.post(ctx, n.winnerURL, gamedomain.EventWinnerDetermined, a)
}

func (n *WebhookNotifier) NotifyCatastrophe(ctx context.Context, a gamedomain.CatastropheAnnouncement) error {
	return n.post(ctx, n.catastropheURL, gamedomain.EventCatastrophic, a)
}

func (n *WebhookNotifier) post(ctx context.Context, url string, kind gamedomain.EventKind, data any) error {
	if url == "" {
		return nil
	}
	body, err := encodeEnvelope(kind, data, n.clock.Now())
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if n.secret != "" {
		req.Header.Set("Authorization", "Bearer "+n.secret)
	}
	if id := attr.CorrelationID(ctx); id != "" {
		req.Header.Set("X-Correlation-ID", id)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to deliver %s: %w", kind, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook %s returned status %d", kind, resp.StatusCode)
	}

	n.logger.InfoContext(ctx, "Notification delivered",
		attr.String("event", string(kind)),
		attr.String("url", url),
		attr.Int("status", resp.StatusCode),
	)
	return nil
}
