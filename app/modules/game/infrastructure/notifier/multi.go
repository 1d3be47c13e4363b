package gamenotify

import (
	"context"
	"errors"

	gamedomain "github.com/Black-And-White-Club/leet-bot/app/modules/game/domain"
)

// Notifier is the sink contract shared by every delivery path.
type Notifier interface {
	NotifyWinner(ctx context.Context, a gamedomain.WinnerAnnouncement) error
	NotifyCatastrophe(ctx context.Context, a gamedomain.CatastropheAnnouncement) error
}

// Multi fans an announcement out to every notifier. All of them are tried;
// the failures are joined.
type Multi []Notifier

func (m Multi) NotifyWinner(ctx context.Context, a gamedomain.WinnerAnnouncement) error {
	var errs []error
	for _, n := range m {
		if err := n.NotifyWinner(ctx, a); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) NotifyCatastrophe(ctx context.Context, a gamedomain.CatastropheAnnouncement) error {
	var errs []error
	for _, n := range m {
		if err := n.NotifyCatastrophe(ctx, a); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var (
	_ Notifier = Multi(nil)
	_ Notifier = (*WebhookNotifier)(nil)
	_ Notifier = (*EventPublisher)(nil)
)
