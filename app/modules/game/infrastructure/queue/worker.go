package gamequeue

import (
	"context"
	"fmt"
	"log/slog"

	gamedomain "github.com/Black-And-White-Club/leet-bot/app/modules/game/domain"
	"github.com/Black-And-White-Club/leet-bot/app/shared/attr"
	"github.com/riverqueue/river"
)

// Delivery is the synchronous sink the worker hands jobs to.
type Delivery interface {
	NotifyWinner(ctx context.Context, a gamedomain.WinnerAnnouncement) error
	NotifyCatastrophe(ctx context.Context, a gamedomain.CatastropheAnnouncement) error
}

// NotifyWorker delivers queued announcements.
type NotifyWorker struct {
	river.WorkerDefaults[NotifyJob]
	delivery Delivery
	logger   *slog.Logger
}

func NewNotifyWorker(delivery Delivery, logger *slog.Logger) *NotifyWorker {
	return &NotifyWorker{delivery: delivery, logger: logger}
}

func (w *NotifyWorker) Work(ctx context.Context, job *river.Job[NotifyJob]) error {
	args := job.Args
	if args.CorrelationID != "" {
		ctx = attr.WithCorrelationID(ctx, args.CorrelationID)
	}

	var err error
	switch {
	case args.Event == gamedomain.EventWinnerDetermined && args.Winner != nil:
		err = w.delivery.NotifyWinner(ctx, *args.Winner)
	case args.Event == gamedomain.EventCatastrophic && args.Catastrophe != nil:
		err = w.delivery.NotifyCatastrophe(ctx, *args.Catastrophe)
	default:
		w.logger.WarnContext(ctx, "Discarding malformed notify job",
			attr.String("event", string(args.Event)),
			attr.String("instance_start", args.InstanceStart),
		)
		return river.JobCancel(fmt.Errorf("malformed notify job for %q", args.Event))
	}

	if err != nil {
		w.logger.ErrorContext(ctx, "Notification delivery failed",
			attr.String("event", string(args.Event)),
			attr.String("instance_start", args.InstanceStart),
			attr.Error(err),
		)
		return err
	}
	return nil
}
