package gamequeue

import (
	gamedomain "github.com/Black-And-White-Club/leet-bot/app/modules/game/domain"
	"github.com/riverqueue/river"
)

const queueNotify = "game_notify"

// NotifyJob carries one announcement to the delivery worker. Exactly one of
// Winner and Catastrophe is set.
type NotifyJob struct {
	Event         gamedomain.EventKind                `json:"event" river:"unique"`
	InstanceStart string                              `json:"instance_start" river:"unique"`
	CorrelationID string                              `json:"correlation_id,omitempty"`
	Winner        *gamedomain.WinnerAnnouncement      `json:"winner,omitempty"`
	Catastrophe   *gamedomain.CatastropheAnnouncement `json:"catastrophe,omitempty"`
}

// Kind returns the job type identifier for River
func (NotifyJob) Kind() string { return "game_notify" }

// InsertOpts makes delivery single-shot and unique per instance and event,
// the fields tagged unique.
func (NotifyJob) InsertOpts() river.InsertOpts {
	return river.InsertOpts{
		Queue:       queueNotify,
		MaxAttempts: 1,
		UniqueOpts: river.UniqueOpts{
			ByArgs: true,
		},
	}
}
