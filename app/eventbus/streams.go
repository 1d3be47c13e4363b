package eventbus

import (
	"time"

	"github.com/nats-io/nats.go/jetstream"
)

// Streams are provisioned when the bus is created. Every game subject lives
// in one stream.
var Streams = []jetstream.StreamConfig{
	{
		Name:      "GAME",
		Subjects:  []string{"game.>"},
		Retention: jetstream.LimitsPolicy,
		MaxAge:    7 * 24 * time.Hour,
		Storage:   jetstream.FileStorage,
	},
}
