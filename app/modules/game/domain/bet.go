package gamedomain

import (
	"cmp"
	"slices"
	"time"

	"github.com/google/uuid"
)

// BetKind distinguishes live bets from pre-scheduled ones.
type BetKind string

const (
	BetRegular   BetKind = "regular"
	BetEarlyBird BetKind = "early_bird"
)

func (k BetKind) Valid() bool {
	return k == BetRegular || k == BetEarlyBird
}

// Bet is one participant's guess for one game instance.
type Bet struct {
	ID            uuid.UUID
	ParticipantID string
	DisplayName   string
	ScopeID       string
	Kind          BetKind
	OffsetMs      int64
	InstanceStart time.Time
	CreatedAt     time.Time
}

// PlacedAt is the absolute moment the bet points at.
func (b Bet) PlacedAt() time.Time {
	return b.InstanceStart.Add(Milliseconds(b.OffsetMs))
}

// SortByOffset orders bets by offset ascending, then by creation time.
func SortByOffset(bets []Bet) {
	slices.SortStableFunc(bets, func(a, b Bet) int {
		if c := cmp.Compare(a.OffsetMs, b.OffsetMs); c != 0 {
			return c
		}
		return a.CreatedAt.Compare(b.CreatedAt)
	})
}

// Milliseconds converts a millisecond count into a time.Duration.
func Milliseconds(ms int64) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
