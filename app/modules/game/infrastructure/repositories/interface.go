package gamedb

import (
	"context"
	"time"

	gamedomain "github.com/Black-And-White-Club/leet-bot/app/modules/game/domain"
	"github.com/uptrace/bun"
)

// Repository defines the contract for game persistence. Every method accepts
// an optional bun.IDB so callers can run it inside their transaction; nil
// falls back to the repository's connection.
//
// Error semantics:
//   - ErrNotFound: record does not exist
//   - ErrDuplicateBet: (participant, instance) already has a bet
//   - ErrResultExists: the instance already has a resolution
type Repository interface {
	// InsertBet stores a new bet. It never overwrites.
	InsertBet(ctx context.Context, db bun.IDB, bet *Bet) error

	// GetBet returns the participant's bet for the instance.
	GetBet(ctx context.Context, db bun.IDB, participantID string, instanceStart time.Time) (*Bet, error)

	// ListBets returns the instance's bets ordered by offset, then creation.
	ListBets(ctx context.Context, db bun.IDB, instanceStart time.Time) ([]Bet, error)

	// GetResolution returns the resolution record for the instance.
	GetResolution(ctx context.Context, db bun.IDB, instanceStart time.Time) (*Resolution, error)

	// InsertResolution claims the instance. ErrResultExists if already claimed.
	InsertResolution(ctx context.Context, db bun.IDB, resolution *Resolution) error

	// InsertWinner stores the winning bet of an instance.
	InsertWinner(ctx context.Context, db bun.IDB, winner *Winner) error

	// GetWinnerByDate returns the winner of the instance on the given date.
	GetWinnerByDate(ctx context.Context, db bun.IDB, instanceDate string) (*Winner, error)

	// CountWins counts wins per participant in scope for instances at or after since.
	CountWins(ctx context.Context, db bun.IDB, scopeID string, since time.Time) ([]gamedomain.WinCount, error)

	// GetPlayerStats returns the participant's stats in scope.
	GetPlayerStats(ctx context.Context, db bun.IDB, participantID, scopeID string) (*PlayerStats, error)

	// UpsertPlayerStats creates or replaces the participant's stats.
	UpsertPlayerStats(ctx context.Context, db bun.IDB, stats *PlayerStats) error

	// ListRoleAssignments returns the recorded holders in scope.
	ListRoleAssignments(ctx context.Context, db bun.IDB, scopeID string) ([]RoleAssignment, error)

	// UpsertRoleAssignment records a tier holder.
	UpsertRoleAssignment(ctx context.Context, db bun.IDB, assignment *RoleAssignment) error

	// DeleteRoleAssignment vacates a tier.
	DeleteRoleAssignment(ctx context.Context, db bun.IDB, scopeID, tier string) error
}
