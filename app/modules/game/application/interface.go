package gameservice

import (
	"context"
	"time"

	gamedomain "github.com/Black-And-White-Club/leet-bot/app/modules/game/domain"
)

// Service is the game engine as seen by the presentation layer and the
// scheduler.
type Service interface {
	// CurrentPhase reports the phase at the current time.
	CurrentPhase(ctx context.Context) gamedomain.PhaseInfo

	// NextInstances lists up to n upcoming instance starts.
	NextInstances(ctx context.Context, n int) []time.Time

	// ValidatePlacement checks whether the participant may bet right now.
	ValidatePlacement(ctx context.Context, participantID string) (*PlacementCheck, error)

	// PlaceRegular records a live bet at the current offset into the active instance.
	PlaceRegular(ctx context.Context, p Participant) (*gamedomain.Bet, error)

	// PlaceEarlyBird records a pre-scheduled bet for the upcoming instance.
	PlaceEarlyBird(ctx context.Context, req EarlyBirdRequest) (*gamedomain.Bet, error)

	// BetsFor lists an instance's bets ordered by offset.
	BetsFor(ctx context.Context, instanceStart time.Time) ([]gamedomain.Bet, error)

	// DailyBets lists the most recently started instance's bets.
	DailyBets(ctx context.Context) (*DailyBets, error)

	// BetOf returns a participant's bet for the current instance.
	BetOf(ctx context.Context, participantID string) (*BetView, error)

	// ResolveInstance determines and persists the outcome of an ended instance.
	// Resolving an already resolved instance is a no-op.
	ResolveInstance(ctx context.Context, instanceStart time.Time) (*ResolutionReport, error)

	// WinnerFor returns the winner of the instance on the given date (YYYY-MM-DD).
	WinnerFor(ctx context.Context, instanceDate string) (*WinnerRecord, error)

	// StatsFor returns a participant's stats with wins over the last windowDays.
	StatsFor(ctx context.Context, scopeID, participantID string, windowDays int) (*StatsView, error)

	// Leaderboard ranks participants by wins over the last windowDays.
	Leaderboard(ctx context.Context, scopeID string, windowDays, limit int) ([]gamedomain.WinCount, error)

	// LeaderboardChart renders Leaderboard as a PNG bar chart.
	LeaderboardChart(ctx context.Context, scopeID string, windowDays, limit int) ([]byte, error)

	// RoleHolders returns the recorded tier holders in scope.
	RoleHolders(ctx context.Context, scopeID string) (gamedomain.RoleHolders, error)

	// SetRoleHolder assigns (or with an empty participant, vacates) a tier by hand.
	SetRoleHolder(ctx context.Context, scopeID string, tier gamedomain.Tier, participantID, assignedBy string) ([]gamedomain.RoleDelta, error)

	// Ping checks the storage connection.
	Ping(ctx context.Context) error
}

// Notifier delivers resolution announcements. Delivery is best effort.
type Notifier interface {
	NotifyWinner(ctx context.Context, a gamedomain.WinnerAnnouncement) error
	NotifyCatastrophe(ctx context.Context, a gamedomain.CatastropheAnnouncement) error
}

// RoleMutator applies a tier change on the chat platform.
type RoleMutator interface {
	ApplyRoleDelta(ctx context.Context, scopeID string, delta gamedomain.RoleDelta) error
}

// Participant identifies who is betting and where.
type Participant struct {
	ID          string `json:"participant_id"`
	DisplayName string `json:"display_name"`
	ScopeID     string `json:"scope_id"`
}

// EarlyBirdRequest carries either an explicit offset or a time string in one
// of the accepted early-bird formats. OffsetMs wins when both are set.
type EarlyBirdRequest struct {
	Participant
	OffsetMs  *int64 `json:"offset_ms,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

// PlacementCheck is the successful result of ValidatePlacement.
type PlacementCheck struct {
	Phase    gamedomain.Phase
	Instance time.Time
	Kind     gamedomain.BetKind
}

// BetView is a participant's bet. Win details are only set once the instance
// has ended.
type BetView struct {
	Bet          gamedomain.Bet
	Phase        gamedomain.Phase
	WinOffsetMs  *int64
	DifferenceMs *int64
}

// DailyBets is the bet list of the most recently started instance.
type DailyBets struct {
	InstanceStart time.Time
	InstanceDate  string
	Phase         gamedomain.Phase
	Bets          []gamedomain.Bet
	WinOffsetMs   *int64
}

// ResolutionReport describes what ResolveInstance did.
type ResolutionReport struct {
	InstanceStart   time.Time
	InstanceDate    string
	AlreadyResolved bool
	Outcome         gamedomain.Outcome
	RoleDeltas      []gamedomain.RoleDelta
	Winner          *gamedomain.WinnerAnnouncement
	Catastrophe     *gamedomain.CatastropheAnnouncement
}

// WinnerRecord is a persisted winner.
type WinnerRecord struct {
	InstanceStart time.Time
	InstanceDate  string
	ScopeID       string
	ParticipantID string
	DisplayName   string
	Kind          gamedomain.BetKind
	OffsetMs      int64
	WinOffsetMs   int64
	MarginMs      int64
}

// StatsView is a participant's stats plus wins in the requested window.
type StatsView struct {
	Stats      gamedomain.PlayerStats
	WindowDays int
	WindowWins int
}
