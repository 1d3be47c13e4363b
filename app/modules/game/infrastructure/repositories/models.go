package gamedb

import (
	"time"

	gamedomain "github.com/Black-And-White-Club/leet-bot/app/modules/game/domain"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Bet is one row of game_bets. (participant_id, instance_start) is unique.
type Bet struct {
	bun.BaseModel `bun:"table:game_bets,alias:gb"`

	ID            uuid.UUID `bun:"id,pk,type:uuid"`
	ParticipantID string    `bun:"participant_id,notnull"`
	DisplayName   string    `bun:"display_name,notnull"`
	ScopeID       string    `bun:"scope_id,notnull"`
	Kind          string    `bun:"kind,notnull"`
	OffsetMs      int64     `bun:"offset_ms,notnull"`
	InstanceStart time.Time `bun:"instance_start,notnull"`
	CreatedAt     time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

// Resolution records that an instance has been resolved, whatever the outcome.
type Resolution struct {
	bun.BaseModel `bun:"table:game_resolutions,alias:gr"`

	InstanceStart time.Time `bun:"instance_start,pk"`
	InstanceDate  string    `bun:"instance_date,notnull"`
	Outcome       string    `bun:"outcome,notnull"`
	WinOffsetMs   int64     `bun:"win_offset_ms,notnull"`
	TieCount      int       `bun:"tie_count,notnull,default:0"`
	TotalBets     int       `bun:"total_bets,notnull,default:0"`
	ValidBets     int       `bun:"valid_bets,notnull,default:0"`
	ResolvedAt    time.Time `bun:"resolved_at,nullzero,notnull,default:current_timestamp"`
}

// Winner is the persisted winning bet of an instance.
type Winner struct {
	bun.BaseModel `bun:"table:game_winners,alias:gw"`

	InstanceStart time.Time `bun:"instance_start,pk"`
	InstanceDate  string    `bun:"instance_date,notnull,unique"`
	ScopeID       string    `bun:"scope_id,notnull"`
	BetID         uuid.UUID `bun:"bet_id,type:uuid,notnull"`
	ParticipantID string    `bun:"participant_id,notnull"`
	DisplayName   string    `bun:"display_name,notnull"`
	Kind          string    `bun:"kind,notnull"`
	OffsetMs      int64     `bun:"offset_ms,notnull"`
	WinOffsetMs   int64     `bun:"win_offset_ms,notnull"`
	MarginMs      int64     `bun:"margin_ms,notnull"`
	CreatedAt     time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

// PlayerStats is one participant's aggregate within a scope.
type PlayerStats struct {
	bun.BaseModel `bun:"table:game_player_stats,alias:gps"`

	ParticipantID   string     `bun:"participant_id,pk"`
	ScopeID         string     `bun:"scope_id,pk"`
	DisplayName     string     `bun:"display_name,notnull"`
	ShortWindowWins int        `bun:"short_window_wins,notnull,default:0"`
	LongWindowWins  int        `bun:"long_window_wins,notnull,default:0"`
	LifetimeWins    int        `bun:"lifetime_wins,notnull,default:0"`
	TotalGames      int        `bun:"total_games,notnull,default:0"`
	EarlyBirdBets   int        `bun:"early_bird_bets,notnull,default:0"`
	BestMarginMs    int64      `bun:"best_margin_ms,notnull,default:0"`
	WorstMarginMs   int64      `bun:"worst_margin_ms,notnull,default:0"`
	MarginTotalMs   int64      `bun:"margin_total_ms,notnull,default:0"`
	CurrentStreak   int        `bun:"current_streak,notnull,default:0"`
	MaxStreak       int        `bun:"max_streak,notnull,default:0"`
	LastGameAt      *time.Time `bun:"last_game_at"`
	LastWinAt       *time.Time `bun:"last_win_at"`
	Tier            string     `bun:"tier,notnull,default:'none'"`
	UpdatedAt       time.Time  `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// RoleAssignment is the recorded holder of a tier in a scope.
type RoleAssignment struct {
	bun.BaseModel `bun:"table:game_role_assignments,alias:gra"`

	ScopeID       string    `bun:"scope_id,pk"`
	Tier          string    `bun:"tier,pk"`
	ParticipantID string    `bun:"participant_id,notnull"`
	AssignedBy    string    `bun:"assigned_by,notnull,default:'engine'"`
	UpdatedAt     time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// FromDomainBet converts a domain bet into its row.
func FromDomainBet(b gamedomain.Bet) *Bet {
	return &Bet{
		ID:            b.ID,
		ParticipantID: b.ParticipantID,
		DisplayName:   b.DisplayName,
		ScopeID:       b.ScopeID,
		Kind:          string(b.Kind),
		OffsetMs:      b.OffsetMs,
		InstanceStart: b.InstanceStart.UTC(),
		CreatedAt:     b.CreatedAt.UTC(),
	}
}

// ToDomain converts the row back into a domain bet.
func (b *Bet) ToDomain() gamedomain.Bet {
	return gamedomain.Bet{
		ID:            b.ID,
		ParticipantID: b.ParticipantID,
		DisplayName:   b.DisplayName,
		ScopeID:       b.ScopeID,
		Kind:          gamedomain.BetKind(b.Kind),
		OffsetMs:      b.OffsetMs,
		InstanceStart: b.InstanceStart,
		CreatedAt:     b.CreatedAt,
	}
}

func FromDomainStats(s gamedomain.PlayerStats) *PlayerStats {
	return &PlayerStats{
		ParticipantID:   s.ParticipantID,
		ScopeID:         s.ScopeID,
		DisplayName:     s.DisplayName,
		ShortWindowWins: s.ShortWindowWins,
		LongWindowWins:  s.LongWindowWins,
		LifetimeWins:    s.LifetimeWins,
		TotalGames:      s.TotalGames,
		EarlyBirdBets:   s.EarlyBirdBets,
		BestMarginMs:    s.BestMarginMs,
		WorstMarginMs:   s.WorstMarginMs,
		MarginTotalMs:   s.MarginTotalMs,
		CurrentStreak:   s.CurrentStreak,
		MaxStreak:       s.MaxStreak,
		LastGameAt:      s.LastGameAt,
		LastWinAt:       s.LastWinAt,
		Tier:            s.Tier.String(),
	}
}

func (s *PlayerStats) ToDomain() gamedomain.PlayerStats {
	tier, _ := gamedomain.ParseTier(s.Tier)
	return gamedomain.PlayerStats{
		ParticipantID:   s.ParticipantID,
		ScopeID:         s.ScopeID,
		DisplayName:     s.DisplayName,
		ShortWindowWins: s.ShortWindowWins,
		LongWindowWins:  s.LongWindowWins,
		LifetimeWins:    s.LifetimeWins,
		TotalGames:      s.TotalGames,
		EarlyBirdBets:   s.EarlyBirdBets,
		BestMarginMs:    s.BestMarginMs,
		WorstMarginMs:   s.WorstMarginMs,
		MarginTotalMs:   s.MarginTotalMs,
		CurrentStreak:   s.CurrentStreak,
		MaxStreak:       s.MaxStreak,
		LastGameAt:      s.LastGameAt,
		LastWinAt:       s.LastWinAt,
		Tier:            tier,
	}
}
