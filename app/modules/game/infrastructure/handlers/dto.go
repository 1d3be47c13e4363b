package gamehandlers

import (
	"time"

	gameservice "github.com/Black-And-White-Club/leet-bot/app/modules/game/application"
	gamedomain "github.com/Black-And-White-Club/leet-bot/app/modules/game/domain"
)

type errorBody struct {
	Error   string   `json:"error"`
	Reason  string   `json:"reason,omitempty"`
	Message string   `json:"message,omitempty"`
	Bet     *betJSON `json:"existing_bet,omitempty"`
}

type betJSON struct {
	ID            string `json:"id"`
	ParticipantID string `json:"participant_id"`
	DisplayName   string `json:"display_name"`
	ScopeID       string `json:"scope_id"`
	Kind          string `json:"kind"`
	OffsetMs      int64  `json:"offset_ms"`
	Offset        string `json:"offset"`
	InstanceStart string `json:"instance_start"`
	PlacedAt      string `json:"placed_at"`
	CreatedAt     string `json:"created_at"`
}

func toBetJSON(b gamedomain.Bet) betJSON {
	return betJSON{
		ID:            b.ID.String(),
		ParticipantID: b.ParticipantID,
		DisplayName:   b.DisplayName,
		ScopeID:       b.ScopeID,
		Kind:          string(b.Kind),
		OffsetMs:      b.OffsetMs,
		Offset:        gamedomain.FormatOffset(b.OffsetMs),
		InstanceStart: gamedomain.FormatTimestamp(b.InstanceStart),
		PlacedAt:      gamedomain.FormatTimestamp(b.PlacedAt()),
		CreatedAt:     gamedomain.FormatTimestamp(b.CreatedAt),
	}
}

func toBetsJSON(bets []gamedomain.Bet) []betJSON {
	out := make([]betJSON, len(bets))
	for i, b := range bets {
		out[i] = toBetJSON(b)
	}
	return out
}

type phaseJSON struct {
	Phase        string `json:"phase"`
	Instance     string `json:"instance,omitempty"`
	Start        string `json:"start,omitempty"`
	End          string `json:"end,omitempty"`
	NextInstance string `json:"next_instance,omitempty"`
}

func toPhaseJSON(info gamedomain.PhaseInfo) phaseJSON {
	return phaseJSON{
		Phase:        info.Phase.String(),
		Instance:     gamedomain.FormatTimestamp(info.Instance),
		Start:        gamedomain.FormatTimestamp(info.Start),
		End:          gamedomain.FormatTimestamp(info.End),
		NextInstance: gamedomain.FormatTimestamp(info.NextInstance),
	}
}

type placementJSON struct {
	Phase    string `json:"phase"`
	Instance string `json:"instance"`
	Kind     string `json:"kind"`
}

type betViewJSON struct {
	Bet          betJSON `json:"bet"`
	Phase        string  `json:"phase"`
	WinOffsetMs  *int64  `json:"win_offset_ms,omitempty"`
	DifferenceMs *int64  `json:"difference_ms,omitempty"`
}

type dailyBetsJSON struct {
	InstanceStart string    `json:"instance_start,omitempty"`
	InstanceDate  string    `json:"instance_date,omitempty"`
	Phase         string    `json:"phase"`
	Bets          []betJSON `json:"bets"`
	WinOffsetMs   *int64    `json:"win_offset_ms,omitempty"`
}

func toDailyBetsJSON(d *gameservice.DailyBets) dailyBetsJSON {
	return dailyBetsJSON{
		InstanceStart: gamedomain.FormatTimestamp(d.InstanceStart),
		InstanceDate:  d.InstanceDate,
		Phase:         d.Phase.String(),
		Bets:          toBetsJSON(d.Bets),
		WinOffsetMs:   d.WinOffsetMs,
	}
}

type winnerJSON struct {
	InstanceStart string `json:"instance_start"`
	InstanceDate  string `json:"instance_date"`
	ScopeID       string `json:"scope_id"`
	ParticipantID string `json:"participant_id"`
	DisplayName   string `json:"display_name"`
	Kind          string `json:"kind"`
	OffsetMs      int64  `json:"offset_ms"`
	WinOffsetMs   int64  `json:"win_offset_ms"`
	MarginMs      int64  `json:"margin_ms"`
}

func toWinnerJSON(w *gameservice.WinnerRecord) winnerJSON {
	return winnerJSON{
		InstanceStart: gamedomain.FormatTimestamp(w.InstanceStart),
		InstanceDate:  w.InstanceDate,
		ScopeID:       w.ScopeID,
		ParticipantID: w.ParticipantID,
		DisplayName:   w.DisplayName,
		Kind:          string(w.Kind),
		OffsetMs:      w.OffsetMs,
		WinOffsetMs:   w.WinOffsetMs,
		MarginMs:      w.MarginMs,
	}
}

type statsJSON struct {
	ParticipantID   string  `json:"participant_id"`
	ScopeID         string  `json:"scope_id"`
	DisplayName     string  `json:"display_name,omitempty"`
	WindowDays      int     `json:"window_days"`
	WindowWins      int     `json:"window_wins"`
	ShortWindowWins int     `json:"short_window_wins"`
	LongWindowWins  int     `json:"long_window_wins"`
	LifetimeWins    int     `json:"lifetime_wins"`
	TotalGames      int     `json:"total_games"`
	EarlyBirdBets   int     `json:"early_bird_bets"`
	BestMarginMs    int64   `json:"best_margin_ms"`
	WorstMarginMs   int64   `json:"worst_margin_ms"`
	AvgMarginMs     float64 `json:"avg_margin_ms"`
	CurrentStreak   int     `json:"current_streak"`
	MaxStreak       int     `json:"max_streak"`
	LastGameAt      string  `json:"last_game_at,omitempty"`
	LastWinAt       string  `json:"last_win_at,omitempty"`
	Tier            string  `json:"tier"`
}

func optionalTimestamp(t *time.Time) string {
	if t == nil {
		return ""
	}
	return gamedomain.FormatTimestamp(*t)
}

func toStatsJSON(v *gameservice.StatsView) statsJSON {
	s := v.Stats
	return statsJSON{
		ParticipantID:   s.ParticipantID,
		ScopeID:         s.ScopeID,
		DisplayName:     s.DisplayName,
		WindowDays:      v.WindowDays,
		WindowWins:      v.WindowWins,
		ShortWindowWins: s.ShortWindowWins,
		LongWindowWins:  s.LongWindowWins,
		LifetimeWins:    s.LifetimeWins,
		TotalGames:      s.TotalGames,
		EarlyBirdBets:   s.EarlyBirdBets,
		BestMarginMs:    s.BestMarginMs,
		WorstMarginMs:   s.WorstMarginMs,
		AvgMarginMs:     s.AvgMarginMs(),
		CurrentStreak:   s.CurrentStreak,
		MaxStreak:       s.MaxStreak,
		LastGameAt:      optionalTimestamp(s.LastGameAt),
		LastWinAt:       optionalTimestamp(s.LastWinAt),
		Tier:            s.Tier.Title(),
	}
}

type leaderboardEntryJSON struct {
	Rank          int    `json:"rank"`
	ParticipantID string `json:"participant_id"`
	DisplayName   string `json:"display_name"`
	Wins          int    `json:"wins"`
}

type roleDeltaJSON struct {
	Tier string `json:"tier"`
	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`
}

func toRoleDeltasJSON(deltas []gamedomain.RoleDelta) []roleDeltaJSON {
	out := make([]roleDeltaJSON, len(deltas))
	for i, d := range deltas {
		out[i] = roleDeltaJSON{Tier: d.Tier.String(), From: d.From, To: d.To}
	}
	return out
}

type setRoleRequest struct {
	ParticipantID string `json:"participant_id"`
	AssignedBy    string `json:"assigned_by"`
}

type validateRequest struct {
	ParticipantID string `json:"participant_id"`
}
