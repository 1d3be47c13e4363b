package gamedomain

import "time"

// PlayerStats aggregates one participant's record within a scope.
type PlayerStats struct {
	ParticipantID string
	ScopeID       string
	DisplayName   string

	ShortWindowWins int
	LongWindowWins  int
	LifetimeWins    int

	TotalGames    int
	EarlyBirdBets int

	BestMarginMs  int64
	WorstMarginMs int64
	MarginTotalMs int64

	CurrentStreak int
	MaxStreak     int

	LastGameAt *time.Time
	LastWinAt  *time.Time

	Tier Tier
}

// AvgMarginMs is the mean winning margin, zero without wins.
func (s PlayerStats) AvgMarginMs() float64 {
	if s.LifetimeWins == 0 {
		return 0
	}
	return float64(s.MarginTotalMs) / float64(s.LifetimeWins)
}

// ApplyParticipation folds one resolved instance into stats. bet is the
// participant's bet for the instance; winner is the resolved winner.
func ApplyParticipation(stats PlayerStats, bet Bet, winner Winner, thresholds TierThresholds) PlayerStats {
	stats.ParticipantID = bet.ParticipantID
	stats.ScopeID = bet.ScopeID
	stats.DisplayName = bet.DisplayName

	stats.TotalGames++
	if bet.Kind == BetEarlyBird {
		stats.EarlyBirdBets++
	}
	played := bet.InstanceStart
	stats.LastGameAt = &played

	if winner.Bet.ParticipantID == bet.ParticipantID {
		margin := winner.MarginMs
		if stats.LifetimeWins == 0 || margin < stats.BestMarginMs {
			stats.BestMarginMs = margin
		}
		if stats.LifetimeWins == 0 || margin > stats.WorstMarginMs {
			stats.WorstMarginMs = margin
		}
		stats.MarginTotalMs += margin
		stats.LifetimeWins++
		stats.CurrentStreak++
		if stats.CurrentStreak > stats.MaxStreak {
			stats.MaxStreak = stats.CurrentStreak
		}
		stats.LastWinAt = &played
	} else {
		stats.CurrentStreak = 0
	}

	stats.Tier = thresholds.TierFor(stats.LifetimeWins)
	return stats
}

// WinCount is a participant's number of wins over some window.
type WinCount struct {
	ParticipantID string
	DisplayName   string
	Wins          int
}

// WinsOf looks up participantID in counts.
func WinsOf(counts []WinCount, participantID string) int {
	for _, c := range counts {
		if c.ParticipantID == participantID {
			return c.Wins
		}
	}
	return 0
}
