package gameservice

import (
	"context"
	"errors"
	"fmt"

	gamedomain "github.com/Black-And-White-Club/leet-bot/app/modules/game/domain"
	gamedb "github.com/Black-And-White-Club/leet-bot/app/modules/game/infrastructure/repositories"
	"github.com/Black-And-White-Club/leet-bot/app/shared/results"
)

// StatsFor returns the participant's stored stats plus their wins over the
// last windowDays calendar days. windowDays 0 counts every win. A participant
// without a record gets zeroed stats.
func (s *GameService) StatsFor(ctx context.Context, scopeID, participantID string, windowDays int) (*StatsView, error) {
	return unwrap(withTelemetry(s, ctx, "StatsFor", participantID, func(ctx context.Context) (results.OperationResult[*StatsView, error], error) {
		if windowDays < 0 {
			return results.FailureResult[*StatsView, error](ErrInvalidWindow), nil
		}

		view := &StatsView{
			Stats:      gamedomain.PlayerStats{ParticipantID: participantID, ScopeID: scopeID},
			WindowDays: windowDays,
		}
		row, err := s.repo.GetPlayerStats(ctx, nil, participantID, scopeID)
		switch {
		case err == nil:
			view.Stats = row.ToDomain()
		case !errors.Is(err, gamedb.ErrNotFound):
			return results.OperationResult[*StatsView, error]{}, fmt.Errorf("failed to get stats: %w", err)
		}

		counts, err := s.repo.CountWins(ctx, nil, scopeID, s.windowStart(s.clock.Now(), windowDays))
		if err != nil {
			return results.OperationResult[*StatsView, error]{}, fmt.Errorf("failed to count wins: %w", err)
		}
		view.WindowWins = gamedomain.WinsOf(counts, participantID)

		return results.SuccessResult[*StatsView, error](view), nil
	}))
}

// Leaderboard ranks participants by wins over the last windowDays. limit <= 0
// returns everyone.
func (s *GameService) Leaderboard(ctx context.Context, scopeID string, windowDays, limit int) ([]gamedomain.WinCount, error) {
	return unwrap(withTelemetry(s, ctx, "Leaderboard", scopeID, func(ctx context.Context) (results.OperationResult[[]gamedomain.WinCount, error], error) {
		return s.leaderboardLogic(ctx, scopeID, windowDays, limit)
	}))
}

func (s *GameService) leaderboardLogic(ctx context.Context, scopeID string, windowDays, limit int) (results.OperationResult[[]gamedomain.WinCount, error], error) {
	if windowDays < 0 {
		return results.FailureResult[[]gamedomain.WinCount, error](ErrInvalidWindow), nil
	}
	counts, err := s.repo.CountWins(ctx, nil, scopeID, s.windowStart(s.clock.Now(), windowDays))
	if err != nil {
		return results.OperationResult[[]gamedomain.WinCount, error]{}, fmt.Errorf("failed to count wins: %w", err)
	}
	if limit > 0 && len(counts) > limit {
		counts = counts[:limit]
	}
	return results.SuccessResult[[]gamedomain.WinCount, error](counts), nil
}
