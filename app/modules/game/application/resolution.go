package gameservice

import (
	"context"
	"errors"
	"fmt"
	"time"

	gamedomain "github.com/Black-And-White-Club/leet-bot/app/modules/game/domain"
	gamedb "github.com/Black-And-White-Club/leet-bot/app/modules/game/infrastructure/repositories"
	"github.com/Black-And-White-Club/leet-bot/app/shared/attr"
	"github.com/Black-And-White-Club/leet-bot/app/shared/results"
	"github.com/uptrace/bun"
)

// ResolveInstance determines the outcome of an ended instance and persists it
// together with stats and role assignments in one transaction. Chat platform
// role changes and notifications follow the commit; their failures are logged
// and never undo the resolution.
func (s *GameService) ResolveInstance(ctx context.Context, instanceStart time.Time) (*ResolutionReport, error) {
	report, err := unwrap(withTelemetry(s, ctx, "ResolveInstance", instanceStart.Format(time.RFC3339), func(ctx context.Context) (results.OperationResult[*ResolutionReport, error], error) {
		// The win millisecond itself still accepts regular bets.
		if !s.clock.Now().After(s.schedule.ActiveEnd(instanceStart, s.winTimes)) {
			return results.FailureResult[*ResolutionReport, error](ErrNotEnded), nil
		}
		return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (results.OperationResult[*ResolutionReport, error], error) {
			return s.resolveLogic(ctx, db, instanceStart)
		})
	}))
	if err != nil {
		return nil, err
	}

	if !report.AlreadyResolved {
		s.metrics.RecordResolution(ctx, string(report.Outcome.Kind()))
		s.afterCommit(ctx, report)
	}
	return report, nil
}

func (s *GameService) resolveLogic(ctx context.Context, db bun.IDB, instance time.Time) (results.OperationResult[*ResolutionReport, error], error) {
	report := &ResolutionReport{
		InstanceStart: instance,
		InstanceDate:  s.schedule.InstanceDate(instance),
	}

	if _, err := s.repo.GetResolution(ctx, db, instance); err == nil {
		report.AlreadyResolved = true
		return results.SuccessResult[*ResolutionReport, error](report), nil
	} else if !errors.Is(err, gamedb.ErrNotFound) {
		return results.OperationResult[*ResolutionReport, error]{}, fmt.Errorf("failed to check resolution: %w", err)
	}

	bets, err := s.loadBets(ctx, db, instance)
	if err != nil {
		return results.OperationResult[*ResolutionReport, error]{}, err
	}

	win := s.winTimes.WinTime(instance)
	outcome := gamedomain.DetermineWinner(bets, win, s.settings.PenaltyMs)
	report.Outcome = outcome

	resolution := &gamedb.Resolution{
		InstanceStart: instance.UTC(),
		InstanceDate:  report.InstanceDate,
		Outcome:       string(outcome.Kind()),
		WinOffsetMs:   win,
		TotalBets:     len(bets),
	}
	switch o := outcome.(type) {
	case gamedomain.Winner:
		resolution.ValidBets = o.ValidBets
	case gamedomain.CatastrophicTie:
		resolution.TieCount = o.Count
	case gamedomain.NoValidBets:
	}

	if err := s.repo.InsertResolution(ctx, db, resolution); err != nil {
		if errors.Is(err, gamedb.ErrResultExists) {
			report.AlreadyResolved = true
			report.Outcome = nil
			return results.SuccessResult[*ResolutionReport, error](report), nil
		}
		return results.OperationResult[*ResolutionReport, error]{}, fmt.Errorf("failed to record resolution: %w", err)
	}

	switch o := outcome.(type) {
	case gamedomain.Winner:
		if err := s.persistWinner(ctx, db, report, o, bets); err != nil {
			return results.OperationResult[*ResolutionReport, error]{}, err
		}
	case gamedomain.CatastrophicTie:
		announcement := gamedomain.NewCatastropheAnnouncement(o, instance, report.InstanceDate)
		report.Catastrophe = &announcement
		s.logger.WarnContext(ctx, "Catastrophic tie, no winner recorded",
			attr.Instance(instance),
			attr.Int("count", o.Count),
			attr.Int64("offset_ms", o.OffsetMs),
		)
	case gamedomain.NoValidBets:
		s.logger.InfoContext(ctx, "No valid bets for instance",
			attr.Instance(instance),
			attr.Int("total_bets", o.TotalBets),
			attr.Int64("win_offset_ms", o.WinOffsetMs),
		)
	}

	return results.SuccessResult[*ResolutionReport, error](report), nil
}

// persistWinner stores the winner, folds the instance into every bettor's
// stats and reconciles roles in the winner's scope.
func (s *GameService) persistWinner(ctx context.Context, db bun.IDB, report *ResolutionReport, w gamedomain.Winner, bets []gamedomain.Bet) error {
	instance := report.InstanceStart
	err := s.repo.InsertWinner(ctx, db, &gamedb.Winner{
		InstanceStart: instance.UTC(),
		InstanceDate:  report.InstanceDate,
		ScopeID:       w.Bet.ScopeID,
		BetID:         w.Bet.ID,
		ParticipantID: w.Bet.ParticipantID,
		DisplayName:   w.Bet.DisplayName,
		Kind:          string(w.Bet.Kind),
		OffsetMs:      w.Bet.OffsetMs,
		WinOffsetMs:   w.WinOffsetMs,
		MarginMs:      w.MarginMs,
	})
	if err != nil {
		return fmt.Errorf("failed to record winner: %w", err)
	}

	windows := map[string]*windowCounts{}
	countsFor := func(scope string) (*windowCounts, error) {
		if wc, ok := windows[scope]; ok {
			return wc, nil
		}
		wc, err := s.windowCounts(ctx, db, scope, instance)
		if err != nil {
			return nil, err
		}
		windows[scope] = wc
		return wc, nil
	}

	var winnerTier gamedomain.Tier
	for _, bet := range bets {
		current := gamedomain.PlayerStats{}
		row, err := s.repo.GetPlayerStats(ctx, db, bet.ParticipantID, bet.ScopeID)
		switch {
		case err == nil:
			current = row.ToDomain()
		case !errors.Is(err, gamedb.ErrNotFound):
			return fmt.Errorf("failed to load stats: %w", err)
		}

		updated := gamedomain.ApplyParticipation(current, bet, w, s.settings.Thresholds)
		wc, err := countsFor(bet.ScopeID)
		if err != nil {
			return err
		}
		updated.ShortWindowWins = gamedomain.WinsOf(wc.short, bet.ParticipantID)
		updated.LongWindowWins = gamedomain.WinsOf(wc.long, bet.ParticipantID)

		if err := s.repo.UpsertPlayerStats(ctx, db, gamedb.FromDomainStats(updated)); err != nil {
			return fmt.Errorf("failed to save stats: %w", err)
		}
		if bet.ParticipantID == w.Bet.ParticipantID {
			winnerTier = updated.Tier
		}
	}

	wc, err := countsFor(w.Bet.ScopeID)
	if err != nil {
		return err
	}
	deltas, err := s.reconcileRoles(ctx, db, w.Bet.ScopeID, w.Bet.ParticipantID, wc)
	if err != nil {
		return err
	}
	report.RoleDeltas = deltas

	announcement := gamedomain.NewWinnerAnnouncement(w, report.InstanceDate, winnerTier, roleChanges(deltas, wc.long, bets))
	report.Winner = &announcement
	return nil
}

type windowCounts struct {
	short []gamedomain.WinCount
	long  []gamedomain.WinCount
}

func (s *GameService) windowCounts(ctx context.Context, db bun.IDB, scope string, at time.Time) (*windowCounts, error) {
	short, err := s.repo.CountWins(ctx, db, scope, s.windowStart(at, s.settings.ShortWindowDays))
	if err != nil {
		return nil, fmt.Errorf("failed to count short window wins: %w", err)
	}
	long, err := s.repo.CountWins(ctx, db, scope, s.windowStart(at, s.settings.LongWindowDays))
	if err != nil {
		return nil, fmt.Errorf("failed to count long window wins: %w", err)
	}
	return &windowCounts{short: short, long: long}, nil
}

// windowStart is midnight, in the schedule's timezone, of the first of the
// days calendar dates ending on at's date.
func (s *GameService) windowStart(at time.Time, days int) time.Time {
	if days <= 0 {
		return time.Time{}
	}
	local := at.In(s.schedule.Location())
	first := local.AddDate(0, 0, -(days - 1))
	return time.Date(first.Year(), first.Month(), first.Day(), 0, 0, 0, 0, s.schedule.Location())
}

// roleChanges decorates deltas with display names and long-window wins.
func roleChanges(deltas []gamedomain.RoleDelta, long []gamedomain.WinCount, bets []gamedomain.Bet) []gamedomain.RoleChange {
	if len(deltas) == 0 {
		return nil
	}
	names := map[string]string{}
	for _, c := range long {
		names[c.ParticipantID] = c.DisplayName
	}
	for _, b := range bets {
		names[b.ParticipantID] = b.DisplayName
	}

	changes := make([]gamedomain.RoleChange, 0, len(deltas))
	for _, d := range deltas {
		changes = append(changes, gamedomain.RoleChange{
			Tier:              d.Tier.String(),
			FromParticipantID: d.From,
			ToParticipantID:   d.To,
			ToDisplayName:     names[d.To],
			Wins:              gamedomain.WinsOf(long, d.To),
		})
	}
	return changes
}

// afterCommit applies chat platform side effects of a committed resolution.
func (s *GameService) afterCommit(ctx context.Context, report *ResolutionReport) {
	if len(report.RoleDeltas) > 0 && report.Winner != nil {
		s.applyRoleDeltas(ctx, report.Winner.ScopeID, report.RoleDeltas)
	}

	if s.notifier == nil {
		return
	}
	switch {
	case report.Winner != nil:
		if err := s.notifier.NotifyWinner(ctx, *report.Winner); err != nil {
			s.metrics.RecordNotificationFailure(ctx, string(gamedomain.EventWinnerDetermined))
			s.logger.ErrorContext(ctx, "Failed to send winner notification",
				attr.Instance(report.InstanceStart),
				attr.Error(err),
			)
		}
	case report.Catastrophe != nil:
		if err := s.notifier.NotifyCatastrophe(ctx, *report.Catastrophe); err != nil {
			s.metrics.RecordNotificationFailure(ctx, string(gamedomain.EventCatastrophic))
			s.logger.ErrorContext(ctx, "Failed to send catastrophe notification",
				attr.Instance(report.InstanceStart),
				attr.Error(err),
			)
		}
	}
}

// WinnerFor returns the winner of the instance on instanceDate.
func (s *GameService) WinnerFor(ctx context.Context, instanceDate string) (*WinnerRecord, error) {
	return unwrap(withTelemetry(s, ctx, "WinnerFor", instanceDate, func(ctx context.Context) (results.OperationResult[*WinnerRecord, error], error) {
		if _, err := time.Parse(time.DateOnly, instanceDate); err != nil {
			return results.FailureResult[*WinnerRecord, error](ErrInvalidDate), nil
		}

		row, err := s.repo.GetWinnerByDate(ctx, nil, instanceDate)
		if errors.Is(err, gamedb.ErrNotFound) {
			return results.FailureResult[*WinnerRecord, error](gamedb.ErrNotFound), nil
		}
		if err != nil {
			return results.OperationResult[*WinnerRecord, error]{}, fmt.Errorf("failed to get winner: %w", err)
		}

		return results.SuccessResult[*WinnerRecord, error](&WinnerRecord{
			InstanceStart: row.InstanceStart,
			InstanceDate:  row.InstanceDate,
			ScopeID:       row.ScopeID,
			ParticipantID: row.ParticipantID,
			DisplayName:   row.DisplayName,
			Kind:          gamedomain.BetKind(row.Kind),
			OffsetMs:      row.OffsetMs,
			WinOffsetMs:   row.WinOffsetMs,
			MarginMs:      row.MarginMs,
		}), nil
	}))
}
