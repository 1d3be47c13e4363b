package gameservice

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	gamedomain "github.com/Black-And-White-Club/leet-bot/app/modules/game/domain"
	gamedb "github.com/Black-And-White-Club/leet-bot/app/modules/game/infrastructure/repositories"
	"github.com/Black-And-White-Club/leet-bot/app/shared/attr"
	"github.com/Black-And-White-Club/leet-bot/app/shared/results"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// CurrentPhase reports the phase at the current time.
func (s *GameService) CurrentPhase(_ context.Context) gamedomain.PhaseInfo {
	return s.schedule.Phase(s.clock.Now(), s.winTimes)
}

// NextInstances lists up to n upcoming instance starts.
func (s *GameService) NextInstances(_ context.Context, n int) []time.Time {
	if n <= 0 {
		return nil
	}
	return s.schedule.NextInstances(s.clock.Now(), n)
}

// ValidatePlacement checks the participant can bet in the current phase and has
// not already bet on its instance.
func (s *GameService) ValidatePlacement(ctx context.Context, participantID string) (*PlacementCheck, error) {
	return unwrap(withTelemetry(s, ctx, "ValidatePlacement", participantID, func(ctx context.Context) (results.OperationResult[*PlacementCheck, error], error) {
		info := s.schedule.Phase(s.clock.Now(), s.winTimes)

		var kind gamedomain.BetKind
		switch info.Phase {
		case gamedomain.PhaseActive:
			kind = gamedomain.BetRegular
		case gamedomain.PhaseEarlyBird:
			kind = gamedomain.BetEarlyBird
		default:
			return results.FailureResult[*PlacementCheck, error](closedError(info)), nil
		}

		existing, err := s.repo.GetBet(ctx, nil, participantID, info.Instance)
		switch {
		case err == nil:
			bet := existing.ToDomain()
			return results.FailureResult[*PlacementCheck, error](gamedomain.AlreadyBet(&bet)), nil
		case !errors.Is(err, gamedb.ErrNotFound):
			return results.OperationResult[*PlacementCheck, error]{}, fmt.Errorf("failed to look up existing bet: %w", err)
		}

		return results.SuccessResult[*PlacementCheck, error](&PlacementCheck{
			Phase:    info.Phase,
			Instance: info.Instance,
			Kind:     kind,
		}), nil
	}))
}

// PlaceRegular records a live bet. The offset is the elapsed time since the
// active instance started.
func (s *GameService) PlaceRegular(ctx context.Context, p Participant) (*gamedomain.Bet, error) {
	return unwrap(withTelemetry(s, ctx, "PlaceRegular", p.ID, func(ctx context.Context) (results.OperationResult[*gamedomain.Bet, error], error) {
		if verr := validateParticipant(p); verr != nil {
			return s.reject(ctx, verr), nil
		}

		now := s.clock.Now()
		info := s.schedule.Phase(now, s.winTimes)
		if info.Phase != gamedomain.PhaseActive {
			return s.reject(ctx, closedError(info)), nil
		}

		offset := now.Sub(info.Instance).Milliseconds()
		return s.insertBet(ctx, p, gamedomain.BetRegular, offset, info.Instance, now)
	}))
}

// PlaceEarlyBird records a bet for the upcoming instance while the early-bird
// window is open. The offset must lie in [0, windowMs] and point to the future.
func (s *GameService) PlaceEarlyBird(ctx context.Context, req EarlyBirdRequest) (*gamedomain.Bet, error) {
	return unwrap(withTelemetry(s, ctx, "PlaceEarlyBird", req.ID, func(ctx context.Context) (results.OperationResult[*gamedomain.Bet, error], error) {
		if verr := validateParticipant(req.Participant); verr != nil {
			return s.reject(ctx, verr), nil
		}

		now := s.clock.Now()
		info := s.schedule.Phase(now, s.winTimes)
		if info.Phase != gamedomain.PhaseEarlyBird {
			return s.reject(ctx, closedError(info)), nil
		}

		var offset int64
		switch {
		case req.OffsetMs != nil:
			offset = *req.OffsetMs
		case strings.TrimSpace(req.Timestamp) != "":
			parsed, err := gamedomain.ParseEarlyBirdOffset(req.Timestamp, info.Instance, s.schedule.Location())
			if err != nil {
				var verr *gamedomain.ValidationError
				if errors.As(err, &verr) {
					return s.reject(ctx, verr), nil
				}
				return results.OperationResult[*gamedomain.Bet, error]{}, err
			}
			offset = parsed
		default:
			return s.reject(ctx, gamedomain.Rejected(gamedomain.ReasonInvalidFormat, "an offset or a time is required")), nil
		}

		if offset < 0 || offset > s.settings.WindowMs {
			return s.reject(ctx, gamedomain.Rejected(gamedomain.ReasonOutOfRange,
				"time must be between %s and %s after the start",
				gamedomain.FormatOffset(0), gamedomain.FormatOffset(s.settings.WindowMs))), nil
		}
		if !info.Instance.Add(gamedomain.Milliseconds(offset)).After(now) {
			return s.reject(ctx, gamedomain.Rejected(gamedomain.ReasonNotFuture, "time must be in the future")), nil
		}

		return s.insertBet(ctx, req.Participant, gamedomain.BetEarlyBird, offset, info.Instance, now)
	}))
}

// insertBet stores the bet outside a transaction: a unique violation would
// abort it, and the existing bet is read back afterwards.
func (s *GameService) insertBet(
	ctx context.Context,
	p Participant,
	kind gamedomain.BetKind,
	offset int64,
	instance, now time.Time,
) (results.OperationResult[*gamedomain.Bet, error], error) {
	bet := gamedomain.Bet{
		ID:            uuid.New(),
		ParticipantID: p.ID,
		DisplayName:   displayName(p),
		ScopeID:       p.ScopeID,
		Kind:          kind,
		OffsetMs:      offset,
		InstanceStart: instance,
		CreatedAt:     now,
	}

	err := s.repo.InsertBet(ctx, nil, gamedb.FromDomainBet(bet))
	if errors.Is(err, gamedb.ErrDuplicateBet) {
		existing, getErr := s.repo.GetBet(ctx, nil, p.ID, instance)
		if getErr != nil {
			s.logger.WarnContext(ctx, "Duplicate bet but existing bet could not be loaded",
				attr.ParticipantID(p.ID),
				attr.Instance(instance),
				attr.Error(getErr),
			)
			return s.reject(ctx, gamedomain.AlreadyBet(nil)), nil
		}
		prior := existing.ToDomain()
		return s.reject(ctx, gamedomain.AlreadyBet(&prior)), nil
	}
	if err != nil {
		return results.OperationResult[*gamedomain.Bet, error]{}, fmt.Errorf("failed to place bet: %w", err)
	}

	s.metrics.RecordBetPlaced(ctx, string(kind))
	s.logger.InfoContext(ctx, "Bet placed",
		attr.ParticipantID(p.ID),
		attr.ScopeID(p.ScopeID),
		attr.Instance(instance),
		attr.String("kind", string(kind)),
		attr.Int64("offset_ms", offset),
	)
	return results.SuccessResult[*gamedomain.Bet, error](&bet), nil
}

func (s *GameService) reject(ctx context.Context, verr *gamedomain.ValidationError) results.OperationResult[*gamedomain.Bet, error] {
	s.metrics.RecordBetRejected(ctx, string(verr.Reason))
	return results.FailureResult[*gamedomain.Bet, error](verr)
}

// BetsFor lists an instance's bets ordered by offset.
func (s *GameService) BetsFor(ctx context.Context, instanceStart time.Time) ([]gamedomain.Bet, error) {
	return unwrap(withTelemetry(s, ctx, "BetsFor", instanceStart.Format(time.RFC3339), func(ctx context.Context) (results.OperationResult[[]gamedomain.Bet, error], error) {
		bets, err := s.loadBets(ctx, nil, instanceStart)
		if err != nil {
			return results.OperationResult[[]gamedomain.Bet, error]{}, err
		}
		return results.SuccessResult[[]gamedomain.Bet, error](bets), nil
	}))
}

// DailyBets lists the bets of the most recently started instance: today's once
// the game has started, the previous one before that.
func (s *GameService) DailyBets(ctx context.Context) (*DailyBets, error) {
	return unwrap(withTelemetry(s, ctx, "DailyBets", "", func(ctx context.Context) (results.OperationResult[*DailyBets, error], error) {
		now := s.clock.Now()
		instance := s.schedule.PreviousInstance(now)
		if instance.IsZero() {
			return results.SuccessResult[*DailyBets, error](&DailyBets{}), nil
		}

		bets, err := s.loadBets(ctx, nil, instance)
		if err != nil {
			return results.OperationResult[*DailyBets, error]{}, err
		}

		phase := s.schedule.InstancePhase(instance, now, s.winTimes)
		view := &DailyBets{
			InstanceStart: instance,
			InstanceDate:  s.schedule.InstanceDate(instance),
			Phase:         phase,
			Bets:          bets,
		}
		if phase == gamedomain.PhaseEnded {
			win := s.winTimes.WinTime(instance)
			view.WinOffsetMs = &win
		}
		return results.SuccessResult[*DailyBets, error](view), nil
	}))
}

// BetOf returns the participant's bet for the instance the current phase
// belongs to, falling back to the most recent started instance. Win time and
// difference are revealed only after the instance has ended.
func (s *GameService) BetOf(ctx context.Context, participantID string) (*BetView, error) {
	return unwrap(withTelemetry(s, ctx, "BetOf", participantID, func(ctx context.Context) (results.OperationResult[*BetView, error], error) {
		now := s.clock.Now()
		candidates := []time.Time{s.schedule.Phase(now, s.winTimes).Instance}
		if prev := s.schedule.PreviousInstance(now); !prev.IsZero() && !prev.Equal(candidates[0]) {
			candidates = append(candidates, prev)
		}

		for _, instance := range candidates {
			if instance.IsZero() {
				continue
			}
			row, err := s.repo.GetBet(ctx, nil, participantID, instance)
			if errors.Is(err, gamedb.ErrNotFound) {
				continue
			}
			if err != nil {
				return results.OperationResult[*BetView, error]{}, fmt.Errorf("failed to get bet: %w", err)
			}

			bet := row.ToDomain()
			view := &BetView{Bet: bet, Phase: s.schedule.InstancePhase(instance, now, s.winTimes)}
			if view.Phase == gamedomain.PhaseEnded {
				win := s.winTimes.WinTime(instance)
				diff := win - bet.OffsetMs
				view.WinOffsetMs = &win
				view.DifferenceMs = &diff
			}
			return results.SuccessResult[*BetView, error](view), nil
		}

		return results.FailureResult[*BetView, error](gamedb.ErrNotFound), nil
	}))
}

func (s *GameService) loadBets(ctx context.Context, db bun.IDB, instance time.Time) ([]gamedomain.Bet, error) {
	rows, err := s.repo.ListBets(ctx, db, instance)
	if err != nil {
		return nil, fmt.Errorf("failed to list bets: %w", err)
	}
	bets := make([]gamedomain.Bet, len(rows))
	for i := range rows {
		bets[i] = rows[i].ToDomain()
	}
	gamedomain.SortByOffset(bets)
	return bets, nil
}

func closedError(info gamedomain.PhaseInfo) *gamedomain.ValidationError {
	switch info.Phase {
	case gamedomain.PhaseIdle:
		return gamedomain.Rejected(gamedomain.ReasonGameClosed,
			"bets are closed until the game starts at %s", gamedomain.FormatTimestamp(info.NextInstance))
	case gamedomain.PhaseEarlyBird:
		return gamedomain.Rejected(gamedomain.ReasonGameClosed,
			"the game is not running, early-bird bets are open until %s", gamedomain.FormatTimestamp(info.End))
	case gamedomain.PhaseActive:
		return gamedomain.Rejected(gamedomain.ReasonGameClosed, "the game is running, early-bird bets are closed")
	default:
		return gamedomain.Rejected(gamedomain.ReasonGameClosed, "no further games are scheduled")
	}
}

func validateParticipant(p Participant) *gamedomain.ValidationError {
	if strings.TrimSpace(p.ID) == "" {
		return gamedomain.Rejected(gamedomain.ReasonInvalidFormat, "participant id is required")
	}
	if strings.TrimSpace(p.ScopeID) == "" {
		return gamedomain.Rejected(gamedomain.ReasonInvalidFormat, "scope id is required")
	}
	return nil
}

func displayName(p Participant) string {
	if name := strings.TrimSpace(p.DisplayName); name != "" {
		return name
	}
	return p.ID
}
