package gameservice

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	gamedomain "github.com/Black-And-White-Club/leet-bot/app/modules/game/domain"
	gamemetrics "github.com/Black-And-White-Club/leet-bot/app/modules/game/infrastructure/metrics"
	gamedb "github.com/Black-And-White-Club/leet-bot/app/modules/game/infrastructure/repositories"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

const testScope = "guild-1"

// instance is the 13:37 UTC game on 2025-06-01.
var instance = time.Date(2025, 6, 1, 13, 37, 0, 0, time.UTC)

type testEnv struct {
	svc      *GameService
	repo     *FakeGameRepo
	notifier *FakeNotifier
	roles    *FakeRoleMutator
	clock    *clockwork.FakeClock
	win      int64
}

func newTestEnv(t *testing.T, now time.Time) *testEnv {
	t.Helper()
	schedule, err := gamedomain.NewSchedule("37 13 * * *", "UTC", 2*time.Hour)
	require.NoError(t, err)

	env := &testEnv{
		repo:     NewFakeGameRepo(),
		notifier: &FakeNotifier{},
		roles:    &FakeRoleMutator{},
		clock:    clockwork.NewFakeClockAt(now),
	}
	env.svc = NewGameService(env.repo, schedule, DefaultSettings(), slog.Default(), gamemetrics.NewNoop(), nil, nil,
		WithClock(env.clock),
		WithNotifier(env.notifier),
		WithRoleMutator(env.roles),
	)
	env.win = env.svc.WinTimes().WinTime(instance)
	return env
}

// afterEnd returns a moment after the active window of instance.
func afterEnd() time.Time {
	return instance.Add(61 * time.Second)
}

func participant(id string) Participant {
	return Participant{ID: id, DisplayName: "Player " + id, ScopeID: testScope}
}

func seed(env *testEnv, at time.Time, id string, kind gamedomain.BetKind, offset int64) {
	env.repo.seedBet(gamedomain.Bet{
		ID:            uuid.New(),
		ParticipantID: id,
		DisplayName:   "Player " + id,
		ScopeID:       testScope,
		Kind:          kind,
		OffsetMs:      offset,
		InstanceStart: at,
		CreatedAt:     at.Add(-time.Minute),
	})
}

func requireRejection(t *testing.T, err error, reason gamedomain.RejectionReason) *gamedomain.ValidationError {
	t.Helper()
	var verr *gamedomain.ValidationError
	require.True(t, errors.As(err, &verr), "expected ValidationError, got %v", err)
	assert.Equal(t, reason, verr.Reason)
	return verr
}

func TestGameService_PlaceRegular(t *testing.T) {
	ctx := context.Background()

	t.Run("records the elapsed offset", func(t *testing.T) {
		env := newTestEnv(t, instance)
		env.clock.Advance(gamedomain.Milliseconds(env.win / 2))

		bet, err := env.svc.PlaceRegular(ctx, participant("alice"))
		require.NoError(t, err)
		assert.Equal(t, env.win/2, bet.OffsetMs)
		assert.Equal(t, gamedomain.BetRegular, bet.Kind)
		assert.True(t, bet.InstanceStart.Equal(instance))
		assert.Equal(t, "Player alice", bet.DisplayName)
	})

	t.Run("second bet is rejected with the existing one", func(t *testing.T) {
		env := newTestEnv(t, instance)
		env.clock.Advance(gamedomain.Milliseconds(env.win / 2))

		first, err := env.svc.PlaceRegular(ctx, participant("alice"))
		require.NoError(t, err)

		_, err = env.svc.PlaceRegular(ctx, participant("alice"))
		verr := requireRejection(t, err, gamedomain.ReasonAlreadyBet)
		require.NotNil(t, verr.Existing)
		assert.Equal(t, first.ID, verr.Existing.ID)
	})

	t.Run("closed outside the active window", func(t *testing.T) {
		env := newTestEnv(t, instance.Add(-time.Hour))
		_, err := env.svc.PlaceRegular(ctx, participant("alice"))
		requireRejection(t, err, gamedomain.ReasonGameClosed)
		assert.Zero(t, env.repo.Calls("InsertBet"))
	})

	t.Run("participant id is required", func(t *testing.T) {
		env := newTestEnv(t, instance)
		_, err := env.svc.PlaceRegular(ctx, Participant{ScopeID: testScope})
		requireRejection(t, err, gamedomain.ReasonInvalidFormat)
	})

	t.Run("display name falls back to id", func(t *testing.T) {
		env := newTestEnv(t, instance)
		id := gofakeit.Username()
		bet, err := env.svc.PlaceRegular(ctx, Participant{ID: id, ScopeID: testScope})
		require.NoError(t, err)
		assert.Equal(t, id, bet.DisplayName)
	})

	t.Run("storage errors surface", func(t *testing.T) {
		env := newTestEnv(t, instance)
		env.repo.InsertBetFunc = func(context.Context, bun.IDB, *gamedb.Bet) error {
			return errors.New("connection reset")
		}
		_, err := env.svc.PlaceRegular(ctx, participant("alice"))
		require.Error(t, err)
		var verr *gamedomain.ValidationError
		assert.False(t, errors.As(err, &verr))
	})
}

func TestGameService_PlaceEarlyBird(t *testing.T) {
	ctx := context.Background()
	offset := func(v int64) *int64 { return &v }

	tests := []struct {
		name       string
		now        time.Time
		req        EarlyBirdRequest
		wantOffset int64
		wantReason gamedomain.RejectionReason
	}{
		{
			name:       "explicit offset",
			now:        instance.Add(-3 * time.Hour),
			req:        EarlyBirdRequest{Participant: participant("alice"), OffsetMs: offset(30000)},
			wantOffset: 30000,
		},
		{
			name:       "wall clock time",
			now:        instance.Add(-3 * time.Hour),
			req:        EarlyBirdRequest{Participant: participant("alice"), Timestamp: "13:37:28.250"},
			wantOffset: 28250,
		},
		{
			name:       "seconds",
			now:        instance.Add(-3 * time.Hour),
			req:        EarlyBirdRequest{Participant: participant("alice"), Timestamp: "13.5"},
			wantOffset: 13500,
		},
		{
			name:       "offset wins over timestamp",
			now:        instance.Add(-3 * time.Hour),
			req:        EarlyBirdRequest{Participant: participant("alice"), OffsetMs: offset(1000), Timestamp: "13.5"},
			wantOffset: 1000,
		},
		{
			name:       "beyond the window",
			now:        instance.Add(-3 * time.Hour),
			req:        EarlyBirdRequest{Participant: participant("alice"), OffsetMs: offset(60001)},
			wantReason: gamedomain.ReasonOutOfRange,
		},
		{
			name:       "before the start",
			now:        instance.Add(-3 * time.Hour),
			req:        EarlyBirdRequest{Participant: participant("alice"), Timestamp: "13:36:59"},
			wantReason: gamedomain.ReasonOutOfRange,
		},
		{
			name:       "comma separator",
			now:        instance.Add(-3 * time.Hour),
			req:        EarlyBirdRequest{Participant: participant("alice"), Timestamp: "13,5"},
			wantReason: gamedomain.ReasonInvalidFormat,
		},
		{
			name:       "nothing given",
			now:        instance.Add(-3 * time.Hour),
			req:        EarlyBirdRequest{Participant: participant("alice")},
			wantReason: gamedomain.ReasonInvalidFormat,
		},
		{
			name:       "after the cutoff",
			now:        instance.Add(-time.Hour),
			req:        EarlyBirdRequest{Participant: participant("alice"), OffsetMs: offset(30000)},
			wantReason: gamedomain.ReasonGameClosed,
		},
		{
			name:       "while the game runs",
			now:        instance,
			req:        EarlyBirdRequest{Participant: participant("alice"), OffsetMs: offset(30000)},
			wantReason: gamedomain.ReasonGameClosed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, tt.now)
			bet, err := env.svc.PlaceEarlyBird(ctx, tt.req)
			if tt.wantReason != "" {
				requireRejection(t, err, tt.wantReason)
				assert.Nil(t, bet)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantOffset, bet.OffsetMs)
			assert.Equal(t, gamedomain.BetEarlyBird, bet.Kind)
			assert.True(t, bet.InstanceStart.Equal(instance))
		})
	}
}

func TestGameService_ValidatePlacement(t *testing.T) {
	ctx := context.Background()

	env := newTestEnv(t, instance.Add(-3*time.Hour))
	check, err := env.svc.ValidatePlacement(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, gamedomain.PhaseEarlyBird, check.Phase)
	assert.Equal(t, gamedomain.BetEarlyBird, check.Kind)
	assert.True(t, check.Instance.Equal(instance))

	seed(env, instance, "alice", gamedomain.BetEarlyBird, 1000)
	_, err = env.svc.ValidatePlacement(ctx, "alice")
	requireRejection(t, err, gamedomain.ReasonAlreadyBet)

	env.clock.Advance(3 * time.Hour)
	check, err = env.svc.ValidatePlacement(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, gamedomain.BetRegular, check.Kind)

	idle := newTestEnv(t, instance.Add(-time.Hour))
	_, err = idle.svc.ValidatePlacement(ctx, "bob")
	requireRejection(t, err, gamedomain.ReasonGameClosed)
}

func TestGameService_BetOfAndDailyBets(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, instance)
	env.clock.Advance(gamedomain.Milliseconds(env.win / 2))

	_, err := env.svc.PlaceRegular(ctx, participant("alice"))
	require.NoError(t, err)

	view, err := env.svc.BetOf(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, gamedomain.PhaseActive, view.Phase)
	assert.Nil(t, view.WinOffsetMs, "win time stays hidden while running")
	assert.Nil(t, view.DifferenceMs)

	daily, err := env.svc.DailyBets(ctx)
	require.NoError(t, err)
	assert.Len(t, daily.Bets, 1)
	assert.Nil(t, daily.WinOffsetMs)

	env.clock.Advance(2 * time.Minute)

	view, err = env.svc.BetOf(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, gamedomain.PhaseEnded, view.Phase)
	require.NotNil(t, view.WinOffsetMs)
	assert.Equal(t, env.win, *view.WinOffsetMs)
	assert.Equal(t, env.win-env.win/2, *view.DifferenceMs)

	daily, err = env.svc.DailyBets(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2025-06-01", daily.InstanceDate)
	require.NotNil(t, daily.WinOffsetMs)
	assert.Equal(t, env.win, *daily.WinOffsetMs)

	_, err = env.svc.BetOf(ctx, "nobody")
	assert.ErrorIs(t, err, gamedb.ErrNotFound)
}

func TestGameService_ResolveInstance_Winner(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, afterEnd())
	seed(env, instance, "alice", gamedomain.BetRegular, env.win)
	seed(env, instance, "bob", gamedomain.BetRegular, env.win-1000)

	report, err := env.svc.ResolveInstance(ctx, instance)
	require.NoError(t, err)
	assert.False(t, report.AlreadyResolved)
	assert.Equal(t, "2025-06-01", report.InstanceDate)

	winner, ok := report.Outcome.(gamedomain.Winner)
	require.True(t, ok, "outcome %T", report.Outcome)
	assert.Equal(t, "alice", winner.Bet.ParticipantID)
	assert.Zero(t, winner.MarginMs)

	alice, ok := env.repo.Stats("alice", testScope)
	require.True(t, ok)
	assert.Equal(t, 1, alice.LifetimeWins)
	assert.Equal(t, 1, alice.TotalGames)
	assert.Equal(t, 1, alice.ShortWindowWins)
	assert.Equal(t, "sergeant", alice.Tier)

	bob, ok := env.repo.Stats("bob", testScope)
	require.True(t, ok)
	assert.Zero(t, bob.LifetimeWins)
	assert.Equal(t, 1, bob.TotalGames)

	// First ever winner leads the long window.
	assert.Equal(t, []gamedomain.RoleDelta{{Tier: gamedomain.TierGeneral, To: "alice"}}, report.RoleDeltas)
	assert.Equal(t, report.RoleDeltas, env.roles.Applied)

	require.Len(t, env.notifier.Winners, 1)
	a := env.notifier.Winners[0]
	assert.Equal(t, "alice", a.ParticipantID)
	assert.Equal(t, "Sergeant", a.Tier)
	assert.Equal(t, 2, a.TotalBets)
	require.Len(t, a.RoleChanges, 1)
	assert.Equal(t, "general", a.RoleChanges[0].Tier)
	assert.Equal(t, 1, a.RoleChanges[0].Wins)

	record, err := env.svc.WinnerFor(ctx, "2025-06-01")
	require.NoError(t, err)
	assert.Equal(t, "alice", record.ParticipantID)
	assert.Equal(t, env.win, record.WinOffsetMs)

	t.Run("resolving again changes nothing", func(t *testing.T) {
		again, err := env.svc.ResolveInstance(ctx, instance)
		require.NoError(t, err)
		assert.True(t, again.AlreadyResolved)
		assert.Len(t, env.notifier.Winners, 1)
		assert.Equal(t, 1, env.repo.WinnerCount())
		stats, _ := env.repo.Stats("alice", testScope)
		assert.Equal(t, 1, stats.TotalGames)
	})

	t.Run("next day's winner takes commander", func(t *testing.T) {
		next := instance.Add(24 * time.Hour)
		nextWin := env.svc.WinTimes().WinTime(next)
		seed(env, next, "alice", gamedomain.BetRegular, nextWin-5000)
		seed(env, next, "bob", gamedomain.BetRegular, nextWin)
		env.clock.Advance(24 * time.Hour)

		report, err := env.svc.ResolveInstance(ctx, next)
		require.NoError(t, err)
		// alice and bob tie the long window, so alice keeps General.
		assert.Equal(t, []gamedomain.RoleDelta{{Tier: gamedomain.TierCommander, To: "bob"}}, report.RoleDeltas)

		holders, err := env.svc.RoleHolders(ctx, testScope)
		require.NoError(t, err)
		assert.Equal(t, gamedomain.RoleHolders{gamedomain.TierGeneral: "alice", gamedomain.TierCommander: "bob"}, holders)

		alice, _ := env.repo.Stats("alice", testScope)
		assert.Equal(t, 2, alice.TotalGames)
		assert.Zero(t, alice.CurrentStreak)
		assert.Equal(t, 1, alice.MaxStreak)
	})
}

func TestGameService_ResolveInstance_Outcomes(t *testing.T) {
	ctx := context.Background()

	t.Run("not ended", func(t *testing.T) {
		env := newTestEnv(t, instance)
		env.clock.Advance(gamedomain.Milliseconds(env.win / 2))
		_, err := env.svc.ResolveInstance(ctx, instance)
		assert.ErrorIs(t, err, ErrNotEnded)
		assert.Zero(t, env.repo.Calls("InsertResolution"))
	})

	t.Run("exactly at the win time", func(t *testing.T) {
		env := newTestEnv(t, instance)
		env.clock.Advance(gamedomain.Milliseconds(env.win))
		_, err := env.svc.ResolveInstance(ctx, instance)
		assert.ErrorIs(t, err, ErrNotEnded)

		bet, err := env.svc.PlaceRegular(ctx, participant("late"))
		require.NoError(t, err)
		assert.Equal(t, env.win, bet.OffsetMs)

		env.clock.Advance(time.Millisecond)
		report, err := env.svc.ResolveInstance(ctx, instance)
		require.NoError(t, err)
		require.NotNil(t, report.Winner)
		assert.Equal(t, "late", report.Winner.ParticipantID)
	})

	t.Run("catastrophic tie", func(t *testing.T) {
		env := newTestEnv(t, afterEnd())
		seed(env, instance, "alice", gamedomain.BetRegular, env.win-10)
		seed(env, instance, "bob", gamedomain.BetRegular, env.win-10)

		report, err := env.svc.ResolveInstance(ctx, instance)
		require.NoError(t, err)
		tie, ok := report.Outcome.(gamedomain.CatastrophicTie)
		require.True(t, ok, "outcome %T", report.Outcome)
		assert.Equal(t, 2, tie.Count)

		assert.Zero(t, env.repo.WinnerCount())
		_, ok = env.repo.Stats("alice", testScope)
		assert.False(t, ok, "stats untouched on a tie")
		assert.Empty(t, env.notifier.Winners)
		require.Len(t, env.notifier.Catastrophe, 1)
		assert.Len(t, env.notifier.Catastrophe[0].Participants, 2)
		assert.Equal(t, testScope, env.notifier.Catastrophe[0].ScopeID)

		_, err = env.svc.WinnerFor(ctx, "2025-06-01")
		assert.ErrorIs(t, err, gamedb.ErrNotFound)
	})

	t.Run("no valid bets", func(t *testing.T) {
		env := newTestEnv(t, afterEnd())
		seed(env, instance, "alice", gamedomain.BetRegular, env.win+1)

		report, err := env.svc.ResolveInstance(ctx, instance)
		require.NoError(t, err)
		nv, ok := report.Outcome.(gamedomain.NoValidBets)
		require.True(t, ok, "outcome %T", report.Outcome)
		assert.Equal(t, 1, nv.TotalBets)
		assert.Empty(t, env.notifier.Winners)
		assert.Empty(t, env.notifier.Catastrophe)
		assert.Equal(t, 1, env.repo.Calls("InsertResolution"))
	})

	t.Run("concurrent resolution wins the race", func(t *testing.T) {
		env := newTestEnv(t, afterEnd())
		seed(env, instance, "alice", gamedomain.BetRegular, env.win)
		env.repo.InsertResolutionFunc = func(context.Context, bun.IDB, *gamedb.Resolution) error {
			return gamedb.ErrResultExists
		}

		report, err := env.svc.ResolveInstance(ctx, instance)
		require.NoError(t, err)
		assert.True(t, report.AlreadyResolved)
		assert.Zero(t, env.repo.WinnerCount())
		assert.Empty(t, env.notifier.Winners)
	})

	t.Run("storage failure aborts", func(t *testing.T) {
		env := newTestEnv(t, afterEnd())
		seed(env, instance, "alice", gamedomain.BetRegular, env.win)
		env.repo.UpsertStatsFunc = func(context.Context, bun.IDB, *gamedb.PlayerStats) error {
			return errors.New("disk full")
		}

		_, err := env.svc.ResolveInstance(ctx, instance)
		require.Error(t, err)
		assert.Empty(t, env.notifier.Winners)
		assert.Empty(t, env.roles.Applied)
	})

	t.Run("notification failure does not fail resolution", func(t *testing.T) {
		env := newTestEnv(t, afterEnd())
		seed(env, instance, "alice", gamedomain.BetRegular, env.win)
		env.notifier.Err = errors.New("sink down")

		report, err := env.svc.ResolveInstance(ctx, instance)
		require.NoError(t, err)
		require.NotNil(t, report.Winner)
		assert.Len(t, env.notifier.Winners, 1)
		assert.Equal(t, 1, env.repo.WinnerCount())
	})

	t.Run("role mutation failure is isolated", func(t *testing.T) {
		env := newTestEnv(t, afterEnd())
		seed(env, instance, "alice", gamedomain.BetRegular, env.win)
		env.roles.FailFor = map[gamedomain.Tier]error{gamedomain.TierGeneral: errors.New("missing permission")}

		report, err := env.svc.ResolveInstance(ctx, instance)
		require.NoError(t, err)
		assert.Len(t, report.RoleDeltas, 1)
		assert.Empty(t, env.roles.Applied)
		assert.Len(t, env.notifier.Winners, 1)
	})
}

func TestGameService_SetRoleHolder(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, afterEnd())

	deltas, err := env.svc.SetRoleHolder(ctx, testScope, gamedomain.TierSergeant, "alice", "")
	require.NoError(t, err)
	assert.Equal(t, []gamedomain.RoleDelta{{Tier: gamedomain.TierSergeant, To: "alice"}}, deltas)

	deltas, err = env.svc.SetRoleHolder(ctx, testScope, gamedomain.TierGeneral, "alice", "mod")
	require.NoError(t, err)
	assert.Equal(t, []gamedomain.RoleDelta{
		{Tier: gamedomain.TierGeneral, To: "alice"},
		{Tier: gamedomain.TierSergeant, From: "alice"},
	}, deltas)

	holders, err := env.svc.RoleHolders(ctx, testScope)
	require.NoError(t, err)
	assert.Equal(t, gamedomain.RoleHolders{gamedomain.TierGeneral: "alice"}, holders)
	assert.Len(t, env.roles.Applied, 3)

	deltas, err = env.svc.SetRoleHolder(ctx, testScope, gamedomain.TierGeneral, "", "mod")
	require.NoError(t, err)
	assert.Equal(t, []gamedomain.RoleDelta{{Tier: gamedomain.TierGeneral, From: "alice"}}, deltas)

	_, err = env.svc.SetRoleHolder(ctx, testScope, gamedomain.TierNone, "alice", "mod")
	assert.ErrorIs(t, err, ErrInvalidTier)
}

func TestGameService_StatsAndLeaderboard(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, afterEnd())

	view, err := env.svc.StatsFor(ctx, testScope, "alice", 14)
	require.NoError(t, err)
	assert.Equal(t, "alice", view.Stats.ParticipantID)
	assert.Zero(t, view.Stats.TotalGames)
	assert.Zero(t, view.WindowWins)

	seed(env, instance, "alice", gamedomain.BetRegular, env.win)
	seed(env, instance, "bob", gamedomain.BetRegular, env.win-2000)
	_, err = env.svc.ResolveInstance(ctx, instance)
	require.NoError(t, err)

	view, err = env.svc.StatsFor(ctx, testScope, "alice", 14)
	require.NoError(t, err)
	assert.Equal(t, 1, view.WindowWins)
	assert.Equal(t, 1, view.Stats.LifetimeWins)
	assert.Equal(t, gamedomain.TierSergeant, view.Stats.Tier)

	_, err = env.svc.StatsFor(ctx, testScope, "alice", -1)
	assert.ErrorIs(t, err, ErrInvalidWindow)

	board, err := env.svc.Leaderboard(ctx, testScope, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, []gamedomain.WinCount{{ParticipantID: "alice", DisplayName: "Player alice", Wins: 1}}, board)

	board, err = env.svc.Leaderboard(ctx, "other-guild", 14, 10)
	require.NoError(t, err)
	assert.Empty(t, board)

	_, err = env.svc.Leaderboard(ctx, testScope, -3, 10)
	assert.ErrorIs(t, err, ErrInvalidWindow)

	t.Run("window excludes older wins", func(t *testing.T) {
		env.clock.Advance(30 * 24 * time.Hour)
		view, err := env.svc.StatsFor(ctx, testScope, "alice", 14)
		require.NoError(t, err)
		assert.Zero(t, view.WindowWins)
		assert.Equal(t, 1, view.Stats.LifetimeWins)
	})
}

func TestGameService_LeaderboardChart(t *testing.T) {
	ctx := context.Background()
	pngHeader := []byte("\x89PNG\r\n\x1a\n")

	env := newTestEnv(t, afterEnd())
	png, err := env.svc.LeaderboardChart(ctx, testScope, 14, 10)
	require.NoError(t, err)
	assert.Equal(t, pngHeader, png[:len(pngHeader)], "empty board renders a placeholder")

	seed(env, instance, "alice", gamedomain.BetRegular, env.win)
	_, err = env.svc.ResolveInstance(ctx, instance)
	require.NoError(t, err)

	png, err = env.svc.LeaderboardChart(ctx, testScope, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, pngHeader, png[:len(pngHeader)])
}

func TestGameService_WinnerFor_InvalidDate(t *testing.T) {
	env := newTestEnv(t, afterEnd())
	_, err := env.svc.WinnerFor(context.Background(), "01.06.2025")
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestGameService_NextInstances(t *testing.T) {
	env := newTestEnv(t, afterEnd())
	next := env.svc.NextInstances(context.Background(), 3)
	require.Len(t, next, 3)
	assert.True(t, next[0].Equal(instance.Add(24*time.Hour)))
	assert.True(t, next[2].Equal(instance.Add(72*time.Hour)))
	assert.Nil(t, env.svc.NextInstances(context.Background(), 0))

	info := env.svc.CurrentPhase(context.Background())
	assert.Equal(t, gamedomain.PhaseEarlyBird, info.Phase)
}
