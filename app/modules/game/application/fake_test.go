package gameservice

import (
	"context"
	"sort"
	"sync"
	"time"

	gamedomain "github.com/Black-And-White-Club/leet-bot/app/modules/game/domain"
	gamedb "github.com/Black-And-White-Club/leet-bot/app/modules/game/infrastructure/repositories"
	"github.com/uptrace/bun"
)

// ------------------------
// Fake Game Repo
// ------------------------

// FakeGameRepo keeps rows in memory. Any XxxFunc set overrides the default.
type FakeGameRepo struct {
	mu    sync.Mutex
	trace []string

	bets        map[string]gamedb.Bet
	resolutions map[int64]gamedb.Resolution
	winners     map[int64]gamedb.Winner
	stats       map[string]gamedb.PlayerStats
	roles       map[string]gamedb.RoleAssignment

	InsertBetFunc        func(ctx context.Context, db bun.IDB, bet *gamedb.Bet) error
	GetBetFunc           func(ctx context.Context, db bun.IDB, participantID string, instanceStart time.Time) (*gamedb.Bet, error)
	ListBetsFunc         func(ctx context.Context, db bun.IDB, instanceStart time.Time) ([]gamedb.Bet, error)
	InsertResolutionFunc func(ctx context.Context, db bun.IDB, resolution *gamedb.Resolution) error
	CountWinsFunc        func(ctx context.Context, db bun.IDB, scopeID string, since time.Time) ([]gamedomain.WinCount, error)
	UpsertStatsFunc      func(ctx context.Context, db bun.IDB, stats *gamedb.PlayerStats) error
}

func NewFakeGameRepo() *FakeGameRepo {
	return &FakeGameRepo{
		trace:       []string{},
		bets:        map[string]gamedb.Bet{},
		resolutions: map[int64]gamedb.Resolution{},
		winners:     map[int64]gamedb.Winner{},
		stats:       map[string]gamedb.PlayerStats{},
		roles:       map[string]gamedb.RoleAssignment{},
	}
}

func (f *FakeGameRepo) record(step string) {
	f.trace = append(f.trace, step)
}

func betKey(participantID string, instance time.Time) string {
	return participantID + "@" + instance.UTC().Format(time.RFC3339Nano)
}

func (f *FakeGameRepo) InsertBet(ctx context.Context, db bun.IDB, bet *gamedb.Bet) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("InsertBet")
	if f.InsertBetFunc != nil {
		return f.InsertBetFunc(ctx, db, bet)
	}
	key := betKey(bet.ParticipantID, bet.InstanceStart)
	if _, exists := f.bets[key]; exists {
		return gamedb.ErrDuplicateBet
	}
	f.bets[key] = *bet
	return nil
}

func (f *FakeGameRepo) GetBet(ctx context.Context, db bun.IDB, participantID string, instanceStart time.Time) (*gamedb.Bet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GetBet")
	if f.GetBetFunc != nil {
		return f.GetBetFunc(ctx, db, participantID, instanceStart)
	}
	bet, ok := f.bets[betKey(participantID, instanceStart)]
	if !ok {
		return nil, gamedb.ErrNotFound
	}
	return &bet, nil
}

func (f *FakeGameRepo) ListBets(ctx context.Context, db bun.IDB, instanceStart time.Time) ([]gamedb.Bet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ListBets")
	if f.ListBetsFunc != nil {
		return f.ListBetsFunc(ctx, db, instanceStart)
	}
	var out []gamedb.Bet
	for _, b := range f.bets {
		if b.InstanceStart.Equal(instanceStart) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OffsetMs < out[j].OffsetMs })
	return out, nil
}

func (f *FakeGameRepo) GetResolution(ctx context.Context, db bun.IDB, instanceStart time.Time) (*gamedb.Resolution, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GetResolution")
	res, ok := f.resolutions[instanceStart.UnixMilli()]
	if !ok {
		return nil, gamedb.ErrNotFound
	}
	return &res, nil
}

func (f *FakeGameRepo) InsertResolution(ctx context.Context, db bun.IDB, resolution *gamedb.Resolution) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("InsertResolution")
	if f.InsertResolutionFunc != nil {
		return f.InsertResolutionFunc(ctx, db, resolution)
	}
	key := resolution.InstanceStart.UnixMilli()
	if _, exists := f.resolutions[key]; exists {
		return gamedb.ErrResultExists
	}
	f.resolutions[key] = *resolution
	return nil
}

func (f *FakeGameRepo) InsertWinner(ctx context.Context, db bun.IDB, winner *gamedb.Winner) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("InsertWinner")
	key := winner.InstanceStart.UnixMilli()
	if _, exists := f.winners[key]; exists {
		return gamedb.ErrResultExists
	}
	f.winners[key] = *winner
	return nil
}

func (f *FakeGameRepo) GetWinnerByDate(ctx context.Context, db bun.IDB, instanceDate string) (*gamedb.Winner, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GetWinnerByDate")
	for _, w := range f.winners {
		if w.InstanceDate == instanceDate {
			return &w, nil
		}
	}
	return nil, gamedb.ErrNotFound
}

func (f *FakeGameRepo) CountWins(ctx context.Context, db bun.IDB, scopeID string, since time.Time) ([]gamedomain.WinCount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CountWins")
	if f.CountWinsFunc != nil {
		return f.CountWinsFunc(ctx, db, scopeID, since)
	}
	byID := map[string]*gamedomain.WinCount{}
	for _, w := range f.winners {
		if w.ScopeID != scopeID || w.InstanceStart.Before(since) {
			continue
		}
		c, ok := byID[w.ParticipantID]
		if !ok {
			c = &gamedomain.WinCount{ParticipantID: w.ParticipantID, DisplayName: w.DisplayName}
			byID[w.ParticipantID] = c
		}
		c.Wins++
	}
	out := make([]gamedomain.WinCount, 0, len(byID))
	for _, c := range byID {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Wins != out[j].Wins {
			return out[i].Wins > out[j].Wins
		}
		return out[i].ParticipantID < out[j].ParticipantID
	})
	return out, nil
}

func statsKey(participantID, scopeID string) string { return participantID + "/" + scopeID }

func (f *FakeGameRepo) GetPlayerStats(ctx context.Context, db bun.IDB, participantID, scopeID string) (*gamedb.PlayerStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GetPlayerStats")
	s, ok := f.stats[statsKey(participantID, scopeID)]
	if !ok {
		return nil, gamedb.ErrNotFound
	}
	return &s, nil
}

func (f *FakeGameRepo) UpsertPlayerStats(ctx context.Context, db bun.IDB, stats *gamedb.PlayerStats) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("UpsertPlayerStats")
	if f.UpsertStatsFunc != nil {
		return f.UpsertStatsFunc(ctx, db, stats)
	}
	f.stats[statsKey(stats.ParticipantID, stats.ScopeID)] = *stats
	return nil
}

func roleKey(scopeID, tier string) string { return scopeID + "/" + tier }

func (f *FakeGameRepo) ListRoleAssignments(ctx context.Context, db bun.IDB, scopeID string) ([]gamedb.RoleAssignment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ListRoleAssignments")
	var out []gamedb.RoleAssignment
	for _, r := range f.roles {
		if r.ScopeID == scopeID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *FakeGameRepo) UpsertRoleAssignment(ctx context.Context, db bun.IDB, assignment *gamedb.RoleAssignment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("UpsertRoleAssignment")
	f.roles[roleKey(assignment.ScopeID, assignment.Tier)] = *assignment
	return nil
}

func (f *FakeGameRepo) DeleteRoleAssignment(ctx context.Context, db bun.IDB, scopeID, tier string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DeleteRoleAssignment")
	delete(f.roles, roleKey(scopeID, tier))
	return nil
}

// --- Accessors for assertions ---

func (f *FakeGameRepo) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakeGameRepo) Calls(step string) int {
	n := 0
	for _, s := range f.Trace() {
		if s == step {
			n++
		}
	}
	return n
}

func (f *FakeGameRepo) Stats(participantID, scopeID string) (gamedb.PlayerStats, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.stats[statsKey(participantID, scopeID)]
	return s, ok
}

func (f *FakeGameRepo) WinnerCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.winners)
}

// seedBet stores a bet directly, bypassing placement rules.
func (f *FakeGameRepo) seedBet(b gamedomain.Bet) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bets[betKey(b.ParticipantID, b.InstanceStart)] = *gamedb.FromDomainBet(b)
}

var _ gamedb.Repository = (*FakeGameRepo)(nil)

// ------------------------
// Fake Notifier
// ------------------------

type FakeNotifier struct {
	mu          sync.Mutex
	Winners     []gamedomain.WinnerAnnouncement
	Catastrophe []gamedomain.CatastropheAnnouncement
	Err         error
}

func (n *FakeNotifier) NotifyWinner(_ context.Context, a gamedomain.WinnerAnnouncement) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Winners = append(n.Winners, a)
	return n.Err
}

func (n *FakeNotifier) NotifyCatastrophe(_ context.Context, a gamedomain.CatastropheAnnouncement) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Catastrophe = append(n.Catastrophe, a)
	return n.Err
}

var _ Notifier = (*FakeNotifier)(nil)

// ------------------------
// Fake Role Mutator
// ------------------------

type FakeRoleMutator struct {
	mu      sync.Mutex
	Applied []gamedomain.RoleDelta
	FailFor map[gamedomain.Tier]error
}

func (m *FakeRoleMutator) ApplyRoleDelta(_ context.Context, _ string, delta gamedomain.RoleDelta) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.FailFor[delta.Tier]; err != nil {
		return err
	}
	m.Applied = append(m.Applied, delta)
	return nil
}

var _ RoleMutator = (*FakeRoleMutator)(nil)
