package gamehandlers

import (
	"context"
	"time"

	gameservice "github.com/Black-And-White-Club/leet-bot/app/modules/game/application"
	gamedomain "github.com/Black-And-White-Club/leet-bot/app/modules/game/domain"
)

// ------------------------
// Fake Service
// ------------------------

type FakeService struct {
	CurrentPhaseFunc      func(ctx context.Context) gamedomain.PhaseInfo
	NextInstancesFunc     func(ctx context.Context, n int) []time.Time
	ValidatePlacementFunc func(ctx context.Context, participantID string) (*gameservice.PlacementCheck, error)
	PlaceRegularFunc      func(ctx context.Context, p gameservice.Participant) (*gamedomain.Bet, error)
	PlaceEarlyBirdFunc    func(ctx context.Context, req gameservice.EarlyBirdRequest) (*gamedomain.Bet, error)
	BetsForFunc           func(ctx context.Context, instanceStart time.Time) ([]gamedomain.Bet, error)
	DailyBetsFunc         func(ctx context.Context) (*gameservice.DailyBets, error)
	BetOfFunc             func(ctx context.Context, participantID string) (*gameservice.BetView, error)
	ResolveInstanceFunc   func(ctx context.Context, instanceStart time.Time) (*gameservice.ResolutionReport, error)
	WinnerForFunc         func(ctx context.Context, instanceDate string) (*gameservice.WinnerRecord, error)
	StatsForFunc          func(ctx context.Context, scopeID, participantID string, windowDays int) (*gameservice.StatsView, error)
	LeaderboardFunc       func(ctx context.Context, scopeID string, windowDays, limit int) ([]gamedomain.WinCount, error)
	LeaderboardChartFunc  func(ctx context.Context, scopeID string, windowDays, limit int) ([]byte, error)
	RoleHoldersFunc       func(ctx context.Context, scopeID string) (gamedomain.RoleHolders, error)
	SetRoleHolderFunc     func(ctx context.Context, scopeID string, tier gamedomain.Tier, participantID, assignedBy string) ([]gamedomain.RoleDelta, error)
	PingFunc              func(ctx context.Context) error
}

func (f *FakeService) CurrentPhase(ctx context.Context) gamedomain.PhaseInfo {
	if f.CurrentPhaseFunc != nil {
		return f.CurrentPhaseFunc(ctx)
	}
	return gamedomain.PhaseInfo{}
}

func (f *FakeService) NextInstances(ctx context.Context, n int) []time.Time {
	if f.NextInstancesFunc != nil {
		return f.NextInstancesFunc(ctx, n)
	}
	return nil
}

func (f *FakeService) ValidatePlacement(ctx context.Context, participantID string) (*gameservice.PlacementCheck, error) {
	if f.ValidatePlacementFunc != nil {
		return f.ValidatePlacementFunc(ctx, participantID)
	}
	return &gameservice.PlacementCheck{}, nil
}

func (f *FakeService) PlaceRegular(ctx context.Context, p gameservice.Participant) (*gamedomain.Bet, error) {
	if f.PlaceRegularFunc != nil {
		return f.PlaceRegularFunc(ctx, p)
	}
	return &gamedomain.Bet{ParticipantID: p.ID, ScopeID: p.ScopeID, Kind: gamedomain.BetRegular}, nil
}

func (f *FakeService) PlaceEarlyBird(ctx context.Context, req gameservice.EarlyBirdRequest) (*gamedomain.Bet, error) {
	if f.PlaceEarlyBirdFunc != nil {
		return f.PlaceEarlyBirdFunc(ctx, req)
	}
	return &gamedomain.Bet{ParticipantID: req.ID, ScopeID: req.ScopeID, Kind: gamedomain.BetEarlyBird}, nil
}

func (f *FakeService) BetsFor(ctx context.Context, instanceStart time.Time) ([]gamedomain.Bet, error) {
	if f.BetsForFunc != nil {
		return f.BetsForFunc(ctx, instanceStart)
	}
	return nil, nil
}

func (f *FakeService) DailyBets(ctx context.Context) (*gameservice.DailyBets, error) {
	if f.DailyBetsFunc != nil {
		return f.DailyBetsFunc(ctx)
	}
	return &gameservice.DailyBets{}, nil
}

func (f *FakeService) BetOf(ctx context.Context, participantID string) (*gameservice.BetView, error) {
	if f.BetOfFunc != nil {
		return f.BetOfFunc(ctx, participantID)
	}
	return &gameservice.BetView{}, nil
}

func (f *FakeService) ResolveInstance(ctx context.Context, instanceStart time.Time) (*gameservice.ResolutionReport, error) {
	if f.ResolveInstanceFunc != nil {
		return f.ResolveInstanceFunc(ctx, instanceStart)
	}
	return &gameservice.ResolutionReport{InstanceStart: instanceStart}, nil
}

func (f *FakeService) WinnerFor(ctx context.Context, instanceDate string) (*gameservice.WinnerRecord, error) {
	if f.WinnerForFunc != nil {
		return f.WinnerForFunc(ctx, instanceDate)
	}
	return &gameservice.WinnerRecord{InstanceDate: instanceDate}, nil
}

func (f *FakeService) StatsFor(ctx context.Context, scopeID, participantID string, windowDays int) (*gameservice.StatsView, error) {
	if f.StatsForFunc != nil {
		return f.StatsForFunc(ctx, scopeID, participantID, windowDays)
	}
	return &gameservice.StatsView{WindowDays: windowDays}, nil
}

func (f *FakeService) Leaderboard(ctx context.Context, scopeID string, windowDays, limit int) ([]gamedomain.WinCount, error) {
	if f.LeaderboardFunc != nil {
		return f.LeaderboardFunc(ctx, scopeID, windowDays, limit)
	}
	return nil, nil
}

func (f *FakeService) LeaderboardChart(ctx context.Context, scopeID string, windowDays, limit int) ([]byte, error) {
	if f.LeaderboardChartFunc != nil {
		return f.LeaderboardChartFunc(ctx, scopeID, windowDays, limit)
	}
	return []byte("\x89PNG"), nil
}

func (f *FakeService) RoleHolders(ctx context.Context, scopeID string) (gamedomain.RoleHolders, error) {
	if f.RoleHoldersFunc != nil {
		return f.RoleHoldersFunc(ctx, scopeID)
	}
	return gamedomain.RoleHolders{}, nil
}

func (f *FakeService) SetRoleHolder(ctx context.Context, scopeID string, tier gamedomain.Tier, participantID, assignedBy string) ([]gamedomain.RoleDelta, error) {
	if f.SetRoleHolderFunc != nil {
		return f.SetRoleHolderFunc(ctx, scopeID, tier, participantID, assignedBy)
	}
	return nil, nil
}

func (f *FakeService) Ping(ctx context.Context) error {
	if f.PingFunc != nil {
		return f.PingFunc(ctx)
	}
	return nil
}

var _ gameservice.Service = (*FakeService)(nil)
