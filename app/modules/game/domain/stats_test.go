package gamedomain

import (
	"testing"
	"time"
)

func TestApplyParticipation(t *testing.T) {
	thresholds := DefaultTierThresholds()
	day1 := time.Date(2025, 6, 1, 13, 37, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)
	day3 := day1.AddDate(0, 0, 2)

	mine := func(start time.Time, kind BetKind, offset int64) Bet {
		b := bet("alice", kind, offset)
		b.InstanceStart = start
		return b
	}
	won := func(b Bet, margin int64) Winner { return Winner{Bet: b, MarginMs: margin} }
	lost := Winner{Bet: bet("bob", BetRegular, 1)}

	var stats PlayerStats
	b1 := mine(day1, BetRegular, 28000)
	stats = ApplyParticipation(stats, b1, won(b1, 2000), thresholds)
	b2 := mine(day2, BetEarlyBird, 10000)
	stats = ApplyParticipation(stats, b2, won(b2, 500), thresholds)
	stats = ApplyParticipation(stats, mine(day3, BetRegular, 40000), lost, thresholds)

	if stats.TotalGames != 3 || stats.LifetimeWins != 2 || stats.EarlyBirdBets != 1 {
		t.Fatalf("unexpected counters: %+v", stats)
	}
	if stats.BestMarginMs != 500 || stats.WorstMarginMs != 2000 {
		t.Fatalf("best/worst = %d/%d", stats.BestMarginMs, stats.WorstMarginMs)
	}
	if avg := stats.AvgMarginMs(); avg != 1250 {
		t.Fatalf("avg margin = %v", avg)
	}
	if stats.CurrentStreak != 0 || stats.MaxStreak != 2 {
		t.Fatalf("streaks = %d/%d", stats.CurrentStreak, stats.MaxStreak)
	}
	if stats.LastWinAt == nil || !stats.LastWinAt.Equal(day2) {
		t.Fatalf("last win = %v", stats.LastWinAt)
	}
	if stats.LastGameAt == nil || !stats.LastGameAt.Equal(day3) {
		t.Fatalf("last game = %v", stats.LastGameAt)
	}
	if stats.Tier != TierSergeant {
		t.Fatalf("tier = %s", stats.Tier)
	}
}

func TestWinsOf(t *testing.T) {
	counts := []WinCount{{ParticipantID: "a", Wins: 3}, {ParticipantID: "b", Wins: 1}}
	if WinsOf(counts, "a") != 3 || WinsOf(counts, "zzz") != 0 {
		t.Fatal("unexpected WinsOf result")
	}
}
