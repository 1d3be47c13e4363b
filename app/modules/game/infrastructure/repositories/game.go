package gamedb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	gamedomain "github.com/Black-And-White-Club/leet-bot/app/modules/game/domain"
	"github.com/uptrace/bun"
)

// Impl implements the Repository interface using Bun ORM.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new game repository.
func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

// resolveDB returns the provided db handle, falling back to the repository's
// default connection if db is nil.
func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

func (r *Impl) InsertBet(ctx context.Context, db bun.IDB, bet *Bet) error {
	db = r.resolveDB(db)
	if _, err := db.NewInsert().Model(bet).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateBet
		}
		return fmt.Errorf("failed to insert bet: %w", err)
	}
	return nil
}

func (r *Impl) GetBet(ctx context.Context, db bun.IDB, participantID string, instanceStart time.Time) (*Bet, error) {
	db = r.resolveDB(db)
	bet := new(Bet)
	err := db.NewSelect().
		Model(bet).
		Where("participant_id = ?", participantID).
		Where("instance_start = ?", instanceStart.UTC()).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get bet: %w", err)
	}
	return bet, nil
}

func (r *Impl) ListBets(ctx context.Context, db bun.IDB, instanceStart time.Time) ([]Bet, error) {
	db = r.resolveDB(db)
	var bets []Bet
	err := db.NewSelect().
		Model(&bets).
		Where("instance_start = ?", instanceStart.UTC()).
		OrderExpr("offset_ms ASC, created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list bets: %w", err)
	}
	return bets, nil
}

func (r *Impl) GetResolution(ctx context.Context, db bun.IDB, instanceStart time.Time) (*Resolution, error) {
	db = r.resolveDB(db)
	res := new(Resolution)
	err := db.NewSelect().
		Model(res).
		Where("instance_start = ?", instanceStart.UTC()).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get resolution: %w", err)
	}
	return res, nil
}

// InsertResolution relies on the primary key to make resolution claim-once.
func (r *Impl) InsertResolution(ctx context.Context, db bun.IDB, resolution *Resolution) error {
	db = r.resolveDB(db)
	res, err := db.NewInsert().
		Model(resolution).
		On("CONFLICT (instance_start) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to insert resolution: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrResultExists
	}
	return nil
}

func (r *Impl) InsertWinner(ctx context.Context, db bun.IDB, winner *Winner) error {
	db = r.resolveDB(db)
	if _, err := db.NewInsert().Model(winner).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return ErrResultExists
		}
		return fmt.Errorf("failed to insert winner: %w", err)
	}
	return nil
}

func (r *Impl) GetWinnerByDate(ctx context.Context, db bun.IDB, instanceDate string) (*Winner, error) {
	db = r.resolveDB(db)
	winner := new(Winner)
	err := db.NewSelect().
		Model(winner).
		Where("instance_date = ?", instanceDate).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get winner by date: %w", err)
	}
	return winner, nil
}

type winCountRow struct {
	ParticipantID string `bun:"participant_id"`
	DisplayName   string `bun:"display_name"`
	Wins          int    `bun:"wins"`
}

func (r *Impl) CountWins(ctx context.Context, db bun.IDB, scopeID string, since time.Time) ([]gamedomain.WinCount, error) {
	db = r.resolveDB(db)
	var rows []winCountRow
	err := db.NewSelect().
		Model((*Winner)(nil)).
		ColumnExpr("gw.participant_id").
		ColumnExpr("MAX(gw.display_name) AS display_name").
		ColumnExpr("COUNT(*) AS wins").
		Where("gw.scope_id = ?", scopeID).
		Where("gw.instance_start >= ?", since.UTC()).
		Group("gw.participant_id").
		OrderExpr("wins DESC, gw.participant_id ASC").
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("failed to count wins: %w", err)
	}

	counts := make([]gamedomain.WinCount, len(rows))
	for i, row := range rows {
		counts[i] = gamedomain.WinCount{
			ParticipantID: row.ParticipantID,
			DisplayName:   row.DisplayName,
			Wins:          row.Wins,
		}
	}
	return counts, nil
}

func (r *Impl) GetPlayerStats(ctx context.Context, db bun.IDB, participantID, scopeID string) (*PlayerStats, error) {
	db = r.resolveDB(db)
	stats := new(PlayerStats)
	err := db.NewSelect().
		Model(stats).
		Where("participant_id = ?", participantID).
		Where("scope_id = ?", scopeID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get player stats: %w", err)
	}
	return stats, nil
}

func (r *Impl) UpsertPlayerStats(ctx context.Context, db bun.IDB, stats *PlayerStats) error {
	db = r.resolveDB(db)
	stats.UpdatedAt = time.Now().UTC()
	_, err := db.NewInsert().
		Model(stats).
		On("CONFLICT (participant_id, scope_id) DO UPDATE").
		Set("display_name = EXCLUDED.display_name").
		Set("short_window_wins = EXCLUDED.short_window_wins").
		Set("long_window_wins = EXCLUDED.long_window_wins").
		Set("lifetime_wins = EXCLUDED.lifetime_wins").
		Set("total_games = EXCLUDED.total_games").
		Set("early_bird_bets = EXCLUDED.early_bird_bets").
		Set("best_margin_ms = EXCLUDED.best_margin_ms").
		Set("worst_margin_ms = EXCLUDED.worst_margin_ms").
		Set("margin_total_ms = EXCLUDED.margin_total_ms").
		Set("current_streak = EXCLUDED.current_streak").
		Set("max_streak = EXCLUDED.max_streak").
		Set("last_game_at = EXCLUDED.last_game_at").
		Set("last_win_at = EXCLUDED.last_win_at").
		Set("tier = EXCLUDED.tier").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to upsert player stats: %w", err)
	}
	return nil
}

func (r *Impl) ListRoleAssignments(ctx context.Context, db bun.IDB, scopeID string) ([]RoleAssignment, error) {
	db = r.resolveDB(db)
	var assignments []RoleAssignment
	err := db.NewSelect().
		Model(&assignments).
		Where("scope_id = ?", scopeID).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list role assignments: %w", err)
	}
	return assignments, nil
}

func (r *Impl) UpsertRoleAssignment(ctx context.Context, db bun.IDB, assignment *RoleAssignment) error {
	db = r.resolveDB(db)
	assignment.UpdatedAt = time.Now().UTC()
	_, err := db.NewInsert().
		Model(assignment).
		On("CONFLICT (scope_id, tier) DO UPDATE").
		Set("participant_id = EXCLUDED.participant_id").
		Set("assigned_by = EXCLUDED.assigned_by").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to upsert role assignment: %w", err)
	}
	return nil
}

func (r *Impl) DeleteRoleAssignment(ctx context.Context, db bun.IDB, scopeID, tier string) error {
	db = r.resolveDB(db)
	_, err := db.NewDelete().
		Model((*RoleAssignment)(nil)).
		Where("scope_id = ?", scopeID).
		Where("tier = ?", tier).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete role assignment: %w", err)
	}
	return nil
}
