package gamemigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating game tables...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS game_bets (
					id UUID PRIMARY KEY,
					participant_id TEXT NOT NULL,
					display_name TEXT NOT NULL,
					scope_id TEXT NOT NULL,
					kind TEXT NOT NULL CHECK (kind IN ('regular', 'early_bird')),
					offset_ms BIGINT NOT NULL,
					instance_start TIMESTAMPTZ NOT NULL,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					UNIQUE (participant_id, instance_start)
				);
				CREATE INDEX IF NOT EXISTS idx_game_bets_instance ON game_bets (instance_start, offset_ms);
			`); err != nil {
				return fmt.Errorf("failed to create game_bets table: %w", err)
			}

			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS game_resolutions (
					instance_start TIMESTAMPTZ PRIMARY KEY,
					instance_date TEXT NOT NULL,
					outcome TEXT NOT NULL,
					win_offset_ms BIGINT NOT NULL,
					tie_count INT NOT NULL DEFAULT 0,
					total_bets INT NOT NULL DEFAULT 0,
					valid_bets INT NOT NULL DEFAULT 0,
					resolved_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);
			`); err != nil {
				return fmt.Errorf("failed to create game_resolutions table: %w", err)
			}

			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS game_winners (
					instance_start TIMESTAMPTZ PRIMARY KEY REFERENCES game_resolutions (instance_start),
					instance_date TEXT NOT NULL UNIQUE,
					scope_id TEXT NOT NULL,
					bet_id UUID NOT NULL REFERENCES game_bets (id),
					participant_id TEXT NOT NULL,
					display_name TEXT NOT NULL,
					kind TEXT NOT NULL,
					offset_ms BIGINT NOT NULL,
					win_offset_ms BIGINT NOT NULL,
					margin_ms BIGINT NOT NULL,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);
				CREATE INDEX IF NOT EXISTS idx_game_winners_scope_start ON game_winners (scope_id, instance_start);
			`); err != nil {
				return fmt.Errorf("failed to create game_winners table: %w", err)
			}

			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS game_player_stats (
					participant_id TEXT NOT NULL,
					scope_id TEXT NOT NULL,
					display_name TEXT NOT NULL,
					short_window_wins INT NOT NULL DEFAULT 0,
					long_window_wins INT NOT NULL DEFAULT 0,
					lifetime_wins INT NOT NULL DEFAULT 0,
					total_games INT NOT NULL DEFAULT 0,
					early_bird_bets INT NOT NULL DEFAULT 0,
					best_margin_ms BIGINT NOT NULL DEFAULT 0,
					worst_margin_ms BIGINT NOT NULL DEFAULT 0,
					margin_total_ms BIGINT NOT NULL DEFAULT 0,
					current_streak INT NOT NULL DEFAULT 0,
					max_streak INT NOT NULL DEFAULT 0,
					last_game_at TIMESTAMPTZ,
					last_win_at TIMESTAMPTZ,
					tier TEXT NOT NULL DEFAULT 'none',
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					PRIMARY KEY (participant_id, scope_id)
				);
			`); err != nil {
				return fmt.Errorf("failed to create game_player_stats table: %w", err)
			}

			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS game_role_assignments (
					scope_id TEXT NOT NULL,
					tier TEXT NOT NULL CHECK (tier IN ('sergeant', 'commander', 'general')),
					participant_id TEXT NOT NULL,
					assigned_by TEXT NOT NULL DEFAULT 'engine',
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					PRIMARY KEY (scope_id, tier)
				);
			`); err != nil {
				return fmt.Errorf("failed to create game_role_assignments table: %w", err)
			}

			fmt.Println("Game tables created successfully!")
			return nil
		})
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping game tables...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.ExecContext(ctx, `
				DROP TABLE IF EXISTS game_role_assignments;
				DROP TABLE IF EXISTS game_player_stats;
				DROP TABLE IF EXISTS game_winners;
				DROP TABLE IF EXISTS game_resolutions;
				DROP TABLE IF EXISTS game_bets;
			`); err != nil {
				return fmt.Errorf("failed to drop game tables: %w", err)
			}

			fmt.Println("Game tables dropped successfully!")
			return nil
		})
	})
}
