package gameservice

import (
	"context"
	"fmt"

	gamedomain "github.com/Black-And-White-Club/leet-bot/app/modules/game/domain"
	gamedb "github.com/Black-And-White-Club/leet-bot/app/modules/game/infrastructure/repositories"
	"github.com/Black-And-White-Club/leet-bot/app/shared/attr"
	"github.com/Black-And-White-Club/leet-bot/app/shared/results"
	"github.com/uptrace/bun"
)

const assignedByEngine = "engine"

func (s *GameService) loadHolders(ctx context.Context, db bun.IDB, scopeID string) (gamedomain.RoleHolders, error) {
	rows, err := s.repo.ListRoleAssignments(ctx, db, scopeID)
	if err != nil {
		return nil, fmt.Errorf("failed to load role holders: %w", err)
	}
	holders := gamedomain.RoleHolders{}
	for _, row := range rows {
		tier, err := gamedomain.ParseTier(row.Tier)
		if err != nil || tier == gamedomain.TierNone {
			s.logger.WarnContext(ctx, "Ignoring unknown tier in role assignments",
				attr.ScopeID(scopeID),
				attr.String("tier", row.Tier),
			)
			continue
		}
		holders[tier] = row.ParticipantID
	}
	return holders, nil
}

// persistDeltas writes role deltas to storage.
func (s *GameService) persistDeltas(ctx context.Context, db bun.IDB, scopeID, assignedBy string, deltas []gamedomain.RoleDelta) error {
	for _, d := range deltas {
		if d.To == "" {
			if err := s.repo.DeleteRoleAssignment(ctx, db, scopeID, d.Tier.String()); err != nil {
				return fmt.Errorf("failed to vacate %s: %w", d.Tier, err)
			}
			continue
		}
		err := s.repo.UpsertRoleAssignment(ctx, db, &gamedb.RoleAssignment{
			ScopeID:       scopeID,
			Tier:          d.Tier.String(),
			ParticipantID: d.To,
			AssignedBy:    assignedBy,
		})
		if err != nil {
			return fmt.Errorf("failed to assign %s: %w", d.Tier, err)
		}
	}
	return nil
}

// reconcileRoles computes and persists the tier holders after a win.
func (s *GameService) reconcileRoles(ctx context.Context, db bun.IDB, scopeID, winnerID string, wc *windowCounts) ([]gamedomain.RoleDelta, error) {
	current, err := s.loadHolders(ctx, db, scopeID)
	if err != nil {
		return nil, err
	}
	desired := gamedomain.DesiredHolders(current, winnerID, wc.short, wc.long)
	deltas := gamedomain.Reconcile(current, desired)
	if err := s.persistDeltas(ctx, db, scopeID, assignedByEngine, deltas); err != nil {
		return nil, err
	}
	return deltas, nil
}

// applyRoleDeltas pushes deltas to the chat platform. Each failure is logged
// and counted; the rest still run.
func (s *GameService) applyRoleDeltas(ctx context.Context, scopeID string, deltas []gamedomain.RoleDelta) {
	if s.roles == nil {
		return
	}
	for _, d := range deltas {
		if err := s.roles.ApplyRoleDelta(ctx, scopeID, d); err != nil {
			s.metrics.RecordRoleMutationFailure(ctx, d.Tier.String())
			s.logger.ErrorContext(ctx, "Failed to apply role change",
				attr.ScopeID(scopeID),
				attr.String("tier", d.Tier.String()),
				attr.String("from", d.From),
				attr.String("to", d.To),
				attr.Error(err),
			)
		}
	}
}

// RoleHolders returns the recorded tier holders in scope.
func (s *GameService) RoleHolders(ctx context.Context, scopeID string) (gamedomain.RoleHolders, error) {
	return unwrap(withTelemetry(s, ctx, "RoleHolders", scopeID, func(ctx context.Context) (results.OperationResult[gamedomain.RoleHolders, error], error) {
		holders, err := s.loadHolders(ctx, nil, scopeID)
		if err != nil {
			return results.OperationResult[gamedomain.RoleHolders, error]{}, err
		}
		return results.SuccessResult[gamedomain.RoleHolders, error](holders), nil
	}))
}

// SetRoleHolder assigns tier to participantID by hand, or vacates it when
// participantID is empty. A participant holds at most one tier, so any other
// tier they hold in scope is vacated.
func (s *GameService) SetRoleHolder(ctx context.Context, scopeID string, tier gamedomain.Tier, participantID, assignedBy string) ([]gamedomain.RoleDelta, error) {
	deltas, err := unwrap(withTelemetry(s, ctx, "SetRoleHolder", scopeID, func(ctx context.Context) (results.OperationResult[[]gamedomain.RoleDelta, error], error) {
		if tier == gamedomain.TierNone {
			return results.FailureResult[[]gamedomain.RoleDelta, error](ErrInvalidTier), nil
		}
		if assignedBy == "" {
			assignedBy = "admin"
		}

		return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (results.OperationResult[[]gamedomain.RoleDelta, error], error) {
			current, err := s.loadHolders(ctx, db, scopeID)
			if err != nil {
				return results.OperationResult[[]gamedomain.RoleDelta, error]{}, err
			}

			desired := gamedomain.RoleHolders{tier: participantID}
			if participantID != "" {
				for other, holder := range current {
					if other != tier && holder == participantID {
						desired[other] = ""
					}
				}
			}

			deltas := gamedomain.Reconcile(current, desired)
			if err := s.persistDeltas(ctx, db, scopeID, assignedBy, deltas); err != nil {
				return results.OperationResult[[]gamedomain.RoleDelta, error]{}, err
			}
			return results.SuccessResult[[]gamedomain.RoleDelta, error](deltas), nil
		})
	}))
	if err != nil {
		return nil, err
	}

	s.applyRoleDeltas(ctx, scopeID, deltas)
	return deltas, nil
}
