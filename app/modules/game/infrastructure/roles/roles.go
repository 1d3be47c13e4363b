// Package gameroles applies rank changes to chat platform roles.
package gameroles

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	gamedomain "github.com/Black-And-White-Club/leet-bot/app/modules/game/domain"
	"github.com/Black-And-White-Club/leet-bot/app/shared/attr"
	"github.com/bwmarrin/discordgo"
)

// RoleSession is the part of a discordgo session the mutator uses.
type RoleSession interface {
	GuildMemberRoleAdd(guildID, userID, roleID string, options ...discordgo.RequestOption) error
	GuildMemberRoleRemove(guildID, userID, roleID string, options ...discordgo.RequestOption) error
}

// RoleIDs maps each tier to the Discord role that represents it.
type RoleIDs map[gamedomain.Tier]string

// DiscordMutator moves Discord roles between guild members. The scope id is
// the guild id.
type DiscordMutator struct {
	session RoleSession
	roles   RoleIDs
	logger  *slog.Logger
}

func NewDiscordMutator(session RoleSession, roles RoleIDs, logger *slog.Logger) *DiscordMutator {
	return &DiscordMutator{session: session, roles: roles, logger: logger}
}

// ApplyRoleDelta removes the role from the previous holder and grants it to
// the new one. Both steps are attempted; their errors are joined.
func (m *DiscordMutator) ApplyRoleDelta(ctx context.Context, guildID string, delta gamedomain.RoleDelta) error {
	roleID := m.roles[delta.Tier]
	if roleID == "" {
		m.logger.WarnContext(ctx, "No Discord role configured for tier, skipping",
			attr.ScopeID(guildID),
			attr.String("tier", delta.Tier.String()),
		)
		return nil
	}

	var errs []error
	if delta.From != "" {
		if err := m.session.GuildMemberRoleRemove(guildID, delta.From, roleID, discordgo.WithContext(ctx)); err != nil {
			errs = append(errs, fmt.Errorf("failed to remove %s from %s: %w", delta.Tier, delta.From, err))
		}
	}
	if delta.To != "" {
		if err := m.session.GuildMemberRoleAdd(guildID, delta.To, roleID, discordgo.WithContext(ctx)); err != nil {
			errs = append(errs, fmt.Errorf("failed to grant %s to %s: %w", delta.Tier, delta.To, err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}

	m.logger.InfoContext(ctx, "Discord role updated",
		attr.ScopeID(guildID),
		attr.String("tier", delta.Tier.String()),
		attr.String("from", delta.From),
		attr.String("to", delta.To),
	)
	return nil
}

// LogMutator only records deltas. It stands in when no chat platform is
// configured.
type LogMutator struct {
	logger *slog.Logger
}

func NewLogMutator(logger *slog.Logger) *LogMutator {
	return &LogMutator{logger: logger}
}

func (m *LogMutator) ApplyRoleDelta(ctx context.Context, scopeID string, delta gamedomain.RoleDelta) error {
	m.logger.InfoContext(ctx, "Role change (no platform configured)",
		attr.ScopeID(scopeID),
		attr.String("tier", delta.Tier.String()),
		attr.String("from", delta.From),
		attr.String("to", delta.To),
	)
	return nil
}

var _ RoleSession = (*discordgo.Session)(nil)
