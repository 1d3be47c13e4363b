package gamenotify

import (
	"context"
	"fmt"
	"log/slog"

	gamedomain "github.com/Black-And-White-Club/leet-bot/app/modules/game/domain"
	"github.com/Black-And-White-Club/leet-bot/app/shared/attr"
	"github.com/bwmarrin/discordgo"
)

// MessageSession is the part of a discordgo session the announcer uses.
type MessageSession interface {
	ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// DiscordAnnouncer posts announcements to the channel configured for the
// announcement's guild, or to the fallback channel.
type DiscordAnnouncer struct {
	session  MessageSession
	channels map[string]string
	fallback string
	logger   *slog.Logger
}

func NewDiscordAnnouncer(session MessageSession, channels map[string]string, fallback string, logger *slog.Logger) *DiscordAnnouncer {
	return &DiscordAnnouncer{session: session, channels: channels, fallback: fallback, logger: logger}
}

func (d *DiscordAnnouncer) AnnounceWinner(ctx context.Context, a gamedomain.WinnerAnnouncement) error {
	return d.send(ctx, a.ScopeID, FormatWinner(a))
}

func (d *DiscordAnnouncer) AnnounceCatastrophe(ctx context.Context, a gamedomain.CatastropheAnnouncement) error {
	return d.send(ctx, a.ScopeID, FormatCatastrophe(a))
}

func (d *DiscordAnnouncer) send(ctx context.Context, guildID, content string) error {
	channelID := d.channels[guildID]
	if channelID == "" {
		channelID = d.fallback
	}
	if channelID == "" {
		return fmt.Errorf("no announcement channel for guild %q", guildID)
	}

	msg, err := d.session.ChannelMessageSend(channelID, content, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to post announcement: %w", err)
	}
	d.logger.InfoContext(ctx, "Announcement posted",
		attr.ScopeID(guildID),
		attr.String("channel_id", channelID),
		attr.String("message_id", msg.ID),
	)
	return nil
}

var (
	_ MessageSession = (*discordgo.Session)(nil)
	_ Announcer      = (*DiscordAnnouncer)(nil)
)
