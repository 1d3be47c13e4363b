package gamenotify

import (
	"fmt"
	"strings"

	gamedomain "github.com/Black-And-White-Club/leet-bot/app/modules/game/domain"
)

// FormatWinner renders a winner announcement as chat text. Only changed
// roles are listed.
func FormatWinner(a gamedomain.WinnerAnnouncement) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🏆 **%s** wins the 1337 game of %s!\n", a.DisplayName, a.InstanceDate)
	fmt.Fprintf(&b, "Bet: %s (%s), win time: %s, off by %s.\n",
		gamedomain.FormatOffset(a.BetOffsetMs),
		strings.ReplaceAll(a.BetKind, "_", "-"),
		gamedomain.FormatOffset(a.WinOffsetMs),
		gamedomain.FormatOffset(a.MarginMs),
	)
	fmt.Fprintf(&b, "%d of %d bets counted. Rank: %s.", a.ValidBets, a.TotalBets, a.Tier)

	for _, c := range a.RoleChanges {
		title := tierTitle(c.Tier)
		if c.ToParticipantID == "" {
			fmt.Fprintf(&b, "\n• %s is now vacant.", title)
			continue
		}
		name := c.ToDisplayName
		if name == "" {
			name = c.ToParticipantID
		}
		if c.Wins > 0 {
			fmt.Fprintf(&b, "\n• New %s: %s (%d wins)", title, name, c.Wins)
		} else {
			fmt.Fprintf(&b, "\n• New %s: %s", title, name)
		}
	}
	return b.String()
}

// FormatCatastrophe renders a catastrophic tie as chat text.
func FormatCatastrophe(a gamedomain.CatastropheAnnouncement) string {
	names := make([]string, 0, len(a.Participants))
	for _, p := range a.Participants {
		name := p.DisplayName
		if name == "" {
			name = p.ParticipantID
		}
		names = append(names, name)
	}
	return fmt.Sprintf("🚨 **Temporal paradox on %s!** %d players bet on exactly %s (%s) and reality gave up. Nobody wins today.",
		a.InstanceDate, a.Count, gamedomain.FormatOffset(a.OffsetMs), strings.Join(names, ", "))
}

func tierTitle(name string) string {
	tier, err := gamedomain.ParseTier(name)
	if err != nil {
		return name
	}
	return tier.Title()
}
