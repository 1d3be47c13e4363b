package gamedomain

import "time"

// TimestampLayout is the textual form of every timestamp leaving the engine.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// FormatTimestamp renders t with TimestampLayout, or "" for the zero time.
func FormatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(TimestampLayout)
}

// EventKind names a notification sent to the sink.
type EventKind string

const (
	EventWinnerDetermined EventKind = "winner_determined"
	EventCatastrophic     EventKind = "catastrophic_event"
)

// RoleChange is a role delta enriched for display.
type RoleChange struct {
	Tier              string `json:"tier"`
	FromParticipantID string `json:"from_participant_id,omitempty"`
	ToParticipantID   string `json:"to_participant_id,omitempty"`
	ToDisplayName     string `json:"to_display_name,omitempty"`
	Wins              int    `json:"wins,omitempty"`
}

// WinnerAnnouncement is the payload of a winner_determined event.
type WinnerAnnouncement struct {
	InstanceStart string       `json:"instance_start"`
	InstanceDate  string       `json:"instance_date"`
	ScopeID       string       `json:"scope_id"`
	ParticipantID string       `json:"participant_id"`
	DisplayName   string       `json:"display_name"`
	BetKind       string       `json:"bet_kind"`
	BetOffsetMs   int64        `json:"bet_offset_ms"`
	WinOffsetMs   int64        `json:"win_offset_ms"`
	MarginMs      int64        `json:"margin_ms"`
	BetTime       string       `json:"bet_time"`
	WinTime       string       `json:"win_time"`
	TotalBets     int          `json:"total_bets"`
	ValidBets     int          `json:"valid_bets"`
	Tier          string       `json:"tier"`
	RoleChanges   []RoleChange `json:"role_changes,omitempty"`
}

// TiedParticipant names one participant caught in a catastrophic tie.
type TiedParticipant struct {
	ParticipantID string `json:"participant_id"`
	DisplayName   string `json:"display_name"`
	BetKind       string `json:"bet_kind"`
}

// CatastropheAnnouncement is the payload of a catastrophic_event event.
type CatastropheAnnouncement struct {
	InstanceStart string            `json:"instance_start"`
	InstanceDate  string            `json:"instance_date"`
	ScopeID       string            `json:"scope_id"`
	Count         int               `json:"count"`
	OffsetMs      int64             `json:"offset_ms"`
	WinOffsetMs   int64             `json:"win_offset_ms"`
	BetTime       string            `json:"bet_time"`
	WinTime       string            `json:"win_time"`
	Participants  []TiedParticipant `json:"participants"`
}

// NewWinnerAnnouncement builds the announcement for w.
func NewWinnerAnnouncement(w Winner, instanceDate string, tier Tier, changes []RoleChange) WinnerAnnouncement {
	start := w.Bet.InstanceStart
	return WinnerAnnouncement{
		InstanceStart: FormatTimestamp(start),
		InstanceDate:  instanceDate,
		ScopeID:       w.Bet.ScopeID,
		ParticipantID: w.Bet.ParticipantID,
		DisplayName:   w.Bet.DisplayName,
		BetKind:       string(w.Bet.Kind),
		BetOffsetMs:   w.Bet.OffsetMs,
		WinOffsetMs:   w.WinOffsetMs,
		MarginMs:      w.MarginMs,
		BetTime:       FormatTimestamp(w.Bet.PlacedAt()),
		WinTime:       FormatTimestamp(start.Add(Milliseconds(w.WinOffsetMs))),
		TotalBets:     w.TotalBets,
		ValidBets:     w.ValidBets,
		Tier:          tier.Title(),
		RoleChanges:   changes,
	}
}

// NewCatastropheAnnouncement builds the announcement for tie.
func NewCatastropheAnnouncement(tie CatastrophicTie, instanceStart time.Time, instanceDate string) CatastropheAnnouncement {
	participants := make([]TiedParticipant, 0, len(tie.Bets))
	scope := ""
	for _, b := range tie.Bets {
		if scope == "" {
			scope = b.ScopeID
		}
		participants = append(participants, TiedParticipant{
			ParticipantID: b.ParticipantID,
			DisplayName:   b.DisplayName,
			BetKind:       string(b.Kind),
		})
	}
	return CatastropheAnnouncement{
		InstanceStart: FormatTimestamp(instanceStart),
		InstanceDate:  instanceDate,
		ScopeID:       scope,
		Count:         tie.Count,
		OffsetMs:      tie.OffsetMs,
		WinOffsetMs:   tie.WinOffsetMs,
		BetTime:       FormatTimestamp(instanceStart.Add(Milliseconds(tie.OffsetMs))),
		WinTime:       FormatTimestamp(instanceStart.Add(Milliseconds(tie.WinOffsetMs))),
		Participants:  participants,
	}
}
