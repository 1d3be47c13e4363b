package gamedomain

import (
	"fmt"
	"strings"
)

// Tier is an ordered rank: None < Sergeant < Commander < General.
type Tier int

const (
	TierNone Tier = iota
	TierSergeant
	TierCommander
	TierGeneral
)

// RoleTiers lists the role-bearing tiers from highest to lowest.
var RoleTiers = []Tier{TierGeneral, TierCommander, TierSergeant}

func (t Tier) String() string {
	switch t {
	case TierSergeant:
		return "sergeant"
	case TierCommander:
		return "commander"
	case TierGeneral:
		return "general"
	default:
		return "none"
	}
}

// Title is the display name of the rank. Participants without wins are
// Recruits.
func (t Tier) Title() string {
	switch t {
	case TierSergeant:
		return "Sergeant"
	case TierCommander:
		return "Commander"
	case TierGeneral:
		return "General"
	default:
		return "Recruit"
	}
}

// ParseTier accepts the lower-case names produced by String.
func ParseTier(s string) (Tier, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sergeant":
		return TierSergeant, nil
	case "commander":
		return TierCommander, nil
	case "general":
		return TierGeneral, nil
	case "none", "":
		return TierNone, nil
	}
	return TierNone, fmt.Errorf("unknown tier %q", s)
}

// TierThresholds are the lifetime win counts needed for each tier.
type TierThresholds struct {
	Sergeant  int `yaml:"sergeant"`
	Commander int `yaml:"commander"`
	General   int `yaml:"general"`
}

func DefaultTierThresholds() TierThresholds {
	return TierThresholds{Sergeant: 1, Commander: 5, General: 10}
}

// TierFor returns the highest tier whose threshold wins meets.
func (t TierThresholds) TierFor(wins int) Tier {
	switch {
	case wins >= t.General:
		return TierGeneral
	case wins >= t.Commander:
		return TierCommander
	case wins >= t.Sergeant:
		return TierSergeant
	default:
		return TierNone
	}
}

// Validate checks the thresholds are positive and ascending.
func (t TierThresholds) Validate() error {
	if t.Sergeant < 1 || t.Commander <= t.Sergeant || t.General <= t.Commander {
		return &ConfigurationError{
			Field: "tier_thresholds",
			Value: fmt.Sprintf("%d/%d/%d", t.Sergeant, t.Commander, t.General),
			Err:   fmt.Errorf("thresholds must be positive and strictly ascending"),
		}
	}
	return nil
}
