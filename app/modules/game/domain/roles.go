package gamedomain

// RoleHolders maps a tier to the participant holding it. A present key with an
// empty value means the tier should be vacant; an absent key means no
// decision was made for that tier.
type RoleHolders map[Tier]string

// RoleDelta is one change of holder for a tier. From or To may be empty.
type RoleDelta struct {
	Tier Tier
	From string
	To   string
}

// DesiredHolders computes who should hold each tier after winnerID won.
//
// General goes to the strict leader of the long window. Commander goes to the
// strict leader of the short window once the General is excluded. A tie for
// first leaves the tier with its current holder. Sergeant goes to the winner
// unless the winner already holds a higher tier, in which case it is vacated.
func DesiredHolders(current RoleHolders, winnerID string, shortWindow, longWindow []WinCount) RoleHolders {
	desired := RoleHolders{}

	general, ok := strictLeader(longWindow, "")
	if ok {
		desired[TierGeneral] = general
	} else {
		general = current[TierGeneral]
	}

	commander, ok := strictLeader(shortWindow, general)
	if ok {
		desired[TierCommander] = commander
	} else {
		commander = current[TierCommander]
		if commander != "" && commander == general {
			desired[TierCommander] = ""
			commander = ""
		}
	}

	if winnerID == general || winnerID == commander {
		desired[TierSergeant] = ""
	} else {
		desired[TierSergeant] = winnerID
	}

	return desired
}

// Reconcile returns the holder changes needed to move from current to desired,
// highest tier first. Tiers absent from desired are left alone.
func Reconcile(current, desired RoleHolders) []RoleDelta {
	var deltas []RoleDelta
	for _, tier := range RoleTiers {
		want, ok := desired[tier]
		if !ok {
			continue
		}
		if have := current[tier]; have != want {
			deltas = append(deltas, RoleDelta{Tier: tier, From: have, To: want})
		}
	}
	return deltas
}

// strictLeader returns the participant with the single highest positive win
// count, ignoring exclude.
func strictLeader(counts []WinCount, exclude string) (string, bool) {
	best, bestWins, tied := "", 0, false
	for _, c := range counts {
		if c.ParticipantID == exclude || c.ParticipantID == "" || c.Wins <= 0 {
			continue
		}
		switch {
		case c.Wins > bestWins:
			best, bestWins, tied = c.ParticipantID, c.Wins, false
		case c.Wins == bestWins:
			tied = true
		}
	}
	if best == "" || tied {
		return "", false
	}
	return best, true
}
