package gamedomain

// DefaultPenaltyMs is how far an early-bird bet must be from the closest
// regular bet before it is allowed to beat it.
const DefaultPenaltyMs int64 = 3000

// OutcomeKind names an Outcome variant.
type OutcomeKind string

const (
	OutcomeWinner          OutcomeKind = "winner"
	OutcomeNoValidBets     OutcomeKind = "no_valid_bets"
	OutcomeCatastrophicTie OutcomeKind = "catastrophic_tie"
)

// Outcome is the closed set of resolution results: Winner, NoValidBets or
// CatastrophicTie.
type Outcome interface {
	Kind() OutcomeKind
	isOutcome()
}

// Winner is a resolved instance with a single winning bet.
type Winner struct {
	Bet         Bet
	MarginMs    int64
	WinOffsetMs int64
	TotalBets   int
	ValidBets   int
}

// NoValidBets means nobody bet at or before the win time.
type NoValidBets struct {
	WinOffsetMs int64
	TotalBets   int
}

// CatastrophicTie voids the round: several bets sit on the winning offset.
type CatastrophicTie struct {
	Count       int
	OffsetMs    int64
	WinOffsetMs int64
	Bets        []Bet
	TotalBets   int
}

func (Winner) Kind() OutcomeKind          { return OutcomeWinner }
func (NoValidBets) Kind() OutcomeKind     { return OutcomeNoValidBets }
func (CatastrophicTie) Kind() OutcomeKind { return OutcomeCatastrophicTie }

func (Winner) isOutcome()          {}
func (NoValidBets) isOutcome()     {}
func (CatastrophicTie) isOutcome() {}

// DetermineWinner applies the closest-bet rule with the early-bird penalty.
//
// Only bets with offset <= winOffsetMs count. The closest regular bet wins
// unless an early-bird bet is strictly closer and more than penaltyMs away
// from it. Any other valid bet on the chosen offset turns the round into a
// CatastrophicTie.
func DetermineWinner(bets []Bet, winOffsetMs, penaltyMs int64) Outcome {
	var regular, early *Bet
	valid := make([]Bet, 0, len(bets))

	for i := range bets {
		b := bets[i]
		if b.OffsetMs > winOffsetMs {
			continue
		}
		valid = append(valid, b)
		last := &valid[len(valid)-1]
		switch b.Kind {
		case BetEarlyBird:
			if closer(last, early) {
				early = last
			}
		default:
			if closer(last, regular) {
				regular = last
			}
		}
	}

	if len(valid) == 0 {
		return NoValidBets{WinOffsetMs: winOffsetMs, TotalBets: len(bets)}
	}

	var chosen *Bet
	switch {
	case early == nil:
		chosen = regular
	case regular == nil:
		chosen = early
	case winOffsetMs-regular.OffsetMs <= winOffsetMs-early.OffsetMs:
		chosen = regular
	case abs(early.OffsetMs-regular.OffsetMs) > penaltyMs:
		chosen = early
	default:
		chosen = regular
	}

	var tied []Bet
	for _, b := range valid {
		if b.OffsetMs == chosen.OffsetMs {
			tied = append(tied, b)
		}
	}
	if len(tied) > 1 {
		return CatastrophicTie{
			Count:       len(tied),
			OffsetMs:    chosen.OffsetMs,
			WinOffsetMs: winOffsetMs,
			Bets:        tied,
			TotalBets:   len(bets),
		}
	}

	return Winner{
		Bet:         *chosen,
		MarginMs:    winOffsetMs - chosen.OffsetMs,
		WinOffsetMs: winOffsetMs,
		TotalBets:   len(bets),
		ValidBets:   len(valid),
	}
}

// closer reports whether candidate beats current. Valid bets never exceed
// the win offset, so the larger offset is the closer one. Equal offsets keep
// the earlier-created bet.
func closer(candidate, current *Bet) bool {
	if current == nil {
		return true
	}
	if candidate.OffsetMs != current.OffsetMs {
		return candidate.OffsetMs > current.OffsetMs
	}
	return candidate.CreatedAt.Before(current.CreatedAt)
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
