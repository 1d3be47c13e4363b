package gamedomain

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestTierForIsMonotonic(t *testing.T) {
	thresholds := DefaultTierThresholds()
	wins := []int{0, 1, 4, 5, 9, 10, 100}
	want := []Tier{TierNone, TierSergeant, TierSergeant, TierCommander, TierCommander, TierGeneral, TierGeneral}

	got := make([]Tier, len(wins))
	for i, w := range wins {
		got[i] = thresholds.TierFor(w)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("tiers mismatch (-want +got):\n%s", diff)
	}

	for i := 1; i < len(got); i++ {
		if got[i] < got[i-1] {
			t.Fatalf("tier decreased from %s to %s at %d wins", got[i-1], got[i], wins[i])
		}
	}
}

func TestTierTitlesAndParsing(t *testing.T) {
	if TierNone.Title() != "Recruit" {
		t.Fatalf("expected Recruit for no tier, got %s", TierNone.Title())
	}
	for _, tier := range RoleTiers {
		parsed, err := ParseTier(tier.String())
		if err != nil || parsed != tier {
			t.Fatalf("round trip of %s gave %s, %v", tier, parsed, err)
		}
	}
	if _, err := ParseTier("admiral"); err == nil {
		t.Fatal("expected error for unknown tier")
	}
}

func TestTierThresholdsValidate(t *testing.T) {
	if err := DefaultTierThresholds().Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	err := TierThresholds{Sergeant: 5, Commander: 5, General: 10}.Validate()
	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
}
