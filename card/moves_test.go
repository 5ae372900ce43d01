package card

import (
	"errors"
	"testing"
)

func countByRegularity(hands []*Hand) map[Regularity]int {
	out := make(map[Regularity]int)
	for _, h := range hands {
		out[h.Regularity()]++
	}
	return out
}

func TestCandidateSetsOpenTableRun(t *testing.T) {
	// A three-card same-suite run yields exactly one sequence candidate plus
	// the three singles. No equals are possible.
	h := handOf(RegularityNone, "sp3", "sp4", "sp5")
	candidates, err := h.CandidateSets(nil)
	if err != nil {
		t.Fatalf("CandidateSets(nil): %v", err)
	}
	counts := countByRegularity(candidates)
	if counts[RegularitySequence] != 1 {
		t.Errorf("sequence candidates = %d, want 1", counts[RegularitySequence])
	}
	if counts[RegularityOne] != 3 {
		t.Errorf("single candidates = %d, want 3", counts[RegularityOne])
	}
	if counts[RegularityEqual] != 0 {
		t.Errorf("equal candidates = %d, want 0", counts[RegularityEqual])
	}
	if len(candidates) != 4 {
		t.Errorf("total candidates = %d, want 4", len(candidates))
	}
}

func TestCandidateSetsOpenTablePair(t *testing.T) {
	// Two sevens of different suites yield one pair and two singles; a pair is
	// never inflated into a triple.
	h := handOf(RegularityNone, "he7", "di7")
	candidates, err := h.CandidateSets(nil)
	if err != nil {
		t.Fatalf("CandidateSets(nil): %v", err)
	}
	counts := countByRegularity(candidates)
	if counts[RegularityEqual] != 1 {
		t.Errorf("equal candidates = %d, want 1", counts[RegularityEqual])
	}
	if counts[RegularityOne] != 2 {
		t.Errorf("single candidates = %d, want 2", counts[RegularityOne])
	}
	for _, c := range candidates {
		if c.Regularity() == RegularityEqual && c.Len() != 2 {
			t.Errorf("equal candidate size = %d, want 2", c.Len())
		}
	}
}

func TestCandidateSetsEmptyHand(t *testing.T) {
	h := NewHand(nil, RegularityNone)
	candidates, err := h.CandidateSets(nil)
	if err != nil {
		t.Fatalf("CandidateSets(nil): %v", err)
	}
	if len(candidates) != 0 {
		t.Errorf("empty hand produced %d candidates", len(candidates))
	}
}

func TestLookforOneAgainstPlayed(t *testing.T) {
	h := handOf(RegularityNone, "sp3", "sp13", "he1")
	played := MustFromString("sp10")
	got := h.LookforOne(&played)
	if len(got) != 2 {
		t.Fatalf("LookforOne(sp10) = %d candidates, want 2", len(got))
	}
	for _, c := range got {
		if !played.Less(c.At(0)) {
			t.Errorf("candidate %s does not beat sp10", c.At(0))
		}
	}
}

func TestLookforOneNothingBeatsJoker(t *testing.T) {
	h := handOf(RegularityNone, "sp2", "he1", "di13")
	played := MustFromString("jo0")
	if got := h.LookforOne(&played); len(got) != 0 {
		t.Errorf("LookforOne(jo0) = %d candidates, want 0", len(got))
	}
}

func TestLookforSequenceWindows(t *testing.T) {
	// Five consecutive spades hold runs of length 3 (3 windows), 4 (2 windows)
	// and 5 (1 window) against an open table.
	h := handOf(RegularityNone, "sp4", "sp5", "sp6", "sp7", "sp8")
	got := h.LookforSequence(nil)
	if len(got) != 6 {
		t.Errorf("LookforSequence(nil) = %d windows, want 6", len(got))
	}
}

func TestLookforSequenceAgainstPlayed(t *testing.T) {
	h := handOf(RegularityNone, "he6", "he7", "he8", "he9")
	played := handOf(RegularitySequence, "di3", "di4", "di5")
	got := h.LookforSequence(played)
	if len(got) != 2 {
		t.Fatalf("LookforSequence = %d candidates, want 2", len(got))
	}
	for _, c := range got {
		if c.Len() != played.Len() {
			t.Errorf("candidate length %d, want %d", c.Len(), played.Len())
		}
		if stronger, err := c.StrongerThan(played); err != nil || !stronger {
			t.Errorf("candidate %s does not beat the table run", c)
		}
	}
}

func TestLookforSequenceRequiresSameSuite(t *testing.T) {
	// Consecutive strengths across suites never chain.
	h := handOf(RegularityNone, "sp3", "he4", "sp5")
	if got := h.LookforSequence(nil); len(got) != 0 {
		t.Errorf("mixed-suite cards produced %d runs", len(got))
	}
}

func TestLookforEqualAgainstPlayed(t *testing.T) {
	// Three tens beat a pair of sevens with any of the three possible pairs;
	// the triple itself has the wrong size and is excluded.
	h := handOf(RegularityNone, "sp10", "he10", "di10")
	played := handOf(RegularityEqual, "cl7", "sp7")
	got := h.LookforEqual(played)
	if len(got) != 3 {
		t.Fatalf("LookforEqual = %d candidates, want 3", len(got))
	}
	for _, c := range got {
		if c.Len() != 2 {
			t.Errorf("candidate size = %d, want 2", c.Len())
		}
	}
}

func TestCandidateSetsRejectsBadTableShape(t *testing.T) {
	h := handOf(RegularityNone, "sp5")
	tests := []*Hand{
		handOf(RegularityOne, "sp9", "he9"),
		handOf(RegularitySequence, "sp9", "sp10"),
		handOf(RegularityEqual, "sp9"),
		handOf(RegularityNone, "sp9"),
	}
	for _, table := range tests {
		if _, err := h.CandidateSets(table); !errors.Is(err, ErrInvalidShape) {
			t.Errorf("table %s tagged %s: err = %v, want ErrInvalidShape",
				table, table.Regularity(), err)
		}
	}
}
