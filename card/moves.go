// card/moves.go
package card

import "fmt"

// LookforOne returns every held card that strictly beats played, each wrapped
// as a one-card hand. A nil played card lifts the restriction.
func (h *Hand) LookforOne(played *Card) []*Hand {
	var out []*Hand
	for _, c := range h.Sorted() {
		if played == nil || played.Less(c) {
			out = append(out, NewHand([]Card{c}, RegularityOne))
		}
	}
	return out
}

// LookforSequence returns every playable same-suite run of strictly
// consecutive strengths. Runs are windows of length 3 to 6 taken anywhere
// inside a maximal run; when played is non-nil only windows matching its
// length are kept, built from cards stronger than its weakest card.
//
// TODO: decide how jokers extend runs; with strength 100 they never chain today.
func (h *Hand) LookforSequence(played *Hand) []*Hand {
	minStrength := -1
	want := 0
	if played != nil {
		minStrength = played.Min().Strength()
		want = played.Len()
	}

	var out []*Hand
	for _, suite := range Suites {
		cs := h.BySuite(suite).Sorted()
		var run []Card
		flush := func() {
			out = append(out, sequenceWindows(run, want)...)
			run = run[:0]
		}
		for _, c := range cs {
			if c.Strength() <= minStrength {
				flush()
				continue
			}
			if len(run) > 0 && run[len(run)-1].Strength()+1 != c.Strength() {
				flush()
			}
			run = append(run, c)
		}
		flush()
	}
	return out
}

// sequenceWindows enumerates every sub-run of length 3-6 inside a maximal run.
// want restricts the window length when non-zero.
func sequenceWindows(run []Card, want int) []*Hand {
	if len(run) < 3 {
		return nil
	}
	var out []*Hand
	for length := 3; length <= 6 && length <= len(run); length++ {
		if want != 0 && want != length {
			continue
		}
		for start := 0; start+length <= len(run); start++ {
			window := make([]Card, length)
			copy(window, run[start:start+length])
			out = append(out, NewHand(window, RegularitySequence))
		}
	}
	return out
}

// LookforEqual returns every same-strength set of 2 to 4 cards. Groups of
// equal strength are scanned in sorted order and every sub-combination is
// enumerated; when played is non-nil only sets of matching size that beat it
// are kept.
func (h *Hand) LookforEqual(played *Hand) []*Hand {
	sorted := h.Sorted()
	var out []*Hand
	for i := 0; i < len(sorted); {
		j := i + 1
		for j < len(sorted) && sorted[j].EqualStrength(sorted[i]) {
			j++
		}
		group := sorted[i:j]
		maxSize := len(group)
		if maxSize > 4 {
			maxSize = 4
		}
		for size := 2; size <= maxSize; size++ {
			combinations(group, size, func(combo []Card) {
				out = append(out, NewHand(combo, RegularityEqual))
			})
		}
		i = j
	}
	if played == nil {
		return out
	}
	var filtered []*Hand
	for _, candidate := range out {
		if candidate.Len() != played.Len() {
			continue
		}
		if stronger, err := candidate.StrongerThan(played); err == nil && stronger {
			filtered = append(filtered, candidate)
		}
	}
	return filtered
}

// combinations calls emit with every size-k subset of cards, preserving order.
func combinations(cards []Card, k int, emit func([]Card)) {
	combo := make([]Card, 0, k)
	var recurse func(start int)
	recurse = func(start int) {
		if len(combo) == k {
			out := make([]Card, k)
			copy(out, combo)
			emit(out)
			return
		}
		for i := start; i <= len(cards)-(k-len(combo)); i++ {
			combo = append(combo, cards[i])
			recurse(i + 1)
			combo = combo[:len(combo)-1]
		}
	}
	recurse(0)
}

// CandidateSets returns every legal play against the given table state. A nil
// table means an unconstrained opening play and unions all three generators.
// The table's regularity tag selects the dispatch; a tag that does not match
// its card count, or an untagged table, is a caller error.
func (h *Hand) CandidateSets(table *Hand) ([]*Hand, error) {
	if table == nil {
		out := h.LookforSequence(nil)
		out = append(out, h.LookforEqual(nil)...)
		out = append(out, h.LookforOne(nil)...)
		return out, nil
	}
	switch table.Regularity() {
	case RegularityOne:
		if table.Len() != 1 {
			return nil, fmt.Errorf("%w: one-tagged table holds %d cards", ErrInvalidShape, table.Len())
		}
		single := table.At(0)
		return h.LookforOne(&single), nil
	case RegularitySequence:
		if table.Len() < 3 || table.Len() > 6 {
			return nil, fmt.Errorf("%w: sequence-tagged table holds %d cards", ErrInvalidShape, table.Len())
		}
		return h.LookforSequence(table), nil
	case RegularityEqual:
		if table.Len() < 2 || table.Len() > 4 {
			return nil, fmt.Errorf("%w: equal-tagged table holds %d cards", ErrInvalidShape, table.Len())
		}
		return h.LookforEqual(table), nil
	default:
		return nil, fmt.Errorf("%w: table tagged %s matches no dispatch", ErrInvalidShape, table.Regularity())
	}
}
