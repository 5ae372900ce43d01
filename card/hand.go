// card/hand.go
package card

import (
	"fmt"
	"sort"
	"strings"
)

// Regularity classifies a hand as a known legal-combination shape. Comparison
// between two hands is only defined when both carry the same non-none tag.
type Regularity int

const (
	RegularityNone Regularity = iota
	RegularityOne
	RegularitySequence
	RegularityEqual
	RegularityEmpty
)

func (r Regularity) String() string {
	switch r {
	case RegularityOne:
		return "one"
	case RegularitySequence:
		return "sequence"
	case RegularityEqual:
		return "equal"
	case RegularityEmpty:
		return "empty"
	default:
		return "none"
	}
}

// Hand is a mutable multiset of cards, keyed by canonical string for O(1)
// membership and kept index-ordered by strength for ordered access. No two
// entries ever share a canonical string; re-adding the "same" card overwrites.
type Hand struct {
	cards      map[string]Card
	idx        []string
	regularity Regularity
}

// NewHand builds a hand from the given cards with the given regularity tag.
func NewHand(cards []Card, regularity Regularity) *Hand {
	h := &Hand{
		cards:      make(map[string]Card, len(cards)),
		regularity: regularity,
	}
	for _, c := range cards {
		h.Add(c)
	}
	return h
}

// Regularity returns the hand's shape tag.
func (h *Hand) Regularity() Regularity { return h.regularity }

// Len returns the number of cards held.
func (h *Hand) Len() int { return len(h.cards) }

// Add inserts a card, keeping the index sorted by strength. A card with the
// same canonical string overwrites the existing entry.
func (h *Hand) Add(c Card) {
	key := c.String()
	if _, exists := h.cards[key]; exists {
		h.cards[key] = c
		return
	}
	h.cards[key] = c
	pos := sort.Search(len(h.idx), func(i int) bool {
		return c.strength < h.cards[h.idx[i]].strength
	})
	h.idx = append(h.idx, "")
	copy(h.idx[pos+1:], h.idx[pos:])
	h.idx[pos] = key
}

// Remove deletes a card by value. Removing a card that is not held returns
// ErrNotFound.
func (h *Hand) Remove(c Card) error {
	return h.RemoveKey(c.String())
}

// RemoveKey deletes a card by canonical string.
func (h *Hand) RemoveKey(key string) error {
	if _, exists := h.cards[key]; !exists {
		return fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	delete(h.cards, key)
	for i, k := range h.idx {
		if k == key {
			h.idx = append(h.idx[:i], h.idx[i+1:]...)
			break
		}
	}
	return nil
}

// Contains reports whether the exact card (by canonical string) is held.
func (h *Hand) Contains(c Card) bool {
	_, exists := h.cards[c.String()]
	return exists
}

// ContainsKey reports membership by canonical string.
func (h *Hand) ContainsKey(key string) bool {
	_, exists := h.cards[key]
	return exists
}

// ContainsRank reports whether any held card has the given rank.
func (h *Hand) ContainsRank(rank int) bool {
	for _, c := range h.cards {
		if c.rank == rank {
			return true
		}
	}
	return false
}

// ContainsSuite reports whether any held card has the given suite.
func (h *Hand) ContainsSuite(suite Suite) bool {
	for _, c := range h.cards {
		if c.suite == suite {
			return true
		}
	}
	return false
}

// At returns the i-th card in strength order.
func (h *Hand) At(i int) Card { return h.cards[h.idx[i]] }

// Min returns the weakest card. The hand must not be empty.
func (h *Hand) Min() Card { return h.At(0) }

// Sorted returns all cards ascending by strength.
func (h *Hand) Sorted() []Card {
	out := make([]Card, len(h.idx))
	for i, key := range h.idx {
		out[i] = h.cards[key]
	}
	return out
}

// Strings returns the canonical strings of all cards in strength order.
func (h *Hand) Strings() []string {
	out := make([]string, len(h.idx))
	copy(out, h.idx)
	return out
}

// BySuite returns a new untagged hand holding only cards of the given suite.
func (h *Hand) BySuite(suite Suite) *Hand {
	var cards []Card
	for _, c := range h.Sorted() {
		if c.suite == suite {
			cards = append(cards, c)
		}
	}
	return NewHand(cards, RegularityNone)
}

// Key returns a canonical identity for the exact card set, independent of
// insertion order.
func (h *Hand) Key() string {
	keys := make([]string, len(h.idx))
	copy(keys, h.idx)
	sort.Strings(keys)
	return strings.Join(keys, ",")
}

// SameCards reports whether both hands hold exactly the same cards.
func (h *Hand) SameCards(other *Hand) bool {
	return h.Key() == other.Key()
}

func (h *Hand) String() string {
	return "[" + strings.Join(h.idx, " ") + "]"
}

// StrongerThan compares two shape-tagged hands. Both must carry the same
// non-none regularity; anything else is an ErrInvalidShape. Hands of unequal
// size never beat each other.
func (h *Hand) StrongerThan(other *Hand) (bool, error) {
	if h.regularity == RegularityNone || h.regularity != other.regularity {
		return false, fmt.Errorf("%w: cannot compare %s against %s",
			ErrInvalidShape, h.regularity, other.regularity)
	}
	if h.Len() != other.Len() {
		return false, nil
	}
	switch h.regularity {
	case RegularityOne, RegularityEqual:
		return other.At(0).Less(h.At(0)), nil
	case RegularitySequence:
		return other.Min().Less(h.Min()), nil
	default:
		return false, fmt.Errorf("%w: cannot compare %s hands", ErrInvalidShape, h.regularity)
	}
}
