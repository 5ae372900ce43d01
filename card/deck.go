// card/deck.go
package card

import "math/rand"

// DefaultJokerCount is the number of jokers in a standard 54-card deck.
const DefaultJokerCount = 2

// NewDeck returns a flat, unshuffled deck: jokerCount jokers plus 13 ranks
// across the four non-joker suites. Jokers get distinct ranks so that a hand
// dealt several of them holds them all; the card grammar caps the count at 14.
func NewDeck(jokerCount int) []Card {
	deck := make([]Card, 0, 52+jokerCount)
	for i := 0; i < jokerCount; i++ {
		c, err := New(SuiteJoker, i)
		if err != nil {
			break
		}
		deck = append(deck, c)
	}
	for _, suite := range Suites {
		if suite == SuiteJoker {
			continue
		}
		for rank := 1; rank <= 13; rank++ {
			c, _ := New(suite, rank)
			deck = append(deck, c)
		}
	}
	return deck
}

// Shuffle returns a shuffled copy of the deck.
func Shuffle(deck []Card) []Card {
	out := make([]Card, len(deck))
	copy(out, deck)
	rand.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// Deal splits the deck as evenly as possible into playerCount hands; when the
// split is uneven the earliest hands get one extra card. playerCount must be
// at least 1.
func Deal(deck []Card, playerCount int) []*Hand {
	hands := make([]*Hand, playerCount)
	base := len(deck) / playerCount
	rem := len(deck) % playerCount
	offset := 0
	for i := 0; i < playerCount; i++ {
		size := base
		if i < rem {
			size++
		}
		hands[i] = NewHand(deck[offset:offset+size], RegularityNone)
		offset += size
	}
	return hands
}
