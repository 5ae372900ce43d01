// card/card.go
package card

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

// MaxStrength is the strength assigned to jokers of any rank and to rank 0.
// It sorts above every regular card.
const MaxStrength = 100

// Suite identifies one of the five card suites. Jokers carry their own suite.
type Suite string

const (
	SuiteJoker   Suite = "jo"
	SuiteSpade   Suite = "sp"
	SuiteClover  Suite = "cl"
	SuiteDiamond Suite = "di"
	SuiteHeart   Suite = "he"
)

// Suites lists every suite in canonical order.
var Suites = []Suite{SuiteJoker, SuiteSpade, SuiteClover, SuiteDiamond, SuiteHeart}

var cardPattern = regexp.MustCompile(`^(jo|sp|cl|di|he)(0|[1-9]|1[0-3])$`)

var (
	// ErrFormat is returned for strings that do not match the card grammar
	// or for envelopes whose tag and payload disagree.
	ErrFormat = errors.New("format error")
	// ErrNotFound is returned when a card is looked up or removed by a key
	// that is not present in the hand.
	ErrNotFound = errors.New("card not found")
	// ErrInvalidShape is returned when a legality query is made against a
	// table state whose regularity tag has no matching dispatch.
	ErrInvalidShape = errors.New("invalid combination shape")
)

// Card is an immutable playing card. Jokers carry the jo suite with an
// arbitrary rank; all ordering is by derived strength, and two cards of equal
// strength compare equal regardless of suite.
type Card struct {
	suite    Suite
	rank     int
	strength int
}

// strengthOf rotates the raw rank so that aces and deuces sort above kings.
// Jokers get MaxStrength regardless of rank: their rank only exists to keep
// the cards of a multi-joker deck distinct. Rank 0 on any other suite is
// MaxStrength too.
func strengthOf(suite Suite, rank int) int {
	if suite != SuiteJoker && rank > 0 && rank < 14 {
		return (rank + 10) % 13
	}
	return MaxStrength
}

// New builds a card from suite and rank without going through the string
// grammar. The same validation applies.
func New(suite Suite, rank int) (Card, error) {
	return FromString(fmt.Sprintf("%s%d", suite, rank))
}

// FromString parses the canonical wire form, e.g. "sp13" or "jo0".
func FromString(s string) (Card, error) {
	m := cardPattern.FindStringSubmatch(s)
	if m == nil {
		return Card{}, fmt.Errorf("%w: %q does not match card grammar", ErrFormat, s)
	}
	rank, _ := strconv.Atoi(m[2])
	suite := Suite(m[1])
	return Card{suite: suite, rank: rank, strength: strengthOf(suite, rank)}, nil
}

// MustFromString is FromString for literals; it panics on malformed input.
func MustFromString(s string) Card {
	c, err := FromString(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Suite returns the card's suite.
func (c Card) Suite() Suite { return c.suite }

// Rank returns the raw rank, 0 for jokers.
func (c Card) Rank() int { return c.rank }

// Strength returns the derived total-order key.
func (c Card) Strength() int { return c.strength }

// String returns the canonical wire form; FromString(c.String()) round-trips.
func (c Card) String() string {
	return fmt.Sprintf("%s%d", c.suite, c.rank)
}

// Less orders cards by strength only.
func (c Card) Less(other Card) bool { return c.strength < other.strength }

// EqualStrength reports whether two cards tie in strength, suite ignored.
func (c Card) EqualStrength(other Card) bool { return c.strength == other.strength }
