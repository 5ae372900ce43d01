// match/player.go
package match

import (
	"github.com/google/uuid"

	"github.com/wfunc/daifugo/card"
)

// Player holds one participant's cards inside a running match. Passed is set
// once the player declines to play in the current trick; resetting it for a
// new trick is left to match orchestration.
type Player struct {
	ID     uuid.UUID
	Name   string
	Hand   *card.Hand
	Passed bool
}

// NewPlayer creates a player with an empty hand.
func NewPlayer(id uuid.UUID, name string) *Player {
	return &Player{ID: id, Name: name, Hand: card.NewHand(nil, card.RegularityNone)}
}

// PlayCards returns the first legal candidate against the table state, or nil
// when the player passes (no candidate, or already passed this trick).
func (p *Player) PlayCards(table *card.Hand) (*card.Hand, error) {
	if p.Passed {
		return nil, nil
	}
	candidates, err := p.Hand.CandidateSets(table)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, nil
	}
	return candidates[0], nil
}
