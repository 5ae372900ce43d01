// match/play.go
package match

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wfunc/daifugo/card"
	"github.com/wfunc/daifugo/message"
	"github.com/wfunc/daifugo/models"
)

var (
	// ErrUnknownPlayer is returned for a uid that is not part of this match.
	ErrUnknownPlayer = errors.New("unknown player")
	// ErrIllegalPlay is returned when submitted cards are not among the
	// sender's legal candidates for the current table state.
	ErrIllegalPlay = errors.New("illegal play")
)

// Settings carries per-match tunables.
type Settings struct {
	JokerCount int
}

// DefaultSettings returns the standard 54-card configuration.
func DefaultSettings() Settings {
	return Settings{JokerCount: card.DefaultJokerCount}
}

// Play is one game instance: it owns the players' hands and the current table
// state, and answers which plays are legal. Turn sequencing and trick-winner
// determination are extension points handled elsewhere.
type Play struct {
	ID        uuid.UUID
	CreatedAt time.Time

	mu       sync.RWMutex
	players  map[uuid.UUID]*Player
	order    []uuid.UUID
	settings Settings
	table    *card.Hand
}

// NewPlay builds a match over the given players.
func NewPlay(players []*Player, settings Settings) *Play {
	p := &Play{
		ID:        uuid.New(),
		CreatedAt: time.Now(),
		players:   make(map[uuid.UUID]*Player, len(players)),
		order:     make([]uuid.UUID, 0, len(players)),
		settings:  settings,
	}
	for _, player := range players {
		p.players[player.ID] = player
		p.order = append(p.order, player.ID)
	}
	return p
}

// Deal shuffles a fresh deck and distributes it as evenly as possible across
// the players, earliest players receiving the remainder.
func (p *Play) Deal() {
	p.mu.Lock()
	defer p.mu.Unlock()
	deck := card.Shuffle(card.NewDeck(p.settings.JokerCount))
	hands := card.Deal(deck, len(p.order))
	for i, uid := range p.order {
		p.players[uid].Hand = hands[i]
	}
}

// Player returns the participant with the given id.
func (p *Play) Player(uid uuid.UUID) (*Player, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	player, exists := p.players[uid]
	return player, exists
}

// PlayerIDs returns the participants in seating order.
func (p *Play) PlayerIDs() []uuid.UUID {
	p.mu.RLock()
	defer p.mu.RUnlock()
	ids := make([]uuid.UUID, len(p.order))
	copy(ids, p.order)
	return ids
}

// Table returns the hand most recently played onto the table, or nil for an
// open table.
func (p *Play) Table() *card.Hand {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.table
}

// SnapshotMyCards renders a player's current hand as an out_play envelope
// addressed to that player.
func (p *Play) SnapshotMyCards(uid uuid.UUID) (*message.Envelope, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	player, exists := p.players[uid]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPlayer, uid)
	}
	return message.NewOutPlay(uid, "match", message.PlayMyCards, player.Hand.Strings()), nil
}

// SetPassed marks whether a player has declined to play in the current trick.
func (p *Play) SetPassed(uid uuid.UUID, passed bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	player, exists := p.players[uid]
	if !exists {
		return fmt.Errorf("%w: %s", ErrUnknownPlayer, uid)
	}
	player.Passed = passed
	return nil
}

// SubmitPlay validates that the submitted cards are one of the sender's legal
// candidate sets for the current table state. A legal play removes the cards
// from the hand, becomes the new table state and is returned shape-tagged.
func (p *Play) SubmitPlay(uid uuid.UUID, cardStrings []string) (*card.Hand, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	player, exists := p.players[uid]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPlayer, uid)
	}
	if player.Passed {
		return nil, fmt.Errorf("%w: player %s has passed this trick", ErrIllegalPlay, uid)
	}

	cards := make([]card.Card, 0, len(cardStrings))
	for _, s := range cardStrings {
		c, err := card.FromString(s)
		if err != nil {
			return nil, err
		}
		if !player.Hand.Contains(c) {
			return nil, fmt.Errorf("%w: card %s is not in hand", ErrIllegalPlay, s)
		}
		cards = append(cards, c)
	}
	submitted := card.NewHand(cards, card.RegularityNone)

	candidates, err := player.Hand.CandidateSets(p.table)
	if err != nil {
		return nil, err
	}
	for _, candidate := range candidates {
		if candidate.SameCards(submitted) {
			for _, c := range candidate.Sorted() {
				if err := player.Hand.Remove(c); err != nil {
					return nil, err
				}
			}
			p.table = candidate
			return candidate, nil
		}
	}
	return nil, fmt.Errorf("%w: %v does not beat the table", ErrIllegalPlay, cardStrings)
}

// History renders the finalized persistence record for this match.
func (p *Play) History(endedAt time.Time) *models.MatchHistory {
	p.mu.RLock()
	defer p.mu.RUnlock()
	participants := make([]string, len(p.order))
	for i, uid := range p.order {
		participants[i] = uid.String()
	}
	return &models.MatchHistory{
		ID:             p.ID,
		CreatedAt:      p.CreatedAt,
		EndedAt:        endedAt,
		ParticipantIDs: participants,
	}
}
