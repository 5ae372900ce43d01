// room/match_room.go
package room

import (
	"sync"

	"github.com/google/uuid"

	"github.com/wfunc/daifugo/logger"
	"github.com/wfunc/daifugo/match"
	"github.com/wfunc/daifugo/message"
)

// MatchRoom owns one game instance. Construction moves the seeded members in;
// the play itself is initialized asynchronously (cards dealt, hands pushed to
// each member).
type MatchRoom struct {
	*Room
	mgr *Manager
	out chan<- *message.Envelope

	playMu sync.RWMutex
	play   *match.Play
}

func newMatchRoom(mgr *Manager, out chan<- *message.Envelope, mailboxSize int) *MatchRoom {
	r := &MatchRoom{
		Room: newRoom(KindMatch, mailboxSize),
		mgr:  mgr,
		out:  out,
	}
	r.handle = r.handleMessage
	return r
}

// Play returns the game instance, nil until initPlay has run.
func (r *MatchRoom) Play() *match.Play {
	r.playMu.RLock()
	defer r.playMu.RUnlock()
	return r.play
}

// initPlay deals the match and pushes each member their hand.
func (r *MatchRoom) initPlay(settings match.Settings) {
	players := make([]*match.Player, 0, r.Len())
	for _, uid := range r.MemberIDs() {
		member, ok := r.Member(uid)
		if !ok {
			continue
		}
		players = append(players, match.NewPlayer(member.ID, member.Name))
	}
	play := match.NewPlay(players, settings)
	play.Deal()
	r.playMu.Lock()
	r.play = play
	r.playMu.Unlock()
	logger.Log.Infof("match room %s: dealt play %s to %d players", r.ID, play.ID, len(players))

	for _, uid := range play.PlayerIDs() {
		snapshot, err := play.SnapshotMyCards(uid)
		if err != nil {
			logger.Log.Errorf("match room %s: cannot snapshot hand for %s: %v", r.ID, uid, err)
			continue
		}
		r.out <- snapshot
	}
}

// handleMessage accepts only in_play payloads; anything else is logged and
// dropped, never propagated across the room boundary.
func (r *MatchRoom) handleMessage(env *message.Envelope) {
	payload, ok := env.Payload.(message.InPlayPayload)
	if !ok {
		logger.Log.Warnf("match room %s: dropping %s message from %s", r.ID, env.Type, env.UID)
		return
	}
	play := r.Play()
	if play == nil {
		logger.Log.Warnf("match room %s: play not initialized, dropping message from %s", r.ID, env.UID)
		return
	}
	switch payload.PlayType {
	case message.PlayMyCards:
		snapshot, err := play.SnapshotMyCards(env.UID)
		if err != nil {
			logger.Log.Warnf("match room %s: %v", r.ID, err)
			return
		}
		r.out <- snapshot
	case message.PlayIsSkipped:
		if err := play.SetPassed(env.UID, true); err != nil {
			logger.Log.Warnf("match room %s: %v", r.ID, err)
			return
		}
		logger.Log.Infof("match room %s: player %s passed", r.ID, env.UID)
	case message.PlayPlayedCards:
		r.handlePlayedCards(play, env.UID, payload.Cards)
	}
}

func (r *MatchRoom) handlePlayedCards(play *match.Play, uid uuid.UUID, cards []string) {
	played, err := play.SubmitPlay(uid, cards)
	if err != nil {
		logger.Log.Warnf("match room %s: rejecting play from %s: %v", r.ID, uid, err)
		return
	}
	logger.Log.Infof("match room %s: player %s played %s", r.ID, uid, played)
	r.broadcast(message.PlayPlayedCards, played.Strings())
}

// broadcast enqueues one outbound envelope per member.
func (r *MatchRoom) broadcast(playType message.PlayType, cards []string) {
	for _, uid := range r.MemberIDs() {
		r.out <- message.NewOutPlay(uid, "match_room", playType, cards)
	}
}
