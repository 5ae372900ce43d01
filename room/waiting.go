// room/waiting.go
package room

import (
	"sync"

	"github.com/google/uuid"

	"github.com/wfunc/daifugo/logger"
	"github.com/wfunc/daifugo/message"
)

// WaitingRoom accumulates users that opted into matchmaking. When the
// matching list reaches the quorum, the manager is asked to spawn a match
// room seeded with exactly those members.
type WaitingRoom struct {
	*Room
	mgr    *Manager
	quorum int

	// The matching list is mutated by the dispatch goroutine and by the
	// manager evicting users that left the room.
	queueMu sync.Mutex
	queue   []uuid.UUID
}

func newWaitingRoom(mgr *Manager, quorum, mailboxSize int) *WaitingRoom {
	w := &WaitingRoom{
		Room:   newRoom(KindWaiting, mailboxSize),
		mgr:    mgr,
		quorum: quorum,
	}
	w.handle = w.handleMessage
	return w
}

// handleMessage accepts only room-status payloads; anything else is logged
// and dropped.
func (w *WaitingRoom) handleMessage(env *message.Envelope) {
	payload, ok := env.Payload.(message.RoomPayload)
	if !ok {
		logger.Log.Warnf("waiting room: dropping %s message from %s", env.Type, env.UID)
		return
	}
	switch payload.Status {
	case message.StatusMatching:
		w.enqueue(env.UID)
	case message.StatusWaiting:
		w.dequeue(env.UID)
	default:
		logger.Log.Warnf("waiting room: user %s requested unsupported status %s", env.UID, payload.Status)
	}
}

func (w *WaitingRoom) enqueue(uid uuid.UUID) {
	user, ok := w.Member(uid)
	if !ok {
		logger.Log.Warnf("waiting room: matching request from non-member %s", uid)
		return
	}

	w.queueMu.Lock()
	for _, queued := range w.queue {
		if queued == uid {
			w.queueMu.Unlock()
			logger.Log.Warnf("waiting room: user %s is already queued", uid)
			return
		}
	}
	user.SetStatus(message.StatusMatching)
	w.queue = append(w.queue, uid)
	logger.Log.Infof("waiting room: user %s queued for matching (%d/%d)", uid, len(w.queue), w.quorum)

	if len(w.queue) < w.quorum {
		w.queueMu.Unlock()
		return
	}
	// A queued user may have left the room since enqueueing; a match must
	// seat exactly quorum live members.
	w.pruneLocked()
	if len(w.queue) < w.quorum {
		w.queueMu.Unlock()
		return
	}
	seed := make([]uuid.UUID, w.quorum)
	copy(seed, w.queue[:w.quorum])
	w.queue = append(w.queue[:0:0], w.queue[w.quorum:]...)
	w.queueMu.Unlock()

	if _, err := w.mgr.CreateMatchRoom(seed); err != nil {
		logger.Log.Errorf("waiting room: failed to create match room: %v", err)
		w.requeue(seed)
	}
}

func (w *WaitingRoom) dequeue(uid uuid.UUID) {
	user, ok := w.Member(uid)
	if ok {
		user.SetStatus(message.StatusWaiting)
	}

	w.queueMu.Lock()
	defer w.queueMu.Unlock()
	for i, queued := range w.queue {
		if queued == uid {
			w.queue = append(w.queue[:i], w.queue[i+1:]...)
			return
		}
	}
	logger.Log.Warnf("waiting room: user %s asked to leave the matching list but was not queued", uid)
}

// evict drops a user from the matching list after they left the room, so a
// stale uid never counts toward quorum.
func (w *WaitingRoom) evict(uid uuid.UUID) {
	w.queueMu.Lock()
	defer w.queueMu.Unlock()
	for i, queued := range w.queue {
		if queued == uid {
			w.queue = append(w.queue[:i], w.queue[i+1:]...)
			return
		}
	}
}

// pruneLocked drops queued uids that are no longer members. Callers hold
// queueMu.
func (w *WaitingRoom) pruneLocked() {
	kept := w.queue[:0]
	for _, uid := range w.queue {
		if _, ok := w.Member(uid); ok {
			kept = append(kept, uid)
		} else {
			logger.Log.Warnf("waiting room: pruning departed user %s from the matching list", uid)
		}
	}
	w.queue = kept
}

// requeue puts seeds that are still members back at the front of the matching
// list after a failed match-room spawn.
func (w *WaitingRoom) requeue(seed []uuid.UUID) {
	w.queueMu.Lock()
	defer w.queueMu.Unlock()
	var keep []uuid.UUID
	for _, uid := range seed {
		if _, ok := w.Member(uid); ok {
			keep = append(keep, uid)
		}
	}
	w.queue = append(keep, w.queue...)
}

// QueueLen reports the current matching-list length.
func (w *WaitingRoom) QueueLen() int {
	w.queueMu.Lock()
	defer w.queueMu.Unlock()
	return len(w.queue)
}
