// room/room.go
package room

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wfunc/daifugo/message"
)

// ErrNotFound is returned when a user or room id is not present where the
// caller expected it.
var ErrNotFound = errors.New("not found")

// Kind fixes a room's type at creation. The set is closed: every kind carries
// its own message handler behind the room's single dispatch point.
type Kind string

const (
	KindWaiting  Kind = "waiting"
	KindMatching Kind = "matching"
	KindMatch    Kind = "match"
)

// Room is a named mailbox of members. Membership changes are the only
// mutation path; a room never destroys a member. The kind-specific handler is
// installed by the concrete constructor and runs on the room's own goroutine.
type Room struct {
	ID        uuid.UUID
	Kind      Kind
	CreatedAt time.Time
	Inbox     chan *message.Envelope

	mu      sync.RWMutex
	members map[uuid.UUID]*User

	handle    func(*message.Envelope)
	closeChan chan struct{}
	closeOnce sync.Once
}

func newRoom(kind Kind, mailboxSize int) *Room {
	return &Room{
		ID:        uuid.New(),
		Kind:      kind,
		CreatedAt: time.Now(),
		Inbox:     make(chan *message.Envelope, mailboxSize),
		members:   make(map[uuid.UUID]*User),
		closeChan: make(chan struct{}),
	}
}

// Run dispatches inbound envelopes from the mailbox to the kind-specific
// handler until the room is closed or the context ends. Handler panics are
// never propagated across the room boundary.
func (r *Room) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-r.closeChan:
			return
		case env := <-r.Inbox:
			r.handle(env)
		}
	}
}

// Close stops the room's dispatch loop.
func (r *Room) Close() {
	r.closeOnce.Do(func() { close(r.closeChan) })
}

// Add inserts a member.
func (r *Room) Add(u *User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.members[u.ID] = u
}

// Pop removes and returns a member.
func (r *Room) Pop(uid uuid.UUID) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, exists := r.members[uid]
	if !exists {
		return nil, fmt.Errorf("%w: user %s in room %s", ErrNotFound, uid, r.ID)
	}
	delete(r.members, uid)
	return u, nil
}

// Member returns the member with the given id.
func (r *Room) Member(uid uuid.UUID) (*User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, exists := r.members[uid]
	return u, exists
}

// MemberIDs returns a snapshot of the current member ids.
func (r *Room) MemberIDs() []uuid.UUID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]uuid.UUID, 0, len(r.members))
	for id := range r.members {
		ids = append(ids, id)
	}
	return ids
}

// Len returns the current member count.
func (r *Room) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.members)
}
