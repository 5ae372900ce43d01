// room/manager.go
package room

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wfunc/daifugo/logger"
	"github.com/wfunc/daifugo/match"
	"github.com/wfunc/daifugo/message"
	"github.com/wfunc/daifugo/models"
)

// HistoryRecorder receives one finalized record per completed match.
type HistoryRecorder interface {
	RecordMatch(h *models.MatchHistory) error
}

// Options tunes the manager and the rooms it creates.
type Options struct {
	Quorum      int
	JokerCount  int
	MailboxSize int
	History     HistoryRecorder
}

// Manager is the sole owner of the room registry and the user-to-room index.
// Other components never touch the maps; they go through Route, Deliver,
// MoveUser and the add/remove operations. Registry mutations are plain
// critical sections and never hold a lock across a channel operation.
type Manager struct {
	out  chan<- *message.Envelope
	opts Options

	mu         sync.RWMutex
	rooms      map[uuid.UUID]*Room
	matches    map[uuid.UUID]*MatchRoom
	userToRoom map[uuid.UUID]uuid.UUID
	waiting    *WaitingRoom

	ctx context.Context
}

// NewManager creates the manager and its default waiting room.
func NewManager(out chan<- *message.Envelope, opts Options) *Manager {
	if opts.Quorum <= 0 {
		opts.Quorum = 4
	}
	if opts.JokerCount < 0 {
		opts.JokerCount = 0
	}
	if opts.MailboxSize <= 0 {
		opts.MailboxSize = 256
	}
	m := &Manager{
		out:        out,
		opts:       opts,
		rooms:      make(map[uuid.UUID]*Room),
		matches:    make(map[uuid.UUID]*MatchRoom),
		userToRoom: make(map[uuid.UUID]uuid.UUID),
	}
	m.waiting = newWaitingRoom(m, opts.Quorum, opts.MailboxSize)
	m.rooms[m.waiting.ID] = m.waiting.Room
	return m
}

// Start launches the waiting room's dispatch loop. Match rooms created later
// inherit the same context.
func (m *Manager) Start(ctx context.Context) {
	m.ctx = ctx
	go m.waiting.Run(ctx)
}

// WaitingRoomID returns the id of the single well-known waiting room.
func (m *Manager) WaitingRoomID() uuid.UUID { return m.waiting.ID }

// AddUser places a user into the default waiting room and indexes them.
func (m *Manager) AddUser(u *User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.waiting.Add(u)
	m.userToRoom[u.ID] = m.waiting.ID
}

// RemoveUser removes a user from their current room and clears the index.
func (m *Manager) RemoveUser(uid uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	roomID, exists := m.userToRoom[uid]
	if !exists {
		return fmt.Errorf("%w: user %s has no room", ErrNotFound, uid)
	}
	r, exists := m.rooms[roomID]
	if !exists {
		return fmt.Errorf("%w: room %s", ErrNotFound, roomID)
	}
	if _, err := r.Pop(uid); err != nil {
		return err
	}
	delete(m.userToRoom, uid)
	if roomID == m.waiting.ID {
		m.waiting.evict(uid)
	}
	return nil
}

// MoveUser pops a user from their current room and adds them to the
// destination as a single logical operation.
func (m *Manager) MoveUser(uid, toRoomID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.moveUserLocked(uid, toRoomID)
}

func (m *Manager) moveUserLocked(uid, toRoomID uuid.UUID) error {
	fromID, exists := m.userToRoom[uid]
	if !exists {
		return fmt.Errorf("%w: user %s has no room", ErrNotFound, uid)
	}
	from, exists := m.rooms[fromID]
	if !exists {
		return fmt.Errorf("%w: room %s", ErrNotFound, fromID)
	}
	to, exists := m.rooms[toRoomID]
	if !exists {
		return fmt.Errorf("%w: room %s", ErrNotFound, toRoomID)
	}
	user, err := from.Pop(uid)
	if err != nil {
		return err
	}
	to.Add(user)
	m.userToRoom[uid] = toRoomID
	if fromID == m.waiting.ID {
		m.waiting.evict(uid)
	}
	return nil
}

// Route returns the room currently holding the user.
func (m *Manager) Route(uid uuid.UUID) (uuid.UUID, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	roomID, exists := m.userToRoom[uid]
	return roomID, exists
}

// Deliver pushes an envelope onto a room's mailbox. The mailbox send happens
// outside the registry lock.
func (m *Manager) Deliver(roomID uuid.UUID, env *message.Envelope) error {
	m.mu.RLock()
	r, exists := m.rooms[roomID]
	m.mu.RUnlock()
	if !exists {
		return fmt.Errorf("%w: room %s", ErrNotFound, roomID)
	}
	r.Inbox <- env
	return nil
}

// CreateMatchRoom spawns a match room seeded with exactly the given member
// ids, moves them out of their current rooms and marks them playing. Seating
// is all or nothing: if any member cannot be moved, the ones already seated
// return to the waiting room and no room is created. The play itself is
// initialized asynchronously.
func (m *Manager) CreateMatchRoom(memberIDs []uuid.UUID) (*MatchRoom, error) {
	if len(memberIDs) == 0 {
		return nil, fmt.Errorf("%w: no members to seed a match room", ErrNotFound)
	}
	r := newMatchRoom(m, m.out, m.opts.MailboxSize)

	m.mu.Lock()
	m.rooms[r.ID] = r.Room
	m.matches[r.ID] = r
	var seated []uuid.UUID
	var seatErr error
	for _, uid := range memberIDs {
		if err := m.moveUserLocked(uid, r.ID); err != nil {
			seatErr = fmt.Errorf("cannot seat user %s in match room %s: %w", uid, r.ID, err)
			break
		}
		seated = append(seated, uid)
	}
	if seatErr != nil {
		for _, uid := range seated {
			if err := m.moveUserLocked(uid, m.waiting.ID); err != nil {
				logger.Log.Errorf("room manager: cannot return user %s to the waiting room: %v", uid, err)
			}
		}
		delete(m.rooms, r.ID)
		delete(m.matches, r.ID)
		m.mu.Unlock()
		return nil, seatErr
	}
	m.mu.Unlock()

	for _, uid := range r.MemberIDs() {
		if user, ok := r.Member(uid); ok {
			user.SetStatus(message.StatusPlaying)
		}
	}

	ctx := m.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	go r.Run(ctx)
	go r.initPlay(match.Settings{JokerCount: m.opts.JokerCount})
	logger.Log.Infof("room manager: created match room %s with %d members", r.ID, len(seated))
	return r, nil
}

// ApplyRoomCmd executes an internal room-transfer command. Only ch_room is
// supported; mk_room arrives through matchmaking instead.
func (m *Manager) ApplyRoomCmd(cmd *message.RoomCmd) error {
	switch cmd.Cmd {
	case message.RoomCmdChangeRoom:
		if current, ok := m.Route(cmd.UID); !ok || current != cmd.RoomFrom {
			return fmt.Errorf("%w: user %s is not in room %s", ErrNotFound, cmd.UID, cmd.RoomFrom)
		}
		return m.MoveUser(cmd.UID, cmd.RoomTo)
	default:
		return fmt.Errorf("unsupported room command %q", cmd.Cmd)
	}
}

// RoomCount returns the number of live rooms, the waiting room included.
func (m *Manager) RoomCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rooms)
}

// MatchRoomCount returns the number of live match rooms.
func (m *Manager) MatchRoomCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.matches)
}

// ReapEmptyMatchRooms destroys match rooms whose members have all left and
// hands their finalized history to the recorder. Returns the number reaped.
func (m *Manager) ReapEmptyMatchRooms() int {
	m.mu.RLock()
	var empty []*MatchRoom
	for _, r := range m.matches {
		if r.Len() == 0 {
			empty = append(empty, r)
		}
	}
	m.mu.RUnlock()

	for _, r := range empty {
		r.Close()
		m.dropRoom(r.ID)
		if m.opts.History != nil {
			if play := r.Play(); play != nil {
				if err := m.opts.History.RecordMatch(play.History(time.Now())); err != nil {
					logger.Log.Errorf("room manager: cannot record history for match room %s: %v", r.ID, err)
				}
			}
		}
		logger.Log.Infof("room manager: reaped empty match room %s", r.ID)
	}
	return len(empty)
}

func (m *Manager) dropRoom(roomID uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rooms, roomID)
	delete(m.matches, roomID)
}
