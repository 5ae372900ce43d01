package room

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/wfunc/daifugo/message"
	"github.com/wfunc/daifugo/models"
)

type fakeRecorder struct {
	mu      sync.Mutex
	records []*models.MatchHistory
}

func (f *fakeRecorder) RecordMatch(h *models.MatchHistory) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, h)
	return nil
}

func (f *fakeRecorder) recorded() []*models.MatchHistory {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.MatchHistory, len(f.records))
	copy(out, f.records)
	return out
}

func TestAddRouteRemove(t *testing.T) {
	mgr := newTestManager(make(chan *message.Envelope, 16))
	u := NewUser(uuid.New(), "alice")

	mgr.AddUser(u)
	roomID, ok := mgr.Route(u.ID)
	if !ok || roomID != mgr.WaitingRoomID() {
		t.Fatalf("Route = (%s, %v), want the waiting room", roomID, ok)
	}

	if err := mgr.RemoveUser(u.ID); err != nil {
		t.Fatalf("RemoveUser: %v", err)
	}
	if _, ok := mgr.Route(u.ID); ok {
		t.Error("user still routed after RemoveUser")
	}
	if err := mgr.RemoveUser(u.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second RemoveUser err = %v, want ErrNotFound", err)
	}
}

func TestDeliverUnknownRoom(t *testing.T) {
	mgr := newTestManager(make(chan *message.Envelope, 16))
	err := mgr.Deliver(uuid.New(), message.NewNone(uuid.New(), "test"))
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Deliver err = %v, want ErrNotFound", err)
	}
}

func TestDeliverReachesWaitingRoomMailbox(t *testing.T) {
	mgr := newTestManager(make(chan *message.Envelope, 16))
	env := message.NewNone(uuid.New(), "test")
	if err := mgr.Deliver(mgr.WaitingRoomID(), env); err != nil {
		t.Fatalf("Deliver: %v", err)
	}
	select {
	case got := <-mgr.waiting.Inbox:
		if got != env {
			t.Error("mailbox holds a different envelope")
		}
	default:
		t.Error("waiting room mailbox is empty")
	}
}

func TestMoveUserAndRoomCmd(t *testing.T) {
	mgr := newTestManager(make(chan *message.Envelope, 64))
	u1 := NewUser(uuid.New(), "alice")
	u2 := NewUser(uuid.New(), "bob")
	mgr.AddUser(u1)
	mgr.AddUser(u2)

	r, err := mgr.CreateMatchRoom([]uuid.UUID{u1.ID})
	if err != nil {
		t.Fatalf("CreateMatchRoom: %v", err)
	}
	if roomID, _ := mgr.Route(u1.ID); roomID != r.ID {
		t.Fatalf("u1 routed to %s, want match room %s", roomID, r.ID)
	}

	cmd := &message.RoomCmd{
		UID:      u2.ID,
		Cmd:      message.RoomCmdChangeRoom,
		RoomFrom: mgr.WaitingRoomID(),
		RoomTo:   r.ID,
	}
	if err := mgr.ApplyRoomCmd(cmd); err != nil {
		t.Fatalf("ApplyRoomCmd: %v", err)
	}
	if roomID, _ := mgr.Route(u2.ID); roomID != r.ID {
		t.Errorf("u2 routed to %s, want match room %s", roomID, r.ID)
	}

	// room_from must match the user's actual room.
	stale := &message.RoomCmd{
		UID:      u2.ID,
		Cmd:      message.RoomCmdChangeRoom,
		RoomFrom: mgr.WaitingRoomID(),
		RoomTo:   mgr.WaitingRoomID(),
	}
	if err := mgr.ApplyRoomCmd(stale); !errors.Is(err, ErrNotFound) {
		t.Errorf("stale room_from err = %v, want ErrNotFound", err)
	}
}

func TestCreateMatchRoomWithoutMembersFails(t *testing.T) {
	mgr := newTestManager(make(chan *message.Envelope, 16))
	if _, err := mgr.CreateMatchRoom([]uuid.UUID{uuid.New()}); !errors.Is(err, ErrNotFound) {
		t.Errorf("CreateMatchRoom err = %v, want ErrNotFound", err)
	}
	if got := mgr.MatchRoomCount(); got != 0 {
		t.Errorf("match rooms = %d, want 0", got)
	}
}

func TestCreateMatchRoomSeatingIsAllOrNothing(t *testing.T) {
	mgr := newTestManager(make(chan *message.Envelope, 16))
	u := NewUser(uuid.New(), "alice")
	mgr.AddUser(u)

	_, err := mgr.CreateMatchRoom([]uuid.UUID{u.ID, uuid.New()})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("CreateMatchRoom err = %v, want ErrNotFound", err)
	}
	if got := mgr.MatchRoomCount(); got != 0 {
		t.Errorf("match rooms = %d after failed seeding, want 0", got)
	}
	if roomID, ok := mgr.Route(u.ID); !ok || roomID != mgr.WaitingRoomID() {
		t.Errorf("seated user was not returned to the waiting room")
	}
}

func TestReapRecordsHistory(t *testing.T) {
	recorder := &fakeRecorder{}
	out := make(chan *message.Envelope, 64)
	mgr := NewManager(out, Options{Quorum: 4, MailboxSize: 16, History: recorder})

	u := NewUser(uuid.New(), "alice")
	mgr.AddUser(u)
	r, err := mgr.CreateMatchRoom([]uuid.UUID{u.ID})
	if err != nil {
		t.Fatalf("CreateMatchRoom: %v", err)
	}

	// The play is initialized asynchronously; wait for the deal to land.
	deadline := time.Now().Add(2 * time.Second)
	for r.Play() == nil {
		if time.Now().After(deadline) {
			t.Fatal("play never initialized")
		}
		time.Sleep(10 * time.Millisecond)
	}

	// A populated room is never reaped.
	if got := mgr.ReapEmptyMatchRooms(); got != 0 {
		t.Fatalf("reaped %d populated rooms", got)
	}

	if err := mgr.RemoveUser(u.ID); err != nil {
		t.Fatalf("RemoveUser: %v", err)
	}
	if got := mgr.ReapEmptyMatchRooms(); got != 1 {
		t.Fatalf("reaped %d rooms, want 1", got)
	}
	if got := mgr.MatchRoomCount(); got != 0 {
		t.Errorf("match rooms = %d after reap, want 0", got)
	}

	records := recorder.recorded()
	if len(records) != 1 {
		t.Fatalf("recorded %d histories, want 1", len(records))
	}
	if len(records[0].ParticipantIDs) != 1 || records[0].ParticipantIDs[0] != u.ID.String() {
		t.Errorf("participants = %v, want [%s]", records[0].ParticipantIDs, u.ID)
	}
}
