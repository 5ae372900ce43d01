package broker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/wfunc/daifugo/logger"
	"github.com/wfunc/daifugo/message"
	"github.com/wfunc/daifugo/room"
)

func TestMain(m *testing.M) {
	logger.Init()
	m.Run()
}

// mockConn records envelopes the broker pushes out.
type mockConn struct {
	id   uuid.UUID
	mu   sync.Mutex
	sent []*message.Envelope
}

func newMockConn() *mockConn {
	return &mockConn{id: uuid.New()}
}

func (m *mockConn) ID() uuid.UUID { return m.id }

func (m *mockConn) Send(env *message.Envelope) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, env)
	return true
}

func (m *mockConn) received() []*message.Envelope {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*message.Envelope, len(m.sent))
	copy(out, m.sent)
	return out
}

func newTestBroker() (*Broker, *room.Manager) {
	in := make(chan *message.Envelope, 64)
	out := make(chan *message.Envelope, 64)
	mgr := room.NewManager(out, room.Options{Quorum: 4, MailboxSize: 16})
	return New(in, out, mgr, nil), mgr
}

func TestConnectLifecycle(t *testing.T) {
	b, mgr := newTestBroker()
	conn := newMockConn()

	b.OnConnect(conn, "alice")
	if got := b.OnlineCount(); got != 1 {
		t.Errorf("OnlineCount = %d, want 1", got)
	}
	roomID, ok := mgr.Route(conn.ID())
	if !ok || roomID != mgr.WaitingRoomID() {
		t.Errorf("Route = (%s, %v), want the waiting room", roomID, ok)
	}
	user, ok := b.User(conn.ID())
	if !ok || user.Status() != message.StatusWaiting {
		t.Errorf("user = %+v, want a waiting user", user)
	}

	b.OnDisconnect(conn)
	if got := b.OnlineCount(); got != 0 {
		t.Errorf("OnlineCount = %d after disconnect, want 0", got)
	}
	if _, ok := mgr.Route(conn.ID()); ok {
		t.Error("user still routed after disconnect")
	}
}

func TestInLoopRoutesToCurrentRoom(t *testing.T) {
	b, mgr := newTestBroker()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	mgr.Start(ctx)
	go b.Run(ctx)

	conn := newMockConn()
	b.OnConnect(conn, "alice")

	// A frame from an unknown sender is dropped without stalling the loop.
	b.Inbound() <- message.NewRoomStatus(uuid.New(), "ghost", message.StatusMatching)
	b.Inbound() <- message.NewRoomStatus(conn.ID(), "alice", message.StatusMatching)

	user, _ := b.User(conn.ID())
	deadline := time.Now().Add(2 * time.Second)
	for user.Status() != message.StatusMatching {
		if time.Now().After(deadline) {
			t.Fatal("matching request never reached the waiting room")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestOutLoopDeliversToConnection(t *testing.T) {
	b, _ := newTestBroker()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go b.Run(ctx)

	conn := newMockConn()
	b.OnConnect(conn, "alice")

	// An envelope for a vanished recipient is dropped; the next one for a
	// live connection still arrives.
	b.out <- message.NewOutPlay(uuid.New(), "match", message.PlayMyCards, nil)
	want := message.NewOutPlay(conn.ID(), "match", message.PlayMyCards, []string{"sp3"})
	b.out <- want

	deadline := time.Now().Add(2 * time.Second)
	for {
		got := conn.received()
		if len(got) > 0 {
			if got[0] != want {
				t.Errorf("received %+v, want %+v", got[0], want)
			}
			if len(got) > 1 {
				t.Errorf("received %d envelopes, want 1", len(got))
			}
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("outbound envelope never delivered")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
