// broker/broker.go
package broker

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/wfunc/daifugo/logger"
	"github.com/wfunc/daifugo/message"
	"github.com/wfunc/daifugo/monitor"
	"github.com/wfunc/daifugo/room"
)

// Conn is the broker's view of a live connection. *network.Connection
// satisfies it; tests substitute a mock.
type Conn interface {
	ID() uuid.UUID
	Send(env *message.Envelope) bool
}

// Broker is the single process-wide router. It owns the connection and user
// registries and the shared inbound/outbound queues; room membership is
// resolved through the room manager's narrow operations, never by touching
// its maps.
type Broker struct {
	mu    sync.RWMutex
	conns map[uuid.UUID]Conn
	users map[uuid.UUID]*room.User

	in  chan *message.Envelope
	out chan *message.Envelope
	mgr *room.Manager
	mon *monitor.Monitor
}

// New wires the broker over queues shared with the room manager. mon may be
// nil.
func New(in, out chan *message.Envelope, mgr *room.Manager, mon *monitor.Monitor) *Broker {
	return &Broker{
		conns: make(map[uuid.UUID]Conn),
		users: make(map[uuid.UUID]*room.User),
		in:    in,
		out:   out,
		mgr:   mgr,
		mon:   mon,
	}
}

// Inbound exposes the shared inbound queue for connections to push into.
func (b *Broker) Inbound() chan<- *message.Envelope { return b.in }

// OnConnect registers the connection and its user handle, then places the
// user in the default waiting room.
func (b *Broker) OnConnect(conn Conn, name string) {
	user := room.NewUser(conn.ID(), name)
	b.mu.Lock()
	b.conns[conn.ID()] = conn
	b.users[conn.ID()] = user
	total := len(b.conns)
	b.mu.Unlock()

	b.mgr.AddUser(user)
	if b.mon != nil {
		b.mon.IncOnlinePlayers()
	}
	logger.Log.Infof("broker: connection added: %s (total %d)", conn.ID(), total)
}

// OnDisconnect unregisters the connection and removes the user from their
// current room.
func (b *Broker) OnDisconnect(conn Conn) {
	b.mu.Lock()
	delete(b.conns, conn.ID())
	delete(b.users, conn.ID())
	total := len(b.conns)
	b.mu.Unlock()

	if err := b.mgr.RemoveUser(conn.ID()); err != nil {
		logger.Log.Warnf("broker: disconnect of %s: %v", conn.ID(), err)
	}
	if b.mon != nil {
		b.mon.DecOnlinePlayers()
	}
	logger.Log.Infof("broker: connection removed: %s (total %d)", conn.ID(), total)
}

// User returns the registered handle for a connected identity.
func (b *Broker) User(uid uuid.UUID) (*room.User, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	u, exists := b.users[uid]
	return u, exists
}

// OnlineCount returns the number of live connections.
func (b *Broker) OnlineCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.conns)
}

// Run drives the in and out loops until the context ends; the first loop to
// fail cancels its sibling.
func (b *Broker) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return b.inLoop(ctx) })
	g.Go(func() error { return b.outLoop(ctx) })
	return g.Wait()
}

// inLoop routes inbound envelopes to the sender's current room. Messages
// from unknown users are logged and dropped; the loop itself never tears
// down for a routing error.
func (b *Broker) inLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case env := <-b.in:
			start := time.Now()
			roomID, ok := b.mgr.Route(env.UID)
			if !ok {
				logger.Log.Errorf("broker: inbound message from unknown user %s, dropping %s", env.UID, env.Type)
				if b.mon != nil {
					b.mon.IncRoutingErrors()
				}
				continue
			}
			if err := b.mgr.Deliver(roomID, env); err != nil {
				logger.Log.Errorf("broker: cannot deliver to room %s: %v", roomID, err)
				if b.mon != nil {
					b.mon.IncRoutingErrors()
				}
				continue
			}
			if b.mon != nil {
				b.mon.IncMessagesRouted()
				b.mon.ObserveRouteLatency(time.Since(start))
			}
		}
	}
}

// outLoop forwards room-addressed outbound envelopes to the recipient's live
// connection. A recipient that already disconnected is logged and dropped.
func (b *Broker) outLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case env := <-b.out:
			b.mu.RLock()
			conn, ok := b.conns[env.UID]
			b.mu.RUnlock()
			if !ok {
				logger.Log.Errorf("broker: outbound message for unknown connection %s, dropping %s", env.UID, env.Type)
				if b.mon != nil {
					b.mon.IncRoutingErrors()
				}
				continue
			}
			conn.Send(env)
		}
	}
}
