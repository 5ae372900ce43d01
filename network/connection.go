// network/connection.go
package network

import (
	"context"
	"encoding/json"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/wfunc/daifugo/logger"
	"github.com/wfunc/daifugo/message"
)

// Socket is the subset of a websocket connection the Connection needs.
// *websocket.Conn satisfies it.
type Socket interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
	RemoteAddr() net.Addr
}

// Connection owns exactly one socket for its lifetime and bridges it to the
// broker's shared inbound queue and a private outbound queue. Inbound frames
// are stamped with this connection's identity; Send never blocks the caller
// on socket I/O.
type Connection struct {
	uid          uuid.UUID
	name         string
	sock         Socket
	inbound      chan<- *message.Envelope
	outbound     chan *message.Envelope
	closed       chan struct{}
	closeOnce    sync.Once
	onDisconnect func()
}

// NewConnection assigns a fresh identity to the socket.
func NewConnection(sock Socket, inbound chan<- *message.Envelope, outboundSize int) *Connection {
	return &Connection{
		uid:      uuid.New(),
		name:     sock.RemoteAddr().String(),
		sock:     sock,
		inbound:  inbound,
		outbound: make(chan *message.Envelope, outboundSize),
		closed:   make(chan struct{}),
	}
}

// ID returns the connection's identity.
func (c *Connection) ID() uuid.UUID { return c.uid }

// Name returns the remote address the connection was accepted from.
func (c *Connection) Name() string { return c.name }

// SetDisconnectHook registers a hook that runs exactly once after both loops
// have stopped.
func (c *Connection) SetDisconnectHook(fn func()) { c.onDisconnect = fn }

// Accept completes the handshake by sending the initial acknowledgement. It
// must be called before Run.
func (c *Connection) Accept() error {
	ack := message.NewNone(c.uid, "server")
	data, err := json.Marshal(ack)
	if err != nil {
		return err
	}
	return c.sock.WriteMessage(websocket.TextMessage, data)
}

// Run drives the receive and send loops until the socket closes or either
// loop fails; the first failure cancels the sibling. The disconnect hook runs
// once before Run returns.
func (c *Connection) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return c.readLoop(ctx) })
	g.Go(func() error { return c.writeLoop(ctx) })
	g.Go(func() error {
		// Unblocks a reader stuck in ReadMessage once the sibling fails.
		<-ctx.Done()
		c.sock.Close()
		return nil
	})
	err := g.Wait()
	c.shutdown()
	return err
}

func (c *Connection) shutdown() {
	c.closeOnce.Do(func() {
		close(c.closed)
		c.sock.Close()
		if c.onDisconnect != nil {
			c.onDisconnect()
		}
	})
}

// Send enqueues an envelope for delivery. Messages to a closed connection or
// a full queue are dropped; the return value reports whether the envelope was
// accepted.
func (c *Connection) Send(env *message.Envelope) bool {
	select {
	case <-c.closed:
		return false
	default:
	}
	select {
	case c.outbound <- env:
		return true
	default:
		logger.Log.Warnf("conn %s: outbound queue full, dropping %s message", c.uid, env.Type)
		return false
	}
}

func (c *Connection) readLoop(ctx context.Context) error {
	for {
		_, data, err := c.sock.ReadMessage()
		if err != nil {
			return err
		}
		var env message.Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			logger.Log.Warnf("conn %s: dropping malformed frame: %v", c.uid, err)
			continue
		}
		env.UID = c.uid
		env.CreatedBy = c.name
		env.CreatedAt = time.Now()
		select {
		case c.inbound <- &env:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (c *Connection) writeLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case env := <-c.outbound:
			data, err := json.Marshal(env)
			if err != nil {
				logger.Log.Errorf("conn %s: cannot marshal outbound message: %v", c.uid, err)
				continue
			}
			if err := c.sock.WriteMessage(websocket.TextMessage, data); err != nil {
				return err
			}
		}
	}
}
