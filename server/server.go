// server/server.go
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wfunc/daifugo/auth"
	"github.com/wfunc/daifugo/broker"
	"github.com/wfunc/daifugo/logger"
	"github.com/wfunc/daifugo/network"
	"github.com/wfunc/daifugo/room"
)

// GameServer owns the HTTP surface: the websocket endpoint players attach to
// and the token endpoint that gates it.
type GameServer struct {
	addr         string
	brk          *broker.Broker
	mgr          *room.Manager
	authn        *auth.Authenticator
	outboundSize int

	upgrader   websocket.Upgrader
	httpServer *http.Server
	ctx        context.Context
}

// NewGameServer wires the HTTP layer over the broker and room manager.
func NewGameServer(addr string, brk *broker.Broker, mgr *room.Manager, authn *auth.Authenticator, outboundSize int) *GameServer {
	return &GameServer{
		addr:         addr,
		brk:          brk,
		mgr:          mgr,
		authn:        authn,
		outboundSize: outboundSize,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// Start serves until the listener fails or Stop is called.
func (s *GameServer) Start(ctx context.Context) error {
	s.ctx = ctx

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/get_token", s.handleGetToken)

	s.httpServer = &http.Server{
		Addr:    s.addr,
		Handler: mux,
	}

	logger.Log.Infof("game server listening on %s", s.addr)
	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Stop shuts the HTTP server down gracefully.
func (s *GameServer) Stop() {
	if s.httpServer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		logger.Log.Errorf("game server shutdown: %v", err)
	}
}

// handleWebSocket gates the request, upgrades it and hands the socket to a
// fresh connection. The handler blocks for the lifetime of the connection.
func (s *GameServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if !s.authn.AuthenticateRequest(r) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	sock, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Errorf("websocket upgrade failed: %v", err)
		return
	}

	conn := network.NewConnection(sock, s.brk.Inbound(), s.outboundSize)
	if err := conn.Accept(); err != nil {
		logger.Log.Errorf("conn %s: handshake ack failed: %v", conn.ID(), err)
		sock.Close()
		return
	}

	s.brk.OnConnect(conn, conn.Name())
	conn.SetDisconnectHook(func() {
		s.brk.OnDisconnect(conn)
	})

	if err := conn.Run(s.ctx); err != nil {
		logger.Log.Infof("conn %s: closed: %v", conn.ID(), err)
	}
}

// handleGetToken issues a fresh session token.
func (s *GameServer) handleGetToken(w http.ResponseWriter, r *http.Request) {
	token, err := s.authn.IssueToken()
	if err != nil {
		logger.Log.Errorf("cannot issue token: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"token": token})
}

// OnlineCount reports live connections for the ops surface.
func (s *GameServer) OnlineCount() int { return s.brk.OnlineCount() }

// RoomCount reports live rooms, the waiting room included.
func (s *GameServer) RoomCount() int { return s.mgr.RoomCount() }

// MatchRoomCount reports live match rooms.
func (s *GameServer) MatchRoomCount() int { return s.mgr.MatchRoomCount() }
