package rpc

import (
	"net"
	"net/rpc"

	"github.com/wfunc/daifugo/logger"
	"github.com/wfunc/daifugo/models"
	"github.com/wfunc/daifugo/services"
)

// Server manages the RPC listener.
type Server struct {
	listener net.Listener
	address  string
}

// NewServer creates a new RPC server.
func NewServer(addr string) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Server{
		listener: listener,
		address:  addr,
	}, nil
}

// Start begins listening for RPC requests.
func (s *Server) Start() {
	logger.Log.Infof("RPC server listening on %s", s.address)
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if _, ok := err.(*net.OpError); ok {
				logger.Log.Info("RPC server listener closed.")
				return
			}
			logger.Log.Errorf("RPC server accept error: %v", err)
			continue
		}
		go rpc.ServeConn(conn)
	}
}

// Stop closes the RPC listener.
func (s *Server) Stop() {
	if s.listener != nil {
		logger.Log.Info("Stopping RPC server.")
		s.listener.Close()
	}
}

// Register publishes a service on the default RPC server.
func Register(rcvr interface{}) error {
	return rpc.Register(rcvr)
}

// StatsProvider is the live-server view exposed over RPC.
type StatsProvider interface {
	OnlineCount() int
	RoomCount() int
	MatchRoomCount() int
}

// OpsService exposes operational queries over net/rpc. Methods follow the
// net/rpc signature rules: exported method, pointer reply, error return.
type OpsService struct {
	stats   StatsProvider
	history *services.HistoryService
}

// NewOpsService creates the RPC-facing service. history may be nil when
// persistence is disabled.
func NewOpsService(stats StatsProvider, history *services.HistoryService) *OpsService {
	return &OpsService{stats: stats, history: history}
}

type ServerStatsArgs struct{}

type ServerStatsReply struct {
	OnlinePlayers int
	Rooms         int
	MatchRooms    int
}

func (o *OpsService) GetServerStats(args *ServerStatsArgs, reply *ServerStatsReply) error {
	reply.OnlinePlayers = o.stats.OnlineCount()
	reply.Rooms = o.stats.RoomCount()
	reply.MatchRooms = o.stats.MatchRoomCount()
	return nil
}

type RecentMatchesArgs struct {
	Limit int
}

type RecentMatchesReply struct {
	Matches []models.MatchHistory
}

func (o *OpsService) GetRecentMatches(args *RecentMatchesArgs, reply *RecentMatchesReply) error {
	if o.history == nil {
		reply.Matches = nil
		return nil
	}
	matches, err := o.history.RecentMatches(args.Limit)
	if err != nil {
		return err
	}
	reply.Matches = matches
	return nil
}
