package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/wfunc/daifugo/auth"
	"github.com/wfunc/daifugo/broker"
	"github.com/wfunc/daifugo/config"
	"github.com/wfunc/daifugo/logger"
	"github.com/wfunc/daifugo/message"
	"github.com/wfunc/daifugo/monitor"
	"github.com/wfunc/daifugo/persistence"
	"github.com/wfunc/daifugo/room"
	"github.com/wfunc/daifugo/rpc"
	"github.com/wfunc/daifugo/server"
	"github.com/wfunc/daifugo/services"
	"github.com/wfunc/daifugo/timer"
)

func main() {
	logger.Init()
	defer logger.Sync()

	cfg, err := config.LoadConfig(".")
	if err != nil {
		logger.Log.Fatalf("cannot load config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Persistence is optional; the server runs without history when no
	// database is configured.
	var history *services.HistoryService
	var db persistence.Database
	if cfg.Database.Postgres.Host != "" {
		pg := cfg.Database.Postgres
		db, err = persistence.NewGormPostgreSQL(pg.Host, pg.Port, pg.User, pg.Password, pg.DBName)
		if err != nil {
			logger.Log.Warnf("cannot connect to postgres, match history disabled: %v", err)
		} else {
			history = services.NewHistoryService(db)
			defer db.Close()
		}
	} else {
		logger.Log.Warn("no postgres host configured, match history disabled")
	}

	mon := monitor.NewMonitor("daifugo")
	mon.StartServer(cfg.Server.MetricsAddress)

	in := make(chan *message.Envelope, cfg.Game.QueueSize)
	out := make(chan *message.Envelope, cfg.Game.QueueSize)

	var recorder room.HistoryRecorder
	if history != nil {
		recorder = history
	}
	mgr := room.NewManager(out, room.Options{
		Quorum:      cfg.Game.Quorum,
		JokerCount:  cfg.Game.JokerCount,
		MailboxSize: cfg.Game.MailboxSize,
		History:     recorder,
	})
	mgr.Start(ctx)

	brk := broker.New(in, out, mgr, mon)
	go func() {
		if err := brk.Run(ctx); err != nil && err != context.Canceled {
			logger.Log.Errorf("broker stopped: %v", err)
		}
	}()

	timers := timer.NewManager()
	defer timers.Stop()
	timers.Schedule(30*time.Second, 30*time.Second, func() {
		if reaped := mgr.ReapEmptyMatchRooms(); reaped > 0 {
			logger.Log.Infof("janitor: reaped %d empty match rooms", reaped)
		}
		mon.SetActiveRooms(mgr.RoomCount())
	})

	authn := auth.NewAuthenticator(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTLMinutes)*time.Minute)
	gameServer := server.NewGameServer(cfg.Server.HTTPAddress, brk, mgr, authn, cfg.Game.OutboundSize)

	if err := rpc.Register(rpc.NewOpsService(gameServer, history)); err != nil {
		logger.Log.Fatalf("cannot register ops service: %v", err)
	}
	rpcServer, err := rpc.NewServer(cfg.Server.RPCAddress)
	if err != nil {
		logger.Log.Fatalf("cannot start RPC server: %v", err)
	}
	go rpcServer.Start()
	defer rpcServer.Stop()

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		logger.Log.Info("shutting down")
		cancel()
		gameServer.Stop()
	}()

	if err := gameServer.Start(ctx); err != nil {
		logger.Log.Fatalf("game server stopped: %v", err)
	}
}
