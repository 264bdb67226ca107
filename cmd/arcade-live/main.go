package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	appcfg "github.com/hanj724/arcade-live/internal/config"
	"github.com/hanj724/arcade-live/internal/coordinator"
	"github.com/hanj724/arcade-live/internal/engine"
	"github.com/hanj724/arcade-live/internal/engine/chessgame"
	"github.com/hanj724/arcade-live/internal/engine/tictactoe"
	"github.com/hanj724/arcade-live/internal/gateway"
	"github.com/hanj724/arcade-live/internal/httpapi"
	"github.com/hanj724/arcade-live/internal/msgcat"
	"github.com/hanj724/arcade-live/internal/obslog"
	"github.com/hanj724/arcade-live/internal/rating"
	"github.com/hanj724/arcade-live/internal/room"
	"github.com/hanj724/arcade-live/internal/session"
)

func main() {
	cfg, err := appcfg.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if err := obslog.InitFromEnv(); err != nil {
		log.Fatalf("logger init error: %v", err)
	}

	rdb, err := session.NewRedisClient(cfg.RedisURL)
	if err != nil {
		log.Fatalf("redis init error: %v", err)
	}
	store := session.NewStore(session.NewRedisStore(rdb, time.Duration(cfg.SessionTTLSec)*time.Second))

	var repo session.Repository
	if cfg.DatabaseURL != "" {
		repo, err = session.NewRepository(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("repository init error: %v", err)
		}
	} else {
		obslog.L().Warn("no DATABASE_URL configured; results and ratings held in memory only")
		repo = session.NewMemoryRepository()
	}

	cat, err := msgcat.New(cfg.MessageDir)
	if err != nil {
		log.Fatalf("message catalog error: %v", err)
	}

	engines := engine.NewRegistry()
	engines.Register(tictactoe.New())
	engines.Register(chessgame.New())
	// xiangqi stays unregistered until a vetted rule library is wired;
	// sessions of that type are refused at create time.

	hub := room.NewHub()
	coord := coordinator.New(engines, store, hub, rating.NewUpdater(cfg.EloK), repo, cat)

	gw := gateway.New(coord, cfg.ConnSendQueue)
	wsSrv := &http.Server{Addr: cfg.WSAddr, Handler: gw.Handler()}
	api := httpapi.New(coord)

	go func() {
		obslog.L().Info("ws_listen", zap.String("addr", cfg.WSAddr))
		if err := wsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			obslog.L().Fatal("ws_server_error", zap.Error(err))
		}
	}()
	go func() {
		obslog.L().Info("api_listen", zap.String("addr", cfg.APIAddr))
		if err := api.ListenAndServe(cfg.APIAddr); err != nil {
			obslog.L().Fatal("api_server_error", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = wsSrv.Shutdown(shutdownCtx)
	_ = rdb.Close()
	_ = repo.Close()
	obslog.L().Info("shutdown_complete")
}
