package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/comitanigiacomo/kanso-nutrition/internal/config"
	"github.com/comitanigiacomo/kanso-nutrition/internal/core/workers"
	"github.com/comitanigiacomo/kanso-nutrition/internal/logger"
)

func main() {
	startTime := time.Now()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Critical: %v", err)
	}

	zlog, err := logger.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Critical: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	a, err := newApp(ctx, cfg, zlog, startTime)
	cancel()
	if err != nil {
		zlog.Fatal("startup failed", zap.Error(err))
	}
	defer a.Close()

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	sweeper := workers.NewSessionSweeper(a.sessions, cfg.SessionSweepInterval, cfg.SessionMaxIdle, zlog)
	sweeperDone := sweeper.Start(workerCtx)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      a.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		zlog.Info("kanso nutrition listening", zap.String("addr", srv.Addr), zap.String("env", cfg.Environment))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zlog.Info("stop signal received, shutting down", zap.Int("open_sessions", a.sessions.Active()))

	stopWorkers()
	<-sweeperDone

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Error("forced shutdown", zap.Error(err))
		return
	}

	zlog.Info("server stopped gracefully")
}
