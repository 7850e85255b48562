package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/eternalApril/moonresp/internal/config"
	"github.com/eternalApril/moonresp/internal/logger"
	"github.com/eternalApril/moonresp/internal/server"
)

const shutdownTimeout = 5 * time.Second

func main() {
	cfg, err := config.Load(".")
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		os.Stderr.WriteString("FAILED TO INIT LOGGER: " + err.Error() + "\n") //nolint:errcheck
		os.Exit(1)
	}
	defer log.Sync() //nolint:errcheck

	log.Info("moonresp starting",
		zap.String("port", cfg.Server.Port),
		zap.Int("max_depth", cfg.Codec.MaxDepth),
		zap.Int64("max_bulk_length", cfg.Codec.MaxBulkLength),
	)

	engine, err := server.NewEngine(cfg, log)
	if err != nil {
		log.Error("cant initialize engine", zap.Error(err))
		return
	}

	address := net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)
	listener, err := net.Listen("tcp", address)
	if err != nil {
		log.Error("listener error", zap.Error(err))
		return
	}
	log.Info("listening on", zap.String("address", address))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := server.New(engine, log, cfg.Codec.Options()...)
	if err := srv.Serve(ctx, listener); err != nil {
		log.Error("serve error", zap.Error(err))
	}

	log.Info("Shutting down...")

	if srv.Wait(shutdownTimeout) {
		log.Info("All connections closed gracefully")
	} else {
		log.Warn("Shutdown timed out, forcing exit", zap.Duration("timeout", shutdownTimeout))
	}

	engine.Shutdown()

	log.Info("moonresp stopped")
}
