package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/RoGogDBD/telemetry-sdk/internal/config"
	"github.com/RoGogDBD/telemetry-sdk/internal/version"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := run(); err != nil {
		log.Fatalf("agent failed: %v", err)
	}
}

func run() error {
	version.PrintBuildInfo(os.Stdout)

	cfg, err := config.ParseAgentConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		return err
	}

	logger, err := config.Initialize(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if cfg.InsertKey == "" {
		logger.Warn("insert key is empty, collector may reject requests")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	agent := NewAgent(cfg, logger)
	if err := agent.Run(ctx, shutdownTimeout); err != nil {
		logger.Error("agent stopped with error", zap.Error(err))
		return err
	}
	return nil
}
