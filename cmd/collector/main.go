package main

import (
	"context"
	"flag"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/RoGogDBD/telemetry-sdk/internal/config"
	"github.com/RoGogDBD/telemetry-sdk/internal/version"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("collector failed: %v", err)
	}
}

func run() error {
	version.PrintBuildInfo(os.Stdout)

	cfg, err := config.ParseCollectorConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		return err
	}

	logger, err := config.Initialize(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c, err := NewCollector(ctx, cfg, logger)
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", cfg.Address.String())
	if err != nil {
		return err
	}
	return c.Serve(ctx, ln)
}
