package main

import (
	"log"
	"os"

	"go.uber.org/zap"
)

func main() {
	logger := zap.NewNop()
	if len(os.Args) > 2 {
		logger.Fatal("в main.main можно")
	}
	if err := run(); err != nil {
		log.Fatalf("failed: %v", err)
	}
	os.Exit(0)
}

func run() error {
	if len(os.Args) > 1 {
		os.Exit(1) // want "call to os.Exit outside main.main"
	}
	return nil
}
