package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"eventgate/internal/config"
	"eventgate/internal/logger"
	"eventgate/internal/worker"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogFormat)

	// A distinct client id keeps the worker's queue connection apart from the
	// API's producer connection.
	cfg.NATS.ClientID = "eventgate-worker"

	consumerService, err := worker.NewConsumerService(cfg)
	if err != nil {
		logger.Fatal("Failed to create worker", "error", err)
	}

	if err := consumerService.Start(); err != nil {
		logger.Fatal("Failed to start consumers", "error", err)
	}

	logger.Get().Info("Worker started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := consumerService.Shutdown(ctx); err != nil {
		logger.Get().Error("Error during shutdown", "error", err)
	}

	logger.Get().Info("Worker stopped")
}
