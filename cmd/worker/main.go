package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"catalogfeed/internal/app"
	"catalogfeed/internal/worker"
	"catalogfeed/internal/worker/processors"
	"catalogfeed/internal/worker/processors/export"
	"catalogfeed/internal/worker/processors/validation"
)

func main() {
	// Load configuration and wire components
	a, err := app.Load()
	if err != nil {
		log.Fatal("Failed to initialize:", err)
	}
	defer a.Close()
	logger := a.Logger

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Scheduled export of every store
	if a.Config.FeedPushInterval > 0 {
		exporter := export.New(a.Publisher, a.Registry, logger.With("export"))
		go exporter.Run(ctx, a.Config.FeedPushInterval)
	}

	// Initialize worker
	processor := processors.NewEventProcessor(validation.New(a.Registry, logger), a.Publisher, a.Notifier, logger)
	w := worker.New(a.Config, logger, processor)

	// Start worker
	logger.Info("Starting worker...")
	w.Start(ctx)

	logger.Info("Shutting down worker...")
	w.Stop()
}
