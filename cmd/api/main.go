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

	"catalogfeed/internal/api"
	"catalogfeed/internal/app"
)

func main() {
	// Load configuration and wire components
	a, err := app.Load()
	if err != nil {
		log.Fatal("Failed to initialize:", err)
	}
	defer a.Close()
	logger := a.Logger

	// Initialize API server
	server := api.New(a.Config, logger, a.DB, api.Services{
		Registry:  a.Registry,
		Publisher: a.Publisher,
		Runs:      a.History,
		Notifier:  a.Notifier,
	})

	// Start server
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Stop(ctx); err != nil {
		logger.Error("Server shutdown failed: %v", err)
	}
}
