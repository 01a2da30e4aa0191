// Package main starts the queue forwarder binary.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/ibs-source/queue-forwarder/internal/app"
	"github.com/ibs-source/queue-forwarder/internal/config"
	"github.com/ibs-source/queue-forwarder/internal/log"
)

func run() int {
	logger := log.New()
	logger.Info("Starting queue forwarder")

	cfg, err := loadAndLogConfig(logger)
	if err != nil {
		logger.Error("Failed to load configuration: %v", err)
		return 1
	}

	a, err := app.New(context.Background(), cfg, nil, logger)
	if err != nil {
		logger.Error("Failed to initialize forwarder: %v", err)
		return 1
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Error("Error closing destination: %v", err)
		}
	}()

	return runMainLoop(a, cfg, logger)
}

func loadAndLogConfig(logger *log.Logger) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger.Info("Configuration loaded successfully")
	logger.Info("Source: %s %s, batch size %d", cfg.Source.Kind, cfg.Source.Queue, cfg.Source.BatchSize)
	logger.Info("Destination: %s %s %s", cfg.Destination.Mode, cfg.Destination.Kind, cfg.Destination.Queue)
	logger.Info("Workers: %d, operation timeout %s", cfg.Forwarder.Concurrency, cfg.Forwarder.OperationTimeout)
	return cfg, nil
}

func runMainLoop(a *app.App, cfg *config.Config, logger *log.Logger) int {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	errChan := make(chan error, 1)
	go func() {
		errChan <- a.Run(ctx)
	}()

	logger.Info("Forwarder started")

	select {
	case sig := <-sigChan:
		logger.Info("Received signal %v, initiating graceful shutdown", sig)
		cancel()
		return handleGracefulShutdown(errChan, cfg, logger)

	case err := <-errChan:
		if err != nil {
			logger.Error("Forwarder error: %v", err)
			return 1
		}
		return 0
	}
}

// handleGracefulShutdown waits for in-flight batches to be forwarded and acknowledged
func handleGracefulShutdown(errChan <-chan error, cfg *config.Config, logger *log.Logger) int {
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Forwarder.ShutdownTimeout)
	defer shutdownCancel()

	select {
	case err := <-errChan:
		if err != nil {
			logger.Error("Forwarder stopped with error: %v", err)
			return 1
		}
		logger.Info("Graceful shutdown completed")
		logger.Info("Forwarder stopped")
		return 0
	case <-shutdownCtx.Done():
		logger.Error("Shutdown timeout exceeded")
		return 1
	}
}

func main() {
	// Keep main minimal to ensure defers in run() execute correctly.
	os.Exit(run())
}
