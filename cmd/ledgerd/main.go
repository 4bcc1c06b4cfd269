package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/LeskaProgrammer/KPO/internal/api_gateway"
	"github.com/LeskaProgrammer/KPO/internal/app"
	"github.com/LeskaProgrammer/KPO/internal/config"
	"github.com/LeskaProgrammer/KPO/internal/logger"
)

func main() {
	// Create base context with cancellation
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	// Initialize configuration
	cfg, err := config.LoadConfig("ledgerd")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewLogger(cfg)

	// Stores, rules, coordinator and the optional Kafka pipeline
	container, err := app.Build(appCtx, log, cfg)
	if err != nil {
		log.Error("Failed to build ledger", "error", err)
		os.Exit(1)
	}

	server := api_gateway.NewServer(log, cfg, container.Services())
	log.Info("REST server initialized")

	errChan := make(chan error, 2)

	go func() {
		log.Info("Starting HTTP server", "port", cfg.Server.Port)
		if err := server.Start(); err != nil {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	var commandsDone <-chan struct{}
	if container.Commands != nil {
		if err := container.Commands.Start(appCtx); err != nil {
			log.Error("Failed to start command consumer", "error", err)
			os.Exit(1)
		}
		commandsDone = container.Commands.Done()
		log.Info("Command consumer started", "topic", cfg.Kafka.CommandTopic)
	}

	// Set up signal handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	var runErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Server error occurred", "error", err)
		runErr = err
	case <-commandsDone:
		log.Error("Command consumer stopped unexpectedly")
		runErr = fmt.Errorf("command consumer stopped")
	}

	// Stops the consumer loop
	cancelAppCtx()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	log.Info("Starting graceful shutdown...")

	if err = server.Stop(shutdownCtx); err != nil {
		log.Error("Error during server shutdown", "error", err)
		runErr = err
	}

	if commandsDone != nil {
		select {
		case <-commandsDone:
		case <-shutdownCtx.Done():
			log.Warn("Timed out waiting for command consumer to stop")
		}
	}

	if err = container.Close(shutdownCtx); err != nil {
		log.Error("Error releasing resources", "error", err)
		runErr = err
	}

	if runErr != nil {
		log.Error("Shutdown completed with errors", "error", runErr)
		os.Exit(1)
	}
	log.Info("Shutdown completed successfully")
}
