package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ronnydonkey/subtracker/internal/core"
	"github.com/ronnydonkey/subtracker/internal/di"
	"github.com/ronnydonkey/subtracker/internal/ports"
	"go.uber.org/zap"
)

func main() {
	// Build the dependency injection container
	container, err := di.BuildContainer()
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	// Run the application
	if err := container.Invoke(run); err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(1)
	}
}

// run is the main application function that gets all dependencies injected
func run(
	logger *zap.Logger,
	ingestor ports.EmailIngestor,
	detectionStore core.DetectionStore,
) error {
	defer logger.Sync()

	// Start the ingestor
	if err := ingestor.Start(); err != nil {
		logger.Fatal("Failed to start ingestor", zap.Error(err))
		return err
	}

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	<-sigCh
	logger.Info("Shutting down...")

	// Stop the ingestor
	if err := ingestor.Stop(); err != nil {
		logger.Error("Failed to stop ingestor", zap.Error(err))
	}

	// Stop the store cleanup task if needed
	if stopper, ok := detectionStore.(interface{ Stop() }); ok {
		stopper.Stop()
	}

	logger.Info("Shutdown complete")
	return nil
}
