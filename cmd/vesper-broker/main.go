package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/vesper-voice/vesper/internal/adapters/httpapi"
	"github.com/vesper-voice/vesper/internal/adapters/prefs"
	"github.com/vesper-voice/vesper/internal/core"
	"github.com/vesper-voice/vesper/internal/di"
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
	server *httpapi.Server,
	normalizer core.Normalizer,
	contactCache core.ContactCache,
	prefStore prefs.Store,
) error {
	defer logger.Sync()

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		if err != nil {
			logger.Error("Broker API failed", zap.Error(err))
			return err
		}
	case <-sigCh:
		logger.Info("Shutting down...")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Stop(ctx); err != nil {
		logger.Error("Failed to stop broker API", zap.Error(err))
	}

	// Close any resources that need closing
	if closer, ok := normalizer.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close normalizer", zap.Error(err))
		}
	}
	if stopper, ok := contactCache.(interface{ Stop() }); ok {
		stopper.Stop()
	}
	prefStore.Stop()

	logger.Info("Shutdown complete")
	return nil
}
