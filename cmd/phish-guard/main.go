package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mikey/llm-phish-detector/internal/adapters/frontend"
	"github.com/mikey/llm-phish-detector/internal/core"
	"github.com/mikey/llm-phish-detector/internal/di"
	"github.com/mikey/llm-phish-detector/internal/messaging"
	"go.uber.org/dig"
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

type deps struct {
	dig.In

	Logger   *zap.Logger
	Agent    *messaging.Agent
	Frontend frontend.Frontend
	Cache    core.CacheRepository
	Secrets  core.SecretProvider
}

// run is the main application function that gets all dependencies injected
func run(d deps) error {
	logger := d.Logger
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	d.Agent.Start(ctx)

	if err := d.Frontend.Start(); err != nil {
		logger.Error("Failed to start frontend", zap.Error(err))
		return err
	}
	logger.Info("Phishing detector ready", zap.String("address", d.Frontend.Addr()))

	<-ctx.Done()
	logger.Info("Shutting down...")

	if err := d.Frontend.Stop(); err != nil {
		logger.Error("Failed to stop frontend", zap.Error(err))
	}

	d.Agent.Stop()
	d.Agent.Wait()

	// Stop the cache if needed
	if stopper, ok := d.Cache.(interface{ Stop() }); ok {
		stopper.Stop()
	}
	if closer, ok := d.Secrets.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close credential store", zap.Error(err))
		}
	}

	logger.Info("Shutdown complete")
	return nil
}
