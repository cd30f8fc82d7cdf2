package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/allisson/expenses/internal/app"
	"github.com/allisson/expenses/internal/config"
)

// RunWorker starts the expense processing worker pool.
// Loads configuration, initializes the DI container, and runs the worker until
// receiving SIGINT/SIGTERM. In-flight deliveries settle before the process exits.
func RunWorker(ctx context.Context, version string) error {
	cfg := config.Load()

	container := app.NewContainer(cfg)

	logger := container.Logger()
	logger.Info("starting worker",
		slog.String("version", version),
		slog.Int("concurrency", cfg.WorkerConcurrency),
		slog.String("queue_backend", cfg.QueueBackend),
	)

	defer closeContainer(container, logger)

	processingWorker, err := container.Worker()
	if err != nil {
		return fmt.Errorf("failed to initialize worker: %w", err)
	}

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := processingWorker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("worker error: %w", err)
	}

	logger.Info("worker stopped")
	return nil
}
