package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/allisson/expenses/internal/app"
	"github.com/allisson/expenses/internal/config"
)

// RunReconcile runs the reconciliation sweep over stale PENDING expenses.
// With a zero interval it performs a single sweep and prints the report;
// otherwise it keeps sweeping on the interval until SIGINT/SIGTERM.
func RunReconcile(ctx context.Context, interval time.Duration, io IOTuple) error {
	cfg := config.Load()

	container := app.NewContainer(cfg)

	logger := container.Logger()
	logger.Info("starting reconciler",
		slog.Duration("pending_age", cfg.ReconcilerPendingAge),
		slog.Bool("requeue", cfg.ReconcilerRequeue),
	)

	defer closeContainer(container, logger)

	rec, err := container.Reconciler()
	if err != nil {
		return fmt.Errorf("failed to initialize reconciler: %w", err)
	}

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if interval <= 0 {
		report, err := rec.Sweep(ctx)
		if err != nil {
			return fmt.Errorf("reconciliation sweep failed: %w", err)
		}

		_, _ = fmt.Fprintf(io.Writer, "Scanned: %d\n", report.Scanned)
		_, _ = fmt.Fprintf(io.Writer, "Requeued: %d\n", report.Requeued)
		return nil
	}

	if err := rec.Run(ctx, interval); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("reconciler error: %w", err)
	}

	logger.Info("reconciler stopped")
	return nil
}
