// Package reconciler detects expenses stuck in PENDING with no corresponding
// work item, the residue of an ingestion that persisted the record but failed
// to enqueue. The sweep reports them and can re-enqueue them; because the
// worker is idempotent, re-enqueueing an expense whose work item still exists
// is harmless.
package reconciler

import (
	"context"
	"log/slog"
	"time"

	apperrors "github.com/allisson/expenses/internal/errors"
	expenseDomain "github.com/allisson/expenses/internal/expense/domain"
	"github.com/allisson/expenses/internal/metrics"
	"github.com/allisson/expenses/internal/queue"
)

// ExpenseStore is the slice of the record store the reconciler needs.
type ExpenseStore interface {
	ListPendingOlderThan(ctx context.Context, cutoff time.Time, limit int) ([]*expenseDomain.Expense, error)
}

// Report summarizes one reconciliation sweep.
type Report struct {
	// Scanned is the number of stale PENDING expenses found.
	Scanned int
	// Requeued is the number of work items re-enqueued for them.
	Requeued int
}

// Reconciler sweeps the record store for stale PENDING expenses.
type Reconciler struct {
	store      ExpenseStore
	workQueue  queue.WorkQueue
	logger     *slog.Logger
	metrics    metrics.BusinessMetrics
	pendingAge time.Duration
	batchSize  int
	requeue    bool
}

// New creates a reconciler. pendingAge is how long an expense may sit in
// PENDING before it counts as stale; it must comfortably exceed normal
// queue latency or the sweep re-enqueues items that are merely slow.
func New(
	store ExpenseStore,
	workQueue queue.WorkQueue,
	logger *slog.Logger,
	businessMetrics metrics.BusinessMetrics,
	pendingAge time.Duration,
	batchSize int,
	requeue bool,
) *Reconciler {
	if batchSize < 1 {
		batchSize = 100
	}
	return &Reconciler{
		store:      store,
		workQueue:  workQueue,
		logger:     logger,
		metrics:    businessMetrics,
		pendingAge: pendingAge,
		batchSize:  batchSize,
		requeue:    requeue,
	}
}

// Sweep runs one reconciliation pass and returns what it found.
func (r *Reconciler) Sweep(ctx context.Context) (Report, error) {
	start := time.Now()
	cutoff := time.Now().UTC().Add(-r.pendingAge)

	var report Report

	expenses, err := r.store.ListPendingOlderThan(ctx, cutoff, r.batchSize)
	if err != nil {
		r.record(ctx, start, "error")
		return report, apperrors.Wrap(err, "failed to list stale pending expenses")
	}
	report.Scanned = len(expenses)

	for _, expense := range expenses {
		r.logger.Warn("stale pending expense",
			slog.String("expense_id", expense.ID.String()),
			slog.Time("created_at", expense.CreatedAt),
		)
		if !r.requeue {
			continue
		}
		if err := r.workQueue.Enqueue(ctx, queue.NewWorkItem(expense.ID)); err != nil {
			r.record(ctx, start, "error")
			return report, apperrors.Wrap(err, "failed to re-enqueue stale expense")
		}
		report.Requeued++
	}

	r.logger.Info("reconciliation sweep finished",
		slog.Int("scanned", report.Scanned),
		slog.Int("requeued", report.Requeued),
	)
	r.record(ctx, start, "success")
	return report, nil
}

// Run sweeps at the given interval until the context is canceled. Sweep
// failures are logged and do not stop the loop.
func (r *Reconciler) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := r.Sweep(ctx); err != nil {
				r.logger.Error("reconciliation sweep failed", slog.Any("error", err))
			}
		}
	}
}

func (r *Reconciler) record(ctx context.Context, start time.Time, status string) {
	r.metrics.RecordOperation(ctx, "reconciler", "sweep", status)
	r.metrics.RecordDuration(ctx, "reconciler", "sweep", time.Since(start), status)
}
