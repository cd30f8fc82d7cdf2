// Package worker consumes the work queue and applies the processing
// transition to expense records.
//
// Deliveries are at-least-once and unordered, so processing is idempotent: a
// redelivered item whose expense is already PROCESSED settles as a no-op. A
// delivery referencing a missing expense is a permanent failure and is
// acknowledged so it cannot poison the queue.
package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	apperrors "github.com/allisson/expenses/internal/errors"
	expenseDomain "github.com/allisson/expenses/internal/expense/domain"
	"github.com/allisson/expenses/internal/metrics"
	"github.com/allisson/expenses/internal/queue"
)

// leaseErrorBackoff throttles the lease loop after a queue failure.
const leaseErrorBackoff = 1 * time.Second

// ExpenseStore is the slice of the record store the worker needs.
type ExpenseStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*expenseDomain.Expense, error)
	Update(ctx context.Context, expense *expenseDomain.Expense) error
}

// Worker runs a pool of consumers over the work queue.
type Worker struct {
	workQueue   queue.WorkQueue
	store       ExpenseStore
	logger      *slog.Logger
	metrics     metrics.BusinessMetrics
	concurrency int
	leaseWait   time.Duration
}

// New creates a worker pool with the given concurrency and lease wait.
func New(
	workQueue queue.WorkQueue,
	store ExpenseStore,
	logger *slog.Logger,
	businessMetrics metrics.BusinessMetrics,
	concurrency int,
	leaseWait time.Duration,
) *Worker {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Worker{
		workQueue:   workQueue,
		store:       store,
		logger:      logger,
		metrics:     businessMetrics,
		concurrency: concurrency,
		leaseWait:   leaseWait,
	}
}

// Run starts the consumer loops and blocks until the context is canceled.
// Failures while processing a single item are logged and never stop the pool.
func (w *Worker) Run(ctx context.Context) error {
	w.logger.Info("worker started", slog.Int("concurrency", w.concurrency))

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < w.concurrency; i++ {
		g.Go(func() error {
			return w.loop(ctx)
		})
	}

	err := g.Wait()
	w.logger.Info("worker stopped")
	return err
}

func (w *Worker) loop(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return nil
		}

		delivery, err := w.workQueue.Lease(ctx, w.leaseWait)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			w.logger.Error("failed to lease work item", slog.Any("error", err))
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(leaseErrorBackoff):
			}
			continue
		}
		if delivery == nil {
			continue
		}

		if err := w.ProcessDelivery(ctx, delivery); err != nil {
			w.logger.Error("failed to process work item",
				slog.String("expense_id", delivery.Item.ExpenseID.String()),
				slog.Int("attempts", delivery.Item.Attempts),
				slog.Any("error", err),
			)
		}
	}
}

// ProcessDelivery applies the processing transition for one leased item and
// settles the delivery. It is safe to call concurrently for duplicate
// deliveries of the same expense; only one caller performs the transition.
//
// Settlement rules: a completed transition and a no-op redelivery are
// acknowledged, a missing expense is acknowledged as a permanent failure, and
// any transient store failure releases the lease so the item is redelivered.
func (w *Worker) ProcessDelivery(ctx context.Context, delivery *queue.Delivery) error {
	start := time.Now()

	// Settlement must survive a canceled worker context.
	settleCtx := context.WithoutCancel(ctx)

	if ctx.Err() != nil {
		w.release(settleCtx, delivery)
		return ctx.Err()
	}

	expenseID := delivery.Item.ExpenseID

	expense, err := w.store.GetByID(ctx, expenseID)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			// The record is gone for good; retrying can never succeed.
			w.logger.Warn("work item references missing expense, dropping",
				slog.String("expense_id", expenseID.String()),
			)
			w.record(settleCtx, "work_process", start, "dropped")
			return w.workQueue.Ack(settleCtx, delivery)
		}
		w.release(settleCtx, delivery)
		w.record(settleCtx, "work_process", start, "error")
		return apperrors.Wrap(err, "failed to load expense for processing")
	}

	if expense.MarkProcessed(time.Now()) {
		if err := w.store.Update(ctx, expense); err != nil {
			if apperrors.Is(err, apperrors.ErrNotFound) {
				// Deleted between read and write. Same as a missing record.
				w.record(settleCtx, "work_process", start, "dropped")
				return w.workQueue.Ack(settleCtx, delivery)
			}
			w.release(settleCtx, delivery)
			w.record(settleCtx, "work_process", start, "error")
			return apperrors.Wrap(err, "failed to persist processed expense")
		}
		w.logger.Info("expense processed",
			slog.String("expense_id", expenseID.String()),
			slog.Int("attempts", delivery.Item.Attempts),
		)
	} else {
		// Redelivery of an already processed expense.
		w.logger.Debug("expense already processed, settling duplicate delivery",
			slog.String("expense_id", expenseID.String()),
		)
	}

	w.record(settleCtx, "work_process", start, "success")
	return w.workQueue.Ack(settleCtx, delivery)
}

func (w *Worker) release(ctx context.Context, delivery *queue.Delivery) {
	if err := w.workQueue.Release(ctx, delivery); err != nil {
		// The visibility deadline still redelivers the item eventually.
		w.logger.Warn("failed to release work item lease",
			slog.String("expense_id", delivery.Item.ExpenseID.String()),
			slog.Any("error", err),
		)
	}
}

func (w *Worker) record(ctx context.Context, operation string, start time.Time, status string) {
	w.metrics.RecordOperation(ctx, "worker", operation, status)
	w.metrics.RecordDuration(ctx, "worker", operation, time.Since(start), status)
}
