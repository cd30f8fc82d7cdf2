package app

import (
	"fmt"

	"github.com/allisson/expenses/internal/reconciler"
	"github.com/allisson/expenses/internal/worker"
)

// Worker returns the expense processing worker.
func (c *Container) Worker() (*worker.Worker, error) {
	var err error
	c.workerInit.Do(func() {
		c.worker, err = c.initWorker()
		if err != nil {
			c.initErrors["worker"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["worker"]; exists {
		return nil, storedErr
	}
	return c.worker, nil
}

// Reconciler returns the pending-expense reconciler.
func (c *Container) Reconciler() (*reconciler.Reconciler, error) {
	var err error
	c.reconcilerInit.Do(func() {
		c.reconciler, err = c.initReconciler()
		if err != nil {
			c.initErrors["reconciler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["reconciler"]; exists {
		return nil, storedErr
	}
	return c.reconciler, nil
}

// initWorker creates the processing worker with all its dependencies.
func (c *Container) initWorker() (*worker.Worker, error) {
	workQueue, err := c.WorkQueue()
	if err != nil {
		return nil, fmt.Errorf("failed to get work queue for worker: %w", err)
	}

	expenseRepo, err := c.ExpenseRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get expense repository for worker: %w", err)
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for worker: %w", err)
	}

	return worker.New(
		workQueue,
		expenseRepo,
		c.Logger(),
		businessMetrics,
		c.config.WorkerConcurrency,
		c.config.QueueLeaseWait,
	), nil
}

// initReconciler creates the reconciler with all its dependencies.
func (c *Container) initReconciler() (*reconciler.Reconciler, error) {
	workQueue, err := c.WorkQueue()
	if err != nil {
		return nil, fmt.Errorf("failed to get work queue for reconciler: %w", err)
	}

	expenseRepo, err := c.ExpenseRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get expense repository for reconciler: %w", err)
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for reconciler: %w", err)
	}

	return reconciler.New(
		expenseRepo,
		workQueue,
		c.Logger(),
		businessMetrics,
		c.config.ReconcilerPendingAge,
		c.config.ReconcilerBatchSize,
		c.config.ReconcilerRequeue,
	), nil
}
