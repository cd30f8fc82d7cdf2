// Package repository provides SQL-backed work queue implementations.
// Leasing uses FOR UPDATE SKIP LOCKED so concurrent workers never contend for
// the same row; an unacknowledged lease expires via its visibility deadline
// and the row becomes eligible for redelivery.
package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/allisson/expenses/internal/database"
	apperrors "github.com/allisson/expenses/internal/errors"
	"github.com/allisson/expenses/internal/queue"
)

// leasePollInterval is how often a blocked Lease call re-checks for work.
const leasePollInterval = 250 * time.Millisecond

// PostgreSQLWorkQueue implements queue.WorkQueue on top of a PostgreSQL table.
type PostgreSQLWorkQueue struct {
	db            *sql.DB
	leaseDuration time.Duration
}

// NewPostgreSQLWorkQueue creates a new PostgreSQL work queue instance.
func NewPostgreSQLWorkQueue(db *sql.DB, leaseDuration time.Duration) *PostgreSQLWorkQueue {
	return &PostgreSQLWorkQueue{db: db, leaseDuration: leaseDuration}
}

// Enqueue inserts a work item referencing an expense.
func (q *PostgreSQLWorkQueue) Enqueue(ctx context.Context, item *queue.WorkItem) error {
	querier := database.GetTx(ctx, q.db)

	query := `INSERT INTO work_items (id, expense_id, attempts, created_at)
			  VALUES ($1, $2, $3, $4)`

	_, err := querier.ExecContext(
		ctx,
		query,
		queue.NewLeaseToken(),
		item.ExpenseID,
		item.Attempts,
		item.EnqueuedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to enqueue work item")
	}
	return nil
}

// Lease blocks up to maxWait for an available work item, claiming it for the
// configured lease duration. Returns (nil, nil) when the queue stays empty.
func (q *PostgreSQLWorkQueue) Lease(
	ctx context.Context,
	maxWait time.Duration,
) (*queue.Delivery, error) {
	deadline := time.Now().Add(maxWait)

	for {
		delivery, err := q.leaseOne(ctx)
		if err != nil {
			return nil, err
		}
		if delivery != nil {
			return delivery, nil
		}

		if time.Now().Add(leasePollInterval).After(deadline) {
			return nil, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(leasePollInterval):
		}
	}
}

// leaseOne claims the oldest available work item, if any.
func (q *PostgreSQLWorkQueue) leaseOne(ctx context.Context) (*queue.Delivery, error) {
	token := queue.NewLeaseToken()

	query := `UPDATE work_items
			  SET lease_token = $1,
			      leased_until = NOW() + ($2 * INTERVAL '1 second'),
			      attempts = attempts + 1
			  WHERE id = (
			      SELECT id FROM work_items
			      WHERE leased_until IS NULL OR leased_until < NOW()
			      ORDER BY created_at ASC
			      LIMIT 1
			      FOR UPDATE SKIP LOCKED
			  )
			  RETURNING expense_id, attempts, created_at`

	var item queue.WorkItem
	err := q.db.QueryRowContext(ctx, query, token, q.leaseDuration.Seconds()).Scan(
		&item.ExpenseID,
		&item.Attempts,
		&item.EnqueuedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, apperrors.Wrap(err, "failed to lease work item")
	}

	return &queue.Delivery{Item: item, LeaseToken: token}, nil
}

// Ack deletes the work item held under the given lease.
func (q *PostgreSQLWorkQueue) Ack(ctx context.Context, delivery *queue.Delivery) error {
	query := `DELETE FROM work_items WHERE lease_token = $1`

	_, err := q.db.ExecContext(ctx, query, delivery.LeaseToken)
	if err != nil {
		return apperrors.Wrap(err, "failed to ack work item")
	}
	return nil
}

// Release clears the lease so the item becomes immediately redeliverable.
func (q *PostgreSQLWorkQueue) Release(ctx context.Context, delivery *queue.Delivery) error {
	query := `UPDATE work_items
			  SET lease_token = NULL, leased_until = NULL
			  WHERE lease_token = $1`

	_, err := q.db.ExecContext(ctx, query, delivery.LeaseToken)
	if err != nil {
		return apperrors.Wrap(err, "failed to release work item")
	}
	return nil
}
