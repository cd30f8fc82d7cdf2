package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/allisson/expenses/internal/database"
	apperrors "github.com/allisson/expenses/internal/errors"
	"github.com/allisson/expenses/internal/queue"
)

// MySQLWorkQueue implements queue.WorkQueue on top of a MySQL table.
// Unlike PostgreSQL, MySQL cannot combine UPDATE with a locking subquery and
// RETURNING, so leasing runs a short transaction: select-for-update, update,
// commit.
type MySQLWorkQueue struct {
	db            *sql.DB
	leaseDuration time.Duration
}

// NewMySQLWorkQueue creates a new MySQL work queue instance.
func NewMySQLWorkQueue(db *sql.DB, leaseDuration time.Duration) *MySQLWorkQueue {
	return &MySQLWorkQueue{db: db, leaseDuration: leaseDuration}
}

// Enqueue inserts a work item referencing an expense.
func (q *MySQLWorkQueue) Enqueue(ctx context.Context, item *queue.WorkItem) error {
	querier := database.GetTx(ctx, q.db)

	query := `INSERT INTO work_items (id, expense_id, attempts, created_at)
			  VALUES (?, ?, ?, ?)`

	_, err := querier.ExecContext(
		ctx,
		query,
		queue.NewLeaseToken(),
		item.ExpenseID.String(),
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
func (q *MySQLWorkQueue) Lease(
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
func (q *MySQLWorkQueue) leaseOne(ctx context.Context) (*queue.Delivery, error) {
	tx, err := q.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to begin lease transaction")
	}
	defer tx.Rollback() //nolint:errcheck

	selectQuery := `SELECT id, expense_id, attempts, created_at
					FROM work_items
					WHERE leased_until IS NULL OR leased_until < NOW()
					ORDER BY created_at ASC
					LIMIT 1
					FOR UPDATE SKIP LOCKED`

	var (
		rowID     string
		expenseID string
		item      queue.WorkItem
	)
	err = tx.QueryRowContext(ctx, selectQuery).Scan(&rowID, &expenseID, &item.Attempts, &item.EnqueuedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, apperrors.Wrap(err, "failed to lease work item")
	}

	if err := item.ExpenseID.UnmarshalText([]byte(expenseID)); err != nil {
		return nil, apperrors.Wrap(err, "failed to parse leased expense id")
	}

	token := queue.NewLeaseToken()
	item.Attempts++

	updateQuery := `UPDATE work_items
					SET lease_token = ?,
					    leased_until = DATE_ADD(NOW(), INTERVAL ? SECOND),
					    attempts = attempts + 1
					WHERE id = ?`

	if _, err := tx.ExecContext(ctx, updateQuery, token, int(q.leaseDuration.Seconds()), rowID); err != nil {
		return nil, apperrors.Wrap(err, "failed to mark work item leased")
	}

	if err := tx.Commit(); err != nil {
		return nil, apperrors.Wrap(err, "failed to commit lease transaction")
	}

	return &queue.Delivery{Item: item, LeaseToken: token}, nil
}

// Ack deletes the work item held under the given lease.
func (q *MySQLWorkQueue) Ack(ctx context.Context, delivery *queue.Delivery) error {
	query := `DELETE FROM work_items WHERE lease_token = ?`

	_, err := q.db.ExecContext(ctx, query, delivery.LeaseToken)
	if err != nil {
		return apperrors.Wrap(err, "failed to ack work item")
	}
	return nil
}

// Release clears the lease so the item becomes immediately redeliverable.
func (q *MySQLWorkQueue) Release(ctx context.Context, delivery *queue.Delivery) error {
	query := `UPDATE work_items
			  SET lease_token = NULL, leased_until = NULL
			  WHERE lease_token = ?`

	_, err := q.db.ExecContext(ctx, query, delivery.LeaseToken)
	if err != nil {
		return apperrors.Wrap(err, "failed to release work item")
	}
	return nil
}
