// Package repository implements expense persistence.
// Repositories support both PostgreSQL and MySQL. Reads by primary key are
// strongly consistent; list queries carry no consistency guarantee relative to
// in-flight processing.
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/expenses/internal/database"
	apperrors "github.com/allisson/expenses/internal/errors"
	expenseDomain "github.com/allisson/expenses/internal/expense/domain"
)

const expenseColumns = `id, owner_id, description, amount, category, occurred_at,
						status, receipt_reference, notes, created_at, updated_at`

// PostgreSQLExpenseRepository implements expense persistence for PostgreSQL databases.
type PostgreSQLExpenseRepository struct {
	db *sql.DB
}

// NewPostgreSQLExpenseRepository creates a new PostgreSQL expense repository instance.
func NewPostgreSQLExpenseRepository(db *sql.DB) *PostgreSQLExpenseRepository {
	return &PostgreSQLExpenseRepository{db: db}
}

// Create inserts a new expense into the PostgreSQL database.
func (p *PostgreSQLExpenseRepository) Create(
	ctx context.Context,
	expense *expenseDomain.Expense,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO expenses (` + expenseColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := querier.ExecContext(
		ctx,
		query,
		expense.ID,
		expense.OwnerID,
		expense.Description,
		expense.Amount,
		expense.Category,
		expense.OccurredAt,
		expense.Status,
		expense.ReceiptReference,
		expense.Notes,
		expense.CreatedAt,
		expense.UpdatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create expense")
	}
	return nil
}

// GetByID retrieves an expense by its primary key.
func (p *PostgreSQLExpenseRepository) GetByID(
	ctx context.Context,
	id uuid.UUID,
) (*expenseDomain.Expense, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE id = $1`

	expense, err := scanExpense(querier.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, expenseDomain.ErrExpenseNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get expense by id")
	}
	return expense, nil
}

// Update writes back a mutated expense (the processing-completion write).
func (p *PostgreSQLExpenseRepository) Update(
	ctx context.Context,
	expense *expenseDomain.Expense,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE expenses
			  SET description = $1, amount = $2, category = $3, occurred_at = $4,
			      status = $5, receipt_reference = $6, notes = $7, updated_at = $8
			  WHERE id = $9`

	result, err := querier.ExecContext(
		ctx,
		query,
		expense.Description,
		expense.Amount,
		expense.Category,
		expense.OccurredAt,
		expense.Status,
		expense.ReceiptReference,
		expense.Notes,
		expense.UpdatedAt,
		expense.ID,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update expense")
	}

	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return expenseDomain.ErrExpenseNotFound
	}
	return nil
}

// ListByOwner retrieves the expenses of an owner ordered by occurrence time,
// optionally restricted to an occurred_at range, a category and a status.
func (p *PostgreSQLExpenseRepository) ListByOwner(
	ctx context.Context,
	ownerID string,
	from, to *time.Time,
	category string,
	status expenseDomain.Status,
	offset, limit int,
) ([]*expenseDomain.Expense, error) {
	querier := database.GetTx(ctx, p.db)

	var sb strings.Builder
	sb.WriteString(`SELECT ` + expenseColumns + ` FROM expenses WHERE owner_id = $1`)

	args := []any{ownerID}
	if from != nil {
		args = append(args, *from)
		fmt.Fprintf(&sb, ` AND occurred_at >= $%d`, len(args))
	}
	if to != nil {
		args = append(args, *to)
		fmt.Fprintf(&sb, ` AND occurred_at <= $%d`, len(args))
	}
	if category != "" {
		args = append(args, category)
		fmt.Fprintf(&sb, ` AND category = $%d`, len(args))
	}
	if status != "" {
		args = append(args, status)
		fmt.Fprintf(&sb, ` AND status = $%d`, len(args))
	}
	args = append(args, limit, offset)
	fmt.Fprintf(&sb, ` ORDER BY occurred_at ASC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := querier.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list expenses by owner")
	}
	return collectExpenses(rows)
}

// ListByCategory retrieves expenses with the given category, ordered by
// creation time.
func (p *PostgreSQLExpenseRepository) ListByCategory(
	ctx context.Context,
	category string,
	offset, limit int,
) ([]*expenseDomain.Expense, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE category = $1
			  ORDER BY created_at ASC LIMIT $2 OFFSET $3`

	rows, err := querier.QueryContext(ctx, query, category, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list expenses by category")
	}
	return collectExpenses(rows)
}

// ListByStatus retrieves expenses with the given status, ordered by creation
// time.
func (p *PostgreSQLExpenseRepository) ListByStatus(
	ctx context.Context,
	status expenseDomain.Status,
	offset, limit int,
) ([]*expenseDomain.Expense, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE status = $1
			  ORDER BY created_at ASC LIMIT $2 OFFSET $3`

	rows, err := querier.QueryContext(ctx, query, status, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list expenses by status")
	}
	return collectExpenses(rows)
}

// ListPendingOlderThan retrieves PENDING expenses created before the cutoff.
// Used by the reconciliation sweep to detect records whose enqueue step failed.
func (p *PostgreSQLExpenseRepository) ListPendingOlderThan(
	ctx context.Context,
	cutoff time.Time,
	limit int,
) ([]*expenseDomain.Expense, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + expenseColumns + ` FROM expenses
			  WHERE status = $1 AND created_at < $2
			  ORDER BY created_at ASC
			  LIMIT $3`

	rows, err := querier.QueryContext(ctx, query, expenseDomain.StatusPending, cutoff, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list stale pending expenses")
	}
	return collectExpenses(rows)
}

// Delete removes an expense by id. Administrative operation, not part of the
// processing pipeline.
func (p *PostgreSQLExpenseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, p.db)

	query := `DELETE FROM expenses WHERE id = $1`

	result, err := querier.ExecContext(ctx, query, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete expense")
	}

	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return expenseDomain.ErrExpenseNotFound
	}
	return nil
}

// rowScanner abstracts *sql.Row and *sql.Rows for shared scanning.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanExpense scans one expense row.
func scanExpense(row rowScanner) (*expenseDomain.Expense, error) {
	var expense expenseDomain.Expense
	err := row.Scan(
		&expense.ID,
		&expense.OwnerID,
		&expense.Description,
		&expense.Amount,
		&expense.Category,
		&expense.OccurredAt,
		&expense.Status,
		&expense.ReceiptReference,
		&expense.Notes,
		&expense.CreatedAt,
		&expense.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &expense, nil
}

// collectExpenses drains rows into a slice.
func collectExpenses(rows *sql.Rows) ([]*expenseDomain.Expense, error) {
	defer rows.Close() //nolint:errcheck

	var expenses []*expenseDomain.Expense
	for rows.Next() {
		expense, err := scanExpense(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan expense")
		}
		expenses = append(expenses, expense)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate expenses")
	}
	return expenses, nil
}
