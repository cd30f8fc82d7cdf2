package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/expenses/internal/database"
	apperrors "github.com/allisson/expenses/internal/errors"
	expenseDomain "github.com/allisson/expenses/internal/expense/domain"
)

// MySQLExpenseRepository implements expense persistence for MySQL databases.
type MySQLExpenseRepository struct {
	db *sql.DB
}

// NewMySQLExpenseRepository creates a new MySQL expense repository instance.
func NewMySQLExpenseRepository(db *sql.DB) *MySQLExpenseRepository {
	return &MySQLExpenseRepository{db: db}
}

// Create inserts a new expense into the MySQL database.
func (m *MySQLExpenseRepository) Create(
	ctx context.Context,
	expense *expenseDomain.Expense,
) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO expenses (` + expenseColumns + `)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

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
func (m *MySQLExpenseRepository) GetByID(
	ctx context.Context,
	id uuid.UUID,
) (*expenseDomain.Expense, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE id = ?`

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
func (m *MySQLExpenseRepository) Update(
	ctx context.Context,
	expense *expenseDomain.Expense,
) error {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE expenses
			  SET description = ?, amount = ?, category = ?, occurred_at = ?,
			      status = ?, receipt_reference = ?, notes = ?, updated_at = ?
			  WHERE id = ?`

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
func (m *MySQLExpenseRepository) ListByOwner(
	ctx context.Context,
	ownerID string,
	from, to *time.Time,
	category string,
	status expenseDomain.Status,
	offset, limit int,
) ([]*expenseDomain.Expense, error) {
	querier := database.GetTx(ctx, m.db)

	var sb strings.Builder
	sb.WriteString(`SELECT ` + expenseColumns + ` FROM expenses WHERE owner_id = ?`)

	args := []any{ownerID}
	if from != nil {
		args = append(args, *from)
		sb.WriteString(` AND occurred_at >= ?`)
	}
	if to != nil {
		args = append(args, *to)
		sb.WriteString(` AND occurred_at <= ?`)
	}
	if category != "" {
		args = append(args, category)
		sb.WriteString(` AND category = ?`)
	}
	if status != "" {
		args = append(args, status)
		sb.WriteString(` AND status = ?`)
	}
	args = append(args, limit, offset)
	sb.WriteString(` ORDER BY occurred_at ASC LIMIT ? OFFSET ?`)

	rows, err := querier.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list expenses by owner")
	}
	return collectExpenses(rows)
}

// ListByCategory retrieves expenses with the given category, ordered by
// creation time.
func (m *MySQLExpenseRepository) ListByCategory(
	ctx context.Context,
	category string,
	offset, limit int,
) ([]*expenseDomain.Expense, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE category = ?
			  ORDER BY created_at ASC LIMIT ? OFFSET ?`

	rows, err := querier.QueryContext(ctx, query, category, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list expenses by category")
	}
	return collectExpenses(rows)
}

// ListByStatus retrieves expenses with the given status, ordered by creation
// time.
func (m *MySQLExpenseRepository) ListByStatus(
	ctx context.Context,
	status expenseDomain.Status,
	offset, limit int,
) ([]*expenseDomain.Expense, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE status = ?
			  ORDER BY created_at ASC LIMIT ? OFFSET ?`

	rows, err := querier.QueryContext(ctx, query, status, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list expenses by status")
	}
	return collectExpenses(rows)
}

// ListPendingOlderThan retrieves PENDING expenses created before the cutoff.
func (m *MySQLExpenseRepository) ListPendingOlderThan(
	ctx context.Context,
	cutoff time.Time,
	limit int,
) ([]*expenseDomain.Expense, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + expenseColumns + ` FROM expenses
			  WHERE status = ? AND created_at < ?
			  ORDER BY created_at ASC
			  LIMIT ?`

	rows, err := querier.QueryContext(ctx, query, expenseDomain.StatusPending, cutoff, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list stale pending expenses")
	}
	return collectExpenses(rows)
}

// Delete removes an expense by id.
func (m *MySQLExpenseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, m.db)

	query := `DELETE FROM expenses WHERE id = ?`

	result, err := querier.ExecContext(ctx, query, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete expense")
	}

	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return expenseDomain.ErrExpenseNotFound
	}
	return nil
}
