package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	expenseDomain "github.com/allisson/expenses/internal/expense/domain"
	"github.com/allisson/expenses/internal/metrics"
)

// expenseUseCaseWithMetrics decorates ExpenseUseCase with metrics instrumentation.
type expenseUseCaseWithMetrics struct {
	next    ExpenseUseCase
	metrics metrics.BusinessMetrics
}

// NewExpenseUseCaseWithMetrics wraps an ExpenseUseCase with metrics recording.
func NewExpenseUseCaseWithMetrics(useCase ExpenseUseCase, m metrics.BusinessMetrics) ExpenseUseCase {
	return &expenseUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// record emits the counter and duration for one operation.
func (e *expenseUseCaseWithMetrics) record(
	ctx context.Context,
	operation string,
	start time.Time,
	err error,
) {
	status := "success"
	if err != nil {
		status = "error"
	}
	e.metrics.RecordOperation(ctx, "expenses", operation, status)
	e.metrics.RecordDuration(ctx, "expenses", operation, time.Since(start), status)
}

// Submit records metrics for expense ingestion.
func (e *expenseUseCaseWithMetrics) Submit(
	ctx context.Context,
	input SubmitExpenseInput,
) (*expenseDomain.Expense, error) {
	start := time.Now()
	expense, err := e.next.Submit(ctx, input)
	e.record(ctx, "expense_submit", start, err)
	return expense, err
}

// GetByID records metrics for single-expense reads.
func (e *expenseUseCaseWithMetrics) GetByID(
	ctx context.Context,
	id uuid.UUID,
) (*expenseDomain.Expense, error) {
	start := time.Now()
	expense, err := e.next.GetByID(ctx, id)
	e.record(ctx, "expense_get", start, err)
	return expense, err
}

// ListByOwner records metrics for owner-scoped list reads.
func (e *expenseUseCaseWithMetrics) ListByOwner(
	ctx context.Context,
	ownerID string,
	from, to *time.Time,
	category, status string,
	offset, limit int,
) ([]*expenseDomain.Expense, error) {
	start := time.Now()
	expenses, err := e.next.ListByOwner(ctx, ownerID, from, to, category, status, offset, limit)
	e.record(ctx, "expense_list_owner", start, err)
	return expenses, err
}

// ListByCategory records metrics for category list reads.
func (e *expenseUseCaseWithMetrics) ListByCategory(
	ctx context.Context,
	category string,
	offset, limit int,
) ([]*expenseDomain.Expense, error) {
	start := time.Now()
	expenses, err := e.next.ListByCategory(ctx, category, offset, limit)
	e.record(ctx, "expense_list_category", start, err)
	return expenses, err
}

// ListByStatus records metrics for status list reads.
func (e *expenseUseCaseWithMetrics) ListByStatus(
	ctx context.Context,
	status string,
	offset, limit int,
) ([]*expenseDomain.Expense, error) {
	start := time.Now()
	expenses, err := e.next.ListByStatus(ctx, status, offset, limit)
	e.record(ctx, "expense_list_status", start, err)
	return expenses, err
}

// Delete records metrics for administrative deletes.
func (e *expenseUseCaseWithMetrics) Delete(ctx context.Context, id uuid.UUID) error {
	start := time.Now()
	err := e.next.Delete(ctx, id)
	e.record(ctx, "expense_delete", start, err)
	return err
}
