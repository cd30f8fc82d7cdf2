package usecase

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	apperrors "github.com/allisson/expenses/internal/errors"
	expenseDomain "github.com/allisson/expenses/internal/expense/domain"
	"github.com/allisson/expenses/internal/queue"
)

// expenseUseCase implements ExpenseUseCase over a record store and a work queue.
type expenseUseCase struct {
	expenseRepo ExpenseRepository
	workQueue   queue.WorkQueue
	logger      *slog.Logger
}

// NewExpenseUseCase creates a new expense use case instance.
func NewExpenseUseCase(
	expenseRepo ExpenseRepository,
	workQueue queue.WorkQueue,
	logger *slog.Logger,
) ExpenseUseCase {
	return &expenseUseCase{
		expenseRepo: expenseRepo,
		workQueue:   workQueue,
		logger:      logger,
	}
}

// Submit validates the input, persists a PENDING expense, then enqueues a work
// item referencing it.
//
// The two stores fail independently and the operation is deliberately not
// transactional across them. The record write must succeed before the enqueue
// is attempted, so a storage failure leaves no orphaned queue entry. An
// enqueue failure after a successful write leaves the expense durable in
// PENDING with no work item: the error surfaces as ErrInconsistent and the
// record is picked up later by the reconciliation sweep.
func (e *expenseUseCase) Submit(
	ctx context.Context,
	input SubmitExpenseInput,
) (*expenseDomain.Expense, error) {
	amount, err := validateSubmitInput(input)
	if err != nil {
		return nil, err
	}

	expense := expenseDomain.NewExpense(
		input.OwnerID,
		input.Description,
		amount,
		input.Category,
		input.OccurredAt.UTC(),
		input.ReceiptReference,
		input.Notes,
	)

	if err := e.expenseRepo.Create(ctx, expense); err != nil {
		return nil, err
	}

	if err := e.workQueue.Enqueue(ctx, queue.NewWorkItem(expense.ID)); err != nil {
		// The record is durable; only the queue entry is missing. Surface a
		// typed inconsistency so operators and the reconciler can act on it.
		e.logger.Warn("expense persisted but enqueue failed",
			slog.String("expense_id", expense.ID.String()),
			slog.Any("error", err),
		)
		return nil, apperrors.Wrap(expenseDomain.ErrEnqueueFailed, expense.ID.String())
	}

	return expense, nil
}

// GetByID retrieves a single expense by its id.
func (e *expenseUseCase) GetByID(
	ctx context.Context,
	id uuid.UUID,
) (*expenseDomain.Expense, error) {
	return e.expenseRepo.GetByID(ctx, id)
}

// ListByOwner retrieves an owner's expenses ordered by occurrence time,
// optionally narrowed by category and status.
func (e *expenseUseCase) ListByOwner(
	ctx context.Context,
	ownerID string,
	from, to *time.Time,
	category, status string,
	offset, limit int,
) ([]*expenseDomain.Expense, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "owner id cannot be empty")
	}
	if status != "" && !expenseDomain.IsValidStatus(status) {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "unknown status")
	}
	return e.expenseRepo.ListByOwner(
		ctx,
		ownerID,
		from,
		to,
		category,
		expenseDomain.Status(status),
		offset,
		limit,
	)
}

// ListByCategory retrieves expenses with the given category.
func (e *expenseUseCase) ListByCategory(
	ctx context.Context,
	category string,
	offset, limit int,
) ([]*expenseDomain.Expense, error) {
	return e.expenseRepo.ListByCategory(ctx, category, offset, limit)
}

// ListByStatus retrieves expenses with the given status.
func (e *expenseUseCase) ListByStatus(
	ctx context.Context,
	status string,
	offset, limit int,
) ([]*expenseDomain.Expense, error) {
	if !expenseDomain.IsValidStatus(status) {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "unknown status")
	}
	return e.expenseRepo.ListByStatus(ctx, expenseDomain.Status(status), offset, limit)
}

// Delete removes an expense by id.
func (e *expenseUseCase) Delete(ctx context.Context, id uuid.UUID) error {
	return e.expenseRepo.Delete(ctx, id)
}

// validateSubmitInput checks the core input constraints and parses the amount.
func validateSubmitInput(input SubmitExpenseInput) (decimal.Decimal, error) {
	if strings.TrimSpace(input.OwnerID) == "" {
		return decimal.Zero, apperrors.Wrap(apperrors.ErrInvalidInput, "owner id cannot be empty")
	}
	if input.OccurredAt.IsZero() {
		return decimal.Zero, apperrors.Wrap(apperrors.ErrInvalidInput, "occurred_at is required")
	}

	amount, err := decimal.NewFromString(input.Amount)
	if err != nil {
		return decimal.Zero, expenseDomain.ErrInvalidAmount
	}
	if amount.IsNegative() {
		return decimal.Zero, expenseDomain.ErrInvalidAmount
	}

	return amount, nil
}
