// Package usecase implements the expense business logic: the ingestion write
// path (persist then enqueue) and the read-only query surface.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	expenseDomain "github.com/allisson/expenses/internal/expense/domain"
)

// ExpenseRepository defines the record store operations the use cases depend on.
// GetByID is a strongly consistent read-after-write for a single key; the list
// operations may lag the most recent write.
type ExpenseRepository interface {
	Create(ctx context.Context, expense *expenseDomain.Expense) error
	GetByID(ctx context.Context, id uuid.UUID) (*expenseDomain.Expense, error)
	Update(ctx context.Context, expense *expenseDomain.Expense) error
	ListByOwner(
		ctx context.Context,
		ownerID string,
		from, to *time.Time,
		category string,
		status expenseDomain.Status,
		offset, limit int,
	) ([]*expenseDomain.Expense, error)
	ListByCategory(ctx context.Context, category string, offset, limit int) ([]*expenseDomain.Expense, error)
	ListByStatus(ctx context.Context, status expenseDomain.Status, offset, limit int) ([]*expenseDomain.Expense, error)
	ListPendingOlderThan(ctx context.Context, cutoff time.Time, limit int) ([]*expenseDomain.Expense, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// SubmitExpenseInput carries the caller-supplied fields for a new expense.
// OwnerID comes from the authentication collaborator, never from the client
// payload.
type SubmitExpenseInput struct {
	OwnerID          string
	Description      string
	Amount           string
	Category         string
	OccurredAt       time.Time
	ReceiptReference string
	Notes            string
}

// ExpenseUseCase defines the operations exposed by the expense module.
type ExpenseUseCase interface {
	// Submit validates the input, persists a PENDING expense and enqueues a
	// work item referencing it. The record write strictly precedes the
	// enqueue; see Submit's documentation for the failure semantics.
	Submit(ctx context.Context, input SubmitExpenseInput) (*expenseDomain.Expense, error)

	// GetByID retrieves a single expense.
	GetByID(ctx context.Context, id uuid.UUID) (*expenseDomain.Expense, error)

	// ListByOwner retrieves an owner's expenses ordered by occurrence time,
	// optionally bounded to [from, to] and narrowed by category and status.
	// Empty category and status mean no filter.
	ListByOwner(
		ctx context.Context,
		ownerID string,
		from, to *time.Time,
		category, status string,
		offset, limit int,
	) ([]*expenseDomain.Expense, error)

	// ListByCategory retrieves expenses with the given category.
	ListByCategory(ctx context.Context, category string, offset, limit int) ([]*expenseDomain.Expense, error)

	// ListByStatus retrieves expenses with the given status.
	ListByStatus(ctx context.Context, status string, offset, limit int) ([]*expenseDomain.Expense, error)

	// Delete removes an expense. Administrative operation outside the
	// processing pipeline; a queued work item referencing the deleted id is
	// handled as a permanent processing failure.
	Delete(ctx context.Context, id uuid.UUID) error
}
