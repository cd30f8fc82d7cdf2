// Package domain defines core domain models and errors for expenses.
package domain

import (
	"github.com/allisson/expenses/internal/errors"
)

// Expense-specific error definitions.
var (
	// ErrExpenseNotFound indicates no expense exists with the requested id.
	ErrExpenseNotFound = errors.Wrap(errors.ErrNotFound, "expense not found")

	// ErrInvalidAmount indicates the amount is not a valid non-negative decimal.
	ErrInvalidAmount = errors.Wrap(errors.ErrInvalidInput, "amount must be a non-negative decimal")

	// ErrEnqueueFailed indicates the expense was persisted but its work item
	// could not be enqueued. The record stays PENDING with no queue entry; the
	// reconciliation sweep is responsible for repairing it.
	ErrEnqueueFailed = errors.Wrap(errors.ErrInconsistent, "expense persisted but enqueue failed")
)
