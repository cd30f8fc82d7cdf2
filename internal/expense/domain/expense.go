// Package domain defines the core domain model for the expense pipeline.
// An expense is written once at creation, advanced to its terminal status
// exactly once by the processing worker, and never mutated otherwise.
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status represents the processing status of an expense.
type Status string

const (
	// StatusPending is the initial status assigned at ingestion; the expense
	// has been persisted but not yet picked up by the processing worker.
	StatusPending Status = "PENDING"
	// StatusProcessed is the terminal status; the transition is monotone and
	// applying it to an already processed expense is a no-op.
	StatusProcessed Status = "PROCESSED"
)

// Expense represents a durable expense record owned by a single principal.
type Expense struct {
	// ID is the unique identifier, assigned at ingestion and immutable. It is
	// the sole correlation key between the record store and the work queue.
	ID uuid.UUID
	// OwnerID identifies the authenticated principal that created the expense.
	// It is supplied by the authentication collaborator, never by the client.
	OwnerID string
	// Description is free-form text describing the expense.
	Description string
	// Amount is the monetary value. Decimal, never a binary float.
	Amount decimal.Decimal
	// Category is an opaque client-supplied grouping label.
	Category string
	// OccurredAt is when the expense happened, as reported by the caller.
	// Distinct from the bookkeeping timestamps below.
	OccurredAt time.Time
	// Status is the processing status (PENDING until the worker advances it).
	Status Status
	// ReceiptReference is an opaque pointer to a stored receipt (e.g., an URL).
	ReceiptReference string
	// Notes is free-form supplementary text.
	Notes string
	// CreatedAt is the UTC timestamp when the record was created; immutable.
	CreatedAt time.Time
	// UpdatedAt is refreshed on every mutation.
	UpdatedAt time.Time
}

// NewExpense creates a pending expense with a fresh UUIDv7 id and bookkeeping
// timestamps set to now.
func NewExpense(
	ownerID string,
	description string,
	amount decimal.Decimal,
	category string,
	occurredAt time.Time,
	receiptReference string,
	notes string,
) *Expense {
	now := time.Now().UTC()
	return &Expense{
		ID:               uuid.Must(uuid.NewV7()),
		OwnerID:          ownerID,
		Description:      description,
		Amount:           amount,
		Category:         category,
		OccurredAt:       occurredAt,
		Status:           StatusPending,
		ReceiptReference: receiptReference,
		Notes:            notes,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// MarkProcessed advances the expense to PROCESSED and refreshes UpdatedAt.
// Returns false without touching the record when the expense is already
// processed, which makes at-least-once redelivery safe: a stale worker racing
// a redelivered item can only repeat the same terminal value.
func (e *Expense) MarkProcessed(now time.Time) bool {
	if e.Status == StatusProcessed {
		return false
	}
	e.Status = StatusProcessed
	e.UpdatedAt = now.UTC()
	return true
}

// IsValidStatus reports whether s is a known expense status.
func IsValidStatus(s string) bool {
	switch Status(s) {
	case StatusPending, StatusProcessed:
		return true
	}
	return false
}
