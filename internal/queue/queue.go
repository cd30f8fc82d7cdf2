// Package queue defines the work queue contract used by the expense pipeline.
//
// The queue carries work items referencing expenses by id and guarantees
// at-least-once, unordered delivery: a leased item that is not acknowledged
// before its visibility deadline becomes eligible for redelivery. Consumers
// must therefore process items idempotently and must never assume ordering
// between enqueue calls and lease results.
package queue

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// WorkItem references exactly one expense awaiting processing. It has no
// persistent identity outside the queue: once acknowledged it ceases to exist.
type WorkItem struct {
	// ExpenseID is the id of the referenced expense record.
	ExpenseID uuid.UUID
	// EnqueuedAt is when the item entered the queue.
	EnqueuedAt time.Time
	// Attempts counts deliveries of this item, including the current one.
	Attempts int
}

// NewWorkItem creates a work item referencing the given expense.
func NewWorkItem(expenseID uuid.UUID) *WorkItem {
	return &WorkItem{
		ExpenseID:  expenseID,
		EnqueuedAt: time.Now().UTC(),
	}
}

// Delivery is a leased work item held by a single consumer. The lease is only
// meaningful to the consumer that obtained it and only until its visibility
// deadline passes.
type Delivery struct {
	// Item is the delivered work item.
	Item WorkItem
	// LeaseToken is the opaque, server-assigned token identifying this lease.
	LeaseToken string
	// Receipt is the backend-specific settlement handle (nil for backends
	// that settle by lease token alone). Opaque to consumers.
	Receipt any
}

// WorkQueue is the narrow interface the pipeline depends on.
//
// Implementations must provide at-least-once delivery with a bounded
// visibility window; they need not provide ordering or exactly-once semantics.
type WorkQueue interface {
	// Enqueue adds a work item to the queue.
	Enqueue(ctx context.Context, item *WorkItem) error

	// Lease blocks up to maxWait for a work item and claims it for the
	// configured lease duration. Returns (nil, nil) when no item became
	// available within maxWait.
	Lease(ctx context.Context, maxWait time.Duration) (*Delivery, error)

	// Ack acknowledges a delivery, permanently removing the item.
	Ack(ctx context.Context, delivery *Delivery) error

	// Release gives up a lease early so the item becomes immediately
	// redeliverable, instead of waiting out the visibility deadline. Used on
	// worker shutdown with an item still in flight.
	Release(ctx context.Context, delivery *Delivery) error
}

// NewLeaseToken generates a fresh opaque lease token.
func NewLeaseToken() string {
	return uuid.Must(uuid.NewV7()).String()
}
