package worker

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	apperrors "github.com/allisson/expenses/internal/errors"
	expenseDomain "github.com/allisson/expenses/internal/expense/domain"
	"github.com/allisson/expenses/internal/metrics"
	"github.com/allisson/expenses/internal/queue"
)

// chanQueue is an in-memory WorkQueue backed by a channel. Release puts the
// item back, matching the redelivery behavior of the real backends.
type chanQueue struct {
	items chan *queue.WorkItem

	mu       sync.Mutex
	acked    int
	released int
}

func newChanQueue(capacity int) *chanQueue {
	return &chanQueue{items: make(chan *queue.WorkItem, capacity)}
}

func (q *chanQueue) Enqueue(ctx context.Context, item *queue.WorkItem) error {
	q.items <- item
	return nil
}

func (q *chanQueue) Lease(ctx context.Context, maxWait time.Duration) (*queue.Delivery, error) {
	timer := time.NewTimer(maxWait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
		return nil, nil
	case item := <-q.items:
		item.Attempts++
		return &queue.Delivery{Item: *item, LeaseToken: queue.NewLeaseToken()}, nil
	}
}

func (q *chanQueue) Ack(ctx context.Context, delivery *queue.Delivery) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.acked++
	return nil
}

func (q *chanQueue) Release(ctx context.Context, delivery *queue.Delivery) error {
	q.mu.Lock()
	q.released++
	q.mu.Unlock()
	item := delivery.Item
	q.items <- &item
	return nil
}

func (q *chanQueue) ackCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.acked
}

// memStore is an in-memory ExpenseStore with injectable failures.
type memStore struct {
	mu        sync.Mutex
	expenses  map[uuid.UUID]*expenseDomain.Expense
	updateErr error
	updates   int
}

func newMemStore() *memStore {
	return &memStore{expenses: make(map[uuid.UUID]*expenseDomain.Expense)}
}

func (s *memStore) put(expense *expenseDomain.Expense) {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *expense
	s.expenses[expense.ID] = &clone
}

func (s *memStore) GetByID(ctx context.Context, id uuid.UUID) (*expenseDomain.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	expense, ok := s.expenses[id]
	if !ok {
		return nil, expenseDomain.ErrExpenseNotFound
	}
	clone := *expense
	return &clone, nil
}

func (s *memStore) Update(ctx context.Context, expense *expenseDomain.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.updateErr != nil {
		return s.updateErr
	}
	if _, ok := s.expenses[expense.ID]; !ok {
		return expenseDomain.ErrExpenseNotFound
	}
	clone := *expense
	s.expenses[expense.ID] = &clone
	s.updates++
	return nil
}

func (s *memStore) get(id uuid.UUID) *expenseDomain.Expense {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.expenses[id]
}

func (s *memStore) updateCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updates
}

func newTestExpense() *expenseDomain.Expense {
	return expenseDomain.NewExpense(
		"u1",
		"team lunch",
		decimal.RequireFromString("42.50"),
		"Food",
		time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC),
		"",
		"",
	)
}

func newTestWorker(q queue.WorkQueue, store ExpenseStore, concurrency int) *Worker {
	return New(
		q,
		store,
		slog.New(slog.DiscardHandler),
		metrics.NewNoOpBusinessMetrics(),
		concurrency,
		50*time.Millisecond,
	)
}

func TestWorker_ProcessDelivery(t *testing.T) {
	ctx := context.Background()

	t.Run("PendingExpenseTransitionsToProcessed", func(t *testing.T) {
		q := newChanQueue(1)
		store := newMemStore()
		expense := newTestExpense()
		store.put(expense)
		w := newTestWorker(q, store, 1)

		require.NoError(t, q.Enqueue(ctx, queue.NewWorkItem(expense.ID)))
		delivery, err := q.Lease(ctx, time.Second)
		require.NoError(t, err)
		require.NotNil(t, delivery)

		require.NoError(t, w.ProcessDelivery(ctx, delivery))

		stored := store.get(expense.ID)
		assert.Equal(t, expenseDomain.StatusProcessed, stored.Status)
		assert.False(t, stored.UpdatedAt.Before(stored.CreatedAt))
		assert.Equal(t, 1, q.ackCount())
	})

	t.Run("DuplicateDeliveryIsNoOp", func(t *testing.T) {
		q := newChanQueue(2)
		store := newMemStore()
		expense := newTestExpense()
		store.put(expense)
		w := newTestWorker(q, store, 1)

		// Two deliveries referencing the same expense.
		require.NoError(t, q.Enqueue(ctx, queue.NewWorkItem(expense.ID)))
		require.NoError(t, q.Enqueue(ctx, queue.NewWorkItem(expense.ID)))

		first, err := q.Lease(ctx, time.Second)
		require.NoError(t, err)
		require.NoError(t, w.ProcessDelivery(ctx, first))

		processedAt := store.get(expense.ID).UpdatedAt

		second, err := q.Lease(ctx, time.Second)
		require.NoError(t, err)
		require.NoError(t, w.ProcessDelivery(ctx, second))

		// The second delivery settled without touching the record.
		stored := store.get(expense.ID)
		assert.Equal(t, expenseDomain.StatusProcessed, stored.Status)
		assert.Equal(t, processedAt, stored.UpdatedAt)
		assert.Equal(t, 1, store.updateCount())
		assert.Equal(t, 2, q.ackCount())
	})

	t.Run("MissingExpenseIsAckedAsPermanentFailure", func(t *testing.T) {
		q := newChanQueue(1)
		store := newMemStore()
		w := newTestWorker(q, store, 1)

		require.NoError(t, q.Enqueue(ctx, queue.NewWorkItem(uuid.Must(uuid.NewV7()))))
		delivery, err := q.Lease(ctx, time.Second)
		require.NoError(t, err)

		require.NoError(t, w.ProcessDelivery(ctx, delivery))
		assert.Equal(t, 1, q.ackCount())
		assert.Empty(t, q.items)
	})

	t.Run("TransientUpdateFailureReleasesLease", func(t *testing.T) {
		q := newChanQueue(1)
		store := newMemStore()
		expense := newTestExpense()
		store.put(expense)
		store.updateErr = apperrors.Wrap(apperrors.ErrTransient, "db gone")
		w := newTestWorker(q, store, 1)

		require.NoError(t, q.Enqueue(ctx, queue.NewWorkItem(expense.ID)))
		delivery, err := q.Lease(ctx, time.Second)
		require.NoError(t, err)

		err = w.ProcessDelivery(ctx, delivery)
		require.Error(t, err)

		// Not acked, released for redelivery, record still PENDING.
		assert.Equal(t, 0, q.ackCount())
		assert.Len(t, q.items, 1)
		assert.Equal(t, expenseDomain.StatusPending, store.get(expense.ID).Status)
	})

	t.Run("CanceledContextReleasesLease", func(t *testing.T) {
		q := newChanQueue(1)
		store := newMemStore()
		expense := newTestExpense()
		store.put(expense)
		w := newTestWorker(q, store, 1)

		require.NoError(t, q.Enqueue(ctx, queue.NewWorkItem(expense.ID)))
		delivery, err := q.Lease(ctx, time.Second)
		require.NoError(t, err)

		canceled, cancel := context.WithCancel(ctx)
		cancel()

		err = w.ProcessDelivery(canceled, delivery)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 0, q.ackCount())
		assert.Len(t, q.items, 1)
		assert.Equal(t, expenseDomain.StatusPending, store.get(expense.ID).Status)
	})
}

func TestWorker_Run_ConcurrentConvergence(t *testing.T) {
	defer goleak.VerifyNone(t)

	const itemCount = 25

	q := newChanQueue(itemCount * 2)
	store := newMemStore()
	w := newTestWorker(q, store, 4)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ids := make([]uuid.UUID, 0, itemCount)
	for i := 0; i < itemCount; i++ {
		expense := newTestExpense()
		store.put(expense)
		ids = append(ids, expense.ID)
		require.NoError(t, q.Enqueue(ctx, queue.NewWorkItem(expense.ID)))
		// Every other item is delivered twice.
		if i%2 == 0 {
			require.NoError(t, q.Enqueue(ctx, queue.NewWorkItem(expense.ID)))
		}
	}

	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx)
	}()

	require.Eventually(t, func() bool {
		for _, id := range ids {
			if store.get(id).Status != expenseDomain.StatusProcessed {
				return false
			}
		}
		return len(q.items) == 0
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-done)

	// Each expense transitioned exactly once despite duplicate deliveries.
	assert.Equal(t, itemCount, store.updateCount())
}
