package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/expenses/internal/queue"
)

// testLeaseDuration is kept short so lease-expiry tests finish quickly.
const testLeaseDuration = time.Second

// runWorkQueueSuite exercises the shared work queue contract against a real
// database. cleanup truncates all tables and runs before every subtest.
func runWorkQueueSuite(t *testing.T, workQueue queue.WorkQueue, cleanup func()) {
	ctx := context.Background()

	t.Run("EnqueueAndLease", func(t *testing.T) {
		cleanup()

		item := queue.NewWorkItem(uuid.Must(uuid.NewV7()))
		require.NoError(t, workQueue.Enqueue(ctx, item))

		delivery, err := workQueue.Lease(ctx, time.Second)
		require.NoError(t, err)
		require.NotNil(t, delivery)

		assert.Equal(t, item.ExpenseID, delivery.Item.ExpenseID)
		assert.Equal(t, 1, delivery.Item.Attempts)
		assert.NotEmpty(t, delivery.LeaseToken)
	})

	t.Run("LeaseEmptyQueue", func(t *testing.T) {
		cleanup()

		delivery, err := workQueue.Lease(ctx, 100*time.Millisecond)
		require.NoError(t, err)
		assert.Nil(t, delivery)
	})

	t.Run("LeaseCanceledContext", func(t *testing.T) {
		cleanup()

		canceledCtx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := workQueue.Lease(canceledCtx, time.Second)
		assert.Error(t, err)
	})

	t.Run("LeasedItemIsInvisible", func(t *testing.T) {
		cleanup()

		item := queue.NewWorkItem(uuid.Must(uuid.NewV7()))
		require.NoError(t, workQueue.Enqueue(ctx, item))

		delivery, err := workQueue.Lease(ctx, time.Second)
		require.NoError(t, err)
		require.NotNil(t, delivery)

		// The item is claimed; a second lease sees an empty queue.
		second, err := workQueue.Lease(ctx, 100*time.Millisecond)
		require.NoError(t, err)
		assert.Nil(t, second)
	})

	t.Run("LeaseOldestFirst", func(t *testing.T) {
		cleanup()

		older := queue.NewWorkItem(uuid.Must(uuid.NewV7()))
		older.EnqueuedAt = time.Now().UTC().Add(-time.Minute)
		require.NoError(t, workQueue.Enqueue(ctx, older))

		newer := queue.NewWorkItem(uuid.Must(uuid.NewV7()))
		require.NoError(t, workQueue.Enqueue(ctx, newer))

		delivery, err := workQueue.Lease(ctx, time.Second)
		require.NoError(t, err)
		require.NotNil(t, delivery)
		assert.Equal(t, older.ExpenseID, delivery.Item.ExpenseID)
	})

	t.Run("AckRemovesItem", func(t *testing.T) {
		cleanup()

		item := queue.NewWorkItem(uuid.Must(uuid.NewV7()))
		require.NoError(t, workQueue.Enqueue(ctx, item))

		delivery, err := workQueue.Lease(ctx, time.Second)
		require.NoError(t, err)
		require.NotNil(t, delivery)

		require.NoError(t, workQueue.Ack(ctx, delivery))

		// The item is gone even after the lease would have expired.
		time.Sleep(testLeaseDuration + 200*time.Millisecond)
		redelivered, err := workQueue.Lease(ctx, 100*time.Millisecond)
		require.NoError(t, err)
		assert.Nil(t, redelivered)
	})

	t.Run("ReleaseRedeliversImmediately", func(t *testing.T) {
		cleanup()

		item := queue.NewWorkItem(uuid.Must(uuid.NewV7()))
		require.NoError(t, workQueue.Enqueue(ctx, item))

		delivery, err := workQueue.Lease(ctx, time.Second)
		require.NoError(t, err)
		require.NotNil(t, delivery)

		require.NoError(t, workQueue.Release(ctx, delivery))

		redelivered, err := workQueue.Lease(ctx, time.Second)
		require.NoError(t, err)
		require.NotNil(t, redelivered)

		assert.Equal(t, item.ExpenseID, redelivered.Item.ExpenseID)
		assert.Equal(t, 2, redelivered.Item.Attempts)
		assert.NotEqual(t, delivery.LeaseToken, redelivered.LeaseToken)
	})

	t.Run("ExpiredLeaseIsRedelivered", func(t *testing.T) {
		cleanup()

		item := queue.NewWorkItem(uuid.Must(uuid.NewV7()))
		require.NoError(t, workQueue.Enqueue(ctx, item))

		delivery, err := workQueue.Lease(ctx, time.Second)
		require.NoError(t, err)
		require.NotNil(t, delivery)

		// Let the visibility deadline pass without acknowledging.
		time.Sleep(testLeaseDuration + 200*time.Millisecond)

		redelivered, err := workQueue.Lease(ctx, time.Second)
		require.NoError(t, err)
		require.NotNil(t, redelivered)

		assert.Equal(t, item.ExpenseID, redelivered.Item.ExpenseID)
		assert.Equal(t, 2, redelivered.Item.Attempts)
	})
}
