package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	expenseDomain "github.com/allisson/expenses/internal/expense/domain"
	expenseUseCase "github.com/allisson/expenses/internal/expense/usecase"
)

func newTestExpense(ownerID string, occurredAt time.Time) *expenseDomain.Expense {
	return expenseDomain.NewExpense(
		ownerID,
		"team lunch",
		decimal.RequireFromString("42.50"),
		"meals",
		occurredAt,
		"https://receipts.example.com/r/1",
		"",
	)
}

// runExpenseRepositorySuite exercises the shared repository contract against a
// real database. cleanup truncates all tables and runs before every subtest.
func runExpenseRepositorySuite(
	t *testing.T,
	repo expenseUseCase.ExpenseRepository,
	cleanup func(),
) {
	ctx := context.Background()

	t.Run("CreateAndGetByID", func(t *testing.T) {
		cleanup()

		expense := newTestExpense("u1", time.Now().UTC().Add(-time.Hour))
		require.NoError(t, repo.Create(ctx, expense))

		got, err := repo.GetByID(ctx, expense.ID)
		require.NoError(t, err)

		assert.Equal(t, expense.ID, got.ID)
		assert.Equal(t, expense.OwnerID, got.OwnerID)
		assert.Equal(t, expense.Description, got.Description)
		assert.True(t, expense.Amount.Equal(got.Amount), "amount mismatch: %s != %s", expense.Amount, got.Amount)
		assert.Equal(t, expense.Category, got.Category)
		assert.Equal(t, expenseDomain.StatusPending, got.Status)
		assert.Equal(t, expense.ReceiptReference, got.ReceiptReference)
		assert.WithinDuration(t, expense.OccurredAt, got.OccurredAt, time.Second)
		assert.WithinDuration(t, expense.CreatedAt, got.CreatedAt, time.Second)
	})

	t.Run("GetByIDNotFound", func(t *testing.T) {
		cleanup()

		_, err := repo.GetByID(ctx, uuid.Must(uuid.NewV7()))
		assert.ErrorIs(t, err, expenseDomain.ErrExpenseNotFound)
	})

	t.Run("Update", func(t *testing.T) {
		cleanup()

		expense := newTestExpense("u1", time.Now().UTC())
		require.NoError(t, repo.Create(ctx, expense))

		require.True(t, expense.MarkProcessed(time.Now()))
		require.NoError(t, repo.Update(ctx, expense))

		got, err := repo.GetByID(ctx, expense.ID)
		require.NoError(t, err)
		assert.Equal(t, expenseDomain.StatusProcessed, got.Status)
	})

	t.Run("UpdateNotFound", func(t *testing.T) {
		cleanup()

		expense := newTestExpense("u1", time.Now().UTC())
		err := repo.Update(ctx, expense)
		assert.ErrorIs(t, err, expenseDomain.ErrExpenseNotFound)
	})

	t.Run("ListByOwner", func(t *testing.T) {
		cleanup()

		base := time.Now().UTC().Add(-24 * time.Hour)
		var created []*expenseDomain.Expense
		for i := 0; i < 3; i++ {
			expense := newTestExpense("u1", base.Add(time.Duration(i)*time.Hour))
			require.NoError(t, repo.Create(ctx, expense))
			created = append(created, expense)
		}
		other := newTestExpense("u2", base)
		require.NoError(t, repo.Create(ctx, other))

		got, err := repo.ListByOwner(ctx, "u1", nil, nil, "", "", 0, 10)
		require.NoError(t, err)
		require.Len(t, got, 3)

		// Ordered by occurrence time, oldest first.
		assert.Equal(t, created[0].ID, got[0].ID)
		assert.Equal(t, created[1].ID, got[1].ID)
		assert.Equal(t, created[2].ID, got[2].ID)
	})

	t.Run("ListByOwnerDateRange", func(t *testing.T) {
		cleanup()

		base := time.Now().UTC().Add(-24 * time.Hour)
		var created []*expenseDomain.Expense
		for i := 0; i < 3; i++ {
			expense := newTestExpense("u1", base.Add(time.Duration(i)*time.Hour))
			require.NoError(t, repo.Create(ctx, expense))
			created = append(created, expense)
		}

		from := base.Add(30 * time.Minute)
		to := base.Add(90 * time.Minute)

		got, err := repo.ListByOwner(ctx, "u1", &from, &to, "", "", 0, 10)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, created[1].ID, got[0].ID)
	})

	t.Run("ListByOwnerPagination", func(t *testing.T) {
		cleanup()

		base := time.Now().UTC().Add(-24 * time.Hour)
		var created []*expenseDomain.Expense
		for i := 0; i < 5; i++ {
			expense := newTestExpense("u1", base.Add(time.Duration(i)*time.Hour))
			require.NoError(t, repo.Create(ctx, expense))
			created = append(created, expense)
		}

		got, err := repo.ListByOwner(ctx, "u1", nil, nil, "", "", 2, 2)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, created[2].ID, got[0].ID)
		assert.Equal(t, created[3].ID, got[1].ID)
	})

	t.Run("ListByOwnerCategoryAndStatusFilters", func(t *testing.T) {
		cleanup()

		meals := newTestExpense("u1", time.Now().UTC())
		require.NoError(t, repo.Create(ctx, meals))

		travel := newTestExpense("u1", time.Now().UTC())
		travel.Category = "travel"
		travel.MarkProcessed(time.Now())
		require.NoError(t, repo.Create(ctx, travel))

		got, err := repo.ListByOwner(ctx, "u1", nil, nil, "travel", "", 0, 10)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, travel.ID, got[0].ID)

		got, err = repo.ListByOwner(ctx, "u1", nil, nil, "", expenseDomain.StatusPending, 0, 10)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, meals.ID, got[0].ID)

		got, err = repo.ListByOwner(ctx, "u1", nil, nil, "travel", expenseDomain.StatusPending, 0, 10)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("ListByCategory", func(t *testing.T) {
		cleanup()

		meals := newTestExpense("u1", time.Now().UTC())
		require.NoError(t, repo.Create(ctx, meals))

		travel := newTestExpense("u1", time.Now().UTC())
		travel.Category = "travel"
		require.NoError(t, repo.Create(ctx, travel))

		got, err := repo.ListByCategory(ctx, "travel", 0, 10)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, travel.ID, got[0].ID)
	})

	t.Run("ListByStatus", func(t *testing.T) {
		cleanup()

		pending := newTestExpense("u1", time.Now().UTC())
		require.NoError(t, repo.Create(ctx, pending))

		processed := newTestExpense("u1", time.Now().UTC())
		processed.MarkProcessed(time.Now())
		require.NoError(t, repo.Create(ctx, processed))

		got, err := repo.ListByStatus(ctx, expenseDomain.StatusProcessed, 0, 10)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, processed.ID, got[0].ID)
	})

	t.Run("ListPendingOlderThan", func(t *testing.T) {
		cleanup()

		stale := newTestExpense("u1", time.Now().UTC())
		stale.CreatedAt = time.Now().UTC().Add(-time.Hour)
		require.NoError(t, repo.Create(ctx, stale))

		fresh := newTestExpense("u1", time.Now().UTC())
		require.NoError(t, repo.Create(ctx, fresh))

		staleProcessed := newTestExpense("u1", time.Now().UTC())
		staleProcessed.CreatedAt = time.Now().UTC().Add(-time.Hour)
		staleProcessed.MarkProcessed(time.Now())
		require.NoError(t, repo.Create(ctx, staleProcessed))

		cutoff := time.Now().UTC().Add(-30 * time.Minute)
		got, err := repo.ListPendingOlderThan(ctx, cutoff, 10)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, stale.ID, got[0].ID)
	})

	t.Run("ListPendingOlderThanLimit", func(t *testing.T) {
		cleanup()

		for i := 0; i < 3; i++ {
			expense := newTestExpense(fmt.Sprintf("u%d", i), time.Now().UTC())
			expense.CreatedAt = time.Now().UTC().Add(-time.Hour)
			require.NoError(t, repo.Create(ctx, expense))
		}

		got, err := repo.ListPendingOlderThan(ctx, time.Now().UTC(), 2)
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("Delete", func(t *testing.T) {
		cleanup()

		expense := newTestExpense("u1", time.Now().UTC())
		require.NoError(t, repo.Create(ctx, expense))

		require.NoError(t, repo.Delete(ctx, expense.ID))

		_, err := repo.GetByID(ctx, expense.ID)
		assert.ErrorIs(t, err, expenseDomain.ErrExpenseNotFound)
	})

	t.Run("DeleteNotFound", func(t *testing.T) {
		cleanup()

		err := repo.Delete(ctx, uuid.Must(uuid.NewV7()))
		assert.ErrorIs(t, err, expenseDomain.ErrExpenseNotFound)
	})
}
