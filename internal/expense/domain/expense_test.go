package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewExpense(t *testing.T) {
	amount := decimal.RequireFromString("150.00")
	occurredAt := time.Date(2025, 3, 14, 12, 30, 0, 0, time.UTC)

	expense := NewExpense("u1", "team lunch", amount, "Food", occurredAt, "s3://receipts/1.jpg", "client visit")

	require.NotNil(t, expense)
	assert.NotEqual(t, [16]byte{}, [16]byte(expense.ID))
	assert.Equal(t, "u1", expense.OwnerID)
	assert.Equal(t, "team lunch", expense.Description)
	assert.True(t, amount.Equal(expense.Amount))
	assert.Equal(t, "Food", expense.Category)
	assert.Equal(t, occurredAt, expense.OccurredAt)
	assert.Equal(t, StatusPending, expense.Status)
	assert.Equal(t, "s3://receipts/1.jpg", expense.ReceiptReference)
	assert.Equal(t, "client visit", expense.Notes)
	assert.Equal(t, expense.CreatedAt, expense.UpdatedAt)
	assert.WithinDuration(t, time.Now().UTC(), expense.CreatedAt, time.Second)
}

func TestNewExpense_UniqueIDs(t *testing.T) {
	amount := decimal.NewFromInt(1)
	a := NewExpense("u1", "a", amount, "Misc", time.Now(), "", "")
	b := NewExpense("u1", "b", amount, "Misc", time.Now(), "", "")
	assert.NotEqual(t, a.ID, b.ID)
}

func TestExpense_MarkProcessed(t *testing.T) {
	expense := NewExpense("u1", "coffee", decimal.RequireFromString("4.50"), "Food", time.Now(), "", "")
	createdAt := expense.CreatedAt

	now := time.Now().Add(time.Minute)
	changed := expense.MarkProcessed(now)

	assert.True(t, changed)
	assert.Equal(t, StatusProcessed, expense.Status)
	assert.Equal(t, now.UTC(), expense.UpdatedAt)
	assert.Equal(t, createdAt, expense.CreatedAt)
}

func TestExpense_MarkProcessed_Idempotent(t *testing.T) {
	expense := NewExpense("u1", "coffee", decimal.RequireFromString("4.50"), "Food", time.Now(), "", "")

	first := time.Now().Add(time.Minute)
	require.True(t, expense.MarkProcessed(first))
	updatedAt := expense.UpdatedAt

	// Reapplying the transition (simulating redelivery) must be a no-op.
	changed := expense.MarkProcessed(first.Add(time.Hour))
	assert.False(t, changed)
	assert.Equal(t, StatusProcessed, expense.Status)
	assert.Equal(t, updatedAt, expense.UpdatedAt)
}

func TestExpense_StatusNeverReverts(t *testing.T) {
	expense := NewExpense("u1", "coffee", decimal.NewFromInt(5), "Food", time.Now(), "", "")

	// Any interleaving of transitions converges on PROCESSED.
	for i := 0; i < 5; i++ {
		expense.MarkProcessed(time.Now())
		assert.Equal(t, StatusProcessed, expense.Status)
	}
}

func TestIsValidStatus(t *testing.T) {
	tests := []struct {
		status string
		want   bool
	}{
		{"PENDING", true},
		{"PROCESSED", true},
		{"FAILED", false},
		{"pending", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidStatus(tt.status))
		})
	}
}
