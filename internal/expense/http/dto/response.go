package dto

import (
	"time"

	expenseDomain "github.com/allisson/expenses/internal/expense/domain"
)

// ExpenseResponse represents an expense in API responses. The amount is a
// decimal string, matching the request encoding.
type ExpenseResponse struct {
	ID               string    `json:"id"`
	OwnerID          string    `json:"owner_id"`
	Description      string    `json:"description"`
	Amount           string    `json:"amount"`
	Category         string    `json:"category,omitempty"`
	OccurredAt       time.Time `json:"occurred_at"`
	Status           string    `json:"status"`
	ReceiptReference string    `json:"receipt_reference,omitempty"`
	Notes            string    `json:"notes,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// ListExpensesResponse wraps a page of expenses.
type ListExpensesResponse struct {
	Expenses []ExpenseResponse `json:"expenses"`
	Offset   int               `json:"offset"`
	Limit    int               `json:"limit"`
}

// MapExpenseToResponse converts a domain expense to an API response.
func MapExpenseToResponse(expense *expenseDomain.Expense) ExpenseResponse {
	return ExpenseResponse{
		ID:               expense.ID.String(),
		OwnerID:          expense.OwnerID,
		Description:      expense.Description,
		Amount:           expense.Amount.String(),
		Category:         expense.Category,
		OccurredAt:       expense.OccurredAt,
		Status:           string(expense.Status),
		ReceiptReference: expense.ReceiptReference,
		Notes:            expense.Notes,
		CreatedAt:        expense.CreatedAt,
		UpdatedAt:        expense.UpdatedAt,
	}
}

// MapExpensesToListResponse converts a page of domain expenses to an API response.
func MapExpensesToListResponse(expenses []*expenseDomain.Expense, offset, limit int) ListExpensesResponse {
	responses := make([]ExpenseResponse, 0, len(expenses))
	for _, expense := range expenses {
		responses = append(responses, MapExpenseToResponse(expense))
	}
	return ListExpensesResponse{
		Expenses: responses,
		Offset:   offset,
		Limit:    limit,
	}
}
