// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	"time"

	validation "github.com/jellydator/validation"

	customValidation "github.com/allisson/expenses/internal/validation"
)

// SubmitExpenseRequest contains the parameters for submitting a new expense.
// The owner is resolved from the authenticated client, never from the body.
// The amount travels as a string to avoid binary float rounding.
type SubmitExpenseRequest struct {
	Description      string    `json:"description" binding:"required"`
	Amount           string    `json:"amount" binding:"required"`
	Category         string    `json:"category"`
	OccurredAt       time.Time `json:"occurred_at" binding:"required"`
	ReceiptReference string    `json:"receipt_reference"`
	Notes            string    `json:"notes"`
}

// Validate checks if the submit expense request is valid.
func (r *SubmitExpenseRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Description,
			validation.Required,
			customValidation.NotBlank,
			validation.Length(1, 500),
		),
		validation.Field(&r.Amount,
			validation.Required,
			customValidation.DecimalAmount,
		),
		validation.Field(&r.Category,
			validation.Length(0, 100),
			customValidation.NoWhitespace,
		),
		validation.Field(&r.OccurredAt,
			validation.Required,
		),
		validation.Field(&r.ReceiptReference,
			validation.Length(0, 1000),
		),
		validation.Field(&r.Notes,
			validation.Length(0, 2000),
		),
	)
}
