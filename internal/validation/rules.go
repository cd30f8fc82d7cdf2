// Package validation provides custom validation rules for the application.
package validation

import (
	"strings"

	validation "github.com/jellydator/validation"
	"github.com/shopspring/decimal"

	apperrors "github.com/allisson/expenses/internal/errors"
	expenseDomain "github.com/allisson/expenses/internal/expense/domain"
)

// WrapValidationError wraps validation errors as domain ErrInvalidInput
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// DecimalAmount validates that a string parses as a non-negative decimal.
// Amounts are carried as strings on the wire to avoid binary float rounding.
var DecimalAmount = validation.NewStringRuleWithError(
	func(s string) bool {
		amount, err := decimal.NewFromString(s)
		if err != nil {
			return false
		}
		return !amount.IsNegative()
	},
	validation.NewError("validation_decimal_amount", "must be a non-negative decimal number"),
)

// ExpenseStatus validates that a string is a known expense status.
var ExpenseStatus = validation.NewStringRuleWithError(
	expenseDomain.IsValidStatus,
	validation.NewError("validation_expense_status", "must be a valid expense status"),
)

// NoWhitespace validates that string doesn't contain leading/trailing whitespace
var NoWhitespace = validation.NewStringRuleWithError(
	func(s string) bool {
		return s == strings.TrimSpace(s)
	},
	validation.NewError("validation_no_whitespace", "must not contain leading or trailing whitespace"),
)

// NotBlank validates that a string is not empty after trimming whitespace
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.TrimSpace(s) != ""
	},
	validation.NewError("validation_not_blank", "must not be blank"),
)
