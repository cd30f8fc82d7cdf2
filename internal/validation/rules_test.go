package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "github.com/allisson/expenses/internal/errors"
)

func TestDecimalAmount(t *testing.T) {
	tests := []struct {
		name      string
		value     string
		shouldErr bool
	}{
		{name: "integer amount", value: "150"},
		{name: "decimal amount", value: "150.75"},
		{name: "zero", value: "0"},
		{name: "high precision", value: "0.000001"},
		{name: "negative amount", value: "-5.00", shouldErr: true},
		{name: "not a number", value: "abc", shouldErr: true},
		// Empty values are skipped by string rules; Required covers them.
		{name: "empty string is skipped", value: ""},
		{name: "scientific notation is accepted", value: "1e2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := DecimalAmount.Validate(tt.value)
			if tt.shouldErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestExpenseStatus(t *testing.T) {
	assert.NoError(t, ExpenseStatus.Validate("PENDING"))
	assert.NoError(t, ExpenseStatus.Validate("PROCESSED"))
	assert.Error(t, ExpenseStatus.Validate("FAILED"))
	assert.Error(t, ExpenseStatus.Validate("pending"))
}

func TestNoWhitespace(t *testing.T) {
	assert.NoError(t, NoWhitespace.Validate("food"))
	assert.Error(t, NoWhitespace.Validate(" food"))
	assert.Error(t, NoWhitespace.Validate("food "))
}

func TestNotBlank(t *testing.T) {
	assert.NoError(t, NotBlank.Validate("x"))
	assert.Error(t, NotBlank.Validate("   "))
}

func TestWrapValidationError(t *testing.T) {
	assert.NoError(t, WrapValidationError(nil))

	err := WrapValidationError(assert.AnError)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	assert.Contains(t, err.Error(), assert.AnError.Error())
}
