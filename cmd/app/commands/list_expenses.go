package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	expenseDomain "github.com/allisson/expenses/internal/expense/domain"
	expenseUseCase "github.com/allisson/expenses/internal/expense/usecase"
)

// RunListExpenses lists expenses across all owners by status or category.
// This is an administrative query surface; the HTTP API only exposes
// owner-scoped listings.
func RunListExpenses(
	ctx context.Context,
	useCase expenseUseCase.ExpenseUseCase,
	logger *slog.Logger,
	status string,
	category string,
	offset, limit int,
	format string,
	io IOTuple,
) error {
	if status == "" && category == "" {
		return fmt.Errorf("either --status or --category is required")
	}
	if status != "" && category != "" {
		return fmt.Errorf("--status and --category are mutually exclusive")
	}

	var expenses []*expenseDomain.Expense
	var err error

	if status != "" {
		expenses, err = useCase.ListByStatus(ctx, status, offset, limit)
	} else {
		expenses, err = useCase.ListByCategory(ctx, category, offset, limit)
	}
	if err != nil {
		return fmt.Errorf("failed to list expenses: %w", err)
	}

	if format == "json" {
		outputExpensesJSON(expenses, io.Writer)
	} else {
		outputExpensesText(expenses, io.Writer)
	}

	logger.Info("expenses listed",
		slog.String("status", status),
		slog.String("category", category),
		slog.Int("count", len(expenses)),
	)

	return nil
}

// outputExpensesText outputs expenses in human-readable text format.
func outputExpensesText(expenses []*expenseDomain.Expense, writer io.Writer) {
	if len(expenses) == 0 {
		_, _ = fmt.Fprintln(writer, "No expenses found")
		return
	}

	for _, expense := range expenses {
		_, _ = fmt.Fprintf(
			writer,
			"%s  %-9s  %12s  %s  %s\n",
			expense.ID.String(),
			expense.Status,
			expense.Amount.String(),
			expense.OwnerID,
			expense.Description,
		)
	}
	_, _ = fmt.Fprintf(writer, "\nTotal: %d\n", len(expenses))
}

// outputExpensesJSON outputs expenses in JSON format for machine consumption.
func outputExpensesJSON(expenses []*expenseDomain.Expense, writer io.Writer) {
	jsonBytes, err := json.MarshalIndent(expenses, "", "  ")
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "failed to marshal JSON: %v\n", err)
		return
	}

	_, _ = fmt.Fprintln(writer, string(jsonBytes))
}
