// Package http provides HTTP handlers for the expense API.
// All routes are owner-scoped: the owner comes from the authenticated client
// and a client can never read or delete another owner's expenses.
package http

import (
	"fmt"
	"net/http"
	"time"

	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	authHTTP "github.com/allisson/expenses/internal/auth/http"
	apperrors "github.com/allisson/expenses/internal/errors"
	expenseDomain "github.com/allisson/expenses/internal/expense/domain"
	"github.com/allisson/expenses/internal/expense/http/dto"
	expenseUseCase "github.com/allisson/expenses/internal/expense/usecase"
	"github.com/allisson/expenses/internal/httputil"
	customValidation "github.com/allisson/expenses/internal/validation"
)

// ExpenseHandler handles HTTP requests for expense operations.
type ExpenseHandler struct {
	expenseUseCase expenseUseCase.ExpenseUseCase
	logger         *slog.Logger
}

// NewExpenseHandler creates a new expense handler with required dependencies.
func NewExpenseHandler(useCase expenseUseCase.ExpenseUseCase, logger *slog.Logger) *ExpenseHandler {
	return &ExpenseHandler{
		expenseUseCase: useCase,
		logger:         logger,
	}
}

// SubmitHandler records a new expense and schedules it for processing.
// POST /v1/expenses
// Returns 201 Created with the PENDING expense; processing happens
// asynchronously and the status advances out of band.
func (h *ExpenseHandler) SubmitHandler(c *gin.Context) {
	client, ok := authHTTP.GetClient(c.Request.Context())
	if !ok || client == nil {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	var req dto.SubmitExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	expense, err := h.expenseUseCase.Submit(c.Request.Context(), expenseUseCase.SubmitExpenseInput{
		OwnerID:          client.OwnerID,
		Description:      req.Description,
		Amount:           req.Amount,
		Category:         req.Category,
		OccurredAt:       req.OccurredAt,
		ReceiptReference: req.ReceiptReference,
		Notes:            req.Notes,
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapExpenseToResponse(expense))
}

// GetHandler retrieves a single expense by id.
// GET /v1/expenses/:id
// Expenses of other owners are reported as 404, not 403, so ids cannot be
// probed.
func (h *ExpenseHandler) GetHandler(c *gin.Context) {
	client, ok := authHTTP.GetClient(c.Request.Context())
	if !ok || client == nil {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleBadRequestGin(c, fmt.Errorf("invalid expense id: %w", err), h.logger)
		return
	}

	expense, err := h.expenseUseCase.GetByID(c.Request.Context(), id)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	if expense.OwnerID != client.OwnerID {
		httputil.HandleErrorGin(c, expenseDomain.ErrExpenseNotFound, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapExpenseToResponse(expense))
}

// ListHandler retrieves the authenticated owner's expenses ordered by
// occurrence time, optionally narrowed by category and status.
// GET /v1/expenses?start=RFC3339&end=RFC3339&category=&status=&offset=N&limit=N
func (h *ExpenseHandler) ListHandler(c *gin.Context) {
	client, ok := authHTTP.GetClient(c.Request.Context())
	if !ok || client == nil {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	from, err := parseTimeQuery(c, "start")
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	to, err := parseTimeQuery(c, "end")
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	expenses, err := h.expenseUseCase.ListByOwner(
		c.Request.Context(),
		client.OwnerID,
		from,
		to,
		c.Query("category"),
		c.Query("status"),
		offset,
		limit,
	)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapExpensesToListResponse(expenses, offset, limit))
}

// DeleteHandler removes one of the owner's expenses.
// DELETE /v1/expenses/:id
// Returns 204 No Content. A work item still referencing the deleted id is
// settled by the worker as a permanent failure.
func (h *ExpenseHandler) DeleteHandler(c *gin.Context) {
	client, ok := authHTTP.GetClient(c.Request.Context())
	if !ok || client == nil {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleBadRequestGin(c, fmt.Errorf("invalid expense id: %w", err), h.logger)
		return
	}

	expense, err := h.expenseUseCase.GetByID(c.Request.Context(), id)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}
	if expense.OwnerID != client.OwnerID {
		httputil.HandleErrorGin(c, expenseDomain.ErrExpenseNotFound, h.logger)
		return
	}

	if err := h.expenseUseCase.Delete(c.Request.Context(), id); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

// parseTimeQuery parses an optional RFC 3339 time query parameter.
func parseTimeQuery(c *gin.Context, name string) (*time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s parameter: must be an RFC 3339 timestamp", name)
	}
	return &t, nil
}
