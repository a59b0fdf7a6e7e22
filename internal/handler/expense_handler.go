package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/kvharsha/fintrack/fintrack-backend/internal/domain"
	"github.com/kvharsha/fintrack/fintrack-backend/internal/middleware"
	"github.com/kvharsha/fintrack/fintrack-backend/internal/service"
)

// ExpenseHandler handles expense-related HTTP requests
type ExpenseHandler struct {
	expenseService *service.ExpenseService
}

// NewExpenseHandler creates a new ExpenseHandler
func NewExpenseHandler(expenseService *service.ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{expenseService: expenseService}
}

// CreateExpenseRequest represents the create expense request body
type CreateExpenseRequest struct {
	Amount      string  `json:"amount"`
	Category    string  `json:"category"`
	Date        *string `json:"date,omitempty"`
	Description string  `json:"description"`
	Type        string  `json:"type"`
}

// CreateExpense records a new expense against the budget
func (h *ExpenseHandler) CreateExpense(c echo.Context) error {
	userID := middleware.GetUserID(c)

	var req CreateExpenseRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return NewValidationError(c, "Invalid amount", []ValidationError{
			{Field: "amount", Message: "Must be a valid decimal number"},
		})
	}

	var date time.Time
	if req.Date != nil && *req.Date != "" {
		date, err = time.Parse("2006-01-02", *req.Date)
		if err != nil {
			return NewValidationError(c, "Invalid date", []ValidationError{
				{Field: "date", Message: "Must be in YYYY-MM-DD format"},
			})
		}
	}

	result, err := h.expenseService.AddExpense(c.Request().Context(), userID, service.AddExpenseInput{
		Amount:      amount,
		Category:    req.Category,
		Date:        date,
		Description: req.Description,
		Type:        domain.ExpenseType(req.Type),
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidAmount) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "amount", Message: "Amount must be positive"},
			})
		}
		log.Error().Err(err).Msg("Failed to create expense")
		return NewInternalError(c, "Failed to create expense")
	}

	return c.JSON(http.StatusCreated, result)
}

// GetExpenses returns all of the user's expenses
func (h *ExpenseHandler) GetExpenses(c echo.Context) error {
	userID := middleware.GetUserID(c)

	expenses, err := h.expenseService.ListExpenses(userID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list expenses")
		return NewInternalError(c, "Failed to list expenses")
	}
	if expenses == nil {
		expenses = []*domain.Expense{}
	}

	return c.JSON(http.StatusOK, expenses)
}

// GetRecentExpenses returns the most recent expenses
func (h *ExpenseHandler) GetRecentExpenses(c echo.Context) error {
	userID := middleware.GetUserID(c)

	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return NewValidationError(c, "Invalid limit", []ValidationError{
				{Field: "limit", Message: "Must be an integer"},
			})
		}
		limit = parsed
	}

	expenses, err := h.expenseService.RecentExpenses(userID, limit)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list recent expenses")
		return NewInternalError(c, "Failed to list expenses")
	}
	if expenses == nil {
		expenses = []*domain.Expense{}
	}

	return c.JSON(http.StatusOK, expenses)
}

// GetCategoryTotals returns per-category spend totals
func (h *ExpenseHandler) GetCategoryTotals(c echo.Context) error {
	userID := middleware.GetUserID(c)

	totals, err := h.expenseService.CategoryTotals(userID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to aggregate categories")
		return NewInternalError(c, "Failed to aggregate categories")
	}
	if totals == nil {
		totals = []*domain.CategoryTotal{}
	}

	return c.JSON(http.StatusOK, totals)
}

// DeleteExpense removes an expense and credits its bucket back
func (h *ExpenseHandler) DeleteExpense(c echo.Context) error {
	userID := middleware.GetUserID(c)

	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid expense ID", nil)
	}

	if err := h.expenseService.DeleteExpense(c.Request().Context(), userID, id); err != nil {
		if errors.Is(err, domain.ErrExpenseNotFound) {
			return NewNotFoundError(c, "Expense not found")
		}
		log.Error().Err(err).Msg("Failed to delete expense")
		return NewInternalError(c, "Failed to delete expense")
	}

	return c.NoContent(http.StatusNoContent)
}

// parseIDParam parses the :id route parameter
func parseIDParam(c echo.Context) (int32, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 32)
	if err != nil {
		return 0, err
	}
	return int32(id), nil
}
