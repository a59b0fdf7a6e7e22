package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/kvharsha/fintrack/fintrack-backend/internal/domain"
	"github.com/kvharsha/fintrack/fintrack-backend/internal/middleware"
	"github.com/kvharsha/fintrack/fintrack-backend/internal/service"
)

// BudgetHandler handles budget state HTTP requests
type BudgetHandler struct {
	budgetService *service.BudgetService
}

// NewBudgetHandler creates a new BudgetHandler
func NewBudgetHandler(budgetService *service.BudgetService) *BudgetHandler {
	return &BudgetHandler{budgetService: budgetService}
}

// SetIncomeRequest represents the set income request body
type SetIncomeRequest struct {
	Income string `json:"income"`
}

// SetSplitRequest represents the set split request body
type SetSplitRequest struct {
	NeedsPct   string `json:"needsPct"`
	WantsPct   string `json:"wantsPct"`
	SavingsPct string `json:"savingsPct"`
}

// GetState returns the current budget state, applying the monthly rollover
// if the month has changed since it was last loaded.
func (h *BudgetHandler) GetState(c echo.Context) error {
	userID := middleware.GetUserID(c)

	state, err := h.budgetService.GetState(c.Request().Context(), userID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load budget state")
		return NewInternalError(c, "Failed to load budget")
	}

	return c.JSON(http.StatusOK, state)
}

// SetIncome sets the monthly income and resets the allocation
func (h *BudgetHandler) SetIncome(c echo.Context) error {
	userID := middleware.GetUserID(c)

	var req SetIncomeRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	income, err := decimal.NewFromString(req.Income)
	if err != nil {
		return NewValidationError(c, "Invalid income", []ValidationError{
			{Field: "income", Message: "Must be a valid decimal number"},
		})
	}

	state, err := h.budgetService.SetIncome(c.Request().Context(), userID, income)
	if err != nil {
		log.Error().Err(err).Msg("Failed to set income")
		return NewInternalError(c, "Failed to set income")
	}

	return c.JSON(http.StatusOK, state)
}

// SetSplit sets custom bucket percentages and resets the allocation
func (h *BudgetHandler) SetSplit(c echo.Context) error {
	userID := middleware.GetUserID(c)

	var req SetSplitRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	split, vErr := parseSplit(req)
	if vErr != nil {
		return NewValidationError(c, "Invalid split", []ValidationError{*vErr})
	}

	state, err := h.budgetService.SetSplit(c.Request().Context(), userID, split)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidSplit) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "split", Message: "Percentages must be non-negative and sum to 100"},
			})
		}
		log.Error().Err(err).Msg("Failed to set split")
		return NewInternalError(c, "Failed to set split")
	}

	return c.JSON(http.StatusOK, state)
}

// ProcessRemainder rolls the current leftovers forward immediately
func (h *BudgetHandler) ProcessRemainder(c echo.Context) error {
	userID := middleware.GetUserID(c)

	state, err := h.budgetService.ProcessRemainder(c.Request().Context(), userID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to process remainder")
		return NewInternalError(c, "Failed to process remainder")
	}

	return c.JSON(http.StatusOK, state)
}

func parseSplit(req SetSplitRequest) (domain.Split, *ValidationError) {
	var split domain.Split
	fields := []struct {
		name  string
		raw   string
		value *decimal.Decimal
	}{
		{"needsPct", req.NeedsPct, &split.NeedsPct},
		{"wantsPct", req.WantsPct, &split.WantsPct},
		{"savingsPct", req.SavingsPct, &split.SavingsPct},
	}
	for _, f := range fields {
		parsed, err := decimal.NewFromString(f.raw)
		if err != nil {
			return split, &ValidationError{Field: f.name, Message: "Must be a valid decimal number"}
		}
		*f.value = parsed
	}
	return split, nil
}
