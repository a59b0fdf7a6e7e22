package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/kvharsha/fintrack/fintrack-backend/internal/domain"
	"github.com/kvharsha/fintrack/fintrack-backend/internal/middleware"
	"github.com/kvharsha/fintrack/fintrack-backend/internal/service"
)

// GoalHandler handles savings goal HTTP requests
type GoalHandler struct {
	goalService *service.GoalService
}

// NewGoalHandler creates a new GoalHandler
func NewGoalHandler(goalService *service.GoalService) *GoalHandler {
	return &GoalHandler{goalService: goalService}
}

// CreateGoalRequest represents the create goal request body
type CreateGoalRequest struct {
	Name   string `json:"name"`
	Target string `json:"target"`
}

// DepositRequest represents the goal deposit request body
type DepositRequest struct {
	Amount string `json:"amount"`
}

// CreateGoal records a new savings goal
func (h *GoalHandler) CreateGoal(c echo.Context) error {
	userID := middleware.GetUserID(c)

	var req CreateGoalRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	target, err := decimal.NewFromString(req.Target)
	if err != nil {
		return NewValidationError(c, "Invalid target", []ValidationError{
			{Field: "target", Message: "Must be a valid decimal number"},
		})
	}

	goal, err := h.goalService.CreateGoal(userID, req.Name, target)
	if err != nil {
		if errors.Is(err, domain.ErrGoalNameRequired) {
			return NewValidationError(c, "A name and a positive target are required", nil)
		}
		log.Error().Err(err).Msg("Failed to create goal")
		return NewInternalError(c, "Failed to create goal")
	}

	return c.JSON(http.StatusCreated, goal)
}

// GetGoals returns all of the user's goals
func (h *GoalHandler) GetGoals(c echo.Context) error {
	userID := middleware.GetUserID(c)

	goals, err := h.goalService.ListGoals(userID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list goals")
		return NewInternalError(c, "Failed to list goals")
	}
	if goals == nil {
		goals = []*domain.SavingsGoal{}
	}

	return c.JSON(http.StatusOK, goals)
}

// Deposit moves money from the savings bucket into a goal
func (h *GoalHandler) Deposit(c echo.Context) error {
	userID := middleware.GetUserID(c)

	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid goal ID", nil)
	}

	var req DepositRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return NewValidationError(c, "Invalid amount", []ValidationError{
			{Field: "amount", Message: "Must be a valid decimal number"},
		})
	}

	goal, err := h.goalService.Deposit(c.Request().Context(), userID, id, amount)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrGoalNotFound):
			return NewNotFoundError(c, "Goal not found")
		case errors.Is(err, domain.ErrInvalidAmount):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "amount", Message: "Amount must be positive"},
			})
		case errors.Is(err, domain.ErrInsufficientFunds):
			return NewValidationError(c, "Insufficient funds in the savings allocation", nil)
		}
		log.Error().Err(err).Msg("Failed to deposit to goal")
		return NewInternalError(c, "Failed to deposit")
	}

	return c.JSON(http.StatusOK, goal)
}

// DeleteGoal removes a goal
func (h *GoalHandler) DeleteGoal(c echo.Context) error {
	userID := middleware.GetUserID(c)

	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid goal ID", nil)
	}

	if err := h.goalService.DeleteGoal(userID, id); err != nil {
		if errors.Is(err, domain.ErrGoalNotFound) {
			return NewNotFoundError(c, "Goal not found")
		}
		log.Error().Err(err).Msg("Failed to delete goal")
		return NewInternalError(c, "Failed to delete goal")
	}

	return c.NoContent(http.StatusNoContent)
}

// GetProjection estimates savings growth over the coming months
func (h *GoalHandler) GetProjection(c echo.Context) error {
	userID := middleware.GetUserID(c)

	months := 0
	if raw := c.QueryParam("months"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return NewValidationError(c, "Invalid months", []ValidationError{
				{Field: "months", Message: "Must be an integer"},
			})
		}
		months = parsed
	}

	projections, err := h.goalService.ProjectSavings(userID, months)
	if err != nil {
		log.Error().Err(err).Msg("Failed to project savings")
		return NewInternalError(c, "Failed to project savings")
	}

	return c.JSON(http.StatusOK, projections)
}
