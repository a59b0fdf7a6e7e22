package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/kvharsha/fintrack/fintrack-backend/internal/domain"
	"github.com/kvharsha/fintrack/fintrack-backend/internal/middleware"
	"github.com/kvharsha/fintrack/fintrack-backend/internal/service"
)

// DebtHandler handles loan and EMI HTTP requests
type DebtHandler struct {
	debtService *service.DebtService
}

// NewDebtHandler creates a new DebtHandler
func NewDebtHandler(debtService *service.DebtService) *DebtHandler {
	return &DebtHandler{debtService: debtService}
}

// CreateDebtRequest represents the create debt request body
type CreateDebtRequest struct {
	Name         string `json:"name"`
	Type         string `json:"type"`
	Principal    string `json:"principal"`
	InterestRate string `json:"interestRate"`
	StartDate    string `json:"startDate"`
	EndDate      string `json:"endDate"`
	PaymentDay   int    `json:"paymentDay"`
}

// RecordPaymentRequest represents the record payment request body
type RecordPaymentRequest struct {
	Amount      string  `json:"amount"`
	PaymentType string  `json:"paymentType"`
	PaymentDate *string `json:"paymentDate,omitempty"`
	Notes       string  `json:"notes"`
}

// PrepaymentRequest represents the prepayment analysis request body
type PrepaymentRequest struct {
	Amount string `json:"amount"`
}

// UpdateDebtStatusRequest represents the status update request body
type UpdateDebtStatusRequest struct {
	Status string `json:"status"`
}

// CreateDebt registers a loan and derives its EMI
func (h *DebtHandler) CreateDebt(c echo.Context) error {
	userID := middleware.GetUserID(c)

	var req CreateDebtRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	principal, err := decimal.NewFromString(req.Principal)
	if err != nil {
		return NewValidationError(c, "Invalid principal", []ValidationError{
			{Field: "principal", Message: "Must be a valid decimal number"},
		})
	}
	rate, err := decimal.NewFromString(req.InterestRate)
	if err != nil {
		return NewValidationError(c, "Invalid interest rate", []ValidationError{
			{Field: "interestRate", Message: "Must be a valid decimal number"},
		})
	}
	startDate, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return NewValidationError(c, "Invalid start date", []ValidationError{
			{Field: "startDate", Message: "Must be in YYYY-MM-DD format"},
		})
	}
	endDate, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		return NewValidationError(c, "Invalid end date", []ValidationError{
			{Field: "endDate", Message: "Must be in YYYY-MM-DD format"},
		})
	}

	debt, err := h.debtService.CreateDebt(userID, service.CreateDebtInput{
		Name:         req.Name,
		Type:         req.Type,
		Principal:    principal,
		InterestRate: rate,
		StartDate:    startDate,
		EndDate:      endDate,
		PaymentDay:   req.PaymentDay,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrDebtNameRequired):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "name", Message: "Name is required"},
			})
		case errors.Is(err, domain.ErrDebtAmountInvalid):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "principal", Message: "Principal must be positive"},
			})
		case errors.Is(err, domain.ErrDebtRateInvalid):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "interestRate", Message: "Interest rate must not be negative"},
			})
		case errors.Is(err, domain.ErrDebtDatesInvalid):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "endDate", Message: "End date must not be before start date"},
			})
		}
		log.Error().Err(err).Msg("Failed to create debt")
		return NewInternalError(c, "Failed to create debt")
	}

	return c.JSON(http.StatusCreated, debt)
}

// GetDebts returns all of the user's debts
func (h *DebtHandler) GetDebts(c echo.Context) error {
	userID := middleware.GetUserID(c)

	debts, err := h.debtService.ListDebts(userID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list debts")
		return NewInternalError(c, "Failed to list debts")
	}
	if debts == nil {
		debts = []*domain.Debt{}
	}

	return c.JSON(http.StatusOK, debts)
}

// GetDebt returns one debt
func (h *DebtHandler) GetDebt(c echo.Context) error {
	userID := middleware.GetUserID(c)

	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid debt ID", nil)
	}

	debt, err := h.debtService.GetDebt(userID, id)
	if err != nil {
		if errors.Is(err, domain.ErrDebtNotFound) {
			return NewNotFoundError(c, "Debt not found")
		}
		log.Error().Err(err).Msg("Failed to load debt")
		return NewInternalError(c, "Failed to load debt")
	}

	return c.JSON(http.StatusOK, debt)
}

// RecordPayment records an EMI or prepayment against a debt
func (h *DebtHandler) RecordPayment(c echo.Context) error {
	userID := middleware.GetUserID(c)

	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid debt ID", nil)
	}

	var req RecordPaymentRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return NewValidationError(c, "Invalid amount", []ValidationError{
			{Field: "amount", Message: "Must be a valid decimal number"},
		})
	}

	var paymentDate time.Time
	if req.PaymentDate != nil && *req.PaymentDate != "" {
		paymentDate, err = time.Parse("2006-01-02", *req.PaymentDate)
		if err != nil {
			return NewValidationError(c, "Invalid payment date", []ValidationError{
				{Field: "paymentDate", Message: "Must be in YYYY-MM-DD format"},
			})
		}
	}

	payment, err := h.debtService.RecordPayment(c.Request().Context(), userID, id, service.RecordPaymentInput{
		Amount:      amount,
		PaymentType: domain.PaymentType(req.PaymentType),
		PaymentDate: paymentDate,
		Notes:       req.Notes,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrDebtNotFound):
			return NewNotFoundError(c, "Debt not found")
		case errors.Is(err, domain.ErrDebtClosed):
			return NewConflictError(c, "Debt is closed")
		case errors.Is(err, domain.ErrPaymentNotPermitted):
			return NewConflictError(c, "Payments are not accepted on a defaulted debt")
		case errors.Is(err, domain.ErrInvalidAmount):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "amount", Message: "Amount must be positive"},
			})
		}
		log.Error().Err(err).Msg("Failed to record payment")
		return NewInternalError(c, "Failed to record payment")
	}

	return c.JSON(http.StatusCreated, payment)
}

// UpdateStatus flags a debt as defaulted or restores it to active
func (h *DebtHandler) UpdateStatus(c echo.Context) error {
	userID := middleware.GetUserID(c)

	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid debt ID", nil)
	}

	var req UpdateDebtStatusRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	debt, err := h.debtService.UpdateStatus(userID, id, domain.DebtStatus(req.Status))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrDebtNotFound):
			return NewNotFoundError(c, "Debt not found")
		case errors.Is(err, domain.ErrDebtClosed):
			return NewConflictError(c, "Closed debts cannot change status")
		case errors.Is(err, domain.ErrInvalidInput):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "status", Message: "Must be one of: active, defaulted"},
			})
		}
		log.Error().Err(err).Msg("Failed to update debt status")
		return NewInternalError(c, "Failed to update debt status")
	}

	return c.JSON(http.StatusOK, debt)
}

// GetPayments returns the payment history of a debt
func (h *DebtHandler) GetPayments(c echo.Context) error {
	userID := middleware.GetUserID(c)

	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid debt ID", nil)
	}

	payments, err := h.debtService.ListPayments(userID, id)
	if err != nil {
		if errors.Is(err, domain.ErrDebtNotFound) {
			return NewNotFoundError(c, "Debt not found")
		}
		log.Error().Err(err).Msg("Failed to list payments")
		return NewInternalError(c, "Failed to list payments")
	}
	if payments == nil {
		payments = []*domain.DebtPayment{}
	}

	return c.JSON(http.StatusOK, payments)
}

// AnalyzePrepayment reports the effect of a lump-sum prepayment
func (h *DebtHandler) AnalyzePrepayment(c echo.Context) error {
	userID := middleware.GetUserID(c)

	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid debt ID", nil)
	}

	var req PrepaymentRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return NewValidationError(c, "Invalid amount", []ValidationError{
			{Field: "amount", Message: "Must be a valid decimal number"},
		})
	}

	result, err := h.debtService.AnalyzePrepayment(userID, id, amount)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrDebtNotFound):
			return NewNotFoundError(c, "Debt not found")
		case errors.Is(err, domain.ErrDebtClosed):
			return NewConflictError(c, "Debt is closed")
		case errors.Is(err, domain.ErrInvalidAmount):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "amount", Message: "Amount must be positive"},
			})
		}
		log.Error().Err(err).Msg("Failed to analyze prepayment")
		return NewInternalError(c, "Failed to analyze prepayment")
	}

	return c.JSON(http.StatusOK, result)
}

// GetSummary aggregates the user's active debts
func (h *DebtHandler) GetSummary(c echo.Context) error {
	userID := middleware.GetUserID(c)

	summary, err := h.debtService.Summary(userID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to summarize debts")
		return NewInternalError(c, "Failed to summarize debts")
	}

	return c.JSON(http.StatusOK, summary)
}
