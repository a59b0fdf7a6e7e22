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

// InvestmentHandler handles investment HTTP requests
type InvestmentHandler struct {
	investmentService *service.InvestmentService
}

// NewInvestmentHandler creates a new InvestmentHandler
func NewInvestmentHandler(investmentService *service.InvestmentService) *InvestmentHandler {
	return &InvestmentHandler{investmentService: investmentService}
}

// CreateInvestmentRequest represents the create investment request body
type CreateInvestmentRequest struct {
	Name           string  `json:"name"`
	Type           string  `json:"type"`
	Symbol         string  `json:"symbol"`
	InvestedAmount string  `json:"investedAmount"`
	CurrentValue   string  `json:"currentValue"`
	Units          string  `json:"units"`
	PurchasePrice  string  `json:"purchasePrice"`
	CurrentPrice   string  `json:"currentPrice"`
	PurchaseDate   *string `json:"purchaseDate,omitempty"`
	Status         string  `json:"status"`
	Notes          string  `json:"notes"`
}

// InvestmentTransactionRequest represents a buy/sell request body
type InvestmentTransactionRequest struct {
	Amount string  `json:"amount"`
	Units  string  `json:"units"`
	Action string  `json:"action"`
	Date   *string `json:"date,omitempty"`
}

// UpdateValueRequest represents the mark-to-value request body
type UpdateValueRequest struct {
	CurrentValue string `json:"currentValue"`
}

// RiskProfileRequest represents the risk profile request body
type RiskProfileRequest struct {
	Tolerance     string `json:"tolerance"`
	Experience    string `json:"investmentExperience"`
	HorizonYears  int    `json:"horizonYears"`
	MonthlyBudget string `json:"monthlyBudget"`
	EmergencyFund bool   `json:"emergencyFundAvailable"`
}

// ProjectionRequest represents the SIP/lumpsum projection request body
type ProjectionRequest struct {
	Amount        string `json:"amount"`
	AnnualRatePct string `json:"annualRatePct"`
	Months        int    `json:"months,omitempty"`
	Years         int    `json:"years,omitempty"`
}

// ProjectionResponse carries a projected future value
type ProjectionResponse struct {
	FutureValue decimal.Decimal `json:"futureValue"`
}

func parseDecimalField(raw, field string) (decimal.Decimal, *ValidationError) {
	if raw == "" {
		return decimal.Zero, nil
	}
	parsed, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, &ValidationError{Field: field, Message: "Must be a valid decimal number"}
	}
	return parsed, nil
}

// CreateInvestment adds a holding
func (h *InvestmentHandler) CreateInvestment(c echo.Context) error {
	userID := middleware.GetUserID(c)

	var req CreateInvestmentRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	input := service.CreateInvestmentInput{
		Name:   req.Name,
		Type:   domain.InvestmentType(req.Type),
		Symbol: req.Symbol,
		Status: domain.InvestmentStatus(req.Status),
		Notes:  req.Notes,
	}
	for _, f := range []struct {
		raw   string
		field string
		dst   *decimal.Decimal
	}{
		{req.InvestedAmount, "investedAmount", &input.InvestedAmount},
		{req.CurrentValue, "currentValue", &input.CurrentValue},
		{req.Units, "units", &input.Units},
		{req.PurchasePrice, "purchasePrice", &input.PurchasePrice},
		{req.CurrentPrice, "currentPrice", &input.CurrentPrice},
	} {
		parsed, vErr := parseDecimalField(f.raw, f.field)
		if vErr != nil {
			return NewValidationError(c, "Validation failed", []ValidationError{*vErr})
		}
		*f.dst = parsed
	}
	if req.PurchaseDate != nil && *req.PurchaseDate != "" {
		parsed, err := time.Parse("2006-01-02", *req.PurchaseDate)
		if err != nil {
			return NewValidationError(c, "Invalid purchase date", []ValidationError{
				{Field: "purchaseDate", Message: "Must be in YYYY-MM-DD format"},
			})
		}
		input.PurchaseDate = parsed
	}

	inv, err := h.investmentService.CreateInvestment(userID, input)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvestmentNameMissing):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "name", Message: "Name is required"},
			})
		case errors.Is(err, domain.ErrInvestmentTypeMissing):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "type", Message: "Type is required"},
			})
		case errors.Is(err, domain.ErrInvalidAmount):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "investedAmount", Message: "Must not be negative"},
			})
		case errors.Is(err, domain.ErrInvalidInput):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "status", Message: "Must be one of: active, sold, pending"},
			})
		}
		log.Error().Err(err).Msg("Failed to create investment")
		return NewInternalError(c, "Failed to create investment")
	}

	return c.JSON(http.StatusCreated, inv)
}

// GetInvestments returns all holdings
func (h *InvestmentHandler) GetInvestments(c echo.Context) error {
	userID := middleware.GetUserID(c)

	investments, err := h.investmentService.ListInvestments(userID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list investments")
		return NewInternalError(c, "Failed to list investments")
	}
	if investments == nil {
		investments = []*domain.Investment{}
	}

	return c.JSON(http.StatusOK, investments)
}

// RecordTransaction applies a buy or sell against a holding
func (h *InvestmentHandler) RecordTransaction(c echo.Context) error {
	userID := middleware.GetUserID(c)

	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid investment ID", nil)
	}

	var req InvestmentTransactionRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	amount, vErr := parseDecimalField(req.Amount, "amount")
	if vErr != nil {
		return NewValidationError(c, "Validation failed", []ValidationError{*vErr})
	}
	units, vErr := parseDecimalField(req.Units, "units")
	if vErr != nil {
		return NewValidationError(c, "Validation failed", []ValidationError{*vErr})
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

	txn, err := h.investmentService.RecordTransaction(userID, id, amount, units, req.Action, date)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvestmentNotFound):
			return NewNotFoundError(c, "Investment not found")
		case errors.Is(err, domain.ErrInvalidAmount):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "amount", Message: "Amount must be positive"},
			})
		case errors.Is(err, domain.ErrInvalidInput):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "action", Message: "Action must be one of: buy, sell"},
			})
		}
		log.Error().Err(err).Msg("Failed to record investment transaction")
		return NewInternalError(c, "Failed to record transaction")
	}

	return c.JSON(http.StatusCreated, txn)
}

// UpdateValue marks a holding to its latest value
func (h *InvestmentHandler) UpdateValue(c echo.Context) error {
	userID := middleware.GetUserID(c)

	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid investment ID", nil)
	}

	var req UpdateValueRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	value, err := decimal.NewFromString(req.CurrentValue)
	if err != nil {
		return NewValidationError(c, "Invalid value", []ValidationError{
			{Field: "currentValue", Message: "Must be a valid decimal number"},
		})
	}

	inv, err := h.investmentService.UpdateValue(userID, id, value)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvestmentNotFound):
			return NewNotFoundError(c, "Investment not found")
		case errors.Is(err, domain.ErrInvalidAmount):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "currentValue", Message: "Must not be negative"},
			})
		}
		log.Error().Err(err).Msg("Failed to update investment value")
		return NewInternalError(c, "Failed to update value")
	}

	return c.JSON(http.StatusOK, inv)
}

// DeleteInvestment removes a holding
func (h *InvestmentHandler) DeleteInvestment(c echo.Context) error {
	userID := middleware.GetUserID(c)

	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid investment ID", nil)
	}

	if err := h.investmentService.DeleteInvestment(userID, id); err != nil {
		if errors.Is(err, domain.ErrInvestmentNotFound) {
			return NewNotFoundError(c, "Investment not found")
		}
		log.Error().Err(err).Msg("Failed to delete investment")
		return NewInternalError(c, "Failed to delete investment")
	}

	return c.NoContent(http.StatusNoContent)
}

// GetPortfolio aggregates all holdings
func (h *InvestmentHandler) GetPortfolio(c echo.Context) error {
	userID := middleware.GetUserID(c)

	summary, err := h.investmentService.Portfolio(userID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to aggregate portfolio")
		return NewInternalError(c, "Failed to aggregate portfolio")
	}

	return c.JSON(http.StatusOK, summary)
}

// ProjectSIP projects a monthly contribution's future value
func (h *InvestmentHandler) ProjectSIP(c echo.Context) error {
	var req ProjectionRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	amount, vErr := parseDecimalField(req.Amount, "amount")
	if vErr != nil {
		return NewValidationError(c, "Validation failed", []ValidationError{*vErr})
	}
	rate, vErr := parseDecimalField(req.AnnualRatePct, "annualRatePct")
	if vErr != nil {
		return NewValidationError(c, "Validation failed", []ValidationError{*vErr})
	}

	fv, err := h.investmentService.ProjectSIP(amount, rate, req.Months)
	if err != nil {
		return NewValidationError(c, "A positive amount and a tenure of at least one month are required", nil)
	}

	return c.JSON(http.StatusOK, ProjectionResponse{FutureValue: fv})
}

// ProjectLumpsum projects a one-time investment's future value
func (h *InvestmentHandler) ProjectLumpsum(c echo.Context) error {
	var req ProjectionRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	amount, vErr := parseDecimalField(req.Amount, "amount")
	if vErr != nil {
		return NewValidationError(c, "Validation failed", []ValidationError{*vErr})
	}
	rate, vErr := parseDecimalField(req.AnnualRatePct, "annualRatePct")
	if vErr != nil {
		return NewValidationError(c, "Validation failed", []ValidationError{*vErr})
	}

	fv, err := h.investmentService.ProjectLumpsum(amount, rate, req.Years)
	if err != nil {
		return NewValidationError(c, "A positive amount and a non-negative horizon are required", nil)
	}

	return c.JSON(http.StatusOK, ProjectionResponse{FutureValue: fv})
}

// SetRiskProfile stores the user's risk appetite
func (h *InvestmentHandler) SetRiskProfile(c echo.Context) error {
	userID := middleware.GetUserID(c)

	var req RiskProfileRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	budget, vErr := parseDecimalField(req.MonthlyBudget, "monthlyBudget")
	if vErr != nil {
		return NewValidationError(c, "Validation failed", []ValidationError{*vErr})
	}

	profile, err := h.investmentService.SetRiskProfile(userID, service.SetRiskProfileInput{
		Tolerance:     domain.RiskTolerance(req.Tolerance),
		Experience:    req.Experience,
		HorizonYears:  req.HorizonYears,
		MonthlyBudget: budget,
		EmergencyFund: req.EmergencyFund,
	})
	if err != nil {
		if errors.Is(err, domain.ErrRiskProfileInvalid) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "tolerance", Message: "Must be one of: conservative, moderate, aggressive"},
			})
		}
		if errors.Is(err, domain.ErrInvalidInput) || errors.Is(err, domain.ErrInvalidAmount) {
			return NewValidationError(c, "Horizon and monthly budget must not be negative", nil)
		}
		log.Error().Err(err).Msg("Failed to save risk profile")
		return NewInternalError(c, "Failed to save risk profile")
	}

	return c.JSON(http.StatusOK, profile)
}

// GetRiskProfile loads the user's risk appetite with a suggested allocation
func (h *InvestmentHandler) GetRiskProfile(c echo.Context) error {
	userID := middleware.GetUserID(c)

	profile, err := h.investmentService.GetRiskProfile(userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return NewNotFoundError(c, "Risk profile not set")
		}
		log.Error().Err(err).Msg("Failed to load risk profile")
		return NewInternalError(c, "Failed to load risk profile")
	}

	allocation, err := h.investmentService.SuggestAllocation(profile.Tolerance)
	if err != nil {
		log.Error().Err(err).Msg("Failed to suggest allocation")
		return NewInternalError(c, "Failed to suggest allocation")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"profile":    profile,
		"allocation": allocation,
	})
}

// GetQuote fetches a market quote with degraded-mode fallback
func (h *InvestmentHandler) GetQuote(c echo.Context) error {
	symbol := c.Param("symbol")

	result, err := h.investmentService.GetQuote(c.Request().Context(), symbol)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return NewValidationError(c, "A symbol is required", nil)
		}
		log.Error().Err(err).Msg("Failed to fetch quote")
		return NewInternalError(c, "Failed to fetch quote")
	}

	return c.JSON(http.StatusOK, result)
}
