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

// BillHandler handles bill-related HTTP requests
type BillHandler struct {
	billService *service.BillService
}

// NewBillHandler creates a new BillHandler
func NewBillHandler(billService *service.BillService) *BillHandler {
	return &BillHandler{billService: billService}
}

// CreateBillRequest represents the create bill request body
type CreateBillRequest struct {
	Title       string `json:"title"`
	Amount      string `json:"amount"`
	DueDate     string `json:"dueDate"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// SetDailyRemindersRequest represents the reminder toggle request body
type SetDailyRemindersRequest struct {
	Enabled bool `json:"enabled"`
}

func (req CreateBillRequest) toInput() (service.CreateBillInput, *ValidationError) {
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return service.CreateBillInput{}, &ValidationError{Field: "amount", Message: "Must be a valid decimal number"}
	}
	dueDate, err := time.Parse("2006-01-02", req.DueDate)
	if err != nil {
		return service.CreateBillInput{}, &ValidationError{Field: "dueDate", Message: "Must be in YYYY-MM-DD format"}
	}
	return service.CreateBillInput{
		Title:       req.Title,
		Amount:      amount,
		DueDate:     dueDate,
		Description: req.Description,
		Category:    req.Category,
	}, nil
}

// CreateBill records a new unpaid bill
func (h *BillHandler) CreateBill(c echo.Context) error {
	userID := middleware.GetUserID(c)

	var req CreateBillRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	input, vErr := req.toInput()
	if vErr != nil {
		return NewValidationError(c, "Validation failed", []ValidationError{*vErr})
	}

	bill, err := h.billService.CreateBill(userID, input)
	if err != nil {
		if errors.Is(err, domain.ErrBillFieldsRequired) {
			return NewValidationError(c, "Title, amount, and due date are required", nil)
		}
		log.Error().Err(err).Msg("Failed to create bill")
		return NewInternalError(c, "Failed to create bill")
	}

	return c.JSON(http.StatusCreated, bill)
}

// CreateBills records several bills in one request
func (h *BillHandler) CreateBills(c echo.Context) error {
	userID := middleware.GetUserID(c)

	var reqs []CreateBillRequest
	if err := c.Bind(&reqs); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}
	if len(reqs) == 0 {
		return NewValidationError(c, "At least one bill is required", nil)
	}

	inputs := make([]service.CreateBillInput, 0, len(reqs))
	for _, req := range reqs {
		input, vErr := req.toInput()
		if vErr != nil {
			return NewValidationError(c, "Validation failed", []ValidationError{*vErr})
		}
		inputs = append(inputs, input)
	}

	bills, err := h.billService.CreateBills(userID, inputs)
	if err != nil {
		if errors.Is(err, domain.ErrBillFieldsRequired) {
			return NewValidationError(c, "Title, amount, and due date are required on every bill", nil)
		}
		log.Error().Err(err).Msg("Failed to create bills")
		return NewInternalError(c, "Failed to create bills")
	}

	return c.JSON(http.StatusCreated, bills)
}

// GenerateMonthlyBills inserts the default bill catalogue for the current
// month, once per month.
func (h *BillHandler) GenerateMonthlyBills(c echo.Context) error {
	userID := middleware.GetUserID(c)

	bills, err := h.billService.GenerateMonthlyBills(userID)
	if err != nil {
		if errors.Is(err, domain.ErrBillsAlreadyGenerated) {
			return NewConflictError(c, "Monthly bills already generated for this month")
		}
		log.Error().Err(err).Msg("Failed to generate monthly bills")
		return NewInternalError(c, "Failed to generate monthly bills")
	}

	return c.JSON(http.StatusCreated, bills)
}

// GetBills returns all of the user's bills
func (h *BillHandler) GetBills(c echo.Context) error {
	userID := middleware.GetUserID(c)

	bills, err := h.billService.ListBills(userID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list bills")
		return NewInternalError(c, "Failed to list bills")
	}
	if bills == nil {
		bills = []*domain.Bill{}
	}

	return c.JSON(http.StatusOK, bills)
}

// PayBill pays a bill out of the needs bucket
func (h *BillHandler) PayBill(c echo.Context) error {
	userID := middleware.GetUserID(c)

	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid bill ID", nil)
	}

	bill, err := h.billService.PayBill(c.Request().Context(), userID, id)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrBillNotFound):
			return NewNotFoundError(c, "Bill not found")
		case errors.Is(err, domain.ErrBillAlreadyPaid):
			return NewConflictError(c, "Bill is already paid")
		case errors.Is(err, domain.ErrInsufficientFunds):
			return NewValidationError(c, "Insufficient funds in the needs allocation", nil)
		}
		log.Error().Err(err).Msg("Failed to pay bill")
		return NewInternalError(c, "Failed to pay bill")
	}

	return c.JSON(http.StatusOK, bill)
}

// DeleteBill removes a bill
func (h *BillHandler) DeleteBill(c echo.Context) error {
	userID := middleware.GetUserID(c)

	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid bill ID", nil)
	}

	if err := h.billService.DeleteBill(userID, id); err != nil {
		if errors.Is(err, domain.ErrBillNotFound) {
			return NewNotFoundError(c, "Bill not found")
		}
		log.Error().Err(err).Msg("Failed to delete bill")
		return NewInternalError(c, "Failed to delete bill")
	}

	return c.NoContent(http.StatusNoContent)
}

// CheckReminders evaluates due bills and returns a reminder notice, or 204
// when nothing needs surfacing.
func (h *BillHandler) CheckReminders(c echo.Context) error {
	userID := middleware.GetUserID(c)

	notice, err := h.billService.CheckReminders(userID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to check reminders")
		return NewInternalError(c, "Failed to check reminders")
	}
	if notice == nil {
		return c.NoContent(http.StatusNoContent)
	}

	return c.JSON(http.StatusOK, notice)
}

// SetDailyReminders toggles the once-per-day reminder throttle
func (h *BillHandler) SetDailyReminders(c echo.Context) error {
	userID := middleware.GetUserID(c)

	var req SetDailyRemindersRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	if err := h.billService.SetDailyReminders(userID, req.Enabled); err != nil {
		log.Error().Err(err).Msg("Failed to update reminder settings")
		return NewInternalError(c, "Failed to update reminder settings")
	}

	return c.JSON(http.StatusOK, map[string]bool{"enabled": req.Enabled})
}
