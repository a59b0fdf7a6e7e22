package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/kvharsha/fintrack/fintrack-backend/internal/domain"
	"github.com/kvharsha/fintrack/fintrack-backend/internal/middleware"
	"github.com/kvharsha/fintrack/fintrack-backend/internal/service"
)

// ReceiptHandler handles expense receipt uploads and retrieval
type ReceiptHandler struct {
	receiptService *service.ReceiptService
}

// NewReceiptHandler creates a new ReceiptHandler
func NewReceiptHandler(receiptService *service.ReceiptService) *ReceiptHandler {
	return &ReceiptHandler{receiptService: receiptService}
}

// UploadReceiptResponse represents the upload response
type UploadReceiptResponse struct {
	ReceiptKey string `json:"receiptKey"`
}

// ReceiptURLResponse carries a presigned download URL
type ReceiptURLResponse struct {
	URL string `json:"url"`
}

// UploadReceipt attaches a receipt image to an expense
func (h *ReceiptHandler) UploadReceipt(c echo.Context) error {
	userID := middleware.GetUserID(c)

	// Storage is optional; without it uploads are disabled rather than broken.
	if h.receiptService == nil || !h.receiptService.IsEnabled() {
		return NewServiceUnavailableError(c, "Receipt uploads are disabled (storage not configured)")
	}

	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid expense ID", nil)
	}

	file, err := c.FormFile("file")
	if err != nil {
		return NewValidationError(c, "No file provided", []ValidationError{
			{Field: "file", Message: "File is required"},
		})
	}

	src, err := file.Open()
	if err != nil {
		log.Error().Err(err).Msg("Failed to open uploaded file")
		return NewInternalError(c, "Failed to process file")
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		log.Error().Err(err).Msg("Failed to read uploaded file")
		return NewInternalError(c, "Failed to read file")
	}

	key, err := h.receiptService.Attach(c.Request().Context(), userID, id, data, file.Filename)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrExpenseNotFound):
			return NewNotFoundError(c, "Expense not found")
		case errors.Is(err, service.ErrReceiptTooLarge):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "file", Message: "File too large. Maximum size is 5MB"},
			})
		case errors.Is(err, service.ErrReceiptInvalidFormat):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "file", Message: "Invalid format. Supported: JPEG, PNG"},
			})
		case errors.Is(err, service.ErrReceiptInvalidData):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "file", Message: "Invalid image data"},
			})
		}
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to upload receipt")
		return NewInternalError(c, "Failed to upload receipt")
	}

	return c.JSON(http.StatusCreated, UploadReceiptResponse{ReceiptKey: key})
}

// GetReceiptURL returns a short-lived presigned URL for an expense's receipt
func (h *ReceiptHandler) GetReceiptURL(c echo.Context) error {
	userID := middleware.GetUserID(c)

	if h.receiptService == nil || !h.receiptService.IsEnabled() {
		return NewServiceUnavailableError(c, "Receipt storage is not configured")
	}

	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid expense ID", nil)
	}

	url, err := h.receiptService.URL(c.Request().Context(), userID, id)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrExpenseNotFound):
			return NewNotFoundError(c, "Expense not found")
		case errors.Is(err, domain.ErrNotFound):
			return NewNotFoundError(c, "Expense has no receipt")
		}
		log.Error().Err(err).Msg("Failed to sign receipt URL")
		return NewInternalError(c, "Failed to sign receipt URL")
	}

	return c.JSON(http.StatusOK, ReceiptURLResponse{URL: url})
}
