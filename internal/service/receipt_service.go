package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // register PNG decoding
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"

	"github.com/kvharsha/fintrack/fintrack-backend/internal/domain"
	"github.com/kvharsha/fintrack/fintrack-backend/internal/repository/storage"
)

const (
	// MaxReceiptSize is the maximum accepted upload size (5MB)
	MaxReceiptSize = 5 * 1024 * 1024

	// ReceiptMaxWidth is the width receipts are downscaled to before upload
	ReceiptMaxWidth = 1600

	// ReceiptJPEGQuality is the encode quality for stored receipts
	ReceiptJPEGQuality = 85

	// ReceiptURLExpiry is how long presigned receipt URLs stay valid
	ReceiptURLExpiry = 15 * time.Minute
)

// Receipt upload errors
var (
	ErrReceiptTooLarge      = errors.New("receipt image exceeds the maximum size")
	ErrReceiptInvalidFormat = errors.New("receipt must be a jpg, jpeg, or png image")
	ErrReceiptInvalidData   = errors.New("receipt image data is not a valid image")
	ErrReceiptsNotEnabled   = errors.New("receipt storage is not configured")
)

var allowedReceiptExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// ReceiptService processes and stores expense receipt images
type ReceiptService struct {
	storage     storage.ReceiptRepository
	expenseRepo domain.ExpenseRepository
}

// NewReceiptService creates a new ReceiptService. A nil storage disables
// receipt uploads without failing the rest of the app.
func NewReceiptService(store storage.ReceiptRepository, expenseRepo domain.ExpenseRepository) *ReceiptService {
	return &ReceiptService{storage: store, expenseRepo: expenseRepo}
}

// IsEnabled reports whether receipt storage is configured
func (s *ReceiptService) IsEnabled() bool {
	return s.storage != nil
}

func (s *ReceiptService) validateAndDecode(data []byte, filename string) (image.Image, error) {
	if len(data) > MaxReceiptSize {
		return nil, ErrReceiptTooLarge
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedReceiptExtensions[ext] {
		return nil, ErrReceiptInvalidFormat
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, ErrReceiptInvalidData
	}
	return img, nil
}

// Attach validates a receipt image, downscales it, uploads it, and links the
// stored object to the expense. Returns the storage key.
func (s *ReceiptService) Attach(ctx context.Context, userID uuid.UUID, expenseID int32, data []byte, filename string) (string, error) {
	if !s.IsEnabled() {
		return "", ErrReceiptsNotEnabled
	}

	// expense must exist and belong to the user
	if _, err := s.expenseRepo.GetByID(userID, expenseID); err != nil {
		return "", err
	}

	img, err := s.validateAndDecode(data, filename)
	if err != nil {
		return "", err
	}

	if img.Bounds().Dx() > ReceiptMaxWidth {
		img = imaging.Resize(img, ReceiptMaxWidth, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: ReceiptJPEGQuality}); err != nil {
		return "", fmt.Errorf("failed to encode receipt: %w", err)
	}

	key := storage.GenerateReceiptPath(userID, expenseID, ".jpg")
	if _, err := s.storage.Upload(ctx, key, bytes.NewReader(buf.Bytes()), "image/jpeg", int64(buf.Len())); err != nil {
		return "", fmt.Errorf("failed to upload receipt: %w", err)
	}

	if err := s.expenseRepo.SetReceiptKey(userID, expenseID, key); err != nil {
		// best effort cleanup of the orphaned object
		_ = s.storage.Delete(ctx, key)
		return "", err
	}
	return key, nil
}

// URL returns a short-lived presigned URL for an expense's receipt
func (s *ReceiptService) URL(ctx context.Context, userID uuid.UUID, expenseID int32) (string, error) {
	if !s.IsEnabled() {
		return "", ErrReceiptsNotEnabled
	}
	expense, err := s.expenseRepo.GetByID(userID, expenseID)
	if err != nil {
		return "", err
	}
	if expense.ReceiptKey == nil || *expense.ReceiptKey == "" {
		return "", domain.ErrNotFound
	}
	return s.storage.GeneratePresignedURL(ctx, *expense.ReceiptKey, ReceiptURLExpiry)
}
