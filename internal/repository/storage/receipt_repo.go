// Package storage holds object-storage backed repositories for uploaded
// receipt images.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/google/uuid"
)

// ReceiptRepository defines the interface for receipt image storage
type ReceiptRepository interface {
	Upload(ctx context.Context, objectPath string, data io.Reader, contentType string, size int64) (string, error)
	Delete(ctx context.Context, objectPath string) error
	GeneratePresignedURL(ctx context.Context, objectPath string, expiry time.Duration) (string, error)
}

// GenerateReceiptPath creates a unique object path for an expense receipt.
// Paths are namespaced by user so bucket listings stay per-user.
func GenerateReceiptPath(userID uuid.UUID, expenseID int32, ext string) string {
	filename := fmt.Sprintf("%s%s", uuid.New().String(), ext)
	return path.Join(userID.String(), "receipts", fmt.Sprintf("%d", expenseID), filename)
}
