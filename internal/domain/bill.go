package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrBillNotFound          = errors.New("bill not found")
	ErrBillAlreadyPaid       = errors.New("bill is already paid")
	ErrBillFieldsRequired    = errors.New("title, amount, and due date are required")
	ErrBillsAlreadyGenerated = errors.New("monthly bills already generated for this month")
)

type BillStatus string

const (
	BillStatusUnpaid BillStatus = "unpaid"
	BillStatusPaid   BillStatus = "paid"
)

// DefaultBillCategory is used when the caller leaves category blank.
const DefaultBillCategory = "Bills"

type Bill struct {
	ID          int32           `json:"id"`
	UserID      uuid.UUID       `json:"userId"`
	Title       string          `json:"title"`
	Amount      decimal.Decimal `json:"amount"`
	DueDate     time.Time       `json:"dueDate"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Status      BillStatus      `json:"status"`
	PaidAt      *time.Time      `json:"paidAt,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
}

func (b *Bill) Validate() error {
	if b.Title == "" || b.Amount.LessThanOrEqual(decimal.Zero) || b.DueDate.IsZero() {
		return ErrBillFieldsRequired
	}
	return nil
}

// IsOverdue reports whether the bill's due date is strictly before today.
func (b *Bill) IsOverdue(today time.Time) bool {
	return b.DueDate.Before(today.Truncate(24 * time.Hour))
}

type BillRepository interface {
	Create(bill *Bill) (*Bill, error)
	CreateBatch(bills []*Bill) error
	GetByID(userID uuid.UUID, id int32) (*Bill, error)
	GetAllByUser(userID uuid.UUID) ([]*Bill, error)
	GetUnpaidByUser(userID uuid.UUID) ([]*Bill, error)
	MarkPaidTx(tx any, userID uuid.UUID, id int32, paidAt time.Time) error
	Delete(userID uuid.UUID, id int32) error
	CountForMonth(userID uuid.UUID, year, month int) (int64, error)
	SumUnpaid(userID uuid.UUID) (decimal.Decimal, error)
}
