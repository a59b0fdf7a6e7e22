package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrExpenseNotFound = errors.New("expense not found")
)

// ExpenseType selects which allocation bucket an expense is deducted from.
type ExpenseType string

const (
	ExpenseTypeNeed ExpenseType = "need"
	ExpenseTypeWant ExpenseType = "want"
)

// DefaultExpenseCategory is used when the caller leaves category blank.
const DefaultExpenseCategory = "Other"

// Expense is an outflow record. Amount is stored negated (always <= 0); the
// positive magnitude lives in Outflow().
type Expense struct {
	ID          int32           `json:"id"`
	UserID      uuid.UUID       `json:"userId"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
	Type        ExpenseType     `json:"type"`
	ReceiptKey  *string         `json:"receiptKey,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// NewExpense builds an expense from a positive outflow amount, negating it
// for storage and applying the category fallback.
func NewExpense(userID uuid.UUID, amount decimal.Decimal, category string, date time.Time, description string, typ ExpenseType) (*Expense, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidAmount
	}
	if category == "" {
		category = DefaultExpenseCategory
	}
	if typ != ExpenseTypeNeed {
		typ = ExpenseTypeWant
	}
	return &Expense{
		UserID:      userID,
		Amount:      amount.Abs().Neg(),
		Category:    category,
		Date:        date,
		Description: description,
		Type:        typ,
	}, nil
}

// Outflow returns the positive spend magnitude.
func (e *Expense) Outflow() decimal.Decimal {
	return e.Amount.Abs()
}

// CategoryTotal is the aggregated positive spend for one category.
type CategoryTotal struct {
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total"`
}

type ExpenseRepository interface {
	Create(expense *Expense) (*Expense, error)
	CreateTx(tx any, expense *Expense) (*Expense, error)
	GetByID(userID uuid.UUID, id int32) (*Expense, error)
	GetAllByUser(userID uuid.UUID) ([]*Expense, error)
	GetRecent(userID uuid.UUID, limit int) ([]*Expense, error)
	Delete(userID uuid.UUID, id int32) error
	DeleteTx(tx any, userID uuid.UUID, id int32) error
	CategoryTotals(userID uuid.UUID) ([]*CategoryTotal, error)
	SumOutflowForMonth(userID uuid.UUID, year, month int) (decimal.Decimal, error)
	SetReceiptKey(userID uuid.UUID, id int32, key string) error
}
