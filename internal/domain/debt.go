package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrDebtNotFound        = errors.New("debt not found")
	ErrDebtClosed          = errors.New("debt is closed")
	ErrDebtNameRequired    = errors.New("debt name is required")
	ErrDebtAmountInvalid   = errors.New("principal amount must be positive")
	ErrDebtRateInvalid     = errors.New("interest rate must not be negative")
	ErrDebtDatesInvalid    = errors.New("end date must not be before start date")
	ErrPaymentNotPermitted = errors.New("payments are not accepted on this debt")
)

type DebtStatus string

const (
	DebtStatusActive    DebtStatus = "active"
	DebtStatusClosed    DebtStatus = "closed"
	DebtStatusDefaulted DebtStatus = "defaulted"
)

type PaymentType string

const (
	PaymentTypeEMI        PaymentType = "emi"
	PaymentTypePrepayment PaymentType = "prepayment"
	PaymentTypeLateFee    PaymentType = "late_fee"
)

// Debt is a loan with a derived EMI. Outstanding starts at the principal and
// only ever decreases until the debt closes.
type Debt struct {
	ID           int32           `json:"id"`
	UserID       uuid.UUID       `json:"userId"`
	Name         string          `json:"name"`
	Type         string          `json:"type"`
	Principal    decimal.Decimal `json:"principalAmount"`
	Outstanding  decimal.Decimal `json:"outstandingAmount"`
	InterestRate decimal.Decimal `json:"interestRate"`
	EMIAmount    decimal.Decimal `json:"emiAmount"`
	StartDate    time.Time       `json:"startDate"`
	EndDate      time.Time       `json:"endDate"`
	PaymentDay   int             `json:"paymentDay"`
	Status       DebtStatus      `json:"status"`
	CreatedAt    time.Time       `json:"createdAt"`
}

func (d *Debt) Validate() error {
	if d.Name == "" {
		return ErrDebtNameRequired
	}
	if len(d.Name) > MaxNameLength {
		return ErrDebtNameRequired
	}
	if d.Principal.LessThanOrEqual(decimal.Zero) {
		return ErrDebtAmountInvalid
	}
	if d.InterestRate.IsNegative() {
		return ErrDebtRateInvalid
	}
	if d.EndDate.Before(d.StartDate) {
		return ErrDebtDatesInvalid
	}
	return nil
}

// TenureMonths is the whole-month span between start and end dates, clamped
// to at least one month.
func (d *Debt) TenureMonths() int {
	months := (d.EndDate.Year()-d.StartDate.Year())*12 + int(d.EndDate.Month()) - int(d.StartDate.Month())
	if months <= 0 {
		months = 1
	}
	return months
}

// RemainingTenureMonths is the whole-month span from now to the end date,
// clamped to at least one month.
func (d *Debt) RemainingTenureMonths(now time.Time) int {
	months := (d.EndDate.Year()-now.Year())*12 + int(d.EndDate.Month()) - int(now.Month())
	if months < 1 {
		months = 1
	}
	return months
}

// DebtPayment is an immutable record of a single payment event.
// RemainingBalance snapshots the outstanding amount after the payment.
type DebtPayment struct {
	ID               int32           `json:"id"`
	DebtID           int32           `json:"debtId"`
	UserID           uuid.UUID       `json:"userId"`
	PaymentDate      time.Time       `json:"paymentDate"`
	Amount           decimal.Decimal `json:"amount"`
	PaymentType      PaymentType     `json:"paymentType"`
	PrincipalPaid    decimal.Decimal `json:"principalPaid"`
	InterestPaid     decimal.Decimal `json:"interestPaid"`
	RemainingBalance decimal.Decimal `json:"remainingBalance"`
	Notes            string          `json:"notes"`
	CreatedAt        time.Time       `json:"createdAt"`
}

// DebtSummary aggregates a user's active debts.
type DebtSummary struct {
	TotalOutstanding  decimal.Decimal `json:"totalOutstanding"`
	TotalMonthlyEMI   decimal.Decimal `json:"totalMonthlyEmi"`
	TotalInterestPaid decimal.Decimal `json:"totalInterestPaid"`
	ActiveDebts       int             `json:"activeDebts"`
	NextEMIDue        *time.Time      `json:"nextEmiDue,omitempty"`
}

type DebtRepository interface {
	Create(debt *Debt) (*Debt, error)
	GetByID(userID uuid.UUID, id int32) (*Debt, error)
	GetActiveByUser(userID uuid.UUID) ([]*Debt, error)
	GetAllByUser(userID uuid.UUID) ([]*Debt, error)
	UpdateOutstandingTx(tx any, id int32, outstanding decimal.Decimal, status DebtStatus) error
	UpdateStatus(userID uuid.UUID, id int32, status DebtStatus) error
}

type DebtPaymentRepository interface {
	CreateTx(tx any, payment *DebtPayment) (*DebtPayment, error)
	GetByDebtID(debtID int32) ([]*DebtPayment, error)
	SumInterestByDebt(debtID int32) (decimal.Decimal, error)
}
