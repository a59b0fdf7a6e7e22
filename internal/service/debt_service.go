package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/kvharsha/fintrack/fintrack-backend/internal/domain"
	"github.com/kvharsha/fintrack/fintrack-backend/internal/finance"
	"github.com/kvharsha/fintrack/fintrack-backend/internal/util"
	"github.com/kvharsha/fintrack/fintrack-backend/internal/websocket"
)

// DebtService handles loans, EMI schedules, and payment recording
type DebtService struct {
	debtRepo    domain.DebtRepository
	paymentRepo domain.DebtPaymentRepository
	txRunner    domain.TxRunner
	publisher   websocket.EventPublisher
	now         func() time.Time
}

// NewDebtService creates a new DebtService
func NewDebtService(debtRepo domain.DebtRepository, paymentRepo domain.DebtPaymentRepository, txRunner domain.TxRunner, publisher websocket.EventPublisher) *DebtService {
	return &DebtService{
		debtRepo:    debtRepo,
		paymentRepo: paymentRepo,
		txRunner:    txRunner,
		publisher:   publisher,
		now:         time.Now,
	}
}

// SetClock overrides the service clock, for tests
func (s *DebtService) SetClock(now func() time.Time) {
	s.now = now
}

// CreateDebtInput contains input for registering a debt
type CreateDebtInput struct {
	Name         string
	Type         string
	Principal    decimal.Decimal
	InterestRate decimal.Decimal
	StartDate    time.Time
	EndDate      time.Time
	PaymentDay   int
}

// CreateDebt registers a loan. The EMI is derived from the principal, rate,
// and tenure; the outstanding balance starts at the principal.
func (s *DebtService) CreateDebt(userID uuid.UUID, input CreateDebtInput) (*domain.Debt, error) {
	debt := &domain.Debt{
		UserID:       userID,
		Name:         strings.TrimSpace(input.Name),
		Type:         strings.TrimSpace(input.Type),
		Principal:    input.Principal,
		Outstanding:  input.Principal,
		InterestRate: input.InterestRate,
		StartDate:    input.StartDate,
		EndDate:      input.EndDate,
		PaymentDay:   input.PaymentDay,
		Status:       domain.DebtStatusActive,
	}
	if err := debt.Validate(); err != nil {
		return nil, err
	}

	emi, err := finance.EMI(debt.Principal, debt.InterestRate, debt.TenureMonths())
	if err != nil {
		return nil, err
	}
	debt.EMIAmount = emi

	return s.debtRepo.Create(debt)
}

// ListDebts returns all of a user's debts
func (s *DebtService) ListDebts(userID uuid.UUID) ([]*domain.Debt, error) {
	return s.debtRepo.GetAllByUser(userID)
}

// GetDebt returns one debt
func (s *DebtService) GetDebt(userID uuid.UUID, id int32) (*domain.Debt, error) {
	return s.debtRepo.GetByID(userID, id)
}

// RecordPaymentInput contains input for recording a payment against a debt
type RecordPaymentInput struct {
	Amount      decimal.Decimal
	PaymentType domain.PaymentType
	PaymentDate time.Time
	Notes       string
}

// RecordPayment splits a payment into interest and principal, reduces the
// outstanding balance, and stores the immutable payment record in one
// transaction. The debt closes when the balance falls to (near) zero.
func (s *DebtService) RecordPayment(ctx context.Context, userID uuid.UUID, debtID int32, input RecordPaymentInput) (*domain.DebtPayment, error) {
	if input.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidAmount
	}

	debt, err := s.debtRepo.GetByID(userID, debtID)
	if err != nil {
		return nil, err
	}
	switch debt.Status {
	case domain.DebtStatusClosed:
		return nil, domain.ErrDebtClosed
	case domain.DebtStatusDefaulted:
		return nil, domain.ErrPaymentNotPermitted
	}

	paymentType := input.PaymentType
	if paymentType == "" {
		paymentType = domain.PaymentTypeEMI
	}
	paymentDate := input.PaymentDate
	if paymentDate.IsZero() {
		paymentDate = s.now()
	}

	breakdown := finance.SplitPayment(debt.Outstanding, debt.InterestRate, input.Amount,
		paymentType == domain.PaymentTypeEMI)

	newOutstanding := debt.Outstanding.Sub(breakdown.PrincipalPaid)
	if newOutstanding.IsNegative() {
		newOutstanding = decimal.Zero
	}
	status := debt.Status
	if newOutstanding.LessThanOrEqual(finance.DebtCloseEpsilon) {
		newOutstanding = decimal.Zero
		status = domain.DebtStatusClosed
	}

	payment := &domain.DebtPayment{
		DebtID:           debtID,
		UserID:           userID,
		PaymentDate:      paymentDate,
		Amount:           input.Amount,
		PaymentType:      paymentType,
		PrincipalPaid:    breakdown.PrincipalPaid,
		InterestPaid:     breakdown.InterestPaid,
		RemainingBalance: newOutstanding,
		Notes:            input.Notes,
	}

	var stored *domain.DebtPayment
	err = s.txRunner.RunInTx(ctx, func(tx any) error {
		var txErr error
		stored, txErr = s.paymentRepo.CreateTx(tx, payment)
		if txErr != nil {
			return txErr
		}
		return s.debtRepo.UpdateOutstandingTx(tx, debtID, newOutstanding, status)
	})
	if err != nil {
		return nil, err
	}

	debt.Outstanding = newOutstanding
	debt.Status = status

	if status == domain.DebtStatusClosed {
		log.Info().
			Str("user_id", userID.String()).
			Int32("debt_id", debtID).
			Msg("debt fully repaid")
	}

	s.publisher.Publish(userID, websocket.DebtPaid(stored))
	s.publisher.Publish(userID, websocket.DebtUpdated(debt))
	return stored, nil
}

// UpdateStatus flags a debt as defaulted or restores it to active. Closed
// debts are immutable.
func (s *DebtService) UpdateStatus(userID uuid.UUID, debtID int32, status domain.DebtStatus) (*domain.Debt, error) {
	switch status {
	case domain.DebtStatusActive, domain.DebtStatusDefaulted:
	default:
		return nil, domain.ErrInvalidInput
	}

	debt, err := s.debtRepo.GetByID(userID, debtID)
	if err != nil {
		return nil, err
	}
	if debt.Status == domain.DebtStatusClosed {
		return nil, domain.ErrDebtClosed
	}
	if debt.Status == status {
		return debt, nil
	}

	if err := s.debtRepo.UpdateStatus(userID, debtID, status); err != nil {
		return nil, err
	}
	debt.Status = status

	log.Info().
		Str("user_id", userID.String()).
		Int32("debt_id", debtID).
		Str("status", string(status)).
		Msg("debt status changed")

	s.publisher.Publish(userID, websocket.DebtUpdated(debt))
	return debt, nil
}

// ListPayments returns the payment history of a debt
func (s *DebtService) ListPayments(userID uuid.UUID, debtID int32) ([]*domain.DebtPayment, error) {
	// ownership check
	if _, err := s.debtRepo.GetByID(userID, debtID); err != nil {
		return nil, err
	}
	return s.paymentRepo.GetByDebtID(debtID)
}

// AnalyzePrepayment reports the effect of a lump-sum prepayment on an active
// debt, keeping the remaining tenure fixed.
func (s *DebtService) AnalyzePrepayment(userID uuid.UUID, debtID int32, amount decimal.Decimal) (*finance.PrepaymentResult, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidAmount
	}
	debt, err := s.debtRepo.GetByID(userID, debtID)
	if err != nil {
		return nil, err
	}
	if debt.Status != domain.DebtStatusActive {
		return nil, domain.ErrDebtClosed
	}
	return finance.PrepaymentSavings(debt.Outstanding, debt.InterestRate, amount,
		debt.RemainingTenureMonths(s.now()))
}

// Summary aggregates the user's active debts
func (s *DebtService) Summary(userID uuid.UUID) (*domain.DebtSummary, error) {
	debts, err := s.debtRepo.GetActiveByUser(userID)
	if err != nil {
		return nil, err
	}
	summary := &domain.DebtSummary{
		TotalOutstanding:  decimal.Zero,
		TotalMonthlyEMI:   decimal.Zero,
		TotalInterestPaid: decimal.Zero,
	}
	summary.ActiveDebts = len(debts)
	for _, d := range debts {
		summary.TotalOutstanding = summary.TotalOutstanding.Add(d.Outstanding)
		summary.TotalMonthlyEMI = summary.TotalMonthlyEMI.Add(d.EMIAmount)
		interest, err := s.paymentRepo.SumInterestByDebt(d.ID)
		if err != nil {
			return nil, err
		}
		summary.TotalInterestPaid = summary.TotalInterestPaid.Add(interest)

		if d.PaymentDay > 0 {
			due := util.NextDueDate(s.now(), d.PaymentDay)
			if summary.NextEMIDue == nil || due.Before(*summary.NextEMIDue) {
				summary.NextEMIDue = &due
			}
		}
	}
	return summary, nil
}
