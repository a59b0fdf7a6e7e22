package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/kvharsha/fintrack/fintrack-backend/internal/domain"
	"github.com/kvharsha/fintrack/fintrack-backend/internal/websocket"
)

// BillService handles bill reminders and payment
type BillService struct {
	billRepo    domain.BillRepository
	expenseRepo domain.ExpenseRepository
	stateRepo   domain.BudgetStateRepository
	txRunner    domain.TxRunner
	publisher   websocket.EventPublisher
	now         func() time.Time
}

// NewBillService creates a new BillService
func NewBillService(billRepo domain.BillRepository, expenseRepo domain.ExpenseRepository, stateRepo domain.BudgetStateRepository, txRunner domain.TxRunner, publisher websocket.EventPublisher) *BillService {
	return &BillService{
		billRepo:    billRepo,
		expenseRepo: expenseRepo,
		stateRepo:   stateRepo,
		txRunner:    txRunner,
		publisher:   publisher,
		now:         time.Now,
	}
}

// SetClock overrides the service clock, for tests
func (s *BillService) SetClock(now func() time.Time) {
	s.now = now
}

// CreateBillInput contains input for creating a bill
type CreateBillInput struct {
	Title       string
	Amount      decimal.Decimal
	DueDate     time.Time
	Description string
	Category    string
}

func (input CreateBillInput) toBill(userID uuid.UUID) *domain.Bill {
	category := strings.TrimSpace(input.Category)
	if category == "" {
		category = domain.DefaultBillCategory
	}
	return &domain.Bill{
		UserID:      userID,
		Title:       strings.TrimSpace(input.Title),
		Amount:      input.Amount,
		DueDate:     input.DueDate,
		Description: input.Description,
		Category:    category,
		Status:      domain.BillStatusUnpaid,
	}
}

// CreateBill records a new unpaid bill
func (s *BillService) CreateBill(userID uuid.UUID, input CreateBillInput) (*domain.Bill, error) {
	bill := input.toBill(userID)
	if err := bill.Validate(); err != nil {
		return nil, err
	}
	created, err := s.billRepo.Create(bill)
	if err != nil {
		return nil, err
	}
	s.publisher.Publish(userID, websocket.BillCreated(created))
	return created, nil
}

// CreateBills records several bills at once. All of them must validate;
// nothing is stored otherwise.
func (s *BillService) CreateBills(userID uuid.UUID, inputs []CreateBillInput) ([]*domain.Bill, error) {
	bills := make([]*domain.Bill, 0, len(inputs))
	for _, input := range inputs {
		bill := input.toBill(userID)
		if err := bill.Validate(); err != nil {
			return nil, err
		}
		bills = append(bills, bill)
	}
	if err := s.billRepo.CreateBatch(bills); err != nil {
		return nil, err
	}
	for _, bill := range bills {
		s.publisher.Publish(userID, websocket.BillCreated(bill))
	}
	return bills, nil
}

// ListBills returns all of a user's bills
func (s *BillService) ListBills(userID uuid.UUID) ([]*domain.Bill, error) {
	return s.billRepo.GetAllByUser(userID)
}

// defaultMonthlyBills is the fixed catalogue of recurring household bills,
// all due on the 15th of the month.
var defaultMonthlyBills = []struct {
	Title    string
	Amount   int64
	Category string
}{
	{"Rent/Mortgage", 15000, "Housing"},
	{"Electricity", 2000, "Utilities"},
	{"Water Bill", 500, "Utilities"},
	{"Internet", 1000, "Utilities"},
	{"Mobile Phone", 500, "Utilities"},
	{"Gas Bill", 800, "Utilities"},
	{"Groceries", 5000, "Food"},
	{"Transportation", 2000, "Transport"},
	{"Insurance", 1500, "Insurance"},
	{"Entertainment", 1000, "Entertainment"},
}

// GenerateMonthlyBills inserts the default bill catalogue for the current
// month, due on the 15th. Idempotent per month: it refuses when the user
// already has any bill due this month.
func (s *BillService) GenerateMonthlyBills(userID uuid.UUID) ([]*domain.Bill, error) {
	now := s.now()
	count, err := s.billRepo.CountForMonth(userID, now.Year(), int(now.Month()))
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, domain.ErrBillsAlreadyGenerated
	}

	dueDate := time.Date(now.Year(), now.Month(), 15, 0, 0, 0, 0, time.UTC)
	bills := make([]*domain.Bill, 0, len(defaultMonthlyBills))
	for _, entry := range defaultMonthlyBills {
		bills = append(bills, &domain.Bill{
			UserID:   userID,
			Title:    entry.Title,
			Amount:   decimal.NewFromInt(entry.Amount),
			DueDate:  dueDate,
			Category: entry.Category,
			Status:   domain.BillStatusUnpaid,
		})
	}
	if err := s.billRepo.CreateBatch(bills); err != nil {
		return nil, err
	}

	log.Info().
		Str("user_id", userID.String()).
		Int("count", len(bills)).
		Str("due_date", domain.DateStamp(dueDate)).
		Msg("monthly bills generated")

	for _, bill := range bills {
		s.publisher.Publish(userID, websocket.BillCreated(bill))
	}
	return bills, nil
}

// PayBill pays a bill out of the needs bucket. The payment is blocked when
// the bucket cannot cover the amount. On success the bill flips to paid and
// a matching need expense is recorded, all in one transaction.
func (s *BillService) PayBill(ctx context.Context, userID uuid.UUID, billID int32) (*domain.Bill, error) {
	bill, err := s.billRepo.GetByID(userID, billID)
	if err != nil {
		return nil, err
	}
	if bill.Status == domain.BillStatusPaid {
		return nil, domain.ErrBillAlreadyPaid
	}

	state, err := s.stateRepo.GetOrCreate(userID)
	if err != nil {
		return nil, err
	}
	state.ApplyMonthlyRollover(domain.MonthStamp(s.now()))

	if err := state.PayBill(bill.Amount); err != nil {
		return nil, err
	}

	paidAt := s.now()
	expense, err := domain.NewExpense(userID, bill.Amount, bill.Category, paidAt,
		"Bill payment: "+bill.Title, domain.ExpenseTypeNeed)
	if err != nil {
		return nil, err
	}

	err = s.txRunner.RunInTx(ctx, func(tx any) error {
		if txErr := s.billRepo.MarkPaidTx(tx, userID, billID, paidAt); txErr != nil {
			return txErr
		}
		if _, txErr := s.expenseRepo.CreateTx(tx, expense); txErr != nil {
			return txErr
		}
		return s.stateRepo.SaveTx(tx, state)
	})
	if err != nil {
		return nil, err
	}

	bill.Status = domain.BillStatusPaid
	bill.PaidAt = &paidAt

	log.Info().
		Str("user_id", userID.String()).
		Int32("bill_id", billID).
		Str("amount", bill.Amount.StringFixed(2)).
		Msg("bill paid")

	s.publisher.Publish(userID, websocket.BillPaid(bill))
	s.publisher.Publish(userID, websocket.BudgetUpdated(state))
	return bill, nil
}

// DeleteBill removes a bill. Paid bills keep their expense record.
func (s *BillService) DeleteBill(userID uuid.UUID, id int32) error {
	return s.billRepo.Delete(userID, id)
}

// CheckReminders evaluates the user's unpaid bills and returns a notice when
// one should be surfaced, stamping the reminder date so daily mode fires at
// most once per day.
func (s *BillService) CheckReminders(userID uuid.UUID) (*domain.ReminderNotice, error) {
	state, err := s.stateRepo.GetOrCreate(userID)
	if err != nil {
		return nil, err
	}
	unpaid, err := s.billRepo.GetUnpaidByUser(userID)
	if err != nil {
		return nil, err
	}

	today := s.now()
	notice := domain.EvaluateReminders(today, unpaid, state.LastReminderDate, state.DailyRemindersEnabled)
	if notice == nil {
		return nil, nil
	}

	state.LastReminderDate = domain.DateStamp(today)
	if err := s.stateRepo.Save(state); err != nil {
		return nil, err
	}
	s.publisher.Publish(userID, websocket.BillReminder(notice))
	return notice, nil
}

// SetDailyReminders toggles the once-per-day reminder throttle
func (s *BillService) SetDailyReminders(userID uuid.UUID, enabled bool) error {
	state, err := s.stateRepo.GetOrCreate(userID)
	if err != nil {
		return err
	}
	state.DailyRemindersEnabled = enabled
	return s.stateRepo.Save(state)
}
