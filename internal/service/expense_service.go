package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kvharsha/fintrack/fintrack-backend/internal/domain"
	"github.com/kvharsha/fintrack/fintrack-backend/internal/websocket"
)

// BudgetExceededWarning is the advisory message attached when spending
// pushes a bucket past its allocation.
const BudgetExceededWarning = "This expense exceeds your remaining budget for this category"

// ExpenseService handles expense tracking against the budget buckets
type ExpenseService struct {
	expenseRepo domain.ExpenseRepository
	stateRepo   domain.BudgetStateRepository
	txRunner    domain.TxRunner
	publisher   websocket.EventPublisher
	now         func() time.Time
}

// NewExpenseService creates a new ExpenseService
func NewExpenseService(expenseRepo domain.ExpenseRepository, stateRepo domain.BudgetStateRepository, txRunner domain.TxRunner, publisher websocket.EventPublisher) *ExpenseService {
	return &ExpenseService{
		expenseRepo: expenseRepo,
		stateRepo:   stateRepo,
		txRunner:    txRunner,
		publisher:   publisher,
		now:         time.Now,
	}
}

// SetClock overrides the service clock, for tests
func (s *ExpenseService) SetClock(now func() time.Time) {
	s.now = now
}

// AddExpenseInput contains input for recording an expense
type AddExpenseInput struct {
	Amount      decimal.Decimal
	Category    string
	Date        time.Time
	Description string
	Type        domain.ExpenseType
}

// AddExpenseResult carries the stored expense plus an advisory warning when
// the bucket could not cover the amount. The expense is recorded either way.
type AddExpenseResult struct {
	Expense *domain.Expense `json:"expense"`
	Warning string          `json:"warning,omitempty"`
}

// AddExpense records an expense and deducts it from the matching budget
// bucket in one transaction. Overspending warns but never blocks.
func (s *ExpenseService) AddExpense(ctx context.Context, userID uuid.UUID, input AddExpenseInput) (*AddExpenseResult, error) {
	date := input.Date
	if date.IsZero() {
		date = s.now()
	}
	expense, err := domain.NewExpense(userID, input.Amount, input.Category, date, input.Description, input.Type)
	if err != nil {
		return nil, err
	}

	state, err := s.stateRepo.GetOrCreate(userID)
	if err != nil {
		return nil, err
	}
	state.ApplyMonthlyRollover(domain.MonthStamp(s.now()))

	exceeded, err := state.PostExpense(input.Amount, expense.Type)
	if err != nil {
		return nil, err
	}

	var stored *domain.Expense
	err = s.txRunner.RunInTx(ctx, func(tx any) error {
		var txErr error
		stored, txErr = s.expenseRepo.CreateTx(tx, expense)
		if txErr != nil {
			return txErr
		}
		return s.stateRepo.SaveTx(tx, state)
	})
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(userID, websocket.ExpenseCreated(stored))
	s.publisher.Publish(userID, websocket.BudgetUpdated(state))

	result := &AddExpenseResult{Expense: stored}
	if exceeded {
		result.Warning = BudgetExceededWarning
	}
	return result, nil
}

// DeleteExpense removes an expense and credits its amount back to the
// originating bucket in one transaction.
func (s *ExpenseService) DeleteExpense(ctx context.Context, userID uuid.UUID, id int32) error {
	expense, err := s.expenseRepo.GetByID(userID, id)
	if err != nil {
		return err
	}

	state, err := s.stateRepo.GetOrCreate(userID)
	if err != nil {
		return err
	}
	state.ReverseExpense(expense.Amount, expense.Type)

	err = s.txRunner.RunInTx(ctx, func(tx any) error {
		if txErr := s.expenseRepo.DeleteTx(tx, userID, id); txErr != nil {
			return txErr
		}
		return s.stateRepo.SaveTx(tx, state)
	})
	if err != nil {
		return err
	}

	s.publisher.Publish(userID, websocket.ExpenseDeleted(expense))
	s.publisher.Publish(userID, websocket.BudgetUpdated(state))
	return nil
}

// ListExpenses returns all of a user's expenses
func (s *ExpenseService) ListExpenses(userID uuid.UUID) ([]*domain.Expense, error) {
	return s.expenseRepo.GetAllByUser(userID)
}

// RecentExpenses returns the most recent expenses
func (s *ExpenseService) RecentExpenses(userID uuid.UUID, limit int) ([]*domain.Expense, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.expenseRepo.GetRecent(userID, limit)
}

// CategoryTotals aggregates positive spend per category
func (s *ExpenseService) CategoryTotals(userID uuid.UUID) ([]*domain.CategoryTotal, error) {
	return s.expenseRepo.CategoryTotals(userID)
}
