// Package testutil provides in-memory repository mocks for service tests.
package testutil

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kvharsha/fintrack/fintrack-backend/internal/domain"
	"github.com/kvharsha/fintrack/fintrack-backend/internal/websocket"
)

// MockUserRepository is a mock implementation of domain.UserRepository
type MockUserRepository struct {
	ByID     map[uuid.UUID]*domain.User
	CreateFn func(user *domain.User) (*domain.User, error)
}

// NewMockUserRepository creates a new MockUserRepository
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{ByID: make(map[uuid.UUID]*domain.User)}
}

// Create creates a new user
func (m *MockUserRepository) Create(user *domain.User) (*domain.User, error) {
	if m.CreateFn != nil {
		return m.CreateFn(user)
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.CreatedAt = time.Now()
	m.ByID[user.ID] = user
	return user, nil
}

// GetByID retrieves a user by ID
func (m *MockUserRepository) GetByID(id uuid.UUID) (*domain.User, error) {
	if user, ok := m.ByID[id]; ok {
		return user, nil
	}
	return nil, domain.ErrUserNotFound
}

// GetByUsernameOrEmail retrieves a user by username or email
func (m *MockUserRepository) GetByUsernameOrEmail(identifier string) (*domain.User, error) {
	for _, user := range m.ByID {
		if user.Username == identifier || user.Email == identifier {
			return user, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

// FindConflict reports which of username or email is already taken
func (m *MockUserRepository) FindConflict(username, email string) (bool, bool, error) {
	var usernameTaken, emailTaken bool
	for _, user := range m.ByID {
		if user.Username == username {
			usernameTaken = true
		}
		if user.Email == email {
			emailTaken = true
		}
	}
	return usernameTaken, emailTaken, nil
}

// MockBudgetStateRepository is a mock implementation of domain.BudgetStateRepository
type MockBudgetStateRepository struct {
	States map[uuid.UUID]*domain.BudgetState
	SaveFn func(state *domain.BudgetState) error
}

// NewMockBudgetStateRepository creates a new MockBudgetStateRepository
func NewMockBudgetStateRepository() *MockBudgetStateRepository {
	return &MockBudgetStateRepository{States: make(map[uuid.UUID]*domain.BudgetState)}
}

// GetOrCreate loads or initializes a user's budget state
func (m *MockBudgetStateRepository) GetOrCreate(userID uuid.UUID) (*domain.BudgetState, error) {
	if state, ok := m.States[userID]; ok {
		return state, nil
	}
	state := domain.NewBudgetState(userID)
	m.States[userID] = state
	return state, nil
}

// Save persists the state
func (m *MockBudgetStateRepository) Save(state *domain.BudgetState) error {
	if m.SaveFn != nil {
		return m.SaveFn(state)
	}
	m.States[state.UserID] = state
	return nil
}

// SaveTx persists the state within a transaction
func (m *MockBudgetStateRepository) SaveTx(tx any, state *domain.BudgetState) error {
	return m.Save(state)
}

// MockExpenseRepository is a mock implementation of domain.ExpenseRepository
type MockExpenseRepository struct {
	Expenses map[int32]*domain.Expense
	NextID   int32
	CreateFn func(expense *domain.Expense) (*domain.Expense, error)
	DeleteFn func(userID uuid.UUID, id int32) error
}

// NewMockExpenseRepository creates a new MockExpenseRepository
func NewMockExpenseRepository() *MockExpenseRepository {
	return &MockExpenseRepository{Expenses: make(map[int32]*domain.Expense), NextID: 1}
}

// Create inserts an expense
func (m *MockExpenseRepository) Create(expense *domain.Expense) (*domain.Expense, error) {
	if m.CreateFn != nil {
		return m.CreateFn(expense)
	}
	expense.ID = m.NextID
	m.NextID++
	expense.CreatedAt = time.Now()
	m.Expenses[expense.ID] = expense
	return expense, nil
}

// CreateTx inserts an expense within a transaction
func (m *MockExpenseRepository) CreateTx(tx any, expense *domain.Expense) (*domain.Expense, error) {
	return m.Create(expense)
}

// GetByID retrieves an expense
func (m *MockExpenseRepository) GetByID(userID uuid.UUID, id int32) (*domain.Expense, error) {
	if e, ok := m.Expenses[id]; ok && e.UserID == userID {
		return e, nil
	}
	return nil, domain.ErrExpenseNotFound
}

// GetAllByUser retrieves all expenses for a user
func (m *MockExpenseRepository) GetAllByUser(userID uuid.UUID) ([]*domain.Expense, error) {
	var result []*domain.Expense
	for _, e := range m.Expenses {
		if e.UserID == userID {
			result = append(result, e)
		}
	}
	return result, nil
}

// GetRecent retrieves the most recent expenses for a user
func (m *MockExpenseRepository) GetRecent(userID uuid.UUID, limit int) ([]*domain.Expense, error) {
	all, _ := m.GetAllByUser(userID)
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

// Delete removes an expense
func (m *MockExpenseRepository) Delete(userID uuid.UUID, id int32) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(userID, id)
	}
	if e, ok := m.Expenses[id]; ok && e.UserID == userID {
		delete(m.Expenses, id)
		return nil
	}
	return domain.ErrExpenseNotFound
}

// DeleteTx removes an expense within a transaction
func (m *MockExpenseRepository) DeleteTx(tx any, userID uuid.UUID, id int32) error {
	return m.Delete(userID, id)
}

// CategoryTotals aggregates positive spend per category
func (m *MockExpenseRepository) CategoryTotals(userID uuid.UUID) ([]*domain.CategoryTotal, error) {
	totals := make(map[string]decimal.Decimal)
	for _, e := range m.Expenses {
		if e.UserID == userID {
			totals[e.Category] = totals[e.Category].Add(e.Outflow())
		}
	}
	var result []*domain.CategoryTotal
	for cat, total := range totals {
		result = append(result, &domain.CategoryTotal{Category: cat, Total: total})
	}
	return result, nil
}

// SumOutflowForMonth totals positive spend for a month
func (m *MockExpenseRepository) SumOutflowForMonth(userID uuid.UUID, year, month int) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, e := range m.Expenses {
		if e.UserID == userID && e.Date.Year() == year && int(e.Date.Month()) == month {
			total = total.Add(e.Outflow())
		}
	}
	return total, nil
}

// SetReceiptKey attaches a receipt key to an expense
func (m *MockExpenseRepository) SetReceiptKey(userID uuid.UUID, id int32, key string) error {
	if e, ok := m.Expenses[id]; ok && e.UserID == userID {
		e.ReceiptKey = &key
		return nil
	}
	return domain.ErrExpenseNotFound
}

// MockBillRepository is a mock implementation of domain.BillRepository
type MockBillRepository struct {
	Bills      map[int32]*domain.Bill
	NextID     int32
	MarkPaidFn func(tx any, userID uuid.UUID, id int32, paidAt time.Time) error
}

// NewMockBillRepository creates a new MockBillRepository
func NewMockBillRepository() *MockBillRepository {
	return &MockBillRepository{Bills: make(map[int32]*domain.Bill), NextID: 1}
}

// Create inserts a bill
func (m *MockBillRepository) Create(bill *domain.Bill) (*domain.Bill, error) {
	bill.ID = m.NextID
	m.NextID++
	bill.CreatedAt = time.Now()
	m.Bills[bill.ID] = bill
	return bill, nil
}

// CreateBatch inserts several bills
func (m *MockBillRepository) CreateBatch(bills []*domain.Bill) error {
	for _, b := range bills {
		if _, err := m.Create(b); err != nil {
			return err
		}
	}
	return nil
}

// GetByID retrieves a bill
func (m *MockBillRepository) GetByID(userID uuid.UUID, id int32) (*domain.Bill, error) {
	if b, ok := m.Bills[id]; ok && b.UserID == userID {
		return b, nil
	}
	return nil, domain.ErrBillNotFound
}

// GetAllByUser retrieves all bills for a user
func (m *MockBillRepository) GetAllByUser(userID uuid.UUID) ([]*domain.Bill, error) {
	var result []*domain.Bill
	for _, b := range m.Bills {
		if b.UserID == userID {
			result = append(result, b)
		}
	}
	return result, nil
}

// GetUnpaidByUser retrieves unpaid bills for a user
func (m *MockBillRepository) GetUnpaidByUser(userID uuid.UUID) ([]*domain.Bill, error) {
	var result []*domain.Bill
	for _, b := range m.Bills {
		if b.UserID == userID && b.Status == domain.BillStatusUnpaid {
			result = append(result, b)
		}
	}
	return result, nil
}

// MarkPaidTx flips an unpaid bill to paid
func (m *MockBillRepository) MarkPaidTx(tx any, userID uuid.UUID, id int32, paidAt time.Time) error {
	if m.MarkPaidFn != nil {
		return m.MarkPaidFn(tx, userID, id, paidAt)
	}
	b, ok := m.Bills[id]
	if !ok || b.UserID != userID {
		return domain.ErrBillNotFound
	}
	if b.Status == domain.BillStatusPaid {
		return domain.ErrBillAlreadyPaid
	}
	b.Status = domain.BillStatusPaid
	b.PaidAt = &paidAt
	return nil
}

// Delete removes a bill
func (m *MockBillRepository) Delete(userID uuid.UUID, id int32) error {
	if b, ok := m.Bills[id]; ok && b.UserID == userID {
		delete(m.Bills, id)
		return nil
	}
	return domain.ErrBillNotFound
}

// CountForMonth counts bills due in a month
func (m *MockBillRepository) CountForMonth(userID uuid.UUID, year, month int) (int64, error) {
	var count int64
	for _, b := range m.Bills {
		if b.UserID == userID && b.DueDate.Year() == year && int(b.DueDate.Month()) == month {
			count++
		}
	}
	return count, nil
}

// SumUnpaid totals unpaid bill amounts
func (m *MockBillRepository) SumUnpaid(userID uuid.UUID) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, b := range m.Bills {
		if b.UserID == userID && b.Status == domain.BillStatusUnpaid {
			total = total.Add(b.Amount)
		}
	}
	return total, nil
}

// MockGoalRepository is a mock implementation of domain.GoalRepository
type MockGoalRepository struct {
	Goals  map[int32]*domain.SavingsGoal
	NextID int32
}

// NewMockGoalRepository creates a new MockGoalRepository
func NewMockGoalRepository() *MockGoalRepository {
	return &MockGoalRepository{Goals: make(map[int32]*domain.SavingsGoal), NextID: 1}
}

// Create inserts a goal
func (m *MockGoalRepository) Create(goal *domain.SavingsGoal) (*domain.SavingsGoal, error) {
	goal.ID = m.NextID
	m.NextID++
	goal.CreatedAt = time.Now()
	m.Goals[goal.ID] = goal
	return goal, nil
}

// GetByID retrieves a goal
func (m *MockGoalRepository) GetByID(userID uuid.UUID, id int32) (*domain.SavingsGoal, error) {
	if g, ok := m.Goals[id]; ok && g.UserID == userID {
		return g, nil
	}
	return nil, domain.ErrGoalNotFound
}

// GetAllByUser retrieves all goals for a user
func (m *MockGoalRepository) GetAllByUser(userID uuid.UUID) ([]*domain.SavingsGoal, error) {
	var result []*domain.SavingsGoal
	for _, g := range m.Goals {
		if g.UserID == userID {
			result = append(result, g)
		}
	}
	return result, nil
}

// UpdateProgressTx sets a goal's progress
func (m *MockGoalRepository) UpdateProgressTx(tx any, userID uuid.UUID, id int32, progress decimal.Decimal) error {
	g, ok := m.Goals[id]
	if !ok || g.UserID != userID {
		return domain.ErrGoalNotFound
	}
	g.Progress = progress
	return nil
}

// Delete removes a goal
func (m *MockGoalRepository) Delete(userID uuid.UUID, id int32) error {
	if g, ok := m.Goals[id]; ok && g.UserID == userID {
		delete(m.Goals, id)
		return nil
	}
	return domain.ErrGoalNotFound
}

// MockDebtRepository is a mock implementation of domain.DebtRepository
type MockDebtRepository struct {
	Debts  map[int32]*domain.Debt
	NextID int32
}

// NewMockDebtRepository creates a new MockDebtRepository
func NewMockDebtRepository() *MockDebtRepository {
	return &MockDebtRepository{Debts: make(map[int32]*domain.Debt), NextID: 1}
}

// Create inserts a debt
func (m *MockDebtRepository) Create(debt *domain.Debt) (*domain.Debt, error) {
	debt.ID = m.NextID
	m.NextID++
	debt.CreatedAt = time.Now()
	m.Debts[debt.ID] = debt
	return debt, nil
}

// GetByID retrieves a debt
func (m *MockDebtRepository) GetByID(userID uuid.UUID, id int32) (*domain.Debt, error) {
	if d, ok := m.Debts[id]; ok && d.UserID == userID {
		return d, nil
	}
	return nil, domain.ErrDebtNotFound
}

// GetActiveByUser retrieves active debts
func (m *MockDebtRepository) GetActiveByUser(userID uuid.UUID) ([]*domain.Debt, error) {
	var result []*domain.Debt
	for _, d := range m.Debts {
		if d.UserID == userID && d.Status == domain.DebtStatusActive {
			result = append(result, d)
		}
	}
	return result, nil
}

// GetAllByUser retrieves all debts
func (m *MockDebtRepository) GetAllByUser(userID uuid.UUID) ([]*domain.Debt, error) {
	var result []*domain.Debt
	for _, d := range m.Debts {
		if d.UserID == userID {
			result = append(result, d)
		}
	}
	return result, nil
}

// UpdateOutstandingTx sets outstanding balance and status
func (m *MockDebtRepository) UpdateOutstandingTx(tx any, id int32, outstanding decimal.Decimal, status domain.DebtStatus) error {
	d, ok := m.Debts[id]
	if !ok {
		return domain.ErrDebtNotFound
	}
	d.Outstanding = outstanding
	d.Status = status
	return nil
}

// UpdateStatus sets a debt's status
func (m *MockDebtRepository) UpdateStatus(userID uuid.UUID, id int32, status domain.DebtStatus) error {
	d, ok := m.Debts[id]
	if !ok || d.UserID != userID {
		return domain.ErrDebtNotFound
	}
	d.Status = status
	return nil
}

// MockDebtPaymentRepository is a mock implementation of domain.DebtPaymentRepository
type MockDebtPaymentRepository struct {
	Payments map[int32]*domain.DebtPayment
	NextID   int32
}

// NewMockDebtPaymentRepository creates a new MockDebtPaymentRepository
func NewMockDebtPaymentRepository() *MockDebtPaymentRepository {
	return &MockDebtPaymentRepository{Payments: make(map[int32]*domain.DebtPayment), NextID: 1}
}

// CreateTx inserts a payment record
func (m *MockDebtPaymentRepository) CreateTx(tx any, payment *domain.DebtPayment) (*domain.DebtPayment, error) {
	payment.ID = m.NextID
	m.NextID++
	payment.CreatedAt = time.Now()
	m.Payments[payment.ID] = payment
	return payment, nil
}

// GetByDebtID retrieves all payments for a debt
func (m *MockDebtPaymentRepository) GetByDebtID(debtID int32) ([]*domain.DebtPayment, error) {
	var result []*domain.DebtPayment
	for _, p := range m.Payments {
		if p.DebtID == debtID {
			result = append(result, p)
		}
	}
	return result, nil
}

// SumInterestByDebt totals interest paid on a debt
func (m *MockDebtPaymentRepository) SumInterestByDebt(debtID int32) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, p := range m.Payments {
		if p.DebtID == debtID {
			total = total.Add(p.InterestPaid)
		}
	}
	return total, nil
}

// MockInvestmentRepository is a mock implementation of domain.InvestmentRepository
type MockInvestmentRepository struct {
	Investments map[int32]*domain.Investment
	NextID      int32
}

// NewMockInvestmentRepository creates a new MockInvestmentRepository
func NewMockInvestmentRepository() *MockInvestmentRepository {
	return &MockInvestmentRepository{Investments: make(map[int32]*domain.Investment), NextID: 1}
}

// Create inserts an investment
func (m *MockInvestmentRepository) Create(inv *domain.Investment) (*domain.Investment, error) {
	inv.ID = m.NextID
	m.NextID++
	inv.CreatedAt = time.Now()
	inv.UpdatedAt = inv.CreatedAt
	m.Investments[inv.ID] = inv
	return inv, nil
}

// GetByID retrieves an investment
func (m *MockInvestmentRepository) GetByID(userID uuid.UUID, id int32) (*domain.Investment, error) {
	if inv, ok := m.Investments[id]; ok && inv.UserID == userID {
		return inv, nil
	}
	return nil, domain.ErrInvestmentNotFound
}

// GetAllByUser retrieves all investments for a user
func (m *MockInvestmentRepository) GetAllByUser(userID uuid.UUID) ([]*domain.Investment, error) {
	var result []*domain.Investment
	for _, inv := range m.Investments {
		if inv.UserID == userID {
			result = append(result, inv)
		}
	}
	return result, nil
}

// Update persists a holding's mutable fields
func (m *MockInvestmentRepository) Update(inv *domain.Investment) (*domain.Investment, error) {
	stored, ok := m.Investments[inv.ID]
	if !ok || stored.UserID != inv.UserID {
		return nil, domain.ErrInvestmentNotFound
	}
	inv.UpdatedAt = time.Now()
	m.Investments[inv.ID] = inv
	return inv, nil
}

// Delete removes an investment
func (m *MockInvestmentRepository) Delete(userID uuid.UUID, id int32) error {
	if inv, ok := m.Investments[id]; ok && inv.UserID == userID {
		delete(m.Investments, id)
		return nil
	}
	return domain.ErrInvestmentNotFound
}

// MockInvestmentTransactionRepository is a mock implementation of
// domain.InvestmentTransactionRepository
type MockInvestmentTransactionRepository struct {
	Transactions map[int32]*domain.InvestmentTransaction
	NextID       int32
}

// NewMockInvestmentTransactionRepository creates a new MockInvestmentTransactionRepository
func NewMockInvestmentTransactionRepository() *MockInvestmentTransactionRepository {
	return &MockInvestmentTransactionRepository{Transactions: make(map[int32]*domain.InvestmentTransaction), NextID: 1}
}

// Create inserts a transaction record
func (m *MockInvestmentTransactionRepository) Create(txn *domain.InvestmentTransaction) (*domain.InvestmentTransaction, error) {
	txn.ID = m.NextID
	m.NextID++
	txn.CreatedAt = time.Now()
	m.Transactions[txn.ID] = txn
	return txn, nil
}

// GetByInvestmentID retrieves all transactions for a holding
func (m *MockInvestmentTransactionRepository) GetByInvestmentID(investmentID int32) ([]*domain.InvestmentTransaction, error) {
	var result []*domain.InvestmentTransaction
	for _, t := range m.Transactions {
		if t.InvestmentID == investmentID {
			result = append(result, t)
		}
	}
	return result, nil
}

// MockRiskProfileRepository is a mock implementation of domain.RiskProfileRepository
type MockRiskProfileRepository struct {
	Profiles map[uuid.UUID]*domain.RiskProfile
}

// NewMockRiskProfileRepository creates a new MockRiskProfileRepository
func NewMockRiskProfileRepository() *MockRiskProfileRepository {
	return &MockRiskProfileRepository{Profiles: make(map[uuid.UUID]*domain.RiskProfile)}
}

// Get retrieves the user's risk profile
func (m *MockRiskProfileRepository) Get(userID uuid.UUID) (*domain.RiskProfile, error) {
	if p, ok := m.Profiles[userID]; ok {
		return p, nil
	}
	return nil, domain.ErrNotFound
}

// Upsert creates or replaces the user's risk profile
func (m *MockRiskProfileRepository) Upsert(profile *domain.RiskProfile) (*domain.RiskProfile, error) {
	profile.UpdatedAt = time.Now()
	m.Profiles[profile.UserID] = profile
	return profile, nil
}

// MockTxRunner is a mock implementation of domain.TxRunner that runs the
// callback with a nil handle. Mock repositories ignore the handle.
type MockTxRunner struct {
	RunFn func(ctx context.Context, fn func(tx any) error) error
}

// RunInTx runs fn immediately
func (m *MockTxRunner) RunInTx(ctx context.Context, fn func(tx any) error) error {
	if m.RunFn != nil {
		return m.RunFn(ctx, fn)
	}
	return fn(nil)
}

// MockPublisher captures published WebSocket events
type MockPublisher struct {
	Events []websocket.Event
	Users  []uuid.UUID
}

// Publish records the event
func (m *MockPublisher) Publish(userID uuid.UUID, event websocket.Event) {
	m.Users = append(m.Users, userID)
	m.Events = append(m.Events, event)
}
