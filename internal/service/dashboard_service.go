package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kvharsha/fintrack/fintrack-backend/internal/domain"
	"github.com/kvharsha/fintrack/fintrack-backend/internal/util"
)

// Dashboard is the aggregated home-screen view. BillsDue always carries the
// overdue/upcoming breakdown; Reminder is the throttled notice and is nil
// when suppressed for the day.
type Dashboard struct {
	Budget          *domain.BudgetState      `json:"budget"`
	RecentExpenses  []*domain.Expense        `json:"recentExpenses"`
	MonthSpend      decimal.Decimal          `json:"monthSpend"`
	PrevMonthSpend  decimal.Decimal          `json:"prevMonthSpend"`
	CategoryTotals  []*domain.CategoryTotal  `json:"categoryTotals"`
	UnpaidBillTotal decimal.Decimal          `json:"unpaidBillTotal"`
	BillsDue        *domain.ReminderNotice   `json:"billsDue"`
	Reminder        *domain.ReminderNotice   `json:"reminder,omitempty"`
	Goals           []*domain.SavingsGoal    `json:"goals"`
	DebtSummary     *domain.DebtSummary      `json:"debtSummary"`
	Portfolio       *domain.PortfolioSummary `json:"portfolio"`
}

// DashboardService aggregates the other services into one view
type DashboardService struct {
	budgetService     *BudgetService
	expenseService    *ExpenseService
	billService       *BillService
	goalService       *GoalService
	debtService       *DebtService
	investmentService *InvestmentService
	billRepo          domain.BillRepository
	expenseRepo       domain.ExpenseRepository
	now               func() time.Time
}

// NewDashboardService creates a new DashboardService
func NewDashboardService(budgetService *BudgetService, expenseService *ExpenseService, billService *BillService, goalService *GoalService, debtService *DebtService, investmentService *InvestmentService, billRepo domain.BillRepository, expenseRepo domain.ExpenseRepository) *DashboardService {
	return &DashboardService{
		budgetService:     budgetService,
		expenseService:    expenseService,
		billService:       billService,
		goalService:       goalService,
		debtService:       debtService,
		investmentService: investmentService,
		billRepo:          billRepo,
		expenseRepo:       expenseRepo,
		now:               time.Now,
	}
}

// SetClock overrides the service clock, for tests
func (s *DashboardService) SetClock(now func() time.Time) {
	s.now = now
}

// Get builds the dashboard for a user
func (s *DashboardService) Get(ctx context.Context, userID uuid.UUID) (*Dashboard, error) {
	budget, err := s.budgetService.GetState(ctx, userID)
	if err != nil {
		return nil, err
	}

	recent, err := s.expenseService.RecentExpenses(userID, 5)
	if err != nil {
		return nil, err
	}

	now := s.now()
	monthSpend, err := s.expenseRepo.SumOutflowForMonth(userID, now.Year(), int(now.Month()))
	if err != nil {
		return nil, err
	}

	prevYear, prevMonth := util.PreviousMonth(now.Year(), int(now.Month()))
	prevMonthSpend, err := s.expenseRepo.SumOutflowForMonth(userID, prevYear, prevMonth)
	if err != nil {
		return nil, err
	}

	categories, err := s.expenseService.CategoryTotals(userID)
	if err != nil {
		return nil, err
	}

	unpaidTotal, err := s.billRepo.SumUnpaid(userID)
	if err != nil {
		return nil, err
	}

	unpaid, err := s.billRepo.GetUnpaidByUser(userID)
	if err != nil {
		return nil, err
	}
	billsDue := domain.SummarizeDueBills(now, unpaid)

	reminder, err := s.billService.CheckReminders(userID)
	if err != nil {
		return nil, err
	}

	goals, err := s.goalService.ListGoals(userID)
	if err != nil {
		return nil, err
	}

	debtSummary, err := s.debtService.Summary(userID)
	if err != nil {
		return nil, err
	}

	portfolio, err := s.investmentService.Portfolio(userID)
	if err != nil {
		return nil, err
	}

	return &Dashboard{
		Budget:          budget,
		RecentExpenses:  recent,
		MonthSpend:      monthSpend,
		PrevMonthSpend:  prevMonthSpend,
		CategoryTotals:  categories,
		UnpaidBillTotal: unpaidTotal,
		BillsDue:        billsDue,
		Reminder:        reminder,
		Goals:           goals,
		DebtSummary:     debtSummary,
		Portfolio:       portfolio,
	}, nil
}
