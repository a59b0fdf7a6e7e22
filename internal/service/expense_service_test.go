package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kvharsha/fintrack/fintrack-backend/internal/domain"
	"github.com/kvharsha/fintrack/fintrack-backend/internal/testutil"
)

type expenseFixture struct {
	svc       *ExpenseService
	expenses  *testutil.MockExpenseRepository
	states    *testutil.MockBudgetStateRepository
	publisher *testutil.MockPublisher
	userID    uuid.UUID
}

func newExpenseFixture(t *testing.T) *expenseFixture {
	t.Helper()
	expenses := testutil.NewMockExpenseRepository()
	states := testutil.NewMockBudgetStateRepository()
	pub := &testutil.MockPublisher{}
	svc := NewExpenseService(expenses, states, &testutil.MockTxRunner{}, pub)
	svc.SetClock(fixedClock(2026, time.August, 29))

	userID := uuid.New()
	state, err := states.GetOrCreate(userID)
	require.NoError(t, err)
	state.SetIncome(dec("10000"))
	state.ApplyMonthlyRollover("2026-08")

	return &expenseFixture{svc: svc, expenses: expenses, states: states, publisher: pub, userID: userID}
}

func TestAddExpense(t *testing.T) {
	t.Run("stores negated amount and deducts bucket", func(t *testing.T) {
		f := newExpenseFixture(t)

		res, err := f.svc.AddExpense(context.Background(), f.userID, AddExpenseInput{
			Amount:   dec("1200.50"),
			Category: "Groceries",
			Type:     domain.ExpenseTypeNeed,
		})
		require.NoError(t, err)
		assert.Empty(t, res.Warning)
		assert.True(t, res.Expense.Amount.Equal(dec("-1200.50")), "stored %s", res.Expense.Amount)
		assert.True(t, res.Expense.Outflow().Equal(dec("1200.50")))

		state := f.states.States[f.userID]
		assert.True(t, state.Allocation.Needs.Equal(dec("3799.50")))
	})

	t.Run("defaults category and date", func(t *testing.T) {
		f := newExpenseFixture(t)

		res, err := f.svc.AddExpense(context.Background(), f.userID, AddExpenseInput{
			Amount: dec("100"),
			Type:   domain.ExpenseTypeWant,
		})
		require.NoError(t, err)
		assert.Equal(t, domain.DefaultExpenseCategory, res.Expense.Category)
		assert.Equal(t, 2026, res.Expense.Date.Year())
	})

	t.Run("overspend warns but records", func(t *testing.T) {
		f := newExpenseFixture(t)

		res, err := f.svc.AddExpense(context.Background(), f.userID, AddExpenseInput{
			Amount:   dec("9999"),
			Category: "Rent",
			Type:     domain.ExpenseTypeNeed,
		})
		require.NoError(t, err)
		assert.Equal(t, BudgetExceededWarning, res.Warning)
		assert.Len(t, f.expenses.Expenses, 1)

		state := f.states.States[f.userID]
		assert.True(t, state.Allocation.Needs.IsNegative())
	})

	t.Run("rejects non-positive amount", func(t *testing.T) {
		f := newExpenseFixture(t)

		_, err := f.svc.AddExpense(context.Background(), f.userID, AddExpenseInput{
			Amount: dec("0"),
			Type:   domain.ExpenseTypeNeed,
		})
		assert.ErrorIs(t, err, domain.ErrInvalidAmount)
		assert.Empty(t, f.expenses.Expenses)
	})

	t.Run("publishes expense and budget events", func(t *testing.T) {
		f := newExpenseFixture(t)

		_, err := f.svc.AddExpense(context.Background(), f.userID, AddExpenseInput{
			Amount: dec("50"),
			Type:   domain.ExpenseTypeWant,
		})
		require.NoError(t, err)

		types := make([]string, 0, len(f.publisher.Events))
		for _, e := range f.publisher.Events {
			types = append(types, e.Type)
		}
		assert.Contains(t, types, "expense.created")
		assert.Contains(t, types, "budget.updated")
	})
}

func TestDeleteExpense(t *testing.T) {
	t.Run("credits the bucket back", func(t *testing.T) {
		f := newExpenseFixture(t)

		res, err := f.svc.AddExpense(context.Background(), f.userID, AddExpenseInput{
			Amount: dec("750.25"),
			Type:   domain.ExpenseTypeWant,
		})
		require.NoError(t, err)

		require.NoError(t, f.svc.DeleteExpense(context.Background(), f.userID, res.Expense.ID))

		state := f.states.States[f.userID]
		assert.True(t, state.Allocation.Wants.Equal(dec("3000")), "wants %s", state.Allocation.Wants)
		assert.Empty(t, f.expenses.Expenses)
	})

	t.Run("unknown expense", func(t *testing.T) {
		f := newExpenseFixture(t)
		err := f.svc.DeleteExpense(context.Background(), f.userID, 999)
		assert.ErrorIs(t, err, domain.ErrExpenseNotFound)
	})

	t.Run("other user's expense is invisible", func(t *testing.T) {
		f := newExpenseFixture(t)
		res, err := f.svc.AddExpense(context.Background(), f.userID, AddExpenseInput{
			Amount: dec("10"),
			Type:   domain.ExpenseTypeWant,
		})
		require.NoError(t, err)

		err = f.svc.DeleteExpense(context.Background(), uuid.New(), res.Expense.ID)
		assert.ErrorIs(t, err, domain.ErrExpenseNotFound)
	})
}
