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

type billFixture struct {
	svc      *BillService
	bills    *testutil.MockBillRepository
	expenses *testutil.MockExpenseRepository
	states   *testutil.MockBudgetStateRepository
	userID   uuid.UUID
}

func newBillFixture(t *testing.T) *billFixture {
	t.Helper()
	bills := testutil.NewMockBillRepository()
	expenses := testutil.NewMockExpenseRepository()
	states := testutil.NewMockBudgetStateRepository()
	svc := NewBillService(bills, expenses, states, &testutil.MockTxRunner{}, &testutil.MockPublisher{})
	svc.SetClock(fixedClock(2026, time.August, 29))

	userID := uuid.New()
	state, err := states.GetOrCreate(userID)
	require.NoError(t, err)
	state.SetIncome(dec("10000"))
	state.ApplyMonthlyRollover("2026-08")

	return &billFixture{svc: svc, bills: bills, expenses: expenses, states: states, userID: userID}
}

func (f *billFixture) addBill(t *testing.T, amount string) *domain.Bill {
	t.Helper()
	bill, err := f.svc.CreateBill(f.userID, CreateBillInput{
		Title:   "Electricity",
		Amount:  dec(amount),
		DueDate: time.Date(2026, time.September, 5, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return bill
}

func TestCreateBill(t *testing.T) {
	t.Run("defaults category", func(t *testing.T) {
		f := newBillFixture(t)
		bill := f.addBill(t, "1500")
		assert.Equal(t, domain.DefaultBillCategory, bill.Category)
		assert.Equal(t, domain.BillStatusUnpaid, bill.Status)
	})

	t.Run("rejects missing fields", func(t *testing.T) {
		f := newBillFixture(t)
		_, err := f.svc.CreateBill(f.userID, CreateBillInput{Amount: dec("100")})
		assert.ErrorIs(t, err, domain.ErrBillFieldsRequired)
	})

	t.Run("batch is all or nothing", func(t *testing.T) {
		f := newBillFixture(t)
		_, err := f.svc.CreateBills(f.userID, []CreateBillInput{
			{Title: "Rent", Amount: dec("8000"), DueDate: time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC)},
			{Title: "", Amount: dec("100"), DueDate: time.Date(2026, time.September, 2, 0, 0, 0, 0, time.UTC)},
		})
		assert.ErrorIs(t, err, domain.ErrBillFieldsRequired)
		assert.Empty(t, f.bills.Bills)
	})
}

func TestPayBill(t *testing.T) {
	t.Run("deducts needs and records expense", func(t *testing.T) {
		f := newBillFixture(t)
		bill := f.addBill(t, "1500")

		paid, err := f.svc.PayBill(context.Background(), f.userID, bill.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.BillStatusPaid, paid.Status)
		require.NotNil(t, paid.PaidAt)

		state := f.states.States[f.userID]
		assert.True(t, state.Allocation.Needs.Equal(dec("3500")), "needs %s", state.Allocation.Needs)

		require.Len(t, f.expenses.Expenses, 1)
		for _, e := range f.expenses.Expenses {
			assert.Equal(t, domain.ExpenseTypeNeed, e.Type)
			assert.Equal(t, "Bill payment: Electricity", e.Description)
			assert.True(t, e.Outflow().Equal(dec("1500")))
		}
	})

	t.Run("blocks when needs cannot cover", func(t *testing.T) {
		f := newBillFixture(t)
		bill := f.addBill(t, "6000")

		_, err := f.svc.PayBill(context.Background(), f.userID, bill.ID)
		assert.ErrorIs(t, err, domain.ErrInsufficientFunds)

		stored, err := f.bills.GetByID(f.userID, bill.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.BillStatusUnpaid, stored.Status)

		state := f.states.States[f.userID]
		assert.True(t, state.Allocation.Needs.Equal(dec("5000")))
		assert.Empty(t, f.expenses.Expenses)
	})

	t.Run("already paid", func(t *testing.T) {
		f := newBillFixture(t)
		bill := f.addBill(t, "100")
		_, err := f.svc.PayBill(context.Background(), f.userID, bill.ID)
		require.NoError(t, err)

		_, err = f.svc.PayBill(context.Background(), f.userID, bill.ID)
		assert.ErrorIs(t, err, domain.ErrBillAlreadyPaid)
	})

	t.Run("unknown bill", func(t *testing.T) {
		f := newBillFixture(t)
		_, err := f.svc.PayBill(context.Background(), f.userID, 999)
		assert.ErrorIs(t, err, domain.ErrBillNotFound)
	})
}

func TestCheckReminders(t *testing.T) {
	t.Run("stamps reminder date and fires once per day", func(t *testing.T) {
		f := newBillFixture(t)
		f.addBill(t, "500")

		notice, err := f.svc.CheckReminders(f.userID)
		require.NoError(t, err)
		require.NotNil(t, notice)
		assert.Equal(t, "2026-08-29", f.states.States[f.userID].LastReminderDate)

		require.NoError(t, f.svc.SetDailyReminders(f.userID, true))
		notice, err = f.svc.CheckReminders(f.userID)
		require.NoError(t, err)
		assert.Nil(t, notice)
	})

	t.Run("no unpaid bills", func(t *testing.T) {
		f := newBillFixture(t)
		notice, err := f.svc.CheckReminders(f.userID)
		require.NoError(t, err)
		assert.Nil(t, notice)
	})

	t.Run("fires again next day", func(t *testing.T) {
		f := newBillFixture(t)
		f.addBill(t, "500")
		require.NoError(t, f.svc.SetDailyReminders(f.userID, true))

		_, err := f.svc.CheckReminders(f.userID)
		require.NoError(t, err)

		f.svc.SetClock(fixedClock(2026, time.August, 30))
		notice, err := f.svc.CheckReminders(f.userID)
		require.NoError(t, err)
		require.NotNil(t, notice)
		assert.Equal(t, "2026-08-30", f.states.States[f.userID].LastReminderDate)
	})
}

func TestGenerateMonthlyBills(t *testing.T) {
	t.Run("inserts catalogue due on the 15th", func(t *testing.T) {
		f := newBillFixture(t)

		bills, err := f.svc.GenerateMonthlyBills(f.userID)
		require.NoError(t, err)
		require.Len(t, bills, 10)

		due := time.Date(2026, time.August, 15, 0, 0, 0, 0, time.UTC)
		byTitle := make(map[string]*domain.Bill, len(bills))
		for _, b := range bills {
			assert.Equal(t, due, b.DueDate)
			assert.Equal(t, domain.BillStatusUnpaid, b.Status)
			byTitle[b.Title] = b
		}
		require.Contains(t, byTitle, "Rent/Mortgage")
		assert.True(t, byTitle["Rent/Mortgage"].Amount.Equal(dec("15000")))
		assert.Equal(t, "Housing", byTitle["Rent/Mortgage"].Category)
		require.Contains(t, byTitle, "Groceries")
		assert.True(t, byTitle["Groceries"].Amount.Equal(dec("5000")))
	})

	t.Run("idempotent per month", func(t *testing.T) {
		f := newBillFixture(t)

		_, err := f.svc.GenerateMonthlyBills(f.userID)
		require.NoError(t, err)

		_, err = f.svc.GenerateMonthlyBills(f.userID)
		assert.ErrorIs(t, err, domain.ErrBillsAlreadyGenerated)

		all, err := f.svc.ListBills(f.userID)
		require.NoError(t, err)
		assert.Len(t, all, 10)
	})

	t.Run("any bill due this month blocks generation", func(t *testing.T) {
		f := newBillFixture(t)
		_, err := f.svc.CreateBill(f.userID, CreateBillInput{
			Title:   "One-off",
			Amount:  dec("100"),
			DueDate: time.Date(2026, time.August, 20, 0, 0, 0, 0, time.UTC),
		})
		require.NoError(t, err)

		_, err = f.svc.GenerateMonthlyBills(f.userID)
		assert.ErrorIs(t, err, domain.ErrBillsAlreadyGenerated)
	})

	t.Run("generates again in a new month", func(t *testing.T) {
		f := newBillFixture(t)
		_, err := f.svc.GenerateMonthlyBills(f.userID)
		require.NoError(t, err)

		f.svc.SetClock(fixedClock(2026, time.September, 1))
		bills, err := f.svc.GenerateMonthlyBills(f.userID)
		require.NoError(t, err)
		require.Len(t, bills, 10)
		assert.Equal(t, time.Date(2026, time.September, 15, 0, 0, 0, 0, time.UTC), bills[0].DueDate)
	})
}
