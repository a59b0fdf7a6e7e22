package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kvharsha/fintrack/fintrack-backend/internal/domain"
	"github.com/kvharsha/fintrack/fintrack-backend/internal/testutil"
)

func dec(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func fixedClock(year int, month time.Month, day int) func() time.Time {
	return func() time.Time {
		return time.Date(year, month, day, 12, 0, 0, 0, time.UTC)
	}
}

func newBudgetService() (*BudgetService, *testutil.MockBudgetStateRepository, *testutil.MockPublisher) {
	repo := testutil.NewMockBudgetStateRepository()
	pub := &testutil.MockPublisher{}
	svc := NewBudgetService(repo, pub)
	svc.SetClock(fixedClock(2026, time.August, 29))
	return svc, repo, pub
}

func TestBudgetService_SetIncome(t *testing.T) {
	svc, repo, pub := newBudgetService()
	userID := uuid.New()

	state, err := svc.SetIncome(context.Background(), userID, dec("10000"))
	require.NoError(t, err)

	assert.True(t, state.Allocation.Needs.Equal(dec("5000")))
	assert.True(t, state.Allocation.Wants.Equal(dec("3000")))
	assert.True(t, state.Allocation.Savings.Equal(dec("2000")))
	assert.NotEmpty(t, pub.Events)

	saved := repo.States[userID]
	require.NotNil(t, saved)
	assert.True(t, saved.Income.Equal(dec("10000")))
}

func TestBudgetService_SetSplit(t *testing.T) {
	svc, _, _ := newBudgetService()
	userID := uuid.New()

	_, err := svc.SetIncome(context.Background(), userID, dec("10000"))
	require.NoError(t, err)

	state, err := svc.SetSplit(context.Background(), userID, domain.Split{
		NeedsPct:   dec("60"),
		WantsPct:   dec("25"),
		SavingsPct: dec("15"),
	})
	require.NoError(t, err)
	assert.True(t, state.Allocation.Needs.Equal(dec("6000")))

	_, err = svc.SetSplit(context.Background(), userID, domain.Split{
		NeedsPct:   dec("60"),
		WantsPct:   dec("25"),
		SavingsPct: dec("25"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidSplit)
}

func TestBudgetService_GetState_AppliesRollover(t *testing.T) {
	svc, repo, _ := newBudgetService()
	userID := uuid.New()

	_, err := svc.SetIncome(context.Background(), userID, dec("10000"))
	require.NoError(t, err)

	// spend part of needs, then cross into the next month
	state := repo.States[userID]
	_, err = state.PostExpense(dec("4500"), domain.ExpenseTypeNeed)
	require.NoError(t, err)

	svc.SetClock(fixedClock(2026, time.September, 1))
	got, err := svc.GetState(context.Background(), userID)
	require.NoError(t, err)

	assert.Equal(t, "2026-09", got.LastProcessedMonth)
	assert.True(t, got.Remainder.Needs.Equal(dec("500")))
	assert.True(t, got.Allocation.Needs.Equal(dec("5500")))
}

func TestBudgetService_ProcessRemainder(t *testing.T) {
	svc, repo, _ := newBudgetService()
	userID := uuid.New()

	_, err := svc.SetIncome(context.Background(), userID, dec("10000"))
	require.NoError(t, err)
	state := repo.States[userID]
	_, err = state.PostExpense(dec("1000"), domain.ExpenseTypeWant)
	require.NoError(t, err)

	got, err := svc.ProcessRemainder(context.Background(), userID)
	require.NoError(t, err)
	assert.True(t, got.Remainder.Wants.Equal(dec("2000")))
	assert.True(t, got.Allocation.Wants.Equal(dec("5000")))
}
