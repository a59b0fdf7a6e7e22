package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kvharsha/fintrack/fintrack-backend/internal/domain"
	"github.com/kvharsha/fintrack/fintrack-backend/internal/testutil"
)

type goalFixture struct {
	svc    *GoalService
	goals  *testutil.MockGoalRepository
	states *testutil.MockBudgetStateRepository
	userID uuid.UUID
}

func newGoalFixture(t *testing.T) *goalFixture {
	t.Helper()
	goals := testutil.NewMockGoalRepository()
	states := testutil.NewMockBudgetStateRepository()
	svc := NewGoalService(goals, states, &testutil.MockTxRunner{}, &testutil.MockPublisher{}, &LinearProjector{})

	userID := uuid.New()
	state, err := states.GetOrCreate(userID)
	require.NoError(t, err)
	state.SetIncome(dec("10000"))
	state.ApplyMonthlyRollover("2026-08")

	return &goalFixture{svc: svc, goals: goals, states: states, userID: userID}
}

func TestCreateGoal(t *testing.T) {
	f := newGoalFixture(t)

	goal, err := f.svc.CreateGoal(f.userID, "  Emergency fund  ", dec("50000"))
	require.NoError(t, err)
	assert.Equal(t, "Emergency fund", goal.Name)
	assert.True(t, goal.Progress.IsZero())

	_, err = f.svc.CreateGoal(f.userID, "", dec("100"))
	assert.ErrorIs(t, err, domain.ErrGoalNameRequired)

	_, err = f.svc.CreateGoal(f.userID, "Bike", dec("0"))
	assert.ErrorIs(t, err, domain.ErrGoalNameRequired)
}

func TestDeposit(t *testing.T) {
	t.Run("moves savings into progress", func(t *testing.T) {
		f := newGoalFixture(t)
		goal, err := f.svc.CreateGoal(f.userID, "Emergency fund", dec("50000"))
		require.NoError(t, err)

		updated, err := f.svc.Deposit(context.Background(), f.userID, goal.ID, dec("1200"))
		require.NoError(t, err)
		assert.True(t, updated.Progress.Equal(dec("1200")))

		state := f.states.States[f.userID]
		assert.True(t, state.Allocation.Savings.Equal(dec("800")), "savings %s", state.Allocation.Savings)
	})

	t.Run("blocked when savings cannot cover", func(t *testing.T) {
		f := newGoalFixture(t)
		goal, err := f.svc.CreateGoal(f.userID, "Emergency fund", dec("50000"))
		require.NoError(t, err)

		_, err = f.svc.Deposit(context.Background(), f.userID, goal.ID, dec("2500"))
		assert.ErrorIs(t, err, domain.ErrInsufficientFunds)

		stored, err := f.goals.GetByID(f.userID, goal.ID)
		require.NoError(t, err)
		assert.True(t, stored.Progress.IsZero())
	})

	t.Run("unknown goal", func(t *testing.T) {
		f := newGoalFixture(t)
		_, err := f.svc.Deposit(context.Background(), f.userID, 999, dec("100"))
		assert.ErrorIs(t, err, domain.ErrGoalNotFound)
	})
}

func TestDeleteGoal(t *testing.T) {
	f := newGoalFixture(t)
	goal, err := f.svc.CreateGoal(f.userID, "Emergency fund", dec("50000"))
	require.NoError(t, err)

	_, err = f.svc.Deposit(context.Background(), f.userID, goal.ID, dec("500"))
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteGoal(f.userID, goal.ID))

	// Deposited money stays spent; deleting a goal is not a refund.
	state := f.states.States[f.userID]
	assert.True(t, state.Allocation.Savings.Equal(dec("1500")))
}

func TestProjectSavings(t *testing.T) {
	f := newGoalFixture(t)

	// Savings bucket starts at 2000 with a 20% slice of 10000 income.
	projections, err := f.svc.ProjectSavings(f.userID, 3)
	require.NoError(t, err)
	require.Len(t, projections, 3)
	assert.True(t, projections[0].Amount.Equal(dec("4000")))
	assert.True(t, projections[2].Amount.Equal(dec("8000")))

	// Non-positive horizon falls back to six months.
	projections, err = f.svc.ProjectSavings(f.userID, 0)
	require.NoError(t, err)
	assert.Len(t, projections, 6)
}
