package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kvharsha/fintrack/fintrack-backend/internal/domain"
	"github.com/kvharsha/fintrack/fintrack-backend/internal/websocket"
)

// GoalService handles savings goals and deposits from the savings bucket
type GoalService struct {
	goalRepo  domain.GoalRepository
	stateRepo domain.BudgetStateRepository
	txRunner  domain.TxRunner
	publisher websocket.EventPublisher
	projector domain.SavingsProjector
}

// NewGoalService creates a new GoalService
func NewGoalService(goalRepo domain.GoalRepository, stateRepo domain.BudgetStateRepository, txRunner domain.TxRunner, publisher websocket.EventPublisher, projector domain.SavingsProjector) *GoalService {
	return &GoalService{
		goalRepo:  goalRepo,
		stateRepo: stateRepo,
		txRunner:  txRunner,
		publisher: publisher,
		projector: projector,
	}
}

// CreateGoal records a new savings goal
func (s *GoalService) CreateGoal(userID uuid.UUID, name string, target decimal.Decimal) (*domain.SavingsGoal, error) {
	goal := &domain.SavingsGoal{
		UserID:   userID,
		Name:     strings.TrimSpace(name),
		Target:   target,
		Progress: decimal.Zero,
	}
	if err := goal.Validate(); err != nil {
		return nil, err
	}
	created, err := s.goalRepo.Create(goal)
	if err != nil {
		return nil, err
	}
	s.publisher.Publish(userID, websocket.GoalCreated(created))
	return created, nil
}

// ListGoals returns all of a user's goals
func (s *GoalService) ListGoals(userID uuid.UUID) ([]*domain.SavingsGoal, error) {
	return s.goalRepo.GetAllByUser(userID)
}

// Deposit moves money from the savings bucket into a goal's progress in one
// transaction. Blocked when the bucket cannot cover the amount.
func (s *GoalService) Deposit(ctx context.Context, userID uuid.UUID, goalID int32, amount decimal.Decimal) (*domain.SavingsGoal, error) {
	goal, err := s.goalRepo.GetByID(userID, goalID)
	if err != nil {
		return nil, err
	}

	state, err := s.stateRepo.GetOrCreate(userID)
	if err != nil {
		return nil, err
	}
	if err := state.DepositToGoal(amount); err != nil {
		return nil, err
	}

	newProgress := goal.Progress.Add(amount)
	err = s.txRunner.RunInTx(ctx, func(tx any) error {
		if txErr := s.goalRepo.UpdateProgressTx(tx, userID, goalID, newProgress); txErr != nil {
			return txErr
		}
		return s.stateRepo.SaveTx(tx, state)
	})
	if err != nil {
		return nil, err
	}

	goal.Progress = newProgress
	s.publisher.Publish(userID, websocket.GoalDeposited(goal))
	s.publisher.Publish(userID, websocket.BudgetUpdated(state))
	return goal, nil
}

// DeleteGoal removes a goal. Deposited progress is not refunded to the
// savings bucket.
func (s *GoalService) DeleteGoal(userID uuid.UUID, id int32) error {
	if err := s.goalRepo.Delete(userID, id); err != nil {
		return err
	}
	s.publisher.Publish(userID, websocket.GoalDeleted(map[string]int32{"id": id}))
	return nil
}

// ProjectSavings estimates the savings balance over the coming months,
// starting from the current savings bucket and assuming each month's savings
// slice of income is banked in full.
func (s *GoalService) ProjectSavings(userID uuid.UUID, months int) ([]domain.SavingsProjection, error) {
	if months <= 0 {
		months = 6
	}
	state, err := s.stateRepo.GetOrCreate(userID)
	if err != nil {
		return nil, err
	}
	monthly := state.Income.Mul(state.Split.SavingsPct).Div(decimal.NewFromInt(100))
	return s.projector.Project(state.Allocation.Savings, monthly, months), nil
}

// LinearProjector projects savings growth by adding the monthly contribution
// each month with no interest.
type LinearProjector struct{}

// Project implements domain.SavingsProjector
func (p *LinearProjector) Project(current, monthly decimal.Decimal, months int) []domain.SavingsProjection {
	result := make([]domain.SavingsProjection, 0, months)
	balance := current
	for m := 1; m <= months; m++ {
		balance = balance.Add(monthly)
		result = append(result, domain.SavingsProjection{Month: m, Amount: balance.Round(2)})
	}
	return result
}
