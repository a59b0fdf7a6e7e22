package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/kvharsha/fintrack/fintrack-backend/internal/domain"
	"github.com/kvharsha/fintrack/fintrack-backend/internal/websocket"
)

// BudgetService owns the per-user budget state: income, split, allocation
// buckets, and the monthly rollover.
type BudgetService struct {
	stateRepo domain.BudgetStateRepository
	publisher websocket.EventPublisher
	now       func() time.Time
}

// NewBudgetService creates a new BudgetService
func NewBudgetService(stateRepo domain.BudgetStateRepository, publisher websocket.EventPublisher) *BudgetService {
	return &BudgetService{
		stateRepo: stateRepo,
		publisher: publisher,
		now:       time.Now,
	}
}

// SetClock overrides the service clock, for tests
func (s *BudgetService) SetClock(now func() time.Time) {
	s.now = now
}

// GetState loads the user's budget state, applying any pending month
// transition first so callers always see the current month's buckets.
func (s *BudgetService) GetState(ctx context.Context, userID uuid.UUID) (*domain.BudgetState, error) {
	state, err := s.stateRepo.GetOrCreate(userID)
	if err != nil {
		return nil, err
	}
	if rolled := state.ApplyMonthlyRollover(domain.MonthStamp(s.now())); rolled {
		log.Info().
			Str("user_id", userID.String()).
			Str("month", state.LastProcessedMonth).
			Msg("monthly budget rollover applied")
		s.publisher.Publish(userID, websocket.BudgetRolledOver(state))
	}
	if err := s.stateRepo.Save(state); err != nil {
		return nil, err
	}
	return state, nil
}

// SetIncome stores the user's monthly income and resets the allocation to
// the default 50/30/20 split.
func (s *BudgetService) SetIncome(ctx context.Context, userID uuid.UUID, income decimal.Decimal) (*domain.BudgetState, error) {
	state, err := s.GetState(ctx, userID)
	if err != nil {
		return nil, err
	}
	state.SetIncome(income)
	if err := s.stateRepo.Save(state); err != nil {
		return nil, err
	}
	s.publisher.Publish(userID, websocket.BudgetUpdated(state))
	return state, nil
}

// SetSplit applies a custom percentage split and recomputes the allocation
// from the stored income.
func (s *BudgetService) SetSplit(ctx context.Context, userID uuid.UUID, split domain.Split) (*domain.BudgetState, error) {
	state, err := s.GetState(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := state.SetSplit(split); err != nil {
		return nil, err
	}
	if err := s.stateRepo.Save(state); err != nil {
		return nil, err
	}
	s.publisher.Publish(userID, websocket.BudgetUpdated(state))
	return state, nil
}

// ProcessRemainder forces an immediate remainder capture and re-allocation,
// regardless of the month stamp.
func (s *BudgetService) ProcessRemainder(ctx context.Context, userID uuid.UUID) (*domain.BudgetState, error) {
	state, err := s.stateRepo.GetOrCreate(userID)
	if err != nil {
		return nil, err
	}
	rem := state.ForceRollover()
	if err := s.stateRepo.Save(state); err != nil {
		return nil, err
	}
	log.Info().
		Str("user_id", userID.String()).
		Str("remainder_total", rem.Total().StringFixed(2)).
		Msg("budget remainder processed")
	s.publisher.Publish(userID, websocket.BudgetRolledOver(state))
	return state, nil
}
