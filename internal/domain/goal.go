package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrGoalNotFound     = errors.New("goal not found")
	ErrGoalNameRequired = errors.New("goal name and a positive target amount are required")
)

// SavingsGoal tracks progress toward a named target. Progress is unbounded
// above the target; no cap is enforced.
type SavingsGoal struct {
	ID        int32           `json:"id"`
	UserID    uuid.UUID       `json:"userId"`
	Name      string          `json:"name"`
	Target    decimal.Decimal `json:"target"`
	Progress  decimal.Decimal `json:"progress"`
	CreatedAt time.Time       `json:"createdAt"`
}

func (g *SavingsGoal) Validate() error {
	if g.Name == "" || g.Target.LessThanOrEqual(decimal.Zero) {
		return ErrGoalNameRequired
	}
	return nil
}

type GoalRepository interface {
	Create(goal *SavingsGoal) (*SavingsGoal, error)
	GetByID(userID uuid.UUID, id int32) (*SavingsGoal, error)
	GetAllByUser(userID uuid.UUID) ([]*SavingsGoal, error)
	UpdateProgressTx(tx any, userID uuid.UUID, id int32, progress decimal.Decimal) error
	Delete(userID uuid.UUID, id int32) error
}

// SavingsProjection is one month of projected savings balance.
type SavingsProjection struct {
	Month  int             `json:"month"`
	Amount decimal.Decimal `json:"amount"`
}

// SavingsProjector estimates future savings balances given the current
// balance and the expected monthly contribution.
type SavingsProjector interface {
	Project(current, monthly decimal.Decimal, months int) []SavingsProjection
}
