package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/kvharsha/fintrack/fintrack-backend/internal/domain"
)

// GoalRepository implements domain.GoalRepository using PostgreSQL
type GoalRepository struct {
	pool *pgxpool.Pool
}

// NewGoalRepository creates a new GoalRepository
func NewGoalRepository(pool *pgxpool.Pool) *GoalRepository {
	return &GoalRepository{pool: pool}
}

const goalColumns = `id, user_id, name, target, progress, created_at`

func scanGoal(row pgx.Row) (*domain.SavingsGoal, error) {
	var g domain.SavingsGoal
	var target, progress pgtype.Numeric
	err := row.Scan(&g.ID, &g.UserID, &g.Name, &target, &progress, &g.CreatedAt)
	if err != nil {
		return nil, err
	}
	g.Target = pgNumericToDecimal(target)
	g.Progress = pgNumericToDecimal(progress)
	return &g, nil
}

// Create inserts a new savings goal
func (r *GoalRepository) Create(goal *domain.SavingsGoal) (*domain.SavingsGoal, error) {
	ctx := context.Background()
	target, err := decimalToPgNumeric(goal.Target)
	if err != nil {
		return nil, err
	}
	progress, err := decimalToPgNumeric(goal.Progress)
	if err != nil {
		return nil, err
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO savings_goals (user_id, name, target, progress)
		VALUES ($1, $2, $3, $4)
		RETURNING `+goalColumns,
		goal.UserID, goal.Name, target, progress)
	return scanGoal(row)
}

// GetByID retrieves a goal by ID scoped to a user
func (r *GoalRepository) GetByID(userID uuid.UUID, id int32) (*domain.SavingsGoal, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `
		SELECT `+goalColumns+` FROM savings_goals
		WHERE user_id = $1 AND id = $2`, userID, id)
	g, err := scanGoal(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrGoalNotFound
		}
		return nil, err
	}
	return g, nil
}

// GetAllByUser retrieves all goals for a user
func (r *GoalRepository) GetAllByUser(userID uuid.UUID) ([]*domain.SavingsGoal, error) {
	ctx := context.Background()
	rows, err := r.pool.Query(ctx, `
		SELECT `+goalColumns+` FROM savings_goals
		WHERE user_id = $1 ORDER BY created_at ASC, id ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*domain.SavingsGoal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, g)
	}
	return result, rows.Err()
}

// UpdateProgressTx sets a goal's progress within a transaction
func (r *GoalRepository) UpdateProgressTx(tx any, userID uuid.UUID, id int32, progress decimal.Decimal) error {
	q, err := txQuerier(tx)
	if err != nil {
		return err
	}
	ctx := context.Background()
	num, err := decimalToPgNumeric(progress)
	if err != nil {
		return err
	}
	tag, err := q.Exec(ctx, `
		UPDATE savings_goals SET progress = $3
		WHERE user_id = $1 AND id = $2`, userID, id, num)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrGoalNotFound
	}
	return nil
}

// Delete removes a goal
func (r *GoalRepository) Delete(userID uuid.UUID, id int32) error {
	ctx := context.Background()
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM savings_goals WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrGoalNotFound
	}
	return nil
}
