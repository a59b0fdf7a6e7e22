package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kvharsha/fintrack/fintrack-backend/internal/domain"
)

// BudgetStateRepository implements domain.BudgetStateRepository using PostgreSQL
type BudgetStateRepository struct {
	pool *pgxpool.Pool
}

// NewBudgetStateRepository creates a new BudgetStateRepository
func NewBudgetStateRepository(pool *pgxpool.Pool) *BudgetStateRepository {
	return &BudgetStateRepository{pool: pool}
}

const budgetStateColumns = `
	user_id, income,
	needs_pct, wants_pct, savings_pct,
	needs_alloc, wants_alloc, savings_alloc,
	needs_remainder, wants_remainder, savings_remainder,
	last_processed_month, last_reminder_date, daily_reminders_enabled,
	created_at, updated_at`

func scanBudgetState(row pgx.Row) (*domain.BudgetState, error) {
	var s domain.BudgetState
	var nums [10]pgtype.Numeric
	err := row.Scan(
		&s.UserID, &nums[0],
		&nums[1], &nums[2], &nums[3],
		&nums[4], &nums[5], &nums[6],
		&nums[7], &nums[8], &nums[9],
		&s.LastProcessedMonth, &s.LastReminderDate, &s.DailyRemindersEnabled,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	s.Income = pgNumericToDecimal(nums[0])
	s.Split.NeedsPct = pgNumericToDecimal(nums[1])
	s.Split.WantsPct = pgNumericToDecimal(nums[2])
	s.Split.SavingsPct = pgNumericToDecimal(nums[3])
	s.Allocation.Needs = pgNumericToDecimal(nums[4])
	s.Allocation.Wants = pgNumericToDecimal(nums[5])
	s.Allocation.Savings = pgNumericToDecimal(nums[6])
	s.Remainder.Needs = pgNumericToDecimal(nums[7])
	s.Remainder.Wants = pgNumericToDecimal(nums[8])
	s.Remainder.Savings = pgNumericToDecimal(nums[9])
	return &s, nil
}

// GetOrCreate loads the user's budget state, inserting the zero-allocation
// default row on first access.
func (r *BudgetStateRepository) GetOrCreate(userID uuid.UUID) (*domain.BudgetState, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `
		SELECT `+budgetStateColumns+` FROM budget_states WHERE user_id = $1`, userID)
	state, err := scanBudgetState(row)
	if err == nil {
		return state, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	fresh := domain.NewBudgetState(userID)
	needsPct, err := decimalToPgNumeric(fresh.Split.NeedsPct)
	if err != nil {
		return nil, err
	}
	wantsPct, err := decimalToPgNumeric(fresh.Split.WantsPct)
	if err != nil {
		return nil, err
	}
	savingsPct, err := decimalToPgNumeric(fresh.Split.SavingsPct)
	if err != nil {
		return nil, err
	}
	row = r.pool.QueryRow(ctx, `
		INSERT INTO budget_states (
			user_id, needs_pct, wants_pct, savings_pct, daily_reminders_enabled
		) VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING `+budgetStateColumns,
		userID, needsPct, wantsPct, savingsPct, fresh.DailyRemindersEnabled)
	return scanBudgetState(row)
}

// Save persists every mutable field of the state.
func (r *BudgetStateRepository) Save(state *domain.BudgetState) error {
	return r.save(context.Background(), r.pool, state)
}

// SaveTx persists the state within a caller-managed transaction.
func (r *BudgetStateRepository) SaveTx(tx any, state *domain.BudgetState) error {
	q, err := txQuerier(tx)
	if err != nil {
		return err
	}
	return r.save(context.Background(), q, state)
}

func (r *BudgetStateRepository) save(ctx context.Context, q querier, state *domain.BudgetState) error {
	income, err := decimalToPgNumeric(state.Income)
	if err != nil {
		return err
	}
	needsPct, err := decimalToPgNumeric(state.Split.NeedsPct)
	if err != nil {
		return err
	}
	wantsPct, err := decimalToPgNumeric(state.Split.WantsPct)
	if err != nil {
		return err
	}
	savingsPct, err := decimalToPgNumeric(state.Split.SavingsPct)
	if err != nil {
		return err
	}
	needsAlloc, err := decimalToPgNumeric(state.Allocation.Needs)
	if err != nil {
		return err
	}
	wantsAlloc, err := decimalToPgNumeric(state.Allocation.Wants)
	if err != nil {
		return err
	}
	savingsAlloc, err := decimalToPgNumeric(state.Allocation.Savings)
	if err != nil {
		return err
	}
	needsRem, err := decimalToPgNumeric(state.Remainder.Needs)
	if err != nil {
		return err
	}
	wantsRem, err := decimalToPgNumeric(state.Remainder.Wants)
	if err != nil {
		return err
	}
	savingsRem, err := decimalToPgNumeric(state.Remainder.Savings)
	if err != nil {
		return err
	}

	tag, err := q.Exec(ctx, `
		UPDATE budget_states SET
			income = $2,
			needs_pct = $3, wants_pct = $4, savings_pct = $5,
			needs_alloc = $6, wants_alloc = $7, savings_alloc = $8,
			needs_remainder = $9, wants_remainder = $10, savings_remainder = $11,
			last_processed_month = $12,
			last_reminder_date = $13,
			daily_reminders_enabled = $14,
			updated_at = now()
		WHERE user_id = $1`,
		state.UserID, income,
		needsPct, wantsPct, savingsPct,
		needsAlloc, wantsAlloc, savingsAlloc,
		needsRem, wantsRem, savingsRem,
		state.LastProcessedMonth, state.LastReminderDate, state.DailyRemindersEnabled)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
