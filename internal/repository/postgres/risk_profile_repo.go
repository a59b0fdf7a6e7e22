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

// RiskProfileRepository implements domain.RiskProfileRepository using PostgreSQL
type RiskProfileRepository struct {
	pool *pgxpool.Pool
}

// NewRiskProfileRepository creates a new RiskProfileRepository
func NewRiskProfileRepository(pool *pgxpool.Pool) *RiskProfileRepository {
	return &RiskProfileRepository{pool: pool}
}

const riskProfileColumns = `user_id, tolerance, experience, horizon_years, monthly_budget, emergency_fund, updated_at`

func scanRiskProfile(row pgx.Row) (*domain.RiskProfile, error) {
	var p domain.RiskProfile
	var budget pgtype.Numeric
	err := row.Scan(&p.UserID, &p.Tolerance, &p.Experience, &p.HorizonYears, &budget, &p.EmergencyFund, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.MonthlyBudget = pgNumericToDecimal(budget)
	return &p, nil
}

// Get retrieves the user's risk profile
func (r *RiskProfileRepository) Get(userID uuid.UUID) (*domain.RiskProfile, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `
		SELECT `+riskProfileColumns+` FROM risk_profiles WHERE user_id = $1`, userID)
	p, err := scanRiskProfile(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

// Upsert creates or replaces the user's risk profile
func (r *RiskProfileRepository) Upsert(profile *domain.RiskProfile) (*domain.RiskProfile, error) {
	ctx := context.Background()
	budget, err := decimalToPgNumeric(profile.MonthlyBudget)
	if err != nil {
		return nil, err
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO risk_profiles (user_id, tolerance, experience, horizon_years, monthly_budget, emergency_fund)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id) DO UPDATE SET
			tolerance = EXCLUDED.tolerance,
			experience = EXCLUDED.experience,
			horizon_years = EXCLUDED.horizon_years,
			monthly_budget = EXCLUDED.monthly_budget,
			emergency_fund = EXCLUDED.emergency_fund,
			updated_at = now()
		RETURNING `+riskProfileColumns,
		profile.UserID, profile.Tolerance, profile.Experience, profile.HorizonYears, budget, profile.EmergencyFund)
	return scanRiskProfile(row)
}
