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

// InvestmentRepository implements domain.InvestmentRepository using PostgreSQL
type InvestmentRepository struct {
	pool *pgxpool.Pool
}

// NewInvestmentRepository creates a new InvestmentRepository
func NewInvestmentRepository(pool *pgxpool.Pool) *InvestmentRepository {
	return &InvestmentRepository{pool: pool}
}

const investmentColumns = `
	id, user_id, name, type, symbol, invested_amount, current_value, units,
	purchase_price, current_price, purchase_date, status, notes, created_at, updated_at`

func scanInvestment(row pgx.Row) (*domain.Investment, error) {
	var inv domain.Investment
	var invested, current, units, purchasePrice, currentPrice pgtype.Numeric
	err := row.Scan(&inv.ID, &inv.UserID, &inv.Name, &inv.Type, &inv.Symbol, &invested, &current,
		&units, &purchasePrice, &currentPrice, &inv.PurchaseDate, &inv.Status,
		&inv.Notes, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		return nil, err
	}
	inv.InvestedAmount = pgNumericToDecimal(invested)
	inv.CurrentValue = pgNumericToDecimal(current)
	inv.Units = pgNumericToDecimal(units)
	inv.PurchasePrice = pgNumericToDecimal(purchasePrice)
	inv.CurrentPrice = pgNumericToDecimal(currentPrice)
	return &inv, nil
}

// Create inserts a new investment
func (r *InvestmentRepository) Create(inv *domain.Investment) (*domain.Investment, error) {
	ctx := context.Background()
	invested, err := decimalToPgNumeric(inv.InvestedAmount)
	if err != nil {
		return nil, err
	}
	current, err := decimalToPgNumeric(inv.CurrentValue)
	if err != nil {
		return nil, err
	}
	units, err := decimalToPgNumeric(inv.Units)
	if err != nil {
		return nil, err
	}
	purchasePrice, err := decimalToPgNumeric(inv.PurchasePrice)
	if err != nil {
		return nil, err
	}
	currentPrice, err := decimalToPgNumeric(inv.CurrentPrice)
	if err != nil {
		return nil, err
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO investments (
			user_id, name, type, symbol, invested_amount, current_value, units,
			purchase_price, current_price, purchase_date, status, notes
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING `+investmentColumns,
		inv.UserID, inv.Name, inv.Type, inv.Symbol, invested, current, units,
		purchasePrice, currentPrice, inv.PurchaseDate, inv.Status, inv.Notes)
	return scanInvestment(row)
}

// GetByID retrieves an investment by ID scoped to a user
func (r *InvestmentRepository) GetByID(userID uuid.UUID, id int32) (*domain.Investment, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `
		SELECT `+investmentColumns+` FROM investments
		WHERE user_id = $1 AND id = $2`, userID, id)
	inv, err := scanInvestment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrInvestmentNotFound
		}
		return nil, err
	}
	return inv, nil
}

// GetAllByUser retrieves all investments for a user
func (r *InvestmentRepository) GetAllByUser(userID uuid.UUID) ([]*domain.Investment, error) {
	ctx := context.Background()
	rows, err := r.pool.Query(ctx, `
		SELECT `+investmentColumns+` FROM investments
		WHERE user_id = $1 ORDER BY created_at ASC, id ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*domain.Investment
	for rows.Next() {
		inv, err := scanInvestment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, inv)
	}
	return result, rows.Err()
}

// Update persists a holding's mutable fields
func (r *InvestmentRepository) Update(inv *domain.Investment) (*domain.Investment, error) {
	ctx := context.Background()
	invested, err := decimalToPgNumeric(inv.InvestedAmount)
	if err != nil {
		return nil, err
	}
	current, err := decimalToPgNumeric(inv.CurrentValue)
	if err != nil {
		return nil, err
	}
	units, err := decimalToPgNumeric(inv.Units)
	if err != nil {
		return nil, err
	}
	currentPrice, err := decimalToPgNumeric(inv.CurrentPrice)
	if err != nil {
		return nil, err
	}
	row := r.pool.QueryRow(ctx, `
		UPDATE investments SET
			name = $3, invested_amount = $4, current_value = $5, units = $6,
			current_price = $7, status = $8, notes = $9, updated_at = now()
		WHERE user_id = $1 AND id = $2
		RETURNING `+investmentColumns,
		inv.UserID, inv.ID, inv.Name, invested, current, units,
		currentPrice, inv.Status, inv.Notes)
	updated, err := scanInvestment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrInvestmentNotFound
		}
		return nil, err
	}
	return updated, nil
}

// Delete removes an investment
func (r *InvestmentRepository) Delete(userID uuid.UUID, id int32) error {
	ctx := context.Background()
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM investments WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInvestmentNotFound
	}
	return nil
}
