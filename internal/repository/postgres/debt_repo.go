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

// DebtRepository implements domain.DebtRepository using PostgreSQL
type DebtRepository struct {
	pool *pgxpool.Pool
}

// NewDebtRepository creates a new DebtRepository
func NewDebtRepository(pool *pgxpool.Pool) *DebtRepository {
	return &DebtRepository{pool: pool}
}

const debtColumns = `
	id, user_id, name, type, principal_amount, outstanding_amount,
	interest_rate, emi_amount, start_date, end_date, payment_day, status, created_at`

func scanDebt(row pgx.Row) (*domain.Debt, error) {
	var d domain.Debt
	var principal, outstanding, rate, emi pgtype.Numeric
	err := row.Scan(&d.ID, &d.UserID, &d.Name, &d.Type, &principal, &outstanding,
		&rate, &emi, &d.StartDate, &d.EndDate, &d.PaymentDay, &d.Status, &d.CreatedAt)
	if err != nil {
		return nil, err
	}
	d.Principal = pgNumericToDecimal(principal)
	d.Outstanding = pgNumericToDecimal(outstanding)
	d.InterestRate = pgNumericToDecimal(rate)
	d.EMIAmount = pgNumericToDecimal(emi)
	return &d, nil
}

// Create inserts a new debt
func (r *DebtRepository) Create(debt *domain.Debt) (*domain.Debt, error) {
	ctx := context.Background()
	principal, err := decimalToPgNumeric(debt.Principal)
	if err != nil {
		return nil, err
	}
	outstanding, err := decimalToPgNumeric(debt.Outstanding)
	if err != nil {
		return nil, err
	}
	rate, err := decimalToPgNumeric(debt.InterestRate)
	if err != nil {
		return nil, err
	}
	emi, err := decimalToPgNumeric(debt.EMIAmount)
	if err != nil {
		return nil, err
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO debts (
			user_id, name, type, principal_amount, outstanding_amount,
			interest_rate, emi_amount, start_date, end_date, payment_day, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING `+debtColumns,
		debt.UserID, debt.Name, debt.Type, principal, outstanding,
		rate, emi, debt.StartDate, debt.EndDate, debt.PaymentDay, debt.Status)
	return scanDebt(row)
}

// GetByID retrieves a debt by ID scoped to a user
func (r *DebtRepository) GetByID(userID uuid.UUID, id int32) (*domain.Debt, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `
		SELECT `+debtColumns+` FROM debts
		WHERE user_id = $1 AND id = $2`, userID, id)
	d, err := scanDebt(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrDebtNotFound
		}
		return nil, err
	}
	return d, nil
}

// GetActiveByUser retrieves the user's active debts
func (r *DebtRepository) GetActiveByUser(userID uuid.UUID) ([]*domain.Debt, error) {
	return r.list(userID, true)
}

// GetAllByUser retrieves all of the user's debts
func (r *DebtRepository) GetAllByUser(userID uuid.UUID) ([]*domain.Debt, error) {
	return r.list(userID, false)
}

func (r *DebtRepository) list(userID uuid.UUID, activeOnly bool) ([]*domain.Debt, error) {
	ctx := context.Background()
	sql := `SELECT ` + debtColumns + ` FROM debts WHERE user_id = $1`
	if activeOnly {
		sql += ` AND status = 'active'`
	}
	sql += ` ORDER BY created_at ASC, id ASC`
	rows, err := r.pool.Query(ctx, sql, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*domain.Debt
	for rows.Next() {
		d, err := scanDebt(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, d)
	}
	return result, rows.Err()
}

// UpdateOutstandingTx sets a debt's outstanding balance and status within a
// transaction.
func (r *DebtRepository) UpdateOutstandingTx(tx any, id int32, outstanding decimal.Decimal, status domain.DebtStatus) error {
	q, err := txQuerier(tx)
	if err != nil {
		return err
	}
	ctx := context.Background()
	num, err := decimalToPgNumeric(outstanding)
	if err != nil {
		return err
	}
	tag, err := q.Exec(ctx, `
		UPDATE debts SET outstanding_amount = $2, status = $3
		WHERE id = $1`, id, num, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrDebtNotFound
	}
	return nil
}

// UpdateStatus sets a debt's status
func (r *DebtRepository) UpdateStatus(userID uuid.UUID, id int32, status domain.DebtStatus) error {
	ctx := context.Background()
	tag, err := r.pool.Exec(ctx, `
		UPDATE debts SET status = $3
		WHERE user_id = $1 AND id = $2`, userID, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrDebtNotFound
	}
	return nil
}
