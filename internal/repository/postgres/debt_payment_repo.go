package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/kvharsha/fintrack/fintrack-backend/internal/domain"
)

// DebtPaymentRepository implements domain.DebtPaymentRepository using PostgreSQL
type DebtPaymentRepository struct {
	pool *pgxpool.Pool
}

// NewDebtPaymentRepository creates a new DebtPaymentRepository
func NewDebtPaymentRepository(pool *pgxpool.Pool) *DebtPaymentRepository {
	return &DebtPaymentRepository{pool: pool}
}

const debtPaymentColumns = `
	id, debt_id, user_id, payment_date, amount, payment_type,
	principal_paid, interest_paid, remaining_balance, notes, created_at`

func scanDebtPayment(row pgx.Row) (*domain.DebtPayment, error) {
	var p domain.DebtPayment
	var amount, principal, interest, remaining pgtype.Numeric
	err := row.Scan(&p.ID, &p.DebtID, &p.UserID, &p.PaymentDate, &amount, &p.PaymentType,
		&principal, &interest, &remaining, &p.Notes, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	p.Amount = pgNumericToDecimal(amount)
	p.PrincipalPaid = pgNumericToDecimal(principal)
	p.InterestPaid = pgNumericToDecimal(interest)
	p.RemainingBalance = pgNumericToDecimal(remaining)
	return &p, nil
}

// CreateTx inserts a payment record within a transaction. Payment rows are
// immutable; there is no update path.
func (r *DebtPaymentRepository) CreateTx(tx any, payment *domain.DebtPayment) (*domain.DebtPayment, error) {
	q, err := txQuerier(tx)
	if err != nil {
		return nil, err
	}
	ctx := context.Background()
	amount, err := decimalToPgNumeric(payment.Amount)
	if err != nil {
		return nil, err
	}
	principal, err := decimalToPgNumeric(payment.PrincipalPaid)
	if err != nil {
		return nil, err
	}
	interest, err := decimalToPgNumeric(payment.InterestPaid)
	if err != nil {
		return nil, err
	}
	remaining, err := decimalToPgNumeric(payment.RemainingBalance)
	if err != nil {
		return nil, err
	}
	row := q.QueryRow(ctx, `
		INSERT INTO debt_payments (
			debt_id, user_id, payment_date, amount, payment_type,
			principal_paid, interest_paid, remaining_balance, notes
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+debtPaymentColumns,
		payment.DebtID, payment.UserID, payment.PaymentDate, amount, payment.PaymentType,
		principal, interest, remaining, payment.Notes)
	return scanDebtPayment(row)
}

// GetByDebtID retrieves all payments for a debt, newest first
func (r *DebtPaymentRepository) GetByDebtID(debtID int32) ([]*domain.DebtPayment, error) {
	ctx := context.Background()
	rows, err := r.pool.Query(ctx, `
		SELECT `+debtPaymentColumns+` FROM debt_payments
		WHERE debt_id = $1 ORDER BY payment_date DESC, id DESC`, debtID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*domain.DebtPayment
	for rows.Next() {
		p, err := scanDebtPayment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

// SumInterestByDebt totals the interest paid against a debt
func (r *DebtPaymentRepository) SumInterestByDebt(debtID int32) (decimal.Decimal, error) {
	ctx := context.Background()
	var total pgtype.Numeric
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(interest_paid), 0) FROM debt_payments
		WHERE debt_id = $1`, debtID).Scan(&total)
	if err != nil {
		return decimal.Zero, err
	}
	return pgNumericToDecimal(total), nil
}
