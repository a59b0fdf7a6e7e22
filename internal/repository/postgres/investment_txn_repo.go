package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kvharsha/fintrack/fintrack-backend/internal/domain"
)

// InvestmentTransactionRepository implements domain.InvestmentTransactionRepository
// using PostgreSQL
type InvestmentTransactionRepository struct {
	pool *pgxpool.Pool
}

// NewInvestmentTransactionRepository creates a new InvestmentTransactionRepository
func NewInvestmentTransactionRepository(pool *pgxpool.Pool) *InvestmentTransactionRepository {
	return &InvestmentTransactionRepository{pool: pool}
}

const investmentTxnColumns = `id, investment_id, user_id, date, amount, units, action, created_at`

func scanInvestmentTxn(row pgx.Row) (*domain.InvestmentTransaction, error) {
	var t domain.InvestmentTransaction
	var amount, units pgtype.Numeric
	err := row.Scan(&t.ID, &t.InvestmentID, &t.UserID, &t.Date, &amount, &units,
		&t.Action, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	t.Amount = pgNumericToDecimal(amount)
	t.Units = pgNumericToDecimal(units)
	return &t, nil
}

// Create inserts a buy or sell record
func (r *InvestmentTransactionRepository) Create(txn *domain.InvestmentTransaction) (*domain.InvestmentTransaction, error) {
	ctx := context.Background()
	amount, err := decimalToPgNumeric(txn.Amount)
	if err != nil {
		return nil, err
	}
	units, err := decimalToPgNumeric(txn.Units)
	if err != nil {
		return nil, err
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO investment_transactions (investment_id, user_id, date, amount, units, action)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+investmentTxnColumns,
		txn.InvestmentID, txn.UserID, txn.Date, amount, units, txn.Action)
	return scanInvestmentTxn(row)
}

// GetByInvestmentID retrieves all transactions for a holding, newest first
func (r *InvestmentTransactionRepository) GetByInvestmentID(investmentID int32) ([]*domain.InvestmentTransaction, error) {
	ctx := context.Background()
	rows, err := r.pool.Query(ctx, `
		SELECT `+investmentTxnColumns+` FROM investment_transactions
		WHERE investment_id = $1 ORDER BY date DESC, id DESC`, investmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*domain.InvestmentTransaction
	for rows.Next() {
		t, err := scanInvestmentTxn(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	return result, rows.Err()
}
