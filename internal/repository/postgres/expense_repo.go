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

// ExpenseRepository implements domain.ExpenseRepository using PostgreSQL
type ExpenseRepository struct {
	pool *pgxpool.Pool
}

// NewExpenseRepository creates a new ExpenseRepository
func NewExpenseRepository(pool *pgxpool.Pool) *ExpenseRepository {
	return &ExpenseRepository{pool: pool}
}

const expenseColumns = `id, user_id, amount, category, date, description, type, receipt_key, created_at`

func scanExpense(row pgx.Row) (*domain.Expense, error) {
	var e domain.Expense
	var amount pgtype.Numeric
	err := row.Scan(&e.ID, &e.UserID, &amount, &e.Category, &e.Date,
		&e.Description, &e.Type, &e.ReceiptKey, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	e.Amount = pgNumericToDecimal(amount)
	return &e, nil
}

// Create inserts a new expense
func (r *ExpenseRepository) Create(expense *domain.Expense) (*domain.Expense, error) {
	return r.create(context.Background(), r.pool, expense)
}

// CreateTx inserts a new expense within a transaction
func (r *ExpenseRepository) CreateTx(tx any, expense *domain.Expense) (*domain.Expense, error) {
	q, err := txQuerier(tx)
	if err != nil {
		return nil, err
	}
	return r.create(context.Background(), q, expense)
}

func (r *ExpenseRepository) create(ctx context.Context, q querier, expense *domain.Expense) (*domain.Expense, error) {
	amount, err := decimalToPgNumeric(expense.Amount)
	if err != nil {
		return nil, err
	}
	row := q.QueryRow(ctx, `
		INSERT INTO expenses (user_id, amount, category, date, description, type)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+expenseColumns,
		expense.UserID, amount, expense.Category, expense.Date,
		expense.Description, expense.Type)
	return scanExpense(row)
}

// GetByID retrieves an expense by ID scoped to a user
func (r *ExpenseRepository) GetByID(userID uuid.UUID, id int32) (*domain.Expense, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `
		SELECT `+expenseColumns+` FROM expenses
		WHERE user_id = $1 AND id = $2`, userID, id)
	e, err := scanExpense(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrExpenseNotFound
		}
		return nil, err
	}
	return e, nil
}

// GetAllByUser retrieves all expenses for a user, newest first
func (r *ExpenseRepository) GetAllByUser(userID uuid.UUID) ([]*domain.Expense, error) {
	return r.list(userID, 0)
}

// GetRecent retrieves the most recent expenses for a user
func (r *ExpenseRepository) GetRecent(userID uuid.UUID, limit int) ([]*domain.Expense, error) {
	return r.list(userID, limit)
}

func (r *ExpenseRepository) list(userID uuid.UUID, limit int) ([]*domain.Expense, error) {
	ctx := context.Background()
	sql := `SELECT ` + expenseColumns + ` FROM expenses
		WHERE user_id = $1 ORDER BY date DESC, id DESC`
	args := []any{userID}
	if limit > 0 {
		sql += ` LIMIT $2`
		args = append(args, limit)
	}
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*domain.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

// Delete removes an expense
func (r *ExpenseRepository) Delete(userID uuid.UUID, id int32) error {
	return r.delete(context.Background(), r.pool, userID, id)
}

// DeleteTx removes an expense within a transaction
func (r *ExpenseRepository) DeleteTx(tx any, userID uuid.UUID, id int32) error {
	q, err := txQuerier(tx)
	if err != nil {
		return err
	}
	return r.delete(context.Background(), q, userID, id)
}

func (r *ExpenseRepository) delete(ctx context.Context, q querier, userID uuid.UUID, id int32) error {
	tag, err := q.Exec(ctx, `
		DELETE FROM expenses WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrExpenseNotFound
	}
	return nil
}

// CategoryTotals aggregates positive spend per category, largest first
func (r *ExpenseRepository) CategoryTotals(userID uuid.UUID) ([]*domain.CategoryTotal, error) {
	ctx := context.Background()
	rows, err := r.pool.Query(ctx, `
		SELECT category, COALESCE(SUM(ABS(amount)), 0)
		FROM expenses
		WHERE user_id = $1
		GROUP BY category
		ORDER BY 2 DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*domain.CategoryTotal
	for rows.Next() {
		var ct domain.CategoryTotal
		var total pgtype.Numeric
		if err := rows.Scan(&ct.Category, &total); err != nil {
			return nil, err
		}
		ct.Total = pgNumericToDecimal(total)
		result = append(result, &ct)
	}
	return result, rows.Err()
}

// SumOutflowForMonth returns the total positive spend for the given month
func (r *ExpenseRepository) SumOutflowForMonth(userID uuid.UUID, year, month int) (decimal.Decimal, error) {
	ctx := context.Background()
	var total pgtype.Numeric
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(ABS(amount)), 0)
		FROM expenses
		WHERE user_id = $1
		  AND EXTRACT(YEAR FROM date) = $2
		  AND EXTRACT(MONTH FROM date) = $3`,
		userID, year, month).Scan(&total)
	if err != nil {
		return decimal.Zero, err
	}
	return pgNumericToDecimal(total), nil
}

// SetReceiptKey attaches an uploaded receipt's storage key to an expense
func (r *ExpenseRepository) SetReceiptKey(userID uuid.UUID, id int32, key string) error {
	ctx := context.Background()
	tag, err := r.pool.Exec(ctx, `
		UPDATE expenses SET receipt_key = $3
		WHERE user_id = $1 AND id = $2`, userID, id, key)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrExpenseNotFound
	}
	return nil
}
