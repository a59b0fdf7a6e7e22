package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/kvharsha/fintrack/fintrack-backend/internal/domain"
)

// BillRepository implements domain.BillRepository using PostgreSQL
type BillRepository struct {
	pool *pgxpool.Pool
}

// NewBillRepository creates a new BillRepository
func NewBillRepository(pool *pgxpool.Pool) *BillRepository {
	return &BillRepository{pool: pool}
}

const billColumns = `id, user_id, title, amount, due_date, description, category, status, paid_at, created_at`

func scanBill(row pgx.Row) (*domain.Bill, error) {
	var b domain.Bill
	var amount pgtype.Numeric
	err := row.Scan(&b.ID, &b.UserID, &b.Title, &amount, &b.DueDate,
		&b.Description, &b.Category, &b.Status, &b.PaidAt, &b.CreatedAt)
	if err != nil {
		return nil, err
	}
	b.Amount = pgNumericToDecimal(amount)
	return &b, nil
}

// Create inserts a new bill
func (r *BillRepository) Create(bill *domain.Bill) (*domain.Bill, error) {
	ctx := context.Background()
	amount, err := decimalToPgNumeric(bill.Amount)
	if err != nil {
		return nil, err
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO bills (user_id, title, amount, due_date, description, category, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+billColumns,
		bill.UserID, bill.Title, amount, bill.DueDate,
		bill.Description, bill.Category, bill.Status)
	return scanBill(row)
}

// CreateBatch inserts several bills in one transaction
func (r *BillRepository) CreateBatch(bills []*domain.Bill) error {
	ctx := context.Background()
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, bill := range bills {
		amount, err := decimalToPgNumeric(bill.Amount)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO bills (user_id, title, amount, due_date, description, category, status)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			bill.UserID, bill.Title, amount, bill.DueDate,
			bill.Description, bill.Category, bill.Status)
		if err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// GetByID retrieves a bill by ID scoped to a user
func (r *BillRepository) GetByID(userID uuid.UUID, id int32) (*domain.Bill, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `
		SELECT `+billColumns+` FROM bills
		WHERE user_id = $1 AND id = $2`, userID, id)
	b, err := scanBill(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBillNotFound
		}
		return nil, err
	}
	return b, nil
}

// GetAllByUser retrieves all bills for a user, soonest due first
func (r *BillRepository) GetAllByUser(userID uuid.UUID) ([]*domain.Bill, error) {
	return r.list(userID, false)
}

// GetUnpaidByUser retrieves unpaid bills for a user, soonest due first
func (r *BillRepository) GetUnpaidByUser(userID uuid.UUID) ([]*domain.Bill, error) {
	return r.list(userID, true)
}

func (r *BillRepository) list(userID uuid.UUID, unpaidOnly bool) ([]*domain.Bill, error) {
	ctx := context.Background()
	sql := `SELECT ` + billColumns + ` FROM bills WHERE user_id = $1`
	if unpaidOnly {
		sql += ` AND status = 'unpaid'`
	}
	sql += ` ORDER BY due_date ASC, id ASC`
	rows, err := r.pool.Query(ctx, sql, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*domain.Bill
	for rows.Next() {
		b, err := scanBill(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, b)
	}
	return result, rows.Err()
}

// MarkPaidTx flips an unpaid bill to paid within a transaction. Flipping an
// already-paid bill reports domain.ErrBillAlreadyPaid.
func (r *BillRepository) MarkPaidTx(tx any, userID uuid.UUID, id int32, paidAt time.Time) error {
	q, err := txQuerier(tx)
	if err != nil {
		return err
	}
	ctx := context.Background()
	tag, err := q.Exec(ctx, `
		UPDATE bills SET status = 'paid', paid_at = $3
		WHERE user_id = $1 AND id = $2 AND status = 'unpaid'`,
		userID, id, paidAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		var status domain.BillStatus
		err := q.QueryRow(ctx, `
			SELECT status FROM bills WHERE user_id = $1 AND id = $2`,
			userID, id).Scan(&status)
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrBillNotFound
		}
		if err != nil {
			return err
		}
		return domain.ErrBillAlreadyPaid
	}
	return nil
}

// Delete removes a bill
func (r *BillRepository) Delete(userID uuid.UUID, id int32) error {
	ctx := context.Background()
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM bills WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBillNotFound
	}
	return nil
}

// CountForMonth counts bills due in the given month
func (r *BillRepository) CountForMonth(userID uuid.UUID, year, month int) (int64, error) {
	ctx := context.Background()
	var count int64
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM bills
		WHERE user_id = $1
		  AND EXTRACT(YEAR FROM due_date) = $2
		  AND EXTRACT(MONTH FROM due_date) = $3`,
		userID, year, month).Scan(&count)
	return count, err
}

// SumUnpaid totals the user's unpaid bill amounts
func (r *BillRepository) SumUnpaid(userID uuid.UUID) (decimal.Decimal, error) {
	ctx := context.Background()
	var total pgtype.Numeric
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0) FROM bills
		WHERE user_id = $1 AND status = 'unpaid'`, userID).Scan(&total)
	if err != nil {
		return decimal.Zero, err
	}
	return pgNumericToDecimal(total), nil
}
