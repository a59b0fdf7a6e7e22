package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidSplit = errors.New("split percentages must sum to 100")
)

// splitTolerance is the accepted deviation of a percentage triple from 100.
const splitTolerance = 1e-6

// Split holds the needs/wants/savings percentage triple. The triple must sum
// to exactly 100 within splitTolerance.
type Split struct {
	NeedsPct   decimal.Decimal `json:"needsPct"`
	WantsPct   decimal.Decimal `json:"wantsPct"`
	SavingsPct decimal.Decimal `json:"savingsPct"`
}

// DefaultSplit returns the 50/30/20 needs/wants/savings split.
func DefaultSplit() Split {
	return Split{
		NeedsPct:   decimal.NewFromInt(50),
		WantsPct:   decimal.NewFromInt(30),
		SavingsPct: decimal.NewFromInt(20),
	}
}

func (s Split) Validate() error {
	total := s.NeedsPct.Add(s.WantsPct).Add(s.SavingsPct)
	diff := total.Sub(decimal.NewFromInt(100)).Abs()
	if diff.GreaterThan(decimal.NewFromFloat(splitTolerance)) {
		return ErrInvalidSplit
	}
	return nil
}

// Allocation is the three-bucket budget state. Buckets drift downward as
// spending occurs and may go negative; no invariant ties their sum to income.
type Allocation struct {
	Needs   decimal.Decimal `json:"needs"`
	Wants   decimal.Decimal `json:"wants"`
	Savings decimal.Decimal `json:"savings"`
}

func (a Allocation) Total() decimal.Decimal {
	return a.Needs.Add(a.Wants).Add(a.Savings)
}

// Remainder is the per-bucket carry-over computed at a month transition.
type Remainder struct {
	Needs   decimal.Decimal `json:"needs"`
	Wants   decimal.Decimal `json:"wants"`
	Savings decimal.Decimal `json:"savings"`
}

func (r Remainder) Total() decimal.Decimal {
	return r.Needs.Add(r.Wants).Add(r.Savings)
}

// BudgetState is the per-user mutable budget state: income, split, the three
// allocation buckets, rollover tracking and bill-reminder tracking. All
// transitions are methods on this struct so they can be tested without a
// store; services load the state, apply a transition and persist it.
type BudgetState struct {
	UserID     uuid.UUID       `json:"userId"`
	Income     decimal.Decimal `json:"income"`
	Split      Split           `json:"split"`
	Allocation Allocation      `json:"allocation"`
	Remainder  Remainder       `json:"remainder"`
	// LastProcessedMonth is a "YYYY-MM" stamp; empty until the first
	// rollover evaluation.
	LastProcessedMonth string `json:"lastProcessedMonth"`
	// LastReminderDate is a "YYYY-MM-DD" stamp of the last bill reminder.
	LastReminderDate      string    `json:"lastReminderDate"`
	DailyRemindersEnabled bool      `json:"dailyRemindersEnabled"`
	CreatedAt             time.Time `json:"createdAt"`
	UpdatedAt             time.Time `json:"updatedAt"`
}

// NewBudgetState returns the zero-allocation state for a user. Daily
// reminders start enabled.
func NewBudgetState(userID uuid.UUID) *BudgetState {
	return &BudgetState{
		UserID:                userID,
		Income:                decimal.Zero,
		Split:                 DefaultSplit(),
		DailyRemindersEnabled: true,
	}
}

func round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

func bucketAmount(income, pct decimal.Decimal) decimal.Decimal {
	return round2(income.Mul(pct).Div(decimal.NewFromInt(100)))
}

// SetIncome stores the monthly income and resets the allocation using the
// default 50/30/20 split. Negative or unparseable income is clamped to zero.
// Any custom split is overwritten.
func (b *BudgetState) SetIncome(amount decimal.Decimal) {
	if amount.IsNegative() {
		amount = decimal.Zero
	}
	b.Income = amount
	b.Split = DefaultSplit()
	b.recomputeAllocation()
}

// SetSplit validates the percentage triple and recomputes the allocation from
// the current income. This is a full reset: previously-spent amounts are not
// preserved, keeping the allocation always derivable from income and split.
func (b *BudgetState) SetSplit(s Split) error {
	if err := s.Validate(); err != nil {
		return err
	}
	b.Split = s
	b.recomputeAllocation()
	return nil
}

func (b *BudgetState) recomputeAllocation() {
	b.Allocation = Allocation{
		Needs:   bucketAmount(b.Income, b.Split.NeedsPct),
		Wants:   bucketAmount(b.Income, b.Split.WantsPct),
		Savings: bucketAmount(b.Income, b.Split.SavingsPct),
	}
}

// PostExpense deducts amount from the bucket selected by the expense type:
// need hits needs, anything else hits wants. The bucket may go negative;
// exceeded reports that the bucket could not cover the amount so callers can
// surface an advisory warning. The deduction is never blocked.
func (b *BudgetState) PostExpense(amount decimal.Decimal, typ ExpenseType) (exceeded bool, err error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return false, ErrInvalidAmount
	}
	if typ == ExpenseTypeNeed {
		exceeded = b.Allocation.Needs.LessThan(amount)
		b.Allocation.Needs = round2(b.Allocation.Needs.Sub(amount))
	} else {
		exceeded = b.Allocation.Wants.LessThan(amount)
		b.Allocation.Wants = round2(b.Allocation.Wants.Sub(amount))
	}
	return exceeded, nil
}

// ReverseExpense credits the absolute amount back to the originating bucket.
// There is no upper bound check.
func (b *BudgetState) ReverseExpense(amount decimal.Decimal, typ ExpenseType) {
	amount = amount.Abs()
	if typ == ExpenseTypeNeed {
		b.Allocation.Needs = round2(b.Allocation.Needs.Add(amount))
	} else {
		b.Allocation.Wants = round2(b.Allocation.Wants.Add(amount))
	}
}

// ApplyMonthlyRollover processes the month transition for the given "YYYY-MM"
// stamp. The very first call only records the month. A repeated call within
// the same month is a no-op. On a new month each bucket's remainder is
// max(0, bucket); the buckets are then reset to income*pct + remainder, but
// only when income is positive. Returns true when a transition was applied.
func (b *BudgetState) ApplyMonthlyRollover(currentMonth string) bool {
	if b.LastProcessedMonth == "" {
		b.LastProcessedMonth = currentMonth
		return false
	}
	if b.LastProcessedMonth == currentMonth {
		return false
	}
	b.captureRemainder()
	if b.Income.IsPositive() {
		b.applyRemainder()
	}
	b.LastProcessedMonth = currentMonth
	return true
}

// ForceRollover captures remainders and re-allocates immediately, regardless
// of the month stamp. Used by the manual remainder-processing operation.
func (b *BudgetState) ForceRollover() Remainder {
	b.captureRemainder()
	if b.Income.IsPositive() {
		b.applyRemainder()
	}
	return b.Remainder
}

func (b *BudgetState) captureRemainder() {
	b.Remainder = Remainder{
		Needs:   decimal.Max(decimal.Zero, b.Allocation.Needs),
		Wants:   decimal.Max(decimal.Zero, b.Allocation.Wants),
		Savings: decimal.Max(decimal.Zero, b.Allocation.Savings),
	}
}

func (b *BudgetState) applyRemainder() {
	b.Allocation = Allocation{
		Needs:   round2(b.Income.Mul(b.Split.NeedsPct).Div(decimal.NewFromInt(100)).Add(b.Remainder.Needs)),
		Wants:   round2(b.Income.Mul(b.Split.WantsPct).Div(decimal.NewFromInt(100)).Add(b.Remainder.Wants)),
		Savings: round2(b.Income.Mul(b.Split.SavingsPct).Div(decimal.NewFromInt(100)).Add(b.Remainder.Savings)),
	}
}

// PayBill deducts a bill amount from the needs bucket. Unlike expense
// posting this check is hard-blocking: nothing is mutated on failure.
func (b *BudgetState) PayBill(amount decimal.Decimal) error {
	if b.Allocation.Needs.LessThan(amount) {
		return ErrInsufficientFunds
	}
	b.Allocation.Needs = round2(b.Allocation.Needs.Sub(amount))
	return nil
}

// DepositToGoal moves amount out of the savings bucket. Hard-blocking.
func (b *BudgetState) DepositToGoal(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}
	if amount.GreaterThan(b.Allocation.Savings) {
		return ErrInsufficientFunds
	}
	b.Allocation.Savings = round2(b.Allocation.Savings.Sub(amount))
	return nil
}

// MonthStamp formats t as the "YYYY-MM" rollover stamp.
func MonthStamp(t time.Time) string {
	return t.Format("2006-01")
}

// DateStamp formats t as the "YYYY-MM-DD" reminder stamp.
func DateStamp(t time.Time) string {
	return t.Format("2006-01-02")
}

type BudgetStateRepository interface {
	GetOrCreate(userID uuid.UUID) (*BudgetState, error)
	Save(state *BudgetState) error
	SaveTx(tx any, state *BudgetState) error
}
