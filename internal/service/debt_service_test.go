package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kvharsha/fintrack/fintrack-backend/internal/domain"
	"github.com/kvharsha/fintrack/fintrack-backend/internal/finance"
	"github.com/kvharsha/fintrack/fintrack-backend/internal/testutil"
)

type debtFixture struct {
	svc      *DebtService
	debts    *testutil.MockDebtRepository
	payments *testutil.MockDebtPaymentRepository
	userID   uuid.UUID
}

func newDebtFixture(t *testing.T) *debtFixture {
	t.Helper()
	debts := testutil.NewMockDebtRepository()
	payments := testutil.NewMockDebtPaymentRepository()
	svc := NewDebtService(debts, payments, &testutil.MockTxRunner{}, &testutil.MockPublisher{})
	svc.SetClock(fixedClock(2026, time.August, 29))
	return &debtFixture{svc: svc, debts: debts, payments: payments, userID: uuid.New()}
}

func (f *debtFixture) carLoan(t *testing.T) *domain.Debt {
	t.Helper()
	debt, err := f.svc.CreateDebt(f.userID, CreateDebtInput{
		Name:         "Car loan",
		Type:         "vehicle",
		Principal:    dec("100000"),
		InterestRate: dec("10"),
		StartDate:    time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
		EndDate:      time.Date(2027, time.January, 1, 0, 0, 0, 0, time.UTC),
		PaymentDay:   5,
	})
	require.NoError(t, err)
	return debt
}

func TestCreateDebt(t *testing.T) {
	t.Run("derives EMI from tenure", func(t *testing.T) {
		f := newDebtFixture(t)
		debt := f.carLoan(t)

		assert.Equal(t, 12, debt.TenureMonths())
		assert.True(t, debt.EMIAmount.Equal(dec("8791.59")), "emi %s", debt.EMIAmount)
		assert.True(t, debt.Outstanding.Equal(dec("100000")))
		assert.Equal(t, domain.DebtStatusActive, debt.Status)
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		f := newDebtFixture(t)

		_, err := f.svc.CreateDebt(f.userID, CreateDebtInput{
			Name:      "",
			Principal: dec("1000"),
		})
		assert.ErrorIs(t, err, domain.ErrDebtNameRequired)

		_, err = f.svc.CreateDebt(f.userID, CreateDebtInput{
			Name:         "Bad rate",
			Principal:    dec("1000"),
			InterestRate: dec("-1"),
		})
		assert.ErrorIs(t, err, domain.ErrDebtRateInvalid)

		_, err = f.svc.CreateDebt(f.userID, CreateDebtInput{
			Name:      "Bad dates",
			Principal: dec("1000"),
			StartDate: time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC),
			EndDate:   time.Date(2026, time.May, 1, 0, 0, 0, 0, time.UTC),
		})
		assert.ErrorIs(t, err, domain.ErrDebtDatesInvalid)
	})
}

func TestRecordPayment(t *testing.T) {
	t.Run("splits EMI into interest and principal", func(t *testing.T) {
		f := newDebtFixture(t)
		debt := f.carLoan(t)

		payment, err := f.svc.RecordPayment(context.Background(), f.userID, debt.ID, RecordPaymentInput{
			Amount: dec("5000"),
		})
		require.NoError(t, err)

		// First month interest on 100000 at 10% is 833.33.
		assert.Equal(t, domain.PaymentTypeEMI, payment.PaymentType)
		assert.True(t, payment.InterestPaid.Equal(dec("833.33")), "interest %s", payment.InterestPaid)
		assert.True(t, payment.PrincipalPaid.Equal(dec("4166.67")), "principal %s", payment.PrincipalPaid)
		assert.True(t, payment.RemainingBalance.Equal(dec("95833.33")))

		stored, err := f.debts.GetByID(f.userID, debt.ID)
		require.NoError(t, err)
		assert.True(t, stored.Outstanding.Equal(dec("95833.33")))
		assert.Equal(t, domain.DebtStatusActive, stored.Status)
	})

	t.Run("prepayment is all principal", func(t *testing.T) {
		f := newDebtFixture(t)
		debt := f.carLoan(t)

		payment, err := f.svc.RecordPayment(context.Background(), f.userID, debt.ID, RecordPaymentInput{
			Amount:      dec("20000"),
			PaymentType: domain.PaymentTypePrepayment,
		})
		require.NoError(t, err)
		assert.True(t, payment.InterestPaid.IsZero())
		assert.True(t, payment.PrincipalPaid.Equal(dec("20000")))
	})

	t.Run("closes when balance falls within epsilon", func(t *testing.T) {
		f := newDebtFixture(t)
		debt := f.carLoan(t)

		_, err := f.svc.RecordPayment(context.Background(), f.userID, debt.ID, RecordPaymentInput{
			Amount:      dec("99999.996"),
			PaymentType: domain.PaymentTypePrepayment,
		})
		require.NoError(t, err)

		stored, err := f.debts.GetByID(f.userID, debt.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.DebtStatusClosed, stored.Status)
		assert.True(t, stored.Outstanding.IsZero())

		_, err = f.svc.RecordPayment(context.Background(), f.userID, debt.ID, RecordPaymentInput{
			Amount: dec("100"),
		})
		assert.ErrorIs(t, err, domain.ErrDebtClosed)
	})

	t.Run("balance just above epsilon stays active", func(t *testing.T) {
		f := newDebtFixture(t)
		debt := f.carLoan(t)

		_, err := f.svc.RecordPayment(context.Background(), f.userID, debt.ID, RecordPaymentInput{
			Amount:      dec("99999.90"),
			PaymentType: domain.PaymentTypePrepayment,
		})
		require.NoError(t, err)

		stored, err := f.debts.GetByID(f.userID, debt.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.DebtStatusActive, stored.Status)
		assert.True(t, stored.Outstanding.Equal(dec("0.1")), "outstanding %s", stored.Outstanding)
	})

	t.Run("rejects non-positive amount", func(t *testing.T) {
		f := newDebtFixture(t)
		debt := f.carLoan(t)
		_, err := f.svc.RecordPayment(context.Background(), f.userID, debt.ID, RecordPaymentInput{
			Amount: dec("0"),
		})
		assert.ErrorIs(t, err, domain.ErrInvalidAmount)
	})
}

func TestUpdateDebtStatus(t *testing.T) {
	t.Run("defaulted blocks payments until restored", func(t *testing.T) {
		f := newDebtFixture(t)
		debt := f.carLoan(t)

		updated, err := f.svc.UpdateStatus(f.userID, debt.ID, domain.DebtStatusDefaulted)
		require.NoError(t, err)
		assert.Equal(t, domain.DebtStatusDefaulted, updated.Status)

		_, err = f.svc.RecordPayment(context.Background(), f.userID, debt.ID, RecordPaymentInput{
			Amount: dec("5000"),
		})
		assert.ErrorIs(t, err, domain.ErrPaymentNotPermitted)

		updated, err = f.svc.UpdateStatus(f.userID, debt.ID, domain.DebtStatusActive)
		require.NoError(t, err)
		assert.Equal(t, domain.DebtStatusActive, updated.Status)

		_, err = f.svc.RecordPayment(context.Background(), f.userID, debt.ID, RecordPaymentInput{
			Amount: dec("5000"),
		})
		assert.NoError(t, err)
	})

	t.Run("closed debts are immutable", func(t *testing.T) {
		f := newDebtFixture(t)
		debt := f.carLoan(t)

		_, err := f.svc.RecordPayment(context.Background(), f.userID, debt.ID, RecordPaymentInput{
			Amount:      dec("100000"),
			PaymentType: domain.PaymentTypePrepayment,
		})
		require.NoError(t, err)

		_, err = f.svc.UpdateStatus(f.userID, debt.ID, domain.DebtStatusDefaulted)
		assert.ErrorIs(t, err, domain.ErrDebtClosed)
	})

	t.Run("rejects closed and unknown targets", func(t *testing.T) {
		f := newDebtFixture(t)
		debt := f.carLoan(t)

		_, err := f.svc.UpdateStatus(f.userID, debt.ID, domain.DebtStatusClosed)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)

		_, err = f.svc.UpdateStatus(f.userID, debt.ID, "frozen")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)

		_, err = f.svc.UpdateStatus(uuid.New(), debt.ID, domain.DebtStatusDefaulted)
		assert.ErrorIs(t, err, domain.ErrDebtNotFound)
	})
}

func TestListPayments(t *testing.T) {
	f := newDebtFixture(t)
	debt := f.carLoan(t)

	_, err := f.svc.RecordPayment(context.Background(), f.userID, debt.ID, RecordPaymentInput{Amount: dec("5000")})
	require.NoError(t, err)

	history, err := f.svc.ListPayments(f.userID, debt.ID)
	require.NoError(t, err)
	assert.Len(t, history, 1)

	_, err = f.svc.ListPayments(uuid.New(), debt.ID)
	assert.ErrorIs(t, err, domain.ErrDebtNotFound)
}

func TestAnalyzePrepayment(t *testing.T) {
	f := newDebtFixture(t)
	debt := f.carLoan(t)

	result, err := f.svc.AnalyzePrepayment(f.userID, debt.ID, dec("20000"))
	require.NoError(t, err)
	assert.True(t, result.InterestSaved.GreaterThan(dec("0")))
	assert.True(t, result.EMIReduction.GreaterThan(dec("0")))
	reducedEMI, err := finance.EMI(dec("80000"), dec("10"), 5)
	require.NoError(t, err)
	assert.True(t, result.NewEMI.Equal(reducedEMI))

	// Full payoff reduces the EMI to zero and saves nothing further. With the
	// clock at 2026-08-29 the loan has five months left, so the reduction is
	// the five-month EMI on the full outstanding balance.
	result, err = f.svc.AnalyzePrepayment(f.userID, debt.ID, dec("100000"))
	require.NoError(t, err)
	assert.True(t, result.NewEMI.IsZero())
	assert.True(t, result.InterestSaved.IsZero())
	remainingEMI, err := finance.EMI(dec("100000"), dec("10"), 5)
	require.NoError(t, err)
	assert.True(t, result.EMIReduction.Equal(remainingEMI))

	_, err = f.svc.AnalyzePrepayment(f.userID, debt.ID, dec("-5"))
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
}

func TestDebtSummary(t *testing.T) {
	f := newDebtFixture(t)
	debt := f.carLoan(t)

	_, err := f.svc.RecordPayment(context.Background(), f.userID, debt.ID, RecordPaymentInput{Amount: dec("5000")})
	require.NoError(t, err)

	summary, err := f.svc.Summary(f.userID)
	require.NoError(t, err)
	assert.True(t, summary.TotalOutstanding.Equal(dec("95833.33")))
	assert.True(t, summary.TotalMonthlyEMI.Equal(dec("8791.59")))
	assert.True(t, summary.TotalInterestPaid.Equal(dec("833.33")))
	assert.Equal(t, 1, summary.ActiveDebts)
	require.NotNil(t, summary.NextEMIDue)
	assert.Equal(t, time.Date(2026, time.September, 5, 0, 0, 0, 0, time.UTC), *summary.NextEMIDue)
}
