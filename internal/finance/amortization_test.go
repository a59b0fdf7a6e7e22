package finance

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func TestEMI(t *testing.T) {
	t.Run("standard loan", func(t *testing.T) {
		emi, err := EMI(d("100000"), d("10"), 12)
		require.NoError(t, err)
		assert.True(t, emi.Equal(d("8791.59")), "got %s", emi)
	})

	t.Run("zero rate splits principal evenly", func(t *testing.T) {
		emi, err := EMI(d("12000"), d("0"), 12)
		require.NoError(t, err)
		assert.True(t, emi.Equal(d("1000")), "got %s", emi)
	})

	t.Run("invalid tenure", func(t *testing.T) {
		_, err := EMI(d("100000"), d("10"), 0)
		assert.ErrorIs(t, err, ErrInvalidTenure)
	})
}

func TestTotalInterest(t *testing.T) {
	total, err := TotalInterest(d("100000"), d("10"), 12)
	require.NoError(t, err)
	// 8791.59 * 12 - 100000
	assert.True(t, total.Equal(d("5499.08")), "got %s", total)

	zero, err := TotalInterest(d("12000"), d("0"), 12)
	require.NoError(t, err)
	assert.True(t, zero.IsZero(), "got %s", zero)
}

func TestPrepaymentSavings(t *testing.T) {
	t.Run("partial prepayment lowers EMI and interest", func(t *testing.T) {
		res, err := PrepaymentSavings(d("100000"), d("10"), d("20000"), 12)
		require.NoError(t, err)
		assert.True(t, res.NewEMI.LessThan(d("8791.59")), "new EMI %s", res.NewEMI)
		assert.True(t, res.InterestSaved.IsPositive(), "interest saved %s", res.InterestSaved)
		// reduction is proportional to the prepaid share of principal
		expected := d("8791.59").Sub(res.NewEMI)
		assert.True(t, res.EMIReduction.Equal(expected), "got %s want %s", res.EMIReduction, expected)
	})

	t.Run("full payoff zeroes the EMI", func(t *testing.T) {
		res, err := PrepaymentSavings(d("100000"), d("10"), d("100000"), 12)
		require.NoError(t, err)
		assert.True(t, res.NewEMI.IsZero())
		assert.True(t, res.EMIReduction.Equal(d("8791.59")), "got %s", res.EMIReduction)
		assert.True(t, res.InterestSaved.IsZero())
	})
}

func TestSplitPayment(t *testing.T) {
	t.Run("emi pays interest first", func(t *testing.T) {
		b := SplitPayment(d("100000"), d("12"), d("5000"), true)
		// one month of interest on 100000 at 12% is 1000
		assert.True(t, b.InterestPaid.Equal(d("1000")), "interest %s", b.InterestPaid)
		assert.True(t, b.PrincipalPaid.Equal(d("4000")), "principal %s", b.PrincipalPaid)
	})

	t.Run("interest clamps to payment", func(t *testing.T) {
		b := SplitPayment(d("100000"), d("12"), d("500"), true)
		assert.True(t, b.InterestPaid.Equal(d("500")))
		assert.True(t, b.PrincipalPaid.IsZero())
	})

	t.Run("prepayment is all principal", func(t *testing.T) {
		b := SplitPayment(d("100000"), d("12"), d("5000"), false)
		assert.True(t, b.InterestPaid.IsZero())
		assert.True(t, b.PrincipalPaid.Equal(d("5000")))
	})
}

func TestSIPFutureValue(t *testing.T) {
	t.Run("grows beyond contributions", func(t *testing.T) {
		fv, err := SIPFutureValue(d("1000"), d("12"), 12)
		require.NoError(t, err)
		assert.True(t, fv.GreaterThan(d("12000")), "got %s", fv)
		assert.True(t, fv.LessThan(d("13500")), "got %s", fv)
	})

	t.Run("zero rate is plain sum", func(t *testing.T) {
		fv, err := SIPFutureValue(d("1000"), d("0"), 24)
		require.NoError(t, err)
		assert.True(t, fv.Equal(d("24000")), "got %s", fv)
	})

	t.Run("invalid months", func(t *testing.T) {
		_, err := SIPFutureValue(d("1000"), d("12"), 0)
		assert.ErrorIs(t, err, ErrInvalidTenure)
	})
}

func TestLumpsumFutureValue(t *testing.T) {
	fv, err := LumpsumFutureValue(d("10000"), d("10"), 2)
	require.NoError(t, err)
	assert.True(t, fv.Equal(d("12100")), "got %s", fv)

	flat, err := LumpsumFutureValue(d("10000"), d("10"), 0)
	require.NoError(t, err)
	assert.True(t, flat.Equal(d("10000")), "got %s", flat)
}
