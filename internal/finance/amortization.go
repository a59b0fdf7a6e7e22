// Package finance holds the pure money math used by the debt and investment
// services. Rates are annual percentages; money is shopspring decimal rounded
// to two places at the boundary.
package finance

import (
	"errors"
	"math"

	"github.com/shopspring/decimal"
)

var ErrInvalidTenure = errors.New("tenure must be at least one month")

// DebtCloseEpsilon is the outstanding balance at or below which a debt is
// considered fully repaid. Half a cent absorbs rounding drift without
// closing a debt that genuinely has money left on it.
var DebtCloseEpsilon = decimal.NewFromFloat(0.005)

func round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// monthlyRate converts an annual percentage rate to a monthly fraction.
func monthlyRate(annualRatePct decimal.Decimal) float64 {
	f, _ := annualRatePct.Float64()
	return f / 12.0 / 100.0
}

// EMI computes the fixed monthly installment for a loan of principal p at
// annualRatePct over tenureMonths, using the standard annuity formula
// P*r*(1+r)^n / ((1+r)^n - 1). A zero rate degenerates to p/n.
func EMI(principal, annualRatePct decimal.Decimal, tenureMonths int) (decimal.Decimal, error) {
	if tenureMonths < 1 {
		return decimal.Zero, ErrInvalidTenure
	}
	r := monthlyRate(annualRatePct)
	n := decimal.NewFromInt(int64(tenureMonths))
	if r == 0 {
		return principal.DivRound(n, 10), nil
	}
	factor := math.Pow(1+r, float64(tenureMonths))
	p, _ := principal.Float64()
	emi := p * r * factor / (factor - 1)
	return round2(decimal.NewFromFloat(emi)), nil
}

// TotalInterest is the interest paid over the full tenure: EMI*n - principal.
func TotalInterest(principal, annualRatePct decimal.Decimal, tenureMonths int) (decimal.Decimal, error) {
	emi, err := EMI(principal, annualRatePct, tenureMonths)
	if err != nil {
		return decimal.Zero, err
	}
	n := decimal.NewFromInt(int64(tenureMonths))
	return round2(emi.Mul(n).Sub(principal)), nil
}

// PrepaymentResult describes the effect of a lump-sum prepayment that keeps
// the remaining tenure fixed and lowers the EMI instead.
type PrepaymentResult struct {
	InterestSaved decimal.Decimal `json:"interestSaved"`
	EMIReduction  decimal.Decimal `json:"emiReduction"`
	NewEMI        decimal.Decimal `json:"newEmi"`
}

// PrepaymentSavings computes the new EMI and interest saved when prepayAmount
// is applied against outstanding with remainingMonths left to run. Paying the
// loan off entirely zeroes the EMI; the reduction then equals the original EMI
// and no further interest accrues.
func PrepaymentSavings(outstanding, annualRatePct, prepayAmount decimal.Decimal, remainingMonths int) (*PrepaymentResult, error) {
	originalEMI, err := EMI(outstanding, annualRatePct, remainingMonths)
	if err != nil {
		return nil, err
	}
	newPrincipal := outstanding.Sub(prepayAmount)
	if newPrincipal.LessThanOrEqual(DebtCloseEpsilon) {
		return &PrepaymentResult{
			InterestSaved: decimal.Zero,
			EMIReduction:  round2(originalEMI),
			NewEMI:        decimal.Zero,
		}, nil
	}
	newEMI, err := EMI(newPrincipal, annualRatePct, remainingMonths)
	if err != nil {
		return nil, err
	}
	oldInterest, err := TotalInterest(outstanding, annualRatePct, remainingMonths)
	if err != nil {
		return nil, err
	}
	newInterest, err := TotalInterest(newPrincipal, annualRatePct, remainingMonths)
	if err != nil {
		return nil, err
	}
	return &PrepaymentResult{
		InterestSaved: round2(oldInterest.Sub(newInterest)),
		EMIReduction:  round2(originalEMI.Sub(newEMI)),
		NewEMI:        round2(newEMI),
	}, nil
}

// Breakdown splits a payment into interest and principal portions.
type Breakdown struct {
	InterestPaid  decimal.Decimal
	PrincipalPaid decimal.Decimal
}

// SplitPayment apportions an EMI payment against the outstanding balance:
// one month of interest first, the remainder to principal. When the payment
// does not even cover the month's interest, the whole payment is interest.
// Non-EMI payments (prepayments, late fees) carry no interest component.
func SplitPayment(outstanding, annualRatePct, amount decimal.Decimal, isEMI bool) Breakdown {
	if !isEMI {
		return Breakdown{InterestPaid: decimal.Zero, PrincipalPaid: amount}
	}
	rate := annualRatePct.Div(decimal.NewFromInt(12)).Div(decimal.NewFromInt(100))
	interest := round2(outstanding.Mul(rate))
	if interest.GreaterThan(amount) {
		interest = amount
	}
	return Breakdown{
		InterestPaid:  interest,
		PrincipalPaid: amount.Sub(interest),
	}
}

// SIPFutureValue projects the value of a fixed monthly contribution after
// months of compounding at annualRatePct, contributions made at the start of
// each month: M * (((1+i)^n - 1) / i) * (1+i).
func SIPFutureValue(monthly, annualRatePct decimal.Decimal, months int) (decimal.Decimal, error) {
	if months < 1 {
		return decimal.Zero, ErrInvalidTenure
	}
	i := monthlyRate(annualRatePct)
	if i == 0 {
		return round2(monthly.Mul(decimal.NewFromInt(int64(months)))), nil
	}
	m, _ := monthly.Float64()
	fv := m * ((math.Pow(1+i, float64(months)) - 1) / i) * (1 + i)
	return round2(decimal.NewFromFloat(fv)), nil
}

// LumpsumFutureValue compounds a one-time principal annually for years at
// annualRatePct: P * (1+r)^y.
func LumpsumFutureValue(principal, annualRatePct decimal.Decimal, years int) (decimal.Decimal, error) {
	if years < 0 {
		return decimal.Zero, ErrInvalidTenure
	}
	r, _ := annualRatePct.Float64()
	p, _ := principal.Float64()
	fv := p * math.Pow(1+r/100, float64(years))
	return round2(decimal.NewFromFloat(fv)), nil
}
