// Package loan prices short-term loans under a daily rate with a total-cost
// cap. Arithmetic is done in decimal and rounded to pence only at the edge.
package loan

import (
	"github.com/shopspring/decimal"
)

// Terms describes how a product accrues interest.
type Terms struct {
	DailyRate    float64 // e.g. 0.008 for 0.8% per day
	TotalCostCap float64 // total interest may not exceed principal * cap
	DaysPerMonth float64
}

// DefaultTerms returns the standard product pricing.
func DefaultTerms() Terms {
	return Terms{DailyRate: 0.008, TotalCostCap: 1.0, DaysPerMonth: 30.4}
}

// Quote is the repayment schedule summary for one principal and term.
type Quote struct {
	Principal        float64
	Term             int
	MonthlyRepayment float64
	TotalRepayable   float64
	TotalInterest    float64
	APR              float64 // simplified: interest/principal annualised, percent
}

func (t Terms) monthlyRate() decimal.Decimal {
	return decimal.NewFromFloat(t.DailyRate).Mul(decimal.NewFromFloat(t.DaysPerMonth))
}

// totalInterest = min(P * r * n, P * cap).
func (t Terms) totalInterest(principal decimal.Decimal, term int) decimal.Decimal {
	accrued := principal.Mul(t.monthlyRate()).Mul(decimal.NewFromInt(int64(term)))
	capped := principal.Mul(decimal.NewFromFloat(t.TotalCostCap))
	return decimal.Min(accrued, capped)
}

// Quote prices principal over term months. Non-positive inputs give a zero
// quote.
func (t Terms) Quote(principal float64, term int) Quote {
	q := Quote{Principal: principal, Term: term}
	if principal <= 0 || term <= 0 {
		return q
	}
	p := decimal.NewFromFloat(principal)
	n := decimal.NewFromInt(int64(term))
	interest := t.totalInterest(p, term)
	total := p.Add(interest)

	q.TotalInterest = interest.Round(2).InexactFloat64()
	q.TotalRepayable = total.Round(2).InexactFloat64()
	q.MonthlyRepayment = total.DivRound(n, 2).InexactFloat64()
	q.APR = interest.Div(p).Mul(decimal.NewFromInt(12)).Div(n).Mul(decimal.NewFromInt(100)).Round(1).InexactFloat64()
	return q
}

// MonthlyRepayment is Quote(principal, term).MonthlyRepayment.
func (t Terms) MonthlyRepayment(principal float64, term int) float64 {
	return t.Quote(principal, term).MonthlyRepayment
}

// MaxPrincipal inverts the repayment formula: the largest principal whose
// monthly repayment leaves at least buffer of the given disposable income.
// The result is truncated to whole pence.
func (t Terms) MaxPrincipal(disposable, buffer float64, term int) float64 {
	if term <= 0 {
		return 0
	}
	headroom := decimal.NewFromFloat(disposable).Sub(decimal.NewFromFloat(buffer))
	if !headroom.IsPositive() {
		return 0
	}
	one := decimal.NewFromInt(1)
	n := decimal.NewFromInt(int64(term))
	accrual := one.Add(t.monthlyRate().Mul(n))
	capped := one.Add(decimal.NewFromFloat(t.TotalCostCap))
	factor := decimal.Min(accrual, capped)
	return headroom.Mul(n).Div(factor).Truncate(2).InexactFloat64()
}
