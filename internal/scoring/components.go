package scoring

import (
	"math"

	"github.com/dvloznov/hcstc-decisioning/internal/metrics"
)

func component(name string, weight float64, items ...Item) Component {
	sum := 0.0
	for _, it := range items {
		sum += it.Points
	}
	return Component{Name: name, Score: round1(math.Min(sum, weight)), Max: weight, Items: items}
}

func (c Config) affordability(m metrics.Metrics) Component {
	th := c.Thresholds
	a := m.Affordability
	post := math.Min(th.PostLoanPoints, math.Max(0, a.PostLoanDisposable/th.PostLoanFullAt*th.PostLoanPoints))
	return component("affordability", c.Weights.Affordability,
		Item{"debt_to_income", th.DebtToIncome.AtMost(a.DebtToIncome)},
		Item{"disposable_income", th.Disposable.AtLeast(a.Disposable)},
		Item{"post_loan_disposable", round1(post)},
	)
}

func (c Config) incomeQuality(m metrics.Metrics) Component {
	th := c.Thresholds
	in := m.Income
	verification := th.UnverifiedPoints
	if in.HasVerifiableIncome {
		verification = th.VerifiedPoints
	}
	regularity := math.Min(th.RegularityPoints, in.RegularityScore/100*th.RegularityPoints)
	return component("income_quality", c.Weights.IncomeQuality,
		Item{"stability", th.Stability.AtLeast(in.StabilityScore)},
		Item{"regularity", round1(regularity)},
		Item{"verification", verification},
	)
}

func (c Config) accountConduct(m metrics.Metrics) Component {
	th := c.Thresholds
	failed := math.Max(0, th.FailedPaymentPoints-th.FailedPaymentDeduct*float64(m.Risk.FailedPayments))
	return component("account_conduct", c.Weights.AccountConduct,
		Item{"failed_payments", failed},
		Item{"overdraft_days", th.OverdraftDays.AtMost(float64(m.Balance.OverdraftDays))},
		Item{"average_balance", th.AverageBalance.AtLeast(m.Balance.Average)},
	)
}

func (c Config) riskIndicators(m metrics.Metrics) Component {
	th := c.Thresholds
	return component("risk_indicators", c.Weights.RiskIndicators,
		Item{"gambling", th.GamblingPercent.AtMost(m.Risk.GamblingPercent)},
		Item{"hcstc_history", th.HCSTCLenders.AtMost(float64(len(m.Debt.HCSTCLenders)))},
	)
}

func (c Config) adjustments(m metrics.Metrics) []Item {
	adj := c.Adjustments
	var items []Item
	if m.Risk.GamblingPercent > adj.GamblingPenaltyAbove {
		items = append(items, Item{"gambling_penalty", adj.GamblingPenalty})
	}
	if len(m.Debt.HCSTCLenders) >= adj.MultipleHCSTCAt {
		items = append(items, Item{"multiple_hcstc_penalty", adj.MultipleHCSTCPenalty})
	}
	if m.Risk.HasSavings {
		items = append(items, Item{"savings_bonus", adj.SavingsBonus})
	}
	if m.Income.TrendKnown {
		switch {
		case m.Income.TrendPercent >= adj.RisingIncomePercent:
			items = append(items, Item{"rising_income_bonus", adj.RisingIncomeBonus})
		case m.Income.TrendPercent <= adj.FallingIncomePercent:
			items = append(items, Item{"falling_income_penalty", adj.FallingIncomePenalty})
		}
	}
	return items
}

// Breakdown scores the four components and applies adjustments. The total
// is clamped to [0, MaxScore].
func (c Config) Breakdown(m metrics.Metrics) Breakdown {
	b := Breakdown{
		Affordability:  c.affordability(m),
		IncomeQuality:  c.incomeQuality(m),
		AccountConduct: c.accountConduct(m),
		RiskIndicators: c.riskIndicators(m),
		Adjustments:    c.adjustments(m),
	}
	total := 0.0
	for _, comp := range b.Components() {
		total += comp.Score
	}
	for _, it := range b.Adjustments {
		total += it.Points
	}
	b.Total = round1(math.Max(0, math.Min(c.MaxScore, total)))
	return b
}

func round1(x float64) float64 { return math.Round(x*10) / 10 }
func round2(x float64) float64 { return math.Round(x*100) / 100 }
