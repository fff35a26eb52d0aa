// Package scoring turns metrics into a lending decision. Hard rules run
// first, then a weighted points score, referral overrides and finally the
// loan offer.
package scoring

import (
	"fmt"
	"math"

	"github.com/dvloznov/hcstc-decisioning/internal/metrics"
)

// Engine applies one validated Config. It is safe for concurrent use.
type Engine struct {
	cfg Config
}

// NewEngine validates cfg and returns an Engine.
func NewEngine(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("NewEngine: invalid config: %w", err)
	}
	return &Engine{cfg: cfg}, nil
}

// Config returns the rule set in use.
func (e *Engine) Config() Config {
	return e.cfg
}

// Score decides one application. The requested loan is the one the metrics
// were computed for.
func (e *Engine) Score(applicationID string, m metrics.Metrics) Result {
	a := m.Affordability
	res := Result{
		ApplicationID:      applicationID,
		MonthlyIncome:      m.Income.MonthlyIncome,
		MonthlyExpenses:    round2(m.Expenses.MonthlyEssential + m.Debt.MonthlyDebt),
		MonthlyDisposable:  a.Disposable,
		PostLoanDisposable: a.PostLoanDisposable,
		RiskFlags:          RiskFlags(m),
	}

	for _, h := range e.cfg.CheckRules(m) {
		if h.Action == Decline {
			res.DeclineReasons = append(res.DeclineReasons, h.Message)
		} else {
			res.ReferralReasons = append(res.ReferralReasons, h.Message)
		}
	}
	if len(res.DeclineReasons) > 0 {
		res.Decision = Decline
		res.Score = 0
		res.RiskLevel = RiskVeryHigh
		return res
	}

	b := e.cfg.Breakdown(m)
	res.Breakdown = &b
	res.Score = b.Total
	res.ReferralReasons = append(res.ReferralReasons, e.cfg.MandatoryReferrals(m)...)
	res.Decision, res.RiskLevel = e.band(res.Score)

	switch {
	case res.Decision == Decline:
		res.DeclineReasons = append(res.DeclineReasons,
			fmt.Sprintf("score: %.1f below the referral threshold %.0f", res.Score, e.cfg.Bands.Refer))
	case res.Decision == Approve && len(res.ReferralReasons) > 0:
		res.Decision, res.RiskLevel = Refer, RiskHigh
	}

	if res.Decision == Approve {
		offer := e.Offer(res.Score, a.MaxAffordableAmount, a.RequestedAmount, a.RequestedTerm)
		if offer.Amount < e.cfg.Product.MinAmount {
			res.Decision, res.RiskLevel = Refer, RiskHigh
			res.ReferralReasons = append(res.ReferralReasons,
				fmt.Sprintf("offer: £%.2f below the minimum loan £%.0f", offer.Amount, e.cfg.Product.MinAmount))
		} else {
			res.Offer = &offer
			res.PostLoanDisposable = round2(a.Disposable - offer.MonthlyRepayment)
		}
	}
	if res.Decision == Refer {
		res.Notes = append(res.Notes, "Manual review required")
	}
	return res
}

// band maps a score to a decision without referral overrides.
func (e *Engine) band(score float64) (Decision, RiskLevel) {
	b := e.cfg.Bands
	switch {
	case score >= b.LowRisk:
		return Approve, RiskLow
	case score >= b.Approve:
		return Approve, RiskMedium
	case score >= b.Refer:
		return Refer, RiskHigh
	default:
		return Decline, RiskVeryHigh
	}
}

// Tier returns the offer limits for a score.
func (e *Engine) Tier(score float64) Tier {
	for _, t := range e.cfg.Tiers {
		if score >= t.MinScore {
			return t
		}
	}
	return Tier{}
}

// Offer sizes the loan: the smallest of the request, the product maximum,
// the score tier and the affordable maximum. The term is capped by the tier
// and snapped down to an available term.
func (e *Engine) Offer(score, affordable, requested float64, requestedTerm int) Offer {
	p := e.cfg.Product
	tier := e.Tier(score)

	amount := math.Min(math.Min(requested, p.MaxAmount), math.Min(tier.MaxAmount, affordable))
	amount = math.Max(0, round2(amount))
	term := e.snapTerm(min(requestedTerm, tier.MaxTerm))

	q := e.cfg.LoanTerms().Quote(amount, term)
	return Offer{
		Amount:           amount,
		Term:             term,
		MonthlyRepayment: q.MonthlyRepayment,
		TotalRepayable:   q.TotalRepayable,
		APR:              q.APR,
		DailyRatePercent: p.DailyRate * 100,
	}
}

// snapTerm returns the largest available term not above term, or the
// shortest available term.
func (e *Engine) snapTerm(term int) int {
	terms := e.cfg.Product.Terms
	best := terms[0]
	for _, t := range terms {
		if t <= term {
			best = t
		}
	}
	return best
}
