// Package report renders decisions for people: JSON views for the API,
// text tables for the CLI and a balance chart.
package report

import (
	"github.com/dvloznov/hcstc-decisioning/internal/narrative"
	"github.com/dvloznov/hcstc-decisioning/internal/pipeline"
)

// DecisionView is the JSON shape of one decision.
type DecisionView struct {
	ApplicationID string          `json:"application_id"`
	DecisionID    string          `json:"decision_id,omitempty"`
	Decision      string          `json:"decision"`
	Score         float64         `json:"score"`
	RiskLevel     string          `json:"risk_level"`
	Offer         *OfferView      `json:"offer,omitempty"`
	Components    []ComponentView `json:"components,omitempty"`

	DeclineReasons  []string `json:"decline_reasons"`
	ReferralReasons []string `json:"referral_reasons"`
	RiskFlags       []string `json:"risk_flags"`
	Notes           []string `json:"notes,omitempty"`

	MonthlyIncome      float64 `json:"monthly_income"`
	MonthlyExpenses    float64 `json:"monthly_expenses"`
	MonthlyDisposable  float64 `json:"monthly_disposable"`
	PostLoanDisposable float64 `json:"post_loan_disposable"`

	Narrative *narrative.Narrative `json:"narrative,omitempty"`
}

// OfferView is the JSON shape of an approved loan.
type OfferView struct {
	Amount           float64 `json:"amount"`
	Term             int     `json:"term"`
	MonthlyRepayment float64 `json:"monthly_repayment"`
	TotalRepayable   float64 `json:"total_repayable"`
	APR              float64 `json:"apr"`
	DailyRatePercent float64 `json:"daily_rate_percent"`
}

// ComponentView is one scored component.
type ComponentView struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
	Max   float64 `json:"max"`
}

// NewDecisionView flattens a decided pipeline state.
func NewDecisionView(state *pipeline.DecisionState) DecisionView {
	res := state.Result
	v := DecisionView{
		ApplicationID:      firstNonEmpty(res.ApplicationID, state.Application.ID),
		DecisionID:         state.DecisionID,
		Decision:           string(res.Decision),
		Score:              res.Score,
		RiskLevel:          string(res.RiskLevel),
		DeclineReasons:     nonNil(res.DeclineReasons),
		ReferralReasons:    nonNil(res.ReferralReasons),
		RiskFlags:          nonNil(res.RiskFlags),
		Notes:              res.Notes,
		MonthlyIncome:      res.MonthlyIncome,
		MonthlyExpenses:    res.MonthlyExpenses,
		MonthlyDisposable:  res.MonthlyDisposable,
		PostLoanDisposable: res.PostLoanDisposable,
		Narrative:          state.Narrative,
	}
	if o := res.Offer; o != nil {
		v.Offer = &OfferView{
			Amount:           o.Amount,
			Term:             o.Term,
			MonthlyRepayment: o.MonthlyRepayment,
			TotalRepayable:   o.TotalRepayable,
			APR:              o.APR,
			DailyRatePercent: o.DailyRatePercent,
		}
	}
	if res.Breakdown != nil {
		for _, c := range res.Breakdown.Components() {
			v.Components = append(v.Components, ComponentView{Name: c.Name, Score: c.Score, Max: c.Max})
		}
	}
	return v
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
