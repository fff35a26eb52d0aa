package bigquery

import (
	"context"
	"encoding/json"
	"math/big"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
)

// DecisionRepository provides an interface for decision persistence.
type DecisionRepository interface {
	// InsertDecision stores one decision row.
	InsertDecision(ctx context.Context, row *DecisionRow) error

	// GetDecision returns the decision with the given id, or nil if absent.
	GetDecision(ctx context.Context, decisionID string) (*DecisionRow, error)

	// ListDecisions returns decisions matching the filter, newest first.
	ListDecisions(ctx context.Context, filter DecisionFilter) ([]*DecisionRow, error)

	// Close releases the underlying client.
	Close() error
}

// DecisionFilter narrows ListDecisions. Zero values mean no constraint.
type DecisionFilter struct {
	Decision string
	From     civil.Date
	To       civil.Date
	Limit    int
}

// DecisionRow represents one scored application in BigQuery.
type DecisionRow struct {
	DecisionID    string `bigquery:"decision_id" json:"decision_id"`
	ApplicationID string `bigquery:"application_id" json:"application_id"`

	Decision  string  `bigquery:"decision" json:"decision"`
	Score     float64 `bigquery:"score" json:"score"`
	RiskLevel string  `bigquery:"risk_level" json:"risk_level"`

	AffordabilityScore  float64 `bigquery:"affordability_score" json:"affordability_score"`
	IncomeQualityScore  float64 `bigquery:"income_quality_score" json:"income_quality_score"`
	AccountConductScore float64 `bigquery:"account_conduct_score" json:"account_conduct_score"`
	RiskIndicatorsScore float64 `bigquery:"risk_indicators_score" json:"risk_indicators_score"`

	ApprovedAmount   *big.Rat             `bigquery:"approved_amount" json:"approved_amount,omitempty"`
	ApprovedTerm     bigquery.NullInt64   `bigquery:"approved_term" json:"approved_term,omitempty"`
	MonthlyRepayment *big.Rat             `bigquery:"monthly_repayment" json:"monthly_repayment,omitempty"`
	APR              bigquery.NullFloat64 `bigquery:"apr" json:"apr,omitempty"`

	DeclineReasons  []string `bigquery:"decline_reasons" json:"decline_reasons,omitempty"`
	ReferralReasons []string `bigquery:"referral_reasons" json:"referral_reasons,omitempty"`
	RiskFlags       []string `bigquery:"risk_flags" json:"risk_flags,omitempty"`

	MonthlyIncome     *big.Rat `bigquery:"monthly_income" json:"monthly_income"`
	MonthlyExpenses   *big.Rat `bigquery:"monthly_expenses" json:"monthly_expenses"`
	MonthlyDisposable *big.Rat `bigquery:"monthly_disposable" json:"monthly_disposable"`

	NarrativeSummary  bigquery.NullString `bigquery:"narrative_summary" json:"narrative_summary,omitempty"`
	NarrativeConcerns []string            `bigquery:"narrative_concerns" json:"narrative_concerns,omitempty"`

	DecisionDate civil.Date `bigquery:"decision_date" json:"decision_date"`
	CreatedTS    time.Time  `bigquery:"created_ts" json:"created_ts"`
}

// MarshalJSON renders NUMERIC columns as fixed two-decimal strings.
func (d DecisionRow) MarshalJSON() ([]byte, error) {
	type Alias DecisionRow
	return json.Marshal(&struct {
		ApprovedAmount    *string `json:"approved_amount,omitempty"`
		MonthlyRepayment  *string `json:"monthly_repayment,omitempty"`
		MonthlyIncome     string  `json:"monthly_income"`
		MonthlyExpenses   string  `json:"monthly_expenses"`
		MonthlyDisposable string  `json:"monthly_disposable"`
		*Alias
	}{
		ApprovedAmount:    optionalMoney(d.ApprovedAmount),
		MonthlyRepayment:  optionalMoney(d.MonthlyRepayment),
		MonthlyIncome:     money(d.MonthlyIncome),
		MonthlyExpenses:   money(d.MonthlyExpenses),
		MonthlyDisposable: money(d.MonthlyDisposable),
		Alias:             (*Alias)(&d),
	})
}

func money(r *big.Rat) string {
	if r == nil {
		return "0.00"
	}
	return r.FloatString(2)
}

func optionalMoney(r *big.Rat) *string {
	if r == nil {
		return nil
	}
	s := r.FloatString(2)
	return &s
}
