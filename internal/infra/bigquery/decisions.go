package bigquery

import (
	"math/big"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dvloznov/hcstc-decisioning/internal/narrative"
	"github.com/dvloznov/hcstc-decisioning/internal/scoring"
)

// NewDecisionRow maps a scoring result, and the narrative if there is one,
// onto a decisions row stamped with at.
func NewDecisionRow(result scoring.Result, n *narrative.Narrative, at time.Time) *DecisionRow {
	row := &DecisionRow{
		DecisionID:    uuid.NewString(),
		ApplicationID: result.ApplicationID,

		Decision:  string(result.Decision),
		Score:     result.Score,
		RiskLevel: string(result.RiskLevel),

		DeclineReasons:  result.DeclineReasons,
		ReferralReasons: result.ReferralReasons,
		RiskFlags:       result.RiskFlags,

		MonthlyIncome:     rat(result.MonthlyIncome),
		MonthlyExpenses:   rat(result.MonthlyExpenses),
		MonthlyDisposable: rat(result.MonthlyDisposable),

		DecisionDate: civil.DateOf(at),
		CreatedTS:    at,
	}

	if b := result.Breakdown; b != nil {
		row.AffordabilityScore = b.Affordability.Score
		row.IncomeQualityScore = b.IncomeQuality.Score
		row.AccountConductScore = b.AccountConduct.Score
		row.RiskIndicatorsScore = b.RiskIndicators.Score
	}

	if o := result.Offer; o != nil {
		row.ApprovedAmount = rat(o.Amount)
		row.ApprovedTerm = bigquery.NullInt64{Int64: int64(o.Term), Valid: true}
		row.MonthlyRepayment = rat(o.MonthlyRepayment)
		row.APR = bigquery.NullFloat64{Float64: o.APR, Valid: true}
	}

	if n != nil {
		row.NarrativeSummary = bigquery.NullString{StringVal: n.Summary, Valid: true}
		row.NarrativeConcerns = n.Concerns
	}
	return row
}

// rat converts a money amount to a NUMERIC value rounded to pence.
func rat(v float64) *big.Rat {
	return decimal.NewFromFloat(v).Round(2).Rat()
}
