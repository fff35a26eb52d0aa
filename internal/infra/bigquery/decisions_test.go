package bigquery

import (
	"strings"
	"testing"
	"time"

	"cloud.google.com/go/civil"

	"github.com/dvloznov/hcstc-decisioning/internal/narrative"
	"github.com/dvloznov/hcstc-decisioning/internal/scoring"
)

func TestNewDecisionRow(t *testing.T) {
	at := time.Date(2025, 3, 31, 23, 10, 0, 0, time.UTC)
	result := scoring.Result{
		ApplicationID: "app-1",
		Decision:      scoring.Approve,
		Score:         91.5,
		RiskLevel:     scoring.RiskLow,
		Breakdown: &scoring.Breakdown{
			Affordability: scoring.Component{Score: 38},
			IncomeQuality: scoring.Component{Score: 24.5},
		},
		Offer: &scoring.Offer{
			Amount:           300,
			Term:             3,
			MonthlyRepayment: 172.96,
			APR:              291.8,
		},
		MonthlyIncome:     2000,
		MonthlyExpenses:   880.004,
		MonthlyDisposable: 1119.996,
	}

	row := NewDecisionRow(result, &narrative.Narrative{Summary: "Strong salary."}, at)

	if row.DecisionID == "" || row.ApplicationID != "app-1" {
		t.Errorf("ids = %q, %q", row.DecisionID, row.ApplicationID)
	}
	if row.Decision != "APPROVE" || row.RiskLevel != "Low" {
		t.Errorf("decision = %s/%s", row.Decision, row.RiskLevel)
	}
	if row.AffordabilityScore != 38 || row.IncomeQualityScore != 24.5 {
		t.Errorf("component scores = %v, %v", row.AffordabilityScore, row.IncomeQualityScore)
	}
	if got := row.ApprovedAmount.FloatString(2); got != "300.00" {
		t.Errorf("ApprovedAmount = %s", got)
	}
	if !row.ApprovedTerm.Valid || row.ApprovedTerm.Int64 != 3 {
		t.Errorf("ApprovedTerm = %+v", row.ApprovedTerm)
	}
	if got := row.MonthlyExpenses.FloatString(2); got != "880.00" {
		t.Errorf("MonthlyExpenses = %s", got)
	}
	if want := (civil.Date{Year: 2025, Month: time.March, Day: 31}); row.DecisionDate != want {
		t.Errorf("DecisionDate = %v, want %v", row.DecisionDate, want)
	}
	if !row.NarrativeSummary.Valid || row.NarrativeSummary.StringVal != "Strong salary." {
		t.Errorf("NarrativeSummary = %+v", row.NarrativeSummary)
	}
}

func TestNewDecisionRowWithoutOffer(t *testing.T) {
	row := NewDecisionRow(scoring.Result{ApplicationID: "app-2", Decision: scoring.Decline}, nil, time.Now())
	if row.ApprovedAmount != nil || row.ApprovedTerm.Valid || row.APR.Valid {
		t.Errorf("declined row carries offer fields: %+v", row)
	}
	if row.NarrativeSummary.Valid {
		t.Error("narrative should be NULL")
	}
}

func TestBuildListQuery(t *testing.T) {
	table := Table{ProjectID: "proj", Dataset: "hcstc", Name: "decisions"}

	tests := []struct {
		name       string
		filter     DecisionFilter
		wantWhere  []string
		wantLimit  int
		wantParams int
	}{
		{
			name:       "no filter",
			wantLimit:  defaultListLimit,
			wantParams: 1,
		},
		{
			name:       "decision and dates",
			filter:     DecisionFilter{Decision: "refer", From: civil.Date{Year: 2025, Month: 1, Day: 1}, To: civil.Date{Year: 2025, Month: 1, Day: 31}, Limit: 20},
			wantWhere:  []string{"decision = @decision", "decision_date >= @from_date", "decision_date <= @to_date"},
			wantLimit:  20,
			wantParams: 4,
		},
		{
			name:       "limit capped",
			filter:     DecisionFilter{Limit: 50000},
			wantLimit:  maxListLimit,
			wantParams: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, params := buildListQuery(table, tt.filter)

			if !strings.Contains(sql, "FROM `proj.hcstc.decisions`") {
				t.Errorf("query does not target the table:\n%s", sql)
			}
			for _, w := range tt.wantWhere {
				if !strings.Contains(sql, w) {
					t.Errorf("query missing %q:\n%s", w, sql)
				}
			}
			if len(tt.wantWhere) == 0 && strings.Contains(sql, "WHERE") {
				t.Errorf("unexpected WHERE clause:\n%s", sql)
			}
			if len(params) != tt.wantParams {
				t.Fatalf("params = %d, want %d", len(params), tt.wantParams)
			}
			last := params[len(params)-1]
			if last.Name != "limit" || last.Value != tt.wantLimit {
				t.Errorf("limit param = %+v, want %d", last, tt.wantLimit)
			}
			if tt.filter.Decision != "" && params[0].Value != "REFER" {
				t.Errorf("decision param = %v, want upper-cased", params[0].Value)
			}
		})
	}
}
