package bigquery

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"
)

const (
	defaultListLimit = 100
	maxListLimit     = 1000
)

const decisionColumns = `
			decision_id,
			application_id,
			decision,
			score,
			risk_level,
			affordability_score,
			income_quality_score,
			account_conduct_score,
			risk_indicators_score,
			approved_amount,
			approved_term,
			monthly_repayment,
			apr,
			decline_reasons,
			referral_reasons,
			risk_flags,
			monthly_income,
			monthly_expenses,
			monthly_disposable,
			narrative_summary,
			narrative_concerns,
			decision_date,
			created_ts`

// GetDecisionWithClient retrieves one decision by id. Returns nil if no
// decision with the given id exists.
func GetDecisionWithClient(ctx context.Context, client *bigquery.Client, table Table, decisionID string) (*DecisionRow, error) {
	q := client.Query(fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE decision_id = @decision_id
		LIMIT 1
	`, decisionColumns, table.FullName()))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "decision_id", Value: decisionID},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("GetDecisionWithClient: reading query: %w", err)
	}

	var row DecisionRow
	err = it.Next(&row)
	if err == iterator.Done {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("GetDecisionWithClient: reading row: %w", err)
	}
	return &row, nil
}

// ListDecisionsWithClient returns decisions matching filter, newest first.
func ListDecisionsWithClient(ctx context.Context, client *bigquery.Client, table Table, filter DecisionFilter) ([]*DecisionRow, error) {
	sql, params := buildListQuery(table, filter)
	q := client.Query(sql)
	q.Parameters = params

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListDecisionsWithClient: reading query: %w", err)
	}

	var decisions []*DecisionRow
	for {
		var row DecisionRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListDecisionsWithClient: iterating: %w", err)
		}
		decisions = append(decisions, &row)
	}
	return decisions, nil
}

func buildListQuery(table Table, filter DecisionFilter) (string, []bigquery.QueryParameter) {
	var (
		where  []string
		params []bigquery.QueryParameter
	)
	if filter.Decision != "" {
		where = append(where, "decision = @decision")
		params = append(params, bigquery.QueryParameter{Name: "decision", Value: strings.ToUpper(filter.Decision)})
	}
	if !filter.From.IsZero() {
		where = append(where, "decision_date >= @from_date")
		params = append(params, bigquery.QueryParameter{Name: "from_date", Value: filter.From})
	}
	if !filter.To.IsZero() {
		where = append(where, "decision_date <= @to_date")
		params = append(params, bigquery.QueryParameter{Name: "to_date", Value: filter.To})
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	limit = min(limit, maxListLimit)
	params = append(params, bigquery.QueryParameter{Name: "limit", Value: limit})

	var b strings.Builder
	fmt.Fprintf(&b, "SELECT %s\n\t\tFROM %s\n", decisionColumns, table.FullName())
	if len(where) > 0 {
		b.WriteString("\t\tWHERE " + strings.Join(where, " AND ") + "\n")
	}
	b.WriteString("\t\tORDER BY created_ts DESC\n\t\tLIMIT @limit")
	return b.String(), params
}
