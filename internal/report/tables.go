package report

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dvloznov/hcstc-decisioning/internal/batch"
	"github.com/dvloznov/hcstc-decisioning/internal/metrics"
	"github.com/dvloznov/hcstc-decisioning/internal/pipeline"
	"github.com/dvloznov/hcstc-decisioning/internal/scoring"
	"github.com/olekukonko/tablewriter"
)

func newTable(w io.Writer, title string, header ...string) *tablewriter.Table {
	fmt.Fprintf(w, "\n%s\n", title)
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	return table
}

func money(v float64) string { return fmt.Sprintf("£%.2f", v) }
func pct(v float64) string { return fmt.Sprintf("%.1f%%", v) }
func num(v float64) string { return strconv.FormatFloat(v, 'f', 1, 64) }

// WriteDecision prints the decision, score breakdown, metric groups and
// category summary for one application.
func WriteDecision(w io.Writer, state *pipeline.DecisionState) {
	writeOutcome(w, state.Application.ID, state.Result)
	writeBreakdown(w, state.Result.Breakdown)
	writeMetrics(w, state.Metrics)
	writeCategories(w, state)
}

func writeOutcome(w io.Writer, appID string, res scoring.Result) {
	table := newTable(w, "DECISION", "Field", "Value")
	table.Append([]string{"Application", appID})
	table.Append([]string{"Decision", string(res.Decision)})
	table.Append([]string{"Score", num(res.Score)})
	table.Append([]string{"Risk level", string(res.RiskLevel)})
	if o := res.Offer; o != nil {
		table.Append([]string{"Approved amount", money(o.Amount)})
		table.Append([]string{"Term", fmt.Sprintf("%d months", o.Term)})
		table.Append([]string{"Monthly repayment", money(o.MonthlyRepayment)})
		table.Append([]string{"Total repayable", money(o.TotalRepayable)})
		table.Append([]string{"APR", pct(o.APR)})
	}
	for _, r := range res.DeclineReasons {
		table.Append([]string{"Decline reason", r})
	}
	for _, r := range res.ReferralReasons {
		table.Append([]string{"Referral reason", r})
	}
	if len(res.RiskFlags) > 0 {
		table.Append([]string{"Risk flags", strings.Join(res.RiskFlags, ", ")})
	}
	table.Render()
}

func writeBreakdown(w io.Writer, b *scoring.Breakdown) {
	if b == nil {
		return
	}
	table := newTable(w, "SCORE BREAKDOWN", "Component", "Item", "Points", "Max")
	for _, c := range b.Components() {
		table.Append([]string{c.Name, "", num(c.Score), num(c.Max)})
		for _, item := range c.Items {
			table.Append([]string{"", item.Name, num(item.Points), ""})
		}
	}
	for _, adj := range b.Adjustments {
		table.Append([]string{"Adjustment", adj.Name, num(adj.Points), ""})
	}
	table.SetFooter([]string{"Total", "", num(b.Total), ""})
	table.Render()
}

func writeMetrics(w io.Writer, m metrics.Metrics) {
	table := newTable(w, "METRICS", "Group", "Metric", "Value")
	rows := [][]string{
		{"Income", "Monthly income", money(m.Income.MonthlyIncome)},
		{"Income", "Stable income", money(m.Income.MonthlyStable)},
		{"Income", "Gig income", money(m.Income.MonthlyGig)},
		{"Income", "Verifiable", strconv.FormatBool(m.Income.HasVerifiableIncome)},
		{"Income", "Stability score", num(m.Income.StabilityScore)},
		{"Income", "Regularity score", num(m.Income.RegularityScore)},
		{"Expenses", "Housing", money(m.Expenses.MonthlyHousing)},
		{"Expenses", "Essential", money(m.Expenses.MonthlyEssential)},
		{"Expenses", "Discretionary", money(m.Expenses.MonthlyDiscretionary)},
		{"Debt", "Monthly debt", money(m.Debt.MonthlyDebt)},
		{"Debt", "HCSTC lenders (90d)", strconv.Itoa(len(m.Debt.HCSTCLenders90d))},
		{"Debt", "New credit providers (90d)", strconv.Itoa(m.Debt.NewCreditProviders90d)},
		{"Affordability", "Disposable", money(m.Affordability.Disposable)},
		{"Affordability", "Debt to income", pct(m.Affordability.DebtToIncome)},
		{"Affordability", "Proposed repayment", money(m.Affordability.ProposedRepayment)},
		{"Affordability", "Post-loan disposable", money(m.Affordability.PostLoanDisposable)},
		{"Affordability", "Max affordable", money(m.Affordability.MaxAffordableAmount)},
		{"Balance", "Average", money(m.Balance.Average)},
		{"Balance", "Minimum", money(m.Balance.Minimum)},
		{"Balance", "Overdraft days", strconv.Itoa(m.Balance.OverdraftDays)},
		{"Risk", "Gambling share", pct(m.Risk.GamblingPercent)},
		{"Risk", "Failed payments (45d)", strconv.Itoa(m.Risk.FailedPayments45d)},
		{"Risk", "Bank charges (90d)", strconv.Itoa(m.Risk.BankCharges90d)},
		{"Risk", "Debt collection payments", strconv.Itoa(m.Risk.DebtCollectionPayments)},
	}
	table.AppendBulk(rows)
	table.SetAutoMergeCells(true)
	table.Render()
}

func writeCategories(w io.Writer, state *pipeline.DecisionState) {
	buckets := state.Summary.Buckets
	if len(buckets) == 0 {
		return
	}
	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	table := newTable(w, "CATEGORIES", "Category", "Subcategory", "Count", "Total", "Weighted")
	for _, k := range keys {
		b := buckets[k]
		table.Append([]string{string(b.Category), b.Subcategory, strconv.Itoa(b.Count), money(b.Total.InexactFloat64()), money(b.WeightedTotal.InexactFloat64())})
	}
	table.Render()
}

// WriteBatch prints batch statistics followed by one row per input.
func WriteBatch(w io.Writer, rep batch.Report) {
	s := rep.Stats
	summary := newTable(w, "BATCH SUMMARY", "Field", "Value")
	summary.Append([]string{"Applications", strconv.Itoa(s.Total)})
	summary.Append([]string{"Succeeded", strconv.Itoa(s.Succeeded)})
	summary.Append([]string{"Failed", strconv.Itoa(s.Failed)})
	summary.Append([]string{"Success rate", pct(s.SuccessRate)})
	if s.Succeeded > 0 {
		summary.Append([]string{"Average score", num(s.AverageScore)})
		summary.Append([]string{"Score range", num(s.MinScore) + " - " + num(s.MaxScore)})
	}
	for _, d := range []scoring.Decision{scoring.Approve, scoring.Refer, scoring.Decline} {
		if n := rep.DecisionCounts[d]; n > 0 {
			summary.Append([]string{string(d), strconv.Itoa(n)})
		}
	}
	for _, tag := range sortedTags(rep.ErrorCounts) {
		summary.Append([]string{string(tag), strconv.Itoa(rep.ErrorCounts[tag])})
	}
	summary.Append([]string{"Elapsed", rep.Elapsed.Round(time.Millisecond).String()})
	summary.Render()

	results := newTable(w, "APPLICATIONS", "#", "Name", "Application", "Decision", "Score", "Detail")
	for _, o := range rep.Outcomes {
		row := []string{strconv.Itoa(o.Index + 1), o.Name}
		switch {
		case o.Failure != nil:
			row = append(row, "", "ERROR", "", string(o.Failure.Tag)+": "+o.Failure.Message)
		case o.State != nil:
			res := o.State.Result
			detail := ""
			if res.Offer != nil {
				detail = fmt.Sprintf("%s over %d months", money(res.Offer.Amount), res.Offer.Term)
			} else if len(res.DeclineReasons) > 0 {
				detail = res.DeclineReasons[0]
			} else if len(res.ReferralReasons) > 0 {
				detail = res.ReferralReasons[0]
			}
			row = append(row, o.State.Application.ID, string(res.Decision), num(res.Score), detail)
		default:
			row = append(row, "", "", "", "")
		}
		results.Append(row)
	}
	results.Render()
}

func sortedTags(counts map[batch.ErrorTag]int) []batch.ErrorTag {
	tags := make([]batch.ErrorTag, 0, len(counts))
	for t := range counts {
		tags = append(tags, t)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })
	return tags
}
