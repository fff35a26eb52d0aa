package narrative

import (
	"fmt"
	"strings"

	"github.com/dvloznov/hcstc-decisioning/internal/metrics"
	"github.com/dvloznov/hcstc-decisioning/internal/scoring"
)

func buildPrompt(result scoring.Result, m metrics.Metrics) string {
	var b strings.Builder

	b.WriteString("You are an underwriter at a UK high-cost short-term credit lender.\n")
	b.WriteString("Summarise the automated decision below for a human reviewer.\n\n")

	fmt.Fprintf(&b, "Decision: %s (score %.1f, risk %s)\n", result.Decision, result.Score, result.RiskLevel)
	if result.Offer != nil {
		fmt.Fprintf(&b, "Offer: £%.2f over %d months, £%.2f per month\n",
			result.Offer.Amount, result.Offer.Term, result.Offer.MonthlyRepayment)
	}
	fmt.Fprintf(&b, "Monthly income: £%.2f (stable £%.2f, gig £%.2f)\n",
		m.Income.MonthlyIncome, m.Income.MonthlyStable, m.Income.MonthlyGig)
	fmt.Fprintf(&b, "Monthly essential spend: £%.2f, debt repayments: £%.2f, disposable: £%.2f\n",
		m.Affordability.MonthlyEssential, m.Affordability.MonthlyDebt, m.Affordability.Disposable)
	fmt.Fprintf(&b, "Days overdrawn: %d, gambling %.1f%% of income, failed payments: %d\n",
		m.Balance.OverdraftDays, m.Risk.GamblingPercent, m.Risk.FailedPayments)

	writeList(&b, "Decline reasons", result.DeclineReasons)
	writeList(&b, "Referral reasons", result.ReferralReasons)
	writeList(&b, "Risk flags", result.RiskFlags)

	b.WriteString("\nRules:\n")
	b.WriteString("- Do not change or second-guess the decision.\n")
	b.WriteString("- Keep the summary under 80 words, in plain English.\n")
	b.WriteString("- List specific concerns a reviewer should check, or an empty list.\n\n")
	b.WriteString("Return ONLY a raw JSON object of the form ")
	b.WriteString("{\"summary\": string, \"concerns\": [string]}.\n")
	b.WriteString("Do NOT wrap the response in code fences.\n")

	return b.String()
}

func writeList(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	b.WriteString("\n" + title + ":\n")
	for _, item := range items {
		b.WriteString("  - " + item + "\n")
	}
}
