package scoring

import (
	"fmt"

	"github.com/dvloznov/hcstc-decisioning/internal/metrics"
)

// RuleHit is a triggered hard rule or mandatory referral.
type RuleHit struct {
	Rule    string
	Action  Decision
	Message string
}

func hit(name string, r Rule, format string, args ...any) RuleHit {
	return RuleHit{Rule: name, Action: r.Action, Message: name + ": " + fmt.Sprintf(format, args...)}
}

// CheckRules evaluates every hard rule against m and returns the ones that
// fired, in a fixed order.
func (c Config) CheckRules(m metrics.Metrics) []RuleHit {
	var hits []RuleHit
	r := c.Rules
	income := m.Income.MonthlyIncome

	if income < r.MinMonthlyIncome.Threshold {
		hits = append(hits, hit("min_monthly_income", r.MinMonthlyIncome,
			"monthly income £%.2f below minimum £%.0f", income, r.MinMonthlyIncome.Threshold))
	}
	if !m.Income.HasVerifiableIncome && income < r.NoVerifiableIncome.Threshold {
		hits = append(hits, hit("no_verifiable_income", r.NoVerifiableIncome,
			"no verifiable income source and monthly income £%.2f below £%.0f", income, r.NoVerifiableIncome.Threshold))
	}
	if n := len(m.Debt.HCSTCLenders90d); float64(n) > r.MaxActiveHCSTCLenders.Threshold {
		hits = append(hits, hit("max_active_hcstc_lenders", r.MaxActiveHCSTCLenders,
			"%d HCSTC lenders active in the last %d days (maximum %.0f)", n, r.MaxActiveHCSTCLenders.LookbackDays, r.MaxActiveHCSTCLenders.Threshold))
	}
	if pct := m.Risk.GamblingPercent; pct > r.MaxGamblingPercentage.Threshold {
		hits = append(hits, hit("max_gambling_percentage", r.MaxGamblingPercentage,
			"gambling %.1f%% of income (maximum %.0f%%)", pct, r.MaxGamblingPercentage.Threshold))
	}
	if post := m.Affordability.PostLoanDisposable; post < r.MinPostLoanDisposable.Threshold {
		hits = append(hits, hit("min_post_loan_disposable", r.MinPostLoanDisposable,
			"post-loan disposable £%.2f below minimum £%.0f", post, r.MinPostLoanDisposable.Threshold))
	}
	if n := m.Risk.FailedPayments45d; float64(n) > r.MaxFailedPayments.Threshold {
		hits = append(hits, hit("max_failed_payments", r.MaxFailedPayments,
			"%d failed payments in the last %d days (maximum %.0f)", n, r.MaxFailedPayments.LookbackDays, r.MaxFailedPayments.Threshold))
	}
	if n := len(m.Risk.DebtCollectors); float64(n) > r.MaxDCACount.Threshold {
		hits = append(hits, hit("max_dca_count", r.MaxDCACount,
			"%d debt collection agencies (maximum %.0f)", n, r.MaxDCACount.Threshold))
	}
	if dti := m.Affordability.DebtToIncomeWithLoan; income > 0 && dti > r.MaxDTIWithNewLoan.Threshold {
		hits = append(hits, hit("max_dti_with_new_loan", r.MaxDTIWithNewLoan,
			"projected debt-to-income %.1f%% with the new loan (maximum %.0f%%)", dti, r.MaxDTIWithNewLoan.Threshold))
	}
	return hits
}

// MandatoryReferrals returns reasons that always require manual review.
func (c Config) MandatoryReferrals(m metrics.Metrics) []string {
	var reasons []string
	ref := c.Referrals
	if n := m.Risk.BankCharges90d; n > ref.BankChargesAbove {
		reasons = append(reasons, fmt.Sprintf("bank_charges: %d bank charges in the last %d days", n, ref.BankChargesLookbackDays))
	}
	if n := m.Debt.NewCreditProviders90d; n >= ref.NewCreditProvidersAt {
		reasons = append(reasons, fmt.Sprintf("new_credit_burst: %d new credit providers in the last %d days", n, ref.NewCreditLookbackDays))
	}
	return reasons
}

// RiskFlags lists notable risk signals for reviewers. Flags never change the
// decision.
func RiskFlags(m metrics.Metrics) []string {
	var flags []string
	if m.Risk.GamblingPercent > 0 {
		flags = append(flags, fmt.Sprintf("Gambling: %.1f%% of income", m.Risk.GamblingPercent))
	}
	if n := len(m.Debt.HCSTCLenders90d); n > 0 {
		flags = append(flags, fmt.Sprintf("Active HCSTC (90d): %d lenders", n))
	}
	if n := m.Risk.FailedPayments45d; n > 0 {
		flags = append(flags, fmt.Sprintf("Failed payments (45d): %d", n))
	}
	if n := len(m.Risk.DebtCollectors); n > 0 {
		flags = append(flags, fmt.Sprintf("Debt collection: %d agencies", n))
	}
	if n := m.Balance.OverdraftDays; n > 10 {
		flags = append(flags, fmt.Sprintf("Overdraft: %d days", n))
	}
	if dti := m.Affordability.DebtToIncome; dti > 40 {
		flags = append(flags, fmt.Sprintf("High DTI: %.1f%%", dti))
	}
	return flags
}
