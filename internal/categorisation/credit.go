package categorisation

import (
	"strings"

	"github.com/dvloznov/hcstc-decisioning/internal/domain"
	"github.com/dvloznov/hcstc-decisioning/internal/income"
	"github.com/dvloznov/hcstc-decisioning/internal/patterns"
)

// Method names recorded on matches produced outside the pattern tables.
const (
	MethodStrictCategory = "strict_external_category"
	MethodKnownService   = "known_service"
	MethodIncomeDetector = "income_detector"
	MethodMultiSignal    = "multi_signal"
	MethodTransferWords  = "transfer_keywords"
	MethodExternal       = "external_category"
	MethodDefault        = "default"
)

const incomeVerdictFloor = 0.85

// strictCategoryRule fixes the result for a handful of external codes no
// matter what the description says.
func strictCategoryRule() Rule {
	return Rule{
		Name: "strict_external_category",
		Apply: func(in *Input) (domain.CategoryMatch, bool) {
			switch {
			case strings.Contains(in.Detailed, "TRANSFER_IN_ACCOUNT_TRANSFER"):
				return transferMatch(domain.SubInternal, 0.98, MethodStrictCategory), true
			case strings.Contains(in.Detailed, "TRANSFER_OUT_ACCOUNT_TRANSFER"):
				return transferMatch(domain.SubExternal, 0.98, MethodStrictCategory), true
			case strings.Contains(in.Detailed, "TRANSFER_IN_CASH_ADVANCES_AND_LOANS") && in.Txn.IsCredit():
				return loanInflow(0.98, MethodStrictCategory), true
			}
			return domain.CategoryMatch{}, false
		},
	}
}

// knownServiceRule stops credits from lenders, BNPL brands and payment
// processors from being counted as earnings.
func knownServiceRule() Rule {
	return Rule{
		Name: "known_expense_service",
		Apply: func(in *Input) (domain.CategoryMatch, bool) {
			name, creditBrand, ok := knownService(in.Text)
			if !ok || strings.Contains(in.Text, "PAYOUT") {
				return domain.CategoryMatch{}, false
			}
			var m domain.CategoryMatch
			switch {
			case strings.Contains(in.Primary, "TRANSFER") || strings.Contains(in.Detailed, "TRANSFER"):
				m = transferMatch(domain.SubExternal, 0.90, MethodKnownService)
			case strings.Contains(in.Primary, "LOAN_PAYMENTS") || strings.Contains(in.Detailed, "LOAN_PAYMENTS"):
				m = loanInflow(0.95, MethodKnownService)
			case creditBrand:
				m = loanInflow(0.90, MethodKnownService)
			default:
				m = transferMatch(domain.SubExternal, 0.85, MethodKnownService)
			}
			if lender, ok := CanonicalLender(in.Text); ok {
				m.Provider = lender
			} else {
				m.Provider = name
			}
			return m, true
		},
	}
}

func incomeVerdictRule(detector *income.Detector) Rule {
	return Rule{
		Name: "income_detector",
		Apply: func(in *Input) (domain.CategoryMatch, bool) {
			v := detector.IsLikelyIncome(in.Txn, in.Index, in.Position)
			if v.Reason == income.ReasonInternalTransfer {
				m := transferMatch(domain.SubInternal, 0.90, MethodIncomeDetector)
				m.Detail = []string{v.Reason}
				return m, true
			}
			if !v.IsIncome || v.Confidence < incomeVerdictFloor {
				return domain.CategoryMatch{}, false
			}
			m := newMatch(domain.CategoryIncome, v.Subcategory, v.Confidence, MethodIncomeDetector)
			m.Detail = []string{v.Reason}
			switch v.Subcategory {
			case domain.SubGigEconomy:
				m.Weight = 0.7
			case domain.SubSalary, domain.SubBenefits, domain.SubPension:
				m.IsStable = true
			}
			return m, true
		},
	}
}

func incomePatternRule() Rule {
	return Rule{
		Name: "income_patterns",
		Apply: func(in *Input) (domain.CategoryMatch, bool) {
			table, pm, ok := patterns.Income.Find(in.Text)
			if !ok {
				return domain.CategoryMatch{}, false
			}
			m := newMatch(domain.CategoryIncome, table.Name, pm.Confidence, pm.Method)
			m.Weight = table.Weight
			m.IsStable = table.IsStable
			m.Detail = []string{pm.Term}
			return m, true
		},
	}
}

// creditDebtRule catches credits from lenders and card issuers the income
// tables did not name: money borrowed is not money earned.
func creditDebtRule() Rule {
	return Rule{
		Name: "credit_debt_patterns",
		Apply: func(in *Input) (domain.CategoryMatch, bool) {
			table, pm, ok := patterns.Debt.Find(in.Text)
			if !ok {
				return domain.CategoryMatch{}, false
			}
			m := loanInflow(pm.Confidence, pm.Method)
			m.Detail = []string{table.Name, pm.Term}
			if lender, ok := CanonicalLender(in.Text); ok {
				m.Provider = lender
			}
			return m, true
		},
	}
}

func creditDefaultRule() Rule {
	return Rule{
		Name: "credit_default",
		Apply: func(in *Input) (domain.CategoryMatch, bool) {
			m := newMatch(domain.CategoryIncome, domain.SubOther, 0.5, MethodDefault)
			m.Weight = 0.5
			return m, true
		},
	}
}

// CreditRules returns the cascade applied to credits.
func CreditRules(detector *income.Detector) RuleSet {
	return RuleSet{
		strictCategoryRule(),
		knownServiceRule(),
		incomeVerdictRule(detector),
		incomePatternRule(),
		creditDebtRule(),
		creditDefaultRule(),
	}
}
