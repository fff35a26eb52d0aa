package categorisation

import (
	"strings"

	"github.com/dvloznov/hcstc-decisioning/internal/domain"
	"github.com/dvloznov/hcstc-decisioning/internal/income"
	"github.com/dvloznov/hcstc-decisioning/internal/patterns"
)

var cardDebtHints = []string{"BANK", "CARD", "CREDIT CARD", "BARCLAYCARD"}

func transferScoreRule() Rule {
	return Rule{
		Name: "multi_signal_transfer",
		Apply: func(in *Input) (domain.CategoryMatch, bool) {
			score, signals := TransferScore(in)
			switch {
			case score >= transferThreshold:
				m := transferMatch(domain.SubInternal, transferConfidence(score), MethodMultiSignal)
				m.Detail = signals
				return m, true
			case score >= transferFallback:
				if patterns.IsTransferText(in.Text) && !standingOrder.MatchString(in.Text) {
					m := transferMatch(domain.SubInternal, 0.85, MethodTransferWords)
					m.Detail = signals
					return m, true
				}
			}
			return domain.CategoryMatch{}, false
		},
	}
}

func riskPatternRule() Rule {
	return Rule{
		Name: "risk_patterns",
		Apply: func(in *Input) (domain.CategoryMatch, bool) {
			table, pm, ok := patterns.Risk.Find(in.Text)
			if !ok {
				return domain.CategoryMatch{}, false
			}
			m := newMatch(domain.CategoryRisk, table.Name, pm.Confidence, pm.Method)
			m.RiskLevel = table.RiskLevel
			m.Detail = []string{pm.Term}
			if table.Name == domain.SubDebtCollection {
				m.Provider = providerName(in, pm)
			}
			return m, true
		},
	}
}

func externalRiskRule() Rule {
	return Rule{
		Name: "external_risk_codes",
		Apply: func(in *Input) (domain.CategoryMatch, bool) {
			code := in.Primary + " " + in.Detailed
			switch {
			case strings.Contains(code, "GAMBLING") || strings.Contains(code, "CASINO"):
				m := newMatch(domain.CategoryRisk, domain.SubGambling, 0.85, MethodExternal)
				m.RiskLevel = "critical"
				return m, true
			case strings.Contains(code, "INSUFFICIENT_FUNDS"):
				m := newMatch(domain.CategoryRisk, domain.SubBankCharges, 0.90, MethodExternal)
				m.RiskLevel = "high"
				return m, true
			case strings.Contains(code, "BANK_FEES_OVERDRAFT"):
				return newMatch(domain.CategoryExpense, domain.SubUnauthOverdraft, 0.90, MethodExternal), true
			}
			return domain.CategoryMatch{}, false
		},
	}
}

func tableRule(name string, cat domain.Category, group patterns.Group, when func(*Input) bool) Rule {
	return Rule{
		Name: name,
		Apply: func(in *Input) (domain.CategoryMatch, bool) {
			if when != nil && !when(in) {
				return domain.CategoryMatch{}, false
			}
			table, pm, ok := group.Find(in.Text)
			if !ok {
				return domain.CategoryMatch{}, false
			}
			m := newMatch(cat, table.Name, pm.Confidence, pm.Method)
			m.IsHousing = table.IsHousing
			m.RiskLevel = table.RiskLevel
			m.Detail = []string{pm.Term}
			if cat == domain.CategoryDebt {
				m.Provider = providerName(in, pm)
			}
			return m, true
		},
	}
}

// externalCategoryRule maps the bank's own spending categories when no
// pattern matched.
func externalCategoryRule() Rule {
	return Rule{
		Name: "external_category_map",
		Apply: func(in *Input) (domain.CategoryMatch, bool) {
			code := in.Primary + " " + in.Detailed
			if strings.TrimSpace(code) == "" {
				return domain.CategoryMatch{}, false
			}
			var m domain.CategoryMatch
			switch {
			case strings.Contains(code, "RENT_AND_UTILITIES_RENT"),
				strings.Contains(code, "RENT") && !strings.Contains(code, "RENT_AND_UTILITIES"):
				m = newMatch(domain.CategoryEssential, domain.SubRent, 0.85, MethodExternal)
				m.IsHousing = true
			case strings.Contains(code, "MORTGAGE"):
				m = newMatch(domain.CategoryEssential, "mortgage", 0.85, MethodExternal)
				m.IsHousing = true
			case strings.Contains(code, "UTILIT"):
				m = newMatch(domain.CategoryEssential, domain.SubUtilities, 0.85, MethodExternal)
			case strings.Contains(code, "GROCERIES") || strings.Contains(code, "GROCERY"):
				m = newMatch(domain.CategoryEssential, domain.SubGroceries, 0.85, MethodExternal)
			case strings.Contains(code, "LOAN_PAYMENTS_CREDIT_CARD"):
				m = newMatch(domain.CategoryDebt, domain.SubCreditCards, 0.80, MethodExternal)
				m.Provider = income.Normalize(in.Txn.Description)
			case strings.Contains(code, "LOAN"):
				m = newMatch(domain.CategoryDebt, domain.SubOtherLoans, 0.80, MethodExternal)
				m.RiskLevel = "medium"
				m.Provider = income.Normalize(in.Txn.Description)
			case strings.Contains(code, "FOOD_AND_DRINK") || strings.Contains(code, "RESTAURANT"):
				m = newMatch(domain.CategoryExpense, domain.SubFoodDining, 0.85, MethodExternal)
			case strings.Contains(code, "TRANSPORTATION"):
				m = newMatch(domain.CategoryEssential, domain.SubTransport, 0.80, MethodExternal)
			case strings.Contains(code, "GENERAL_MERCHANDISE"),
				strings.Contains(code, "ENTERTAINMENT"),
				strings.Contains(code, "SUBSCRIPTIONS"),
				strings.Contains(code, "PERSONAL_CARE"):
				m = newMatch(domain.CategoryExpense, domain.SubDiscretionary, 0.85, MethodExternal)
			default:
				return domain.CategoryMatch{}, false
			}
			return m, true
		},
	}
}

func debitDefaultRule() Rule {
	return Rule{
		Name: "debit_default",
		Apply: func(in *Input) (domain.CategoryMatch, bool) {
			return newMatch(domain.CategoryExpense, domain.SubOther, 0.3, MethodDefault), true
		},
	}
}

func providerName(in *Input, pm patterns.Match) string {
	if lender, ok := CanonicalLender(in.Text); ok {
		return lender
	}
	if pm.Method == patterns.MethodKeyword || pm.Method == patterns.MethodFuzzy {
		return pm.Term
	}
	return income.Normalize(in.Txn.Description)
}

func mentionsCard(in *Input) bool {
	return patterns.ContainsAnyWord(in.Text, cardDebtHints)
}

// DebitRules returns the cascade applied to debits and zero amounts. Risk
// tables run before essential and debt tables.
func DebitRules() RuleSet {
	return RuleSet{
		strictCategoryRule(),
		transferScoreRule(),
		riskPatternRule(),
		externalRiskRule(),
		tableRule("card_debt_patterns", domain.CategoryDebt, patterns.Debt, mentionsCard),
		tableRule("essential_patterns", domain.CategoryEssential, patterns.Essential, nil),
		tableRule("debt_patterns", domain.CategoryDebt, patterns.Debt, nil),
		externalCategoryRule(),
		tableRule("positive_patterns", domain.CategoryPositive, patterns.Positive, nil),
		debitDefaultRule(),
	}
}
