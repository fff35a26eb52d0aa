package income

import (
	"regexp"

	"github.com/dvloznov/hcstc-decisioning/internal/patterns"
)

// Keyword families used by the detector. Matching is word-bounded on the
// upper-cased description.
var (
	payrollKeywords = []string{
		"SALARY", "WAGES", "PAYROLL", "NET PAY", "WAGE", "PAYSLIP",
		"EMPLOYER", "EMPLOYERS", "BANK GIRO CREDIT", "CHEQUERS CONTRACT",
		"CONTRACT PAY", "MONTHLY PAY", "WEEKLY PAY", "EMPLOYMENT", "PAYCHECK",
	}

	// weakPayrollMarkers are payment-rail prefixes that employers use but so
	// does everyone else.
	weakPayrollMarkers = []string{"FP-", "FASTER PAYMENT", "FASTER PAYMENTS", "BGC", "BACS", "BACS CREDIT"}

	benefitKeywords = []string{
		"UNIVERSAL CREDIT", "UC", "DWP", "HMRC", "CHILD BENEFIT", "PIP", "DLA",
		"ESA", "JSA", "PENSION CREDIT", "HOUSING BENEFIT", "TAX CREDIT",
		"WORKING TAX", "CHILD TAX", "CARERS ALLOWANCE", "ATTENDANCE ALLOWANCE",
		"BEREAVEMENT", "MATERNITY ALLOWANCE",
	}

	pensionKeywords = []string{
		"PENSION", "ANNUITY", "STATE PENSION", "RETIREMENT", "NEST", "AVIVA",
		"LEGAL AND GENERAL", "SCOTTISH WIDOWS", "STANDARD LIFE", "PRUDENTIAL",
		"ROYAL LONDON", "AEGON",
	}

	gigKeywords = []string{
		"UBER", "DELIVEROO", "JUST EAT", "STRIPE PAYOUT", "PAYPAL PAYOUT",
		"SHOPIFY PAYMENTS", "AMAZON FLEX", "UPWORK", "FIVERR",
	}

	exclusionKeywords = []string{
		"OWN ACCOUNT", "INTERNAL", "SELF TRANSFER", "FROM SAVINGS", "FROM CURRENT",
		"MOVED FROM", "MOVED TO", "BETWEEN ACCOUNTS", "INTERNAL TFR",
		"ISA TRANSFER", "SAVINGS TRANSFER",
	}

	loanKeywords = []string{
		"LENDING STREAM", "LENDINGSTREAM", "DRAFTY", "MR LENDER", "MRLENDER",
		"MONEYBOAT", "CREDITSPRING", "CASHFLOAT", "QUIDMARKET", "QUID MARKET",
		"LOANS 2 GO", "LOANS2GO", "LOAN DISBURSEMENT", "LOAN ADVANCE",
		"PAYDAY LOAN", "SHORT TERM LOAN", "POLAR CREDIT", "118 118 MONEY", "CASHASAP",
	}

	// genericWords carry no information about who paid.
	genericWords = map[string]struct{}{
		"PAYMENT": {}, "PAYMENTS": {}, "TRANSFER": {}, "TFR": {}, "FROM": {},
		"CREDIT": {}, "BANK": {}, "REF": {}, "FASTER": {}, "BACS": {}, "BGC": {},
		"RECEIVED": {}, "INWARD": {}, "THE": {}, "AND": {}, "FOR": {}, "VIA": {},
		"MOBILE": {}, "ONLINE": {},
	}

	companySuffix = regexp.MustCompile(`\b(LTD|LIMITED|PLC|LLP|INC|CORP|CORPORATION)\b`)
	wordPattern   = regexp.MustCompile(`[A-Z]{3,}`)
)

func hasPayrollKeyword(text string) bool { return patterns.ContainsAnyWord(text, payrollKeywords) }
func hasWeakMarker(text string) bool     { return patterns.ContainsAnyWord(text, weakPayrollMarkers) }
func hasBenefitKeyword(text string) bool { return patterns.ContainsAnyWord(text, benefitKeywords) }
func hasPensionKeyword(text string) bool { return patterns.ContainsAnyWord(text, pensionKeywords) }
func hasGigKeyword(text string) bool     { return patterns.ContainsAnyWord(text, gigKeywords) }
func isExcluded(text string) bool        { return patterns.ContainsAnyWord(text, exclusionKeywords) }
func isLoan(text string) bool            { return patterns.ContainsAnyWord(text, loanKeywords) }

// specificWords counts words of three or more letters that name a payer.
func specificWords(text string) int {
	n := 0
	for _, w := range wordPattern.FindAllString(text, -1) {
		if _, generic := genericWords[w]; !generic {
			n++
		}
	}
	return n
}
