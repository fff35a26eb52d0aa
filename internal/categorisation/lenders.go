package categorisation

import (
	"sort"
	"strings"

	"github.com/dvloznov/hcstc-decisioning/internal/patterns"
)

var hcstcLenderNames = map[string]string{
	"LENDING STREAM":              "LENDING_STREAM",
	"LENDINGSTREAM":               "LENDING_STREAM",
	"DRAFTY":                      "DRAFTY",
	"MR LENDER":                   "MR_LENDER",
	"MRLENDER":                    "MR_LENDER",
	"MONEYBOAT":                   "MONEYBOAT",
	"CREDITSPRING":                "CREDITSPRING",
	"CASHFLOAT":                   "CASHFLOAT",
	"QUIDMARKET":                  "QUIDMARKET",
	"QUID MARKET":                 "QUIDMARKET",
	"LOANS 2 GO":                  "LOANS_2_GO",
	"LOANS2GO":                    "LOANS_2_GO",
	"CASHASAP":                    "CASHASAP",
	"POLAR CREDIT":                "POLAR_CREDIT",
	"118 118 MONEY":               "118_118_MONEY",
	"118118 MONEY":                "118_118_MONEY",
	"118118MONEY":                 "118_118_MONEY",
	"THE MONEY PLATFORM":          "THE_MONEY_PLATFORM",
	"MONEY PLATFORM":              "THE_MONEY_PLATFORM",
	"FAST LOAN UK":                "FAST_LOAN_UK",
	"FASTLOAN":                    "FAST_LOAN_UK",
	"CONDUIT":                     "CONDUIT",
	"SALAD MONEY":                 "SALAD_MONEY",
	"FAIR FINANCE":                "FAIR_FINANCE",
	"SAVVY LOAN PRODUCTS LIMITED": "SAVVY_LOAN_PRODUCTS_LIMITED",
	"SAVVY LOAN PRODUCTS":         "SAVVY_LOAN_PRODUCTS_LIMITED",
	"LIKELY LOANS":                "LIKELY_LOANS",
}

// lenderVariants holds the map keys longest first so "118118 MONEY" wins
// over shorter overlapping names.
var lenderVariants = func() []string {
	keys := make([]string, 0, len(hcstcLenderNames))
	for k := range hcstcLenderNames {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return keys
}()

// CanonicalLender maps a transaction text to a single identifier per HCSTC
// lender, so that "LENDINGSTREAM" and "LENDING STREAM LTD" count once.
func CanonicalLender(text string) (string, bool) {
	upper := strings.ToUpper(text)
	for _, variant := range lenderVariants {
		if patterns.ContainsWord(upper, variant) {
			return hcstcLenderNames[variant], true
		}
	}
	return "", false
}

// Credit brands: a credit from one of these is a loan advance or a refund of
// a repayment, never earnings.
var creditBrands = []string{
	"CLEARPAY", "KLARNA", "ZILCH", "LAYBUY", "MONZO FLEX",
	"LENDING STREAM", "LENDINGSTREAM", "MONEYBOAT", "DRAFTY", "CASHFLOAT",
	"QUIDMARKET", "MR LENDER", "MRLENDER", "SAVVY LOAN PRODUCTS", "LIKELY LOANS",
	"LENDABLE", "ZOPA", "TOTALSA", "AQUA", "HSBC LOANS", "VISA DIRECT PAYMENT",
	"BAMBOO", "FERNOVO", "OAKBROOK", "CREDIT UNION",
}

// Payment processors move money on someone else's behalf.
var paymentProcessors = []string{
	"PAYPAL", "STRIPE", "SQUARE", "WORLDPAY", "SAGEPAY", "BARCLAYS CASHBACK",
}

func knownService(text string) (name string, isCreditBrand bool, ok bool) {
	for _, s := range creditBrands {
		if patterns.ContainsWord(text, s) {
			return s, true, true
		}
	}
	for _, s := range paymentProcessors {
		if patterns.ContainsWord(text, s) {
			return s, false, true
		}
	}
	return "", false, false
}
