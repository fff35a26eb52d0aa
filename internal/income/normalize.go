package income

import (
	"regexp"
	"strings"
)

var (
	railPrefix  = regexp.MustCompile(`^(FP-|FASTER PAYMENTS?|BGC|BACS)\s*`)
	dateDMY     = regexp.MustCompile(`\b\d{1,2}[/-]\d{1,2}[/-]\d{2,4}\b`)
	dateYMD     = regexp.MustCompile(`\b\d{4}[/-]\d{1,2}[/-]\d{1,2}\b`)
	refNumber   = regexp.MustCompile(`\bREF\s*\d+\b`)
	longNumber  = regexp.MustCompile(`\b\d{8,}\b`)
	longID      = regexp.MustCompile(`\b[A-Z0-9]{12,}\b`)
	limited     = regexp.MustCompile(`\bLIMITED\b`)
	corporation = regexp.MustCompile(`\bCORPORATION\b`)
	trailingPay = regexp.MustCompile(`(\s+(SALARY|WAGES?|PAYMENT|PAYROLL|PAY))+$`)
)

// Normalize reduces a description to the stable part that identifies a
// payer, so that "ACME LIMITED SALARY REF 1234" and "ACME LTD 28/02/2025"
// group together.
func Normalize(description string) string {
	desc := strings.ToUpper(strings.TrimSpace(description))
	if desc == "" {
		return ""
	}
	desc = railPrefix.ReplaceAllString(desc, "")
	desc = dateDMY.ReplaceAllString(desc, "")
	desc = dateYMD.ReplaceAllString(desc, "")
	desc = refNumber.ReplaceAllString(desc, "")
	desc = longNumber.ReplaceAllString(desc, "")
	desc = longID.ReplaceAllString(desc, "")
	desc = limited.ReplaceAllString(desc, "LTD")
	desc = corporation.ReplaceAllString(desc, "CORP")
	desc = strings.Join(strings.Fields(desc), " ")
	desc = trailingPay.ReplaceAllString(desc, "")
	return desc
}
