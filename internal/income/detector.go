package income

import (
	"strings"

	"github.com/dvloznov/hcstc-decisioning/internal/domain"
)

// Config holds the recurring-pattern thresholds.
type Config struct {
	MinAmount      float64 // credits below this are never grouped
	MinOccurrences int
	TightVariance  float64 // monthly, day-consistent sources
	LooseVariance  float64
	DayTolerance   float64 // max day-of-month deviation for "consistent"
}

// DefaultConfig returns the production thresholds.
func DefaultConfig() Config {
	return Config{
		MinAmount:      50,
		MinOccurrences: 3,
		TightVariance:  0.05,
		LooseVariance:  0.30,
		DayTolerance:   3,
	}
}

// Reasons reported on a Verdict.
const (
	ReasonNotCredit         = "not_credit"
	ReasonInternalTransfer  = "internal_transfer"
	ReasonLoanDisbursement  = "loan_disbursement"
	ReasonExternalWages     = "external_income_wages"
	ReasonExternalIncome    = "external_income"
	ReasonPromotedKeyword   = "transfer_promoted_keyword"
	ReasonPromotedCompany   = "transfer_promoted_company"
	ReasonPromotedRail      = "transfer_promoted_payment_rail"
	ReasonPromotedGig       = "transfer_promoted_gig"
	ReasonPromotedRecurring = "transfer_promoted_recurring"
	ReasonPromotedNamed     = "transfer_promoted_named_payment"
	ReasonRecurring         = "recurring_pattern"
	ReasonKeywordPayroll    = "keyword_payroll"
	ReasonKeywordBenefits   = "keyword_benefits"
	ReasonKeywordPension    = "keyword_pension"
	ReasonKeywordGig        = "keyword_gig"
	ReasonNoSignal          = "no_income_signal"
)

const (
	promotionMinAmount   = 200.0
	namedPaymentMinimum  = 500.0
	recurringMinimumConf = 0.75
)

// Verdict is the detector's decision about one credit.
type Verdict struct {
	IsIncome    bool
	Confidence  float64
	Reason      string
	Subcategory string // salary, benefits, pension, gig_economy or other
}

// Detector decides whether credits are genuine income. It holds no per-batch
// state; recurring patterns travel in a PatternIndex.
type Detector struct {
	cfg Config
}

// NewDetector creates a Detector. Zero fields in cfg take their defaults.
func NewDetector(cfg Config) *Detector {
	def := DefaultConfig()
	if cfg.MinAmount <= 0 {
		cfg.MinAmount = def.MinAmount
	}
	if cfg.MinOccurrences <= 0 {
		cfg.MinOccurrences = def.MinOccurrences
	}
	if cfg.TightVariance <= 0 {
		cfg.TightVariance = def.TightVariance
	}
	if cfg.LooseVariance <= 0 {
		cfg.LooseVariance = def.LooseVariance
	}
	if cfg.DayTolerance <= 0 {
		cfg.DayTolerance = def.DayTolerance
	}
	return &Detector{cfg: cfg}
}

// Config returns the detector's effective configuration.
func (d *Detector) Config() Config {
	return d.cfg
}

// IsLikelyIncome classifies txn. index and pos locate the transaction inside
// an analysed batch; pass a nil index when there is none.
func (d *Detector) IsLikelyIncome(txn domain.Transaction, index *PatternIndex, pos int) Verdict {
	if !txn.IsCredit() {
		return Verdict{Reason: ReasonNotCredit}
	}
	text := txn.Text()
	primary := strings.ToUpper(txn.CategoryPrimary)
	detailed := strings.ToUpper(txn.CategoryDetailed)
	amount := txn.Magnitude()

	if v, excluded := exclusion(text, primary, detailed); excluded {
		return v
	}

	if strings.Contains(detailed, "INCOME_WAGES") ||
		strings.Contains(detailed, "INCOME") && (strings.Contains(detailed, "SALARY") || strings.Contains(detailed, "PAYROLL")) {
		return Verdict{IsIncome: true, Confidence: 0.95, Reason: ReasonExternalWages, Subcategory: domain.SubSalary}
	}
	if strings.Contains(detailed, "INCOME") || strings.Contains(primary, "INCOME") {
		return Verdict{IsIncome: true, Confidence: 0.85, Reason: ReasonExternalIncome, Subcategory: externalIncomeSubcategory(detailed)}
	}

	if isTransferIn(primary, detailed) {
		if v, ok := promote(text, amount, index, pos); ok {
			return v
		}
	}

	if src, ok := index.Lookup(pos); ok && src.Confidence >= recurringMinimumConf {
		return Verdict{IsIncome: true, Confidence: src.Confidence, Reason: ReasonRecurring, Subcategory: sourceSubcategory(src.Type)}
	}

	switch {
	case hasPayrollKeyword(text):
		return Verdict{IsIncome: true, Confidence: 0.90, Reason: ReasonKeywordPayroll, Subcategory: domain.SubSalary}
	case hasBenefitKeyword(text):
		return Verdict{IsIncome: true, Confidence: 0.90, Reason: ReasonKeywordBenefits, Subcategory: domain.SubBenefits}
	case hasPensionKeyword(text):
		return Verdict{IsIncome: true, Confidence: 0.85, Reason: ReasonKeywordPension, Subcategory: domain.SubPension}
	case hasGigKeyword(text):
		return Verdict{IsIncome: true, Confidence: 0.80, Reason: ReasonKeywordGig, Subcategory: domain.SubGigEconomy}
	}
	return Verdict{Reason: ReasonNoSignal}
}

func exclusion(text, primary, detailed string) (Verdict, bool) {
	switch {
	case strings.Contains(detailed, "TRANSFER_IN_ACCOUNT_TRANSFER"):
		return Verdict{Reason: ReasonInternalTransfer}, true
	case strings.Contains(detailed, "CASH_ADVANCES"),
		strings.Contains(detailed, "LOANS"),
		strings.Contains(primary, "LOAN_PAYMENTS"),
		strings.Contains(detailed, "LOAN_PAYMENTS"):
		return Verdict{Reason: ReasonLoanDisbursement}, true
	case isExcluded(text):
		return Verdict{Reason: ReasonInternalTransfer}, true
	case isLoan(text):
		return Verdict{Reason: ReasonLoanDisbursement}, true
	}
	return Verdict{}, false
}

func isTransferIn(primary, detailed string) bool {
	return strings.HasPrefix(primary, "TRANSFER_IN") || strings.HasPrefix(detailed, "TRANSFER_IN")
}

// promote rescues credits that the bank labelled as a generic inbound
// transfer but that carry income signals.
func promote(text string, amount float64, index *PatternIndex, pos int) (Verdict, bool) {
	switch {
	case hasPayrollKeyword(text):
		return Verdict{IsIncome: true, Confidence: 0.96, Reason: ReasonPromotedKeyword, Subcategory: domain.SubSalary}, true
	case hasBenefitKeyword(text):
		return Verdict{IsIncome: true, Confidence: 0.96, Reason: ReasonPromotedKeyword, Subcategory: domain.SubBenefits}, true
	case hasPensionKeyword(text):
		return Verdict{IsIncome: true, Confidence: 0.96, Reason: ReasonPromotedKeyword, Subcategory: domain.SubPension}, true
	case amount >= promotionMinAmount && companySuffix.MatchString(text):
		return Verdict{IsIncome: true, Confidence: 0.88, Reason: ReasonPromotedCompany, Subcategory: domain.SubSalary}, true
	case amount >= promotionMinAmount && hasWeakMarker(text):
		return Verdict{IsIncome: true, Confidence: 0.88, Reason: ReasonPromotedRail, Subcategory: domain.SubSalary}, true
	case hasGigKeyword(text):
		return Verdict{IsIncome: true, Confidence: 0.85, Reason: ReasonPromotedGig, Subcategory: domain.SubGigEconomy}, true
	}
	if src, ok := index.Lookup(pos); ok && src.Confidence >= recurringMinimumConf {
		return Verdict{IsIncome: true, Confidence: src.Confidence, Reason: ReasonPromotedRecurring, Subcategory: sourceSubcategory(src.Type)}, true
	}
	if amount >= namedPaymentMinimum && specificWords(text) >= 2 {
		return Verdict{IsIncome: true, Confidence: 0.72, Reason: ReasonPromotedNamed, Subcategory: domain.SubOther}, true
	}
	return Verdict{}, false
}

func externalIncomeSubcategory(detailed string) string {
	switch {
	case strings.Contains(detailed, "RETIREMENT"), strings.Contains(detailed, "PENSION"):
		return domain.SubPension
	case strings.Contains(detailed, "UNEMPLOYMENT"), strings.Contains(detailed, "BENEFIT"), strings.Contains(detailed, "GOVERNMENT"):
		return domain.SubBenefits
	}
	return domain.SubOther
}

func sourceSubcategory(t SourceType) string {
	switch t {
	case SourceSalary:
		return domain.SubSalary
	case SourceBenefits:
		return domain.SubBenefits
	case SourcePension:
		return domain.SubPension
	}
	return domain.SubOther
}
