package domain

// Category is the top-level classification of a transaction.
type Category string

const (
	CategoryIncome    Category = "income"
	CategoryTransfer  Category = "transfer"
	CategoryEssential Category = "essential"
	CategoryDebt      Category = "debt"
	CategoryRisk      Category = "risk"
	CategoryPositive  Category = "positive"
	CategoryExpense   Category = "expense"
)

// Subcategories referenced outside the pattern tables.
const (
	SubSalary          = "salary"
	SubBenefits        = "benefits"
	SubPension         = "pension"
	SubGigEconomy      = "gig_economy"
	SubLoans           = "loans"
	SubRefund          = "refund"
	SubOther           = "other"
	SubInternal        = "internal"
	SubExternal        = "external"
	SubHCSTC           = "hcstc_payday"
	SubOtherLoans      = "other_loans"
	SubCreditCards     = "credit_cards"
	SubBNPL            = "bnpl"
	SubCatalogue       = "catalogue"
	SubGambling        = "gambling"
	SubBankCharges     = "bank_charges"
	SubFailedPayments  = "failed_payments"
	SubDebtCollection  = "debt_collection"
	SubSavings         = "savings"
	SubDiscretionary   = "discretionary"
	SubFoodDining      = "food_dining"
	SubTransport       = "transport"
	SubUnauthOverdraft = "unauthorised_overdraft"
	SubRent            = "rent"
	SubMortgage        = "mortgage"
	SubUtilities       = "utilities"
	SubGroceries       = "groceries"
)

// CategoryMatch is the result of classifying one transaction.
type CategoryMatch struct {
	Category    Category
	Subcategory string
	Confidence  float64
	Weight      float64 // multiplier applied to income amounts only
	IsStable    bool
	IsHousing   bool
	RiskLevel   string
	MatchMethod string
	Provider    string   // canonical lender or agency name, when recognised
	Detail      []string // signals that produced the match
}

// Key returns "category/subcategory".
func (m CategoryMatch) Key() string {
	return string(m.Category) + "/" + m.Subcategory
}
