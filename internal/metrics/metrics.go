package metrics

import "time"

// IncomeMetrics describes weighted income inside the income window.
type IncomeMetrics struct {
	Window              Window
	TotalIncome         float64 // weighted, inside the window
	MonthlyIncome       float64 // effective monthly income
	MonthlyStable       float64 // salary, benefits and pension
	MonthlyGig          float64
	MonthlyOther        float64
	Breakdown           map[string]float64
	Sources             []string
	HasVerifiableIncome bool
	StabilityScore      float64 // 0-100
	RegularityScore     float64 // 0-100
	TrendPercent        float64 // last month against the earlier months
	TrendKnown          bool
	HistoryIncome       float64 // weighted, full history
}

// ExpenseMetrics describes spending inside the expense window.
type ExpenseMetrics struct {
	Window               Window
	MonthlyHousing       float64 // rent or mortgage, whichever is larger
	MonthlyEssential     float64
	MonthlyDiscretionary float64
	MonthlyOther         float64
	Breakdown            map[string]float64
}

// DebtMetrics describes existing credit commitments over the full history.
type DebtMetrics struct {
	MonthsSpanned         int
	MonthlyDebt           float64
	MonthlyHCSTC          float64
	MonthlyCreditCards    float64
	MonthlyBNPL           float64
	MonthlyOtherLoans     float64 // other loans and catalogue credit
	Breakdown             map[string]float64
	HCSTCLenders          []string
	HCSTCLenders90d       []string
	NewCreditProviders90d int
}

// AffordabilityMetrics relates income to outgoings and the proposed loan.
type AffordabilityMetrics struct {
	MonthlyIncome         float64
	MonthlyEssential      float64
	BufferedEssential     float64
	MonthlyDiscretionary  float64
	MonthlyDebt           float64
	Disposable            float64
	DebtToIncome          float64
	EssentialRatio        float64
	DisposableRatio       float64
	RequestedAmount       float64
	RequestedTerm         int
	ProposedRepayment     float64
	PostLoanDisposable    float64
	DebtToIncomeWithLoan  float64
	RepaymentToDisposable float64
	MaxAffordableAmount   float64
	IsAffordable          bool
}

// DailyBalance is the reconstructed end-of-day balance.
type DailyBalance struct {
	Date    time.Time
	Balance float64
}

// BalanceMetrics summarises the reconstructed daily balance series.
type BalanceMetrics struct {
	Daily                []DailyBalance
	Seeded               bool
	Average              float64
	Minimum              float64
	Maximum              float64
	OverdraftDays        int
	OverdraftTransitions int
}

// RiskMetrics counts risk indicators over the full history.
type RiskMetrics struct {
	GamblingTotal          float64
	GamblingCount          int
	GamblingPercent        float64 // of full-history weighted income
	FailedPayments         int
	FailedPayments45d      int
	DebtCollectionPayments int
	DebtCollectors         []string // distinct agencies
	BankCharges            int
	BankCharges90d         int // includes unauthorised overdraft fees
	SavingsTotal           float64
	HasSavings             bool
}

// Metrics is the full metric set for one application.
type Metrics struct {
	ReferenceDate time.Time
	Income        IncomeMetrics
	Expenses      ExpenseMetrics
	Debt          DebtMetrics
	Affordability AffordabilityMetrics
	Balance       BalanceMetrics
	Risk          RiskMetrics
}
