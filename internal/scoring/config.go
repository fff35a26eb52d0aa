package scoring

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/dvloznov/hcstc-decisioning/internal/loan"
	"github.com/dvloznov/hcstc-decisioning/internal/metrics"
)

// Step maps a metric bound to points. Whether the bound is an upper or a
// lower limit depends on the table it belongs to.
type Step struct {
	Limit  float64 `yaml:"limit"`
	Points float64 `yaml:"points"`
}

// Table is an ordered list of steps. A value matching no step scores 0.
type Table []Step

// AtMost returns the points of the first step whose limit is >= v. Limits
// must ascend.
func (t Table) AtMost(v float64) float64 {
	for _, s := range t {
		if v <= s.Limit {
			return s.Points
		}
	}
	return 0
}

// AtLeast returns the points of the first step whose limit is <= v. Limits
// must descend.
func (t Table) AtLeast(v float64) float64 {
	for _, s := range t {
		if v >= s.Limit {
			return s.Points
		}
	}
	return 0
}

// MaxPoints is the best score the table can award.
func (t Table) MaxPoints() float64 {
	best := 0.0
	for _, s := range t {
		best = math.Max(best, s.Points)
	}
	return best
}

func (t Table) ordered(ascending bool) bool {
	for i := 1; i < len(t); i++ {
		if ascending && t[i].Limit <= t[i-1].Limit {
			return false
		}
		if !ascending && t[i].Limit >= t[i-1].Limit {
			return false
		}
	}
	return true
}

// Bands map a score to a decision.
type Bands struct {
	Approve float64 `yaml:"approve"`
	Refer   float64 `yaml:"refer"`
	LowRisk float64 `yaml:"low_risk"` // approvals at or above this are Low risk
}

// Weights are the maximum points of each component.
type Weights struct {
	Affordability  float64 `yaml:"affordability"`
	IncomeQuality  float64 `yaml:"income_quality"`
	AccountConduct float64 `yaml:"account_conduct"`
	RiskIndicators float64 `yaml:"risk_indicators"`
}

// Sum returns the total of all component weights.
func (w Weights) Sum() float64 {
	return w.Affordability + w.IncomeQuality + w.AccountConduct + w.RiskIndicators
}

// Thresholds hold the point tables for each scored metric.
type Thresholds struct {
	DebtToIncome        Table   `yaml:"debt_to_income"` // at most
	Disposable          Table   `yaml:"disposable"`     // at least
	PostLoanPoints      float64 `yaml:"post_loan_points"`
	PostLoanFullAt      float64 `yaml:"post_loan_full_at"`
	Stability           Table   `yaml:"stability"` // at least
	RegularityPoints    float64 `yaml:"regularity_points"`
	VerifiedPoints      float64 `yaml:"verified_points"`
	UnverifiedPoints    float64 `yaml:"unverified_points"`
	FailedPaymentPoints float64 `yaml:"failed_payment_points"`
	FailedPaymentDeduct float64 `yaml:"failed_payment_deduct"`
	OverdraftDays       Table   `yaml:"overdraft_days"`   // at most
	AverageBalance      Table   `yaml:"average_balance"`  // at least
	GamblingPercent     Table   `yaml:"gambling_percent"` // at most
	HCSTCLenders        Table   `yaml:"hcstc_lenders"`    // at most
}

// Adjustments are fixed bonuses and penalties applied to the total.
type Adjustments struct {
	GamblingPenaltyAbove float64 `yaml:"gambling_penalty_above"`
	GamblingPenalty      float64 `yaml:"gambling_penalty"`
	MultipleHCSTCAt      int     `yaml:"multiple_hcstc_at"`
	MultipleHCSTCPenalty float64 `yaml:"multiple_hcstc_penalty"`
	SavingsBonus         float64 `yaml:"savings_bonus"`
	RisingIncomePercent  float64 `yaml:"rising_income_percent"`
	RisingIncomeBonus    float64 `yaml:"rising_income_bonus"`
	FallingIncomePercent float64 `yaml:"falling_income_percent"`
	FallingIncomePenalty float64 `yaml:"falling_income_penalty"`
}

// Rule is one hard rule. Action is REFER or DECLINE.
type Rule struct {
	Threshold    float64  `yaml:"threshold"`
	Action       Decision `yaml:"action"`
	LookbackDays int      `yaml:"lookback_days,omitempty"`
}

// Rules are evaluated before any scoring.
type Rules struct {
	MinMonthlyIncome      Rule `yaml:"min_monthly_income"`
	NoVerifiableIncome    Rule `yaml:"no_verifiable_income"`
	MaxActiveHCSTCLenders Rule `yaml:"max_active_hcstc_lenders"`
	MaxGamblingPercentage Rule `yaml:"max_gambling_percentage"`
	MinPostLoanDisposable Rule `yaml:"min_post_loan_disposable"`
	MaxFailedPayments     Rule `yaml:"max_failed_payments"`
	MaxDCACount           Rule `yaml:"max_dca_count"`
	MaxDTIWithNewLoan     Rule `yaml:"max_dti_with_new_loan"`
}

// Referrals always send an otherwise approved application to review.
type Referrals struct {
	BankChargesAbove        int `yaml:"bank_charges_above"`
	BankChargesLookbackDays int `yaml:"bank_charges_lookback_days"`
	NewCreditProvidersAt    int `yaml:"new_credit_providers_at"`
	NewCreditLookbackDays   int `yaml:"new_credit_lookback_days"`
}

// Tier caps the offer for scores at or above MinScore.
type Tier struct {
	MinScore  float64 `yaml:"min_score"`
	MaxAmount float64 `yaml:"max_amount"`
	MaxTerm   int     `yaml:"max_term"`
}

// Product describes the loan product and affordability assumptions.
type Product struct {
	MinAmount           float64 `yaml:"min_amount"`
	MaxAmount           float64 `yaml:"max_amount"`
	Terms               []int   `yaml:"terms"`
	DailyRate           float64 `yaml:"daily_rate"`
	TotalCostCap        float64 `yaml:"total_cost_cap"`
	DaysPerMonth        float64 `yaml:"days_per_month"`
	MinDisposableBuffer float64 `yaml:"min_disposable_buffer"`
	EssentialBuffer     float64 `yaml:"essential_buffer"`
	WindowMonths        int     `yaml:"window_months"`
	DefaultAmount       float64 `yaml:"default_amount"`
	DefaultTerm         int     `yaml:"default_term"`
}

// Config is the complete scoring rule set.
type Config struct {
	MaxScore    float64     `yaml:"max_score"`
	Bands       Bands       `yaml:"bands"`
	Weights     Weights     `yaml:"weights"`
	Thresholds  Thresholds  `yaml:"thresholds"`
	Adjustments Adjustments `yaml:"adjustments"`
	Rules       Rules       `yaml:"rules"`
	Referrals   Referrals   `yaml:"referrals"`
	Tiers       []Tier      `yaml:"tiers"`
	Product     Product     `yaml:"product"`
}

// DefaultConfig returns the 100-point rule set.
func DefaultConfig() Config {
	return Config{
		MaxScore: 100,
		Bands:    Bands{Approve: 70, Refer: 45, LowRisk: 85},
		Weights: Weights{
			Affordability:  45,
			IncomeQuality:  25,
			AccountConduct: 20,
			RiskIndicators: 10,
		},
		Thresholds: Thresholds{
			DebtToIncome:        Table{{30, 18}, {40, 15}, {50, 12}, {60, 8}, {70, 4}},
			Disposable:          Table{{200, 15}, {150, 13}, {100, 10}, {50, 6}, {25, 3}},
			PostLoanPoints:      12,
			PostLoanFullAt:      250,
			Stability:           Table{{90, 12}, {78, 10}, {66, 7}, {50, 4}},
			RegularityPoints:    8,
			VerifiedPoints:      5,
			UnverifiedPoints:    2,
			FailedPaymentPoints: 8,
			FailedPaymentDeduct: 2,
			OverdraftDays:       Table{{0, 7}, {5, 5}, {15, 3}},
			AverageBalance:      Table{{500, 5}, {200, 3}, {0, 1}},
			GamblingPercent:     Table{{0, 5}, {2, 3}, {5, 0}, {10, -3}, {math.Inf(1), -5}},
			HCSTCLenders:        Table{{0, 5}, {1, 2}},
		},
		Adjustments: Adjustments{
			GamblingPenaltyAbove: 5,
			GamblingPenalty:      -5,
			MultipleHCSTCAt:      2,
			MultipleHCSTCPenalty: -10,
			SavingsBonus:         2,
			RisingIncomePercent:  10,
			RisingIncomeBonus:    2,
			FallingIncomePercent: -20,
			FallingIncomePenalty: -3,
		},
		Rules: Rules{
			MinMonthlyIncome:      Rule{Threshold: 1500, Action: Refer},
			NoVerifiableIncome:    Rule{Threshold: 300, Action: Refer},
			MaxActiveHCSTCLenders: Rule{Threshold: 6, Action: Decline, LookbackDays: 90},
			MaxGamblingPercentage: Rule{Threshold: 15, Action: Refer},
			MinPostLoanDisposable: Rule{Threshold: 50, Action: Refer},
			MaxFailedPayments:     Rule{Threshold: 2, Action: Refer, LookbackDays: 45},
			MaxDCACount:           Rule{Threshold: 4, Action: Refer},
			MaxDTIWithNewLoan:     Rule{Threshold: 85, Action: Refer},
		},
		Referrals: Referrals{
			BankChargesAbove:        2,
			BankChargesLookbackDays: 90,
			NewCreditProvidersAt:    5,
			NewCreditLookbackDays:   90,
		},
		Tiers: []Tier{
			{MinScore: 75, MaxAmount: 1500, MaxTerm: 6},
			{MinScore: 65, MaxAmount: 1200, MaxTerm: 6},
			{MinScore: 55, MaxAmount: 800, MaxTerm: 5},
			{MinScore: 45, MaxAmount: 500, MaxTerm: 4},
			{MinScore: 35, MaxAmount: 300, MaxTerm: 3},
			{MinScore: 0, MaxAmount: 0, MaxTerm: 0},
		},
		Product: Product{
			MinAmount:           200,
			MaxAmount:           1500,
			Terms:               []int{3, 4, 5, 6},
			DailyRate:           0.008,
			TotalCostCap:        1.0,
			DaysPerMonth:        30.4,
			MinDisposableBuffer: 50,
			EssentialBuffer:     1.1,
			WindowMonths:        3,
			DefaultAmount:       500,
			DefaultTerm:         4,
		},
	}
}

// LoadConfig reads a YAML rule set. Keys absent from the file keep their
// default values. The result is validated before it is returned.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("LoadConfig: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("LoadConfig: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("LoadConfig: %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the invariants the engine relies on and reports every
// violation at once.
func (c Config) Validate() error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if c.MaxScore <= 0 {
		add("max_score must be positive, got %v", c.MaxScore)
	}
	if sum := c.Weights.Sum(); sum != c.MaxScore {
		add("component weights sum to %v, want max_score %v", sum, c.MaxScore)
	}
	if !(c.Bands.Refer > 0 && c.Bands.Approve > c.Bands.Refer && c.Bands.Approve <= c.MaxScore) {
		add("bands must satisfy 0 < refer < approve <= max_score, got refer %v approve %v", c.Bands.Refer, c.Bands.Approve)
	}
	if c.Bands.LowRisk < c.Bands.Approve {
		add("low_risk band %v is below the approve band %v", c.Bands.LowRisk, c.Bands.Approve)
	}

	th := c.Thresholds
	tables := []struct {
		name      string
		table     Table
		ascending bool
	}{
		{"debt_to_income", th.DebtToIncome, true},
		{"disposable", th.Disposable, false},
		{"stability", th.Stability, false},
		{"overdraft_days", th.OverdraftDays, true},
		{"average_balance", th.AverageBalance, false},
		{"gambling_percent", th.GamblingPercent, true},
		{"hcstc_lenders", th.HCSTCLenders, true},
	}
	for _, t := range tables {
		if len(t.table) == 0 {
			add("threshold table %s is empty", t.name)
		} else if !t.table.ordered(t.ascending) {
			add("threshold table %s is not ordered", t.name)
		}
	}
	if th.PostLoanFullAt <= 0 {
		add("post_loan_full_at must be positive")
	}
	if got := th.DebtToIncome.MaxPoints() + th.Disposable.MaxPoints() + th.PostLoanPoints; got > c.Weights.Affordability {
		add("affordability tables award up to %v, above weight %v", got, c.Weights.Affordability)
	}
	if got := th.Stability.MaxPoints() + th.RegularityPoints + th.VerifiedPoints; got > c.Weights.IncomeQuality {
		add("income quality tables award up to %v, above weight %v", got, c.Weights.IncomeQuality)
	}
	if got := th.FailedPaymentPoints + th.OverdraftDays.MaxPoints() + th.AverageBalance.MaxPoints(); got > c.Weights.AccountConduct {
		add("account conduct tables award up to %v, above weight %v", got, c.Weights.AccountConduct)
	}
	if got := th.GamblingPercent.MaxPoints() + th.HCSTCLenders.MaxPoints(); got > c.Weights.RiskIndicators {
		add("risk indicator tables award up to %v, above weight %v", got, c.Weights.RiskIndicators)
	}

	rules := map[string]Rule{
		"min_monthly_income":       c.Rules.MinMonthlyIncome,
		"no_verifiable_income":     c.Rules.NoVerifiableIncome,
		"max_active_hcstc_lenders": c.Rules.MaxActiveHCSTCLenders,
		"max_gambling_percentage":  c.Rules.MaxGamblingPercentage,
		"min_post_loan_disposable": c.Rules.MinPostLoanDisposable,
		"max_failed_payments":      c.Rules.MaxFailedPayments,
		"max_dca_count":            c.Rules.MaxDCACount,
		"max_dti_with_new_loan":    c.Rules.MaxDTIWithNewLoan,
	}
	for name, r := range rules {
		if r.Action != Refer && r.Action != Decline {
			add("rule %s: action must be REFER or DECLINE, got %q", name, r.Action)
		}
	}
	if c.Rules.MaxActiveHCSTCLenders.LookbackDays <= 0 || c.Rules.MaxFailedPayments.LookbackDays <= 0 {
		add("lender and failed payment rules need a positive lookback_days")
	}
	if c.Referrals.BankChargesLookbackDays <= 0 || c.Referrals.NewCreditLookbackDays <= 0 {
		add("referral lookbacks must be positive")
	}

	p := c.Product
	if !(p.MinAmount > 0 && p.MinAmount <= p.MaxAmount) {
		add("product bounds must satisfy 0 < min_amount <= max_amount, got %v..%v", p.MinAmount, p.MaxAmount)
	}
	if len(p.Terms) == 0 {
		add("product terms are empty")
	}
	for i, term := range p.Terms {
		if term <= 0 || (i > 0 && term <= p.Terms[i-1]) {
			add("product terms must be positive and ascending, got %v", p.Terms)
			break
		}
	}
	if p.DailyRate <= 0 || p.TotalCostCap <= 0 || p.DaysPerMonth <= 0 {
		add("daily_rate, total_cost_cap and days_per_month must be positive")
	}
	if p.EssentialBuffer < 1 {
		add("essential_buffer must be at least 1, got %v", p.EssentialBuffer)
	}
	if p.WindowMonths <= 0 {
		add("window_months must be positive")
	}

	if len(c.Tiers) == 0 {
		add("tiers are empty")
	} else {
		for i := 1; i < len(c.Tiers); i++ {
			if c.Tiers[i].MinScore >= c.Tiers[i-1].MinScore {
				add("tiers must be sorted by descending min_score")
				break
			}
			if c.Tiers[i].MaxAmount > c.Tiers[i-1].MaxAmount {
				add("tier max_amount must not grow as min_score falls")
				break
			}
		}
		if last := c.Tiers[len(c.Tiers)-1]; last.MinScore != 0 {
			add("the last tier must have min_score 0, got %v", last.MinScore)
		}
	}

	return errors.Join(errs...)
}

// LoanTerms returns the pricing used for repayments and offers.
func (c Config) LoanTerms() loan.Terms {
	return loan.Terms{
		DailyRate:    c.Product.DailyRate,
		TotalCostCap: c.Product.TotalCostCap,
		DaysPerMonth: c.Product.DaysPerMonth,
	}
}

// MetricsConfig derives the calculator settings from the rule set so that
// lookbacks and affordability assumptions cannot drift apart.
func (c Config) MetricsConfig() metrics.Config {
	return metrics.Config{
		Months:              c.Product.WindowMonths,
		EssentialBuffer:     c.Product.EssentialBuffer,
		MinDisposableBuffer: c.Product.MinDisposableBuffer,
		MaxLoanAmount:       c.Product.MaxAmount,
		DefaultTerm:         c.Product.DefaultTerm,
		HCSTCLookbackDays:   c.Rules.MaxActiveHCSTCLenders.LookbackDays,
		FailedPaymentDays:   c.Rules.MaxFailedPayments.LookbackDays,
		BankChargeDays:      c.Referrals.BankChargesLookbackDays,
		NewCreditDays:       c.Referrals.NewCreditLookbackDays,
		RegularityMinAmount: 100,
		Loan:                c.LoanTerms(),
	}
}
