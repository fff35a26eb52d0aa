// Package metrics turns a categorised application into income, expense,
// debt, affordability, balance and risk metrics. Each group states the
// window its totals come from.
package metrics

import (
	"math"
	"sort"
	"time"

	"github.com/dvloznov/hcstc-decisioning/internal/categorisation"
	"github.com/dvloznov/hcstc-decisioning/internal/domain"
	"github.com/dvloznov/hcstc-decisioning/internal/loan"
	"github.com/shopspring/decimal"
)

// Config controls windows and affordability assumptions.
type Config struct {
	Months              int     // months averaged for income and expenses
	EssentialBuffer     float64 // shock multiplier on essential spend
	MinDisposableBuffer float64 // disposable income that must remain after the loan
	MaxLoanAmount       float64
	DefaultTerm         int
	HCSTCLookbackDays   int
	FailedPaymentDays   int
	BankChargeDays      int
	NewCreditDays       int
	RegularityMinAmount float64 // smallest credit used for pay-day regularity
	Loan                loan.Terms
}

// DefaultConfig returns the standard metric settings.
func DefaultConfig() Config {
	return Config{
		Months:              3,
		EssentialBuffer:     1.1,
		MinDisposableBuffer: 50,
		MaxLoanAmount:       1500,
		DefaultTerm:         3,
		HCSTCLookbackDays:   90,
		FailedPaymentDays:   45,
		BankChargeDays:      90,
		NewCreditDays:       90,
		RegularityMinAmount: 100,
		Loan:                loan.DefaultTerms(),
	}
}

// Calculator computes Metrics. It holds no per-application state.
type Calculator struct {
	cfg Config
}

// NewCalculator builds a Calculator. Zero fields take their defaults.
func NewCalculator(cfg Config) *Calculator {
	def := DefaultConfig()
	if cfg.Months <= 0 {
		cfg.Months = def.Months
	}
	if cfg.EssentialBuffer <= 0 {
		cfg.EssentialBuffer = def.EssentialBuffer
	}
	if cfg.MaxLoanAmount <= 0 {
		cfg.MaxLoanAmount = def.MaxLoanAmount
	}
	if cfg.DefaultTerm <= 0 {
		cfg.DefaultTerm = def.DefaultTerm
	}
	if cfg.HCSTCLookbackDays <= 0 {
		cfg.HCSTCLookbackDays = def.HCSTCLookbackDays
	}
	if cfg.FailedPaymentDays <= 0 {
		cfg.FailedPaymentDays = def.FailedPaymentDays
	}
	if cfg.BankChargeDays <= 0 {
		cfg.BankChargeDays = def.BankChargeDays
	}
	if cfg.NewCreditDays <= 0 {
		cfg.NewCreditDays = def.NewCreditDays
	}
	if cfg.Loan.DaysPerMonth <= 0 {
		cfg.Loan = def.Loan
	}
	return &Calculator{cfg: cfg}
}

// Config returns the effective configuration.
func (c *Calculator) Config() Config {
	return c.cfg
}

// Calculate derives every metric group. s must be the summary of
// app.Transactions.
func (c *Calculator) Calculate(app domain.Application, s categorisation.Summary) Metrics {
	ref, ok := ReferenceDate(s.Transactions)
	if !ok {
		ref = domain.DateOnly(time.Now())
	}

	m := Metrics{ReferenceDate: ref}
	m.Income = c.income(s)
	m.Expenses = c.expenses(s, ref)
	m.Debt = c.debt(s, ref)
	m.Affordability = c.affordability(m.Income, m.Expenses, m.Debt, app.RequestedAmount, app.RequestedTerm)
	m.Balance = Balance(s.Transactions, app.Accounts)
	m.Risk = c.risk(s, ref, m.Income.HistoryIncome)
	return m
}

func (c *Calculator) income(s categorisation.Summary) IncomeMetrics {
	w := IncomeWindow(s, c.cfg.Months)
	m := IncomeMetrics{Window: w, Breakdown: make(map[string]float64)}

	var history, total decimal.Decimal
	breakdown := make(map[string]decimal.Decimal)
	monthly := make(map[time.Time]decimal.Decimal)
	var payDays []float64
	for i, match := range s.Matches {
		if match.Category != domain.CategoryIncome || i >= len(s.Transactions) {
			continue
		}
		t := s.Transactions[i]
		weighted := dec(t.Magnitude()).Mul(dec(match.Weight))
		history = history.Add(weighted)
		if !weighted.IsPositive() || !w.Contains(t.Date) {
			continue
		}
		total = total.Add(weighted)
		breakdown[match.Subcategory] = breakdown[match.Subcategory].Add(weighted)
		month := monthStart(t.Date)
		monthly[month] = monthly[month].Add(weighted)
		if t.Magnitude() >= c.cfg.RegularityMinAmount {
			payDays = append(payDays, float64(t.Date.Day()))
		}
	}
	m.HistoryIncome = pence(history)
	m.TotalIncome = pence(total)
	if w.Months == 0 {
		m.StabilityScore = 50
		m.RegularityScore = 50
		return m
	}

	stable := breakdown[domain.SubSalary].Add(breakdown[domain.SubBenefits]).Add(breakdown[domain.SubPension])
	gig := breakdown[domain.SubGigEconomy]
	m.MonthlyIncome = pence(perMonth(total, w.Months))
	m.MonthlyStable = pence(perMonth(stable, w.Months))
	m.MonthlyGig = pence(perMonth(gig, w.Months))
	m.MonthlyOther = pence(perMonth(total.Sub(stable).Sub(gig), w.Months))
	for sub, v := range breakdown {
		m.Breakdown[sub] = pence(perMonth(v, w.Months))
	}

	for _, sub := range []string{domain.SubSalary, domain.SubBenefits, domain.SubPension, domain.SubGigEconomy} {
		if m.Breakdown[sub] > 0 {
			m.Sources = append(m.Sources, sub)
		}
	}
	m.HasVerifiableIncome = stable.IsPositive()

	series := monthlySeries(monthly)
	m.StabilityScore = stabilityScore(series)
	m.RegularityScore = regularityScore(payDays)
	m.TrendPercent, m.TrendKnown = trend(series)
	return m
}

func (c *Calculator) expenses(s categorisation.Summary, ref time.Time) ExpenseMetrics {
	w := ExpenseWindow(s.Transactions, ref, c.cfg.Months)
	m := ExpenseMetrics{Window: w, Breakdown: make(map[string]float64)}

	essentials := make(map[string]decimal.Decimal)
	var discretionary, other decimal.Decimal
	for i, match := range s.Matches {
		if i >= len(s.Transactions) || !w.Contains(s.Transactions[i].Date) {
			continue
		}
		amount := dec(s.Transactions[i].Magnitude())
		switch match.Category {
		case domain.CategoryEssential:
			essentials[match.Subcategory] = essentials[match.Subcategory].Add(amount)
		case domain.CategoryExpense:
			switch match.Subcategory {
			case domain.SubDiscretionary, domain.SubFoodDining:
				discretionary = discretionary.Add(amount)
			case domain.SubOther:
				other = other.Add(amount)
			}
		}
	}

	var nonHousing decimal.Decimal
	for sub, total := range essentials {
		m.Breakdown[sub] = pence(perMonth(total, w.Months))
		if sub != domain.SubRent && sub != domain.SubMortgage {
			nonHousing = nonHousing.Add(total)
		}
	}
	housing := decimal.Max(essentials[domain.SubRent], essentials[domain.SubMortgage])
	m.MonthlyHousing = pence(perMonth(housing, w.Months))
	m.MonthlyEssential = pence(perMonth(nonHousing.Add(housing), w.Months))
	m.MonthlyDiscretionary = pence(perMonth(discretionary, w.Months))
	m.MonthlyOther = pence(perMonth(other, w.Months))
	return m
}

func (c *Calculator) debt(s categorisation.Summary, ref time.Time) DebtMetrics {
	m := DebtMetrics{Breakdown: make(map[string]float64)}
	if len(s.Transactions) > 0 {
		m.MonthsSpanned = monthsBetween(monthStart(earliestDate(s.Transactions)), monthStart(ref))
	}
	if m.MonthsSpanned < 1 {
		m.MonthsSpanned = 1
	}

	hcstcCutoff := ref.AddDate(0, 0, -c.cfg.HCSTCLookbackDays)
	newCreditCutoff := ref.AddDate(0, 0, -c.cfg.NewCreditDays)
	totals := make(map[string]decimal.Decimal)
	lenders := make(map[string]bool)
	recent := make(map[string]bool)
	firstSeen := make(map[string]time.Time)

	for i, match := range s.Matches {
		if match.Category != domain.CategoryDebt || i >= len(s.Transactions) {
			continue
		}
		t := s.Transactions[i]
		totals[match.Subcategory] = totals[match.Subcategory].Add(dec(t.Magnitude()))

		provider := match.Provider
		if provider == "" {
			continue
		}
		if first, ok := firstSeen[provider]; !ok || t.Day().Before(first) {
			firstSeen[provider] = t.Day()
		}
		if match.Subcategory == domain.SubHCSTC {
			lenders[provider] = true
			if !t.Day().Before(hcstcCutoff) {
				recent[provider] = true
			}
		}
	}

	var all decimal.Decimal
	for sub, total := range totals {
		m.Breakdown[sub] = pence(perMonth(total, m.MonthsSpanned))
		all = all.Add(total)
	}
	m.MonthlyDebt = pence(perMonth(all, m.MonthsSpanned))
	m.MonthlyHCSTC = m.Breakdown[domain.SubHCSTC]
	m.MonthlyCreditCards = m.Breakdown[domain.SubCreditCards]
	m.MonthlyBNPL = m.Breakdown[domain.SubBNPL]
	m.MonthlyOtherLoans = pence(perMonth(totals[domain.SubOtherLoans].Add(totals[domain.SubCatalogue]), m.MonthsSpanned))
	m.HCSTCLenders = sortedKeys(lenders)
	m.HCSTCLenders90d = sortedKeys(recent)
	for _, first := range firstSeen {
		if !first.Before(newCreditCutoff) {
			m.NewCreditProviders90d++
		}
	}
	return m
}

func (c *Calculator) affordability(inc IncomeMetrics, exp ExpenseMetrics, debt DebtMetrics, amount float64, term int) AffordabilityMetrics {
	if term <= 0 {
		term = c.cfg.DefaultTerm
	}
	m := AffordabilityMetrics{
		MonthlyIncome:        inc.MonthlyIncome,
		MonthlyEssential:     exp.MonthlyEssential,
		BufferedEssential:    pence(dec(exp.MonthlyEssential).Mul(dec(c.cfg.EssentialBuffer))),
		MonthlyDiscretionary: exp.MonthlyDiscretionary,
		MonthlyDebt:          debt.MonthlyDebt,
		RequestedAmount:      amount,
		RequestedTerm:        term,
	}
	income := m.MonthlyIncome

	disposable := dec(income).Sub(dec(m.BufferedEssential)).Sub(dec(m.MonthlyDiscretionary)).Sub(dec(m.MonthlyDebt))
	m.Disposable = pence(disposable)
	m.ProposedRepayment = c.cfg.Loan.MonthlyRepayment(amount, term)
	m.PostLoanDisposable = pence(disposable.Sub(dec(m.ProposedRepayment)))

	m.DebtToIncome = percentOf(m.MonthlyDebt, income, 100)
	m.EssentialRatio = percentOf(m.BufferedEssential, income, 100)
	m.DisposableRatio = percentOf(m.Disposable, income, 0)
	m.DebtToIncomeWithLoan = percentOf(m.MonthlyDebt+m.ProposedRepayment, income, 100)
	m.RepaymentToDisposable = percentOf(m.ProposedRepayment, m.Disposable, 100)

	maxPrincipal := c.cfg.Loan.MaxPrincipal(m.Disposable, c.cfg.MinDisposableBuffer, term)
	m.MaxAffordableAmount = math.Min(maxPrincipal, c.cfg.MaxLoanAmount)
	m.IsAffordable = m.PostLoanDisposable >= c.cfg.MinDisposableBuffer
	return m
}

func (c *Calculator) risk(s categorisation.Summary, ref time.Time, historyIncome float64) RiskMetrics {
	var m RiskMetrics
	var gambling, savings decimal.Decimal
	failedCutoff := ref.AddDate(0, 0, -c.cfg.FailedPaymentDays)
	chargeCutoff := ref.AddDate(0, 0, -c.cfg.BankChargeDays)
	agencies := make(map[string]bool)

	for i, match := range s.Matches {
		if i >= len(s.Transactions) {
			continue
		}
		t := s.Transactions[i]
		day := t.Day()
		switch match.Key() {
		case string(domain.CategoryRisk) + "/" + domain.SubGambling:
			gambling = gambling.Add(dec(t.Magnitude()))
			m.GamblingCount++
		case string(domain.CategoryRisk) + "/" + domain.SubFailedPayments:
			m.FailedPayments++
			if !day.Before(failedCutoff) {
				m.FailedPayments45d++
			}
		case string(domain.CategoryRisk) + "/" + domain.SubDebtCollection:
			m.DebtCollectionPayments++
			if match.Provider != "" {
				agencies[match.Provider] = true
			}
		case string(domain.CategoryRisk) + "/" + domain.SubBankCharges:
			m.BankCharges++
			if !day.Before(chargeCutoff) {
				m.BankCharges90d++
			}
		case string(domain.CategoryExpense) + "/" + domain.SubUnauthOverdraft:
			if !day.Before(chargeCutoff) {
				m.BankCharges90d++
			}
		case string(domain.CategoryPositive) + "/" + domain.SubSavings:
			savings = savings.Add(dec(t.Magnitude()))
		}
	}

	m.GamblingTotal = pence(gambling)
	m.GamblingPercent = percentOf(m.GamblingTotal, historyIncome, 0)
	m.DebtCollectors = sortedKeys(agencies)
	m.SavingsTotal = pence(savings)
	m.HasSavings = m.SavingsTotal > 0
	return m
}

// percentOf returns part/whole as a percentage rounded to one decimal, or
// fallback when whole is not positive.
func percentOf(part, whole, fallback float64) float64 {
	if whole <= 0 {
		return fallback
	}
	return round1(part / whole * 100)
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
