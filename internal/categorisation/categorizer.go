// Package categorisation classifies bank transactions into the categories
// used by affordability and risk scoring.
package categorisation

import (
	"github.com/dvloznov/hcstc-decisioning/internal/domain"
	"github.com/dvloznov/hcstc-decisioning/internal/income"
)

// Context locates a transaction within its application's history. All
// fields are optional. When Transactions is set and Position does not point
// at the classified transaction, the position is found by matching it
// against the list.
type Context struct {
	Transactions []domain.Transaction
	Position     int
	Index        *income.PatternIndex
}

// Categorizer runs the credit and debit rule cascades. It holds no mutable
// state and is safe for concurrent use.
type Categorizer struct {
	detector *income.Detector
	credit   RuleSet
	debit    RuleSet
}

// New creates a Categorizer around an income detector. A nil detector uses
// the default thresholds.
func New(detector *income.Detector) *Categorizer {
	if detector == nil {
		detector = income.NewDetector(income.DefaultConfig())
	}
	return &Categorizer{
		detector: detector,
		credit:   CreditRules(detector),
		debit:    DebitRules(),
	}
}

// WithRules returns a copy of c using the given cascades.
func (c *Categorizer) WithRules(credit, debit RuleSet) *Categorizer {
	return &Categorizer{detector: c.detector, credit: credit, debit: debit}
}

// Detector returns the income detector used for credits.
func (c *Categorizer) Detector() *income.Detector {
	return c.detector
}

// Classify categorises one transaction. When ctx carries the transaction
// list but no index, recurring income patterns are computed from the list.
func (c *Categorizer) Classify(txn domain.Transaction, ctx Context) domain.CategoryMatch {
	index := ctx.Index
	if index == nil && len(ctx.Transactions) > 0 {
		index = c.detector.AnalyzeBatch(ctx.Transactions)
	}
	pos := ctx.Position
	if len(ctx.Transactions) > 0 {
		pos = positionOf(txn, ctx.Transactions, ctx.Position)
	}
	return c.classify(NewInput(txn, pos, index))
}

// positionOf returns hint if txns[hint] is txn, otherwise the first equal
// transaction in txns, or -1 when there is none.
func positionOf(txn domain.Transaction, txns []domain.Transaction, hint int) int {
	if hint >= 0 && hint < len(txns) && sameTransaction(txns[hint], txn) {
		return hint
	}
	for i := range txns {
		if sameTransaction(txns[i], txn) {
			return i
		}
	}
	return -1
}

func sameTransaction(a, b domain.Transaction) bool {
	return a.Date.Equal(b.Date) &&
		a.Amount == b.Amount &&
		a.Description == b.Description &&
		a.MerchantName == b.MerchantName &&
		a.AccountID == b.AccountID
}

// ClassifyBatch categorises every transaction of one application. The
// recurring-income index is computed once and shared by all lookups, giving
// the same result as calling Classify per transaction with the full list.
func (c *Categorizer) ClassifyBatch(txns []domain.Transaction) []domain.CategoryMatch {
	index := c.detector.AnalyzeBatch(txns)
	out := make([]domain.CategoryMatch, len(txns))
	for i, t := range txns {
		out[i] = c.classify(NewInput(t, i, index))
	}
	return out
}

func (c *Categorizer) classify(in *Input) domain.CategoryMatch {
	rules := c.debit
	if in.Txn.IsCredit() {
		rules = c.credit
	}
	m, _, ok := rules.Evaluate(in)
	if !ok {
		// Both cascades end in a default rule; this only happens with
		// custom rule sets.
		if in.Txn.IsCredit() {
			m = newMatch(domain.CategoryIncome, domain.SubOther, 0.5, MethodDefault)
			m.Weight = 0.5
		} else {
			m = newMatch(domain.CategoryExpense, domain.SubOther, 0.3, MethodDefault)
		}
	}
	return m
}
