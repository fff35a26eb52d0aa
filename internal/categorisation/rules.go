package categorisation

import (
	"strings"

	"github.com/dvloznov/hcstc-decisioning/internal/domain"
	"github.com/dvloznov/hcstc-decisioning/internal/income"
)

// Input is what a rule sees: the transaction plus precomputed views of it.
type Input struct {
	Txn      domain.Transaction
	Position int
	Index    *income.PatternIndex

	Text     string // upper-cased description and merchant
	Merchant string // upper-cased merchant name
	Primary  string // upper-cased external primary category
	Detailed string // upper-cased external detailed category
}

// NewInput prepares a transaction for rule evaluation.
func NewInput(txn domain.Transaction, pos int, index *income.PatternIndex) *Input {
	return &Input{
		Txn:      txn,
		Position: pos,
		Index:    index,
		Text:     txn.Text(),
		Merchant: strings.ToUpper(strings.TrimSpace(txn.MerchantName)),
		Primary:  strings.ToUpper(strings.TrimSpace(txn.CategoryPrimary)),
		Detailed: strings.ToUpper(strings.TrimSpace(txn.CategoryDetailed)),
	}
}

// Rule is one pure predicate-to-result step of the cascade.
type Rule struct {
	Name  string
	Apply func(in *Input) (domain.CategoryMatch, bool)
}

// RuleSet is evaluated in order; the first rule that applies wins.
type RuleSet []Rule

// Evaluate runs the rules against in and returns the first match together
// with the name of the rule that produced it.
func (rs RuleSet) Evaluate(in *Input) (domain.CategoryMatch, string, bool) {
	for _, r := range rs {
		if m, ok := r.Apply(in); ok {
			return m, r.Name, true
		}
	}
	return domain.CategoryMatch{}, "", false
}

// Names lists the rule names in evaluation order.
func (rs RuleSet) Names() []string {
	names := make([]string, len(rs))
	for i, r := range rs {
		names[i] = r.Name
	}
	return names
}

// InsertBefore returns a copy of rs with r placed before the rule named
// before, or appended when no such rule exists.
func (rs RuleSet) InsertBefore(before string, r Rule) RuleSet {
	out := make(RuleSet, 0, len(rs)+1)
	inserted := false
	for _, existing := range rs {
		if !inserted && existing.Name == before {
			out = append(out, r)
			inserted = true
		}
		out = append(out, existing)
	}
	if !inserted {
		out = append(out, r)
	}
	return out
}

func newMatch(cat domain.Category, sub string, confidence float64, method string) domain.CategoryMatch {
	return domain.CategoryMatch{
		Category:    cat,
		Subcategory: sub,
		Confidence:  confidence,
		Weight:      1.0,
		MatchMethod: method,
	}
}

func transferMatch(sub string, confidence float64, method string) domain.CategoryMatch {
	m := newMatch(domain.CategoryTransfer, sub, confidence, method)
	m.Weight = 0
	return m
}

func loanInflow(confidence float64, method string) domain.CategoryMatch {
	m := newMatch(domain.CategoryIncome, domain.SubLoans, confidence, method)
	m.Weight = 0
	return m
}
