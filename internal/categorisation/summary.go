package categorisation

import (
	"sort"

	"github.com/dvloznov/hcstc-decisioning/internal/domain"
	"github.com/shopspring/decimal"
)

// Bucket aggregates the transactions of one category/subcategory.
type Bucket struct {
	Category      domain.Category
	Subcategory   string
	Count         int
	Total         decimal.Decimal // raw sum of absolute amounts
	WeightedTotal decimal.Decimal // differs from Total only for income
	Positions     []int
}

// Summary is the per-category view of one classified application.
type Summary struct {
	Transactions  []domain.Transaction
	Matches       []domain.CategoryMatch
	Buckets       map[string]*Bucket
	TransferPairs []TransferPair
}

// Summarize builds per-category totals. txns and matches are parallel.
func Summarize(txns []domain.Transaction, matches []domain.CategoryMatch) Summary {
	s := Summary{
		Transactions: txns,
		Matches:      matches,
		Buckets:      make(map[string]*Bucket),
	}
	for i, m := range matches {
		if i >= len(txns) {
			break
		}
		key := m.Key()
		b, ok := s.Buckets[key]
		if !ok {
			b = &Bucket{Category: m.Category, Subcategory: m.Subcategory}
			s.Buckets[key] = b
		}
		amount := decimal.NewFromFloat(txns[i].Magnitude())
		b.Count++
		b.Total = b.Total.Add(amount)
		if m.Category == domain.CategoryIncome {
			b.WeightedTotal = b.WeightedTotal.Add(amount.Mul(decimal.NewFromFloat(m.Weight)))
		} else {
			b.WeightedTotal = b.WeightedTotal.Add(amount)
		}
		b.Positions = append(b.Positions, i)
	}
	s.TransferPairs = FindTransferPairs(txns)
	return s
}

// Bucket returns the aggregate for one category/subcategory.
func (s Summary) Bucket(cat domain.Category, sub string) Bucket {
	if b, ok := s.Buckets[string(cat)+"/"+sub]; ok {
		return *b
	}
	return Bucket{Category: cat, Subcategory: sub}
}

// CategoryTotal sums the raw totals of every bucket in a category.
func (s Summary) CategoryTotal(cat domain.Category) decimal.Decimal {
	total := decimal.Zero
	for _, b := range s.Buckets {
		if b.Category == cat {
			total = total.Add(b.Total)
		}
	}
	return total
}

// WeightedIncome is the total income after weights.
func (s Summary) WeightedIncome() decimal.Decimal {
	total := decimal.Zero
	for _, b := range s.Buckets {
		if b.Category == domain.CategoryIncome {
			total = total.Add(b.WeightedTotal)
		}
	}
	return total
}

// SortedBuckets returns the buckets ordered by category then subcategory.
func (s Summary) SortedBuckets() []Bucket {
	out := make([]Bucket, 0, len(s.Buckets))
	for _, b := range s.Buckets {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].Subcategory < out[j].Subcategory
	})
	return out
}
