package categorisation

import (
	"math"
	"strings"

	"github.com/dvloznov/hcstc-decisioning/internal/domain"
)

const (
	pairAmountTolerance = 0.10
	pairMaxDays         = 2
	pairMinOverlap      = 0.30
)

// TransferPair links a credit and a debit that look like the two legs of
// one movement between the applicant's accounts.
type TransferPair struct {
	Debit  int
	Credit int
}

// FindTransferPairs matches opposite-signed transactions with amounts within
// 10%, dates at most two days apart and at least 30% shared description
// words. Each transaction joins at most one pair. Pairs are reported for
// audit only and never change a category.
func FindTransferPairs(txns []domain.Transaction) []TransferPair {
	used := make(map[int]bool)
	var pairs []TransferPair
	for i, a := range txns {
		if used[i] || a.Amount <= 0 {
			continue
		}
		wordsA := descriptionWords(a.Description)
		if len(wordsA) == 0 {
			continue
		}
		for j, b := range txns {
			if used[j] || i == j || !b.IsCredit() {
				continue
			}
			if math.Abs(a.Magnitude()-b.Magnitude())/a.Magnitude() > pairAmountTolerance {
				continue
			}
			if days := math.Abs(a.Day().Sub(b.Day()).Hours() / 24); days > pairMaxDays {
				continue
			}
			if wordOverlap(wordsA, descriptionWords(b.Description)) < pairMinOverlap {
				continue
			}
			pairs = append(pairs, TransferPair{Debit: i, Credit: j})
			used[i], used[j] = true, true
			break
		}
	}
	return pairs
}

func descriptionWords(s string) map[string]struct{} {
	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) < 3 {
		return nil
	}
	set := make(map[string]struct{})
	for _, w := range strings.Fields(s) {
		set[w] = struct{}{}
	}
	return set
}

func wordOverlap(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	common := 0
	for w := range a {
		if _, ok := b[w]; ok {
			common++
		}
	}
	smaller := len(a)
	if len(b) < smaller {
		smaller = len(b)
	}
	return float64(common) / float64(smaller)
}
