package categorisation

import (
	"testing"
	"time"

	"github.com/dvloznov/hcstc-decisioning/internal/domain"
	"github.com/shopspring/decimal"
)

func TestSummarizeWeightsOnlyIncome(t *testing.T) {
	txns := []domain.Transaction{
		{Description: "DELIVEROO", Amount: -100, Date: testDate},
		{Description: "J BLOGGS", Amount: -40, Date: testDate},
		{Description: "TESCO", Amount: 60, Date: testDate},
		{Description: "TESCO", Amount: 40, Date: testDate},
	}
	matches := []domain.CategoryMatch{
		{Category: domain.CategoryIncome, Subcategory: domain.SubGigEconomy, Weight: 0.7},
		{Category: domain.CategoryIncome, Subcategory: domain.SubOther, Weight: 0.5},
		{Category: domain.CategoryEssential, Subcategory: domain.SubGroceries, Weight: 0.2},
		{Category: domain.CategoryEssential, Subcategory: domain.SubGroceries, Weight: 1},
	}

	s := Summarize(txns, matches)

	groceries := s.Bucket(domain.CategoryEssential, domain.SubGroceries)
	hundred := decimal.NewFromInt(100)
	if groceries.Count != 2 || !groceries.Total.Equal(hundred) || !groceries.WeightedTotal.Equal(hundred) {
		t.Errorf("groceries bucket = %+v, want count 2 total 100", groceries)
	}
	if got := s.WeightedIncome(); !got.Equal(decimal.NewFromInt(90)) {
		t.Errorf("WeightedIncome = %s, want 90", got)
	}
	if got := s.CategoryTotal(domain.CategoryIncome); !got.Equal(decimal.NewFromInt(140)) {
		t.Errorf("raw income = %s, want 140", got)
	}
	if empty := s.Bucket(domain.CategoryRisk, domain.SubGambling); empty.Count != 0 {
		t.Errorf("expected empty bucket, got %+v", empty)
	}
	if got := len(s.SortedBuckets()); got != 3 {
		t.Errorf("SortedBuckets len = %d, want 3", got)
	}
}

func TestSummarizeTotalsArePenceExact(t *testing.T) {
	txns := []domain.Transaction{
		{Description: "CORNER SHOP", Amount: 0.10, Date: testDate},
		{Description: "CORNER SHOP", Amount: 0.20, Date: testDate},
		{Description: "REFUND", Amount: -0.10, Date: testDate},
		{Description: "REFUND", Amount: -0.20, Date: testDate},
	}
	matches := []domain.CategoryMatch{
		{Category: domain.CategoryExpense, Subcategory: domain.SubOther, Weight: 1},
		{Category: domain.CategoryExpense, Subcategory: domain.SubOther, Weight: 1},
		{Category: domain.CategoryIncome, Subcategory: domain.SubOther, Weight: 1},
		{Category: domain.CategoryIncome, Subcategory: domain.SubOther, Weight: 1},
	}

	s := Summarize(txns, matches)

	want := decimal.RequireFromString("0.30")
	other := s.Bucket(domain.CategoryExpense, domain.SubOther)
	if !other.Total.Equal(want) {
		t.Errorf("expense total = %s, want 0.30", other.Total)
	}
	if got := s.WeightedIncome(); !got.Equal(s.CategoryTotal(domain.CategoryIncome)) || !got.Equal(want) {
		t.Errorf("fully weighted income = %s, want the raw sum 0.30", got)
	}
}

func TestFindTransferPairs(t *testing.T) {
	d := func(day int) time.Time { return time.Date(2025, 3, day, 0, 0, 0, 0, time.UTC) }
	txns := []domain.Transaction{
		{Description: "TRANSFER TO SAVINGS POT", Amount: 200, Date: d(1)},
		{Description: "TESCO", Amount: 30, Date: d(1)},
		{Description: "TRANSFER FROM SAVINGS POT", Amount: -195, Date: d(2)},
		{Description: "TRANSFER FROM SAVINGS POT", Amount: -200, Date: d(9)},
	}

	pairs := FindTransferPairs(txns)
	if len(pairs) != 1 {
		t.Fatalf("expected 1 pair, got %d", len(pairs))
	}
	if pairs[0].Debit != 0 || pairs[0].Credit != 2 {
		t.Errorf("pair = %+v, want debit 0 credit 2", pairs[0])
	}
}
