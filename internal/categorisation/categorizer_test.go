package categorisation

import (
	"testing"
	"time"

	"github.com/dvloznov/hcstc-decisioning/internal/domain"
)

var testDate = time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)

func txn(desc string, amount float64, primary, detailed string) domain.Transaction {
	return domain.Transaction{
		Description:      desc,
		Amount:           amount,
		Date:             testDate,
		CategoryPrimary:  primary,
		CategoryDetailed: detailed,
	}
}

func TestClassify(t *testing.T) {
	c := New(nil)

	tests := []struct {
		name       string
		txn        domain.Transaction
		wantCat    domain.Category
		wantSub    string
		wantWeight float64
		wantMethod string
	}{
		{
			name:    "internal transfer code beats salary keyword",
			txn:     txn("ACME SALARY", -2000, "TRANSFER_IN", "TRANSFER_IN_ACCOUNT_TRANSFER"),
			wantCat: domain.CategoryTransfer, wantSub: domain.SubInternal, wantWeight: 0, wantMethod: MethodStrictCategory,
		},
		{
			name:    "cash advance credit is a zero-weight loan",
			txn:     txn("QUICKCASH", -300, "TRANSFER_IN", "TRANSFER_IN_CASH_ADVANCES_AND_LOANS"),
			wantCat: domain.CategoryIncome, wantSub: domain.SubLoans, wantWeight: 0, wantMethod: MethodStrictCategory,
		},
		{
			name:    "credit brand is a loan inflow",
			txn:     txn("KLARNA REFUND", -45, "", ""),
			wantCat: domain.CategoryIncome, wantSub: domain.SubLoans, wantWeight: 0, wantMethod: MethodKnownService,
		},
		{
			name:    "payment processor is an external transfer",
			txn:     txn("PAYPAL *JSMITH", -60, "", ""),
			wantCat: domain.CategoryTransfer, wantSub: domain.SubExternal, wantWeight: 0, wantMethod: MethodKnownService,
		},
		{
			name:    "promoted payroll credit",
			txn:     txn("ACME PAYROLL", -1800, "TRANSFER_IN", "TRANSFER_IN_DEPOSIT"),
			wantCat: domain.CategoryIncome, wantSub: domain.SubSalary, wantWeight: 1, wantMethod: MethodIncomeDetector,
		},
		{
			name:    "gig income carries partial weight",
			txn:     txn("DELIVEROO PAYOUT", -120, "", ""),
			wantCat: domain.CategoryIncome, wantSub: domain.SubGigEconomy, wantWeight: 0.7, wantMethod: "keyword",
		},
		{
			name:    "refund",
			txn:     txn("REFUND AMAZON", -25, "", ""),
			wantCat: domain.CategoryIncome, wantSub: domain.SubRefund, wantWeight: 0.5, wantMethod: "keyword",
		},
		{
			name:    "unmatched credit",
			txn:     txn("J BLOGGS", -40, "", ""),
			wantCat: domain.CategoryIncome, wantSub: domain.SubOther, wantWeight: 0.5, wantMethod: MethodDefault,
		},
		{
			name:    "strong transfer signals",
			txn:     txn("TO MR JOHN SMITH 20-11-33 12345678 TRANSFER", 250, "TRANSFER_OUT", "TRANSFER_OUT_OTHER"),
			wantCat: domain.CategoryTransfer, wantSub: domain.SubInternal, wantWeight: 0, wantMethod: MethodMultiSignal,
		},
		{
			name:    "mid score falls back to keywords",
			txn:     txn("TRANSFER TO SAVINGS", 100, "TRANSFER_OUT", ""),
			wantCat: domain.CategoryTransfer, wantSub: domain.SubInternal, wantWeight: 0, wantMethod: MethodTransferWords,
		},
		{
			name:    "gambling",
			txn:     txn("BET365 LONDON", 20, "", ""),
			wantCat: domain.CategoryRisk, wantSub: domain.SubGambling, wantWeight: 1, wantMethod: "keyword",
		},
		{
			name:    "failed direct debit",
			txn:     txn("UNPAID DIRECT DEBIT", 0, "", ""),
			wantCat: domain.CategoryRisk, wantSub: domain.SubFailedPayments, wantWeight: 1, wantMethod: "keyword",
		},
		{
			name:    "payday lender repayment",
			txn:     txn("LENDING STREAM", 180, "", ""),
			wantCat: domain.CategoryDebt, wantSub: domain.SubHCSTC, wantWeight: 1, wantMethod: "keyword",
		},
		{
			name:    "card repayment",
			txn:     txn("BARCLAYCARD PAYMENT", 90, "", ""),
			wantCat: domain.CategoryDebt, wantSub: domain.SubCreditCards, wantWeight: 1, wantMethod: "keyword",
		},
		{
			name:    "groceries",
			txn:     txn("TESCO STORES 2231", 54.20, "", ""),
			wantCat: domain.CategoryEssential, wantSub: domain.SubGroceries, wantWeight: 1, wantMethod: "keyword",
		},
		{
			name:    "external restaurant code",
			txn:     txn("PIZZERIA NAPOLI", 32, "FOOD_AND_DRINK", "FOOD_AND_DRINK_RESTAURANT"),
			wantCat: domain.CategoryExpense, wantSub: domain.SubFoodDining, wantWeight: 1, wantMethod: MethodExternal,
		},
		{
			name:    "external overdraft fee",
			txn:     txn("OD FEE", 8, "BANK_FEES", "BANK_FEES_OVERDRAFT_FEES"),
			wantCat: domain.CategoryExpense, wantSub: domain.SubUnauthOverdraft, wantWeight: 1, wantMethod: MethodExternal,
		},
		{
			name:    "unmatched debit",
			txn:     txn("ZZQX", 12, "", ""),
			wantCat: domain.CategoryExpense, wantSub: domain.SubOther, wantWeight: 1, wantMethod: MethodDefault,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.txn, Context{})
			if got.Category != tt.wantCat || got.Subcategory != tt.wantSub {
				t.Fatalf("got %s, want %s/%s (method %s)", got.Key(), tt.wantCat, tt.wantSub, got.MatchMethod)
			}
			if got.Weight != tt.wantWeight {
				t.Errorf("weight = %v, want %v", got.Weight, tt.wantWeight)
			}
			if got.MatchMethod != tt.wantMethod {
				t.Errorf("method = %q, want %q", got.MatchMethod, tt.wantMethod)
			}
		})
	}
}

func TestClassifyProviders(t *testing.T) {
	c := New(nil)

	lender := c.Classify(txn("LENDINGSTREAM REPAYMENT", 120, "", ""), Context{})
	if lender.Provider != "LENDING_STREAM" {
		t.Errorf("lender provider = %q, want LENDING_STREAM", lender.Provider)
	}

	dca := c.Classify(txn("LOWELL PORTFOLIO", 25, "", ""), Context{})
	if dca.Subcategory != domain.SubDebtCollection || dca.Provider != "LOWELL" {
		t.Errorf("got %s provider %q, want debt collection by LOWELL", dca.Key(), dca.Provider)
	}
}

func TestStandingOrderIsNotATransfer(t *testing.T) {
	c := New(nil)
	got := c.Classify(txn("STANDING ORDER TRANSFER TO J", 300, "TRANSFER_OUT", ""), Context{})
	if got.Category == domain.CategoryTransfer {
		t.Errorf("standing order classified as %s", got.Key())
	}
}

func TestSignInvariant(t *testing.T) {
	descriptions := []string{
		"ACME SALARY", "TESCO STORES", "BET365", "LENDING STREAM", "BARCLAYCARD",
		"COUNCIL TAX", "UNPAID DIRECT DEBIT", "LOWELL", "MONEYBOX", "REFUND",
		"DWP UC", "J BLOGGS", "BRITISH GAS", "TRANSFER TO SAVINGS", "DELIVEROO",
	}
	c := New(nil)

	for _, d := range descriptions {
		in := c.Classify(txn(d, -100, "", ""), Context{})
		switch in.Category {
		case domain.CategoryEssential, domain.CategoryDebt, domain.CategoryRisk, domain.CategoryExpense:
			t.Errorf("credit %q classified as %s", d, in.Key())
		}

		out := c.Classify(txn(d, 100, "", ""), Context{})
		if out.Category == domain.CategoryIncome {
			t.Errorf("debit %q classified as %s", d, out.Key())
		}
	}
}

func TestClassifyBatchMatchesClassify(t *testing.T) {
	txns := []domain.Transaction{
		{Description: "ACME WIDGETS", Amount: -1500, Date: time.Date(2025, 1, 25, 0, 0, 0, 0, time.UTC)},
		{Description: "TESCO STORES", Amount: 42, Date: time.Date(2025, 1, 26, 0, 0, 0, 0, time.UTC)},
		{Description: "ACME WIDGETS", Amount: -1540, Date: time.Date(2025, 2, 27, 0, 0, 0, 0, time.UTC)},
		{Description: "BET365", Amount: 15, Date: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)},
		{Description: "ACME WIDGETS", Amount: -1480, Date: time.Date(2025, 3, 26, 0, 0, 0, 0, time.UTC)},
		{Description: "J BLOGGS", Amount: -40, Date: time.Date(2025, 3, 27, 0, 0, 0, 0, time.UTC)},
	}
	c := New(nil)

	batch := c.ClassifyBatch(txns)
	for i, tx := range txns {
		single := c.Classify(tx, Context{Transactions: txns, Position: i})
		if single.Key() != batch[i].Key() || single.Weight != batch[i].Weight {
			t.Errorf("position %d: batch %s (%v), single %s (%v)", i, batch[i].Key(), batch[i].Weight, single.Key(), single.Weight)
		}
	}

	if batch[0].Category != domain.CategoryIncome || batch[0].Subcategory != domain.SubSalary {
		t.Errorf("recurring credit classified as %s, want income/salary", batch[0].Key())
	}
}

func TestClassifyFindsPositionWithoutHint(t *testing.T) {
	txns := []domain.Transaction{
		{Description: "ACME WIDGETS", Amount: -1500, Date: time.Date(2025, 1, 25, 0, 0, 0, 0, time.UTC)},
		{Description: "ACME WIDGETS", Amount: -1540, Date: time.Date(2025, 2, 27, 0, 0, 0, 0, time.UTC)},
		{Description: "ACME WIDGETS", Amount: -1480, Date: time.Date(2025, 3, 26, 0, 0, 0, 0, time.UTC)},
		{Description: "J BLOGGS", Amount: -40, Date: time.Date(2025, 3, 27, 0, 0, 0, 0, time.UTC)},
	}
	c := New(nil)
	batch := c.ClassifyBatch(txns)

	tests := []struct {
		name string
		pos  int
	}{
		{"no position", 0},
		{"stale position", 1},
		{"out of range", 42},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(txns[3], Context{Transactions: txns, Position: tt.pos})
			if got.Key() != batch[3].Key() || got.Weight != batch[3].Weight {
				t.Errorf("got %s (%v), want %s (%v)", got.Key(), got.Weight, batch[3].Key(), batch[3].Weight)
			}
		})
	}

	if batch[3].Subcategory == domain.SubSalary {
		t.Fatalf("one-off transfer classified as %s; it should not borrow the recurring salary", batch[3].Key())
	}
}

func TestRuleSetInsertBefore(t *testing.T) {
	marker := Rule{
		Name: "always_positive",
		Apply: func(in *Input) (domain.CategoryMatch, bool) {
			return newMatch(domain.CategoryPositive, domain.SubSavings, 1, "test"), true
		},
	}
	debit := DebitRules().InsertBefore("risk_patterns", marker)

	names := debit.Names()
	if names[2] != "always_positive" || names[3] != "risk_patterns" {
		t.Fatalf("unexpected rule order %v", names)
	}

	c := New(nil)
	custom := c.WithRules(CreditRules(c.Detector()), debit)
	if got := custom.Classify(txn("BET365", 10, "", ""), Context{}); got.Category != domain.CategoryPositive {
		t.Errorf("inserted rule did not fire, got %s", got.Key())
	}
}
