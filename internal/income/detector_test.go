package income

import (
	"testing"
	"time"

	"github.com/dvloznov/hcstc-decisioning/internal/domain"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func credit(desc string, amount float64, date time.Time) domain.Transaction {
	return domain.Transaction{Description: desc, Amount: -amount, Date: date}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"FP-ACME LIMITED SALARY", "ACME LTD"},
		{"acme ltd 28/02/2025", "ACME LTD"},
		{"BGC ACME LTD REF 123456", "ACME LTD"},
		{"ACME CORPORATION 1234567890123 PAY", "ACME CORP"},
		{"ACME SALARY PAYMENT", "ACME"},
		{"ACME LTD PAYROLL PAY", "ACME LTD"},
		{"SALARY PAYMENT", "SALARY"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeGroupsStackedPayWords(t *testing.T) {
	want := Normalize("ACME PAYMENT")
	for _, desc := range []string{"ACME SALARY PAYMENT", "ACME WAGES PAY", "FP-ACME SALARY"} {
		if got := Normalize(desc); got != want {
			t.Errorf("Normalize(%q) = %q, want the same group as ACME PAYMENT (%q)", desc, got, want)
		}
	}
}

func TestCadenceOf(t *testing.T) {
	tests := []struct {
		days float64
		want Cadence
	}{
		{7, CadenceWeekly},
		{14, CadenceFortnightly},
		{30.5, CadenceMonthly},
		{91, CadenceQuarterly},
		{20, CadenceIrregular},
		{3, CadenceIrregular},
	}
	for _, tt := range tests {
		if got := CadenceOf(tt.days); got != tt.want {
			t.Errorf("CadenceOf(%v) = %q, want %q", tt.days, got, tt.want)
		}
	}
}

func TestAnalyzeBatchBehaviouralSalary(t *testing.T) {
	txns := []domain.Transaction{
		credit("ACME WIDGETS", 1500, day(2025, 1, 25)),
		{Description: "TESCO STORES", Amount: 42.10, Date: day(2025, 1, 26)},
		credit("ACME WIDGETS", 1540, day(2025, 2, 27)),
		credit("ACME WIDGETS", 1480, day(2025, 3, 26)),
	}

	d := NewDetector(DefaultConfig())
	index := d.AnalyzeBatch(txns)

	if index.Len() != 1 {
		t.Fatalf("expected 1 recurring source, got %d", index.Len())
	}
	src, ok := index.Lookup(2)
	if !ok {
		t.Fatal("expected position 2 to belong to a source")
	}
	if src.Type != SourceSalary {
		t.Errorf("source type = %q, want salary", src.Type)
	}
	if src.Confidence < 0.85 {
		t.Errorf("confidence = %v, want >= 0.85", src.Confidence)
	}
	if !src.DayConsistent || src.Cadence != CadenceMonthly {
		t.Errorf("expected day-consistent monthly cadence, got %q consistent=%v", src.Cadence, src.DayConsistent)
	}
	if _, ok := index.Lookup(1); ok {
		t.Error("a debit must not belong to a source")
	}

	v := d.IsLikelyIncome(txns[2], index, 2)
	if !v.IsIncome || v.Reason != ReasonRecurring || v.Subcategory != domain.SubSalary {
		t.Errorf("unexpected verdict %+v", v)
	}
}

func TestAnalyzeBatchRejections(t *testing.T) {
	tests := []struct {
		name string
		txns []domain.Transaction
	}{
		{
			name: "irregular interval",
			txns: []domain.Transaction{
				credit("ACME WIDGETS", 1500, day(2025, 1, 1)),
				credit("ACME WIDGETS", 1500, day(2025, 1, 21)),
				credit("ACME WIDGETS", 1500, day(2025, 2, 10)),
			},
		},
		{
			name: "tight bound exceeded",
			txns: []domain.Transaction{
				credit("ACME WIDGETS", 1000, day(2025, 1, 25)),
				credit("ACME WIDGETS", 1200, day(2025, 2, 25)),
				credit("ACME WIDGETS", 1000, day(2025, 3, 25)),
			},
		},
		{
			name: "too few occurrences",
			txns: []domain.Transaction{
				credit("ACME WIDGETS", 1500, day(2025, 1, 25)),
				credit("ACME WIDGETS", 1500, day(2025, 2, 25)),
			},
		},
		{
			name: "loan lender excluded",
			txns: []domain.Transaction{
				credit("LENDING STREAM", 300, day(2025, 1, 25)),
				credit("LENDING STREAM", 300, day(2025, 2, 25)),
				credit("LENDING STREAM", 300, day(2025, 3, 25)),
			},
		},
		{
			name: "below minimum amount",
			txns: []domain.Transaction{
				credit("POCKET MONEY", 20, day(2025, 1, 25)),
				credit("POCKET MONEY", 20, day(2025, 2, 25)),
				credit("POCKET MONEY", 20, day(2025, 3, 25)),
			},
		},
	}

	d := NewDetector(DefaultConfig())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if n := d.AnalyzeBatch(tt.txns).Len(); n != 0 {
				t.Errorf("expected no sources, got %d", n)
			}
		})
	}
}

func TestClassifySource(t *testing.T) {
	tests := []struct {
		name          string
		desc          string
		amount        float64
		count         int
		cadence       Cadence
		dayConsistent bool
		wantType      SourceType
		wantConf      float64
	}{
		{"payroll fortnightly", "ACME PAYROLL", 900, 3, CadenceFortnightly, false, SourceSalary, 0.95},
		{"payroll quarterly", "ACME PAYROLL", 900, 3, CadenceQuarterly, false, SourceSalary, 0.85},
		{"benefits monthly", "DWP UC", 700, 3, CadenceMonthly, true, SourceBenefits, 0.95},
		{"company weekly", "ACME LTD", 400, 3, CadenceWeekly, false, SourceSalary, 0.75},
		{"behavioural weekly", "ACME WIDGETS", 400, 4, CadenceWeekly, false, SourceSalary, 0.85},
		{"behavioural monthly only", "ACME WIDGETS", 400, 3, CadenceMonthly, false, SourceUnknown, 0.70},
		{"small amount", "ACME WIDGETS", 100, 3, CadenceMonthly, true, SourceUnknown, 0.7},
		{"own account", "OWN ACCOUNT", 500, 3, CadenceMonthly, true, SourceUnknown, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotType, gotConf := classifySource(tt.desc, tt.amount, tt.count, tt.cadence, tt.dayConsistent)
			if gotType != tt.wantType {
				t.Errorf("type = %q, want %q", gotType, tt.wantType)
			}
			if diff := gotConf - tt.wantConf; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("confidence = %v, want %v", gotConf, tt.wantConf)
			}
		})
	}
}

func TestIsLikelyIncome(t *testing.T) {
	d := NewDetector(DefaultConfig())
	when := day(2025, 3, 1)

	tests := []struct {
		name       string
		txn        domain.Transaction
		wantIncome bool
		wantConf   float64
		wantReason string
		wantSub    string
	}{
		{
			name:       "debit",
			txn:        domain.Transaction{Description: "SALARY", Amount: 100, Date: when},
			wantReason: ReasonNotCredit,
		},
		{
			name:       "internal transfer beats salary keyword",
			txn:        domain.Transaction{Description: "SALARY", Amount: -2000, Date: when, CategoryPrimary: "TRANSFER_IN", CategoryDetailed: "TRANSFER_IN_ACCOUNT_TRANSFER"},
			wantReason: ReasonInternalTransfer,
		},
		{
			name:       "loan keyword",
			txn:        credit("LENDING STREAM PAYOUT", 300, when),
			wantReason: ReasonLoanDisbursement,
		},
		{
			name:       "external wages",
			txn:        domain.Transaction{Description: "ACME", Amount: -2000, Date: when, CategoryPrimary: "INCOME", CategoryDetailed: "INCOME_WAGES"},
			wantIncome: true, wantConf: 0.95, wantReason: ReasonExternalWages, wantSub: domain.SubSalary,
		},
		{
			name:       "external retirement",
			txn:        domain.Transaction{Description: "ACME", Amount: -600, Date: when, CategoryPrimary: "INCOME", CategoryDetailed: "INCOME_RETIREMENT_PENSION"},
			wantIncome: true, wantConf: 0.85, wantReason: ReasonExternalIncome, wantSub: domain.SubPension,
		},
		{
			name:       "promoted payroll keyword",
			txn:        domain.Transaction{Description: "ACME PAYROLL", Amount: -1800, Date: when, CategoryPrimary: "TRANSFER_IN", CategoryDetailed: "TRANSFER_IN_DEPOSIT"},
			wantIncome: true, wantConf: 0.96, wantReason: ReasonPromotedKeyword, wantSub: domain.SubSalary,
		},
		{
			name:       "promoted company suffix",
			txn:        domain.Transaction{Description: "ACME WIDGETS LTD", Amount: -1200, Date: when, CategoryPrimary: "TRANSFER_IN"},
			wantIncome: true, wantConf: 0.88, wantReason: ReasonPromotedCompany, wantSub: domain.SubSalary,
		},
		{
			name:       "company suffix below promotion amount",
			txn:        domain.Transaction{Description: "ACME WIDGETS LTD", Amount: -150, Date: when, CategoryPrimary: "TRANSFER_IN"},
			wantReason: ReasonNoSignal,
		},
		{
			name:       "promoted payment rail",
			txn:        domain.Transaction{Description: "FP-J BLOGGS", Amount: -250, Date: when, CategoryPrimary: "TRANSFER_IN"},
			wantIncome: true, wantConf: 0.88, wantReason: ReasonPromotedRail, wantSub: domain.SubSalary,
		},
		{
			name:       "promoted gig",
			txn:        domain.Transaction{Description: "DELIVEROO PAYOUT", Amount: -90, Date: when, CategoryPrimary: "TRANSFER_IN"},
			wantIncome: true, wantConf: 0.85, wantReason: ReasonPromotedGig, wantSub: domain.SubGigEconomy,
		},
		{
			name:       "promoted named payment",
			txn:        domain.Transaction{Description: "JOHN SMITH GIFT", Amount: -750, Date: when, CategoryPrimary: "TRANSFER_IN"},
			wantIncome: true, wantConf: 0.72, wantReason: ReasonPromotedNamed, wantSub: domain.SubOther,
		},
		{
			name:       "benefit keyword fallback",
			txn:        credit("DWP UC", 650, when),
			wantIncome: true, wantConf: 0.90, wantReason: ReasonKeywordBenefits, wantSub: domain.SubBenefits,
		},
		{
			name:       "no signal",
			txn:        credit("J BLOGGS", 40, when),
			wantReason: ReasonNoSignal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := d.IsLikelyIncome(tt.txn, nil, 0)
			if got.IsIncome != tt.wantIncome {
				t.Errorf("IsIncome = %v, want %v", got.IsIncome, tt.wantIncome)
			}
			if got.Reason != tt.wantReason {
				t.Errorf("Reason = %q, want %q", got.Reason, tt.wantReason)
			}
			if tt.wantIncome {
				if got.Confidence != tt.wantConf {
					t.Errorf("Confidence = %v, want %v", got.Confidence, tt.wantConf)
				}
				if got.Subcategory != tt.wantSub {
					t.Errorf("Subcategory = %q, want %q", got.Subcategory, tt.wantSub)
				}
			}
		})
	}
}

func TestNilPatternIndex(t *testing.T) {
	var index *PatternIndex
	if _, ok := index.Lookup(0); ok {
		t.Error("nil index should find nothing")
	}
	if index.Len() != 0 || index.Sources() != nil {
		t.Error("nil index should be empty")
	}
}
