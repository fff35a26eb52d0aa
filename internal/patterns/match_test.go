package patterns

import "testing"

func TestContainsWord(t *testing.T) {
	tests := []struct {
		name string
		text string
		kw   string
		want bool
	}{
		{"exact", "UC", "UC", true},
		{"inside sentence", "DWP UC PAYMENT", "UC", true},
		{"embedded in word", "TRUCK HIRE", "UC", false},
		{"punctuation boundary", "PAYMENT/RENT JAN", "RENT", true},
		{"plural is a different word", "CURRENT ACCOUNT", "RENT", false},
		{"trailing punctuation keyword", "FP-ACME LTD", "FP-", true},
		{"multi word", "TFR TO LENDING STREAM LTD", "LENDING STREAM", true},
		{"second occurrence", "GASTRO PUB GAS", "GAS", true},
		{"empty keyword", "ANY", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ContainsWord(tt.text, tt.kw); got != tt.want {
				t.Errorf("ContainsWord(%q, %q) = %v, want %v", tt.text, tt.kw, got, tt.want)
			}
		})
	}
}

func TestTableMatchOrder(t *testing.T) {
	gambling, ok := Risk.Lookup("gambling")
	if !ok {
		t.Fatal("gambling table missing")
	}

	tests := []struct {
		name       string
		text       string
		wantMethod string
		wantOK     bool
	}{
		{"keyword", "BET365 LONDON", MethodKeyword, true},
		{"regex", "WILLIAMHILL ONLINE", MethodRegex, true},
		{"fuzzy typo", "LADBROKE", MethodFuzzy, true},
		{"no match", "TESCO STORES", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ok := gambling.Match(tt.text)
			if ok != tt.wantOK {
				t.Fatalf("Match(%q) ok = %v, want %v", tt.text, ok, tt.wantOK)
			}
			if ok && m.Method != tt.wantMethod {
				t.Errorf("Match(%q) method = %q, want %q", tt.text, m.Method, tt.wantMethod)
			}
		})
	}
}

func TestFuzzyIgnoresShortKeywordsAndCoveredText(t *testing.T) {
	benefits, _ := Income.Lookup("benefits")
	if _, ok := benefits.Match("UK"); ok {
		t.Error("two-letter text should not fuzzy match a short benefit code")
	}

	failed, _ := Risk.Lookup("failed_payments")
	if _, ok := failed.Match("PAYMENT"); ok {
		t.Error("bare PAYMENT should not match a failed payment table")
	}
}

func TestGroupFindReturnsFirstTable(t *testing.T) {
	table, m, ok := Debt.Find("LENDING STREAM LOAN REPAYMENT")
	if !ok {
		t.Fatal("expected a debt match")
	}
	if table.Name != "hcstc_payday" {
		t.Errorf("table = %q, want hcstc_payday", table.Name)
	}
	if m.Confidence != keywordConfidence {
		t.Errorf("confidence = %v, want %v", m.Confidence, keywordConfidence)
	}
}

func TestIsTransferText(t *testing.T) {
	if !IsTransferText("MOVED TO SAVINGS POT") {
		t.Error("expected transfer text")
	}
	if IsTransferText("TESCO STORES 2231") {
		t.Error("unexpected transfer text")
	}
}
