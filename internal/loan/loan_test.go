package loan

import "testing"

func TestQuote(t *testing.T) {
	terms := DefaultTerms()

	tests := []struct {
		name         string
		principal    float64
		term         int
		wantMonthly  float64
		wantTotal    float64
		wantInterest float64
		wantAPR      float64
	}{
		{"three months uncapped", 300, 3, 172.96, 518.88, 218.88, 291.8},
		{"six months hits cost cap", 500, 6, 166.67, 1000, 500, 200},
		{"zero principal", 0, 3, 0, 0, 0, 0},
		{"zero term", 300, 0, 0, 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := terms.Quote(tt.principal, tt.term)
			if q.MonthlyRepayment != tt.wantMonthly {
				t.Errorf("MonthlyRepayment = %v, want %v", q.MonthlyRepayment, tt.wantMonthly)
			}
			if q.TotalRepayable != tt.wantTotal {
				t.Errorf("TotalRepayable = %v, want %v", q.TotalRepayable, tt.wantTotal)
			}
			if q.TotalInterest != tt.wantInterest {
				t.Errorf("TotalInterest = %v, want %v", q.TotalInterest, tt.wantInterest)
			}
			if q.APR != tt.wantAPR {
				t.Errorf("APR = %v, want %v", q.APR, tt.wantAPR)
			}
		})
	}
}

func TestMaxPrincipal(t *testing.T) {
	terms := DefaultTerms()

	tests := []struct {
		name       string
		disposable float64
		buffer     float64
		term       int
		want       float64
	}{
		{"uncapped factor", 1120, 50, 3, 1855.92},
		{"capped factor", 300, 50, 6, 750},
		{"no headroom", 40, 50, 3, 0},
		{"no term", 1000, 50, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := terms.MaxPrincipal(tt.disposable, tt.buffer, tt.term); got != tt.want {
				t.Errorf("MaxPrincipal = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMaxPrincipalRoundTrip(t *testing.T) {
	terms := DefaultTerms()
	principal := terms.MaxPrincipal(600, 50, 4)
	repayment := terms.MonthlyRepayment(principal, 4)
	if left := 600 - repayment; left < 50-0.01 {
		t.Errorf("repayment %v on max principal %v leaves %v, want >= 50", repayment, principal, left)
	}
}
