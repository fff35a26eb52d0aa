package ingest

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestParseApplicationObject(t *testing.T) {
	raw := []byte(`{
		"application_id": "app-1",
		"requested_amount": 400,
		"requested_term": 3,
		"accounts": [{"account_id": "acc-1", "name": "Current", "balances": {"current": 120.5, "available": 100}}],
		"transactions": [
			{"date": "2025-03-01", "amount": -1500, "name": "ACME LTD SALARY", "account_id": "acc-1",
			 "personal_finance_category": {"primary": "INCOME", "detailed": "INCOME_WAGES"}},
			{"date": "2025-03-02", "amount": "12.40", "description": "TESCO STORES", "merchant": "Tesco",
			 "category_primary": "FOOD_AND_DRINK", "category_detailed": "FOOD_AND_DRINK_GROCERIES"}
		]
	}`)

	app, err := ParseApplication(raw)
	if err != nil {
		t.Fatalf("ParseApplication() error = %v", err)
	}
	if app.ID != "app-1" || app.RequestedAmount != 400 || app.RequestedTerm != 3 {
		t.Errorf("header = %q %v %d", app.ID, app.RequestedAmount, app.RequestedTerm)
	}
	if len(app.Accounts) != 1 {
		t.Fatalf("accounts = %d, want 1", len(app.Accounts))
	}
	if seed, ok := app.Accounts[0].SeedBalance(); !ok || seed != 120.5 {
		t.Errorf("seed balance = %v %v, want 120.5", seed, ok)
	}
	if len(app.Transactions) != 2 {
		t.Fatalf("transactions = %d, want 2", len(app.Transactions))
	}

	salary := app.Transactions[0]
	if !salary.Date.Equal(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("date = %v", salary.Date)
	}
	if salary.CategoryPrimary != "INCOME" || salary.CategoryDetailed != "INCOME_WAGES" {
		t.Errorf("nested category = %q/%q", salary.CategoryPrimary, salary.CategoryDetailed)
	}

	groceries := app.Transactions[1]
	if groceries.Amount != 12.40 || groceries.Description != "TESCO STORES" || groceries.MerchantName != "Tesco" {
		t.Errorf("aliases not applied: %+v", groceries)
	}
	if groceries.CategoryDetailed != "FOOD_AND_DRINK_GROCERIES" {
		t.Errorf("flat category = %q", groceries.CategoryDetailed)
	}
}

func TestParseApplicationBareShapes(t *testing.T) {
	tests := []struct {
		name         string
		raw          string
		wantAccounts int
		wantTxns     int
	}{
		{
			name:     "transaction array",
			raw:      `[{"date": "2025-01-01", "amount": 5}, {"date": "2025-01-02", "amount": -10}]`,
			wantTxns: 2,
		},
		{
			name:         "account array with embedded transactions",
			raw:          `[{"account_id": "a", "balances": {"current": 10}, "transactions": [{"date": "2025-01-01", "amount": 5}]}, {"account_id": "b", "transactions": [{"date": "2025-01-03", "amount": 7}]}]`,
			wantAccounts: 2,
			wantTxns:     2,
		},
		{
			name: "empty array",
			raw:  `[]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, err := ParseApplication([]byte(tt.raw))
			if err != nil {
				t.Fatalf("ParseApplication() error = %v", err)
			}
			if len(app.Accounts) != tt.wantAccounts || len(app.Transactions) != tt.wantTxns {
				t.Errorf("got %d accounts, %d transactions", len(app.Accounts), len(app.Transactions))
			}
			if app.ID == "" {
				t.Error("expected a generated application id")
			}
		})
	}
}

func TestEmbeddedTransactionsInheritAccount(t *testing.T) {
	app, err := ParseApplication([]byte(`{"accounts": [{"account_id": "acc-9", "transactions": [{"date": "2025-01-01", "amount": 1}]}]}`))
	if err != nil {
		t.Fatalf("ParseApplication() error = %v", err)
	}
	if got := app.Transactions[0].AccountID; got != "acc-9" {
		t.Errorf("AccountID = %q, want acc-9", got)
	}
}

func TestParseApplicationErrors(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr error
	}{
		{"invalid json", `{"transactions": [`, ErrMalformedInput},
		{"missing amount", `[{"date": "2025-01-01"}]`, ErrMalformedInput},
		{"bad date", `[{"date": "01/02/2025", "amount": 1}]`, ErrMalformedInput},
		{"amount wrong type", `{"transactions": [{"date": "2025-01-01", "amount": true}]}`, ErrMalformedInput},
		{"scalar", `42`, ErrUnrecognizedStructure},
		{"object without data", `{"foo": 1}`, ErrUnrecognizedStructure},
		{"array of strings", `["a", "b"]`, ErrUnrecognizedStructure},
		{"array of unknown objects", `[{"foo": 1}]`, ErrUnrecognizedStructure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseApplication([]byte(tt.raw))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestMalformedTransactionReportsIndex(t *testing.T) {
	_, err := ParseApplication([]byte(`[{"date": "2025-01-01", "amount": 1}, {"date": "2025-01-02", "amount": 2}, {"amount": 3}]`))
	if err == nil {
		t.Fatal("expected error")
	}
	if want := "transaction 2"; !strings.Contains(err.Error(), want) {
		t.Errorf("error %q does not mention %q", err, want)
	}
}

func TestApplyDefaults(t *testing.T) {
	app, err := ParseApplication([]byte(`[{"date": "2025-01-01", "amount": 1}]`))
	if err != nil {
		t.Fatalf("ParseApplication() error = %v", err)
	}
	ApplyDefaults(&app, 500, 4)
	if app.RequestedAmount != 500 || app.RequestedTerm != 4 {
		t.Errorf("defaults = %v/%d, want 500/4", app.RequestedAmount, app.RequestedTerm)
	}

	app.RequestedAmount, app.RequestedTerm = 250, 2
	ApplyDefaults(&app, 500, 4)
	if app.RequestedAmount != 250 || app.RequestedTerm != 2 {
		t.Errorf("explicit values overwritten: %v/%d", app.RequestedAmount, app.RequestedTerm)
	}
}


func TestParseApplicationWithFallbackID(t *testing.T) {
	app, err := ParseApplicationWithFallbackID([]byte(`[{"date": "2025-01-01", "amount": 1}]`), "statement-7")
	if err != nil {
		t.Fatalf("ParseApplicationWithFallbackID() error = %v", err)
	}
	if app.ID != "statement-7" {
		t.Errorf("ID = %q, want statement-7", app.ID)
	}

	app, err = ParseApplicationWithFallbackID([]byte(`{"application_id": "app-9", "transactions": []}`), "statement-7")
	if err != nil {
		t.Fatalf("ParseApplicationWithFallbackID() error = %v", err)
	}
	if app.ID != "app-9" {
		t.Errorf("ID = %q, want the payload id", app.ID)
	}
}
