package domain

import (
	"strings"
	"time"
)

// Transaction represents one normalized bank transaction.
// Amounts follow the open-banking export convention: negative = money in
// (credit), positive = money out (debit).
type Transaction struct {
	Date             time.Time // calendar date, time of day ignored
	Description      string    // free-text bank narrative
	Amount           float64   // signed; negative is a credit
	MerchantName     string    // optional
	CategoryPrimary  string    // optional external category, e.g. INCOME
	CategoryDetailed string    // optional external category, e.g. INCOME_WAGES
	AccountID        string    // optional
}

// IsCredit reports whether the transaction brings money into the account.
func (t Transaction) IsCredit() bool {
	return t.Amount < 0
}

// Magnitude returns the absolute amount.
func (t Transaction) Magnitude() float64 {
	if t.Amount < 0 {
		return -t.Amount
	}
	return t.Amount
}

// Text returns the upper-cased description and merchant name joined for
// pattern matching.
func (t Transaction) Text() string {
	desc := strings.ToUpper(strings.TrimSpace(t.Description))
	merchant := strings.ToUpper(strings.TrimSpace(t.MerchantName))
	if merchant == "" || strings.Contains(desc, merchant) {
		return desc
	}
	if desc == "" {
		return merchant
	}
	return desc + " " + merchant
}

// Day truncates the transaction date to midnight UTC.
func (t Transaction) Day() time.Time {
	return DateOnly(t.Date)
}

// DateOnly truncates a time to its calendar date in UTC.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Account is a balance snapshot for one bank account.
type Account struct {
	ID               string
	Name             string
	CurrentBalance   *float64
	AvailableBalance *float64
}

// SeedBalance returns the balance used to start balance reconstruction.
// The current balance wins; available is the fallback.
func (a Account) SeedBalance() (float64, bool) {
	if a.CurrentBalance != nil {
		return *a.CurrentBalance, true
	}
	if a.AvailableBalance != nil {
		return *a.AvailableBalance, true
	}
	return 0, false
}

// Application is one loan application: bank data plus the requested loan.
type Application struct {
	ID              string
	Accounts        []Account
	Transactions    []Transaction
	RequestedAmount float64
	RequestedTerm   int
}
