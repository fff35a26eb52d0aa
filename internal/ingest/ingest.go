// Package ingest normalises raw bank-data payloads into applications.
package ingest

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dvloznov/hcstc-decisioning/internal/domain"
)

var (
	// ErrMalformedInput marks payloads that cannot be decoded or that lack a
	// required transaction field.
	ErrMalformedInput = errors.New("malformed input")
	// ErrUnrecognizedStructure marks JSON that is neither a transaction list
	// nor an account list.
	ErrUnrecognizedStructure = errors.New("unrecognized structure")
)

var dateLayouts = []string{"2006-01-02", time.RFC3339, "2006-01-02T15:04:05"}

// ParseApplication accepts an application object
// ({"application_id", "requested_amount", "requested_term", "accounts", "transactions"}),
// a bare transaction array, or an account array whose entries embed their
// transactions. A missing application id is generated.
func ParseApplication(raw []byte) (domain.Application, error) {
	return ParseApplicationWithFallbackID(raw, "")
}

// ParseApplicationWithFallbackID is ParseApplication, using fallbackID
// rather than a random id when the payload carries none.
func ParseApplicationWithFallbackID(raw []byte, fallbackID string) (domain.Application, error) {
	var payload interface{}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return domain.Application{}, fmt.Errorf("ParseApplication: %w: %v", ErrMalformedInput, err)
	}

	var (
		app domain.Application
		err error
	)
	switch v := payload.(type) {
	case map[string]interface{}:
		app, err = parseObject(v)
	case []interface{}:
		app, err = parseArray(v)
	default:
		err = fmt.Errorf("%w: top-level JSON is %T", ErrUnrecognizedStructure, payload)
	}
	if err != nil {
		return domain.Application{}, fmt.Errorf("ParseApplication: %w", err)
	}
	if app.ID == "" {
		app.ID = fallbackID
	}
	if app.ID == "" {
		app.ID = uuid.NewString()
	}
	return app, nil
}

// ApplyDefaults fills in the requested loan when the payload did not carry
// one.
func ApplyDefaults(app *domain.Application, amount float64, term int) {
	if app.RequestedAmount <= 0 {
		app.RequestedAmount = amount
	}
	if app.RequestedTerm <= 0 {
		app.RequestedTerm = term
	}
}

func parseObject(obj map[string]interface{}) (domain.Application, error) {
	var app domain.Application
	var err error

	if app.ID, err = getStringField(obj, false, "application_id", "id"); err != nil {
		return app, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}
	if app.RequestedAmount, err = getFloat64Field(obj, false, "requested_amount", "loan_amount"); err != nil {
		return app, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}
	if app.RequestedTerm, err = getIntField(obj, "requested_term", "loan_term"); err != nil {
		return app, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}

	accounts, hasAccounts := getArrayField(obj, "accounts")
	txns, hasTxns := getArrayField(obj, "transactions")
	if !hasAccounts && !hasTxns {
		return app, fmt.Errorf("%w: object has neither \"transactions\" nor \"accounts\"", ErrUnrecognizedStructure)
	}

	if hasAccounts {
		accs, embedded, err := parseAccounts(accounts)
		if err != nil {
			return app, err
		}
		app.Accounts = accs
		app.Transactions = embedded
	}
	if hasTxns {
		parsed, err := parseTransactions(txns, len(app.Transactions))
		if err != nil {
			return app, err
		}
		app.Transactions = append(app.Transactions, parsed...)
	}
	return app, nil
}

func parseArray(arr []interface{}) (domain.Application, error) {
	var app domain.Application
	if len(arr) == 0 {
		return app, nil
	}
	first, ok := arr[0].(map[string]interface{})
	if !ok {
		return app, fmt.Errorf("%w: array element 0 is %T, want object", ErrUnrecognizedStructure, arr[0])
	}

	switch {
	case looksLikeTransaction(first):
		txns, err := parseTransactions(arr, 0)
		if err != nil {
			return app, err
		}
		app.Transactions = txns
	case looksLikeAccount(first):
		accs, txns, err := parseAccounts(arr)
		if err != nil {
			return app, err
		}
		app.Accounts = accs
		app.Transactions = txns
	default:
		return app, fmt.Errorf("%w: array elements are neither transactions nor accounts", ErrUnrecognizedStructure)
	}
	return app, nil
}

func looksLikeTransaction(m map[string]interface{}) bool {
	_, ok := firstPresent(m, "amount", "date", "transaction_id")
	return ok
}

func looksLikeAccount(m map[string]interface{}) bool {
	_, ok := firstPresent(m, "account_id", "balances", "transactions")
	return ok
}

func parseAccounts(arr []interface{}) ([]domain.Account, []domain.Transaction, error) {
	accounts := make([]domain.Account, 0, len(arr))
	var txns []domain.Transaction

	for i, item := range arr {
		obj, ok := item.(map[string]interface{})
		if !ok {
			return nil, nil, fmt.Errorf("%w: account %d is %T, want object", ErrUnrecognizedStructure, i, item)
		}
		acc, err := parseAccount(obj)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: account %d: %v", ErrMalformedInput, i, err)
		}
		accounts = append(accounts, acc)

		if embedded, ok := getArrayField(obj, "transactions"); ok {
			parsed, err := parseTransactions(embedded, len(txns))
			if err != nil {
				return nil, nil, err
			}
			for j := range parsed {
				if parsed[j].AccountID == "" {
					parsed[j].AccountID = acc.ID
				}
			}
			txns = append(txns, parsed...)
		}
	}
	return accounts, txns, nil
}

func parseAccount(obj map[string]interface{}) (domain.Account, error) {
	var acc domain.Account
	var err error
	if acc.ID, err = getStringField(obj, false, "account_id", "id"); err != nil {
		return acc, err
	}
	if acc.Name, err = getStringField(obj, false, "name", "official_name"); err != nil {
		return acc, err
	}

	balances := obj
	if nested, ok := getObjectField(obj, "balances"); ok {
		balances = nested
	}
	if acc.CurrentBalance, err = getOptionalFloat64Field(balances, "current", "current_balance"); err != nil {
		return acc, err
	}
	if acc.AvailableBalance, err = getOptionalFloat64Field(balances, "available", "available_balance"); err != nil {
		return acc, err
	}
	return acc, nil
}

// parseTransactions decodes a transaction array. offset shifts the index
// reported in errors so it matches the application's full list.
func parseTransactions(arr []interface{}, offset int) ([]domain.Transaction, error) {
	out := make([]domain.Transaction, 0, len(arr))
	for i, item := range arr {
		obj, ok := item.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("%w: transaction %d is %T, want object", ErrMalformedInput, offset+i, item)
		}
		t, err := parseTransaction(obj)
		if err != nil {
			return nil, fmt.Errorf("%w: transaction %d: %v", ErrMalformedInput, offset+i, err)
		}
		out = append(out, t)
	}
	return out, nil
}

func parseTransaction(obj map[string]interface{}) (domain.Transaction, error) {
	var t domain.Transaction

	dateStr, err := getStringField(obj, true, "date")
	if err != nil {
		return t, err
	}
	if t.Date, err = parseDate(dateStr); err != nil {
		return t, err
	}
	if t.Amount, err = getFloat64Field(obj, true, "amount"); err != nil {
		return t, err
	}
	if t.Description, err = getStringField(obj, false, "name", "description"); err != nil {
		return t, err
	}
	if t.MerchantName, err = getStringField(obj, false, "merchant_name", "merchant"); err != nil {
		return t, err
	}
	if t.AccountID, err = getStringField(obj, false, "account_id"); err != nil {
		return t, err
	}

	if pfc, ok := getObjectField(obj, "personal_finance_category"); ok {
		if t.CategoryPrimary, err = getStringField(pfc, false, "primary"); err != nil {
			return t, err
		}
		if t.CategoryDetailed, err = getStringField(pfc, false, "detailed"); err != nil {
			return t, err
		}
	} else {
		if t.CategoryPrimary, err = getStringField(obj, false, "category_primary"); err != nil {
			return t, err
		}
		if t.CategoryDetailed, err = getStringField(obj, false, "category_detailed"); err != nil {
			return t, err
		}
	}
	return t, nil
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, s); err == nil {
			return domain.DateOnly(d), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}
