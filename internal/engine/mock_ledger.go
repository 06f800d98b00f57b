package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/LunNova/import-ynab/internal/model"
	"github.com/LunNova/import-ynab/internal/ynab"
)

// MockLedger is a mock implementation of Ledger for testing.
type MockLedger struct {
	// Functions that can be set by tests to control behavior
	GetBudgetFn          func(ctx context.Context, budgetID string) (*ynab.Budget, error)
	ListAccountsFn       func(ctx context.Context, budgetID string) ([]ynab.Account, error)
	GetAccountFn         func(ctx context.Context, budgetID, accountID string) (*ynab.Account, error)
	ImportTransactionsFn func(ctx context.Context, budgetID, accountID string, transactions []model.Transaction) error

	// Call tracking
	ImportCalls []ImportCall
}

// ImportCall records the parameters of an ImportTransactions call.
type ImportCall struct {
	BudgetID     string
	AccountID    string
	Transactions []model.Transaction
}

// NewMockLedger creates a new mock ledger.
func NewMockLedger() *MockLedger {
	return &MockLedger{}
}

// GetBudget implements Ledger.GetBudget.
func (m *MockLedger) GetBudget(ctx context.Context, budgetID string) (*ynab.Budget, error) {
	if m.GetBudgetFn != nil {
		return m.GetBudgetFn(ctx, budgetID)
	}
	return &ynab.Budget{ID: budgetID, CurrencyFormat: ynab.CurrencyFormat{ISOCode: "EUR"}}, nil
}

// ListAccounts implements Ledger.ListAccounts.
func (m *MockLedger) ListAccounts(ctx context.Context, budgetID string) ([]ynab.Account, error) {
	if m.ListAccountsFn != nil {
		return m.ListAccountsFn(ctx, budgetID)
	}
	return []ynab.Account{}, nil
}

// GetAccount implements Ledger.GetAccount.
func (m *MockLedger) GetAccount(ctx context.Context, budgetID, accountID string) (*ynab.Account, error) {
	if m.GetAccountFn != nil {
		return m.GetAccountFn(ctx, budgetID, accountID)
	}
	return &ynab.Account{ID: accountID}, nil
}

// ImportTransactions implements Ledger.ImportTransactions.
func (m *MockLedger) ImportTransactions(ctx context.Context, budgetID, accountID string, transactions []model.Transaction) error {
	m.ImportCalls = append(m.ImportCalls, ImportCall{
		BudgetID:     budgetID,
		AccountID:    accountID,
		Transactions: transactions,
	})
	if m.ImportTransactionsFn != nil {
		return m.ImportTransactionsFn(ctx, budgetID, accountID, transactions)
	}
	return nil
}

// StaticRates is a fixed-rate RateSource for tests, keyed by "SRC->DST"
// (upper case). Same-currency lookups always return 1.0; anything else not
// in the map returns Err.
type StaticRates struct {
	Err   error
	Rates map[string]float64
}

// Rate implements RateSource.
func (s *StaticRates) Rate(_ time.Time, source, dest string) (float64, error) {
	if strings.EqualFold(source, dest) {
		return 1.0, nil
	}
	key := fmt.Sprintf("%s->%s", strings.ToUpper(source), strings.ToUpper(dest))
	if rate, ok := s.Rates[key]; ok {
		return rate, nil
	}
	if s.Err != nil {
		return 0, s.Err
	}
	return 0, fmt.Errorf("no static rate for %s", key)
}
