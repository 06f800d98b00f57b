package provider

import (
	"context"

	"github.com/LunNova/import-ynab/internal/model"
)

// Mock is a mock implementation of Connected for testing.
type Mock struct {
	// Functions that can be set by tests to control behavior
	GetAccountsFn     func(ctx context.Context) ([]model.Account, error)
	GetTransactionsFn func(ctx context.Context, account model.Account) ([]model.Transaction, error)

	NameValue string

	// Call tracking
	GetTransactionsCalls []model.Account
	GetAccountsCalls     int
}

// NewMock creates a new mock provider.
func NewMock(name string) *Mock {
	return &Mock{NameValue: name}
}

// Name implements Connected.Name.
func (m *Mock) Name() string {
	if m.NameValue == "" {
		return "mock"
	}
	return m.NameValue
}

// GetAccounts implements Connected.GetAccounts.
func (m *Mock) GetAccounts(ctx context.Context) ([]model.Account, error) {
	m.GetAccountsCalls++

	if m.GetAccountsFn != nil {
		return m.GetAccountsFn(ctx)
	}
	return []model.Account{}, nil
}

// GetTransactions implements Connected.GetTransactions.
func (m *Mock) GetTransactions(ctx context.Context, account model.Account) ([]model.Transaction, error) {
	m.GetTransactionsCalls = append(m.GetTransactionsCalls, account)

	if m.GetTransactionsFn != nil {
		return m.GetTransactionsFn(ctx, account)
	}
	return []model.Transaction{}, nil
}
