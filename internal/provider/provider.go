// Package provider defines the contract financial-account providers implement.
package provider

import (
	"context"

	"github.com/LunNova/import-ynab/internal/model"
)

// Connected is an authenticated session with one financial-account provider.
// Implementations normalize their native records into model values, including
// provider-specific shaping such as card sign flips and payee inference, so
// the sync engine never sees provider wire formats.
type Connected interface {
	// Name identifies the connection in logs and errors.
	Name() string
	// GetAccounts lists the provider's accounts with current balances in
	// milli-units of each account's own currency.
	GetAccounts(ctx context.Context) ([]model.Account, error)
	// GetTransactions returns the normalized transactions for one account,
	// in the provider's returned order.
	GetTransactions(ctx context.Context, account model.Account) ([]model.Transaction, error)
}
