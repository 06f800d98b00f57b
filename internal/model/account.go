// Package model defines the core types shared between providers and the sync engine.
package model

// AccountType distinguishes bank accounts from cards. Card balances and
// transactions arrive sign-flipped from most providers.
type AccountType string

const (
	// TypeAccount is a regular asset account (checking, savings, wallet pocket).
	TypeAccount AccountType = "account"
	// TypeCard is a credit card; providers report card balances as amounts owed.
	TypeCard AccountType = "card"
)

// Account is a provider-side account as seen during one sync run.
// Balance is in milli-units of the account's own currency (1 unit = 1000).
type Account struct {
	ID          string
	Currency    string
	DisplayName string
	Type        AccountType
	Balance     int64
}
