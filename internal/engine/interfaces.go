package engine

import (
	"context"
	"time"

	"github.com/LunNova/import-ynab/internal/model"
	"github.com/LunNova/import-ynab/internal/provider"
	"github.com/LunNova/import-ynab/internal/ynab"
)

// Ledger is the subset of the budgeting service the sync engine needs.
type Ledger interface {
	GetBudget(ctx context.Context, budgetID string) (*ynab.Budget, error)
	ListAccounts(ctx context.Context, budgetID string) ([]ynab.Account, error)
	GetAccount(ctx context.Context, budgetID, accountID string) (*ynab.Account, error)
	ImportTransactions(ctx context.Context, budgetID, accountID string, transactions []model.Transaction) error
}

// RateSource answers historical currency conversion queries.
type RateSource interface {
	Rate(date time.Time, source, dest string) (float64, error)
}

// ProviderSource lazily connects one configured provider. Connection failures
// are non-fatal to a run; the orchestrator logs them and moves on.
type ProviderSource interface {
	Name() string
	Connect(ctx context.Context) (provider.Connected, error)
}

// ProgressReporter receives per-account progress updates during a run.
// *progressbar.ProgressBar satisfies it.
type ProgressReporter interface {
	Describe(description string)
	Add(num int) error
}
