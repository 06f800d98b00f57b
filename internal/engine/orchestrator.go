// Package engine implements the synchronization and reconciliation engine:
// account matching, currency conversion, transaction transformation, and
// post-import balance reconciliation.
package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/LunNova/import-ynab/internal/model"
)

// Syncer sequences one full sync run across all configured providers.
// The run is strictly sequential: providers in configuration order, accounts
// in provider order, reconciliation only after every import has finished.
type Syncer struct {
	ledger   Ledger
	rates    RateSource
	progress ProgressReporter
	logger   *slog.Logger
	budgetID string
	sources  []ProviderSource
}

// RunStats summarizes one sync run.
type RunStats struct {
	ProvidersConnected   int
	ProvidersFailed      int
	AccountsSynced       int
	AccountsSkipped      int
	TransactionsImported int
	Reconciliations      int
}

// New creates a sync orchestrator for one budget.
func New(ledger Ledger, rates RateSource, budgetID string, sources []ProviderSource) *Syncer {
	return &Syncer{
		ledger:   ledger,
		rates:    rates,
		budgetID: budgetID,
		sources:  sources,
		logger:   slog.Default().With("component", "engine"),
	}
}

// SetProgress attaches an optional progress reporter updated per synced
// account.
func (s *Syncer) SetProgress(progress ProgressReporter) {
	s.progress = progress
}

// visitedAccount pairs a provider account with the ledger account it was
// imported into, for the reconciliation pass.
type visitedAccount struct {
	ledgerAccountID string
	account         model.Account
}

// Run executes one complete sync pass.
//
// Provider connection failures are logged and skipped; every error after a
// successful connect aborts the run. Chunks already imported stay imported,
// and import ids keep reruns idempotent.
func (s *Syncer) Run(ctx context.Context) (*RunStats, error) {
	stats := &RunStats{}

	budget, err := s.ledger.GetBudget(ctx, s.budgetID)
	if err != nil {
		return stats, fmt.Errorf("failed to fetch budget: %w", err)
	}
	budgetCurrency := budget.CurrencyFormat.ISOCode

	ledgerAccounts, err := s.ledger.ListAccounts(ctx, s.budgetID)
	if err != nil {
		return stats, fmt.Errorf("failed to list ledger accounts: %w", err)
	}

	index := BuildAccountIndex(ledgerAccounts)
	s.logger.Info("Starting sync run",
		"budget_id", s.budgetID,
		"budget_currency", budgetCurrency,
		"bound_accounts", len(index),
		"providers", len(s.sources))

	transformer := NewTransformer(s.rates, budgetCurrency, index)
	var visited []visitedAccount

	for _, source := range s.sources {
		connected, err := source.Connect(ctx)
		if err != nil {
			s.logger.Warn("Provider connection failed, skipping",
				"provider", source.Name(),
				"error", err)
			stats.ProvidersFailed++
			continue
		}
		stats.ProvidersConnected++
		s.logger.Info("Connected provider", "provider", connected.Name())

		accounts, err := connected.GetAccounts(ctx)
		if err != nil {
			return stats, fmt.Errorf("provider %s: failed to fetch accounts: %w", connected.Name(), err)
		}

		for _, account := range accounts {
			ledgerAccount, ok := index[account.ID]
			if !ok {
				s.logger.Debug("No ledger binding for provider account, skipping",
					"provider", connected.Name(),
					"account_id", account.ID,
					"display_name", account.DisplayName)
				stats.AccountsSkipped++
				continue
			}

			if s.progress != nil {
				s.progress.Describe(fmt.Sprintf("Syncing %s", account.DisplayName))
			}

			transactions, err := connected.GetTransactions(ctx, account)
			if err != nil {
				return stats, fmt.Errorf("provider %s: failed to fetch transactions for %s: %w",
					connected.Name(), account.DisplayName, err)
			}

			transactions, err = transformer.Transform(account, transactions)
			if err != nil {
				return stats, fmt.Errorf("provider %s: %w", connected.Name(), err)
			}

			s.logger.Info("Importing transactions",
				"provider", connected.Name(),
				"account", account.DisplayName,
				"ledger_account", ledgerAccount.Name,
				"count", len(transactions))

			if err := s.ledger.ImportTransactions(ctx, s.budgetID, ledgerAccount.ID, transactions); err != nil {
				return stats, err
			}

			stats.AccountsSynced++
			stats.TransactionsImported += len(transactions)
			visited = append(visited, visitedAccount{
				account:         account,
				ledgerAccountID: ledgerAccount.ID,
			})
			if s.progress != nil {
				_ = s.progress.Add(1)
			}
		}
	}

	if err := s.reconcile(ctx, budgetCurrency, visited, stats); err != nil {
		return stats, err
	}

	s.logger.Info("Sync run complete",
		"accounts_synced", stats.AccountsSynced,
		"transactions_imported", stats.TransactionsImported,
		"reconciliations", stats.Reconciliations)

	return stats, nil
}

// reconcile runs after all imports so re-fetched ledger balances already
// include the transactions written this run. Only accounts actually visited
// during import are considered.
func (s *Syncer) reconcile(ctx context.Context, budgetCurrency string, visited []visitedAccount, stats *RunStats) error {
	reconciler := NewReconciler(s.rates)

	for _, v := range visited {
		ledgerAccount, err := s.ledger.GetAccount(ctx, s.budgetID, v.ledgerAccountID)
		if err != nil {
			return fmt.Errorf("failed to re-fetch ledger account %s: %w", v.ledgerAccountID, err)
		}

		expected, rate, err := reconciler.ExpectedBalance(v.account, budgetCurrency)
		if err != nil {
			return err
		}

		s.logger.Info("Checking balance",
			"ledger_account", ledgerAccount.Name,
			"ledger_balance", ledgerAccount.Balance,
			"expected_balance", expected)

		if !ShouldReconcile(ledgerAccount.Balance, expected) {
			continue
		}

		correction := reconciler.Correction(ledgerAccount.Balance, expected, v.account.Balance, rate)
		s.logger.Info("Posting reconciliation correction",
			"ledger_account", ledgerAccount.Name,
			"amount", correction.Amount,
			"memo", correction.Description)

		if err := s.ledger.ImportTransactions(ctx, s.budgetID, v.ledgerAccountID,
			[]model.Transaction{correction}); err != nil {
			return err
		}
		stats.Reconciliations++
	}

	return nil
}
