package main

import (
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/LunNova/import-ynab/internal/currency"
	"github.com/LunNova/import-ynab/internal/engine"
	"github.com/LunNova/import-ynab/internal/ynab"
)

func syncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Import transactions from all configured providers and reconcile balances",
		RunE:  runSync,
	}
	cmd.Flags().String("rates-url", currency.DefaultDatasetURL, "exchange rate dataset URL")
	cmd.Flags().Bool("no-progress", false, "disable the progress bar")
	return cmd
}

func runSync(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	store := secretsStore()

	ynabCfg, err := store.LoadYNAB()
	if err != nil {
		return err
	}
	if ynabCfg.AccessToken == "" || ynabCfg.BudgetID == "" {
		return fmt.Errorf("YNAB is not configured; run 'import-ynab ynab set' first")
	}

	providers, err := store.LoadProviders()
	if err != nil {
		return err
	}
	if len(providers) == 0 {
		return fmt.Errorf("no providers configured; run 'import-ynab providers add-...' first")
	}

	ratesURL, _ := cmd.Flags().GetString("rates-url")
	rates, err := currency.NewLoader(ratesURL).Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load exchange rates: %w", err)
	}

	syncer := engine.New(
		ynab.NewClient(ynabCfg.AccessToken),
		rates,
		ynabCfg.BudgetID,
		buildSources(store, ynabCfg, providers),
	)

	if noProgress, _ := cmd.Flags().GetBool("no-progress"); !noProgress {
		syncer.SetProgress(progressbar.NewOptions(-1,
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionSetDescription("Syncing accounts"),
		))
	}

	stats, err := syncer.Run(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(),
		"Synced %d accounts (%d skipped) from %d providers (%d failed): %d transactions imported, %d corrections posted\n",
		stats.AccountsSynced, stats.AccountsSkipped,
		stats.ProvidersConnected, stats.ProvidersFailed,
		stats.TransactionsImported, stats.Reconciliations)
	return nil
}
