package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/LunNova/import-ynab/internal/engine"
	"github.com/LunNova/import-ynab/internal/ynab"
)

func ynabCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ynab",
		Short: "Manage the YNAB connection",
	}
	cmd.AddCommand(ynabSetCmd())
	cmd.AddCommand(ynabTestCmd())
	return cmd
}

func ynabSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Save YNAB credentials and the target budget",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store := secretsStore()
			cfg, err := store.LoadYNAB()
			if err != nil {
				return err
			}

			// Only overwrite fields the caller passed.
			if v, _ := cmd.Flags().GetString("access-token"); v != "" {
				cfg.AccessToken = v
			}
			if v, _ := cmd.Flags().GetString("budget-id"); v != "" {
				cfg.BudgetID = v
			}
			if v, _ := cmd.Flags().GetString("truelayer-client-id"); v != "" {
				cfg.TrueLayerClientID = v
			}
			if v, _ := cmd.Flags().GetString("truelayer-client-secret"); v != "" {
				cfg.TrueLayerClientSecret = v
			}

			if cfg.AccessToken == "" || cfg.BudgetID == "" {
				return fmt.Errorf("--access-token and --budget-id are required")
			}
			return store.SaveYNAB(cfg)
		},
	}
	cmd.Flags().String("access-token", "", "YNAB personal access token")
	cmd.Flags().String("budget-id", "", "budget to sync into")
	cmd.Flags().String("truelayer-client-id", "", "TrueLayer OAuth client id")
	cmd.Flags().String("truelayer-client-secret", "", "TrueLayer OAuth client secret")
	return cmd
}

// ynabTestCmd fetches the budget and lists its accounts, flagging which ones
// carry a provider binding in their note.
func ynabTestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "test",
		Short: "Verify the YNAB connection and show account bindings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, err := secretsStore().LoadYNAB()
			if err != nil {
				return err
			}
			if cfg.AccessToken == "" || cfg.BudgetID == "" {
				return fmt.Errorf("YNAB is not configured; run 'import-ynab ynab set' first")
			}

			client := ynab.NewClient(cfg.AccessToken)
			budget, err := client.GetBudget(ctx, cfg.BudgetID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Budget: %s (%s)\n", budget.Name, budget.CurrencyFormat.ISOCode)

			accounts, err := client.ListAccounts(ctx, cfg.BudgetID)
			if err != nil {
				return err
			}
			for _, account := range accounts {
				binding := "-"
				if id, ok := engine.ExtractAccountID(account.Note); ok {
					binding = id
				}
				fmt.Fprintf(cmd.OutOrStdout(), "  %s  %s  bound=%s\n", account.ID, account.Name, binding)
			}
			return nil
		},
	}
}
