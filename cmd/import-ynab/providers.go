package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/LunNova/import-ynab/internal/config"
	"github.com/LunNova/import-ynab/internal/plaid"
	"github.com/LunNova/import-ynab/internal/revolut"
	"github.com/LunNova/import-ynab/internal/truelayer"
)

func providersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "providers",
		Short: "Manage provider connections",
	}
	cmd.AddCommand(providersListCmd())
	cmd.AddCommand(providersTestCmd())
	cmd.AddCommand(addTrueLayerCmd())
	cmd.AddCommand(addRevolutCmd())
	cmd.AddCommand(addPlaidCmd())
	cmd.AddCommand(addOFXCmd())
	return cmd
}

func providersListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved provider connections",
		RunE: func(cmd *cobra.Command, _ []string) error {
			providers, err := secretsStore().LoadProviders()
			if err != nil {
				return err
			}
			if len(providers) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No providers configured.")
				return nil
			}
			for i := range providers {
				fmt.Fprintf(cmd.OutOrStdout(), "%d. [%s] %s\n", i+1, providers[i].Type, providers[i].DisplayName())
			}
			return nil
		},
	}
}

// providersTestCmd connects every saved provider and lists its accounts,
// without touching the ledger. Useful after adding a connection.
func providersTestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "test",
		Short: "Connect each saved provider and list its accounts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store := secretsStore()

			ynabCfg, err := store.LoadYNAB()
			if err != nil {
				return err
			}
			providers, err := store.LoadProviders()
			if err != nil {
				return err
			}
			if len(providers) == 0 {
				return fmt.Errorf("no providers configured")
			}

			for _, source := range buildSources(store, ynabCfg, providers) {
				connected, err := source.Connect(ctx)
				if err != nil {
					fmt.Fprintf(cmd.OutOrStdout(), "%s: connection failed: %v\n", source.Name(), err)
					continue
				}
				accounts, err := connected.GetAccounts(ctx)
				if err != nil {
					fmt.Fprintf(cmd.OutOrStdout(), "%s: failed to list accounts: %v\n", connected.Name(), err)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d accounts\n", connected.Name(), len(accounts))
				for _, account := range accounts {
					fmt.Fprintf(cmd.OutOrStdout(), "  %s  %s  %s  %.3f\n",
						account.ID, account.DisplayName, account.Currency, float64(account.Balance)/1000.0)
				}
			}
			return nil
		},
	}
}

// addTrueLayerCmd runs the two-step consent flow: without --code it prints
// the consent URL, with --code it exchanges the code and saves the token.
func addTrueLayerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add-truelayer",
		Short: "Link a bank through TrueLayer",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store := secretsStore()
			ynabCfg, err := store.LoadYNAB()
			if err != nil {
				return err
			}
			if ynabCfg.TrueLayerClientID == "" || ynabCfg.TrueLayerClientSecret == "" {
				return fmt.Errorf("TrueLayer client credentials missing; run 'import-ynab ynab set' with --truelayer-client-id and --truelayer-client-secret")
			}
			creds := truelayer.Credentials{
				ClientID:     ynabCfg.TrueLayerClientID,
				ClientSecret: ynabCfg.TrueLayerClientSecret,
			}

			code, _ := cmd.Flags().GetString("code")
			if code == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "Visit the URL below, grant consent, then re-run with --code <code>:")
				fmt.Fprintln(cmd.OutOrStdout(), truelayer.AuthCodeURL(creds))
				return nil
			}

			token, err := truelayer.Authorize(cmd.Context(), creds, code)
			if err != nil {
				return err
			}
			return appendProvider(store, config.Provider{Type: config.TypeTrueLayer, TrueLayer: token})
		},
	}
	cmd.Flags().String("code", "", "consent code from the redirect page")
	return cmd
}

func addRevolutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add-revolut",
		Short: "Link a Revolut account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			token := revolut.Token{DisplayName: "Revolut"}
			token.Username, _ = cmd.Flags().GetString("username")
			token.Password, _ = cmd.Flags().GetString("password")
			token.DeviceID, _ = cmd.Flags().GetString("device-id")
			if token.Username == "" || token.Password == "" || token.DeviceID == "" {
				return fmt.Errorf("--username, --password, and --device-id are all required")
			}
			return appendProvider(secretsStore(), config.Provider{Type: config.TypeRevolut, Revolut: &token})
		},
	}
	cmd.Flags().String("username", "", "Revolut user id")
	cmd.Flags().String("password", "", "Revolut passcode")
	cmd.Flags().String("device-id", "", "device id registered with the app")
	return cmd
}

func addPlaidCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add-plaid",
		Short: "Link an institution through Plaid",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var cfg plaid.Config
			cfg.ClientID, _ = cmd.Flags().GetString("client-id")
			cfg.Secret, _ = cmd.Flags().GetString("secret")
			cfg.Environment, _ = cmd.Flags().GetString("environment")
			cfg.AccessToken, _ = cmd.Flags().GetString("access-token")
			if err := cfg.Validate(); err != nil {
				return err
			}
			return appendProvider(secretsStore(), config.Provider{Type: config.TypePlaid, Plaid: &cfg})
		},
	}
	cmd.Flags().String("client-id", "", "Plaid client id")
	cmd.Flags().String("secret", "", "Plaid secret")
	cmd.Flags().String("environment", "production", "Plaid environment (sandbox, production)")
	cmd.Flags().String("access-token", "", "item access token")
	return cmd
}

func addOFXCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add-ofx <file>",
		Short: "Add an OFX/QFX statement file as a provider",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return appendProvider(secretsStore(), config.Provider{Type: config.TypeOFX, OFXPath: args[0]})
		},
	}
}

func appendProvider(store *config.Store, entry config.Provider) error {
	providers, err := store.LoadProviders()
	if err != nil {
		return err
	}
	return store.SaveProviders(append(providers, entry))
}
