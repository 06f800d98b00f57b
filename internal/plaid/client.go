// Package plaid implements the Plaid aggregator provider. One access token
// covers one linked institution; depository accounts map to asset accounts
// and credit accounts to cards with owed balances negated.
package plaid

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/plaid/plaid-go/v20/plaid"

	"github.com/LunNova/import-ynab/internal/common"
	"github.com/LunNova/import-ynab/internal/model"
)

// Config holds Plaid API configuration.
type Config struct {
	ClientID    string `json:"client_id"`
	Secret      string `json:"secret"`
	Environment string `json:"environment"` // sandbox or production
	AccessToken string `json:"access_token"`
}

// Validate ensures all required fields are present.
func (c *Config) Validate() error {
	if c.ClientID == "" {
		return fmt.Errorf("plaid client ID is required")
	}
	if c.Secret == "" {
		return fmt.Errorf("plaid secret is required")
	}
	if c.AccessToken == "" {
		return fmt.Errorf("plaid access token is required")
	}
	switch c.Environment {
	case "sandbox", "production":
		return nil
	default:
		return fmt.Errorf("invalid Plaid environment: must be sandbox or production")
	}
}

// transactionWindowDays bounds each sync's transaction fetch.
const transactionWindowDays = 30

// Client is an authenticated Plaid session implementing provider.Connected.
type Client struct {
	client      *plaid.APIClient
	logger      *slog.Logger
	accessToken string
	retryOpts   common.RetryOptions
}

// NewClient creates a new Plaid client with the given configuration.
func NewClient(cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	configuration := plaid.NewConfiguration()
	configuration.AddDefaultHeader("PLAID-CLIENT-ID", cfg.ClientID)
	configuration.AddDefaultHeader("PLAID-SECRET", cfg.Secret)

	switch cfg.Environment {
	case "sandbox":
		configuration.UseEnvironment(plaid.Sandbox)
	case "production":
		configuration.UseEnvironment(plaid.Production)
	}

	return &Client{
		client:      plaid.NewAPIClient(configuration),
		accessToken: cfg.AccessToken,
		logger:      slog.Default().With("component", "plaid"),
		retryOpts: common.RetryOptions{
			MaxAttempts:  3,
			InitialDelay: 1 * time.Second,
			MaxDelay:     30 * time.Second,
			Multiplier:   2.0,
		},
	}, nil
}

// Name implements provider.Connected.
func (c *Client) Name() string {
	return "plaid"
}

// GetAccounts implements provider.Connected.
func (c *Client) GetAccounts(ctx context.Context) ([]model.Account, error) {
	var accounts []plaid.AccountBase
	retryErr := common.WithRetry(ctx, func() error {
		request := plaid.NewAccountsGetRequest(c.accessToken)
		resp, _, err := c.client.PlaidApi.AccountsGet(ctx).AccountsGetRequest(*request).Execute()
		if err != nil {
			return c.wrapError(err, "failed to fetch accounts")
		}
		accounts = resp.GetAccounts()
		return nil
	}, c.retryOpts)
	if retryErr != nil {
		return nil, retryErr
	}

	converted := make([]model.Account, 0, len(accounts))
	for _, acc := range accounts {
		balances := acc.GetBalances()
		currency := balances.GetIsoCurrencyCode()
		if currency == "" {
			currency = balances.GetUnofficialCurrencyCode()
		}
		balance := int64(math.Round(balances.GetCurrent() * 1000.0))

		accountType := model.TypeAccount
		if acc.GetType() == plaid.ACCOUNTTYPE_CREDIT {
			// Plaid reports credit balances as amounts owed.
			accountType = model.TypeCard
			balance = -balance
		}

		converted = append(converted, model.Account{
			ID:          acc.GetAccountId(),
			Currency:    currency,
			DisplayName: acc.GetName(),
			Type:        accountType,
			Balance:     balance,
		})
	}

	c.logger.Info("Fetched accounts", "count", len(converted))
	return converted, nil
}

// GetTransactions implements provider.Connected. Plaid reports amounts
// debit-positive, the opposite of the engine's inflow-positive convention,
// so every amount is negated.
func (c *Client) GetTransactions(ctx context.Context, account model.Account) ([]model.Transaction, error) {
	endDate := time.Now()
	startDate := endDate.AddDate(0, 0, -transactionWindowDays)

	var all []plaid.Transaction
	offset := int32(0)
	const pageSize = int32(500) // Plaid's max page size

	for {
		var page []plaid.Transaction
		var total int32

		retryErr := common.WithRetry(ctx, func() error {
			request := plaid.NewTransactionsGetRequest(
				c.accessToken,
				startDate.Format("2006-01-02"),
				endDate.Format("2006-01-02"),
			)
			options := plaid.TransactionsGetRequestOptions{
				AccountIds: &[]string{account.ID},
				Count:      plaid.PtrInt32(pageSize),
				Offset:     plaid.PtrInt32(offset),
			}
			request.SetOptions(options)

			resp, _, err := c.client.PlaidApi.TransactionsGet(ctx).TransactionsGetRequest(*request).Execute()
			if err != nil {
				return c.wrapError(err, "failed to fetch transactions")
			}
			page = resp.GetTransactions()
			total = resp.GetTotalTransactions()
			return nil
		}, c.retryOpts)
		if retryErr != nil {
			return nil, retryErr
		}

		all = append(all, page...)
		c.logger.Debug("Fetched transaction batch",
			"count", len(page),
			"offset", offset,
			"total", total)

		if len(page) < int(pageSize) {
			break
		}
		offset += pageSize
	}

	transactions := make([]model.Transaction, 0, len(all))
	for _, pt := range all {
		if pt.GetPending() {
			continue
		}

		date, err := time.Parse("2006-01-02", pt.GetDate())
		if err != nil {
			return nil, fmt.Errorf("failed to parse transaction date %q: %w", pt.GetDate(), err)
		}

		payee := pt.GetMerchantName()
		if payee == "" {
			payee = pt.GetName()
		}

		transactions = append(transactions, model.Transaction{
			ID:          pt.GetTransactionId(),
			Timestamp:   date,
			Amount:      -int64(math.Round(pt.GetAmount() * 1000.0)),
			Description: pt.GetName(),
			PayeeName:   payee,
		})
	}

	return transactions, nil
}

func (c *Client) wrapError(err error, msg string) error {
	if plaidErr := extractPlaidError(err); plaidErr != nil {
		if plaidErr.ErrorCode == "RATE_LIMIT_EXCEEDED" {
			c.logger.Warn("Rate limit hit, will retry", "error", plaidErr.ErrorMessage)
			return &common.RetryableError{Err: err, Retryable: true}
		}
		return fmt.Errorf("plaid API error: %s - %s", plaidErr.ErrorCode, plaidErr.ErrorMessage)
	}
	return fmt.Errorf("%s: %w", msg, err)
}

func extractPlaidError(err error) *plaid.PlaidError {
	plaidErr, convErr := plaid.ToPlaidError(err)
	if convErr != nil {
		return nil
	}
	return &plaidErr
}
