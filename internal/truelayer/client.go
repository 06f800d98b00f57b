// Package truelayer implements the TrueLayer open-banking provider: regular
// accounts and cards, with card balances and transactions sign-flipped into
// the engine's inflow-positive convention.
package truelayer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/LunNova/import-ynab/internal/model"
)

// DefaultBaseURL is the production TrueLayer Data API host.
const DefaultBaseURL = "https://api.truelayer.com"

const userAgent = "moonstruck.dev/import-ynab"

// Client is an authenticated TrueLayer session implementing
// provider.Connected.
type Client struct {
	httpClient  *http.Client
	logger      *slog.Logger
	baseURL     string
	accessToken string
	displayName string
}

// NewClient creates a client from a valid (non-expired) access token.
// Verify should be called before the client is used for a sync.
func NewClient(accessToken string) *Client {
	return NewClientWithBaseURL(accessToken, DefaultBaseURL)
}

// NewClientWithBaseURL creates a client against a non-default host, used by
// tests to point at a local server.
func NewClientWithBaseURL(accessToken, baseURL string) *Client {
	return &Client{
		baseURL:     baseURL,
		accessToken: accessToken,
		displayName: "truelayer",
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: slog.Default().With("component", "truelayer"),
	}
}

// Name implements provider.Connected.
func (c *Client) Name() string {
	return c.displayName
}

// Verify checks the connection by fetching token metadata and identity, and
// refreshes the human-readable connection name from them.
func (c *Client) Verify(ctx context.Context) error {
	var metadata metadataResponse
	if err := c.get(ctx, "/data/v1/me", &metadata); err != nil {
		return fmt.Errorf("failed to fetch token metadata: %w", err)
	}
	var identity identityResponse
	if err := c.get(ctx, "/data/v1/info", &identity); err != nil {
		return fmt.Errorf("failed to fetch identity: %w", err)
	}
	if len(metadata.Results) == 0 || len(identity.Results) == 0 {
		return fmt.Errorf("truelayer returned empty metadata")
	}

	meta := metadata.Results[0]
	consent := meta.ConsentStatus
	if consent == "" {
		consent = "no status"
	}
	expiry := meta.ConsentExpiresAt
	if expiry == "" {
		expiry = "no expiry"
	}
	c.displayName = fmt.Sprintf("%s %s %s %s",
		meta.Provider.DisplayName, identity.Results[0].FullName, consent, expiry)
	return nil
}

// GetAccounts implements provider.Connected. Accounts and cards are fetched
// separately; only when both endpoints fail does the call error, since many
// consents grant just one of the two. Card balances are amounts owed, so
// they come back negated.
func (c *Client) GetAccounts(ctx context.Context) ([]model.Account, error) {
	var accounts accountsResponse
	accountsErr := c.get(ctx, "/data/v1/accounts", &accounts)

	var cards cardsResponse
	cardsErr := c.get(ctx, "/data/v1/cards", &cards)

	if accountsErr != nil && cardsErr != nil {
		return nil, fmt.Errorf("failed to fetch accounts: %w", accountsErr)
	}

	var converted []model.Account

	if accountsErr == nil {
		for _, acc := range accounts.Results {
			balance, err := c.balance(ctx, fmt.Sprintf("/data/v1/accounts/%s/balance", acc.AccountID))
			if err != nil {
				return nil, err
			}
			converted = append(converted, model.Account{
				ID:          acc.AccountID,
				Currency:    acc.Currency,
				DisplayName: acc.DisplayName,
				Type:        model.TypeAccount,
				Balance:     int64(balance * 1000.0),
			})
		}
	}

	if cardsErr == nil {
		for _, card := range cards.Results {
			balance, err := c.balance(ctx, fmt.Sprintf("/data/v1/cards/%s/balance", card.AccountID))
			if err != nil {
				return nil, err
			}
			converted = append(converted, model.Account{
				ID:          card.AccountID,
				Currency:    card.Currency,
				DisplayName: card.DisplayName,
				Type:        model.TypeCard,
				Balance:     -int64(balance * 1000.0),
			})
		}
	}

	return converted, nil
}

// GetTransactions implements provider.Connected. Card transaction amounts
// arrive debit-positive and are negated. The payee is the merchant name when
// present, otherwise the first whitespace token of the description.
func (c *Client) GetTransactions(ctx context.Context, account model.Account) ([]model.Transaction, error) {
	path := fmt.Sprintf("/data/v1/accounts/%s/transactions", account.ID)
	flip := false
	if account.Type == model.TypeCard {
		path = fmt.Sprintf("/data/v1/cards/%s/transactions", account.ID)
		flip = true
	}

	var resp transactionsResponse
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch transactions for %s: %w", account.DisplayName, err)
	}

	transactions := make([]model.Transaction, 0, len(resp.Results))
	for _, tran := range resp.Results {
		amount := tran.Amount
		if flip {
			amount = -amount
		}

		payee := tran.MerchantName
		if payee == "" {
			if fields := strings.Fields(tran.Description); len(fields) > 0 {
				payee = fields[0]
			}
		}

		transactions = append(transactions, model.Transaction{
			ID:          tran.TransactionID,
			Timestamp:   tran.Timestamp.Time,
			Amount:      int64(amount * 1000.0),
			Description: tran.Description,
			PayeeName:   payee,
		})
	}

	return transactions, nil
}

func (c *Client) balance(ctx context.Context, path string) (float64, error) {
	var resp balanceResponse
	if err := c.get(ctx, path, &resp); err != nil {
		return 0, fmt.Errorf("failed to fetch balance: %w", err)
	}
	if len(resp.Results) == 0 {
		return 0, fmt.Errorf("truelayer returned no balance for %s", path)
	}
	return resp.Results[0].Current, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("truelayer API error: %d - %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
