// Package revolut implements the Revolut retail-app provider. The session
// fetches the whole wallet, beneficiary list, and recent transactions up
// front; per-account calls then filter in memory.
package revolut

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/LunNova/import-ynab/internal/model"
)

// DefaultBaseURL is the Revolut retail API host.
const DefaultBaseURL = "https://api.revolut.com"

// transactionWindowDays bounds the transaction fetch; Revolut has no cursor
// on this endpoint and a month comfortably covers the sync cadence.
const transactionWindowDays = 30

// Token is the persisted connection state for one Revolut login.
type Token struct {
	DisplayName string `json:"display_name"`
	DeviceID    string `json:"device_id"`
	Username    string `json:"username"`
	Password    string `json:"password"`
}

// Client is an authenticated Revolut session implementing provider.Connected.
type Client struct {
	httpClient    *http.Client
	logger        *slog.Logger
	baseURL       string
	token         Token
	pockets       []apiPocket
	beneficiaries []apiBeneficiary
	transactions  []apiTransaction
	loaded        bool
}

// NewClient creates a client from saved login state.
func NewClient(token Token) *Client {
	return NewClientWithBaseURL(token, DefaultBaseURL)
}

// NewClientWithBaseURL creates a client against a non-default host, used by
// tests to point at a local server.
func NewClientWithBaseURL(token Token, baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: slog.Default().With("component", "revolut"),
	}
}

// Name implements provider.Connected.
func (c *Client) Name() string {
	if c.token.DisplayName != "" {
		return c.token.DisplayName
	}
	return "revolut"
}

// load fetches wallet, beneficiaries, and the recent transaction window in
// one go. Subsequent calls are no-ops.
func (c *Client) load(ctx context.Context) error {
	if c.loaded {
		return nil
	}

	var wallet apiWallet
	if err := c.get(ctx, "/user/current/wallet", nil, &wallet); err != nil {
		return fmt.Errorf("failed to fetch wallet: %w", err)
	}

	var beneficiaries []apiBeneficiary
	if err := c.get(ctx, "/user/current/accounts", nil, &beneficiaries); err != nil {
		return fmt.Errorf("failed to fetch beneficiaries: %w", err)
	}

	from := time.Now().AddDate(0, 0, -transactionWindowDays).UnixMilli()
	query := url.Values{"from": []string{strconv.FormatInt(from, 10)}}
	var transactions []apiTransaction
	if err := c.get(ctx, "/user/current/transactions", query, &transactions); err != nil {
		return fmt.Errorf("failed to fetch transactions: %w", err)
	}

	c.pockets = wallet.Pockets
	c.beneficiaries = beneficiaries
	c.transactions = transactions
	c.loaded = true

	c.logger.Debug("Loaded Revolut session",
		"pockets", len(c.pockets),
		"transactions", len(c.transactions))
	return nil
}

// GetAccounts implements provider.Connected. Each wallet pocket is one
// account named after its currency; pocket balances are centi-units and
// scale by 10 into milli-units.
func (c *Client) GetAccounts(ctx context.Context) ([]model.Account, error) {
	if err := c.load(ctx); err != nil {
		return nil, err
	}

	accounts := make([]model.Account, 0, len(c.pockets))
	for _, pocket := range c.pockets {
		accounts = append(accounts, model.Account{
			ID:          pocket.ID,
			Currency:    pocket.Currency,
			DisplayName: pocket.Currency,
			Type:        model.TypeAccount,
			Balance:     pocket.Balance * 10,
		})
	}
	return accounts, nil
}

// GetTransactions implements provider.Connected. Filters the preloaded
// window down to one pocket, drops exchange legs other than the buy side and
// card payments that never completed, and infers a payee per transaction
// kind. Exchange counterparts carry the other pocket's id as the payee so
// the engine can resolve them into transfers.
func (c *Client) GetTransactions(ctx context.Context, account model.Account) ([]model.Transaction, error) {
	if err := c.load(ctx); err != nil {
		return nil, err
	}

	var transactions []model.Transaction
	for _, tran := range c.transactions {
		if tran.Account.ID != account.ID {
			continue
		}
		if tran.Type == "EXCHANGE" && tran.Direction != "buy" {
			continue
		}
		if tran.Type == "CARD_PAYMENT" && tran.State != "COMPLETED" && tran.State != "PENDING" {
			continue
		}

		transactions = append(transactions, model.Transaction{
			ID:          tran.ID,
			Timestamp:   time.UnixMilli(tran.StartedDate).UTC(),
			Amount:      tran.Amount * 10,
			Description: tran.Description,
			PayeeName:   c.payeeFor(tran),
		})
	}
	return transactions, nil
}

func (c *Client) payeeFor(tran apiTransaction) string {
	if tran.Merchant != nil && tran.Merchant.Name != "" {
		return tran.Merchant.Name
	}
	if tran.Beneficiary != nil {
		for _, b := range c.beneficiaries {
			if b.ID == tran.Beneficiary.ID {
				return fmt.Sprintf("%s %s", b.FirstName, b.LastName)
			}
		}
	}
	if tran.EntryMode == "GOOGLE_PAY" {
		return "Google Pay Topup"
	}
	switch tran.Type {
	case "TOPUP":
		return strings.TrimPrefix(tran.Description, "Payment from ")
	case "FEE":
		if tran.Tag == "insurance" {
			return "Revolut Insurance"
		}
		return "Revolut"
	case "EXCHANGE":
		if tran.Counterpart != nil && tran.Counterpart.Account != nil {
			return tran.Counterpart.Account.ID
		}
	}
	return ""
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.SetBasicAuth(c.token.Username, c.token.Password)
	req.Header.Set("X-Client-Version", "6.6.2")
	req.Header.Set("X-Api-Version", "1")
	req.Header.Set("X-Device-Id", c.token.DeviceID)
	req.Header.Set("X-Device-Model", "iPhone10,1")
	req.Header.Set("User-Agent", "Revolut/com.revolut.revolut (iPhone; iOS 11.1)")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("revolut API error: %d - %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
