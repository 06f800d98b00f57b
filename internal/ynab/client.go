// Package ynab provides a client for the YNAB (You Need A Budget) REST API.
package ynab

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/LunNova/import-ynab/internal/model"
)

// DefaultBaseURL is the production YNAB API host.
const DefaultBaseURL = "https://api.youneedabudget.com"

const userAgent = "moonstruck.dev/import-ynab"

// importChunkSize is the YNAB API's maximum batch size per import call.
const importChunkSize = 50

// Client talks to the YNAB v1 API.
type Client struct {
	httpClient  *http.Client
	logger      *slog.Logger
	baseURL     string
	accessToken string
}

// NewClient creates a YNAB client authenticated with a personal access token.
func NewClient(accessToken string) *Client {
	return NewClientWithBaseURL(accessToken, DefaultBaseURL)
}

// NewClientWithBaseURL creates a client against a non-default host, used by
// tests to point at a local server.
func NewClientWithBaseURL(accessToken, baseURL string) *Client {
	return &Client{
		baseURL:     baseURL,
		accessToken: accessToken,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: slog.Default().With("component", "ynab"),
	}
}

// GetBudget fetches a budget's settings, including its working currency.
func (c *Client) GetBudget(ctx context.Context, budgetID string) (*Budget, error) {
	var resp budgetResponse
	if err := c.get(ctx, fmt.Sprintf("/v1/budgets/%s", budgetID), &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch budget: %w", err)
	}
	return &resp.Data.Budget, nil
}

// ListAccounts fetches all accounts in a budget.
func (c *Client) ListAccounts(ctx context.Context, budgetID string) ([]Account, error) {
	var resp accountsResponse
	if err := c.get(ctx, fmt.Sprintf("/v1/budgets/%s/accounts", budgetID), &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch accounts: %w", err)
	}
	return resp.Data.Accounts, nil
}

// GetAccount re-fetches a single account, used after imports so the balance
// reflects the transactions just written.
func (c *Client) GetAccount(ctx context.Context, budgetID, accountID string) (*Account, error) {
	var resp accountResponse
	if err := c.get(ctx, fmt.Sprintf("/v1/budgets/%s/accounts/%s", budgetID, accountID), &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch account %s: %w", accountID, err)
	}
	return &resp.Data.Account, nil
}

// ListPayees fetches all payees in a budget.
func (c *Client) ListPayees(ctx context.Context, budgetID string) ([]Payee, error) {
	var resp payeesResponse
	if err := c.get(ctx, fmt.Sprintf("/v1/budgets/%s/payees", budgetID), &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch payees: %w", err)
	}
	return resp.Data.Payees, nil
}

// ImportTransactions submits transactions for one account in chunks of 50.
//
// The payee list is fetched once up front; any transaction whose payee name
// matches a payee's transfer account id is submitted with the payee's id
// instead of a free-text name, which YNAB records as a transfer. Import is
// idempotent on each transaction's ID; a failed chunk is not retried and
// chunks already sent stay imported.
func (c *Client) ImportTransactions(ctx context.Context, budgetID, accountID string, transactions []model.Transaction) error {
	if len(transactions) == 0 {
		return nil
	}

	payees, err := c.ListPayees(ctx, budgetID)
	if err != nil {
		return err
	}

	transferPayees := make(map[string]string, len(payees))
	for _, payee := range payees {
		if payee.TransferAccountID != "" {
			transferPayees[payee.TransferAccountID] = payee.ID
		}
	}

	for start := 0; start < len(transactions); start += importChunkSize {
		end := start + importChunkSize
		if end > len(transactions) {
			end = len(transactions)
		}

		chunk := make([]NewTransaction, 0, end-start)
		for _, tran := range transactions[start:end] {
			nt := NewTransaction{
				AccountID:    accountID,
				Date:         tran.Timestamp.UTC().Format("2006-01-02"),
				Amount:       tran.Amount,
				Memo:         tran.Description,
				Cleared:      "cleared",
				ImportID:     tran.ID,
				CategoryName: tran.Category,
			}
			if payeeID, ok := transferPayees[tran.PayeeName]; ok {
				nt.PayeeID = payeeID
			} else {
				nt.PayeeName = tran.PayeeName
			}
			chunk = append(chunk, nt)
		}

		if err := c.post(ctx, fmt.Sprintf("/v1/budgets/%s/transactions", budgetID),
			newTransactionsRequest{Transactions: chunk}); err != nil {
			return fmt.Errorf("failed to import transactions: %w", err)
		}

		c.logger.Debug("Imported transaction chunk",
			"account_id", accountID,
			"count", len(chunk))
	}

	return nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("YNAB API error: %d - %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("YNAB API error: %d - %s", resp.StatusCode, string(respBody))
	}
	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
}
