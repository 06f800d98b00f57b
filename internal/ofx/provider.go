// Package ofx implements an offline provider backed by an OFX/QFX statement
// file, for banks without an API connection. Each statement in the file
// becomes one account.
package ofx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/aclindsa/ofxgo"

	"github.com/LunNova/import-ynab/internal/model"
)

// Provider reads one OFX file lazily on first use and serves accounts and
// transactions from it.
type Provider struct {
	transactions map[string][]model.Transaction
	logger       *slog.Logger
	path         string
	accounts     []model.Account
	loaded       bool
}

// NewProvider creates a provider for the statement file at path.
func NewProvider(path string) *Provider {
	return &Provider{
		path:   path,
		logger: slog.Default().With("component", "ofx"),
	}
}

// Name implements provider.Connected.
func (p *Provider) Name() string {
	return "ofx:" + filepath.Base(p.path)
}

// GetAccounts implements provider.Connected.
func (p *Provider) GetAccounts(ctx context.Context) ([]model.Account, error) {
	if err := p.load(ctx); err != nil {
		return nil, err
	}
	return p.accounts, nil
}

// GetTransactions implements provider.Connected.
func (p *Provider) GetTransactions(ctx context.Context, account model.Account) ([]model.Transaction, error) {
	if err := p.load(ctx); err != nil {
		return nil, err
	}
	return p.transactions[account.ID], nil
}

func (p *Provider) load(_ context.Context) error {
	if p.loaded {
		return nil
	}

	file, err := os.Open(p.path)
	if err != nil {
		return fmt.Errorf("failed to open OFX file: %w", err)
	}
	defer func() { _ = file.Close() }()

	if err := p.parse(file); err != nil {
		return err
	}
	p.loaded = true

	p.logger.Info("Parsed OFX file",
		"file", p.path,
		"accounts", len(p.accounts))
	return nil
}

func (p *Provider) parse(r io.Reader) error {
	content, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read OFX file: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(preprocessOFX(string(content))))
	if err != nil {
		return fmt.Errorf("failed to parse OFX file: %w", err)
	}

	p.transactions = make(map[string][]model.Transaction)

	for _, msg := range resp.Bank {
		stmt, ok := msg.(*ofxgo.StatementResponse)
		if !ok {
			continue
		}
		accountID := string(stmt.BankAcctFrom.AcctID)
		balance, _ := stmt.BalAmt.Float64()
		p.accounts = append(p.accounts, model.Account{
			ID:          accountID,
			Currency:    stmt.CurDef.String(),
			DisplayName: accountID,
			Type:        model.TypeAccount,
			Balance:     int64(math.Round(balance * 1000.0)),
		})
		if stmt.BankTranList != nil {
			p.transactions[accountID] = convertTransactions(stmt.BankTranList.Transactions)
		}
	}

	for _, msg := range resp.CreditCard {
		stmt, ok := msg.(*ofxgo.CCStatementResponse)
		if !ok {
			continue
		}
		accountID := string(stmt.CCAcctFrom.AcctID)
		balance, _ := stmt.BalAmt.Float64()
		p.accounts = append(p.accounts, model.Account{
			ID:          accountID,
			Currency:    stmt.CurDef.String(),
			DisplayName: accountID,
			Type:        model.TypeCard,
			Balance:     int64(math.Round(balance * 1000.0)),
		})
		if stmt.BankTranList != nil {
			p.transactions[accountID] = convertTransactions(stmt.BankTranList.Transactions)
		}
	}

	return nil
}

// convertTransactions maps OFX transactions into the engine's shape. OFX
// amounts are already signed inflow-positive, so no flip is needed.
func convertTransactions(transactions []ofxgo.Transaction) []model.Transaction {
	converted := make([]model.Transaction, 0, len(transactions))
	for _, tran := range transactions {
		amount, _ := tran.TrnAmt.Float64()

		payee := ""
		if tran.Payee != nil {
			payee = string(tran.Payee.Name)
		}
		if payee == "" {
			payee = string(tran.Name)
		}

		description := string(tran.Memo)
		if description == "" {
			description = string(tran.Name)
		}

		converted = append(converted, model.Transaction{
			ID:          string(tran.FiTID),
			Timestamp:   tran.DtPosted.Time,
			Amount:      int64(math.Round(amount * 1000.0)),
			Description: description,
			PayeeName:   payee,
		})
	}
	return converted
}

var (
	severityRegex = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	tagFixRegex   = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

// preprocessOFX fixes common formatting issues in bank-produced OFX files:
// leading blank lines, mixed-case SEVERITY values, and SGML-style tags
// missing their closing bracket.
func preprocessOFX(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")
	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)
	content = tagFixRegex.ReplaceAllString(content, "$1>")
	return content
}
