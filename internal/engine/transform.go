package engine

import (
	"fmt"
	"strings"

	"github.com/LunNova/import-ynab/internal/model"
	"github.com/LunNova/import-ynab/internal/ynab"
)

// Transformer converts one provider account's transactions into
// import-ready form: amounts in the budget currency and transfer payees
// resolved to ledger account ids.
type Transformer struct {
	rates          RateSource
	accountIndex   map[string]ynab.Account
	budgetCurrency string
}

// NewTransformer creates a transformer for one sync run.
func NewTransformer(rates RateSource, budgetCurrency string, accountIndex map[string]ynab.Account) *Transformer {
	return &Transformer{
		rates:          rates,
		budgetCurrency: budgetCurrency,
		accountIndex:   accountIndex,
	}
}

// Transform mutates transactions in place and returns them.
//
// Conversion is mandatory: a transaction dated outside the rate table's
// lookback window fails the account, and per the run contract the whole
// sync aborts. Payee names holding a provider account id (transfer-type
// transactions) are rewritten to the counterparty's ledger account id;
// unresolved ids stay as literal payee names.
func (t *Transformer) Transform(account model.Account, transactions []model.Transaction) ([]model.Transaction, error) {
	convert := !strings.EqualFold(account.Currency, t.budgetCurrency)

	for i := range transactions {
		tran := &transactions[i]

		if convert {
			rate, err := t.rates.Rate(tran.Timestamp, account.Currency, t.budgetCurrency)
			if err != nil {
				return nil, fmt.Errorf("missing rate for transaction %s (%s, %s): %w",
					tran.ID, account.Currency, tran.Timestamp.UTC().Format("2006-01-02"), err)
			}
			tran.Amount = int64(float64(tran.Amount) * rate)
		}

		if tran.PayeeName != "" {
			if counterparty, ok := t.accountIndex[tran.PayeeName]; ok {
				tran.PayeeName = counterparty.ID
			}
		}
	}

	return transactions, nil
}
