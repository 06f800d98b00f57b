package ynab

// API types for the subset of the YNAB v1 REST surface the sync uses.

// Budget describes a YNAB budget; CurrencyFormat carries the budget's
// working currency.
type Budget struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	CurrencyFormat CurrencyFormat `json:"currency_format"`
}

// CurrencyFormat holds the budget's currency settings.
type CurrencyFormat struct {
	ISOCode string `json:"iso_code"`
}

// Account is a YNAB budget account. Note may embed a provider binding as the
// literal substring ACCOUNT_ID="<provider_account_id>". Balance is in
// milli-units of the budget currency.
type Account struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Note    string `json:"note"`
	Balance int64  `json:"balance"`
}

// Payee is a YNAB payee. TransferAccountID is set for the synthetic payees
// YNAB creates to represent transfers into a specific account.
type Payee struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	TransferAccountID string `json:"transfer_account_id"`
}

// NewTransaction is the import payload for one transaction. PayeeName and
// PayeeID are mutually exclusive; ImportID is YNAB's idempotency key.
type NewTransaction struct {
	AccountID    string `json:"account_id"`
	Date         string `json:"date"`
	Amount       int64  `json:"amount"`
	PayeeName    string `json:"payee_name,omitempty"`
	PayeeID      string `json:"payee_id,omitempty"`
	Memo         string `json:"memo"`
	Cleared      string `json:"cleared"`
	ImportID     string `json:"import_id,omitempty"`
	CategoryName string `json:"category_name,omitempty"`
}

type newTransactionsRequest struct {
	Transactions []NewTransaction `json:"transactions"`
}

type budgetResponse struct {
	Data struct {
		Budget Budget `json:"budget"`
	} `json:"data"`
}

type accountsResponse struct {
	Data struct {
		Accounts []Account `json:"accounts"`
	} `json:"data"`
}

type accountResponse struct {
	Data struct {
		Account Account `json:"account"`
	} `json:"data"`
}

type payeesResponse struct {
	Data struct {
		Payees []Payee `json:"payees"`
	} `json:"data"`
}
