package revolut

// Wire types for the Revolut retail API. Amounts are in centi-units
// (hundredths); the provider scales them to milli-units on the way out.

type apiWallet struct {
	Pockets []apiPocket `json:"pockets"`
}

type apiPocket struct {
	ID       string `json:"id"`
	Balance  int64  `json:"balance"`
	Currency string `json:"currency"`
}

type apiBeneficiary struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type apiTransactionAccount struct {
	ID string `json:"id"`
}

type apiMerchant struct {
	Name string `json:"name"`
}

type apiCounterpart struct {
	Account *apiTransactionAccount `json:"account"`
}

type apiTransaction struct {
	ID          string                 `json:"id"`
	StartedDate int64                  `json:"startedDate"` // unix milliseconds
	Account     apiTransactionAccount  `json:"account"`
	Amount      int64                  `json:"amount"`
	Description string                 `json:"description"`
	Merchant    *apiMerchant           `json:"merchant"`
	Beneficiary *apiTransactionAccount `json:"beneficiary"`
	EntryMode   string                 `json:"entryMode"`
	Type        string                 `json:"type"`
	Tag         string                 `json:"tag"`
	Direction   string                 `json:"direction"`
	Counterpart *apiCounterpart        `json:"counterpart"`
	State       string                 `json:"state"`
}
