package revolut

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LunNova/import-ynab/internal/model"
)

func sessionServer(t *testing.T, transactions []apiTransaction) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var requests atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("/user/current/wallet", func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "user-1", user)
		assert.Equal(t, "secret", pass)
		assert.Equal(t, "device-1", r.Header.Get("X-Device-Id"))
		require.NoError(t, json.NewEncoder(w).Encode(apiWallet{Pockets: []apiPocket{
			{ID: "pocket-eur", Balance: 12050, Currency: "EUR"},
			{ID: "pocket-usd", Balance: 500, Currency: "USD"},
		}}))
	})
	mux.HandleFunc("/user/current/accounts", func(w http.ResponseWriter, _ *http.Request) {
		requests.Add(1)
		require.NoError(t, json.NewEncoder(w).Encode([]apiBeneficiary{
			{ID: "ben-1", FirstName: "Jane", LastName: "Doe"},
		}))
	})
	mux.HandleFunc("/user/current/transactions", func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		assert.NotEmpty(t, r.URL.Query().Get("from"))
		require.NoError(t, json.NewEncoder(w).Encode(transactions))
	})

	return httptest.NewServer(mux), &requests
}

func testToken() Token {
	return Token{DisplayName: "Revolut", DeviceID: "device-1", Username: "user-1", Password: "secret"}
}

func TestClient_GetAccounts(t *testing.T) {
	server, requests := sessionServer(t, nil)
	defer server.Close()

	client := NewClientWithBaseURL(testToken(), server.URL)
	accounts, err := client.GetAccounts(context.Background())
	require.NoError(t, err)
	require.Len(t, accounts, 2)

	assert.Equal(t, "pocket-eur", accounts[0].ID)
	assert.Equal(t, "EUR", accounts[0].DisplayName, "pockets are named after their currency")
	assert.Equal(t, int64(120500), accounts[0].Balance, "centi-units scale by 10 into milli-units")

	// The whole session loads once; further calls reuse it.
	_, err = client.GetAccounts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(3), requests.Load())
}

func TestClient_GetTransactions_FiltersAndPayees(t *testing.T) {
	started := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC).UnixMilli()
	transactions := []apiTransaction{
		{ID: "t1", StartedDate: started, Account: apiTransactionAccount{ID: "pocket-eur"}, Amount: -550,
			Type: "CARD_PAYMENT", State: "COMPLETED", Description: "Coffee", Merchant: &apiMerchant{Name: "Corner Cafe"}},
		{ID: "t2", StartedDate: started, Account: apiTransactionAccount{ID: "pocket-eur"}, Amount: -300,
			Type: "CARD_PAYMENT", State: "DECLINED", Description: "Declined card payment"},
		{ID: "t3", StartedDate: started, Account: apiTransactionAccount{ID: "pocket-eur"}, Amount: -1000,
			Type: "EXCHANGE", Direction: "sell", Description: "Exchanged to USD"},
		{ID: "t4", StartedDate: started, Account: apiTransactionAccount{ID: "pocket-eur"}, Amount: 1000,
			Type: "EXCHANGE", Direction: "buy", Description: "Exchanged from USD",
			Counterpart: &apiCounterpart{Account: &apiTransactionAccount{ID: "pocket-usd"}}},
		{ID: "t5", StartedDate: started, Account: apiTransactionAccount{ID: "pocket-usd"}, Amount: 100,
			Type: "TOPUP", Description: "other pocket"},
		{ID: "t6", StartedDate: started, Account: apiTransactionAccount{ID: "pocket-eur"}, Amount: 2000,
			Type: "TOPUP", Description: "Payment from Jane Doe"},
		{ID: "t7", StartedDate: started, Account: apiTransactionAccount{ID: "pocket-eur"}, Amount: -100,
			Type: "FEE", Tag: "insurance", Description: "Insurance fee"},
		{ID: "t8", StartedDate: started, Account: apiTransactionAccount{ID: "pocket-eur"}, Amount: 700,
			Type: "TRANSFER", Beneficiary: &apiTransactionAccount{ID: "ben-1"}, Description: "From a friend"},
	}
	server, _ := sessionServer(t, transactions)
	defer server.Close()

	client := NewClientWithBaseURL(testToken(), server.URL)
	account := model.Account{ID: "pocket-eur", Currency: "EUR"}

	got, err := client.GetTransactions(context.Background(), account)
	require.NoError(t, err)

	ids := make([]string, 0, len(got))
	for _, tran := range got {
		ids = append(ids, tran.ID)
	}
	assert.Equal(t, []string{"t1", "t4", "t6", "t7", "t8"}, ids,
		"declined card payments, sell-side exchange legs, and other pockets are filtered out")

	byID := make(map[string]model.Transaction, len(got))
	for _, tran := range got {
		byID[tran.ID] = tran
	}

	assert.Equal(t, int64(-5500), byID["t1"].Amount)
	assert.Equal(t, "Corner Cafe", byID["t1"].PayeeName)
	assert.Equal(t, "pocket-usd", byID["t4"].PayeeName,
		"exchange counterpart pocket id becomes the payee for transfer resolution")
	assert.Equal(t, "Jane Doe", byID["t6"].PayeeName, "topup payee strips the Payment from prefix")
	assert.Equal(t, "Revolut Insurance", byID["t7"].PayeeName)
	assert.Equal(t, "Jane Doe", byID["t8"].PayeeName, "beneficiary ids resolve to full names")
	assert.Equal(t, time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC), byID["t1"].Timestamp)
}
