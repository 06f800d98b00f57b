package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LunNova/import-ynab/internal/currency"
	"github.com/LunNova/import-ynab/internal/model"
	"github.com/LunNova/import-ynab/internal/ynab"
)

func TestTransformer_CurrencyConversion(t *testing.T) {
	rates := &StaticRates{Rates: map[string]float64{"USD->EUR": 0.9}}
	transformer := NewTransformer(rates, "EUR", nil)

	account := model.Account{ID: "p1", Currency: "USD"}
	transactions := []model.Transaction{
		{ID: "tx-1", Timestamp: time.Now(), Amount: 10000},
		{ID: "tx-2", Timestamp: time.Now(), Amount: -5000},
	}

	out, err := transformer.Transform(account, transactions)
	require.NoError(t, err)
	assert.Equal(t, int64(9000), out[0].Amount)
	assert.Equal(t, int64(-4500), out[1].Amount)
}

func TestTransformer_SameCurrencyUntouched(t *testing.T) {
	// Case-insensitive compare; no rate lookup should happen at all.
	rates := &StaticRates{Err: currency.ErrRateNotFound}
	transformer := NewTransformer(rates, "EUR", nil)

	account := model.Account{ID: "p1", Currency: "eur"}
	out, err := transformer.Transform(account, []model.Transaction{
		{ID: "tx-1", Timestamp: time.Now(), Amount: 12345},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(12345), out[0].Amount)
}

func TestTransformer_MissingRateFails(t *testing.T) {
	rates := &StaticRates{Err: currency.ErrRateNotFound}
	transformer := NewTransformer(rates, "EUR", nil)

	account := model.Account{ID: "p1", Currency: "USD"}
	_, err := transformer.Transform(account, []model.Transaction{
		{ID: "tx-1", Timestamp: time.Now(), Amount: 10000},
	})
	require.ErrorIs(t, err, currency.ErrRateNotFound)
}

func TestTransformer_TransferPayeeResolution(t *testing.T) {
	index := map[string]ynab.Account{
		"p2": {ID: "ynab-2", Name: "Savings"},
	}
	transformer := NewTransformer(&StaticRates{}, "EUR", index)

	account := model.Account{ID: "p1", Currency: "EUR"}
	out, err := transformer.Transform(account, []model.Transaction{
		{ID: "tx-1", Timestamp: time.Now(), PayeeName: "p2"},
		{ID: "tx-2", Timestamp: time.Now(), PayeeName: "Corner Shop"},
		{ID: "tx-3", Timestamp: time.Now(), PayeeName: ""},
	})
	require.NoError(t, err)

	assert.Equal(t, "ynab-2", out[0].PayeeName, "transfer counterparty resolves to the ledger account id")
	assert.Equal(t, "Corner Shop", out[1].PayeeName, "unresolved names pass through as literals")
	assert.Empty(t, out[2].PayeeName)
}

func TestTransformer_PreservesOrder(t *testing.T) {
	rates := &StaticRates{Rates: map[string]float64{"USD->EUR": 0.5}}
	transformer := NewTransformer(rates, "EUR", nil)

	account := model.Account{ID: "p1", Currency: "USD"}
	in := []model.Transaction{
		{ID: "a", Timestamp: time.Now(), Amount: 100},
		{ID: "b", Timestamp: time.Now(), Amount: 200},
		{ID: "c", Timestamp: time.Now(), Amount: 300},
	}

	out, err := transformer.Transform(account, in)
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{out[0].ID, out[1].ID, out[2].ID})
}
