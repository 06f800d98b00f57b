package truelayer

import (
	"encoding/json"
	"fmt"
	"time"
)

// Wire types for the TrueLayer Data API v1. Every endpoint wraps its payload
// in a results array.

type apiTimestamp struct {
	time.Time
}

// UnmarshalJSON accepts RFC3339 timestamps or the bare local form some banks
// return through TrueLayer ("2006-01-02T15:04:05", assumed UTC).
func (t *apiTimestamp) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
		t.Time = parsed.UTC()
		return nil
	}
	parsed, err := time.Parse("2006-01-02T15:04:05", raw)
	if err != nil {
		return fmt.Errorf("failed to parse timestamp %q: %w", raw, err)
	}
	t.Time = parsed.UTC()
	return nil
}

type apiProvider struct {
	DisplayName string `json:"display_name"`
	ProviderID  string `json:"provider_id"`
}

type apiMetadata struct {
	ClientID         string      `json:"client_id"`
	ConsentStatus    string      `json:"consent_status"`
	ConsentExpiresAt string      `json:"consent_expires_at"`
	Provider         apiProvider `json:"provider"`
}

type apiIdentity struct {
	FullName string `json:"full_name"`
}

type apiAccount struct {
	AccountID   string `json:"account_id"`
	AccountType string `json:"account_type"`
	DisplayName string `json:"display_name"`
	Currency    string `json:"currency"`
}

type apiCard struct {
	AccountID         string `json:"account_id"`
	DisplayName       string `json:"display_name"`
	Currency          string `json:"currency"`
	PartialCardNumber string `json:"partial_card_number"`
}

type apiBalance struct {
	Current float64 `json:"current"`
}

type apiTransaction struct {
	TransactionID string       `json:"transaction_id"`
	Timestamp     apiTimestamp `json:"timestamp"`
	Amount        float64      `json:"amount"`
	Description   string       `json:"description"`
	MerchantName  string       `json:"merchant_name"`
}

type metadataResponse struct {
	Results []apiMetadata `json:"results"`
}

type identityResponse struct {
	Results []apiIdentity `json:"results"`
}

type accountsResponse struct {
	Results []apiAccount `json:"results"`
}

type cardsResponse struct {
	Results []apiCard `json:"results"`
}

type balanceResponse struct {
	Results []apiBalance `json:"results"`
}

type transactionsResponse struct {
	Results []apiTransaction `json:"results"`
}
