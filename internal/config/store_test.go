package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LunNova/import-ynab/internal/revolut"
	"github.com/LunNova/import-ynab/internal/truelayer"
)

func TestStore_MissingFilesAreDefaults(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "secrets"))

	providers, err := store.LoadProviders()
	require.NoError(t, err)
	assert.Empty(t, providers)

	ynab, err := store.LoadYNAB()
	require.NoError(t, err)
	assert.Equal(t, YNAB{}, ynab)
}

func TestStore_ProvidersRoundTrip(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "secrets"))

	providers := []Provider{
		{Type: TypeTrueLayer, TrueLayer: &truelayer.Token{
			DisplayName:  "My Bank",
			AccessToken:  "access",
			RefreshToken: "refresh",
		}},
		{Type: TypeRevolut, Revolut: &revolut.Token{
			DisplayName: "Revolut",
			DeviceID:    "device-1",
			Username:    "user",
			Password:    "pass",
		}},
		{Type: TypeOFX, OFXPath: "/statements/checking.ofx"},
	}
	require.NoError(t, store.SaveProviders(providers))

	loaded, err := store.LoadProviders()
	require.NoError(t, err)
	assert.Equal(t, providers, loaded)
}

func TestStore_YNABRoundTrip(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "secrets"))

	cfg := YNAB{
		AccessToken:           "token",
		BudgetID:              "budget-1",
		TrueLayerClientID:     "client",
		TrueLayerClientSecret: "secret",
	}
	require.NoError(t, store.SaveYNAB(cfg))

	loaded, err := store.LoadYNAB()
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestStore_SaveBacksUpPreviousFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "secrets")
	store := NewStore(dir)

	require.NoError(t, store.SaveYNAB(YNAB{BudgetID: "first"}))
	require.NoError(t, store.SaveYNAB(YNAB{BudgetID: "second"}))

	backup, err := os.ReadFile(filepath.Join(dir, "ynab.json.bak"))
	require.NoError(t, err)
	assert.Contains(t, string(backup), "first")

	current, err := store.LoadYNAB()
	require.NoError(t, err)
	assert.Equal(t, "second", current.BudgetID)
}

func TestStore_CorruptFileFails(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "providers.json"), []byte("{not json"), 0o600))

	_, err := NewStore(dir).LoadProviders()
	assert.Error(t, err)
}

func TestProvider_Validate(t *testing.T) {
	tests := []struct {
		name     string
		provider Provider
		wantErr  bool
	}{
		{name: "truelayer with token", provider: Provider{Type: TypeTrueLayer, TrueLayer: &truelayer.Token{}}},
		{name: "truelayer without token", provider: Provider{Type: TypeTrueLayer}, wantErr: true},
		{name: "revolut without token", provider: Provider{Type: TypeRevolut}, wantErr: true},
		{name: "ofx with path", provider: Provider{Type: TypeOFX, OFXPath: "a.ofx"}},
		{name: "ofx without path", provider: Provider{Type: TypeOFX}, wantErr: true},
		{name: "plaid without config", provider: Provider{Type: TypePlaid}, wantErr: true},
		{name: "unknown type", provider: Provider{Type: "monzo"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.provider.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestProvider_DisplayName(t *testing.T) {
	assert.Equal(t, "My Bank",
		(&Provider{Type: TypeTrueLayer, TrueLayer: &truelayer.Token{DisplayName: "My Bank"}}).DisplayName())
	assert.Equal(t, "truelayer",
		(&Provider{Type: TypeTrueLayer, TrueLayer: &truelayer.Token{}}).DisplayName())
	assert.Equal(t, "ofx:checking.ofx",
		(&Provider{Type: TypeOFX, OFXPath: "/tmp/checking.ofx"}).DisplayName())
}
