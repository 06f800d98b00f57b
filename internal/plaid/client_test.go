package plaid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Validate(t *testing.T) {
	valid := Config{
		ClientID:    "client",
		Secret:      "secret",
		Environment: "sandbox",
		AccessToken: "access-token",
	}

	tests := []struct {
		mutate  func(*Config)
		name    string
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "missing client id", mutate: func(c *Config) { c.ClientID = "" }, wantErr: "client ID"},
		{name: "missing secret", mutate: func(c *Config) { c.Secret = "" }, wantErr: "secret"},
		{name: "missing access token", mutate: func(c *Config) { c.AccessToken = "" }, wantErr: "access token"},
		{name: "bad environment", mutate: func(c *Config) { c.Environment = "staging" }, wantErr: "environment"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNewClient_RejectsInvalidConfig(t *testing.T) {
	_, err := NewClient(Config{})
	require.Error(t, err)
}

func TestNewClient(t *testing.T) {
	client, err := NewClient(Config{
		ClientID:    "client",
		Secret:      "secret",
		Environment: "sandbox",
		AccessToken: "access-token",
	})
	require.NoError(t, err)
	assert.Equal(t, "plaid", client.Name())
}
