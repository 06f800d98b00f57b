package main

import (
	"context"
	"fmt"

	"github.com/LunNova/import-ynab/internal/config"
	"github.com/LunNova/import-ynab/internal/engine"
	"github.com/LunNova/import-ynab/internal/ofx"
	"github.com/LunNova/import-ynab/internal/plaid"
	"github.com/LunNova/import-ynab/internal/provider"
	"github.com/LunNova/import-ynab/internal/revolut"
	"github.com/LunNova/import-ynab/internal/truelayer"
)

// providerSource adapts one saved provider entry into an engine.ProviderSource.
// Connecting a TrueLayer entry may refresh its token; the refreshed token is
// saved back through the store so the next run does not repeat the refresh.
type providerSource struct {
	store *config.Store
	creds truelayer.Credentials
	entry config.Provider
	all   []config.Provider
	index int
}

// buildSources wraps every saved provider entry. The slice is shared so a
// token refresh on one entry saves the whole file consistently.
func buildSources(store *config.Store, ynab config.YNAB, providers []config.Provider) []engine.ProviderSource {
	creds := truelayer.Credentials{
		ClientID:     ynab.TrueLayerClientID,
		ClientSecret: ynab.TrueLayerClientSecret,
	}

	sources := make([]engine.ProviderSource, 0, len(providers))
	for i, entry := range providers {
		sources = append(sources, &providerSource{
			store: store,
			creds: creds,
			entry: entry,
			all:   providers,
			index: i,
		})
	}
	return sources
}

// Name implements engine.ProviderSource.
func (s *providerSource) Name() string {
	return s.entry.DisplayName()
}

// Connect implements engine.ProviderSource.
func (s *providerSource) Connect(ctx context.Context) (provider.Connected, error) {
	switch s.entry.Type {
	case config.TypeTrueLayer:
		return s.connectTrueLayer(ctx)
	case config.TypeRevolut:
		return revolut.NewClient(*s.entry.Revolut), nil
	case config.TypePlaid:
		return plaid.NewClient(*s.entry.Plaid)
	case config.TypeOFX:
		return ofx.NewProvider(config.ExpandPath(s.entry.OFXPath)), nil
	default:
		return nil, fmt.Errorf("unknown provider type %q", s.entry.Type)
	}
}

func (s *providerSource) connectTrueLayer(ctx context.Context) (provider.Connected, error) {
	token := s.entry.TrueLayer

	changed, err := truelayer.Refresh(ctx, s.creds, token)
	if err != nil {
		return nil, err
	}

	client := truelayer.NewClient(token.AccessToken)
	if err := client.Verify(ctx); err != nil {
		return nil, err
	}
	if client.Name() != token.DisplayName {
		token.DisplayName = client.Name()
		changed = true
	}

	if changed {
		s.all[s.index] = s.entry
		if err := s.store.SaveProviders(s.all); err != nil {
			return nil, fmt.Errorf("failed to save refreshed token: %w", err)
		}
	}
	return client, nil
}
