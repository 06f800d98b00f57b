// Package config persists provider connections and ledger credentials as
// JSON files in a secrets directory. Every save writes a .bak copy of the
// previous file first, since the provider tokens are not recoverable.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/LunNova/import-ynab/internal/plaid"
	"github.com/LunNova/import-ynab/internal/revolut"
	"github.com/LunNova/import-ynab/internal/truelayer"
)

const (
	providersFile = "providers.json"
	ynabFile      = "ynab.json"
)

// Provider type discriminators stored in providers.json.
const (
	TypeTrueLayer = "truelayer"
	TypeRevolut   = "revolut"
	TypePlaid     = "plaid"
	TypeOFX       = "ofx"
)

// Provider is one saved provider connection. Exactly one of the per-type
// fields is set, selected by Type.
type Provider struct {
	TrueLayer *truelayer.Token `json:"truelayer,omitempty"`
	Revolut   *revolut.Token   `json:"revolut,omitempty"`
	Plaid     *plaid.Config    `json:"plaid,omitempty"`
	Type      string           `json:"type"`
	OFXPath   string           `json:"ofx_path,omitempty"`
}

// Validate checks that the discriminator matches the populated payload.
func (p *Provider) Validate() error {
	switch p.Type {
	case TypeTrueLayer:
		if p.TrueLayer == nil {
			return fmt.Errorf("truelayer provider entry has no token")
		}
	case TypeRevolut:
		if p.Revolut == nil {
			return fmt.Errorf("revolut provider entry has no token")
		}
	case TypePlaid:
		if p.Plaid == nil {
			return fmt.Errorf("plaid provider entry has no configuration")
		}
		return p.Plaid.Validate()
	case TypeOFX:
		if p.OFXPath == "" {
			return fmt.Errorf("ofx provider entry has no file path")
		}
	default:
		return fmt.Errorf("unknown provider type %q", p.Type)
	}
	return nil
}

// DisplayName returns a human-readable name for logs and listings.
func (p *Provider) DisplayName() string {
	switch p.Type {
	case TypeTrueLayer:
		if p.TrueLayer != nil && p.TrueLayer.DisplayName != "" {
			return p.TrueLayer.DisplayName
		}
	case TypeRevolut:
		if p.Revolut != nil && p.Revolut.DisplayName != "" {
			return p.Revolut.DisplayName
		}
	case TypeOFX:
		if p.OFXPath != "" {
			return "ofx:" + filepath.Base(p.OFXPath)
		}
	}
	return p.Type
}

// YNAB holds the ledger credentials plus the OAuth client used when linking
// new TrueLayer connections.
type YNAB struct {
	AccessToken           string `json:"access_token"`
	BudgetID              string `json:"budget_id"`
	TrueLayerClientID     string `json:"truelayer_client_id,omitempty"`
	TrueLayerClientSecret string `json:"truelayer_client_secret,omitempty"`
}

// Store reads and writes the secrets directory.
type Store struct {
	logger *slog.Logger
	dir    string
}

// DefaultDir returns the default secrets directory, honoring
// IMPORT_YNAB_SECRETS when set.
func DefaultDir() string {
	if dir := os.Getenv("IMPORT_YNAB_SECRETS"); dir != "" {
		return ExpandPath(dir)
	}
	return "secrets"
}

// NewStore creates a store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{
		dir:    dir,
		logger: slog.Default().With("component", "config"),
	}
}

// Dir returns the secrets directory path.
func (s *Store) Dir() string {
	return s.dir
}

// LoadProviders reads providers.json. A missing file is an empty
// configuration, not an error.
func (s *Store) LoadProviders() ([]Provider, error) {
	var providers []Provider
	if err := s.load(providersFile, &providers); err != nil {
		return nil, err
	}
	for i := range providers {
		if err := providers[i].Validate(); err != nil {
			return nil, fmt.Errorf("invalid provider entry %d: %w", i, err)
		}
	}
	return providers, nil
}

// SaveProviders writes providers.json, backing up the previous file.
func (s *Store) SaveProviders(providers []Provider) error {
	for i := range providers {
		if err := providers[i].Validate(); err != nil {
			return fmt.Errorf("invalid provider entry %d: %w", i, err)
		}
	}
	return s.save(providersFile, providers)
}

// LoadYNAB reads ynab.json, returning the zero value when the file does not
// exist yet.
func (s *Store) LoadYNAB() (YNAB, error) {
	var cfg YNAB
	if err := s.load(ynabFile, &cfg); err != nil {
		return YNAB{}, err
	}
	return cfg, nil
}

// SaveYNAB writes ynab.json, backing up the previous file.
func (s *Store) SaveYNAB(cfg YNAB) error {
	return s.save(ynabFile, cfg)
}

func (s *Store) load(name string, out any) error {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", name, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse %s: %w", name, err)
	}
	return nil
}

func (s *Store) save(name string, value any) error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("failed to create secrets directory: %w", err)
	}

	path := filepath.Join(s.dir, name)
	if err := s.backup(path); err != nil {
		return err
	}

	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", name, err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}

	s.logger.Debug("Saved secrets file", "file", name)
	return nil
}

// backup copies the current file to <name>.bak before it is overwritten.
func (s *Store) backup(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read %s for backup: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path+".bak", data, 0o600); err != nil {
		return fmt.Errorf("failed to write backup of %s: %w", filepath.Base(path), err)
	}
	return nil
}
