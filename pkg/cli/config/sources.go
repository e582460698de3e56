package config

import (
	"os"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"

	"github.com/lwalder/veille/pkg/domain/model"
	"github.com/lwalder/veille/pkg/domain/types"
	"github.com/lwalder/veille/pkg/registry"
)

// Sources loads the source catalog. Without a catalog file the built-in
// defaults are used.
type Sources struct {
	path string
}

func (x *Sources) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "sources",
			Usage:       "Path to a source catalog TOML file (built-in catalog when omitted)",
			Category:    "Sources",
			Sources:     cli.EnvVars("VEILLE_SOURCES"),
			Destination: &x.path,
		},
	}
}

// Configure builds the registry from the catalog file, or from the
// built-in catalog when no file is given
func (x *Sources) Configure() (*registry.Registry, error) {
	if x.path == "" {
		return registry.Default()
	}
	return LoadCatalog(x.path)
}

// SourceEntry is the TOML shape of one catalog entry
type SourceEntry struct {
	Name          string                `toml:"name"`
	DisplayName   string                `toml:"display_name"`
	Enabled       bool                  `toml:"enabled"`
	Priority      int                   `toml:"priority"`
	CacheTTLSec   int                   `toml:"cache_ttl_seconds"`
	RateLimit     model.RateLimitPolicy `toml:"rate_limit"`
	Endpoints     map[string]string     `toml:"endpoints"`
	Auth          AuthEntry             `toml:"auth"`
	DefaultParams map[string]string     `toml:"default_params"`
	SearchQueries []string              `toml:"search_queries"`
}

// AuthEntry is the TOML shape of a source's auth scheme
type AuthEntry struct {
	Type      string `toml:"type"`
	Header    string `toml:"header"`
	SecretEnv string `toml:"secret_env"`
}

// Catalog is the TOML shape of the catalog file
type Catalog struct {
	Sources []SourceEntry `toml:"source"`
}

// ToSourceConfig converts a catalog entry into the domain config
func (e *SourceEntry) ToSourceConfig() *model.SourceConfig {
	authType := model.AuthType(e.Auth.Type)
	if e.Auth.Type == "" {
		authType = model.AuthTypeNone
	}

	return &model.SourceConfig{
		Name:        types.SourceName(e.Name),
		DisplayName: e.DisplayName,
		Enabled:     e.Enabled,
		Priority:    e.Priority,
		CacheTTL:    time.Duration(e.CacheTTLSec) * time.Second,
		RateLimit:   e.RateLimit,
		Endpoints:   e.Endpoints,
		Auth: model.AuthScheme{
			Type:      authType,
			Header:    e.Auth.Header,
			SecretEnv: e.Auth.SecretEnv,
		},
		DefaultParams: e.DefaultParams,
		SearchQueries: e.SearchQueries,
	}
}

// LoadCatalog loads and validates a source catalog from a TOML file.
// Validation of each entry happens inside registry.New.
func LoadCatalog(path string) (*registry.Registry, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read source catalog", goerr.V("path", path))
	}

	var catalog Catalog
	if err := toml.Unmarshal(data, &catalog); err != nil {
		return nil, goerr.Wrap(err, "failed to parse source catalog", goerr.V("path", path))
	}
	if len(catalog.Sources) == 0 {
		return nil, goerr.New("source catalog is empty", goerr.V("path", path))
	}

	configs := make([]*model.SourceConfig, len(catalog.Sources))
	for i, entry := range catalog.Sources {
		configs[i] = entry.ToSourceConfig()
	}

	reg, err := registry.New(configs...)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid source catalog", goerr.V("path", path))
	}
	return reg, nil
}
