package model

import (
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/lwalder/veille/pkg/domain/types"
)

// AuthType describes how a source authenticates against its upstream API
type AuthType string

const (
	AuthTypeNone   AuthType = "none"
	AuthTypeBearer AuthType = "bearer"
	AuthTypeHeader AuthType = "header"
)

// Validate checks if the AuthType is one of the supported schemes
func (t AuthType) Validate() error {
	switch t {
	case AuthTypeNone, AuthTypeBearer, AuthTypeHeader:
		return nil
	default:
		return goerr.New("unsupported auth type", goerr.V("type", t))
	}
}

// AuthScheme describes the upstream authentication of a source. The secret
// itself is never stored here; SecretEnv names the environment variable
// holding it.
type AuthScheme struct {
	Type      AuthType
	Header    string
	SecretEnv string
}

// RateLimitPolicy caps how often a source's upstream may be called,
// regardless of which caller triggered the request.
type RateLimitPolicy struct {
	PerHour int `json:"per_hour" toml:"per_hour"`
	PerDay  int `json:"per_day" toml:"per_day"`
}

// SourceConfig is the static descriptor of one data source. Loaded once at
// startup and immutable afterwards.
type SourceConfig struct {
	Name          types.SourceName
	DisplayName   string
	Enabled       bool
	Priority      int
	CacheTTL      time.Duration
	RateLimit     RateLimitPolicy
	Endpoints     map[string]string
	Auth          AuthScheme
	DefaultParams map[string]string
	SearchQueries []string
}

// Validate checks if the SourceConfig is valid
func (c *SourceConfig) Validate() error {
	if err := c.Name.Validate(); err != nil {
		return goerr.Wrap(err, "invalid source name")
	}
	if c.DisplayName == "" {
		return goerr.New("source display name is required", goerr.V("name", c.Name))
	}
	if c.RateLimit.PerHour <= 0 {
		return goerr.New("source hourly rate limit must be positive",
			goerr.V("name", c.Name), goerr.V("per_hour", c.RateLimit.PerHour))
	}
	if err := c.Auth.Type.Validate(); err != nil {
		return goerr.Wrap(err, "invalid source auth", goerr.V("name", c.Name))
	}
	if c.Auth.Type != AuthTypeNone {
		if c.Auth.Header == "" {
			return goerr.New("source auth header is required", goerr.V("name", c.Name))
		}
		if c.Auth.SecretEnv == "" {
			return goerr.New("source auth secret env is required", goerr.V("name", c.Name))
		}
	}
	return nil
}

// Endpoint returns the named URL template of the source
func (c *SourceConfig) Endpoint(name string) (string, error) {
	url, ok := c.Endpoints[name]
	if !ok {
		return "", goerr.New("endpoint not configured",
			goerr.V("source", c.Name), goerr.V("endpoint", name))
	}
	return url, nil
}
