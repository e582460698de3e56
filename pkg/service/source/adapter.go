package source

import (
	"context"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/lwalder/veille/pkg/domain/model"
	"github.com/lwalder/veille/pkg/domain/types"
)

var (
	// ErrSourceRateLimited is returned when a source's own hourly quota is
	// exhausted. Distinct from the caller quota: this one protects the
	// upstream API from aggregate overuse.
	ErrSourceRateLimited = goerr.New("source rate limit exceeded")

	// ErrMissingUpstreamCredential is returned when the secret named by a
	// source's auth scheme is absent from the environment
	ErrMissingUpstreamCredential = goerr.New("missing upstream credential")

	// ErrInvalidSourceOutput is returned when an adapter's transform
	// produces no structured result
	ErrInvalidSourceOutput = goerr.New("invalid source output")

	// ErrUnknownAdapter is returned when a cataloged source has no
	// registered adapter implementation
	ErrUnknownAdapter = goerr.New("no adapter registered for source")
)

// LookupEnv resolves upstream secrets. Injectable for tests.
type LookupEnv func(key string) (string, bool)

// Payload is the transformed output of one adapter: canonical items plus
// source-specific metadata.
type Payload struct {
	Items    []model.Item
	Metadata map[string]any
}

// Adapter is the capability contract every concrete source implements.
// FetchRaw and Transform are split so the transform logic is testable on
// recorded payloads without network access.
type Adapter interface {
	Name() types.SourceName
	FetchRaw(ctx context.Context, query string) (any, error)
	Transform(raw any) (*Payload, error)
}

type adapterOptions struct {
	client *http.Client
	lookup LookupEnv
}

// AdapterOption configures a concrete adapter
type AdapterOption func(*adapterOptions)

// WithHTTPClient replaces the upstream HTTP client
func WithHTTPClient(client *http.Client) AdapterOption {
	return func(o *adapterOptions) {
		o.client = client
	}
}

// WithLookupEnv replaces the secret resolver, for tests
func WithLookupEnv(lookup LookupEnv) AdapterOption {
	return func(o *adapterOptions) {
		o.lookup = lookup
	}
}

func newAdapterOptions(opts []AdapterOption) adapterOptions {
	o := adapterOptions{
		// Upstream calls must not hold request capacity indefinitely
		client: &http.Client{Timeout: 10 * time.Second},
		lookup: os.LookupEnv,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// authHeaders derives the upstream auth headers from the source's scheme
func authHeaders(cfg *model.SourceConfig, lookup LookupEnv) (http.Header, error) {
	headers := http.Header{}
	if cfg.Auth.Type == model.AuthTypeNone {
		return headers, nil
	}

	secret, ok := lookup(cfg.Auth.SecretEnv)
	if !ok || secret == "" {
		return nil, goerr.Wrap(ErrMissingUpstreamCredential, "secret is not configured",
			goerr.V("source", cfg.Name), goerr.V("env", cfg.Auth.SecretEnv))
	}

	switch cfg.Auth.Type {
	case model.AuthTypeBearer:
		headers.Set(cfg.Auth.Header, "Bearer "+secret)
	case model.AuthTypeHeader:
		headers.Set(cfg.Auth.Header, secret)
	}
	return headers, nil
}

// fallbackQuery returns the caller query, or the OR-combination of the
// source's configured fallback queries when the caller supplied none.
func fallbackQuery(cfg *model.SourceConfig, query string) string {
	if query != "" {
		return query
	}
	return strings.Join(cfg.SearchQueries, " OR ")
}
