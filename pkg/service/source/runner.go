package source

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/lwalder/veille/pkg/domain/model"
	"github.com/lwalder/veille/pkg/domain/types"
	"github.com/lwalder/veille/pkg/service/ratelimit"
)

// Runner wraps every adapter call with the shared orchestration steps:
// source quota check, fetch, transform, output validation and canonical
// wrapping. The adapter set is closed at construction time.
type Runner struct {
	limiter  *ratelimit.Limiter
	adapters map[types.SourceName]Adapter
	now      func() time.Time
}

// RunnerOption configures a Runner
type RunnerOption func(*Runner)

// WithRunnerClock replaces the wall clock, for tests
func WithRunnerClock(now func() time.Time) RunnerOption {
	return func(r *Runner) {
		r.now = now
	}
}

// NewRunner creates a Runner over the given adapters
func NewRunner(limiter *ratelimit.Limiter, adapters []Adapter, opts ...RunnerOption) *Runner {
	r := &Runner{
		limiter:  limiter,
		adapters: make(map[types.SourceName]Adapter, len(adapters)),
		now:      time.Now,
	}
	for _, a := range adapters {
		r.adapters[a.Name()] = a
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Adapter returns the registered adapter for name
func (r *Runner) Adapter(name types.SourceName) (Adapter, bool) {
	a, ok := r.adapters[name]
	return a, ok
}

// Collect fetches and transforms one source's data for one request. The
// source's fixed hourly bucket is consulted before any upstream call.
func (r *Runner) Collect(ctx context.Context, cfg *model.SourceConfig, query string) (*model.SourceData, error) {
	if !r.limiter.AllowBucket("source:"+cfg.Name.String(), time.Hour, cfg.RateLimit.PerHour) {
		return nil, goerr.Wrap(ErrSourceRateLimited, "hourly quota exhausted",
			goerr.V("source", cfg.Name), goerr.V("per_hour", cfg.RateLimit.PerHour))
	}

	adapter, ok := r.adapters[cfg.Name]
	if !ok {
		return nil, goerr.Wrap(ErrUnknownAdapter, "source is cataloged but not implemented",
			goerr.V("source", cfg.Name))
	}

	raw, err := adapter.FetchRaw(ctx, query)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to fetch raw data", goerr.V("source", cfg.Name))
	}

	payload, err := adapter.Transform(raw)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to transform data", goerr.V("source", cfg.Name))
	}
	if payload == nil {
		return nil, goerr.Wrap(ErrInvalidSourceOutput, "transform returned no payload",
			goerr.V("source", cfg.Name))
	}

	items := payload.Items
	if items == nil {
		items = []model.Item{}
	}
	metadata := payload.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}

	return &model.SourceData{
		Source:    cfg.Name,
		Timestamp: r.now().UTC(),
		Count:     len(items),
		Items:     items,
		Metadata:  metadata,
	}, nil
}
