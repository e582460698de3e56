package usecase

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/sync/errgroup"

	"github.com/lwalder/veille/pkg/domain/model"
	"github.com/lwalder/veille/pkg/domain/types"
	"github.com/lwalder/veille/pkg/registry"
	"github.com/lwalder/veille/pkg/service/source"
	"github.com/lwalder/veille/pkg/utils/logging"
)

// DefaultLimit is the item cap applied when the caller supplies none
const DefaultLimit = 50

// SelectorAll requests every active source
const SelectorAll = "all"

// AggregateUseCase resolves a source selection, dispatches every selected
// source concurrently, and merges the outcomes into one envelope.
type AggregateUseCase struct {
	registry *registry.Registry
	runner   *source.Runner
	now      func() time.Time
}

// AggregateOption configures an AggregateUseCase
type AggregateOption func(*AggregateUseCase)

// WithAggregateClock replaces the wall clock, for tests
func WithAggregateClock(now func() time.Time) AggregateOption {
	return func(uc *AggregateUseCase) {
		uc.now = now
	}
}

// NewAggregateUseCase creates an AggregateUseCase
func NewAggregateUseCase(reg *registry.Registry, runner *source.Runner, opts ...AggregateOption) *AggregateUseCase {
	uc := &AggregateUseCase{
		registry: reg,
		runner:   runner,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Aggregate runs one aggregation request. selector is "all" or a comma
// list of source names filtered against the active set. An empty
// resolution is an error; a resolution where every source subsequently
// fails is not — that asymmetry is deliberate (selection errors are the
// caller's to fix, execution failures are the sources').
func (uc *AggregateUseCase) Aggregate(ctx context.Context, selector, query string, limit int) (*model.Envelope, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	selected, err := uc.resolve(selector)
	if err != nil {
		return nil, err
	}

	logging.From(ctx).Info("aggregating sources",
		"count", len(selected), "selector", selector, "limit", limit)

	results := uc.dispatch(ctx, selected, query)
	return uc.buildEnvelope(results, limit), nil
}

func (uc *AggregateUseCase) resolve(selector string) ([]*model.SourceConfig, error) {
	active := uc.registry.ActiveSources()
	if selector == "" || selector == SelectorAll {
		if len(active) == 0 {
			return nil, goerr.Wrap(ErrNoValidSources, "no sources are active")
		}
		return active, nil
	}

	requested := make(map[types.SourceName]bool)
	for _, name := range strings.Split(selector, ",") {
		requested[types.SourceName(strings.TrimSpace(name))] = true
	}

	var selected []*model.SourceConfig
	for _, cfg := range active {
		if requested[cfg.Name] {
			selected = append(selected, cfg)
		}
	}

	if len(selected) == 0 {
		return nil, goerr.Wrap(ErrNoValidSources, "selection matches no active source",
			goerr.V("selector", selector), goerr.V("available", uc.registry.ActiveNames()))
	}
	return selected, nil
}

// dispatch runs every selected source concurrently and settles all
// branches: a failure or panic in one source never cancels a sibling.
func (uc *AggregateUseCase) dispatch(ctx context.Context, configs []*model.SourceConfig, query string) []model.SourceResult {
	results := make([]model.SourceResult, len(configs))

	var eg errgroup.Group
	for i, cfg := range configs {
		eg.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					logging.From(ctx).Error("panic in source dispatch",
						"source", cfg.Name, "panic", r)
					results[i] = model.SourceResult{
						Source: cfg.Name,
						Err:    goerr.New("source dispatch panicked", goerr.V("panic", r)),
					}
				}
			}()

			data, err := uc.runner.Collect(ctx, cfg, query)
			if err != nil {
				logging.From(ctx).Warn("source failed",
					"source", cfg.Name, "error", err.Error())
				results[i] = model.SourceResult{Source: cfg.Name, Err: err}
				return nil
			}

			results[i] = model.SourceResult{Source: cfg.Name, Success: true, Data: data}
			return nil
		})
	}
	// Branches never return errors; Wait is only the join barrier.
	_ = eg.Wait()

	return results
}

func (uc *AggregateUseCase) buildEnvelope(results []model.SourceResult, limit int) *model.Envelope {
	var merged []model.Item
	stats := make(map[types.SourceName]model.SourceStat, len(results))
	successful := 0

	for _, result := range results {
		if result.Success {
			merged = append(merged, result.Data.Items...)
			stats[result.Source] = model.SourceStat{
				ItemsCount: len(result.Data.Items),
				Success:    true,
			}
			successful++
			continue
		}

		stat := model.SourceStat{Success: false}
		if result.Err != nil {
			stat.Error = result.Err.Error()
		}
		stats[result.Source] = stat
	}

	// Newest first; equal timestamps keep their merge order
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].PublishedAt.After(merged[j].PublishedAt)
	})

	if len(merged) > limit {
		merged = merged[:limit]
	}
	if merged == nil {
		merged = []model.Item{}
	}

	return &model.Envelope{
		Format:        "aggregated",
		AggregationID: uuid.New().String(),
		Timestamp:     uc.now().UTC(),
		Summary: model.Summary{
			TotalSources:      len(results),
			SuccessfulSources: successful,
			TotalItems:        len(merged),
			LimitApplied:      limit,
		},
		Items:   merged,
		Sources: stats,
	}
}
