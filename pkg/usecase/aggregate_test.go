package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"

	"github.com/lwalder/veille/pkg/domain/model"
	"github.com/lwalder/veille/pkg/domain/types"
	"github.com/lwalder/veille/pkg/registry"
	"github.com/lwalder/veille/pkg/service/ratelimit"
	"github.com/lwalder/veille/pkg/service/source"
	"github.com/lwalder/veille/pkg/usecase"
)

// fakeAdapter returns canned items or a canned error
type fakeAdapter struct {
	name  types.SourceName
	items []model.Item
	err   error
	panic bool
}

func (a *fakeAdapter) Name() types.SourceName {
	return a.name
}

func (a *fakeAdapter) FetchRaw(ctx context.Context, query string) (any, error) {
	if a.panic {
		panic("adapter exploded")
	}
	if a.err != nil {
		return nil, a.err
	}
	return a.items, nil
}

func (a *fakeAdapter) Transform(raw any) (*source.Payload, error) {
	items, ok := raw.([]model.Item)
	if !ok {
		return nil, goerr.New("bad raw")
	}
	return &source.Payload{Items: items}, nil
}

func sourceConfig(name types.SourceName, priority int, enabled bool) *model.SourceConfig {
	return &model.SourceConfig{
		Name:        name,
		DisplayName: string(name),
		Enabled:     enabled,
		Priority:    priority,
		RateLimit:   model.RateLimitPolicy{PerHour: 1000, PerDay: 10000},
		Auth:        model.AuthScheme{Type: model.AuthTypeNone},
	}
}

func item(id string, published time.Time) model.Item {
	return model.Item{ID: id, Title: id, PublishedAt: published}
}

func newAggregator(t *testing.T, adapters []source.Adapter, configs ...*model.SourceConfig) *usecase.AggregateUseCase {
	t.Helper()
	reg, err := registry.New(configs...)
	gt.NoError(t, err).Required()
	runner := source.NewRunner(ratelimit.New(), adapters)
	return usecase.NewAggregateUseCase(reg, runner)
}

func TestAggregate(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

	t.Run("merges, sorts descending and truncates", func(t *testing.T) {
		uc := newAggregator(t,
			[]source.Adapter{
				&fakeAdapter{name: "a", items: []model.Item{
					item("a1", base.AddDate(0, 0, 1)),
					item("a2", base.AddDate(0, 0, 3)),
				}},
				&fakeAdapter{name: "b", items: []model.Item{
					item("b1", base.AddDate(0, 0, 2)),
					item("b2", base.AddDate(0, 0, 4)),
				}},
			},
			sourceConfig("a", 1, true),
			sourceConfig("b", 2, true),
		)

		env, err := uc.Aggregate(ctx, "all", "", 3)
		gt.NoError(t, err).Required()

		gt.Value(t, env.Format).Equal("aggregated")
		gt.Value(t, env.Summary).Equal(model.Summary{
			TotalSources:      2,
			SuccessfulSources: 2,
			TotalItems:        3,
			LimitApplied:      3,
		})

		gt.Array(t, env.Items).Length(3).Required()
		gt.Value(t, env.Items[0].ID).Equal("b2")
		gt.Value(t, env.Items[1].ID).Equal("a2")
		gt.Value(t, env.Items[2].ID).Equal("b1")
	})

	t.Run("one failing source never downgrades the aggregate", func(t *testing.T) {
		uc := newAggregator(t,
			[]source.Adapter{
				&fakeAdapter{name: "a", items: []model.Item{
					item("a1", base.AddDate(0, 0, 1)),
					item("a2", base.AddDate(0, 0, 2)),
					item("a3", base.AddDate(0, 0, 3)),
				}},
				&fakeAdapter{name: "b", err: goerr.New("connection refused")},
			},
			sourceConfig("a", 1, true),
			sourceConfig("b", 2, true),
		)

		env, err := uc.Aggregate(ctx, "all", "", 10)
		gt.NoError(t, err).Required()

		gt.Number(t, env.Summary.TotalSources).Equal(2)
		gt.Number(t, env.Summary.SuccessfulSources).Equal(1)
		gt.Array(t, env.Items).Length(3)
		gt.Value(t, env.Items[0].ID).Equal("a3")

		gt.Bool(t, env.Sources["b"].Success).False()
		gt.Value(t, env.Sources["b"].Error).NotEqual("")
		gt.Bool(t, env.Sources["a"].Success).True()
		gt.Number(t, env.Sources["a"].ItemsCount).Equal(3)
	})

	t.Run("a panicking source is contained", func(t *testing.T) {
		uc := newAggregator(t,
			[]source.Adapter{
				&fakeAdapter{name: "a", items: []model.Item{item("a1", base)}},
				&fakeAdapter{name: "b", panic: true},
			},
			sourceConfig("a", 1, true),
			sourceConfig("b", 2, true),
		)

		env, err := uc.Aggregate(ctx, "all", "", 10)
		gt.NoError(t, err).Required()
		gt.Number(t, env.Summary.SuccessfulSources).Equal(1)
		gt.Bool(t, env.Sources["b"].Success).False()
	})

	t.Run("every source failing is still a successful aggregate", func(t *testing.T) {
		uc := newAggregator(t,
			[]source.Adapter{&fakeAdapter{name: "a", err: goerr.New("down")}},
			sourceConfig("a", 1, true),
		)

		env, err := uc.Aggregate(ctx, "all", "", 10)
		gt.NoError(t, err).Required()
		gt.Number(t, env.Summary.SuccessfulSources).Equal(0)
		gt.Value(t, env.Items).NotNil()
		gt.Array(t, env.Items).Length(0)
	})

	t.Run("comma list filters the active set", func(t *testing.T) {
		uc := newAggregator(t,
			[]source.Adapter{
				&fakeAdapter{name: "a", items: []model.Item{item("a1", base)}},
				&fakeAdapter{name: "b", items: []model.Item{item("b1", base)}},
			},
			sourceConfig("a", 1, true),
			sourceConfig("b", 2, true),
		)

		env, err := uc.Aggregate(ctx, "b", "", 10)
		gt.NoError(t, err).Required()
		gt.Number(t, env.Summary.TotalSources).Equal(1)
		gt.Value(t, env.Items[0].ID).Equal("b1")
	})

	t.Run("unknown selection is a client error listing the catalog", func(t *testing.T) {
		uc := newAggregator(t,
			[]source.Adapter{&fakeAdapter{name: "a"}},
			sourceConfig("a", 1, true),
		)

		_, err := uc.Aggregate(ctx, "nope", "", 10)
		gt.Error(t, err).Is(usecase.ErrNoValidSources)
	})

	t.Run("disabled sources are not selectable", func(t *testing.T) {
		uc := newAggregator(t,
			[]source.Adapter{
				&fakeAdapter{name: "a", items: []model.Item{item("a1", base)}},
				&fakeAdapter{name: "b", items: []model.Item{item("b1", base)}},
			},
			sourceConfig("a", 1, true),
			sourceConfig("b", 2, false),
		)

		env, err := uc.Aggregate(ctx, "all", "", 10)
		gt.NoError(t, err).Required()
		gt.Number(t, env.Summary.TotalSources).Equal(1)

		_, err = uc.Aggregate(ctx, "b", "", 10)
		gt.Error(t, err).Is(usecase.ErrNoValidSources)
	})

	t.Run("zero limit falls back to the default", func(t *testing.T) {
		uc := newAggregator(t,
			[]source.Adapter{&fakeAdapter{name: "a", items: []model.Item{item("a1", base)}}},
			sourceConfig("a", 1, true),
		)

		env, err := uc.Aggregate(ctx, "all", "", 0)
		gt.NoError(t, err).Required()
		gt.Number(t, env.Summary.LimitApplied).Equal(usecase.DefaultLimit)
	})

	t.Run("equal timestamps keep a stable order", func(t *testing.T) {
		same := base.AddDate(0, 0, 5)
		uc := newAggregator(t,
			[]source.Adapter{&fakeAdapter{name: "a", items: []model.Item{
				item("first", same),
				item("second", same),
			}}},
			sourceConfig("a", 1, true),
		)

		env, err := uc.Aggregate(ctx, "all", "", 10)
		gt.NoError(t, err).Required()
		gt.Value(t, env.Items[0].ID).Equal("first")
		gt.Value(t, env.Items[1].ID).Equal("second")
	})
}
