package registry

import (
	"sort"

	"github.com/m-mizutani/goerr/v2"

	"github.com/lwalder/veille/pkg/domain/model"
	"github.com/lwalder/veille/pkg/domain/types"
)

// ErrConfigNotFound is returned when a source name is absent from the
// catalog. A disabled source is still found; only unknown names fail.
var ErrConfigNotFound = goerr.New("source configuration not found")

// Registry is the static catalog of known data sources. It is built once
// at startup and read-only afterwards, so no locking is needed.
type Registry struct {
	sources map[types.SourceName]*model.SourceConfig
	order   []types.SourceName
}

// New builds a registry from the given source configs, validating each
// one and rejecting duplicate names.
func New(configs ...*model.SourceConfig) (*Registry, error) {
	r := &Registry{
		sources: make(map[types.SourceName]*model.SourceConfig, len(configs)),
	}

	for _, cfg := range configs {
		if err := cfg.Validate(); err != nil {
			return nil, goerr.Wrap(err, "invalid source config")
		}
		if _, exists := r.sources[cfg.Name]; exists {
			return nil, goerr.New("duplicate source name", goerr.V("name", cfg.Name))
		}
		r.sources[cfg.Name] = cfg
		r.order = append(r.order, cfg.Name)
	}

	return r, nil
}

// Source returns the config of the named source, whether enabled or not
func (r *Registry) Source(name types.SourceName) (*model.SourceConfig, error) {
	cfg, ok := r.sources[name]
	if !ok {
		return nil, goerr.Wrap(ErrConfigNotFound, "unknown source", goerr.V("name", name))
	}
	return cfg, nil
}

// ActiveSources returns the enabled sources sorted ascending by priority.
// Equal priorities keep their declaration order.
func (r *Registry) ActiveSources() []*model.SourceConfig {
	var active []*model.SourceConfig
	for _, name := range r.order {
		if cfg := r.sources[name]; cfg.Enabled {
			active = append(active, cfg)
		}
	}

	sort.SliceStable(active, func(i, j int) bool {
		return active[i].Priority < active[j].Priority
	})

	return active
}

// ActiveNames returns the names of the enabled sources in priority order
func (r *Registry) ActiveNames() []types.SourceName {
	active := r.ActiveSources()
	names := make([]types.SourceName, len(active))
	for i, cfg := range active {
		names[i] = cfg.Name
	}
	return names
}

// AllSources returns every cataloged source in declaration order,
// disabled ones included
func (r *Registry) AllSources() []*model.SourceConfig {
	all := make([]*model.SourceConfig, 0, len(r.order))
	for _, name := range r.order {
		all = append(all, r.sources[name])
	}
	return all
}

// Len returns the total number of cataloged sources
func (r *Registry) Len() int {
	return len(r.sources)
}
