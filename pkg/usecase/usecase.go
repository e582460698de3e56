package usecase

import (
	"github.com/lwalder/veille/pkg/domain/types"
	"github.com/lwalder/veille/pkg/registry"
	"github.com/lwalder/veille/pkg/service/ratelimit"
	"github.com/lwalder/veille/pkg/service/source"
)

// UseCases bundles the request-path business logic
type UseCases struct {
	Auth      *AuthUseCase
	Aggregate *AggregateUseCase
}

// New creates the use cases over a shared registry and rate limiter. The
// limiter is shared on purpose: caller quotas and source quotas live in
// the same process-scoped store.
func New(reg *registry.Registry, runner *source.Runner, secrets map[types.Role]string, limiter *ratelimit.Limiter, opts ...AggregateOption) *UseCases {
	return &UseCases{
		Auth:      NewAuthUseCase(secrets, limiter),
		Aggregate: NewAggregateUseCase(reg, runner, opts...),
	}
}
