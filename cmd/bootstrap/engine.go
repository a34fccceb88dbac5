package bootstrap

import (
	"commerce-core/internal/engine"
	"commerce-core/internal/pkg/config"
	"commerce-core/internal/pkg/errs"

	"go.uber.org/fx"
)

var EngineModule = fx.Module("engine",
	fx.Provide(
		NewAllocator,
	),
)

// NewAllocator builds the configured allocation strategy and wraps it with
// retry so transient conflicts and lock timeouts are absorbed before they
// reach the use cases.
func NewAllocator(cfg config.Config, store engine.Store, locker engine.Locker) (engine.Allocator, error) {
	var allocator engine.Allocator
	switch cfg.Engine.Strategy {
	case "exclusive":
		allocator = engine.NewExclusiveAllocator(store, locker, cfg.Engine.LockWaitTimeout)
	case "optimistic":
		allocator = engine.NewOptimisticAllocator(store)
	default:
		return nil, errs.Newf("unknown engine strategy %q", cfg.Engine.Strategy)
	}

	policy := engine.RetryPolicy{
		MaxRetries: cfg.Engine.MaxRetries,
		Backoff:    cfg.Engine.RetryBackoff,
	}
	return engine.WithRetry(allocator, policy), nil
}
