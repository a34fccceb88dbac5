package bootstrap

import (
	"context"

	"commerce-core/internal/engine"
	"commerce-core/internal/infra/db"
	"commerce-core/internal/infra/memstore"
	"commerce-core/internal/infra/pgstore"
	repo_impl "commerce-core/internal/infra/repository"
	"commerce-core/internal/pkg/config"
	"commerce-core/internal/pkg/errs"
	"commerce-core/internal/queue"
	"commerce-core/internal/usecase/commands"

	"go.uber.org/fx"
)

// Storage bundles one driver's implementations so STORE_DRIVER switches the
// whole persistence surface at once.
type Storage struct {
	Store        engine.Store
	Locker       engine.Locker
	Orders       commands.OrderRepository
	QueueEntries queue.EntryRepository
	Coupons      queue.CouponSource
	Grants       commands.GrantSource
}

var StorageModule = fx.Module("storage",
	fx.Provide(
		NewStorage,
		func(s *Storage) engine.Store { return s.Store },
		func(s *Storage) engine.Locker { return s.Locker },
		func(s *Storage) commands.OrderRepository { return s.Orders },
		func(s *Storage) queue.EntryRepository { return s.QueueEntries },
		func(s *Storage) queue.CouponSource { return s.Coupons },
		func(s *Storage) commands.GrantSource { return s.Grants },
	),
)

func NewStorage(lc fx.Lifecycle, cfg config.Config) (*Storage, error) {
	switch cfg.Store.Driver {
	case "memory":
		mem := memstore.NewStore()
		return &Storage{
			Store:        mem,
			Locker:       mem,
			Orders:       memstore.NewOrderRepository(),
			QueueEntries: memstore.NewQueueEntryRepository(),
			Coupons:      memstore.NewCouponSource(mem),
			Grants:       memstore.NewGrantSource(mem),
		}, nil

	case "postgres":
		pool, cleanup, err := db.Connect(cfg.DB)
		if err != nil {
			return nil, err
		}
		lc.Append(fx.Hook{
			OnStop: func(_ context.Context) error {
				cleanup()
				return nil
			},
		})

		pg := pgstore.NewStore(pool)
		return &Storage{
			Store:        pg,
			Locker:       pg,
			Orders:       repo_impl.NewOrderRepository(pool),
			QueueEntries: repo_impl.NewQueueEntryRepository(pool),
			Coupons:      pgstore.NewCouponSource(pg),
			Grants:       pgstore.NewGrantSource(pg),
		}, nil

	default:
		return nil, errs.Newf("unknown store driver %q", cfg.Store.Driver)
	}
}
