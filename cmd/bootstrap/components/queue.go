package components

import (
	"context"

	"commerce-core/internal/pkg/config"
	"commerce-core/internal/queue"
	"commerce-core/internal/usecase/commands"

	"go.uber.org/fx"
)

var QueueModule = fx.Module("queue",
	fx.Provide(
		// The queue issues through the same allocation path direct issuance
		// uses, and the coupon commands also own the grant expiry sweep.
		fx.Annotate(
			func(cmds commands.CouponCommands) commands.CouponCommands { return cmds },
			fx.As(new(queue.Issuer)),
		),
		fx.Annotate(
			func(cmds commands.CouponCommands) commands.CouponCommands { return cmds },
			fx.As(new(queue.GrantSweeper)),
		),
		queue.NewService,
		func(cfg config.Config) config.QueueConfig { return cfg.Queue },
		queue.NewScheduler,
	),
	fx.Invoke(startScheduler),
)

func startScheduler(lc fx.Lifecycle, scheduler *queue.Scheduler) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			scheduler.Start()
			return nil
		},
		OnStop: func(_ context.Context) error {
			scheduler.Stop()
			return nil
		},
	})
}
