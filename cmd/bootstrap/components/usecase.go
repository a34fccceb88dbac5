package components

import (
	"commerce-core/internal/domain/order"
	"commerce-core/internal/pkg/clock"
	"commerce-core/internal/usecase/commands"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	usecaseBaseOption,
	usecaseCommandsModule,
)

var usecaseBaseOption = fx.Provide(
	clock.NewRealClock,
	fx.Annotate(
		order.NewDefaultPriceCalculator,
		fx.As(new(order.PriceCalculator)),
	),
)

var usecaseCommandsModule = fx.Module("usecase/commands",
	fx.Provide(
		commands.NewBalanceCommands,
		commands.NewCouponCommands,
		commands.NewOrderCommands,
	),
)
