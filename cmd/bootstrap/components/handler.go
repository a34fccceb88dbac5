package components

import (
	"commerce-core/internal/handler"
	"commerce-core/internal/handler/api"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewBalanceHandler,
		api.NewCouponHandler,
		api.NewOrderHandler,
	),
	fx.Invoke(handler.NewRouter),
)
