package bootstrap

import (
	"commerce-core/cmd/bootstrap/components"

	"go.uber.org/fx"
)

var Module = fx.Options(
	ConfigModule,
	StorageModule,
	EngineModule,
	components.UseCaseModule,
	components.QueueModule,
	components.HandlerModule,
)
