package billingevent

import "go.uber.org/fx"

var Module = fx.Module("billing.events",
	fx.Provide(NewOutbox),
	fx.Provide(NewRelay),
)
