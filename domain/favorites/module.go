package favorites

import (
	"go.uber.org/fx"
)

// Module provides the favorites domain
var Module = fx.Module("favorites",
	fx.Provide(NewRepository),
	fx.Provide(NewService),
	fx.Provide(NewHandler),
	fx.Invoke(RegisterRoutes),
)
