package profile

import (
	"go.uber.org/fx"
)

// Module provides the actor profile domain
var Module = fx.Module("profile",
	fx.Provide(NewRepository),
	fx.Provide(NewService),
	fx.Provide(NewHandler),
	fx.Invoke(RegisterRoutes),
)
