package auth

import (
	"go.uber.org/fx"
)

// Module provides auth dependencies
var Module = fx.Module("auth",
	fx.Provide(
		fx.Annotate(
			NewIntrospectionVerifier,
			fx.As(new(TokenVerifier)),
		),
		NewMiddleware,
	),
)
