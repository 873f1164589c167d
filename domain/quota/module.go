package quota

import (
	"go.uber.org/fx"

	"github.com/stagedoor-labs/stagedoor/internal/config"
)

// Module provides the quota domain
var Module = fx.Module("quota",
	fx.Provide(
		fx.Annotate(
			NewRepository,
			fx.As(new(Store)),
		),
		NewGate,
		NewHandler,
		func(cfg *config.Config) *DemoLimiter {
			return NewDemoLimiter(cfg.Search.DemoRateLimitWindow())
		},
	),
	fx.Invoke(RegisterRoutes),
)
