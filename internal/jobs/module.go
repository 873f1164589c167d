package jobs

import (
	"context"

	"github.com/robfig/cron/v3"
	"go.uber.org/fx"

	"github.com/stagedoor-labs/stagedoor/pkg/embeddings"
)

// Module provides the scheduled background jobs
var Module = fx.Module("jobs",
	fx.Provide(
		func() *cron.Cron { return cron.New() },
		func(svc *embeddings.Service) Embedder { return svc },
		NewWarmer,
	),
	fx.Invoke(StartJobs),
)

// StartJobs wires the jobs into the cron runner and binds its lifecycle
func StartJobs(lc fx.Lifecycle, c *cron.Cron, warmer *Warmer) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := warmer.Start(c); err != nil {
				return err
			}
			c.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			stopped := c.Stop()
			select {
			case <-stopped.Done():
			case <-ctx.Done():
			}
			return nil
		},
	})
}
