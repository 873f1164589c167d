package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/stagedoor-labs/stagedoor/domain/search"
	"github.com/stagedoor-labs/stagedoor/internal/cache"
	"github.com/stagedoor-labs/stagedoor/internal/config"
	"github.com/stagedoor-labs/stagedoor/pkg/embeddings"
	"github.com/stagedoor-labs/stagedoor/pkg/logger"
)

// warmRunBudget bounds one warming run; a stuck embedding API must not pin
// the cron goroutine until the next schedule.
const warmRunBudget = 5 * time.Minute

// Embedder produces query embeddings for warming
type Embedder interface {
	IsEnabled() bool
	EmbedQuery(ctx context.Context, query string) ([]float32, error)
}

// Warmer pre-embeds the configured common queries on a schedule so they are
// always served from the embedding cache. Warmed entries get the extended
// TTL.
type Warmer struct {
	cfg       *config.Config
	corrector *search.Corrector
	extractor *search.Extractor
	embedder  Embedder
	cache     *cache.Cache
	log       *slog.Logger
}

// NewWarmer creates a cache warmer
func NewWarmer(
	cfg *config.Config,
	corrector *search.Corrector,
	extractor *search.Extractor,
	embedder Embedder,
	c *cache.Cache,
	log *slog.Logger,
) *Warmer {
	return &Warmer{
		cfg:       cfg,
		corrector: corrector,
		extractor: extractor,
		embedder:  embedder,
		cache:     c,
		log:       log.With(logger.Scope("jobs.warmer")),
	}
}

// Run warms every configured query once. Each query goes through the same
// correction and extraction the live path applies, so the cache key matches
// what a real request computes.
func (w *Warmer) Run(ctx context.Context) {
	if !w.embedder.IsEnabled() {
		w.log.Info("embeddings disabled, skipping cache warming")
		return
	}

	ctx, cancel := context.WithTimeout(ctx, warmRunBudget)
	defer cancel()

	warmed := 0
	for _, q := range w.cfg.Search.WarmQueries {
		if err := w.warmQuery(ctx, q); err != nil {
			w.log.Warn("failed to warm query", slog.String("query", q), logger.Error(err))
			continue
		}
		warmed++
	}

	w.log.Info("cache warming run complete",
		slog.Int("warmed", warmed),
		slog.Int("configured", len(w.cfg.Search.WarmQueries)),
	)
}

func (w *Warmer) warmQuery(ctx context.Context, query string) error {
	corrected := w.corrector.Correct(query).Corrected
	filters := w.extractor.Extract(corrected).Filters

	enriched := embeddings.EnrichQuery(corrected, filters.QueryFacets())
	key := cache.EmbeddingKey(enriched)

	vec, err := w.embedder.EmbedQuery(ctx, enriched)
	if err != nil {
		return err
	}

	w.cache.SetEmbedding(ctx, key, vec, true)
	return nil
}

// scheduleFor returns the cron schedule, or false when warming is disabled
func (w *Warmer) scheduleFor() (string, bool) {
	s := w.cfg.Search.WarmSchedule
	if s == "" || len(w.cfg.Search.WarmQueries) == 0 {
		return "", false
	}
	return s, true
}

// Start registers the warmer with the cron runner and runs a first pass in
// the background so a fresh deploy starts warm.
func (w *Warmer) Start(c *cron.Cron) error {
	schedule, ok := w.scheduleFor()
	if !ok {
		w.log.Info("cache warming disabled")
		return nil
	}

	if _, err := c.AddFunc(schedule, func() { w.Run(context.Background()) }); err != nil {
		return err
	}

	go w.Run(context.Background())

	w.log.Info("cache warming scheduled", slog.String("schedule", schedule))
	return nil
}
