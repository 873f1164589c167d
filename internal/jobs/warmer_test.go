package jobs

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stagedoor-labs/stagedoor/domain/search"
	"github.com/stagedoor-labs/stagedoor/internal/cache"
	"github.com/stagedoor-labs/stagedoor/internal/config"
	"github.com/stagedoor-labs/stagedoor/pkg/embeddings"
)

type fakeEmbedder struct {
	enabled bool
	vec     []float32
	err     error
	queries []string
}

func (f *fakeEmbedder) IsEnabled() bool { return f.enabled }

func (f *fakeEmbedder) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	f.queries = append(f.queries, query)
	return f.vec, f.err
}

func testWarmer(embedder Embedder, queries []string) (*Warmer, *cache.Cache) {
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	c := cache.New(nil, log)

	cfg := &config.Config{
		Search: config.SearchConfig{
			WarmQueries:  queries,
			WarmSchedule: "0 4 * * *",
		},
	}

	return NewWarmer(cfg, search.NewCorrector(), search.NewExtractor(), embedder, c, log), c
}

func TestRunWarmsConfiguredQueries(t *testing.T) {
	embedder := &fakeEmbedder{enabled: true, vec: []float32{0.1, 0.2}}
	w, c := testWarmer(embedder, []string{"sad monologue", "shakespeare"})

	w.Run(context.Background())

	require.Len(t, embedder.queries, 2)

	// The warmed entry must sit under the key the live path computes
	filters := search.NewExtractor().Extract("sad monologue").Filters
	enriched := embeddings.EnrichQuery("sad monologue", filters.QueryFacets())
	vec, ok := c.GetEmbedding(context.Background(), cache.EmbeddingKey(enriched))
	require.True(t, ok)
	assert.Equal(t, []float32{0.1, 0.2}, vec)
}

func TestRunCorrectsBeforeWarming(t *testing.T) {
	embedder := &fakeEmbedder{enabled: true, vec: []float32{0.5}}
	w, c := testWarmer(embedder, []string{"shakespere monologe"})

	w.Run(context.Background())

	filters := search.NewExtractor().Extract("shakespeare monologue").Filters
	enriched := embeddings.EnrichQuery("shakespeare monologue", filters.QueryFacets())
	_, ok := c.GetEmbedding(context.Background(), cache.EmbeddingKey(enriched))
	assert.True(t, ok, "warm keys are computed from the corrected query")
}

func TestRunSkipsWhenEmbeddingsDisabled(t *testing.T) {
	embedder := &fakeEmbedder{enabled: false}
	w, _ := testWarmer(embedder, []string{"sad monologue"})

	w.Run(context.Background())
	assert.Empty(t, embedder.queries)
}

func TestRunContinuesPastFailures(t *testing.T) {
	embedder := &fakeEmbedder{enabled: true, err: errors.New("api down")}
	w, _ := testWarmer(embedder, []string{"one", "two"})

	w.Run(context.Background())
	assert.Len(t, embedder.queries, 2, "a failed query does not stop the run")
}

func TestScheduleFor(t *testing.T) {
	w, _ := testWarmer(&fakeEmbedder{}, nil)
	_, ok := w.scheduleFor()
	assert.False(t, ok, "no warm queries disables the schedule")

	w, _ = testWarmer(&fakeEmbedder{}, []string{"sad monologue"})
	schedule, ok := w.scheduleFor()
	require.True(t, ok)
	assert.Equal(t, "0 4 * * *", schedule)

	w.cfg.Search.WarmSchedule = ""
	_, ok = w.scheduleFor()
	assert.False(t, ok)
}
