package search

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stagedoor-labs/stagedoor/domain/catalog"
	"github.com/stagedoor-labs/stagedoor/domain/profile"
	"github.com/stagedoor-labs/stagedoor/domain/quota"
	"github.com/stagedoor-labs/stagedoor/internal/cache"
	"github.com/stagedoor-labs/stagedoor/internal/config"
	"github.com/stagedoor-labs/stagedoor/pkg/apperror"
	"github.com/stagedoor-labs/stagedoor/pkg/auth"
)

type fakeRetriever struct {
	dense        []Candidate
	denseErr     error
	lexical      []Candidate
	lexErr       error
	denseCalls   int
	lexCalls     int
	lastDenseK   int
	lastLexLimit int
}

func (f *fakeRetriever) DenseSearch(ctx context.Context, vec []float32, fl Filters, k int) ([]Candidate, error) {
	f.denseCalls++
	f.lastDenseK = k
	return f.dense, f.denseErr
}

func (f *fakeRetriever) LexicalSearch(ctx context.Context, query string, fl Filters, limit int) ([]Candidate, error) {
	f.lexCalls++
	f.lastLexLimit = limit
	return f.lexical, f.lexErr
}

func (f *fakeRetriever) DenseSearchFilmTV(ctx context.Context, vec []float32, k int) ([]Candidate, error) {
	f.denseCalls++
	f.lastDenseK = k
	return f.dense, f.denseErr
}

func (f *fakeRetriever) LexicalSearchFilmTV(ctx context.Context, query string, limit int) ([]Candidate, error) {
	f.lexCalls++
	f.lastLexLimit = limit
	return f.lexical, f.lexErr
}

type fakeEmbedder struct {
	enabled bool
	vec     []float32
	err     error
	calls   int
}

func (f *fakeEmbedder) IsEnabled() bool { return f.enabled }

func (f *fakeEmbedder) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	f.calls++
	return f.vec, f.err
}

type fakeGate struct {
	decision quota.Decision
	checkErr error
	checks   int
	recorded []quota.Feature
}

func (f *fakeGate) Check(ctx context.Context, user *auth.AuthUser, feature quota.Feature) (quota.Decision, error) {
	f.checks++
	return f.decision, f.checkErr
}

func (f *fakeGate) Record(ctx context.Context, userID string, feature quota.Feature) {
	f.recorded = append(f.recorded, feature)
}

type fakeHydrator struct {
	monologues map[string]*catalog.Monologue
	random     []catalog.Monologue
	randCalls  int
}

func (f *fakeHydrator) GetMonologuesByIDs(ctx context.Context, ids []string) ([]catalog.Monologue, error) {
	var out []catalog.Monologue
	for _, id := range ids {
		if m, ok := f.monologues[id]; ok {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (f *fakeHydrator) GetFilmTVByIDs(ctx context.Context, ids []string) ([]catalog.FilmTVReference, error) {
	return nil, nil
}

func (f *fakeHydrator) RandomMonologues(ctx context.Context, limit int, maxOverdone float64) ([]catalog.Monologue, error) {
	f.randCalls++
	return f.random, nil
}

type fakeProfiles struct {
	prof *profile.ActorProfile
	err  error
}

func (f *fakeProfiles) GetEntity(ctx context.Context, userID string) (*profile.ActorProfile, error) {
	return f.prof, f.err
}

type fakeFavorites struct {
	ids map[string]bool
	err error
}

func (f *fakeFavorites) MonologueIDSet(ctx context.Context, userID string) (map[string]bool, error) {
	return f.ids, f.err
}

type fakeParser struct {
	filters Filters
	calls   int
}

func (f *fakeParser) Parse(ctx context.Context, query string) Filters {
	f.calls++
	return f.filters
}

type serviceFixture struct {
	svc       *Service
	retriever *fakeRetriever
	embedder  *fakeEmbedder
	gate      *fakeGate
	hydrator  *fakeHydrator
	parser    *fakeParser
}

func newFixture(t *testing.T) *serviceFixture {
	t.Helper()

	cfg := &config.Config{
		Search: config.SearchConfig{
			DefaultPageSize:    20,
			MaxPageSize:        100,
			MaxCandidates:      500,
			BestMatchThreshold: 0.90,
			RequestDeadlineMS:  5000,
		},
	}

	f := &serviceFixture{
		retriever: &fakeRetriever{},
		embedder:  &fakeEmbedder{enabled: true, vec: []float32{0.1, 0.2}},
		gate:      &fakeGate{decision: quota.Decision{Allowed: true, Limit: 25}},
		hydrator:  &fakeHydrator{monologues: map[string]*catalog.Monologue{}},
		parser:    &fakeParser{},
	}

	log := testLogger()
	f.svc = NewService(
		cfg,
		NewCorrector(),
		NewClassifier(),
		NewExtractor(),
		f.parser,
		NewMerger(cfg),
		f.retriever,
		f.embedder,
		f.gate,
		f.hydrator,
		&fakeProfiles{},
		&fakeFavorites{},
		cache.New(nil, log),
		newMetrics(prometheus.NewRegistry()),
		log,
	)
	return f
}

func (f *serviceFixture) addMonologue(id string) {
	f.hydrator.monologues[id] = &catalog.Monologue{
		ID:                id,
		CharacterGender:   "any",
		CharacterAgeRange: "any",
		Work:              &catalog.Work{Title: "Hamlet", Author: "William Shakespeare"},
	}
}

func testUser() *auth.AuthUser {
	return &auth.AuthUser{ID: "11111111-1111-1111-1111-111111111111", Email: "actor@example.com"}
}

func testRequest(q string) SearchRequest {
	return SearchRequest{Query: q, Page: 1, PageSize: 20, UserID: testUser().ID}
}

func TestSearchHappyPath(t *testing.T) {
	f := newFixture(t)
	f.addMonologue("a")
	f.addMonologue("b")
	f.retriever.dense = []Candidate{
		{ID: "a", Score: 0.8, MatchType: MatchTypeSemantic},
		{ID: "b", Score: 0.6, MatchType: MatchTypeSemantic},
	}

	resp, err := f.svc.Search(context.Background(), testUser(), testRequest("sad monologue"))
	require.NoError(t, err)

	require.Len(t, resp.Results, 2)
	assert.Equal(t, "a", resp.Results[0].ID)
	assert.Equal(t, 2, resp.Total)
	assert.Equal(t, Tier2, resp.Tier)
	assert.Equal(t, 1, f.gate.checks)
	assert.Equal(t, []quota.Feature{quota.FeatureAISearch, quota.FeatureTotalSearch}, f.gate.recorded)
}

func TestSearchEmptyQueryBrowsesWithoutQuota(t *testing.T) {
	f := newFixture(t)
	f.hydrator.random = []catalog.Monologue{{ID: "r1", Work: &catalog.Work{}}}

	resp, err := f.svc.Search(context.Background(), testUser(), testRequest("  "))
	require.NoError(t, err)

	assert.Equal(t, 1, f.hydrator.randCalls)
	assert.Len(t, resp.Results, 1)
	assert.Equal(t, 0, f.gate.checks, "browsing never touches the quota gate")
	assert.Empty(t, f.gate.recorded)
	assert.Equal(t, 0, f.retriever.lexCalls)
}

func TestSearchQuotaDenied(t *testing.T) {
	f := newFixture(t)
	f.gate.decision = quota.Decision{
		Allowed: false,
		Reason:  quota.ReasonQuotaExceeded,
		Limit:   25,
		Used:    25,
	}

	_, err := f.svc.Search(context.Background(), testUser(), testRequest("sad monologue"))
	require.Error(t, err)

	appErr := requireAppError(t, err)
	assert.Equal(t, "ai_searches_count_limit_exceeded", appErr.Code)
	assert.Equal(t, 25, appErr.Details["limit"])
	assert.Equal(t, 25, appErr.Details["used"])
	assert.Equal(t, 0, f.retriever.lexCalls, "denied requests do no retrieval work")
	assert.Empty(t, f.gate.recorded, "denied requests spend no quota")
}

func TestSearchFeatureNotAvailable(t *testing.T) {
	f := newFixture(t)
	f.gate.decision = quota.Decision{Allowed: false, Reason: quota.ReasonFeatureNotAvailable}

	_, err := f.svc.Search(context.Background(), testUser(), testRequest("sad monologue"))
	require.Error(t, err)
	assert.Equal(t, "feature_not_available", requireAppError(t, err).Code)
}

func TestSearchAnonymousSkipsGate(t *testing.T) {
	f := newFixture(t)
	f.addMonologue("a")
	f.retriever.lexical = []Candidate{{ID: "a", Score: 0.95, MatchType: MatchTypeLexical}}

	req := testRequest("hamlet")
	req.UserID = ""
	resp, err := f.svc.Search(context.Background(), nil, req)
	require.NoError(t, err)

	assert.Len(t, resp.Results, 1)
	assert.Equal(t, 0, f.gate.checks)
	assert.Empty(t, f.gate.recorded)
}

func TestSearchEmbeddingFailureDegradesToLexical(t *testing.T) {
	f := newFixture(t)
	f.addMonologue("a")
	f.embedder.err = errors.New("embedding api down")
	f.retriever.lexical = []Candidate{{ID: "a", Score: 0.95, MatchType: MatchTypeLexical}}

	resp, err := f.svc.Search(context.Background(), testUser(), testRequest("sad monologue"))
	require.NoError(t, err)

	assert.Equal(t, 0, f.retriever.denseCalls, "no embedding means no dense path")
	require.Len(t, resp.Results, 1)
	assert.Equal(t, MatchTypeLexical, resp.Results[0].MatchType)
}

func TestSearchDenseFailureDegradesToLexical(t *testing.T) {
	f := newFixture(t)
	f.addMonologue("a")
	f.retriever.denseErr = errors.New("pgvector timeout")
	f.retriever.lexical = []Candidate{{ID: "a", Score: 0.85, MatchType: MatchTypeLexical}}

	resp, err := f.svc.Search(context.Background(), testUser(), testRequest("sad monologue"))
	require.NoError(t, err)
	assert.Len(t, resp.Results, 1)
}

func TestSearchLexicalFailureDegradesToDense(t *testing.T) {
	f := newFixture(t)
	f.addMonologue("a")
	f.retriever.lexErr = errors.New("trigram index gone")
	f.retriever.dense = []Candidate{{ID: "a", Score: 0.8, MatchType: MatchTypeSemantic}}

	resp, err := f.svc.Search(context.Background(), testUser(), testRequest("sad monologue"))
	require.NoError(t, err)
	assert.Len(t, resp.Results, 1)
}

func TestSearchBothPathsDownReturns503(t *testing.T) {
	f := newFixture(t)
	f.embedder.enabled = false
	f.retriever.lexErr = errors.New("db down")

	_, err := f.svc.Search(context.Background(), testUser(), testRequest("sad monologue"))
	require.Error(t, err)
	assert.Equal(t, "search_unavailable", requireAppError(t, err).Code)
	assert.Empty(t, f.gate.recorded, "failed requests spend no quota")
}

func TestSearchResultsCacheHit(t *testing.T) {
	f := newFixture(t)
	f.addMonologue("a")
	f.retriever.dense = []Candidate{{ID: "a", Score: 0.8, MatchType: MatchTypeSemantic}}

	req := testRequest("sad monologue")
	first, err := f.svc.Search(context.Background(), testUser(), req)
	require.NoError(t, err)

	second, err := f.svc.Search(context.Background(), testUser(), req)
	require.NoError(t, err)

	assert.Equal(t, 1, f.retriever.denseCalls, "second request is served from cache")
	assert.Equal(t, first.Results[0].ID, second.Results[0].ID)
	assert.InDelta(t, first.Results[0].Score, second.Results[0].Score, 1e-4)
	assert.Equal(t, first.Results[0].MatchType, second.Results[0].MatchType)

	// The counter still moves on cache hits: the user ran two searches
	assert.Len(t, f.gate.recorded, 4)
}

func TestSearchEmbeddingCacheHit(t *testing.T) {
	f := newFixture(t)
	f.addMonologue("a")
	f.retriever.dense = []Candidate{{ID: "a", Score: 0.8, MatchType: MatchTypeSemantic}}

	// Different pages share the query embedding but not the results entry
	req := testRequest("sad monologue")
	_, err := f.svc.Search(context.Background(), testUser(), req)
	require.NoError(t, err)

	req.Page = 2
	_, err = f.svc.Search(context.Background(), testUser(), req)
	require.NoError(t, err)

	assert.Equal(t, 1, f.embedder.calls)
}

func TestSearchTierUpgradeInvokesParser(t *testing.T) {
	f := newFixture(t)
	f.addMonologue("a")
	f.retriever.lexical = []Candidate{{ID: "a", Score: 0.85, MatchType: MatchTypeLexical}}

	// Four tokens with one dictionary hit: tier 2 with confidence 0.45,
	// which escalates to the full pipeline.
	resp, err := f.svc.Search(context.Background(), testUser(), testRequest("hope beyond usual despair"))
	require.NoError(t, err)

	assert.Equal(t, Tier3, resp.Tier)
	assert.Equal(t, 1, f.parser.calls)
}

func TestSearchTier1SkipsParser(t *testing.T) {
	f := newFixture(t)
	f.addMonologue("a")
	f.retriever.dense = []Candidate{{ID: "a", Score: 0.8, MatchType: MatchTypeSemantic}}

	resp, err := f.svc.Search(context.Background(), testUser(), testRequest("sad"))
	require.NoError(t, err)

	assert.Equal(t, Tier1, resp.Tier)
	assert.Equal(t, 0, f.parser.calls)
}

func TestSearchExplicitFiltersSkipParser(t *testing.T) {
	f := newFixture(t)
	f.addMonologue("a")
	f.retriever.lexical = []Candidate{{ID: "a", Score: 0.85, MatchType: MatchTypeLexical}}

	req := testRequest("a piece where everything quietly falls apart around someone")
	req.Filters = Filters{Gender: "female"}

	_, err := f.svc.Search(context.Background(), testUser(), req)
	require.NoError(t, err)
	assert.Equal(t, 0, f.parser.calls, "explicit filters suppress the LLM parse")
}

func TestSearchCorrectedQuery(t *testing.T) {
	f := newFixture(t)
	f.addMonologue("a")
	f.retriever.lexical = []Candidate{{ID: "a", Score: 0.95, MatchType: MatchTypeLexical}}

	resp, err := f.svc.Search(context.Background(), testUser(), testRequest("shakespere monologe"))
	require.NoError(t, err)

	assert.Equal(t, "shakespeare monologue", resp.CorrectedQuery)
	assert.True(t, resp.ShowBanner)
}

func TestSearchRetrievalLimits(t *testing.T) {
	f := newFixture(t)
	f.addMonologue("a")
	f.retriever.dense = []Candidate{{ID: "a", Score: 0.9, MatchType: MatchTypeSemantic}}

	_, err := f.svc.Search(context.Background(), testUser(), testRequest("dramatic monologue"))
	require.NoError(t, err)

	// The dense pool is 3x the page with a floor of 100. Lexical hits carry
	// synthetic scores, so that path is held to 2x the page.
	assert.Equal(t, 100, f.retriever.lastDenseK)
	assert.Equal(t, 40, f.retriever.lastLexLimit)
}

func TestSearchBestMatchFlag(t *testing.T) {
	f := newFixture(t)
	f.addMonologue("a")
	f.addMonologue("b")
	f.retriever.dense = []Candidate{
		{ID: "a", Score: 0.95, MatchType: MatchTypeSemantic},
		{ID: "b", Score: 0.91, MatchType: MatchTypeSemantic},
	}

	resp, err := f.svc.Search(context.Background(), testUser(), testRequest("sad monologue"))
	require.NoError(t, err)

	require.Len(t, resp.Results, 2)
	assert.True(t, resp.Results[0].IsBestMatch)
	assert.False(t, resp.Results[1].IsBestMatch, "only the single top row qualifies")
}

func TestSearchPagination(t *testing.T) {
	f := newFixture(t)
	for _, id := range []string{"a", "b", "c"} {
		f.addMonologue(id)
	}
	f.retriever.dense = []Candidate{
		{ID: "a", Score: 0.9, MatchType: MatchTypeSemantic},
		{ID: "b", Score: 0.8, MatchType: MatchTypeSemantic},
		{ID: "c", Score: 0.7, MatchType: MatchTypeSemantic},
	}

	req := testRequest("sad monologue")
	req.PageSize = 2
	req.Page = 2

	resp, err := f.svc.Search(context.Background(), testUser(), req)
	require.NoError(t, err)

	assert.Equal(t, 3, resp.Total)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "c", resp.Results[0].ID)
	assert.False(t, resp.Results[0].IsBestMatch, "best match never appears past page one")
}

func requireAppError(t *testing.T, err error) *apperror.Error {
	t.Helper()
	var appErr *apperror.Error
	require.ErrorAs(t, err, &appErr)
	return appErr
}
