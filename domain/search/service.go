package search

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/stagedoor-labs/stagedoor/domain/catalog"
	"github.com/stagedoor-labs/stagedoor/domain/profile"
	"github.com/stagedoor-labs/stagedoor/domain/quota"
	"github.com/stagedoor-labs/stagedoor/internal/cache"
	"github.com/stagedoor-labs/stagedoor/internal/config"
	"github.com/stagedoor-labs/stagedoor/pkg/apperror"
	"github.com/stagedoor-labs/stagedoor/pkg/auth"
	"github.com/stagedoor-labs/stagedoor/pkg/embeddings"
	"github.com/stagedoor-labs/stagedoor/pkg/logger"
	"github.com/stagedoor-labs/stagedoor/pkg/mathutil"
)

// tierUpgradeConfidence is the keyword extraction confidence below which a
// tier-2 query escalates to the full tier-3 pipeline.
const tierUpgradeConfidence = 0.5

// minCandidateFloor keeps the candidate pool useful for small pages
const minCandidateFloor = 100

// Retriever runs the dense and lexical retrieval paths
type Retriever interface {
	DenseSearch(ctx context.Context, vec []float32, f Filters, k int) ([]Candidate, error)
	LexicalSearch(ctx context.Context, query string, f Filters, limit int) ([]Candidate, error)
	DenseSearchFilmTV(ctx context.Context, vec []float32, k int) ([]Candidate, error)
	LexicalSearchFilmTV(ctx context.Context, query string, limit int) ([]Candidate, error)
}

// Embedder produces query embeddings
type Embedder interface {
	IsEnabled() bool
	EmbedQuery(ctx context.Context, query string) ([]float32, error)
}

// QueryParser extracts structured filters from free-text queries
type QueryParser interface {
	Parse(ctx context.Context, query string) Filters
}

// QuotaGate checks and records feature usage
type QuotaGate interface {
	Check(ctx context.Context, user *auth.AuthUser, feature quota.Feature) (quota.Decision, error)
	Record(ctx context.Context, userID string, feature quota.Feature)
}

// Hydrator resolves candidate ids into catalog rows
type Hydrator interface {
	GetMonologuesByIDs(ctx context.Context, ids []string) ([]catalog.Monologue, error)
	GetFilmTVByIDs(ctx context.Context, ids []string) ([]catalog.FilmTVReference, error)
	RandomMonologues(ctx context.Context, limit int, maxOverdone float64) ([]catalog.Monologue, error)
}

// ProfileSource loads the searching user's actor profile
type ProfileSource interface {
	GetEntity(ctx context.Context, userID string) (*profile.ActorProfile, error)
}

// FavoriteSource loads the searching user's bookmarked monologue ids
type FavoriteSource interface {
	MonologueIDSet(ctx context.Context, userID string) (map[string]bool, error)
}

// Service is the search orchestrator. It runs the full pipeline: quota gate,
// typo correction, tier classification, filter extraction, cache hierarchy,
// parallel retrieval, rank merging, and hydration.
type Service struct {
	cfg        *config.Config
	corrector  *Corrector
	classifier *Classifier
	extractor  *Extractor
	parser     QueryParser
	merger     *Merger
	retriever  Retriever
	embedder   Embedder
	gate       QuotaGate
	hydrator   Hydrator
	profiles   ProfileSource
	favorites  FavoriteSource
	cache      *cache.Cache
	metrics    *Metrics
	log        *slog.Logger
}

// NewService creates the search orchestrator
func NewService(
	cfg *config.Config,
	corrector *Corrector,
	classifier *Classifier,
	extractor *Extractor,
	parser QueryParser,
	merger *Merger,
	retriever Retriever,
	embedder Embedder,
	gate QuotaGate,
	hydrator Hydrator,
	profiles ProfileSource,
	favorites FavoriteSource,
	c *cache.Cache,
	metrics *Metrics,
	log *slog.Logger,
) *Service {
	return &Service{
		cfg:        cfg,
		corrector:  corrector,
		classifier: classifier,
		extractor:  extractor,
		parser:     parser,
		merger:     merger,
		retriever:  retriever,
		embedder:   embedder,
		gate:       gate,
		hydrator:   hydrator,
		profiles:   profiles,
		favorites:  favorites,
		cache:      c,
		metrics:    metrics,
		log:        log.With(logger.Scope("search.svc")),
	}
}

// Search runs the monologue search pipeline. user is nil for anonymous demo
// requests; the handler throttles those by IP before calling in.
func (s *Service) Search(ctx context.Context, user *auth.AuthUser, req SearchRequest) (*SearchResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Search.RequestDeadline())
	defer cancel()

	// An empty query is a browse, not a search: no quota, no pipeline.
	if strings.TrimSpace(req.Query) == "" {
		return s.browse(ctx, req)
	}

	if user != nil {
		decision, err := s.gate.Check(ctx, user, quota.FeatureAISearch)
		if err != nil {
			return nil, err
		}
		if !decision.Allowed {
			s.metrics.observeSearch(0, "denied")
			return nil, quotaError(decision)
		}
	}

	correction := s.corrector.Correct(req.Query)
	tier := s.classifier.Classify(correction.Corrected)

	filters, tier := s.resolveFilters(ctx, correction.Corrected, req.Filters, tier)

	resp, err := s.run(ctx, correction, tier, filters, req)
	if err != nil {
		s.metrics.observeSearch(tier, "error")
		return nil, err
	}

	// Spend quota only once the payload exists; failed requests stay free.
	if user != nil {
		s.gate.Record(ctx, user.ID, quota.FeatureAISearch)
		s.gate.Record(ctx, user.ID, quota.FeatureTotalSearch)
	}
	s.metrics.observeSearch(tier, "ok")

	return resp, nil
}

// resolveFilters layers LLM extraction, keyword extraction, and explicit
// request parameters. Explicit parameters always win; a low-confidence
// tier-2 extraction escalates to tier 3.
func (s *Service) resolveFilters(ctx context.Context, query string, explicit Filters, tier int) (Filters, int) {
	var ai Filters

	ex := s.extractor.Extract(query)
	kw := ex.Filters
	if tier == Tier2 && ex.Confidence < tierUpgradeConfidence {
		tier = Tier3
	}

	if tier == Tier3 && explicit.IsEmpty() {
		ai = s.parseWithCache(ctx, query)
	}

	return MergeFilters(ai, kw, explicit), tier
}

// parseWithCache returns the LLM parse for a query, caching it under the
// filters layer so repeated tier-3 queries cost one parse per day.
func (s *Service) parseWithCache(ctx context.Context, query string) Filters {
	key := cache.FiltersKey(query)

	if raw, ok := s.cache.GetFilters(ctx, key); ok {
		s.metrics.cacheHit("filters")
		var f Filters
		if err := json.Unmarshal(raw, &f); err == nil {
			return f
		}
	}
	s.metrics.cacheMiss("filters")

	f := s.parser.Parse(ctx, query)
	if raw, err := json.Marshal(f); err == nil {
		s.cache.SetFilters(ctx, key, raw)
	}
	return f
}

// run executes retrieval, merging, and hydration for a corrected query
func (s *Service) run(ctx context.Context, correction Correction, tier int, filters Filters, req SearchRequest) (*SearchResponse, error) {
	resultsKey := cache.ResultsKey(correction.Corrected, filters.Pairs(), req.UserID)

	if tokens, ok := s.cache.GetResults(ctx, resultsKey); ok {
		s.metrics.cacheHit("results")
		return s.assemble(ctx, decodeRanked(tokens), correction, tier, req)
	}
	s.metrics.cacheMiss("results")

	vec := s.queryEmbedding(ctx, correction.Corrected, filters)

	k := mathutil.ClampInt(3*req.PageSize, minCandidateFloor, s.cfg.Search.MaxCandidates)

	dense, lexical, err := s.retrieve(ctx, vec, correction.Corrected, filters, k, 2*req.PageSize)
	if err != nil {
		return nil, err
	}

	ranked := s.merger.Merge(dense, lexical)

	ids := make([]string, 0, len(ranked))
	for _, r := range ranked {
		ids = append(ids, r.ID)
	}
	mons, err := s.monologuesByID(ctx, ids)
	if err != nil {
		return nil, err
	}

	ranked = s.merger.Rank(ranked, mons, s.rankInputs(ctx, correction.Corrected, req.UserID))

	s.cache.SetResults(ctx, resultsKey, encodeRanked(ranked))

	return s.assemble(ctx, ranked, correction, tier, req)
}

// retrieve runs the dense and lexical paths in parallel. A nil embedding
// skips the dense path; the request fails only when no path produced
// candidates and at least one of them errored. The lexical path gets its
// own, tighter limit: lexical hits carry synthetic scores, so a wide pool
// would crowd the merge with weak substring matches.
func (s *Service) retrieve(ctx context.Context, vec []float32, query string, filters Filters, k, lexLimit int) (dense, lexical []Candidate, err error) {
	type retrieval struct {
		cands []Candidate
		err   error
	}

	denseCh := make(chan retrieval, 1)
	lexCh := make(chan retrieval, 1)

	go func() {
		if vec == nil {
			denseCh <- retrieval{}
			return
		}
		start := time.Now()
		cands, err := s.retriever.DenseSearch(ctx, vec, filters, k)
		s.metrics.retrieverLatency.WithLabelValues("dense").Observe(time.Since(start).Seconds())
		denseCh <- retrieval{cands: cands, err: err}
	}()

	go func() {
		start := time.Now()
		cands, err := s.retriever.LexicalSearch(ctx, query, filters, lexLimit)
		s.metrics.retrieverLatency.WithLabelValues("lexical").Observe(time.Since(start).Seconds())
		lexCh <- retrieval{cands: cands, err: err}
	}()

	dr := <-denseCh
	lr := <-lexCh

	if dr.err != nil {
		s.log.Warn("dense retrieval failed, degrading to lexical", logger.Error(dr.err))
	}
	if lr.err != nil {
		s.log.Warn("lexical retrieval failed, degrading to dense", logger.Error(lr.err))
	}

	denseDown := dr.err != nil || vec == nil
	if denseDown && lr.err != nil {
		return nil, nil, apperror.ErrSearchUnavailable
	}

	return dr.cands, lr.cands, nil
}

// queryEmbedding returns the embedding for the enriched query, from cache
// when possible. Returns nil when embeddings are unavailable, which degrades
// the request to lexical-only.
func (s *Service) queryEmbedding(ctx context.Context, query string, filters Filters) []float32 {
	if !s.embedder.IsEnabled() {
		return nil
	}

	enriched := embeddings.EnrichQuery(query, filters.QueryFacets())
	key := cache.EmbeddingKey(enriched)

	if vec, ok := s.cache.GetEmbedding(ctx, key); ok {
		s.metrics.cacheHit("embedding")
		return vec
	}
	s.metrics.cacheMiss("embedding")

	vec, err := s.embedder.EmbedQuery(ctx, enriched)
	if err != nil {
		s.log.Warn("query embedding failed, degrading to lexical", logger.Error(err))
		return nil
	}

	s.cache.SetEmbedding(ctx, key, vec, false)
	return vec
}

// rankInputs loads the per-user boost context. Lookup failures degrade to an
// unboosted ranking rather than failing the search.
func (s *Service) rankInputs(ctx context.Context, query, userID string) RankInputs {
	in := RankInputs{Query: query}
	if userID == "" {
		return in
	}

	prof, err := s.profiles.GetEntity(ctx, userID)
	if err != nil {
		s.log.Warn("profile lookup failed, skipping bias", logger.Error(err))
	} else {
		in.Profile = prof
	}

	favs, err := s.favorites.MonologueIDSet(ctx, userID)
	if err != nil {
		s.log.Warn("favorites lookup failed, skipping boost", logger.Error(err))
	} else {
		in.Favorites = favs
	}

	return in
}

// assemble hydrates the ranked list and cuts the requested page
func (s *Service) assemble(ctx context.Context, ranked []Ranked, correction Correction, tier int, req SearchRequest) (*SearchResponse, error) {
	total := len(ranked)
	bestMatch := s.merger.IsBestMatch(ranked)

	start := (req.Page - 1) * req.PageSize
	if start > total {
		start = total
	}
	end := start + req.PageSize
	if end > total {
		end = total
	}
	page := ranked[start:end]

	ids := make([]string, 0, len(page))
	for _, r := range page {
		ids = append(ids, r.ID)
	}
	mons, err := s.monologuesByID(ctx, ids)
	if err != nil {
		return nil, err
	}

	results := make([]SearchResult, 0, len(page))
	for i, r := range page {
		m, ok := mons[r.ID]
		if !ok {
			continue
		}
		results = append(results, SearchResult{
			MonologueDTO: m.ToDTO(),
			Score:        r.Score,
			MatchType:    r.MatchType,
			IsBestMatch:  bestMatch && req.Page == 1 && i == 0,
		})
	}

	resp := &SearchResponse{
		Results:  results,
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
		Tier:     tier,
	}
	if correction.Changed {
		resp.CorrectedQuery = correction.Corrected
		resp.ShowBanner = correction.ShowBanner
	}
	return resp, nil
}

// browse serves the empty-query path: a random sample, no quota spend
func (s *Service) browse(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	maxOverdone := 1.0
	if req.Filters.ExcludeOverdone {
		maxOverdone = 0.3
	}

	ms, err := s.hydrator.RandomMonologues(ctx, req.PageSize, maxOverdone)
	if err != nil {
		return nil, err
	}

	results := make([]SearchResult, 0, len(ms))
	for i := range ms {
		results = append(results, SearchResult{MonologueDTO: ms[i].ToDTO()})
	}

	return &SearchResponse{
		Results:  results,
		Total:    len(results),
		Page:     req.Page,
		PageSize: req.PageSize,
	}, nil
}

// SearchFilmTV runs the film/TV search pipeline. It shares the quota gate,
// correction, and cache hierarchy with the monologue path but skips filter
// extraction and profile bias.
func (s *Service) SearchFilmTV(ctx context.Context, user *auth.AuthUser, req SearchRequest) (*FilmTVResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Search.RequestDeadline())
	defer cancel()

	if strings.TrimSpace(req.Query) == "" {
		return &FilmTVResponse{Results: []FilmTVResult{}, Page: req.Page, PageSize: req.PageSize}, nil
	}

	if user != nil {
		decision, err := s.gate.Check(ctx, user, quota.FeatureAISearch)
		if err != nil {
			return nil, err
		}
		if !decision.Allowed {
			return nil, quotaError(decision)
		}
	}

	correction := s.corrector.Correct(req.Query)
	resultsKey := cache.ResultsKey("filmtv:"+correction.Corrected, nil, req.UserID)

	var ranked []Ranked
	if tokens, ok := s.cache.GetResults(ctx, resultsKey); ok {
		s.metrics.cacheHit("results")
		ranked = decodeRanked(tokens)
	} else {
		s.metrics.cacheMiss("results")

		vec := s.queryEmbedding(ctx, correction.Corrected, Filters{})

		k := mathutil.ClampInt(3*req.PageSize, minCandidateFloor, s.cfg.Search.MaxCandidates)

		dense, lexical, err := s.retrieveFilmTV(ctx, vec, correction.Corrected, k, 2*req.PageSize)
		if err != nil {
			return nil, err
		}
		ranked = s.merger.Merge(dense, lexical)
		s.cache.SetResults(ctx, resultsKey, encodeRanked(ranked))
	}

	resp, err := s.assembleFilmTV(ctx, ranked, correction, req)
	if err != nil {
		return nil, err
	}

	if user != nil {
		s.gate.Record(ctx, user.ID, quota.FeatureAISearch)
		s.gate.Record(ctx, user.ID, quota.FeatureTotalSearch)
	}
	return resp, nil
}

func (s *Service) retrieveFilmTV(ctx context.Context, vec []float32, query string, k, lexLimit int) (dense, lexical []Candidate, err error) {
	type retrieval struct {
		cands []Candidate
		err   error
	}

	denseCh := make(chan retrieval, 1)
	lexCh := make(chan retrieval, 1)

	go func() {
		if vec == nil {
			denseCh <- retrieval{}
			return
		}
		cands, err := s.retriever.DenseSearchFilmTV(ctx, vec, k)
		denseCh <- retrieval{cands: cands, err: err}
	}()
	go func() {
		cands, err := s.retriever.LexicalSearchFilmTV(ctx, query, lexLimit)
		lexCh <- retrieval{cands: cands, err: err}
	}()

	dr := <-denseCh
	lr := <-lexCh

	denseDown := dr.err != nil || vec == nil
	if denseDown && lr.err != nil {
		return nil, nil, apperror.ErrSearchUnavailable
	}
	return dr.cands, lr.cands, nil
}

func (s *Service) assembleFilmTV(ctx context.Context, ranked []Ranked, correction Correction, req SearchRequest) (*FilmTVResponse, error) {
	total := len(ranked)
	bestMatch := s.merger.IsBestMatch(ranked)

	start := (req.Page - 1) * req.PageSize
	if start > total {
		start = total
	}
	end := start + req.PageSize
	if end > total {
		end = total
	}
	page := ranked[start:end]

	ids := make([]string, 0, len(page))
	for _, r := range page {
		ids = append(ids, r.ID)
	}
	refs, err := s.hydrator.GetFilmTVByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*catalog.FilmTVReference, len(refs))
	for i := range refs {
		byID[refs[i].ID] = &refs[i]
	}

	results := make([]FilmTVResult, 0, len(page))
	for i, r := range page {
		f, ok := byID[r.ID]
		if !ok {
			continue
		}
		results = append(results, FilmTVResult{
			FilmTVDTO:   f.ToDTO(),
			Score:       r.Score,
			MatchType:   r.MatchType,
			IsBestMatch: bestMatch && req.Page == 1 && i == 0,
		})
	}

	resp := &FilmTVResponse{
		Results:  results,
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
	}
	if correction.Changed {
		resp.CorrectedQuery = correction.Corrected
		resp.ShowBanner = correction.ShowBanner
	}
	return resp, nil
}

func (s *Service) monologuesByID(ctx context.Context, ids []string) (map[string]*catalog.Monologue, error) {
	ms, err := s.hydrator.GetMonologuesByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*catalog.Monologue, len(ms))
	for i := range ms {
		byID[ms[i].ID] = &ms[i]
	}
	return byID, nil
}

// quotaError maps a denied gate decision to the HTTP error surface
func quotaError(d quota.Decision) error {
	if d.Reason == quota.ReasonFeatureNotAvailable {
		return apperror.ErrFeatureNotAvailable
	}
	return apperror.ErrQuotaExceeded.WithDetails(map[string]any{
		"limit":       d.Limit,
		"used":        d.Used,
		"upgrade_url": "/pricing",
	})
}

// Cached result entries encode the ranked row as "id|score|matchType" so a
// results-cache hit keeps its scores and match types.
func encodeRanked(ranked []Ranked) []string {
	out := make([]string, 0, len(ranked))
	for _, r := range ranked {
		out = append(out, fmt.Sprintf("%s|%.4f|%s", r.ID, r.Score, r.MatchType))
	}
	return out
}

func decodeRanked(tokens []string) []Ranked {
	out := make([]Ranked, 0, len(tokens))
	for _, tok := range tokens {
		parts := strings.SplitN(tok, "|", 3)
		r := Ranked{Candidate: Candidate{ID: parts[0], MatchType: MatchTypeSemantic}}
		if len(parts) == 3 {
			if score, err := strconv.ParseFloat(parts[1], 64); err == nil {
				r.Score = score
			}
			r.MatchType = parts[2]
		}
		out = append(out, r)
	}
	return out
}
