package search

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"github.com/stagedoor-labs/stagedoor/internal/config"
	"github.com/stagedoor-labs/stagedoor/pkg/apperror"
	"github.com/stagedoor-labs/stagedoor/pkg/logger"
	"github.com/stagedoor-labs/stagedoor/pkg/pgutils"
)

// Lexical match scores. Exact title beats containment beats author beats
// character beats tag beats body text, so structured hits rank above fuzzy
// ones when merged with cosine scores.
const (
	scoreTitleExact    = 0.98
	scoreTitleContains = 0.95
	scoreAuthor        = 0.87
	scoreCharacter     = 0.85
	scoreTag           = 0.83
	scoreText          = 0.80
)

// Repository runs the dense (pgvector) and lexical retrieval queries
type Repository struct {
	db        bun.IDB
	cfg       *config.Config
	log       *slog.Logger
	driftOnce sync.Once
}

// NewSearchRepository creates a search repository
func NewSearchRepository(db bun.IDB, cfg *config.Config, log *slog.Logger) *Repository {
	return &Repository{
		db:  db,
		cfg: cfg,
		log: log.With(logger.Scope("search.repo")),
	}
}

type candidateRow struct {
	ID         string  `bun:"id"`
	Score      float64 `bun:"score"`
	ExactQuote bool    `bun:"exact_quote"`
	FuzzyQuote bool    `bun:"fuzzy_quote"`
}

// fuzzyQuoteThreshold is the pg_trgm word similarity above which a body-text
// hit that is not a verbatim substring still counts as a quote match.
const fuzzyQuoteThreshold = 0.6

// DenseSearch runs cosine similarity over monologue embeddings with filter
// pushdown. Rows whose stored vector does not match the configured dimension
// are excluded and reported once.
func (r *Repository) DenseSearch(ctx context.Context, vec []float32, f Filters, k int) ([]Candidate, error) {
	r.reportDimensionDrift(ctx)

	var sb strings.Builder
	var args []any

	sb.WriteString(`SELECT m.id, (1 - (m.embedding <=> ?::vector)) AS score
FROM stage.monologues m
JOIN stage.works w ON w.id = m.work_id
WHERE m.embedding IS NOT NULL AND vector_dims(m.embedding) = ?`)
	args = append(args, pgutils.FormatVector(vec), r.cfg.Embeddings.Dimension)

	clauses, clauseArgs := monologueFilterSQL(f)
	for _, cl := range clauses {
		sb.WriteString(" AND ")
		sb.WriteString(cl)
	}
	args = append(args, clauseArgs...)

	sb.WriteString(" ORDER BY m.embedding <=> ?::vector LIMIT ?")
	args = append(args, pgutils.FormatVector(vec), k)

	var rows []candidateRow
	if err := r.db.NewRaw(sb.String(), args...).Scan(ctx, &rows); err != nil {
		r.log.Error("dense search failed", logger.Error(err))
		return nil, apperror.ErrDatabase.WithInternal(err)
	}

	out := make([]Candidate, 0, len(rows))
	for _, row := range rows {
		out = append(out, Candidate{
			ID:        row.ID,
			Score:     row.Score,
			Source:    MatchTypeSemantic,
			MatchType: MatchTypeSemantic,
		})
	}
	return out, nil
}

// LexicalSearch runs the keyword path over titles, authors, character names,
// tags, and body text with synthetic scores. A verbatim body-text hit is
// flagged as an exact quote.
func (r *Repository) LexicalSearch(ctx context.Context, query string, f Filters, limit int) ([]Candidate, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return []Candidate{}, nil
	}
	contains := "%" + q + "%"
	tokens := strings.Fields(q)

	var sb strings.Builder
	var args []any

	sb.WriteString(fmt.Sprintf(`SELECT m.id,
CASE
	WHEN lower(w.title) = ? THEN %.2f
	WHEN w.title ILIKE ? THEN %.2f
	WHEN w.author ILIKE ? THEN %.2f
	WHEN m.character_name ILIKE ? THEN %.2f
	WHEN m.search_tags && ? THEN %.2f
	ELSE %.2f
END AS score,
(m.text ILIKE ?) AS exact_quote,
(word_similarity(?, m.text) > ?) AS fuzzy_quote
FROM stage.monologues m
JOIN stage.works w ON w.id = m.work_id
WHERE (w.title ILIKE ? OR w.author ILIKE ? OR m.character_name ILIKE ? OR m.search_tags && ?
	OR m.text ILIKE ? OR word_similarity(?, m.text) > ?)`,
		scoreTitleExact, scoreTitleContains, scoreAuthor, scoreCharacter, scoreTag, scoreText))
	args = append(args,
		q, contains, contains, contains, pgdialect.Array(tokens),
		contains, q, fuzzyQuoteThreshold,
		contains, contains, contains, pgdialect.Array(tokens),
		contains, q, fuzzyQuoteThreshold,
	)

	clauses, clauseArgs := monologueFilterSQL(f)
	for _, cl := range clauses {
		sb.WriteString(" AND ")
		sb.WriteString(cl)
	}
	args = append(args, clauseArgs...)

	sb.WriteString(" ORDER BY score DESC, m.id LIMIT ?")
	args = append(args, limit)

	var rows []candidateRow
	if err := r.db.NewRaw(sb.String(), args...).Scan(ctx, &rows); err != nil {
		r.log.Error("lexical search failed", logger.Error(err))
		return nil, apperror.ErrDatabase.WithInternal(err)
	}

	out := make([]Candidate, 0, len(rows))
	for _, row := range rows {
		mt := MatchTypeLexical
		switch {
		case row.ExactQuote:
			mt = MatchTypeExactQuote
		case row.FuzzyQuote && row.Score == scoreText:
			mt = MatchTypeFuzzyQuote
		}
		out = append(out, Candidate{
			ID:        row.ID,
			Score:     row.Score,
			Source:    MatchTypeLexical,
			MatchType: mt,
		})
	}
	return out, nil
}

// DenseSearchFilmTV runs cosine similarity over film/TV reference embeddings
func (r *Repository) DenseSearchFilmTV(ctx context.Context, vec []float32, k int) ([]Candidate, error) {
	query := `SELECT f.id, (1 - (f.embedding <=> ?::vector)) AS score
FROM stage.film_tv_references f
WHERE f.embedding IS NOT NULL AND vector_dims(f.embedding) = ?
ORDER BY f.embedding <=> ?::vector LIMIT ?`

	var rows []candidateRow
	err := r.db.NewRaw(query,
		pgutils.FormatVector(vec), r.cfg.Embeddings.Dimension,
		pgutils.FormatVector(vec), k,
	).Scan(ctx, &rows)
	if err != nil {
		r.log.Error("dense film/tv search failed", logger.Error(err))
		return nil, apperror.ErrDatabase.WithInternal(err)
	}

	out := make([]Candidate, 0, len(rows))
	for _, row := range rows {
		out = append(out, Candidate{
			ID:        row.ID,
			Score:     row.Score,
			Source:    MatchTypeSemantic,
			MatchType: MatchTypeSemantic,
		})
	}
	return out, nil
}

// LexicalSearchFilmTV runs the keyword path over film/TV titles, directors,
// actors, and plots.
func (r *Repository) LexicalSearchFilmTV(ctx context.Context, query string, limit int) ([]Candidate, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return []Candidate{}, nil
	}
	contains := "%" + q + "%"

	sql := fmt.Sprintf(`SELECT f.id,
CASE
	WHEN lower(f.title) = ? THEN %.2f
	WHEN f.title ILIKE ? THEN %.2f
	WHEN f.director ILIKE ? THEN %.2f
	WHEN EXISTS (SELECT 1 FROM unnest(f.actors) a WHERE a ILIKE ?) THEN %.2f
	ELSE %.2f
END AS score
FROM stage.film_tv_references f
WHERE f.title ILIKE ? OR f.director ILIKE ?
	OR EXISTS (SELECT 1 FROM unnest(f.actors) a WHERE a ILIKE ?)
	OR f.plot ILIKE ?
ORDER BY score DESC, f.id LIMIT ?`,
		scoreTitleExact, scoreTitleContains, scoreAuthor, scoreCharacter, scoreText)

	var rows []candidateRow
	err := r.db.NewRaw(sql,
		q, contains, contains, contains,
		contains, contains, contains, contains, limit,
	).Scan(ctx, &rows)
	if err != nil {
		r.log.Error("lexical film/tv search failed", logger.Error(err))
		return nil, apperror.ErrDatabase.WithInternal(err)
	}

	out := make([]Candidate, 0, len(rows))
	for _, row := range rows {
		out = append(out, Candidate{
			ID:        row.ID,
			Score:     row.Score,
			Source:    MatchTypeLexical,
			MatchType: MatchTypeLexical,
		})
	}
	return out, nil
}

// monologueFilterSQL builds filter pushdown clauses shared by the dense and
// lexical paths. Gender and age admit the 'any' rows so neutral material
// keeps surfacing; "young" spans the teens and 20s ranges.
func monologueFilterSQL(f Filters) ([]string, []any) {
	var clauses []string
	var args []any

	if f.Gender != "" {
		clauses = append(clauses, "m.character_gender IN (?, 'any')")
		args = append(args, f.Gender)
	}
	switch f.AgeRange {
	case "":
	case "young":
		clauses = append(clauses, "m.character_age_range IN ('teens', '20s', 'any')")
	default:
		clauses = append(clauses, "m.character_age_range IN (?, 'any')")
		args = append(args, f.AgeRange)
	}
	if f.Emotion != "" {
		clauses = append(clauses, "m.primary_emotion = ?")
		args = append(args, f.Emotion)
	}
	if len(f.Themes) > 0 {
		clauses = append(clauses, "m.themes && ?")
		args = append(args, pgdialect.Array(f.Themes))
	}
	if f.CharacterName != "" {
		clauses = append(clauses, "m.character_name ILIKE ?")
		args = append(args, "%"+f.CharacterName+"%")
	}
	if f.Difficulty != "" {
		clauses = append(clauses, "m.difficulty_level = ?")
		args = append(args, f.Difficulty)
	}
	if f.Category != "" {
		clauses = append(clauses, "w.category = ?")
		args = append(args, f.Category)
	}
	if f.Tone != "" {
		clauses = append(clauses, "m.tone = ?")
		args = append(args, f.Tone)
	}
	if f.Author != "" {
		clauses = append(clauses, "w.author ILIKE ?")
		args = append(args, "%"+f.Author+"%")
	}
	if f.Act != nil {
		clauses = append(clauses, "m.act = ?")
		args = append(args, *f.Act)
	}
	if f.Scene != nil {
		clauses = append(clauses, "m.scene = ?")
		args = append(args, *f.Scene)
	}
	if f.MaxDurationSeconds != nil {
		clauses = append(clauses, "m.estimated_duration_seconds <= ?")
		args = append(args, *f.MaxDurationSeconds)
	}
	if f.ExcludeOverdone {
		clauses = append(clauses, "m.overdone_score <= 0.3")
	}

	return clauses, args
}

// reportDimensionDrift logs once per process when stored vectors disagree
// with the configured dimension. Drifted rows are invisible to the dense
// path until re-embedded.
func (r *Repository) reportDimensionDrift(ctx context.Context) {
	r.driftOnce.Do(func() {
		var n int
		err := r.db.NewRaw(
			"SELECT count(*) FROM stage.monologues WHERE embedding IS NOT NULL AND vector_dims(embedding) <> ?",
			r.cfg.Embeddings.Dimension,
		).Scan(ctx, &n)
		if err != nil {
			r.log.Warn("dimension drift check failed", logger.Error(err))
			return
		}
		if n > 0 {
			r.log.Error("embeddings with mismatched dimension excluded from dense search",
				slog.Int("rows", n),
				slog.Int("expected_dims", r.cfg.Embeddings.Dimension),
			)
		}
	})
}
