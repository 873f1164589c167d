package search

import (
	"slices"
	"strconv"
	"strings"

	"github.com/stagedoor-labs/stagedoor/domain/catalog"
	"github.com/stagedoor-labs/stagedoor/internal/cache"
	"github.com/stagedoor-labs/stagedoor/pkg/embeddings"
)

// Filters is the structured constraint set extracted from a query, parsed
// by the LLM, or supplied explicitly as request parameters.
type Filters struct {
	Emotion            string   `json:"emotion,omitempty"`
	Gender             string   `json:"gender,omitempty"`
	AgeRange           string   `json:"age_range,omitempty"`
	Themes             []string `json:"themes,omitempty"`
	CharacterName      string   `json:"character_name,omitempty"`
	Difficulty         string   `json:"difficulty,omitempty"`
	Category           string   `json:"category,omitempty"`
	Tone               string   `json:"tone,omitempty"`
	Author             string   `json:"author,omitempty"`
	Act                *int     `json:"act,omitempty"`
	Scene              *int     `json:"scene,omitempty"`
	MaxDurationSeconds *int     `json:"max_duration_seconds,omitempty"`
	ExcludeOverdone    bool     `json:"exclude_overdone,omitempty"`
}

// IsEmpty reports whether no filter field is set
func (f Filters) IsEmpty() bool {
	return f.Emotion == "" && f.Gender == "" && f.AgeRange == "" &&
		len(f.Themes) == 0 && f.CharacterName == "" && f.Difficulty == "" &&
		f.Category == "" && f.Tone == "" && f.Author == "" && f.Act == nil &&
		f.Scene == nil && f.MaxDurationSeconds == nil && !f.ExcludeOverdone
}

// MergeFilters layers filter sets with later arguments winning on conflict.
// The orchestrator calls MergeFilters(ai, keyword, explicit) so explicit
// user parameters always override extraction, and keyword extraction
// overrides the LLM parse. Themes accumulate across layers.
func MergeFilters(layers ...Filters) Filters {
	var out Filters
	themeSeen := map[string]bool{}

	for _, l := range layers {
		if l.Emotion != "" {
			out.Emotion = l.Emotion
		}
		if l.Gender != "" {
			out.Gender = l.Gender
		}
		if l.AgeRange != "" {
			out.AgeRange = l.AgeRange
		}
		for _, th := range l.Themes {
			if !themeSeen[th] {
				themeSeen[th] = true
				out.Themes = append(out.Themes, th)
			}
		}
		if l.CharacterName != "" {
			out.CharacterName = l.CharacterName
		}
		if l.Difficulty != "" {
			out.Difficulty = l.Difficulty
		}
		if l.Category != "" {
			out.Category = l.Category
		}
		if l.Tone != "" {
			out.Tone = l.Tone
		}
		if l.Author != "" {
			out.Author = l.Author
		}
		if l.Act != nil {
			out.Act = l.Act
		}
		if l.Scene != nil {
			out.Scene = l.Scene
		}
		if l.MaxDurationSeconds != nil {
			out.MaxDurationSeconds = l.MaxDurationSeconds
		}
		if l.ExcludeOverdone {
			out.ExcludeOverdone = true
		}
	}

	return out
}

// Pairs returns the canonical sorted filter pairs for cache keys. Every set
// field appears exactly once; themes are sorted and joined so slice order
// never leaks into the key.
func (f Filters) Pairs() []cache.KV {
	var pairs []cache.KV
	add := func(k, v string) {
		if v != "" {
			pairs = append(pairs, cache.KV{Key: k, Value: v})
		}
	}

	add("emotion", f.Emotion)
	add("gender", f.Gender)
	add("age_range", f.AgeRange)
	if len(f.Themes) > 0 {
		sorted := append([]string(nil), f.Themes...)
		slices.Sort(sorted)
		add("themes", strings.Join(sorted, ","))
	}
	add("character_name", f.CharacterName)
	add("difficulty", f.Difficulty)
	add("category", f.Category)
	add("tone", f.Tone)
	add("author", f.Author)
	if f.Act != nil {
		add("act", strconv.Itoa(*f.Act))
	}
	if f.Scene != nil {
		add("scene", strconv.Itoa(*f.Scene))
	}
	if f.MaxDurationSeconds != nil {
		add("max_duration", strconv.Itoa(*f.MaxDurationSeconds))
	}
	if f.ExcludeOverdone {
		add("exclude_overdone", "true")
	}

	return pairs
}

// QueryFacets maps the filters onto the enriched-text facet struct
func (f Filters) QueryFacets() embeddings.QueryFacets {
	return embeddings.QueryFacets{
		Emotion:  f.Emotion,
		Tone:     f.Tone,
		Gender:   f.Gender,
		AgeRange: f.AgeRange,
		Themes:   f.Themes,
		Category: f.Category,
	}
}

// Match sources
const (
	MatchTypeSemantic   = "semantic"
	MatchTypeLexical    = "lexical"
	MatchTypeExactQuote = "exact_quote"
	MatchTypeFuzzyQuote = "fuzzy_quote"
)

// Candidate is a retriever hit before hydration and merging
type Candidate struct {
	ID        string
	Score     float64
	Source    string // semantic or lexical
	MatchType string
}

// SearchRequest is the validated input to the orchestrator
type SearchRequest struct {
	Query    string
	Filters  Filters
	Page     int
	PageSize int
	UserID   string // empty for anonymous demo searches
}

// SearchResult is one ranked row in the response
type SearchResult struct {
	catalog.MonologueDTO
	Score       float64 `json:"score"`
	MatchType   string  `json:"matchType"`
	IsBestMatch bool    `json:"isBestMatch"`
}

// FilmTVResult is one ranked film/TV row
type FilmTVResult struct {
	catalog.FilmTVDTO
	Score       float64 `json:"score"`
	MatchType   string  `json:"matchType"`
	IsBestMatch bool    `json:"isBestMatch"`
}

// SearchResponse is the monologue search payload
type SearchResponse struct {
	Results        []SearchResult `json:"results"`
	Total          int            `json:"total"`
	Page           int            `json:"page"`
	PageSize       int            `json:"pageSize"`
	CorrectedQuery string         `json:"correctedQuery,omitempty"`
	ShowBanner     bool           `json:"showBanner,omitempty"`
	Tier           int            `json:"tier,omitempty"`
}

// FilmTVResponse is the film/TV search payload
type FilmTVResponse struct {
	Results        []FilmTVResult `json:"results"`
	Total          int            `json:"total"`
	Page           int            `json:"page"`
	PageSize       int            `json:"pageSize"`
	CorrectedQuery string         `json:"correctedQuery,omitempty"`
	ShowBanner     bool           `json:"showBanner,omitempty"`
}
