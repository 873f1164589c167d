package search

import (
	"sort"
	"strings"

	"github.com/stagedoor-labs/stagedoor/domain/catalog"
	"github.com/stagedoor-labs/stagedoor/domain/profile"
	"github.com/stagedoor-labs/stagedoor/internal/config"
	"github.com/stagedoor-labs/stagedoor/pkg/mathutil"
)

// Profile bias weighting. The weights sum to 1; a perfect profile match
// contributes the full profileBoostScale to the score.
const (
	weightGender     = 0.20
	weightAgeRange   = 0.30
	weightGenre      = 0.25
	weightDifficulty = 0.15
	weightKeyword    = 0.10

	profileBoostScale = 0.10
	bookmarkBoost     = 0.30
	maxFinalScore     = 1.0 + bookmarkBoost
)

// Ranked is a merged candidate with its ordering metadata
type Ranked struct {
	Candidate

	// Strong marks a lexical title hit (exact or contains); strong hits
	// always rank above purely dense results.
	Strong bool
}

// Merger fuses the dense and lexical candidate lists and applies per-user
// boosts.
type Merger struct {
	cfg *config.Config
}

// NewMerger creates a rank merger
func NewMerger(cfg *config.Config) *Merger {
	return &Merger{cfg: cfg}
}

// Merge combines the two retrieval paths by id, keeping the maximum score.
// Dense scores are clamped to [0, 1] first. Quote and lexical match types
// survive the merge even when the dense score wins, since they carry more
// information than "semantic".
func (mg *Merger) Merge(dense, lexical []Candidate) []Ranked {
	byID := make(map[string]*Ranked, len(dense)+len(lexical))
	var order []string

	for _, c := range dense {
		c.Score = mathutil.Clamp(c.Score, 0, 1)
		byID[c.ID] = &Ranked{Candidate: c}
		order = append(order, c.ID)
	}

	for _, c := range lexical {
		strong := c.Score >= scoreTitleContains
		existing, ok := byID[c.ID]
		if !ok {
			byID[c.ID] = &Ranked{Candidate: c, Strong: strong}
			order = append(order, c.ID)
			continue
		}
		if c.Score > existing.Score {
			existing.Score = c.Score
		}
		existing.MatchType = c.MatchType
		existing.Strong = existing.Strong || strong
	}

	out := make([]Ranked, 0, len(order))
	for _, id := range order {
		out = append(out, *byID[id])
	}
	return out
}

// RankInputs carries the per-user context for boosting
type RankInputs struct {
	// Profile is nil for anonymous searches and users without one
	Profile *profile.ActorProfile

	// Favorites is the user's bookmarked monologue id set
	Favorites map[string]bool

	// Query is the corrected query, used for the keyword component
	Query string
}

// Rank applies profile bias, bookmark boosts, and the overdone filter, then
// sorts by final score descending with id as the tiebreak. Rows the hydration
// step could not resolve are dropped.
func (mg *Merger) Rank(cands []Ranked, mons map[string]*catalog.Monologue, in RankInputs) []Ranked {
	tokens := strings.Fields(strings.ToLower(in.Query))

	out := make([]Ranked, 0, len(cands))
	for _, c := range cands {
		m, ok := mons[c.ID]
		if !ok {
			continue
		}

		if in.Profile != nil {
			s := in.Profile.OverdoneAlertSensitivity
			if s > 0 && m.OverdoneScore > 1-s {
				continue
			}
			if in.Profile.ProfileBiasEnabled {
				c.Score += profileBoostScale * profileMatch(in.Profile, m, tokens)
			}
		}
		c.Score = mathutil.Clamp(c.Score, 0, 1)

		if in.Favorites[c.ID] {
			c.Score += bookmarkBoost
		}
		c.Score = mathutil.Clamp(c.Score, 0, maxFinalScore)

		out = append(out, c)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Strong != out[j].Strong {
			return out[i].Strong
		}
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].ID < out[j].ID
	})

	return out
}

// IsBestMatch reports whether the top ranked row clears the best match
// threshold. Only the single top row ever qualifies.
func (mg *Merger) IsBestMatch(ranked []Ranked) bool {
	return len(ranked) > 0 && ranked[0].Score >= mg.cfg.Search.BestMatchThreshold
}

// profileMatch returns the matched weight fraction in [0, 1]
func profileMatch(p *profile.ActorProfile, m *catalog.Monologue, queryTokens []string) float64 {
	var matched float64

	if p.Gender != nil && (m.CharacterGender == *p.Gender || m.CharacterGender == "any") {
		matched += weightGender
	}
	if p.AgeRange != nil && (m.CharacterAgeRange == *p.AgeRange || m.CharacterAgeRange == "any") {
		matched += weightAgeRange
	}
	if genreMatches(p.PreferredGenres, m) {
		matched += weightGenre
	}
	if p.ExperienceLevel != nil && m.DifficultyLevel != nil &&
		profile.DifficultyFor(*p.ExperienceLevel) == *m.DifficultyLevel {
		matched += weightDifficulty
	}
	if keywordMatches(queryTokens, m.SearchTags) {
		matched += weightKeyword
	}

	return matched
}

// genreMatches checks preferred genres against the work category and themes
func genreMatches(genres []string, m *catalog.Monologue) bool {
	for _, g := range genres {
		if m.Work != nil && strings.EqualFold(m.Work.Category, g) {
			return true
		}
		for _, th := range m.Themes {
			if strings.EqualFold(th, g) {
				return true
			}
		}
	}
	return false
}

// keywordMatches checks whether any query token appears in the search tags
func keywordMatches(tokens, tags []string) bool {
	if len(tokens) == 0 || len(tags) == 0 {
		return false
	}
	tagSet := make(map[string]bool, len(tags))
	for _, t := range tags {
		tagSet[strings.ToLower(t)] = true
	}
	for _, tok := range tokens {
		if tagSet[strings.Trim(tok, ".,!?\"'")] {
			return true
		}
	}
	return false
}
