package search

import (
	"strings"

	"github.com/antzucaro/matchr"
)

// fuzzyThreshold is the minimum Jaro-Winkler score for a vocabulary
// correction.
const fuzzyThreshold = 0.80

// corrections are exact misspelling fixes applied before the fuzzy layer.
var corrections = map[string]string{
	"monologe":    "monologue",
	"monolouge":   "monologue",
	"monolog":     "monologue",
	"shakespere":  "shakespeare",
	"shakespear":  "shakespeare",
	"shakspeare":  "shakespeare",
	"shakesphere": "shakespeare",
	"chekov":      "chekhov",
	"chechov":     "chekhov",
	"ibson":       "ibsen",
	"soliloquoy":  "soliloquy",
	"dramtic":     "dramatic",
	"dramaic":     "dramatic",
	"tradgedy":    "tragedy",
	"tradegy":     "tragedy",
	"audtion":     "audition",
	"auditon":     "audition",
	"willams":     "williams",
	"tenessee":    "tennessee",
	"tennesse":    "tennessee",
	"contemprary": "contemporary",
	"clasical":    "classical",
	"hamlett":     "hamlet",
	"macbth":      "macbeth",
	"mcbeth":      "macbeth",
	"othelo":      "othello",
}

// vocabulary is the theater term list the fuzzy layer corrects toward.
var vocabulary = []string{
	"monologue", "soliloquy", "audition", "shakespeare", "chekhov",
	"ibsen", "williams", "tennessee", "moliere", "sophocles", "euripides",
	"wilde", "shaw", "miller", "beckett", "pinter", "stoppard",
	"comedic", "dramatic", "tragedy", "comedy", "classical",
	"contemporary", "hamlet", "macbeth", "othello", "ophelia", "juliet",
	"villain", "ingenue", "betrayal", "revenge", "grief",
}

// skipWords are common English words that must never be fuzzy-corrected to
// theater terms; without this list "play" drifts toward "playwright"-like
// vocabulary and queries regress.
var skipWords = map[string]bool{
	"play": true, "look": true, "want": true, "need": true, "piece": true,
	"part": true, "role": true, "scene": true, "act": true, "actor": true,
	"about": true, "woman": true, "women": true, "man": true, "men": true,
	"girl": true, "boy": true, "old": true, "young": true, "for": true,
	"from": true, "with": true, "the": true, "and": true, "her": true,
	"his": true, "who": true, "that": true, "this": true, "funny": true,
	"sad": true, "angry": true, "dark": true, "love": true, "loss": true,
	"short": true, "long": true, "under": true, "over": true, "minute": true,
	"minutes": true, "seconds": true, "years": true, "strong": true,
	"female": true, "male": true, "modern": true, "teen": true,
	"monologues": true,
}

// Corrector applies two-layer spelling correction over the theater
// vocabulary: an exact misspelling table, then Jaro-Winkler fuzzy matching.
// Correction is idempotent: correcting corrected output changes nothing.
type Corrector struct{}

// NewCorrector creates a typo corrector
func NewCorrector() *Corrector {
	return &Corrector{}
}

// Correction is the outcome of correcting one query
type Correction struct {
	Corrected  string
	Changed    bool
	ShowBanner bool
}

// Correct normalizes and corrects a query. The banner is shown only when at
// least one token changed and every token was recognized; a query containing
// a token neither layer could resolve keeps its banner hidden, since the
// correction is too uncertain to offer back.
func (c *Corrector) Correct(query string) Correction {
	normalized := strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(query))), " ")
	if normalized == "" {
		return Correction{Corrected: ""}
	}

	tokens := strings.Split(normalized, " ")
	changed := false
	allRecognized := true

	for i, tok := range tokens {
		fixed, recognized := c.correctToken(tok)
		if !recognized {
			allRecognized = false
		}
		if fixed != tok {
			tokens[i] = fixed
			changed = true
		}
	}

	return Correction{
		Corrected:  strings.Join(tokens, " "),
		Changed:    changed,
		ShowBanner: changed && allRecognized,
	}
}

// correctToken corrects a single token. The second return reports whether
// the token was recognized: corrected by either layer, skipped as a common
// word, too short to judge, or already a vocabulary term.
func (c *Corrector) correctToken(tok string) (string, bool) {
	// Layer 1: exact misspelling table
	if fixed, ok := corrections[tok]; ok {
		return fixed, true
	}

	if skipWords[tok] || len(tok) < 4 {
		return tok, true
	}

	// Correct tokens already in the vocabulary are left alone; this keeps
	// correction idempotent.
	for _, term := range vocabulary {
		if tok == term {
			return tok, true
		}
	}

	// Layer 2: fuzzy match against the vocabulary
	best := tok
	bestScore := 0.0
	for _, term := range vocabulary {
		if score := matchr.JaroWinkler(tok, term, false); score > bestScore {
			best = term
			bestScore = score
		}
	}
	if bestScore >= fuzzyThreshold {
		return best, true
	}

	return tok, false
}
