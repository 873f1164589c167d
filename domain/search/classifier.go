package search

import (
	"strings"
)

// Query tiers. The tier bounds how much a query is allowed to cost: tier 1
// never touches the LLM or the embedding model, tier 2 extracts keywords
// and embeds only when the dense path runs, tier 3 may do both.
const (
	Tier1 = 1
	Tier2 = 2
	Tier3 = 3
)

// APICalls estimates the upstream call budget for a tier, surfaced for
// metrics.
func APICalls(tier int) int {
	switch tier {
	case Tier1:
		return 0
	case Tier2:
		return 1
	default:
		return 2
	}
}

// Classifier assigns a tier by query shape
type Classifier struct{}

// NewClassifier creates a query classifier
func NewClassifier() *Classifier {
	return &Classifier{}
}

// Classify inspects the corrected query. A single token matching one closed
// pattern set is tier 1; 2-5 tokens of recognized combinators is tier 2;
// everything else (long, metaphorical, mixed intent) is tier 3.
func (c *Classifier) Classify(query string) int {
	tokens := strings.Fields(strings.ToLower(strings.TrimSpace(query)))

	switch {
	case len(tokens) == 1:
		if isClosedPatternToken(tokens[0]) {
			return Tier1
		}
		return Tier3
	case len(tokens) >= 2 && len(tokens) <= 5:
		if countRecognizedTokens(tokens) > 0 {
			return Tier2
		}
		return Tier3
	default:
		return Tier3
	}
}

// isClosedPatternToken reports whether the token alone names one emotion,
// gender, age range, theme, or author.
func isClosedPatternToken(tok string) bool {
	if _, ok := emotionDict[tok]; ok {
		return true
	}
	if _, ok := genderDict[tok]; ok {
		return true
	}
	if _, ok := ageDict[tok]; ok {
		return true
	}
	if _, ok := themeDict[tok]; ok {
		return true
	}
	if _, ok := authorDict[tok]; ok {
		return true
	}
	return false
}

// countRecognizedTokens counts tokens any dictionary or combinator pattern
// explains.
func countRecognizedTokens(tokens []string) int {
	// Connective words that glue combinators together
	connectives := map[string]bool{
		"for": true, "a": true, "an": true, "the": true, "in": true,
		"about": true, "with": true, "her": true, "his": true, "and": true,
		"monologue": true, "monologues": true, "piece": true, "speech": true,
		"act": true, "scene": true,
	}

	n := 0
	for _, tok := range tokens {
		tok = strings.Trim(tok, ".,!?\"'")
		if connectives[tok] {
			continue
		}
		if isRecognizedToken(tok) {
			n++
		}
	}
	return n
}

func isRecognizedToken(tok string) bool {
	if isClosedPatternToken(tok) {
		return true
	}
	if _, ok := toneDict[tok]; ok {
		return true
	}
	if _, ok := categoryDict[tok]; ok {
		return true
	}
	if _, ok := famousWorks[tok]; ok {
		return true
	}
	if _, ok := famousCharacters[tok]; ok {
		return true
	}
	if _, ok := characterTypeDict[tok]; ok {
		return true
	}
	return false
}
