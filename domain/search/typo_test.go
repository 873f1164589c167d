package search

import (
	"testing"

	"github.com/antzucaro/matchr"
	"github.com/stretchr/testify/assert"
)

func TestCorrectKnownMisspellings(t *testing.T) {
	c := NewCorrector()

	tests := []struct {
		name  string
		query string
		want  string
	}{
		{"misspelled author and noun", "shakespere monologe", "shakespeare monologue"},
		{"misspelled author alone", "chekov", "chekhov"},
		{"misspelled title", "hamlett soliloquoy", "hamlet soliloquy"},
		{"mixed case and spacing", "  Shakespere   MONOLOGE ", "shakespeare monologue"},
		{"fuzzy catch", "shakespare", "shakespeare"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Correct(tt.query)
			assert.Equal(t, tt.want, got.Corrected)
			assert.True(t, got.Changed)
			assert.True(t, got.ShowBanner)
		})
	}
}

func TestCorrectLeavesCleanQueriesAlone(t *testing.T) {
	c := NewCorrector()

	queries := []string{
		"dramatic monologue for a woman",
		"shakespeare tragedy",
		"sad monologue about loss",
		"short comedic piece",
	}

	for _, q := range queries {
		got := c.Correct(q)
		assert.Equal(t, q, got.Corrected)
		assert.False(t, got.Changed)
		assert.False(t, got.ShowBanner)
	}
}

func TestCorrectIsIdempotent(t *testing.T) {
	c := NewCorrector()

	queries := []string{
		"shakespere monologe",
		"dramtic tradgedy audtion",
		"funny monolouge for a teen",
		"monologues about betrayal",
	}

	for _, q := range queries {
		once := c.Correct(q)
		twice := c.Correct(once.Corrected)
		assert.Equal(t, once.Corrected, twice.Corrected)
		assert.False(t, twice.Changed, "second pass changed %q", once.Corrected)
	}
}

func TestCorrectSkipsCommonWords(t *testing.T) {
	c := NewCorrector()

	// "play" is close to several vocabulary terms but must never drift
	got := c.Correct("play about an old woman")
	assert.Equal(t, "play about an old woman", got.Corrected)
	assert.False(t, got.Changed)
}

func TestCorrectShortTokens(t *testing.T) {
	c := NewCorrector()

	// Tokens under four characters are never fuzzy matched
	got := c.Correct("ham on rye")
	assert.Equal(t, "ham on rye", got.Corrected)
	assert.False(t, got.Changed)
}

func TestCorrectHidesBannerOnUnknownToken(t *testing.T) {
	c := NewCorrector()

	// One token fixed, one token neither layer recognizes. The correction
	// still applies but the banner stays hidden.
	got := c.Correct("shakespere xqzjkwpt")
	assert.Equal(t, "shakespeare xqzjkwpt", got.Corrected)
	assert.True(t, got.Changed)
	assert.False(t, got.ShowBanner)
}

func TestCorrectFuzzyThresholdIsInclusive(t *testing.T) {
	c := NewCorrector()

	// "mide" scores exactly 0.80 against "miller", right on the threshold
	assert.Equal(t, fuzzyThreshold, matchr.JaroWinkler("mide", "miller", false))

	got := c.Correct("mide")
	assert.Equal(t, "miller", got.Corrected)
	assert.True(t, got.Changed)
	assert.True(t, got.ShowBanner)
}

func TestCorrectEmptyQuery(t *testing.T) {
	c := NewCorrector()

	got := c.Correct("   ")
	assert.Equal(t, "", got.Corrected)
	assert.False(t, got.Changed)
}
