package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractDictionaryHits(t *testing.T) {
	e := NewExtractor()

	tests := []struct {
		name  string
		query string
		check func(t *testing.T, f Filters)
	}{
		{
			name:  "emotion and gender",
			query: "sad monologue for a woman",
			check: func(t *testing.T, f Filters) {
				assert.Equal(t, "sad", f.Emotion)
				assert.Equal(t, "female", f.Gender)
			},
		},
		{
			name:  "age range synonym",
			query: "piece for a teenager",
			check: func(t *testing.T, f Filters) {
				assert.Equal(t, "teens", f.AgeRange)
			},
		},
		{
			name:  "young stays young for retriever expansion",
			query: "young woman monologue",
			check: func(t *testing.T, f Filters) {
				assert.Equal(t, "young", f.AgeRange)
				assert.Equal(t, "female", f.Gender)
			},
		},
		{
			name:  "tone mapping",
			query: "funny monologue",
			check: func(t *testing.T, f Filters) {
				assert.Equal(t, "comedic", f.Tone)
			},
		},
		{
			name:  "famous work implies author",
			query: "hamlet monologue",
			check: func(t *testing.T, f Filters) {
				assert.Equal(t, "William Shakespeare", f.Author)
			},
		},
		{
			name:  "famous character",
			query: "ophelia speech",
			check: func(t *testing.T, f Filters) {
				assert.Equal(t, "Ophelia", f.CharacterName)
			},
		},
		{
			name:  "character archetype expands themes",
			query: "villain monologue",
			check: func(t *testing.T, f Filters) {
				assert.ElementsMatch(t, []string{"power", "revenge", "ambition"}, f.Themes)
			},
		},
		{
			name:  "themes accumulate",
			query: "betrayal and revenge",
			check: func(t *testing.T, f Filters) {
				assert.Equal(t, []string{"betrayal", "revenge"}, f.Themes)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, e.Extract(tt.query).Filters)
		})
	}
}

func TestExtractActScene(t *testing.T) {
	e := NewExtractor()

	f := e.Extract("hamlet act 3 scene 1").Filters
	require.NotNil(t, f.Act)
	require.NotNil(t, f.Scene)
	assert.Equal(t, 3, *f.Act)
	assert.Equal(t, 1, *f.Scene)
	assert.Equal(t, "William Shakespeare", f.Author)
}

func TestExtractRomanNumerals(t *testing.T) {
	e := NewExtractor()

	f := e.Extract("macbeth act iv scene ii").Filters
	require.NotNil(t, f.Act)
	require.NotNil(t, f.Scene)
	assert.Equal(t, 4, *f.Act)
	assert.Equal(t, 2, *f.Scene)
}

func TestExtractYearsOld(t *testing.T) {
	e := NewExtractor()

	f := e.Extract("woman 25 years old").Filters
	assert.Equal(t, "20s", f.AgeRange)
	assert.Equal(t, "female", f.Gender)
}

func TestExtractDuration(t *testing.T) {
	e := NewExtractor()

	tests := []struct {
		query string
		want  int
	}{
		{"monologue under 2 minutes", 120},
		{"90 seconds piece", 90},
		{"1-2 min monologue", 120},
		{"short monologue", 90},
	}

	for _, tt := range tests {
		f := e.Extract(tt.query).Filters
		require.NotNil(t, f.MaxDurationSeconds, tt.query)
		assert.Equal(t, tt.want, *f.MaxDurationSeconds, tt.query)
	}
}

func TestExtractConfidence(t *testing.T) {
	e := NewExtractor()

	// Fully explained short query
	ex := e.Extract("sad woman")
	assert.Equal(t, 1.0, ex.Confidence)

	// Long query with almost nothing recognized
	ex = e.Extract("that thing where the person talks alone on stage forever")
	assert.Equal(t, 0.2, ex.Confidence)

	// Empty
	ex = e.Extract("")
	assert.Equal(t, 0.0, ex.Confidence)
}

func TestParseRoman(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"i", 1, true},
		{"iv", 4, true},
		{"ix", 9, true},
		{"xii", 12, true},
		{"c", 100, true},
		{"", 0, false},
		{"abc", 0, false},
	}

	for _, tt := range tests {
		got, ok := parseRoman(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		if ok {
			assert.Equal(t, tt.want, got, tt.in)
		}
	}
}
