package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeFiltersLaterLayersWin(t *testing.T) {
	ai := Filters{Gender: "male", Emotion: "sad", Themes: []string{"loss"}}
	kw := Filters{Gender: "female", Themes: []string{"grief"}}
	act := 3
	explicit := Filters{AgeRange: "30s", Act: &act}

	merged := MergeFilters(ai, kw, explicit)

	assert.Equal(t, "female", merged.Gender, "keyword layer overrides the LLM parse")
	assert.Equal(t, "sad", merged.Emotion, "unset later layers keep earlier values")
	assert.Equal(t, "30s", merged.AgeRange)
	require.NotNil(t, merged.Act)
	assert.Equal(t, 3, *merged.Act)
	assert.Equal(t, []string{"loss", "grief"}, merged.Themes, "themes accumulate across layers")
}

func TestMergeFiltersDeduplicatesThemes(t *testing.T) {
	merged := MergeFilters(
		Filters{Themes: []string{"love", "loss"}},
		Filters{Themes: []string{"loss", "betrayal"}},
	)
	assert.Equal(t, []string{"love", "loss", "betrayal"}, merged.Themes)
}

func TestFiltersIsEmpty(t *testing.T) {
	assert.True(t, Filters{}.IsEmpty())
	assert.False(t, Filters{Gender: "female"}.IsEmpty())
	assert.False(t, Filters{ExcludeOverdone: true}.IsEmpty())

	n := 1
	assert.False(t, Filters{Act: &n}.IsEmpty())
}

func TestFiltersPairsCanonical(t *testing.T) {
	secs := 120
	f := Filters{
		Gender:             "female",
		Themes:             []string{"revenge", "betrayal"},
		MaxDurationSeconds: &secs,
	}

	pairs := f.Pairs()

	// Theme order must not leak into the pairs
	g := Filters{
		Gender:             "female",
		Themes:             []string{"betrayal", "revenge"},
		MaxDurationSeconds: &secs,
	}
	assert.Equal(t, pairs, g.Pairs())

	var keys []string
	for _, p := range pairs {
		keys = append(keys, p.Key)
	}
	assert.Equal(t, []string{"gender", "themes", "max_duration"}, keys)
}

func TestFiltersPairsSkipsUnset(t *testing.T) {
	assert.Empty(t, Filters{}.Pairs())
}
