package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	c := NewClassifier()

	tests := []struct {
		name  string
		query string
		want  int
	}{
		{"single emotion token", "sad", Tier1},
		{"single author token", "shakespeare", Tier1},
		{"single theme token", "betrayal", Tier1},
		{"single unknown token", "xylophone", Tier3},
		{"recognized pair", "sad monologue", Tier2},
		{"gender and emotion", "angry woman", Tier2},
		{"recognized combinator", "funny monologue for a teen", Tier2},
		{"five unknown tokens", "something something else entirely here", Tier3},
		{"long natural language", "a monologue for a woman who just lost everything she loved", Tier3},
		{"empty", "", Tier3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(tt.query))
		})
	}
}

func TestAPICalls(t *testing.T) {
	assert.Equal(t, 0, APICalls(Tier1))
	assert.Equal(t, 1, APICalls(Tier2))
	assert.Equal(t, 2, APICalls(Tier3))
}
