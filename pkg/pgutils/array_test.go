package pgutils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatTextArray(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected string
	}{
		{
			name:     "simple elements",
			input:    []string{"grief", "betrayal"},
			expected: `{"grief","betrayal"}`,
		},
		{
			name:     "element with comma and quote",
			input:    []string{`he said "go"`, "a, b"},
			expected: `{"he said \"go\"","a, b"}`,
		},
		{
			name:     "empty slice",
			input:    nil,
			expected: "{}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatTextArray(tt.input))
		})
	}
}

func TestFormatTextArrayRoundTrip(t *testing.T) {
	in := []string{"grief", "star-crossed love, doomed", `quoted "name"`}
	assert.Equal(t, in, ParseTextArray(FormatTextArray(in)))
}

func TestParseTextArray(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "simple elements",
			input:    "{grief,betrayal,ambition}",
			expected: []string{"grief", "betrayal", "ambition"},
		},
		{
			name:     "quoted element with comma",
			input:    `{grief,"star-crossed love, doomed"}`,
			expected: []string{"grief", "star-crossed love, doomed"},
		},
		{
			name:     "escaped quote inside element",
			input:    `{"he said \"never\""}`,
			expected: []string{`he said "never"`},
		},
		{
			name:     "unquoted NULL is dropped",
			input:    "{grief,NULL,ambition}",
			expected: []string{"grief", "ambition"},
		},
		{
			name:     "quoted NULL is a literal value",
			input:    `{"NULL"}`,
			expected: []string{"NULL"},
		},
		{
			name:     "empty array",
			input:    "{}",
			expected: nil,
		},
		{
			name:     "empty string",
			input:    "",
			expected: nil,
		},
		{
			name:     "not an array literal",
			input:    "grief",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseTextArray(tt.input))
		})
	}
}
