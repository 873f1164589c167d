package pgutils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatVector(t *testing.T) {
	tests := []struct {
		name string
		v    []float32
		want string
	}{
		{"nil slice", nil, "[]"},
		{"empty slice", []float32{}, "[]"},
		{"single value", []float32{0.5}, "[0.5]"},
		{"query embedding sample", []float32{0.123, -0.456, 0.789}, "[0.123,-0.456,0.789]"},
		{"integers stay bare", []float32{1, 0, -2}, "[1,0,-2]"},
		{"small magnitudes", []float32{0.0001, -0.0002}, "[0.0001,-0.0002]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatVector(tt.v))
		})
	}
}

func TestFormatVectorFullDimension(t *testing.T) {
	// A full 3072-dim query embedding, as sent to pgvector
	v := make([]float32, 3072)
	for i := range v {
		v[i] = float32(i%7) * 0.125
	}

	got := FormatVector(v)
	assert.True(t, strings.HasPrefix(got, "["))
	assert.True(t, strings.HasSuffix(got, "]"))
	assert.Equal(t, 3071, strings.Count(got, ","))
}

func TestFormatVectorPrecision(t *testing.T) {
	// Shortest round-trippable form at float32 precision, no padding
	v := []float32{1.0 / 3.0}
	assert.Equal(t, "[0.33333334]", FormatVector(v))
}
