package mathutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClamp(t *testing.T) {
	tests := []struct {
		name string
		v    float64
		lo   float64
		hi   float64
		want float64
	}{
		{"within range", 0.5, 0, 1, 0.5},
		{"below lo", -0.2, 0, 1, 0},
		{"above hi", 1.4, 0, 1.3, 1.3},
		{"at lo boundary", 0, 0, 1, 0},
		{"at hi boundary", 1, 0, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Clamp(tt.v, tt.lo, tt.hi))
		})
	}
}

func TestClampInt(t *testing.T) {
	tests := []struct {
		name string
		v    int
		lo   int
		hi   int
		want int
	}{
		{"within range", 150, 100, 500, 150},
		{"below lo", 60, 100, 500, 100},
		{"above hi", 900, 100, 500, 500},
		{"at boundaries", 100, 100, 100, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClampInt(tt.v, tt.lo, tt.hi))
		})
	}
}
