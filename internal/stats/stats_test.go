package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMean(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   float64
	}{
		{name: "empty", values: nil, want: 0},
		{name: "single", values: []float64{5}, want: 5},
		{name: "several", values: []float64{1, 2, 3, 4}, want: 2.5},
		{name: "negative", values: []float64{-2, 2}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Mean(tt.values), 1e-9)
		})
	}
}

func TestStdDev(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   float64
	}{
		{name: "empty", values: nil, want: 0},
		{name: "uniform", values: []float64{3, 3, 3}, want: 0},
		// population stddev of 2,4,4,4,5,5,7,9 is exactly 2
		{name: "known", values: []float64{2, 4, 4, 4, 5, 5, 7, 9}, want: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, StdDev(tt.values), 1e-9)
		})
	}
}

func TestRatio(t *testing.T) {
	assert.Equal(t, 0.0, Ratio(10, 0))
	assert.InDelta(t, 0.5, Ratio(1, 2), 1e-9)
	assert.InDelta(t, -2, Ratio(-4, 2), 1e-9)
}

func TestZScore(t *testing.T) {
	assert.Equal(t, 0.0, ZScore(100, 50, 0))
	assert.InDelta(t, 2, ZScore(100, 50, 25), 1e-9)
	assert.InDelta(t, -1, ZScore(25, 50, 25), 1e-9)
}
