package profile

import (
	"math"
	"testing"
)

func TestLowess(t *testing.T) {
	line := make([]float64, 21)
	xs := make([]float64, 21)
	for i := range line {
		xs[i] = float64(i)
		line[i] = 2 + 0.5*float64(i)
	}

	spiked := append([]float64(nil), line...)
	spiked[10] += 5

	tests := []struct {
		name       string
		y          []float64
		frac       float64
		iterations int
		expected   []float64
		epsilon    float64
	}{
		{
			name:       "zero fraction passes through",
			y:          spiked,
			frac:       0,
			iterations: 3,
			expected:   spiked,
			epsilon:    0,
		},
		{
			name:       "fraction too small for a local fit",
			y:          spiked,
			frac:       0.05,
			iterations: 3,
			expected:   spiked,
			epsilon:    0,
		},
		{
			name:       "straight line is preserved",
			y:          line,
			frac:       0.5,
			iterations: 0,
			expected:   line,
			epsilon:    1e-9,
		},
		{
			name:       "robust passes reject a spike",
			y:          spiked,
			frac:       1,
			iterations: 1,
			expected:   line,
			epsilon:    0.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Lowess(xs, tt.y, tt.frac, tt.iterations)

			if len(result) != len(tt.expected) {
				t.Fatalf("expected %d results, got %d", len(tt.expected), len(result))
			}
			for i, val := range result {
				if math.Abs(val-tt.expected[i]) > tt.epsilon {
					t.Errorf("point %d: expected %.4f ± %.4f, got %.4f", i, tt.expected[i], tt.epsilon, val)
				}
			}
		})
	}
}

func TestLowessUnsortedInput(t *testing.T) {
	xs := []float64{4, 0, 3, 1, 2, 5}
	ys := make([]float64, len(xs))
	for i, x := range xs {
		ys[i] = 3 * x
	}

	result := Lowess(xs, ys, 0.8, 1)
	for i := range result {
		if math.Abs(result[i]-ys[i]) > 1e-9 {
			t.Errorf("point %d (x=%.0f): expected %.4f, got %.4f", i, xs[i], ys[i], result[i])
		}
	}
}
