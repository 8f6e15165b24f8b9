package profile

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Lowess applies locally weighted linear regression (Cleveland 1979) to y
// sampled at x and returns the fitted values in input order.
//
// frac is the fraction of samples used for each local fit. When frac
// selects fewer than two neighbours the input is returned unchanged, which
// is how the LiDAR pipeline runs by default (frac = 0).
func Lowess(x, y []float64, frac float64, iterations int) []float64 {
	n := len(x)
	out := append([]float64(nil), y...)

	k := int(frac*float64(n) + 1e-10)
	if k > n {
		k = n
	}
	if frac <= 0 || k < 2 {
		return out
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return x[order[a]] < x[order[b]] })

	xs := make([]float64, n)
	ys := make([]float64, n)
	for i, idx := range order {
		xs[i] = x[idx]
		ys[i] = y[idx]
	}

	robust := make([]float64, n)
	for i := range robust {
		robust[i] = 1
	}

	fitted := make([]float64, n)
	for pass := 0; pass <= iterations; pass++ {
		lo := 0
		for i := 0; i < n; i++ {
			// Slide the k-nearest window along the sorted abscissa
			for lo+k < n && xs[i]-xs[lo] > xs[lo+k]-xs[i] {
				lo++
			}
			fitted[i] = localFit(xs, ys, robust, i, lo, lo+k)
		}

		if pass == iterations {
			break
		}
		if !updateRobustWeights(ys, fitted, robust) {
			break
		}
	}

	for i, idx := range order {
		out[idx] = fitted[i]
	}
	return out
}

// localFit evaluates a tricube-weighted linear fit over xs[lo:hi] at xs[i]
func localFit(xs, ys, robust []float64, i, lo, hi int) float64 {
	h := math.Max(xs[i]-xs[lo], xs[hi-1]-xs[i])

	wx := xs[lo:hi]
	wy := ys[lo:hi]
	w := make([]float64, hi-lo)
	total := 0.0
	for j := range w {
		u := 0.0
		if h > 0 {
			u = math.Abs(wx[j]-xs[i]) / h
		}
		if u < 1 {
			c := 1 - u*u*u
			w[j] = c * c * c * robust[lo+j]
		}
		total += w[j]
	}

	if total == 0 {
		return ys[i]
	}

	alpha, beta := stat.LinearRegression(wx, wy, w, false)
	if math.IsNaN(beta) || math.IsInf(beta, 0) {
		// All weight sits on a single abscissa
		return stat.Mean(wy, w)
	}
	return alpha + beta*xs[i]
}

// updateRobustWeights sets bisquare weights from the residuals. It returns
// false when the residuals are all zero and no further pass is needed.
func updateRobustWeights(ys, fitted, robust []float64) bool {
	residuals := make([]float64, len(ys))
	for i := range ys {
		residuals[i] = math.Abs(ys[i] - fitted[i])
	}

	sorted := append([]float64(nil), residuals...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	median := sorted[mid]
	if len(sorted)%2 == 0 {
		median = (sorted[mid-1] + sorted[mid]) / 2
	}
	if median == 0 {
		return false
	}

	s := 6 * median
	for i, r := range residuals {
		u := r / s
		if u < 1 {
			c := 1 - u*u
			robust[i] = c * c
		} else {
			robust[i] = 0
		}
	}
	return true
}
