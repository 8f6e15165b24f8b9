package morpho

// localMaxima returns the indices of the local maxima of y in ascending
// order. A maximum needs a strict rise into it and a strict fall out of it;
// a flat top reports its middle sample (rounded down), and the two end
// samples are never maxima.
func localMaxima(y []float64) []int {
	var peaks []int

	last := len(y) - 1
	i := 1
	for i < last {
		if y[i-1] < y[i] {
			ahead := i + 1
			for ahead < last && y[ahead] == y[i] {
				ahead++
			}
			if y[ahead] < y[i] {
				peaks = append(peaks, (i+ahead-1)/2)
				i = ahead
			}
		}
		i++
	}

	return peaks
}

// argMaxRange returns the first index of the largest y in [lo, hi]
func argMaxRange(y []float64, lo, hi int) int {
	best := lo
	for i := lo + 1; i <= hi; i++ {
		if y[i] > y[best] {
			best = i
		}
	}
	return best
}
