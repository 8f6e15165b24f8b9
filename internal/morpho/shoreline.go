package morpho

import (
	"math"

	"github.com/chrissnell/automorph/internal/profile"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// FindShoreline locates the MHW contour on p by regressing the foreshore
// samples within params.RegressionPad of MHW. Samples on the landward half
// of the profile are ignored since some backshores dip back into the band.
// It returns nil when no sample falls into the band.
func FindShoreline(p *profile.Profile, params Params) *Shoreline {
	lo, hi := params.MHW-params.RegressionPad, params.MHW+params.RegressionPad
	half := floats.Max(p.X) / 2

	var (
		idx []int
		xs  []float64
		ys  []float64
	)
	for i := range p.Y {
		if p.Y[i] >= lo && p.Y[i] <= hi && p.X[i] > half {
			idx = append(idx, i)
			xs = append(xs, p.X[i])
			ys = append(ys, p.Y[i])
		}
	}

	n := len(xs)
	if n == 0 {
		return nil
	}

	observed := 0
	for j := 1; j < n; j++ {
		if math.Abs(ys[j]-params.MHW) < math.Abs(ys[observed]-params.MHW) {
			observed = j
		}
	}

	intercept, slope := stat.LinearRegression(xs, ys, nil, false)
	predicted := (params.MHW - intercept) / slope

	sxx, syy, sxy := pairStats(xs, ys)
	nf := float64(n)
	sigma := math.Sqrt((syy - slope*sxy) / nf)
	ci := studentsT(confidenceAlpha, nf-2) * sigma * math.Sqrt(nf/((nf-2)*sxx))

	s := &Shoreline{
		Marker:             markerAt(p, idx[observed]),
		PredictedX:         predicted,
		ConfidenceInterval: ci,
		LidarError:         slope * params.VerticalError,
		ForeshoreSlope:     -slope,
		Samples:            n,
	}
	s.ExtrapolationError = s.X - predicted
	s.Error = math.Sqrt(ci*ci + s.LidarError*s.LidarError + s.ExtrapolationError*s.ExtrapolationError)

	return s
}

// pairStats returns the corrected sums of squares and cross products
func pairStats(x, y []float64) (sxx, syy, sxy float64) {
	n := float64(len(x))
	sumX := floats.Sum(x)
	sumY := floats.Sum(y)

	sxx = floats.Dot(x, x) - sumX*sumX/n
	syy = floats.Dot(y, y) - sumY*sumY/n
	sxy = floats.Dot(x, y) - sumX*sumY/n
	return sxx, syy, sxy
}

// studentsT returns the two-tailed critical value of Student's t for the
// given significance, or NaN without degrees of freedom
func studentsT(alpha, nu float64) float64 {
	if nu <= 0 {
		return math.NaN()
	}
	return distuv.StudentsT{Mu: 0, Sigma: 1, Nu: nu}.Quantile(1 - alpha/2)
}
