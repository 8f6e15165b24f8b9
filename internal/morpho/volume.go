package morpho

import (
	"math"

	"github.com/chrissnell/automorph/internal/profile"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/integrate"
)

// DuneVolume returns the area between the profile and a flat base laid
// from the toe to the heel at the lower of their two elevations, in cubic
// meters per meter of shoreline
func DuneVolume(p *profile.Profile, toe, heel Marker) float64 {
	base := math.Min(p.Y[toe.Index], p.Y[heel.Index])
	return volumeAbove(p, func(flat []float64) {
		for i := toe.Index; i < heel.Index; i++ {
			flat[i] = base
		}
	})
}

// BeachVolume returns the area between the profile and a flat base laid
// from the shoreline (or the seaward end without one) to the toe
func BeachVolume(p *profile.Profile, shoreline *Shoreline, toe Marker) float64 {
	anchor := 0
	if shoreline != nil {
		anchor = shoreline.Index
	}
	base := math.Min(p.Y[anchor], p.Y[toe.Index])
	return volumeAbove(p, func(flat []float64) {
		for i := anchor; i < toe.Index; i++ {
			flat[i] = base
		}
	})
}

// ProfileVolume returns the area of the profile above the shoreline
// elevation. It is unavailable without a shoreline.
func ProfileVolume(p *profile.Profile, shoreline *Shoreline) Measure {
	if shoreline == nil {
		return Measure{}
	}
	return Valid(volumeAbove(p, func(flat []float64) {
		for i, v := range flat {
			if v > shoreline.Y {
				flat[i] = shoreline.Y
			}
		}
	}))
}

// volumeAbove integrates p minus a copy of its elevations reshaped by
// flatten. p itself is never modified.
func volumeAbove(p *profile.Profile, flatten func(flat []float64)) float64 {
	flat := append([]float64(nil), p.Y...)
	flatten(flat)
	return area(p.X, p.Y) - area(p.X, flat)
}

// area integrates y over the canonical (descending) distances x. Reversing
// both arrays gives the ascending abscissa the trapezoidal rule needs, and
// the sign matches integration in profile order negated.
func area(x, y []float64) float64 {
	if len(x) < 2 {
		return 0
	}
	xs := append([]float64(nil), x...)
	ys := append([]float64(nil), y...)
	floats.Reverse(xs)
	floats.Reverse(ys)
	return integrate.Trapezoidal(xs, ys)
}
