// Package profile turns raw LiDAR cross-shore samples into canonical
// profiles: gap-filled, smoothed, resampled, and ordered seaward to landward.
package profile

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/interp"
)

var (
	// ErrLengthMismatch is returned when the raw sample arrays differ in length
	ErrLengthMismatch = errors.New("profile: sample arrays differ in length")

	// ErrTooFewSamples is returned when fewer than two valid elevations exist
	ErrTooFewSamples = errors.New("profile: fewer than 2 valid elevation samples")

	// ErrNotMonotonic is returned when canonical distances are not strictly decreasing
	ErrNotMonotonic = errors.New("profile: cross-shore distance is not monotonic")

	// ErrGridTooLarge is returned when the uniform resample would exceed
	// MaxGridSamples points
	ErrGridTooLarge = errors.New("profile: resample grid too large")
)

// MaxGridSamples bounds the uniform resample of a single profile
const MaxGridSamples = 1 << 20

// Options controls smoothing and resampling
type Options struct {
	// GridStep is the spacing of the uniform resample in meters (e.g., 0.5)
	GridStep float64 `json:"grid_step"`

	// SmoothingFrac is the LOWESS span as a fraction of the samples.
	// 0 disables smoothing and passes elevations through unchanged.
	SmoothingFrac float64 `json:"smoothing_frac"`

	// RobustIterations is the number of LOWESS robustifying passes
	RobustIterations int `json:"robust_iterations"`
}

// DefaultOptions returns the options used for LiDAR profiles
func DefaultOptions() Options {
	return Options{
		GridStep:         0.5,
		SmoothingFrac:    0,
		RobustIterations: 3,
	}
}

// RawProfile holds parallel sample arrays as read from a profile file.
// A missing elevation is NaN.
type RawProfile struct {
	Easting   []float64
	Northing  []float64
	Elevation []float64
	Lat       []float64
	Lon       []float64
}

// Len returns the number of raw samples
func (r RawProfile) Len() int {
	return len(r.Elevation)
}

// Profile is a canonical cross-shore profile. Index 0 is the seaward end and
// the index increases landward. X is the distance from the landward anchor,
// so it strictly decreases with the index and is 0 at the last sample.
type Profile struct {
	X   []float64
	Y   []float64
	Lat []float64
	Lon []float64

	// GridX and GridY are the uniform resample, ordered seaward-first
	GridX []float64
	GridY []float64
}

// Len returns the number of canonical samples
func (p *Profile) Len() int {
	return len(p.X)
}

// MaxX returns the cross-shore length of the profile
func (p *Profile) MaxX() float64 {
	return floats.Max(p.X)
}

// Raw returns the profile expressed as raw samples along a due-north line.
// Normalizing the result with smoothing disabled reproduces p exactly.
func (p *Profile) Raw() RawProfile {
	return RawProfile{
		Easting:   make([]float64, p.Len()),
		Northing:  append([]float64(nil), p.X...),
		Elevation: append([]float64(nil), p.Y...),
		Lat:       append([]float64(nil), p.Lat...),
		Lon:       append([]float64(nil), p.Lon...),
	}
}

// Normalize builds a canonical Profile from raw samples
func Normalize(raw RawProfile, opts Options) (*Profile, error) {
	n := raw.Len()
	if len(raw.Easting) != n || len(raw.Northing) != n || len(raw.Lat) != n || len(raw.Lon) != n {
		return nil, fmt.Errorf("%w: easting=%d northing=%d elevation=%d lat=%d lon=%d",
			ErrLengthMismatch, len(raw.Easting), len(raw.Northing), n, len(raw.Lat), len(raw.Lon))
	}

	elev, err := fillMissing(raw.Elevation)
	if err != nil {
		return nil, err
	}

	dist := crossShoreDistance(raw.Easting, raw.Northing)
	smoothed := Lowess(dist, elev, opts.SmoothingFrac, opts.RobustIterations)

	gridX, gridY, err := resample(dist, smoothed, opts.GridStep)
	if err != nil {
		return nil, err
	}

	p := &Profile{
		X:     dist,
		Y:     smoothed,
		Lat:   append([]float64(nil), raw.Lat...),
		Lon:   append([]float64(nil), raw.Lon...),
		GridX: gridX,
		GridY: gridY,
	}

	// Flip so that the indices increase landwards
	if dist[n-1] > dist[0] {
		floats.Reverse(p.X)
		floats.Reverse(p.Y)
		floats.Reverse(p.Lat)
		floats.Reverse(p.Lon)
	}

	for i := 1; i < n; i++ {
		if !(p.X[i] < p.X[i-1]) {
			return nil, fmt.Errorf("%w: X[%d]=%.3f, X[%d]=%.3f", ErrNotMonotonic, i-1, p.X[i-1], i, p.X[i])
		}
	}

	return p, nil
}

// fillMissing holds the last valid elevation forward, then fills any
// leading gap backward from the first valid elevation
func fillMissing(elevation []float64) ([]float64, error) {
	filled := append([]float64(nil), elevation...)

	valid := 0
	for _, z := range filled {
		if !math.IsNaN(z) {
			valid++
		}
	}
	if valid < 2 {
		return nil, fmt.Errorf("%w: %d of %d samples have data", ErrTooFewSamples, valid, len(filled))
	}

	for i := 1; i < len(filled); i++ {
		if math.IsNaN(filled[i]) {
			filled[i] = filled[i-1]
		}
	}
	for i := len(filled) - 2; i >= 0; i-- {
		if math.IsNaN(filled[i]) {
			filled[i] = filled[i+1]
		}
	}

	return filled, nil
}

// crossShoreDistance measures every sample from the one with the minimum
// northing. This assumes the profile is roughly shore-normal.
func crossShoreDistance(easting, northing []float64) []float64 {
	anchor := floats.MinIdx(northing)
	e0, n0 := easting[anchor], northing[anchor]

	dist := make([]float64, len(easting))
	for i := range easting {
		de := easting[i] - e0
		dn := northing[i] - n0
		dist[i] = math.Sqrt(de*de + dn*dn)
	}
	return dist
}

// resample linearly interpolates elevations onto 0, step, 2*step, ... up to
// floor(max distance). The result is ordered seaward-first.
func resample(dist, elev []float64, step float64) ([]float64, []float64, error) {
	if step <= 0 {
		return nil, nil, fmt.Errorf("profile: grid step must be positive, got %v", step)
	}

	order := make([]int, len(dist))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return dist[order[a]] < dist[order[b]] })

	xs := make([]float64, len(order))
	ys := make([]float64, len(order))
	for i, idx := range order {
		xs[i] = dist[idx]
		ys[i] = elev[idx]
	}
	for i := 1; i < len(xs); i++ {
		if xs[i] == xs[i-1] {
			return nil, nil, fmt.Errorf("%w: duplicate distance %.3f", ErrNotMonotonic, xs[i])
		}
	}

	var pl interp.PiecewiseLinear
	if err := pl.Fit(xs, ys); err != nil {
		return nil, nil, fmt.Errorf("profile: interpolation failed: %w", err)
	}

	stop := math.Floor(xs[len(xs)-1])
	cells := math.Floor(stop/step) + 1
	if !(cells <= MaxGridSamples) {
		return nil, nil, fmt.Errorf("%w: %.0f m at step %v needs %.0f points, limit %d",
			ErrGridTooLarge, stop, step, cells, MaxGridSamples)
	}
	count := int(cells)
	gridX := make([]float64, count)
	gridY := make([]float64, count)
	for i := 0; i < count; i++ {
		x := float64(i) * step
		gridX[count-1-i] = x
		gridY[count-1-i] = pl.Predict(x)
	}

	return gridX, gridY, nil
}
