package morpho

import "github.com/chrissnell/automorph/internal/profile"

// Marker locates a morphometric feature on a canonical profile
type Marker struct {
	Index int     `json:"index" msgpack:"index"`
	X     float64 `json:"x" msgpack:"x"`
	Y     float64 `json:"y" msgpack:"y"`
	Lat   float64 `json:"lat" msgpack:"lat"`
	Lon   float64 `json:"lon" msgpack:"lon"`
}

// markerAt returns the marker for sample idx of p
func markerAt(p *profile.Profile, idx int) Marker {
	return Marker{
		Index: idx,
		X:     p.X[idx],
		Y:     p.Y[idx],
		Lat:   p.Lat[idx],
		Lon:   p.Lon[idx],
	}
}

// Shoreline is the reference-level contour together with its positional
// uncertainty (Hapke et al. 2013) and the foreshore slope
type Shoreline struct {
	Marker

	// PredictedX is where the regression line crosses the reference level
	PredictedX float64 `json:"predicted_x" msgpack:"predicted_x"`

	// ConfidenceInterval is the 95% half-width of the regression crossing
	ConfidenceInterval float64 `json:"confidence_interval" msgpack:"confidence_interval"`

	// LidarError is the horizontal uncertainty from the vertical LiDAR error
	LidarError float64 `json:"lidar_error" msgpack:"lidar_error"`

	// ExtrapolationError is the observed minus the predicted contour position
	ExtrapolationError float64 `json:"extrapolation_error" msgpack:"extrapolation_error"`

	// Error is the quadrature sum of the three terms above
	Error float64 `json:"error" msgpack:"error"`

	ForeshoreSlope float64 `json:"foreshore_slope" msgpack:"foreshore_slope"`

	// Samples is the number of points used in the regression
	Samples int `json:"samples" msgpack:"samples"`
}

// Measure is a scalar that may be unavailable for a profile
type Measure struct {
	Value float64 `json:"value" msgpack:"value"`
	Valid bool    `json:"valid" msgpack:"valid"`
}

// Valid wraps v as an available measure
func Valid(v float64) Measure {
	return Measure{Value: v, Valid: true}
}

// Record holds the morphometrics of one profile. A nil marker means the
// feature has not been located (or, for the shoreline, could not be).
type Record struct {
	Profile int `json:"profile" msgpack:"profile"`

	Shoreline *Shoreline `json:"shoreline" msgpack:"shoreline"`
	Crest     *Marker    `json:"crest" msgpack:"crest"`
	Heel      *Marker    `json:"heel" msgpack:"heel"`
	Toe       *Marker    `json:"toe" msgpack:"toe"`

	DuneVolume    float64 `json:"dune_volume" msgpack:"dune_volume"`
	BeachVolume   float64 `json:"beach_volume" msgpack:"beach_volume"`
	ProfileVolume Measure `json:"profile_volume" msgpack:"profile_volume"`

	// Orientation is the bearing from heel to shoreline in degrees [0, 360)
	Orientation float64 `json:"orientation" msgpack:"orientation"`
}

// NewRecord returns a blank record for the numbered profile
func NewRecord(profileNumber int) *Record {
	return &Record{Profile: profileNumber}
}

// SetShoreline stores the shoreline contour; nil marks it unavailable
func (r *Record) SetShoreline(s *Shoreline) {
	r.Shoreline = s
}

// SetCrest stores the crest, replacing any earlier estimate
func (r *Record) SetCrest(m Marker) {
	r.Crest = &m
}

// SetHeel stores the heel
func (r *Record) SetHeel(m Marker) {
	r.Heel = &m
}

// SetToe stores the toe
func (r *Record) SetToe(m Marker) {
	r.Toe = &m
}

// SetVolumes stores the three integrated volumes
func (r *Record) SetVolumes(dune, beach float64, whole Measure) {
	r.DuneVolume = dune
	r.BeachVolume = beach
	r.ProfileVolume = whole
}

// SetOrientation stores the profile bearing
func (r *Record) SetOrientation(bearing float64) {
	r.Orientation = bearing
}

// ShorelineIndex returns the shoreline sample index, or 0 when the
// shoreline is unavailable
func (r *Record) ShorelineIndex() int {
	if r.Shoreline == nil {
		return 0
	}
	return r.Shoreline.Index
}
