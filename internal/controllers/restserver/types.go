package restserver

import (
	"github.com/chrissnell/automorph/internal/morpho"
	"github.com/chrissnell/automorph/internal/profile"
	"github.com/chrissnell/automorph/internal/storage"
	"github.com/chrissnell/automorph/internal/storage/sqlite"
)

// AnalyzeRequest carries one raw profile. A null elevation marks a missing
// sample.
type AnalyzeRequest struct {
	Easting   []float64  `json:"easting"`
	Northing  []float64  `json:"northing"`
	Elevation []*float64 `json:"elevation"`
	Lat       []float64  `json:"lat"`
	Lon       []float64  `json:"lon"`

	Params  *ParamsOverride  `json:"params,omitempty"`
	Options *OptionsOverride `json:"options,omitempty"`
}

// ParamsOverride replaces the configured thresholds that are set
type ParamsOverride struct {
	MHW           *float64 `json:"mhw,omitempty"`
	HeelThreshold *float64 `json:"heel_threshold,omitempty"`
	CrestPct      *float64 `json:"crest_pct,omitempty"`
	RegressionPad *float64 `json:"regression_pad,omitempty"`
	VerticalError *float64 `json:"vertical_error,omitempty"`
	ScanAllPeaks  *bool    `json:"scan_all_peaks,omitempty"`
}

// OptionsOverride replaces the configured preparation options that are set
type OptionsOverride struct {
	GridStep         *float64 `json:"grid_step,omitempty"`
	SmoothingFrac    *float64 `json:"smoothing_frac,omitempty"`
	RobustIterations *int     `json:"robust_iterations,omitempty"`
}

// AnalyzeResponse is the morphometrics of one profile. Unavailable values
// are null.
type AnalyzeResponse struct {
	Profile ProfileSummary `json:"profile"`

	Shoreline *ShorelineReading `json:"shoreline"`
	Crest     *MarkerReading    `json:"crest"`
	Heel      *MarkerReading    `json:"heel"`
	Toe       *MarkerReading    `json:"toe"`

	DuneVolume    *float64 `json:"dune_volume"`
	BeachVolume   *float64 `json:"beach_volume"`
	ProfileVolume *float64 `json:"profile_volume"`
	Orientation   *float64 `json:"orientation"`

	Derived DerivedReading `json:"derived"`

	Params  morpho.Params   `json:"params"`
	Options profile.Options `json:"options"`
}

// ProfileSummary describes the normalized profile
type ProfileSummary struct {
	Samples     int      `json:"samples"`
	GridSamples int      `json:"grid_samples"`
	Length      *float64 `json:"length"`
	MinY        *float64 `json:"min_elevation"`
	MaxY        *float64 `json:"max_elevation"`
}

// MarkerReading is a located feature
type MarkerReading struct {
	Index int      `json:"index"`
	X     *float64 `json:"x"`
	Y     *float64 `json:"y"`
	Lat   *float64 `json:"lat"`
	Lon   *float64 `json:"lon"`
}

// ShorelineReading is the shoreline contour and its uncertainty
type ShorelineReading struct {
	MarkerReading

	PredictedX         *float64 `json:"predicted_x"`
	ConfidenceInterval *float64 `json:"confidence_interval"`
	LidarError         *float64 `json:"lidar_error"`
	ExtrapolationError *float64 `json:"extrapolation_error"`
	Error              *float64 `json:"error"`
	ForeshoreSlope     *float64 `json:"foreshore_slope"`
	Samples            int      `json:"samples"`
}

// DerivedReading holds the dune and beach shape ratios
type DerivedReading struct {
	DuneHeight    *float64 `json:"dune_height"`
	DuneWidth     *float64 `json:"dune_width"`
	AspectRatio   *float64 `json:"aspect_ratio"`
	DuneFaceSlope *float64 `json:"dune_face_slope"`
	BeachWidth    *float64 `json:"beach_width"`
	BeachSlope    *float64 `json:"beach_slope"`
}

// RunReading is a stored run with its exported rows. Each row maps the
// column keys (e.g. "x_crest") to their values, with null for NaN.
type RunReading struct {
	Run  sqlite.RunSummary `json:"run"`
	Rows []map[string]any  `json:"rows"`
}

// HealthReading is the /healthz payload
type HealthReading struct {
	Status string               `json:"status"`
	Sinks  []storage.SinkHealth `json:"sinks"`
}
