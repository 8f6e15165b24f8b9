package morpho

// Params holds the thresholds of the morphometric heuristics
type Params struct {
	// MHW is the reference water level (mean high water) in meters
	MHW float64 `json:"mhw"`

	// HeelThreshold is the minimum backshore drop in meters that qualifies
	// a crest and ends the heel search (Mull and Ruggiero 2014 use 0.6)
	HeelThreshold float64 `json:"heel_threshold"`

	// CrestPct lets a more seaward peak within this fraction of the
	// qualifying peak's elevation become the crest
	CrestPct float64 `json:"crest_pct"`

	// RegressionPad is the +/- elevation band around MHW used for the
	// shoreline regression
	RegressionPad float64 `json:"regression_pad"`

	// VerticalError is the LiDAR vertical error in meters
	VerticalError float64 `json:"vertical_error"`

	// ScanAllPeaks tests every candidate peak against the backshore drop,
	// stopping at the first that qualifies. When false only the first
	// candidate is tested.
	ScanAllPeaks bool `json:"scan_all_peaks"`
}

// DefaultParams returns the standard thresholds for the given MHW level
func DefaultParams(mhw float64) Params {
	return Params{
		MHW:           mhw,
		HeelThreshold: 0.6,
		CrestPct:      0.1,
		RegressionPad: 0.5,
		VerticalError: 0.15,
	}
}

// confidenceAlpha is the two-tailed significance of the shoreline CI
const confidenceAlpha = 0.05

// flatRatio is how close the next landward sample must come to the current
// one, proportionally, for the heel walk to call the backshore flat
const flatRatio = 0.95
