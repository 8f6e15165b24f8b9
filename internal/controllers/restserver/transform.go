package restserver

import (
	"math"

	"github.com/chrissnell/automorph/internal/morpho"
	"github.com/chrissnell/automorph/internal/profile"
	"github.com/chrissnell/automorph/internal/storage"
	"gonum.org/v1/gonum/floats"
)

// num returns nil for values JSON cannot carry
func num(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func measure(m morpho.Measure) *float64 {
	if !m.Valid {
		return nil
	}
	return num(m.Value)
}

func transformMarker(m *morpho.Marker) *MarkerReading {
	if m == nil {
		return nil
	}
	return &MarkerReading{
		Index: m.Index,
		X:     num(m.X),
		Y:     num(m.Y),
		Lat:   num(m.Lat),
		Lon:   num(m.Lon),
	}
}

func transformShoreline(s *morpho.Shoreline) *ShorelineReading {
	if s == nil {
		return nil
	}
	return &ShorelineReading{
		MarkerReading:      *transformMarker(&s.Marker),
		PredictedX:         num(s.PredictedX),
		ConfidenceInterval: num(s.ConfidenceInterval),
		LidarError:         num(s.LidarError),
		ExtrapolationError: num(s.ExtrapolationError),
		Error:              num(s.Error),
		ForeshoreSlope:     num(s.ForeshoreSlope),
		Samples:            s.Samples,
	}
}

func transformDerived(d morpho.Derived) DerivedReading {
	return DerivedReading{
		DuneHeight:    measure(d.DuneHeight),
		DuneWidth:     measure(d.DuneWidth),
		AspectRatio:   measure(d.AspectRatio),
		DuneFaceSlope: measure(d.DuneFaceSlope),
		BeachWidth:    measure(d.BeachWidth),
		BeachSlope:    measure(d.BeachSlope),
	}
}

func summarizeProfile(p *profile.Profile) ProfileSummary {
	return ProfileSummary{
		Samples:     p.Len(),
		GridSamples: len(p.GridX),
		Length:      num(p.MaxX()),
		MinY:        num(floats.Min(p.Y)),
		MaxY:        num(floats.Max(p.Y)),
	}
}

// transformRecord builds the response for an analyzed profile
func transformRecord(p *profile.Profile, rec *morpho.Record, params morpho.Params, opts profile.Options) AnalyzeResponse {
	return AnalyzeResponse{
		Profile:       summarizeProfile(p),
		Shoreline:     transformShoreline(rec.Shoreline),
		Crest:         transformMarker(rec.Crest),
		Heel:          transformMarker(rec.Heel),
		Toe:           transformMarker(rec.Toe),
		DuneVolume:    num(rec.DuneVolume),
		BeachVolume:   num(rec.BeachVolume),
		ProfileVolume: measure(rec.ProfileVolume),
		Orientation:   num(rec.Orientation),
		Derived:       transformDerived(morpho.Derive(rec)),
		Params:        params,
		Options:       opts,
	}
}

// transformRow keys an exported row by column key
func transformRow(r storage.Row) map[string]any {
	out := make(map[string]any, len(storage.Columns)+3)
	out["profile"] = r.Profile
	out["profile_id"] = r.ProfileID
	for _, c := range storage.Columns {
		out[c.Key] = num(*c.Field(&r))
	}
	if r.Error != "" {
		out["error"] = r.Error
	}
	return out
}

// rawProfile converts a request into raw samples, mapping null elevations
// to NaN
func (r AnalyzeRequest) rawProfile() profile.RawProfile {
	elev := make([]float64, len(r.Elevation))
	for i, v := range r.Elevation {
		if v == nil {
			elev[i] = math.NaN()
			continue
		}
		elev[i] = *v
	}
	return profile.RawProfile{
		Easting:   r.Easting,
		Northing:  r.Northing,
		Elevation: elev,
		Lat:       r.Lat,
		Lon:       r.Lon,
	}
}

// apply returns base with the set overrides replaced
func (o *ParamsOverride) apply(base morpho.Params) morpho.Params {
	if o == nil {
		return base
	}
	setFloat(&base.MHW, o.MHW)
	setFloat(&base.HeelThreshold, o.HeelThreshold)
	setFloat(&base.CrestPct, o.CrestPct)
	setFloat(&base.RegressionPad, o.RegressionPad)
	setFloat(&base.VerticalError, o.VerticalError)
	if o.ScanAllPeaks != nil {
		base.ScanAllPeaks = *o.ScanAllPeaks
	}
	return base
}

func (o *OptionsOverride) apply(base profile.Options) profile.Options {
	if o == nil {
		return base
	}
	setFloat(&base.GridStep, o.GridStep)
	setFloat(&base.SmoothingFrac, o.SmoothingFrac)
	if o.RobustIterations != nil {
		base.RobustIterations = *o.RobustIterations
	}
	return base
}

func setFloat(dst, v *float64) {
	if v != nil {
		*dst = *v
	}
}
