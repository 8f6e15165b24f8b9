package morpho

// Derived holds the dune and beach shape ratios computed from a record's
// markers
type Derived struct {
	DuneHeight    Measure `json:"dune_height" msgpack:"dune_height"`
	DuneWidth     Measure `json:"dune_width" msgpack:"dune_width"`
	AspectRatio   Measure `json:"aspect_ratio" msgpack:"aspect_ratio"`
	DuneFaceSlope Measure `json:"dune_face_slope" msgpack:"dune_face_slope"`
	BeachWidth    Measure `json:"beach_width" msgpack:"beach_width"`
	BeachSlope    Measure `json:"beach_slope" msgpack:"beach_slope"`
}

// Derive computes the shape ratios of rec. A ratio is invalid when any of
// the markers it depends on is missing or its denominator is zero.
func Derive(rec *Record) Derived {
	var d Derived

	if rec.Crest != nil && rec.Toe != nil {
		d.DuneHeight = Valid(rec.Crest.Y - rec.Toe.Y)
		d.DuneFaceSlope = ratio(d.DuneHeight.Value, rec.Toe.X-rec.Crest.X)
	}

	if rec.Toe != nil && rec.Heel != nil {
		d.DuneWidth = Valid(rec.Toe.X - rec.Heel.X)
	}

	if d.DuneHeight.Valid && d.DuneWidth.Valid {
		d.AspectRatio = ratio(d.DuneHeight.Value, d.DuneWidth.Value)
	}

	if rec.Shoreline != nil && rec.Toe != nil {
		d.BeachWidth = Valid(rec.Shoreline.X - rec.Toe.X)
		d.BeachSlope = ratio(rec.Toe.Y-rec.Shoreline.Y, d.BeachWidth.Value)
	}

	return d
}

func ratio(num, den float64) Measure {
	if den == 0 {
		return Measure{}
	}
	return Valid(num / den)
}
