package storage

import (
	"math"

	"github.com/chrissnell/automorph/internal/batch"
	"github.com/chrissnell/automorph/internal/morpho"
)

// Sentinel marks an unavailable shoreline position in exported tables
const Sentinel = 9999.0

// Row is one profile's morphometrics flattened into export columns.
// Unavailable values hold Sentinel (shoreline positions) or NaN.
type Row struct {
	Profile   int    `json:"profile" msgpack:"profile"`
	ProfileID string `json:"profile_id" msgpack:"profile_id"`

	XMHW           float64 `json:"x_mhw" msgpack:"x_mhw"`
	YMHW           float64 `json:"y_mhw" msgpack:"y_mhw"`
	MHWLat         float64 `json:"mhw_lat" msgpack:"mhw_lat"`
	MHWLon         float64 `json:"mhw_lon" msgpack:"mhw_lon"`
	MHWCI          float64 `json:"mhw_ci" msgpack:"mhw_ci"`
	MHWLidarError  float64 `json:"mhw_lidar_error" msgpack:"mhw_lidar_error"`
	MHWXError      float64 `json:"mhw_x_error" msgpack:"mhw_x_error"`
	MHWError       float64 `json:"mhw_error" msgpack:"mhw_error"`
	XCrest         float64 `json:"x_crest" msgpack:"x_crest"`
	YCrest         float64 `json:"y_crest" msgpack:"y_crest"`
	CrestLat       float64 `json:"crest_lat" msgpack:"crest_lat"`
	CrestLon       float64 `json:"crest_lon" msgpack:"crest_lon"`
	XHeel          float64 `json:"x_heel" msgpack:"x_heel"`
	YHeel          float64 `json:"y_heel" msgpack:"y_heel"`
	HeelLat        float64 `json:"heel_lat" msgpack:"heel_lat"`
	HeelLon        float64 `json:"heel_lon" msgpack:"heel_lon"`
	XToe           float64 `json:"x_toe" msgpack:"x_toe"`
	YToe           float64 `json:"y_toe" msgpack:"y_toe"`
	ToeLat         float64 `json:"toe_lat" msgpack:"toe_lat"`
	ToeLon         float64 `json:"toe_lon" msgpack:"toe_lon"`
	ForeshoreSlope float64 `json:"foreshore_slope" msgpack:"foreshore_slope"`
	DuneVolume     float64 `json:"dune_volume" msgpack:"dune_volume"`
	BeachVolume    float64 `json:"beach_volume" msgpack:"beach_volume"`
	ProfileVolume  float64 `json:"profile_volume" msgpack:"profile_volume"`
	Orientation    float64 `json:"orientation" msgpack:"orientation"`
	DuneHeight     float64 `json:"dune_height" msgpack:"dune_height"`
	DuneWidth      float64 `json:"dune_width" msgpack:"dune_width"`
	AspectRatio    float64 `json:"aspect_ratio" msgpack:"aspect_ratio"`
	DuneFaceSlope  float64 `json:"dune_face_slope" msgpack:"dune_face_slope"`
	BeachWidth     float64 `json:"beach_width" msgpack:"beach_width"`
	BeachSlope     float64 `json:"beach_slope" msgpack:"beach_slope"`

	Error string `json:"error,omitempty" msgpack:"error,omitempty"`
}

// Column describes one numeric export column
type Column struct {
	// Header is the column title in CSV output
	Header string
	// Key is the SQL column name
	Key string
	// Field points at the column's value in a row
	Field func(r *Row) *float64
}

// Columns lists the numeric columns in export order. Profile comes before
// them and Error after.
var Columns = []Column{
	{"XMHW", "x_mhw", func(r *Row) *float64 { return &r.XMHW }},
	{"YMHW", "y_mhw", func(r *Row) *float64 { return &r.YMHW }},
	{"MHW Lat", "mhw_lat", func(r *Row) *float64 { return &r.MHWLat }},
	{"MHW Lon", "mhw_lon", func(r *Row) *float64 { return &r.MHWLon }},
	{"MHW CI", "mhw_ci", func(r *Row) *float64 { return &r.MHWCI }},
	{"MHW Lidar Error", "mhw_lidar_error", func(r *Row) *float64 { return &r.MHWLidarError }},
	{"MHW X Error", "mhw_x_error", func(r *Row) *float64 { return &r.MHWXError }},
	{"MHW Error", "mhw_error", func(r *Row) *float64 { return &r.MHWError }},
	{"XCrest", "x_crest", func(r *Row) *float64 { return &r.XCrest }},
	{"YCrest", "y_crest", func(r *Row) *float64 { return &r.YCrest }},
	{"Crest Lat", "crest_lat", func(r *Row) *float64 { return &r.CrestLat }},
	{"Crest Lon", "crest_lon", func(r *Row) *float64 { return &r.CrestLon }},
	{"XHeel", "x_heel", func(r *Row) *float64 { return &r.XHeel }},
	{"YHeel", "y_heel", func(r *Row) *float64 { return &r.YHeel }},
	{"Heel Lat", "heel_lat", func(r *Row) *float64 { return &r.HeelLat }},
	{"Heel Lon", "heel_lon", func(r *Row) *float64 { return &r.HeelLon }},
	{"XToe", "x_toe", func(r *Row) *float64 { return &r.XToe }},
	{"YToe", "y_toe", func(r *Row) *float64 { return &r.YToe }},
	{"Toe Lat", "toe_lat", func(r *Row) *float64 { return &r.ToeLat }},
	{"Toe Lon", "toe_lon", func(r *Row) *float64 { return &r.ToeLon }},
	{"Foreshore Slope", "foreshore_slope", func(r *Row) *float64 { return &r.ForeshoreSlope }},
	{"Dune Volume", "dune_volume", func(r *Row) *float64 { return &r.DuneVolume }},
	{"Beach Volume", "beach_volume", func(r *Row) *float64 { return &r.BeachVolume }},
	{"Profile Volume", "profile_volume", func(r *Row) *float64 { return &r.ProfileVolume }},
	{"Orientation", "orientation", func(r *Row) *float64 { return &r.Orientation }},
	{"Dune Height", "dune_height", func(r *Row) *float64 { return &r.DuneHeight }},
	{"Dune Width", "dune_width", func(r *Row) *float64 { return &r.DuneWidth }},
	{"Dune Aspect Ratio", "aspect_ratio", func(r *Row) *float64 { return &r.AspectRatio }},
	{"Dune Face Slope", "dune_face_slope", func(r *Row) *float64 { return &r.DuneFaceSlope }},
	{"Beach Width", "beach_width", func(r *Row) *float64 { return &r.BeachWidth }},
	{"Beach Slope", "beach_slope", func(r *Row) *float64 { return &r.BeachSlope }},
}

// NewRow flattens a batch result. A failed result becomes a row of NaN
// carrying the error text.
func NewRow(res batch.Result) Row {
	row := Row{Profile: res.Number, ProfileID: res.ProfileID}
	for _, c := range Columns {
		*c.Field(&row) = math.NaN()
	}

	if res.Err != nil {
		row.Error = res.Err.Error()
		return row
	}
	if res.Record == nil {
		return row
	}

	fillRecord(&row, res.Record)
	return row
}

// RecordRow flattens a single record
func RecordRow(rec *morpho.Record) Row {
	return NewRow(batch.Result{Number: rec.Profile, Record: rec})
}

// Rows flattens every result of a batch
func Rows(results []batch.Result) []Row {
	rows := make([]Row, len(results))
	for i, res := range results {
		rows[i] = NewRow(res)
	}
	return rows
}

func fillRecord(row *Row, rec *morpho.Record) {
	if s := rec.Shoreline; s != nil {
		row.XMHW, row.YMHW = s.X, s.Y
		row.MHWLat, row.MHWLon = s.Lat, s.Lon
		row.MHWCI = s.ConfidenceInterval
		row.MHWLidarError = s.LidarError
		row.MHWXError = s.ExtrapolationError
		row.MHWError = s.Error
		row.ForeshoreSlope = s.ForeshoreSlope
	} else {
		row.XMHW, row.YMHW = Sentinel, Sentinel
		row.MHWLat, row.MHWLon = Sentinel, Sentinel
		row.ForeshoreSlope = Sentinel
	}

	marker := func(m *morpho.Marker, x, y, lat, lon *float64) {
		if m == nil {
			return
		}
		*x, *y, *lat, *lon = m.X, m.Y, m.Lat, m.Lon
	}
	marker(rec.Crest, &row.XCrest, &row.YCrest, &row.CrestLat, &row.CrestLon)
	marker(rec.Heel, &row.XHeel, &row.YHeel, &row.HeelLat, &row.HeelLon)
	marker(rec.Toe, &row.XToe, &row.YToe, &row.ToeLat, &row.ToeLon)

	row.DuneVolume = rec.DuneVolume
	row.BeachVolume = rec.BeachVolume
	row.ProfileVolume = measure(rec.ProfileVolume)
	row.Orientation = rec.Orientation

	d := morpho.Derive(rec)
	row.DuneHeight = measure(d.DuneHeight)
	row.DuneWidth = measure(d.DuneWidth)
	row.AspectRatio = measure(d.AspectRatio)
	row.DuneFaceSlope = measure(d.DuneFaceSlope)
	row.BeachWidth = measure(d.BeachWidth)
	row.BeachSlope = measure(d.BeachSlope)
}

func measure(m morpho.Measure) float64 {
	if !m.Valid {
		return math.NaN()
	}
	return m.Value
}
