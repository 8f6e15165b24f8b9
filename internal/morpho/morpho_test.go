package morpho

import (
	"errors"
	"math"
	"testing"

	"github.com/chrissnell/automorph/internal/profile"
)

// canonical builds a profile from elevations listed seaward first, one
// meter apart, with the landward end at X = 0
func canonical(y []float64) *profile.Profile {
	n := len(y)
	p := &profile.Profile{
		X:   make([]float64, n),
		Y:   append([]float64(nil), y...),
		Lat: make([]float64, n),
		Lon: make([]float64, n),
	}
	for i := 0; i < n; i++ {
		p.X[i] = float64(n - 1 - i)
		p.Lat[i] = 35.90 + float64(i)*2e-5
		p.Lon[i] = -75.60 - float64(i)*1e-5
	}
	return p
}

// ramp is the monotonic profile X = 100 - i, y = i/10
func ramp() *profile.Profile {
	y := make([]float64, 101)
	for i := range y {
		y[i] = float64(i) / 10
	}
	return canonical(y)
}

// singleDune is a gentle beach up to index 20, a dune face peaking at 8 m
// on index 40, a 0.7 m backshore drop by index 45, and a flat backshore
func singleDune() *profile.Profile {
	y := make([]float64, 61)
	for i := range y {
		switch {
		case i <= 20:
			y[i] = float64(i) / 10
		case i <= 40:
			y[i] = 2 + 0.3*float64(i-20)
		case i <= 45:
			y[i] = 8 - 0.14*float64(i-40)
		default:
			y[i] = y[45]
		}
	}
	return canonical(y)
}

func TestLocalMaxima(t *testing.T) {
	tests := []struct {
		name     string
		y        []float64
		expected []int
	}{
		{"single peak", []float64{0, 2, 1}, []int{1}},
		{"two peaks", []float64{0, 2, 1, 3, 0}, []int{1, 3}},
		{"plateau reports its middle", []float64{0, 1, 1, 1, 0}, []int{2}},
		{"even plateau rounds down", []float64{0, 1, 1, 0}, []int{1}},
		{"plateau at the end is not a peak", []float64{0, 1, 1}, nil},
		{"monotonic", []float64{1, 2, 3}, nil},
		{"edges are not peaks", []float64{3, 2, 1, 2, 3}, nil},
		{"plateau followed by a rise", []float64{0, 2, 2, 3, 1}, []int{3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := localMaxima(tt.y)
			if len(got) != len(tt.expected) {
				t.Fatalf("expected %v, got %v", tt.expected, got)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("expected %v, got %v", tt.expected, got)
				}
			}
		})
	}
}

func TestFindShorelineRamp(t *testing.T) {
	p := ramp()
	s := FindShoreline(p, DefaultParams(5))
	if s == nil {
		t.Fatal("expected a shoreline, got nil")
	}

	// X > 50 excludes index 50 itself
	if s.Index != 49 {
		t.Errorf("expected observed contour at index 49, got %d", s.Index)
	}
	if s.X != 51 || s.Y != 4.9 {
		t.Errorf("expected observed contour at (51, 4.9), got (%.2f, %.2f)", s.X, s.Y)
	}
	if s.Lat != p.Lat[49] || s.Lon != p.Lon[49] {
		t.Errorf("expected coordinates of index 49, got %v, %v", s.Lat, s.Lon)
	}

	checks := []struct {
		name     string
		got      float64
		expected float64
	}{
		{"predicted X", s.PredictedX, 50},
		{"foreshore slope", s.ForeshoreSlope, 0.1},
		{"lidar error", s.LidarError, -0.015},
		{"extrapolation error", s.ExtrapolationError, 1},
	}
	for _, c := range checks {
		if math.Abs(c.got-c.expected) > 1e-9 {
			t.Errorf("%s: expected %.4f ± %.0e, got %.4f", c.name, c.expected, 1e-9, c.got)
		}
	}
	if s.Samples != 5 {
		t.Errorf("expected 5 regression samples, got %d", s.Samples)
	}
}

func TestFindShorelineUncertainty(t *testing.T) {
	// A noisy foreshore so the confidence interval is well defined
	y := []float64{0.2, 0.45, 0.5, 0.8, 0.95, 1.3, 1.35, 1.6, 2, 2.5, 3, 3.5}
	p := canonical(y)

	s := FindShoreline(p, DefaultParams(1))
	if s == nil {
		t.Fatal("expected a shoreline, got nil")
	}

	if s.Index != 4 {
		t.Errorf("expected observed contour at index 4, got %d", s.Index)
	}
	if math.IsNaN(s.ConfidenceInterval) || s.ConfidenceInterval <= 0 {
		t.Errorf("expected a positive confidence interval, got %v", s.ConfidenceInterval)
	}

	quadrature := math.Sqrt(s.ConfidenceInterval*s.ConfidenceInterval +
		s.LidarError*s.LidarError + s.ExtrapolationError*s.ExtrapolationError)
	if math.Abs(s.Error-quadrature) > 1e-12 {
		t.Errorf("expected error %.6f, got %.6f", quadrature, s.Error)
	}
	if s.ForeshoreSlope <= 0 {
		t.Errorf("expected a positive foreshore slope, got %.4f", s.ForeshoreSlope)
	}
}

func TestFindShorelineNoMatch(t *testing.T) {
	if s := FindShoreline(ramp(), DefaultParams(50)); s != nil {
		t.Errorf("expected no shoreline, got index %d", s.Index)
	}
}

func TestFindShorelineSingleSample(t *testing.T) {
	// Only index 1 falls in the band on the seaward half
	p := canonical([]float64{0, 1, 3, 5, 7, 9})
	s := FindShoreline(p, Params{MHW: 1, RegressionPad: 0.5, VerticalError: 0.15})
	if s == nil {
		t.Fatal("expected a shoreline, got nil")
	}
	if s.Index != 1 {
		t.Errorf("expected index 1, got %d", s.Index)
	}
	if !math.IsNaN(s.ConfidenceInterval) {
		t.Errorf("expected NaN confidence interval, got %v", s.ConfidenceInterval)
	}
}

func TestStudentsT(t *testing.T) {
	tests := []struct {
		nu       float64
		expected float64
	}{
		{1, 12.7062},
		{3, 3.1824},
		{10, 2.2281},
		{30, 2.0423},
	}
	for _, tt := range tests {
		got := studentsT(0.05, tt.nu)
		if math.Abs(got-tt.expected) > 1e-3 {
			t.Errorf("nu=%.0f: expected %.4f ± 0.001, got %.4f", tt.nu, tt.expected, got)
		}
	}

	if !math.IsNaN(studentsT(0.05, 0)) {
		t.Error("expected NaN without degrees of freedom")
	}
}

func TestFindCrest(t *testing.T) {
	// A small seaward bump at 4 that never drops 0.6 m, then a dune at 10
	bump := []float64{0, 1, 2, 3, 3.2, 3.0, 3.1, 3.5, 4, 5, 6, 5, 4, 3.5, 3.5, 3.5}
	// Two dunes, the seaward one slightly lower
	twin := []float64{0, 2, 5, 7.8, 7.5, 7.6, 8, 7, 6, 5, 5}

	tests := []struct {
		name     string
		y        []float64
		params   Params
		expected int
	}{
		{
			name:     "first candidate only",
			y:        bump,
			params:   Params{MHW: 0.5, HeelThreshold: 0.6, CrestPct: 0.1},
			expected: 4,
		},
		{
			name:     "scan all peaks finds the dune",
			y:        bump,
			params:   Params{MHW: 0.5, HeelThreshold: 0.6, CrestPct: 0.1, ScanAllPeaks: true},
			expected: 10,
		},
		{
			name:     "seaward peak within crest pct wins",
			y:        twin,
			params:   Params{MHW: 1, HeelThreshold: 0.6, CrestPct: 0.1, ScanAllPeaks: true},
			expected: 3,
		},
		{
			name:     "seaward peak outside crest pct loses",
			y:        twin,
			params:   Params{MHW: 1, HeelThreshold: 0.6, CrestPct: 0.01, ScanAllPeaks: true},
			expected: 6,
		},
		{
			name:     "peaks below MHW fall back to the maximum",
			y:        bump,
			params:   Params{MHW: 7, HeelThreshold: 0.6, CrestPct: 0.1},
			expected: 10,
		},
		{
			name:     "no peaks",
			y:        []float64{0, 1, 2, 3, 4},
			params:   DefaultParams(0.5),
			expected: 4,
		},
		{
			name:     "single dune",
			y:        singleDune().Y,
			params:   DefaultParams(1),
			expected: 40,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			crest := FindCrest(canonical(tt.y), tt.params)
			if crest.Index != tt.expected {
				t.Errorf("expected crest at %d, got %d", tt.expected, crest.Index)
			}
		})
	}
}

func TestFindHeel(t *testing.T) {
	tests := []struct {
		name          string
		y             []float64
		crest         int
		expectedHeel  int
		expectedCrest int
	}{
		{
			name:          "backshore drop",
			y:             singleDune().Y,
			crest:         40,
			expectedHeel:  45,
			expectedCrest: 40,
		},
		{
			name:          "crest at the landward end",
			y:             []float64{0, 1, 2, 3},
			crest:         3,
			expectedHeel:  3,
			expectedCrest: 3,
		},
		{
			name:          "stops where the profile rises",
			y:             []float64{0, 5, 4.8, 4.9, 6},
			crest:         1,
			expectedHeel:  3,
			expectedCrest: 1,
		},
		{
			name:          "crest moves to the highest point passed",
			y:             []float64{5, 5.1, 5.2, 5.3, 4, 4},
			crest:         0,
			expectedHeel:  4,
			expectedCrest: 3,
		},
		{
			name:          "immediate stop keeps the crest",
			y:             []float64{0, 5, 6, 2},
			crest:         1,
			expectedHeel:  1,
			expectedCrest: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := canonical(tt.y)
			heel, crest := FindHeel(p, markerAt(p, tt.crest), DefaultParams(0))
			if heel.Index != tt.expectedHeel {
				t.Errorf("expected heel at %d, got %d", tt.expectedHeel, heel.Index)
			}
			if crest.Index != tt.expectedCrest {
				t.Errorf("expected crest at %d, got %d", tt.expectedCrest, crest.Index)
			}
		})
	}
}

func TestFindToe(t *testing.T) {
	p := singleDune()
	shoreline := &Shoreline{Marker: markerAt(p, 10)}

	toe := FindToe(p, shoreline, markerAt(p, 40))
	if toe.Index != 20 {
		t.Errorf("expected toe at the break in slope (20), got %d", toe.Index)
	}

	// Without a shoreline the sheet starts at the second sample
	toe = FindToe(p, nil, markerAt(p, 40))
	if toe.Index != 20 {
		t.Errorf("expected toe at 20 without a shoreline, got %d", toe.Index)
	}

	// A shoreline landward of the crest pins the toe to the crest
	toe = FindToe(p, &Shoreline{Marker: markerAt(p, 50)}, markerAt(p, 40))
	if toe.Index != 40 {
		t.Errorf("expected toe at the crest, got %d", toe.Index)
	}
}

func TestVolumes(t *testing.T) {
	y := make([]float64, 11)
	y[5] = 1
	p := canonical(y)
	before := append([]float64(nil), p.Y...)

	dune := DuneVolume(p, markerAt(p, 3), markerAt(p, 7))
	if math.Abs(dune-1) > 1e-12 {
		t.Errorf("expected dune volume 1.00 ± 1e-12, got %.4f", dune)
	}
	if again := DuneVolume(p, markerAt(p, 3), markerAt(p, 7)); again != dune {
		t.Errorf("expected repeat dune volume %.4f, got %.4f", dune, again)
	}

	beach := BeachVolume(p, &Shoreline{Marker: markerAt(p, 2)}, markerAt(p, 7))
	if math.Abs(beach-1) > 1e-12 {
		t.Errorf("expected beach volume 1.00 ± 1e-12, got %.4f", beach)
	}

	whole := ProfileVolume(p, &Shoreline{Marker: markerAt(p, 0)})
	if !whole.Valid || math.Abs(whole.Value-1) > 1e-12 {
		t.Errorf("expected profile volume 1.00, got %+v", whole)
	}

	for i := range before {
		if p.Y[i] != before[i] {
			t.Fatalf("profile modified at %d: %.2f became %.2f", i, before[i], p.Y[i])
		}
	}
}

func TestVolumesFlatProfile(t *testing.T) {
	y := make([]float64, 20)
	for i := range y {
		y[i] = 3.5
	}
	p := canonical(y)
	shoreline := &Shoreline{Marker: markerAt(p, 2)}

	if v := DuneVolume(p, markerAt(p, 5), markerAt(p, 15)); v != 0 {
		t.Errorf("expected zero dune volume, got %v", v)
	}
	if v := BeachVolume(p, shoreline, markerAt(p, 5)); v != 0 {
		t.Errorf("expected zero beach volume, got %v", v)
	}
	if v := ProfileVolume(p, shoreline); !v.Valid || v.Value != 0 {
		t.Errorf("expected zero profile volume, got %+v", v)
	}
	if v := ProfileVolume(p, nil); v.Valid {
		t.Errorf("expected no profile volume without a shoreline, got %+v", v)
	}
}

func TestOrientationRange(t *testing.T) {
	p := singleDune()
	for i := range p.Lat {
		p.Lat[i] = 35.9 + 0.0003*math.Sin(float64(i))
		p.Lon[i] = -75.6 + 0.0004*math.Cos(float64(i)*1.7)
	}

	for s := 0; s < p.Len(); s += 7 {
		for h := 0; h < p.Len(); h += 5 {
			b := Orientation(p, &Shoreline{Marker: markerAt(p, s)}, markerAt(p, h))
			if b < 0 || b >= 360 || math.IsNaN(b) {
				t.Fatalf("shoreline %d heel %d: bearing %v outside [0, 360)", s, h, b)
			}
		}
	}

	heel := markerAt(p, 45)
	seaward := Orientation(p, &Shoreline{Marker: markerAt(p, 0)}, heel)
	if got := Orientation(p, nil, heel); got != seaward {
		t.Errorf("expected bearing to the seaward end %.4f without a shoreline, got %.4f", seaward, got)
	}
}

func TestDerive(t *testing.T) {
	rec := NewRecord(1)
	rec.SetShoreline(&Shoreline{Marker: Marker{Index: 10, X: 50, Y: 1}})
	rec.SetToe(Marker{Index: 20, X: 40, Y: 2})
	rec.SetCrest(Marker{Index: 40, X: 20, Y: 8})
	rec.SetHeel(Marker{Index: 45, X: 15, Y: 7.3})

	d := Derive(rec)
	checks := []struct {
		name     string
		got      Measure
		expected float64
	}{
		{"dune height", d.DuneHeight, 6},
		{"dune width", d.DuneWidth, 25},
		{"aspect ratio", d.AspectRatio, 0.24},
		{"dune face slope", d.DuneFaceSlope, 0.3},
		{"beach width", d.BeachWidth, 10},
		{"beach slope", d.BeachSlope, 0.1},
	}
	for _, c := range checks {
		if !c.got.Valid || math.Abs(c.got.Value-c.expected) > 1e-12 {
			t.Errorf("%s: expected %.2f, got %+v", c.name, c.expected, c.got)
		}
	}

	rec.SetShoreline(nil)
	d = Derive(rec)
	if d.BeachWidth.Valid || d.BeachSlope.Valid {
		t.Errorf("expected no beach ratios without a shoreline, got %+v %+v", d.BeachWidth, d.BeachSlope)
	}
	if !d.DuneHeight.Valid {
		t.Error("expected dune height to survive a missing shoreline")
	}
}

func TestDeriveZeroDenominators(t *testing.T) {
	crest := Marker{Index: 40, X: 20, Y: 8}

	tests := []struct {
		name      string
		shoreline Marker
		toe       Marker
		heel      Marker
		invalid   []string
	}{
		{
			name:      "toe collapsed onto crest",
			shoreline: Marker{Index: 10, X: 50, Y: 1},
			toe:       crest,
			heel:      Marker{Index: 45, X: 15, Y: 7.3},
			invalid:   []string{"dune face slope"},
		},
		{
			name:      "every marker at the crest",
			shoreline: crest,
			toe:       crest,
			heel:      crest,
			invalid:   []string{"dune face slope", "aspect ratio", "beach slope"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := NewRecord(1)
			rec.SetShoreline(&Shoreline{Marker: tt.shoreline})
			rec.SetToe(tt.toe)
			rec.SetCrest(crest)
			rec.SetHeel(tt.heel)

			d := Derive(rec)
			ratios := map[string]Measure{
				"dune height":     d.DuneHeight,
				"dune width":      d.DuneWidth,
				"aspect ratio":    d.AspectRatio,
				"dune face slope": d.DuneFaceSlope,
				"beach width":     d.BeachWidth,
				"beach slope":     d.BeachSlope,
			}
			for _, name := range tt.invalid {
				if ratios[name].Valid {
					t.Errorf("expected %s to be invalid, got %+v", name, ratios[name])
				}
				delete(ratios, name)
			}
			for name, m := range ratios {
				if !m.Valid || math.IsNaN(m.Value) || math.IsInf(m.Value, 0) {
					t.Errorf("expected a finite %s, got %+v", name, m)
				}
			}
		})
	}
}

func TestAnalyzeRamp(t *testing.T) {
	rec, err := Analyze(ramp(), DefaultParams(5))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rec.Shoreline == nil || rec.Shoreline.Index != 49 {
		t.Fatalf("expected shoreline at 49, got %+v", rec.Shoreline)
	}
	if rec.Crest.Index != 100 {
		t.Errorf("expected crest at 100, got %d", rec.Crest.Index)
	}
	if rec.Heel.Index != 100 {
		t.Errorf("expected heel at 100, got %d", rec.Heel.Index)
	}
	if rec.Toe.Index != 99 {
		t.Errorf("expected toe at 99, got %d", rec.Toe.Index)
	}
	if rec.Orientation < 0 || rec.Orientation >= 360 {
		t.Errorf("bearing %v outside [0, 360)", rec.Orientation)
	}
}

func TestAnalyzeSingleDune(t *testing.T) {
	p := singleDune()
	rec, err := AnalyzeNumbered(7, p, DefaultParams(1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rec.Profile != 7 {
		t.Errorf("expected profile 7, got %d", rec.Profile)
	}

	expected := []struct {
		name  string
		got   int
		index int
	}{
		{"shoreline", rec.ShorelineIndex(), 10},
		{"toe", rec.Toe.Index, 20},
		{"crest", rec.Crest.Index, 40},
		{"heel", rec.Heel.Index, 45},
	}
	for _, e := range expected {
		if e.got != e.index {
			t.Errorf("expected %s at %d, got %d", e.name, e.index, e.got)
		}
	}

	if !(rec.ShorelineIndex() <= rec.Toe.Index && rec.Toe.Index <= rec.Crest.Index && rec.Crest.Index <= rec.Heel.Index) {
		t.Errorf("ordering violated: shoreline %d toe %d crest %d heel %d",
			rec.ShorelineIndex(), rec.Toe.Index, rec.Crest.Index, rec.Heel.Index)
	}

	if rec.DuneVolume <= 0 || rec.BeachVolume <= 0 || !rec.ProfileVolume.Valid || rec.ProfileVolume.Value <= 0 {
		t.Errorf("expected positive volumes, got dune %.2f beach %.2f profile %+v",
			rec.DuneVolume, rec.BeachVolume, rec.ProfileVolume)
	}
}

// piecewise builds a canonical profile by linear interpolation between
// (index, elevation) knots, flat past the last knot
func piecewise(n int, knots ...[2]float64) *profile.Profile {
	y := make([]float64, n)
	k := 0
	for i := range y {
		for k+1 < len(knots) && float64(i) > knots[k+1][0] {
			k++
		}
		if k+1 >= len(knots) {
			y[i] = knots[len(knots)-1][1]
			continue
		}
		x0, y0 := knots[k][0], knots[k][1]
		x1, y1 := knots[k+1][0], knots[k+1][1]
		y[i] = y0 + (y1-y0)*(float64(i)-x0)/(x1-x0)
	}
	return canonical(y)
}

func TestAnalyzeMarkerOrdering(t *testing.T) {
	noisy := singleDune()
	for i := range noisy.Y {
		noisy.Y[i] += 0.05 * math.Sin(float64(i)*1.7)
	}

	tests := []struct {
		name string
		p    *profile.Profile
		mhw  float64
	}{
		{"ramp", ramp(), 5},
		{"single dune", singleDune(), 1},
		{"noisy dune", noisy, 1},
		{"two dunes", piecewise(81, [2]float64{0, 0}, [2]float64{20, 2}, [2]float64{30, 5},
			[2]float64{35, 3}, [2]float64{50, 7}, [2]float64{55, 6}), 1},
		{"no shoreline", singleDune(), 100},
		{"crest at the landward end", piecewise(41, [2]float64{0, 0}, [2]float64{20, 1.5}, [2]float64{40, 6}), 1},
		{"plateau crest", piecewise(61, [2]float64{0, 0}, [2]float64{20, 2}, [2]float64{30, 6},
			[2]float64{40, 6}, [2]float64{45, 5}), 1},
		{"shoreline behind the crest", piecewise(61, [2]float64{0, 3}, [2]float64{10, 5},
			[2]float64{30, 1}, [2]float64{60, 1.2}), 1},
		{"two samples", canonical([]float64{0, 2}), 1},
	}

	for _, tt := range tests {
		for _, scan := range []bool{false, true} {
			params := DefaultParams(tt.mhw)
			params.ScanAllPeaks = scan

			rec, err := Analyze(tt.p, params)
			if err != nil {
				t.Fatalf("%s: unexpected error: %v", tt.name, err)
			}

			s, toe, crest, heel := rec.ShorelineIndex(), rec.Toe.Index, rec.Crest.Index, rec.Heel.Index
			if !(crest <= heel) {
				t.Errorf("%s (scan %v): crest %d landward of heel %d", tt.name, scan, crest, heel)
			}
			if s > crest {
				// the stretched sheet collapses onto the crest
				if toe != crest {
					t.Errorf("%s (scan %v): expected toe at crest %d, got %d", tt.name, scan, crest, toe)
				}
				continue
			}
			if !(s <= toe && toe <= crest) {
				t.Errorf("%s (scan %v): ordering violated: shoreline %d toe %d crest %d heel %d",
					tt.name, scan, s, toe, crest, heel)
			}
		}
	}
}

func TestAnalyzeWithoutShoreline(t *testing.T) {
	rec, err := Analyze(singleDune(), DefaultParams(100))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Shoreline != nil {
		t.Errorf("expected no shoreline, got index %d", rec.Shoreline.Index)
	}
	if rec.ProfileVolume.Valid {
		t.Errorf("expected invalid profile volume, got %+v", rec.ProfileVolume)
	}
	if rec.ShorelineIndex() != 0 {
		t.Errorf("expected shoreline index 0, got %d", rec.ShorelineIndex())
	}
	if rec.Crest.Index != 40 || rec.Toe.Index > rec.Crest.Index {
		t.Errorf("unexpected crest %d / toe %d", rec.Crest.Index, rec.Toe.Index)
	}
}

func TestAnalyzeEmpty(t *testing.T) {
	_, err := Analyze(canonical([]float64{1}), DefaultParams(0))
	if !errors.Is(err, ErrEmptyProfile) {
		t.Errorf("expected ErrEmptyProfile, got %v", err)
	}
}
