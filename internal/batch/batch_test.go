package batch

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/chrissnell/automorph/internal/morpho"
	"github.com/chrissnell/automorph/internal/profile"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// duneRaw is a due-north transect, anchor first, whose seaward end is a
// beach and whose landward end carries a dune
func duneRaw(height float64) profile.RawProfile {
	n := 61
	raw := profile.RawProfile{
		Easting:   make([]float64, n),
		Northing:  make([]float64, n),
		Elevation: make([]float64, n),
		Lat:       make([]float64, n),
		Lon:       make([]float64, n),
	}
	for i := 0; i < n; i++ {
		// i counts seaward from the anchor
		seaward := n - 1 - i
		raw.Northing[i] = float64(i)
		raw.Lat[i] = 35.9 + float64(i)*1e-5
		raw.Lon[i] = -75.6
		switch {
		case seaward <= 20:
			raw.Elevation[i] = float64(seaward) / 10
		case seaward <= 40:
			raw.Elevation[i] = 2 + (height-2)*float64(seaward-20)/20
		default:
			raw.Elevation[i] = height - 0.7
		}
	}
	return raw
}

func newTestRunner(workers int) *Runner {
	return NewRunner(Config{
		Workers:    workers,
		BufferSize: 4,
		Options:    profile.DefaultOptions(),
		Params:     morpho.DefaultParams(1),
	}, zap.NewNop().Sugar())
}

func TestRunPreservesOrder(t *testing.T) {
	var jobs []Job
	for i := 0; i < 25; i++ {
		jobs = append(jobs, Job{
			ID:     fmt.Sprintf("Test 2020 %d", i),
			Number: i,
			Raw:    duneRaw(6 + float64(i)*0.1),
		})
	}

	results := newTestRunner(4).Run(context.Background(), jobs)

	if len(results) != len(jobs) {
		t.Fatalf("expected %d results, got %d", len(jobs), len(results))
	}
	for i, res := range results {
		if res.Err != nil {
			t.Errorf("job %d: unexpected error: %v", i, res.Err)
			continue
		}
		if res.ProfileID != jobs[i].ID || res.Record.Profile != i {
			t.Errorf("result %d belongs to %s (profile %d)", i, res.ProfileID, res.Record.Profile)
		}
		expected := 6 + float64(i)*0.1
		if res.Record.Crest.Y < expected-0.01 || res.Record.Crest.Y > expected+0.01 {
			t.Errorf("job %d: expected crest %.2f ± 0.01, got %.2f", i, expected, res.Record.Crest.Y)
		}
	}
}

func TestRunIsolatesFailures(t *testing.T) {
	bad := duneRaw(6)
	bad.Lat = bad.Lat[:10]

	outlier := duneRaw(6)
	outlier.Northing[len(outlier.Northing)-1] = 1e13

	jobs := []Job{
		{ID: "good-1", Number: 1, Raw: duneRaw(6)},
		{ID: "bad", Number: 2, Raw: bad},
		{ID: "good-2", Number: 3, Raw: duneRaw(7)},
		{ID: "outlier", Number: 4, Raw: outlier},
	}

	results := newTestRunner(2).Run(context.Background(), jobs)

	failures := []struct {
		index   int
		wantErr error
	}{
		{1, profile.ErrLengthMismatch},
		{3, profile.ErrGridTooLarge},
	}
	for _, f := range failures {
		if !errors.Is(results[f.index].Err, f.wantErr) {
			t.Errorf("job %d: expected %v, got %v", f.index, f.wantErr, results[f.index].Err)
		}
		if results[f.index].Record != nil {
			t.Errorf("job %d: expected no record", f.index)
		}
	}
	for _, i := range []int{0, 2} {
		if results[i].Err != nil || results[i].Record == nil {
			t.Errorf("job %d: expected a record, got error %v", i, results[i].Err)
		}
	}
	if n := Failed(results); n != 2 {
		t.Errorf("expected 2 failures, got %d", n)
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	jobs := make([]Job, 10)
	for i := range jobs {
		jobs[i] = Job{ID: fmt.Sprint(i), Number: i, Raw: duneRaw(6)}
	}

	results := newTestRunner(3).Run(ctx, jobs)
	for i, res := range results {
		if !errors.Is(res.Err, context.Canceled) {
			t.Errorf("job %d: expected context.Canceled, got %v", i, res.Err)
		}
		if res.ProfileID != jobs[i].ID {
			t.Errorf("job %d: expected ID %s, got %s", i, jobs[i].ID, res.ProfileID)
		}
	}
}

func TestRunEmpty(t *testing.T) {
	if results := newTestRunner(2).Run(context.Background(), nil); len(results) != 0 {
		t.Errorf("expected no results, got %d", len(results))
	}
}
