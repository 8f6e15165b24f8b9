package postgres

import (
	"errors"
	"testing"

	"github.com/chrissnell/automorph/internal/batch"
	"github.com/chrissnell/automorph/internal/morpho"
	"github.com/chrissnell/automorph/internal/profile"
	"github.com/chrissnell/automorph/internal/storage"
)

var _ storage.Sink = (*Sink)(nil)

func TestModels(t *testing.T) {
	rec := morpho.NewRecord(4)
	rec.SetCrest(morpho.Marker{Index: 3, X: 10, Y: 6})

	run := storage.NewRun("Bogue", 2016, morpho.DefaultParams(0.34), profile.DefaultOptions())
	results := []batch.Result{
		{ProfileID: "Bogue 2016 4", Number: 4, Record: rec},
		{ProfileID: "Bogue 2016 5", Number: 5, Err: errors.New("bad file")},
	}

	runModel, rows := Models(run, results)

	if runModel.ID != run.ID.String() || runModel.MHW != 0.34 {
		t.Errorf("unexpected run model %+v", runModel)
	}
	if runModel.Profiles != 2 || runModel.Failed != 1 {
		t.Errorf("expected 2 profiles with 1 failure, got %d/%d", runModel.Profiles, runModel.Failed)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	for _, r := range rows {
		if r.RunID != runModel.ID {
			t.Errorf("row %s not linked to run %s", r.ProfileID, runModel.ID)
		}
	}
	if rows[0].YCrest != 6 || rows[0].XMHW != storage.Sentinel {
		t.Errorf("unexpected first row %+v", rows[0].Row)
	}
	if rows[1].Error != "bad file" {
		t.Errorf("expected error text on failed row, got %q", rows[1].Error)
	}
}

func TestNewRequiresConnectionString(t *testing.T) {
	if _, err := New("", nil); err == nil {
		t.Error("expected an error without a connection string")
	}
}
