package storage

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/chrissnell/automorph/internal/batch"
)

// CSVHeader returns the export column titles
func CSVHeader() []string {
	header := make([]string, 0, len(Columns)+3)
	header = append(header, "Profile", "Profile ID")
	for _, c := range Columns {
		header = append(header, c.Header)
	}
	return append(header, "Error")
}

// CSVRow returns r formatted to match CSVHeader. NaN is written as an
// empty field.
func (r Row) CSVRow() []string {
	rec := make([]string, 0, len(Columns)+3)
	rec = append(rec, strconv.Itoa(r.Profile), r.ProfileID)
	for _, c := range Columns {
		v := *c.Field(&r)
		if math.IsNaN(v) {
			rec = append(rec, "")
			continue
		}
		rec = append(rec, strconv.FormatFloat(v, 'g', -1, 64))
	}
	return append(rec, r.Error)
}

// WriteCSV writes a header and one line per row to w
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader()); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write(r.CSVRow()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// CSVSink writes each run to "Morphometrics for <Location> <Year>.csv"
type CSVSink struct {
	dir string
}

// NewCSVSink creates a sink writing under dir, creating it if needed
func NewCSVSink(dir string) (*CSVSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("could not create CSV output directory: %w", err)
	}
	return &CSVSink{dir: dir}, nil
}

// Path returns the file the given run is written to
func (s *CSVSink) Path(run Run) string {
	return filepath.Join(s.dir, fmt.Sprintf("Morphometrics for %s.csv", run.Name()))
}

func (s *CSVSink) Name() string { return "csv" }

func (s *CSVSink) Write(ctx context.Context, run Run, results []batch.Result) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f, err := os.Create(s.Path(run))
	if err != nil {
		return err
	}

	if err := WriteCSV(f, Rows(results)); err != nil {
		f.Close()
		return fmt.Errorf("error writing %s: %w", s.Path(run), err)
	}
	return f.Close()
}

func (s *CSVSink) Close() error { return nil }
