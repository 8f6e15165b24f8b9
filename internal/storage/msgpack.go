package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/chrissnell/automorph/internal/batch"
	"github.com/vmihailenco/msgpack/v5"
)

// Export is the msgpack document written for one run
type Export struct {
	Run  Run   `msgpack:"run"`
	Rows []Row `msgpack:"rows"`
}

// EncodeMsgpack writes the run and its rows to w
func EncodeMsgpack(w io.Writer, run Run, rows []Row) error {
	return msgpack.NewEncoder(w).Encode(Export{Run: run, Rows: rows})
}

// DecodeMsgpack reads a document written by EncodeMsgpack
func DecodeMsgpack(r io.Reader) (Export, error) {
	var e Export
	err := msgpack.NewDecoder(r).Decode(&e)
	return e, err
}

// MsgpackSink writes each run to "<Location> <Year>.msgpack"
type MsgpackSink struct {
	dir string
}

// NewMsgpackSink creates a sink writing under dir, creating it if needed
func NewMsgpackSink(dir string) (*MsgpackSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("could not create msgpack output directory: %w", err)
	}
	return &MsgpackSink{dir: dir}, nil
}

// Path returns the file the given run is written to
func (s *MsgpackSink) Path(run Run) string {
	return filepath.Join(s.dir, run.Name()+".msgpack")
}

func (s *MsgpackSink) Name() string { return "msgpack" }

func (s *MsgpackSink) Write(ctx context.Context, run Run, results []batch.Result) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f, err := os.Create(s.Path(run))
	if err != nil {
		return err
	}
	if err := EncodeMsgpack(f, run, Rows(results)); err != nil {
		f.Close()
		return fmt.Errorf("error writing %s: %w", s.Path(run), err)
	}
	return f.Close()
}

func (s *MsgpackSink) Close() error { return nil }
