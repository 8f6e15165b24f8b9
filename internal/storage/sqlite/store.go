// Package sqlite stores batch morphometrics in a local SQLite database and
// serves them back to the REST API.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/chrissnell/automorph/internal/batch"
	"github.com/chrissnell/automorph/internal/morpho"
	"github.com/chrissnell/automorph/internal/profile"
	"github.com/chrissnell/automorph/internal/storage"
	"github.com/chrissnell/automorph/pkg/migrate"
	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrations embed.FS

// timeLayout is fixed width so start times sort as text
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrRunNotFound is returned by GetRun for an unknown run
var ErrRunNotFound = errors.New("run not found")

// RunSummary describes a stored run
type RunSummary struct {
	ID        uuid.UUID       `json:"id"`
	Location  string          `json:"location"`
	Year      int             `json:"year"`
	StartedAt time.Time       `json:"started_at"`
	Params    morpho.Params   `json:"params"`
	Options   profile.Options `json:"options"`
	Profiles  int             `json:"profiles"`
	Failed    int             `json:"failed"`
}

type runParams struct {
	Params  morpho.Params   `json:"params"`
	Options profile.Options `json:"options"`
}

// NewMigrator returns a migrator over the embedded results schema
func NewMigrator(db *sql.DB, logger *zap.SugaredLogger) *migrate.Migrator {
	provider := migrate.NewFSProvider(migrations, "migrations", "", "sqlite")
	return migrate.NewMigrator(db, provider, logger)
}

// Store is a SQLite-backed results sink
type Store struct {
	db     *sql.DB
	logger *zap.SugaredLogger
}

// Open opens (or creates) the database at path and brings its schema up to
// date
func Open(path string, logger *zap.SugaredLogger) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("could not open SQLite database %s: %w", path, err)
	}
	// SQLite allows a single writer
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not enable foreign keys: %w", err)
	}

	if err := NewMigrator(db, logger).MigrateUp(); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not migrate %s: %w", path, err)
	}

	logger.Infof("SQLite results store ready at %s", path)
	return &Store{db: db, logger: logger}, nil
}

func (s *Store) Name() string { return "sqlite" }

// Write stores the run and every result row in a single transaction
func (s *Store) Write(ctx context.Context, run storage.Run, results []batch.Result) error {
	params, err := json.Marshal(runParams{Params: run.Params, Options: run.Options})
	if err != nil {
		return fmt.Errorf("could not encode run parameters: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO runs (id, location, year, started_at, params, profiles, failed) VALUES (?, ?, ?, ?, ?, ?, ?)",
		run.ID.String(), run.Location, run.Year, run.StartedAt.UTC().Format(timeLayout),
		string(params), len(results), batch.Failed(results))
	if err != nil {
		return fmt.Errorf("could not insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, insertRowSQL())
	if err != nil {
		return fmt.Errorf("could not prepare row insert: %w", err)
	}
	defer stmt.Close()

	for _, row := range storage.Rows(results) {
		args := make([]any, 0, len(storage.Columns)+4)
		args = append(args, run.ID.String(), row.Profile, row.ProfileID)
		for _, c := range storage.Columns {
			args = append(args, nullable(*c.Field(&row)))
		}
		args = append(args, row.Error)

		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("could not insert profile %s: %w", row.ProfileID, err)
		}
	}

	return tx.Commit()
}

// ListRuns returns every stored run, newest first
func (s *Store) ListRuns(ctx context.Context) ([]RunSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, location, year, started_at, params, profiles, failed FROM runs ORDER BY started_at DESC")
	if err != nil {
		return nil, fmt.Errorf("could not list runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetRun returns a stored run and its rows ordered by profile number
func (s *Store) GetRun(ctx context.Context, id uuid.UUID) (RunSummary, []storage.Row, error) {
	run, err := scanRun(s.db.QueryRowContext(ctx,
		"SELECT id, location, year, started_at, params, profiles, failed FROM runs WHERE id = ?", id.String()))
	if errors.Is(err, sql.ErrNoRows) {
		return RunSummary{}, nil, ErrRunNotFound
	}
	if err != nil {
		return RunSummary{}, nil, err
	}

	rows, err := s.db.QueryContext(ctx, selectRowsSQL(), id.String())
	if err != nil {
		return run, nil, fmt.Errorf("could not read rows of run %s: %w", id, err)
	}
	defer rows.Close()

	var out []storage.Row
	for rows.Next() {
		var row storage.Row
		values := make([]sql.NullFloat64, len(storage.Columns))

		dest := make([]any, 0, len(values)+3)
		dest = append(dest, &row.Profile, &row.ProfileID)
		for i := range values {
			dest = append(dest, &values[i])
		}
		dest = append(dest, &row.Error)

		if err := rows.Scan(dest...); err != nil {
			return run, nil, fmt.Errorf("could not scan row: %w", err)
		}
		for i, c := range storage.Columns {
			*c.Field(&row) = fromNullable(values[i])
		}
		out = append(out, row)
	}

	return run, out, rows.Err()
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (RunSummary, error) {
	var (
		run       RunSummary
		id        string
		startedAt string
		params    string
	)
	if err := sc.Scan(&id, &run.Location, &run.Year, &startedAt, &params, &run.Profiles, &run.Failed); err != nil {
		return run, err
	}

	var err error
	if run.ID, err = uuid.Parse(id); err != nil {
		return run, fmt.Errorf("bad run id %q: %w", id, err)
	}
	if run.StartedAt, err = time.Parse(timeLayout, startedAt); err != nil {
		return run, fmt.Errorf("bad start time for run %s: %w", id, err)
	}

	var p runParams
	if err := json.Unmarshal([]byte(params), &p); err != nil {
		return run, fmt.Errorf("bad parameters for run %s: %w", id, err)
	}
	run.Params, run.Options = p.Params, p.Options

	return run, nil
}

func columnKeys() []string {
	keys := make([]string, len(storage.Columns))
	for i, c := range storage.Columns {
		keys[i] = c.Key
	}
	return keys
}

func insertRowSQL() string {
	keys := columnKeys()
	placeholders := strings.Repeat("?, ", len(keys)+3) + "?"
	return fmt.Sprintf("INSERT INTO morphometrics (run_id, profile, profile_id, %s, error) VALUES (%s)",
		strings.Join(keys, ", "), placeholders)
}

func selectRowsSQL() string {
	return fmt.Sprintf("SELECT profile, profile_id, %s, error FROM morphometrics WHERE run_id = ? ORDER BY profile",
		strings.Join(columnKeys(), ", "))
}

// nullable maps NaN to NULL, which SQLite cannot store as a REAL
func nullable(v float64) sql.NullFloat64 {
	if math.IsNaN(v) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}

func fromNullable(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}
