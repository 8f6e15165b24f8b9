// Package storage writes batch morphometrics to the configured result sinks.
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chrissnell/automorph/internal/batch"
	"github.com/chrissnell/automorph/internal/morpho"
	"github.com/chrissnell/automorph/internal/profile"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Run describes one batch of profiles from a single location and year
type Run struct {
	ID        uuid.UUID       `json:"id" msgpack:"id"`
	Location  string          `json:"location" msgpack:"location"`
	Year      int             `json:"year" msgpack:"year"`
	StartedAt time.Time       `json:"started_at" msgpack:"started_at"`
	Params    morpho.Params   `json:"params" msgpack:"params"`
	Options   profile.Options `json:"options" msgpack:"options"`
}

// NewRun starts a run with a fresh identifier
func NewRun(location string, year int, params morpho.Params, opts profile.Options) Run {
	return Run{
		ID:        uuid.New(),
		Location:  location,
		Year:      year,
		StartedAt: time.Now().UTC(),
		Params:    params,
		Options:   opts,
	}
}

// Name returns the "<Location> <Year>" label used in output file names
func (r Run) Name() string {
	return fmt.Sprintf("%s %d", r.Location, r.Year)
}

// Sink is a destination for the results of a run
type Sink interface {
	Name() string
	Write(ctx context.Context, run Run, results []batch.Result) error
	Close() error
}

// Manager fans results out to every registered sink
type Manager struct {
	sinks  []Sink
	health *HealthManager
	logger *zap.SugaredLogger
}

// NewManager creates a manager over the given sinks
func NewManager(logger *zap.SugaredLogger, sinks ...Sink) *Manager {
	return &Manager{sinks: sinks, health: NewHealthManager(), logger: logger}
}

// Add registers another sink
func (m *Manager) Add(s Sink) {
	m.sinks = append(m.sinks, s)
}

// Sinks returns the registered sinks
func (m *Manager) Sinks() []Sink {
	return m.sinks
}

// Write hands the run to every sink, even after one fails, and returns the
// joined errors
func (m *Manager) Write(ctx context.Context, run Run, results []batch.Result) error {
	var errs []error
	for _, s := range m.sinks {
		err := s.Write(ctx, run, results)
		m.health.Record(s.Name(), run, err)
		if err != nil {
			m.logger.Errorf("%s sink: failed to write run %s: %v", s.Name(), run.Name(), err)
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
			continue
		}
		m.logger.Debugf("%s sink: wrote %d profiles for %s", s.Name(), len(results), run.Name())
	}
	return errors.Join(errs...)
}

// Health returns the outcome of each sink's most recent write
func (m *Manager) Health() *HealthManager {
	return m.health
}

// Close closes every sink
func (m *Manager) Close() error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
		}
	}
	return errors.Join(errs...)
}
