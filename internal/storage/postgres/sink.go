// Package postgres writes batch morphometrics to a PostgreSQL database
// through gorm.
package postgres

import (
	"context"
	"fmt"

	"github.com/chrissnell/automorph/internal/batch"
	"github.com/chrissnell/automorph/internal/database"
	"github.com/chrissnell/automorph/internal/storage"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// insertBatchSize bounds the rows sent per INSERT
const insertBatchSize = 200

// Sink stores runs in PostgreSQL
type Sink struct {
	client *database.Client
	logger *zap.SugaredLogger
}

// New connects to the database at connectionString and migrates the schema
func New(connectionString string, logger *zap.SugaredLogger) (*Sink, error) {
	client := database.NewClient(connectionString, logger)
	if err := client.Connect(); err != nil {
		return nil, err
	}
	return &Sink{client: client, logger: logger}, nil
}

func (s *Sink) Name() string { return "postgres" }

// Write inserts the run and its rows in one transaction
func (s *Sink) Write(ctx context.Context, run storage.Run, results []batch.Result) error {
	runModel, rows := Models(run, results)

	return s.client.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&runModel).Error; err != nil {
			return fmt.Errorf("could not insert run: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(rows, insertBatchSize).Error; err != nil {
			return fmt.Errorf("could not insert rows: %w", err)
		}
		return nil
	})
}

func (s *Sink) Close() error {
	return s.client.Close()
}

// Models converts a run and its results into database models
func Models(run storage.Run, results []batch.Result) (database.RunModel, []database.MorphometricModel) {
	runModel := database.RunModel{
		ID:        run.ID.String(),
		Location:  run.Location,
		Year:      run.Year,
		StartedAt: run.StartedAt,
		MHW:       run.Params.MHW,
		Profiles:  len(results),
		Failed:    batch.Failed(results),
	}

	rows := make([]database.MorphometricModel, len(results))
	for i, row := range storage.Rows(results) {
		rows[i] = database.MorphometricModel{RunID: runModel.ID, Row: row}
	}
	return runModel, rows
}
