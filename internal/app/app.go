package app

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"sort"
	"sync"
	"syscall"
	"time"

	"github.com/chrissnell/automorph/internal/batch"
	"github.com/chrissnell/automorph/internal/managers"
	"github.com/chrissnell/automorph/internal/storage"
	"github.com/chrissnell/automorph/pkg/config"
	"github.com/chrissnell/automorph/pkg/profileio"
	"go.uber.org/zap"
)

// App represents the main application
type App struct {
	configProvider config.ConfigProvider
	logger         *zap.SugaredLogger

	// ServeOnly skips batch processing and only runs the REST server
	ServeOnly bool
}

// New creates a new application instance
func New(configProvider config.ConfigProvider, logger *zap.SugaredLogger) *App {
	return &App{
		configProvider: configProvider,
		logger:         logger,
	}
}

// Run processes every profile group in the input directory, then serves the
// REST API until SIGINT, SIGTERM, or ctx cancellation when it is enabled.
// Without a REST server Run returns once processing is done.
func (a *App) Run(ctx context.Context) error {
	var wg sync.WaitGroup

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := a.configProvider.LoadConfig()
	if err != nil {
		return fmt.Errorf("error loading configuration: %w", err)
	}

	// Initialize the storage manager
	storageManager, err := managers.NewStorageManager(cfg, a.logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := storageManager.Close(); err != nil {
			a.logger.Errorf("error closing sinks: %v", err)
		}
	}()

	var processErr error
	if !a.ServeOnly {
		processErr = a.Process(ctx, cfg, storageManager.Manager)
		if ctx.Err() != nil {
			a.logger.Info("shutdown signal received during processing")
			return processErr
		}
	}

	// Initialize the controller manager
	cm, err := managers.NewControllerManager(ctx, &wg, cfg, storageManager, a.logger)
	if err != nil {
		return err
	}
	if cm.Len() == 0 {
		return processErr
	}
	if err := cm.StartControllers(); err != nil {
		return err
	}

	a.logger.Info("application started successfully")

	<-ctx.Done()
	a.logger.Info("shutdown signal received, initiating graceful shutdown...")

	// Wait for all controllers to terminate
	wg.Wait()
	a.logger.Info("shutdown complete")
	return processErr
}

// Process analyzes every location and year group found in the input
// directory and writes each group as one run. A group whose sinks fail is
// reported in the returned error and the remaining groups still run.
func (a *App) Process(ctx context.Context, cfg *config.ConfigData, sinks *storage.Manager) error {
	groups, skipped, err := profileio.Discover(cfg.Input.Dir, cfg.Input.Ext)
	if err != nil {
		return err
	}
	for _, name := range skipped {
		a.logger.Warnf("skipping %s: not a profile file name", name)
	}
	if len(groups) == 0 {
		a.logger.Warnf("no profile files found in %s", cfg.Input.Dir)
		return nil
	}

	params := cfg.Analysis.Params()
	opts := cfg.Analysis.Options()
	runner := batch.NewRunner(batch.Config{
		Workers:    cfg.Batch.Workers,
		BufferSize: cfg.Batch.BufferSize,
		Options:    opts,
		Params:     params,
	}, a.logger.Named("batch"))

	var errs []error
	for _, group := range groups {
		if ctx.Err() != nil {
			return errors.Join(append(errs, ctx.Err())...)
		}

		run := storage.NewRun(group.Location, group.Year, params, opts)
		start := time.Now()

		jobs, failed := a.loadJobs(group)
		results := append(runner.Run(ctx, jobs), failed...)
		sort.SliceStable(results, func(i, j int) bool { return results[i].Number < results[j].Number })

		a.logger.Infow("processed profiles",
			"run", run.Name(),
			"profiles", len(results),
			"failed", batch.Failed(results),
			"duration", time.Since(start),
		)

		if err := sinks.Write(ctx, run, results); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", run.Name(), err))
		}
	}

	return errors.Join(errs...)
}

// loadJobs reads every file of the group. Unreadable files become failed
// results.
func (a *App) loadJobs(group profileio.Group) ([]batch.Job, []batch.Result) {
	var jobs []batch.Job
	var failed []batch.Result

	for _, f := range group.Files {
		raw, err := profileio.ReadFile(f.Path)
		if err != nil {
			a.logger.Warnf("could not read %s: %v", f.ID(), err)
			failed = append(failed, batch.Result{ProfileID: f.ID(), Number: f.Number, Err: fmt.Errorf("read: %w", err)})
			continue
		}
		jobs = append(jobs, batch.Job{ID: f.ID(), Number: f.Number, Raw: raw})
	}

	return jobs, failed
}
