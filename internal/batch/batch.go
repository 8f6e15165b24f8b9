// Package batch runs the morphometric analysis over many profiles at once.
package batch

import (
	"context"
	"fmt"
	"sync"

	"github.com/chrissnell/automorph/internal/morpho"
	"github.com/chrissnell/automorph/internal/profile"
	"go.uber.org/zap"
)

// Job is one raw profile to analyze
type Job struct {
	ID     string
	Number int
	Raw    profile.RawProfile
}

// Result is the outcome of one Job. Exactly one of Record and Err is set.
type Result struct {
	ProfileID string
	Number    int
	Record    *morpho.Record
	Err       error
}

// Config controls a Runner
type Config struct {
	Workers    int
	BufferSize int
	Options    profile.Options
	Params     morpho.Params
}

// Runner analyzes profiles on a fixed pool of workers
type Runner struct {
	config Config
	logger *zap.SugaredLogger
}

// NewRunner creates a runner, defaulting to one worker and an unbuffered
// queue when the config leaves them unset
func NewRunner(config Config, logger *zap.SugaredLogger) *Runner {
	if config.Workers < 1 {
		config.Workers = 1
	}
	if config.BufferSize < 0 {
		config.BufferSize = 0
	}
	return &Runner{config: config, logger: logger}
}

// Run analyzes every job and returns one result per job in submission
// order. A failing profile yields an error result without stopping the
// others. Once ctx is done workers finish the job in hand, and jobs that
// never started get ctx's error.
func (r *Runner) Run(ctx context.Context, jobs []Job) []Result {
	results := make([]Result, len(jobs))
	started := make([]bool, len(jobs))

	queue := make(chan int, r.config.BufferSize)
	var wg sync.WaitGroup

	for w := 1; w <= r.config.Workers; w++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			r.worker(ctx, id, jobs, queue, results, started)
		}(w)
	}

feed:
	for i := range jobs {
		select {
		case <-ctx.Done():
			break feed
		case queue <- i:
		}
	}
	close(queue)
	wg.Wait()

	for i := range jobs {
		if !started[i] {
			results[i] = Result{
				ProfileID: jobs[i].ID,
				Number:    jobs[i].Number,
				Err:       ctx.Err(),
			}
		}
	}

	return results
}

func (r *Runner) worker(ctx context.Context, id int, jobs []Job, queue <-chan int, results []Result, started []bool) {
	for {
		select {
		case <-ctx.Done():
			return
		case i, ok := <-queue:
			if !ok {
				return
			}
			if ctx.Err() != nil {
				return
			}

			// Each index is handed to exactly one worker, so the slots are
			// written without a lock and read after wg.Wait
			started[i] = true
			results[i] = r.process(jobs[i])

			if results[i].Err != nil {
				r.logger.Warnf("worker %d: profile %s failed: %v", id, jobs[i].ID, results[i].Err)
			} else {
				r.logger.Debugf("worker %d: profile %s analyzed", id, jobs[i].ID)
			}
		}
	}
}

// process normalizes and analyzes a single job
func (r *Runner) process(job Job) Result {
	result := Result{ProfileID: job.ID, Number: job.Number}

	p, err := profile.Normalize(job.Raw, r.config.Options)
	if err != nil {
		result.Err = fmt.Errorf("normalize: %w", err)
		return result
	}

	rec, err := morpho.AnalyzeNumbered(job.Number, p, r.config.Params)
	if err != nil {
		result.Err = fmt.Errorf("analyze: %w", err)
		return result
	}

	result.Record = rec
	return result
}

// Failed counts the error results
func Failed(results []Result) int {
	n := 0
	for _, res := range results {
		if res.Err != nil {
			n++
		}
	}
	return n
}
