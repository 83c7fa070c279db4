package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/vinline/internal/inliner"
)

// DefaultParallel is the number of jobs run at once when unset.
const DefaultParallel = 4

// Runner executes jobs with bounded parallelism.
type Runner struct {
	in       *inliner.Inliner
	parallel int
	logger   *slog.Logger
}

// RunnerConfig holds runner configuration.
type RunnerConfig struct {
	// Inliner runs each job (optional, uses the default grammar if nil)
	Inliner *inliner.Inliner
	// Parallel bounds concurrent jobs (optional, defaults to DefaultParallel)
	Parallel int
	// Logger is the structured logger (optional, uses discard if nil)
	Logger *slog.Logger
}

// NewRunner creates a job runner.
func NewRunner(cfg RunnerConfig) *Runner {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	in := cfg.Inliner
	if in == nil {
		in = inliner.New(inliner.Config{Logger: logger})
	}
	parallel := cfg.Parallel
	if parallel <= 0 {
		parallel = DefaultParallel
	}
	return &Runner{in: in, parallel: parallel, logger: logger}
}

// Result is the outcome of one job.
type Result struct {
	Job      Job
	Bytes    int
	Duration time.Duration
	Err      error
}

// OK reports whether the job succeeded.
func (r Result) OK() bool {
	return r.Err == nil
}

// Report is the outcome of one run. Results are in job order.
type Report struct {
	RunID    string
	Results  []Result
	Duration time.Duration
}

// Failed returns the results of failed jobs.
func (r *Report) Failed() []Result {
	var out []Result
	for _, res := range r.Results {
		if !res.OK() {
			out = append(out, res)
		}
	}
	return out
}

// Err joins the errors of all failed jobs, or returns nil.
func (r *Report) Err() error {
	var errs []error
	for _, res := range r.Failed() {
		errs = append(errs, fmt.Errorf("%s (%s): %w", res.Job.Module, res.Job.InputPath, res.Err))
	}
	return errors.Join(errs...)
}

// Run executes jobs. A failed job is recorded in the report; the remaining
// jobs still run.
func (r *Runner) Run(ctx context.Context, jobs []Job) *Report {
	report := &Report{
		RunID:   uuid.New().String(),
		Results: make([]Result, len(jobs)),
	}
	logger := r.logger.With("run_id", report.RunID)
	logger.Info("starting jobs", "jobs", len(jobs), "parallel", r.parallel)
	start := time.Now()

	var g errgroup.Group
	g.SetLimit(r.parallel)
	for i, job := range jobs {
		g.Go(func() error {
			jobStart := time.Now()
			n, err := r.runJob(ctx, job)
			res := Result{Job: job, Bytes: n, Duration: time.Since(jobStart), Err: err}
			report.Results[i] = res

			if err != nil {
				logger.Error("job failed", "module", job.Module, "input", job.InputPath, "error", err)
			} else {
				logger.Info("job finished", "module", job.Module, "output", job.OutputPath, "duration", res.Duration)
			}
			return nil
		})
	}
	_ = g.Wait()

	report.Duration = time.Since(start)
	logger.Info("jobs complete", "jobs", len(jobs), "failed", len(report.Failed()), "duration", report.Duration)
	return report
}

func (r *Runner) runJob(ctx context.Context, job Job) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	d, err := r.in.Load(job.InputPath)
	if err != nil {
		return 0, err
	}
	if err := r.in.InlineFor(ctx, d, job.Module); err != nil {
		return 0, err
	}
	m, _ := d.Inlined.Get(job.Module)
	text := inliner.RenderModule(m, job.Prefix)

	if err := os.MkdirAll(filepath.Dir(job.OutputPath), 0o755); err != nil {
		return 0, fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(job.OutputPath, []byte(text), 0o644); err != nil { //nolint:gosec // generated source is world readable
		return 0, fmt.Errorf("failed to write output file: %w", err)
	}
	return len(text), nil
}
