package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/leapstack-labs/vinline/internal/cli/output"
	"github.com/leapstack-labs/vinline/internal/jobs"
	"github.com/spf13/cobra"
)

// durationPrecision rounds durations shown in reports.
const durationPrecision = time.Millisecond

// NewJobsCommand creates the jobs command.
func NewJobsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs <file>",
		Short: "Run a batch of inlining jobs",
		Long: `Run every job listed in a jobs file.

A jobs file is a JSON (or YAML) list of job descriptors:

  [
    {"input_path": "rtl/adder.v", "module": "TOP", "prefix": "flat_", "output_path": "out/top.v"}
  ]

Each job inlines one module and writes it to its own file, with the module
renamed to prefix + module. Relative paths are resolved against the jobs
file's directory. Jobs run in parallel; a failing job does not stop the
others, but makes the command exit non-zero.`,
		Example: `  # Run jobs with the configured parallelism
  vinline jobs jobs.json

  # Run one job at a time
  vinline jobs jobs.json --parallel 1

  # Machine-readable report
  vinline jobs jobs.json --output json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			return runJobs(cmd.Context(), cc, args[0])
		},
	}

	cmd.Flags().IntP("parallel", "p", 0, "Jobs run at once (default: 4)")

	return cmd
}

func runJobs(ctx context.Context, cc *CommandContext, file string) error {
	list, err := jobs.Load(file)
	if err != nil {
		return err
	}

	runner := jobs.NewRunner(jobs.RunnerConfig{
		Inliner:  cc.Inliner,
		Parallel: cc.Cfg.Parallel,
		Logger:   cc.Logger,
	})
	report := runner.Run(ctx, list)

	if err := renderReport(cc.Renderer, report); err != nil {
		return err
	}

	if failed := len(report.Failed()); failed > 0 {
		return fmt.Errorf("%d of %d jobs failed: %w", failed, len(report.Results), report.Err())
	}
	return nil
}

func renderReport(r *output.Renderer, report *jobs.Report) error {
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(reportJSON(report))
	}

	r.Header(1, "Jobs")

	rows := make([][]string, 0, len(report.Results))
	for _, res := range report.Results {
		status := "ok"
		if !res.OK() {
			status = "failed"
		}
		rows = append(rows, []string{
			res.Job.Module,
			res.Job.InputPath,
			res.Job.OutputPath,
			status,
			res.Duration.Round(durationPrecision).String(),
		})
	}
	r.Table([]string{"Module", "Input", "Output", "Status", "Duration"}, rows)

	for _, res := range report.Failed() {
		r.Error(fmt.Sprintf("%s: %v", res.Job.Module, res.Err))
	}

	failed := len(report.Failed())
	summary := fmt.Sprintf("%d jobs in %s", len(report.Results), report.Duration.Round(durationPrecision))
	if failed == 0 {
		r.Success(summary)
	} else {
		r.Warning(fmt.Sprintf("%s, %d failed", summary, failed))
	}
	r.Println(r.Muted("run " + report.RunID))
	return nil
}

func reportJSON(report *jobs.Report) output.JobsOutput {
	out := output.JobsOutput{
		RunID:      report.RunID,
		Results:    make([]output.JobResult, 0, len(report.Results)),
		Failed:     len(report.Failed()),
		DurationMS: report.Duration.Milliseconds(),
	}
	for _, res := range report.Results {
		jr := output.JobResult{
			Module:     res.Job.Module,
			Input:      res.Job.InputPath,
			Output:     res.Job.OutputPath,
			Prefix:     res.Job.Prefix,
			OK:         res.OK(),
			Bytes:      res.Bytes,
			DurationMS: res.Duration.Milliseconds(),
		}
		if res.Err != nil {
			jr.Error = res.Err.Error()
		}
		out.Results = append(out.Results, jr)
	}
	return out
}
