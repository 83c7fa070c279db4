// Package jobs runs batches of inlining jobs.
//
// A jobs file lists {input_path, module, prefix, output_path} descriptors.
// Each job inlines one module of one source file and writes it, renamed
// with the job's prefix, to its own output file. A failing job is recorded
// in the report and never stops the others.
package jobs

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidJob is returned for a job descriptor missing a required field.
var ErrInvalidJob = errors.New("invalid job")

// Job is one inlining job.
type Job struct {
	InputPath  string `json:"input_path" yaml:"input_path"`
	Module     string `json:"module" yaml:"module"`
	Prefix     string `json:"prefix" yaml:"prefix"`
	OutputPath string `json:"output_path" yaml:"output_path"`
}

// Validate checks that the job names its input, module and output.
func (j Job) Validate() error {
	var missing []string
	if j.InputPath == "" {
		missing = append(missing, "input_path")
	}
	if j.Module == "" {
		missing = append(missing, "module")
	}
	if j.OutputPath == "" {
		missing = append(missing, "output_path")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidJob, strings.Join(missing, ", "))
	}
	return nil
}

// Load reads a jobs file. Files ending in .json are decoded as JSON,
// everything else as YAML. Relative paths are resolved against the
// directory of the jobs file. Jobs run concurrently, so two jobs writing
// the same output file are rejected.
func Load(path string) ([]Job, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from the command line
	if err != nil {
		return nil, fmt.Errorf("failed to read jobs file: %w", err)
	}

	var jobs []Job
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(data, &jobs)
	} else {
		err = yaml.Unmarshal(data, &jobs)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse jobs file %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	outputs := make(map[string]int, len(jobs))
	for i := range jobs {
		if err := jobs[i].Validate(); err != nil {
			return nil, fmt.Errorf("job %d in %s: %w", i+1, path, err)
		}
		jobs[i].InputPath = resolve(dir, jobs[i].InputPath)
		jobs[i].OutputPath = resolve(dir, jobs[i].OutputPath)

		if prev, ok := outputs[jobs[i].OutputPath]; ok {
			return nil, fmt.Errorf("job %d in %s: %w: output_path %s is also written by job %d",
				i+1, path, ErrInvalidJob, jobs[i].OutputPath, prev)
		}
		outputs[jobs[i].OutputPath] = i + 1
	}
	return jobs, nil
}

func resolve(dir, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}
