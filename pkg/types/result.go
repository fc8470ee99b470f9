// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Status is the outcome of executing one notebook.
type Status string

const (
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusErrored Status = "errored"
)

// Result records the execution of a single notebook.
type Result struct {
	// Path is the notebook file that was executed.
	Path string `json:"path" yaml:"path"`

	// ExitCode is the nbconvert process exit code. It is -1 when the
	// process could not be started.
	ExitCode int `json:"exit_code" yaml:"exit_code"`

	// Status is passed for exit code 0, failed for any other exit code,
	// and errored when nbconvert could not be run.
	Status Status `json:"status" yaml:"status"`

	// Error describes why the notebook errored.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`

	// Duration is the wall time spent in nbconvert.
	Duration time.Duration `json:"duration" yaml:"duration"`
}

// Passed reports whether the notebook executed cleanly.
func (r Result) Passed() bool {
	return r.Status == StatusPassed
}

// Run records one invocation of nbcheck over a directory tree.
type Run struct {
	ID        int64     `json:"id" yaml:"id"`
	Root      string    `json:"root" yaml:"root"`
	StartedAt time.Time `json:"started_at" yaml:"started_at"`
	Results   []Result  `json:"results" yaml:"results"`
}

// Passed counts the passing results of the run.
func (r Run) Passed() int {
	n := 0
	for _, res := range r.Results {
		if res.Passed() {
			n++
		}
	}
	return n
}
