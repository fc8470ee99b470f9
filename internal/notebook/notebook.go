// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package notebook executes discovered notebooks one at a time and tallies
// the outcome of each run.
package notebook

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/pdiddy/nbcheck/internal/nbconvert"
	"github.com/pdiddy/nbcheck/pkg/types"
)

// BatchOptions controls a batch run.
type BatchOptions struct {
	// KeepGoing runs every notebook even after one fails. When false the
	// batch stops at the first notebook that does not pass.
	KeepGoing bool
}

// BatchResult holds the outcome of a batch run.
type BatchResult struct {
	Passed  int
	Failed  int
	Errored int
	// Stopped is set when the batch ended early on a failure.
	Stopped bool
	Results []types.Result
}

// Total returns the number of notebooks executed.
func (r BatchResult) Total() int {
	return r.Passed + r.Failed + r.Errored
}

// HasFailures reports whether any notebook failed or could not be run.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0 || r.Errored > 0
}

// RunNotebook executes a single notebook and prints "<path> <exit code>" to w.
func RunNotebook(ctx context.Context, r nbconvert.Runner, path string, w io.Writer) types.Result {
	start := time.Now()
	code, err := r.Execute(ctx, path)
	res := types.Result{
		Path:     path,
		ExitCode: code,
		Duration: time.Since(start),
	}

	switch {
	case err != nil:
		res.Status = types.StatusErrored
		res.Error = err.Error()
		fmt.Fprintf(w, "%s %d (%v)\n", path, code, err)
	case code != 0:
		res.Status = types.StatusFailed
		fmt.Fprintf(w, "%s %d\n", path, code)
	default:
		res.Status = types.StatusPassed
		fmt.Fprintf(w, "%s %d\n", path, code)
	}
	return res
}

// RunBatch executes each path sequentially and returns a summary. A
// cancelled context stops the batch before the next notebook starts.
func RunBatch(ctx context.Context, r nbconvert.Runner, paths []string, opts BatchOptions, w io.Writer) BatchResult {
	var result BatchResult
	for _, p := range paths {
		if ctx.Err() != nil {
			result.Stopped = true
			break
		}

		res := RunNotebook(ctx, r, p, w)
		result.Results = append(result.Results, res)
		switch res.Status {
		case types.StatusPassed:
			result.Passed++
		case types.StatusFailed:
			result.Failed++
		case types.StatusErrored:
			result.Errored++
		}

		if !res.Passed() && !opts.KeepGoing {
			result.Stopped = len(result.Results) < len(paths)
			break
		}
	}
	return result
}
