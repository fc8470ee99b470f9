// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package nbconvert executes notebooks through the jupyter nbconvert
// command-line tool.
package nbconvert

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"time"
)

const (
	// DefaultJupyter is the jupyter binary looked up on PATH.
	DefaultJupyter = "jupyter"
	// DefaultCellTimeout is passed to ExecutePreprocessor.timeout.
	DefaultCellTimeout = 360 * time.Second
)

// Runner executes a single notebook and reports the process exit code.
type Runner interface {
	// Name returns the binary used to run notebooks.
	Name() string

	// Available reports whether the binary exists on PATH and its
	// nbconvert subcommand responds.
	Available(ctx context.Context) bool

	// Execute runs the notebook at path. A non-zero exit code is returned
	// with a nil error; err is set only when the process could not be run
	// to completion.
	Execute(ctx context.Context, path string) (int, error)
}

// executor abstracts process execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	RunSilent(ctx context.Context, name string, args ...string) error
	Run(ctx context.Context, name string, args, env []string, stdout, stderr io.Writer) (int, error)
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (o *osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (o *osExecutor) RunSilent(ctx context.Context, name string, args ...string) error {
	return exec.CommandContext(ctx, name, args...).Run()
}

func (o *osExecutor) Run(ctx context.Context, name string, args, env []string, stdout, stderr io.Writer) (int, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	if len(env) > 0 {
		cmd.Env = append(os.Environ(), env...)
	}

	err := cmd.Run()
	if err == nil {
		return 0, nil
	}
	if ctx.Err() != nil {
		return -1, ctx.Err()
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return -1, err
}

// Options configures a Runner. Zero values take the defaults.
type Options struct {
	// Jupyter is the binary name or path.
	Jupyter string

	// CellTimeout is the per-cell execution timeout given to nbconvert.
	// Zero takes the default; a negative value disables the timeout.
	CellTimeout time.Duration

	// ProcessTimeout bounds each nbconvert process. Zero means no bound.
	ProcessTimeout time.Duration

	// Env holds extra KEY=VALUE pairs for the notebook kernel.
	Env []string

	// Stdout and Stderr receive nbconvert output (default os.Stderr).
	Stdout io.Writer
	Stderr io.Writer

	// Logger receives debug records for each invocation.
	Logger *slog.Logger
}

// runner implements Runner on top of an executor.
type runner struct {
	opts Options
	exec executor
}

// New returns a Runner backed by os/exec.
func New(opts Options) Runner {
	return newRunner(opts, defaultExec)
}

var defaultExec = &osExecutor{}

func newRunner(opts Options, exec executor) *runner {
	if opts.Jupyter == "" {
		opts.Jupyter = DefaultJupyter
	}
	if opts.CellTimeout == 0 {
		opts.CellTimeout = DefaultCellTimeout
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stderr
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &runner{opts: opts, exec: exec}
}

func (r *runner) Name() string { return r.opts.Jupyter }

func (r *runner) Available(ctx context.Context) bool {
	if _, err := r.exec.LookPath(r.opts.Jupyter); err != nil {
		return false
	}
	return r.exec.RunSilent(ctx, r.opts.Jupyter, "nbconvert", "--version") == nil
}

func (r *runner) Execute(ctx context.Context, path string) (int, error) {
	out, err := os.CreateTemp("", "nbcheck-*.ipynb")
	if err != nil {
		return -1, fmt.Errorf("creating output file for %s: %w", path, err)
	}
	outPath := out.Name()
	out.Close()
	defer os.Remove(outPath)

	if r.opts.ProcessTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opts.ProcessTimeout)
		defer cancel()
	}

	args := Args(r.opts.CellTimeout, outPath, path)
	r.opts.Logger.Debug("executing notebook", "bin", r.opts.Jupyter, "args", args)

	code, err := r.exec.Run(ctx, r.opts.Jupyter, args, r.opts.Env, r.opts.Stdout, r.opts.Stderr)
	if err != nil {
		return -1, fmt.Errorf("running %s nbconvert on %s: %w", r.opts.Jupyter, path, err)
	}
	return code, nil
}

// Args builds the nbconvert argument list that executes input in place of a
// notebook conversion and writes the executed copy to output.
func Args(cellTimeout time.Duration, output, input string) []string {
	return []string{
		"nbconvert",
		"--to", "notebook",
		"--execute",
		"--ExecutePreprocessor.timeout=" + strconv.FormatInt(timeoutSeconds(cellTimeout), 10),
		"--output", output,
		input,
	}
}

// timeoutSeconds converts d to nbconvert's whole-second timeout. Partial
// seconds round up so a short timeout never becomes 0, which nbclient treats
// as an immediate deadline. Negative durations map to -1 (no timeout).
func timeoutSeconds(d time.Duration) int64 {
	if d < 0 {
		return -1
	}
	secs := int64(d / time.Second)
	if d%time.Second != 0 {
		secs++
	}
	return secs
}
