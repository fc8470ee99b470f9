package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/nbcheck/internal/discover"
	"github.com/pdiddy/nbcheck/internal/history"
	"github.com/pdiddy/nbcheck/internal/nbconvert"
	"github.com/pdiddy/nbcheck/internal/notebook"
	"github.com/pdiddy/nbcheck/internal/report"
	"github.com/pdiddy/nbcheck/internal/secrets"
	"github.com/pdiddy/nbcheck/pkg/types"
)

// newRunner builds the notebook runner; tests replace it.
var newRunner = func(opts nbconvert.Options) nbconvert.Runner {
	return nbconvert.New(opts)
}

var runCmd = &cobra.Command{
	Use:   "run [root]",
	Short: "Execute every notebook under root",
	Long: `Run discovers notebooks under root (default: the parent of the working
directory) and executes each one, sequentially, with jupyter nbconvert. The
command fails if any notebook exits non-zero. By default it stops at the
first failure.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRun,
}

func init() {
	f := runCmd.Flags()
	f.Duration("timeout", nbconvert.DefaultCellTimeout, "per-cell execution timeout passed to nbconvert, rounded up to whole seconds (negative disables)")
	f.Duration("process-timeout", 0, "kill nbconvert after this long (0 disables)")
	f.Bool("keep-going", false, "run every notebook even after a failure")
	f.String("jupyter", nbconvert.DefaultJupyter, "jupyter binary")
	f.Bool("history", false, "record the run in the history database")
	f.String("report", "", "write a YAML or JSON report to this path")

	mustBind("execution.cell_timeout", f.Lookup("timeout"))
	mustBind("execution.process_timeout", f.Lookup("process-timeout"))
	mustBind("execution.keep_going", f.Lookup("keep-going"))
	mustBind("execution.jupyter", f.Lookup("jupyter"))
	mustBind("history.enabled", f.Lookup("history"))

	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	root, err := resolveRoot(args, cfg.Discovery)
	if err != nil {
		return err
	}

	paths, err := discover.Walk(root, discover.Options{
		Extension:     cfg.Discovery.Extension,
		ExcludeMarker: cfg.Discovery.ExcludeMarker,
	})
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(paths) == 0 {
		fmt.Fprintf(out, "no notebooks found under %s\n", root)
		return nil
	}
	logger.Debug("discovered notebooks", "root", root, "count", len(paths))

	ctx, stop := signal.NotifyContext(cmdContext(cmd), os.Interrupt)
	defer stop()

	runner := newRunner(nbconvert.Options{
		Jupyter:        cfg.Execution.Jupyter,
		CellTimeout:    cfg.Execution.CellTimeout,
		ProcessTimeout: cfg.Execution.ProcessTimeout,
		Env:            secrets.Env(loadedSecrets),
		Stdout:         cmd.ErrOrStderr(),
		Stderr:         cmd.ErrOrStderr(),
		Logger:         logger,
	})
	if !runner.Available(ctx) {
		return fmt.Errorf("%s nbconvert is not available: install jupyter and nbconvert or pass --jupyter", runner.Name())
	}

	run := types.Run{Root: root, StartedAt: time.Now().UTC()}
	result := notebook.RunBatch(ctx, runner, paths, notebook.BatchOptions{KeepGoing: cfg.Execution.KeepGoing}, out)
	run.Results = result.Results
	report.Summary(out, result)

	if path, _ := cmd.Flags().GetString("report"); path != "" {
		if err := report.WriteFile(path, run); err != nil {
			return err
		}
		logger.Info("wrote report", "path", path)
	}

	if cfg.History.Enabled {
		if err := recordRun(ctx, cfg.History.StateDir, run); err != nil {
			logger.Warn("could not record run history", "err", err)
		}
	}

	if ctx.Err() != nil {
		return fmt.Errorf("interrupted after %d notebook(s)", result.Total())
	}
	if result.HasFailures() {
		return fmt.Errorf("%d notebook(s) failed", result.Failed+result.Errored)
	}
	return nil
}

func recordRun(ctx context.Context, stateDir string, run types.Run) error {
	store, err := history.Open(stateDir)
	if err != nil {
		return err
	}
	defer store.Close()

	id, err := store.Record(context.WithoutCancel(ctx), run)
	if err != nil {
		return err
	}
	logger.Debug("recorded run", "id", id, "state_dir", stateDir)
	return nil
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
