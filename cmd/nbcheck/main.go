// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the nbcheck CLI.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/pdiddy/nbcheck/internal/discover"
	"github.com/pdiddy/nbcheck/internal/nbconvert"
	"github.com/pdiddy/nbcheck/internal/secrets"
	"github.com/pdiddy/nbcheck/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// logger is configured from --verbose before any subcommand runs.
var logger = slog.Default()

// configErr records a failure to read an explicit --config file; it is
// logged once the logger is configured.
var configErr error

// loadedSecrets holds the notebook environment loaded from the secrets
// directory at startup.
var loadedSecrets map[string]string

// rootCmd is the base command for the nbcheck CLI.
var rootCmd = &cobra.Command{
	Use:   "nbcheck",
	Short: "Execute Jupyter notebooks and fail on errors",
	Long: `nbcheck walks a directory tree, finds Jupyter notebooks, and executes each
one with "jupyter nbconvert --execute". A notebook passes when nbconvert exits
with status 0. Checkpoint copies are skipped.

Use it as a smoke test for example notebooks in CI.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelInfo
		if viper.GetBool("verbose") {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
		slog.SetDefault(logger)

		if configErr != nil {
			logger.Warn("could not read config", "err", configErr)
		} else if used := viper.ConfigFileUsed(); used != "" {
			logger.Debug("using config file", "path", used)
		}

		s, err := secrets.Load(viper.GetString("execution.secrets_dir"))
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			logger.Info("loaded secrets", "count", len(s))
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./nbcheck.yaml or ~/.config/nbcheck/config.yaml)")
	pf.BoolP("verbose", "v", false, "enable debug logging")
	pf.String("ext", discover.DefaultExtension, "notebook file extension")
	pf.String("exclude", discover.DefaultExcludeMarker, "skip files whose name contains this substring (empty uses the default)")
	pf.String("state-dir", defaultStateDir, "directory for the run history database")

	mustBind("verbose", pf.Lookup("verbose"))
	mustBind("discovery.extension", pf.Lookup("ext"))
	mustBind("discovery.exclude_marker", pf.Lookup("exclude"))
	mustBind("history.state_dir", pf.Lookup("state-dir"))
}

const (
	defaultStateDir   = ".nbcheck"
	defaultSecretsDir = ".secrets/"
)

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("nbcheck")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "nbcheck"))
		}
	}

	viper.SetDefault("execution.jupyter", nbconvert.DefaultJupyter)
	viper.SetDefault("execution.cell_timeout", nbconvert.DefaultCellTimeout)
	viper.SetDefault("execution.secrets_dir", defaultSecretsDir)

	viper.SetEnvPrefix("NBCHECK")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	configErr = nil
	if err := viper.ReadInConfig(); err != nil && cfgFile != "" {
		configErr = fmt.Errorf("reading config %s: %w", cfgFile, err)
	}
}

// mustBind binds a viper key to a flag; a missing flag is a programming error.
func mustBind(key string, flag *pflag.Flag) {
	if err := viper.BindPFlag(key, flag); err != nil {
		panic(fmt.Sprintf("binding %s: %v", key, err))
	}
}

// loadConfig assembles the effective configuration from flags, environment,
// and config file.
func loadConfig() types.Config {
	return types.Config{
		Discovery: types.DiscoveryConfig{
			Root:          viper.GetString("discovery.root"),
			Extension:     viper.GetString("discovery.extension"),
			ExcludeMarker: viper.GetString("discovery.exclude_marker"),
		},
		Execution: types.ExecutionConfig{
			Jupyter:        viper.GetString("execution.jupyter"),
			CellTimeout:    durationOr(viper.GetDuration("execution.cell_timeout"), nbconvert.DefaultCellTimeout),
			ProcessTimeout: viper.GetDuration("execution.process_timeout"),
			KeepGoing:      viper.GetBool("execution.keep_going"),
			SecretsDir:     viper.GetString("execution.secrets_dir"),
		},
		History: types.HistoryConfig{
			Enabled:  viper.GetBool("history.enabled"),
			StateDir: viper.GetString("history.state_dir"),
		},
	}
}

// durationOr returns fallback for an unset (zero) duration. Negative values
// pass through so a negative --timeout disables the cell timeout.
func durationOr(d, fallback time.Duration) time.Duration {
	if d == 0 {
		return fallback
	}
	return d
}

// resolveRoot picks the directory to scan: the argument, then the
// configured root, then the parent of the working directory.
func resolveRoot(args []string, cfg types.DiscoveryConfig) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if cfg.Root != "" {
		return cfg.Root, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting working directory: %w", err)
	}
	return discover.DefaultRoot(cwd), nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
