// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// DiscoveryConfig holds the file name filter used to find notebooks.
type DiscoveryConfig struct {
	// Root is the directory to walk. Empty means the parent of the working
	// directory.
	Root string `json:"root" yaml:"root"`

	// Extension is the notebook file suffix (default ".ipynb").
	Extension string `json:"extension" yaml:"extension"`

	// ExcludeMarker is the substring that marks checkpoint copies
	// (default "checkpoint").
	ExcludeMarker string `json:"exclude_marker" yaml:"exclude_marker"`
}

// ExecutionConfig holds settings for running notebooks through nbconvert.
type ExecutionConfig struct {
	// Jupyter is the jupyter binary name or path (default "jupyter").
	Jupyter string `json:"jupyter" yaml:"jupyter"`

	// CellTimeout is passed to nbconvert as ExecutePreprocessor.timeout
	// (default 360s).
	CellTimeout time.Duration `json:"cell_timeout" yaml:"cell_timeout"`

	// ProcessTimeout bounds a whole nbconvert process. Zero disables it.
	ProcessTimeout time.Duration `json:"process_timeout" yaml:"process_timeout"`

	// KeepGoing continues past the first failing notebook.
	KeepGoing bool `json:"keep_going" yaml:"keep_going"`

	// SecretsDir holds plain-text files exported to the notebook
	// environment (default ".secrets/").
	SecretsDir string `json:"secrets_dir" yaml:"secrets_dir"`
}

// HistoryConfig holds settings for the run history store.
type HistoryConfig struct {
	// Enabled turns on recording of each run.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// StateDir is the directory holding nbcheck.db (default ".nbcheck").
	StateDir string `json:"state_dir" yaml:"state_dir"`
}

// Config groups all nbcheck settings.
type Config struct {
	Discovery DiscoveryConfig `json:"discovery" yaml:"discovery"`
	Execution ExecutionConfig `json:"execution" yaml:"execution"`
	History   HistoryConfig   `json:"history" yaml:"history"`
}
