// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report renders batch results for the terminal and writes them to
// YAML or JSON report files.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/nbcheck/internal/notebook"
	"github.com/pdiddy/nbcheck/pkg/types"
)

// Styles for status labels. Colors degrade to plain text when w is not a
// terminal.
type styles struct {
	pass lipgloss.Style
	fail lipgloss.Style
	dim  lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		pass: r.NewStyle().Bold(true).Foreground(lipgloss.Color("#3FB950")),
		fail: r.NewStyle().Bold(true).Foreground(lipgloss.Color("#F85149")),
		dim:  r.NewStyle().Foreground(lipgloss.Color("#8B949E")),
	}
}

// Summary prints the failing notebooks followed by a one-line tally.
func Summary(w io.Writer, result notebook.BatchResult) {
	st := newStyles(w)

	var failing []types.Result
	for _, r := range result.Results {
		if !r.Passed() {
			failing = append(failing, r)
		}
	}
	if len(failing) > 0 {
		fmt.Fprintln(w)
		for _, r := range failing {
			label := st.fail.Render(strings.ToUpper(string(r.Status)))
			line := fmt.Sprintf("%s %s (exit %d)", label, r.Path, r.ExitCode)
			if r.Error != "" {
				line += " " + st.dim.Render(r.Error)
			}
			fmt.Fprintln(w, line)
		}
	}

	passed := fmt.Sprintf("%d passed", result.Passed)
	if result.Passed > 0 {
		passed = st.pass.Render(passed)
	}
	failed := fmt.Sprintf("%d failed", result.Failed)
	if result.Failed > 0 {
		failed = st.fail.Render(failed)
	}
	errored := fmt.Sprintf("%d errored", result.Errored)
	if result.Errored > 0 {
		errored = st.fail.Render(errored)
	}

	fmt.Fprintf(w, "\nNotebook summary: %s, %s, %s (total: %d)\n", passed, failed, errored, result.Total())
	if result.Stopped {
		fmt.Fprintln(w, st.dim.Render("stopped after first failure; pass --keep-going to run the rest"))
	}
}

// WriteFile writes run to path, choosing YAML or JSON from the extension.
func WriteFile(path string, run types.Run) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(run)
	case ".json":
		data, err = json.MarshalIndent(run, "", "  ")
	default:
		return fmt.Errorf("unsupported report format %q: use .yaml, .yml, or .json", filepath.Ext(path))
	}
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating report directory: %w", err)
		}
	}
	return os.WriteFile(path, data, 0o644)
}
