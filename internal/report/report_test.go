// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/nbcheck/internal/notebook"
	"github.com/pdiddy/nbcheck/pkg/types"
)

func TestSummary(t *testing.T) {
	result := notebook.BatchResult{
		Passed:  1,
		Failed:  1,
		Errored: 1,
		Results: []types.Result{
			{Path: "a.ipynb", Status: types.StatusPassed},
			{Path: "b.ipynb", ExitCode: 1, Status: types.StatusFailed},
			{Path: "c.ipynb", ExitCode: -1, Status: types.StatusErrored, Error: "no kernel"},
		},
	}

	var out bytes.Buffer
	Summary(&out, result)
	got := out.String()

	assert.Contains(t, got, "FAILED b.ipynb (exit 1)")
	assert.Contains(t, got, "ERRORED c.ipynb (exit -1) no kernel")
	assert.NotContains(t, got, "a.ipynb")
	assert.Contains(t, got, "Notebook summary: 1 passed, 1 failed, 1 errored (total: 3)")
	assert.NotContains(t, got, "--keep-going")
}

func TestSummaryStopped(t *testing.T) {
	var out bytes.Buffer
	Summary(&out, notebook.BatchResult{
		Failed:  1,
		Stopped: true,
		Results: []types.Result{{Path: "x.ipynb", ExitCode: 1, Status: types.StatusFailed}},
	})
	assert.Contains(t, out.String(), "--keep-going")
}

func TestWriteFile(t *testing.T) {
	run := types.Run{
		Root:      "/proj",
		StartedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Results: []types.Result{
			{Path: "/proj/a.ipynb", Status: types.StatusPassed, Duration: 2 * time.Second},
		},
	}
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "out", "report.yaml")
	require.NoError(t, WriteFile(yamlPath, run))
	data, err := os.ReadFile(yamlPath)
	require.NoError(t, err)
	var fromYAML types.Run
	require.NoError(t, yaml.Unmarshal(data, &fromYAML))
	assert.Equal(t, run.Results, fromYAML.Results)

	jsonPath := filepath.Join(dir, "report.json")
	require.NoError(t, WriteFile(jsonPath, run))
	data, err = os.ReadFile(jsonPath)
	require.NoError(t, err)
	var fromJSON types.Run
	require.NoError(t, json.Unmarshal(data, &fromJSON))
	assert.Equal(t, "/proj", fromJSON.Root)

	err = WriteFile(filepath.Join(dir, "report.txt"), run)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported report format")
}
