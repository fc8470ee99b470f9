package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/nbcheck/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded notebook runs",
	Long: `History lists runs recorded with "nbcheck run --history", newest first.
With --export it writes every recorded run to history.yaml and history.json
in the given directory.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().Int("max-results", 20, "maximum number of runs to show")
	historyCmd.Flags().Bool("json", false, "output runs as JSON")
	historyCmd.Flags().String("export", "", "export all runs to YAML and JSON files in this directory")

	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	store, err := history.Open(cfg.History.StateDir)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := cmdContext(cmd)
	out := cmd.OutOrStdout()

	if dir, _ := cmd.Flags().GetString("export"); dir != "" {
		yamlPath := filepath.Join(dir, "history.yaml")
		jsonPath := filepath.Join(dir, "history.json")
		if err := store.ExportYAML(ctx, yamlPath); err != nil {
			return err
		}
		if err := store.ExportJSON(ctx, jsonPath); err != nil {
			return err
		}
		fmt.Fprintf(out, "exported %s and %s\n", yamlPath, jsonPath)
		return nil
	}

	limit, _ := cmd.Flags().GetInt("max-results")
	runs, err := store.Recent(ctx, limit)
	if err != nil {
		return err
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		data, err := json.MarshalIndent(runs, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	if len(runs) == 0 {
		fmt.Fprintln(out, "no runs recorded")
		return nil
	}
	for _, r := range runs {
		fmt.Fprintf(out, "#%d  %s  %d/%d passed  %s\n",
			r.ID, r.StartedAt.Local().Format(time.DateTime), r.Passed(), len(r.Results), r.Root)
	}
	return nil
}
