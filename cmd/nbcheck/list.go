package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/nbcheck/internal/discover"
)

var listCmd = &cobra.Command{
	Use:   "list [root]",
	Short: "List the notebooks that run would execute",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
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
		for _, p := range paths {
			fmt.Fprintln(cmd.OutOrStdout(), p)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
