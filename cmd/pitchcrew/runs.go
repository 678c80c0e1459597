// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"

	"github.com/spf13/cobra"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Export stored runs as YAML",
	Long: `Runs prints the most recent runs with their stage history. Runs are kept
only when store.path points at a database file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := newApp(loadConfig())
		if err != nil {
			return err
		}
		defer a.Close()

		return a.store.ExportYAML(cmd.Context(), os.Stdout, limit)
	},
}

func init() {
	runsCmd.Flags().Int("limit", 20, "maximum number of runs to print")

	rootCmd.AddCommand(runsCmd)
}
