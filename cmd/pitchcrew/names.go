// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var namesCmd = &cobra.Command{
	Use:   "names <idea>",
	Short: "Generate brand name candidates for an idea",
	Long: `Names runs only the name stage and prints up to six candidates, one per
line. Without generation the six built-in names are printed.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(loadConfig())
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := cmd.Context()
		sess, err := a.session(ctx, strings.Join(args, " "))
		if err != nil {
			return err
		}
		if err := sess.GenerateNames(ctx); err != nil {
			return err
		}
		a.save(ctx, sess)

		asJSON, _ := cmd.Flags().GetBool("json")
		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(sess.State.Names)
		}
		for _, name := range sess.State.Names {
			fmt.Fprintln(os.Stdout, name)
		}
		return nil
	},
}

func init() {
	namesCmd.Flags().Bool("json", false, "output names as a JSON array")

	rootCmd.AddCommand(namesCmd)
}
