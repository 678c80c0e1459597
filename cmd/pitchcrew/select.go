// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var selectCmd = &cobra.Command{
	Use:   "select <idea>",
	Short: "Write the draft and polished pitch with a chosen name",
	Long: `Select re-runs the draft and polish stages with the brand name bound.
The polished pitch is printed, or written to --out. Pass the pitch file to
export to render it.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		outPath, _ := cmd.Flags().GetString("out")

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
		if err := sess.Select(ctx, name); err != nil {
			return err
		}
		a.save(ctx, sess)
		reportEvents(os.Stderr, sess.State.History)

		return writeOutput(outPath, func(w io.Writer) error {
			_, err := fmt.Fprintln(w, sess.State.PolishedPitch)
			return err
		})
	},
}

func init() {
	selectCmd.Flags().String("name", "", "brand name to write the pitch for")
	selectCmd.Flags().String("out", "", "write the polished pitch to file instead of stdout")
	_ = selectCmd.MarkFlagRequired("name")

	rootCmd.AddCommand(selectCmd)
}
