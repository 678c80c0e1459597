// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/pitchcrew/pkg/types"
)

var runCmd = &cobra.Command{
	Use:   "run <idea>",
	Short: "Run all four stages for an idea",
	Long: `Run generates names, market research, a draft pitch and a polished pitch
for the idea. The draft is written without a brand name; use select to bind
one. The run is printed as YAML (default) or JSON.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		if format != "yaml" && format != "json" {
			return fmt.Errorf("unsupported format %q (want yaml or json)", format)
		}
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
		fmt.Fprintf(os.Stderr, "running %s pipeline...\n", a.pipeline.Strategy())
		if err := sess.Run(ctx); err != nil {
			return err
		}
		a.save(ctx, sess)
		reportEvents(os.Stderr, sess.State.History)

		return writeOutput(outPath, func(w io.Writer) error {
			return encodeRun(w, sess.State, format)
		})
	},
}

func init() {
	runCmd.Flags().String("format", "yaml", "output format: yaml or json")
	runCmd.Flags().String("out", "", "write output to file instead of stdout")

	rootCmd.AddCommand(runCmd)
}

func encodeRun(w io.Writer, run *types.PipelineRun, format string) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(run)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(run); err != nil {
		return err
	}
	return enc.Close()
}

// reportEvents prints one progress line per completed stage.
func reportEvents(w io.Writer, events []types.StageEvent) {
	for _, ev := range events {
		status := "ok"
		if ev.Fallback {
			status = "fallback"
		}
		fmt.Fprintf(w, "%-9s %-10s %s\n", ev.Stage, ev.Strategy, status)
	}
}

// writeOutput runs write against path, or stdout when path is empty.
func writeOutput(path string, write func(io.Writer) error) error {
	if path == "" {
		return write(os.Stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	fmt.Fprintf(os.Stderr, "wrote %s\n", path)
	return nil
}
