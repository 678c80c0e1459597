// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pitchcrew/internal/render"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Render a pitch as a PDF or HTML document",
	Long: `Export renders a pitch file under a brand name. The pitch is split into
its labeled sections; text without recognized headings becomes a single
"Full Pitch" section. Use --pitch-file - to read the pitch from stdin.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		name, _ := cmd.Flags().GetString("name")
		pitchFile, _ := cmd.Flags().GetString("pitch-file")
		format, _ := cmd.Flags().GetString("format")
		outPath, _ := cmd.Flags().GetString("out")

		subtitle := cfg.Render.Subtitle
		if cmd.Flags().Changed("subtitle") {
			subtitle, _ = cmd.Flags().GetString("subtitle")
		}

		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("--name is required")
		}
		pitch, err := readPitch(pitchFile)
		if err != nil {
			return err
		}

		var doc []byte
		switch format {
		case "pdf":
			doc, err = render.PDF(name, pitch, subtitle)
		case "html":
			doc, err = render.HTML(name, pitch)
		default:
			return fmt.Errorf("unsupported format %q (want pdf or html)", format)
		}
		if err != nil {
			return err
		}

		if outPath == "" {
			outPath = filepath.Join(cfg.Render.OutputDir, exportFileName(name, format))
		}
		return writeOutput(outPath, func(w io.Writer) error {
			_, err := w.Write(doc)
			return err
		})
	},
}

func init() {
	exportCmd.Flags().String("name", "", "brand name printed as the document title")
	exportCmd.Flags().String("pitch-file", "-", "pitch text file, or - for stdin")
	exportCmd.Flags().String("subtitle", "", "subtitle printed under the title (pdf only)")
	exportCmd.Flags().String("format", "pdf", "output format: pdf or html")
	exportCmd.Flags().String("out", "", "output path (default: <output_dir>/<name>_pitch.<format>)")

	rootCmd.AddCommand(exportCmd)
}

func readPitch(path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "" || path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("reading pitch: %w", err)
	}
	return string(data), nil
}

func exportFileName(name, format string) string {
	file := render.FileName(name)
	if format == "html" {
		file = strings.TrimSuffix(file, ".pdf") + ".html"
	}
	return file
}
