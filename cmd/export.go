package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/focus/internal/report"
)

var (
	exportFormat string
	exportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export <id>",
	Short: "Write a session report to a Markdown or JSON file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format := exportFormat
		if format == "" {
			format = cfg.DefaultFormat
		}
		renderer, err := report.ForFormat(format)
		if err != nil {
			return err
		}

		st, err := openStorage(cmd)
		if err != nil {
			return err
		}
		r, err := loadReport(st, args[0])
		if err != nil {
			return err
		}
		data, err := renderer.Render(r)
		if err != nil {
			return fmt.Errorf("render report: %w", err)
		}

		outputDir := exportOut
		if outputDir == "" {
			outputDir = cfg.OutputDir
		}
		if outputDir == "" {
			outputDir = "."
		}
		if err := os.MkdirAll(outputDir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
		outputPath := filepath.Join(outputDir, "focus-"+r.Session.ID+report.Extension(format))
		if err := os.WriteFile(outputPath, data, 0o644); err != nil {
			return fmt.Errorf("write output file: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Report written: %s\n", outputPath)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "", "output format: markdown or json (overrides config)")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output directory (overrides config)")
	rootCmd.AddCommand(exportCmd)
}
