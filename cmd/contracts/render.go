package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"digital.vasic.contracts/pkg/report"
	"digital.vasic.contracts/pkg/scenario"
)

func newRenderCmd(a *app) *cobra.Command {
	var (
		format    string
		outputDir string
		history   string
	)
	cmd := &cobra.Command{
		Use:   "render REPORT.json",
		Short: "Render a saved scenario run report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read report: %w", err)
			}
			var rep scenario.Report
			if err := json.Unmarshal(data, &rep); err != nil {
				return fmt.Errorf("failed to parse report %s: %w", args[0], err)
			}

			var r report.Reporter
			switch format {
			case "json":
				r = report.NewJSONReporter(true)
			case "md", "markdown":
				r = report.NewMarkdownReporter()
			case "html":
				r = report.NewHTMLReporter()
			default:
				return fmt.Errorf("unknown report format %q", format)
			}
			if err := r.Write(cmd.OutOrStdout(), &rep); err != nil {
				return err
			}

			if outputDir != "" {
				if err := report.SaveSummary(report.BuildSummary(&rep), outputDir); err != nil {
					return err
				}
			}
			if history != "" {
				if err := report.AppendToHistory(history, &rep, args[0]); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "md", "output format: json, md or html")
	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "also save JSON and Markdown summaries here")
	cmd.Flags().StringVar(&history, "history", "", "append the run to this JSON-lines history file")
	return cmd
}
