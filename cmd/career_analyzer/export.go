package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/career-analyzer/internal/client"
	"github.com/jonathan/career-analyzer/internal/observability"
	"github.com/jonathan/career-analyzer/internal/rendering"
	"github.com/jonathan/career-analyzer/internal/types"
)

var (
	exportFormat    string
	exportServerURL string
	exportOutDir    string
	narrateJSON     bool
)

var exportCmd = &cobra.Command{
	Use:   "export <analysis.json>",
	Short: "Download an analysis as JSON or PDF from a running server",
	Long:  "Send an analysis result to a running server's export endpoint and save the returned career_analysis_<date> file.",
	Args:  cobra.ExactArgs(1),
	RunE:  runExport,
}

var narrateCmd = &cobra.Command{
	Use:   "narrate <analysis.json>",
	Short: "Request narrative guidance for an analysis from a running server",
	Long:  "Send an analysis result, optionally carrying onboardingData, to a running server's narrative endpoint and print the guidance.",
	Args:  cobra.ExactArgs(1),
	RunE:  runNarrate,
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "json", "Export format: json or pdf")
	exportCmd.Flags().StringVar(&exportServerURL, "server", "http://localhost:8080/api", "Base URL of the server API")
	exportCmd.Flags().StringVar(&exportOutDir, "out", ".", "Directory to write the export to")
	rootCmd.AddCommand(exportCmd)

	narrateCmd.Flags().StringVar(&exportServerURL, "server", "http://localhost:8080/api", "Base URL of the server API")
	narrateCmd.Flags().BoolVar(&narrateJSON, "json", false, "Print the narrative as JSON")
	rootCmd.AddCommand(narrateCmd)
}

func readAnalysis(path string) (*types.AnalysisResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read analysis: %w", err)
	}
	var result types.AnalysisResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to decode analysis: %w", err)
	}
	return &result, nil
}

func runExport(cmd *cobra.Command, args []string) error {
	format, err := rendering.ParseFormat(exportFormat)
	if err != nil {
		return err
	}
	result, err := readAnalysis(args[0])
	if err != nil {
		return err
	}

	c := client.New(exportServerURL)
	var exp *client.Export
	if format == rendering.FormatPDF {
		exp, err = c.ExportPDF(cmd.Context(), result)
	} else {
		exp, err = c.ExportJSON(cmd.Context(), result)
	}
	if err != nil {
		return err
	}

	name := exp.Filename
	if name == "" {
		name = rendering.Filename(format, time.Now())
	}
	if err := os.MkdirAll(exportOutDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	path := filepath.Join(exportOutDir, filepath.Base(name))
	if err := os.WriteFile(path, exp.Data, 0o644); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Saved %s (%d bytes)\n", path, len(exp.Data))
	return nil
}

func runNarrate(cmd *cobra.Command, args []string) error {
	result, err := readAnalysis(args[0])
	if err != nil {
		return err
	}
	resp, err := client.New(exportServerURL).Narrative(cmd.Context(), result)
	if err != nil {
		return err
	}

	if narrateJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}
	observability.NewPrinter(cmd.OutOrStdout()).PrintNarrative(resp)
	return nil
}
