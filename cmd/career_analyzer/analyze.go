package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/career-analyzer/internal/analytics"
	"github.com/jonathan/career-analyzer/internal/observability"
	"github.com/jonathan/career-analyzer/internal/types"
)

var analyzeJSON bool

var analyzeCmd = &cobra.Command{
	Use:   "analyze <bins.json>",
	Short: "Compute the category distribution of categorized bullets",
	Long:  "Read a JSON array of bins with their bullets and print the distribution, top category and suggestions.",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnalyze,
}

func init() {
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "Print the analysis result as JSON")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read bins: %w", err)
	}

	var bins []types.Bin
	if err := json.Unmarshal(data, &bins); err != nil {
		return fmt.Errorf("failed to decode bins: %w", err)
	}
	if len(bins) == 0 {
		return fmt.Errorf("no bins in %s", args[0])
	}

	result := analytics.NewResult(bins, time.Now(), nil)
	if analyzeJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	observability.NewPrinter(cmd.OutOrStdout()).PrintAnalysis(result)
	return nil
}
