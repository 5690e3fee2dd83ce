package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jonathan/career-analyzer/internal/logging"
	"github.com/jonathan/career-analyzer/internal/observability"
	"github.com/jonathan/career-analyzer/internal/parsing"
)

var parseJSON bool

var parseCmd = &cobra.Command{
	Use:   "parse <resume.pdf|resume.docx>",
	Short: "Extract bullet points from a resume",
	Long:  "Extract bullet points from a local PDF or DOCX resume and print them, or emit them as JSON with --json.",
	Args:  cobra.ExactArgs(1),
	RunE:  runParse,
}

func init() {
	parseCmd.Flags().BoolVar(&parseJSON, "json", false, "Print bullets as JSON")
	rootCmd.AddCommand(parseCmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	path := args[0]
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open resume: %w", err)
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat resume: %w", err)
	}

	parser := parsing.New(parsing.DefaultMaxBytes, logging.Discard())
	bullets, err := parser.Parse(cmd.Context(), filepath.Base(path), f, info.Size())
	if err != nil {
		return err
	}

	if parseJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(bullets)
	}
	observability.NewPrinter(cmd.OutOrStdout()).PrintBullets(bullets)
	return nil
}
