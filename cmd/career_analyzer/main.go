// Package main provides the entry point for the Career Analyzer server and CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "career_analyzer",
	Short: "Career Design Resume Analyzer",
	Long: "Career Analyzer extracts bullet points from a resume, lets a student sort them into " +
		"career-design categories, and reports the distribution with narrative guidance.",
	SilenceUsage: true,
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
