// Package main provides the entry point for the email tracker CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "email_tracker",
	Short: "Email triage and job application tracker",
	Long:  "Email tracker fetches inbox messages, summarizes and classifies them with a language model, and routes each category to a handler that updates the email store and the job application spreadsheet.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
