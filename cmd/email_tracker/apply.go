package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/email-tracker/internal/jobs"
	"github.com/jonathan/email-tracker/internal/llm"
)

var applyCommand = &cobra.Command{
	Use:   "apply",
	Short: "Record a job you applied to from its description",
	Long: `Extracts the company and title from a pasted job description and records the application with user_applied set.

The description is read from --file, or from stdin when no file is given.`,
	RunE: applyCmd,
}

var (
	applyFile   string
	applyEmail  string
	applyJobs   string
	applyAPIKey string
)

func init() {
	applyCommand.Flags().StringVarP(&applyFile, "file", "f", "", "Path to a job description text file (reads stdin if omitted)")
	applyCommand.Flags().StringVar(&applyEmail, "email", "", "Contact email to record on the application")
	applyCommand.Flags().StringVar(&applyJobs, "jobs-file", jobs.DefaultBookPath, "Path to the job application spreadsheet")
	applyCommand.Flags().StringVar(&applyAPIKey, "api-key", "", "Gemini API Key (optional, defaults to GEMINI_API_KEY env var)")

	rootCmd.AddCommand(applyCommand)
}

func applyCmd(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	var description []byte
	var err error
	if applyFile != "" {
		description, err = os.ReadFile(applyFile)
		if err != nil {
			return fmt.Errorf("failed to read job description: %w", err)
		}
	} else {
		description, err = io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read job description from stdin: %w", err)
		}
	}

	apiKey := applyAPIKey
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}

	client, err := llm.NewClient(ctx, llm.DefaultConfig(), apiKey)
	if err != nil {
		return fmt.Errorf("failed to create LLM client: %w", err)
	}
	defer func() { _ = client.Close() }()

	entry, err := jobs.SubmitApplication(ctx, client, jobs.NewBook(applyJobs), jobs.SubmitOptions{
		Description:  string(description),
		ContactEmail: applyEmail,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Recorded application: %s @ %s (%s)\n", entry.Title, entry.Company, entry.Status)
	return nil
}
