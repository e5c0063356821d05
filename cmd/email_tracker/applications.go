package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/email-tracker/internal/jobs"
	"github.com/jonathan/email-tracker/internal/observability"
)

var applicationsCommand = &cobra.Command{
	Use:   "applications",
	Short: "List tracked job applications",
	RunE:  applicationsCmd,
}

var (
	applicationsJobs        string
	applicationsAppliedOnly bool
)

func init() {
	applicationsCommand.Flags().StringVar(&applicationsJobs, "jobs-file", jobs.DefaultBookPath, "Path to the job application spreadsheet")
	applicationsCommand.Flags().BoolVar(&applicationsAppliedOnly, "applied-only", false, "Only show applications the user submitted")

	rootCmd.AddCommand(applicationsCommand)
}

func applicationsCmd(_ *cobra.Command, _ []string) error {
	tracker, err := jobs.NewBook(applicationsJobs).Load()
	if err != nil {
		return err
	}

	apps := tracker.Applications()
	if applicationsAppliedOnly {
		var filtered []jobs.Application
		for _, app := range apps {
			if app.UserApplied {
				filtered = append(filtered, app)
			}
		}
		apps = filtered
	}

	observability.NewPrinter(os.Stdout).PrintApplications(apps)
	return nil
}
