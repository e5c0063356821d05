package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/email-tracker/internal/observability"
	"github.com/jonathan/email-tracker/internal/store"
)

var statusCommand = &cobra.Command{
	Use:   "status",
	Short: "Show email store totals and the category breakdown",
	RunE:  statusCmd,
}

var statusDatabaseURL string

func init() {
	statusCommand.Flags().StringVar(&statusDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")

	rootCmd.AddCommand(statusCommand)
}

func statusCmd(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	databaseURL := statusDatabaseURL
	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable or --db-url flag is required")
	}

	emailStore, err := store.Connect(ctx, databaseURL)
	if err != nil {
		return err
	}
	defer emailStore.Close()

	if err := emailStore.Init(ctx); err != nil {
		return err
	}

	stats, err := emailStore.Stats(ctx)
	if err != nil {
		return err
	}

	observability.NewPrinter(os.Stdout).PrintStoreStats(stats)
	return nil
}
