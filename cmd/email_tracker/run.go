package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/email-tracker/internal/config"
	"github.com/jonathan/email-tracker/internal/jobs"
	"github.com/jonathan/email-tracker/internal/llm"
	"github.com/jonathan/email-tracker/internal/mail"
	"github.com/jonathan/email-tracker/internal/notify"
	"github.com/jonathan/email-tracker/internal/observability"
	"github.com/jonathan/email-tracker/internal/store"
	"github.com/jonathan/email-tracker/internal/workflow"
)

var runCommand = &cobra.Command{
	Use:   "run",
	Short: "Run the email processing pipeline end-to-end",
	Long: `Runs one pipeline pass: fetch -> summarize -> classify -> parallel category processing.

Configuration can be loaded from a JSON file using --config. Command-line arguments override config file values, and credentials fall back to environment variables.`,
	RunE: runPipelineCmd,
}

var (
	runConfigPath   string
	runCount        int
	runJobsFile     string
	runAPIKey       string
	runDatabaseURL  string
	runIMAPServer   string
	runIMAPUsername string
	runIMAPPassword string
	runDebug        bool
)

func init() {
	// Config file flag (processed first)
	runCommand.Flags().StringVar(&runConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")

	runCommand.Flags().IntVarP(&runCount, "count", "n", 0, "Number of new emails to fetch")
	runCommand.Flags().StringVar(&runJobsFile, "jobs-file", "", "Path to the job application spreadsheet")
	runCommand.Flags().BoolVarP(&runDebug, "debug", "d", false, "Print detailed per-stage information")

	// Credentials can be passed as flags, or read from env vars
	runCommand.Flags().StringVar(&runAPIKey, "api-key", "", "Gemini API Key (optional, defaults to GEMINI_API_KEY env var)")
	runCommand.Flags().StringVar(&runDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")
	runCommand.Flags().StringVar(&runIMAPServer, "imap-server", "", "Mail server host:port (optional, defaults to IMAP_SERVER env var)")
	runCommand.Flags().StringVar(&runIMAPUsername, "imap-username", "", "Mail account username (optional, defaults to IMAP_USERNAME env var)")
	runCommand.Flags().StringVar(&runIMAPPassword, "imap-password", "", "Mail account password (optional, defaults to IMAP_PASSWORD env var)")

	rootCmd.AddCommand(runCommand)
}

// loadRunConfig resolves the effective configuration from config file, flags,
// defaults, and environment, in that precedence order.
func loadRunConfig(cmd *cobra.Command) (config.Config, error) {
	var cfg config.Config
	if runConfigPath != "" {
		loadedCfg, err := config.LoadConfig(runConfigPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to load config: %w", err)
		}
		if err := loadedCfg.Validate(); err != nil {
			return cfg, err
		}
		cfg = *loadedCfg
		if runDebug {
			_, _ = fmt.Fprintf(os.Stdout, "Loaded config from: %s\n", runConfigPath)
		}
	}

	// CLI overrides take priority when explicitly set
	if cmd.Flags().Changed("count") {
		cfg.Count = runCount
	}
	if cmd.Flags().Changed("jobs-file") {
		cfg.JobsFile = runJobsFile
	}
	if cmd.Flags().Changed("api-key") {
		cfg.APIKey = runAPIKey
	}
	if cmd.Flags().Changed("db-url") {
		cfg.DatabaseURL = runDatabaseURL
	}
	if cmd.Flags().Changed("imap-server") {
		cfg.IMAPServer = runIMAPServer
	}
	if cmd.Flags().Changed("imap-username") {
		cfg.IMAPUsername = runIMAPUsername
	}
	if cmd.Flags().Changed("imap-password") {
		cfg.IMAPPassword = runIMAPPassword
	}
	if cmd.Flags().Changed("debug") {
		cfg.Debug = runDebug
	}

	cfg = cfg.MergeWithDefaults(config.Config{
		Count:    10,
		JobsFile: jobs.DefaultBookPath,
	})
	cfg.ApplyEnvironment()

	if cfg.APIKey == "" {
		return cfg, fmt.Errorf("GEMINI_API_KEY environment variable or --api-key flag is required")
	}
	if cfg.DatabaseURL == "" {
		return cfg, fmt.Errorf("DATABASE_URL environment variable or --db-url flag is required")
	}
	if cfg.IMAPServer == "" {
		return cfg, fmt.Errorf("IMAP_SERVER environment variable or --imap-server flag is required")
	}

	return cfg, nil
}

func runPipelineCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := loadRunConfig(cmd)
	if err != nil {
		return err
	}

	client, err := llm.NewClient(ctx, llm.DefaultConfig(), cfg.APIKey)
	if err != nil {
		return fmt.Errorf("failed to create LLM client: %w", err)
	}
	defer func() { _ = client.Close() }()

	emailStore, err := store.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer emailStore.Close()

	if err := emailStore.Init(ctx); err != nil {
		return err
	}

	printer := observability.NewPrinter(os.Stdout)

	var observers []workflow.Observer
	if cfg.Debug {
		observers = append(observers, func(state workflow.State) (workflow.State, error) {
			printer.PrintStageProgress(state)
			return state, nil
		})
	}

	engine := workflow.NewEngine(
		client,
		emailStore,
		mail.NewClient(cfg.IMAPServer, cfg.IMAPUsername, cfg.IMAPPassword),
		jobs.NewProcessor(client, jobs.NewBook(cfg.JobsFile)),
		notify.NewDesktop(),
		observers...,
	)

	fmt.Printf("Processing up to %d new emails...\n", cfg.Count)
	final := engine.Run(ctx, workflow.NewState(cfg.Count, cfg.Debug))

	printer.PrintRunSummary(final)

	stats, err := emailStore.Stats(ctx)
	if err != nil {
		return err
	}
	printer.PrintStoreStats(stats)

	return nil
}
