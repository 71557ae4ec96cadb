package commands

import (
	"context"

	"github.com/sahilchouksey/career-guidance-api/cmd/careerctl/output"
	"github.com/sahilchouksey/career-guidance-api/database"
	"github.com/spf13/cobra"
)

// migrateCmd creates missing tables
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create missing tables",
	Long: `Create every missing table in dependency order. Existing tables are left
untouched, so running it again is a no-op.

Examples:
  careerctl migrate           # Create missing tables
  careerctl migrate --json    # Report as JSON`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMigrate(cmd.Context())
	},
}

// seedCmd inserts seed rows
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create tables and insert seed rows",
	Long: `Create missing tables, then insert the admin account (ADMIN_EMAIL,
ADMIN_PASSWORD) and, with SEED_SAMPLE_DATA=true, the sample institute catalog.
Rows that already exist are kept.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSeed(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
}

func runMigrate(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := startStore(ctx, cfg, false)
	if err != nil {
		return err
	}
	defer store.Close()

	return printReport(store.Report())
}

func runSeed(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := startStore(ctx, cfg, true)
	if err != nil {
		return err
	}
	defer store.Close()

	return printReport(store.Report())
}

func printReport(report *database.BootstrapReport) error {
	if jsonOutput {
		return output.JSON(report)
	}

	output.Section("Schema")
	for _, name := range report.Created {
		output.Success("created %s", name)
	}
	if len(report.Created) == 0 {
		output.Info("all %d tables already exist", len(report.Existing))
	} else if verbose {
		for _, name := range report.Existing {
			output.Muted("  exists  %s", name)
		}
	}

	if report.Seeded != nil {
		output.Section("Seeds")
		for _, name := range report.Seeded {
			output.Success("seeded %s", name)
		}
	}
	if len(report.Seeded) == 0 {
		output.Muted("no seed rows inserted")
	}
	return nil
}
