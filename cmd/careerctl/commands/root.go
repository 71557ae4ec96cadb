package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/sahilchouksey/career-guidance-api/app"
	"github.com/sahilchouksey/career-guidance-api/cmd/careerctl/output"
	"github.com/sahilchouksey/career-guidance-api/config"
	"github.com/sahilchouksey/career-guidance-api/database"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose    bool
	jsonOutput bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "careerctl",
	Short: "Career Guidance Platform API and database tooling",
	Long: `careerctl runs the Career Guidance Platform API and manages its database.

Connection settings come from the environment (DATABASE_URL, MYSQL_URL or
DB_HOST/DB_PORT/DB_USER/DB_PASSWORD/DB_NAME). A .env file is read outside
production.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		output.Error("%v", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
}

// loadConfig reads the environment. Logs stay quiet unless --verbose.
func loadConfig() (*config.EnvironmentVariable, error) {
	cfg, err := app.LoadConfig()
	if err != nil {
		return nil, err
	}
	if !verbose {
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	}
	return cfg, nil
}

// startStore connects and bootstraps. Unlike the server, the CLI always
// fails when the database cannot be reached.
func startStore(ctx context.Context, cfg *config.EnvironmentVariable, withSeeds bool) (*database.Store, error) {
	store, err := database.NewStoreFromConfig(cfg, withSeeds)
	if err != nil {
		return nil, err
	}
	if err := store.Start(ctx); err != nil {
		return nil, err
	}
	if !store.Ready() {
		return nil, fmt.Errorf("database unavailable: %w", store.LastError())
	}
	return store, nil
}
