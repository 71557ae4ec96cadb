package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/sahilchouksey/career-guidance-api/cmd/careerctl/output"
	"github.com/sahilchouksey/career-guidance-api/config"
	"github.com/sahilchouksey/career-guidance-api/database"
	"github.com/sahilchouksey/career-guidance-api/services"
	"github.com/sahilchouksey/career-guidance-api/services/storage"
	"github.com/spf13/cobra"
)

var (
	// import flags
	createFirst bool

	// export flags
	exportOut  string
	exportRows int
	exportToS3 bool
)

var createDatabaseCmd = &cobra.Command{
	Use:   "create-database",
	Short: "Create the application database if it does not exist",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCreateDatabase(cmd.Context())
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file.sql>",
	Short: "Run a SQL script against the application database",
	Long: `Run a SQL dump or script against the application database.

Examples:
  careerctl import dump.sql             # Import into an existing database
  careerctl import dump.sql --create    # Create the database first`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runImport(cmd.Context(), args[0])
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write a JSON snapshot of the database",
	Long: `Write row counts and rows of every table as JSON. Password and token
columns are left out.

Examples:
  careerctl export                      # Print to stdout
  careerctl export --out backup.json    # Write to a file
  careerctl export --upload             # Upload to object storage`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExport(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(createDatabaseCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(exportCmd)

	importCmd.Flags().BoolVar(&createFirst, "create", false, "Create the database before importing")

	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output file (default stdout)")
	exportCmd.Flags().IntVar(&exportRows, "rows", services.ExportRowLimit, "Maximum rows per table")
	exportCmd.Flags().BoolVar(&exportToS3, "upload", false, "Upload to object storage instead of writing locally")
}

func resolveTarget() (*config.DatabaseTarget, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return config.ResolveDatabase(cfg)
}

func runCreateDatabase(ctx context.Context) error {
	target, err := resolveTarget()
	if err != nil {
		return err
	}

	created, err := database.EnsureDatabase(ctx, target)
	if err != nil {
		return err
	}

	if created {
		output.Success("created database %s on %s", target.Name, target.Host)
	} else {
		output.Info("database %s already exists", target.Name)
	}
	return nil
}

func runImport(ctx context.Context, path string) error {
	target, err := resolveTarget()
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if createFirst {
		if _, err := database.EnsureDatabase(ctx, target); err != nil {
			return err
		}
	}

	n, err := database.ImportSQL(ctx, target, f)
	if err != nil {
		return err
	}

	output.Success("imported %s (%d bytes) into %s", path, n, target.Redacted())
	return nil
}

func runExport(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := startStore(ctx, cfg, false)
	if err != nil {
		return err
	}
	defer store.Close()

	if exportToS3 {
		spacesConfig, err := storage.ConfigFromEnv(cfg)
		if err != nil {
			return err
		}
		client, err := storage.NewSpacesClient(spacesConfig)
		if err != nil {
			return err
		}

		result, err := services.NewExportService(store, client).Export(ctx)
		if err != nil {
			return err
		}
		if jsonOutput {
			return output.JSON(result)
		}
		output.Success("uploaded %s (%d bytes, %d tables)", result.Key, result.Size, result.Tables)
		output.Muted("download link (1h): %s", result.URL)
		return nil
	}

	snapshot, err := database.TakeSnapshot(ctx, store.DB(), exportRows)
	if err != nil {
		return err
	}

	body, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return err
	}

	if exportOut == "" {
		_, err = fmt.Fprintln(os.Stdout, string(body))
		return err
	}
	if err := os.WriteFile(exportOut, body, 0o600); err != nil {
		return err
	}
	output.Success("wrote %d tables to %s", len(snapshot.Data), exportOut)
	return nil
}
