package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/sahilchouksey/career-guidance-api/cmd/careerctl/output"
	"github.com/sahilchouksey/career-guidance-api/config"
	"github.com/sahilchouksey/career-guidance-api/database"
	"github.com/sahilchouksey/career-guidance-api/model"
	"github.com/spf13/cobra"
)

// statusCmd checks connectivity and schema without changing anything
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show database connectivity and table status",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStatus(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	target, err := config.ResolveDatabase(cfg)
	if err != nil {
		return err
	}

	db, err := database.Open(ctx, target, database.OptionsFromConfig(cfg).Pool, cfg.IsProduction())
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	status := database.CheckTables(ctx, db)
	if jsonOutput {
		return output.JSON(statusReport{Target: target.Redacted(), Tables: status})
	}

	output.Section("Database")
	output.Info("connected to %s", target.Redacted())

	missing := map[string]bool{}
	for _, name := range status.Missing {
		missing[name] = true
	}

	output.Section("Tables")
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, name := range model.TableNames() {
		fmt.Fprintf(w, "  %s\t%s\n", output.TableIcon(!missing[name]), name)
	}
	w.Flush()
	fmt.Println()

	if !status.Complete() {
		output.Warning("%d of %d tables missing, run `careerctl migrate`", len(status.Missing), status.Expected)
		return nil
	}
	output.Success("%d/%d tables present", status.Present, status.Expected)
	return nil
}

type statusReport struct {
	Target string               `json:"target"`
	Tables database.TableStatus `json:"tables"`
}
