package commands

import (
	"github.com/sahilchouksey/career-guidance-api/app"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Connect to the database, create missing tables and seed rows, then serve
the REST API on PORT until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.SetupAndRunServer()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
