package cmd

import (
	"github.com/spf13/cobra"

	"github.com/taskchat/taskchat/internal/database"
)

func newMigrateCmd() *cobra.Command {
	var (
		debugMode   bool
		databaseURL string
	)

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Long: `Apply all pending database migrations and exit.

The serve and api commands apply migrations on startup by default;
this command is for running them separately, e.g. as a deployment
step or init container.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			url, err := resolveDatabaseURL(databaseURL)
			if err != nil {
				return err
			}
			newLogger(debugMode)
			return database.Migrate(url)
		},
	}

	cmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	cmd.Flags().StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL. Can also use DATABASE_URL env var.")

	return cmd
}
