package cmd

import (
	"fmt"

	"translation-manager/core/config"
	"translation-manager/core/database"
	"translation-manager/core/logger"
	"translation-manager/core/revision"
	"translation-manager/feature/store/repo"

	"github.com/spf13/cobra"
)

// migrateCmd creates or updates the database schema.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	Long:  `Runs the schema migrations for stores, units, submissions, suggestions and the revision counter.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(".")
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		logg, err := logger.New(&cfg.Log)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		db, err := database.Connect(cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}

		if err := repo.Migrate(db); err != nil {
			return fmt.Errorf("failed to migrate store tables: %w", err)
		}
		if err := revision.Migrate(db); err != nil {
			return fmt.Errorf("failed to migrate revision counter: %w", err)
		}

		logg.Info("Database schema is up to date")
		return nil
	},
}

func init() {
	RootCmd.AddCommand(migrateCmd)
}
