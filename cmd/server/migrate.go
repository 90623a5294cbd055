package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"techie-backend/internal/config"
	"techie-backend/internal/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := setupLogger("info", "text")

		pool, err := database.NewPostgresPool(config.LoadDatabaseURL())
		if err != nil {
			return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
		}
		defer pool.Close()

		if err := database.RunMigrations(cmd.Context(), pool, migrationsDir, logger); err != nil {
			return err
		}
		logger.Info().Str("dir", migrationsDir).Msg("Migrations applied")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
