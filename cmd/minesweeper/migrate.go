package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vancomm/minesweeper/internal/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the postgres leaderboard migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		url, err := conf.Leaderboard.Postgres.DbURL()
		if err != nil {
			return err
		}
		version, dirty, err := database.Migrate(url)
		if err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		log.WithField("dirty", dirty).Infof("schema at version %d", version)
		fmt.Fprintf(cmd.OutOrStdout(), "version %d dirty=%t\n", version, dirty)
		return nil
	},
}
