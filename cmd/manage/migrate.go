package main

import (
	"github.com/spf13/cobra"

	"github.com/pageza/foodgram/backend/internal/database"
)

var migrationsDir string

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	Args:  cobra.NoArgs,
	RunE:  runMigrate,
}

func init() {
	migrateCmd.Flags().StringVar(&migrationsDir, "dir", "", "migrations directory (defaults to MIGRATIONS_DIR)")
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	env, err := setup()
	if err != nil {
		return err
	}
	defer env.close()

	dir := migrationsDir
	if dir == "" {
		dir = env.cfg.MigrationsDir
	}
	if err := database.RunMigrations(env.db, dir, env.logger); err != nil {
		return err
	}
	cmd.Println("migrations applied")
	return nil
}
