package cmd

import (
	"errors"
	"fmt"

	"bizdesk/pkg/database"
	"bizdesk/pkg/utils"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/spf13/cobra"
)

var (
	migrationsPath string
	downSteps      int
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all up migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		migrator, err := newMigrator()
		if err != nil {
			return err
		}
		defer migrator.Close()

		if err := migrator.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("migrate up failed: %w", err)
		}
		return nil
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back migrations (all of them unless --steps is set)",
	RunE: func(cmd *cobra.Command, args []string) error {
		migrator, err := newMigrator()
		if err != nil {
			return err
		}
		defer migrator.Close()

		if downSteps > 0 {
			err = migrator.Steps(-downSteps)
		} else {
			err = migrator.Down()
		}
		if err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("migrate down failed: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd)

	migrateCmd.PersistentFlags().StringVar(&migrationsPath, "path", "migrations", "directory holding the SQL migrations")
	migrateDownCmd.Flags().IntVar(&downSteps, "steps", 0, "number of migrations to roll back")
}

func newMigrator() (*migrate.Migrate, error) {
	config, err := utils.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	migrator, err := migrate.New("file://"+migrationsPath, database.PostgresURL(config.Database, "pgx5"))
	if err != nil {
		return nil, fmt.Errorf("init migrator failed: %w", err)
	}
	return migrator, nil
}
