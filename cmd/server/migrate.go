package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/JonMunkholm/bizsight/internal/database"
	"github.com/spf13/cobra"
)

var dbURL string

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply or roll back the embedded SQL migrations",
	Long: `Run the SQL migrations embedded in the binary.

Subcommands:
  up      - Apply pending migrations
  down    - Roll back every migration
  status  - Show the applied version`,
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		url, err := migrationURL()
		if err != nil {
			return err
		}
		if err := database.MigrateUp(url); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
		return nil
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back every migration",
	Long: `Roll back every applied migration. This drops all BizSight tables and
their data.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		url, err := migrationURL()
		if err != nil {
			return err
		}
		if err := database.MigrateDown(url); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "migrations rolled back")
		return nil
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the applied migration version",
	RunE: func(cmd *cobra.Command, args []string) error {
		url, err := migrationURL()
		if err != nil {
			return err
		}
		version, dirty, err := database.MigrationVersion(url)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty: %t)\n", version, dirty)
		return nil
	},
}

func init() {
	migrateCmd.PersistentFlags().StringVar(&dbURL, "db", "", "Database URL (default: $DATABASE_URL or $DB_URL)")
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd, migrateStatusCmd)
	rootCmd.AddCommand(migrateCmd)
}

func migrationURL() (string, error) {
	for _, u := range []string{dbURL, os.Getenv("DATABASE_URL"), os.Getenv("DB_URL")} {
		if u != "" {
			return u, nil
		}
	}
	return "", errors.New("no database URL: pass --db or set DATABASE_URL")
}
