package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"dernek/internal/config"
	dlog "dernek/internal/log"
	"dernek/internal/storage"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations to the SQLite store",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if app.cfg.DataBackend != config.BackendSQLite {
			return fmt.Errorf("migrate needs the %s backend, configured backend is %s", config.BackendSQLite, app.cfg.DataBackend)
		}
		path := app.cfg.SQLiteDBPath

		if err := storage.RunMigrations(path); err != nil {
			return err
		}
		version, dirty, err := storage.SchemaVersion(path)
		if err != nil {
			return err
		}
		app.logger.Info("Migrations applied",
			dlog.FieldOperation, dlog.OpMigrate,
			"db_path", path,
			"version", version,
			"dirty", dirty,
		)
		fmt.Fprintf(cmd.OutOrStdout(), "schema version %d (dirty=%t)\n", version, dirty)
		return nil
	},
}
