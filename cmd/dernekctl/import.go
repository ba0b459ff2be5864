package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"dernek/internal/config"
	dlog "dernek/internal/log"
	"dernek/internal/source"
)

var importCmd = &cobra.Command{
	Use:   "import <file.yaml>",
	Short: "Load a YAML dataset into the SQLite store",
	Long: "Validate a YAML dataset and replace the matching collections in the SQLite store. " +
		"Running servers are notified per collection when AMQP is configured.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if app.cfg.DataBackend != config.BackendSQLite {
			return fmt.Errorf("import needs the %s backend, configured backend is %s", config.BackendSQLite, app.cfg.DataBackend)
		}

		ds, err := source.LoadDataset(args[0])
		if err != nil {
			return fmt.Errorf("load %s: %w", args[0], err)
		}

		ctx := cmd.Context()
		result, err := openBackend(ctx, true)
		if err != nil {
			return err
		}
		defer result.Close()

		if err := ds.Write(ctx, result.Store); err != nil {
			return fmt.Errorf("import %s: %w", args[0], err)
		}

		collections := ds.Collections()
		app.logger.Info("Dataset imported",
			dlog.FieldOperation, dlog.OpImport,
			"file", args[0],
			"collections", collections,
		)

		if result.Notifier != nil {
			for _, c := range collections {
				if err := result.Notifier.PublishRecordChanged(ctx, c, ""); err != nil {
					// The data is stored; servers catch up when their snapshots expire.
					app.logger.Warn("Failed to publish change notification",
						dlog.FieldOperation, dlog.OpPublish,
						dlog.FieldCollection, c,
						dlog.FieldError, err,
					)
				}
			}
		}

		fmt.Fprintf(cmd.OutOrStdout(), "imported %d collections from %s\n", len(collections), args[0])
		return nil
	},
}
