package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"dernek/internal/backend"
	"dernek/internal/cli"
	"dernek/internal/config"
	dlog "dernek/internal/log"
)

var rootCmd = &cobra.Command{
	Use:           "dernekctl",
	Short:         "Operate the dernek panel data",
	Long:          "Migrate and import association data, print the derived views and authorize the sheets export.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		cli.LoadEnvFile()
		cfg, err := cli.LoadAndValidateConfig()
		if err != nil {
			return err
		}
		lc := dlog.DefaultConfig()
		lc.Level = dlog.ParseLevel(cfg.LogLevel)
		lc.Component = dlog.ComponentCLI
		lc.Output = os.Stderr
		app.cfg = cfg
		app.logger = dlog.New(lc)
		return nil
	},
}

var app struct {
	cfg    *config.Config
	logger *dlog.Logger
	json   bool
}

func main() {
	rootCmd.PersistentFlags().BoolVar(&app.json, "json", false, "print JSON instead of tables")
	rootCmd.AddCommand(migrateCmd, importCmd, calendarCmd, ledgerCmd, reportCmd, sheetsAuthCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "dernekctl:", err)
		os.Exit(1)
	}
}

// openBackend builds the configured store. Callers must Close the result.
func openBackend(ctx context.Context, notifications bool) (*backend.BackendResult, error) {
	bc, err := backend.FromAppConfig(app.cfg)
	if err != nil {
		return nil, err
	}
	if !notifications {
		bc.AMQPURL = ""
	}
	return backend.NewFactory(app.logger).CreateBackend(ctx, bc)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
