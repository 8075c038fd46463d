package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/steveyegge/keeper/internal/config"
	"github.com/steveyegge/keeper/internal/logging"
	"github.com/steveyegge/keeper/internal/types"
	"github.com/steveyegge/keeper/internal/ui"
)

// Version information (set at build time).
var Version = "0.1.0"

var (
	cfgFile   string
	cfg       *config.Config
	cfgUsed   string
	logger    *slog.Logger
	logCloser io.Closer
	printer   *ui.Printer
)

var rootCmd = &cobra.Command{
	Use:   "keeper",
	Short: "Keep contracts and tasks on local files",
	Long: `keeper manages two independent record collections:

  contracts  a CSV file (data/contratos.csv) with an optional SQLite
             mirror (data/contracts.db) filled by explicit import/export
  tasks      a SQLite table (data/tasks.db) with file-copy backups

Paths, output format and logging come from keeper.toml, KEEPER_*
environment variables or flags.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
			return nil
		}

		var err error
		cfg, cfgUsed, err = config.Load(cfgFile, cmd.Root().PersistentFlags())
		if err != nil {
			return err
		}

		level := cfg.Log.Level
		if cfg.Verbose && !cmd.Flags().Changed("log-level") {
			level = "debug"
		}
		logger, logCloser, err = logging.New(logging.Options{
			Level:      level,
			File:       cfg.Log.File,
			MaxSizeMB:  cfg.Log.MaxSizeMB,
			MaxBackups: cfg.Log.MaxBackups,
			MaxAgeDays: cfg.Log.MaxAgeDays,
			Stderr:     cmd.ErrOrStderr(),
		})
		if err != nil {
			return err
		}

		if cfg.Verbose && cfgUsed != "" {
			fmt.Fprintf(cmd.ErrOrStderr(), "Using config file: %s\n", cfgUsed)
		}

		ui.ConfigureColor(cmd.OutOrStdout())
		printer = ui.NewPrinter(cmd.OutOrStdout(), cfg.Output)
		return nil
	},
	PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
		if logCloser != nil {
			return logCloser.Close()
		}
		return nil
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: ./keeper.toml, then ~/.keeper/keeper.toml)")
	flags.String("data-dir", "", "directory holding relative store paths (default \"data\")")
	flags.StringP("output", "o", "", "output format (table|json|yaml)")
	flags.BoolP("verbose", "v", false, "verbose output")
	flags.String("contracts-file", "", "contracts CSV file")
	flags.String("contracts-db", "", "contracts mirror database")
	flags.String("tasks-db", "", "task database")
	flags.String("tasks-backup", "", "task database backup path")
	flags.String("log-level", "", "log level (debug|info|warn|error)")
	flags.String("log-file", "", "write JSON logs to this rotating file instead of stderr")

	_ = rootCmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return config.OutputFormats, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddGroup(
		&cobra.Group{ID: "records", Title: "Records:"},
		&cobra.Group{ID: "maint", Title: "Maintenance:"},
	)
}

// exitCode maps an error to the process exit status: 2 for rejected
// input or missing records, 1 for everything else.
func exitCode(err error) int {
	if errors.Is(err, types.ErrValidation) || errors.Is(err, types.ErrNotFound) {
		return 2
	}
	return 1
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", ui.RenderFail("Error:"), err)
		os.Exit(exitCode(err))
	}
}
