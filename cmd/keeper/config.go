package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/steveyegge/keeper/internal/config"
	"github.com/steveyegge/keeper/internal/ui"
)

var configCmd = &cobra.Command{
	Use:     "config",
	GroupID: "maint",
	Short:   "Inspect and create keeper configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Long: `Print the configuration after defaults, the config file, KEEPER_*
environment variables and flags have been applied.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if ok, err := printer.Structured(cfg); ok {
			return err
		}
		data, err := cfg.Encode()
		if err != nil {
			return err
		}
		source := cfgUsed
		if source == "" {
			source = "defaults (no config file found)"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n\n%s", ui.RenderMuted("# "+source), data)
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a config file",
	Long: `Write a TOML config file, keeper.toml in the current directory unless a
path is given. The file holds the built-in defaults, or the effective
configuration with --current.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.DefaultConfigName
		if len(args) == 1 {
			path = args[0]
		}
		force, _ := cmd.Flags().GetBool("force")
		current, _ := cmd.Flags().GetBool("current")

		out := config.Defaults()
		if current {
			out = cfg
		}
		if err := out.WriteFile(path, force); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s Wrote %s\n", ui.RenderPass("✓"), ui.RenderAccent(path))
		return nil
	},
}

func init() {
	configInitCmd.Flags().BoolP("force", "f", false, "overwrite an existing file")
	configInitCmd.Flags().Bool("current", false, "write the effective configuration instead of the defaults")

	configCmd.AddCommand(configShowCmd, configInitCmd)
	rootCmd.AddCommand(configCmd)
}
