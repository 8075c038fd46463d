package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/steveyegge/keeper/internal/types"
	"github.com/steveyegge/keeper/internal/ui"
)

var initCmd = &cobra.Command{
	Use:     "init",
	GroupID: "maint",
	Short:   "Create the data directory and the task table",
	Long: `Create the data directory and the task table. Safe to run repeatedly;
existing data is never dropped or altered.

With --contracts the contract file is also written with just its header
when it does not exist yet.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
			return types.NewStorageError("create data directory", cfg.DataDir, err)
		}

		store := newTaskStore()
		if err := store.Initialize(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s Task table ready in %s\n", ui.RenderPass("✓"), ui.RenderAccent(store.Path()))

		if withContracts, _ := cmd.Flags().GetBool("contracts"); withContracts {
			file := contractFile()
			if _, err := os.Stat(file.Path()); errors.Is(err, fs.ErrNotExist) {
				if err := file.Save(nil); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s Contract file created at %s\n", ui.RenderPass("✓"), ui.RenderAccent(file.Path()))
			}
		}
		return nil
	},
}

func init() {
	initCmd.Flags().Bool("contracts", false, "also create an empty contract file")
	rootCmd.AddCommand(initCmd)
}
