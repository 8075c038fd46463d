package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/steveyegge/keeper/internal/dates"
	"github.com/steveyegge/keeper/internal/storage/contracts"
	"github.com/steveyegge/keeper/internal/sync"
	"github.com/steveyegge/keeper/internal/types"
	"github.com/steveyegge/keeper/internal/ui"
)

// now is replaced in tests so natural due dates are deterministic.
var now = time.Now

var contractCmd = &cobra.Command{
	Use:     "contract",
	Aliases: []string{"contracts"},
	GroupID: "records",
	Short:   "Manage contracts in the CSV file and its SQLite mirror",
	Long: `Contracts live in a CSV file that is the source of truth. The SQLite
mirror is only written by 'contract import' and only read by
'contract export'; nothing keeps the two in step automatically.`,
}

var contractListCmd = &cobra.Command{
	Use:   "list",
	Short: "List contracts in file order",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		list, err := contractFile().Load()
		if err != nil {
			return err
		}
		return printer.Contracts(list)
	},
}

var contractAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Append a contract to the file",
	Long: `Append a contract. Descriptions are not required to be unique.

Examples:
  keeper contract add -d "Serviço de TI" --category TI --due 2024-12-31 --supplier "Empresa X"
  keeper contract add -d "Limpeza" --due "next friday" --natural-due
  keeper contract add --interactive`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		var c types.Contract
		applyContractFlags(cmd, &c)

		interactive, _ := cmd.Flags().GetBool("interactive")
		if interactive {
			if err := ui.ContractForm(&c); err != nil {
				return fmt.Errorf("failed to read contract: %w", err)
			}
		}
		if err := finishContract(cmd, &c); err != nil {
			return err
		}

		if err := contractFile().Add(c); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s Added contract %s\n", ui.RenderPass("✓"), ui.RenderAccent(c.Description))
		return nil
	},
}

var contractUpdateCmd = &cobra.Command{
	Use:   "update <description>",
	Short: "Replace the first contract with the given description",
	Long: `Replace the first contract whose description matches exactly. Fields
not given as flags keep their current values.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store := contractFile()
		list, err := store.Load()
		if err != nil {
			return err
		}

		c := types.Contract{Description: args[0]}
		for _, existing := range list {
			if existing.Description == args[0] {
				c = existing
				break
			}
		}
		applyContractFlags(cmd, &c)
		if err := finishContract(cmd, &c); err != nil {
			return err
		}

		found, err := store.Update(args[0], c)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("contract %q: %w", args[0], types.ErrNotFound)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s Updated contract %s\n", ui.RenderPass("✓"), ui.RenderAccent(c.Description))
		return nil
	},
}

var contractDeleteCmd = &cobra.Command{
	Use:   "delete <description>",
	Short: "Remove every contract with the given description",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		removed, err := contractFile().Delete(args[0])
		if err != nil {
			return err
		}
		if removed == 0 {
			return fmt.Errorf("contract %q: %w", args[0], types.ErrNotFound)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s Removed %d contract(s) named %s\n",
			ui.RenderPass("✓"), removed, ui.RenderAccent(args[0]))
		return nil
	},
}

var contractImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Append every file contract to the SQLite mirror",
	Long: `Copy every contract in the CSV file into the SQLite mirror. Rows are
appended, so importing twice stores every contract twice.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		res, err := contractSyncer().ImportToRelational(cmd.Context())
		if err != nil {
			return err
		}
		return printSyncResult(cmd, res)
	},
}

var contractExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Overwrite the CSV file with the SQLite mirror's rows",
	Long: `Replace the CSV file with every row of the SQLite mirror. Contracts only
present in the file are lost. Fails without touching the file when the
mirror table does not exist.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		if !yes && ui.IsTerminal(cmd.OutOrStdout()) {
			ok, err := ui.Confirm(fmt.Sprintf("Overwrite %s with the mirror's rows?", cfg.ContractsFilePath()))
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), ui.RenderWarn("export cancelled"))
				return nil
			}
		}

		res, err := contractSyncer().ExportFromRelational(cmd.Context())
		if err != nil {
			return err
		}
		return printSyncResult(cmd, res)
	},
}

func contractFile() *contracts.FileStore {
	return contracts.NewFileStore(cfg.ContractsFilePath(), logger)
}

func contractSyncer() sync.Syncer {
	return sync.New(contractFile(), contracts.NewMirror(cfg.ContractsDBPath(), logger), logger)
}

// applyContractFlags copies the contract flags the user set onto c.
func applyContractFlags(cmd *cobra.Command, c *types.Contract) {
	fields := map[string]*string{
		"description": &c.Description,
		"category":    &c.Category,
		"due":         &c.DueDate,
		"supplier":    &c.Supplier,
	}
	for name, dst := range fields {
		if cmd.Flags().Changed(name) {
			*dst, _ = cmd.Flags().GetString(name)
		}
	}
}

// finishContract resolves a natural due date and checks the description.
func finishContract(cmd *cobra.Command, c *types.Contract) error {
	if natural, _ := cmd.Flags().GetBool("natural-due"); natural {
		due, err := dates.Normalize(c.DueDate, now())
		if err != nil {
			return &types.ValidationError{Field: "due", Reason: err.Error()}
		}
		c.DueDate = due
	}
	if strings.TrimSpace(c.Description) == "" {
		return &types.ValidationError{Field: "description", Reason: "cannot be empty"}
	}
	return nil
}

func printSyncResult(cmd *cobra.Command, res *sync.Result) error {
	if ok, err := printer.Structured(res); ok {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s Copied %d contract(s) %s\n  %s\n  %s\n",
		ui.RenderPass("✓"), res.Rows, ui.RenderAccent(string(res.Direction)),
		ui.RenderMuted("from "+res.Source), ui.RenderMuted("to   "+res.Destination))
	return nil
}

func addContractFieldFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("description", "d", "", "contract description")
	cmd.Flags().String("category", "", "category")
	cmd.Flags().String("due", "", "due date, stored verbatim unless --natural-due is set")
	cmd.Flags().String("supplier", "", "supplier")
	cmd.Flags().Bool("natural-due", false, "parse --due as a phrase such as \"next friday\" into YYYY-MM-DD")
}

func init() {
	addContractFieldFlags(contractAddCmd)
	contractAddCmd.Flags().BoolP("interactive", "i", false, "fill in fields with a terminal form")

	addContractFieldFlags(contractUpdateCmd)

	contractExportCmd.Flags().BoolP("yes", "y", false, "do not ask for confirmation")

	contractCmd.AddCommand(contractListCmd, contractAddCmd, contractUpdateCmd,
		contractDeleteCmd, contractImportCmd, contractExportCmd)
	rootCmd.AddCommand(contractCmd)
}
