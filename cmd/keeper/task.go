package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/steveyegge/keeper/internal/tasks"
	"github.com/steveyegge/keeper/internal/types"
	"github.com/steveyegge/keeper/internal/ui"
)

var taskCmd = &cobra.Command{
	Use:     "task",
	Aliases: []string{"tasks"},
	GroupID: "records",
	Short:   "Manage tasks in the SQLite task table",
}

var taskCreateCmd = &cobra.Command{
	Use:   "create [title] [description]",
	Short: "Create a Pending task",
	Long: `Create a task with status Pending. Title and description are required.

Examples:
  keeper task create "Write report" "Quarterly numbers"
  keeper task create --title "Call supplier" --description "Renewal terms"
  keeper task create --interactive`,
	Args: cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		title, _ := cmd.Flags().GetString("title")
		description, _ := cmd.Flags().GetString("description")
		if len(args) > 0 {
			title = args[0]
		}
		if len(args) > 1 {
			description = args[1]
		}

		if interactive, _ := cmd.Flags().GetBool("interactive"); interactive {
			if err := ui.TaskForm(&title, &description); err != nil {
				return fmt.Errorf("failed to read task: %w", err)
			}
		}

		store, err := taskStore(cmd)
		if err != nil {
			return err
		}
		id, err := store.Create(cmd.Context(), title, description)
		if err != nil {
			return err
		}

		if ok, err := printer.Structured(map[string]int64{"id": id}); ok {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s Created task %s: %s\n",
			ui.RenderPass("✓"), ui.RenderAccent(strconv.FormatInt(id, 10)), title)
		return nil
	},
}

var taskListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks ordered by id",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		store, err := taskStore(cmd)
		if err != nil {
			return err
		}
		list, err := store.List(cmd.Context())
		if err != nil {
			return err
		}
		return printer.Tasks(list)
	},
}

var taskShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseTaskID(args[0])
		if err != nil {
			return err
		}
		store, err := taskStore(cmd)
		if err != nil {
			return err
		}
		task, err := store.Get(cmd.Context(), id)
		if err != nil {
			return err
		}
		return printer.Task(task)
	},
}

var taskUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Replace a task's title, description and status",
	Long: `Replace a task's fields. Fields not given as flags keep their current
values. Status is one of Pending, In-Progress, Completed (the labels
Pendente, Em andamento and Concluído are also accepted).

Examples:
  keeper task update 3 --status In-Progress
  keeper task update 3 --title "Write final report" --status Completed`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseTaskID(args[0])
		if err != nil {
			return err
		}
		store, err := taskStore(cmd)
		if err != nil {
			return err
		}
		task, err := store.Get(cmd.Context(), id)
		if err != nil {
			return err
		}

		if cmd.Flags().Changed("title") {
			task.Title, _ = cmd.Flags().GetString("title")
		}
		if cmd.Flags().Changed("description") {
			task.Description, _ = cmd.Flags().GetString("description")
		}
		if cmd.Flags().Changed("status") {
			raw, _ := cmd.Flags().GetString("status")
			task.Status = types.ParseStatus(raw)
		}

		if err := store.Update(cmd.Context(), id, task.Title, task.Description, task.Status); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s Updated task %s [%s]\n",
			ui.RenderPass("✓"), ui.RenderAccent(strconv.FormatInt(id, 10)), ui.RenderStatus(string(task.Status)))
		return nil
	},
}

var taskDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseTaskID(args[0])
		if err != nil {
			return err
		}
		store, err := taskStore(cmd)
		if err != nil {
			return err
		}
		if err := store.Delete(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s Deleted task %s\n", ui.RenderPass("✓"), ui.RenderAccent(args[0]))
		return nil
	},
}

var taskBackupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Copy the task database to the backup path",
	Long: `Copy the task database file byte for byte to the configured backup
path. An earlier backup at that path is overwritten.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		path, err := newTaskStore().Backup(cmd.Context())
		if err != nil {
			return err
		}
		if ok, err := printer.Structured(map[string]string{"backup": path}); ok {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s Backed up tasks to %s\n", ui.RenderPass("✓"), ui.RenderAccent(path))
		return nil
	},
}

func newTaskStore() *tasks.Store {
	return tasks.New(cfg.TasksDBPath(),
		tasks.WithBackupPath(cfg.TasksBackupPath()),
		tasks.WithLogger(logger))
}

// taskStore returns the configured store with its table created.
func taskStore(cmd *cobra.Command) (*tasks.Store, error) {
	store := newTaskStore()
	if err := store.Initialize(cmd.Context()); err != nil {
		return nil, err
	}
	return store, nil
}

func parseTaskID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, &types.ValidationError{Field: "id", Reason: fmt.Sprintf("must be a positive integer (got %q)", s)}
	}
	return id, nil
}

func init() {
	taskCreateCmd.Flags().String("title", "", "task title")
	taskCreateCmd.Flags().String("description", "", "task description")
	taskCreateCmd.Flags().BoolP("interactive", "i", false, "fill in fields with a terminal form")

	taskUpdateCmd.Flags().String("title", "", "new title")
	taskUpdateCmd.Flags().String("description", "", "new description")
	taskUpdateCmd.Flags().StringP("status", "s", "", "new status (Pending|In-Progress|Completed)")
	_ = taskUpdateCmd.RegisterFlagCompletionFunc("status", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		var out []string
		for _, s := range types.ValidStatuses() {
			out = append(out, string(s))
		}
		return out, cobra.ShellCompDirectiveNoFileComp
	})

	taskCmd.AddCommand(taskCreateCmd, taskListCmd, taskShowCmd, taskUpdateCmd, taskDeleteCmd, taskBackupCmd)
	rootCmd.AddCommand(taskCmd)
}
