package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/plannerhq/planner/pkg/client"
)

func newTaskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "task",
		Aliases: []string{"tasks"},
		Short:   "Manage tasks",
	}

	cmd.AddCommand(newTaskListCmd())
	cmd.AddCommand(newTaskAddCmd())
	cmd.AddCommand(newTaskDoneCmd())
	cmd.AddCommand(newTaskDeleteCmd())

	return cmd
}

func newTaskListCmd() *cobra.Command {
	var limit, offset int
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			list, err := apiClient.Tasks().List(ctx, limit, offset)
			if err != nil {
				return fmt.Errorf("failed to list tasks: %w", err)
			}

			format := getOutputFormat()
			if format != "table" {
				return printOutput(list)
			}

			table := NewTable("", "ID", "TITLE", "DUE", "CREATED")
			for _, t := range list.Tasks {
				if t.Done && !all {
					continue
				}
				due := "-"
				if t.DueDate != nil {
					due = t.DueDate.Format("2006-01-02")
				}
				table.AddRow(
					formatDone(t.Done),
					truncate(t.ID, 8),
					truncate(t.Title, 40),
					due,
					t.CreatedAt.Format("2006-01-02"),
				)
			}
			table.Render()
			fmt.Printf("\n%d of %d task(s)\n", len(list.Tasks), list.Total)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 50, "page size")
	cmd.Flags().IntVar(&offset, "offset", 0, "page offset")
	cmd.Flags().BoolVarP(&all, "all", "a", false, "include completed tasks")

	return cmd
}

func newTaskAddCmd() *cobra.Command {
	var notes, due string

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := client.CreateTaskRequest{
				Title: args[0],
				Notes: notes,
			}
			if due != "" {
				d, err := time.Parse("2006-01-02", due)
				if err != nil {
					return fmt.Errorf("invalid due date %q, want YYYY-MM-DD", due)
				}
				req.DueDate = &d
			}

			t, err := apiClient.Tasks().Create(context.Background(), req)
			if err != nil {
				return fmt.Errorf("failed to create task: %w", err)
			}

			fmt.Printf("Created task %s: %s\n", t.ID, t.Title)
			return nil
		},
	}

	cmd.Flags().StringVar(&notes, "notes", "", "task notes")
	cmd.Flags().StringVar(&due, "due", "", "due date (YYYY-MM-DD)")

	return cmd
}

func newTaskDoneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "done <id>",
		Short: "Mark a task as done",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			done := true
			t, err := apiClient.Tasks().Update(context.Background(), args[0], client.UpdateTaskRequest{Done: &done})
			if err != nil {
				return fmt.Errorf("failed to update task: %w", err)
			}

			fmt.Printf("Done: %s\n", t.Title)
			return nil
		},
	}
}

func newTaskDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := apiClient.Tasks().Delete(context.Background(), args[0]); err != nil {
				return fmt.Errorf("failed to delete task: %w", err)
			}

			fmt.Println("Task deleted")
			return nil
		},
	}
}
