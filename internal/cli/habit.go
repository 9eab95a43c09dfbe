package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/plannerhq/planner/pkg/client"
)

func newHabitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "habit",
		Aliases: []string{"habits"},
		Short:   "Track habits",
	}

	cmd.AddCommand(newHabitListCmd())
	cmd.AddCommand(newHabitAddCmd())
	cmd.AddCommand(newHabitCheckCmd())
	cmd.AddCommand(newHabitShowCmd())
	cmd.AddCommand(newHabitDeleteCmd())

	return cmd
}

func newHabitListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List habits",
		RunE: func(cmd *cobra.Command, args []string) error {
			habits, err := apiClient.Habits().List(context.Background())
			if err != nil {
				return fmt.Errorf("failed to list habits: %w", err)
			}

			format := getOutputFormat()
			if format != "table" {
				return printOutput(habits)
			}

			table := NewTable("ID", "NAME", "CADENCE", "CREATED")
			for _, h := range habits {
				table.AddRow(
					truncate(h.ID, 8),
					truncate(h.Name, 40),
					h.Cadence,
					h.CreatedAt.Format("2006-01-02"),
				)
			}
			table.Render()
			return nil
		},
	}
}

func newHabitAddCmd() *cobra.Command {
	var description, cadence string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a habit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := apiClient.Habits().Create(context.Background(), client.CreateHabitRequest{
				Name:        args[0],
				Description: description,
				Cadence:     cadence,
			})
			if err != nil {
				return fmt.Errorf("failed to create habit: %w", err)
			}

			fmt.Printf("Created habit %s: %s\n", h.ID, h.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&description, "description", "", "habit description")
	cmd.Flags().StringVar(&cadence, "cadence", "daily", "cadence: daily or weekly")

	return cmd
}

func newHabitCheckCmd() *cobra.Command {
	var day string

	cmd := &cobra.Command{
		Use:   "check <id>",
		Short: "Record a check-in for a habit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			streak, err := apiClient.Habits().CheckIn(context.Background(), args[0], day)
			if err != nil {
				return fmt.Errorf("failed to check in: %w", err)
			}

			fmt.Printf("Checked in. Current streak: %d day(s), longest: %d\n", streak.Current, streak.Longest)
			return nil
		},
	}

	cmd.Flags().StringVar(&day, "day", "", "check-in day (YYYY-MM-DD, default today)")

	return cmd
}

func newHabitShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a habit with its streak",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hs, err := apiClient.Habits().Get(context.Background(), args[0])
			if err != nil {
				return fmt.Errorf("failed to get habit: %w", err)
			}

			format := getOutputFormat()
			if format != "table" {
				return printOutput(hs)
			}

			fmt.Printf("Name:    %s\n", hs.Habit.Name)
			if hs.Habit.Description != "" {
				fmt.Printf("About:   %s\n", hs.Habit.Description)
			}
			fmt.Printf("Cadence: %s\n", hs.Habit.Cadence)
			fmt.Printf("Streak:  %d day(s) (longest %d)\n", hs.Streak.Current, hs.Streak.Longest)
			return nil
		},
	}
}

func newHabitDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a habit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := apiClient.Habits().Delete(context.Background(), args[0]); err != nil {
				return fmt.Errorf("failed to delete habit: %w", err)
			}

			fmt.Println("Habit deleted")
			return nil
		},
	}
}
