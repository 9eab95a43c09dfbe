package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show dashboard summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			format := getOutputFormat()
			if format != "table" {
				summary := map[string]interface{}{}

				user, err := apiClient.GetCurrentUser(ctx)
				if err == nil {
					summary["email"] = user.Email
					summary["plan"] = user.Plan
				}
				tasks, err := apiClient.Tasks().List(ctx, 1, 0)
				if err == nil {
					summary["tasks"] = tasks.Total
				}
				habits, err := apiClient.Habits().List(ctx)
				if err == nil {
					summary["habits"] = len(habits)
				}
				return printOutput(summary)
			}

			fmt.Println("Planner Dashboard")
			fmt.Println(strings.Repeat("=", 40))

			// Account
			user, err := apiClient.GetCurrentUser(ctx)
			if err != nil {
				fmt.Printf("  Account:   (error: %v)\n", err)
			} else {
				fmt.Printf("  Account:   %s (%s plan)\n", user.Email, user.Plan)
			}

			// Tasks
			tasks, err := apiClient.Tasks().List(ctx, 200, 0)
			if err != nil {
				fmt.Printf("  Tasks:     (error: %v)\n", err)
			} else {
				open := 0
				for _, t := range tasks.Tasks {
					if !t.Done {
						open++
					}
				}
				fmt.Printf("  Tasks:     %d open (%d total)\n", open, tasks.Total)
			}

			// Habits
			habits, err := apiClient.Habits().List(ctx)
			if err != nil {
				fmt.Printf("  Habits:    (error: %v)\n", err)
			} else {
				fmt.Printf("  Habits:    %d tracked\n", len(habits))
			}

			return nil
		},
	}
}
