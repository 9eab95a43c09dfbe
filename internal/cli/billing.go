package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newBillingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "billing",
		Short: "Subscription and billing commands",
	}

	cmd.AddCommand(newBillingStatusCmd())
	cmd.AddCommand(newBillingSyncCmd())
	cmd.AddCommand(newBillingPlansCmd())
	cmd.AddCommand(newBillingUpgradeCmd())
	cmd.AddCommand(newBillingPortalCmd())

	return cmd
}

func newBillingStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the stored subscription state",
		RunE: func(cmd *cobra.Command, args []string) error {
			state, err := apiClient.Billing().GetSubscription(context.Background())
			if err != nil {
				return fmt.Errorf("failed to get subscription: %w", err)
			}

			format := getOutputFormat()
			if format != "table" {
				return printOutput(state)
			}

			fmt.Printf("Plan: %s\n", state.Plan)
			if state.BillingSubscriptionID != nil {
				fmt.Printf("Subscription: %s\n", *state.BillingSubscriptionID)
			}
			return nil
		},
	}
}

func newBillingSyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Reconcile the subscription against the billing provider",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := apiClient.Billing().Sync(context.Background())
			if err != nil {
				return fmt.Errorf("sync request failed: %w", err)
			}

			format := getOutputFormat()
			if format != "table" {
				return printOutput(result)
			}

			if !result.Success {
				fmt.Printf("Sync failed: %s\n", result.Error)
				fmt.Println("The stored plan was left unchanged.")
				return nil
			}

			fmt.Printf("Synced. Plan: %s\n", result.Plan)
			if result.Subscription != nil {
				fmt.Printf("Subscription: %s (%s)\n", result.Subscription.ID, result.Subscription.Status)
			}
			return nil
		},
	}
}

func newBillingPlansCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "plans",
		Short: "List available plans",
		RunE: func(cmd *cobra.Command, args []string) error {
			plans, err := apiClient.Billing().ListPlans(context.Background())
			if err != nil {
				return fmt.Errorf("failed to list plans: %w", err)
			}

			format := getOutputFormat()
			if format != "table" {
				return printOutput(plans)
			}

			table := NewTable("PLAN", "PRICE", "CURRENT")
			for _, p := range plans {
				current := ""
				if p.IsCurrent {
					current = "yes"
				}
				table.AddRow(p.Name, fmt.Sprintf("$%.0f/%s", p.Price, p.Interval), current)
			}
			table.Render()
			return nil
		},
	}
}

func newBillingUpgradeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "upgrade",
		Short: "Get a checkout link for the pro plan",
		RunE: func(cmd *cobra.Command, args []string) error {
			url, err := apiClient.Billing().Checkout(context.Background())
			if err != nil {
				return fmt.Errorf("failed to start checkout: %w", err)
			}

			fmt.Println("Open this link to complete checkout:")
			fmt.Println(url)
			return nil
		},
	}
}

func newBillingPortalCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "portal",
		Short: "Get a link to the billing provider's customer portal",
		RunE: func(cmd *cobra.Command, args []string) error {
			url, err := apiClient.Billing().Portal(context.Background())
			if err != nil {
				return fmt.Errorf("failed to get portal link: %w", err)
			}

			fmt.Println(url)
			return nil
		},
	}
}
