package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	baseURL string
	timeout time.Duration
	asJSON  bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "tripledger-cli",
		Short: "TripLedger CLI tool",
		Long:  `A command line interface for interacting with the TripLedger API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the TripLedger API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")
	rootCmd.PersistentFlags().BoolVar(&asJSON, "json", false, "Print raw JSON responses")

	rootCmd.AddCommand(balancesCmd())
	rootCmd.AddCommand(planCmd())
	rootCmd.AddCommand(budgetsCmd())
	rootCmd.AddCommand(expensesCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func balancesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "balances <trip-id>",
		Short: "Show every member's net position",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var balances []struct {
				UserID     string `json:"user_id"`
				TotalPaid  string `json:"total_paid"`
				TotalOwed  string `json:"total_owed"`
				NetBalance string `json:"net_balance"`
				Currency   string `json:"currency"`
			}
			if err := getJSON("/api/v1/trips/"+args[0]+"/balances", &balances); err != nil {
				return err
			}

			if asJSON {
				printJSON(balances)
				return nil
			}

			fmt.Printf("%-16s %12s %12s %12s  %s\n", "USER", "PAID", "OWED", "NET", "CUR")
			for _, b := range balances {
				fmt.Printf("%-16s %12s %12s %12s  %s\n",
					truncate(b.UserID, 16), b.TotalPaid, b.TotalOwed, b.NetBalance, b.Currency)
			}
			return nil
		},
	}
}

func planCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "plan <trip-id>",
		Short: "Show the settlement plan for a trip",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var transfers []struct {
				FromUserID string `json:"from_user_id"`
				ToUserID   string `json:"to_user_id"`
				Amount     string `json:"amount"`
				Currency   string `json:"currency"`
			}
			if err := getJSON("/api/v1/trips/"+args[0]+"/settlements/plan", &transfers); err != nil {
				return err
			}

			if asJSON {
				printJSON(transfers)
				return nil
			}

			if len(transfers) == 0 {
				fmt.Println("trip is settled")
				return nil
			}

			for _, tr := range transfers {
				fmt.Printf("%s pays %s %s %s\n", tr.FromUserID, tr.ToUserID, tr.Amount, tr.Currency)
			}
			return nil
		},
	}
}

func budgetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "budgets <trip-id>",
		Short: "Show budget status for a trip",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var budgets []struct {
				Category  *string `json:"category"`
				Total     string  `json:"total"`
				Spent     string  `json:"spent"`
				Remaining string  `json:"remaining"`
				Currency  string  `json:"currency"`
				Level     string  `json:"level"`
			}
			if err := getJSON("/api/v1/trips/"+args[0]+"/budgets/status", &budgets); err != nil {
				return err
			}

			if asJSON {
				printJSON(budgets)
				return nil
			}

			fmt.Printf("%-16s %12s %12s %12s  %s\n", "CATEGORY", "TOTAL", "SPENT", "REMAINING", "LEVEL")
			for _, b := range budgets {
				category := "(trip)"
				if b.Category != nil {
					category = *b.Category
				}
				fmt.Printf("%-16s %12s %12s %12s  %s\n",
					truncate(category, 16), b.Total, b.Spent, b.Remaining, b.Level)
			}
			return nil
		},
	}
}

func expensesCmd() *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "expenses <trip-id>",
		Short: "List a trip's expenses",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/v1/trips/" + args[0] + "/expenses"
			if category != "" {
				path += "?category=" + category
			}

			var expenses []struct {
				ID          string `json:"id"`
				Title       string `json:"title"`
				PayerID     string `json:"payer_id"`
				BaseAmount  string `json:"base_amount"`
				Currency    string `json:"base_currency"`
				Category    string `json:"category"`
				ExpenseDate string `json:"expense_date"`
			}
			if err := getJSON(path, &expenses); err != nil {
				return err
			}

			if asJSON {
				printJSON(expenses)
				return nil
			}

			fmt.Printf("%-28s %-12s %12s %-4s %-12s\n", "TITLE", "PAYER", "AMOUNT", "CUR", "CATEGORY")
			for _, e := range expenses {
				fmt.Printf("%-28s %-12s %12s %-4s %-12s\n",
					truncate(e.Title, 28), truncate(e.PayerID, 12), e.BaseAmount, e.Currency, truncate(e.Category, 12))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "Filter by category")
	return cmd
}

func getJSON(path string, out any) error {
	client := &http.Client{Timeout: timeout}
	resp, err := client.Get(baseURL + path)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		return fmt.Errorf("%s (status %d): %s", apiErr.Error, resp.StatusCode, apiErr.Message)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

func printJSON(v any) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("failed to encode: %v\n", err)
		return
	}
	fmt.Println(string(out))
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
