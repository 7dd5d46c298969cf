package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/iho/gosettle/internal/infrastructure/postgres"
)

var (
	baseURL string
	timeout time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "gosettle-cli",
		Short: "GoSettle CLI tool",
		Long:  `A command line interface for interacting with the GoSettle API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the GoSettle API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	submitCmd := &cobra.Command{
		Use:   "submit [file]",
		Short: "Submit an MT202 payment instruction (reads stdin when no file is given)",
		Args:  cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			submitInstruction(args)
		},
	}
	rootCmd.AddCommand(submitCmd)

	// Intent commands
	intentCmd := &cobra.Command{
		Use:   "intent",
		Short: "Intent operations",
	}

	getCmd := &cobra.Command{
		Use:   "get <instruction-id>",
		Short: "Get an intent by instruction id",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			getJSON("/api/v1/intents/" + args[0])
		},
	}

	var listLimit, listOffset int
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List intents in creation order",
		Run: func(cmd *cobra.Command, args []string) {
			getJSON(fmt.Sprintf("/api/v1/intents/?limit=%d&offset=%d", listLimit, listOffset))
		},
	}
	listCmd.Flags().IntVar(&listLimit, "limit", 50, "Maximum number of intents to return")
	listCmd.Flags().IntVar(&listOffset, "offset", 0, "Offset into the intent list")

	var disputeReason string
	disputeCmd := &cobra.Command{
		Use:   "dispute <instruction-id>",
		Short: "Flag an intent for manual resolution",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			disputeIntent(args[0], disputeReason)
		},
	}
	disputeCmd.Flags().StringVar(&disputeReason, "reason", "", "Dispute reason (required)")
	_ = disputeCmd.MarkFlagRequired("reason")

	confirmCmd := &cobra.Command{
		Use:   "confirm <instruction-id>",
		Short: "Confirm a settled intent",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			postJSON("/api/v1/intents/"+args[0]+"/confirm", nil)
		},
	}

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Show intent counts per lifecycle status",
		Run: func(cmd *cobra.Command, args []string) {
			getJSON("/api/v1/intents/stats")
		},
	}

	intentCmd.AddCommand(getCmd, listCmd, disputeCmd, confirmCmd, statsCmd)
	rootCmd.AddCommand(intentCmd)

	// Migration commands
	var databaseURL, migrationsPath string
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migrations",
	}
	migrateCmd.PersistentFlags().StringVar(&databaseURL, "database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection URL")
	migrateCmd.PersistentFlags().StringVar(&migrationsPath, "path", "internal/infrastructure/postgres/migrations", "Path to migration files")

	migrateUpCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Run: func(cmd *cobra.Command, args []string) {
			if err := postgres.RunMigrations(databaseURL, migrationsPath); err != nil {
				fmt.Printf("Migration failed: %v\n", err)
				os.Exit(1)
			}
			fmt.Println("Migrations applied")
		},
	}

	migrateDownCmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back all migrations",
		Run: func(cmd *cobra.Command, args []string) {
			if err := postgres.RunMigrationsDown(databaseURL, migrationsPath); err != nil {
				fmt.Printf("Rollback failed: %v\n", err)
				os.Exit(1)
			}
			fmt.Println("Migrations rolled back")
		},
	}

	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd)
	rootCmd.AddCommand(migrateCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func submitInstruction(args []string) {
	var message []byte
	var err error
	if len(args) == 1 {
		message, err = os.ReadFile(args[0])
	} else {
		message, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		fmt.Printf("Error reading instruction: %v\n", err)
		os.Exit(1)
	}

	client := &http.Client{Timeout: timeout}
	resp, err := client.Post(baseURL+"/api/v1/instructions", "text/plain", bytes.NewReader(message))
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	switch resp.StatusCode {
	case http.StatusCreated:
		fmt.Println("Instruction recorded")
	case http.StatusOK:
		fmt.Println("Instruction already submitted")
	default:
		fmt.Printf("Submission failed (Status: %d)\nResponse: %s\n", resp.StatusCode, string(body))
		os.Exit(1)
	}
	printJSON(body)
}

func disputeIntent(id, reason string) {
	payload, _ := json.Marshal(map[string]string{"reason": reason})
	postJSON("/api/v1/intents/"+id+"/dispute", payload)
}

func getJSON(path string) {
	client := &http.Client{Timeout: timeout}
	resp, err := client.Get(baseURL + path)
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		fmt.Printf("Request failed (Status: %d)\nResponse: %s\n", resp.StatusCode, string(body))
		os.Exit(1)
	}
	printJSON(body)
}

func postJSON(path string, payload []byte) {
	client := &http.Client{Timeout: timeout}
	resp, err := client.Post(baseURL+path, "application/json", bytes.NewReader(payload))
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		fmt.Printf("Request failed (Status: %d)\nResponse: %s\n", resp.StatusCode, string(body))
		os.Exit(1)
	}
	printJSON(body)
}

func printJSON(body []byte) {
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, body, "", "  "); err != nil {
		fmt.Println(string(body))
		return
	}
	fmt.Println(pretty.String())
}
