package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

var noColor bool

var rootCmd = &cobra.Command{
	Use:   "punchlog",
	Short: "Append-only work log of daily fact fragments",
	Long: `punchlog keeps an append-only work log: free-text statements are
classified into fact fragments, clock-in confirmations, and daily
summaries, scoped to an author and a calendar date.

Run "punchlog serve" to start the service, then log from any shell:

  punchlog author set alice
  punchlog log "fixed the login redirect bug"
  punchlog today
  punchlog ui`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(logCmd)
	rootCmd.AddCommand(todayCmd)
	rootCmd.AddCommand(clockInCmd)
	rootCmd.AddCommand(summarizeCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(authorCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(uiCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
