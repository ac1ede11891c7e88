package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"punchlog/internal/config"
	"punchlog/internal/fragment"
	"punchlog/internal/session"
)

var ctx = context.Background()

// --- log ---

var logCmd = &cobra.Command{
	Use:   "log <text>",
	Short: "Submit a free-text statement about work performed",
	Long: `Submit a free-text statement about work performed.

The service classifies the text: plain facts are recorded, questions are
answered from the day's fragments, clock-in phrasing confirms attendance,
and report-generation asks are refused.

Examples:
  punchlog log "fixed the login redirect bug"
  punchlog log "what did I do yesterday"
  punchlog log --date 2025-06-01 "reviewed the onboarding PR"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		date, _ := cmd.Flags().GetString("date")
		text := strings.Join(args, " ")

		s, err := newCLISession()
		if err != nil {
			return err
		}
		s.Bootstrap()
		if date != "" {
			// One-shot submit: skip the refresh the date change stages.
			_ = s.SetDate(date)
		}

		call, err := s.BeginSubmit(text, false)
		if err != nil {
			return describeLocalError(err)
		}
		s.Execute(ctx, call)
		if s.Err() != "" {
			return fmt.Errorf("%s", s.Err())
		}

		renderDay(s)
		if notice, ok := s.Notice(); ok {
			printWarning("%s", notice)
		}
		return nil
	},
}

func init() {
	logCmd.Flags().String("date", "", "occurred date (YYYY-MM-DD, default today)")
}

// --- today ---

var todayCmd = &cobra.Command{
	Use:   "today",
	Short: "Show the day's fragments, clock-in state, and summary",
	RunE: func(cmd *cobra.Command, args []string) error {
		date, _ := cmd.Flags().GetString("date")
		all, _ := cmd.Flags().GetBool("all")

		s, err := newCLISession()
		if err != nil {
			return err
		}
		s.Bootstrap()
		if s.IdentityRequired() && !all {
			return describeLocalError(session.ErrIdentityRequired)
		}
		if all {
			s.ToggleAllView()
		}
		if date == "" {
			date = s.Date()
		}
		// One explicit scope query under the final flag and date.
		s.Execute(ctx, s.SetDate(date))

		renderDay(s)
		return nil
	},
}

func init() {
	todayCmd.Flags().String("date", "", "date to show (YYYY-MM-DD, default today)")
	todayCmd.Flags().Bool("all", false, "show all authors")
}

// --- clock-in ---

var clockInCmd = &cobra.Command{
	Use:   "clock-in",
	Short: "Confirm attendance for today",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newCLISession()
		if err != nil {
			return err
		}
		s.Bootstrap()

		call, err := s.BeginClockIn()
		if err != nil {
			return describeLocalError(err)
		}
		s.Execute(ctx, call)
		if s.Err() != "" {
			return fmt.Errorf("%s", s.Err())
		}

		printSuccess("Clocked in for %s on %s", s.Author(), s.Date())
		return nil
	},
}

// --- summarize ---

var summarizeCmd = &cobra.Command{
	Use:   "summarize",
	Short: "Compose and store the daily summary",
	RunE: func(cmd *cobra.Command, args []string) error {
		date, _ := cmd.Flags().GetString("date")

		s, err := newCLISession()
		if err != nil {
			return err
		}
		s.Bootstrap()
		if date != "" {
			_ = s.SetDate(date)
		}

		call, err := s.BeginSummarize()
		if err != nil {
			return describeLocalError(err)
		}
		s.Execute(ctx, call)
		if s.Err() != "" {
			return fmt.Errorf("%s", s.Err())
		}

		if sum, ok := s.Summary(); ok {
			fmt.Println(sum)
		} else {
			printWarning("Nothing to summarize for %s", s.Date())
		}
		return nil
	},
}

func init() {
	summarizeCmd.Flags().String("date", "", "date to summarize (YYYY-MM-DD, default today)")
}

// --- delete ---

var deleteCmd = &cobra.Command{
	Use:   "delete <fragment-id>",
	Short: "Delete one fragment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		id := args[0]

		if !yes {
			printWarning("This permanently deletes fragment %s. Use --yes to confirm.", id)
			return nil
		}

		s, err := newCLISession()
		if err != nil {
			return err
		}
		s.Bootstrap()

		s.RequestDelete(fragment.Fragment{ID: id})
		call, err := s.BeginDelete()
		if err != nil {
			return describeLocalError(err)
		}
		s.Execute(ctx, call)
		if s.Err() != "" {
			return fmt.Errorf("%s", s.Err())
		}

		printSuccess("Deleted fragment %s", id)
		renderDay(s)
		return nil
	},
}

func init() {
	deleteCmd.Flags().Bool("yes", false, "confirm the deletion")
}

// --- author ---

var authorCmd = &cobra.Command{
	Use:   "author",
	Short: "Show or change the remembered author identity",
	RunE: func(cmd *cobra.Command, args []string) error {
		ids := newIdentityStore()
		if name, ok := ids.Get(); ok {
			fmt.Println(name)
			return nil
		}
		printWarning("No author configured. Set one with: punchlog author set <name>")
		return nil
	},
}

var authorSetCmd = &cobra.Command{
	Use:   "set <name>",
	Short: "Set the remembered author identity",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := strings.TrimSpace(args[0])
		if name == "" {
			return fmt.Errorf("author name must not be blank")
		}
		if err := newIdentityStore().Set(name); err != nil {
			return fmt.Errorf("saving identity: %w", err)
		}
		printSuccess("Author set to %s", name)
		return nil
	},
}

var authorClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Forget the remembered author identity",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := newIdentityStore().Clear(); err != nil {
			return fmt.Errorf("clearing identity: %w", err)
		}
		printSuccess("Author cleared")
		return nil
	},
}

func init() {
	authorCmd.AddCommand(authorSetCmd)
	authorCmd.AddCommand(authorClearCmd)
}

// --- config ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or update configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		keys := config.ShowAll(cfg)
		for _, k := range keys {
			fmt.Printf("  %s = %s\n", colorize(colorBold, k.Key), k.Value)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		if err := config.SetKey(key, value); err != nil {
			return err
		}

		printSuccess("Set %s = %s", key, value)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

// --- rendering helpers ---

// describeLocalError turns the session's validation sentinels into
// actionable CLI messages.
func describeLocalError(err error) error {
	switch err {
	case session.ErrIdentityRequired:
		return fmt.Errorf("no author configured (run: punchlog author set <name>)")
	case session.ErrEmptyText:
		return fmt.Errorf("nothing to submit")
	default:
		return err
	}
}

// renderDay prints the session's current view: header, fragments, derived
// indicators.
func renderDay(s *session.Session) {
	scope := s.Author()
	if s.AllView() {
		scope = "all authors"
	}
	fmt.Printf("%s (%s)\n", colorize(colorBold, s.Date()), scope)

	frags := s.Fragments()
	if len(frags) == 0 {
		fmt.Println(colorize(colorDim, "  no fragments"))
	}
	for _, f := range frags {
		line := f.Content
		if s.AllView() && f.Author != "" {
			line = f.Author + ": " + line
		}
		marker := "•"
		if f.Type == fragment.TypeSummary {
			marker = "Σ"
		}
		id := ""
		if f.ID != "" {
			id = colorize(colorDim, "  ["+shortID(f.ID)+"]")
		}
		fmt.Printf("  %s %s%s\n", marker, line, id)
	}

	if s.ClockedIn() {
		printStatus("Clock", "in")
	} else {
		printStatus("Clock", "not clocked in")
	}
	if sum, ok := s.Summary(); ok {
		printStatus("Summary", "%s", firstLine(sum))
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
