package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"planner/internal/core"
	"planner/internal/kv"
	"planner/internal/signup"
)

var monthCmd = &cobra.Command{
	Use:   "month",
	Short: "Show one month: notes, expenses and the day calendar",
	Args:  cobra.NoArgs,
	RunE:  runMonth,
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List every month since signup, most recent first",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

var notesCmd = &cobra.Command{
	Use:   "notes",
	Short: "Show the notes archive of a year",
	Args:  cobra.NoArgs,
	RunE:  runNotes,
}

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Show which journal days of a year have entries",
	Args:  cobra.NoArgs,
	RunE:  runJournal,
}

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Print the signup date",
	Args:  cobra.NoArgs,
	RunE:  runSignup,
}

var keysCmd = &cobra.Command{
	Use:   "keys [prefix]",
	Short: "List stored keys, optionally under a prefix",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runKeys,
}

var flagAllMonths bool

func init() {
	notesCmd.Flags().BoolVar(&flagAllMonths, "all", false, "Include months without notes")
	rootCmd.AddCommand(monthCmd, historyCmd, notesCmd, journalCmd, signupCmd, keysCmd)
}

func runMonth(cmd *cobra.Command, _ []string) error {
	return withSession(cmd, func(ctx context.Context, s *session) error {
		scope, err := selectedScope(s.now())
		if err != nil {
			return err
		}
		p, err := s.openPlanner(ctx, scope)
		if err != nil {
			return err
		}
		v := p.View()
		out := cmd.OutOrStdout()
		if flagJSON {
			return printJSON(out, v)
		}

		fmt.Fprintf(out, "%s\n\n", scope.Label())
		if strings.TrimSpace(v.Notes) != "" {
			fmt.Fprintf(out, "Notes:\n%s\n\n", v.Notes)
		}
		if len(v.Expenses) > 0 {
			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "CATEGORY\tDESCRIPTION\tAMOUNT")
			for _, e := range v.Expenses {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", e.Category, e.Description, core.FormatAmount(e.Amount))
			}
			fmt.Fprintf(tw, "\t%s\t%s\n", "Total", core.FormatAmount(v.TotalExpenses))
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintln(out)
		}
		return renderCalendar(out, v.Calendar)
	})
}

func renderCalendar(out io.Writer, days []core.DaySummary) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DAY\tTODOS\tHABITS\tDONE")
	for _, d := range days {
		if !d.HasTodos && d.CompletedHabits == 0 {
			continue
		}
		done := ""
		if d.FullyCompleted {
			done = "yes"
		}
		fmt.Fprintf(tw, "%d\t%d/%d\t%d/%d\t%s\n",
			d.Day, d.CompletedTodos, d.TotalTodos, d.CompletedHabits, d.TotalHabits, done)
	}
	return tw.Flush()
}

func runHistory(cmd *cobra.Command, _ []string) error {
	return withSession(cmd, func(ctx context.Context, s *session) error {
		current, err := selectedScope(s.now())
		if err != nil {
			return err
		}
		anchor, err := signup.Init(ctx, s.store, s.scheme, s.now())
		if err != nil {
			return err
		}
		months, err := s.archive.History(ctx, anchor.Scope(), current)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if flagJSON {
			return printJSON(out, months)
		}
		tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "MONTH\tEXPENSES\tTOTAL\tNOTES")
		for _, m := range months {
			scope := core.Scope{Year: m.Year, Month: m.Month}
			fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n",
				scope.Label(), len(m.Expenses), core.FormatAmount(m.TotalExpenses), preview(m.Notes, 40))
		}
		return tw.Flush()
	})
}

func runNotes(cmd *cobra.Command, _ []string) error {
	return withSession(cmd, func(ctx context.Context, s *session) error {
		months, err := s.archive.NotesArchive(ctx, selectedYear(s.now()))
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if flagJSON {
			return printJSON(out, months)
		}
		shown := 0
		for _, m := range months {
			if !m.HasContent && !flagAllMonths {
				continue
			}
			shown++
			fmt.Fprintf(out, "== %s %d ==\n%s\n\n", m.MonthName, m.Year, strings.TrimRight(m.Notes, "\n"))
		}
		if shown == 0 {
			fmt.Fprintln(out, "No notes found.")
		}
		return nil
	})
}

func runJournal(cmd *cobra.Command, _ []string) error {
	return withSession(cmd, func(ctx context.Context, s *session) error {
		months, err := s.archive.JournalArchive(ctx, selectedYear(s.now()))
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if flagJSON {
			return printJSON(out, months)
		}
		tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "MONTH\tENTRIES\tDAYS")
		for _, m := range months {
			var days []string
			for _, week := range m.Weeks {
				for _, d := range week {
					if d.HasContent {
						days = append(days, strconv.Itoa(d.Day))
					}
				}
			}
			fmt.Fprintf(tw, "%s\t%d\t%s\n", m.MonthName, len(days), strings.Join(days, ","))
		}
		return tw.Flush()
	})
}

func runSignup(cmd *cobra.Command, _ []string) error {
	return withSession(cmd, func(ctx context.Context, s *session) error {
		anchor, err := signup.Init(ctx, s.store, s.scheme, s.now())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), signup.Format(anchor.Date))
		return nil
	})
}

func runKeys(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(ctx context.Context, s *session) error {
		lister, ok := s.store.(kv.Lister)
		if !ok {
			return errors.New("store cannot list keys")
		}
		prefix := s.scheme.Prefix
		if len(args) == 1 {
			prefix += args[0]
		}
		found, err := lister.Keys(ctx, prefix)
		if err != nil {
			return err
		}
		sort.Strings(found)
		out := cmd.OutOrStdout()
		if flagJSON {
			return printJSON(out, found)
		}
		for _, k := range found {
			fmt.Fprintln(out, k)
		}
		return nil
	})
}

func preview(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
