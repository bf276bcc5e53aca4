package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradejournal/discipline"
	"github.com/rustyeddy/tradejournal/journal"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Manage discipline rules and the daily checklist",
	Long: `Manage personal trading rules.

Subcommands:
  list        - Show today's checklist (or --day)
  add         - Add a rule
  check       - Mark a rule followed (or --broken) for a day
  compliance  - Summarize rule compliance over a period

Examples:
  tradejournal rules add "No trades in the first 5 minutes" --category entry
  tradejournal rules check 01J... --note "waited"
  tradejournal rules compliance --from 2026-01-01`,
}

var rulesListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the checklist for a day",
	Args:  cobra.NoArgs,
	RunE:  runRulesList,
}

var rulesAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a rule",
	Args:  cobra.ExactArgs(1),
	RunE:  runRulesAdd,
}

var rulesCheckCmd = &cobra.Command{
	Use:   "check <rule-id>",
	Short: "Record whether a rule was followed",
	Args:  cobra.ExactArgs(1),
	RunE:  runRulesCheck,
}

var rulesComplianceCmd = &cobra.Command{
	Use:   "compliance",
	Short: "Summarize compliance and today's policy violations",
	Args:  cobra.NoArgs,
	RunE:  runRulesCompliance,
}

var (
	rulesDay         string
	rulesCategory    string
	rulesDescription string
	rulesBroken      bool
	rulesNote        string
)

func init() {
	rootCmd.AddCommand(rulesCmd)
	rulesCmd.AddCommand(rulesListCmd, rulesAddCmd, rulesCheckCmd, rulesComplianceCmd)

	rulesListCmd.Flags().StringVar(&rulesDay, "day", "", "day, YYYY-MM-DD (default today)")
	rulesCheckCmd.Flags().StringVar(&rulesDay, "day", "", "day, YYYY-MM-DD (default today)")
	rulesCheckCmd.Flags().BoolVar(&rulesBroken, "broken", false, "record the rule as broken")
	rulesCheckCmd.Flags().StringVar(&rulesNote, "note", "", "note for the day")
	rulesAddCmd.Flags().StringVar(&rulesCategory, "category", "", "rule category")
	rulesAddCmd.Flags().StringVar(&rulesDescription, "description", "", "longer description")
	rulesComplianceCmd.Flags().StringVar(&tradesFrom, "from", "", "first day, YYYY-MM-DD")
	rulesComplianceCmd.Flags().StringVar(&tradesTo, "to", "", "last day, YYYY-MM-DD")
}

func (a *app) day() (string, error) {
	if rulesDay == "" {
		return time.Now().In(a.loc).Format(journal.DayLayout), nil
	}
	if _, err := time.Parse(journal.DayLayout, rulesDay); err != nil {
		return "", fmt.Errorf("day: %w", err)
	}
	return rulesDay, nil
}

func runRulesList(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	day, err := a.day()
	if err != nil {
		return err
	}
	items, err := discipline.Checklist(cmd.Context(), a.store, a.user(), day)
	if err != nil {
		return err
	}

	fmt.Printf("Checklist %s\n\n", day)
	for _, it := range items {
		box := "[ ]"
		switch {
		case it.Checked && it.Followed:
			box = "[X]"
		case it.Checked:
			box = "[-]"
		}
		fmt.Printf("- %s %s  (%s)", box, it.Rule.Name, it.Rule.ID)
		if it.Note != "" {
			fmt.Printf("  %s", it.Note)
		}
		fmt.Println()
	}
	return nil
}

func runRulesAdd(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	r := journal.Rule{
		UserID:      a.user(),
		Name:        args[0],
		Description: rulesDescription,
		Category:    rulesCategory,
		Active:      true,
	}
	if err := journal.Validate(r); err != nil {
		return err
	}
	if err := a.store.CreateRule(cmd.Context(), &r); err != nil {
		return err
	}
	fmt.Printf("✓ Added rule %s (%s)\n", r.Name, r.ID)
	return nil
}

func runRulesCheck(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	day, err := a.day()
	if err != nil {
		return err
	}
	c := journal.RuleCheck{
		UserID:   a.user(),
		RuleID:   args[0],
		Day:      day,
		Followed: !rulesBroken,
		Note:     rulesNote,
	}
	if err := a.store.SetRuleCheck(cmd.Context(), &c); err != nil {
		return err
	}
	state := "followed"
	if rulesBroken {
		state = "broken"
	}
	fmt.Printf("✓ %s: %s on %s\n", args[0], state, day)
	return nil
}

func runRulesCompliance(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	for _, d := range []string{tradesFrom, tradesTo} {
		if d == "" {
			continue
		}
		if _, err := time.Parse(journal.DayLayout, d); err != nil {
			return fmt.Errorf("day %q: %w", d, err)
		}
	}
	rep, err := discipline.Compliance(cmd.Context(), a.store, a.user(), tradesFrom, tradesTo, a.loc)
	if err != nil {
		return err
	}

	fmt.Printf("Checks followed:  %d/%d (%.2f%%)\n", rep.Followed, rep.Checks, rep.Rate)
	fmt.Printf("Compliant days:   %d/%d (%.2f%%)\n", rep.CompliantDays, rep.Days, rep.CompliantRate)
	fmt.Printf("Streak:           current %d, longest %d\n", rep.CurrentStreak, rep.LongestStreak)
	fmt.Printf("Avg P&L per day:  compliant %.2f, non-compliant %.2f\n\n", rep.AvgPnLCompliant, rep.AvgPnLNonCompliant)

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RULE\tCHECKED\tFOLLOWED\tRATE")
	for _, r := range rep.Rules {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%.2f%%\n", r.Name, r.Checked, r.Followed, r.Rate)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if !a.cfg.Discipline.Enabled() {
		return nil
	}
	today := time.Now().In(a.loc).Format(journal.DayLayout)
	d, err := discipline.EvaluateDay(cmd.Context(), a.store, a.user(), a.cfg.Discipline, today, a.loc)
	if err != nil {
		return err
	}
	fmt.Printf("\nToday (%s): %d trades, net %.2f\n", today, d.Trades, d.NetPnL)
	for _, v := range d.Violations {
		fmt.Printf("  ! %s: %s\n", v.Code, v.Msg)
	}
	if d.Allowed {
		fmt.Println("  within policy")
	}
	return nil
}
