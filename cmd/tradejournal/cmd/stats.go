package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradejournal/analytics"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show performance statistics",
	Long: `Compute performance statistics over closed trades.

Examples:
  tradejournal stats --from 2026-01-01 --to 2026-01-31
  tradejournal stats --account "Apex 50K" --org > review.org`,
	Args: cobra.NoArgs,
	RunE: runStats,
}

var (
	statsOrg     bool
	statsBalance float64
)

func init() {
	rootCmd.AddCommand(statsCmd)

	statsCmd.Flags().StringVarP(&tradesAccount, "account", "a", "", "account ID or name")
	statsCmd.Flags().StringVar(&tradesFrom, "from", "", "first day, YYYY-MM-DD")
	statsCmd.Flags().StringVar(&tradesTo, "to", "", "last day, YYYY-MM-DD")
	statsCmd.Flags().StringVarP(&tradesSymbol, "symbol", "s", "", "instrument root")
	statsCmd.Flags().StringVar(&tradesSetup, "setup", "", "setup name")
	statsCmd.Flags().BoolVar(&statsOrg, "org", false, "write an Org-mode review instead of the text report")
	statsCmd.Flags().Float64VarP(&statsBalance, "balance", "b", 0, "starting balance (default: account or config)")
}

func runStats(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	f, err := a.filter(cmd)
	if err != nil {
		return err
	}
	f.ClosedOnly = true

	opt := analytics.Options{
		StartingBalance: a.cfg.Analytics.StartingBalance,
		Location:        a.loc,
		From:            f.From,
		To:              f.To,
	}
	if f.AccountID != "" {
		acct, err := a.store.GetAccount(cmd.Context(), a.user(), f.AccountID)
		if err != nil {
			return err
		}
		opt.Account = acct.Name
		if acct.StartingBalance > 0 {
			opt.StartingBalance = acct.StartingBalance
		}
	}
	if statsBalance > 0 {
		opt.StartingBalance = statsBalance
	}

	trades, err := a.store.ListTrades(cmd.Context(), f)
	if err != nil {
		return fmt.Errorf("query trades: %w", err)
	}
	rep := analytics.Compute(trades, opt)

	if statsOrg {
		return analytics.WriteOrg(os.Stdout, rep)
	}
	analytics.PrintReport(os.Stdout, rep)
	return nil
}
