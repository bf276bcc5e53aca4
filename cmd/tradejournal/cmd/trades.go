package cmd

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradejournal/journal"
)

var tradesCmd = &cobra.Command{
	Use:   "trades",
	Short: "List, inspect and manage trades",
	Long: `Query and manage journal trades.

Subcommands:
  list     - List trades with filters
  show     - Show one trade as an Org entry
  delete   - Soft delete (or --hard) a trade
  restore  - Restore a soft-deleted trade
  export   - Write trades as CSV or Org, or copy them to another SQLite file
  day      - List trades closed on a day as Org entries

Examples:
  tradejournal trades list --from 2026-01-01 --symbol MES
  tradejournal trades show 01J...
  tradejournal trades export --format org -o january.org`,
}

var tradesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List trades",
	Args:  cobra.NoArgs,
	RunE:  runTradesList,
}

var tradesShowCmd = &cobra.Command{
	Use:   "show <trade-id>",
	Short: "Show one trade",
	Args:  cobra.ExactArgs(1),
	RunE:  runTradesShow,
}

var tradesDeleteCmd = &cobra.Command{
	Use:   "delete <trade-id>",
	Short: "Delete a trade",
	Args:  cobra.ExactArgs(1),
	RunE:  runTradesDelete,
}

var tradesRestoreCmd = &cobra.Command{
	Use:   "restore <trade-id>",
	Short: "Restore a deleted trade",
	Args:  cobra.ExactArgs(1),
	RunE:  runTradesRestore,
}

var tradesExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export trades as CSV or Org",
	Args:  cobra.NoArgs,
	RunE:  runTradesExport,
}

var tradesDayCmd = &cobra.Command{
	Use:   "day [YYYY-MM-DD]",
	Short: "List trades closed on a day (default today)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runTradesDay,
}

var (
	tradesAccount string
	tradesFrom    string
	tradesTo      string
	tradesSymbol  string
	tradesSetup   string
	tradesDeleted bool
	tradesLimit   int

	tradesHard   bool
	exportFormat string
	exportOutput string
)

func init() {
	rootCmd.AddCommand(tradesCmd)
	tradesCmd.AddCommand(tradesListCmd, tradesShowCmd, tradesDeleteCmd, tradesRestoreCmd, tradesExportCmd, tradesDayCmd)

	for _, c := range []*cobra.Command{tradesListCmd, tradesExportCmd} {
		c.Flags().StringVarP(&tradesAccount, "account", "a", "", "account ID or name")
		c.Flags().StringVar(&tradesFrom, "from", "", "first entry day, YYYY-MM-DD")
		c.Flags().StringVar(&tradesTo, "to", "", "last entry day, YYYY-MM-DD")
		c.Flags().StringVarP(&tradesSymbol, "symbol", "s", "", "instrument root or contract")
		c.Flags().StringVar(&tradesSetup, "setup", "", "setup name")
	}
	tradesListCmd.Flags().BoolVar(&tradesDeleted, "deleted", false, "list deleted trades instead")
	tradesListCmd.Flags().IntVarP(&tradesLimit, "limit", "l", 0, "maximum trades to list")

	tradesDeleteCmd.Flags().BoolVar(&tradesHard, "hard", false, "remove permanently instead of soft delete")

	tradesExportCmd.Flags().StringVarP(&exportFormat, "format", "f", "csv", "csv, org or sqlite")
	tradesExportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default stdout)")
}

func (a *app) filter(cmd *cobra.Command) (journal.Filter, error) {
	f := journal.Filter{
		UserID:      a.user(),
		Symbol:      tradesSymbol,
		Setup:       tradesSetup,
		OnlyDeleted: tradesDeleted,
		Limit:       tradesLimit,
	}
	if tradesAccount != "" {
		acct, err := a.store.FindAccount(cmd.Context(), f.UserID, tradesAccount)
		if err != nil {
			return f, err
		}
		f.AccountID = acct.ID
	}
	var err error
	f.From, f.To, err = dayRange(tradesFrom, tradesTo, a.loc)
	return f, err
}

func runTradesList(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	f, err := a.filter(cmd)
	if err != nil {
		return err
	}
	trades, err := a.store.ListTrades(cmd.Context(), f)
	if err != nil {
		return fmt.Errorf("query trades: %w", err)
	}

	printTrades(os.Stdout, trades, a)
	return nil
}

func printTrades(w io.Writer, trades []journal.Trade, a *app) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tENTRY\tSYMBOL\tSIDE\tQTY\tENTRY PX\tEXIT PX\tNET\tR\tSETUP")
	var net float64
	for _, t := range trades {
		r := "-"
		if t.RMultiple != nil {
			r = fmt.Sprintf("%.2f", *t.RMultiple)
		}
		exit := "open"
		if !t.IsOpen() {
			exit = fmt.Sprintf("%.2f", t.ExitPrice)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%.2f\t%s\t%.2f\t%s\t%s\n",
			t.ID, t.EntryTime.In(a.loc).Format("2006-01-02 15:04"), t.Symbol, t.Side, t.Contracts,
			t.EntryPrice, exit, t.NetPnL, r, t.Setup)
		net += t.NetPnL
	}
	_ = tw.Flush()
	fmt.Fprintf(w, "\n%d trades, net %.2f\n", len(trades), net)
}

func runTradesShow(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	t, err := a.store.GetTrade(cmd.Context(), a.user(), args[0])
	if err != nil {
		return fmt.Errorf("get trade: %w", err)
	}
	fmt.Println(journal.FormatTradeOrg(t))

	shots, err := a.store.ListScreenshots(cmd.Context(), a.user(), t.ID)
	if err != nil {
		return err
	}
	for _, s := range shots {
		fmt.Printf("- [[%s][%s]]\n", s.URL, s.Caption)
	}
	return nil
}

func runTradesDelete(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if tradesHard {
		err = a.store.DeleteTrade(cmd.Context(), a.user(), args[0])
	} else {
		err = a.store.SoftDeleteTrade(cmd.Context(), a.user(), args[0])
	}
	if err != nil {
		return err
	}
	fmt.Printf("✓ Deleted %s\n", args[0])
	return nil
}

func runTradesRestore(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.store.RestoreTrade(cmd.Context(), a.user(), args[0]); err != nil {
		return err
	}
	fmt.Printf("✓ Restored %s\n", args[0])
	return nil
}

func runTradesExport(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	f, err := a.filter(cmd)
	if err != nil {
		return err
	}
	trades, err := a.store.ListTrades(cmd.Context(), f)
	if err != nil {
		return fmt.Errorf("query trades: %w", err)
	}

	switch exportFormat {
	case "org":
		var w io.Writer = os.Stdout
		if exportOutput != "" {
			file, err := os.Create(exportOutput)
			if err != nil {
				return err
			}
			defer file.Close()
			w = file
		}
		_, err := io.WriteString(w, journal.FormatTradesOrg(trades))
		return err
	case "csv", "sqlite":
		j, err := openSink(exportFormat, exportOutput)
		if err != nil {
			return err
		}
		for _, t := range trades {
			if err := j.RecordTrade(t); err != nil {
				j.Close()
				return fmt.Errorf("export %s: %w", t.ID, err)
			}
		}
		return j.Close()
	}
	return fmt.Errorf("unknown format %q: want csv, org or sqlite", exportFormat)
}

// openSink opens the journal an export writes to. sqlite copies trades
// into another database, keeping their IDs.
func openSink(format, path string) (journal.Journal, error) {
	switch {
	case format == "sqlite" && path == "":
		return nil, fmt.Errorf("sqlite export needs --output")
	case format == "sqlite":
		return journal.NewSQLite(path)
	case path == "":
		return journal.NewCSVWriter(os.Stdout)
	}
	return journal.NewCSV(path)
}

func runTradesDay(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	day := time.Now().In(a.loc).Format(journal.DayLayout)
	if len(args) == 1 {
		day = args[0]
	}
	start, end, err := dayRange(day, day, a.loc)
	if err != nil {
		return fmt.Errorf("date: %w", err)
	}

	recs, err := a.store.ListTradesClosedBetween(cmd.Context(), a.user(), start, end)
	if err != nil {
		return fmt.Errorf("query trades: %w", err)
	}
	fmt.Println(journal.FormatTradesOrg(recs))
	return nil
}
