package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradejournal/journal"
)

var accountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "Manage trading accounts",
}

var accountsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List accounts",
	Args:  cobra.NoArgs,
	RunE:  runAccountsList,
}

var accountsAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add an account",
	Long: `Add a trading account. Names are unique per user.

Example:
  tradejournal accounts add "Apex 50K" --broker Tradovate --balance 50000`,
	Args: cobra.ExactArgs(1),
	RunE: runAccountsAdd,
}

var (
	accountBroker   string
	accountCurrency string
	accountBalance  float64
)

func init() {
	rootCmd.AddCommand(accountsCmd)
	accountsCmd.AddCommand(accountsListCmd, accountsAddCmd)

	accountsAddCmd.Flags().StringVar(&accountBroker, "broker", "", "broker or platform")
	accountsAddCmd.Flags().StringVar(&accountCurrency, "currency", "USD", "account currency")
	accountsAddCmd.Flags().Float64VarP(&accountBalance, "balance", "b", 0, "starting balance")
}

func runAccountsList(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	accts, err := a.store.ListAccounts(cmd.Context(), a.user())
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tBROKER\tCURRENCY\tSTART BALANCE")
	for _, acct := range accts {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%.2f\n", acct.ID, acct.Name, acct.Broker, acct.Currency, acct.StartingBalance)
	}
	return tw.Flush()
}

func runAccountsAdd(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	acct := journal.Account{
		UserID:          a.user(),
		Name:            args[0],
		Broker:          accountBroker,
		Currency:        accountCurrency,
		StartingBalance: accountBalance,
	}
	if err := journal.Validate(acct); err != nil {
		return err
	}
	if err := a.store.CreateAccount(cmd.Context(), &acct); err != nil {
		return err
	}
	fmt.Printf("✓ Added account %s (%s)\n", acct.Name, acct.ID)
	return nil
}
