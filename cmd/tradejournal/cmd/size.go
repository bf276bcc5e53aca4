package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradejournal/market"
	"github.com/rustyeddy/tradejournal/risk"
)

var sizeCmd = &cobra.Command{
	Use:   "size <symbol>",
	Short: "Size a position from account risk",
	Long: `Calculate how many contracts keep a stop-out within the risk budget.

Example:
  tradejournal size MES --equity 50000 --risk 0.005 --entry 5000 --stop 4990`,
	Args: cobra.ExactArgs(1),
	RunE: runSize,
}

var (
	sizeEquity float64
	sizeRisk   float64
	sizeEntry  float64
	sizeStop   float64
)

func init() {
	rootCmd.AddCommand(sizeCmd)

	sizeCmd.Flags().Float64VarP(&sizeEquity, "equity", "e", 0, "account equity (required)")
	sizeCmd.Flags().Float64VarP(&sizeRisk, "risk", "r", 0.01, "fraction of equity to risk (0.01 = 1%)")
	sizeCmd.Flags().Float64Var(&sizeEntry, "entry", 0, "entry price (required)")
	sizeCmd.Flags().Float64Var(&sizeStop, "stop", 0, "stop price (required)")
	_ = sizeCmd.MarkFlagRequired("equity")
	_ = sizeCmd.MarkFlagRequired("entry")
	_ = sizeCmd.MarkFlagRequired("stop")
}

func runSize(cmd *cobra.Command, args []string) error {
	sym := market.NormalizeSymbol(args[0])
	inst, ok := market.Lookup(sym)
	if !ok {
		return fmt.Errorf("unknown instrument %q; known: %s", args[0], strings.Join(market.Symbols(), " "))
	}
	if sizeEntry == sizeStop {
		return fmt.Errorf("entry and stop must differ")
	}

	res := risk.Calculate(risk.Inputs{
		Equity:     sizeEquity,
		RiskPct:    sizeRisk,
		EntryPrice: sizeEntry,
		StopPrice:  sizeStop,
		TickSize:   inst.TickSize,
		TickValue:  inst.TickValue,
	})

	fmt.Printf("Instrument:     %s (%s)\n", inst.Symbol, inst.Name)
	fmt.Printf("Risk budget:    %.2f\n", res.RiskAmount)
	fmt.Printf("Stop distance:  %.0f ticks (%.2f per contract)\n", res.StopTicks, res.RiskPerUnit)
	fmt.Printf("Contracts:      %d\n", res.Contracts)
	fmt.Printf("Actual risk:    %.2f (%.2f%% of equity)\n", res.ActualRisk, risk.RiskPct(res.ActualRisk, sizeEquity)*100)
	if res.Contracts == 0 {
		fmt.Println("\nThe stop is too wide for the risk budget; not even one contract fits.")
	}
	return nil
}
