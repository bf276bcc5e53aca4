package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradejournal/config"
	"github.com/rustyeddy/tradejournal/importer"
)

var importCmd = &cobra.Command{
	Use:   "import <file.csv>",
	Short: "Import trades from a broker CSV export",
	Long: `Import a CSV export. Columns are detected from the header; Tradovate
and NinjaTrader exports are recognized, anything else is matched by
common column names. Rows that duplicate stored trades are skipped.

Examples:
  tradejournal import fills.csv --account "Apex 50K"
  tradejournal import fills.csv --dry-run
  tradejournal import odd.csv --map "Px In=entry_price" --map "Px Out=exit_price"
  tradejournal import batches
  tradejournal import undo <batch>`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

var importBatchesCmd = &cobra.Command{
	Use:   "batches",
	Short: "List import batches, newest first",
	Args:  cobra.NoArgs,
	RunE:  runImportBatches,
}

var importUndoCmd = &cobra.Command{
	Use:   "undo <batch>",
	Short: "Delete an import batch and every trade it wrote",
	Args:  cobra.ExactArgs(1),
	RunE:  runImportUndo,
}

var (
	importAccount string
	importDryRun  bool
	importMap     []string
	importTZ      string
	importVerbose bool
)

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.AddCommand(importBatchesCmd, importUndoCmd)

	importCmd.Flags().StringVarP(&importAccount, "account", "a", "", "account ID or name for every row")
	importCmd.Flags().BoolVarP(&importDryRun, "dry-run", "n", false, "preview only, write nothing")
	importCmd.Flags().StringArrayVarP(&importMap, "map", "m", nil, "column mapping header=field (repeatable)")
	importCmd.Flags().StringVar(&importTZ, "tz", "", "timezone of the file's timestamps, overrides import.timezone")
	importCmd.Flags().BoolVarP(&importVerbose, "verbose", "v", false, "list warnings for every row")
}

func runImport(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	tz := a.cfg.Import.Timezone
	if importTZ != "" {
		tz = importTZ
	}
	loc, err := config.Location(tz)
	if err != nil {
		return err
	}
	overrides, err := importer.ParseOverrides(importMap)
	if err != nil {
		return err
	}

	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	im := importer.New(a.store, importer.Options{
		Location:                     loc,
		DefaultCommissionPerContract: a.cfg.Import.DefaultCommissionPerContract,
		MaxCommissionPerContract:     a.cfg.Import.MaxCommissionPerContract,
	}, a.log.Named("import"))
	req := importer.Request{
		UserID:    a.user(),
		Account:   importAccount,
		FileName:  filepath.Base(args[0]),
		Overrides: overrides,
		Location:  loc,
	}

	if importDryRun {
		p, err := im.Preview(cmd.Context(), req, f)
		if err != nil {
			return err
		}
		printPreview(p)
		fmt.Println("\n(dry run, nothing written)")
		return nil
	}

	res, err := im.Commit(cmd.Context(), req, f)
	if errors.Is(err, importer.ErrNothingToImport) {
		printPreview(res.Preview)
		fmt.Println("\nNothing imported.")
		return nil
	}
	if err != nil {
		return err
	}
	printPreview(res.Preview)
	fmt.Printf("\n✓ Imported %d trades (batch %s)\n", res.Batch.Imported, res.Batch.ID)
	fmt.Printf("  Undo with: tradejournal import undo %s\n", res.Batch.ID)
	return nil
}

func runImportBatches(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	batches, err := a.store.ListImportBatches(cmd.Context(), a.user())
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tFILE\tIMPORTED\tSKIPPED\tDUPLICATES\tCREATED")
	for _, b := range batches {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%s\n", b.ID, b.FileName, b.Imported, b.Skipped, b.Duplicates,
			b.CreatedAt.In(a.loc).Format("2006-01-02 15:04"))
	}
	return tw.Flush()
}

func runImportUndo(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	b, err := a.store.GetImportBatch(cmd.Context(), a.user(), args[0])
	if err != nil {
		return err
	}
	if err := a.store.DeleteImportBatch(cmd.Context(), a.user(), b.ID); err != nil {
		return err
	}
	fmt.Printf("✓ Removed batch %s (%s, %d trades)\n", b.ID, b.FileName, b.Imported)
	return nil
}

func printPreview(p *importer.Preview) {
	fmt.Printf("File:       %s\n", p.FileName)
	cols := make([]string, 0, len(p.Columns))
	for _, f := range importer.Fields() {
		if h, ok := p.Columns[f]; ok {
			cols = append(cols, fmt.Sprintf("%s<-%q", f, h))
		}
	}
	fmt.Printf("Columns:    %s\n", strings.Join(cols, ", "))
	if len(p.Unmapped) > 0 {
		fmt.Printf("Unmapped:   %s\n", strings.Join(p.Unmapped, ", "))
	}
	fmt.Printf("Rows:       %d valid, %d invalid, %d duplicate\n", p.Valid, p.Invalid, p.Duplicates)

	for _, r := range p.Rows {
		switch {
		case len(r.Errors) > 0:
			fmt.Printf("  line %d: %s\n", r.Line, strings.Join(r.Errors, "; "))
		case importVerbose && len(r.Warnings) > 0:
			fmt.Printf("  line %d (warning): %s\n", r.Line, strings.Join(r.Warnings, "; "))
		}
	}
}
