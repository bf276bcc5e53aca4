// journal/csv.go
package journal

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// Journal is a sink for trades: the CSV exporter and the SQL store both
// accept records one at a time.
type Journal interface {
	RecordTrade(Trade) error
	Close() error
}

// CSVHeader is the export layout. Every column name is one the importer
// recognizes, so an export can be imported again without a mapping.
var CSVHeader = []string{
	"trade_id", "account", "symbol", "side", "contracts",
	"entry_time", "exit_time", "entry_price", "exit_price",
	"stop_loss", "take_profit", "commission", "fees",
	"gross_pnl", "net_pnl", "r_multiple",
	"setup", "emotions", "mistakes", "tags", "rating", "notes",
}

type CSVJournal struct {
	w      *csv.Writer
	closer io.Closer
}

// NewCSV creates path and writes the header row.
func NewCSV(path string) (*CSVJournal, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	j, err := NewCSVWriter(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	j.closer = f
	return j, nil
}

// NewCSVWriter writes CSV to w. Close flushes but does not close w.
func NewCSVWriter(w io.Writer) (*CSVJournal, error) {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return nil, err
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return nil, err
	}
	return &CSVJournal{w: cw}, nil
}

func (j *CSVJournal) RecordTrade(t Trade) error {
	r := ""
	if t.RMultiple != nil {
		r = strconv.FormatFloat(*t.RMultiple, 'f', 2, 64)
	}
	rating := ""
	if t.Rating > 0 {
		rating = strconv.Itoa(t.Rating)
	}
	err := j.w.Write([]string{
		t.ID,
		t.AccountID,
		t.Symbol,
		string(t.Side),
		strconv.Itoa(t.Contracts),
		ts(t.EntryTime),
		ts(t.ExitTime),
		f(t.EntryPrice),
		f(t.ExitPrice),
		f(t.StopLoss),
		f(t.TakeProfit),
		money(t.Commission),
		money(t.Fees),
		money(t.GrossPnL),
		money(t.NetPnL),
		r,
		t.Setup,
		strings.Join(t.Emotions, ";"),
		strings.Join(t.Mistakes, ";"),
		strings.Join(t.Tags, ";"),
		rating,
		t.Notes,
	})
	if err != nil {
		return err
	}
	j.w.Flush()
	return j.w.Error()
}

func (j *CSVJournal) Close() error {
	j.w.Flush()
	if err := j.w.Error(); err != nil {
		return err
	}
	if j.closer != nil {
		return j.closer.Close()
	}
	return nil
}

// WriteCSV exports trades to w in CSVHeader layout.
func WriteCSV(w io.Writer, trades []Trade) error {
	j, err := NewCSVWriter(w)
	if err != nil {
		return err
	}
	for _, t := range trades {
		if err := j.RecordTrade(t); err != nil {
			return err
		}
	}
	return j.Close()
}

func ts(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func f(x float64) string {
	if x == 0 {
		return ""
	}
	return strconv.FormatFloat(x, 'f', -1, 64)
}

func money(x float64) string {
	return strconv.FormatFloat(x, 'f', 2, 64)
}
