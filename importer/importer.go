// Package importer turns broker CSV exports into journal trades. Parsing is
// pure: Parse and NormalizeRow never touch the database. An Importer adds
// duplicate detection against the store and commits valid rows as one
// import batch.
package importer

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rustyeddy/tradejournal/journal"
	"github.com/rustyeddy/tradejournal/market"
)

var (
	// ErrFormat wraps every reason a file cannot be parsed at all.
	ErrFormat = errors.New("unusable csv")
	// ErrNoHeader is returned for input without a header row.
	ErrNoHeader = errors.New("csv has no header row")
)

type Options struct {
	UserID    string
	AccountID string // assigned to every row; overrides an account column

	// Location for timestamps without a zone. Nil means UTC.
	Location *time.Location
	Resolver *market.Resolver

	DefaultCommissionPerContract float64
	MaxCommissionPerContract     float64

	// Overrides maps header names to fields, replacing detection.
	Overrides map[string]string
}

func (o Options) location() *time.Location {
	if o.Location == nil {
		return time.UTC
	}
	return o.Location
}

// Record is one data row and its line number in the file.
type Record struct {
	Line   int
	Fields []string
}

// Read parses CSV leniently: a UTF-8 BOM is dropped, quotes may be sloppy,
// rows may have any number of fields, and blank rows are skipped.
func Read(r io.Reader) ([]string, []Record, error) {
	br := bufio.NewReader(r)
	if bom, err := br.Peek(3); err == nil && bytes.Equal(bom, []byte{0xEF, 0xBB, 0xBF}) {
		_, _ = br.Discard(3)
	}

	cr := csv.NewReader(br)
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var (
		header []string
		out    []Record
	)
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("read csv: %w", err)
		}
		if blank(rec) {
			continue
		}
		if header == nil {
			header = make([]string, len(rec))
			for i, h := range rec {
				header[i] = strings.TrimSpace(h)
			}
			continue
		}
		line, _ := cr.FieldPos(0)
		out = append(out, Record{Line: line, Fields: rec})
	}
	if header == nil {
		return nil, nil, ErrNoHeader
	}
	return header, out, nil
}

func blank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// Preview is the result of parsing a file without writing anything.
type Preview struct {
	FileName   string           `json:"file_name"`
	Header     []string         `json:"header"`
	Columns    map[Field]string `json:"columns"`
	Unmapped   []string         `json:"unmapped"`
	Rows       []RowResult      `json:"rows"`
	Valid      int              `json:"valid"`
	Invalid    int              `json:"invalid"`
	Duplicates int              `json:"duplicates"`
}

// Trades returns the rows that would be imported.
func (p *Preview) Trades() []journal.Trade {
	out := make([]journal.Trade, 0, p.Valid)
	for _, r := range p.Rows {
		if r.OK() {
			out = append(out, *r.Trade)
		}
	}
	return out
}

func (p *Preview) tally() {
	p.Valid, p.Invalid, p.Duplicates = 0, 0, 0
	for _, r := range p.Rows {
		switch {
		case len(r.Errors) > 0 || r.Trade == nil:
			p.Invalid++
		case r.Duplicate:
			p.Duplicates++
		default:
			p.Valid++
		}
	}
}

// Parse reads r, maps its columns and normalizes every row. Rows that
// repeat an earlier row of the same file are marked duplicate.
func Parse(r io.Reader, opt Options) (*Preview, error) {
	header, recs, err := Read(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFormat, err)
	}

	m := DetectColumns(header)
	if len(opt.Overrides) > 0 {
		if m, err = ApplyOverrides(m, header, opt.Overrides); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrFormat, err)
		}
	}
	if !m.Has(FieldSymbol) {
		return nil, fmt.Errorf("%w: no symbol column found in %v; add a mapping", ErrFormat, header)
	}

	p := &Preview{
		Header:   header,
		Columns:  m.Columns(header),
		Unmapped: m.Unmapped(header),
		Rows:     make([]RowResult, 0, len(recs)),
	}
	for _, rec := range recs {
		p.Rows = append(p.Rows, NormalizeRow(rec.Line, rec.Fields, m, opt))
	}
	MarkDuplicates(p.Rows, nil)
	p.tally()
	return p, nil
}

// MarkDuplicates flags rows whose trade matches an existing trade or an
// earlier row.
func MarkDuplicates(rows []RowResult, existing []journal.Trade) int {
	seen := make(map[string]bool, len(existing)+len(rows))
	for _, t := range existing {
		seen[t.Key()] = true
	}
	n := 0
	for i := range rows {
		r := &rows[i]
		if r.Trade == nil || len(r.Errors) > 0 {
			continue
		}
		k := r.Trade.Key()
		if seen[k] {
			if !r.Duplicate {
				r.Duplicate = true
				r.warnf("duplicate of an existing trade")
			}
			n++
			continue
		}
		seen[k] = true
	}
	return n
}
