package importer

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/rustyeddy/tradejournal/journal"
	"github.com/rustyeddy/tradejournal/market"
)

// RowResult is the outcome of normalizing one CSV row. Errors reject the
// row; warnings do not.
type RowResult struct {
	Line      int            `json:"line"`
	Trade     *journal.Trade `json:"trade,omitempty"`
	Account   string         `json:"account,omitempty"`
	Errors    []string       `json:"errors"`
	Warnings  []string       `json:"warnings"`
	Duplicate bool           `json:"duplicate"`
}

// OK reports whether the row would be imported.
func (r RowResult) OK() bool {
	return len(r.Errors) == 0 && !r.Duplicate && r.Trade != nil
}

func (r *RowResult) errorf(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *RowResult) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// row reads cells through a Mapping.
type row struct {
	rec []string
	m   Mapping
	res *RowResult
	loc *time.Location
}

func (r row) get(f Field) string {
	i, ok := r.m[f]
	if !ok || i < 0 || i >= len(r.rec) {
		return ""
	}
	return strings.TrimSpace(r.rec[i])
}

// number returns the value and whether the cell held one. Unparseable
// cells are reported as a warning, or as an error when required.
func (r row) number(f Field, required bool) (float64, bool) {
	v, err := ParseNumber(r.get(f))
	switch {
	case err == nil:
		return v, true
	case errors.Is(err, ErrEmpty):
		return 0, false
	case required:
		r.res.errorf("%s: %v", f, err)
	default:
		r.res.warnf("%s: %v; ignored", f, err)
	}
	return 0, false
}

func (r row) time(f Field) (time.Time, bool) {
	t, err := ParseTime(r.get(f), r.loc)
	switch {
	case err == nil:
		return t.UTC(), true
	case errors.Is(err, ErrEmpty):
		return time.Time{}, false
	}
	r.res.errorf("%s: %v", f, err)
	return time.Time{}, false
}

// NormalizeRow turns one CSV record into a trade.
func NormalizeRow(line int, rec []string, m Mapping, opt Options) RowResult {
	res := RowResult{Line: line, Errors: []string{}, Warnings: []string{}}
	r := row{rec: rec, m: m, res: &res, loc: opt.location()}

	t := journal.Trade{
		UserID:    opt.UserID,
		AccountID: opt.AccountID,
		Source:    journal.SourceImport,
	}

	rawSymbol := r.get(FieldSymbol)
	t.Symbol = opt.Resolver.Normalize(rawSymbol)
	if t.Symbol == "" {
		res.errorf("missing symbol")
	}

	qty, hasQty := r.number(FieldContracts, true)
	switch {
	case r.get(FieldContracts) == "":
		res.errorf("missing contracts")
	case !hasQty:
		// already reported
	case math.Round(math.Abs(qty)) < 1:
		res.errorf("contracts must be at least 1, got %v", qty)
	default:
		if qty != math.Trunc(qty) {
			res.warnf("contracts %v rounded", qty)
		}
		t.Contracts = int(math.Round(math.Abs(qty)))
	}

	t.EntryPrice, _ = r.number(FieldEntryPrice, true)
	t.ExitPrice, _ = r.number(FieldExitPrice, true)
	t.EntryTime, _ = r.time(FieldEntryTime)
	t.ExitTime, _ = r.time(FieldExitTime)
	buyPrice, hasBuy := r.number(FieldBuyPrice, true)
	sellPrice, hasSell := r.number(FieldSellPrice, true)
	boughtAt, hasBought := r.time(FieldBoughtTime)
	soldAt, hasSold := r.time(FieldSoldTime)

	net, hasNet := r.number(FieldNetPnL, false)
	gross, hasGross := r.number(FieldGrossPnL, false)

	// Side
	side, how := inferSide(r, qty, boughtAt, hasBought, soldAt, hasSold, t.EntryPrice, t.ExitPrice, net, hasNet, gross, hasGross)
	if side == "" {
		side = journal.Long
		res.warnf("side not found; assumed long")
	} else if how != "" {
		res.warnf("side inferred from %s", how)
	}
	t.Side = side

	// Buy/sell columns become entry/exit once the side is known.
	entryPx, exitPx, entryAt, exitAt := buyPrice, sellPrice, boughtAt, soldAt
	hasEntryPx, hasExitPx, hasEntryAt, hasExitAt := hasBuy, hasSell, hasBought, hasSold
	if side == journal.Short {
		entryPx, exitPx, entryAt, exitAt = sellPrice, buyPrice, soldAt, boughtAt
		hasEntryPx, hasExitPx, hasEntryAt, hasExitAt = hasSell, hasBuy, hasSold, hasBought
	}
	if t.EntryPrice == 0 && hasEntryPx {
		t.EntryPrice = entryPx
	}
	if t.ExitPrice == 0 && hasExitPx {
		t.ExitPrice = exitPx
	}
	if t.EntryTime.IsZero() && hasEntryAt {
		t.EntryTime = entryAt
	}
	if t.ExitTime.IsZero() && hasExitAt {
		t.ExitTime = exitAt
	}
	t.EntryPrice = math.Abs(t.EntryPrice)
	t.ExitPrice = math.Abs(t.ExitPrice)

	if t.EntryPrice == 0 && t.EntryTime.IsZero() && t.ExitTime.IsZero() {
		res.errorf("row needs a price or a date")
	}
	if !t.EntryTime.IsZero() && !t.ExitTime.IsZero() && t.ExitTime.Before(t.EntryTime) {
		res.errorf("exit time %s is before entry time %s", t.ExitTime.Format(time.RFC3339), t.EntryTime.Format(time.RFC3339))
	}
	if t.EntryTime.IsZero() && !t.ExitTime.IsZero() {
		t.EntryTime = t.ExitTime
		res.warnf("no entry time; using exit time")
	}

	if t.ExitPrice != 0 && t.ExitTime.IsZero() {
		if t.EntryTime.IsZero() {
			res.errorf("exit price needs an exit time")
		} else {
			t.ExitTime = t.EntryTime
			res.warnf("no exit time; using entry time")
		}
	}

	if t.ExitPrice == 0 && t.ExitTime.IsZero() {
		if hasNet || hasGross {
			t.ExitTime = t.EntryTime
			res.warnf("no exit; reported P&L booked at entry time")
		} else {
			res.warnf("no exit; trade left open")
		}
	}

	t.StopLoss, _ = r.number(FieldStopLoss, false)
	t.TakeProfit, _ = r.number(FieldTakeProfit, false)
	t.StopLoss, t.TakeProfit = math.Abs(t.StopLoss), math.Abs(t.TakeProfit)

	t.Setup = r.get(FieldSetup)
	t.Notes = r.get(FieldNotes)
	t.Emotions = splitList(r.get(FieldEmotions))
	t.Mistakes = splitList(r.get(FieldMistakes))
	t.Tags = splitList(r.get(FieldTags))
	if v, ok := r.number(FieldRating, false); ok {
		if n := int(math.Round(v)); n >= 1 && n <= 5 {
			t.Rating = n
		} else {
			res.warnf("rating %v outside 1-5; ignored", v)
		}
	}
	if opt.AccountID == "" {
		res.Account = r.get(FieldAccount)
	}

	if len(res.Errors) > 0 {
		return res
	}

	inst, known := opt.Resolver.Resolve(t.Symbol)
	if !known {
		res.warnf("unknown instrument %q; point value 1 assumed", t.Symbol)
	}
	if rawSymbol != "" && !strings.EqualFold(rawSymbol, t.Symbol) {
		res.warnf("symbol %q normalized to %s", rawSymbol, t.Symbol)
	}

	applyCosts(r, &t, inst, known, opt, net, hasNet, gross, hasGross)

	if err := journal.ValidateTrade(&t); err != nil {
		var verr *journal.ValidationError
		if errors.As(err, &verr) {
			for _, f := range sortedKeys(verr.Fields) {
				res.errorf("%s: failed %s", f, verr.Fields[f])
			}
		} else {
			res.errorf("%v", err)
		}
		return res
	}

	res.Trade = &t
	return res
}

// inferSide tries, in order: the side column, a negative quantity, the
// bought/sold timestamps, and prices against the P&L sign. how names the
// evidence when it was not the side column.
func inferSide(r row, qty float64, boughtAt time.Time, hasBought bool, soldAt time.Time, hasSold bool,
	entry, exit, net float64, hasNet bool, gross float64, hasGross bool) (journal.Side, string) {

	if raw := r.get(FieldSide); raw != "" {
		if s, err := journal.ParseSide(raw); err == nil {
			return s, ""
		}
		r.res.warnf("side %q not recognized", raw)
	}
	if qty < 0 {
		return journal.Short, "negative quantity"
	}
	if hasBought && hasSold {
		if soldAt.Before(boughtAt) {
			return journal.Short, "sold before bought"
		}
		return journal.Long, "bought before sold"
	}

	pnl, hasPnL := net, hasNet
	if !hasPnL {
		pnl, hasPnL = gross, hasGross
	}
	if hasPnL && pnl != 0 && entry != 0 && exit != 0 && entry != exit {
		if (exit > entry) == (pnl > 0) {
			return journal.Long, "prices and P&L"
		}
		return journal.Short, "prices and P&L"
	}
	return "", ""
}

// applyCosts fills Commission and Fees, then P&L.
//
// Commission comes from, in order: its own column; gross minus net when
// both are reported; computed gross minus reported net when the difference
// is plausible; the configured default per contract.
func applyCosts(r row, t *journal.Trade, inst market.Instrument, known bool, opt Options,
	net float64, hasNet bool, gross float64, hasGross bool) {

	fees, _ := r.number(FieldFees, false)
	t.Fees = math.Abs(fees)

	contracts := float64(t.Contracts)
	maxComm := opt.MaxCommissionPerContract * contracts

	journal.ComputePnL(t, inst)
	computed := t.GrossPnL
	canCompute := t.EntryPrice != 0 && t.ExitPrice != 0 && !t.IsOpen()

	if c, ok := r.number(FieldCommission, false); ok {
		t.Commission = math.Abs(c)
	} else {
		switch {
		case hasGross && hasNet:
			t.Commission = nonNeg(gross - net - t.Fees)
		case hasNet && canCompute && known:
			diff := round2(computed - net - t.Fees)
			if diff >= 0 && diff <= maxComm {
				t.Commission = diff
			} else {
				t.Commission = opt.DefaultCommissionPerContract * contracts
				r.res.warnf("reported net %.2f implies costs of %.2f; default commission used", net, computed-net)
			}
		default:
			t.Commission = opt.DefaultCommissionPerContract * contracts
		}
	}
	t.Commission = round2(t.Commission)

	journal.ComputePnL(t, inst)
	t.PnLSource = journal.PnLComputed

	switch {
	case canCompute && known:
		if hasNet && math.Abs(t.NetPnL-net) > 0.01 {
			r.res.warnf("computed net %.2f differs from reported %.2f", t.NetPnL, net)
		}
	case hasNet || hasGross:
		// Without a usable point value the reported figures are kept.
		t.RMultiple = nil
		t.PnLSource = journal.PnLReported
		switch {
		case hasNet && hasGross:
			t.GrossPnL, t.NetPnL = round2(gross), round2(net)
		case hasNet:
			t.NetPnL = round2(net)
			t.GrossPnL = round2(net + t.Commission + t.Fees)
		default:
			t.GrossPnL = round2(gross)
			t.NetPnL = round2(gross - t.Commission - t.Fees)
		}
	}
}

func sortedKeys(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func nonNeg(x float64) float64 {
	if x < 0 {
		return 0
	}
	return round2(x)
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
