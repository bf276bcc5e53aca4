package importer

import (
	"fmt"
	"sort"
	"strings"
)

// Field is a trade attribute a CSV column can feed.
type Field string

const (
	FieldSymbol     Field = "symbol"
	FieldSide       Field = "side"
	FieldContracts  Field = "contracts"
	FieldEntryPrice Field = "entry_price"
	FieldExitPrice  Field = "exit_price"
	FieldEntryTime  Field = "entry_time"
	FieldExitTime   Field = "exit_time"
	FieldCommission Field = "commission"
	FieldFees       Field = "fees"
	FieldGrossPnL   Field = "gross_pnl"
	FieldNetPnL     Field = "net_pnl"
	FieldStopLoss   Field = "stop_loss"
	FieldTakeProfit Field = "take_profit"
	FieldSetup      Field = "setup"
	FieldNotes      Field = "notes"
	FieldBuyPrice   Field = "buy_price"
	FieldSellPrice  Field = "sell_price"
	FieldBoughtTime Field = "bought_time"
	FieldSoldTime   Field = "sold_time"
	FieldAccount    Field = "account"
	FieldEmotions   Field = "emotions"
	FieldMistakes   Field = "mistakes"
	FieldTags       Field = "tags"
	FieldRating     Field = "rating"
)

type alias struct {
	field    Field
	exact    []string
	contains []string
}

// dictionary is ordered: when two fields could claim a column by
// substring, the earlier one wins. Aliases are in normalized form.
var dictionary = []alias{
	{FieldNetPnL, []string{"netpnl", "netprofit", "netpl", "net", "realizedpnl", "realizedpl", "profit", "netprofitloss"}, []string{"netpnl", "netprofit", "netpl", "realized"}},
	{FieldGrossPnL, []string{"grosspnl", "grossprofit", "grosspl", "gross", "pnl", "pl", "profitloss", "pandl"}, []string{"grosspnl", "grossprofit", "grosspl", "pnl", "profitloss"}},
	{FieldCommission, []string{"commission", "commissions", "comm", "comms", "brokerage"}, []string{"commission"}},
	{FieldFees, []string{"fees", "fee", "exchangefee", "clearingfee", "nfafee", "regfee", "totalfees"}, []string{"fee"}},
	{FieldBuyPrice, []string{"buyprice", "buyfillprice", "avgbuyprice", "boughtprice"}, []string{"buyprice", "boughtprice"}},
	{FieldSellPrice, []string{"sellprice", "sellfillprice", "avgsellprice", "soldprice"}, []string{"sellprice", "soldprice"}},
	{FieldBoughtTime, []string{"boughttimestamp", "boughttime", "buytime", "buytimestamp", "buydate", "boughtdate"}, []string{"bought", "buytime", "buydate"}},
	{FieldSoldTime, []string{"soldtimestamp", "soldtime", "selltime", "selltimestamp", "selldate", "solddate"}, []string{"sold", "selltime", "selldate"}},
	{FieldEntryPrice, []string{"entryprice", "entry", "openprice", "avgentryprice", "priceopen", "avgprice", "fillprice", "avgfillprice", "price"}, []string{"entryprice", "openprice", "avgentry"}},
	{FieldExitPrice, []string{"exitprice", "exit", "closeprice", "avgexitprice", "priceclose"}, []string{"exitprice", "closeprice", "avgexit"}},
	{FieldEntryTime, []string{"entrytime", "entrydate", "entrydatetime", "opentime", "opendate", "opened", "timeopened", "date", "datetime", "time", "tradedate", "timestamp", "filltime"}, []string{"entrytime", "entrydate", "opentime", "opendate", "opened"}},
	{FieldExitTime, []string{"exittime", "exitdate", "exitdatetime", "closetime", "closedate", "closed", "timeclosed"}, []string{"exittime", "exitdate", "closetime", "closedate", "closed"}},
	{FieldStopLoss, []string{"stoploss", "stop", "sl", "stopprice"}, []string{"stop"}},
	{FieldTakeProfit, []string{"takeprofit", "target", "tp", "targetprice", "profittarget"}, []string{"takeprofit", "target"}},
	{FieldSide, []string{"side", "direction", "action", "buysell", "bs", "type", "longshort", "marketpos", "marketposition", "position", "tradetype", "tradeside"}, []string{"side", "direction", "marketpos", "buysell", "longshort"}},
	{FieldContracts, []string{"contracts", "qty", "quantity", "size", "lots", "contractqty", "filledqty", "shares", "units", "pairedqty", "positionsize"}, []string{"qty", "quantity", "contracts", "lots"}},
	{FieldSymbol, []string{"symbol", "ticker", "instrument", "contract", "product", "market", "root", "sym", "contractname", "underlying"}, []string{"symbol", "ticker", "instrument"}},
	{FieldAccount, []string{"account", "accountname", "accountid", "acct"}, []string{"account"}},
	{FieldSetup, []string{"setup", "strategy", "playbook", "pattern", "entryname"}, []string{"setup", "strategy", "playbook"}},
	{FieldNotes, []string{"notes", "note", "comment", "comments", "description", "journal"}, []string{"note", "comment"}},
	{FieldEmotions, []string{"emotions", "emotion", "feelings", "mood"}, []string{"emotion"}},
	{FieldMistakes, []string{"mistakes", "mistake", "errors"}, []string{"mistake"}},
	{FieldTags, []string{"tags", "tag", "labels"}, []string{"tags"}},
	{FieldRating, []string{"rating", "stars", "grade", "score"}, []string{"rating"}},
}

// ignored headers are running totals and excursion stats that would
// otherwise match a P&L alias by substring.
var ignoredPrefixes = []string{"cum", "mae", "mfe", "etd", "max", "min"}

// Fields lists every importable field in dictionary order.
func Fields() []Field {
	out := make([]Field, len(dictionary))
	for i, a := range dictionary {
		out[i] = a.field
	}
	return out
}

// ParseField accepts a field name such as "entry_price" or "Entry Price".
func ParseField(s string) (Field, bool) {
	n := normalizeHeader(s)
	for _, a := range dictionary {
		if normalizeHeader(string(a.field)) == n {
			return a.field, true
		}
	}
	return "", false
}

// normalizeHeader lower-cases and keeps only letters and digits.
func normalizeHeader(h string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(h) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Mapping assigns CSV column indexes to fields.
type Mapping map[Field]int

// Has reports whether f is mapped.
func (m Mapping) Has(f Field) bool {
	_, ok := m[f]
	return ok
}

// Columns renders the mapping as field -> header name.
func (m Mapping) Columns(header []string) map[Field]string {
	out := make(map[Field]string, len(m))
	for f, i := range m {
		if i >= 0 && i < len(header) {
			out[f] = header[i]
		}
	}
	return out
}

// Unmapped returns the headers no field claimed, in file order.
func (m Mapping) Unmapped(header []string) []string {
	used := make(map[int]bool, len(m))
	for _, i := range m {
		used[i] = true
	}
	out := []string{}
	for i, h := range header {
		if !used[i] && strings.TrimSpace(h) != "" {
			out = append(out, h)
		}
	}
	return out
}

// DetectColumns maps headers to fields. Exact alias matches are assigned
// before substring matches, and each column and field is used at most once.
func DetectColumns(header []string) Mapping {
	norm := make([]string, len(header))
	for i, h := range header {
		norm[i] = normalizeHeader(h)
		for _, p := range ignoredPrefixes {
			if strings.HasPrefix(norm[i], p) && len(norm[i]) > len(p) {
				norm[i] = ""
				break
			}
		}
	}

	m := Mapping{}
	taken := make([]bool, len(header))

	claim := func(f Field, col int) {
		m[f] = col
		taken[col] = true
	}

	for _, a := range dictionary {
		for _, alias := range a.exact {
			if m.Has(a.field) {
				break
			}
			for i, n := range norm {
				if !taken[i] && n != "" && n == alias {
					claim(a.field, i)
					break
				}
			}
		}
	}

	for _, a := range dictionary {
		if m.Has(a.field) {
			continue
		}
	search:
		for _, key := range a.contains {
			for i, n := range norm {
				if !taken[i] && n != "" && strings.Contains(n, key) {
					claim(a.field, i)
					break search
				}
			}
		}
	}
	return m
}

// ApplyOverrides rewires the mapping with header -> field pairs. A field of
// "" or "ignore" unmaps the column.
func ApplyOverrides(m Mapping, header []string, overrides map[string]string) (Mapping, error) {
	out := make(Mapping, len(m))
	for f, i := range m {
		out[f] = i
	}

	// Sorted so errors are deterministic.
	keys := make([]string, 0, len(overrides))
	for k := range overrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, h := range keys {
		col := -1
		for i, name := range header {
			if strings.EqualFold(strings.TrimSpace(name), strings.TrimSpace(h)) {
				col = i
				break
			}
		}
		if col < 0 {
			return nil, fmt.Errorf("mapping: no column %q in header", h)
		}

		for f, i := range out {
			if i == col {
				delete(out, f)
			}
		}

		target := strings.TrimSpace(overrides[h])
		if target == "" || strings.EqualFold(target, "ignore") {
			continue
		}
		f, ok := ParseField(target)
		if !ok {
			return nil, fmt.Errorf("mapping: unknown field %q for column %q", target, h)
		}
		out[f] = col
	}
	return out, nil
}

// ParseOverrides reads "header=field" pairs as given on the command line.
func ParseOverrides(pairs []string) (map[string]string, error) {
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		h, f, ok := strings.Cut(p, "=")
		if !ok || strings.TrimSpace(h) == "" {
			return nil, fmt.Errorf("mapping %q: want header=field", p)
		}
		out[strings.TrimSpace(h)] = strings.TrimSpace(f)
	}
	return out, nil
}
