// market/instruments.go
package market

import (
	"sort"
	"strings"
)

// Instrument describes a futures contract root. Prices move in TickSize
// increments and each tick is worth TickValue in Currency per contract.
type Instrument struct {
	Symbol    string  `json:"symbol" yaml:"symbol"`
	Name      string  `json:"name" yaml:"name"`
	Exchange  string  `json:"exchange" yaml:"exchange"`
	TickSize  float64 `json:"tick_size" yaml:"tick_size"`
	TickValue float64 `json:"tick_value" yaml:"tick_value"`
	Currency  string  `json:"currency" yaml:"currency"`
}

// PointValue is the dollar value of a one point move for one contract.
func (i Instrument) PointValue() float64 {
	if i.TickSize <= 0 {
		return 1
	}
	return i.TickValue / i.TickSize
}

func fut(sym, name, exch string, tick, value float64) Instrument {
	return Instrument{
		Symbol:    sym,
		Name:      name,
		Exchange:  exch,
		TickSize:  tick,
		TickValue: value,
		Currency:  "USD",
	}
}

// Instruments is the built-in catalog keyed by contract root.
var Instruments = map[string]Instrument{
	// equity index
	"ES":  fut("ES", "E-mini S&P 500", "CME", 0.25, 12.50),
	"MES": fut("MES", "Micro E-mini S&P 500", "CME", 0.25, 1.25),
	"NQ":  fut("NQ", "E-mini Nasdaq-100", "CME", 0.25, 5.00),
	"MNQ": fut("MNQ", "Micro E-mini Nasdaq-100", "CME", 0.25, 0.50),
	"YM":  fut("YM", "E-mini Dow", "CBOT", 1, 5.00),
	"MYM": fut("MYM", "Micro E-mini Dow", "CBOT", 1, 0.50),
	"RTY": fut("RTY", "E-mini Russell 2000", "CME", 0.10, 5.00),
	"M2K": fut("M2K", "Micro E-mini Russell 2000", "CME", 0.10, 0.50),

	// energy
	"CL":  fut("CL", "Crude Oil", "NYMEX", 0.01, 10.00),
	"MCL": fut("MCL", "Micro WTI Crude Oil", "NYMEX", 0.01, 1.00),
	"QM":  fut("QM", "E-mini Crude Oil", "NYMEX", 0.025, 12.50),
	"NG":  fut("NG", "Natural Gas", "NYMEX", 0.001, 10.00),

	// metals
	"GC":  fut("GC", "Gold", "COMEX", 0.10, 10.00),
	"MGC": fut("MGC", "Micro Gold", "COMEX", 0.10, 1.00),
	"SI":  fut("SI", "Silver", "COMEX", 0.005, 25.00),
	"SIL": fut("SIL", "Micro Silver", "COMEX", 0.005, 5.00),
	"HG":  fut("HG", "Copper", "COMEX", 0.0005, 12.50),

	// rates
	"ZB": fut("ZB", "30-Year T-Bond", "CBOT", 1.0/32, 31.25),
	"UB": fut("UB", "Ultra T-Bond", "CBOT", 1.0/32, 31.25),
	"ZN": fut("ZN", "10-Year T-Note", "CBOT", 1.0/64, 15.625),
	"ZF": fut("ZF", "5-Year T-Note", "CBOT", 1.0/128, 7.8125),
	"ZT": fut("ZT", "2-Year T-Note", "CBOT", 1.0/256, 7.8125),

	// grains
	"ZC": fut("ZC", "Corn", "CBOT", 0.25, 12.50),
	"ZS": fut("ZS", "Soybeans", "CBOT", 0.25, 12.50),
	"ZW": fut("ZW", "Wheat", "CBOT", 0.25, 12.50),

	// currencies
	"6E":  fut("6E", "Euro FX", "CME", 0.00005, 6.25),
	"M6E": fut("M6E", "Micro Euro FX", "CME", 0.0001, 1.25),
	"6J":  fut("6J", "Japanese Yen", "CME", 0.0000005, 6.25),
	"6B":  fut("6B", "British Pound", "CME", 0.0001, 6.25),
	"6A":  fut("6A", "Australian Dollar", "CME", 0.00005, 5.00),
	"6C":  fut("6C", "Canadian Dollar", "CME", 0.00005, 5.00),

	// crypto
	"BTC": fut("BTC", "Bitcoin", "CME", 5, 25.00),
	"MBT": fut("MBT", "Micro Bitcoin", "CME", 5, 0.50),
	"ETH": fut("ETH", "Ether", "CME", 0.50, 25.00),
	"MET": fut("MET", "Micro Ether", "CME", 0.50, 0.05),
}

// Lookup returns the catalog entry for a symbol after normalizing it.
func Lookup(symbol string) (Instrument, bool) {
	inst, ok := Instruments[NormalizeSymbol(symbol)]
	return inst, ok
}

// Symbols returns the catalog roots sorted alphabetically.
func Symbols() []string {
	out := make([]string, 0, len(Instruments))
	for s := range Instruments {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Resolver finds instrument specs, preferring user-defined overrides
// over the built-in catalog.
type Resolver struct {
	custom map[string]Instrument
}

func NewResolver(custom []Instrument) *Resolver {
	r := &Resolver{custom: make(map[string]Instrument, len(custom))}
	for _, inst := range custom {
		r.custom[strings.ToUpper(inst.Symbol)] = inst
	}
	return r
}

// Normalize is NormalizeSymbol with the user-defined instruments added to
// the known roots, so KEZ4 reduces to KE once KE is defined.
func (r *Resolver) Normalize(symbol string) string {
	if r == nil || len(r.custom) == 0 {
		return NormalizeSymbol(symbol)
	}
	return normalize(symbol, func(sym string) bool {
		_, ok := r.custom[sym]
		return ok || inCatalog(sym)
	})
}

// Resolve returns the spec for symbol. Unknown symbols get a point value
// of 1 so P&L degrades to raw price difference.
func (r *Resolver) Resolve(symbol string) (Instrument, bool) {
	sym := r.Normalize(symbol)
	if r != nil {
		if inst, ok := r.custom[sym]; ok {
			return inst, true
		}
	}
	if inst, ok := Instruments[sym]; ok {
		return inst, true
	}
	return Instrument{Symbol: sym, TickSize: 1, TickValue: 1, Currency: "USD"}, false
}
