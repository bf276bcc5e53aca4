package analytics

import (
	"time"

	"github.com/rustyeddy/tradejournal/journal"
)

type EquityPoint struct {
	Time    time.Time `json:"time"`
	TradeID string    `json:"trade_id,omitempty"`
	PnL     float64   `json:"pnl"`
	Equity  float64   `json:"equity"`
}

// EquityCurve is the running balance: the origin at start, then one point
// per trade in the given order.
func EquityCurve(trades []journal.Trade, start float64) []EquityPoint {
	out := make([]EquityPoint, 0, len(trades)+1)
	origin := EquityPoint{Equity: start}
	if len(trades) > 0 {
		origin.Time = trades[0].EntryTime
	}
	out = append(out, origin)

	eq := start
	for _, t := range trades {
		eq += t.NetPnL
		out = append(out, EquityPoint{
			Time:    t.ExitTime,
			TradeID: t.ID,
			PnL:     t.NetPnL,
			Equity:  round2(eq),
		})
	}
	return out
}

// Drawdown is the deepest percentage decline of an equity series from its
// running peak. Percent is relative to the peak and is only set when the
// peak is positive; series that never rise above zero fall back to the
// largest amount. MaxAmount is the largest decline in currency, which may
// belong to a shallower drawdown.
type Drawdown struct {
	Amount    float64 `json:"amount"`
	Percent   float64 `json:"percent"`
	Peak      int     `json:"peak_index"`
	Trough    int     `json:"trough_index"`
	MaxAmount float64 `json:"max_amount"`
}

// MaxDrawdown scans forward keeping the running peak.
func MaxDrawdown(equity []float64) Drawdown {
	var dd Drawdown
	if len(equity) == 0 {
		return dd
	}

	peak, peakIdx := equity[0], 0
	for i, v := range equity {
		if v > peak {
			peak, peakIdx = v, i
			continue
		}
		amt := peak - v
		if amt <= 0 {
			continue
		}
		pct := 0.0
		if peak > 0 {
			pct = amt / peak * 100
		}
		if amt > dd.MaxAmount {
			dd.MaxAmount = amt
		}
		if pct > dd.Percent || (pct == dd.Percent && amt > dd.Amount) {
			dd.Amount = amt
			dd.Percent = pct
			dd.Peak = peakIdx
			dd.Trough = i
		}
	}
	dd.Amount = round2(dd.Amount)
	dd.Percent = round2(dd.Percent)
	dd.MaxAmount = round2(dd.MaxAmount)
	return dd
}
