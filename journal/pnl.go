package journal

import (
	"github.com/shopspring/decimal"

	"github.com/rustyeddy/tradejournal/market"
	"github.com/rustyeddy/tradejournal/risk"
)

// ComputePnL fills GrossPnL, NetPnL and RMultiple from prices, size and
// costs. Open trades and trades missing a price carry zero P&L and no
// R-multiple. Amounts are rounded to cents.
func ComputePnL(t *Trade, inst market.Instrument) {
	t.GrossPnL, t.NetPnL, t.RMultiple = 0, 0, nil
	if t.IsOpen() || t.EntryPrice == 0 || t.ExitPrice == 0 {
		return
	}

	pv := decimal.NewFromFloat(inst.PointValue())
	points := decimal.NewFromFloat(t.ExitPrice).
		Sub(decimal.NewFromFloat(t.EntryPrice)).
		Mul(decimal.NewFromFloat(t.Side.Direction()))
	gross := points.Mul(pv).Mul(decimal.NewFromInt(int64(t.Contracts))).Round(2)
	net := gross.
		Sub(decimal.NewFromFloat(t.Commission)).
		Sub(decimal.NewFromFloat(t.Fees)).
		Round(2)

	t.GrossPnL = gross.InexactFloat64()
	t.NetPnL = net.InexactFloat64()

	planned := risk.PlannedRisk(t.EntryPrice, t.StopLoss, t.Contracts, inst.PointValue())
	if r, ok := risk.RMultiple(t.NetPnL, planned); ok {
		r = decimal.NewFromFloat(r).Round(2).InexactFloat64()
		t.RMultiple = &r
	}
}

// Recalculate resolves the instrument for t and recomputes its P&L. Trades
// carrying reported P&L keep it.
func Recalculate(t *Trade, r *market.Resolver) {
	t.Symbol = r.Normalize(t.Symbol)
	if t.PnLSource == PnLReported {
		return
	}
	t.PnLSource = PnLComputed
	inst, _ := r.Resolve(t.Symbol)
	ComputePnL(t, inst)
}

// Revise recomputes P&L after an edit from before to t. Reported P&L
// survives edits that leave the priced fields alone, and is replaced only
// once the trade has both prices on a known instrument.
func Revise(before Trade, t *Trade, r *market.Resolver) {
	t.Symbol = r.Normalize(t.Symbol)
	if t.PnLSource != PnLReported {
		Recalculate(t, r)
		return
	}
	inst, known := r.Resolve(t.Symbol)
	if samePricing(before, *t) || !known || t.IsOpen() || t.EntryPrice == 0 || t.ExitPrice == 0 {
		return
	}
	t.PnLSource = PnLComputed
	ComputePnL(t, inst)
}

func samePricing(a, b Trade) bool {
	return a.Symbol == b.Symbol && a.Side == b.Side && a.Contracts == b.Contracts &&
		a.EntryPrice == b.EntryPrice && a.ExitPrice == b.ExitPrice &&
		a.StopLoss == b.StopLoss && a.Commission == b.Commission && a.Fees == b.Fees
}
