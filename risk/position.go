package risk

import "math"

type Inputs struct {
	Equity     float64
	RiskPct    float64 // 0.01
	EntryPrice float64
	StopPrice  float64
	TickSize   float64 // ES: 0.25
	TickValue  float64 // ES: 12.50
}

type Result struct {
	Contracts   int
	StopTicks   float64
	RiskAmount  float64 // budget: equity * risk pct
	RiskPerUnit float64 // dollars lost per contract at the stop
	ActualRisk  float64 // contracts * risk per unit
}

// Calculate sizes a futures position so that hitting the stop loses at most
// Equity*RiskPct. The result is floored to whole contracts and may be zero.
func Calculate(in Inputs) Result {
	res := Result{RiskAmount: in.Equity * in.RiskPct}
	if in.TickSize <= 0 || in.TickValue <= 0 {
		return res
	}

	res.StopTicks = math.Round(abs(in.EntryPrice-in.StopPrice)/in.TickSize*1e6) / 1e6
	res.RiskPerUnit = res.StopTicks * in.TickValue
	if res.RiskPerUnit <= 0 || res.RiskAmount <= 0 {
		return res
	}

	res.Contracts = int(math.Floor(res.RiskAmount / res.RiskPerUnit))
	res.ActualRisk = float64(res.Contracts) * res.RiskPerUnit
	return res
}
