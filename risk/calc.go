package risk

import "math"

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

// PlannedRisk computes the absolute dollar risk if the stop is hit.
// pointValue is dollars per full point per contract (ES: 50).
func PlannedRisk(entry, stop float64, contracts int, pointValue float64) float64 {
	if stop == 0 || entry == 0 || contracts == 0 {
		return 0
	}
	return abs(entry-stop) * pointValue * float64(contracts)
}

// RMultiple expresses pnl as a multiple of the planned risk. ok is false
// when nothing was risked.
func RMultiple(pnl, plannedRisk float64) (r float64, ok bool) {
	if plannedRisk <= 0 {
		return 0, false
	}
	return pnl / plannedRisk, true
}

// RR is the reward:risk ratio of a planned trade.
func RR(entry, stop, takeProfit float64) float64 {
	risk := abs(entry - stop)
	reward := abs(takeProfit - entry)
	if risk == 0 || takeProfit == 0 {
		return 0
	}
	return reward / risk
}

// RiskPct is the fraction of equity put at risk.
func RiskPct(plannedRisk, equity float64) float64 {
	if equity <= 0 {
		return math.Inf(1)
	}
	return plannedRisk / equity
}
