package analytics

import "github.com/rustyeddy/tradejournal/journal"

// Streaks counts consecutive outcomes. Current is positive for a running
// win streak and negative for a loss streak. Breakeven trades end a streak.
type Streaks struct {
	Current     int `json:"current"`
	LongestWin  int `json:"longest_win"`
	LongestLoss int `json:"longest_loss"`
}

func ComputeStreaks(trades []journal.Trade) Streaks {
	var s Streaks
	for _, t := range trades {
		switch {
		case t.NetPnL > 0:
			if s.Current < 0 {
				s.Current = 0
			}
			s.Current++
			s.LongestWin = max(s.LongestWin, s.Current)
		case t.NetPnL < 0:
			if s.Current > 0 {
				s.Current = 0
			}
			s.Current--
			s.LongestLoss = max(s.LongestLoss, -s.Current)
		default:
			s.Current = 0
		}
	}
	return s
}
