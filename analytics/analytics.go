// Package analytics reduces a list of closed trades into performance
// statistics. Every metric is a single pass over the trades and none
// depends on another.
package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/rustyeddy/tradejournal/journal"
)

// Options control how trades are bucketed and where the equity curve starts.
type Options struct {
	StartingBalance float64
	// Location is used for weekday, hour and calendar buckets. Nil means UTC.
	Location *time.Location

	// Labels copied into the report for display.
	Account string
	From    time.Time
	To      time.Time
}

type Report struct {
	Account   string    `json:"account,omitempty"`
	From      time.Time `json:"from,omitempty"`
	To        time.Time `json:"to,omitempty"`
	Generated time.Time `json:"generated"`

	StartingBalance float64 `json:"starting_balance"`
	EndingBalance   float64 `json:"ending_balance"`
	ReturnPct       float64 `json:"return_pct"`

	Summary   Summary       `json:"summary"`
	Equity    []EquityPoint `json:"equity"`
	Drawdown  Drawdown      `json:"drawdown"`
	Streaks   Streaks       `json:"streaks"`
	ByWeekday []Bucket      `json:"by_weekday"`
	ByHour    []Bucket      `json:"by_hour"`
	HoldTime  []Bucket      `json:"hold_time"`
	LongShort LongShort     `json:"long_short"`
	BySetup   []Bucket      `json:"by_setup"`
	ByEmotion []Bucket      `json:"by_emotion"`
	ByMistake []Bucket      `json:"by_mistake"`
	BySymbol  []Bucket      `json:"by_symbol"`
	ByRating  []Bucket      `json:"by_rating"`
	Daily     []Day         `json:"daily"`
}

// Compute builds the full report. Open and deleted trades are ignored; the
// rest are ordered by exit time before reduction.
func Compute(trades []journal.Trade, opt Options) Report {
	loc := opt.Location
	if loc == nil {
		loc = time.UTC
	}
	closed := Closed(trades)

	equity := EquityCurve(closed, opt.StartingBalance)
	values := make([]float64, len(equity))
	for i, p := range equity {
		values[i] = p.Equity
	}

	r := Report{
		Account:         opt.Account,
		From:            opt.From,
		To:              opt.To,
		Generated:       time.Now().UTC(),
		StartingBalance: opt.StartingBalance,
		EndingBalance:   values[len(values)-1],
		Summary:         Summarize(closed),
		Equity:          equity,
		Drawdown:        MaxDrawdown(values),
		Streaks:         ComputeStreaks(closed),
		ByWeekday:       ByWeekday(closed, loc),
		ByHour:          ByHour(closed, loc),
		HoldTime:        ByHoldTime(closed),
		LongShort:       CompareSides(closed),
		BySetup:         BySetup(closed),
		ByEmotion:       ByEmotion(closed),
		ByMistake:       ByMistake(closed),
		BySymbol:        BySymbol(closed),
		ByRating:        ByRating(closed),
		Daily:           DailyPnL(closed, loc),
	}
	if opt.StartingBalance > 0 {
		r.ReturnPct = round2(r.Summary.NetPnL / opt.StartingBalance * 100)
	}
	return r
}

// Closed returns the closed, non-deleted trades sorted by exit time.
func Closed(trades []journal.Trade) []journal.Trade {
	out := make([]journal.Trade, 0, len(trades))
	for _, t := range trades {
		if t.IsOpen() || t.DeletedAt != nil {
			continue
		}
		out = append(out, t)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].ExitTime.Equal(out[j].ExitTime) {
			return out[i].ExitTime.Before(out[j].ExitTime)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

type Summary struct {
	Trades       int     `json:"trades"`
	Wins         int     `json:"wins"`
	Losses       int     `json:"losses"`
	Breakeven    int     `json:"breakeven"`
	WinRate      float64 `json:"win_rate"` // percent
	GrossProfit  float64 `json:"gross_profit"`
	GrossLoss    float64 `json:"gross_loss"` // magnitude
	NetPnL       float64 `json:"net_pnl"`
	ProfitFactor float64 `json:"profit_factor"`
	Expectancy   float64 `json:"expectancy"`
	AvgWin       float64 `json:"avg_win"`
	AvgLoss      float64 `json:"avg_loss"` // magnitude
	PayoffRatio  float64 `json:"payoff_ratio"`
	LargestWin   float64 `json:"largest_win"`
	LargestLoss  float64 `json:"largest_loss"`
	AvgR         float64 `json:"avg_r"`
	RTrades      int     `json:"r_trades"`
	Costs        float64 `json:"costs"`
	AvgHoldMins  float64 `json:"avg_hold_minutes"`
}

// Summarize computes the headline numbers. ProfitFactor is zero when there
// are no losing trades.
func Summarize(trades []journal.Trade) Summary {
	var (
		s       Summary
		sumR    float64
		hold    time.Duration
		holdCnt int
	)
	for _, t := range trades {
		s.Trades++
		s.NetPnL += t.NetPnL
		s.Costs += t.Commission + t.Fees
		switch {
		case t.NetPnL > 0:
			s.Wins++
			s.GrossProfit += t.NetPnL
			s.LargestWin = math.Max(s.LargestWin, t.NetPnL)
		case t.NetPnL < 0:
			s.Losses++
			s.GrossLoss -= t.NetPnL
			s.LargestLoss = math.Min(s.LargestLoss, t.NetPnL)
		default:
			s.Breakeven++
		}
		if t.RMultiple != nil {
			sumR += *t.RMultiple
			s.RTrades++
		}
		if d := t.HoldDuration(); d > 0 {
			hold += d
			holdCnt++
		}
	}
	if s.Trades == 0 {
		return s
	}

	s.WinRate = pct(s.Wins, s.Trades)
	s.Expectancy = round2(s.NetPnL / float64(s.Trades))
	if s.Wins > 0 {
		s.AvgWin = round2(s.GrossProfit / float64(s.Wins))
	}
	if s.Losses > 0 {
		s.AvgLoss = round2(s.GrossLoss / float64(s.Losses))
	}
	if s.GrossLoss > 0 {
		s.ProfitFactor = round2(s.GrossProfit / s.GrossLoss)
	}
	if s.AvgLoss > 0 {
		s.PayoffRatio = round2(s.AvgWin / s.AvgLoss)
	}
	if s.RTrades > 0 {
		s.AvgR = round2(sumR / float64(s.RTrades))
	}
	if holdCnt > 0 {
		s.AvgHoldMins = round2((hold / time.Duration(holdCnt)).Minutes())
	}
	s.GrossProfit = round2(s.GrossProfit)
	s.GrossLoss = round2(s.GrossLoss)
	s.NetPnL = round2(s.NetPnL)
	s.Costs = round2(s.Costs)
	return s
}

func pct(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return round2(float64(n) / float64(total) * 100)
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
