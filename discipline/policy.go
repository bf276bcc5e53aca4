package discipline

import (
	"fmt"

	"github.com/rustyeddy/tradejournal/journal"
	"github.com/rustyeddy/tradejournal/risk"
)

// Policy holds the automatic trading-day limits. A zero value disables the
// corresponding check.
type Policy struct {
	MaxTradesPerDay      int     `yaml:"max_trades_per_day" json:"max_trades_per_day"`
	MaxDailyLoss         float64 `yaml:"max_daily_loss" json:"max_daily_loss"` // dollars, positive
	MaxContracts         int     `yaml:"max_contracts" json:"max_contracts"`
	RequireStop          bool    `yaml:"require_stop" json:"require_stop"`
	MaxConsecutiveLosses int     `yaml:"max_consecutive_losses" json:"max_consecutive_losses"`
	MinRR                float64 `yaml:"min_rr" json:"min_rr"`
}

// Enabled reports whether any check is switched on.
func (p Policy) Enabled() bool {
	return p != Policy{}
}

// Validate rejects negative limits.
func (p Policy) Validate() error {
	switch {
	case p.MaxTradesPerDay < 0:
		return fmt.Errorf("max_trades_per_day must not be negative")
	case p.MaxDailyLoss < 0:
		return fmt.Errorf("max_daily_loss must not be negative")
	case p.MaxContracts < 0:
		return fmt.Errorf("max_contracts must not be negative")
	case p.MaxConsecutiveLosses < 0:
		return fmt.Errorf("max_consecutive_losses must not be negative")
	case p.MinRR < 0:
		return fmt.Errorf("min_rr must not be negative")
	}
	return nil
}

type Violation struct {
	Code    string `json:"code"`
	Msg     string `json:"message"`
	TradeID string `json:"trade_id,omitempty"`
}

const (
	CodeMaxTrades   = "MAX_TRADES_PER_DAY"
	CodeDailyLoss   = "DAILY_LOSS_LIMIT"
	CodeMaxContract = "MAX_CONTRACTS"
	CodeNoStop      = "NO_STOP"
	CodeLossStreak  = "LOSS_STREAK"
	CodeRRTooLow    = "RR_TOO_LOW"
)

type Decision struct {
	Allowed    bool        `json:"allowed"`
	Violations []Violation `json:"violations"`

	Trades int     `json:"trades"`
	NetPnL float64 `json:"net_pnl"`
}

func (d *Decision) add(code, tradeID, msg string) {
	d.Violations = append(d.Violations, Violation{Code: code, Msg: msg, TradeID: tradeID})
	d.Allowed = false
}

// Evaluate checks one day's trades, in the order taken, against p.
func Evaluate(p Policy, dayTrades []journal.Trade) Decision {
	d := Decision{Allowed: true, Violations: []Violation{}}

	var (
		lossRun   int
		streakHit bool
		lossHit   bool
	)
	for i, t := range dayTrades {
		d.Trades++
		d.NetPnL += t.NetPnL

		if p.MaxTradesPerDay > 0 && i+1 == p.MaxTradesPerDay+1 {
			d.add(CodeMaxTrades, t.ID,
				fmt.Sprintf("trade %d exceeds max %d per day", i+1, p.MaxTradesPerDay))
		}
		if p.MaxContracts > 0 && t.Contracts > p.MaxContracts {
			d.add(CodeMaxContract, t.ID,
				fmt.Sprintf("%d contracts exceeds max %d", t.Contracts, p.MaxContracts))
		}
		if p.RequireStop && t.StopLoss == 0 {
			d.add(CodeNoStop, t.ID, "trade has no stop loss")
		}
		if p.MinRR > 0 && t.StopLoss != 0 && t.TakeProfit != 0 {
			if rr := risk.RR(t.EntryPrice, t.StopLoss, t.TakeProfit); rr < p.MinRR {
				d.add(CodeRRTooLow, t.ID,
					fmt.Sprintf("RR %.2f below minimum %.2f", rr, p.MinRR))
			}
		}

		if t.IsLoss() {
			lossRun++
		} else if !t.IsOpen() {
			lossRun = 0
		}
		if p.MaxConsecutiveLosses > 0 && !streakHit && lossRun >= p.MaxConsecutiveLosses {
			streakHit = true
			d.add(CodeLossStreak, t.ID,
				fmt.Sprintf("%d losses in a row reaches max %d", lossRun, p.MaxConsecutiveLosses))
		}
		if p.MaxDailyLoss > 0 && !lossHit && d.NetPnL <= -p.MaxDailyLoss {
			lossHit = true
			d.add(CodeDailyLoss, t.ID,
				fmt.Sprintf("day P&L %.2f <= limit %.2f", d.NetPnL, -p.MaxDailyLoss))
		}
	}
	return d
}
