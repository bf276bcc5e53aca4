package server

import (
	"time"

	"github.com/rustyeddy/tradejournal/journal"
	"github.com/rustyeddy/tradejournal/market"
)

type tradeRequest struct {
	AccountID   string     `json:"account_id"`
	Symbol      string     `json:"symbol" validate:"required,max=32"`
	Side        string     `json:"side" validate:"required"`
	EntryPrice  float64    `json:"entry_price" validate:"gte=0"`
	ExitPrice   float64    `json:"exit_price" validate:"gte=0"`
	EntryTime   *time.Time `json:"entry_time"`
	ExitTime    *time.Time `json:"exit_time"`
	Contracts   int        `json:"contracts" validate:"required,gt=0"`
	StopLoss    float64    `json:"stop_loss" validate:"gte=0"`
	TakeProfit  float64    `json:"take_profit" validate:"gte=0"`
	Commission  float64    `json:"commission" validate:"gte=0"`
	Fees        float64    `json:"fees" validate:"gte=0"`
	Setup       string     `json:"setup" validate:"max=128"`
	Notes       string     `json:"notes"`
	Emotions    []string   `json:"emotions"`
	Mistakes    []string   `json:"mistakes"`
	Tags        []string   `json:"tags"`
	Rating      int        `json:"rating" validate:"min=0,max=5"`
	EntryRating int        `json:"entry_rating" validate:"min=0,max=5"`
	ExitRating  int        `json:"exit_rating" validate:"min=0,max=5"`
}

// apply copies the request onto t. Computed and ownership fields are left
// alone.
func (req tradeRequest) apply(t *journal.Trade) error {
	side, err := journal.ParseSide(req.Side)
	if err != nil {
		return badRequest("%v", err)
	}
	t.AccountID = req.AccountID
	t.Symbol = req.Symbol
	t.Side = side
	t.EntryPrice = req.EntryPrice
	t.ExitPrice = req.ExitPrice
	t.EntryTime, t.ExitTime = time.Time{}, time.Time{}
	if req.EntryTime != nil {
		t.EntryTime = req.EntryTime.UTC()
	}
	if req.ExitTime != nil {
		t.ExitTime = req.ExitTime.UTC()
	}
	t.Contracts = req.Contracts
	t.StopLoss = req.StopLoss
	t.TakeProfit = req.TakeProfit
	t.Commission = req.Commission
	t.Fees = req.Fees
	t.Setup = req.Setup
	t.Notes = req.Notes
	t.Emotions = req.Emotions
	t.Mistakes = req.Mistakes
	t.Tags = req.Tags
	t.Rating = req.Rating
	t.EntryRating = req.EntryRating
	t.ExitRating = req.ExitRating
	return nil
}

type accountRequest struct {
	Name            string  `json:"name" validate:"required,max=64"`
	Broker          string  `json:"broker" validate:"max=64"`
	Currency        string  `json:"currency" validate:"omitempty,len=3"`
	StartingBalance float64 `json:"starting_balance" validate:"gte=0"`
	Archived        bool    `json:"archived"`
}

func (req accountRequest) apply(a *journal.Account) {
	a.Name = req.Name
	a.Broker = req.Broker
	a.Currency = req.Currency
	if a.Currency == "" {
		a.Currency = "USD"
	}
	a.StartingBalance = req.StartingBalance
	a.Archived = req.Archived
}

type instrumentRequest struct {
	Symbol    string  `json:"symbol" validate:"required,max=16"`
	Name      string  `json:"name"`
	Exchange  string  `json:"exchange"`
	TickSize  float64 `json:"tick_size" validate:"gt=0"`
	TickValue float64 `json:"tick_value" validate:"gt=0"`
	Currency  string  `json:"currency" validate:"omitempty,len=3"`
}

func (req instrumentRequest) instrument() market.Instrument {
	return market.Instrument{
		Symbol:    req.Symbol,
		Name:      req.Name,
		Exchange:  req.Exchange,
		TickSize:  req.TickSize,
		TickValue: req.TickValue,
		Currency:  req.Currency,
	}
}

type screenshotRequest struct {
	URL     string `json:"url" validate:"required,url"`
	Caption string `json:"caption" validate:"max=256"`
}

type ruleRequest struct {
	Name        string `json:"name" validate:"required,max=128"`
	Description string `json:"description"`
	Category    string `json:"category" validate:"max=64"`
	Active      *bool  `json:"active"`
	Position    int    `json:"position" validate:"gte=0"`
}

func (req ruleRequest) apply(r *journal.Rule) {
	r.Name = req.Name
	r.Description = req.Description
	r.Category = req.Category
	r.Position = req.Position
	if req.Active != nil {
		r.Active = *req.Active
	}
}

type ruleCheckRequest struct {
	Followed bool   `json:"followed"`
	Note     string `json:"note" validate:"max=512"`
}
