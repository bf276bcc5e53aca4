package analytics

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rustyeddy/tradejournal/journal"
)

// Bucket aggregates the trades that share a key.
type Bucket struct {
	Key          string  `json:"key"`
	Trades       int     `json:"trades"`
	Wins         int     `json:"wins"`
	Losses       int     `json:"losses"`
	NetPnL       float64 `json:"net_pnl"`
	WinRate      float64 `json:"win_rate"`
	AvgPnL       float64 `json:"avg_pnl"`
	ProfitFactor float64 `json:"profit_factor"`

	profit, loss float64
}

func (b *Bucket) add(t journal.Trade) {
	b.Trades++
	b.NetPnL += t.NetPnL
	switch {
	case t.NetPnL > 0:
		b.Wins++
		b.profit += t.NetPnL
	case t.NetPnL < 0:
		b.Losses++
		b.loss -= t.NetPnL
	}
}

func (b *Bucket) finish() {
	b.NetPnL = round2(b.NetPnL)
	if b.Trades == 0 {
		return
	}
	b.WinRate = pct(b.Wins, b.Trades)
	b.AvgPnL = round2(b.NetPnL / float64(b.Trades))
	if b.loss > 0 {
		b.ProfitFactor = round2(b.profit / b.loss)
	}
}

// grouper keeps buckets in first-seen order.
type grouper struct {
	order []string
	m     map[string]*Bucket
}

func newGrouper(keys ...string) *grouper {
	g := &grouper{m: map[string]*Bucket{}}
	for _, k := range keys {
		g.bucket(k)
	}
	return g
}

func (g *grouper) bucket(key string) *Bucket {
	b, ok := g.m[key]
	if !ok {
		b = &Bucket{Key: key}
		g.m[key] = b
		g.order = append(g.order, key)
	}
	return b
}

func (g *grouper) add(key string, t journal.Trade) {
	g.bucket(key).add(t)
}

func (g *grouper) buckets() []Bucket {
	out := make([]Bucket, 0, len(g.order))
	for _, k := range g.order {
		b := g.m[k]
		b.finish()
		out = append(out, *b)
	}
	return out
}

// byPnL sorts best-performing buckets first.
func byPnL(bs []Bucket) []Bucket {
	sort.SliceStable(bs, func(i, j int) bool {
		if bs[i].NetPnL != bs[j].NetPnL {
			return bs[i].NetPnL > bs[j].NetPnL
		}
		return bs[i].Key < bs[j].Key
	})
	return bs
}

// ByWeekday buckets by entry day, Monday first. All seven days are present.
func ByWeekday(trades []journal.Trade, loc *time.Location) []Bucket {
	days := []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday, time.Sunday}
	keys := make([]string, len(days))
	for i, d := range days {
		keys[i] = d.String()
	}
	g := newGrouper(keys...)
	for _, t := range trades {
		g.add(entryTime(t).In(loc).Weekday().String(), t)
	}
	return g.buckets()
}

// ByHour buckets by entry hour ("09:00"). Only hours with trades appear.
func ByHour(trades []journal.Trade, loc *time.Location) []Bucket {
	g := newGrouper()
	for _, t := range trades {
		g.add(fmt.Sprintf("%02d:00", entryTime(t).In(loc).Hour()), t)
	}
	out := g.buckets()
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// HoldBuckets are the hold-time ranges, shortest first.
var HoldBuckets = []struct {
	Key string
	Max time.Duration
}{
	{"<1m", time.Minute},
	{"1-5m", 5 * time.Minute},
	{"5-15m", 15 * time.Minute},
	{"15-60m", time.Hour},
	{"1-4h", 4 * time.Hour},
	{"4h+", 0},
}

func holdKey(d time.Duration) string {
	for _, hb := range HoldBuckets {
		if hb.Max == 0 || d < hb.Max {
			return hb.Key
		}
	}
	return HoldBuckets[len(HoldBuckets)-1].Key
}

// ByHoldTime buckets by time in the trade. Trades without an entry time are
// skipped.
func ByHoldTime(trades []journal.Trade) []Bucket {
	keys := make([]string, len(HoldBuckets))
	for i, hb := range HoldBuckets {
		keys[i] = hb.Key
	}
	g := newGrouper(keys...)
	for _, t := range trades {
		if t.EntryTime.IsZero() {
			continue
		}
		g.add(holdKey(t.HoldDuration()), t)
	}
	return g.buckets()
}

type LongShort struct {
	Long  Bucket `json:"long"`
	Short Bucket `json:"short"`
}

func CompareSides(trades []journal.Trade) LongShort {
	g := newGrouper(string(journal.Long), string(journal.Short))
	for _, t := range trades {
		g.add(string(t.Side), t)
	}
	bs := g.buckets()
	return LongShort{Long: bs[0], Short: bs[1]}
}

// NoSetup labels trades without a setup.
const NoSetup = "(none)"

func BySetup(trades []journal.Trade) []Bucket {
	g := newGrouper()
	for _, t := range trades {
		key := strings.TrimSpace(t.Setup)
		if key == "" {
			key = NoSetup
		}
		g.add(key, t)
	}
	return byPnL(g.buckets())
}

func BySymbol(trades []journal.Trade) []Bucket {
	g := newGrouper()
	for _, t := range trades {
		g.add(t.Symbol, t)
	}
	return byPnL(g.buckets())
}

// ByEmotion counts a trade once under each of its emotion tags.
func ByEmotion(trades []journal.Trade) []Bucket {
	return byTag(trades, func(t journal.Trade) []string { return t.Emotions })
}

// ByMistake counts a trade once under each of its mistake tags.
func ByMistake(trades []journal.Trade) []Bucket {
	return byTag(trades, func(t journal.Trade) []string { return t.Mistakes })
}

func byTag(trades []journal.Trade, tags func(journal.Trade) []string) []Bucket {
	g := newGrouper()
	for _, t := range trades {
		seen := map[string]bool{}
		for _, tag := range tags(t) {
			key := strings.ToLower(strings.TrimSpace(tag))
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			g.add(key, t)
		}
	}
	return byPnL(g.buckets())
}

// ByRating buckets rated trades from 1 to 5 stars.
func ByRating(trades []journal.Trade) []Bucket {
	g := newGrouper()
	for _, t := range trades {
		if t.Rating <= 0 {
			continue
		}
		g.add(strconv.Itoa(t.Rating), t)
	}
	out := g.buckets()
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Day is one cell of the P&L calendar.
type Day struct {
	Date   string  `json:"date"` // YYYY-MM-DD
	Trades int     `json:"trades"`
	Wins   int     `json:"wins"`
	Losses int     `json:"losses"`
	NetPnL float64 `json:"net_pnl"`
}

// DailyPnL groups trades by the calendar day they closed.
func DailyPnL(trades []journal.Trade, loc *time.Location) []Day {
	g := newGrouper()
	for _, t := range trades {
		g.add(t.ExitTime.In(loc).Format(journal.DayLayout), t)
	}
	bs := g.buckets()
	sort.Slice(bs, func(i, j int) bool { return bs[i].Key < bs[j].Key })

	out := make([]Day, len(bs))
	for i, b := range bs {
		out[i] = Day{Date: b.Key, Trades: b.Trades, Wins: b.Wins, Losses: b.Losses, NetPnL: b.NetPnL}
	}
	return out
}

// entryTime falls back to the exit time for trades imported without one.
func entryTime(t journal.Trade) time.Time {
	if t.EntryTime.IsZero() {
		return t.ExitTime
	}
	return t.EntryTime
}
