// Package discipline tracks how well a trader follows their own rules:
// the daily checklist, compliance over a period, and automatic checks of a
// day's trades against a Policy.
package discipline

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/rustyeddy/tradejournal/analytics"
	"github.com/rustyeddy/tradejournal/journal"
)

// Store is the part of journal.Store used here.
type Store interface {
	ListRules(ctx context.Context, userID string, activeOnly bool) ([]journal.Rule, error)
	ListRuleChecks(ctx context.Context, userID, from, to string) ([]journal.RuleCheck, error)
	ListTrades(ctx context.Context, f journal.Filter) ([]journal.Trade, error)
}

type ChecklistItem struct {
	Rule     journal.Rule `json:"rule"`
	Checked  bool         `json:"checked"`
	Followed bool         `json:"followed"`
	Note     string       `json:"note,omitempty"`
}

// Checklist lists the active rules with their state on day (YYYY-MM-DD).
func Checklist(ctx context.Context, s Store, userID, day string) ([]ChecklistItem, error) {
	if _, err := time.Parse(journal.DayLayout, day); err != nil {
		return nil, fmt.Errorf("checklist day %q: %w", day, err)
	}
	rules, err := s.ListRules(ctx, userID, true)
	if err != nil {
		return nil, err
	}
	checks, err := s.ListRuleChecks(ctx, userID, day, day)
	if err != nil {
		return nil, err
	}

	byRule := make(map[string]journal.RuleCheck, len(checks))
	for _, c := range checks {
		byRule[c.RuleID] = c
	}

	out := make([]ChecklistItem, 0, len(rules))
	for _, r := range rules {
		item := ChecklistItem{Rule: r}
		if c, ok := byRule[r.ID]; ok {
			item.Checked = true
			item.Followed = c.Followed
			item.Note = c.Note
		}
		out = append(out, item)
	}
	return out, nil
}

type RuleCompliance struct {
	RuleID   string  `json:"rule_id"`
	Name     string  `json:"name"`
	Checked  int     `json:"checked"`
	Followed int     `json:"followed"`
	Rate     float64 `json:"rate"` // percent
}

type Report struct {
	Rules []RuleCompliance `json:"rules"`

	Checks   int     `json:"checks"`
	Followed int     `json:"followed"`
	Rate     float64 `json:"rate"` // percent of checks followed

	Days               int     `json:"days"`
	CompliantDays      int     `json:"compliant_days"`
	CompliantRate      float64 `json:"compliant_rate"`
	CurrentStreak      int     `json:"current_streak"`
	LongestStreak      int     `json:"longest_streak"`
	AvgPnLCompliant    float64 `json:"avg_pnl_compliant"`
	AvgPnLNonCompliant float64 `json:"avg_pnl_non_compliant"`
}

// Compliance loads rules, checks and trades for [from, to] and summarizes
// them. Days are YYYY-MM-DD in loc.
func Compliance(ctx context.Context, s Store, userID, from, to string, loc *time.Location) (Report, error) {
	if loc == nil {
		loc = time.UTC
	}
	rules, err := s.ListRules(ctx, userID, false)
	if err != nil {
		return Report{}, err
	}
	checks, err := s.ListRuleChecks(ctx, userID, from, to)
	if err != nil {
		return Report{}, err
	}

	f := journal.Filter{UserID: userID, ClosedOnly: true}
	if from != "" {
		start, err := time.ParseInLocation(journal.DayLayout, from, loc)
		if err != nil {
			return Report{}, fmt.Errorf("from %q: %w", from, err)
		}
		f.From = start
	}
	if to != "" {
		end, err := time.ParseInLocation(journal.DayLayout, to, loc)
		if err != nil {
			return Report{}, fmt.Errorf("to %q: %w", to, err)
		}
		f.To = end.AddDate(0, 0, 1)
	}
	trades, err := s.ListTrades(ctx, f)
	if err != nil {
		return Report{}, err
	}

	return ComputeCompliance(rules, checks, analytics.DailyPnL(analytics.Closed(trades), loc)), nil
}

// ComputeCompliance summarizes checks. A day is compliant when every check
// recorded for it was followed; days without checks are not counted and do
// not break a streak.
func ComputeCompliance(rules []journal.Rule, checks []journal.RuleCheck, daily []analytics.Day) Report {
	rep := Report{Rules: []RuleCompliance{}}

	perRule := make(map[string]*RuleCompliance, len(rules))
	for _, r := range rules {
		rc := &RuleCompliance{RuleID: r.ID, Name: r.Name}
		perRule[r.ID] = rc
	}

	dayOK := map[string]bool{}
	for _, c := range checks {
		rep.Checks++
		rc, ok := perRule[c.RuleID]
		if !ok {
			rc = &RuleCompliance{RuleID: c.RuleID}
			perRule[c.RuleID] = rc
		}
		rc.Checked++
		if c.Followed {
			rep.Followed++
			rc.Followed++
		}
		prev, seen := dayOK[c.Day]
		dayOK[c.Day] = c.Followed && (!seen || prev)
	}
	rep.Rate = rate(rep.Followed, rep.Checks)

	for _, r := range rules {
		rc := perRule[r.ID]
		rc.Rate = rate(rc.Followed, rc.Checked)
		rep.Rules = append(rep.Rules, *rc)
	}

	days := make([]string, 0, len(dayOK))
	for d := range dayOK {
		days = append(days, d)
	}
	sort.Strings(days)

	run := 0
	for _, d := range days {
		rep.Days++
		if dayOK[d] {
			rep.CompliantDays++
			run++
			rep.LongestStreak = max(rep.LongestStreak, run)
		} else {
			run = 0
		}
	}
	rep.CurrentStreak = run
	rep.CompliantRate = rate(rep.CompliantDays, rep.Days)

	var (
		goodPnL, badPnL float64
		goodN, badN     int
	)
	for _, d := range daily {
		ok, checked := dayOK[d.Date]
		if !checked {
			continue
		}
		if ok {
			goodPnL += d.NetPnL
			goodN++
		} else {
			badPnL += d.NetPnL
			badN++
		}
	}
	if goodN > 0 {
		rep.AvgPnLCompliant = round2(goodPnL / float64(goodN))
	}
	if badN > 0 {
		rep.AvgPnLNonCompliant = round2(badPnL / float64(badN))
	}
	return rep
}

// EvaluateDay runs Evaluate over the trades entered on day in loc.
func EvaluateDay(ctx context.Context, s Store, userID string, p Policy, day string, loc *time.Location) (Decision, error) {
	if loc == nil {
		loc = time.UTC
	}
	start, err := time.ParseInLocation(journal.DayLayout, day, loc)
	if err != nil {
		return Decision{}, fmt.Errorf("day %q: %w", day, err)
	}
	trades, err := s.ListTrades(ctx, journal.Filter{UserID: userID, From: start, To: start.AddDate(0, 0, 1)})
	if err != nil {
		return Decision{}, err
	}
	return Evaluate(p, trades), nil
}

func rate(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return round2(float64(n) / float64(total) * 100)
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
