package analytics

import (
	"fmt"
	"io"
	"text/template"
	"time"
)

var reportOrgFuncs = template.FuncMap{
	"day": dayLabel,
	"stamp": func(t time.Time) string {
		if t.IsZero() {
			t = time.Now()
		}
		return t.Format("2006-01-02 Mon 15:04")
	},
	"money": func(x float64) string { return fmt.Sprintf("%.2f", x) },
}

var reportOrg = template.Must(template.New("report").Funcs(reportOrgFuncs).Parse(ReportOrgTemplate))

func dayLabel(t time.Time) string {
	if t.IsZero() {
		return "(any)"
	}
	return t.Format("2006-01-02")
}

// WriteOrg renders r as an Org-mode review document.
func WriteOrg(w io.Writer, r Report) error {
	return reportOrg.Execute(w, r)
}

const ReportOrgTemplate = `* REVIEW: {{if .Account}}{{.Account}}{{else}}all accounts{{end}} {{day .From}} .. {{day .To}}
:PROPERTIES:
:ACCOUNT:     {{if .Account}}{{.Account}}{{else}}(all){{end}}
:START_DATE:  {{day .From}}
:END_DATE:    {{day .To}}
:START_BAL:   {{money .StartingBalance}}
:END_BAL:     {{money .EndingBalance}}
:NET_PNL:     {{money .Summary.NetPnL}}
:RETURN_PCT:  {{money .ReturnPct}}
:MAX_DD:      {{money .Drawdown.Amount}}
:MAX_DD_PCT:  {{money .Drawdown.Percent}}
:TRADES:      {{.Summary.Trades}}
:WINS:        {{.Summary.Wins}}
:LOSSES:      {{.Summary.Losses}}
:WIN_RATE:    {{money .Summary.WinRate}}
:PROFIT_FAC:  {{if ne .Summary.ProfitFactor 0.0}}{{money .Summary.ProfitFactor}}{{else}}(no losses){{end}}
:CREATED:     [{{stamp .Generated}}]
:END:

** Performance Summary
- Net P/L:          *{{money .Summary.NetPnL}}*
- Win Rate:         *{{money .Summary.WinRate}}%*
- Profit Factor:    *{{money .Summary.ProfitFactor}}*
- Expectancy:       *{{money .Summary.Expectancy}}*
- Avg Win / Loss:   *{{money .Summary.AvgWin}} / {{money .Summary.AvgLoss}}*
- Avg R:            *{{money .Summary.AvgR}}*
- Max Drawdown:     *{{money .Drawdown.Amount}} ({{money .Drawdown.Percent}}%)*
- Costs:            *{{money .Summary.Costs}}*
- Streaks:          *current {{.Streaks.Current}}, best {{.Streaks.LongestWin}}, worst {{.Streaks.LongestLoss}}*

** Trade Distribution
| Outcome   | Count |
|-----------+-------|
| Wins      | {{.Summary.Wins}} |
| Losses    | {{.Summary.Losses}} |
| Breakeven | {{.Summary.Breakeven}} |
| Total     | {{.Summary.Trades}} |

** Long vs Short
| Side  | Trades | Win % | Net P/L |
|-------+--------+-------+---------|
| Long  | {{.LongShort.Long.Trades}} | {{money .LongShort.Long.WinRate}} | {{money .LongShort.Long.NetPnL}} |
| Short | {{.LongShort.Short.Trades}} | {{money .LongShort.Short.WinRate}} | {{money .LongShort.Short.NetPnL}} |
{{- if .BySetup }}

** Setups
| Setup | Trades | Win % | Net P/L |
|-------+--------+-------+---------|
{{- range .BySetup }}
| {{.Key}} | {{.Trades}} | {{money .WinRate}} | {{money .NetPnL}} |
{{- end }}
{{- end }}
{{- if .ByMistake }}

** Mistakes
{{- range .ByMistake }}
- {{.Key}}: {{.Trades}} trades, {{money .NetPnL}}
{{- end }}
{{- end }}
{{- if .Daily }}

** Calendar
| Day | Trades | Net P/L |
|-----+--------+---------|
{{- range .Daily }}
| {{.Date}} | {{.Trades}} | {{money .NetPnL}} |
{{- end }}
{{- end }}
`

// PrintReport writes a plain-text summary for the terminal.
func PrintReport(w io.Writer, r Report) {
	s := r.Summary
	fmt.Fprintln(w, "==================================================")
	fmt.Fprintln(w, " Trading Performance")
	fmt.Fprintln(w, "==================================================")

	if r.Account != "" {
		fmt.Fprintf(w, "Account:       %s\n", r.Account)
	}
	if !r.From.IsZero() || !r.To.IsZero() {
		fmt.Fprintf(w, "Period:        %s .. %s\n", dayLabel(r.From), dayLabel(r.To))
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Trade Statistics")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Trades:        %d\n", s.Trades)
	fmt.Fprintf(w, "Wins:          %d\n", s.Wins)
	fmt.Fprintf(w, "Losses:        %d\n", s.Losses)
	fmt.Fprintf(w, "Breakeven:     %d\n", s.Breakeven)
	fmt.Fprintf(w, "Win Rate:      %.2f%%\n", s.WinRate)
	fmt.Fprintf(w, "Avg Win:       %.2f\n", s.AvgWin)
	fmt.Fprintf(w, "Avg Loss:      %.2f\n", s.AvgLoss)
	fmt.Fprintf(w, "Expectancy:    %.2f\n", s.Expectancy)
	if s.RTrades > 0 {
		fmt.Fprintf(w, "Avg R:         %.2f\n", s.AvgR)
	}
	if s.AvgHoldMins > 0 {
		fmt.Fprintf(w, "Avg Hold:      %.1f min\n", s.AvgHoldMins)
	}
	fmt.Fprintf(w, "Streaks:       current %d, longest win %d, longest loss %d\n",
		r.Streaks.Current, r.Streaks.LongestWin, r.Streaks.LongestLoss)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Account Performance")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Start Balance: %.2f\n", r.StartingBalance)
	fmt.Fprintf(w, "End Balance:   %.2f\n", r.EndingBalance)
	fmt.Fprintf(w, "Net P/L:       %.2f\n", s.NetPnL)
	fmt.Fprintf(w, "Costs:         %.2f\n", s.Costs)
	if r.StartingBalance > 0 {
		fmt.Fprintf(w, "Return:        %.2f%%\n", r.ReturnPct)
	}
	if s.ProfitFactor > 0 {
		fmt.Fprintf(w, "Profit Factor: %.2f\n", s.ProfitFactor)
	}
	if r.Drawdown.Amount > 0 {
		fmt.Fprintf(w, "Max Drawdown:  %.2f (%.2f%%)\n", r.Drawdown.Amount, r.Drawdown.Percent)
	}

	if len(r.BySetup) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Setups")
		fmt.Fprintln(w, "--------------------------------------------------")
		for _, b := range r.BySetup {
			fmt.Fprintf(w, "%-20s %4d trades  %6.2f%%  %10.2f\n", b.Key, b.Trades, b.WinRate, b.NetPnL)
		}
	}

	fmt.Fprintln(w, "==================================================")
}
