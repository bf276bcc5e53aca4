package journal

import (
	"fmt"
	"strings"
	"time"
)

// FormatTradeOrg renders a Trade as an Org-mode block suitable for pasting into a journal.
// Structured facts live in a PROPERTIES drawer for easy search; the narrative
// sections carry the trade's notes and psychology tags.
func FormatTradeOrg(t Trade) string {
	heading := fmt.Sprintf("** Trade: %s %s (%s)", t.Symbol, strings.ToUpper(string(t.Side)), shortID(t.ID))
	if len(t.Tags) > 0 {
		heading += "    :" + strings.Join(orgTags(t.Tags), ":") + ":"
	}

	var b strings.Builder
	b.WriteString(heading)
	b.WriteString("\n")
	b.WriteString(":PROPERTIES:\n")
	fmt.Fprintf(&b, ":TRADE_ID: %s\n", t.ID)
	fmt.Fprintf(&b, ":ID: %s\n", t.ID)
	if t.AccountID != "" {
		fmt.Fprintf(&b, ":ACCOUNT: %s\n", t.AccountID)
	}
	fmt.Fprintf(&b, ":SYMBOL: %s\n", t.Symbol)
	fmt.Fprintf(&b, ":SIDE: %s\n", t.Side)
	fmt.Fprintf(&b, ":CONTRACTS: %d\n", t.Contracts)
	fmt.Fprintf(&b, ":ENTRY_PRICE: %.2f\n", t.EntryPrice)
	if !t.IsOpen() {
		fmt.Fprintf(&b, ":EXIT_PRICE: %.2f\n", t.ExitPrice)
	}
	if t.StopLoss != 0 {
		fmt.Fprintf(&b, ":STOP_LOSS: %.2f\n", t.StopLoss)
	}
	if t.TakeProfit != 0 {
		fmt.Fprintf(&b, ":TAKE_PROFIT: %.2f\n", t.TakeProfit)
	}
	fmt.Fprintf(&b, ":ENTRY_TIME: %s\n", orgTime(t.EntryTime))
	fmt.Fprintf(&b, ":EXIT_TIME: %s\n", orgTime(t.ExitTime))
	fmt.Fprintf(&b, ":COMMISSION: %.2f\n", t.Commission+t.Fees)
	fmt.Fprintf(&b, ":GROSS_PNL: %.2f\n", t.GrossPnL)
	fmt.Fprintf(&b, ":NET_PNL: %.2f\n", t.NetPnL)
	if t.RMultiple != nil {
		fmt.Fprintf(&b, ":R_MULTIPLE: %.2f\n", *t.RMultiple)
	}
	if t.Setup != "" {
		fmt.Fprintf(&b, ":SETUP: %s\n", t.Setup)
	}
	if t.Rating > 0 {
		fmt.Fprintf(&b, ":RATING: %s\n", strings.Repeat("*", t.Rating))
	}
	b.WriteString(":END:\n")
	b.WriteString("\n")

	b.WriteString("*** Thesis\n")
	writeBullets(&b, t.Setup)
	b.WriteString("\n*** Execution\n")
	writeBullets(&b, t.Notes)
	b.WriteString("\n*** Review\n")
	if len(t.Emotions) == 0 && len(t.Mistakes) == 0 {
		b.WriteString("- \n")
	}
	if len(t.Emotions) > 0 {
		fmt.Fprintf(&b, "- Emotions: %s\n", strings.Join(t.Emotions, ", "))
	}
	if len(t.Mistakes) > 0 {
		fmt.Fprintf(&b, "- Mistakes: %s\n", strings.Join(t.Mistakes, ", "))
	}

	return b.String()
}

// FormatTradesOrg renders multiple trades separated by blank lines.
func FormatTradesOrg(trades []Trade) string {
	var b strings.Builder
	for i, t := range trades {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(FormatTradeOrg(t))
	}
	return b.String()
}

func writeBullets(b *strings.Builder, text string) {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	for _, l := range lines {
		fmt.Fprintf(b, "- %s\n", strings.TrimSpace(l))
	}
}

func orgTime(t time.Time) string {
	if t.IsZero() {
		return "open"
	}
	return t.UTC().Format(time.RFC3339)
}

// orgTags makes tags legal Org tags (no spaces or colons).
func orgTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.NewReplacer(" ", "_", ":", "_", "-", "_").Replace(strings.TrimSpace(t))
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

func shortID(full string) string {
	if len(full) <= 8 {
		return full
	}
	return full[:8]
}
