package importer

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ErrEmpty is returned by the parsers for blank cells.
var ErrEmpty = errors.New("empty value")

var numberCleaner = strings.NewReplacer(
	"$", "", "€", "", "£", "", "¥", "",
	",", "", " ", "", " ", "", "'", "",
	"(", "", ")", "",
	"USD", "", "EUR", "", "GBP", "", "JPY", "",
)

// ParseNumber reads broker-formatted amounts: currency symbols and codes,
// thousands separators, a leading plus and parenthesized negatives are all
// accepted. "$(123.45)" is -123.45.
func ParseNumber(s string) (float64, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "-", "--", "n/a", "na", "null", "none":
		return 0, ErrEmpty
	}

	neg := strings.Contains(s, "(") && strings.Contains(s, ")")
	s = strings.ReplaceAll(s, "−", "-")
	s = numberCleaner.Replace(strings.ToUpper(s))
	s = strings.TrimPrefix(s, "+")
	if strings.HasSuffix(s, "-") {
		neg = true
		s = strings.TrimSuffix(s, "-")
	}
	if s == "" {
		return 0, ErrEmpty
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", s)
	}
	if neg {
		d = d.Abs().Neg()
	}
	return d.InexactFloat64(), nil
}

// layouts are tried in order. Layouts without a zone are read in the
// caller's location.
var layouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05 -0700",
	"2006-01-02 15:04:05 -0700 MST",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006/01/02 15:04:05",
	"2006/01/02 15:04",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/2006 3:04:05 PM",
	"1/2/2006 3:04 PM",
	"1/2/2006 3:04:05PM",
	"1/2/06 15:04:05",
	"1/2/06 15:04",
	"1/2/06 3:04:05 PM",
	"1/2/06 3:04 PM",
	"1-2-2006 15:04:05",
	"02-Jan-2006 15:04:05",
	"Jan 2, 2006 15:04:05",
	"Jan 2, 2006 3:04:05 PM",
	"Jan 2 2006 15:04:05",
	"2006-01-02",
	"2006/01/02",
	"1/2/2006",
	"1/2/06",
	"02-Jan-2006",
	"Jan 2, 2006",
	"20060102",
}

// ParseTime reads the timestamp formats common in broker exports, plus
// Unix epoch seconds or milliseconds. A nil loc means UTC.
func ParseTime(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrEmpty
	}

	if isDigits(s) && len(s) >= 9 {
		n, err := strconv.ParseInt(s, 10, 64)
		if err == nil {
			if len(s) >= 12 {
				return time.UnixMilli(n).UTC(), nil
			}
			return time.Unix(n, 0).UTC(), nil
		}
	}

	upper := strings.ToUpper(s)
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, upper, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// splitList splits a tag cell on ';', '|' or ','.
func splitList(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ';' || r == '|' || r == ','
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
