package server

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rustyeddy/tradejournal/journal"
)

// parseBound reads a query bound as a day (YYYY-MM-DD, in loc) or an
// RFC 3339 instant. Day upper bounds include the whole day.
func parseBound(s string, loc *time.Location, upper bool) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if d, err := time.ParseInLocation(journal.DayLayout, s, loc); err == nil {
		if upper {
			d = d.AddDate(0, 0, 1)
		}
		return d, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, badRequest("bad date %q: want YYYY-MM-DD or RFC 3339", s)
	}
	return t, nil
}

func dateRange(r *http.Request, loc *time.Location) (from, to time.Time, err error) {
	q := r.URL.Query()
	if from, err = parseBound(q.Get("from"), loc, false); err != nil {
		return
	}
	if to, err = parseBound(q.Get("to"), loc, true); err != nil {
		return
	}
	if !from.IsZero() && !to.IsZero() && !to.After(from) {
		err = badRequest("to must be after from")
	}
	return
}

// dayParam reads a YYYY-MM-DD parameter, defaulting to today in loc.
func dayParam(s string, loc *time.Location) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Now().In(loc).Format(journal.DayLayout), nil
	}
	if _, err := time.Parse(journal.DayLayout, s); err != nil {
		return "", badRequest("bad day %q: want YYYY-MM-DD", s)
	}
	return s, nil
}

func intParam(s string, def int) (int, error) {
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, badRequest("bad number %q", s)
	}
	return n, nil
}

// tradeFilter builds a journal.Filter from list query parameters.
func (s *Server) tradeFilter(r *http.Request) (journal.Filter, error) {
	q := r.URL.Query()
	f := journal.Filter{
		UserID: userID(r),
		Symbol: q.Get("symbol"),
		Setup:  q.Get("setup"),
	}

	if ref := q.Get("account"); ref != "" {
		acct, err := s.store.FindAccount(r.Context(), f.UserID, ref)
		if err != nil {
			return f, err
		}
		f.AccountID = acct.ID
	}

	var err error
	if f.From, f.To, err = dateRange(r, s.analyticsLoc); err != nil {
		return f, err
	}

	switch q.Get("deleted") {
	case "", "false":
	case "true", "include":
		f.IncludeDeleted = true
	case "only":
		f.OnlyDeleted = true
	default:
		return f, badRequest("deleted must be true, false or only")
	}
	switch q.Get("status") {
	case "", "all":
	case "closed":
		f.ClosedOnly = true
	default:
		return f, badRequest("status must be all or closed")
	}

	if f.Limit, err = intParam(q.Get("limit"), 0); err != nil {
		return f, err
	}
	if f.Offset, err = intParam(q.Get("offset"), 0); err != nil {
		return f, err
	}
	return f, nil
}
